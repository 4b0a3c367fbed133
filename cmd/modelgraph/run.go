package main

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/syssam/modelgraph/export"
	"github.com/syssam/modelgraph/graph"
	"github.com/syssam/modelgraph/load"
	"github.com/syssam/modelgraph/registry"
)

// hashCacheSize bounds the id cache shared by the extractions of one run.
const hashCacheSize = 4096

// registryOptions returns the registry options selected by the flags.
func (a *app) registryOptions() []registry.Option {
	var opts []registry.Option
	if base := a.v.GetString("universal-base"); base != "" {
		opts = append(opts, registry.WithUniversalBase(base))
	}
	if module := a.v.GetString("module"); module != "" {
		opts = append(opts, registry.WithDefaultModule(module))
	}
	return opts
}

// graphOptions returns the extraction options selected by the flags.
func (a *app) graphOptions() ([]graph.Option, error) {
	h, err := graph.ParseHasher(a.v.GetString("hasher"))
	if err != nil {
		return nil, err
	}
	cached, err := graph.NewCachedHasher(h, hashCacheSize)
	if err != nil {
		return nil, err
	}
	opts := []graph.Option{
		graph.WithFQLabels(a.v.GetBool("fq-labels")),
		graph.WithHasher(cached),
		graph.WithLogger(a.log),
	}
	if a.v.GetBool("strict") {
		opts = append(opts, graph.WithReflectionPolicy(graph.Strict))
	}
	if a.v.GetBool("subtypes-only") {
		opts = append(opts, graph.WithDescent(graph.SubtypesOnly))
	}
	if n := a.v.GetInt("workers"); n > 0 {
		opts = append(opts, graph.WithWorkers(n))
	}
	return opts, nil
}

// run builds a registry from schemas, extracts the requested graphs and
// writes them to the configured output.
func (a *app) run(ctx context.Context, stdout io.Writer, schemas []*load.Schema) error {
	format, err := export.ParseFormat(a.v.GetString("format"))
	if err != nil {
		return err
	}
	reg, err := registry.New(schemas, a.registryOptions()...)
	if err != nil {
		return err
	}
	opts, err := a.graphOptions()
	if err != nil {
		return err
	}
	x, err := graph.NewExtractor[*registry.Type](reg, opts...)
	if err != nil {
		return err
	}
	var write func(io.Writer) error
	if name := a.v.GetString("root"); name != "" {
		root, err := reg.Lookup(name)
		if err != nil {
			return errors.WithHint(err, "use a qualified name such as module.Type, or omit --root to extract every root type")
		}
		g, err := x.Extract(root)
		if err != nil {
			return err
		}
		write = func(w io.Writer) error { return export.Write(w, g, format) }
	} else {
		roots := reg.Roots()
		if len(roots) == 0 {
			return errors.WithHint(errors.New("no types to extract"), "check that the schema path contains .json, .yaml or .yml descriptors")
		}
		gs, err := x.ExtractAll(ctx, roots)
		if err != nil {
			return err
		}
		write = func(w io.Writer) error { return export.WriteAll(w, gs, format) }
	}
	out := a.v.GetString("out")
	if out == "" {
		return write(stdout)
	}
	if err := writeFile(out, write); err != nil {
		return err
	}
	a.log.Info("graph written", zap.String("path", out), zap.String("format", string(format)))
	return nil
}

// writeFile writes to a temporary file next to path and renames it into
// place, so readers never observe a partial graph.
func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.CreateTemp(filepath.Dir(path), ".modelgraph-*")
	if err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	defer os.Remove(f.Name())
	if err := f.Chmod(0o644); err != nil {
		f.Close()
		return errors.Wrapf(err, "write %s", path)
	}
	if err := write(f); err != nil {
		f.Close()
		return errors.Wrapf(err, "write %s", path)
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "write %s", path)
	}
	return errors.Wrapf(os.Rename(f.Name(), path), "write %s", path)
}

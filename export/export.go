// Package export writes extracted graphs as JSON, YAML or MessagePack.
package export

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/syssam/modelgraph"
	"github.com/syssam/modelgraph/graph"
)

// Format is an output encoding.
type Format string

// Supported formats.
const (
	JSON    Format = "json"
	YAML    Format = "yaml"
	Msgpack Format = "msgpack"
)

// Formats lists the supported formats.
var Formats = []Format{JSON, YAML, Msgpack}

// ParseFormat returns the format named s. "yml" is accepted for YAML.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case JSON, YAML, Msgpack:
		return f, nil
	case "yml":
		return YAML, nil
	case "":
		return JSON, nil
	default:
		return "", modelgraph.NewConfigError("Format", s, "unsupported format; use json, yaml or msgpack")
	}
}

// Ext returns the file extension of the format, including the dot.
func (f Format) Ext() string {
	switch f {
	case YAML:
		return ".yaml"
	case Msgpack:
		return ".msgpack"
	default:
		return ".json"
	}
}

// Write encodes g to w. Relationship fields keep their insertion order in
// every format.
func Write(w io.Writer, g *graph.Graph, f Format) error {
	return encode(w, g, f)
}

// WriteAll encodes a list of graphs to w.
func WriteAll(w io.Writer, gs []*graph.Graph, f Format) error {
	if gs == nil {
		gs = []*graph.Graph{}
	}
	return encode(w, gs, f)
}

func encode(w io.Writer, v any, f Format) error {
	var err error
	switch f {
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		err = enc.Encode(v)
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err = enc.Encode(v); err == nil {
			err = enc.Close()
		}
	case Msgpack:
		err = msgpack.NewEncoder(w).Encode(v)
	default:
		return modelgraph.NewConfigError("Format", string(f), "unsupported format")
	}
	return errors.Wrapf(err, "encode %s", f)
}

package graph

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ExtractAll extracts one graph per root in parallel, bounded by the
// Workers option. Results are returned in root order. The first error
// cancels extractions that have not started yet.
func ExtractAll[T any](ctx context.Context, p Provider[T], roots []T, opts ...Option) ([]*Graph, error) {
	x, err := NewExtractor(p, opts...)
	if err != nil {
		return nil, err
	}
	return x.ExtractAll(ctx, roots)
}

// ExtractAll is like the package-level ExtractAll, using x's settings.
func (x *Extractor[T]) ExtractAll(ctx context.Context, roots []T) ([]*Graph, error) {
	graphs := make([]*Graph, len(roots))
	errg, ctx := errgroup.WithContext(ctx)
	errg.SetLimit(x.cfg.Workers)
	for i, root := range roots {
		errg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			g, err := x.Extract(root)
			if err != nil {
				return err
			}
			graphs[i] = g
			return nil
		})
	}
	if err := errg.Wait(); err != nil {
		return nil, err
	}
	return graphs, nil
}

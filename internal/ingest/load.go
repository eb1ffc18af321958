package ingest

import (
	"context"
	"fmt"
	"io"
	"os"

	"golang.org/x/sync/errgroup"
)

// Load reads and normalizes a single upload.
func Load(ctx context.Context, name string, r io.Reader) (Result, error) {
	t, err := ReadTable(ctx, name, r)
	if err != nil {
		return Result{}, err
	}
	res, err := Normalize(ctx, t)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", name, err)
	}
	return res, nil
}

// LoadFiles reads every path concurrently and merges the results in argument
// order. The first failure cancels the rest.
func LoadFiles(ctx context.Context, paths ...string) (Result, error) {
	results := make([]Result, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("failed to open file %s: %w", path, err)
			}
			defer f.Close()

			res, err := Load(ctx, path, f)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}
	return Merge(results...), nil
}

package driver

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// CompileAll compiles many files concurrently, one goroutine per file up
// to opts.Jobs. Files are independent translation units, so results come
// back in input order regardless of completion order. The error is the
// first internal failure; per-file diagnostics stay in each Output.
func CompileAll(ctx context.Context, paths []string, opts Options) ([]*Output, error) {
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	outs := make([]*Output, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out, err := CompilePath(path, opts)
			if err != nil {
				return err
			}
			outs[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outs, nil
}

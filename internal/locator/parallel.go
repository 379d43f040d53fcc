package locator

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Query is one (root, pattern) pair to resolve.
type Query struct {
	Root    string
	Pattern string
}

// ResolveAll resolves every query with at most jobs concurrent walks.
// Results are returned in query order. When several queries fail, the error
// of the earliest one is returned regardless of scheduling; queries after a
// known failure are skipped.
func (l *Locator) ResolveAll(ctx context.Context, queries []Query, jobs int) ([][]SourceFile, error) {
	results := make([][]SourceFile, len(queries))
	if len(queries) == 0 {
		return results, nil
	}
	if jobs < 1 {
		jobs = 1
	}

	var (
		mu       sync.Mutex
		firstIdx = len(queries)
		firstErr error
	)
	failedBefore := func(i int) bool {
		mu.Lock()
		defer mu.Unlock()
		return firstIdx < i
	}

	var g errgroup.Group
	g.SetLimit(min(jobs, len(queries)))

	for i, q := range queries {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if failedBefore(i) {
				return nil
			}
			files, err := l.Resolve(q.Root, q.Pattern)
			if err != nil {
				mu.Lock()
				if i < firstIdx {
					firstIdx, firstErr = i, err
				}
				mu.Unlock()
				return nil
			}
			results[i] = files
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}

// Package bulk applies one operation to many IDs concurrently and reports
// every ID's outcome. A failing ID never cancels or hides its siblings.
// file: internal/bulk/bulk.go
package bulk

import (
	"context"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"
)

// Operation is applied to one ID.
type Operation[K comparable, R any] func(ctx context.Context, id K) (R, error)

// Outcome is the result of one ID: either Value or Err.
type Outcome[R any] struct {
	Value R
	Err   error
}

// OK reports whether the operation succeeded.
func (o Outcome[R]) OK() bool {
	return o.Err == nil
}

// Outcomes maps each distinct input ID to its outcome.
type Outcomes[K comparable, R any] map[K]Outcome[R]

// Summary counts outcomes.
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
}

// Summary counts succeeded and failed IDs.
func (o Outcomes[K, R]) Summary() Summary {
	s := Summary{Total: len(o)}
	for _, outcome := range o {
		if outcome.OK() {
			s.Succeeded++
		} else {
			s.Failed++
		}
	}
	return s
}

// Dispatch runs op once per distinct ID and waits for all of them. limit caps
// concurrent calls; zero or negative means unbounded. A panic in op becomes
// that ID's error. Dispatch itself never fails.
func Dispatch[K comparable, R any](ctx context.Context, ids []K, limit int, op Operation[K, R]) Outcomes[K, R] {
	unique := dedupe(ids)
	results := make([]Outcome[R], len(unique))

	// Plain Group, not WithContext: one failure must not cancel the rest.
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, id := range unique {
		g.Go(func() error {
			results[i] = invoke(ctx, id, op)
			return nil
		})
	}
	_ = g.Wait()

	outcomes := make(Outcomes[K, R], len(unique))
	for i, id := range unique {
		outcomes[id] = results[i]
	}
	return outcomes
}

func invoke[K comparable, R any](ctx context.Context, id K, op Operation[K, R]) (out Outcome[R]) {
	defer func() {
		if r := recover(); r != nil {
			out = Outcome[R]{Err: errors.Newf("panic while processing %v: %v", id, r)}
		}
	}()
	value, err := op(ctx, id)
	return Outcome[R]{Value: value, Err: err}
}

// dedupe drops repeated IDs, keeping first-seen order.
func dedupe[K comparable](ids []K) []K {
	seen := make(map[K]struct{}, len(ids))
	unique := make([]K, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	return unique
}

// Package planner implements the dependency planner/executor (C6): the
// core algorithm that takes one block's ordered batch of SinkActions,
// resolves their dependency graph against in-memory and committed store
// state, synthesizes minimal fallbacks for actions that arrive
// out-of-order, and executes everything inside the caller's transaction.
package planner

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/entities-sink/ksink/internal/sinkaction"
	"github.com/entities-sink/ksink/internal/sinkerr"
	"github.com/entities-sink/ksink/internal/store"
)

// maxFallbackRounds bounds Phase 2 (spec.md §4.6 "fixed iteration cap").
const maxFallbackRounds = 15

var tracer = otel.Tracer("github.com/entities-sink/ksink/planner")

// Planner executes one batch of SinkActions at a time; it holds no
// state across calls to Execute.
type Planner struct{}

// New returns a ready Planner.
func New() *Planner { return &Planner{} }

type waitItem struct {
	action  sinkaction.SinkAction
	missing map[sinkaction.SinkAction]bool
}

// Execute runs the two-phase algorithm over batch inside tx. spaceQueries
// controls whether schema-projection side effects (per-space type/
// attribute tables) are applied, per spec.md §4.6/§4.7.
func (p *Planner) Execute(ctx context.Context, tx store.Tx, batch []sinkaction.SinkAction, spaceQueries bool) error {
	ctx, span := tracer.Start(ctx, "planner.Execute", trace.WithAttributes(attribute.Int("batch_size", len(batch))))
	defer span.End()

	satisfied := make(map[sinkaction.SinkAction]bool)
	var waiting []*waitItem
	var toPropagate []sinkaction.SinkAction

	execute := func(a sinkaction.SinkAction) error {
		if err := dispatch(ctx, tx, a, spaceQueries); err != nil {
			return fmt.Errorf("planner: execute %s: %w", a.Describe(), err)
		}
		dep := a.AsDep()
		satisfied[dep] = true
		toPropagate = append(toPropagate, dep)
		return nil
	}

	drainPropagation := func() error {
		for len(toPropagate) > 0 {
			dep := toPropagate[0]
			toPropagate = toPropagate[1:]

			var stillWaiting []*waitItem
			for _, wi := range waiting {
				if wi.missing[dep] {
					delete(wi.missing, dep)
				}
				if len(wi.missing) == 0 {
					if err := execute(wi.action); err != nil {
						return err
					}
					continue
				}
				stillWaiting = append(stillWaiting, wi)
			}
			waiting = stillWaiting
		}
		return nil
	}

	// Fire-and-forget prefix: a leading run of General actions the batch
	// itself declares zero static dependencies for can be dispatched
	// concurrently (spec.md §5's "batched execute-in-chunks path"),
	// since none of them can possibly depend on each other or on
	// anything later in the batch.
	prefixLen := 0
	for prefixLen < len(batch) {
		a := batch[prefixLen]
		if a.Category() != sinkaction.CategoryGeneral || len(a.Dependencies()) != 0 {
			break
		}
		prefixLen++
	}
	if prefixLen > 0 {
		prefix := batch[:prefixLen]
		g, gctx := errgroup.WithContext(ctx)
		for _, a := range prefix {
			a := a
			g.Go(func() error { return dispatch(gctx, tx, a, spaceQueries) })
		}
		if err := g.Wait(); err != nil {
			return fmt.Errorf("planner: fire-and-forget prefix: %w", err)
		}
		for _, a := range prefix {
			satisfied[a.AsDep()] = true
		}
		batch = batch[prefixLen:]
	}

	// Phase 1: in-order pass over the remainder of the batch.
	for _, a := range batch {
		missing, err := missingDeps(ctx, tx, satisfied, a.Dependencies())
		if err != nil {
			return err
		}
		if len(missing) == 0 {
			if err := execute(a); err != nil {
				return err
			}
			if err := drainPropagation(); err != nil {
				return err
			}
			continue
		}
		waiting = append(waiting, &waitItem{action: a, missing: toSet(missing)})
	}

	if len(waiting) == 0 {
		return nil
	}

	// Phase 2: bounded fallback pass.
	for round := 0; round < maxFallbackRounds && len(waiting) > 0; round++ {
		var stillWaiting []*waitItem
		for _, wi := range waiting {
			if wi.action.HasFallback() {
				for _, fb := range wi.action.Fallback() {
					fbDep := fb.AsDep()
					if satisfied[fbDep] {
						continue
					}
					ok, err := probeDB(ctx, tx, fbDep)
					if err != nil {
						return err
					}
					if ok {
						satisfied[fbDep] = true
						continue
					}
					if err := dispatch(ctx, tx, fb, spaceQueries); err != nil {
						return fmt.Errorf("planner: fallback %s for %s: %w", fb.Describe(), wi.action.Describe(), err)
					}
					satisfied[fbDep] = true
				}
			}

			missing, err := missingDeps(ctx, tx, satisfied, wi.action.Dependencies())
			if err != nil {
				return err
			}
			if len(missing) == 0 {
				if err := execute(wi.action); err != nil {
					return err
				}
				continue
			}
			wi.missing = toSet(missing)
			stillWaiting = append(stillWaiting, wi)
		}
		waiting = stillWaiting
		// Propagation within phase 2 is handled implicitly: a dep this
		// round's execute() satisfies is visible to every other waiter's
		// missingDeps recheck later in the same round, and to all waiters
		// again next round.
		toPropagate = nil
	}

	if len(waiting) > 0 {
		return unresolvedDependenciesError(waiting)
	}
	return nil
}

func missingDeps(ctx context.Context, tx store.Tx, satisfied map[sinkaction.SinkAction]bool, deps []sinkaction.SinkAction) ([]sinkaction.SinkAction, error) {
	var missing []sinkaction.SinkAction
	for _, d := range deps {
		dep := d.AsDep()
		if satisfied[dep] {
			continue
		}
		ok, err := probeDB(ctx, tx, dep)
		if err != nil {
			return nil, err
		}
		if ok {
			satisfied[dep] = true
			continue
		}
		missing = append(missing, dep)
	}
	return missing, nil
}

func toSet(deps []sinkaction.SinkAction) map[sinkaction.SinkAction]bool {
	m := make(map[sinkaction.SinkAction]bool, len(deps))
	for _, d := range deps {
		m[d] = true
	}
	return m
}

func unresolvedDependenciesError(waiting []*waitItem) error {
	var b strings.Builder
	for i, wi := range waiting {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(wi.action.Describe())
		b.WriteString(" missing [")
		first := true
		for dep := range wi.missing {
			if !first {
				b.WriteString(", ")
			}
			b.WriteString(dep.Describe())
			first = false
		}
		b.WriteString("]")
	}
	return fmt.Errorf("%w: %s", sinkerr.ErrUnresolvedDependencies, b.String())
}

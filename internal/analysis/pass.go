// Package analysis runs one batch over a snapshot: every function is resolved and
// validated independently, then collected in declaration order.
package analysis

import (
	"context"
	"runtime"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"nativeabi/internal/constmeta"
	"nativeabi/internal/metadata"
	"nativeabi/internal/validation"
)

type Options struct {
	// Workers bounds concurrent functions. Zero means GOMAXPROCS.
	Workers int
}

// FunctionResult is the outcome for one function of the snapshot.
type FunctionResult struct {
	Method      *metadata.Method
	Metadata    constmeta.FunctionMetadata
	Profile     validation.Profile
	Diagnostics []validation.Diagnostic
}

type Result struct {
	Functions []FunctionResult
}

// Diagnostics returns all findings, function by function in declaration order.
func (r *Result) Diagnostics() []validation.Diagnostic {
	var all []validation.Diagnostic
	for _, function := range r.Functions {
		all = append(all, function.Diagnostics...)
	}
	return all
}

// Exported returns the results of natively-exported functions.
func (r *Result) Exported() []FunctionResult {
	exported := make([]FunctionResult, 0, len(r.Functions))
	for _, function := range r.Functions {
		if function.Method.Exported {
			exported = append(exported, function)
		}
	}
	return exported
}

// Run analyzes every function of snapshot. A cancelled ctx stops the pass between
// functions and no partial result is returned.
func Run(ctx context.Context, snapshot *metadata.Snapshot, opts Options, logger zerolog.Logger) (*Result, error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]FunctionResult, len(snapshot.Functions))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workers)

	for i, method := range snapshot.Functions {
		if groupCtx.Err() != nil {
			break
		}

		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}

			resolved := constmeta.ResolveMethod(method)
			profile := validation.ProfileFor(method)
			diagnostics := validation.Validate(method, resolved, profile)

			results[i] = FunctionResult{
				Method:      method,
				Metadata:    resolved,
				Profile:     profile,
				Diagnostics: diagnostics,
			}

			logger.Debug().
				Str("function", method.Name).
				Stringer("profile", profile).
				Int("diagnostics", len(diagnostics)).
				Msg("function analyzed")
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &Result{Functions: results}, nil
}

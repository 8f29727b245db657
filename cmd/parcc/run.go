package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sort"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"surge/internal/coreir"
	"surge/internal/parc"
	"surge/internal/parcconfig"
	"surge/internal/trace"
	"surge/internal/types"
)

// runResult is one file's outcome, collected so results print in a stable,
// file-sorted order regardless of which goroutine finished first.
type runResult struct {
	Path string
	Err  error
}

var runCmd = &cobra.Command{
	Use:   "run <snapshot-file>...",
	Short: "Run PARC over one or more Core IR module snapshots",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		newtypesPath, _ := cmd.Flags().GetString("newtypes")
		jobs, _ := cmd.Flags().GetInt("jobs")
		wantTrace, _ := cmd.Flags().GetBool("trace")
		quiet, _ := cmd.Flags().GetBool("quiet")
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		registry, err := parcconfig.LoadNewtypes(newtypesPath)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		if wantTrace {
			ctx = trace.WithTracer(ctx, newStreamTracer(cmd.ErrOrStderr()))
		}

		if jobs <= 0 {
			jobs = runtime.GOMAXPROCS(0)
		}

		files := make([]string, len(args))
		copy(files, args)
		sort.Strings(files)

		events := make(chan fileEvent, len(files))
		var prog progressRunner
		if !quiet && isTerminal(os.Stdout) {
			prog = startProgress(files, events)
		}

		results := make([]runResult, len(files))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(min(jobs, len(files)))

		for i, path := range files {
			g.Go(func(i int, path string) func() error {
				return func() error {
					select {
					case <-gctx.Done():
						return gctx.Err()
					default:
					}
					events <- fileEvent{Path: path, Status: "running"}
					err := runOne(gctx, path, registry, dryRun)
					results[i] = runResult{Path: path, Err: err}
					status := "done"
					if err != nil {
						status = "error"
					}
					events <- fileEvent{Path: path, Status: status}
					return nil
				}
			}(i, path))
		}
		_ = g.Wait()
		close(events)
		if prog != nil {
			prog.wait()
		}

		return reportResults(cmd, results)
	},
}

func runOne(ctx context.Context, path string, registry coreir.Newtypes, dryRun bool) error {
	span := trace.Begin(trace.FromContext(ctx), trace.ScopeModule, "parcc.run", trace.CurrentSpan(ctx).SpanID)
	defer span.End(path)

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	snap, err := coreir.DecodeSnapshot(raw)
	if err != nil {
		return fmt.Errorf("%s: decode snapshot: %w", path, err)
	}
	mod := coreir.ModuleFromSnapshot(snap)

	classifier := &parc.Classifier{
		Interner: types.NewInterner(),
		Registry: registry,
	}
	if dryRun {
		// spec.md §8's "Disabled idempotence" property, exercised end-to-end:
		// skip the pass entirely and report the module unchanged, the same
		// outcome PARC_ENABLE being unset already produces.
		return nil
	}
	if err := parc.ParcModuleNamed(classifier, mod); err != nil {
		return err
	}
	return nil
}

func reportResults(cmd *cobra.Command, results []runResult) error {
	var failed int
	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", r.Path, r.Err)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", r.Path)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) failed", failed, len(results))
	}
	return nil
}

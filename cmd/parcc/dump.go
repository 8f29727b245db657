package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"surge/internal/coreir"
	"surge/internal/parc"
	"surge/internal/parcconfig"
	"surge/internal/trace"
	"surge/internal/types"
)

// dumpCmd runs PARC over a single snapshot and prints the resulting tree, or
// re-emits it as a snapshot with --emit-snapshot — the fixture-pinning half
// of the Snapshot doc comment in internal/coreir/snapshot.go.
var dumpCmd = &cobra.Command{
	Use:   "dump <snapshot-file>",
	Short: "Run PARC over a snapshot and print (or re-emit) the result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		newtypesPath, _ := cmd.Flags().GetString("newtypes")
		emitSnapshot, _ := cmd.Flags().GetBool("emit-snapshot")
		wantTrace, _ := cmd.Flags().GetBool("trace")

		registry, err := parcconfig.LoadNewtypes(newtypesPath)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if wantTrace {
			ctx = trace.WithTracer(ctx, newStreamTracer(cmd.ErrOrStderr()))
		}

		path := args[0]
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
		if err := parc.ParcModuleNamed(classifier, mod); err != nil {
			return err
		}

		if emitSnapshot {
			out, err := coreir.EncodeSnapshot(mod)
			if err != nil {
				return fmt.Errorf("%s: encode snapshot: %w", path, err)
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		}

		return coreir.DumpTraced(ctx, cmd.OutOrStdout(), mod)
	},
}

func init() {
	dumpCmd.Flags().Bool("emit-snapshot", false, "write the post-PARC module back out as a msgpack snapshot instead of printing it")
}

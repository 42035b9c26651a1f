package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"db-refcheck/internal/engine"
	"db-refcheck/internal/reference"
	"db-refcheck/internal/trigger"
)

var (
	applyCleanup bool
	selectOnly   bool
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Generate (or apply) the statements fixing missing references",
	Long: `Runs the check and prints, for every reference with missing values, the
DELETE or UPDATE statements that remove the dangling rows. References whose fix
action is unknown are skipped. With --apply the statements are executed, one
transaction per reference.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := prepare(ctx)
		if err != nil {
			return err
		}

		results, _ := runChecks(cmd, a)
		det := a.detector()

		var total int64
		for _, m := range results {
			if m.Failed() || m.Clean() {
				continue
			}
			if selectOnly {
				printStatements(m, engine.SelectStatements(Dialect, m))
				continue
			}
			stmts := engine.CleanupStatements(Dialect, m)
			if len(stmts) == 0 {
				log.Debugf("%s: no cleanup for fix action %s", m.Reference, m.Reference.FixAction)
				continue
			}
			if !applyCleanup {
				printStatements(m, stmts)
				continue
			}

			acc := trigger.NewTxAccumulator()
			for _, s := range stmts {
				acc.Record(s)
			}
			n, err := det.ExecuteCleanup(ctx, m)
			if err != nil {
				acc.Rollback()
				return err
			}
			total += n
			if err := trigger.Apply(ctx, a.catalog, acc.Commit()); err != nil {
				return err
			}
		}

		if applyCleanup {
			log.Infof("Cleanup done! %d rows changed", total)
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(cleanupCmd)

	cleanupCmd.Flags().BoolVar(&applyCleanup, "apply", false, "execute the cleanup statements")
	cleanupCmd.Flags().BoolVar(&selectOnly, "select", false, "print SELECT statements listing the offending rows instead")
	cleanupCmd.Flags().BoolVar(&noProgress, "no-progress", false, "disable the progress bar")
}

func printStatements(m *engine.MissingReferences, stmts []string) {
	fmt.Printf("-- %s (%s)\n", m.Reference, fixLabel(m.Reference.FixAction))
	for _, s := range stmts {
		fmt.Printf("%s;\n", s)
	}
}

func fixLabel(f reference.FixAction) string {
	if f == reference.FixUnknown {
		return "review manually"
	}
	return string(f)
}

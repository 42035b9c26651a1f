package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/gosuri/uiprogress"
	"github.com/spf13/cobra"

	"db-refcheck/internal/engine"
)

var (
	countRows   bool
	showHidden  bool
	showQueries bool
	noProgress  bool
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Expand the reference rules and report missing references",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := prepare(ctx)
		if err != nil {
			return err
		}

		results, elapsed := runChecks(cmd, a)
		det := a.detector()
		if countRows {
			det.CountAll(ctx, results)
		}

		printSummary(results, elapsed)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(checkCmd)

	checkCmd.Flags().BoolVar(&countRows, "count", false, "count the rows holding each missing value")
	checkCmd.Flags().BoolVar(&showHidden, "hidden", false, "include hidden references in the report")
	checkCmd.Flags().BoolVar(&showQueries, "sql", false, "print the SELECT statements listing offending rows")
	checkCmd.Flags().BoolVar(&noProgress, "no-progress", false, "disable the progress bar")
}

// runChecks runs every checkable reference behind a progress bar.
func runChecks(cmd *cobra.Command, a *audit) ([]*engine.MissingReferences, time.Duration) {
	refs := a.refs.Checkable()
	log.Infof("Checking %d references...", len(refs))
	start := time.Now()

	var onProgress func()
	if !noProgress && len(refs) > 0 {
		uiprogress.Start()
		bar := uiprogress.AddBar(len(refs)).AppendCompleted().PrependElapsed()
		bar.PrependFunc(func(b *uiprogress.Bar) string {
			return "Checking: "
		})
		onProgress = func() { bar.Incr() }
	}

	results := a.detector().Check(cmd.Context(), refs, onProgress)

	if onProgress != nil {
		uiprogress.Stop()
	}
	return results, time.Since(start)
}

func printSummary(results []*engine.MissingReferences, elapsed time.Duration) {
	fmt.Println("\n📊 Missing References:")
	missing, failed, shown := 0, 0, 0
	for _, m := range results {
		if m.Reference.Hidden && !showHidden {
			continue
		}
		shown++
		switch {
		case m.Failed():
			failed++
			fmt.Printf("[!] %s\n    └ Error checking this reference: %v\n", m, m.Err)
		case len(m.Values) > 0:
			missing += len(m.Values)
			rows := ""
			if m.AffectedRows >= 0 {
				rows = fmt.Sprintf(", %d rows", m.AffectedRows)
			}
			fmt.Printf("[✗] %s : %d missing%s (fix: %s)\n", m, len(m.Values), rows, m.Reference.FixAction)
			fmt.Printf("    └ %s\n", formatValues(m.Values, 10))
			if showQueries {
				for _, q := range engine.SelectStatements(Dialect, m) {
					fmt.Printf("    %s;\n", q)
				}
			}
		}
	}
	fmt.Println("--------------------------------------------------")
	fmt.Printf("References checked: %d, with missing values: %d values, errors: %d\n", shown, missing, failed)
	log.Infof("Check done! Time Elapsed: %s", elapsed)
}

func formatValues(values [][]any, limit int) string {
	var parts []string
	for i, t := range values {
		if i == limit {
			parts = append(parts, fmt.Sprintf("... %d more", len(values)-limit))
			break
		}
		vals := make([]string, len(t))
		for j, v := range t {
			if v == nil {
				vals[j] = "NULL"
			} else {
				vals[j] = fmt.Sprint(v)
			}
		}
		parts = append(parts, "("+strings.Join(vals, ", ")+")")
	}
	return strings.Join(parts, " ")
}

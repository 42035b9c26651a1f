package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"db-refcheck/internal/dialect"
)

var (
	listAll       bool
	renderDialect string
)

var referencesCmd = &cobra.Command{
	Use:   "references",
	Short: "Expand the reference rules and print each reference with its check SQL",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := prepare(cmd.Context())
		if err != nil {
			return err
		}

		d := Dialect
		if renderDialect != "" {
			d = dialect.Get(dialect.Parse(renderDialect))
		}

		shown := 0
		for _, r := range a.refs.Items() {
			if !listAll && (r.Hidden || r.Raw) {
				continue
			}
			shown++
			if !r.Checkable() {
				fmt.Printf("- %s\n", r)
				continue
			}
			fmt.Printf("- %s (fix: %s)\n  %s\n", r, r.FixAction, r.CheckSQL(d))
		}
		log.Infof("%d references listed (%d expanded)", shown, a.refs.Len())
		return nil
	},
}

func init() {
	RootCmd.AddCommand(referencesCmd)

	referencesCmd.Flags().BoolVar(&listAll, "all", false, "include hidden and raw references")
	referencesCmd.Flags().StringVar(&renderDialect, "render", "", "render the SQL for another dialect (mysql, postgresql, oracle, sqlserver, ...)")
}

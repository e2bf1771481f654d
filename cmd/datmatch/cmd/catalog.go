package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog [digest]...",
	Short: "List catalog entries",
	Long: "List all entries of the loaded catalogs, or only those whose digest " +
		"starts with one of the given digests or prefixes.",
	RunE: runCatalog,
}

func init() {
	rootCmd.AddCommand(catalogCmd)
}

func runCatalog(cmd *cobra.Command, args []string) error {
	prefixes := args
	if len(prefixes) == 0 {
		prefixes = []string{""}
	}

	idx, err := loadIndex(cmd, newLogger(cmd.ErrOrStderr()))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	count := 0
	for _, prefix := range prefixes {
		for digest, entries := range idx.List(prefix) {
			for _, e := range entries {
				size := "-"
				if e.HasSize {
					size = fmt.Sprint(e.Size)
				}
				fmt.Fprintf(out, "%s\t%s\t%s\t%s\n", digest, size, e.RomName, e.CatalogName)
				count++
			}
		}
	}

	if count == 0 {
		fmt.Fprintln(out, "(no entries)")
	}

	return nil
}

package cmd

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/aweris/datmatch"
)

var hashCmd = &cobra.Command{
	Use:   "hash <file>...",
	Short: "Print the content digests of files",
	Long:  "Print the MD5 of each file, followed by the headerless MD5 for iNES dumps.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runHash,
}

func init() {
	rootCmd.AddCommand(hashCmd)
}

func runHash(cmd *cobra.Command, args []string) error {
	hasher := datmatch.NewHasher(afero.NewOsFs(), datmatch.DefaultChunkSize, datmatch.INESHeader)
	out := cmd.OutOrStdout()

	failed := 0
	for _, path := range args {
		digests, err := hasher.Hash(path)
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), err)
			failed++
			continue
		}
		fmt.Fprintf(out, "%s\t%s\n", digests[0], path)
		for _, d := range digests[1:] {
			fmt.Fprintf(out, "%s\t%s (headerless)\n", d, path)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files could not be read", failed, len(args))
	}
	return nil
}

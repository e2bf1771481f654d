package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aweris/datmatch"
)

var matchCmd = &cobra.Command{
	Use:   "match <dir>...",
	Short: "Match files against the catalogs",
	Long: "Hash every file in the given directories, look it up in the catalogs " +
		"and report its canonical name. Files are only renamed with --rename.",
	Args: cobra.MinimumNArgs(1),
	RunE: runMatch,
}

func init() {
	rootCmd.AddCommand(matchCmd)

	f := matchCmd.Flags()
	f.Bool("rename", false, "rename files to their canonical name")
	f.Bool("extract", false, "extract matched files from zip archives (with --rename)")
	f.Bool("no-archives", false, "hash zip files as plain files")
	f.Bool("ignore-case", false, "compare file names with canonical names case-insensitively")
	f.Bool("no-header-skip", false, "do not compute headerless digests for iNES dumps")
	f.IntP("jobs", "j", datmatch.DefaultConcurrency, "number of files hashed in parallel")
	f.String("format", datmatch.FormatText, "summary format: text, json or yaml")

	viper.BindPFlag("rename", f.Lookup("rename"))
	viper.BindPFlag("extract", f.Lookup("extract"))
	viper.BindPFlag("no_archives", f.Lookup("no-archives"))
	viper.BindPFlag("ignore_case", f.Lookup("ignore-case"))
	viper.BindPFlag("no_header_skip", f.Lookup("no-header-skip"))
	viper.BindPFlag("jobs", f.Lookup("jobs"))
	viper.BindPFlag("format", f.Lookup("format"))
}

func runMatch(cmd *cobra.Command, args []string) error {
	format := viper.GetString("format")
	switch format {
	case datmatch.FormatText, datmatch.FormatJSON, datmatch.FormatYAML:
	default:
		return fmt.Errorf("unknown format %q", format)
	}

	log := newLogger(cmd.ErrOrStderr())
	idx, err := loadIndex(cmd, log)
	if err != nil {
		return err
	}

	engine := datmatch.New(idx,
		datmatch.WithLogger(log),
		datmatch.WithRename(viper.GetBool("rename")),
		datmatch.WithExtract(viper.GetBool("extract")),
		datmatch.WithArchives(!viper.GetBool("no_archives")),
		datmatch.WithIgnoreCase(viper.GetBool("ignore_case")),
		datmatch.WithHeaderSkip(!viper.GetBool("no_header_skip")),
		datmatch.WithConcurrency(viper.GetInt("jobs")),
	)

	out := cmd.OutOrStdout()
	text := format == datmatch.FormatText
	for _, dir := range args {
		if text {
			fmt.Fprintf(out, "\nProcessing rom dir: %s\n", dir)
		}
		results, err := engine.ProcessDir(cmd.Context(), dir)
		if err != nil {
			var dirErr *datmatch.DirectoryAccessError
			if errors.As(err, &dirErr) {
				log.WithError(err).Error("skipping directory")
				continue
			}
			return err
		}
		if !text {
			continue
		}
		for _, res := range results {
			if err := datmatch.WriteResult(out, res); err != nil {
				return err
			}
		}
	}

	return datmatch.WriteSummary(out, engine.Stats(), format)
}

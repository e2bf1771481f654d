package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aweris/datmatch"
)

var rootCmd = &cobra.Command{
	Use:   "datmatch",
	Short: "Identify files by content against DAT catalogs",
	Long: "Identify files by the MD5 of their content, look them up in a set of " +
		"DAT catalogs and optionally rename them to their canonical names.",
	SilenceUsage: true,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ~/.config/datmatch/config.yaml)")
	pf.String("dat-dir", "", "directory holding the catalog files (env: DATMATCH_DAT_DIR or DATDIR)")
	pf.String("pattern", datmatch.DefaultCatalogPattern, "pattern selecting catalog files in the dat dir")
	pf.BoolP("verbose", "v", false, "be extra verbose")

	viper.BindPFlag("dat_dir", pf.Lookup("dat-dir"))
	viper.BindPFlag("pattern", pf.Lookup("pattern"))
	viper.BindPFlag("verbose", pf.Lookup("verbose"))
}

func initConfig() {
	if cfg := rootCmd.PersistentFlags().Lookup("config").Value.String(); cfg != "" {
		viper.SetConfigFile(cfg)
	} else {
		viper.AddConfigPath(configDir())
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("DATMATCH")
	viper.AutomaticEnv()
	viper.BindEnv("dat_dir", "DATMATCH_DAT_DIR", "DATDIR")
	viper.SetDefault("pattern", datmatch.DefaultCatalogPattern)

	viper.ReadInConfig()
}

func configDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "datmatch")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "datmatch")
	}
	return ".datmatch"
}

func newLogger(w io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	log.SetLevel(logrus.WarnLevel)
	if viper.GetBool("verbose") {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}

// loadIndex builds the catalog index from the configured dat dir. Failing
// to read the dat dir is fatal for every command.
func loadIndex(cmd *cobra.Command, log logrus.FieldLogger) (*datmatch.Index, error) {
	datDir := viper.GetString("dat_dir")
	if datDir == "" {
		return nil, fmt.Errorf("%w: use --dat-dir or set DATDIR", datmatch.ErrNoCatalogSource)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Loading dat files from: %s\n", datDir)
	idx, sum, err := datmatch.LoadCatalogDir(afero.NewOsFs(), datDir, viper.GetString("pattern"), log)
	if err != nil {
		return nil, fmt.Errorf("load catalogs: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Loaded %d dat files and %d entries\n", sum.Documents, idx.Len())
	if len(sum.Errors) > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "Skipped %d unreadable dat files\n", len(sum.Errors))
	}
	return idx, nil
}

package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"plate-stabilizer/internal/config"
	"plate-stabilizer/internal/logger"
)

var (
	configPath string

	cfg *config.Config
	log zerolog.Logger

	replayInput  string
	replayOutput string

	checkPattern string
	checkCustom  string
	checkMulti   bool

	rootCmd = &cobra.Command{
		Use:           "plate-stabilizer",
		Short:         "Turns per-frame plate detections into a deduplicated list of stable plates",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(configPath)
			if err != nil {
				return err
			}
			cfg = loaded
			log = logger.New(cfg.Log.Level, cfg.Log.Pretty)
			return nil
		},
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Accept detector frames over HTTP and stream stable plates to clients",
		Args:  cobra.NoArgs,
		RunE:  runServe, // serve.go
	}

	replayCmd = &cobra.Command{
		Use:   "replay",
		Short: "Run recorded frames (JSON lines) through the pipeline and export the result",
		Args:  cobra.NoArgs,
		RunE:  runReplay, // replay.go
	}

	checkCmd = &cobra.Command{
		Use:   "check [text]",
		Short: "Show how a plate text fares against every filter pattern",
		Args:  cobra.ExactArgs(1),
		RunE:  runCheck, // check.go
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a config file (yaml, json or toml)")

	replayCmd.Flags().StringVarP(&replayInput, "input", "i", "-", "frames file, - for stdin")
	replayCmd.Flags().StringVarP(&replayOutput, "out", "o", "-", "export file, - for stdout")

	checkCmd.Flags().StringVar(&checkPattern, "pattern", "", "pattern to validate against (default: configured pattern)")
	checkCmd.Flags().StringVar(&checkCustom, "custom", "", "custom pattern expression")
	checkCmd.Flags().BoolVar(&checkMulti, "multi", false, "accept a match against any built-in pattern")

	rootCmd.AddCommand(serveCmd, replayCmd, checkCmd)
}

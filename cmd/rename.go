package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/denysvitali/audio-renamer/pkg/config"
	"github.com/denysvitali/audio-renamer/pkg/renamer"
	"github.com/denysvitali/audio-renamer/pkg/telemetry"
)

// renameCmd represents the rename command
var renameCmd = &cobra.Command{
	Use:   "rename [folder]",
	Short: "Rename matching files to <prefix><n><extension>",
	Long: `Scan the folder once, keep the files whose name ends with the extension filter
and rename them one by one. The first filesystem error aborts the run; files
renamed before it stay renamed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRename,
}

// planCmd represents the plan command
var planCmd = &cobra.Command{
	Use:   "plan [folder]",
	Short: "Print the rename plan without touching any file",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPlan,
}

func init() {
	rootCmd.AddCommand(renameCmd)
	rootCmd.AddCommand(planCmd)

	// Shared by rename, plan and serve
	flags := rootCmd.PersistentFlags()
	flags.StringP("folder", "f", config.DefaultFolder, "Folder holding the files to rename")
	flags.StringP("extension", "e", config.DefaultExtension, "Suffix filter, matched case-sensitively")
	flags.StringP("prefix", "p", config.DefaultPrefix, "Prefix of the generated names")
	flags.String("order", string(renamer.OrderListing), "Numbering order: listing (as the filesystem returns entries) or name")
	flags.Bool("preflight", true, "Refuse to start when a target name is already taken")

	_ = viper.BindPFlag("rename.folder", flags.Lookup("folder"))
	_ = viper.BindPFlag("rename.extension", flags.Lookup("extension"))
	_ = viper.BindPFlag("rename.prefix", flags.Lookup("prefix"))
	_ = viper.BindPFlag("rename.order", flags.Lookup("order"))
	_ = viper.BindPFlag("rename.preflight", flags.Lookup("preflight"))
}

// loadRenamer loads the configuration and builds a renamer printing to out.
// A positional folder argument wins over the configured one.
func loadRenamer(args []string, out io.Writer) (*config.Config, *renamer.Renamer, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if len(args) == 1 {
		cfg.Rename.Folder = args[0]
	}

	opts, err := cfg.Rename.RenamerOptions()
	if err != nil {
		return nil, nil, err
	}
	opts = append(opts, renamer.WithOutput(out))

	return cfg, renamer.New(logger, opts...), nil
}

func runRename(cmd *cobra.Command, args []string) error {
	cfg, r, err := loadRenamer(args, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	if cfg.Telemetry.Enabled {
		cleanup, err := telemetry.Initialize(cfg.Telemetry, logger)
		if err != nil {
			logger.Warnf("Failed to initialize telemetry: %v", err)
		} else {
			defer cleanup()
		}
	}

	logger.Debugf("Renaming '%s' files in %s with prefix '%s'", cfg.Rename.Extension, cfg.Rename.Folder, cfg.Rename.Prefix)

	result, err := r.Rename(cmd.Context(), cfg.Rename.Folder, cfg.Rename.Extension, cfg.Rename.Prefix)
	if err != nil {
		if len(result.Applied) > 0 {
			logger.Warnf("Stopped after renaming %d file(s); they were not reverted", len(result.Applied))
		}
		return err
	}

	logger.Infof("Renamed %d file(s) in %s", len(result.Applied), cfg.Rename.Folder)
	return nil
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg, r, err := loadRenamer(args, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	plan, err := r.BuildPlan(cmd.Context(), cfg.Rename.Folder, cfg.Rename.Extension, cfg.Rename.Prefix)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	plan.Log(out)

	if conflicts := plan.Conflicts(); len(conflicts) > 0 {
		fmt.Fprintln(out, "Conflicts:")
		for _, c := range conflicts {
			fmt.Fprintf(out, "  - %s -> %s: %s\n", c.Step.From, c.Step.To, c.Reason)
		}
		return &renamer.ConflictError{Folder: cfg.Rename.Folder, Conflicts: conflicts}
	}
	return nil
}

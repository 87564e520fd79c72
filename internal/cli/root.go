package cli

import (
	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/keymoments/internal/config"
	"github.com/nguyentantai21042004/keymoments/internal/logger"
)

// Dependencies are filled in by the root command before any subcommand runs.
type Dependencies struct {
	ConfigPath string
	Config     *config.Config
	Logger     logger.Logger
}

func NewRootCmd(deps *Dependencies) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "keymoments <video-id>",
		Short: "Extract and render the key moments of a podcast video",
		Long: "Downloads a video, transcribes it, asks a language model for the guest's best " +
			"moments and renders each one to its own clip.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOrDefault(deps.ConfigPath)
			if err != nil {
				return err
			}
			deps.Config = cfg
			deps.Logger = logger.NewWithWriter(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJob(cmd.Context(), deps, args[0])
		},
	}

	rootCmd.PersistentFlags().StringVarP(&deps.ConfigPath, "config", "c", "config.yaml", "path to the YAML config file")

	rootCmd.AddCommand(NewListCmd(deps))
	rootCmd.AddCommand(NewDoctorCmd(deps))

	return rootCmd
}

// Package cli provides the command-line interface for tradelens.
package cli

import (
	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"tradelens/internal/config"
	"tradelens/internal/logging"
	"tradelens/internal/store"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2025-06-01"
)

// App holds the application dependencies.
type App struct {
	Config    *config.Config
	Logger    zerolog.Logger
	Store     store.DataStore
	ConfigDir string
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger, configDir string) *cobra.Command {
	app := &App{
		Config:    cfg,
		Logger:    logger,
		ConfigDir: configDir,
	}

	// Initialize SQLite store
	dataStore, err := store.NewSQLiteStore(cfg.Data.DBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to initialize store, some features may be unavailable")
	} else {
		app.Store = dataStore
		logger.Debug().Str("path", cfg.Data.DBPath).Msg("SQLite store initialized")
	}

	rootCmd := &cobra.Command{
		Use:   "tradelens",
		Short: "Tradelens - trade P&L reconciliation and analytics CLI",
		Long: `Tradelens reconciles broker fill exports into matched round trips and
reports realized P&L across days, weeks, and intraday sessions.

Drop your broker's trade CSVs into the source directory and run
'tradelens analyze'. Results persist locally, so reports stay available
without reprocessing.

Use 'tradelens help <command>' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Handle debug flag
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			if !app.Config.UI.Color {
				SetColorEnabled(false)
				color.NoColor = true
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/tradelens)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	// Add all command groups
	addAnalyzeCommands(rootCmd, app)
	addReportCommands(rootCmd, app)
	addCoreCommands(rootCmd, app)

	return rootCmd
}

// addCoreCommands adds core utility commands.
func addCoreCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("Tradelens v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and manage application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			return showConfig(output, app.Config)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": config.ConfigPath(app.ConfigDir)})
			} else {
				output.Println(config.ConfigPath(app.ConfigDir))
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("✓ Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) error {
	output.Bold("Data")
	output.Printf("  Source Dir:      %s\n", cfg.Data.SourceDir)
	output.Printf("  Database:        %s\n", cfg.Data.DBPath)
	output.Println()

	output.Bold("Analysis")
	output.Printf("  Workers:         %d\n", cfg.Analysis.Workers)
	output.Println()

	output.Bold("Logging")
	output.Printf("  Level:           %s\n", cfg.Logging.Level)
	output.Printf("  File Enabled:    %v\n", cfg.Logging.FileEnabled)
	output.Printf("  File Path:       %s\n", cfg.Logging.FilePath)
	output.Printf("  Max Size:        %d MB\n", cfg.Logging.MaxSizeMB)
	output.Printf("  Max Backups:     %d\n", cfg.Logging.MaxBackups)
	output.Printf("  Max Age:         %d days\n", cfg.Logging.MaxAgeDays)
	output.Println()

	output.Bold("UI")
	output.Printf("  Color:           %v\n", cfg.UI.Color)

	return nil
}

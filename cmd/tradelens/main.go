package main

import (
	"fmt"
	"os"
	"strings"

	"tradelens/internal/cli"
	"tradelens/internal/config"
	"tradelens/internal/logging"
)

func main() {
	configDir := configDirFromArgs(os.Args[1:])
	if configDir == "" {
		configDir = config.DefaultConfigDir()
	}

	cfg, err := config.Load(configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLoggerWithConfig(logging.LogConfig{
		Level:      cfg.Logging.Level,
		Console:    true,
		File:       cfg.Logging.FileEnabled,
		FilePath:   cfg.Logging.FilePath,
		MaxSize:    cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAge:     cfg.Logging.MaxAgeDays,
	})

	rootCmd := cli.NewRootCmd(cfg, logger, configDir)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// configDirFromArgs pre-scans for --config before cobra parses anything,
// since the config file has to load before the command tree is built.
func configDirFromArgs(args []string) string {
	for i, arg := range args {
		if arg == "--config" && i+1 < len(args) {
			return args[i+1]
		}
		if strings.HasPrefix(arg, "--config=") {
			return strings.TrimPrefix(arg, "--config=")
		}
	}
	return ""
}

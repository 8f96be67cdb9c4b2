package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Tradelens Configuration

[data]
# Directory watched for broker trade CSV exports
source_dir = "~/trades"
# SQLite database location
db_path = "~/.config/tradelens/tradelens.db"

[analysis]
# Worker goroutines for per-date aggregation; 0 or 1 runs sequentially
workers = 0

[logging]
# Log level: debug, info, warn, error
level = "info"
# Also write logs to a rotating file
file_enabled = true
file_path = "~/.config/tradelens/logs/tradelens.log"
# Rotation limits
max_size_mb = 10
max_backups = 3
max_age_days = 30

[ui]
# Enable colored output
color = true
`

func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "config.toml")
	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}

	return nil
}

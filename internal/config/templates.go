package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// configTemplate leaves paths commented out so they default to
// locations inside the config directory.
const configTemplate = `# Trade Journal Configuration

[journal]
# Currency value of one R (risk unit)
value_per_r = 200.0
# Where trades, methods and images are stored
# data_dir = "~/.config/tradejournal/data"
# Storage backend: "json" or "sqlite"
store = "json"
# Time zone used to bucket trades by hour: "Local" or an IANA name
timezone = "Local"

[logging]
# Log level: debug, info, warn, error
level = "info"
# Write logs to the terminal (stderr)
console = false
# Write logs to a rotating file
file = true
# file_path = "~/.config/tradejournal/logs/journal.log"
# Rotation limits (megabytes, files, days)
max_size = 20
max_backups = 5
max_age = 30

[server]
# Listen address for "tradejournal serve"
addr = "127.0.0.1:8420"
`

func createTemplateConfig(configDir, name string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, name+".toml")
	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}

	return nil
}

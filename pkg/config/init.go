package config

import (
	"fmt"
	"os"
)

// InitConfig writes a starter configuration file (GetDefaultConfig,
// serialized through SaveConfig) to path, or the default location if path
// is empty. It refuses to overwrite an existing file unless force is true.
// Returns the path written.
func InitConfig(path string, force bool) (string, error) {
	if path == "" {
		path = GetDefaultConfigPath()
	}

	if !force {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", path)
		}
	}

	cfg := GetDefaultConfig()
	if err := SaveConfig(cfg, path); err != nil {
		return "", err
	}
	return path, nil
}

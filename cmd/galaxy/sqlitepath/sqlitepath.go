// Package sqlitepath resolves which SQLite settings database a command uses.
package sqlitepath

import (
	"path/filepath"

	"github.com/819SauCe/Galaxy/pkg/config"
)

// ResolveSQLitePath picks the database path: the --sqlite flag, then the db key of
// the config file, then ~/.galaxy/galaxy.db.
func ResolveSQLitePath(flagPath, configPath string) (string, error) {
	if flagPath != "" {
		return flagPath, nil
	}
	if configPath != "" {
		return configPath, nil
	}

	dir, err := config.Dir()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, config.DBFileName), nil
}

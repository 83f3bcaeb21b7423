package journal

import (
	"path/filepath"

	"codeberg.org/mutker/solartag/internal/errors"
)

const (
	defaultDirPerm   = 0o755
	defaultDBPath    = "/var/lib/solartag/journal.db"
	defaultRetention = 30
	backupDirName    = "backups"
)

type Config struct {
	DBPath        string
	RetentionDays int
	Enabled       bool
}

func DefaultConfig() Config {
	return Config{
		DBPath:        defaultDBPath,
		RetentionDays: defaultRetention,
		Enabled:       false,
	}
}

func (c Config) Validate() error {
	errFactory := errors.New()

	// Only validate DBPath if the journal is enabled
	if c.Enabled && c.DBPath == "" {
		return errFactory.New(ErrInvalidDBPath)
	}
	if c.RetentionDays < 0 {
		return errFactory.WithData(ErrInvalidConfig, c.RetentionDays)
	}

	return nil
}

func (c Config) backupDir() string {
	return filepath.Join(filepath.Dir(c.DBPath), backupDirName)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

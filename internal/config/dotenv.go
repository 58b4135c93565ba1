package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// DotEnvFiles are read from the working directory, earliest first.
// Variables already set are never overridden, so an earlier file wins.
var DotEnvFiles = []string{".env.local", ".env"}

// LoadDotEnv applies the DotEnvFiles present in dir to the process
// environment and returns the paths it read. A missing file is skipped;
// a file that fails to parse stops loading.
func LoadDotEnv(dir string) ([]string, error) {
	var loaded []string
	for _, name := range DotEnvFiles {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return loaded, fmt.Errorf("error loading %s: %w", path, err)
		}
		loaded = append(loaded, path)
	}
	return loaded, nil
}

// Package config loads hdlplan settings and project manifests.
//
// Settings are layered, lowest to highest priority: built-in defaults, the
// user config file (~/.hdlplan/config.yaml), the project manifest
// (hdlplan.yaml), HDLPLAN_* environment variables, and explicitly set
// command-line flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths contains the per-user filesystem locations used by hdlplan.
type Paths struct {
	// Home is the base directory for per-user data (default: ~/.hdlplan)
	Home string

	// Config is the user-level config file, loaded beneath the project manifest
	Config string

	// Plans is where saved plan manifests are written
	Plans string
}

// DefaultPaths returns the default paths. HDLPLAN_HOME overrides the home
// directory.
func DefaultPaths() (*Paths, error) {
	home := os.Getenv("HDLPLAN_HOME")
	if home == "" {
		userHome, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		home = filepath.Join(userHome, ".hdlplan")
	}

	return PathsAt(home), nil
}

// PathsAt returns the paths rooted at home.
func PathsAt(home string) *Paths {
	return &Paths{
		Home:   home,
		Config: filepath.Join(home, "config.yaml"),
		Plans:  filepath.Join(home, "plans"),
	}
}

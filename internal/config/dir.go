// Package config provides the global configuration for ctxsync.
package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// Dir returns the ctxsync configuration directory.
//
// Resolution:
//   - $CTXSYNC_CONFIG_HOME if set (explicit override)
//   - $XDG_CONFIG_HOME/ctxsync if set (respects XDG on any platform)
//   - %AppData%/ctxsync on Windows
//   - ~/.config/ctxsync on macOS and Linux
func Dir() string {
	// Explicit override
	if dir := os.Getenv("CTXSYNC_CONFIG_HOME"); dir != "" {
		return dir
	}

	// XDG override (works on any platform)
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "ctxsync")
	}

	// Windows: use AppData
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "ctxsync")
		}
	}

	// macOS and Linux: ~/.config/ctxsync
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "ctxsync")
}

// Package platform resolves where boyl keeps its configuration and data.
package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const (
	// AppName names the per-user config and data directories.
	AppName = "boyl"
	// ConfigEnv overrides the config file location.
	ConfigEnv = "BOYL_CONFIG"
	// DataDirEnv overrides the data directory (registry and stored templates).
	DataDirEnv = "BOYL_DATA_DIR"
)

// Paths holds the resolved locations.
type Paths struct {
	ConfigPath   string
	DataDir      string
	RegistryPath string
	TemplatesDir string
}

// DefaultPaths resolves paths for the current user and platform.
func DefaultPaths() (Paths, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return Paths{}, fmt.Errorf("user config dir: %w", err)
	}
	dataDir := configDir
	if runtime.GOOS == "linux" {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return Paths{}, fmt.Errorf("user home dir: %w", homeErr)
		}
		dataDir = filepath.Join(home, ".local", "share")
	}

	env := map[string]string{}
	for _, k := range []string{"XDG_CONFIG_HOME", "XDG_DATA_HOME", "APPDATA", "LOCALAPPDATA", ConfigEnv, DataDirEnv} {
		env[k] = strings.TrimSpace(os.Getenv(k))
	}
	return PathsFor(runtime.GOOS, env, configDir, dataDir, AppName)
}

// PathsFor resolves paths for goos given an environment snapshot and the
// platform's base directories. BOYL_CONFIG and BOYL_DATA_DIR win over
// everything else.
func PathsFor(goos string, env map[string]string, userConfigDir, userDataDir, appName string) (Paths, error) {
	if userConfigDir == "" || userDataDir == "" {
		return Paths{}, fmt.Errorf("empty base dirs")
	}
	appName = strings.TrimSpace(appName)
	if appName == "" {
		return Paths{}, fmt.Errorf("empty app name")
	}

	configBase := userConfigDir
	dataBase := userDataDir

	switch goos {
	case "linux":
		if v := env["XDG_CONFIG_HOME"]; v != "" {
			configBase = v
		}
		if v := env["XDG_DATA_HOME"]; v != "" {
			dataBase = v
		}
	case "windows":
		if v := env["APPDATA"]; v != "" {
			configBase = v
		}
		if v := env["LOCALAPPDATA"]; v != "" {
			dataBase = v
		}
	}

	configPath := filepath.Join(configBase, appName, "config.toml")
	if v := env[ConfigEnv]; v != "" {
		configPath = v
	}
	dataDir := filepath.Join(dataBase, appName)
	if v := env[DataDirEnv]; v != "" {
		dataDir = v
	}
	return Paths{
		ConfigPath:   configPath,
		DataDir:      dataDir,
		RegistryPath: filepath.Join(dataDir, "registry.json"),
		TemplatesDir: filepath.Join(dataDir, "templates"),
	}, nil
}

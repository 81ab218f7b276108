package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	ConfigDirEnvVar  = "STORECTL_CONFIG_DIR"
	ConfigFileEnvVar = "STORECTL_CONFIG_FILE"
	HomeEnvVar       = "STORECTL_HOME"

	defaultConfigDir  = ".storectl"
	defaultConfigFile = "config"
)

type PathInfo struct {
	Path    string
	FromEnv bool
}

func ConfigDirPathInfo() (PathInfo, error) {
	if dir, ok := envValue(ConfigDirEnvVar); ok {
		return PathInfo{Path: dir, FromEnv: true}, nil
	}
	home, err := homeDir()
	if err != nil {
		return PathInfo{}, fmt.Errorf("unable to determine home directory: %w", err)
	}
	return PathInfo{Path: filepath.Join(home, defaultConfigDir)}, nil
}

func ConfigFilePathInfo() (PathInfo, error) {
	if file, ok := envValue(ConfigFileEnvVar); ok {
		return PathInfo{Path: file, FromEnv: true}, nil
	}
	dirInfo, err := ConfigDirPathInfo()
	if err != nil {
		return PathInfo{}, err
	}
	return PathInfo{Path: filepath.Join(dirInfo.Path, defaultConfigFile)}, nil
}

func homeDir() (string, error) {
	if dir, ok := envValue(HomeEnvVar); ok {
		return dir, nil
	}
	return os.UserHomeDir()
}

func envValue(name string) (string, bool) {
	value, ok := os.LookupEnv(name)
	if !ok {
		return "", false
	}
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", false
	}
	return trimmed, true
}

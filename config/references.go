// Copyright 2024 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"
)

var (
	configDir  string // Directory for configuration files
	clispecDir string // Directory for bundled CLISpec XML documents
	keysDir    string // Directory for keys
	sshDir     string // Directory for SSH known_hosts and identity files
)

func init() {
	if os.Geteuid() == 0 {
		configDir = "/etc/svcgate"
	} else {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			panic(fmt.Sprintf("failed to get home directory: %v", err))
		}
		configDir = filepath.Join(homeDir, ".svcgate")
	}

	clispecDir = filepath.Join(configDir, "clispec")
	keysDir = filepath.Join(configDir, "keys")
	sshDir = filepath.Join(keysDir, "ssh")

	// Ensure the directories exist
	if err := EnsureDirectories(); err != nil {
		panic(fmt.Sprintf("failed to ensure configuration directories: %v", err))
	}
}

// GetConfigDir returns the appropriate configuration directory.
// If running as root, it returns the system config directory,
// otherwise the user config directory.
func GetConfigDir() string {
	return configDir
}

// GetCLISpecDir returns the directory bundled CLISpec XML documents are
// loaded from.
func GetCLISpecDir() string {
	return clispecDir
}

// GetKeysDir returns the directory for keys.
func GetKeysDir() string {
	return keysDir
}

// GetSSHDir returns the directory holding known_hosts and any SSH
// identity files used to authenticate against arrays.
func GetSSHDir() string {
	return sshDir
}

// EnsureDirectories creates necessary directories if they do not exist.
func EnsureDirectories() error {
	dirs := []string{
		configDir,
		clispecDir,
		keysDir,
		sshDir,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// ============================================================================
// chainterm - Browser Command Terminal for Blockchain Networks
// ============================================================================
//
// Package:     session
// Description: YAML alias bootstrap. Operators ship a starter alias set
//              with the server; user-defined aliases restored from the
//              store always win over bootstrap entries.
// Author:      Mike Stoffels with Claude
// Created:     2026-02-10
// License:     MIT
// ============================================================================

package session

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/msto63/chainterm/pkg/core/logging"
)

// BootstrapAlias is one entry of the alias bootstrap file
type BootstrapAlias struct {
	Name    string `yaml:"name"`
	Command string `yaml:"command"`
}

type bootstrapFile struct {
	Aliases []BootstrapAlias `yaml:"aliases"`
}

// LoadBootstrap reads and parses an alias bootstrap file
func LoadBootstrap(path string) ([]BootstrapAlias, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bootstrap file: %w", err)
	}

	var file bootstrapFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse bootstrap file: %w", err)
	}
	return file.Aliases, nil
}

// applyBootstrap merges bootstrap aliases into the table without
// overwriting restored user aliases. A broken bootstrap file is logged
// and skipped.
func (s *Session) applyBootstrap(path string) {
	entries, err := LoadBootstrap(path)
	if err != nil {
		s.logger.Warn("alias bootstrap skipped", logging.Fields{
			"path":  path,
			"error": err.Error(),
		})
		return
	}

	applied := 0
	for _, entry := range entries {
		if s.aliases.Has(entry.Name) {
			continue
		}
		if err := s.aliases.Set(entry.Name, entry.Command); err != nil {
			s.logger.Warn("bootstrap alias rejected", logging.Fields{
				"name":  entry.Name,
				"error": err.Error(),
			})
			continue
		}
		applied++
	}

	if applied > 0 {
		s.logger.Debug("bootstrap aliases applied", logging.Fields{"count": applied})
	}
}

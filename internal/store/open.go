package store

import (
	"fmt"
	"strings"

	"github.com/promptstudiohq/prompt-studio/internal/config"
)

const DefaultSQLitePath = "data/prompt-studio.db"

// Open builds the analysis store described by the storage config.
// An empty type means sqlite; "memory" is sqlite on :memory: and is
// what the test suites and throwaway CLI runs use.
func Open(cfg *config.Config) (Store, error) {
	if cfg == nil {
		return nil, fmt.Errorf("store: missing config")
	}

	switch storageType(cfg) {
	case "sqlite":
		return NewSQLiteStore(sqlitePath(cfg))
	case "memory":
		return NewSQLiteStore(":memory:")
	}
	return nil, fmt.Errorf("store: unsupported type %q", storageType(cfg))
}

func storageType(cfg *config.Config) string {
	t := strings.ToLower(strings.TrimSpace(cfg.Storage.Type))
	if t == "" {
		return "sqlite"
	}
	return t
}

func sqlitePath(cfg *config.Config) string {
	if p := strings.TrimSpace(cfg.Storage.Path); p != "" {
		return p
	}
	return DefaultSQLitePath
}

// Package seed loads the initial dataset from one of the supported
// sources. Sources are read once at startup; nothing here writes the
// store's later state back.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"finboard/internal/log"
)

// Kind selects a Source implementation.
type Kind string

const (
	KindJSON   Kind = "json"
	KindSQLite Kind = "sqlite"
	KindSheets Kind = "sheets"
)

func (k Kind) IsValid() bool {
	switch k {
	case KindJSON, KindSQLite, KindSheets:
		return true
	default:
		return false
	}
}

// Config carries everything any source may need; only the fields of the
// selected kind are read.
type Config struct {
	Kind Kind

	JSONPath string

	SQLitePath string

	SpreadsheetID   string
	CredentialsFile string
	Ranges          SheetRanges
}

func (c Config) Validate() error {
	if !c.Kind.IsValid() {
		return fmt.Errorf("invalid seed source: %q", c.Kind)
	}
	switch c.Kind {
	case KindJSON:
		if strings.TrimSpace(c.JSONPath) == "" {
			return fmt.Errorf("seed path is required for json source")
		}
	case KindSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			return fmt.Errorf("SQLite database path is required for sqlite source")
		}
	case KindSheets:
		if strings.TrimSpace(c.SpreadsheetID) == "" {
			return fmt.Errorf("spreadsheet ID is required for sheets source")
		}
	}
	return nil
}

// Open builds the Source selected by cfg.Kind.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (Source, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger = log.WithComponent(logger, log.ComponentSeed).With(log.FieldSource, string(cfg.Kind))

	switch cfg.Kind {
	case KindJSON:
		logger.Info("Using JSON seed", log.FieldPath, cfg.JSONPath)
		return NewFileSource(cfg.JSONPath), nil
	case KindSQLite:
		logger.Info("Using SQLite seed", log.FieldPath, cfg.SQLitePath)
		return NewSQLiteSource(cfg.SQLitePath, logger), nil
	case KindSheets:
		src, err := NewSheetsSource(ctx, cfg.SpreadsheetID, cfg.CredentialsFile, cfg.Ranges, logger)
		if err != nil {
			return nil, fmt.Errorf("sheets seed: %w", err)
		}
		logger.Info("Using Google Sheets seed", "spreadsheet_id", cfg.SpreadsheetID)
		return src, nil
	default:
		return nil, fmt.Errorf("unsupported seed source: %s", cfg.Kind)
	}
}

// Package backup exports the core tables to JSON on demand and on a schedule.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Tables are exported in this order.
var Tables = []string{"users", "properties", "search_profiles", "applications"} //nolint:gochecknoglobals

// Summary describes a finished backup.
type Summary struct {
	Success      bool      `json:"success"`
	Timestamp    time.Time `json:"timestamp"`
	Tables       []string  `json:"tables"`
	TotalRecords int       `json:"totalRecords"`
	File         string    `json:"file,omitempty"`
}

// Run reads every backup table and, when dir is set, writes them to
// dir/backup-<timestamp>.json. Tables that fail to read are left out.
func Run(ctx context.Context, db *gorm.DB, dir string) (*Summary, error) {
	if db == nil {
		return nil, fmt.Errorf("backup: database connection is nil")
	}

	now := time.Now().UTC()
	data := make(map[string][]map[string]any, len(Tables))
	sum := &Summary{Timestamp: now, Tables: []string{}}

	for _, table := range Tables {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var rows []map[string]any
		if err := db.WithContext(ctx).Table(table).Find(&rows).Error; err != nil {
			log.Error().Err(err).Str("table", table).Msg("backup: failed to read table")

			continue
		}

		data[table] = rows
		sum.Tables = append(sum.Tables, table)
		sum.TotalRecords += len(rows)
	}

	if dir != "" {
		file, err := write(dir, now, data)
		if err != nil {
			return nil, err
		}

		sum.File = file
	}

	sum.Success = true

	log.Info().Int("records", sum.TotalRecords).Strs("tables", sum.Tables).Str("file", sum.File).Msg("database backup completed")

	return sum, nil
}

func write(dir string, now time.Time, data map[string][]map[string]any) (string, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("backup: %w", err)
	}

	name := filepath.Join(dir, "backup-"+now.Format("20060102T150405Z")+".json")

	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return "", fmt.Errorf("backup: %w", err)
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")

	if err := enc.Encode(data); err != nil {
		_ = f.Close()

		return "", fmt.Errorf("backup: %w", err)
	}

	if err := f.Close(); err != nil {
		return "", fmt.Errorf("backup: %w", err)
	}

	return name, nil
}

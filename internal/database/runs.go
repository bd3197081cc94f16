package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nao1215/sitectl/internal/model"
)

// SaveRun stores a verify or submit run and sets its ID.
func (hdb *HistoryDB) SaveRun(ctx context.Context, run *model.RunRecord) (int64, error) {
	runJSON, err := json.Marshal(run)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize run: %w", err)
	}

	query := `
	INSERT INTO runs (command, target, timestamp, total, succeeded, run_json)
	VALUES (?, ?, ?, ?, ?, ?)
	`
	result, err := hdb.db.ExecContext(ctx, query,
		run.Command,
		run.Target,
		formatTimestamp(run.StartedAt),
		run.Total,
		run.Succeeded,
		string(runJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save run: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}
	run.ID = id
	return id, nil
}

// ListRuns returns up to limit runs, newest first. An empty command
// lists every command; a non-positive limit lists everything.
func (hdb *HistoryDB) ListRuns(ctx context.Context, command string, limit int) ([]*model.RunRecord, error) {
	query := `SELECT id, run_json FROM runs WHERE 1=1`
	args := make([]any, 0, 2)
	if command != "" {
		query += " AND command = ?"
		args = append(args, command)
	}
	query += " ORDER BY timestamp DESC, id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := hdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*model.RunRecord
	for rows.Next() {
		var id int64
		var runJSON string
		if err := rows.Scan(&id, &runJSON); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		var run model.RunRecord
		if err := json.Unmarshal([]byte(runJSON), &run); err != nil {
			continue // Skip malformed rows
		}
		run.ID = id
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}

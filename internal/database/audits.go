package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nao1215/sitectl/internal/model"
)

// AuditMetadata contains summary information about a stored audit.
// This is used for displaying audit history without loading the findings.
type AuditMetadata struct {
	// ID is the unique identifier of the audit in the database.
	ID int64

	// Site is the audited base URL.
	Site string

	// Timestamp is when the audit was performed.
	Timestamp time.Time

	// RiskSummary contains counts of findings by severity level.
	RiskSummary map[string]int

	// RiskScore is the weighted score of the audit.
	RiskScore int
}

// SaveAudit stores the summary of report and returns its ID.
func (hdb *HistoryDB) SaveAudit(ctx context.Context, report *model.AuditReport) (int64, error) {
	summary := report.Summary
	if summary == nil {
		summary = model.NewSummary(report.Site)
	}
	summary.Site = report.Site
	summary.DateAudited = report.DateAudited

	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize summary: %w", err)
	}

	riskSummary := map[string]int{
		"critical": summary.CriticalCount,
		"high":     summary.HighCount,
		"medium":   summary.MediumCount,
		"low":      summary.LowCount,
		"info":     summary.InfoCount,
	}
	riskJSON, _ := json.Marshal(riskSummary) //nolint:errcheck,errchkjson // riskSummary is a simple map; Marshal won't fail

	query := `
	INSERT INTO audits (site, timestamp, summary_json, risk_summary, risk_score)
	VALUES (?, ?, ?, ?, ?)
	`
	result, err := hdb.db.ExecContext(ctx, query,
		report.Site,
		formatTimestamp(report.DateAudited),
		string(summaryJSON),
		string(riskJSON),
		summary.RiskScore(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save audit: %w", err)
	}
	return result.LastInsertId()
}

// GetLatestAudit retrieves the most recent audit summary for site.
// It returns nil, nil when the site was never audited.
func (hdb *HistoryDB) GetLatestAudit(ctx context.Context, site string) (*model.Summary, error) {
	summaries, err := hdb.latestAudits(ctx, site, 1)
	if err != nil || len(summaries) == 0 {
		return nil, err
	}
	return summaries[0], nil
}

// GetAuditByID retrieves an audit summary by its database ID.
func (hdb *HistoryDB) GetAuditByID(ctx context.Context, id int64) (*model.Summary, error) {
	var summaryJSON string
	err := hdb.db.QueryRowContext(ctx, `SELECT summary_json FROM audits WHERE id = ?`, id).Scan(&summaryJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get audit: %w", err)
	}

	var summary model.Summary
	if err := json.Unmarshal([]byte(summaryJSON), &summary); err != nil {
		return nil, fmt.Errorf("failed to parse audit: %w", err)
	}
	return &summary, nil
}

// latestAudits returns up to limit summaries of site, newest first.
func (hdb *HistoryDB) latestAudits(ctx context.Context, site string, limit int) ([]*model.Summary, error) {
	query := `
	SELECT summary_json FROM audits
	WHERE site = ?
	ORDER BY timestamp DESC, id DESC
	LIMIT ?
	`
	rows, err := hdb.db.QueryContext(ctx, query, site, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get audits: %w", err)
	}
	defer rows.Close()

	var summaries []*model.Summary
	for rows.Next() {
		var summaryJSON string
		if err := rows.Scan(&summaryJSON); err != nil {
			return nil, fmt.Errorf("failed to scan audit: %w", err)
		}
		var summary model.Summary
		if err := json.Unmarshal([]byte(summaryJSON), &summary); err != nil {
			continue // Skip malformed rows
		}
		summaries = append(summaries, &summary)
	}
	return summaries, rows.Err()
}

// CompareLatest compares the two most recent audits of site.
func (hdb *HistoryDB) CompareLatest(ctx context.Context, site string) (*model.Comparison, error) {
	summaries, err := hdb.latestAudits(ctx, site, 2)
	if err != nil {
		return nil, err
	}
	if len(summaries) < 2 {
		return nil, ErrNotEnoughAudits
	}
	return model.Compare(summaries[1], summaries[0]), nil
}

// ListAuditedSites returns every site with at least one stored audit.
func (hdb *HistoryDB) ListAuditedSites(ctx context.Context) ([]string, error) {
	rows, err := hdb.db.QueryContext(ctx, `SELECT DISTINCT site FROM audits ORDER BY site`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sites: %w", err)
	}
	defer rows.Close()

	var sites []string
	for rows.Next() {
		var site string
		if err := rows.Scan(&site); err != nil {
			return nil, fmt.Errorf("failed to scan site: %w", err)
		}
		sites = append(sites, site)
	}
	return sites, rows.Err()
}

// GetAuditHistory retrieves audit metadata for site, newest first.
func (hdb *HistoryDB) GetAuditHistory(ctx context.Context, site string) ([]AuditMetadata, error) {
	query := `
	SELECT id, site, timestamp, risk_summary, risk_score
	FROM audits
	WHERE site = ?
	ORDER BY timestamp DESC, id DESC
	`
	rows, err := hdb.db.QueryContext(ctx, query, site)
	if err != nil {
		return nil, fmt.Errorf("failed to get audit history: %w", err)
	}
	defer rows.Close()

	var results []AuditMetadata
	for rows.Next() {
		var meta AuditMetadata
		var timestamp string
		var riskJSON sql.NullString

		if err := rows.Scan(&meta.ID, &meta.Site, &timestamp, &riskJSON, &meta.RiskScore); err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}
		meta.Timestamp = parseTimestamp(timestamp)
		meta.RiskSummary = make(map[string]int)
		if riskJSON.Valid && riskJSON.String != "" {
			if err := json.Unmarshal([]byte(riskJSON.String), &meta.RiskSummary); err != nil {
				meta.RiskSummary = make(map[string]int)
			}
		}
		results = append(results, meta)
	}
	return results, rows.Err()
}

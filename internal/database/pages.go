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

// PageRecord is the stored state of one audited URL.
type PageRecord struct {
	ID          int64               `json:"id"`
	URL         string              `json:"url"`
	Site        string              `json:"site"`
	Timestamp   time.Time           `json:"timestamp"`
	StatusCode  int                 `json:"status_code"`
	ContentType string              `json:"content_type,omitempty"`
	Title       string              `json:"title,omitempty"`
	Lang        string              `json:"lang,omitempty"`
	Canonical   string              `json:"canonical,omitempty"`
	RawHash     string              `json:"raw_hash"`
	Headers     map[string][]string `json:"headers,omitempty"`
}

// NewPageRecord converts a crawled page into a record for site.
func NewPageRecord(site string, page *model.Page) *PageRecord {
	return &PageRecord{
		URL:         page.URL,
		Site:        site,
		StatusCode:  page.StatusCode,
		ContentType: page.ContentType,
		Title:       page.Title,
		Lang:        page.Lang,
		Canonical:   page.Canonical,
		RawHash:     page.Hash,
		Headers:     page.Headers,
	}
}

// UpsertPage inserts or updates a page record.
// Uses UPSERT to handle duplicates (same URL and site).
func (hdb *HistoryDB) UpsertPage(ctx context.Context, record *PageRecord) (int64, error) {
	headersJSON, err := json.Marshal(record.Headers)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize headers: %w", err)
	}

	query := `
	INSERT INTO pages (url, site, status_code, content_type, title, lang, canonical, raw_hash, headers)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(url, site) DO UPDATE SET
		status_code = excluded.status_code,
		content_type = excluded.content_type,
		title = excluded.title,
		lang = excluded.lang,
		canonical = excluded.canonical,
		raw_hash = excluded.raw_hash,
		headers = excluded.headers,
		timestamp = CURRENT_TIMESTAMP
	`

	result, err := hdb.db.ExecContext(ctx, query,
		record.URL,
		record.Site,
		record.StatusCode,
		record.ContentType,
		record.Title,
		record.Lang,
		record.Canonical,
		record.RawHash,
		string(headersJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert page: %w", err)
	}
	return result.LastInsertId()
}

// SavePages stores every crawled page of report.
// It returns how many pages changed content since the previous audit;
// pages seen for the first time do not count.
func (hdb *HistoryDB) SavePages(ctx context.Context, report *model.AuditReport) (int, error) {
	previous, err := hdb.pageHashes(ctx, report.Site)
	if err != nil {
		return 0, err
	}

	changed := 0
	for _, page := range report.CrawledPages {
		if old, ok := previous[page.URL]; ok && old != page.Hash {
			changed++
		}
		if _, err := hdb.UpsertPage(ctx, NewPageRecord(report.Site, page)); err != nil {
			return changed, err
		}
	}
	return changed, nil
}

func (hdb *HistoryDB) pageHashes(ctx context.Context, site string) (map[string]string, error) {
	rows, err := hdb.db.QueryContext(ctx, `SELECT url, raw_hash FROM pages WHERE site = ?`, site)
	if err != nil {
		return nil, fmt.Errorf("failed to query pages: %w", err)
	}
	defer rows.Close()

	hashes := make(map[string]string)
	for rows.Next() {
		var u string
		var hash sql.NullString
		if err := rows.Scan(&u, &hash); err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		hashes[u] = hash.String
	}
	return hashes, rows.Err()
}

// GetPage retrieves a page record by URL and site. It returns nil, nil
// when the page was never stored.
func (hdb *HistoryDB) GetPage(ctx context.Context, url, site string) (*PageRecord, error) {
	query := `
	SELECT id, url, site, timestamp, status_code, content_type, title, lang, canonical, raw_hash, headers
	FROM pages
	WHERE url = ? AND site = ?
	`

	var record PageRecord
	var headersJSON string
	var timestamp string

	err := hdb.db.QueryRowContext(ctx, query, url, site).Scan(
		&record.ID,
		&record.URL,
		&record.Site,
		&timestamp,
		&record.StatusCode,
		&record.ContentType,
		&record.Title,
		&record.Lang,
		&record.Canonical,
		&record.RawHash,
		&headersJSON,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get page: %w", err)
	}

	record.Timestamp = parseTimestamp(timestamp)
	if headersJSON != "" {
		if err := json.Unmarshal([]byte(headersJSON), &record.Headers); err != nil {
			return nil, fmt.Errorf("failed to parse headers: %w", err)
		}
	}
	return &record, nil
}

// PageStats counts the stored pages of site and those whose last known
// status was not 2xx.
func (hdb *HistoryDB) PageStats(ctx context.Context, site string) (total, failing int, err error) {
	query := `
	SELECT COUNT(*), COALESCE(SUM(CASE WHEN status_code < 200 OR status_code >= 300 THEN 1 ELSE 0 END), 0)
	FROM pages
	WHERE site = ?
	`
	if err := hdb.db.QueryRowContext(ctx, query, site).Scan(&total, &failing); err != nil {
		return 0, 0, fmt.Errorf("failed to count pages: %w", err)
	}
	return total, failing, nil
}

// internal/adapter/storage/scan_store.go

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"misintel/internal/service/scan"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = errors.New("not found")

// ScanStore implements persistence for scan results
type ScanStore struct {
	db *pgxpool.Pool
}

// NewScanStore creates a new scan store
func NewScanStore(db *pgxpool.Pool) *ScanStore {
	return &ScanStore{
		db: db,
	}
}

// EnsureSchema creates the scans table when it does not exist
func (s *ScanStore) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS scans (
			id UUID PRIMARY KEY,
			query TEXT NOT NULL,
			min_engagement INT NOT NULL DEFAULT 0,
			posts JSONB NOT NULL DEFAULT '[]',
			viral_records JSONB NOT NULL DEFAULT '[]',
			summary JSONB NOT NULL DEFAULT '{}',
			started_at TIMESTAMPTZ NOT NULL,
			completed_at TIMESTAMPTZ NOT NULL
		)
	`

	if _, err := s.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("error creating scans table: %w", err)
	}
	return nil
}

// SaveScan saves a scan result to storage
func (s *ScanStore) SaveScan(ctx context.Context, result scan.Result) error {
	query := `
		INSERT INTO scans (
			id, query, min_engagement, posts, viral_records, summary,
			started_at, completed_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)
		ON CONFLICT (id) DO UPDATE
		SET
			posts = $4,
			viral_records = $5,
			summary = $6,
			completed_at = $8
	`

	postsJSON, err := json.Marshal(result.Posts)
	if err != nil {
		return fmt.Errorf("error marshaling posts: %w", err)
	}

	viralJSON, err := json.Marshal(result.ViralRecords)
	if err != nil {
		return fmt.Errorf("error marshaling viral records: %w", err)
	}

	summaryJSON, err := json.Marshal(result.Summary)
	if err != nil {
		return fmt.Errorf("error marshaling summary: %w", err)
	}

	_, err = s.db.Exec(
		ctx,
		query,
		result.ID,
		result.Query,
		result.MinEngagement,
		postsJSON,
		viralJSON,
		summaryJSON,
		result.StartedAt,
		result.CompletedAt,
	)

	if err != nil {
		return fmt.Errorf("error executing query: %w", err)
	}

	return nil
}

// GetScan retrieves a scan result by ID
func (s *ScanStore) GetScan(ctx context.Context, id string) (*scan.Result, error) {
	query := `
		SELECT id, query, min_engagement, posts, viral_records, summary,
			started_at, completed_at
		FROM scans
		WHERE id = $1
	`

	result, err := s.scanRow(s.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error querying scan: %w", err)
	}

	return result, nil
}

// ListScans retrieves the most recent scan results
func (s *ScanStore) ListScans(ctx context.Context, limit int) ([]scan.Result, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, query, min_engagement, posts, viral_records, summary,
			started_at, completed_at
		FROM scans
		ORDER BY completed_at DESC
		LIMIT $1
	`

	rows, err := s.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying scans: %w", err)
	}
	defer rows.Close()

	results := []scan.Result{}
	for rows.Next() {
		result, err := s.scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		results = append(results, *result)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return results, nil
}

// scanRow reads one scans row into a scan result
func (s *ScanStore) scanRow(row pgx.Row) (*scan.Result, error) {
	var (
		result      scan.Result
		postsJSON   []byte
		viralJSON   []byte
		summaryJSON []byte
	)

	err := row.Scan(
		&result.ID,
		&result.Query,
		&result.MinEngagement,
		&postsJSON,
		&viralJSON,
		&summaryJSON,
		&result.StartedAt,
		&result.CompletedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(postsJSON, &result.Posts); err != nil {
		return nil, fmt.Errorf("error unmarshaling posts: %w", err)
	}
	if err := json.Unmarshal(viralJSON, &result.ViralRecords); err != nil {
		return nil, fmt.Errorf("error unmarshaling viral records: %w", err)
	}
	if err := json.Unmarshal(summaryJSON, &result.Summary); err != nil {
		return nil, fmt.Errorf("error unmarshaling summary: %w", err)
	}

	return &result, nil
}

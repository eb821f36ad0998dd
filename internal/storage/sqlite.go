package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// SQLiteStorage implements the Storage interface using SQLite
type SQLiteStorage struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// SQLite benefits from a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

const recordColumns = "id, document_id, namespace, chunk_number, content, metadata, vector, token_count, created_at, updated_at"

// UpsertRecords inserts or replaces records within a single transaction
func (s *SQLiteStorage) UpsertRecords(ctx context.Context, records []*Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		INSERT INTO records (id, document_id, namespace, chunk_number, content, metadata, vector, dimension, token_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			document_id = excluded.document_id,
			namespace = excluded.namespace,
			chunk_number = excluded.chunk_number,
			content = excluded.content,
			metadata = excluded.metadata,
			vector = excluded.vector,
			dimension = excluded.dimension,
			token_count = excluded.token_count,
			updated_at = excluded.updated_at
	`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	now := time.Now()
	for _, record := range records {
		if record.ID == "" {
			return fmt.Errorf("record ID cannot be empty")
		}
		if len(record.Vector) == 0 {
			return fmt.Errorf("record %s has no vector", record.ID)
		}

		metadataJSON, err := json.Marshal(record.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata for %s: %w", record.ID, err)
		}

		_, err = stmt.ExecContext(ctx,
			record.ID, record.DocumentID, record.Namespace, record.ChunkNumber,
			record.Content, string(metadataJSON), serializeVector(record.Vector),
			len(record.Vector), record.TokenCount, now, now)
		if err != nil {
			return fmt.Errorf("failed to upsert record %s: %w", record.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit upsert: %w", err)
	}
	return nil
}

// GetRecord fetches one record by id
func (s *SQLiteStorage) GetRecord(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+recordColumns+" FROM records WHERE id = ?", id)

	record, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record %s: %w", id, err)
	}
	return record, nil
}

// FetchRecords fetches records by id, skipping ids that do not exist
func (s *SQLiteStorage) FetchRecords(ctx context.Context, ids []string) ([]*Record, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+recordColumns+" FROM records WHERE id IN ("+placeholders+") ORDER BY document_id, chunk_number",
		args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return collectRecords(rows)
}

// ListDocumentChunks returns all chunks of a document ordered by chunk number
func (s *SQLiteStorage) ListDocumentChunks(ctx context.Context, documentID, namespace string) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+recordColumns+" FROM records WHERE document_id = ? AND namespace = ? ORDER BY chunk_number",
		documentID, namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to list chunks for %s: %w", documentID, err)
	}
	defer func() { _ = rows.Close() }()

	records, err := collectRecords(rows)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNotFound
	}
	return records, nil
}

// ListDocuments summarizes stored documents; empty namespace lists all
func (s *SQLiteStorage) ListDocuments(ctx context.Context, namespace string) ([]DocumentInfo, error) {
	query := `
		SELECT document_id, namespace, COUNT(*) as chunks, COALESCE(SUM(token_count), 0) as total_tokens
		FROM records
	`
	var args []interface{}
	if namespace != "" {
		query += " WHERE namespace = ?"
		args = append(args, namespace)
	}
	query += " GROUP BY document_id, namespace ORDER BY namespace, document_id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	docs := make([]DocumentInfo, 0)
	for rows.Next() {
		var doc DocumentInfo
		if err := rows.Scan(&doc.DocumentID, &doc.Namespace, &doc.Chunks, &doc.TotalTokens); err != nil {
			return nil, fmt.Errorf("failed to scan document info: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// DeleteDocument removes every record of a document
func (s *SQLiteStorage) DeleteDocument(ctx context.Context, documentID, namespace string) (int, error) {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM records WHERE document_id = ? AND namespace = ?",
		documentID, namespace)
	if err != nil {
		return 0, fmt.Errorf("failed to delete document %s: %w", documentID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

// SearchVector returns the topK most similar records by cosine similarity
func (s *SQLiteStorage) SearchVector(ctx context.Context, vector []float32, topK int, namespace string, minScore float64) ([]VectorResult, error) {
	if len(vector) == 0 {
		return nil, fmt.Errorf("query vector cannot be empty")
	}
	return searchVector(ctx, s.db, vector, topK, namespace, minScore)
}

// Stats reports aggregate index statistics
func (s *SQLiteStorage) Stats(ctx context.Context) (*IndexStats, error) {
	stats := &IndexStats{Namespaces: make(map[string]int)}

	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COUNT(DISTINCT document_id) FROM records").
		Scan(&stats.TotalRecords, &stats.TotalDocuments)
	if err != nil {
		return nil, fmt.Errorf("failed to count records: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT namespace, COUNT(*) FROM records GROUP BY namespace")
	if err != nil {
		return nil, fmt.Errorf("failed to count namespaces: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var ns string
		var count int
		if err := rows.Scan(&ns, &count); err != nil {
			return nil, err
		}
		stats.Namespaces[ns] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if stats.TotalRecords > 0 {
		err = s.db.QueryRowContext(ctx, "SELECT dimension FROM records LIMIT 1").Scan(&stats.Dimension)
		if err != nil && err != sql.ErrNoRows {
			return nil, fmt.Errorf("failed to read dimension: %w", err)
		}
	}

	return stats, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for scanRecord
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var record Record
	var metadataJSON string
	var vectorBlob []byte

	err := row.Scan(&record.ID, &record.DocumentID, &record.Namespace, &record.ChunkNumber,
		&record.Content, &metadataJSON, &vectorBlob, &record.TokenCount,
		&record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(metadataJSON), &record.Metadata); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metadata for %s: %w", record.ID, err)
	}
	record.Vector = deserializeVector(vectorBlob)

	return &record, nil
}

func collectRecords(rows *sql.Rows) ([]*Record, error) {
	records := make([]*Record, 0)
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

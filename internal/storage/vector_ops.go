package storage

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// searchVector performs cosine similarity search, using sqlite-vec when
// the extension is compiled in and a pure-Go scan otherwise
func searchVector(ctx context.Context, db *sql.DB, queryVector []float32, topK int, namespace string, minScore float64) ([]VectorResult, error) {
	if VectorExtensionAvailable {
		return searchVectorOptimized(ctx, db, queryVector, topK, namespace, minScore)
	}
	return searchVectorFallback(ctx, db, queryVector, topK, namespace, minScore)
}

// searchVectorOptimized computes cosine distance at the database layer.
// sqlite-vec returns distance (lower is better); converted to similarity
// to keep one scoring convention.
func searchVectorOptimized(ctx context.Context, db *sql.DB, queryVector []float32, topK int, namespace string, minScore float64) ([]VectorResult, error) {
	queryBlob := serializeVector(queryVector)

	query := `
		SELECT ` + recordColumns + `,
			1.0 - vec_distance_cosine(vector, ?) as similarity
		FROM records
		WHERE dimension = ?
	`
	args := []interface{}{queryBlob, len(queryVector)}

	if namespace != "" {
		query += " AND namespace = ?"
		args = append(args, namespace)
	}
	if minScore > 0 {
		query += " AND (1.0 - vec_distance_cosine(vector, ?)) >= ?"
		args = append(args, queryBlob, minScore)
	}

	query += " ORDER BY similarity DESC LIMIT ?"
	args = append(args, topK)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute vector search: %w", err)
	}
	defer func() { _ = rows.Close() }()

	if topK <= 0 {
		return []VectorResult{}, nil
	}

	results := make([]VectorResult, 0, topK)
	for rows.Next() {
		var record Record
		var metadataJSON string
		var vectorBlob []byte
		var score float64

		err := rows.Scan(&record.ID, &record.DocumentID, &record.Namespace, &record.ChunkNumber,
			&record.Content, &metadataJSON, &vectorBlob, &record.TokenCount,
			&record.CreatedAt, &record.UpdatedAt, &score)
		if err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}

		if err := unmarshalMetadata(metadataJSON, &record); err != nil {
			return nil, err
		}
		record.Vector = deserializeVector(vectorBlob)
		results = append(results, VectorResult{Record: &record, Score: score})
	}

	return results, rows.Err()
}

// searchVectorFallback scans all candidate vectors and ranks them in Go
func searchVectorFallback(ctx context.Context, db *sql.DB, queryVector []float32, topK int, namespace string, minScore float64) ([]VectorResult, error) {
	query := "SELECT " + recordColumns + " FROM records WHERE dimension = ?"
	args := []interface{}{len(queryVector)}

	if namespace != "" {
		query += " AND namespace = ?"
		args = append(args, namespace)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query vectors: %w", err)
	}
	defer func() { _ = rows.Close() }()

	candidates := make([]VectorResult, 0)
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}

		if len(record.Vector) != len(queryVector) {
			continue // Dimension mismatch, skip
		}

		score := cosineSimilarity(queryVector, record.Vector)
		if minScore > 0 && score < minScore {
			continue
		}

		candidates = append(candidates, VectorResult{Record: record, Score: score})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	if topK <= 0 || topK > len(candidates) {
		topK = len(candidates)
	}
	return candidates[:topK], nil
}

func unmarshalMetadata(metadataJSON string, record *Record) error {
	if err := json.Unmarshal([]byte(metadataJSON), &record.Metadata); err != nil {
		return fmt.Errorf("failed to unmarshal metadata for %s: %w", record.ID, err)
	}
	return nil
}

// serializeVector converts a float32 slice to a byte blob (little-endian)
func serializeVector(vector []float32) []byte {
	blob := make([]byte, len(vector)*4)
	for i, v := range vector {
		binary.LittleEndian.PutUint32(blob[i*4:], math.Float32bits(v))
	}
	return blob
}

// deserializeVector converts a byte blob back to a float32 slice
func deserializeVector(blob []byte) []float32 {
	vector := make([]float32, len(blob)/4)
	for i := range vector {
		bits := binary.LittleEndian.Uint32(blob[i*4:])
		vector[i] = math.Float32frombits(bits)
	}
	return vector
}

// cosineSimilarity computes the cosine similarity between two vectors
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i] * b[i])
		normA += float64(a[i] * a[i])
		normB += float64(b[i] * b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// SerializeVector is an exported helper for testing
func SerializeVector(vector []float32) []byte {
	return serializeVector(vector)
}

// DeserializeVector is an exported helper for testing
func DeserializeVector(blob []byte) []float32 {
	return deserializeVector(blob)
}

// CosineSimilarity is an exported helper for testing
func CosineSimilarity(a, b []float32) float64 {
	return cosineSimilarity(a, b)
}

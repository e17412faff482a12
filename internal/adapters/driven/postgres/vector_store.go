package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/custodia-labs/sercha-estimator/internal/core/domain"
	"github.com/custodia-labs/sercha-estimator/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.VectorStore = (*VectorStore)(nil)

// VectorStore implements driven.VectorStore on a pgvector table, so replicas
// share one context index.
type VectorStore struct {
	db *DB
}

// NewVectorStore creates a new VectorStore
func NewVectorStore(db *DB) *VectorStore {
	return &VectorStore{db: db}
}

// Replace deletes every passage and inserts the new set in one transaction
func (s *VectorStore) Replace(ctx context.Context, passages []*domain.Passage) error {
	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM passages"); err != nil {
			return fmt.Errorf("clear passages: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO passages (id, document_id, position, text, embedding)
			VALUES ($1, $2, $3, $4, $5::vector)
		`)
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, p := range passages {
			if _, err := stmt.ExecContext(ctx, p.ID, p.DocumentID, p.Position, p.Text, vectorLiteral(p.Embedding)); err != nil {
				return fmt.Errorf("insert passage %s: %w", p.ID, err)
			}
		}
		return nil
	})
}

// Search ranks passages of matching dimension by cosine similarity
func (s *VectorStore) Search(ctx context.Context, embedding []float32, topK int) ([]*domain.ScoredPassage, error) {
	if topK <= 0 || len(embedding) == 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, position, text, 1 - (embedding <=> $1::vector) AS score
		FROM passages
		WHERE embedding IS NOT NULL AND vector_dims(embedding) = $2
		ORDER BY embedding <=> $1::vector, id
		LIMIT $3
	`, vectorLiteral(embedding), len(embedding), topK)
	if err != nil {
		return nil, fmt.Errorf("search passages: %w", err)
	}
	defer rows.Close()

	var results []*domain.ScoredPassage
	for rows.Next() {
		p := &domain.Passage{}
		var score float64
		if err := rows.Scan(&p.ID, &p.DocumentID, &p.Position, &p.Text, &score); err != nil {
			return nil, err
		}
		results = append(results, &domain.ScoredPassage{Passage: p, Score: score})
	}
	return results, rows.Err()
}

// Count returns the number of stored passages
func (s *VectorStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM passages").Scan(&n)
	return n, err
}

// HealthCheck pings the database
func (s *VectorStore) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// vectorLiteral formats v in pgvector's text form; nil becomes SQL NULL
func vectorLiteral(v []float32) sql.NullString {
	if len(v) == 0 {
		return sql.NullString{}
	}
	var b strings.Builder
	b.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(f), 'g', -1, 32))
	}
	b.WriteByte(']')
	return sql.NullString{String: b.String(), Valid: true}
}

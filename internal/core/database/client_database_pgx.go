package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/pgvector/pgvector-go"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/markdave123-py/Scholara/internal/config"
	"github.com/markdave123-py/Scholara/internal/models"
)

type DatabaseClient struct {
	db *sql.DB
}

var _ DbClient = (*DatabaseClient)(nil)

func NewDatabaseClient(ctx context.Context, cfg *config.Config) (*DatabaseClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database client configuration is nil")
	}
	dsn, err := buildDSN(cfg.DatabaseURL, cfg.SslCertPath)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Sensible pool settings for an API service; adjust as needed.
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	// Ensure bootstrap once
	if err := EnsureBootstrapped(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

// buildDSN appends TLS verification params when a CA certificate is given.
func buildDSN(databaseURL, sslCertPath string) (string, error) {
	if databaseURL == "" {
		return "", fmt.Errorf("DATABASE_URL is empty")
	}
	if sslCertPath == "" {
		return databaseURL, nil
	}
	if _, err := os.Stat(sslCertPath); err != nil {
		return "", fmt.Errorf("ssl cert not accessible at %q: %w", sslCertPath, err)
	}

	u, err := url.Parse(databaseURL)
	if err != nil {
		return "", fmt.Errorf("invalid DATABASE_URL: %w", err)
	}
	q := u.Query()
	q.Set("sslmode", "verify-ca")
	q.Set("sslrootcert", sslCertPath)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *DatabaseClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// UpsertChunks satisfies core.VectorStore.
func (c *DatabaseClient) UpsertChunks(ctx context.Context, runID string, chunks []models.TextChunk, vectors [][]float32) error {
	return c.InsertChunks(ctx, runID, chunks, vectors)
}

// InsertChunks inserts chunks in a single transaction.
func (c *DatabaseClient) InsertChunks(ctx context.Context, runID string, chunks []models.TextChunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return errors.New("chunks and vectors length mismatch")
	}
	if len(chunks) == 0 {
		return nil
	}
	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}

	const q = `
		INSERT INTO research_chunks
			(id, run_id, position, text, embedding)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
			SET position = EXCLUDED.position, text = EXCLUDED.text, embedding = EXCLUDED.embedding
	`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for i := range chunks {
		ch := &chunks[i]
		vec := pgvector.NewVector(vectors[i])

		if _, err := stmt.ExecContext(ctx, ch.ID, runID, ch.Position, ch.Content, vec); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (c *DatabaseClient) GetChunksByRun(ctx context.Context, runID string) ([]models.TextChunk, error) {
	const q = `
		SELECT id, position, text
		FROM research_chunks
		WHERE run_id = $1
		ORDER BY position ASC
	`
	rows, err := c.db.QueryContext(ctx, q, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.TextChunk
	for rows.Next() {
		var ch models.TextChunk
		if err := rows.Scan(&ch.ID, &ch.Position, &ch.Content); err != nil {
			return nil, err
		}
		out = append(out, ch)
	}
	return out, rows.Err()
}

// SearchChunks finds top-k similar chunks within a run for a query embedding.
// Score is the negated L2 distance, so larger is closer.
func (c *DatabaseClient) SearchChunks(ctx context.Context, runID string, queryVec []float32, limit int) ([]models.ScoredChunk, error) {
	const q = `
		SELECT id, position, text, embedding <-> $2 AS distance
		FROM research_chunks
		WHERE run_id = $1
		ORDER BY embedding <-> $2
		LIMIT $3
	`
	vec := pgvector.NewVector(queryVec)
	rows, err := c.db.QueryContext(ctx, q, runID, vec, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.ScoredChunk{}
	for rows.Next() {
		var (
			ch   models.TextChunk
			dist float64
		)
		if err := rows.Scan(&ch.ID, &ch.Position, &ch.Content, &dist); err != nil {
			return nil, err
		}
		out = append(out, models.ScoredChunk{Chunk: ch, Score: -dist})
	}
	return out, rows.Err()
}

func (c *DatabaseClient) DeleteRun(ctx context.Context, runID string) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM research_chunks WHERE run_id = $1`, runID)
	return err
}

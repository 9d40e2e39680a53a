package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/pgvector/pgvector-go"

	"github.com/stylemirror/stylemirror/internal/constants"
	"github.com/stylemirror/stylemirror/internal/database"
)

// LookRepository provides PostgreSQL-backed look storage with an optional
// in-memory HNSW index for similarity search.
type LookRepository struct {
	pool        *Pool
	hnswIndex   *database.LookIndex
	hnswEnabled bool
	hnswMu      sync.RWMutex
}

// NewLookRepository creates a new PostgreSQL look repository
func NewLookRepository(pool *Pool) *LookRepository {
	return &LookRepository{pool: pool}
}

// Save stores a look. The embedding column stays NULL when the look has no
// embedding; such looks are listed but never matched by similarity search.
func (r *LookRepository) Save(ctx context.Context, look *database.StoredLook) error {
	query := `
		INSERT INTO looks (id, session_id, kind, prompt, mime_type, image, embedding, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			kind = EXCLUDED.kind,
			prompt = EXCLUDED.prompt,
			mime_type = EXCLUDED.mime_type,
			image = EXCLUDED.image,
			embedding = EXCLUDED.embedding
	`

	var vec any
	if len(look.Embedding) > 0 {
		vec = pgvector.NewVector(look.Embedding)
	}

	_, err := r.pool.Exec(ctx, query,
		look.ID,
		look.SessionID,
		look.Kind,
		look.Prompt,
		look.MimeType,
		look.Image,
		vec,
		look.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save look: %w", err)
	}

	r.hnswMu.RLock()
	index := r.hnswIndex
	enabled := r.hnswEnabled
	r.hnswMu.RUnlock()
	if enabled && index != nil {
		index.Add(look)
	}

	return nil
}

// Get retrieves a look by ID, returns nil if not found
func (r *LookRepository) Get(ctx context.Context, id string) (*database.StoredLook, error) {
	query := `
		SELECT id, session_id, kind, prompt, mime_type, image, embedding, created_at
		FROM looks
		WHERE id = $1
	`

	look, err := scanLook(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query look: %w", err)
	}
	return look, nil
}

// List returns the most recent looks, newest first.
func (r *LookRepository) List(ctx context.Context, limit int) ([]database.StoredLook, error) {
	if limit <= 0 {
		limit = constants.DefaultSearchLimit
	}

	query := `
		SELECT id, session_id, kind, prompt, mime_type, image, embedding, created_at
		FROM looks
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query looks: %w", err)
	}
	defer rows.Close()

	return scanLooks(rows)
}

// ListBySession returns all looks generated in one session, oldest first.
func (r *LookRepository) ListBySession(ctx context.Context, sessionID string) ([]database.StoredLook, error) {
	query := `
		SELECT id, session_id, kind, prompt, mime_type, image, embedding, created_at
		FROM looks
		WHERE session_id = $1
		ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query session looks: %w", err)
	}
	defer rows.Close()

	return scanLooks(rows)
}

// Delete removes a look from the database
func (r *LookRepository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM looks WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete look: %w", err)
	}

	r.hnswMu.RLock()
	index := r.hnswIndex
	enabled := r.hnswEnabled
	r.hnswMu.RUnlock()
	if enabled && index != nil {
		index.Remove(id)
	}

	return nil
}

// Count returns the total number of stored looks
func (r *LookRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM looks").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count looks: %w", err)
	}
	return count, nil
}

// FindSimilar finds the most similar looks using cosine distance.
// Uses the in-memory HNSW index if enabled, otherwise falls back to PostgreSQL.
func (r *LookRepository) FindSimilar(ctx context.Context, embedding []float32, limit int) ([]database.LookMatch, error) {
	if limit <= 0 {
		limit = constants.DefaultSearchLimit
	}

	r.hnswMu.RLock()
	index := r.hnswIndex
	enabled := r.hnswEnabled && index != nil
	r.hnswMu.RUnlock()

	if enabled {
		matches, err := index.Search(embedding, limit)
		if err != nil {
			return nil, fmt.Errorf("HNSW search: %w", err)
		}
		return matches, nil
	}

	return r.findSimilarPostgres(ctx, embedding, limit)
}

// findSimilarPostgres uses PostgreSQL for similarity search with ef_search tuning
func (r *LookRepository) findSimilarPostgres(ctx context.Context, embedding []float32, limit int) ([]database.LookMatch, error) {
	tx, err := r.pool.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("SET LOCAL hnsw.ef_search = %d", constants.HNSWEfSearch)); err != nil {
		return nil, fmt.Errorf("set ef_search: %w", err)
	}

	query := `
		SELECT id, session_id, kind, prompt, mime_type, image, embedding, created_at,
		       embedding <=> $1::vector AS distance
		FROM looks
		WHERE embedding IS NOT NULL
		ORDER BY distance
		LIMIT $2
	`

	vec := pgvector.NewVector(embedding)
	rows, err := tx.QueryContext(ctx, query, vec, limit)
	if err != nil {
		return nil, fmt.Errorf("query similar looks: %w", err)
	}
	defer rows.Close()

	var matches []database.LookMatch
	for rows.Next() {
		var look database.StoredLook
		var lookVec sql.Null[pgvector.Vector]
		var dist float64

		if err := rows.Scan(
			&look.ID,
			&look.SessionID,
			&look.Kind,
			&look.Prompt,
			&look.MimeType,
			&look.Image,
			&lookVec,
			&look.CreatedAt,
			&dist,
		); err != nil {
			return nil, fmt.Errorf("scan similar look: %w", err)
		}
		if lookVec.Valid {
			look.Embedding = lookVec.V.Slice()
		}
		matches = append(matches, database.LookMatch{Look: look, Distance: dist})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate similar looks: %w", err)
	}
	return matches, nil
}

// EnableHNSW builds the in-memory index from all stored looks and switches
// similarity search over to it.
func (r *LookRepository) EnableHNSW(ctx context.Context) error {
	query := `
		SELECT id, session_id, kind, prompt, mime_type, image, embedding, created_at
		FROM looks
		WHERE embedding IS NOT NULL
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return fmt.Errorf("query looks for index: %w", err)
	}
	defer rows.Close()

	looks, err := scanLooks(rows)
	if err != nil {
		return err
	}

	index := database.NewLookIndex()
	index.BuildFromLooks(looks)

	r.hnswMu.Lock()
	r.hnswIndex = index
	r.hnswEnabled = true
	r.hnswMu.Unlock()
	return nil
}

// IndexCount returns the number of looks in the in-memory index, or 0 when
// the index is disabled.
func (r *LookRepository) IndexCount() int {
	r.hnswMu.RLock()
	defer r.hnswMu.RUnlock()
	if !r.hnswEnabled || r.hnswIndex == nil {
		return 0
	}
	return r.hnswIndex.Count()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLook(row rowScanner) (*database.StoredLook, error) {
	var look database.StoredLook
	var vec sql.Null[pgvector.Vector]

	if err := row.Scan(
		&look.ID,
		&look.SessionID,
		&look.Kind,
		&look.Prompt,
		&look.MimeType,
		&look.Image,
		&vec,
		&look.CreatedAt,
	); err != nil {
		return nil, err
	}
	if vec.Valid {
		look.Embedding = vec.V.Slice()
	}
	return &look, nil
}

func scanLooks(rows *sql.Rows) ([]database.StoredLook, error) {
	var looks []database.StoredLook
	for rows.Next() {
		look, err := scanLook(rows)
		if err != nil {
			return nil, fmt.Errorf("scan look: %w", err)
		}
		looks = append(looks, *look)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate looks: %w", err)
	}
	return looks, nil
}

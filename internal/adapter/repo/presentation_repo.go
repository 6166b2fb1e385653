package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"motionpitch/internal/domain"
)

// PresentationRepositoryPG implements domain.PresentationRepository. Slides
// are stored as a JSONB document so the ordered sequence round-trips as one
// value.
type PresentationRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewPresentationRepository creates a new presentation repository backed by
// PostgreSQL.
func NewPresentationRepository(pool *pgxpool.Pool) *PresentationRepositoryPG {
	return &PresentationRepositoryPG{pool: pool}
}

// Insert persists a completed presentation.
func (r *PresentationRepositoryPG) Insert(ctx context.Context, pres *domain.Presentation) error {
	slides, err := json.Marshal(pres.Slides)
	if err != nil {
		return fmt.Errorf("encode slides: %w", err)
	}

	query := `
INSERT INTO presentations (id, title, slides, owner_id, has_video, created_at)
VALUES ($1, $2, $3, $4, $5, $6);
`
	_, err = r.pool.Exec(ctx, query,
		pres.ID,
		pres.Title,
		slides,
		pres.OwnerID,
		pres.HasVideo,
		pres.CreatedAt,
	)
	return err
}

// GetByID fetches a presentation by its identifier.
func (r *PresentationRepositoryPG) GetByID(ctx context.Context, id string) (*domain.Presentation, error) {
	query := `
SELECT id, title, slides, owner_id, has_video, created_at
FROM presentations
WHERE id = $1;
`
	return scanPresentation(r.pool.QueryRow(ctx, query, id))
}

// ListByOwner returns the owner's presentations, newest first.
func (r *PresentationRepositoryPG) ListByOwner(ctx context.Context, ownerID string) ([]domain.Presentation, error) {
	query := `
SELECT id, title, slides, owner_id, has_video, created_at
FROM presentations
WHERE owner_id = $1
ORDER BY created_at DESC;
`
	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Presentation
	for rows.Next() {
		pres, err := scanPresentation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *pres)
	}
	return out, rows.Err()
}

func scanPresentation(row pgx.Row) (*domain.Presentation, error) {
	var (
		pres   domain.Presentation
		slides []byte
	)
	if err := row.Scan(&pres.ID, &pres.Title, &slides, &pres.OwnerID, &pres.HasVideo, &pres.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(slides, &pres.Slides); err != nil {
		return nil, fmt.Errorf("decode slides: %w", err)
	}
	return &pres, nil
}

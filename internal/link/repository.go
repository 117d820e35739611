package link

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/filelink/service/internal/storage"
)

// Repository persists link records keyed by slug.
type Repository interface {
	// Insert stores a new record. Returns ErrSlugTaken if the slug exists.
	Insert(ctx context.Context, l *Link) error
	// GetBySlug returns the record for slug, active or not.
	// Returns ErrNotFound if the slug is unknown.
	GetBySlug(ctx context.Context, slug string) (*Link, error)
	// Deactivate flips is_active off. Returns ErrNotFound for unknown slugs.
	Deactivate(ctx context.Context, slug string) error
	// Stats aggregates registry-wide counters.
	Stats(ctx context.Context) (*Stats, error)
}

// PostgresRepository implements Repository on a pgx connection pool.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a link repository over the given pool.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, l *Link) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO links
		   (slug, owner_namespace, bucket, storage_path, original_filename,
		    mime_type, size_bytes, password_hash, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id, is_active, created_at`,
		l.Slug, l.OwnerNamespace, string(l.Bucket), l.StoragePath,
		l.OriginalFilename, l.MimeType, l.SizeBytes, l.PasswordHash, l.ExpiresAt,
	).Scan(&l.ID, &l.IsActive, &l.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrSlugTaken
		}
		return fmt.Errorf("insert link: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetBySlug(ctx context.Context, slug string) (*Link, error) {
	l := &Link{}
	var bucket string
	err := r.db.QueryRow(ctx,
		`SELECT id, slug, owner_namespace, bucket, storage_path,
		        original_filename, mime_type, size_bytes, password_hash,
		        expires_at, is_active, created_at
		 FROM links WHERE slug = $1`,
		slug,
	).Scan(&l.ID, &l.Slug, &l.OwnerNamespace, &bucket, &l.StoragePath,
		&l.OriginalFilename, &l.MimeType, &l.SizeBytes, &l.PasswordHash,
		&l.ExpiresAt, &l.IsActive, &l.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get link by slug: %w", err)
	}
	l.Bucket = storage.Bucket(bucket)
	return l, nil
}

func (r *PostgresRepository) Deactivate(ctx context.Context, slug string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE links SET is_active = FALSE WHERE slug = $1`,
		slug,
	)
	if err != nil {
		return fmt.Errorf("deactivate link: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Stats(ctx context.Context) (*Stats, error) {
	s := &Stats{}
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE is_active),
		        COALESCE(SUM(size_bytes), 0)
		 FROM links`,
	).Scan(&s.TotalLinks, &s.ActiveLinks, &s.TotalBytes)
	if err != nil {
		return nil, fmt.Errorf("registry stats: %w", err)
	}
	return s, nil
}

// isUniqueViolation checks whether an error is a PostgreSQL unique_violation (code 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

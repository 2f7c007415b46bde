package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/portalkit/catalog/pkg/catalog"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements catalog.Repository using PostgreSQL
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository
func New(db DBTX) *Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

var _ catalog.Repository = (*Repository)(nil)

// Error handling helper
func (r *Repository) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("duplicate entry")
		case "23503": // foreign_key_violation
			return fmt.Errorf("referenced record not found")
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("record not found")
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}

const assetColumns = `id, title, category, tags, owner_id, owner_name, owner_email,
               public, view_count, created_at, updated_at,
               file_name, description, storage_key, byte_size, mime_type,
               download_count, probe_width, probe_height, probe_duration_seconds, probe_pages`

// Asset operations

func (r *Repository) CreateAsset(ctx context.Context, asset *catalog.Asset) error {
	query := `
		INSERT INTO catalog_asset (
			id, title, category, tags, owner_id, owner_name, owner_email,
			public, view_count, created_at, updated_at,
			file_name, description, storage_key, byte_size, mime_type,
			download_count, probe_width, probe_height, probe_duration_seconds, probe_pages
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`

	var width, height, pages *int
	var duration *float64
	if asset.Probe != nil {
		width, height = asset.Probe.Width, asset.Probe.Height
		duration = asset.Probe.DurationSeconds
		pages = asset.Probe.Pages
	}

	_, err := r.db.Exec(ctx, query,
		asset.ID, asset.Title, asset.Category, asset.Tags,
		asset.Owner.ID, asset.Owner.DisplayName, asset.Owner.Email,
		asset.Public, asset.ViewCount, asset.CreatedAt, asset.UpdatedAt,
		asset.FileName, asset.Description, asset.StorageKey, asset.ByteSize, asset.MimeType,
		asset.DownloadCount, width, height, duration, pages)

	if err != nil {
		return r.handlePostgresError("create asset", err)
	}
	return nil
}

func (r *Repository) GetAsset(ctx context.Context, id uuid.UUID) (*catalog.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM catalog_asset WHERE id = $1`

	asset, err := r.scanAssetRow(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrAssetNotFound
		}
		return nil, r.handlePostgresError("get asset", err)
	}
	return asset, nil
}

func (r *Repository) UpdateAsset(ctx context.Context, asset *catalog.Asset) error {
	query := `
		UPDATE catalog_asset SET
			title = $2, category = $3, tags = $4, public = $5,
			view_count = $6, download_count = $7, description = $8, updated_at = $9
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		asset.ID, asset.Title, asset.Category, asset.Tags, asset.Public,
		asset.ViewCount, asset.DownloadCount, asset.Description, asset.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("update asset", err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrAssetNotFound
	}
	return nil
}

func (r *Repository) DeleteAsset(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM catalog_asset WHERE id = $1`, id)
	if err != nil {
		return r.handlePostgresError("delete asset", err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrAssetNotFound
	}
	return nil
}

func (r *Repository) ListAssets(ctx context.Context, filters catalog.AssetListFilters) ([]*catalog.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM catalog_asset WHERE 1=1`

	args := []interface{}{}
	argIndex := 1

	if filters.Category != nil {
		query += fmt.Sprintf(" AND category = $%d", argIndex)
		args = append(args, *filters.Category)
		argIndex++
	}
	if filters.OwnerID != nil {
		query += fmt.Sprintf(" AND owner_id = $%d", argIndex)
		args = append(args, *filters.OwnerID)
		argIndex++
	}
	if filters.Public != nil {
		query += fmt.Sprintf(" AND public = $%d", argIndex)
		args = append(args, *filters.Public)
		argIndex++
	}
	if filters.Search != "" {
		// Free-text predicate runs before the cursor slice so later
		// pages never under-report matches.
		pattern := "%" + filters.Search + "%"
		query += fmt.Sprintf(` AND (title ILIKE $%d OR description ILIKE $%d OR category ILIKE $%d
			OR file_name ILIKE $%d
			OR EXISTS (SELECT 1 FROM unnest(tags) tag WHERE tag ILIKE $%d))`,
			argIndex, argIndex, argIndex, argIndex, argIndex)
		args = append(args, pattern)
		argIndex++
	}
	if filters.After != nil {
		query += fmt.Sprintf(" AND (created_at, id) < ($%d, $%d)", argIndex, argIndex+1)
		args = append(args, filters.After.CreatedAt, filters.After.ID)
		argIndex += 2
	}

	query += " ORDER BY created_at DESC, id DESC"

	if filters.Limit != nil {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, *filters.Limit)
		argIndex++
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, r.handlePostgresError("list assets", err)
	}
	defer rows.Close()

	var assets []*catalog.Asset
	for rows.Next() {
		asset, err := r.scanAssetRow(rows)
		if err != nil {
			return nil, r.handlePostgresError("scan asset", err)
		}
		assets = append(assets, asset)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("iterate asset rows", err)
	}
	return assets, nil
}

func (r *Repository) AllAssets(ctx context.Context) ([]*catalog.Asset, error) {
	noLimit := catalog.AssetListFilters{}
	return r.ListAssets(ctx, noLimit)
}

func (r *Repository) scanAssetRow(row pgx.Row) (*catalog.Asset, error) {
	var a catalog.Asset
	var width, height, pages *int
	var duration *float64
	err := row.Scan(
		&a.ID, &a.Title, &a.Category, &a.Tags, &a.Owner.ID, &a.Owner.DisplayName, &a.Owner.Email,
		&a.Public, &a.ViewCount, &a.CreatedAt, &a.UpdatedAt,
		&a.FileName, &a.Description, &a.StorageKey, &a.ByteSize, &a.MimeType,
		&a.DownloadCount, &width, &height, &duration, &pages)
	if err != nil {
		return nil, err
	}
	if width != nil || height != nil || duration != nil || pages != nil {
		a.Probe = &catalog.MediaProbe{Width: width, Height: height, DurationSeconds: duration, Pages: pages}
	}
	return &a, nil
}

const contentColumns = `id, title, category, tags, owner_id, owner_name, owner_email,
               public, view_count, created_at, updated_at,
               body, type, status, featured, published_at, scheduled_publish_at,
               attachments, likes, comments, liked_by`

func (r *Repository) scanContentRow(row pgx.Row) (*catalog.Content, error) {
	var c catalog.Content
	err := row.Scan(
		&c.ID, &c.Title, &c.Category, &c.Tags, &c.Owner.ID, &c.Owner.DisplayName, &c.Owner.Email,
		&c.Public, &c.ViewCount, &c.CreatedAt, &c.UpdatedAt,
		&c.Body, &c.Type, &c.Status, &c.Featured, &c.PublishedAt, &c.ScheduledPublishAt,
		&c.Attachments, &c.Likes, &c.Comments, &c.LikedBy)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Content operations

func (r *Repository) CreateContent(ctx context.Context, content *catalog.Content) error {
	query := `
		INSERT INTO catalog_content (
			id, title, category, tags, owner_id, owner_name, owner_email,
			public, view_count, created_at, updated_at,
			body, type, status, featured, published_at, scheduled_publish_at,
			attachments, likes, comments, liked_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`

	_, err := r.db.Exec(ctx, query,
		content.ID, content.Title, content.Category, content.Tags,
		content.Owner.ID, content.Owner.DisplayName, content.Owner.Email,
		content.Public, content.ViewCount, content.CreatedAt, content.UpdatedAt,
		content.Body, content.Type, content.Status, content.Featured,
		content.PublishedAt, content.ScheduledPublishAt,
		content.Attachments, content.Likes, content.Comments, content.LikedBy)

	if err != nil {
		return r.handlePostgresError("create content", err)
	}
	return nil
}

func (r *Repository) GetContent(ctx context.Context, id uuid.UUID) (*catalog.Content, error) {
	query := `SELECT ` + contentColumns + ` FROM catalog_content WHERE id = $1`

	content, err := r.scanContentRow(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrContentNotFound
		}
		return nil, r.handlePostgresError("get content", err)
	}
	return content, nil
}

func (r *Repository) UpdateContent(ctx context.Context, content *catalog.Content) error {
	query := `
		UPDATE catalog_content SET
			title = $2, category = $3, tags = $4, public = $5, view_count = $6,
			body = $7, type = $8, status = $9, featured = $10,
			published_at = $11, scheduled_publish_at = $12, attachments = $13,
			likes = $14, comments = $15, liked_by = $16, updated_at = $17
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		content.ID, content.Title, content.Category, content.Tags, content.Public, content.ViewCount,
		content.Body, content.Type, content.Status, content.Featured,
		content.PublishedAt, content.ScheduledPublishAt, content.Attachments,
		content.Likes, content.Comments, content.LikedBy, content.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("update content", err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrContentNotFound
	}
	return nil
}

func (r *Repository) DeleteContent(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM catalog_content WHERE id = $1`, id)
	if err != nil {
		return r.handlePostgresError("delete content", err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrContentNotFound
	}
	return nil
}

func (r *Repository) ListContents(ctx context.Context, filters catalog.ContentListFilters) ([]*catalog.Content, error) {
	query := `SELECT ` + contentColumns + ` FROM catalog_content WHERE 1=1`

	args := []interface{}{}
	argIndex := 1

	if filters.Category != nil {
		query += fmt.Sprintf(" AND category = $%d", argIndex)
		args = append(args, *filters.Category)
		argIndex++
	}
	if filters.OwnerID != nil {
		query += fmt.Sprintf(" AND owner_id = $%d", argIndex)
		args = append(args, *filters.OwnerID)
		argIndex++
	}
	if filters.Public != nil {
		query += fmt.Sprintf(" AND public = $%d", argIndex)
		args = append(args, *filters.Public)
		argIndex++
	}
	if filters.Type != nil {
		query += fmt.Sprintf(" AND type = $%d", argIndex)
		args = append(args, string(*filters.Type))
		argIndex++
	}
	if filters.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, string(*filters.Status))
		argIndex++
	}
	if filters.Featured != nil {
		query += fmt.Sprintf(" AND featured = $%d", argIndex)
		args = append(args, *filters.Featured)
		argIndex++
	}
	if filters.Search != "" {
		pattern := "%" + filters.Search + "%"
		query += fmt.Sprintf(` AND (title ILIKE $%d OR body ILIKE $%d OR category ILIKE $%d
			OR EXISTS (SELECT 1 FROM unnest(tags) tag WHERE tag ILIKE $%d))`,
			argIndex, argIndex, argIndex, argIndex)
		args = append(args, pattern)
		argIndex++
	}
	if filters.After != nil {
		query += fmt.Sprintf(" AND (created_at, id) < ($%d, $%d)", argIndex, argIndex+1)
		args = append(args, filters.After.CreatedAt, filters.After.ID)
		argIndex += 2
	}

	query += " ORDER BY created_at DESC, id DESC"

	if filters.Limit != nil {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, *filters.Limit)
		argIndex++
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, r.handlePostgresError("list contents", err)
	}
	defer rows.Close()

	var contents []*catalog.Content
	for rows.Next() {
		content, err := r.scanContentRow(rows)
		if err != nil {
			return nil, r.handlePostgresError("scan content", err)
		}
		contents = append(contents, content)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("iterate content rows", err)
	}
	return contents, nil
}

func (r *Repository) AllContents(ctx context.Context) ([]*catalog.Content, error) {
	return r.ListContents(ctx, catalog.ContentListFilters{})
}

// Counter operations. The increment runs server-side so concurrent
// bumps never lose an update.

func (r *Repository) IncrementAssetView(ctx context.Context, id uuid.UUID) error {
	return r.incrementAssetCounter(ctx, "view_count", id)
}

func (r *Repository) IncrementAssetDownload(ctx context.Context, id uuid.UUID) error {
	return r.incrementAssetCounter(ctx, "download_count", id)
}

func (r *Repository) incrementAssetCounter(ctx context.Context, column string, id uuid.UUID) error {
	query := fmt.Sprintf(`UPDATE catalog_asset SET %s = %s + 1, updated_at = now() WHERE id = $1`, column, column)

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return r.handlePostgresError("increment "+column, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrAssetNotFound
	}
	return nil
}

func (r *Repository) IncrementContentView(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE catalog_content SET view_count = view_count + 1, updated_at = now() WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return r.handlePostgresError("increment view_count", err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrContentNotFound
	}
	return nil
}

// Activity log operations

func (r *Repository) AppendActivity(ctx context.Context, entry *catalog.ActivityEntry) error {
	query := `
		INSERT INTO catalog_activity (id, action, subject_title, actor_name, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.Exec(ctx, query,
		entry.ID, entry.Action, entry.SubjectTitle, entry.ActorName, entry.CreatedAt)
	if err != nil {
		return r.handlePostgresError("append activity", err)
	}
	return nil
}

func (r *Repository) ListRecentActivity(ctx context.Context, limit int) ([]*catalog.ActivityEntry, error) {
	query := `
		SELECT id, action, subject_title, actor_name, created_at
		FROM catalog_activity
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, r.handlePostgresError("list recent activity", err)
	}
	defer rows.Close()

	var entries []*catalog.ActivityEntry
	for rows.Next() {
		var e catalog.ActivityEntry
		if err := rows.Scan(&e.ID, &e.Action, &e.SubjectTitle, &e.ActorName, &e.CreatedAt); err != nil {
			return nil, r.handlePostgresError("scan activity", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, r.handlePostgresError("iterate activity rows", err)
	}
	return entries, nil
}

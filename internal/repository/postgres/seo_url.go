package postgres

import (
	"context"
	"fmt"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/database"
)

// SeoURLRepository implements repository.SeoURLRepository using PostgreSQL.
type SeoURLRepository struct {
	pool database.DBTX
}

// NewSeoURLRepository creates a new PostgreSQL-backed SEO URL repository.
func NewSeoURLRepository(pool database.DBTX) *SeoURLRepository {
	return &SeoURLRepository{pool: pool}
}

// FindCanonicals looks up the canonical SEO path of each path info.
func (r *SeoURLRepository) FindCanonicals(ctx context.Context, salesChannelID, languageID string, pathInfos []string) (_ map[string]string, err error) {
	out := make(map[string]string, len(pathInfos))
	if len(pathInfos) == 0 {
		return out, nil
	}

	query := `
		SELECT path_info, seo_path_info
		FROM seo_urls
		WHERE sales_channel_id = $1 AND language_id = $2
		  AND is_canonical AND path_info = ANY($3)`

	ctx, end := database.TraceQuery(ctx, "FindCanonicalSeoURLs", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, salesChannelID, languageID, pathInfos)
	if err != nil {
		return nil, fmt.Errorf("find seo urls: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var pathInfo, seoPath string
		if err := rows.Scan(&pathInfo, &seoPath); err != nil {
			return nil, fmt.Errorf("scan seo url row: %w", err)
		}
		out[pathInfo] = seoPath
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate seo url rows: %w", err)
	}
	return out, nil
}

// Upsert stores u as the canonical SEO URL of its path info.
func (r *SeoURLRepository) Upsert(ctx context.Context, u *domain.SeoURL) (err error) {
	query := `
		INSERT INTO seo_urls (id, sales_channel_id, language_id, route_name, foreign_key, path_info, seo_path_info, is_canonical, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, true, now())
		ON CONFLICT (sales_channel_id, language_id, path_info) WHERE is_canonical
		DO UPDATE SET seo_path_info = EXCLUDED.seo_path_info, updated_at = now()`

	ctx, end := database.TraceQuery(ctx, "UpsertSeoURL", query)
	defer func() { end(err) }()

	_, err = r.pool.Exec(ctx, query,
		u.ID,
		u.SalesChannelID,
		u.LanguageID,
		u.RouteName,
		u.ForeignKey,
		u.PathInfo,
		u.SeoPathInfo,
	)
	if err != nil {
		return fmt.Errorf("upsert seo url: %w", err)
	}
	return nil
}

// DeleteByForeignKey removes the SEO URLs of an entity.
func (r *SeoURLRepository) DeleteByForeignKey(ctx context.Context, routeName, foreignKey string) (err error) {
	query := `DELETE FROM seo_urls WHERE route_name = $1 AND foreign_key = $2`

	ctx, end := database.TraceQuery(ctx, "DeleteSeoURLs", query)
	defer func() { end(err) }()

	if _, err = r.pool.Exec(ctx, query, routeName, foreignKey); err != nil {
		return fmt.Errorf("delete seo urls: %w", err)
	}
	return nil
}

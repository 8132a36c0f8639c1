package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/storefront/pkg/database"
)

// ThemeRepository implements repository.ThemeRepository using PostgreSQL.
type ThemeRepository struct {
	pool database.DBTX
}

// NewThemeRepository creates a new PostgreSQL-backed theme repository.
func NewThemeRepository(pool database.DBTX) *ThemeRepository {
	return &ThemeRepository{pool: pool}
}

// ThemeConfig returns the theme values of a sales channel. A channel without
// a theme row has an empty config.
func (r *ThemeRepository) ThemeConfig(ctx context.Context, salesChannelID string) (_ map[string]any, err error) {
	query := `SELECT config FROM theme_config WHERE sales_channel_id = $1`

	ctx, end := database.TraceQuery(ctx, "ThemeConfig", query)
	defer func() { end(err) }()

	var raw []byte
	if err = r.pool.QueryRow(ctx, query, salesChannelID).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("load theme config: %w", err)
	}

	cfg := map[string]any{}
	if err = json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("decode theme config: %w", err)
	}
	return cfg, nil
}

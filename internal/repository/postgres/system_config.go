package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/utafrali/storefront/pkg/database"
)

// SystemConfigRepository implements repository.SystemConfigRepository using PostgreSQL.
type SystemConfigRepository struct {
	pool database.DBTX
}

// NewSystemConfigRepository creates a new PostgreSQL-backed system config repository.
func NewSystemConfigRepository(pool database.DBTX) *SystemConfigRepository {
	return &SystemConfigRepository{pool: pool}
}

// Load returns global values overridden by the values of salesChannelID.
func (r *SystemConfigRepository) Load(ctx context.Context, salesChannelID string) (_ map[string]any, err error) {
	// Global rows sort first so channel rows overwrite them.
	query := `
		SELECT config_key, config_value
		FROM system_config
		WHERE sales_channel_id IS NULL OR sales_channel_id = $1
		ORDER BY sales_channel_id NULLS FIRST`

	ctx, end := database.TraceQuery(ctx, "LoadSystemConfig", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, salesChannelID)
	if err != nil {
		return nil, fmt.Errorf("load system config: %w", err)
	}
	defer rows.Close()

	values := make(map[string]any)
	for rows.Next() {
		var (
			key string
			raw []byte
		)
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, fmt.Errorf("scan system config row: %w", err)
		}

		var wrapped struct {
			Value any `json:"_value"`
		}
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return nil, fmt.Errorf("decode system config %s: %w", key, err)
		}
		values[key] = wrapped.Value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate system config rows: %w", err)
	}
	return values, nil
}

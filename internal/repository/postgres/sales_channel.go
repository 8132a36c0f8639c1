package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/database"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

const domainColumns = `
		d.id, d.sales_channel_id, d.language_id, d.currency_id, d.snippet_set_id, l.locale, d.url`

// SalesChannelRepository implements repository.SalesChannelRepository using PostgreSQL.
type SalesChannelRepository struct {
	pool database.DBTX
}

// NewSalesChannelRepository creates a new PostgreSQL-backed sales channel repository.
func NewSalesChannelRepository(pool database.DBTX) *SalesChannelRepository {
	return &SalesChannelRepository{pool: pool}
}

// ListDomains returns all sales channel domains.
func (r *SalesChannelRepository) ListDomains(ctx context.Context) (_ []domain.SalesChannelDomain, err error) {
	query := `
		SELECT` + domainColumns + `
		FROM sales_channel_domains d
		JOIN languages l ON l.id = d.language_id
		ORDER BY d.url`

	ctx, end := database.TraceQuery(ctx, "ListDomains", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list domains: %w", err)
	}
	defer rows.Close()

	var domains []domain.SalesChannelDomain
	for rows.Next() {
		var d domain.SalesChannelDomain
		if err := rows.Scan(&d.ID, &d.SalesChannelID, &d.LanguageID, &d.CurrencyID, &d.SnippetSetID, &d.Locale, &d.URL); err != nil {
			return nil, fmt.Errorf("scan domain row: %w", err)
		}
		domains = append(domains, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate domain rows: %w", err)
	}

	if domains == nil {
		domains = []domain.SalesChannelDomain{}
	}
	return domains, nil
}

// FindDomain returns the domain of a sales channel for a language.
func (r *SalesChannelRepository) FindDomain(ctx context.Context, salesChannelID, languageID string) (_ *domain.SalesChannelDomain, err error) {
	query := `
		SELECT` + domainColumns + `
		FROM sales_channel_domains d
		JOIN languages l ON l.id = d.language_id
		WHERE d.sales_channel_id = $1 AND d.language_id = $2
		ORDER BY length(d.url), d.url
		LIMIT 1`

	ctx, end := database.TraceQuery(ctx, "FindDomain", query)
	defer func() { end(err) }()

	var d domain.SalesChannelDomain
	err = r.pool.QueryRow(ctx, query, salesChannelID, languageID).Scan(
		&d.ID, &d.SalesChannelID, &d.LanguageID, &d.CurrencyID, &d.SnippetSetID, &d.Locale, &d.URL,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("sales channel domain", salesChannelID+"/"+languageID)
		}
		return nil, fmt.Errorf("find domain: %w", err)
	}
	return &d, nil
}

// LanguageAvailable reports whether the sales channel offers the language.
func (r *SalesChannelRepository) LanguageAvailable(ctx context.Context, salesChannelID, languageID string) (bool, error) {
	return r.exists(ctx, "LanguageAvailable", `
		SELECT EXISTS (
			SELECT 1 FROM sales_channel_languages
			WHERE sales_channel_id = $1 AND language_id = $2
		)`, salesChannelID, languageID)
}

// CurrencyAvailable reports whether the sales channel offers the currency.
func (r *SalesChannelRepository) CurrencyAvailable(ctx context.Context, salesChannelID, currencyID string) (bool, error) {
	return r.exists(ctx, "CurrencyAvailable", `
		SELECT EXISTS (
			SELECT 1 FROM sales_channel_currencies
			WHERE sales_channel_id = $1 AND currency_id = $2
		)`, salesChannelID, currencyID)
}

func (r *SalesChannelRepository) exists(ctx context.Context, op, query string, args ...any) (ok bool, err error) {
	ctx, end := database.TraceQuery(ctx, op, query)
	defer func() { end(err) }()

	if err = r.pool.QueryRow(ctx, query, args...).Scan(&ok); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return ok, nil
}

// ListLanguages returns the languages offered by a sales channel.
func (r *SalesChannelRepository) ListLanguages(ctx context.Context, salesChannelID string) (_ []domain.Language, err error) {
	query := `
		SELECT l.id, l.name, l.locale
		FROM languages l
		JOIN sales_channel_languages scl ON scl.language_id = l.id
		WHERE scl.sales_channel_id = $1
		ORDER BY l.name`

	ctx, end := database.TraceQuery(ctx, "ListLanguages", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, salesChannelID)
	if err != nil {
		return nil, fmt.Errorf("list languages: %w", err)
	}
	defer rows.Close()

	languages := []domain.Language{}
	for rows.Next() {
		var l domain.Language
		if err := rows.Scan(&l.ID, &l.Name, &l.Locale); err != nil {
			return nil, fmt.Errorf("scan language row: %w", err)
		}
		languages = append(languages, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate language rows: %w", err)
	}
	return languages, nil
}

// ListChannelLanguages returns the distinct (sales channel, language) pairs
// that have a domain.
func (r *SalesChannelRepository) ListChannelLanguages(ctx context.Context) (_ [][2]string, err error) {
	query := `
		SELECT DISTINCT sales_channel_id, language_id
		FROM sales_channel_domains
		ORDER BY sales_channel_id, language_id`

	ctx, end := database.TraceQuery(ctx, "ListChannelLanguages", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list channel languages: %w", err)
	}
	defer rows.Close()

	var pairs [][2]string
	for rows.Next() {
		var p [2]string
		if err := rows.Scan(&p[0], &p[1]); err != nil {
			return nil, fmt.Errorf("scan channel language row: %w", err)
		}
		pairs = append(pairs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate channel language rows: %w", err)
	}
	return pairs, nil
}

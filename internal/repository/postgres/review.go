package postgres

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/database"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

const reviewColumns = `id, product_id, customer_id, sales_channel_id, language_id, points, title, content, status, comment, created_at, updated_at`

// ReviewRepository implements review persistence operations using PostgreSQL.
type ReviewRepository struct {
	pool database.DBTX
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(pool database.DBTX) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

func scanReview(row pgx.Row, rv *domain.Review, extra ...any) error {
	dest := []any{
		&rv.ID,
		&rv.ProductID,
		&rv.CustomerID,
		&rv.SalesChannelID,
		&rv.LanguageID,
		&rv.Points,
		&rv.Title,
		&rv.Content,
		&rv.Status,
		&rv.Comment,
		&rv.CreatedAt,
		&rv.UpdatedAt,
	}
	return row.Scan(append(dest, extra...)...)
}

// Get returns a review by id.
func (r *ReviewRepository) Get(ctx context.Context, id string) (_ *domain.Review, err error) {
	query := `SELECT ` + reviewColumns + ` FROM product_reviews WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "GetReview", query)
	defer func() { end(err) }()

	var rv domain.Review
	if err = scanReview(r.pool.QueryRow(ctx, query, id), &rv); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("review", id)
		}
		return nil, fmt.Errorf("get review: %w", err)
	}
	return &rv, nil
}

// Create inserts a new product review into the database.
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) (err error) {
	query := `
		INSERT INTO product_reviews (` + reviewColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	ctx, end := database.TraceQuery(ctx, "CreateReview", query)
	defer func() { end(err) }()

	_, err = r.pool.Exec(ctx, query,
		review.ID,
		review.ProductID,
		review.CustomerID,
		review.SalesChannelID,
		review.LanguageID,
		review.Points,
		review.Title,
		review.Content,
		review.Status,
		review.Comment,
		review.CreatedAt,
		review.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

// Update rewrites the editable fields of a review.
func (r *ReviewRepository) Update(ctx context.Context, review *domain.Review) (err error) {
	query := `
		UPDATE product_reviews
		SET points = $2, title = $3, content = $4, status = $5, language_id = $6, updated_at = $7
		WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "UpdateReview", query)
	defer func() { end(err) }()

	tag, err := r.pool.Exec(ctx, query,
		review.ID,
		review.Points,
		review.Title,
		review.Content,
		review.Status,
		review.LanguageID,
		review.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("review", review.ID)
	}
	return nil
}

// List returns a page of active reviews matching filter, newest first unless
// sorted by points.
func (r *ReviewRepository) List(ctx context.Context, filter domain.ReviewFilter) (_ []domain.Review, _ int, err error) {
	where := []string{"product_id = $1", "status = true"}
	args := []any{filter.ProductID}

	if filter.LanguageID != "" {
		args = append(args, filter.LanguageID)
		where = append(where, fmt.Sprintf("language_id = $%d", len(args)))
	}
	if len(filter.Points) > 0 {
		args = append(args, filter.Points)
		where = append(where, fmt.Sprintf("points = ANY($%d)", len(args)))
	}

	order := "created_at DESC"
	if filter.Sort == domain.ReviewSortPoints {
		order = "points DESC, created_at DESC"
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	args = append(args, limit, filter.Offset)

	query := fmt.Sprintf(`
		SELECT %s, count(*) OVER() AS total_count
		FROM product_reviews
		WHERE %s
		ORDER BY %s
		LIMIT $%d OFFSET $%d`,
		reviewColumns, strings.Join(where, " AND "), order, len(args)-1, len(args))

	ctx, end := database.TraceQuery(ctx, "ListReviews", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var (
		reviews    []domain.Review
		totalCount int
	)
	for rows.Next() {
		var rv domain.Review
		if err := scanReview(rows, &rv, &totalCount); err != nil {
			return nil, 0, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate review rows: %w", err)
	}

	if reviews == nil {
		reviews = []domain.Review{}
	}
	return reviews, totalCount, nil
}

// Summary returns the rating matrix of the active reviews of a product.
func (r *ReviewRepository) Summary(ctx context.Context, productID string) (_ *domain.ReviewSummary, err error) {
	query := `
		SELECT points, COUNT(*)
		FROM product_reviews
		WHERE product_id = $1 AND status = true
		GROUP BY points`

	ctx, end := database.TraceQuery(ctx, "ReviewSummary", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("review summary: %w", err)
	}
	defer rows.Close()

	summary := &domain.ReviewSummary{PointCounts: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}}
	sum := 0
	for rows.Next() {
		var points, count int
		if err := rows.Scan(&points, &count); err != nil {
			return nil, fmt.Errorf("scan review summary row: %w", err)
		}
		summary.PointCounts[points] = count
		summary.TotalCount += count
		sum += points * count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review summary rows: %w", err)
	}

	if summary.TotalCount > 0 {
		avg := float64(sum) / float64(summary.TotalCount)
		summary.AverageRating = math.Round(avg*10) / 10
	}
	return summary, nil
}

// FindByCustomer returns the review customerID wrote for productID, or nil
// when there is none.
func (r *ReviewRepository) FindByCustomer(ctx context.Context, productID, customerID string) (_ *domain.Review, err error) {
	query := `SELECT ` + reviewColumns + ` FROM product_reviews WHERE product_id = $1 AND customer_id = $2`

	ctx, end := database.TraceQuery(ctx, "FindCustomerReview", query)
	defer func() { end(err) }()

	var rv domain.Review
	if err = scanReview(r.pool.QueryRow(ctx, query, productID, customerID), &rv); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find customer review: %w", err)
	}
	return &rv, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/event"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/pagination"
	"github.com/utafrali/storefront/pkg/validator"
)

// Review listing query parameters.
const (
	reviewPageKey        = "p"
	reviewLimitKey       = "limit"
	reviewDefaultLimit   = 10
	reviewMaxLimit       = 100
	reviewLanguageFilter = "filter-language"
)

// ReviewService implements saving product reviews.
type ReviewService struct {
	repo     repository.ReviewRepository
	producer *event.Producer
	logger   *slog.Logger
	now      func() time.Time
}

// NewReviewService creates a new review service.
func NewReviewService(repo repository.ReviewRepository, producer *event.Producer, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		repo:     repo,
		producer: producer,
		logger:   logger,
		now:      time.Now,
	}
}

// Save creates a review of productID by the customer of sc, or updates the
// customer's review named by sub.ID. Saved reviews wait for moderation.
func (s *ReviewService) Save(ctx context.Context, productID string, sub domain.ReviewSubmission, sc *domain.SalesChannelContext) (*domain.Review, error) {
	if !sc.LoggedIn() {
		return nil, apperrors.CustomerNotLoggedIn()
	}
	if err := validator.Validate(sub); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if sub.IsUpdate() {
		review, err := s.repo.Get(ctx, sub.ID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, validator.NewViolation("id", "REVIEW_NOT_FOUND", "does not name an existing review")
			}
			return nil, fmt.Errorf("get review: %w", err)
		}
		if review.CustomerID != sc.CustomerID || review.ProductID != productID {
			return nil, validator.NewViolation("id", "REVIEW_NOT_OWNED", "does not belong to the customer and product")
		}

		review.Points = sub.Points
		review.Title = sub.Title
		review.Content = sub.Content
		review.LanguageID = sc.LanguageID
		review.Status = false
		review.UpdatedAt = now
		if err := s.repo.Update(ctx, review); err != nil {
			return nil, fmt.Errorf("update review: %w", err)
		}
		s.published(ctx, review, false)
		return review, nil
	}

	review := &domain.Review{
		ID:             uuid.NewString(),
		ProductID:      productID,
		CustomerID:     sc.CustomerID,
		SalesChannelID: sc.SalesChannelID,
		LanguageID:     sc.LanguageID,
		Points:         sub.Points,
		Title:          sub.Title,
		Content:        sub.Content,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}
	s.published(ctx, review, true)
	return review, nil
}

func (s *ReviewService) published(ctx context.Context, review *domain.Review, created bool) {
	if err := s.producer.PublishReviewSaved(ctx, review, created); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.saved event",
			slog.String("review_id", review.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "review saved",
		slog.String("review_id", review.ID),
		slog.String("product_id", review.ProductID),
		slog.Bool("created", created),
	)
}

// ReviewLoader loads the review listing of a product.
type ReviewLoader struct {
	repo repository.ReviewRepository
}

// NewReviewLoader creates a new review loader.
func NewReviewLoader(repo repository.ReviewRepository) *ReviewLoader {
	return &ReviewLoader{repo: repo}
}

// Load reads one page of active reviews of productID. q carries the page
// ("p"), "limit", "sort", "language" and "points" parameters.
func (l *ReviewLoader) Load(ctx context.Context, productID string, q url.Values, sc *domain.SalesChannelContext) (*domain.ReviewPage, error) {
	params := pagination.FromQuery(q, pagination.Options{
		PageKey:      reviewPageKey,
		LimitKey:     reviewLimitKey,
		DefaultLimit: reviewDefaultLimit,
		MaxLimit:     reviewMaxLimit,
	})

	filter := domain.ReviewFilter{
		ProductID: productID,
		Points:    parsePoints(q),
		Sort:      domain.ReviewSortCreatedAt,
		Limit:     params.Limit,
		Offset:    params.Offset,
	}
	if q.Get("sort") == domain.ReviewSortPoints {
		filter.Sort = domain.ReviewSortPoints
	}
	languageFilter := q.Get("language") == reviewLanguageFilter
	if languageFilter {
		filter.LanguageID = sc.LanguageID
	}

	reviews, total, err := l.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	summary, err := l.repo.Summary(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("review summary: %w", err)
	}

	var own *domain.Review
	if sc.LoggedIn() {
		if own, err = l.repo.FindByCustomer(ctx, productID, sc.CustomerID); err != nil {
			return nil, fmt.Errorf("customer review: %w", err)
		}
	}

	result := pagination.NewResult(reviews, total, params)
	return &domain.ReviewPage{
		ProductID:      productID,
		Reviews:        result.Data,
		Total:          result.TotalCount,
		TotalReviews:   summary.TotalCount,
		Page:           result.Page,
		Limit:          result.Limit,
		TotalPages:     result.TotalPages,
		Sort:           filter.Sort,
		LanguageFilter: languageFilter,
		PointsFilter:   filter.Points,
		Summary:        summary,
		CustomerReview: own,
	}, nil
}

// parsePoints reads "points" and "points[]" values between 1 and 5.
func parsePoints(q url.Values) []int {
	var out []int
	seen := make(map[int]bool)
	for _, key := range []string{"points", "points[]"} {
		for _, raw := range q[key] {
			p, err := strconv.Atoi(raw)
			if err != nil || p < 1 || p > 5 || seen[p] {
				continue
			}
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}

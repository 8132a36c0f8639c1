package domain

import "time"

// Review is a customer review of a product. New and edited reviews wait
// for moderation with Status false.
type Review struct {
	ID             string    `json:"id"`
	ProductID      string    `json:"product_id"`
	CustomerID     string    `json:"customer_id"`
	SalesChannelID string    `json:"sales_channel_id"`
	LanguageID     string    `json:"language_id"`
	Points         int       `json:"points"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	Status         bool      `json:"status"`
	Comment        string    `json:"comment,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ReviewSubmission is the form a customer posts. A non-empty ID updates an
// existing review of the same customer.
type ReviewSubmission struct {
	ID       string `form:"id" validate:"omitempty,uuid"`
	ParentID string `form:"parentId" validate:"omitempty,uuid"`
	Points   int    `form:"points" validate:"required,min=1,max=5"`
	Title    string `form:"title" validate:"required,min=5,max=255"`
	Content  string `form:"content" validate:"required,min=40"`

	// IDSent is set when the form carried an id field, even an empty one.
	IDSent bool `form:"-"`
}

// IsUpdate reports whether the submission edits an existing review.
func (s ReviewSubmission) IsUpdate() bool {
	return s.ID != ""
}

// Review sort orders.
const (
	ReviewSortCreatedAt = "createdAt"
	ReviewSortPoints    = "points"
)

// ReviewFilter narrows a review listing.
type ReviewFilter struct {
	ProductID  string
	LanguageID string
	Points     []int
	Sort       string
	Limit      int
	Offset     int
}

// ReviewSummary holds the rating matrix of a product.
type ReviewSummary struct {
	AverageRating float64     `json:"averageRating"`
	TotalCount    int         `json:"totalCount"`
	PointCounts   map[int]int `json:"pointCounts"`
}

// ReviewPage is the data behind the review listing fragment.
type ReviewPage struct {
	ProductID      string         `json:"productId"`
	Reviews        []Review       `json:"reviews"`
	Total          int            `json:"total"`
	TotalReviews   int            `json:"totalReviews"`
	Page           int            `json:"page"`
	Limit          int            `json:"limit"`
	TotalPages     int            `json:"totalPages"`
	Sort           string         `json:"sort"`
	LanguageFilter bool           `json:"languageFilter"`
	PointsFilter   []int          `json:"pointsFilter,omitempty"`
	Summary        *ReviewSummary `json:"summary"`
	CustomerReview *Review        `json:"customerReview,omitempty"`
}

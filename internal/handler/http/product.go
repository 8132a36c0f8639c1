package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/storefront/internal/cache"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/routing"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/validator"
)

// Review save outcomes passed to the review listing as "success".
const (
	reviewSaveFailed  = -1
	reviewSaveCreated = 1
	reviewSaveUpdated = 2
)

// Forward attribute keys of a review save.
const (
	attrSuccess    = "success"
	attrViolations = "formViolations"
	attrData       = "data"
	attrParentID   = "parentId"
)

// ProductDeps groups the collaborators of ProductHandler.
type ProductDeps struct {
	Pages     ProductPageLoader
	QuickView QuickViewLoader
	Variants  VariantFinder
	Reviews   ReviewService
	Listing   ReviewLoader
	Config    ConfigStore
	SeoURLs   SeoURLGenerator
}

// ProductHandler handles the product detail, variant switch and review
// endpoints.
type ProductHandler struct {
	deps     ProductDeps
	renderer *Renderer
	actions  *ActionResponder
	logger   *slog.Logger
}

// NewProductHandler creates a new product HTTP handler.
func NewProductHandler(deps ProductDeps, renderer *Renderer, actions *ActionResponder, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		deps:     deps,
		renderer: renderer,
		actions:  actions,
		logger:   logger,
	}
}

// Index handles GET /detail/{productId}.
func (h *ProductHandler) Index(w http.ResponseWriter, r *http.Request) {
	sc, err := salesChannelContext(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	page, err := h.deps.Pages.Load(r.Context(), chi.URLParam(r, "productId"), sc)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.renderer.Render(w, r, tmplProductDetail, map[string]any{
		"page":          page,
		"ratingSuccess": r.URL.Query().Get("success"),
	})
}

// Switch handles GET /detail/{productId}/switch and answers with the URL of
// the variant matching the selected options.
func (h *ProductHandler) Switch(w http.ResponseWriter, r *http.Request) {
	sc, err := salesChannelContext(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	q := r.URL.Query()
	options := map[string]string{}
	if raw := q.Get("options"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &options); err != nil {
			httputil.WriteError(w, r, apperrors.InvalidInput("options must be a JSON object of option ids"), h.logger)
			return
		}
	}

	found, err := h.deps.Variants.Find(r.Context(), domain.VariantSelection{
		ProductID: chi.URLParam(r, "productId"),
		Switched:  q.Get("switched"),
		Options:   options,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	// Updates of the resolved variant must drop the cached answer too.
	cache.AddTags(r.Context(), cache.ProductTag(found.VariantID))

	placeholder, err := h.deps.SeoURLs.Generate(routing.RouteDetail, map[string]any{"productId": found.VariantID})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	attrs, _ := routing.AttributesFromContext(r.Context())
	target, err := h.deps.SeoURLs.Replace(r.Context(), placeholder, attrs.Host(), sc)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"url": target})
}

// QuickviewMinimal handles GET /quickview/{productId}.
func (h *ProductHandler) QuickviewMinimal(w http.ResponseWriter, r *http.Request) {
	sc, err := salesChannelContext(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	page, err := h.deps.QuickView.Load(r.Context(), chi.URLParam(r, "productId"), sc)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.renderer.Render(w, r, tmplQuickView, map[string]any{"page": page})
}

// SaveReview handles POST /product/{productId}/rating. The outcome is shown
// by forwarding to the review listing.
func (h *ProductHandler) SaveReview(w http.ResponseWriter, r *http.Request) {
	sc, err := salesChannelContext(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if err := h.checkReviewsActive(r, sc); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if !sc.LoggedIn() {
		httputil.WriteError(w, r, apperrors.CustomerNotLoggedIn(), h.logger)
		return
	}

	productID := chi.URLParam(r, "productId")
	sub := parseReviewSubmission(r)
	routeParams := map[string]string{"productId": productID}

	if _, err := h.deps.Reviews.Save(r.Context(), productID, sub, sc); err != nil {
		var valErr *validator.ValidationError
		if !errors.As(err, &valErr) {
			httputil.WriteError(w, r, err, h.logger)
			return
		}
		h.actions.ForwardToRoute(w, r, routing.RouteReviews, map[string]any{
			"productId":    productID,
			attrSuccess:    reviewSaveFailed,
			attrViolations: valErr.Violations(),
			attrData:       &sub,
		}, routeParams)
		return
	}

	success := reviewSaveCreated
	if sub.IDSent {
		success = reviewSaveUpdated
	}
	h.actions.ForwardToRoute(w, r, routing.RouteReviews, map[string]any{
		"productId":  productID,
		attrSuccess:  success,
		attrData:     &sub,
		attrParentID: sub.ParentID,
	}, routeParams)
}

// LoadReviews handles GET|POST /product/{productId}/reviews.
func (h *ProductHandler) LoadReviews(w http.ResponseWriter, r *http.Request) {
	sc, err := salesChannelContext(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if err := h.checkReviewsActive(r, sc); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	reviews, err := h.deps.Listing.Load(r.Context(), chi.URLParam(r, "productId"), r.URL.Query(), sc)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	data := map[string]any{
		"reviews":       reviews,
		"ratingSuccess": r.URL.Query().Get("success"),
	}
	if v, ok := routing.Forwarded(r.Context(), attrSuccess); ok {
		data["ratingSuccess"] = v
	}
	if v, ok := routing.Forwarded(r.Context(), attrViolations); ok {
		data["violations"] = v
	}
	if v, ok := routing.Forwarded(r.Context(), attrData); ok {
		data["data"] = v
	}

	h.renderer.Render(w, r, tmplReviews, data)
}

// checkReviewsActive fails with ReviewNotActive unless reviews are enabled
// for the sales channel.
func (h *ProductHandler) checkReviewsActive(r *http.Request, sc *domain.SalesChannelContext) error {
	active, err := h.deps.Config.GetBool(r.Context(), domain.ConfigShowReview, sc.SalesChannelID)
	if err != nil {
		return err
	}
	if !active {
		return apperrors.ReviewNotActive()
	}
	return nil
}

func parseReviewSubmission(r *http.Request) domain.ReviewSubmission {
	points, _ := strconv.Atoi(strings.TrimSpace(r.FormValue("points")))
	_, idSent := r.Form["id"]
	return domain.ReviewSubmission{
		ID:       strings.TrimSpace(r.FormValue("id")),
		ParentID: strings.TrimSpace(r.FormValue("parentId")),
		Points:   points,
		Title:    r.FormValue("title"),
		Content:  r.FormValue("content"),
		IDSent:   idSent,
	}
}

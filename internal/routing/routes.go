package routing

import "net/http"

// Storefront route names.
const (
	RouteHome           = "frontend.home.page"
	RouteConfigure      = "frontend.checkout.configure"
	RouteSwitchLanguage = "frontend.checkout.switch-language"
	RouteDetail         = "frontend.detail.page"
	RouteDetailSwitch   = "frontend.detail.switch"
	RouteQuickView      = "widgets.quickview.minimal"
	RouteReviewSave     = "frontend.detail.review.save"
	RouteReviews        = "frontend.product.reviews"
)

// StorefrontRoutes is the route table of the storefront.
func StorefrontRoutes() []Route {
	return []Route{
		{Name: RouteHome, Methods: []string{http.MethodGet}, Pattern: "/"},
		{Name: RouteConfigure, Methods: []string{http.MethodPost}, Pattern: "/checkout/configure"},
		{Name: RouteSwitchLanguage, Methods: []string{http.MethodPost}, Pattern: "/checkout/language"},
		{Name: RouteDetail, Methods: []string{http.MethodGet}, Pattern: "/detail/{productId}"},
		{Name: RouteDetailSwitch, Methods: []string{http.MethodGet}, Pattern: "/detail/{productId}/switch"},
		{Name: RouteQuickView, Methods: []string{http.MethodGet}, Pattern: "/quickview/{productId}"},
		{Name: RouteReviewSave, Methods: []string{http.MethodPost}, Pattern: "/product/{productId}/rating"},
		{Name: RouteReviews, Methods: []string{http.MethodGet, http.MethodPost}, Pattern: "/product/{productId}/reviews"},
	}
}

// NewStorefrontRouter builds the router of StorefrontRoutes.
func NewStorefrontRouter() *Router {
	r, err := NewRouter(StorefrontRoutes()...)
	if err != nil {
		// the table above is static
		panic(err)
	}
	return r
}

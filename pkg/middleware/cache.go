package middleware

import (
	"fmt"
	"net/http"
)

// CacheControl marks anonymous GET responses as publicly cacheable for
// maxAge seconds. Responses for logged-in customers are never shared.
func CacheControl(maxAge int) func(http.Handler) http.Handler {
	public := fmt.Sprintf("public, max-age=%d", maxAge)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch {
			case r.Method != http.MethodGet:
				w.Header().Set("Cache-Control", "no-store")
			case CustomerIDFromContext(r.Context()) != "":
				w.Header().Set("Cache-Control", "private, no-store")
			default:
				w.Header().Set("Cache-Control", public)
			}
			next.ServeHTTP(w, r)
		})
	}
}

package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/routing"
	"github.com/utafrali/storefront/pkg/middleware"
)

func contextProbe(got **domain.SalesChannelContext, customer *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sc, _ := SalesChannelContextFrom(r.Context())
		*got = sc
		*customer = middleware.CustomerIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
}

func withAttributes(attrs routing.Attributes, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(routing.WithAttributes(r.Context(), attrs)))
	})
}

func TestSalesChannelContextMiddleware_TokenFromHeader(t *testing.T) {
	resolver := new(mockResolver)
	resolver.On("Resolve", mock.Anything, "tok-1", testAttributes(), "").Return(guestContext(), nil)

	var got *domain.SalesChannelContext
	var customer string
	handler := withAttributes(testAttributes(),
		SalesChannelContextMiddleware(resolver, time.Hour, testLogger())(contextProbe(&got, &customer)))

	req := httptest.NewRequest(http.MethodGet, testHost+"/detail/p-1", nil)
	req.Header.Set(middleware.ContextTokenHeader, "tok-1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "tok-1", rec.Header().Get(middleware.ContextTokenHeader))
	assert.Equal(t, guestContext(), got)
	assert.Empty(t, customer)

	cookies := rec.Result().Cookies()
	if assert.Len(t, cookies, 1) {
		assert.Equal(t, middleware.ContextTokenHeader, cookies[0].Name)
		assert.Equal(t, "tok-1", cookies[0].Value)
		assert.True(t, cookies[0].HttpOnly)
	}
	resolver.AssertExpectations(t)
}

func TestSalesChannelContextMiddleware_TokenFromCookie(t *testing.T) {
	resolver := new(mockResolver)
	resolver.On("Resolve", mock.Anything, "tok-cookie", testAttributes(), "").Return(guestContext(), nil)

	var got *domain.SalesChannelContext
	var customer string
	handler := withAttributes(testAttributes(),
		SalesChannelContextMiddleware(resolver, time.Hour, testLogger())(contextProbe(&got, &customer)))

	req := httptest.NewRequest(http.MethodGet, testHost+"/", nil)
	req.AddCookie(&http.Cookie{Name: middleware.ContextTokenHeader, Value: "tok-cookie"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	resolver.AssertExpectations(t)
}

func TestSalesChannelContextMiddleware_CustomerFromContext(t *testing.T) {
	resolver := new(mockResolver)
	resolver.On("Resolve", mock.Anything, "", testAttributes(), "").Return(customerContext(), nil)

	var got *domain.SalesChannelContext
	var customer string
	handler := withAttributes(testAttributes(),
		SalesChannelContextMiddleware(resolver, time.Hour, testLogger())(contextProbe(&got, &customer)))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, testHost+"/", nil))

	assert.Equal(t, "cust-1", customer)
}

func TestSalesChannelContextMiddleware_PassesAuthenticatedCustomer(t *testing.T) {
	resolver := new(mockResolver)
	resolver.On("Resolve", mock.Anything, "", testAttributes(), "cust-7").Return(customerContext(), nil)

	var got *domain.SalesChannelContext
	var customer string
	handler := withAttributes(testAttributes(),
		SalesChannelContextMiddleware(resolver, time.Hour, testLogger())(contextProbe(&got, &customer)))

	req := httptest.NewRequest(http.MethodGet, testHost+"/", nil)
	req = req.WithContext(middleware.WithCustomerID(req.Context(), "cust-7"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "cust-7", customer)
	resolver.AssertExpectations(t)
}

func TestSalesChannelContextMiddleware_NoDomain(t *testing.T) {
	resolver := new(mockResolver)
	var got *domain.SalesChannelContext
	var customer string
	handler := SalesChannelContextMiddleware(resolver, time.Hour, testLogger())(contextProbe(&got, &customer))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, testHost+"/", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	resolver.AssertNotCalled(t, "Resolve", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCacheVariation(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, testHost+"/", nil)
	assert.Empty(t, CacheVariation(req))

	req = req.WithContext(WithSalesChannelContext(req.Context(), guestContext()))
	assert.Equal(t, "lang-en|eur", CacheVariation(req))
}

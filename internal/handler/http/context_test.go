package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/routing"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/validator"
)

func setupContextHandler(switcher *mockSwitcher) (http.Handler, *routing.Forwarder) {
	router := routing.NewStorefrontRouter()
	forwarder := routing.NewForwarder()
	actions := NewActionResponder(router, forwarder, testLogger())
	h := NewContextHandler(switcher, router, actions, testLogger())

	r := newChiRouter(testAttributes(), guestContext())
	r.Post("/checkout/configure", h.Configure)
	r.Post("/checkout/language", h.SwitchLanguage)
	return r, forwarder
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) *httputil.ErrorResponse {
	t.Helper()
	var resp httputil.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.NotNil(t, resp.Error)
	return resp.Error
}

func languageSwitch(languageID string) domain.ContextSwitch {
	return domain.ContextSwitch{domain.ParamLanguageID: languageID}
}

// =============================================================================
// SwitchLanguage
// =============================================================================

func TestSwitchLanguage_SameDomainRedirectsToRoute(t *testing.T) {
	switcher := new(mockSwitcher)
	handler, _ := setupContextHandler(switcher)

	switcher.On("Switch", mock.Anything, mock.Anything, languageSwitch("lang-de")).
		Return(&domain.ContextSwitchResult{Token: "tok-1"}, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, postForm(testHost+"/checkout/language", url.Values{
		"languageId":         {"lang-de"},
		"redirectTo":         {routing.RouteDetail},
		"redirectParameters": {`{"productId":"p-1","tab":"reviews"}`},
	}))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/en/detail/p-1?tab=reviews", rec.Header().Get("Location"))
	switcher.AssertExpectations(t)
}

func TestSwitchLanguage_DefaultsToHome(t *testing.T) {
	tests := []struct {
		name string
		form url.Values
	}{
		{"absent", url.Values{"languageId": {"lang-de"}}},
		{"empty", url.Values{"languageId": {"lang-de"}, "redirectTo": {""}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			switcher := new(mockSwitcher)
			handler, _ := setupContextHandler(switcher)
			switcher.On("Switch", mock.Anything, mock.Anything, languageSwitch("lang-de")).
				Return(&domain.ContextSwitchResult{Token: "tok-1"}, nil)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, postForm(testHost+"/checkout/language", tt.form))

			assert.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, "/en/", rec.Header().Get("Location"))
		})
	}
}

func TestSwitchLanguage_BracketedRedirectParameters(t *testing.T) {
	switcher := new(mockSwitcher)
	handler, _ := setupContextHandler(switcher)
	switcher.On("Switch", mock.Anything, mock.Anything, languageSwitch("lang-de")).
		Return(&domain.ContextSwitchResult{Token: "tok-1"}, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, postForm(testHost+"/checkout/language", url.Values{
		"languageId":                    {"lang-de"},
		"redirectTo":                    {routing.RouteQuickView},
		"redirectParameters[productId]": {"p-9"},
	}))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/en/quickview/p-9", rec.Header().Get("Location"))
}

func TestSwitchLanguage_DomainChangeUsesTargetDomain(t *testing.T) {
	tests := []struct {
		name        string
		requestURL  string
		proto       string
		redirectURL string
		redirectTo  string
		params      string
		want        string
	}{
		{
			name:        "port and base path",
			redirectURL: "http://localhost:8080/de-DE/",
			redirectTo:  routing.RouteDetail,
			params:      `{"productId":"p-1"}`,
			want:        "http://localhost:8080/de-DE/detail/p-1",
		},
		{
			name:        "bare host",
			redirectURL: "http://shop.example.fr",
			want:        "http://shop.example.fr/",
		},
		{
			name:        "https with port",
			redirectURL: "https://shop.example.de:8443/de",
			redirectTo:  routing.RouteDetail,
			params:      `{"productId":"p-2"}`,
			want:        "https://shop.example.de:8443/de/detail/p-2",
		},
		{
			name:        "default port omitted",
			redirectURL: "http://shop.example.com:80/en//",
			want:        "http://shop.example.com/en/",
		},
		{
			name:        "https target drops the request port",
			requestURL:  "https://shop.test:8443",
			proto:       "https",
			redirectURL: "https://shop.example.fr/fr",
			want:        "https://shop.example.fr/fr/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			switcher := new(mockSwitcher)
			handler, _ := setupContextHandler(switcher)
			switcher.On("Switch", mock.Anything, mock.Anything, languageSwitch("lang-de")).
				Return(&domain.ContextSwitchResult{Token: "tok-1", RedirectURL: tt.redirectURL}, nil)

			form := url.Values{"languageId": {"lang-de"}}
			if tt.redirectTo != "" {
				form.Set("redirectTo", tt.redirectTo)
			}
			if tt.params != "" {
				form.Set("redirectParameters", tt.params)
			}

			requestURL := testHost
			if tt.requestURL != "" {
				requestURL = tt.requestURL
			}
			req := postForm(requestURL+"/checkout/language", form)
			if tt.proto != "" {
				req.Header.Set("X-Forwarded-Proto", tt.proto)
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, tt.want, rec.Header().Get("Location"))
		})
	}
}

func TestSwitchLanguage_DomainChangeLeavesOtherRequestsAlone(t *testing.T) {
	switcher := new(mockSwitcher)
	handler, _ := setupContextHandler(switcher)
	switcher.On("Switch", mock.Anything, mock.Anything, languageSwitch("lang-de")).
		Return(&domain.ContextSwitchResult{Token: "tok-1", RedirectURL: "http://shop.example.de/de"}, nil).Once()
	switcher.On("Switch", mock.Anything, mock.Anything, languageSwitch("lang-en")).
		Return(&domain.ContextSwitchResult{Token: "tok-1"}, nil).Once()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, postForm(testHost+"/checkout/language", url.Values{"languageId": {"lang-de"}}))
	assert.Equal(t, "http://shop.example.de/de/", rec.Header().Get("Location"))

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, postForm(testHost+"/checkout/language", url.Values{"languageId": {"lang-en"}}))
	assert.Equal(t, "/en/", rec.Header().Get("Location"))
}

func TestSwitchLanguage_MissingLanguageID(t *testing.T) {
	switcher := new(mockSwitcher)
	handler, _ := setupContextHandler(switcher)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, postForm(testHost+"/checkout/language", url.Values{"redirectTo": {routing.RouteHome}}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "MISSING_PARAMETER", decodeError(t, rec).Code)
	switcher.AssertNotCalled(t, "Switch", mock.Anything, mock.Anything, mock.Anything)
}

func TestSwitchLanguage_ViolationBecomesLanguageNotFound(t *testing.T) {
	switcher := new(mockSwitcher)
	handler, _ := setupContextHandler(switcher)
	switcher.On("Switch", mock.Anything, mock.Anything, languageSwitch("nope")).
		Return(nil, validator.NewViolation("languageId", "LANGUAGE_NOT_AVAILABLE", "is not available"))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, postForm(testHost+"/checkout/language", url.Values{"languageId": {"nope"}}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	errResp := decodeError(t, rec)
	assert.Equal(t, "LANGUAGE_NOT_FOUND", errResp.Code)
	assert.Contains(t, errResp.Message, "nope")
}

func TestSwitchLanguage_RedirectURLWithoutHost(t *testing.T) {
	switcher := new(mockSwitcher)
	handler, _ := setupContextHandler(switcher)
	switcher.On("Switch", mock.Anything, mock.Anything, languageSwitch("lang-de")).
		Return(&domain.ContextSwitchResult{Token: "tok-1", RedirectURL: "/de"}, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, postForm(testHost+"/checkout/language", url.Values{"languageId": {"lang-de"}}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "LANGUAGE_NOT_FOUND", decodeError(t, rec).Code)
}

func TestSwitchLanguage_UnknownRedirectRoute(t *testing.T) {
	switcher := new(mockSwitcher)
	handler, _ := setupContextHandler(switcher)
	switcher.On("Switch", mock.Anything, mock.Anything, languageSwitch("lang-de")).
		Return(&domain.ContextSwitchResult{Token: "tok-1"}, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, postForm(testHost+"/checkout/language", url.Values{
		"languageId": {"lang-de"},
		"redirectTo": {"frontend.unknown"},
	}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// Configure
// =============================================================================

func TestConfigure_PassesEveryFieldAndAnswersSuccess(t *testing.T) {
	switcher := new(mockSwitcher)
	handler, _ := setupContextHandler(switcher)

	want := domain.ContextSwitch{"currencyId": "usd", "shippingMethodId": "ship-1"}
	switcher.On("Switch", mock.Anything, mock.Anything, want).
		Return(&domain.ContextSwitchResult{Token: "tok-1"}, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, postForm(testHost+"/checkout/configure", url.Values{
		"currencyId":       {"usd"},
		"shippingMethodId": {"ship-1"},
	}))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]bool
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.True(t, body["success"])
	switcher.AssertExpectations(t)
}

func TestConfigure_RedirectTo(t *testing.T) {
	switcher := new(mockSwitcher)
	handler, _ := setupContextHandler(switcher)
	switcher.On("Switch", mock.Anything, mock.Anything, mock.Anything).
		Return(&domain.ContextSwitchResult{Token: "tok-1"}, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, postForm(testHost+"/checkout/configure", url.Values{
		"currencyId":         {"usd"},
		"redirectTo":         {routing.RouteDetail},
		"redirectParameters": {`{"productId":"p-3"}`},
	}))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/en/detail/p-3", rec.Header().Get("Location"))
}

func TestConfigure_ForwardTo(t *testing.T) {
	switcher := new(mockSwitcher)
	handler, forwarder := setupContextHandler(switcher)
	switcher.On("Switch", mock.Anything, mock.Anything, mock.Anything).
		Return(&domain.ContextSwitchResult{Token: "tok-1"}, nil)

	var gotProduct string
	forwarder.Handle(routing.RouteQuickView, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotProduct = chiParam(r, "productId")
		w.WriteHeader(http.StatusAccepted)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, postForm(testHost+"/checkout/configure", url.Values{
		"forwardTo":         {routing.RouteQuickView},
		"forwardParameters": {`{"productId":"p-4"}`},
	}))

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "p-4", gotProduct)
}

func TestConfigure_SwitchErrorPropagates(t *testing.T) {
	switcher := new(mockSwitcher)
	handler, _ := setupContextHandler(switcher)
	switcher.On("Switch", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, validator.NewViolation("currencyId", "CURRENCY_NOT_AVAILABLE", "is not available"))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, postForm(testHost+"/checkout/configure", url.Values{"currencyId": {"gbp"}}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	errResp := decodeError(t, rec)
	assert.Equal(t, "VALIDATION_ERROR", errResp.Code)
	assert.Contains(t, errResp.Fields, "currencyId")
}

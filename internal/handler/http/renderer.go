package http

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/routing"
	"github.com/utafrali/storefront/internal/snippet"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httputil"
)

//go:embed templates/*.html
var templateFS embed.FS

// Template names.
const (
	tmplHome          = "home"
	tmplProductDetail = "product-detail"
	tmplQuickView     = "quickview-minimal"
	tmplReviews       = "reviews"
)

// ThemeConfigReader serves theme config values to templates.
type ThemeConfigReader interface {
	Get(ctx context.Context, salesChannelID, key string) (any, error)
}

// Renderer renders the embedded page templates. Each render binds the
// template functions to the request and swaps SEO URL placeholders in the
// output.
type Renderer struct {
	templates *template.Template
	snippets  *snippet.Service
	theme     ThemeConfigReader
	languages LanguageLister
	seo       SeoURLGenerator
	logger    *slog.Logger
}

// NewRenderer parses the embedded templates.
func NewRenderer(snippets *snippet.Service, theme ThemeConfigReader, languages LanguageLister, seo SeoURLGenerator, logger *slog.Logger) (*Renderer, error) {
	t, err := template.New("storefront").Funcs(requestFuncs(context.Background(), nil, "", "")).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{
		templates: t,
		snippets:  snippets,
		theme:     theme,
		languages: languages,
		seo:       seo,
		logger:    logger,
	}, nil
}

// Render writes template name with data as a 200 HTML response.
func (rd *Renderer) Render(w http.ResponseWriter, r *http.Request, name string, data map[string]any) {
	ctx := r.Context()
	sc, err := salesChannelContext(r)
	if err != nil {
		httputil.WriteError(w, r, err, rd.logger)
		return
	}
	attrs, _ := routing.AttributesFromContext(ctx)

	t, err := rd.templates.Clone()
	if err != nil {
		httputil.WriteError(w, r, apperrors.Internal(err), rd.logger)
		return
	}
	t.Funcs(requestFuncs(ctx, rd, attrs.SalesChannelID, attrs.Locale))

	if data == nil {
		data = map[string]any{}
	}
	data["context"] = sc

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		httputil.WriteError(w, r, apperrors.Internal(fmt.Errorf("render %s: %w", name, err)), rd.logger)
		return
	}

	out, err := rd.seo.Replace(ctx, buf.String(), attrs.Host(), sc)
	if err != nil {
		httputil.WriteError(w, r, err, rd.logger)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(out))
}

// requestFuncs binds the template functions to one request. rd is nil while
// parsing, when only the names matter.
func requestFuncs(ctx context.Context, rd *Renderer, salesChannelID, locale string) template.FuncMap {
	return template.FuncMap{
		"trans": func(key string, pairs ...any) string {
			if rd == nil {
				return key
			}
			return rd.snippets.Trans(locale, key, pairParams(pairs))
		},
		"themeConfig": func(key string) (any, error) {
			if rd == nil {
				return nil, nil
			}
			return rd.theme.Get(ctx, salesChannelID, key)
		},
		"languages": func() ([]domain.Language, error) {
			if rd == nil {
				return nil, nil
			}
			return rd.languages.ListLanguages(ctx, salesChannelID)
		},
		"seoUrl": func(route string, pairs ...any) (string, error) {
			if rd == nil {
				return "", nil
			}
			params := make(map[string]any, len(pairs)/2)
			for k, v := range pairParams(pairs) {
				params[k] = v
			}
			return rd.seo.Generate(route, params)
		},
	}
}

// pairParams turns "key", value, "key", value into a map. A trailing key
// without value is dropped.
func pairParams(pairs []any) map[string]string {
	if len(pairs) < 2 {
		return nil
	}
	out := make(map[string]string, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out[fmt.Sprint(pairs[i])] = fmt.Sprint(pairs[i+1])
	}
	return out
}

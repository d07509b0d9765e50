package httpx

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/pressgate/pressgate/internal/gateway"
)

// PaginationData carries list paging state for templates. URLs are
// rebuilt locally from the current query, never taken from the backend's
// absolute next/previous links.
type PaginationData struct {
	Page       int
	TotalPages int
	HasPrev    bool
	HasNext    bool
	PrevURL    string
	NextURL    string
}

// TemplateDataBuilder provides a fluent API for building template data maps.
type TemplateDataBuilder struct {
	data map[string]any
	r    *http.Request
}

/// NewTemplateData seeds the base fields every page needs: title, auth
// state, and the anti-forgery token when one is in scope.
func NewTemplateData(r *http.Request, title string) *TemplateDataBuilder {
	data := map[string]any{
		"Title":           title,
		"IsAuthenticated": IsAuthenticated(r.Context()),
		"CurrentPath":     r.URL.Path,
		// Always present so form templates can index unconditionally.
		"FieldErrors": map[string]string{},
	}
	if user, ok := UserFromContext(r.Context()); ok {
		data["User"] = user
		data["IsAdmin"] = user.IsAdmin()
	}
	if token := CSRFTokenFromContext(r.Context()); token != "" {
		data["CSRFToken"] = token
	}
	return &TemplateDataBuilder{data: data, r: r}
}

// WithPagination adds paging state and same-origin prev/next URLs.
func (b *TemplateDataBuilder) WithPagination(basePath string, page, totalPages int) *TemplateDataBuilder {
	p := PaginationData{
		Page:       page,
		TotalPages: totalPages,
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
	}
	if p.HasPrev {
		p.PrevURL = pageURL(basePath, b.r.URL.Query(), page-1)
	}
	if p.HasNext {
		p.NextURL = pageURL(basePath, b.r.URL.Query(), page+1)
	}
	b.data["Pagination"] = p
	return b
}

// WithError sets a general error banner message.
func (b *TemplateDataBuilder) WithError(msg string) *TemplateDataBuilder {
	b.data["Error"] = true
	b.data["ErrorMessage"] = msg
	return b
}

// WithFieldErrors adds field-level validation errors keyed by input name.
func (b *TemplateDataBuilder) WithFieldErrors(fields gateway.FieldErrors) *TemplateDataBuilder {
	if len(fields) > 0 {
		b.data["FieldErrors"] = fields.FirstMessages()
	}
	return b
}

// With adds a custom field to the template data.
func (b *TemplateDataBuilder) With(key string, value any) *TemplateDataBuilder {
	b.data[key] = value
	return b
}

// Build returns the final template data map.
func (b *TemplateDataBuilder) Build() map[string]any {
	return b.data
}

func pageURL(basePath string, query url.Values, page int) string {
	q := url.Values{}
	for k, vs := range query {
		if k == "page" {
			continue
		}
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	if page > 1 {
		q.Set("page", strconv.Itoa(page))
	}
	if len(q) == 0 {
		return basePath
	}
	return basePath + "?" + q.Encode()
}

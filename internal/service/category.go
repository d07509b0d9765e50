package service

import (
	"context"
	"net/http"
	"net/url"

	"github.com/pressgate/pressgate/internal/domain/model"
	"github.com/pressgate/pressgate/internal/errors"
	"github.com/pressgate/pressgate/internal/gateway"
)

const categoriesPath = "/v1/categories/"

// CategoryService drives the backend category endpoints.
type CategoryService struct{}

// NewCategoryService constructs a new CategoryService.
func NewCategoryService() *CategoryService {
	return &CategoryService{}
}

// List returns all categories with their published post counts. The backend
// does not paginate categories.
func (s *CategoryService) List(ctx context.Context, sess *gateway.Session) ([]model.Category, error) {
	res := sess.Do(ctx, gateway.Call{Method: http.MethodGet, Path: categoriesPath})
	if err := resultError(res); err != nil {
		return nil, err
	}
	var categories []model.Category
	if err := res.Decode(&categories); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeBadGateway, "decode categories")
	}
	return categories, nil
}

// Get fetches a single category by slug.
func (s *CategoryService) Get(ctx context.Context, sess *gateway.Session, slug string) (*model.Category, error) {
	res := sess.Do(ctx, gateway.Call{Method: http.MethodGet, Path: categoriesPath + url.PathEscape(slug) + "/"})
	if err := resultError(res); err != nil {
		return nil, err
	}
	var category model.Category
	if err := res.Decode(&category); err != nil {
		return nil, errors.Wrapf(err, errors.ErrCodeBadGateway, "decode category %q", slug)
	}
	return &category, nil
}

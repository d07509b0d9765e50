package service

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pressgate/pressgate/internal/domain/model"
	"github.com/pressgate/pressgate/internal/errors"
	"github.com/pressgate/pressgate/internal/gateway"
)

const (
	postsPath   = "/v1/posts/"
	myPostsPath = "/v1/users/me/posts/"
)

// PostService drives the backend post endpoints through a per-request
// gateway session.
type PostService struct{}

// NewPostService constructs a new PostService.
func NewPostService() *PostService {
	return &PostService{}
}

// List returns a page of posts matching the query. Anonymous callers only
// ever see published posts; the backend enforces that.
func (s *PostService) List(ctx context.Context, sess *gateway.Session, q model.PostQuery) (*model.Page[model.PostListItem], error) {
	return s.listFrom(ctx, sess, postsPath, q)
}

// MyPosts returns a page of the authenticated user's own posts, drafts
// included.
func (s *PostService) MyPosts(ctx context.Context, sess *gateway.Session, q model.PostQuery) (*model.Page[model.PostListItem], error) {
	return s.listFrom(ctx, sess, myPostsPath, q)
}

func (s *PostService) listFrom(ctx context.Context, sess *gateway.Session, path string, q model.PostQuery) (*model.Page[model.PostListItem], error) {
	res := sess.Do(ctx, gateway.Call{Method: http.MethodGet, Path: path, Query: postQuery(q)})
	if err := resultError(res); err != nil {
		return nil, err
	}
	var page model.Page[model.PostListItem]
	if err := res.Decode(&page); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeBadGateway, "decode post page")
	}
	return &page, nil
}

// Get fetches a single post by slug.
func (s *PostService) Get(ctx context.Context, sess *gateway.Session, slug string) (*model.PostDetail, error) {
	res := sess.Do(ctx, gateway.Call{Method: http.MethodGet, Path: postsPath + url.PathEscape(slug) + "/"})
	if err := resultError(res); err != nil {
		return nil, err
	}
	var post model.PostDetail
	if err := res.Decode(&post); err != nil {
		return nil, errors.Wrapf(err, errors.ErrCodeBadGateway, "decode post %q", slug)
	}
	return &post, nil
}

// Create creates a post owned by the authenticated user.
func (s *PostService) Create(ctx context.Context, sess *gateway.Session, in model.PostInput) (*model.PostDetail, error) {
	if err := checkInput(in); err != nil {
		return nil, err
	}
	res := sess.Do(ctx, gateway.Call{Method: http.MethodPost, Path: postsPath, Body: in})
	if err := resultError(res); err != nil {
		return nil, err
	}
	var post model.PostDetail
	if err := res.Decode(&post); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeBadGateway, "decode created post")
	}
	return &post, nil
}

// Update replaces a post's editable fields. Ownership is enforced by the
// backend, not here.
func (s *PostService) Update(ctx context.Context, sess *gateway.Session, slug string, in model.PostInput) (*model.PostDetail, error) {
	if err := checkInput(in); err != nil {
		return nil, err
	}
	res := sess.Do(ctx, gateway.Call{Method: http.MethodPut, Path: postsPath + url.PathEscape(slug) + "/", Body: in})
	if err := resultError(res); err != nil {
		return nil, err
	}
	var post model.PostDetail
	if err := res.Decode(&post); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeBadGateway, "decode updated post")
	}
	return &post, nil
}

// SetStatus flips a post between draft and published via a partial update.
func (s *PostService) SetStatus(ctx context.Context, sess *gateway.Session, slug string, status model.PostStatus) (*model.PostDetail, error) {
	in := model.PostStatusInput{Status: status}
	if err := checkInput(in); err != nil {
		return nil, err
	}
	res := sess.Do(ctx, gateway.Call{Method: http.MethodPatch, Path: postsPath + url.PathEscape(slug) + "/", Body: in})
	if err := resultError(res); err != nil {
		return nil, err
	}
	var post model.PostDetail
	if err := res.Decode(&post); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeBadGateway, "decode post after status change")
	}
	return &post, nil
}

// Delete removes a post.
func (s *PostService) Delete(ctx context.Context, sess *gateway.Session, slug string) error {
	res := sess.Do(ctx, gateway.Call{Method: http.MethodDelete, Path: postsPath + url.PathEscape(slug) + "/"})
	return resultError(res)
}

func postQuery(q model.PostQuery) url.Values {
	v := url.Values{}
	if q.Page > 1 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		v.Set("page_size", strconv.Itoa(q.PageSize))
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Status != "" {
		v.Set("status", string(q.Status))
	}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if q.Ordering != "" {
		v.Set("ordering", q.Ordering)
	}
	if len(v) == 0 {
		return nil
	}
	return v
}

package httpx

import (
	"net/http"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/pressgate/pressgate/internal/domain/model"
)

const defaultPageSize = 10

// Home renders the landing page: the latest published posts next to the
// category list, fetched concurrently.
func (h *UIHandlers) Home(w http.ResponseWriter, r *http.Request) {
	sess := h.bind(w, r)

	var (
		posts      *model.Page[model.PostListItem]
		categories []model.Category
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		posts, err = h.Posts.List(ctx, sess, model.PostQuery{
			PageSize: defaultPageSize,
			Ordering: "-createdAt",
		})
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = h.Categories.List(ctx, sess)
		return err
	})
	if err := g.Wait(); err != nil {
		h.renderFailure(w, r, err)
		return
	}

	data := NewTemplateData(r, "Latest posts").
		With("Posts", posts.Results).
		With("Categories", categories).
		WithPagination("/posts", 1, posts.TotalPages(defaultPageSize)).
		Build()
	h.render(w, r, http.StatusOK, "home", data)
}

// PostList renders the paginated post listing with search and category
// filters taken from the query string.
func (h *UIHandlers) PostList(w http.ResponseWriter, r *http.Request) {
	sess := h.bind(w, r)
	q := listQuery(r)
	page, err := h.Posts.List(r.Context(), sess, q)
	if err != nil {
		h.renderFailure(w, r, err)
		return
	}

	data := NewTemplateData(r, "Posts").
		With("Posts", page.Results).
		With("TotalCount", page.Count).
		With("Search", q.Search).
		With("Category", q.Category).
		WithPagination("/posts", q.Page, page.TotalPages(q.PageSize)).
		Build()
	h.render(w, r, http.StatusOK, "posts", data)
}

// PostDetail renders a single post. Drafts are only visible to their
// author; for everyone else the backend answers not found.
func (h *UIHandlers) PostDetail(w http.ResponseWriter, r *http.Request) {
	sess := h.bind(w, r)
	post, err := h.Posts.Get(r.Context(), sess, r.PathValue("slug"))
	if err != nil {
		h.renderFailure(w, r, err)
		return
	}

	user, _ := UserFromContext(r.Context())
	builder := NewTemplateData(r, post.Title).
		With("Post", post)
	if user != nil && post.OwnedBy(user.ID) {
		builder.With("CanEdit", true)
	}
	h.render(w, r, http.StatusOK, "post", builder.Build())
}

// CategoryList renders all categories with their post counts.
func (h *UIHandlers) CategoryList(w http.ResponseWriter, r *http.Request) {
	sess := h.bind(w, r)
	categories, err := h.Categories.List(r.Context(), sess)
	if err != nil {
		h.renderFailure(w, r, err)
		return
	}

	data := NewTemplateData(r, "Categories").
		With("Categories", categories).
		Build()
	h.render(w, r, http.StatusOK, "categories", data)
}

// CategoryDetail renders one category and its published posts.
func (h *UIHandlers) CategoryDetail(w http.ResponseWriter, r *http.Request) {
	sess := h.bind(w, r)
	slug := r.PathValue("slug")

	var (
		category *model.Category
		posts    *model.Page[model.PostListItem]
	)
	q := listQuery(r)
	q.Category = slug
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		category, err = h.Categories.Get(ctx, sess, slug)
		return err
	})
	g.Go(func() error {
		var err error
		posts, err = h.Posts.List(ctx, sess, q)
		return err
	})
	if err := g.Wait(); err != nil {
		h.renderFailure(w, r, err)
		return
	}

	data := NewTemplateData(r, category.Name).
		With("Category", category).
		With("Posts", posts.Results).
		WithPagination("/categories/"+slug, q.Page, posts.TotalPages(q.PageSize)).
		Build()
	h.render(w, r, http.StatusOK, "category", data)
}

func listQuery(r *http.Request) model.PostQuery {
	q := model.PostQuery{Page: 1, PageSize: defaultPageSize}
	if page, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && page > 1 {
		q.Page = page
	}
	q.Search = r.URL.Query().Get("search")
	q.Category = r.URL.Query().Get("category")
	return q
}

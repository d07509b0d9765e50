package httpx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/pressgate/pressgate/internal/domain/model"
	"github.com/pressgate/pressgate/internal/gateway"
	"github.com/pressgate/pressgate/internal/service"
)

// AuthUIService is the slice of the auth service the UI needs.
type AuthUIService interface {
	Login(ctx context.Context, sess *gateway.Session, in model.LoginInput) (*model.PublicUser, error)
	Register(ctx context.Context, sess *gateway.Session, in model.RegisterInput) (*model.PublicUser, error)
	Logout(ctx context.Context, sess *gateway.Session) error
	CurrentUser(ctx context.Context, sess *gateway.Session) (*model.PrivateUser, error)
}

// PostsService is the slice of the post service the UI needs.
type PostsService interface {
	List(ctx context.Context, sess *gateway.Session, q model.PostQuery) (*model.Page[model.PostListItem], error)
	MyPosts(ctx context.Context, sess *gateway.Session, q model.PostQuery) (*model.Page[model.PostListItem], error)
	Get(ctx context.Context, sess *gateway.Session, slug string) (*model.PostDetail, error)
	Create(ctx context.Context, sess *gateway.Session, in model.PostInput) (*model.PostDetail, error)
	Update(ctx context.Context, sess *gateway.Session, slug string, in model.PostInput) (*model.PostDetail, error)
	SetStatus(ctx context.Context, sess *gateway.Session, slug string, status model.PostStatus) (*model.PostDetail, error)
	Delete(ctx context.Context, sess *gateway.Session, slug string) error
}

// CategoriesService is the slice of the category service the UI needs.
type CategoriesService interface {
	List(ctx context.Context, sess *gateway.Session) ([]model.Category, error)
	Get(ctx context.Context, sess *gateway.Session, slug string) (*model.Category, error)
}

// Compile-time assertions that the concrete services satisfy their UI interfaces.
var (
	_ AuthUIService     = (*service.AuthService)(nil)
	_ PostsService      = (*service.PostService)(nil)
	_ CategoriesService = (*service.CategoryService)(nil)
)

// PagePurger invalidates the anonymous page cache. Optional.
type PagePurger interface {
	Purge(ctx context.Context) (int64, error)
}

// UIHandlers carries every dependency the page handlers share.
type UIHandlers struct {
	T          *TemplateRenderer
	Gateway    *gateway.Gateway
	Auth       AuthUIService
	Posts      PostsService
	Categories CategoriesService
	Cache      PagePurger
	Logger     *slog.Logger
}

func (h *UIHandlers) log() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// bind scopes the gateway to this exchange.
func (h *UIHandlers) bind(w http.ResponseWriter, r *http.Request) *gateway.Session {
	return h.Gateway.Bind(w, r)
}

// render writes a page, degrading to a plain 500 if the template fails.
func (h *UIHandlers) render(w http.ResponseWriter, r *http.Request, status int, page string, data map[string]any) {
	if err := h.T.Render(w, status, page, data); err != nil {
		h.log().Error("render failed",
			slog.String("page", page),
			slog.Any("error", err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// purgePages drops the anonymous page cache after a content mutation so
// stale listings never outlive a publish or delete.
func (h *UIHandlers) purgePages(r *http.Request) {
	if h.Cache == nil {
		return
	}
	if _, err := h.Cache.Purge(r.Context()); err != nil {
		h.log().Warn("page cache purge failed", slog.Any("error", err))
	}
}

// formToken resolves the anti-forgery token for a page that will render a
// mutating form, fetching one from the backend when the jar has none. The
// page is marked no-store: the embedded token only works alongside its
// cookie, and a cache replay would ship the body without the Set-Cookie.
func (h *UIHandlers) formToken(w http.ResponseWriter, r *http.Request, sess *gateway.Session) string {
	w.Header().Set("Cache-Control", "no-store")
	if token := CSRFTokenFromContext(r.Context()); token != "" {
		return token
	}
	token, err := sess.EnsureCSRF(r.Context())
	if err != nil {
		h.log().Warn("anti-forgery token unavailable", slog.Any("error", err))
		return ""
	}
	return token
}

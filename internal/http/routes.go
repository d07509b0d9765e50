package httpx

import (
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"

	pressgate "github.com/pressgate/pressgate"
	"github.com/pressgate/pressgate/internal/gateway"
)

// RouterServices holds everything the HTTP router needs.
type RouterServices struct {
	Gateway    *gateway.Gateway
	Auth       AuthUIService
	Posts      PostsService
	Categories CategoriesService
	// PageCache is optional; nil disables anonymous page caching.
	PageCache interface {
		PageCache
		PagePurger
	}
	PageCacheTTL time.Duration
	IsDev        bool
	Logger       *slog.Logger
}

// NewRouter creates and configures the HTTP router with the full
// middleware stack.
func NewRouter(services RouterServices) http.Handler {
	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}

	handlers := &UIHandlers{
		T:          newRenderer(services.IsDev, logger),
		Gateway:    services.Gateway,
		Auth:       services.Auth,
		Posts:      services.Posts,
		Categories: services.Categories,
		Logger:     logger,
	}
	if services.PageCache != nil {
		handlers.Cache = services.PageCache
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", handlers.Home)
	mux.HandleFunc("GET /posts", handlers.PostList)
	mux.HandleFunc("GET /posts/{slug}", handlers.PostDetail)
	mux.HandleFunc("GET /categories", handlers.CategoryList)
	mux.HandleFunc("GET /categories/{slug}", handlers.CategoryDetail)

	mux.HandleFunc("GET /login", handlers.LoginPage)
	mux.HandleFunc("POST /login", handlers.Login)
	mux.HandleFunc("GET /register", handlers.RegisterPage)
	mux.HandleFunc("POST /register", handlers.Register)
	mux.HandleFunc("POST /logout", handlers.Logout)

	requireAuth := RequireAuth()
	mux.Handle("GET /dashboard", requireAuth(http.HandlerFunc(handlers.Dashboard)))
	mux.Handle("GET /dashboard/posts/new", requireAuth(http.HandlerFunc(handlers.NewPostPage)))
	mux.Handle("POST /dashboard/posts", requireAuth(http.HandlerFunc(handlers.CreatePost)))
	mux.Handle("GET /dashboard/posts/{slug}/edit", requireAuth(http.HandlerFunc(handlers.EditPostPage)))
	mux.Handle("POST /dashboard/posts/{slug}", requireAuth(http.HandlerFunc(handlers.UpdatePost)))
	mux.Handle("POST /dashboard/posts/{slug}/status", requireAuth(http.HandlerFunc(handlers.SetPostStatus)))
	mux.Handle("POST /dashboard/posts/{slug}/delete", requireAuth(http.HandlerFunc(handlers.DeletePost)))

	mux.HandleFunc("GET /healthz", healthHandler)
	mux.HandleFunc("HEAD /healthz", healthHandler)

	mux.Handle("GET /static/", staticHandler(services.IsDev))

	// Everything unmatched gets the rendered 404.
	mux.HandleFunc("/", handlers.NotFound)

	var handler http.Handler = mux
	handler = CSRFProtect()(handler)
	handler = OptionalAuth(services.Gateway, services.Auth)(handler)
	if services.PageCache != nil {
		ttl := services.PageCacheTTL
		if ttl <= 0 {
			ttl = time.Minute
		}
		handler = CachePages(services.PageCache, ttl, logger)(handler)
	}
	handler = Compression()(handler)
	handler = Logging(logger)(handler)
	handler = Recover(logger)(handler)
	return handler
}

// newRenderer builds the template renderer, from disk in dev mode for hot
// reloading and from the embedded filesystem otherwise.
func newRenderer(devMode bool, logger *slog.Logger) *TemplateRenderer {
	var fsys fs.FS
	if devMode {
		fsys = os.DirFS("frontend/templates")
	} else {
		sub, err := fs.Sub(pressgate.TemplateFS, "frontend/templates")
		if err != nil {
			panic("embedded templates missing: " + err.Error())
		}
		fsys = sub
	}
	renderer, err := NewTemplateRenderer(TemplateRendererConfig{
		TemplateFS: fsys,
		DevMode:    devMode,
		Logger:     logger,
	})
	if err != nil {
		panic("template parse: " + err.Error())
	}
	return renderer
}

// staticHandler serves assets from disk in dev mode and from the embedded
// filesystem in production.
func staticHandler(devMode bool) http.Handler {
	if devMode {
		return http.StripPrefix("/static/", http.FileServer(http.Dir("frontend/static")))
	}
	sub, err := fs.Sub(pressgate.StaticFS, "frontend/static")
	if err != nil {
		panic("embedded static assets missing: " + err.Error())
	}
	return http.StripPrefix("/static/", http.FileServerFS(sub))
}

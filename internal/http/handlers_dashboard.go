package httpx

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/pressgate/pressgate/internal/domain/model"
	"github.com/pressgate/pressgate/internal/gateway"
)

// Dashboard renders the signed-in user's posts, drafts included.
func (h *UIHandlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	sess := h.bind(w, r)
	q := listQuery(r)
	if status, ok := model.ParsePostStatus(r.URL.Query().Get("status")); ok {
		q.Status = status
	}
	page, err := h.Posts.MyPosts(r.Context(), sess, q)
	if err != nil {
		h.renderFailure(w, r, err)
		return
	}

	data := NewTemplateData(r, "Your posts").
		With("Posts", page.Results).
		With("TotalCount", page.Count).
		With("StatusFilter", string(q.Status)).
		With("CSRFToken", h.formToken(w, r, sess)).
		WithPagination("/dashboard", q.Page, page.TotalPages(q.PageSize)).
		Build()
	h.render(w, r, http.StatusOK, "dashboard", data)
}

// NewPostPage renders an empty post form.
func (h *UIHandlers) NewPostPage(w http.ResponseWriter, r *http.Request) {
	sess := h.bind(w, r)
	h.renderPostForm(w, r, sess, postFormState{Title: "New post"})
}

// CreatePost handles the new-post form submission.
func (h *UIHandlers) CreatePost(w http.ResponseWriter, r *http.Request) {
	sess := h.bind(w, r)
	in := postInputFromForm(r)
	post, err := h.Posts.Create(r.Context(), sess, in)
	if err != nil {
		h.renderPostForm(w, r, sess, postFormState{Title: "New post", Input: in, Err: err})
		return
	}
	h.purgePages(r)
	http.Redirect(w, r, "/posts/"+post.Slug, http.StatusSeeOther)
}

// EditPostPage renders the form pre-filled with an existing post.
func (h *UIHandlers) EditPostPage(w http.ResponseWriter, r *http.Request) {
	sess := h.bind(w, r)
	post, err := h.Posts.Get(r.Context(), sess, r.PathValue("slug"))
	if err != nil {
		h.renderFailure(w, r, err)
		return
	}
	in := model.PostInput{Title: post.Title, Content: post.Content, Status: post.Status}
	if post.Category != nil {
		in.CategoryID = &post.Category.ID
	}
	h.renderPostForm(w, r, sess, postFormState{Title: "Edit post", Slug: post.Slug, Input: in})
}

// UpdatePost handles the edit form submission.
func (h *UIHandlers) UpdatePost(w http.ResponseWriter, r *http.Request) {
	sess := h.bind(w, r)
	slug := r.PathValue("slug")
	in := postInputFromForm(r)
	post, err := h.Posts.Update(r.Context(), sess, slug, in)
	if err != nil {
		h.renderPostForm(w, r, sess, postFormState{Title: "Edit post", Slug: slug, Input: in, Err: err})
		return
	}
	h.purgePages(r)
	http.Redirect(w, r, "/posts/"+post.Slug, http.StatusSeeOther)
}

// SetPostStatus publishes or unpublishes a post from the dashboard.
func (h *UIHandlers) SetPostStatus(w http.ResponseWriter, r *http.Request) {
	sess := h.bind(w, r)
	status, ok := model.ParsePostStatus(r.PostFormValue("status"))
	if !ok {
		h.renderErrorPage(w, r, http.StatusBadRequest, "Unknown post status.")
		return
	}
	if _, err := h.Posts.SetStatus(r.Context(), sess, r.PathValue("slug"), status); err != nil {
		h.renderFailure(w, r, err)
		return
	}
	h.purgePages(r)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// DeletePost removes a post and returns to the dashboard.
func (h *UIHandlers) DeletePost(w http.ResponseWriter, r *http.Request) {
	sess := h.bind(w, r)
	if err := h.Posts.Delete(r.Context(), sess, r.PathValue("slug")); err != nil {
		h.renderFailure(w, r, err)
		return
	}
	h.purgePages(r)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

type postFormState struct {
	Title string
	Slug  string
	Input model.PostInput
	Err   error
}

func (h *UIHandlers) renderPostForm(w http.ResponseWriter, r *http.Request, sess *gateway.Session, st postFormState) {
	builder := NewTemplateData(r, st.Title).
		With("CSRFToken", h.formToken(w, r, sess)).
		With("Form", st.Input).
		With("Slug", st.Slug)

	if categories, err := h.Categories.List(r.Context(), sess); err == nil {
		builder.With("Categories", categories)
	}

	status := http.StatusOK
	if st.Err != nil {
		if ve, ok := gateway.AsValidation(st.Err); ok {
			builder.WithFieldErrors(ve.Fields)
			status = http.StatusUnprocessableEntity
		} else {
			h.renderFailure(w, r, st.Err)
			return
		}
	}
	h.render(w, r, status, "post_form", builder.Build())
}

func postInputFromForm(r *http.Request) model.PostInput {
	in := model.PostInput{
		Title:   strings.TrimSpace(r.PostFormValue("title")),
		Content: r.PostFormValue("content"),
	}
	if status, ok := model.ParsePostStatus(r.PostFormValue("status")); ok {
		in.Status = status
	}
	if id, err := strconv.ParseInt(r.PostFormValue("category_id"), 10, 64); err == nil && id > 0 {
		in.CategoryID = &id
	}
	return in
}

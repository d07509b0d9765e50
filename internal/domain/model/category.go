//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

// Category is a post category. PostCount is the number of published posts,
// annotated by the backend on list responses.
type Category struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	PostCount int    `json:"post_count"`
}

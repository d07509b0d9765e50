//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

// Page is the backend's paginated list envelope: a total count plus absolute
// URLs for the adjacent pages (nil at either end).
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// TotalPages derives the page count for a given page size.
func (p Page[T]) TotalPages(pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	total := p.Count / pageSize
	if p.Count%pageSize != 0 {
		total++
	}
	return total
}

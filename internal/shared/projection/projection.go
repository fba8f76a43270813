package projection

import "time"

// Metadata captures persistence timestamps shared by projections.
type Metadata struct {
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Projection represents an aggregate view plus persistence metadata.
type Projection[T any] struct {
	Entity   T
	Metadata Metadata
}

// Page is one slice of a paginated listing.
type Page[T any] struct {
	Items    []T
	Total    int64
	Page     int
	PageSize int
}

// HasNext reports whether another page follows this one.
func (p Page[T]) HasNext() bool {
	return int64(p.Page*p.PageSize) < p.Total
}

// Normalize clamps page and size to sane bounds, falling back to defaultSize.
func Normalize(page, size, defaultSize, maxSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = defaultSize
	}
	if maxSize > 0 && size > maxSize {
		size = maxSize
	}
	return page, size
}

// Offset returns the zero-based offset of the first item on page.
func Offset(page, size int) int {
	if page < 1 {
		return 0
	}
	return (page - 1) * size
}

// New wraps entity with its persistence timestamps.
func New[T any](entity T, createdAt, updatedAt time.Time) *Projection[T] {
	return &Projection[T]{
		Entity:   entity,
		Metadata: Metadata{CreatedAt: createdAt, UpdatedAt: updatedAt},
	}
}

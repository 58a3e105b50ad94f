package query

import (
	"fmt"
	"strings"

	"github.com/substrata-labs/fieldbook/internal/apperr"
)

const (
	// DefaultPage is applied when no page is requested.
	DefaultPage = 1
	// DefaultPageSize is applied when no page size is requested.
	DefaultPageSize = 25
	// MaxPageSize bounds a single list window.
	MaxPageSize = 200
)

// Direction is a validated sort direction.
type Direction string

const (
	DirectionAsc  Direction = "asc"
	DirectionDesc Direction = "desc"
)

// ParseDirection validates a raw direction, defaulting to descending.
func ParseDirection(raw string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return DirectionDesc, nil
	case string(DirectionAsc):
		return DirectionAsc, nil
	case string(DirectionDesc):
		return DirectionDesc, nil
	default:
		return "", apperr.Validation("query.order_dir.invalid", fmt.Sprintf("orderDir must be asc or desc, got %q", raw))
	}
}

// SQL renders the direction as a SQL keyword.
func (d Direction) SQL() string {
	if d == DirectionAsc {
		return "ASC"
	}
	return "DESC"
}

// Window is a validated page request.
type Window struct {
	Page     int
	PageSize int
}

// NewWindow validates the page coordinates, applying defaults for nil inputs.
func NewWindow(page, pageSize *int) (Window, error) {
	window := Window{Page: DefaultPage, PageSize: DefaultPageSize}
	if page != nil {
		if *page < 1 {
			return Window{}, apperr.Validation("query.page.invalid", fmt.Sprintf("page must be at least 1, got %d", *page))
		}
		window.Page = *page
	}
	if pageSize != nil {
		if *pageSize < 1 || *pageSize > MaxPageSize {
			return Window{}, apperr.Validation("query.page_size.invalid", fmt.Sprintf("pageSize must be between 1 and %d, got %d", MaxPageSize, *pageSize))
		}
		window.PageSize = *pageSize
	}
	return window, nil
}

// Offset returns the number of rows preceding the window.
func (w Window) Offset() int {
	return (w.Page - 1) * w.PageSize
}

// Limit returns the window size.
func (w Window) Limit() int {
	return w.PageSize
}

const likeEscape = `\`

// EscapeLike neutralizes LIKE metacharacters so user-supplied search text
// only ever matches literally. Pair with an ESCAPE '\' clause.
func EscapeLike(term string) string {
	replacer := strings.NewReplacer(
		likeEscape, likeEscape+likeEscape,
		"%", likeEscape+"%",
		"_", likeEscape+"_",
	)
	return replacer.Replace(term)
}

// LikePattern wraps an escaped search term for substring matching.
func LikePattern(term string) string {
	return "%" + EscapeLike(term) + "%"
}

// NormalizeSearch trims free-text search input; empty after trimming means
// no search was requested.
func NormalizeSearch(raw string) string {
	return strings.TrimSpace(raw)
}

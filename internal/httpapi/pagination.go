package httpapi

import (
	"encoding/base64"
	"encoding/json"
	"strconv"
	"time"

	"github.com/orgball2608/insta-archive/internal/domain"
	"github.com/valyala/fasthttp"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// CursorPage is a keyset paginated response.
type CursorPage[T any] struct {
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// NumberPage is a page-number paginated response.
type NumberPage[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// storyCursor points into the (created_at, story_id) ordering. Reverse cursors walk towards
// newer stories.
type storyCursor struct {
	CreatedAt time.Time `json:"p"`
	StoryID   string    `json:"id"`
	Reverse   bool      `json:"r,omitempty"`
}

func encodeCursor(c storyCursor) string {
	raw, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(raw)
}

func decodeCursor(s string) (storyCursor, bool) {
	var c storyCursor
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return c, false
	}
	if err := json.Unmarshal(raw, &c); err != nil || c.StoryID == "" || c.CreatedAt.IsZero() {
		return c, false
	}
	return c, true
}

func (c storyCursor) position() *domain.StoryPosition {
	return &domain.StoryPosition{CreatedAt: c.CreatedAt, StoryID: c.StoryID}
}

func cursorAt(st *domain.Story, reverse bool) storyCursor {
	return storyCursor{CreatedAt: st.CreatedAt, StoryID: st.StoryID, Reverse: reverse}
}

// pageSize reads page_size, falling back to the default for missing or invalid values.
func pageSize(args *fasthttp.Args) int {
	n, err := strconv.Atoi(string(args.Peek("page_size")))
	if err != nil || n <= 0 {
		return defaultPageSize
	}
	return min(n, maxPageSize)
}

// pageNumber reads page; ok is false for values that are not positive integers.
func pageNumber(args *fasthttp.Args) (int, bool) {
	raw := args.Peek("page")
	if len(raw) == 0 {
		return 1, true
	}
	n, err := strconv.Atoi(string(raw))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// pageCount returns how many pages count items fill; an empty result still has one page.
func pageCount(count, size int) int {
	if count == 0 {
		return 1
	}
	return (count + size - 1) / size
}

// baseURLFor returns the scheme and host that absolute links start with.
func (s *Server) baseURLFor(ctx *fasthttp.RequestCtx) string {
	if s.baseURL != "" {
		return s.baseURL
	}
	scheme := "http"
	if ctx.IsTLS() || string(ctx.Request.Header.Peek("X-Forwarded-Proto")) == "https" {
		scheme = "https"
	}
	return scheme + "://" + string(ctx.Host())
}

// linkWith returns the absolute URL of the current request with param replaced, or removed
// when value is empty.
func (s *Server) linkWith(ctx *fasthttp.RequestCtx, param, value string) *string {
	var args fasthttp.Args
	ctx.QueryArgs().CopyTo(&args)
	if value == "" {
		args.Del(param)
	} else {
		args.Set(param, value)
	}

	link := s.baseURLFor(ctx) + string(ctx.Path())
	if args.Len() > 0 {
		link += "?" + args.String()
	}
	return &link
}

func (s *Server) pageLinks(ctx *fasthttp.RequestCtx, page, pages int) (next, previous *string) {
	if page < pages {
		next = s.linkWith(ctx, "page", strconv.Itoa(page+1))
	}
	switch {
	case page == 2:
		previous = s.linkWith(ctx, "page", "")
	case page > 2:
		previous = s.linkWith(ctx, "page", strconv.Itoa(page-1))
	}
	return next, previous
}

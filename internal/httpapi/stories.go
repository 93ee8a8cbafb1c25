package httpapi

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/orgball2608/insta-archive/internal/cache"
	"github.com/orgball2608/insta-archive/internal/domain"
	"github.com/valyala/fasthttp"
)

func queryParams(args *fasthttp.Args) map[string][]string {
	params := make(map[string][]string, args.Len())
	args.VisitAll(func(key, value []byte) {
		params[string(key)] = append(params[string(key)], string(value))
	})
	return params
}

// listStories serves the cursor paginated story list; 200 responses are cached per query.
func (s *Server) listStories(ctx *fasthttp.RequestCtx) {
	key := cache.StoryListKey(queryParams(ctx.QueryArgs()))
	if body, err := s.cache.Get(ctx, key); err == nil {
		writeRaw(ctx, fasthttp.StatusOK, body)
		return
	} else if !errors.Is(err, cache.ErrMiss) {
		s.logger.Warn("Story list cache read failed", "error", err)
	}

	args := ctx.QueryArgs()
	filter := domain.StoryFilter{
		Search: strings.TrimSpace(string(args.Peek("search"))),
	}

	if raw := string(args.Peek("user")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			writeFieldErrors(ctx, map[string][]string{"user": {"Enter a valid UUID."}})
			return
		}
		filter.UserUUID = &id
	}

	var (
		cur    storyCursor
		hasCur bool
	)
	if raw := string(args.Peek("cursor")); raw != "" {
		if cur, hasCur = decodeCursor(raw); !hasCur {
			writeDetail(ctx, fasthttp.StatusNotFound, "Invalid cursor")
			return
		}
		if cur.Reverse {
			filter.Before = cur.position()
		} else {
			filter.After = cur.position()
		}
	}

	size := pageSize(args)
	filter.Limit = size + 1

	stories, err := s.stories.List(ctx, filter)
	if err != nil {
		s.writeError(ctx, err)
		return
	}

	page := CursorPage[StoryList]{}
	more := len(stories) > size
	switch {
	case more && cur.Reverse:
		stories = stories[1:]
	case more:
		stories = stories[:size]
	}

	if len(stories) > 0 {
		first, last := stories[0], stories[len(stories)-1]
		if (!cur.Reverse && more) || (hasCur && cur.Reverse) {
			page.Next = s.linkWith(ctx, "cursor", encodeCursor(cursorAt(last, false)))
		}
		if (hasCur && !cur.Reverse) || (cur.Reverse && more) {
			page.Previous = s.linkWith(ctx, "cursor", encodeCursor(cursorAt(first, true)))
		}
	} else if hasCur && !cur.Reverse {
		page.Previous = s.linkWith(ctx, "cursor", encodeCursor(storyCursor{
			CreatedAt: cur.CreatedAt,
			StoryID:   cur.StoryID,
			Reverse:   true,
		}))
	}

	base := s.baseURLFor(ctx)
	page.Results = make([]StoryList, 0, len(stories))
	for _, st := range stories {
		page.Results = append(page.Results, newStoryList(base, st))
	}

	body, err := json.Marshal(page)
	if err != nil {
		s.writeError(ctx, err)
		return
	}

	if err := s.cache.Set(ctx, key, body, s.storyListTTL); err != nil {
		s.logger.Warn("Story list cache write failed", "error", err)
	}
	writeRaw(ctx, fasthttp.StatusOK, body)
}

func (s *Server) getStory(ctx *fasthttp.RequestCtx) {
	st, err := s.stories.GetByStoryID(ctx, ctx.UserValue("story_id").(string))
	if err != nil {
		s.writeError(ctx, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, newStoryDetail(s.baseURLFor(ctx), st))
}

// similarStories ranks stories by embedding distance to the requested one.
func (s *Server) similarStories(ctx *fasthttp.RequestCtx) {
	args := ctx.QueryArgs()
	page, ok := pageNumber(args)
	if !ok {
		writeDetail(ctx, fasthttp.StatusNotFound, "Invalid page.")
		return
	}
	size := pageSize(args)

	stories, count, err := s.stories.Similar(ctx, ctx.UserValue("story_id").(string), size, (page-1)*size)
	if err != nil {
		s.writeError(ctx, err)
		return
	}

	pages := pageCount(count, size)
	if page > pages {
		writeDetail(ctx, fasthttp.StatusNotFound, "Invalid page.")
		return
	}

	base := s.baseURLFor(ctx)
	resp := NumberPage[SimilarStory]{Count: count, Results: make([]SimilarStory, 0, len(stories))}
	resp.Next, resp.Previous = s.pageLinks(ctx, page, pages)
	for _, st := range stories {
		resp.Results = append(resp.Results, SimilarStory{
			StoryList:       newStoryList(base, st),
			SimilarityScore: st.SimilarityScore,
		})
	}

	writeJSON(ctx, fasthttp.StatusOK, resp)
}

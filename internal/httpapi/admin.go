package httpapi

import (
	"encoding/json"
	"fmt"

	"github.com/orgball2608/insta-archive/internal/domain"
	"github.com/valyala/fasthttp"
)

type adminStats struct {
	Users                int64 `json:"users"`
	Stories              int64 `json:"stories"`
	StoriesWithEmbedding int64 `json:"stories_with_embedding"`
	Accounts             int64 `json:"accounts"`
}

type embeddingRequest struct {
	Embedding []float32 `json:"embedding"`
}

func (s *Server) adminStats(ctx *fasthttp.RequestCtx) {
	var stats domain.ArchiveStats

	_, users, err := s.users.List(ctx, domain.UserFilter{Limit: 1})
	if err != nil {
		s.writeError(ctx, err)
		return
	}
	stats.Users = int64(users)

	if stats.Stories, stats.StoriesWithEmbedding, err = s.stories.Stats(ctx); err != nil {
		s.writeError(ctx, err)
		return
	}

	if stats.Accounts, err = s.accounts.Count(ctx); err != nil {
		s.writeError(ctx, err)
		return
	}

	writeJSON(ctx, fasthttp.StatusOK, adminStats{
		Users:                stats.Users,
		Stories:              stats.Stories,
		StoriesWithEmbedding: stats.StoriesWithEmbedding,
		Accounts:             stats.Accounts,
	})
}

func (s *Server) adminAccounts(ctx *fasthttp.RequestCtx) {
	accounts, err := s.accounts.List(ctx)
	if err != nil {
		s.writeError(ctx, err)
		return
	}

	resp := make([]AdminAccount, 0, len(accounts))
	for _, a := range accounts {
		resp = append(resp, newAdminAccount(a))
	}
	writeJSON(ctx, fasthttp.StatusOK, resp)
}

func (s *Server) adminSetEmbedding(ctx *fasthttp.RequestCtx) {
	var req embeddingRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		s.writeError(ctx, errMalformedBody)
		return
	}
	if len(req.Embedding) != domain.EmbeddingDimensions {
		writeFieldErrors(ctx, map[string][]string{
			"embedding": {fmt.Sprintf("Expected %d dimensions, not %d.", domain.EmbeddingDimensions, len(req.Embedding))},
		})
		return
	}

	storyID := ctx.UserValue("story_id").(string)
	if err := s.stories.SetEmbedding(ctx, storyID, req.Embedding); err != nil {
		s.writeError(ctx, err)
		return
	}

	s.logger.Info("Story embedding updated", "story_id", storyID)
	writeJSON(ctx, fasthttp.StatusOK, map[string]any{"story_id": storyID, "dimensions": len(req.Embedding)})
}

func (s *Server) adminDeleteStory(ctx *fasthttp.RequestCtx) {
	storyID := ctx.UserValue("story_id").(string)

	st, err := s.stories.GetByStoryID(ctx, storyID)
	if err != nil {
		s.writeError(ctx, err)
		return
	}

	if err := s.stories.Delete(ctx, storyID); err != nil {
		s.writeError(ctx, err)
		return
	}

	if err := s.media.Remove(st.Media, st.Thumbnail); err != nil {
		s.logger.Warn("Failed to remove story media", "story_id", storyID, "error", err)
	}

	s.invalidateStoryLists(ctx)
	s.logger.Info("Story deleted", "story_id", storyID)
	ctx.SetStatusCode(fasthttp.StatusNoContent)
}

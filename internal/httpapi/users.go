package httpapi

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/orgball2608/insta-archive/internal/cache"
	"github.com/orgball2608/insta-archive/internal/domain"
	"github.com/valyala/fasthttp"
)

type createUserRequest struct {
	Username string `json:"username"`
}

type updateUserRequest struct {
	AllowAutoUpdateStories      *bool `json:"allow_auto_update_stories"`
	AllowAutoUpdateProfile      *bool `json:"allow_auto_update_profile"`
	AutoUpdateStoriesLimitCount *int  `json:"auto_update_stories_limit_count"`
	AutoUpdateProfileLimitCount *int  `json:"auto_update_profile_limit_count"`
}

func (r updateUserRequest) validate() map[string][]string {
	errs := map[string][]string{}
	const msg = "Ensure this value is greater than or equal to 0."
	if r.AutoUpdateStoriesLimitCount != nil && *r.AutoUpdateStoriesLimitCount < 0 {
		errs["auto_update_stories_limit_count"] = []string{msg}
	}
	if r.AutoUpdateProfileLimitCount != nil && *r.AutoUpdateProfileLimitCount < 0 {
		errs["auto_update_profile_limit_count"] = []string{msg}
	}
	return errs
}

func (r updateUserRequest) settings() domain.UserSettings {
	return domain.UserSettings{
		AllowAutoUpdateStories:      r.AllowAutoUpdateStories,
		AllowAutoUpdateProfile:      r.AllowAutoUpdateProfile,
		AutoUpdateStoriesLimitCount: r.AutoUpdateStoriesLimitCount,
		AutoUpdateProfileLimitCount: r.AutoUpdateProfileLimitCount,
	}
}

// userFromPath loads the user named by the uuid path parameter, writing 404 when there is none.
func (s *Server) userFromPath(ctx *fasthttp.RequestCtx) (*domain.InstagramUser, bool) {
	id, err := uuid.Parse(ctx.UserValue("uuid").(string))
	if err != nil {
		writeDetail(ctx, fasthttp.StatusNotFound, "Not found.")
		return nil, false
	}

	u, err := s.users.GetByUUID(ctx, id)
	if err != nil {
		s.writeError(ctx, err)
		return nil, false
	}
	return u, true
}

func (s *Server) listUsers(ctx *fasthttp.RequestCtx) {
	args := ctx.QueryArgs()
	page, ok := pageNumber(args)
	if !ok {
		writeDetail(ctx, fasthttp.StatusNotFound, "Invalid page.")
		return
	}
	size := pageSize(args)

	users, count, err := s.users.List(ctx, domain.UserFilter{
		Search: strings.TrimSpace(string(args.Peek("search"))),
		Limit:  size,
		Offset: (page - 1) * size,
	})
	if err != nil {
		s.writeError(ctx, err)
		return
	}

	pages := pageCount(count, size)
	if page > pages {
		writeDetail(ctx, fasthttp.StatusNotFound, "Invalid page.")
		return
	}

	resp := NumberPage[*UserList]{Count: count, Results: make([]*UserList, 0, len(users))}
	resp.Next, resp.Previous = s.pageLinks(ctx, page, pages)
	for _, u := range users {
		resp.Results = append(resp.Results, newUserList(u))
	}
	writeJSON(ctx, fasthttp.StatusOK, resp)
}

func (s *Server) getUser(ctx *fasthttp.RequestCtx) {
	u, ok := s.userFromPath(ctx)
	if !ok {
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, newUserDetail(u))
}

func (s *Server) userHistory(ctx *fasthttp.RequestCtx) {
	u, ok := s.userFromPath(ctx)
	if !ok {
		return
	}

	args := ctx.QueryArgs()
	page, ok := pageNumber(args)
	if !ok {
		writeDetail(ctx, fasthttp.StatusNotFound, "Invalid page.")
		return
	}
	size := pageSize(args)

	rows, count, err := s.users.History(ctx, u.UUID, size, (page-1)*size)
	if err != nil {
		s.writeError(ctx, err)
		return
	}

	pages := pageCount(count, size)
	if page > pages {
		writeDetail(ctx, fasthttp.StatusNotFound, "Invalid page.")
		return
	}

	resp := NumberPage[UserHistory]{Count: count, Results: make([]UserHistory, 0, len(rows))}
	resp.Next, resp.Previous = s.pageLinks(ctx, page, pages)
	for _, h := range rows {
		resp.Results = append(resp.Results, newUserHistory(h))
	}
	writeJSON(ctx, fasthttp.StatusOK, resp)
}

func (s *Server) createUser(ctx *fasthttp.RequestCtx) {
	var req createUserRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		s.writeError(ctx, errMalformedBody)
		return
	}
	if strings.Trim(req.Username, " @") == "" {
		writeFieldErrors(ctx, map[string][]string{"username": {"This field may not be blank."}})
		return
	}

	u, err := s.archiver.CreateFromUsername(ctx, req.Username)
	if err != nil {
		s.writeError(ctx, err)
		return
	}

	// A freshly created user always has its creation history row.
	u.HasHistory = true
	writeJSON(ctx, fasthttp.StatusCreated, newUserDetail(u))
}

func (s *Server) updateUser(ctx *fasthttp.RequestCtx) {
	var req updateUserRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		s.writeError(ctx, errMalformedBody)
		return
	}
	if errs := req.validate(); len(errs) > 0 {
		writeFieldErrors(ctx, errs)
		return
	}

	u, ok := s.userFromPath(ctx)
	if !ok {
		return
	}

	req.settings().Apply(u)
	if err := s.users.Update(ctx, u); err != nil {
		s.writeError(ctx, err)
		return
	}
	u.HasHistory = true

	s.invalidateStoryLists(ctx)
	writeJSON(ctx, fasthttp.StatusOK, newUserDetail(u))
}

func (s *Server) deleteUser(ctx *fasthttp.RequestCtx) {
	id, err := uuid.Parse(ctx.UserValue("uuid").(string))
	if err != nil {
		writeDetail(ctx, fasthttp.StatusNotFound, "Not found.")
		return
	}

	if err := s.users.Delete(ctx, id); err != nil {
		s.writeError(ctx, err)
		return
	}

	s.invalidateStoryLists(ctx)
	ctx.SetStatusCode(fasthttp.StatusNoContent)
}

func (s *Server) updateUserStories(ctx *fasthttp.RequestCtx) {
	u, ok := s.userFromPath(ctx)
	if !ok {
		return
	}

	res, err := s.archiver.ArchiveStories(ctx, u)
	if err != nil {
		s.writeError(ctx, err)
		return
	}

	writeJSON(ctx, fasthttp.StatusOK, map[string]int{
		"created": res.Created,
		"skipped": res.Skipped,
		"failed":  res.Failed,
	})
}

func (s *Server) updateUserProfile(ctx *fasthttp.RequestCtx) {
	u, ok := s.userFromPath(ctx)
	if !ok {
		return
	}

	u, err := s.archiver.RefreshProfile(ctx, u)
	if err != nil {
		s.writeError(ctx, err)
		return
	}
	u.HasHistory = true

	writeJSON(ctx, fasthttp.StatusOK, newUserDetail(u))
}

func (s *Server) invalidateStoryLists(ctx *fasthttp.RequestCtx) {
	if _, err := s.cache.DeletePrefix(ctx, cache.StoryListPrefix); err != nil {
		s.logger.Warn("Failed to invalidate story list cache", "error", err)
	}
}

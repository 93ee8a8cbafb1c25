package httpapi

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/orgball2608/insta-archive/internal/cache"
	"github.com/orgball2608/insta-archive/internal/domain"
	"github.com/orgball2608/insta-archive/internal/repositories/story"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"go.uber.org/mock/gomock"
)

func TestListStories(t *testing.T) {
	ts := newTestServer(t)

	ts.stories.EXPECT().List(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, f domain.StoryFilter) ([]*domain.Story, error) {
			assert.Equal(t, defaultPageSize+1, f.Limit)
			assert.Nil(t, f.After)
			assert.Nil(t, f.Before)
			return []*domain.Story{
				testStory("2", archivedAt),
				testStory("1", archivedAt.Add(-time.Minute)),
			}, nil
		},
	).Times(1)

	resp := ts.do(fasthttp.MethodGet, "/api/instagram/stories/", "", nil)
	require.Equal(t, fasthttp.StatusOK, resp.StatusCode())

	body := decode(t, resp)
	assert.Nil(t, body["next"])
	assert.Nil(t, body["previous"])

	results := body["results"].([]any)
	require.Len(t, results, 2)
	first := results[0].(map[string]any)
	assert.Equal(t, "2", first["story_id"])
	assert.Equal(t, "http://testserver/media/stories/natgeo/2.jpg", first["media"])
	assert.Equal(t, "http://testserver/media/stories/natgeo/2_thumbnail.jpg", first["thumbnail"])

	user := first["user"].(map[string]any)
	assert.Equal(t, "natgeo", user["username"])
	assert.Contains(t, user, "api_updated_at")
	assert.NotContains(t, user, "updated_at_from_api")
	assert.Equal(t, true, user["has_stories"])

	// The second request is answered from the cache.
	again := ts.do(fasthttp.MethodGet, "/api/instagram/stories/", "", nil)
	assert.Equal(t, fasthttp.StatusOK, again.StatusCode())
	assert.JSONEq(t, string(resp.Body()), string(again.Body()))
	assert.True(t, ts.redis.Exists(cache.StoryListKey(nil)))
}

func TestListStories_Filters(t *testing.T) {
	ts := newTestServer(t)

	ts.stories.EXPECT().List(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, f domain.StoryFilter) ([]*domain.Story, error) {
			assert.Equal(t, "geo", f.Search)
			require.NotNil(t, f.UserUUID)
			assert.Equal(t, natgeoUUID, *f.UserUUID)
			assert.Equal(t, maxPageSize+1, f.Limit)
			return nil, nil
		},
	)

	resp := ts.do(fasthttp.MethodGet, "/api/instagram/stories/?search=geo&user="+natgeoUUID.String()+"&page_size=500", "", nil)
	require.Equal(t, fasthttp.StatusOK, resp.StatusCode())
	assert.Empty(t, decode(t, resp)["results"])
}

func TestListStories_InvalidUser(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(fasthttp.MethodGet, "/api/instagram/stories/?user=not-a-uuid", "", nil)
	assert.Equal(t, fasthttp.StatusBadRequest, resp.StatusCode())
	assert.JSONEq(t, `{"user":["Enter a valid UUID."]}`, string(resp.Body()))
}

func TestListStories_InvalidCursor(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(fasthttp.MethodGet, "/api/instagram/stories/?cursor=%%%", "", nil)
	assert.Equal(t, fasthttp.StatusNotFound, resp.StatusCode())
	assert.JSONEq(t, `{"detail":"Invalid cursor"}`, string(resp.Body()))
}

func cursorParam(t *testing.T, link any) string {
	t.Helper()
	require.NotNil(t, link)
	u, err := url.Parse(link.(string))
	require.NoError(t, err)
	return u.Query().Get("cursor")
}

func TestListStories_CursorPagination(t *testing.T) {
	ts := newTestServer(t)
	s3 := testStory("3", archivedAt)
	s2 := testStory("2", archivedAt.Add(-time.Minute))
	s1 := testStory("1", archivedAt.Add(-2*time.Minute))

	gomock.InOrder(
		ts.stories.EXPECT().List(gomock.Any(), gomock.Any()).Return([]*domain.Story{s3, s2}, nil),
		ts.stories.EXPECT().List(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, f domain.StoryFilter) ([]*domain.Story, error) {
				require.NotNil(t, f.After)
				assert.Equal(t, "3", f.After.StoryID)
				assert.True(t, f.After.CreatedAt.Equal(s3.CreatedAt))
				return []*domain.Story{s2, s1}, nil
			},
		),
		ts.stories.EXPECT().List(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, f domain.StoryFilter) ([]*domain.Story, error) {
				require.NotNil(t, f.Before)
				assert.Equal(t, "2", f.Before.StoryID)
				return []*domain.Story{s3}, nil
			},
		),
	)

	first := decode(t, ts.do(fasthttp.MethodGet, "/api/instagram/stories/?page_size=1", "", nil))
	assert.Nil(t, first["previous"])
	next := cursorParam(t, first["next"])

	second := decode(t, ts.do(fasthttp.MethodGet, "/api/instagram/stories/?page_size=1&cursor="+next, "", nil))
	results := second["results"].([]any)
	require.Len(t, results, 1)
	assert.Equal(t, "2", results[0].(map[string]any)["story_id"])
	require.NotNil(t, second["next"])
	prev := cursorParam(t, second["previous"])

	back := decode(t, ts.do(fasthttp.MethodGet, "/api/instagram/stories/?page_size=1&cursor="+prev, "", nil))
	results = back["results"].([]any)
	require.Len(t, results, 1)
	assert.Equal(t, "3", results[0].(map[string]any)["story_id"])
	assert.Nil(t, back["previous"])
	assert.NotNil(t, back["next"])
}

func TestGetStory(t *testing.T) {
	ts := newTestServer(t)
	ts.stories.EXPECT().GetByStoryID(gomock.Any(), "42").Return(testStory("42", archivedAt), nil)
	ts.stories.EXPECT().GetByStoryID(gomock.Any(), "missing").Return(nil, story.ErrNotFound)

	resp := ts.do(fasthttp.MethodGet, "/api/instagram/stories/42/", "", nil)
	require.Equal(t, fasthttp.StatusOK, resp.StatusCode())
	user := decode(t, resp)["user"].(map[string]any)
	assert.Contains(t, user, "updated_at_from_api")
	assert.Contains(t, user, "auto_update_stories_limit_count")
	assert.NotContains(t, user, "api_updated_at")

	resp = ts.do(fasthttp.MethodGet, "/api/instagram/stories/missing/", "", nil)
	assert.Equal(t, fasthttp.StatusNotFound, resp.StatusCode())
	assert.JSONEq(t, `{"detail":"Not found."}`, string(resp.Body()))
}

func TestSimilarStories(t *testing.T) {
	ts := newTestServer(t)

	near := testStory("7", archivedAt)
	near.SimilarityScore = 0.75
	ts.stories.EXPECT().Similar(gomock.Any(), "42", 1, 0).Return([]*domain.Story{near}, 2, nil)

	resp := ts.do(fasthttp.MethodGet, "/api/instagram/stories/42/similar/?page_size=1", "", nil)
	require.Equal(t, fasthttp.StatusOK, resp.StatusCode())

	body := decode(t, resp)
	assert.EqualValues(t, 2, body["count"])
	assert.Equal(t, "http://testserver/api/instagram/stories/42/similar/?page_size=1&page=2", body["next"])
	assert.Nil(t, body["previous"])
	result := body["results"].([]any)[0].(map[string]any)
	assert.Equal(t, "7", result["story_id"])
	assert.InDelta(t, 0.75, result["similarity_score"], 1e-9)
}

func TestSimilarStories_EmptyAndInvalidPage(t *testing.T) {
	ts := newTestServer(t)
	ts.stories.EXPECT().Similar(gomock.Any(), "unknown", defaultPageSize, 0).Return(nil, 0, nil)
	ts.stories.EXPECT().Similar(gomock.Any(), "unknown", defaultPageSize, 40).Return(nil, 0, nil)

	resp := ts.do(fasthttp.MethodGet, "/api/instagram/stories/unknown/similar/", "", nil)
	require.Equal(t, fasthttp.StatusOK, resp.StatusCode())
	assert.JSONEq(t, `{"count":0,"next":null,"previous":null,"results":[]}`, string(resp.Body()))

	resp = ts.do(fasthttp.MethodGet, "/api/instagram/stories/unknown/similar/?page=3", "", nil)
	assert.Equal(t, fasthttp.StatusNotFound, resp.StatusCode())
	assert.JSONEq(t, `{"detail":"Invalid page."}`, string(resp.Body()))

	resp = ts.do(fasthttp.MethodGet, "/api/instagram/stories/unknown/similar/?page=abc", "", nil)
	assert.Equal(t, fasthttp.StatusNotFound, resp.StatusCode())
}

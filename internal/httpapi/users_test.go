package httpapi

import (
	"context"
	"testing"

	"github.com/orgball2608/insta-archive/internal/archiver"
	"github.com/orgball2608/insta-archive/internal/cache"
	"github.com/orgball2608/insta-archive/internal/domain"
	"github.com/orgball2608/insta-archive/internal/repositories/account"
	"github.com/orgball2608/insta-archive/internal/repositories/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"go.uber.org/mock/gomock"
)

var operator = credentials{username: "operator", password: "correct horse"}

func TestListUsers(t *testing.T) {
	ts := newTestServer(t)
	ts.users.EXPECT().List(gomock.Any(), domain.UserFilter{Search: "geo", Limit: 1, Offset: 1}).
		Return([]*domain.InstagramUser{testUser()}, 3, nil)

	resp := ts.do(fasthttp.MethodGet, "/api/instagram/users/?search=geo&page_size=1&page=2", "", nil)
	require.Equal(t, fasthttp.StatusOK, resp.StatusCode())

	body := decode(t, resp)
	assert.EqualValues(t, 3, body["count"])
	assert.Equal(t, "http://testserver/api/instagram/users/?search=geo&page_size=1&page=3", body["next"])
	assert.Equal(t, "http://testserver/api/instagram/users/?search=geo&page_size=1", body["previous"])
	assert.Len(t, body["results"], 1)
}

func TestGetUser(t *testing.T) {
	ts := newTestServer(t)
	ts.users.EXPECT().GetByUUID(gomock.Any(), natgeoUUID).Return(testUser(), nil)

	resp := ts.do(fasthttp.MethodGet, "/api/instagram/users/"+natgeoUUID.String()+"/", "", nil)
	require.Equal(t, fasthttp.StatusOK, resp.StatusCode())
	body := decode(t, resp)
	assert.Equal(t, "natgeo", body["username"])
	assert.Contains(t, body, "updated_at_from_api")

	resp = ts.do(fasthttp.MethodGet, "/api/instagram/users/nope/", "", nil)
	assert.Equal(t, fasthttp.StatusNotFound, resp.StatusCode())
}

func TestUserHistory(t *testing.T) {
	ts := newTestServer(t)
	ts.users.EXPECT().GetByUUID(gomock.Any(), natgeoUUID).Return(testUser(), nil)
	ts.users.EXPECT().History(gomock.Any(), natgeoUUID, defaultPageSize, 0).Return([]*domain.UserHistory{
		{HistoryID: 2, HistoryDate: archivedAt, HistoryType: domain.HistoryChanged, User: *testUser()},
		{HistoryID: 1, HistoryDate: archivedAt, HistoryType: domain.HistoryCreated, User: *testUser()},
	}, 2, nil)

	resp := ts.do(fasthttp.MethodGet, "/api/instagram/users/"+natgeoUUID.String()+"/history/", "", nil)
	require.Equal(t, fasthttp.StatusOK, resp.StatusCode())

	results := decode(t, resp)["results"].([]any)
	require.Len(t, results, 2)
	first := results[0].(map[string]any)
	assert.EqualValues(t, 2, first["history_id"])
	assert.Equal(t, "~", first["history_type"])
	assert.Equal(t, "natgeo", first["username"])
}

func TestCreateUser_RequiresCredentials(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(fasthttp.MethodPost, "/api/instagram/users/", `{"username":"natgeo"}`, nil)
	assert.Equal(t, fasthttp.StatusUnauthorized, resp.StatusCode())
	assert.Equal(t, `Basic realm="api"`, string(resp.Header.Peek(fasthttp.HeaderWWWAuthenticate)))

	ts.accounts.EXPECT().GetByUsername(gomock.Any(), "ghost").Return(nil, account.ErrNotFound)
	resp = ts.do(fasthttp.MethodPost, "/api/instagram/users/", `{"username":"natgeo"}`, &credentials{"ghost", "x"})
	assert.Equal(t, fasthttp.StatusUnauthorized, resp.StatusCode())
	assert.JSONEq(t, `{"detail":"Invalid username/password."}`, string(resp.Body()))
}

func TestCreateUser_WrongPassword(t *testing.T) {
	ts := newTestServer(t)
	hashFor := credentials{operator.username, "another password"}
	ts.expectAccountNoLogin(t, hashFor)

	resp := ts.do(fasthttp.MethodPost, "/api/instagram/users/", `{"username":"natgeo"}`, &operator)
	assert.Equal(t, fasthttp.StatusUnauthorized, resp.StatusCode())
}

func TestCreateUser(t *testing.T) {
	ts := newTestServer(t)
	ts.expectAccount(t, operator, false)
	ts.archiver.EXPECT().CreateFromUsername(gomock.Any(), "@NatGeo").Return(testUser(), nil)

	resp := ts.do(fasthttp.MethodPost, "/api/instagram/users/", `{"username":"@NatGeo"}`, &operator)
	require.Equal(t, fasthttp.StatusCreated, resp.StatusCode())
	assert.Equal(t, natgeoUUID.String(), decode(t, resp)["uuid"])
}

func TestCreateUser_Errors(t *testing.T) {
	ts := newTestServer(t)

	ts.expectAccount(t, operator, false)
	resp := ts.do(fasthttp.MethodPost, "/api/instagram/users/", `{"username":"  "}`, &operator)
	assert.Equal(t, fasthttp.StatusBadRequest, resp.StatusCode())
	assert.JSONEq(t, `{"username":["This field may not be blank."]}`, string(resp.Body()))

	ts.expectAccount(t, operator, false)
	resp = ts.do(fasthttp.MethodPost, "/api/instagram/users/", `{"username":`, &operator)
	assert.Equal(t, fasthttp.StatusBadRequest, resp.StatusCode())
	assert.JSONEq(t, `{"detail":"JSON parse error."}`, string(resp.Body()))

	ts.expectAccount(t, operator, false)
	ts.archiver.EXPECT().CreateFromUsername(gomock.Any(), "natgeo").Return(nil, user.ErrAlreadyExists)
	resp = ts.do(fasthttp.MethodPost, "/api/instagram/users/", `{"username":"natgeo"}`, &operator)
	assert.Equal(t, fasthttp.StatusConflict, resp.StatusCode())

	ts.expectAccount(t, operator, false)
	ts.archiver.EXPECT().CreateFromUsername(gomock.Any(), "x").Return(nil, archiver.ErrInvalidUsername)
	resp = ts.do(fasthttp.MethodPost, "/api/instagram/users/", `{"username":"x"}`, &operator)
	assert.Equal(t, fasthttp.StatusBadRequest, resp.StatusCode())
}

func TestUpdateUser(t *testing.T) {
	ts := newTestServer(t)
	require.NoError(t, ts.redis.Set(cache.StoryListPrefix+"x", "cached"))

	ts.expectAccount(t, operator, false)
	ts.users.EXPECT().GetByUUID(gomock.Any(), natgeoUUID).Return(testUser(), nil)
	ts.users.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, u *domain.InstagramUser) error {
			assert.True(t, u.AllowAutoUpdateStories)
			assert.False(t, u.AllowAutoUpdateProfile)
			assert.Equal(t, 4, u.AutoUpdateStoriesLimitCount)
			return nil
		},
	)

	resp := ts.do(fasthttp.MethodPatch, "/api/instagram/users/"+natgeoUUID.String()+"/",
		`{"allow_auto_update_stories":true,"auto_update_stories_limit_count":4}`, &operator)
	require.Equal(t, fasthttp.StatusOK, resp.StatusCode())
	assert.EqualValues(t, 4, decode(t, resp)["auto_update_stories_limit_count"])
	assert.False(t, ts.redis.Exists(cache.StoryListPrefix+"x"))
}

func TestUpdateUser_NegativeLimit(t *testing.T) {
	ts := newTestServer(t)
	ts.expectAccount(t, operator, false)

	resp := ts.do(fasthttp.MethodPatch, "/api/instagram/users/"+natgeoUUID.String()+"/",
		`{"auto_update_profile_limit_count":-1}`, &operator)
	assert.Equal(t, fasthttp.StatusBadRequest, resp.StatusCode())
	assert.Contains(t, decode(t, resp), "auto_update_profile_limit_count")
}

func TestDeleteUser(t *testing.T) {
	ts := newTestServer(t)
	ts.expectAccount(t, operator, false)
	ts.users.EXPECT().Delete(gomock.Any(), natgeoUUID).Return(nil)

	resp := ts.do(fasthttp.MethodDelete, "/api/instagram/users/"+natgeoUUID.String()+"/", "", &operator)
	assert.Equal(t, fasthttp.StatusNoContent, resp.StatusCode())

	ts.expectAccount(t, operator, false)
	ts.users.EXPECT().Delete(gomock.Any(), natgeoUUID).Return(user.ErrNotFound)
	resp = ts.do(fasthttp.MethodDelete, "/api/instagram/users/"+natgeoUUID.String()+"/", "", &operator)
	assert.Equal(t, fasthttp.StatusNotFound, resp.StatusCode())
}

func TestUpdateUserStoriesAndProfile(t *testing.T) {
	ts := newTestServer(t)
	path := "/api/instagram/users/" + natgeoUUID.String()

	ts.expectAccount(t, operator, false)
	ts.users.EXPECT().GetByUUID(gomock.Any(), natgeoUUID).Return(testUser(), nil)
	ts.archiver.EXPECT().ArchiveStories(gomock.Any(), gomock.Any()).Return(archiver.Result{Created: 2, Skipped: 1}, nil)

	resp := ts.do(fasthttp.MethodPost, path+"/update-stories/", "", &operator)
	require.Equal(t, fasthttp.StatusOK, resp.StatusCode())
	assert.JSONEq(t, `{"created":2,"skipped":1,"failed":0}`, string(resp.Body()))

	refreshed := testUser()
	refreshed.FollowerCount = 99
	ts.expectAccount(t, operator, false)
	ts.users.EXPECT().GetByUUID(gomock.Any(), natgeoUUID).Return(testUser(), nil)
	ts.archiver.EXPECT().RefreshProfile(gomock.Any(), gomock.Any()).Return(refreshed, nil)

	resp = ts.do(fasthttp.MethodPost, path+"/update-profile/", "", &operator)
	require.Equal(t, fasthttp.StatusOK, resp.StatusCode())
	assert.EqualValues(t, 99, decode(t, resp)["follower_count"])
}

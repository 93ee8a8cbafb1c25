package httpapi

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	mock_archiver "github.com/orgball2608/insta-archive/internal/archiver/mocks"
	"github.com/orgball2608/insta-archive/internal/cache"
	"github.com/orgball2608/insta-archive/internal/domain"
	"github.com/orgball2608/insta-archive/internal/media"
	mock_account "github.com/orgball2608/insta-archive/internal/repositories/account/mocks"
	mock_story "github.com/orgball2608/insta-archive/internal/repositories/story/mocks"
	mock_user "github.com/orgball2608/insta-archive/internal/repositories/user/mocks"
	"github.com/orgball2608/insta-archive/pkg/config"
	"github.com/orgball2608/insta-archive/pkg/logger"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"
)

type fakeStore struct {
	root    string
	removed []string
}

func (f *fakeStore) SaveStory(_ context.Context, _, _, _ string) (*media.Saved, error) {
	return nil, nil
}

func (f *fakeStore) Remove(paths ...string) error {
	f.removed = append(f.removed, paths...)
	return nil
}

func (f *fakeStore) Root() string { return f.root }

type testServer struct {
	server   *Server
	handler  fasthttp.RequestHandler
	users    *mock_user.MockRepository
	stories  *mock_story.MockRepository
	accounts *mock_account.MockRepository
	archiver *mock_archiver.MockClient
	media    *fakeStore
	redis    *miniredis.Miniredis
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctrl := gomock.NewController(t)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	ts := &testServer{
		users:    mock_user.NewMockRepository(ctrl),
		stories:  mock_story.NewMockRepository(ctrl),
		accounts: mock_account.NewMockRepository(ctrl),
		archiver: mock_archiver.NewMockClient(ctrl),
		media:    &fakeStore{root: t.TempDir()},
		redis:    mr,
	}
	ts.server = New(Opts{
		UserRepo:    ts.users,
		StoryRepo:   ts.stories,
		AccountRepo: ts.accounts,
		Archiver:    ts.archiver,
		Cache:       cache.NewRedisCache(rdb, logger.NewNop()),
		Media:       ts.media,
		Logger:      logger.NewNop(),
		Config:      &config.Config{},
	})
	ts.handler = ts.server.Handler()
	return ts
}

type credentials struct {
	username, password string
}

func (ts *testServer) do(method, uri, body string, creds *credentials) *fasthttp.Response {
	var req fasthttp.Request
	req.Header.SetMethod(method)
	req.SetRequestURI("http://testserver" + uri)
	if body != "" {
		req.Header.SetContentType(contentTypeJSON)
		req.SetBodyString(body)
	}
	if creds != nil {
		token := base64.StdEncoding.EncodeToString([]byte(creds.username + ":" + creds.password))
		req.Header.Set(fasthttp.HeaderAuthorization, "Basic "+token)
	}

	var ctx fasthttp.RequestCtx
	ctx.Init(&req, nil, nil)
	ts.handler(&ctx)
	// Reading the body drains file streams set by the media handler.
	_ = ctx.Response.Body()

	resp := &fasthttp.Response{}
	ctx.Response.CopyTo(resp)
	return resp
}

// expectAccount makes creds resolve to an account with the given superuser flag.
func (ts *testServer) expectAccount(t *testing.T, creds credentials, superuser bool) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(creds.password), bcrypt.MinCost)
	require.NoError(t, err)

	ts.accounts.EXPECT().GetByUsername(gomock.Any(), creds.username).Return(&domain.AdminAccount{
		ID:           7,
		Username:     creds.username,
		PasswordHash: string(hash),
		IsSuperuser:  superuser,
	}, nil)
	ts.accounts.EXPECT().TouchLogin(gomock.Any(), 7).Return(nil)
}

func decode(t *testing.T, resp *fasthttp.Response) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(resp.Body(), &out))
	return out
}

var (
	natgeoUUID = uuid.MustParse("1b4e28ba-2fa1-11d2-883f-0016d3cca427")
	archivedAt = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
)

func testUser() *domain.InstagramUser {
	return &domain.InstagramUser{
		UUID:        natgeoUUID,
		InstagramID: "787132",
		Username:    "natgeo",
		FullName:    "National Geographic",
		CreatedAt:   archivedAt,
		UpdatedAt:   archivedAt,
		HasStories:  true,
		HasHistory:  true,
	}
}

func testStory(id string, createdAt time.Time) *domain.Story {
	return &domain.Story{
		StoryID:        id,
		UserUUID:       natgeoUUID,
		Thumbnail:      "stories/natgeo/" + id + "_thumbnail.jpg",
		BlurDataURL:    "data:image/jpeg;base64,AAAA",
		Media:          "stories/natgeo/" + id + ".jpg",
		CreatedAt:      createdAt,
		StoryCreatedAt: createdAt.Add(-time.Hour),
		User:           testUser(),
	}
}

// expectAccountNoLogin registers an account whose password differs from the one sent.
func (ts *testServer) expectAccountNoLogin(t *testing.T, creds credentials) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(creds.password), bcrypt.MinCost)
	require.NoError(t, err)

	ts.accounts.EXPECT().GetByUsername(gomock.Any(), creds.username).Return(&domain.AdminAccount{
		ID:           7,
		Username:     creds.username,
		PasswordHash: string(hash),
	}, nil)
}

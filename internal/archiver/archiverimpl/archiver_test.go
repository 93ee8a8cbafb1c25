package archiverimpl

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/orgball2608/insta-archive/internal/archiver"
	"github.com/orgball2608/insta-archive/internal/cache"
	"github.com/orgball2608/insta-archive/internal/domain"
	mock_instagram "github.com/orgball2608/insta-archive/internal/instagram/mocks"
	"github.com/orgball2608/insta-archive/internal/media"
	"github.com/orgball2608/insta-archive/internal/ratelimit"
	storyRepo "github.com/orgball2608/insta-archive/internal/repositories/story"
	mock_story "github.com/orgball2608/insta-archive/internal/repositories/story/mocks"
	userRepo "github.com/orgball2608/insta-archive/internal/repositories/user"
	mock_user "github.com/orgball2608/insta-archive/internal/repositories/user/mocks"
	"github.com/orgball2608/insta-archive/pkg/config"
	"github.com/orgball2608/insta-archive/pkg/logger"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type fakeMedia struct {
	mu      sync.Mutex
	saved   []string
	removed []string
	err     error
}

func (f *fakeMedia) SaveStory(_ context.Context, username, storyID, _ string) (*media.Saved, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.saved = append(f.saved, storyID)
	return &media.Saved{
		Media:       "stories/" + username + "/" + storyID + ".jpg",
		Thumbnail:   "stories/" + username + "/" + storyID + "_thumbnail.jpg",
		BlurDataURL: "data:image/jpeg;base64,AAAA",
		MimeType:    "image/jpeg",
	}, nil
}

func (f *fakeMedia) Remove(paths ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, paths...)
	return nil
}

func (f *fakeMedia) Root() string { return "" }

type fakeTelegram struct {
	mu       sync.Mutex
	messages []string
}

func (f *fakeTelegram) SendMessage(int64, string) (int, error) { return 0, nil }

func (f *fakeTelegram) SendMessageToUser(text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, text)
}

type fixture struct {
	archiver  *ArchiverImpl
	instagram *mock_instagram.MockClient
	users     *mock_user.MockRepository
	stories   *mock_story.MockRepository
	media     *fakeMedia
	telegram  *fakeTelegram
	redis     *miniredis.Miniredis
}

var fixedNow = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := &config.Config{}
	cfg.Archiver.Workers = 2

	f := &fixture{
		instagram: mock_instagram.NewMockClient(ctrl),
		users:     mock_user.NewMockRepository(ctrl),
		stories:   mock_story.NewMockRepository(ctrl),
		media:     &fakeMedia{},
		telegram:  &fakeTelegram{},
		redis:     mr,
	}
	f.archiver = New(Opts{
		Instagram: f.instagram,
		Telegram:  f.telegram,
		UserRepo:  f.users,
		StoryRepo: f.stories,
		Media:     f.media,
		Cache:     cache.NewRedisCache(rdb, logger.NewNop()),
		Limiter:   ratelimit.NewInMemoryLimiter(1000, time.Second, 1000),
		Logger:    logger.NewNop(),
		Config:    cfg,
	})
	f.archiver.now = func() time.Time { return fixedNow }
	return f
}

func testUser() *domain.InstagramUser {
	return &domain.InstagramUser{
		UUID:     uuid.MustParse("1b4e28ba-2fa1-11d2-883f-0016d3cca427"),
		Username: "natgeo",
	}
}

func TestArchiveStories(t *testing.T) {
	f := newFixture(t)
	u := testUser()
	require.NoError(t, f.redis.Set(cache.StoryListPrefix+"abc", "cached"))

	taken := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	f.instagram.EXPECT().GetUserStories(gomock.Any(), "natgeo").Return([]domain.StoryItem{
		{ID: "1", Username: "natgeo", MediaURL: "https://cdn/1.jpg", TakenAt: taken},
		{ID: "2", Username: "natgeo", MediaURL: "https://cdn/2.jpg", TakenAt: taken},
	}, nil)
	f.stories.EXPECT().Exists(gomock.Any(), "1").Return(true, nil)
	f.stories.EXPECT().Exists(gomock.Any(), "2").Return(false, nil)
	f.stories.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, s *domain.Story) error {
			assert.Equal(t, "2", s.StoryID)
			assert.Equal(t, u.UUID, s.UserUUID)
			assert.Equal(t, "stories/natgeo/2.jpg", s.Media)
			assert.Equal(t, "stories/natgeo/2_thumbnail.jpg", s.Thumbnail)
			assert.Equal(t, taken, s.StoryCreatedAt)
			return nil
		},
	)

	res, err := f.archiver.ArchiveStories(t.Context(), u)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 1, res.Skipped)
	assert.Zero(t, res.Failed)
	assert.Equal(t, []string{"2"}, f.media.saved)
	assert.False(t, f.redis.Exists(cache.StoryListPrefix+"abc"), "list cache is invalidated")
}

func TestArchiveStories_CreateFailureRemovesMedia(t *testing.T) {
	f := newFixture(t)

	f.instagram.EXPECT().GetUserStories(gomock.Any(), "natgeo").Return([]domain.StoryItem{
		{ID: "9", MediaURL: "https://cdn/9.jpg"},
	}, nil)
	f.stories.EXPECT().Exists(gomock.Any(), "9").Return(false, nil)
	f.stories.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errors.New("db down"))

	res, err := f.archiver.ArchiveStories(t.Context(), testUser())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, []string{"stories/natgeo/9.jpg", "stories/natgeo/9_thumbnail.jpg"}, f.media.removed)
}

func TestArchiveStories_DuplicateIsSkipped(t *testing.T) {
	f := newFixture(t)

	f.instagram.EXPECT().GetUserStories(gomock.Any(), "natgeo").Return([]domain.StoryItem{{ID: "9"}}, nil)
	f.stories.EXPECT().Exists(gomock.Any(), "9").Return(false, nil)
	f.stories.EXPECT().Create(gomock.Any(), gomock.Any()).Return(storyRepo.ErrAlreadyExists)

	res, err := f.archiver.ArchiveStories(t.Context(), testUser())
	require.NoError(t, err)
	assert.Equal(t, 1, res.Skipped)
}

func TestArchiveStories_UpstreamError(t *testing.T) {
	f := newFixture(t)
	f.instagram.EXPECT().GetUserStories(gomock.Any(), "natgeo").Return(nil, errors.New("challenge required"))

	_, err := f.archiver.ArchiveStories(t.Context(), testUser())
	assert.ErrorContains(t, err, "challenge required")
}

func TestRefreshProfile(t *testing.T) {
	f := newFixture(t)
	u := testUser()

	f.instagram.EXPECT().GetProfile(gomock.Any(), "natgeo").Return(&domain.Profile{
		InstagramID:   "787132",
		Username:      "natgeo",
		FullName:      "National Geographic",
		FollowerCount: 280000000,
	}, nil)
	f.users.EXPECT().UpdateProfile(gomock.Any(), u).Return(nil)

	got, err := f.archiver.RefreshProfile(t.Context(), u)
	require.NoError(t, err)
	assert.Equal(t, "National Geographic", got.FullName)
	assert.Equal(t, 280000000, got.FollowerCount)
	require.NotNil(t, got.UpdatedAtFromAPI)
	assert.Equal(t, fixedNow, *got.UpdatedAtFromAPI)
}

func TestCreateFromUsername(t *testing.T) {
	f := newFixture(t)

	f.users.EXPECT().GetByUsername(gomock.Any(), "natgeo").Return(nil, userRepo.ErrNotFound)
	f.instagram.EXPECT().GetProfile(gomock.Any(), "natgeo").Return(&domain.Profile{InstagramID: "787132", Username: "natgeo"}, nil)
	f.users.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, u *domain.InstagramUser) error {
			u.UUID = uuid.New()
			return nil
		},
	)

	u, err := f.archiver.CreateFromUsername(t.Context(), "  @NatGeo ")
	require.NoError(t, err)
	assert.Equal(t, "natgeo", u.Username)
	assert.Equal(t, "787132", u.InstagramID)
	assert.NotEqual(t, uuid.Nil, u.UUID)
}

func TestCreateFromUsername_Rejections(t *testing.T) {
	f := newFixture(t)

	_, err := f.archiver.CreateFromUsername(t.Context(), " @ ")
	assert.ErrorIs(t, err, archiver.ErrInvalidUsername)

	f.users.EXPECT().GetByUsername(gomock.Any(), "natgeo").Return(testUser(), nil)
	_, err = f.archiver.CreateFromUsername(t.Context(), "natgeo")
	assert.ErrorIs(t, err, userRepo.ErrAlreadyExists)
}

func TestRunScheduled_RespectsDailyLimit(t *testing.T) {
	f := newFixture(t)

	limited := testUser()
	limited.AutoUpdateStoriesLimitCount = 2
	require.NoError(t, f.redis.Set(quotaKey(userRepo.AutoUpdateStories, limited, fixedNow), "2"))

	open := &domain.InstagramUser{UUID: uuid.New(), Username: "nasa", AutoUpdateStoriesLimitCount: 3}

	f.users.EXPECT().ListAutoUpdate(gomock.Any(), userRepo.AutoUpdateStories).
		Return([]*domain.InstagramUser{limited, open}, nil)
	f.instagram.EXPECT().GetUserStories(gomock.Any(), "nasa").Return([]domain.StoryItem{{ID: "5"}}, nil)
	f.stories.EXPECT().Exists(gomock.Any(), "5").Return(false, nil)
	f.stories.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)

	report := f.archiver.RunScheduled(t.Context(), userRepo.AutoUpdateStories)

	assert.Equal(t, 2, report.Users)
	assert.Equal(t, 1, report.Updated)
	assert.Equal(t, 1, report.Limited)
	assert.Equal(t, 1, report.Stories)
	assert.Zero(t, report.Failed)

	key := "archiver:stories:" + open.UUID.String() + ":20250301"
	v, err := f.redis.Get(key)
	require.NoError(t, err)
	assert.Equal(t, "1", v)
	assert.Equal(t, quotaTTL, f.redis.TTL(key))
}

func TestRunScheduled_ProfilesAndReport(t *testing.T) {
	f := newFixture(t)
	u := testUser()

	f.users.EXPECT().ListAutoUpdate(gomock.Any(), userRepo.AutoUpdateProfile).Return([]*domain.InstagramUser{u}, nil)
	f.instagram.EXPECT().GetProfile(gomock.Any(), "natgeo").Return(nil, errors.New("rate limited"))

	report := f.archiver.RunScheduled(t.Context(), userRepo.AutoUpdateProfile)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "natgeo")

	f.archiver.notify(report)
	require.Len(t, f.telegram.messages, 1)
	msg := f.telegram.messages[0]
	assert.True(t, strings.HasPrefix(msg, "*Profile refresh run*"))
	assert.Contains(t, msg, "Failures: 1")
	assert.NotContains(t, msg, "New stories")
}

func TestNotify_SkipsEmptyRuns(t *testing.T) {
	f := newFixture(t)
	f.archiver.notify(RunReport{Kind: userRepo.AutoUpdateStories})
	assert.Empty(t, f.telegram.messages)
}

func TestFormatReport_EscapesMarkdown(t *testing.T) {
	msg := FormatReport(RunReport{
		Kind:     userRepo.AutoUpdateStories,
		Users:    1200,
		Updated:  3,
		Stories:  10,
		Duration: 1500 * time.Millisecond,
		Errors:   []string{"nat.geo: boom!"},
	})

	assert.Contains(t, msg, "Users: 1,200")
	assert.Contains(t, msg, "New stories: 10")
	assert.Contains(t, msg, `Took: 1\.5s`)
	assert.Contains(t, msg, `nat\.geo: boom\!`)
}

package story

import (
	sq "github.com/Masterminds/squirrel"
	"github.com/orgball2608/insta-archive/internal/domain"
	"github.com/orgball2608/insta-archive/internal/repositories"
	"github.com/orgball2608/insta-archive/internal/repositories/user"
)

var storyColumns = []string{
	"s.story_id",
	"s.user_uuid",
	"s.thumbnail",
	"s.blur_data_url",
	"s.media",
	"s.created_at",
	"s.story_created_at",
}

func selectStories() sq.SelectBuilder {
	return repositories.SqBuilder.
		Select(append(append([]string{}, storyColumns...), user.Columns("u")...)...).
		From("stories s").
		Join("instagram_users u ON u.uuid = s.user_uuid")
}

func scanDest(s *domain.Story) []any {
	s.User = &domain.InstagramUser{}
	return append([]any{
		&s.StoryID,
		&s.UserUUID,
		&s.Thumbnail,
		&s.BlurDataURL,
		&s.Media,
		&s.CreatedAt,
		&s.StoryCreatedAt,
	}, user.ScanDest(s.User)...)
}

func buildListQuery(filter domain.StoryFilter) (string, []any, error) {
	builder := selectStories()

	if cond := user.SearchCondition("u", filter.Search); cond != nil {
		builder = builder.Where(cond)
	}
	if filter.UserUUID != nil {
		builder = builder.Where(sq.Eq{"s.user_uuid": *filter.UserUUID})
	}

	switch {
	case filter.Before != nil:
		builder = builder.
			Where(sq.Expr("(s.created_at, s.story_id) > (?, ?)", filter.Before.CreatedAt, filter.Before.StoryID)).
			OrderBy("s.created_at ASC", "s.story_id ASC")
	case filter.After != nil:
		builder = builder.
			Where(sq.Expr("(s.created_at, s.story_id) < (?, ?)", filter.After.CreatedAt, filter.After.StoryID)).
			OrderBy("s.created_at DESC", "s.story_id DESC")
	default:
		builder = builder.OrderBy("s.created_at DESC", "s.story_id DESC")
	}

	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}
	return builder.ToSql()
}

func buildGetQuery(storyID string) (string, []any, error) {
	return selectStories().Where(sq.Eq{"s.story_id": storyID}).ToSql()
}

func buildSimilarQuery(storyID string, limit, offset int) (string, []any, error) {
	builder := selectStories().
		Column("1 - (s.embedding <-> src.embedding) AS similarity_score").
		JoinClause("CROSS JOIN (SELECT embedding FROM stories WHERE story_id = ?) src", storyID).
		Where("s.embedding IS NOT NULL").
		Where(sq.NotEq{"s.story_id": storyID}).
		OrderBy("similarity_score DESC", "s.created_at DESC", "s.story_id DESC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}
	if offset > 0 {
		builder = builder.Offset(uint64(offset))
	}
	return builder.ToSql()
}

func buildSimilarCountQuery(storyID string) (string, []any, error) {
	return repositories.SqBuilder.
		Select("COUNT(*)").
		From("stories s").
		Where("s.embedding IS NOT NULL").
		Where(sq.NotEq{"s.story_id": storyID}).
		ToSql()
}

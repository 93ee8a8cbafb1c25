package user

import (
	"fmt"
	"strings"
	"unicode"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/orgball2608/insta-archive/internal/domain"
	"github.com/orgball2608/insta-archive/internal/repositories"
)

// SearchTerms splits a search query on whitespace and commas.
func SearchTerms(search string) []string {
	return strings.FieldsFunc(strings.ReplaceAll(search, "\x00", ""), func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}

// SearchCondition requires every term to match the username, full name or biography.
// It returns nil when there are no terms.
func SearchCondition(alias, search string) sq.Sqlizer {
	terms := SearchTerms(search)
	if len(terms) == 0 {
		return nil
	}

	all := make(sq.And, 0, len(terms))
	for _, term := range terms {
		pattern := repositories.Contains(term)
		all = append(all, sq.Or{
			sq.ILike{alias + ".username": pattern},
			sq.ILike{alias + ".full_name": pattern},
			sq.ILike{alias + ".biography": pattern},
		})
	}
	if len(all) == 1 {
		return all[0]
	}
	return all
}

func selectUsers() sq.SelectBuilder {
	return repositories.SqBuilder.
		Select(Columns("u")...).
		From("instagram_users u")
}

func buildGetQuery(where sq.Sqlizer) (string, []any, error) {
	return selectUsers().Where(where).ToSql()
}

func buildListQuery(filter domain.UserFilter) (string, []any, error) {
	builder := selectUsers().OrderBy("u.created_at DESC", "u.uuid DESC")
	if cond := SearchCondition("u", filter.Search); cond != nil {
		builder = builder.Where(cond)
	}
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		builder = builder.Offset(uint64(filter.Offset))
	}
	return builder.ToSql()
}

func buildCountQuery(filter domain.UserFilter) (string, []any, error) {
	builder := repositories.SqBuilder.Select("COUNT(*)").From("instagram_users u")
	if cond := SearchCondition("u", filter.Search); cond != nil {
		builder = builder.Where(cond)
	}
	return builder.ToSql()
}

func buildAutoUpdateQuery(kind AutoUpdateKind) (string, []any, error) {
	column := "u.allow_auto_update_stories"
	if kind == AutoUpdateProfile {
		column = "u.allow_auto_update_profile"
	}
	return selectUsers().
		Where(sq.Eq{column: true}).
		OrderBy("u.username ASC").
		ToSql()
}

func buildInsertQuery(u *domain.InstagramUser) (string, []any, error) {
	return repositories.SqBuilder.
		Insert("instagram_users").
		Columns(profileColumns...).
		Values(values(u)...).
		ToSql()
}

func buildUpdateQuery(u *domain.InstagramUser) (string, []any, error) {
	vals := values(u)
	builder := repositories.SqBuilder.Update("instagram_users")
	// uuid and created_at never change.
	for i, col := range profileColumns {
		if col == "uuid" || col == "created_at" {
			continue
		}
		builder = builder.Set(col, vals[i])
	}
	return builder.Where(sq.Eq{"uuid": u.UUID}).ToSql()
}

// upstreamColumns are the profile fields refreshed from Instagram.
var upstreamColumns = []string{
	"instagram_id",
	"username",
	"full_name",
	"profile_picture",
	"biography",
	"is_private",
	"is_verified",
	"media_count",
	"follower_count",
	"following_count",
}

// buildProfileUpdateQuery writes the upstream profile fields only. The
// auto-update settings are read back so callers see the stored values.
func buildProfileUpdateQuery(u *domain.InstagramUser) (string, []any, error) {
	upstream := []any{
		u.InstagramID,
		u.Username,
		u.FullName,
		u.ProfilePicture,
		u.Biography,
		u.IsPrivate,
		u.IsVerified,
		u.MediaCount,
		u.FollowerCount,
		u.FollowingCount,
	}
	builder := repositories.SqBuilder.Update("instagram_users")
	for i, col := range upstreamColumns {
		builder = builder.Set(col, upstream[i])
	}
	return builder.
		Set("updated_at_from_api", u.UpdatedAtFromAPI).
		Set("updated_at", u.UpdatedAt).
		Where(sq.Eq{"uuid": u.UUID}).
		Suffix("RETURNING allow_auto_update_stories, allow_auto_update_profile, " +
			"auto_update_stories_limit_count, auto_update_profile_limit_count, created_at").
		ToSql()
}

// historyInsert snapshots the current row into instagram_users_history.
var historyInsert = fmt.Sprintf(
	"INSERT INTO instagram_users_history (%[1]s, history_type) SELECT %[1]s, $1::char(1) FROM instagram_users WHERE uuid = $2",
	strings.Join(profileColumns, ", "),
)

func buildHistoryQuery(id uuid.UUID, limit, offset int) (string, []any, error) {
	builder := repositories.SqBuilder.
		Select(append([]string{"history_id", "history_date", "history_type"}, profileColumns...)...).
		From("instagram_users_history").
		Where(sq.Eq{"uuid": id}).
		OrderBy("history_date DESC", "history_id DESC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}
	if offset > 0 {
		builder = builder.Offset(uint64(offset))
	}
	return builder.ToSql()
}

package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix      = "user:%d"
	PostKeyPrefix      = "post:%d"
	BoardKeyPrefix     = "board:%s"
	BoardPostsPrefix   = "board:%s:posts"
	WidgetFeedPrefix   = "widget:%s"
	ChangelogKeyPrefix = "changelog:%s"
	RoadmapKeyPrefix   = "roadmap:%s"
)

const (
	UserTTL       = 5 * time.Minute
	BoardTTL      = 10 * time.Minute
	PostTTL       = 30 * time.Minute
	WidgetFeedTTL = 1 * time.Minute
	ChangelogTTL  = 10 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

func BoardKey(slug string) string {
	return fmt.Sprintf(BoardKeyPrefix, slug)
}

func BoardPostsKey(slug string) string {
	return fmt.Sprintf(BoardPostsPrefix, slug)
}

func WidgetFeedKey(slug string) string {
	return fmt.Sprintf(WidgetFeedPrefix, slug)
}

func ChangelogKey(slug string) string {
	return fmt.Sprintf(ChangelogKeyPrefix, slug)
}

func RoadmapKey(slug string) string {
	return fmt.Sprintf(RoadmapKeyPrefix, slug)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

// InvalidateBoard drops every cached view of a board. Writes that touch a
// board's posts (votes, submissions, status changes) call this.
func InvalidateBoard(ctx context.Context, slug string) {
	Invalidate(ctx, BoardKey(slug))
	Invalidate(ctx, BoardPostsKey(slug))
	Invalidate(ctx, WidgetFeedKey(slug))
	Invalidate(ctx, RoadmapKey(slug))
}

func InvalidateChangelog(ctx context.Context, slug string) {
	Invalidate(ctx, ChangelogKey(slug))
}

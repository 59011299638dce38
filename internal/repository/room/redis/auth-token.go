package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/kikoune/server/internal/repository/room"
)

func (r repo) getTokenKey(userId string) string {
	return "token:" + userId
}

// SetAuthToken stores the bearer token for a user. Tokens do not expire;
// a new login overwrites the previous one.
func (r repo) SetAuthToken(ctx context.Context, params *room.SetAuthTokenParams) error {
	r.logger.DebugContext(ctx, "called", "user_id", params.UserId)
	if err := r.rc.Set(ctx, r.getTokenKey(params.UserId), params.Token, 0).Err(); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	return nil
}

func (r repo) GetAuthToken(ctx context.Context, userId string) (string, error) {
	r.logger.DebugContext(ctx, "called", "user_id", userId)
	token, err := r.rc.Get(ctx, r.getTokenKey(userId)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", room.ErrTokenNotFound
		}
		r.logger.DebugContext(ctx, "returned", "error", err)
		return "", err
	}

	return token, nil
}

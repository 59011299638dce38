package controller

import "context"

type ctxKey int

const userIdKey ctxKey = iota

func withUserId(ctx context.Context, userId string) context.Context {
	return context.WithValue(ctx, userIdKey, userId)
}

func userIdFromCtx(ctx context.Context) string {
	userId, _ := ctx.Value(userIdKey).(string)
	return userId
}

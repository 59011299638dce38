package redis

import (
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// TTLs are the liveness contract: a session disappears 60s after the
	// last mutation, a member 15s after their last sync.
	sessionTTL = 60 * time.Second
	memberTTL  = 15 * time.Second
)

type repo struct {
	rc     *redis.Client
	logger *slog.Logger
}

func NewRepo(rc *redis.Client, logger *slog.Logger) *repo {
	return &repo{
		rc:     rc,
		logger: logger,
	}
}

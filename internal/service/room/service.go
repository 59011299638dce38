package room

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"time"

	"github.com/kikoune/server/internal/repository/room"
	"github.com/kikoune/server/pkg/keylock"
	"github.com/kikoune/server/pkg/nicovideodata"
)

var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrQueueLocked      = errors.New("queue is locked")
	ErrInvalidVideo     = errors.New("invalid video")
	ErrInvalidNonce     = errors.New("invalid nonce")
	ErrNoVideoPlaying   = errors.New("no video to skip")
	ErrMemberNotFound   = errors.New("member not found")
)

const (
	// playbackGraceMs pads the finished check to tolerate clock and poll
	// skew between clients.
	playbackGraceMs = 2000

	maxMessageLength = 100
)

type iRoomRepo interface {
	// session
	GetSession(ctx context.Context, roomId string) (room.Session, error)
	GetOrCreateSession(context.Context, *room.CreateSessionParams) (room.Session, error)
	SaveSession(context.Context, *room.SaveSessionParams) error
	KeepAliveSession(ctx context.Context, roomId string) error
	// member presence
	SetMemberState(context.Context, *room.SetMemberStateParams) error
	GetMemberState(ctx context.Context, roomId, userId string) (room.MemberState, error)
	GetMemberStates(context.Context, *room.GetMemberStatesParams) (map[string]room.MemberState, error)
	KeepAliveMembers(context.Context, *room.KeepAliveMembersParams) error
}

type iVideoResolver interface {
	Get(ctx context.Context, videoId string) (nicovideodata.Video, error)
}

type service struct {
	roomRepo iRoomRepo
	resolver iVideoResolver
	locks    *keylock.KeyLock
	logger   *slog.Logger

	// swapped out in tests
	now   func() time.Time
	randn func(n int) int
}

func NewService(roomRepo iRoomRepo, resolver iVideoResolver, logger *slog.Logger) *service {
	return &service{
		roomRepo: roomRepo,
		resolver: resolver,
		locks:    keylock.New(),
		logger:   logger,
		now:      time.Now,
		randn:    rand.Intn,
	}
}

package redis

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kikoune/server/internal/repository/room"
)

func newTestRepo(t *testing.T) (*repo, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: s.Addr()})
	return NewRepo(rc, slog.Default()), s
}

func TestSessionLifecycle(t *testing.T) {
	r, s := newTestRepo(t)
	ctx := context.Background()

	_, err := r.GetSession(ctx, "r1")
	assert.ErrorIs(t, err, room.ErrSessionNotFound)

	created, err := r.GetOrCreateSession(ctx, &room.CreateSessionParams{RoomId: "r1", Host: "alice"})
	require.NoError(t, err)
	assert.Nil(t, created.Video)
	assert.Empty(t, created.Queue)
	assert.Equal(t, "alice", created.Host)
	assert.Equal(t, room.DefaultSetting(), created.Setting)
	assert.NotZero(t, created.StartedAt)

	// a second get-or-create must not replace the host
	again, err := r.GetOrCreateSession(ctx, &room.CreateSessionParams{RoomId: "r1", Host: "bob"})
	require.NoError(t, err)
	assert.Equal(t, "alice", again.Host)

	created.Host = "bob"
	created.Queue = append(created.Queue, room.QueueItem{VideoId: "sm9", RequestedBy: "bob", Nonce: "n1"})
	require.NoError(t, r.SaveSession(ctx, &room.SaveSessionParams{RoomId: "r1", Session: created}))

	got, err := r.GetSession(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "bob", got.Host)
	require.Len(t, got.Queue, 1)
	assert.Equal(t, "n1", got.Queue[0].Nonce)

	assert.Equal(t, sessionTTL, s.TTL("room:r1:session"))
}

func TestSessionExpiry(t *testing.T) {
	r, s := newTestRepo(t)
	ctx := context.Background()

	_, err := r.GetOrCreateSession(ctx, &room.CreateSessionParams{RoomId: "r1", Host: "alice"})
	require.NoError(t, err)

	s.FastForward(30 * time.Second)
	require.NoError(t, r.KeepAliveSession(ctx, "r1"))

	s.FastForward(59 * time.Second)
	_, err = r.GetSession(ctx, "r1")
	require.NoError(t, err, "keep-alive must reset the ttl")

	s.FastForward(2 * time.Second)
	_, err = r.GetSession(ctx, "r1")
	assert.ErrorIs(t, err, room.ErrSessionNotFound)
}

func TestMemberStates(t *testing.T) {
	r, s := newTestRepo(t)
	ctx := context.Background()

	state := room.MemberState{X: 0.5, Y: -0.25, Rotate: true, Message: "hi"}
	require.NoError(t, r.SetMemberState(ctx, &room.SetMemberStateParams{RoomId: "r1", UserId: "alice", State: state}))

	got, err := r.GetMemberState(ctx, "r1", "alice")
	require.NoError(t, err)
	assert.Equal(t, state, got)

	_, err = r.GetMemberState(ctx, "r1", "bob")
	assert.ErrorIs(t, err, room.ErrMemberNotFound)

	// absent users are omitted, not errors
	states, err := r.GetMemberStates(ctx, &room.GetMemberStatesParams{RoomId: "r1", UserIds: []string{"alice", "bob"}})
	require.NoError(t, err)
	require.Len(t, states, 1)
	assert.Equal(t, state, states["alice"])

	assert.Equal(t, memberTTL, s.TTL("room:r1:user:alice"))
}

func TestKeepAliveMembers(t *testing.T) {
	r, s := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, r.SetMemberState(ctx, &room.SetMemberStateParams{RoomId: "r1", UserId: "alice", State: room.MemberState{}}))

	s.FastForward(10 * time.Second)
	require.NoError(t, r.KeepAliveMembers(ctx, &room.KeepAliveMembersParams{RoomId: "r1", UserIds: []string{"alice", "gone"}}))

	s.FastForward(14 * time.Second)
	_, err := r.GetMemberState(ctx, "r1", "alice")
	require.NoError(t, err)

	s.FastForward(2 * time.Second)
	_, err = r.GetMemberState(ctx, "r1", "alice")
	assert.ErrorIs(t, err, room.ErrMemberNotFound)
}

func TestAuthToken(t *testing.T) {
	r, s := newTestRepo(t)
	ctx := context.Background()

	_, err := r.GetAuthToken(ctx, "alice")
	assert.ErrorIs(t, err, room.ErrTokenNotFound)

	require.NoError(t, r.SetAuthToken(ctx, &room.SetAuthTokenParams{UserId: "alice", Token: "tok:inst"}))

	token, err := r.GetAuthToken(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "tok:inst", token)

	// tokens must survive where sessions expire
	s.FastForward(time.Hour)
	token, err = r.GetAuthToken(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "tok:inst", token)
}

package room

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func queueNonces(t *testing.T, svc *service, roomId string) []string {
	t.Helper()
	session, err := svc.roomRepo.GetSession(context.Background(), roomId)
	require.NoError(t, err)

	nonces := make([]string, 0, len(session.Queue))
	for _, item := range session.Queue {
		nonces = append(nonces, item.Nonce)
	}
	return nonces
}

func TestAddVideoReturnsMetadata(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	resp, err := svc.AddVideo(ctx, &AddVideoParams{RoomId: "r1", UserId: "alice", VideoId: "sm1"})
	require.NoError(t, err)
	assert.Equal(t, "first", resp.Video.Title)
	assert.Equal(t, 10, resp.Video.Length)

	_, err = svc.AddVideo(ctx, &AddVideoParams{RoomId: "r1", UserId: "alice", VideoId: "does-not-exist"})
	assert.ErrorIs(t, err, ErrInvalidVideo)
}

func TestAddVideoQueueLimit(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	// alice creates the room and becomes host
	_, err := svc.Sync(ctx, &SyncParams{RoomId: "r1", UserId: "alice", UserIds: []string{"alice"}})
	require.NoError(t, err)

	limit := 2
	require.NoError(t, svc.UpdateSetting(ctx, &UpdateSettingParams{
		RoomId:  "r1",
		UserId:  "alice",
		Setting: SettingPatch{QueueLimit: &limit},
	}))

	_, err = svc.AddVideo(ctx, &AddVideoParams{RoomId: "r1", UserId: "bob", VideoId: "sm1"})
	require.NoError(t, err)
	_, err = svc.AddVideo(ctx, &AddVideoParams{RoomId: "r1", UserId: "bob", VideoId: "sm2"})
	require.NoError(t, err)

	// non-host at the cap is rejected
	_, err = svc.AddVideo(ctx, &AddVideoParams{RoomId: "r1", UserId: "carol", VideoId: "sm3"})
	assert.ErrorIs(t, err, ErrQueueLocked)

	// the host bypasses the cap
	_, err = svc.AddVideo(ctx, &AddVideoParams{RoomId: "r1", UserId: "alice", VideoId: "sm3"})
	assert.NoError(t, err)
}

func TestAddVideoQueueLocked(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Sync(ctx, &SyncParams{RoomId: "r1", UserId: "alice", UserIds: []string{"alice"}})
	require.NoError(t, err)

	locked := true
	require.NoError(t, svc.UpdateSetting(ctx, &UpdateSettingParams{
		RoomId:  "r1",
		UserId:  "alice",
		Setting: SettingPatch{QueueLocked: &locked},
	}))

	_, err = svc.AddVideo(ctx, &AddVideoParams{RoomId: "r1", UserId: "bob", VideoId: "sm1"})
	assert.ErrorIs(t, err, ErrQueueLocked)

	_, err = svc.AddVideo(ctx, &AddVideoParams{RoomId: "r1", UserId: "alice", VideoId: "sm1"})
	assert.NoError(t, err, "host may queue into a locked queue")
}

func TestCancelVideoAuthorization(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Sync(ctx, &SyncParams{RoomId: "r1", UserId: "alice", UserIds: []string{"alice"}})
	require.NoError(t, err)
	_, err = svc.AddVideo(ctx, &AddVideoParams{RoomId: "r1", UserId: "bob", VideoId: "sm1"})
	require.NoError(t, err)
	_, err = svc.AddVideo(ctx, &AddVideoParams{RoomId: "r1", UserId: "bob", VideoId: "sm2"})
	require.NoError(t, err)

	nonces := queueNonces(t, svc, "r1")
	require.Len(t, nonces, 2)

	err = svc.CancelVideo(ctx, &CancelVideoParams{RoomId: "r1", UserId: "carol", Nonce: nonces[0]})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	// the requester may cancel their own item
	require.NoError(t, svc.CancelVideo(ctx, &CancelVideoParams{RoomId: "r1", UserId: "bob", Nonce: nonces[0]}))
	// the host may cancel anyone's
	require.NoError(t, svc.CancelVideo(ctx, &CancelVideoParams{RoomId: "r1", UserId: "alice", Nonce: nonces[1]}))

	err = svc.CancelVideo(ctx, &CancelVideoParams{RoomId: "r1", UserId: "alice", Nonce: "unknown"})
	assert.ErrorIs(t, err, ErrInvalidNonce)
}

func TestSkipVideo(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	err := svc.SkipVideo(ctx, &SkipVideoParams{RoomId: "r1", UserId: "alice", Nonce: "x"})
	assert.ErrorIs(t, err, ErrNoVideoPlaying)

	_, err = svc.AddVideo(ctx, &AddVideoParams{RoomId: "r1", UserId: "bob", VideoId: "sm1"})
	require.NoError(t, err)
	_, err = svc.AddVideo(ctx, &AddVideoParams{RoomId: "r1", UserId: "bob", VideoId: "sm2"})
	require.NoError(t, err)

	resp, err := svc.Sync(ctx, &SyncParams{RoomId: "r1", UserId: "bob", UserIds: []string{"bob"}})
	require.NoError(t, err)
	require.NotNil(t, resp.Session.Video)
	nonce := resp.Session.Video.Nonce

	err = svc.SkipVideo(ctx, &SkipVideoParams{RoomId: "r1", UserId: "bob", Nonce: "stale"})
	assert.ErrorIs(t, err, ErrInvalidNonce)

	err = svc.SkipVideo(ctx, &SkipVideoParams{RoomId: "r1", UserId: "carol", Nonce: nonce})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	// the requester skips, the next item starts immediately
	require.NoError(t, svc.SkipVideo(ctx, &SkipVideoParams{RoomId: "r1", UserId: "bob", Nonce: nonce}))

	session, err := svc.roomRepo.GetSession(ctx, "r1")
	require.NoError(t, err)
	require.NotNil(t, session.Video)
	assert.Equal(t, "sm2", session.Video.VideoId)
	assert.Empty(t, session.Queue)
}

func TestReorderQueue(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Sync(ctx, &SyncParams{RoomId: "r1", UserId: "alice", UserIds: []string{"alice"}})
	require.NoError(t, err)

	for _, videoId := range []string{"sm1", "sm2", "sm3"} {
		_, err := svc.AddVideo(ctx, &AddVideoParams{RoomId: "r1", UserId: "alice", VideoId: videoId})
		require.NoError(t, err)
	}

	nonces := queueNonces(t, svc, "r1")
	require.Len(t, nonces, 3)

	err = svc.ReorderQueue(ctx, &ReorderQueueParams{RoomId: "r1", UserId: "bob", Order: nonces})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	// partial order: mentioned items first, the rest keep relative order
	err = svc.ReorderQueue(ctx, &ReorderQueueParams{
		RoomId: "r1",
		UserId: "alice",
		Order:  []string{nonces[2], "stale-nonce", nonces[0]},
	})
	require.NoError(t, err)

	got := queueNonces(t, svc, "r1")
	assert.Equal(t, []string{nonces[2], nonces[0], nonces[1]}, got)
}

func TestSetHost(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Sync(ctx, &SyncParams{RoomId: "r1", UserId: "alice", UserIds: []string{"alice"}})
	require.NoError(t, err)

	err = svc.SetHost(ctx, &SetHostParams{RoomId: "r1", UserId: "bob", NewHost: "bob"})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	require.NoError(t, svc.SetHost(ctx, &SetHostParams{RoomId: "r1", UserId: "alice", NewHost: "bob"}))

	session, err := svc.roomRepo.GetSession(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "bob", session.Host)
}

func TestUpdateSettingMerges(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Sync(ctx, &SyncParams{RoomId: "r1", UserId: "alice", UserIds: []string{"alice"}})
	require.NoError(t, err)

	locked := true
	require.NoError(t, svc.UpdateSetting(ctx, &UpdateSettingParams{
		RoomId:  "r1",
		UserId:  "alice",
		Setting: SettingPatch{QueueLocked: &locked},
	}))

	limit := 5
	require.NoError(t, svc.UpdateSetting(ctx, &UpdateSettingParams{
		RoomId:  "r1",
		UserId:  "alice",
		Setting: SettingPatch{QueueLimit: &limit},
	}))

	session, err := svc.roomRepo.GetSession(ctx, "r1")
	require.NoError(t, err)
	assert.True(t, session.Setting.QueueLocked, "earlier patch must survive a later partial one")
	assert.Equal(t, 5, session.Setting.QueueLimit)

	err = svc.UpdateSetting(ctx, &UpdateSettingParams{RoomId: "r1", UserId: "bob", Setting: SettingPatch{QueueLimit: &limit}})
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kikoune/server/internal/repository/room"
)

func (r repo) getSessionKey(roomId string) string {
	return "room:" + roomId + ":session"
}

// GetSession is a raw read, it does not touch the TTL.
func (r repo) GetSession(ctx context.Context, roomId string) (room.Session, error) {
	r.logger.DebugContext(ctx, "called", "room_id", roomId)
	raw, err := r.rc.Get(ctx, r.getSessionKey(roomId)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return room.Session{}, room.ErrSessionNotFound
		}
		r.logger.DebugContext(ctx, "returned", "error", err)
		return room.Session{}, err
	}

	var session room.Session
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return room.Session{}, err
	}

	return session, nil
}

func (r repo) CreateSession(ctx context.Context, params *room.CreateSessionParams) (room.Session, error) {
	r.logger.DebugContext(ctx, "called", "params", params)
	session := room.Session{
		Video:     nil,
		StartedAt: time.Now().UnixMilli(),
		Queue:     []room.QueueItem{},
		Host:      params.Host,
		Setting:   room.DefaultSetting(),
	}

	if err := r.setSession(ctx, params.RoomId, session); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return room.Session{}, err
	}

	return session, nil
}

func (r repo) GetOrCreateSession(ctx context.Context, params *room.CreateSessionParams) (room.Session, error) {
	session, err := r.GetSession(ctx, params.RoomId)
	if err == nil {
		return session, nil
	}
	if !errors.Is(err, room.ErrSessionNotFound) {
		return room.Session{}, err
	}

	r.logger.InfoContext(ctx, "creating session", "room_id", params.RoomId, "host", params.Host)
	return r.CreateSession(ctx, params)
}

// SaveSession overwrites the whole session document and resets the TTL.
// Callers must hold the room lock.
func (r repo) SaveSession(ctx context.Context, params *room.SaveSessionParams) error {
	r.logger.DebugContext(ctx, "called", "room_id", params.RoomId)
	if err := r.setSession(ctx, params.RoomId, params.Session); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	return nil
}

func (r repo) KeepAliveSession(ctx context.Context, roomId string) error {
	r.logger.DebugContext(ctx, "called", "room_id", roomId)
	if err := r.rc.Expire(ctx, r.getSessionKey(roomId), sessionTTL).Err(); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	return nil
}

func (r repo) setSession(ctx context.Context, roomId string, session room.Session) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return err
	}

	return r.rc.Set(ctx, r.getSessionKey(roomId), raw, sessionTTL).Err()
}

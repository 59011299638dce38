package redis

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/kikoune/server/internal/repository/room"
)

func (r repo) getMemberKey(roomId, userId string) string {
	return "room:" + roomId + ":user:" + userId
}

func (r repo) SetMemberState(ctx context.Context, params *room.SetMemberStateParams) error {
	r.logger.DebugContext(ctx, "called", "params", params)
	raw, err := json.Marshal(params.State)
	if err != nil {
		return err
	}

	if err := r.rc.Set(ctx, r.getMemberKey(params.RoomId, params.UserId), raw, memberTTL).Err(); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	return nil
}

func (r repo) GetMemberState(ctx context.Context, roomId, userId string) (room.MemberState, error) {
	r.logger.DebugContext(ctx, "called", "room_id", roomId, "user_id", userId)
	raw, err := r.rc.Get(ctx, r.getMemberKey(roomId, userId)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return room.MemberState{}, room.ErrMemberNotFound
		}
		r.logger.DebugContext(ctx, "returned", "error", err)
		return room.MemberState{}, err
	}

	var state room.MemberState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return room.MemberState{}, err
	}

	return state, nil
}

// GetMemberStates returns the states of the given users. Users whose
// presence key has expired are silently omitted.
func (r repo) GetMemberStates(ctx context.Context, params *room.GetMemberStatesParams) (map[string]room.MemberState, error) {
	r.logger.DebugContext(ctx, "called", "params", params)
	pipe := r.rc.Pipeline()

	cmds := make(map[string]*redis.StringCmd, len(params.UserIds))
	for _, userId := range params.UserIds {
		cmds[userId] = pipe.Get(ctx, r.getMemberKey(params.RoomId, userId))
	}

	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return nil, err
	}

	states := make(map[string]room.MemberState, len(params.UserIds))
	for userId, cmd := range cmds {
		raw, err := cmd.Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			r.logger.DebugContext(ctx, "returned", "error", err)
			return nil, err
		}

		var state room.MemberState
		if err := json.Unmarshal([]byte(raw), &state); err != nil {
			r.logger.DebugContext(ctx, "returned", "error", err)
			return nil, err
		}
		states[userId] = state
	}

	return states, nil
}

func (r repo) KeepAliveMembers(ctx context.Context, params *room.KeepAliveMembersParams) error {
	r.logger.DebugContext(ctx, "called", "params", params)
	pipe := r.rc.Pipeline()

	for _, userId := range params.UserIds {
		pipe.Expire(ctx, r.getMemberKey(params.RoomId, userId), memberTTL)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.DebugContext(ctx, "returned", "error", err)
		return err
	}

	return nil
}

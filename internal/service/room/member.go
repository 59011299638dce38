package room

import (
	"context"
	"errors"

	"github.com/kikoune/server/internal/repository/room"
)

type StatePatch struct {
	X       *float64
	Y       *float64
	Rotate  *bool
	Message *string
}

type UpdateMemberStateParams struct {
	RoomId string
	UserId string
	State  StatePatch
}

// UpdateMemberState patches the caller's own presence record. Messages
// over the limit are truncated, not rejected.
func (s *service) UpdateMemberState(ctx context.Context, params *UpdateMemberStateParams) error {
	s.locks.Lock(params.RoomId)
	defer s.locks.Unlock(params.RoomId)

	state, err := s.roomRepo.GetMemberState(ctx, params.RoomId, params.UserId)
	if err != nil {
		if errors.Is(err, room.ErrMemberNotFound) {
			return ErrMemberNotFound
		}
		return err
	}

	if params.State.X != nil {
		state.X = *params.State.X
	}
	if params.State.Y != nil {
		state.Y = *params.State.Y
	}
	if params.State.Rotate != nil {
		state.Rotate = *params.State.Rotate
	}
	if params.State.Message != nil {
		state.Message = *params.State.Message
	}
	if runes := []rune(state.Message); len(runes) > maxMessageLength {
		state.Message = string(runes[:maxMessageLength])
	}

	return s.roomRepo.SetMemberState(ctx, &room.SetMemberStateParams{
		RoomId: params.RoomId,
		UserId: params.UserId,
		State:  state,
	})
}

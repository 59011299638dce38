package room

import (
	"context"
	"errors"

	"golang.org/x/exp/maps"

	"github.com/kikoune/server/internal/repository/room"
	"github.com/kikoune/server/pkg/nicovideodata"
)

type SyncParams struct {
	RoomId  string
	UserId  string
	UserIds []string
}

type SyncResponse struct {
	MemberStates map[string]room.MemberState `json:"memberStates"`
	Session      Session                     `json:"session"`
}

// Sync is the reconciliation tick, run on every client poll. Under the
// room lock it refreshes liveness, advances the queue once the current
// video has run out, and moves host privileges off absent members.
func (s *service) Sync(ctx context.Context, params *SyncParams) (SyncResponse, error) {
	s.locks.Lock(params.RoomId)
	defer s.locks.Unlock(params.RoomId)

	if err := s.roomRepo.KeepAliveSession(ctx, params.RoomId); err != nil {
		return SyncResponse{}, err
	}
	if err := s.roomRepo.KeepAliveMembers(ctx, &room.KeepAliveMembersParams{
		RoomId:  params.RoomId,
		UserIds: params.UserIds,
	}); err != nil {
		return SyncResponse{}, err
	}

	states, err := s.roomRepo.GetMemberStates(ctx, &room.GetMemberStatesParams{
		RoomId:  params.RoomId,
		UserIds: params.UserIds,
	})
	if err != nil {
		return SyncResponse{}, err
	}

	if _, ok := states[params.UserId]; !ok {
		state := room.MemberState{
			X: s.randFloat()*2 - 1,
			Y: s.randFloat()*2 - 1,
		}
		if err := s.roomRepo.SetMemberState(ctx, &room.SetMemberStateParams{
			RoomId: params.RoomId,
			UserId: params.UserId,
			State:  state,
		}); err != nil {
			return SyncResponse{}, err
		}
		states[params.UserId] = state
	}

	session, err := s.roomRepo.GetOrCreateSession(ctx, &room.CreateSessionParams{
		RoomId: params.RoomId,
		Host:   params.UserId,
	})
	if err != nil {
		return SyncResponse{}, err
	}

	finished, err := s.videoFinished(ctx, session)
	if err != nil {
		return SyncResponse{}, err
	}
	idle := session.Video == nil && len(session.Queue) == 0
	if finished && !idle {
		s.logger.InfoContext(ctx, "dequeueing video", "room_id", params.RoomId)
		s.dequeue(&session)
	}

	// after the advance, so a departed host's last queue pick still applies
	if _, ok := states[session.Host]; !ok {
		s.logger.InfoContext(ctx, "host is not in the room, moving",
			"room_id", params.RoomId,
			"old_host", session.Host,
			"new_host", params.UserId,
			"members", maps.Keys(states),
		)
		session.Host = params.UserId
	}

	if err := s.roomRepo.SaveSession(ctx, &room.SaveSessionParams{
		RoomId:  params.RoomId,
		Session: session,
	}); err != nil {
		return SyncResponse{}, err
	}

	resolved, err := s.resolveSession(ctx, session)
	if err != nil {
		return SyncResponse{}, err
	}

	return SyncResponse{
		MemberStates: states,
		Session:      resolved,
	}, nil
}

// videoFinished reports whether the playing slot should advance: nothing
// with a known duration is playing, or the duration plus grace has elapsed.
func (s *service) videoFinished(ctx context.Context, session room.Session) (bool, error) {
	if session.Video == nil {
		return true, nil
	}

	video, err := s.resolver.Get(ctx, session.Video.VideoId)
	if err != nil {
		if errors.Is(err, nicovideodata.ErrVideoNotFound) {
			return true, nil
		}
		return false, err
	}
	if video.Length == 0 {
		return true, nil
	}

	return session.StartedAt+int64(video.Length)*1000+playbackGraceMs < s.now().UnixMilli(), nil
}

func (s *service) randFloat() float64 {
	return float64(s.randn(1000)) / 1000
}

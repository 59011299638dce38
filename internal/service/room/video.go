package room

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/kikoune/server/internal/repository/room"
	"github.com/kikoune/server/pkg/nicovideodata"
)

type AddVideoParams struct {
	RoomId  string
	UserId  string
	VideoId string
}

type AddVideoResponse struct {
	Video nicovideodata.Video `json:"video"`
}

func (s *service) AddVideo(ctx context.Context, params *AddVideoParams) (AddVideoResponse, error) {
	// resolve outside the lock: fails fast on unknown ids and keeps the
	// critical section down to store round trips
	video, err := s.resolver.Get(ctx, params.VideoId)
	if err != nil {
		if errors.Is(err, nicovideodata.ErrVideoNotFound) {
			return AddVideoResponse{}, ErrInvalidVideo
		}
		return AddVideoResponse{}, fmt.Errorf("failed to resolve video: %w", err)
	}

	s.locks.Lock(params.RoomId)
	defer s.locks.Unlock(params.RoomId)

	session, err := s.roomRepo.GetOrCreateSession(ctx, &room.CreateSessionParams{
		RoomId: params.RoomId,
		Host:   params.UserId,
	})
	if err != nil {
		return AddVideoResponse{}, err
	}

	canQueue := session.Host == params.UserId ||
		(len(session.Queue) < session.Setting.QueueLimit && !session.Setting.QueueLocked)
	if !canQueue {
		return AddVideoResponse{}, ErrQueueLocked
	}

	session.Queue = append(session.Queue, room.QueueItem{
		VideoId:     params.VideoId,
		RequestedBy: params.UserId,
		Nonce:       uuid.NewString(),
	})

	if err := s.roomRepo.SaveSession(ctx, &room.SaveSessionParams{
		RoomId:  params.RoomId,
		Session: session,
	}); err != nil {
		return AddVideoResponse{}, err
	}

	return AddVideoResponse{Video: video}, nil
}

type CancelVideoParams struct {
	RoomId string
	UserId string
	Nonce  string
}

func (s *service) CancelVideo(ctx context.Context, params *CancelVideoParams) error {
	s.locks.Lock(params.RoomId)
	defer s.locks.Unlock(params.RoomId)

	session, err := s.roomRepo.GetSession(ctx, params.RoomId)
	if err != nil {
		if errors.Is(err, room.ErrSessionNotFound) {
			return ErrInvalidNonce
		}
		return err
	}

	idx := -1
	for i, item := range session.Queue {
		if item.Nonce == params.Nonce {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ErrInvalidNonce
	}

	if session.Queue[idx].RequestedBy != params.UserId && session.Host != params.UserId {
		return ErrPermissionDenied
	}

	session.Queue = append(session.Queue[:idx], session.Queue[idx+1:]...)

	return s.roomRepo.SaveSession(ctx, &room.SaveSessionParams{
		RoomId:  params.RoomId,
		Session: session,
	})
}

type SkipVideoParams struct {
	RoomId string
	UserId string
	Nonce  string
}

// SkipVideo advances immediately instead of waiting for the natural
// expiry. The caller must name the playing item's nonce, which guards
// against skipping based on stale state.
func (s *service) SkipVideo(ctx context.Context, params *SkipVideoParams) error {
	s.locks.Lock(params.RoomId)
	defer s.locks.Unlock(params.RoomId)

	session, err := s.roomRepo.GetSession(ctx, params.RoomId)
	if err != nil {
		if errors.Is(err, room.ErrSessionNotFound) {
			return ErrNoVideoPlaying
		}
		return err
	}

	if session.Video == nil {
		return ErrNoVideoPlaying
	}
	if session.Video.Nonce != params.Nonce {
		return ErrInvalidNonce
	}
	if session.Video.RequestedBy != params.UserId && session.Host != params.UserId {
		return ErrPermissionDenied
	}

	s.logger.InfoContext(ctx, "skipping video", "room_id", params.RoomId, "video_id", session.Video.VideoId)
	s.dequeue(&session)

	return s.roomRepo.SaveSession(ctx, &room.SaveSessionParams{
		RoomId:  params.RoomId,
		Session: session,
	})
}

type ReorderQueueParams struct {
	RoomId string
	UserId string
	Order  []string
}

// ReorderQueue applies the host's full ordering of nonces. Queued items
// the ordering does not mention keep their prior relative order at the
// tail, which tolerates stale client state.
func (s *service) ReorderQueue(ctx context.Context, params *ReorderQueueParams) error {
	s.locks.Lock(params.RoomId)
	defer s.locks.Unlock(params.RoomId)

	session, err := s.roomRepo.GetSession(ctx, params.RoomId)
	if err != nil {
		if errors.Is(err, room.ErrSessionNotFound) {
			return ErrPermissionDenied
		}
		return err
	}

	if session.Host != params.UserId {
		return ErrPermissionDenied
	}

	byNonce := make(map[string]room.QueueItem, len(session.Queue))
	for _, item := range session.Queue {
		byNonce[item.Nonce] = item
	}

	reordered := make([]room.QueueItem, 0, len(session.Queue))
	mentioned := make(map[string]bool, len(params.Order))
	for _, nonce := range params.Order {
		if item, ok := byNonce[nonce]; ok {
			reordered = append(reordered, item)
			mentioned[nonce] = true
		}
	}
	for _, item := range session.Queue {
		if !mentioned[item.Nonce] {
			reordered = append(reordered, item)
		}
	}

	session.Queue = reordered

	return s.roomRepo.SaveSession(ctx, &room.SaveSessionParams{
		RoomId:  params.RoomId,
		Session: session,
	})
}

type SetHostParams struct {
	RoomId  string
	UserId  string
	NewHost string
}

// SetHost hands host privileges over unconditionally. No liveness check:
// if the target never shows up the next sync reassigns.
func (s *service) SetHost(ctx context.Context, params *SetHostParams) error {
	s.locks.Lock(params.RoomId)
	defer s.locks.Unlock(params.RoomId)

	session, err := s.roomRepo.GetSession(ctx, params.RoomId)
	if err != nil {
		if errors.Is(err, room.ErrSessionNotFound) {
			return ErrPermissionDenied
		}
		return err
	}

	if session.Host != params.UserId {
		return ErrPermissionDenied
	}

	session.Host = params.NewHost

	return s.roomRepo.SaveSession(ctx, &room.SaveSessionParams{
		RoomId:  params.RoomId,
		Session: session,
	})
}

type SettingPatch struct {
	QueueLimit  *int
	QueueLocked *bool
	QueueHidden *bool
	Random      *bool
}

type UpdateSettingParams struct {
	RoomId  string
	UserId  string
	Setting SettingPatch
}

// UpdateSetting shallow-merges the supplied fields, unset fields keep
// their prior value.
func (s *service) UpdateSetting(ctx context.Context, params *UpdateSettingParams) error {
	s.locks.Lock(params.RoomId)
	defer s.locks.Unlock(params.RoomId)

	session, err := s.roomRepo.GetSession(ctx, params.RoomId)
	if err != nil {
		if errors.Is(err, room.ErrSessionNotFound) {
			return ErrPermissionDenied
		}
		return err
	}

	if session.Host != params.UserId {
		return ErrPermissionDenied
	}

	if params.Setting.QueueLimit != nil {
		session.Setting.QueueLimit = *params.Setting.QueueLimit
	}
	if params.Setting.QueueLocked != nil {
		session.Setting.QueueLocked = *params.Setting.QueueLocked
	}
	if params.Setting.QueueHidden != nil {
		session.Setting.QueueHidden = *params.Setting.QueueHidden
	}
	if params.Setting.Random != nil {
		session.Setting.Random = *params.Setting.Random
	}

	return s.roomRepo.SaveSession(ctx, &room.SaveSessionParams{
		RoomId:  params.RoomId,
		Session: session,
	})
}

package room

import (
	"context"
	"errors"

	"github.com/kikoune/server/internal/repository/room"
	"github.com/kikoune/server/pkg/nicovideodata"
)

// dequeue pops the next queue item into the playing slot and restarts the
// clock. With an empty queue the room goes idle. Random order picks a
// uniform index instead of the head.
func (s *service) dequeue(session *room.Session) {
	var next *room.QueueItem
	if len(session.Queue) > 0 {
		i := 0
		if session.Setting.Random {
			i = s.randn(len(session.Queue))
		}
		item := session.Queue[i]
		session.Queue = append(session.Queue[:i], session.Queue[i+1:]...)
		next = &item
	}

	session.Video = next
	session.StartedAt = s.now().UnixMilli()
}

func (s *service) resolveItem(ctx context.Context, item room.QueueItem) (ResolvedItem, error) {
	video, err := s.resolver.Get(ctx, item.VideoId)
	if err != nil {
		// a video deleted after it was queued must not wedge the room
		if !errors.Is(err, nicovideodata.ErrVideoNotFound) {
			return ResolvedItem{}, err
		}
		video = nicovideodata.Video{Id: item.VideoId}
	}

	return mergeItem(item, video), nil
}

func (s *service) resolveSession(ctx context.Context, session room.Session) (Session, error) {
	resolved := Session{
		StartedAt: session.StartedAt,
		Host:      session.Host,
		Queue:     make([]ResolvedItem, 0, len(session.Queue)),
		Setting:   session.Setting,
	}

	if session.Video != nil {
		item, err := s.resolveItem(ctx, *session.Video)
		if err != nil {
			return Session{}, err
		}
		resolved.Video = &item
	}

	for _, queued := range session.Queue {
		item, err := s.resolveItem(ctx, queued)
		if err != nil {
			return Session{}, err
		}
		resolved.Queue = append(resolved.Queue, item)
	}

	return resolved, nil
}

package controller

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kikoune/server/internal/service/room"
	"github.com/kikoune/server/pkg/rest"
)

func (c controller) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, room.ErrPermissionDenied),
		errors.Is(err, room.ErrQueueLocked):
		rest.WriteJSON(w, http.StatusForbidden, rest.Envelope{"error": err.Error()})
	case errors.Is(err, room.ErrInvalidVideo),
		errors.Is(err, room.ErrInvalidNonce),
		errors.Is(err, room.ErrNoVideoPlaying),
		errors.Is(err, room.ErrMemberNotFound):
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"error": err.Error()})
	default:
		c.logger.ErrorContext(r.Context(), "internal error", "error", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "internal server error"})
	}
}

type syncRequest struct {
	UserIds []string `json:"userIds" validate:"dive,required"`
}

func (c controller) sync(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if err := rest.ReadJSON(r, &req); err != nil {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"error": err.Error()})
		return
	}
	if validationErrors, ok := c.validate.Validate(req); !ok {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	resp, err := c.roomService.Sync(r.Context(), &room.SyncParams{
		RoomId:  chi.URLParam(r, "room-id"),
		UserId:  userIdFromCtx(r.Context()),
		UserIds: req.UserIds,
	})
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, resp)
}

type addVideoRequest struct {
	VideoId string `json:"videoId" validate:"required"`
}

func (c controller) addVideo(w http.ResponseWriter, r *http.Request) {
	var req addVideoRequest
	if err := rest.ReadJSON(r, &req); err != nil {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"error": err.Error()})
		return
	}
	if validationErrors, ok := c.validate.Validate(req); !ok {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	resp, err := c.roomService.AddVideo(r.Context(), &room.AddVideoParams{
		RoomId:  chi.URLParam(r, "room-id"),
		UserId:  userIdFromCtx(r.Context()),
		VideoId: req.VideoId,
	})
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	rest.WriteJSON(w, http.StatusOK, resp)
}

type updateMemberStateRequest struct {
	State struct {
		X       *float64 `json:"x" validate:"omitempty,gte=-1,lte=1"`
		Y       *float64 `json:"y" validate:"omitempty,gte=-1,lte=1"`
		Rotate  *bool    `json:"rotate"`
		Message *string  `json:"message"`
	} `json:"state"`
}

func (c controller) updateMemberState(w http.ResponseWriter, r *http.Request) {
	var req updateMemberStateRequest
	if err := rest.ReadJSON(r, &req); err != nil {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"error": err.Error()})
		return
	}
	if validationErrors, ok := c.validate.Validate(req.State); !ok {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	err := c.roomService.UpdateMemberState(r.Context(), &room.UpdateMemberStateParams{
		RoomId: chi.URLParam(r, "room-id"),
		UserId: userIdFromCtx(r.Context()),
		State: room.StatePatch{
			X:       req.State.X,
			Y:       req.State.Y,
			Rotate:  req.State.Rotate,
			Message: req.State.Message,
		},
	})
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type skipVideoRequest struct {
	Nonce string `json:"nonce" validate:"required"`
}

func (c controller) skipVideo(w http.ResponseWriter, r *http.Request) {
	var req skipVideoRequest
	if err := rest.ReadJSON(r, &req); err != nil {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"error": err.Error()})
		return
	}
	if validationErrors, ok := c.validate.Validate(req); !ok {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	err := c.roomService.SkipVideo(r.Context(), &room.SkipVideoParams{
		RoomId: chi.URLParam(r, "room-id"),
		UserId: userIdFromCtx(r.Context()),
		Nonce:  req.Nonce,
	})
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type setHostRequest struct {
	Id string `json:"id" validate:"required"`
}

func (c controller) setHost(w http.ResponseWriter, r *http.Request) {
	var req setHostRequest
	if err := rest.ReadJSON(r, &req); err != nil {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"error": err.Error()})
		return
	}
	if validationErrors, ok := c.validate.Validate(req); !ok {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	err := c.roomService.SetHost(r.Context(), &room.SetHostParams{
		RoomId:  chi.URLParam(r, "room-id"),
		UserId:  userIdFromCtx(r.Context()),
		NewHost: req.Id,
	})
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (c controller) cancelVideo(w http.ResponseWriter, r *http.Request) {
	err := c.roomService.CancelVideo(r.Context(), &room.CancelVideoParams{
		RoomId: chi.URLParam(r, "room-id"),
		UserId: userIdFromCtx(r.Context()),
		Nonce:  chi.URLParam(r, "nonce"),
	})
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type reorderQueueRequest struct {
	Order []string `json:"order" validate:"dive,required"`
}

func (c controller) reorderQueue(w http.ResponseWriter, r *http.Request) {
	var req reorderQueueRequest
	if err := rest.ReadJSON(r, &req); err != nil {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"error": err.Error()})
		return
	}
	if validationErrors, ok := c.validate.Validate(req); !ok {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	err := c.roomService.ReorderQueue(r.Context(), &room.ReorderQueueParams{
		RoomId: chi.URLParam(r, "room-id"),
		UserId: userIdFromCtx(r.Context()),
		Order:  req.Order,
	})
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type updateSettingRequest struct {
	QueueLimit  *int  `json:"queueLimit" validate:"omitempty,gte=1"`
	QueueLocked *bool `json:"queueLocked"`
	QueueHidden *bool `json:"queueHidden"`
	Random      *bool `json:"random"`
}

func (c controller) updateSetting(w http.ResponseWriter, r *http.Request) {
	var req updateSettingRequest
	if err := rest.ReadJSON(r, &req); err != nil {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"error": err.Error()})
		return
	}
	if validationErrors, ok := c.validate.Validate(req); !ok {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	err := c.roomService.UpdateSetting(r.Context(), &room.UpdateSettingParams{
		RoomId: chi.URLParam(r, "room-id"),
		UserId: userIdFromCtx(r.Context()),
		Setting: room.SettingPatch{
			QueueLimit:  req.QueueLimit,
			QueueLocked: req.QueueLocked,
			QueueHidden: req.QueueHidden,
			Random:      req.Random,
		},
	})
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

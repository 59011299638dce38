package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/kikoune/server/internal/service/discord"
	"github.com/kikoune/server/pkg/rest"
)

type authenticateRequest struct {
	Code       string `json:"code" validate:"required"`
	InstanceId string `json:"instanceId" validate:"required"`
}

func (c controller) authenticate(w http.ResponseWriter, r *http.Request) {
	var req authenticateRequest
	if err := rest.ReadJSON(r, &req); err != nil {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"error": err.Error()})
		return
	}
	if validationErrors, ok := c.validate.Validate(req); !ok {
		rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"errors": validationErrors})
		return
	}

	resp, err := c.authService.Authenticate(r.Context(), &discord.AuthenticateParams{
		Code:       req.Code,
		InstanceId: req.InstanceId,
	})
	if err != nil {
		if errors.Is(err, discord.ErrInvalidCode) {
			rest.WriteJSON(w, http.StatusBadRequest, rest.Envelope{"error": "Invalid code"})
			return
		}
		c.logger.ErrorContext(r.Context(), "failed to authenticate", "error", err)
		rest.WriteJSON(w, http.StatusInternalServerError, rest.Envelope{"error": "internal server error"})
		return
	}

	rest.WriteJSON(w, http.StatusOK, resp)
}

// getTime lets clients offset startedAt against their own clock skew.
func (c controller) getTime(w http.ResponseWriter, r *http.Request) {
	rest.WriteJSON(w, http.StatusOK, rest.Envelope{"time": time.Now().UnixMilli()})
}

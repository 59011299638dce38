package controller

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/kikoune/server/internal/service/discord"
	"github.com/kikoune/server/internal/service/room"
	"github.com/kikoune/server/pkg/validator"
)

type iRoomService interface {
	Sync(context.Context, *room.SyncParams) (room.SyncResponse, error)
	AddVideo(context.Context, *room.AddVideoParams) (room.AddVideoResponse, error)
	CancelVideo(context.Context, *room.CancelVideoParams) error
	SkipVideo(context.Context, *room.SkipVideoParams) error
	ReorderQueue(context.Context, *room.ReorderQueueParams) error
	SetHost(context.Context, *room.SetHostParams) error
	UpdateSetting(context.Context, *room.UpdateSettingParams) error
	UpdateMemberState(context.Context, *room.UpdateMemberStateParams) error
}

type iAuthService interface {
	Authenticate(context.Context, *discord.AuthenticateParams) (discord.AuthenticateResponse, error)
}

type iTokenRepo interface {
	GetAuthToken(ctx context.Context, userId string) (string, error)
}

type Config struct {
	// DiscordClientId names the activity whose discordsays.com origin the
	// embed proxy rewrites upstream URLs onto.
	DiscordClientId string
}

type controller struct {
	roomService iRoomService
	authService iAuthService
	tokenRepo   iTokenRepo
	validate    *validator.Validator
	logger      *slog.Logger
	proxyHost   string
	httpClient  *http.Client
}

func NewController(roomService iRoomService, authService iAuthService, tokenRepo iTokenRepo, cfg *Config, logger *slog.Logger) *controller {
	return &controller{
		roomService: roomService,
		authService: authService,
		tokenRepo:   tokenRepo,
		validate:    validator.NewValidator(),
		logger:      logger,
		proxyHost:   fmt.Sprintf("https://%s.discordsays.com", cfg.DiscordClientId),
		httpClient:  &http.Client{Timeout: 20 * time.Second},
	}
}

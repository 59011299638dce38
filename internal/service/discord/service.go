// Package discord implements the identity flow: OAuth2 code exchange
// against the Discord API and issuance of the bearer token room endpoints
// check.
package discord

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kikoune/server/internal/repository/room"
)

var (
	ErrInvalidCode = errors.New("invalid oauth code")
	ErrRateLimited = errors.New("rate limited by upstream")
)

const (
	defaultBaseURL = "https://discord.com/api/v10"

	// upstream 429s are retried with the delay the provider names, but
	// never more than this many attempts
	maxAttempts = 5
)

var scopes = []string{"identify", "guilds.members.read", "rpc.activities.write"}

type iTokenRepo interface {
	SetAuthToken(context.Context, *room.SetAuthTokenParams) error
}

type Config struct {
	ClientId     string
	ClientSecret string
}

type service struct {
	tokenRepo    iTokenRepo
	httpClient   *http.Client
	baseURL      string
	clientId     string
	clientSecret string
	logger       *slog.Logger
}

func NewService(tokenRepo iTokenRepo, cfg *Config, logger *slog.Logger) *service {
	return NewServiceWithBaseURL(tokenRepo, cfg, defaultBaseURL, logger)
}

func NewServiceWithBaseURL(tokenRepo iTokenRepo, cfg *Config, baseURL string, logger *slog.Logger) *service {
	return &service{
		tokenRepo:    tokenRepo,
		httpClient:   &http.Client{Timeout: 15 * time.Second},
		baseURL:      baseURL,
		clientId:     cfg.ClientId,
		clientSecret: cfg.ClientSecret,
		logger:       logger,
	}
}

type AuthenticateParams struct {
	Code       string
	InstanceId string
}

type AuthenticateResponse struct {
	UserId             string `json:"userId"`
	DiscordAccessToken string `json:"discordAccessToken"`
	AccessToken        string `json:"kikouneAccessToken"`
}

// Authenticate exchanges the OAuth code, resolves the user behind it and
// issues the bearer token stored at token:{userId}.
func (s *service) Authenticate(ctx context.Context, params *AuthenticateParams) (AuthenticateResponse, error) {
	form := url.Values{
		"client_id":     {s.clientId},
		"client_secret": {s.clientSecret},
		"grant_type":    {"authorization_code"},
		"scope":         {strings.Join(scopes, " ")},
		"code":          {params.Code},
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
	}
	err := s.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/oauth2/token", strings.NewReader(form.Encode()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return req, nil
	}, &tokenResp)
	if err != nil {
		return AuthenticateResponse{}, fmt.Errorf("failed to exchange oauth code: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return AuthenticateResponse{}, ErrInvalidCode
	}

	var user struct {
		Id string `json:"id"`
	}
	err = s.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/users/@me", nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+tokenResp.AccessToken)
		return req, nil
	}, &user)
	if err != nil {
		return AuthenticateResponse{}, fmt.Errorf("failed to fetch user: %w", err)
	}

	accessToken := uuid.NewString() + ":" + params.InstanceId
	if err := s.tokenRepo.SetAuthToken(ctx, &room.SetAuthTokenParams{
		UserId: user.Id,
		Token:  accessToken,
	}); err != nil {
		return AuthenticateResponse{}, err
	}

	s.logger.InfoContext(ctx, "user authenticated", "user_id", user.Id, "instance_id", params.InstanceId)

	return AuthenticateResponse{
		UserId:             user.Id,
		DiscordAccessToken: tokenResp.AccessToken,
		AccessToken:        accessToken,
	}, nil
}

// doWithRetry runs the request, honoring 429 responses by waiting the
// provider-named delay. The attempt cap keeps a pathological upstream from
// stalling a request forever.
func (s *service) doWithRetry(ctx context.Context, newReq func() (*http.Request, error), dst any) error {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		req, err := newReq()
		if err != nil {
			return err
		}

		resp, err := s.httpClient.Do(req)
		if err != nil {
			return err
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := parseRetryAfter(resp.Header)
			resp.Body.Close()
			s.logger.InfoContext(ctx, "rate limited, retrying", "retry_after", retryAfter, "attempt", attempt+1)

			timer := time.NewTimer(retryAfter)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
			continue
		}

		defer resp.Body.Close()
		return json.NewDecoder(resp.Body).Decode(dst)
	}

	return ErrRateLimited
}

func parseRetryAfter(h http.Header) time.Duration {
	v := h.Get("X-RateLimit-Retry-After")
	if v == "" {
		v = h.Get("Retry-After")
	}

	seconds, err := strconv.ParseFloat(v, 64)
	if err != nil || seconds <= 0 {
		return time.Second
	}

	return time.Duration(seconds * float64(time.Second))
}

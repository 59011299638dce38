// Package nicovideodata resolves a niconico video id to its display
// metadata. Results are cached in process for an hour.
package nicovideodata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"
)

var ErrVideoNotFound = errors.New("video not found")

const (
	defaultThumbURL = "https://ext.nicovideo.jp/api/getthumbinfo"
	defaultEmbedURL = "https://embed.nicovideo.jp/watch"

	userAgent = "Kikoune, https://github.com/kikoune/server"
	cacheTTL  = time.Hour
)

type Video struct {
	Id           string `json:"id"`
	Title        string `json:"title"`
	Author       string `json:"author"`
	ThumbnailUrl string `json:"thumbnailUrl"`
	Length       int    `json:"length"`
}

type cacheEntry struct {
	video     Video
	expiresAt time.Time
}

type Resolver struct {
	httpClient *http.Client
	thumbURL   string
	embedURL   string

	mu    sync.Mutex
	cache map[string]cacheEntry
}

func New() *Resolver {
	return NewWithBaseURLs(defaultThumbURL, defaultEmbedURL)
}

func NewWithBaseURLs(thumbURL, embedURL string) *Resolver {
	return &Resolver{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		thumbURL:   thumbURL,
		embedURL:   embedURL,
		cache:      make(map[string]cacheEntry),
	}
}

func (r *Resolver) Get(ctx context.Context, videoId string) (Video, error) {
	if video, ok := r.cached(videoId); ok {
		return video, nil
	}

	video, err := r.getThumbInfo(ctx, videoId)
	if err != nil {
		if !errors.Is(err, errThumbUnavailable) {
			return Video{}, fmt.Errorf("failed to get thumb info: %w", err)
		}

		video, err = r.getFromEmbedPage(ctx, videoId)
		if err != nil {
			return Video{}, fmt.Errorf("failed to get video data from embed page: %w", err)
		}
	}

	r.store(videoId, video)

	return video, nil
}

func (r *Resolver) cached(videoId string) (Video, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.cache[videoId]
	if !ok || time.Now().After(entry.expiresAt) {
		return Video{}, false
	}

	return entry.video, true
}

func (r *Resolver) store(videoId string, video Video) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cache[videoId] = cacheEntry{video: video, expiresAt: time.Now().Add(cacheTTL)}
}

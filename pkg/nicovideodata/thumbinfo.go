package nicovideodata

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// errThumbUnavailable means getthumbinfo refused the id even though the
// video may still be watchable (community or hidden videos). The caller
// falls back to scraping the embed page.
var errThumbUnavailable = errors.New("thumb info unavailable")

type thumbResponse struct {
	XMLName xml.Name    `xml:"nicovideo_thumb_response"`
	Status  string      `xml:"status,attr"`
	Thumb   *thumbInfo  `xml:"thumb"`
	Error   *thumbError `xml:"error"`
}

type thumbInfo struct {
	VideoId      string `xml:"video_id"`
	Title        string `xml:"title"`
	ThumbnailUrl string `xml:"thumbnail_url"`
	Length       string `xml:"length"`
	UserNickname string `xml:"user_nickname"`
	ChName       string `xml:"ch_name"`
}

type thumbError struct {
	Code        string `xml:"code"`
	Description string `xml:"description"`
}

func (r *Resolver) getThumbInfo(ctx context.Context, videoId string) (Video, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.thumbURL+"/"+videoId, nil)
	if err != nil {
		return Video{}, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return Video{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Video{}, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var result thumbResponse
	if err := xml.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Video{}, err
	}

	if result.Thumb == nil {
		if result.Error != nil && result.Error.Code == "NOT_FOUND" {
			return Video{}, ErrVideoNotFound
		}
		return Video{}, errThumbUnavailable
	}

	length, err := parseLength(result.Thumb.Length)
	if err != nil {
		return Video{}, fmt.Errorf("failed to parse video length %q: %w", result.Thumb.Length, err)
	}

	author := result.Thumb.UserNickname
	if author == "" {
		author = result.Thumb.ChName
	}

	return Video{
		Id:           result.Thumb.VideoId,
		Title:        result.Thumb.Title,
		Author:       author,
		ThumbnailUrl: result.Thumb.ThumbnailUrl,
		Length:       length,
	}, nil
}

// parseLength converts the "mm:ss" (or "hh:mm:ss") form getthumbinfo uses
// into seconds.
func parseLength(s string) (int, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("unexpected length format")
	}

	total := 0
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return 0, err
		}
		total = total*60 + n
	}

	return total, nil
}

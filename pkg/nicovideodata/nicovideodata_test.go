package nicovideodata

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const thumbOK = `<?xml version="1.0" encoding="UTF-8"?>
<nicovideo_thumb_response status="ok">
  <thumb>
    <video_id>sm9</video_id>
    <title>some title</title>
    <thumbnail_url>https://example.com/thumb.jpg</thumbnail_url>
    <length>5:20</length>
    <user_nickname>some author</user_nickname>
  </thumb>
</nicovideo_thumb_response>`

const thumbNotFound = `<?xml version="1.0" encoding="UTF-8"?>
<nicovideo_thumb_response status="fail">
  <error>
    <code>NOT_FOUND</code>
    <description>not found or invalid</description>
  </error>
</nicovideo_thumb_response>`

const thumbCommunity = `<?xml version="1.0" encoding="UTF-8"?>
<nicovideo_thumb_response status="fail">
  <error>
    <code>COMMUNITY</code>
    <description>community</description>
  </error>
</nicovideo_thumb_response>`

func TestGet(t *testing.T) {
	var hits atomic.Int32
	thumbSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, thumbOK)
	}))
	defer thumbSrv.Close()

	r := NewWithBaseURLs(thumbSrv.URL, "http://invalid")

	video, err := r.Get(context.Background(), "sm9")
	require.NoError(t, err)
	assert.Equal(t, "sm9", video.Id)
	assert.Equal(t, "some title", video.Title)
	assert.Equal(t, "some author", video.Author)
	assert.Equal(t, "https://example.com/thumb.jpg", video.ThumbnailUrl)
	assert.Equal(t, 320, video.Length)

	// second lookup must hit the cache
	_, err = r.Get(context.Background(), "sm9")
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())
}

func TestGetNotFound(t *testing.T) {
	thumbSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, thumbNotFound)
	}))
	defer thumbSrv.Close()

	r := NewWithBaseURLs(thumbSrv.URL, "http://invalid")

	_, err := r.Get(context.Background(), "sm0")
	assert.ErrorIs(t, err, ErrVideoNotFound)
}

func TestGetEmbedFallback(t *testing.T) {
	thumbSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, thumbCommunity)
	}))
	defer thumbSrv.Close()
	embedSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><title>hidden video</title></head><body></body></html>`)
	}))
	defer embedSrv.Close()

	r := NewWithBaseURLs(thumbSrv.URL, embedSrv.URL)

	video, err := r.Get(context.Background(), "so1234")
	require.NoError(t, err)
	assert.Equal(t, "hidden video", video.Title)
	assert.Equal(t, 0, video.Length)
}

func TestParseLength(t *testing.T) {
	for s, want := range map[string]int{
		"0:59":    59,
		"5:20":    320,
		"1:00:01": 3601,
	} {
		got, err := parseLength(s)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := parseLength("123")
	assert.Error(t, err)
}

package nicovideodata

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/net/html"
)

// getFromEmbedPage scrapes the embed player page for videos getthumbinfo
// refuses to describe. Length stays 0, meaning the duration is unknown.
func (r *Resolver) getFromEmbedPage(ctx context.Context, videoId string) (Video, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.embedURL+"/"+videoId, nil)
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
		if resp.StatusCode == http.StatusNotFound {
			return Video{}, ErrVideoNotFound
		}
		return Video{}, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return Video{}, err
	}

	title := getTitle(doc)
	if title == "" {
		return Video{}, ErrVideoNotFound
	}

	return Video{
		Id:           videoId,
		Title:        strings.TrimSpace(title),
		ThumbnailUrl: fmt.Sprintf("https://nicovideo.cdn.nimg.jp/thumbnails/%s/%s", videoId, videoId),
	}, nil
}

func getTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		if n.FirstChild != nil {
			return n.FirstChild.Data
		}
		return ""
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if title := getTitle(c); title != "" {
			return title
		}
	}
	return ""
}

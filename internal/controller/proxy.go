package controller

import (
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
)

// The embedded player hardcodes absolute nicovideo/nimg URLs. Inside the
// activity iframe those hosts are unreachable, so every fetched document
// gets them rewritten onto this server and the activity's external proxy.
const (
	embedUpstream  = "https://embed.nicovideo.jp"
	assetsUpstream = "https://assets.embed.res.nimg.jp"
	watchUpstream  = "https://www.nicovideo.jp/api/watch"
)

var (
	embedScriptRe = regexp.MustCompile(`https?://assets\.embed\.res\.nimg\.jp/js/(.+?)\.js`)
	nicovideoRe   = regexp.MustCompile(`https?:(?://|\\/\\/)([^/\\"']+?)\.nicovideo\.jp`)
	nimgCdnRe     = regexp.MustCompile(`https?:(?://|\\/\\/)([^/\\"']+?)\.cdn\.nimg\.jp`)
	apiWatchRe    = regexp.MustCompile(`/api/watch`)
)

func (c controller) replaceToExternal(src string) string {
	src = embedScriptRe.ReplaceAllString(src, "/nico/watch/$1")
	src = nicovideoRe.ReplaceAllStringFunc(src, func(match string) string {
		sub := nicovideoRe.FindStringSubmatch(match)[1]
		return c.proxyHost + "/.proxy/external/" + strings.ReplaceAll(sub, ".", "-") + "-nicovideo-jp"
	})
	src = nimgCdnRe.ReplaceAllStringFunc(src, func(match string) string {
		sub := nimgCdnRe.FindStringSubmatch(match)[1]
		return c.proxyHost + "/.proxy/external/" + strings.ReplaceAll(sub, ".", "-") + "-cdn-nimg-jp"
	})
	return src
}

func (c controller) fetchUpstream(r *http.Request, url string, headers map[string]string) (string, error) {
	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	return string(body), nil
}

func (c controller) proxyEmbedPage(w http.ResponseWriter, r *http.Request) {
	videoId := chi.URLParam(r, "video-id")
	url := embedUpstream + "/watch/" + videoId
	if r.URL.RawQuery != "" {
		url += "?" + r.URL.RawQuery
	}

	html, err := c.fetchUpstream(r, url, map[string]string{
		"Accept-Language": "ja-JP,ja;q=0.9,en-US;q=0.8,en;q=0.7",
	})
	if err != nil {
		c.logger.ErrorContext(r.Context(), "failed to fetch embed page", "error", err)
		w.WriteHeader(http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(c.replaceToExternal(html)))
}

func (c controller) proxyPlayerScript(w http.ResponseWriter, r *http.Request) {
	path := chi.URLParam(r, "*")

	js, err := c.fetchUpstream(r, assetsUpstream+"/js/"+path+".js", nil)
	if err != nil {
		c.logger.ErrorContext(r.Context(), "failed to fetch player script", "error", err)
		w.WriteHeader(http.StatusBadGateway)
		return
	}

	rewritten := apiWatchRe.ReplaceAllString(c.replaceToExternal(js), "/.proxy/nico/api-watch")

	w.Header().Set("Content-Type", "application/javascript")
	w.Write([]byte(rewritten))
}

func (c controller) proxyWatchAPI(w http.ResponseWriter, r *http.Request) {
	rest := chi.URLParam(r, "*")
	url := watchUpstream + "/" + rest
	if r.URL.RawQuery != "" {
		url += "?" + r.URL.RawQuery
	}

	body, err := c.fetchUpstream(r, url, map[string]string{
		"Origin":  embedUpstream,
		"Referer": embedUpstream + "/",
	})
	if err != nil {
		c.logger.ErrorContext(r.Context(), "failed to fetch watch api", "error", err)
		w.WriteHeader(http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(c.replaceToExternal(body)))
}

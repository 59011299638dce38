package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func (c controller) GetMux() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(c.requestIdMw)
	r.Use(c.requestLoggingMw)
	r.Use(cors.AllowAll().Handler)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth", c.authenticate)
		r.Get("/time", c.getTime)

		r.Route("/room/{room-id:[0-9a-z-]+}", func(r chi.Router) {
			r.Use(c.authMw)

			r.Put("/sync", c.sync)
			r.Post("/queue", c.addVideo)
			r.Put("/queue", c.reorderQueue)
			r.Delete("/queue/{nonce:[0-9a-z-]+}", c.cancelVideo)
			r.Put("/state", c.updateMemberState)
			r.Post("/skip", c.skipVideo)
			r.Put("/host", c.setHost)
			r.Put("/setting", c.updateSetting)
		})
	})

	r.Route("/nico", func(r chi.Router) {
		r.Get("/nico-embed/{video-id}", c.proxyEmbedPage)
		r.Get("/watch/*", c.proxyPlayerScript)
		r.Get("/api-watch/*", c.proxyWatchAPI)
	})

	return r
}

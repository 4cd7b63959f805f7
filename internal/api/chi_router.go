// MovieBooks - Social Cataloging of Movie and Book Connections
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/moviebooks

package api

import (
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/tomtom215/moviebooks/internal/auth"
	"github.com/tomtom215/moviebooks/internal/config"
	"github.com/tomtom215/moviebooks/internal/middleware"
)

// Router wires handlers and middleware into a chi mux.
type Router struct {
	handler       *Handler
	auth          *auth.Middleware
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router. The auth middleware renders its rejections
// with the handler's error envelope.
func NewRouter(handler *Handler, jwt *auth.JWTManager) *Router {
	return &Router{
		handler:       handler,
		auth:          auth.NewMiddleware(jwt, handler.respondStatus),
		chiMiddleware: NewChiMiddleware(NewChiMiddlewareConfig(handler.config.Security)),
	}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	h := router.handler
	cfg := h.config
	r := chi.NewRouter()

	// Global middleware, applied to every route in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // global so OPTIONS preflight is answered
	r.Use(middleware.Metrics)
	if h.perfMon != nil {
		r.Use(h.perfMon.Middleware)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		h.respondStatus(w, r, http.StatusNotFound, "Not found - "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		h.respondStatus(w, r, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
	))
	router.mountUploads(r)

	r.Route("/api", func(r chi.Router) {
		r.Use(APISecurityHeaders())

		r.Route("/health", func(r chi.Router) {
			r.Get("/", h.Health)
			r.Get("/live", h.HealthLive)
			r.Get("/ready", h.HealthReady)
		})

		// Realtime stream: long-lived, so outside the query deadline and
		// compression.
		r.With(
			router.chiMiddleware.RateLimitCustom(RateLimitWebSocket),
			router.auth.AuthenticateWebSocket,
		).Get("/notifications/ws", h.NotificationStream)

		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimit())
			r.Use(middleware.QueryTimeout(cfg.Database.QueryTimeout))
			if cfg.API.Compression {
				r.Use(middleware.Compression)
			}
			router.mountAPI(r)
		})
	})

	return r
}

// mountAPI registers the REST resources.
func (router *Router) mountAPI(r chi.Router) {
	h := router.handler
	private := router.auth.Authenticate
	writes := router.chiMiddleware.RateLimitCustom(RateLimitWrite)

	r.Route("/auth", func(r chi.Router) {
		r.With(router.chiMiddleware.RateLimitCustom(RateLimitAuth)).Post("/register", h.Register)
		r.With(router.chiMiddleware.RateLimitCustom(RateLimitAuth)).Post("/login", h.Login)
		r.With(private).Get("/me", h.Me)
	})

	r.Route("/users", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(private)
			r.Get("/me/favorites", h.MyFavorites)
			r.With(writes).Put("/me", h.UpdateMe)
			r.Delete("/me", h.DeleteMe)
		})
		r.With(router.auth.Optional).Get("/{id}", h.GetUser)
	})

	r.Route("/connections", func(r chi.Router) {
		r.Get("/", h.Feed)
		r.Get("/user/{userId}", h.UserConnections)
		r.Get("/{id}", h.GetConnection)
		r.Get("/{id}/comments", h.ListComments)

		r.Group(func(r chi.Router) {
			r.Use(private)
			r.With(writes).Post("/", h.CreateConnection)
			r.With(writes).Put("/{id}", h.UpdateConnection)
			r.Delete("/{id}", h.DeleteConnection)
			r.Post("/{id}/like", h.LikeConnection)
			r.Post("/{id}/favorite", h.FavoriteConnection)
			r.With(writes).Post("/{id}/comments", h.AddComment)
		})
	})

	r.Route("/comments", func(r chi.Router) {
		r.Use(private)
		r.Put("/{id}", h.UpdateComment)
		r.Delete("/{id}", h.DeleteComment)
	})

	r.Route("/follows", func(r chi.Router) {
		r.Get("/following/{userId}", h.Following)
		r.Get("/followers/{userId}", h.Followers)
		r.With(private).Get("/is-following/{userId}", h.IsFollowing)
		r.Get("/{userId}", h.FollowCounts)
		r.With(private).Post("/{userId}", h.Follow)
		r.With(private).Delete("/{userId}", h.Unfollow)
	})

	r.Route("/notifications", func(r chi.Router) {
		r.Use(private)
		r.Get("/", h.Notifications)
		r.Patch("/read-all", h.MarkAllNotificationsRead)
		r.Patch("/{id}/read", h.MarkNotificationRead)
	})

	r.Route("/movies", func(r chi.Router) {
		r.Get("/", h.SearchMovies)
		r.Get("/{id}", h.GetMovie)
		r.Get("/{id}/connections", h.MovieConnections)
	})

	r.Route("/books", func(r chi.Router) {
		r.Get("/", h.SearchBooks)
		r.Get("/{id}", h.GetBook)
		r.Get("/{id}/connections", h.BookConnections)
	})
}

// mountUploads serves the local image directory. Remote stores hand out
// absolute URLs, so nothing is mounted for them.
func (router *Router) mountUploads(r chi.Router) {
	media := router.handler.config.Media
	if media.Backend != "" && media.Backend != config.MediaLocal {
		return
	}
	prefix := "/" + strings.Trim(media.PublicPath, "/")
	if prefix == "/" {
		prefix = "/uploads"
	}
	files := http.StripPrefix(prefix+"/", http.FileServer(noDirFS{http.Dir(media.UploadsDir)}))
	r.Handle(prefix+"/*", APISecurityHeaders()(files))
}

// noDirFS hides directory listings from http.FileServer.
type noDirFS struct {
	fs http.FileSystem
}

func (n noDirFS) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if st.IsDir() {
		_ = f.Close()
		return nil, os.ErrNotExist
	}
	return f, nil
}

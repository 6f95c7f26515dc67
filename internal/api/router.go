package api

import (
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	httpmiddleware "github.com/wolfeidau/directory/internal/http"
	"github.com/wolfeidau/directory/internal/logger"
)

// maxBodyBytes caps request bodies read by the router.
const maxBodyBytes = 1 << 20

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	Logger         zerolog.Logger
	AllowedOrigins []string
	// RateLimit is the number of requests allowed per client IP per RateWindow.
	// Zero disables rate limiting.
	RateLimit  int
	RateWindow time.Duration
}

// NewRouter serves h over HTTP.
func NewRouter(h *Handler, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(httpmiddleware.ClientIPMiddleware())
	r.Use(logger.Requests(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httpmiddleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(httpmiddleware.RateLimit(cfg.RateLimit, cfg.RateWindow))

		r.Route("/organizations", func(r chi.Router) {
			r.Post("/", withBody(func(req *http.Request, body []byte) Response {
				return h.CreateOrganization(req.Context(), body)
			}))
			r.Put("/", withBody(func(req *http.Request, body []byte) Response {
				return h.UpdateOrganization(req.Context(), body)
			}))

			r.Route("/{orgId}", func(r chi.Router) {
				r.Get("/", serve(func(req *http.Request) Response {
					return h.GetOrganization(req.Context(), chi.URLParam(req, "orgId"))
				}))
				r.Post("/users", withBody(func(req *http.Request, body []byte) Response {
					return h.CreateUser(req.Context(), chi.URLParam(req, "orgId"), body)
				}))
				r.Put("/users", withBody(func(req *http.Request, body []byte) Response {
					return h.UpdateUser(req.Context(), chi.URLParam(req, "orgId"), body)
				}))
				r.Get("/users/{userId}", serve(func(req *http.Request) Response {
					return h.GetUser(req.Context(), chi.URLParam(req, "orgId"), chi.URLParam(req, "userId"))
				}))
			})
		})
	})

	return r
}

func serve(fn func(r *http.Request) Response) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := fn(r)
		httpmiddleware.WriteJSON(w, resp.StatusCode, resp.Body)
	}
}

func withBody(fn func(r *http.Request, body []byte) Response) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			httpmiddleware.WriteMessage(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}

		resp := fn(r, body)
		httpmiddleware.WriteJSON(w, resp.StatusCode, resp.Body)
	}
}

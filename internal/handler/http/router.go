package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/cinehub/cinehub-service/internal/handler/lp"
	"github.com/cinehub/cinehub-service/internal/handler/ws"
	"github.com/cinehub/cinehub-service/internal/notify"
	"github.com/cinehub/cinehub-service/internal/scanner"
	"github.com/cinehub/cinehub-service/internal/service"
	"github.com/cinehub/cinehub-service/internal/store"
)

// API carries the dependencies shared by every REST handler.
type API struct {
	catalog   *store.CatalogStore
	inbox     *notify.Store
	scanner   *scanner.Scanner
	deliverer service.Deliverer
	log       *slog.Logger
}

func NewAPI(
	catalog *store.CatalogStore,
	inbox *notify.Store,
	scan *scanner.Scanner,
	deliverer service.Deliverer,
	log *slog.Logger,
) *API {
	return &API{
		catalog:   catalog,
		inbox:     inbox,
		scanner:   scan,
		deliverer: deliverer,
		log:       log,
	}
}

// NewRouter mounts the REST surface together with both delivery transports.
func NewRouter(api *API, wsHandler *ws.WSHandler, lpHandler *lp.LPHandler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", api.health)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", api.signup)
		r.Post("/signin", api.signin)
	})

	r.Route("/api/movies", func(r chi.Router) {
		r.Get("/", api.listMovies)
		r.Post("/", api.createMovie)
		r.Get("/search", api.searchMovies)
		r.Get("/upcoming", api.upcomingMovies)
		r.Get("/{movieID}", api.getMovie)
		r.Put("/{movieID}", api.updateMovie)
		r.Delete("/{movieID}", api.deleteMovie)
		r.Get("/{movieID}/awards", api.movieAwards)
		r.Get("/{movieID}/reviews", api.listReviews)
	})

	r.Route("/api/reviews", func(r chi.Router) {
		r.Post("/", api.createReview)
		r.Delete("/{reviewID}", api.deleteReview)
	})

	r.Route("/api/watchlists", func(r chi.Router) {
		r.Get("/{username}", api.listWatchlist)
		r.Post("/", api.addToWatchlist)
		r.Delete("/{username}/{movieID}", api.removeFromWatchlist)
	})

	r.Route("/api/genres", func(r chi.Router) {
		r.Get("/", api.listGenres)
		r.Post("/", api.createGenre)
	})

	r.Route("/api/notifications", func(r chi.Router) {
		r.Get("/live", api.liveNotifications)
		r.Get("/upcoming-releases", api.upcomingReleaseNotices)
		r.Get("/today-releases", api.todayReleaseNotices)
		r.Get("/all", api.allReleaseNotices)
		r.Get("/count", api.notificationCount)
		r.Post("/send-to-user", api.sendToUser)
		r.Post("/send-all-future", api.sendAllFuture)
		r.Post("/check-all-future", api.checkAllFuture)
	})

	r.Method(http.MethodGet, "/ws", wsHandler)
	r.Get("/poll/{username}", lpHandler.Poll)

	return r
}

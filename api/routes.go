package api

import (
	"net/http"

	"github.com/garnizeh/hikelog/internal/assistant"
	"github.com/garnizeh/hikelog/internal/auth"
	"github.com/garnizeh/hikelog/internal/config"
	"github.com/garnizeh/hikelog/internal/journal"
	"github.com/garnizeh/hikelog/internal/weather"
	"github.com/garnizeh/hikelog/pkg/repository"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps carries everything the handlers need. The api package holds no state
// of its own beyond the logger.
type Deps struct {
	Cfg          *config.Config
	Users        repository.UserStore
	Hikes        *journal.HikeService
	Observations *journal.ObservationService
	Chats        repository.ChatStore
	Reports      repository.ReportStore
	Assistant    assistant.Client
	Weather      *weather.Client
	Tokens       *auth.LocalTokenSource
}

// SetupRoutes wires the full HTTP surface: public auth and system endpoints,
// and the JWT-protected journal API under /api/v1.
func SetupRoutes(version, buildTime string, d *Deps) *mux.Router {
	r := mux.NewRouter()

	r.Use(RecoveryMiddleware)
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)

	r.HandleFunc("/healthz", HealthHandler).Methods(http.MethodGet)
	r.HandleFunc("/version", VersionHandler(version, buildTime)).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	r.HandleFunc("/auth/signup", d.SignupHandler).Methods(http.MethodPost)
	r.HandleFunc("/auth/signin", d.SigninHandler).Methods(http.MethodPost)
	r.HandleFunc("/auth/signout", d.SignoutHandler).Methods(http.MethodPost)

	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.Use(JWTAuthMiddlewareWithSecret(d.Cfg.JWTSecret))

	v1.HandleFunc("/hikes", d.CreateHikeHandler).Methods(http.MethodPost)
	v1.HandleFunc("/hikes", d.ListHikesHandler).Methods(http.MethodGet)
	v1.HandleFunc("/hikes/{id:[0-9]+}", d.GetHikeHandler).Methods(http.MethodGet)
	v1.HandleFunc("/hikes/{id:[0-9]+}", d.UpdateHikeHandler).Methods(http.MethodPut)
	v1.HandleFunc("/hikes/{id:[0-9]+}", d.DeleteHikeHandler).Methods(http.MethodDelete)
	v1.HandleFunc("/hikes/{id:[0-9]+}/restore", d.RestoreHikeHandler).Methods(http.MethodPost)
	v1.HandleFunc("/hikes/{id:[0-9]+}/sync", d.SyncHikeHandler).Methods(http.MethodPost)
	v1.HandleFunc("/hikes/{id:[0-9]+}/weather", d.HikeWeatherHandler).Methods(http.MethodGet)

	v1.HandleFunc("/hikes/{id:[0-9]+}/observations", d.CreateObservationHandler).Methods(http.MethodPost)
	v1.HandleFunc("/hikes/{id:[0-9]+}/observations", d.ListObservationsHandler).Methods(http.MethodGet)
	v1.HandleFunc("/observations", d.SearchObservationsHandler).Methods(http.MethodGet)
	v1.HandleFunc("/observations/{id:[0-9]+}", d.GetObservationHandler).Methods(http.MethodGet)
	v1.HandleFunc("/observations/{id:[0-9]+}", d.UpdateObservationHandler).Methods(http.MethodPut)
	v1.HandleFunc("/observations/{id:[0-9]+}", d.DeleteObservationHandler).Methods(http.MethodDelete)

	v1.HandleFunc("/chat", d.AskHandler).Methods(http.MethodPost)
	v1.HandleFunc("/chat", d.ChatHistoryHandler).Methods(http.MethodGet)
	v1.HandleFunc("/chat", d.ClearChatHandler).Methods(http.MethodDelete)

	v1.HandleFunc("/report", d.ReportHandler).Methods(http.MethodGet)

	return r
}

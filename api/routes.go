package api

import (
	"github.com/batangdelosreyes03-bit/sidehustle-telegram-bot/internal/config"
	"github.com/batangdelosreyes03-bit/sidehustle-telegram-bot/internal/report"
	"github.com/gorilla/mux"
)

func SetupRoutes(cfg *config.Config, version, buildTime string, reports *report.Service) *mux.Router {
	r := mux.NewRouter()

	// Middleware chain
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)
	r.Use(RecoveryMiddleware)

	// Create handlers
	systemHandler := &SystemHandler{}
	authHandler := NewAuthHandler(cfg.AdminPasswordHash, cfg.JWTSecret, cfg.TokenDuration)
	adminHandler := NewAdminHandler(reports)

	// Open endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")
	r.HandleFunc("/v1/auth/signin", authHandler.Signin).Methods("POST")

	// API v1 Protected routes
	apiV1 := r.PathPrefix("/v1").Subrouter()
	apiV1.Use(JWTAuthMiddlewareWithSecret(cfg.JWTSecret))

	// Auth endpoints
	authV1 := apiV1.PathPrefix("/auth").Subrouter()
	authV1.HandleFunc("/signout", authHandler.Signout).Methods("POST")

	// Marketplace endpoints
	apiV1.HandleFunc("/dashboard", adminHandler.GetDashboard).Methods("GET")
	apiV1.HandleFunc("/users", adminHandler.ListUsers).Methods("GET")
	apiV1.HandleFunc("/users/{id}", adminHandler.GetUser).Methods("GET")
	apiV1.HandleFunc("/jobs", adminHandler.ListJobs).Methods("GET")
	apiV1.HandleFunc("/metrics/weekly", adminHandler.GetWeekly).Methods("GET")

	return r
}

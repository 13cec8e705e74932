package handler

import (
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/salary-bridge/internal/config"
	"github.com/Dan9191/salary-bridge/internal/middleware"
)

// NewRouter wires the public and protected routes
func NewRouter(h *Handler, cfg *config.Config, log *logrus.Logger) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.RequestLogger(log))

	// Public routes
	r.HandleFunc("/healthz", h.Health).Methods("GET")

	// Protected routes
	authRouter := r.PathPrefix("/runway").Subrouter()
	authRouter.Use(middleware.AuthMiddleware(cfg, log))
	authRouter.HandleFunc("", h.GetRunway).Methods("GET")
	authRouter.HandleFunc("", h.SaveRunway).Methods("PUT")
	authRouter.HandleFunc("/compute", h.Compute).Methods("POST")
	authRouter.HandleFunc("/plan", h.GeneratePlan).Methods("POST")
	authRouter.HandleFunc("/plan/email", h.EmailPlan).Methods("POST")
	authRouter.HandleFunc("/history", h.History).Methods("GET")
	authRouter.HandleFunc("/export.xml", h.ExportXML).Methods("GET")

	return r
}

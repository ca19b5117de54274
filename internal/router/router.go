package router

import (
	"net/http"

	"github.com/igestorphone/agent/internal/handler"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

func New(sessionHandler *handler.SessionHandler, calendarHandler *handler.CalendarHandler, logger *zap.Logger) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()

	sess := api.PathPrefix("/session").Subrouter()
	sess.HandleFunc("/start", sessionHandler.StartSession).Methods("POST")
	sess.HandleFunc("/logout", sessionHandler.Logout).Methods("POST")
	sess.HandleFunc("/activity", sessionHandler.ReportActivity).Methods("POST")
	sess.HandleFunc("", sessionHandler.GetStatus).Methods("GET")

	cal := api.PathPrefix("/calendar").Subrouter()
	cal.HandleFunc("/normalize", calendarHandler.Normalize).Methods("POST")
	cal.HandleFunc("/events", calendarHandler.CreateEvent).Methods("POST")
	cal.HandleFunc("/events", calendarHandler.ListEvents).Methods("GET")
	cal.HandleFunc("/events/{id}", calendarHandler.GetEvent).Methods("GET")
	cal.HandleFunc("/events/{id}/status", calendarHandler.UpdateStatus).Methods("PATCH")
	cal.HandleFunc("/events/{id}/summary", calendarHandler.GetSummary).Methods("GET")
	cal.HandleFunc("/events/{id}/share", calendarHandler.ShareEvent).Methods("POST")

	// Logging middleware
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		logger.Info("HTTP request",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.String("remote_addr", req.RemoteAddr),
		)
		r.ServeHTTP(w, req)
	})
}

// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package api exposes the join/leave surface around the matchmaking engine.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/AccelByte/queue-matchmaker/pkg/models"
	"github.com/AccelByte/queue-matchmaker/pkg/store"
)

type Server struct {
	authKey  string
	queues   map[string]models.QueueConfig
	store    store.Store
	registry *prometheus.Registry
}

func NewServer(authKey string, queues []models.QueueConfig, st store.Store, registry *prometheus.Registry) *Server {
	queueIndex := make(map[string]models.QueueConfig, len(queues))
	for _, queue := range queues {
		queueIndex[queue.QueueID] = queue
	}

	return &Server{
		authKey:  authKey,
		queues:   queueIndex,
		store:    st,
		registry: registry,
	}
}

func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()
	router.Use(loggingMiddleware)

	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	if s.registry != nil {
		router.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	v1 := router.PathPrefix("/v1").Subrouter()
	v1.Use(s.authMiddleware)
	v1.HandleFunc("/join-queue", s.handleJoinQueue).Methods(http.MethodPost)
	v1.HandleFunc("/leave-queue", s.handleLeaveQueue).Methods(http.MethodPost)

	router.NotFoundHandler = loggingMiddleware(http.HandlerFunc(handleNotFound))

	return router
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		logrus.WithError(err).Warn("health check store ping failed")
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{"ok": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}

func handleNotFound(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte("Are you lost?"))
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logrus.WithError(err).Error("failed to encode response body")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

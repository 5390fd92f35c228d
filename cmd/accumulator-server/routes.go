package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/davidbmar/transcription-realtime-whisper/internal/accumulator"
	"github.com/davidbmar/transcription-realtime-whisper/internal/session"
	"github.com/davidbmar/transcription-realtime-whisper/internal/transport/ws"
)

// registerRoutes wires all HTTP endpoints to the shared mux, mirroring
// cmd/gateway/routes.go's registerRoutes.
func registerRoutes(mux *http.ServeMux, registry *session.Registry, cfg accumulator.Config) {
	mux.Handle("/ws", ws.NewHandler(registry, cfg))
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.Handle("GET /metrics", promhttp.Handler())
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

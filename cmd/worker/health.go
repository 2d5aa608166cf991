package main

import (
	"net/http"

	"photovault-backend/pkg/logger"
)

const healthAddr = ":9999"

// startHealthServer exposes liveness and readiness probes; the worker serves
// no other HTTP traffic.
func startHealthServer() {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"UP","service":"photovault-worker"}`))
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"READY"}`))
	})

	logger.Info("Health probe listening", map[string]interface{}{
		"addr": healthAddr,
	})
	if err := http.ListenAndServe(healthAddr, mux); err != nil {
		logger.Error("Health probe failed", err)
	}
}

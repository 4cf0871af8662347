package api

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"wg-hub/pkg/clash"
)

type UploadResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type SubscriptionStatusResponse struct {
	Success bool `json:"success"`
	clash.Summary
}

func registerClashRoutes(mux *http.ServeMux, deps Deps, authed func(r *http.Request) bool) {
	mux.HandleFunc("/api/clash/config/upload", func(w http.ResponseWriter, r *http.Request) {
		if !authed(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "failed to read body", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(string(body)) == "" {
			writeJSON(w, http.StatusOK, UploadResponse{Success: false, Message: "config is empty"})
			return
		}
		if err := deps.Clash.WriteConfig(string(body)); err != nil {
			writeJSON(w, http.StatusOK, UploadResponse{Success: false, Message: "write failed: " + err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, UploadResponse{Success: true, Message: "config uploaded"})
	})

	mux.HandleFunc("/api/clash/config/download", func(w http.ResponseWriter, r *http.Request) {
		if !authed(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		content, err := deps.Clash.ReadConfig()
		if errors.Is(err, clash.ErrNotFound) {
			http.Error(w, "no config uploaded yet", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, "failed to read config", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/yaml; charset=utf-8")
		_, _ = w.Write([]byte(content))
	})

	mux.HandleFunc("/api/clash/subscription/status", func(w http.ResponseWriter, r *http.Request) {
		if !authed(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		summary, err := deps.Clash.StatusSummary(time.Now())
		if err != nil {
			http.Error(w, "failed to parse config: "+err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, SubscriptionStatusResponse{Success: true, Summary: summary})
	})
}

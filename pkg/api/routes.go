package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"wg-hub/pkg/audit"
	"wg-hub/pkg/auth"
	"wg-hub/pkg/clash"
	"wg-hub/pkg/config"
	"wg-hub/pkg/model"
	"wg-hub/pkg/version"
	"wg-hub/pkg/wgconf"
)

// WGTool is the slice of wgtool the handlers need; tests substitute a
// canned implementation.
type WGTool interface {
	ServerPublicKey() string
	PeerStatus() map[string]model.PeerStatus
	Reload() bool
}

// Deps carries the components the handlers operate on. Audit may be
// nil (auditing disabled).
type Deps struct {
	Settings config.Settings
	Registry *wgconf.Registry
	Tool     WGTool
	Clash    *clash.Parser
	Audit    *audit.Log
}

// RegisterRoutes wires every HTTP handler on the provided mux.
func RegisterRoutes(mux *http.ServeMux, deps Deps) {
	authed := authFunc(deps.Settings.AuthToken, []byte(deps.Settings.JWTSecret))

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{
			"name":    "wg-hub",
			"version": version.Build,
			"status":  "running",
		})
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/api/auth/token", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if deps.Settings.AuthToken == "" || deps.Settings.JWTSecret == "" {
			writeJSON(w, http.StatusOK, TokenResponse{Success: false, Message: "token auth not configured"})
			return
		}
		var req TokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}
		if req.Token != deps.Settings.AuthToken {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		client := req.Client
		if client == "" {
			client = "agent"
		}
		token, err := auth.Generate([]byte(deps.Settings.JWTSecret), client, 12*time.Hour)
		if err != nil {
			http.Error(w, "failed to sign token", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, TokenResponse{Success: true, Token: token})
	})

	registerWGRoutes(mux, deps, authed)
	registerClashRoutes(mux, deps, authed)
	registerWatchRoute(mux, deps, authed)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to write response: %v", err)
	}
}

// authFunc accepts the static token (X-Auth-Token or Bearer) or a JWT
// signed with the configured secret. An empty token disables auth.
func authFunc(token string, jwtSecret []byte) func(r *http.Request) bool {
	if token == "" {
		return func(_ *http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		h := r.Header.Get("X-Auth-Token")
		if h == "" {
			authz := r.Header.Get("Authorization")
			if strings.HasPrefix(authz, "Bearer ") {
				h = strings.TrimPrefix(authz, "Bearer ")
			}
		}
		if h == token {
			return true
		}
		if len(jwtSecret) > 0 {
			if _, err := auth.Parse(jwtSecret, h); err == nil {
				return true
			}
		}
		return false
	}
}

func (d Deps) recordAudit(r *http.Request, action, target, detail string) {
	d.Audit.Record(model.AuditEntry{
		Actor:  r.RemoteAddr,
		Action: action,
		Target: target,
		Detail: detail,
	})
}

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.zx2c4.com/wireguard/wgctrl/wgtypes"

	"wg-hub/pkg/model"
	"wg-hub/pkg/wgconf"
	"wg-hub/pkg/wgtool"
)

const dateStamp = "2006-01-02"

func registerWGRoutes(mux *http.ServeMux, deps Deps, authed func(r *http.Request) bool) {
	mux.HandleFunc("/api/wg/config/template", func(w http.ResponseWriter, r *http.Request) {
		if !authed(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		// An absent config file reads as an empty registry, so the
		// template still offers the first usable address on a fresh host.
		ip, err := deps.Registry.NextIP()
		if err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		assignedIP := ip.String()

		endpoint := deps.Settings.ServerEndpoint
		if endpoint == "" {
			endpoint = "<not configured - set HUB_SERVER_ENDPOINT>"
		}
		serverKey := deps.Tool.ServerPublicKey()

		writeJSON(w, http.StatusOK, ConfigTemplateResponse{
			Success:         true,
			AssignedIP:      assignedIP,
			ServerPublicKey: serverKey,
			ServerEndpoint:  endpoint,
			ConfigTemplate:  wgconf.RenderClientConfig(serverKey, endpoint, assignedIP, deps.Registry.Network()),
			Instructions: fmt.Sprintf("The hub reserved %s for this device. Generate keys locally:\n"+
				"1. wg genkey | tee private.key | wg pubkey > public.key\n"+
				"2. wg genpsk > preshared.key\n"+
				"Submit only public.key and preshared.key. Never share private.key.", assignedIP),
		})
	})

	mux.HandleFunc("/api/wg/peer/list", func(w http.ResponseWriter, r *http.Request) {
		if !authed(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		peers, err := deps.Registry.Peers()
		if err != nil {
			http.Error(w, "failed to read config", http.StatusInternalServerError)
			return
		}
		wgtool.MergeStatus(peers, deps.Tool.PeerStatus())
		if peers == nil {
			peers = []model.Peer{}
		}
		writeJSON(w, http.StatusOK, PeerListResponse{Success: true, Count: len(peers), Peers: peers})
	})

	mux.HandleFunc("/api/wg/peer/p2p_candidates", func(w http.ResponseWriter, r *http.Request) {
		if !authed(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		candidates, err := deps.Registry.DirectPeers()
		if err != nil {
			http.Error(w, "failed to read config", http.StatusInternalServerError)
			return
		}
		if candidates == nil {
			candidates = []model.Peer{}
		}
		writeJSON(w, http.StatusOK, P2PCandidatesResponse{Success: true, Count: len(candidates), Candidates: candidates})
	})

	mux.HandleFunc("/api/wg/peer/add", func(w http.ResponseWriter, r *http.Request) {
		if !authed(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req PeerAddRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}
		if req.Name == "" || req.PublicKey == "" || req.AssignedIP == "" {
			http.Error(w, "name, publicKey and assignedIp are required", http.StatusBadRequest)
			return
		}

		err := deps.Registry.AddPeer(model.Peer{
			Name:         req.Name,
			PublicKey:    req.PublicKey,
			AllowedIPs:   req.AssignedIP,
			AddedAt:      time.Now().Format(dateStamp),
			Endpoint:     req.Endpoint,
			PresharedKey: req.PresharedKey,
		})
		if errors.Is(err, wgconf.ErrNotFound) {
			http.Error(w, "wireguard config file does not exist", http.StatusServiceUnavailable)
			return
		}
		if err != nil {
			writeJSON(w, http.StatusOK, OperationResponse{Success: false, Message: err.Error()})
			return
		}

		deps.recordAudit(r, "peer.add", req.Name, req.AssignedIP)
		reloadIfEnabled(deps)
		writeJSON(w, http.StatusOK, OperationResponse{
			Success: true,
			Message: fmt.Sprintf("peer %q added with ip %s", req.Name, req.AssignedIP),
		})
	})

	mux.HandleFunc("/api/wg/peer/del", func(w http.ResponseWriter, r *http.Request) {
		if !authed(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req PeerDelRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}

		removed, err := deps.Registry.RemovePeer(req.Name)
		if errors.Is(err, wgconf.ErrNotFound) {
			http.Error(w, "wireguard config file does not exist", http.StatusServiceUnavailable)
			return
		}
		if err != nil {
			http.Error(w, "failed to update config", http.StatusInternalServerError)
			return
		}
		if !removed {
			writeJSON(w, http.StatusOK, OperationResponse{Success: false, Message: fmt.Sprintf("peer %q not found", req.Name)})
			return
		}

		deps.recordAudit(r, "peer.del", req.Name, "")
		reloadIfEnabled(deps)
		writeJSON(w, http.StatusOK, OperationResponse{Success: true, Message: fmt.Sprintf("peer %q removed", req.Name)})
	})

	mux.HandleFunc("/api/wg/peer/provision", func(w http.ResponseWriter, r *http.Request) {
		if !authed(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req ProvisionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
			http.Error(w, "name is required", http.StatusBadRequest)
			return
		}

		priv, err := wgtypes.GeneratePrivateKey()
		if err != nil {
			http.Error(w, "failed to generate key", http.StatusInternalServerError)
			return
		}
		psk, err := wgtypes.GenerateKey()
		if err != nil {
			http.Error(w, "failed to generate preshared key", http.StatusInternalServerError)
			return
		}

		assignedIP, err := deps.Registry.NextIP()
		if errors.Is(err, wgconf.ErrPoolExhausted) {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		if err != nil {
			http.Error(w, "failed to allocate address", http.StatusInternalServerError)
			return
		}

		err = deps.Registry.AddPeer(model.Peer{
			Name:         req.Name,
			PublicKey:    priv.PublicKey().String(),
			AllowedIPs:   assignedIP.String(),
			AddedAt:      time.Now().Format(dateStamp),
			Endpoint:     req.Endpoint,
			PresharedKey: psk.String(),
		})
		if errors.Is(err, wgconf.ErrNotFound) {
			http.Error(w, "wireguard config file does not exist", http.StatusServiceUnavailable)
			return
		}
		if err != nil {
			writeJSON(w, http.StatusOK, OperationResponse{Success: false, Message: err.Error()})
			return
		}

		endpoint := deps.Settings.ServerEndpoint
		if endpoint == "" {
			endpoint = "<not configured - set HUB_SERVER_ENDPOINT>"
		}
		clientConfig := wgconf.RenderClientConfig(deps.Tool.ServerPublicKey(), endpoint, assignedIP.String(), deps.Registry.Network())

		deps.recordAudit(r, "peer.provision", req.Name, assignedIP.String())
		reloadIfEnabled(deps)
		writeJSON(w, http.StatusOK, ProvisionResponse{
			Success:      true,
			Name:         req.Name,
			AssignedIP:   assignedIP.String(),
			PublicKey:    priv.PublicKey().String(),
			PrivateKey:   priv.String(),
			PresharedKey: psk.String(),
			ClientConfig: clientConfig,
		})
	})

	mux.HandleFunc("/api/wg/audit", func(w http.ResponseWriter, r *http.Request) {
		if !authed(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		entries, err := deps.Audit.List(100)
		if err != nil {
			http.Error(w, "failed to read audit log", http.StatusInternalServerError)
			return
		}
		if entries == nil {
			entries = []model.AuditEntry{}
		}
		writeJSON(w, http.StatusOK, AuditListResponse{Success: true, Count: len(entries), Entries: entries})
	})
}

func reloadIfEnabled(deps Deps) {
	if deps.Settings.EnableWGReload {
		deps.Tool.Reload()
	}
}

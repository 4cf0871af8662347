package api

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"wg-hub/pkg/model"
	"wg-hub/pkg/wgtool"
)

const watchInterval = 5 * time.Second

// registerWatchRoute streams the merged peer list to a websocket client
// on a fixed interval until the client goes away.
func registerWatchRoute(mux *http.ServeMux, deps Deps, authed func(r *http.Request) bool) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(_ *http.Request) bool { return true },
	}

	mux.HandleFunc("/api/wg/peer/watch", func(w http.ResponseWriter, r *http.Request) {
		if !authed(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("watch upgrade failed: %v", err)
			return
		}
		defer c.Close()

		closed := make(chan struct{})
		go func() {
			// Reader loop only detects the client hanging up.
			defer close(closed)
			for {
				if _, _, err := c.NextReader(); err != nil {
					return
				}
			}
		}()

		ticker := time.NewTicker(watchInterval)
		defer ticker.Stop()

		for {
			if err := c.WriteJSON(snapshotPeers(deps)); err != nil {
				return
			}
			select {
			case <-closed:
				return
			case <-ticker.C:
			}
		}
	})
}

func snapshotPeers(deps Deps) PeerListResponse {
	peers, err := deps.Registry.Peers()
	if err != nil {
		peers = nil
	}
	wgtool.MergeStatus(peers, deps.Tool.PeerStatus())
	if peers == nil {
		peers = []model.Peer{}
	}
	return PeerListResponse{Success: true, Count: len(peers), Peers: peers}
}

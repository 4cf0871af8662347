package api

import "wg-hub/pkg/model"

// PeerAddRequest registers a device whose keys were generated locally.
type PeerAddRequest struct {
	Name         string `json:"name"`
	PublicKey    string `json:"publicKey"`
	AssignedIP   string `json:"assignedIp"`
	Endpoint     string `json:"endpoint,omitempty"`
	PresharedKey string `json:"presharedKey,omitempty"`
}

type PeerDelRequest struct {
	Name string `json:"name"`
}

// ProvisionRequest asks the hub to generate key material server-side.
type ProvisionRequest struct {
	Name     string `json:"name"`
	Endpoint string `json:"endpoint,omitempty"`
}

type OperationResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type PeerListResponse struct {
	Success bool         `json:"success"`
	Count   int          `json:"count"`
	Peers   []model.Peer `json:"peers"`
}

type P2PCandidatesResponse struct {
	Success    bool         `json:"success"`
	Count      int          `json:"count"`
	Candidates []model.Peer `json:"candidates"`
}

type ConfigTemplateResponse struct {
	Success         bool   `json:"success"`
	AssignedIP      string `json:"assignedIp"`
	ServerPublicKey string `json:"serverPublicKey"`
	ServerEndpoint  string `json:"serverEndpoint"`
	ConfigTemplate  string `json:"configTemplate"`
	Instructions    string `json:"instructions"`
}

// ProvisionResponse carries generated key material. The private key and
// preshared key are returned once and never stored by the hub beyond
// the config file's PresharedKey line.
type ProvisionResponse struct {
	Success      bool   `json:"success"`
	Name         string `json:"name"`
	AssignedIP   string `json:"assignedIp"`
	PublicKey    string `json:"publicKey"`
	PrivateKey   string `json:"privateKey"`
	PresharedKey string `json:"presharedKey"`
	ClientConfig string `json:"clientConfig"`
}

type AuditListResponse struct {
	Success bool               `json:"success"`
	Count   int                `json:"count"`
	Entries []model.AuditEntry `json:"entries"`
}

type TokenRequest struct {
	Token  string `json:"token"`
	Client string `json:"client,omitempty"`
}

type TokenResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token,omitempty"`
	Message string `json:"message,omitempty"`
}

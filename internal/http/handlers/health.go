package handlers

import "net/http"

// RemoteStatus reports whether the remote sheet is currently reachable.
type RemoteStatus interface {
	Connected() bool
}

// Health answers liveness probes. The service is healthy in fallback-only
// mode too; remote_connected tells operators which mode they are in.
func Health(remote RemoteStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		connected := false
		if remote != nil {
			connected = remote.Connected()
		}
		mode := "remote"
		if !connected {
			mode = "fallback-only"
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"status":           "ok",
			"remote_connected": connected,
			"mode":             mode,
		})
	}
}

package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ritza-co/legacy-auth-bridge/internal/apperror"
	"github.com/ritza-co/legacy-auth-bridge/internal/connector"
)

// ConnectorHandler exposes the FusionAuth connector endpoint.
//
// WIRE CONTRACT:
// The request and response bodies — including the exact error strings — are
// what the external identity system is configured against. Do not "improve"
// them to match the rest of the API; they are frozen.
type ConnectorHandler struct {
	bridge *connector.Bridge
	logger *slog.Logger
}

// NewConnectorHandler creates a ConnectorHandler.
func NewConnectorHandler(bridge *connector.Bridge, logger *slog.Logger) *ConnectorHandler {
	return &ConnectorHandler{bridge: bridge, logger: logger}
}

type connectorRequest struct {
	LoginID  string `json:"loginId"`
	Password string `json:"password"`
}

// HandleConnector authenticates a legacy credential pair and returns the
// export identity.
//
// HTTP: POST /fusionauth/connector
//
// Responses:
//
//	200 {"user": {...}}                                      — authenticated
//	400 {"error": "Missing loginId or password"}             — bad input
//	404 {"error": "User not found or authentication failed"} — unknown user
//	    OR wrong password, deliberately indistinguishable
//	500 {"error": "Internal server error"}                   — store failure
func (h *ConnectorHandler) HandleConnector(w http.ResponseWriter, r *http.Request) {
	var req connectorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// An unreadable body carries no credentials; same 400 as missing ones.
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing loginId or password"})
		return
	}

	h.logger.Info("connector request received", slog.String("loginId", req.LoginID))

	export, err := h.bridge.Authenticate(r.Context(), req.LoginID, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, apperror.ErrValidation):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing loginId or password"})
		case errors.Is(err, apperror.ErrNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "User not found or authentication failed"})
		default:
			h.logger.Error("connector internal error", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]*connector.ExportIdentity{"user": export})
}

package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dmitrijs2005/alarmify/internal/common"
	"github.com/dmitrijs2005/alarmify/internal/server/models"
	"github.com/dmitrijs2005/alarmify/internal/server/services"
	"github.com/go-chi/chi/v5"
)

// UserProvider is the slice of UserService the API needs.
type UserProvider interface {
	Register(ctx context.Context, username, password string) (*services.TokenPair, error)
	Login(ctx context.Context, username, password string) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
}

// SnapshotProvider is the slice of SnapshotService the API needs.
type SnapshotProvider interface {
	Push(ctx context.Context, userID string, payload []byte) (*models.SnapshotMeta, error)
	Pull(ctx context.Context, userID string) ([]byte, *models.SnapshotMeta, error)
}

// DeviceProvider is the slice of DeviceService the API needs.
type DeviceProvider interface {
	Register(ctx context.Context, userID, deviceID, name string) (*models.Device, error)
	List(ctx context.Context, userID string) ([]models.Device, error)
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPairResponse struct {
	AccountID    string `json:"account_id"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type deviceRequest struct {
	Name string `json:"name"`
}

type deviceResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	LastSync string `json:"last_sync,omitempty"`
}

const maxSnapshotBytes = 1 << 20

func (h *Handler) handlePing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	pair, err := h.users.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeServiceError(w, r, "register", err)
		return
	}
	writeJSON(w, http.StatusOK, tokenPairResponse{AccountID: pair.AccountID, AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	pair, err := h.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeServiceError(w, r, "login", err)
		return
	}
	writeJSON(w, http.StatusOK, tokenPairResponse{AccountID: pair.AccountID, AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	pair, err := h.users.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, common.ErrRefreshTokenExpired) {
			writeError(w, http.StatusUnauthorized, common.ErrRefreshTokenExpired.Error())
			return
		}
		h.logger.Error(r.Context(), "refresh failed", "error", err)
		writeError(w, http.StatusUnauthorized, common.ErrorUnauthorized.Error())
		return
	}
	writeJSON(w, http.StatusOK, tokenPairResponse{AccountID: pair.AccountID, AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

func (h *Handler) handlePushSnapshot(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxSnapshotBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "error reading request body")
		return
	}

	meta, err := h.snapshots.Push(r.Context(), userID, payload)
	if err != nil {
		h.writeServiceError(w, r, "snapshot push", err)
		return
	}

	h.logger.Info(r.Context(), "snapshot stored",
		"user_id", userID, "device_id", meta.DeviceID, "alarms", meta.AlarmCount)
	writeJSON(w, http.StatusOK, map[string]string{"checksum": meta.Checksum})
}

func (h *Handler) handlePullSnapshot(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())

	payload, _, err := h.snapshots.Pull(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, r, "snapshot pull", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(payload)
}

func (h *Handler) handleListDevices(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())

	devices, err := h.devices.List(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, r, "device list", err)
		return
	}

	resp := make([]deviceResponse, 0, len(devices))
	for _, d := range devices {
		dr := deviceResponse{ID: d.ID, Name: d.Name}
		if !d.LastSync.IsZero() {
			dr.LastSync = d.LastSync.UTC().Format("2006-01-02T15:04:05Z")
		}
		resp = append(resp, dr)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleRegisterDevice(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())
	deviceID := chi.URLParam(r, "id")

	var req deviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	d, err := h.devices.Register(r.Context(), userID, deviceID, req.Name)
	if err != nil {
		h.writeServiceError(w, r, "device register", err)
		return
	}
	writeJSON(w, http.StatusOK, deviceResponse{ID: d.ID, Name: d.Name})
}

// writeServiceError maps service-layer sentinels to HTTP statuses. Unknown
// errors become 500 and are logged server-side only.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, common.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrChecksumMismatch):
		writeError(w, http.StatusBadRequest, common.ErrChecksumMismatch.Error())
	case errors.Is(err, common.ErrorUnauthorized):
		writeError(w, http.StatusUnauthorized, common.ErrorUnauthorized.Error())
	case errors.Is(err, common.ErrorNotFound):
		writeError(w, http.StatusNotFound, common.ErrorNotFound.Error())
	default:
		h.logger.Error(r.Context(), op+" failed", "error", err)
		writeError(w, http.StatusInternalServerError, common.ErrorInternal.Error())
	}
}

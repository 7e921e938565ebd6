package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"home-energy/internal/audit"
	"home-energy/internal/auth"
	meteringapp "home-energy/internal/metering/application"
	metering "home-energy/internal/metering/domain"
)

// MasterDataHandler handles device and provider CRUD.
type MasterDataHandler struct {
	service *meteringapp.MasterDataService
}

// NewMasterDataHandler constructs a handler.
func NewMasterDataHandler(service *meteringapp.MasterDataService) (*MasterDataHandler, error) {
	if service == nil {
		return nil, errors.New("master data handler: nil service")
	}
	return &MasterDataHandler{service: service}, nil
}

// ServeHTTP dispatches routes under /api/v1/devices and /api/v1/providers.
func (h *MasterDataHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch {
	case path == "/api/v1/devices":
		h.handleDevices(w, r)
	case strings.HasPrefix(path, "/api/v1/devices/"):
		h.handleDeviceByID(w, r, strings.TrimPrefix(path, "/api/v1/devices/"))
	case path == "/api/v1/providers":
		h.handleProviders(w, r)
	case strings.HasPrefix(path, "/api/v1/providers/"):
		h.handleProviderByID(w, r, strings.TrimPrefix(path, "/api/v1/providers/"))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *MasterDataHandler) handleDevices(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		list, err := h.service.ListDevices(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, list)
	case http.MethodPost:
		var device metering.Device
		if err := json.NewDecoder(r.Body).Decode(&device); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if err := h.service.SaveDevice(r.Context(), &device, actorFrom(r)); err != nil {
			respondMasterDataError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, device)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *MasterDataHandler) handleDeviceByID(w http.ResponseWriter, r *http.Request, id string) {
	if id == "" || strings.Contains(id, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	switch r.Method {
	case http.MethodGet:
		device, err := h.service.GetDevice(r.Context(), id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if device == nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, device)
	case http.MethodPut:
		var device metering.Device
		if err := json.NewDecoder(r.Body).Decode(&device); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		device.ID = id
		if err := h.service.SaveDevice(r.Context(), &device, actorFrom(r)); err != nil {
			respondMasterDataError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, device)
	case http.MethodDelete:
		if err := h.service.DeleteDevice(r.Context(), id, actorFrom(r)); err != nil {
			respondMasterDataError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *MasterDataHandler) handleProviders(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		list, err := h.service.ListProviders(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, list)
	case http.MethodPost:
		var provider metering.EnergyProvider
		if err := json.NewDecoder(r.Body).Decode(&provider); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if err := h.service.SaveProvider(r.Context(), &provider, actorFrom(r)); err != nil {
			respondMasterDataError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, provider)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *MasterDataHandler) handleProviderByID(w http.ResponseWriter, r *http.Request, id string) {
	if id == "" || strings.Contains(id, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	switch r.Method {
	case http.MethodGet:
		provider, err := h.service.GetProvider(r.Context(), id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if provider == nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, provider)
	case http.MethodPut:
		var provider metering.EnergyProvider
		if err := json.NewDecoder(r.Body).Decode(&provider); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		provider.ID = id
		if err := h.service.SaveProvider(r.Context(), &provider, actorFrom(r)); err != nil {
			respondMasterDataError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, provider)
	case http.MethodDelete:
		if err := h.service.DeleteProvider(r.Context(), id, actorFrom(r)); err != nil {
			respondMasterDataError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func actorFrom(r *http.Request) meteringapp.Actor {
	ctx := r.Context()
	ip, userAgent := audit.RequestOrigin(r)
	return meteringapp.Actor{
		HouseholdID: auth.HouseholdIDFromContext(ctx),
		Subject:     auth.SubjectFromContext(ctx),
		Role:        string(auth.RoleFromContext(ctx)),
		IP:          ip,
		UserAgent:   userAgent,
	}
}

func respondMasterDataError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, metering.ErrDeviceNotFound), errors.Is(err, metering.ErrProviderNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, metering.ErrEmptyDeviceID), errors.Is(err, metering.ErrEmptyProviderID),
		errors.Is(err, metering.ErrNegativePrice), errors.Is(err, metering.ErrUnknownPolicy):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

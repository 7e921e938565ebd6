package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"home-energy/internal/audit"
	"home-energy/internal/auth"
	"home-energy/internal/locale"
	metering "home-energy/internal/metering/domain"
	readingapp "home-energy/internal/readings/application"
	readings "home-energy/internal/readings/domain"
)

const confirmHighConsumption = "high-consumption"

// ReadingHandler handles meter reading CRUD and validation previews.
type ReadingHandler struct {
	service *readingapp.ReadingService
}

// NewReadingHandler constructs a handler.
func NewReadingHandler(service *readingapp.ReadingService) (*ReadingHandler, error) {
	if service == nil {
		return nil, errors.New("reading handler: nil service")
	}
	return &ReadingHandler{service: service}, nil
}

// ServeHTTP dispatches routes under /api/v1/readings.
func (h *ReadingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	if path == "/api/v1/readings" {
		switch r.Method {
		case http.MethodGet:
			h.handleList(w, r)
		case http.MethodPost:
			h.handleCreate(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}
	if path == "/api/v1/readings/validate" && r.Method == http.MethodPost {
		h.handleValidate(w, r)
		return
	}
	if strings.HasPrefix(path, "/api/v1/readings/") {
		id := strings.TrimPrefix(path, "/api/v1/readings/")
		if id == "" || strings.Contains(id, "/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		switch r.Method {
		case http.MethodGet:
			h.handleGet(w, r, id)
		case http.MethodPut:
			h.handleUpdate(w, r, id)
		case http.MethodDelete:
			h.handleDelete(w, r, id)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}
	w.WriteHeader(http.StatusNotFound)
}

func (h *ReadingHandler) handleList(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if meterID := r.URL.Query().Get("meter_id"); meterID != "" {
		filtered := list[:0:0]
		for _, reading := range list {
			if reading.MeterID == meterID {
				filtered = append(filtered, reading)
			}
		}
		list = filtered
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *ReadingHandler) handleGet(w http.ResponseWriter, r *http.Request, id string) {
	reading, err := h.service.Get(r.Context(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if reading == nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, reading)
}

func (h *ReadingHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var reading readings.MeterReading
	if err := json.NewDecoder(r.Body).Decode(&reading); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	created, result, err := h.service.Create(r.Context(), reading, confirmed(r), actorFrom(r))
	if err != nil {
		respondWriteError(w, result, err)
		return
	}
	writeJSON(w, http.StatusCreated, createResponse(created, result))
}

func (h *ReadingHandler) handleUpdate(w http.ResponseWriter, r *http.Request, id string) {
	var reading readings.MeterReading
	if err := json.NewDecoder(r.Body).Decode(&reading); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	reading.ID = id

	updated, result, err := h.service.Update(r.Context(), reading, confirmed(r), actorFrom(r))
	if err != nil {
		respondWriteError(w, result, err)
		return
	}
	writeJSON(w, http.StatusOK, createResponse(updated, result))
}

func (h *ReadingHandler) handleDelete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.service.Delete(r.Context(), id, actorFrom(r)); err != nil {
		if errors.Is(err, readings.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleValidate runs a validation preview. The reading value may be a
// JSON number or a German-locale numeric string.
func (h *ReadingHandler) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MeterID   string          `json:"meter_id"`
		Type      string          `json:"type"`
		Reading   json.RawMessage `json:"reading"`
		Value     json.RawMessage `json:"value"`
		Timestamp *time.Time      `json:"timestamp"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	raw := req.Reading
	if len(raw) == 0 {
		raw = req.Value
	}
	value, err := decodeFlexibleNumber(raw)
	if err != nil {
		http.Error(w, "unparseable reading value", http.StatusBadRequest)
		return
	}

	candidate := readings.MeterReading{
		MeterID: req.MeterID,
		Type:    metering.EnergyType(req.Type),
		Value:   value,
	}
	if req.Timestamp != nil {
		candidate.Timestamp = *req.Timestamp
	} else {
		candidate.Timestamp = time.Now().UTC()
	}

	result, err := h.service.Preview(r.Context(), candidate)
	if err != nil {
		if errors.Is(err, readings.ErrEmptyMeterID) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func decodeFlexibleNumber(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 {
		return 0, errors.New("missing value")
	}
	var number float64
	if err := json.Unmarshal(raw, &number); err == nil {
		return number, nil
	}
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return 0, err
	}
	return locale.ParseGermanNumber(text)
}

func confirmed(r *http.Request) bool {
	return r.URL.Query().Get("confirm") == confirmHighConsumption
}

func actorFrom(r *http.Request) readingapp.Actor {
	ctx := r.Context()
	ip, userAgent := audit.RequestOrigin(r)
	return readingapp.Actor{
		HouseholdID: auth.HouseholdIDFromContext(ctx),
		Subject:     auth.SubjectFromContext(ctx),
		Role:        string(auth.RoleFromContext(ctx)),
		IP:          ip,
		UserAgent:   userAgent,
	}
}

func createResponse(reading *readings.MeterReading, result readings.ValidationResult) map[string]any {
	resp := map[string]any{"reading": reading}
	if result.Warning != "" {
		resp["warning"] = result.Warning
	}
	return resp
}

func respondWriteError(w http.ResponseWriter, result readings.ValidationResult, err error) {
	switch {
	case errors.Is(err, readings.ErrRejected):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":   "validation failed",
			"message": result.Message,
		})
	case errors.Is(err, readings.ErrConfirmationRequired):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":   "confirmation required",
			"warning": result.Warning,
			"confirm": confirmHighConsumption,
		})
	case errors.Is(err, readings.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, readings.ErrEmptyMeterID), errors.Is(err, readings.ErrEmptyID):
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

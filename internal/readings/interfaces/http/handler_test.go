package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"home-energy/internal/audit"
	readingapp "home-energy/internal/readings/application"
	readings "home-energy/internal/readings/domain"
	"home-energy/internal/readings/infrastructure/memory"
)

func newHandler(t *testing.T) *ReadingHandler {
	t.Helper()
	repo := memory.NewReadingRepository()
	service, err := readingapp.NewReadingService(repo, readings.NewValidator(readings.DefaultThresholds()), audit.Nop{}, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	handler, err := NewReadingHandler(service)
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	return handler
}

func postJSON(t *testing.T, handler http.Handler, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp
}

func TestCreateReading(t *testing.T) {
	handler := newHandler(t)

	resp := postJSON(t, handler, "/api/v1/readings", `{"meter_id":"m1","type":"electricity","reading":1000,"timestamp":"2024-01-01T00:00:00Z"}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", resp.Code, resp.Body.String())
	}

	var payload struct {
		Reading readings.MeterReading `json:"reading"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Reading.ID == "" || payload.Reading.Value != 1000 {
		t.Fatalf("payload = %+v", payload.Reading)
	}
}

func TestCreateReadingLegacyValueAlias(t *testing.T) {
	handler := newHandler(t)

	resp := postJSON(t, handler, "/api/v1/readings", `{"meter_id":"m1","type":"electricity","value":42,"timestamp":"2024-01-01T00:00:00Z"}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", resp.Code, resp.Body.String())
	}
	var payload struct {
		Reading readings.MeterReading `json:"reading"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Reading.Value != 42 {
		t.Fatalf("alias value = %v, want 42", payload.Reading.Value)
	}
}

func TestCreateReadingRejectedNonMonotonic(t *testing.T) {
	handler := newHandler(t)

	if resp := postJSON(t, handler, "/api/v1/readings", `{"meter_id":"m1","type":"electricity","reading":1000,"timestamp":"2024-01-01T00:00:00Z"}`); resp.Code != http.StatusCreated {
		t.Fatalf("seed status = %d", resp.Code)
	}
	resp := postJSON(t, handler, "/api/v1/readings", `{"meter_id":"m1","type":"electricity","reading":990,"timestamp":"2024-02-01T00:00:00Z"}`)
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.Code)
	}
}

func TestCreateReadingConfirmationFlow(t *testing.T) {
	handler := newHandler(t)

	if resp := postJSON(t, handler, "/api/v1/readings", `{"meter_id":"m1","type":"electricity","reading":1000,"timestamp":"2024-01-01T00:00:00Z"}`); resp.Code != http.StatusCreated {
		t.Fatalf("seed status = %d", resp.Code)
	}

	spike := `{"meter_id":"m1","type":"electricity","reading":1600,"timestamp":"2024-01-11T00:00:00Z"}`
	resp := postJSON(t, handler, "/api/v1/readings", spike)
	if resp.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409 confirmation gate", resp.Code)
	}
	var gate struct {
		Warning string `json:"warning"`
		Confirm string `json:"confirm"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&gate); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if gate.Warning == "" || gate.Confirm != "high-consumption" {
		t.Fatalf("gate = %+v", gate)
	}

	resp = postJSON(t, handler, "/api/v1/readings?confirm=high-consumption", spike)
	if resp.Code != http.StatusCreated {
		t.Fatalf("confirmed status = %d, body %s", resp.Code, resp.Body.String())
	}
}

func TestUpdateAndDeleteReading(t *testing.T) {
	handler := newHandler(t)

	resp := postJSON(t, handler, "/api/v1/readings", `{"meter_id":"m1","type":"electricity","reading":1000,"timestamp":"2024-01-01T00:00:00Z"}`)
	var created struct {
		Reading readings.MeterReading `json:"reading"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	update := httptest.NewRequest(http.MethodPut, "/api/v1/readings/"+created.Reading.ID, strings.NewReader(`{"meter_id":"m1","type":"electricity","reading":995,"timestamp":"2024-01-01T00:00:00Z"}`))
	updateResp := httptest.NewRecorder()
	handler.ServeHTTP(updateResp, update)
	if updateResp.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", updateResp.Code, updateResp.Body.String())
	}

	del := httptest.NewRequest(http.MethodDelete, "/api/v1/readings/"+created.Reading.ID, nil)
	delResp := httptest.NewRecorder()
	handler.ServeHTTP(delResp, del)
	if delResp.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", delResp.Code)
	}

	get := httptest.NewRequest(http.MethodGet, "/api/v1/readings/"+created.Reading.ID, nil)
	getResp := httptest.NewRecorder()
	handler.ServeHTTP(getResp, get)
	if getResp.Code != http.StatusNotFound {
		t.Fatalf("get after delete = %d, want 404", getResp.Code)
	}
}

func TestListFiltersByMeter(t *testing.T) {
	handler := newHandler(t)

	postJSON(t, handler, "/api/v1/readings", `{"meter_id":"m1","type":"electricity","reading":10,"timestamp":"2024-01-01T00:00:00Z"}`)
	postJSON(t, handler, "/api/v1/readings", `{"meter_id":"m2","type":"gas","reading":5,"timestamp":"2024-01-01T00:00:00Z"}`)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/readings?meter_id=m2", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d", resp.Code)
	}
	var list []readings.MeterReading
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list) != 1 || list[0].MeterID != "m2" {
		t.Fatalf("list = %+v", list)
	}
}

func TestValidateAcceptsGermanNumbers(t *testing.T) {
	handler := newHandler(t)

	postJSON(t, handler, "/api/v1/readings", `{"meter_id":"m1","type":"electricity","reading":1000,"timestamp":"2024-01-01T00:00:00Z"}`)

	resp := postJSON(t, handler, "/api/v1/readings/validate", `{"meter_id":"m1","type":"electricity","reading":"1.234,5","timestamp":"2024-02-01T00:00:00Z"}`)
	if resp.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.Code, resp.Body.String())
	}
	var result readings.ValidationResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !result.Valid {
		t.Fatalf("1.234,5 after 1000 should validate, got %+v", result)
	}
}

func TestValidateRejectsGarbageValue(t *testing.T) {
	handler := newHandler(t)

	resp := postJSON(t, handler, "/api/v1/readings/validate", `{"meter_id":"m1","type":"electricity","reading":"abc"}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.Code)
	}
}

package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hoizi89/advanced-switches/internal/engine"
	"github.com/hoizi89/advanced-switches/internal/models"
	"github.com/hoizi89/advanced-switches/internal/service"
)

func doRequest(r http.Handler, method, target string, body []byte, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for k, vv := range authHeader(token) {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	s := &service.Service{Authorization: &mockAuth{}}
	r := newTestRouter(s)

	w := doRequest(r, http.MethodGet, "/health", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("health status=%d", w.Code)
	}
}

func TestTrackerState_RequiresAuth(t *testing.T) {
	auth := &mockAuth{parseID: 7}
	mon := &mockMonitoring{state: models.DeviceState{State: models.StateActive, IsActive: true, RawPowerW: 1500}}
	s := &service.Service{Authorization: auth, Monitoring: mon}
	r := newTestRouter(s)

	if w := doRequest(r, http.MethodGet, "/api/v1/tracker/state", nil, ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without auth, got %d", w.Code)
	}

	w := doRequest(r, http.MethodGet, "/api/v1/tracker/state", nil, "valid")
	if w.Code != http.StatusOK {
		t.Fatalf("state status=%d, body=%s", w.Code, w.Body.String())
	}
	var st models.DeviceState
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatalf("unmarshal state: %v", err)
	}
	if st.State != models.StateActive || st.RawPowerW != 1500 {
		t.Fatalf("unexpected state: %+v", st)
	}
}

func TestTrackerReading(t *testing.T) {
	auth := &mockAuth{parseID: 7}
	tr := &mockTracker{state: models.DeviceState{State: models.StateStandby}}
	s := &service.Service{Authorization: auth, Tracker: tr}
	r := newTestRouter(s)

	at := time.Date(2026, 8, 18, 10, 0, 0, 0, time.UTC)
	body := []byte(fmt.Sprintf(`{"timestamp":%q,"power_w":120.5,"energy_kwh":42.1,"switch_on":true}`, at.Format(time.RFC3339)))

	w := doRequest(r, http.MethodPost, "/api/v1/tracker/reading", body, "valid")
	if w.Code != http.StatusOK {
		t.Fatalf("reading status=%d, body=%s", w.Code, w.Body.String())
	}
	if tr.lastReading.PowerW != 120.5 || !tr.lastReading.SwitchOn || !tr.lastReading.Timestamp.Equal(at) {
		t.Fatalf("reading not forwarded: %+v", tr.lastReading)
	}

	// Missing timestamp binds to zero value and fails the required check.
	w = doRequest(r, http.MethodPost, "/api/v1/tracker/reading", []byte(`{"power_w":10}`), "valid")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing timestamp, got %d", w.Code)
	}

	// Engine rejection maps to 400.
	tr.ingestErr = fmt.Errorf("%w: negative power", engine.ErrInvalidReading)
	w = doRequest(r, http.MethodPost, "/api/v1/tracker/reading", body, "valid")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid reading, got %d (body=%s)", w.Code, w.Body.String())
	}
}

func TestTrackerOnOff(t *testing.T) {
	auth := &mockAuth{parseID: 7}
	tr := &mockTracker{state: models.DeviceState{State: models.StateOff}, accepted: true}
	s := &service.Service{Authorization: auth, Tracker: tr}
	r := newTestRouter(s)

	w := doRequest(r, http.MethodPost, "/api/v1/tracker/on", nil, "valid")
	if w.Code != http.StatusOK {
		t.Fatalf("on status=%d", w.Code)
	}
	var resp struct {
		Status string `json:"status"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Status != statusAccepted {
		t.Fatalf("status = %q, want accepted", resp.Status)
	}

	tr.accepted = false
	w = doRequest(r, http.MethodPost, "/api/v1/tracker/on", nil, "valid")
	json.Unmarshal(w.Body.Bytes(), &resp)
	if w.Code != http.StatusOK || resp.Status != statusRejected {
		t.Fatalf("blocked on: code=%d status=%q", w.Code, resp.Status)
	}

	w = doRequest(r, http.MethodPost, "/api/v1/tracker/off", nil, "valid")
	if w.Code != http.StatusOK || tr.offCalls != 1 {
		t.Fatalf("off: code=%d calls=%d", w.Code, tr.offCalls)
	}
}

func TestTrackerReset(t *testing.T) {
	auth := &mockAuth{parseID: 7}
	tr := &mockTracker{}
	s := &service.Service{Authorization: auth, Tracker: tr}
	r := newTestRouter(s)

	w := doRequest(r, http.MethodPost, "/api/v1/tracker/reset", []byte(`{"scope":"today"}`), "valid")
	if w.Code != http.StatusOK {
		t.Fatalf("reset status=%d, body=%s", w.Code, w.Body.String())
	}
	if tr.lastScope != "today" {
		t.Fatalf("scope forwarded = %q", tr.lastScope)
	}

	// Missing scope fails binding.
	w = doRequest(r, http.MethodPost, "/api/v1/tracker/reset", []byte(`{}`), "valid")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing scope, got %d", w.Code)
	}

	// Unknown scope surfaces as 400.
	tr.resetErr = fmt.Errorf("%w: %q", engine.ErrInvalidResetScope, "week")
	w = doRequest(r, http.MethodPost, "/api/v1/tracker/reset", []byte(`{"scope":"week"}`), "valid")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown scope, got %d", w.Code)
	}
}

func TestTrackerStats(t *testing.T) {
	auth := &mockAuth{parseID: 7}
	mon := &mockMonitoring{stats: models.StatsSnapshot{SessionsTotal: 9, TodayDate: "2026-08-18"}}
	s := &service.Service{Authorization: auth, Monitoring: mon}
	r := newTestRouter(s)

	w := doRequest(r, http.MethodGet, "/api/v1/tracker/stats", nil, "valid")
	if w.Code != http.StatusOK {
		t.Fatalf("stats status=%d", w.Code)
	}
	var snap models.StatsSnapshot
	if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
		t.Fatalf("unmarshal stats: %v", err)
	}
	if snap.SessionsTotal != 9 || snap.TodayDate != "2026-08-18" {
		t.Fatalf("unexpected stats: %+v", snap)
	}
}

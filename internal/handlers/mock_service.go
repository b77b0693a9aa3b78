package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hoizi89/advanced-switches/internal/models"
	"github.com/hoizi89/advanced-switches/internal/service"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockTracker struct {
	state       models.DeviceState
	accepted    bool
	ingestErr   error
	tickErr     error
	onErr       error
	offErr      error
	resetErr    error
	restoreErr  error
	lastReading models.Reading
	lastScope   string
	onCalls     int
	offCalls    int
	resetCalls  int
}

func (m *mockTracker) Ingest(ctx context.Context, r models.Reading) (models.DeviceState, error) {
	m.lastReading = r
	return m.state, m.ingestErr
}
func (m *mockTracker) Tick(ctx context.Context, now time.Time) (models.DeviceState, error) {
	return m.state, m.tickErr
}
func (m *mockTracker) RequestOn(ctx context.Context, now time.Time) (models.DeviceState, bool, error) {
	m.onCalls++
	return m.state, m.accepted, m.onErr
}
func (m *mockTracker) RequestOff(ctx context.Context, now time.Time) (models.DeviceState, error) {
	m.offCalls++
	return m.state, m.offErr
}
func (m *mockTracker) Reset(ctx context.Context, scope string) error {
	m.resetCalls++
	m.lastScope = scope
	return m.resetErr
}
func (m *mockTracker) Restore(ctx context.Context) error {
	return m.restoreErr
}

type mockMonitoring struct {
	state models.DeviceState
	stats models.StatsSnapshot
}

func (m *mockMonitoring) State(now time.Time) models.DeviceState {
	return m.state
}
func (m *mockMonitoring) Statistics() models.StatsSnapshot {
	return m.stats
}

type mockSessionLog struct {
	resp       []models.SessionRecord
	err        error
	lastFilter service.SessionFilter
}

func (m *mockSessionLog) List(ctx context.Context, f service.SessionFilter) ([]models.SessionRecord, error) {
	m.lastFilter = f
	return m.resp, m.err
}

type mockEventLog struct {
	resp     []models.TrackerEvent
	err      error
	lastFrom time.Time
	lastTo   time.Time
	lastType string
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.TrackerEvent, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

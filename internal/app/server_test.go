package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/fixtures"
	"github.com/spec-kit/helpdesk-service/internal/repository/memory"
)

func testConfig() *config.Config {
	return &config.Config{
		App:  config.AppConfig{Name: "helpdesk-test", Version: "test", RequestTimeoutSeconds: 5},
		Auth: config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 60},
		Tickets: config.TicketsConfig{
			DefaultSLAHours: 24,
		},
	}
}

func newTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()
	repos := memory.New()
	set, err := fixtures.Default()
	require.NoError(t, err)
	_, err = fixtures.Apply(context.Background(), repos, set, false)
	require.NoError(t, err)

	var tick int
	clock := func() time.Time {
		tick++
		return time.Date(2024, 5, 6, 9, tick, 0, 0, time.UTC)
	}
	return NewServer(ServerOptions{Config: cfg, Repos: repos, Clock: clock})
}

func call(t *testing.T, s *Server, method, path string, body any, token string) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.App.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}

func createTicket(t *testing.T, s *Server, body map[string]any) map[string]any {
	t.Helper()
	status, data := call(t, s, http.MethodPost, "/api/tickets", body, "")
	require.Equal(t, http.StatusCreated, status, string(data))
	return decode[map[string]any](t, data)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, testConfig())

	status, data := call(t, s, http.MethodGet, "/api/health", nil, "")
	require.Equal(t, http.StatusOK, status)
	body := decode[map[string]any](t, data)
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, body["timestamp"])

	status, _ = call(t, s, http.MethodGet, "/health/ready", nil, "")
	assert.Equal(t, http.StatusOK, status)
}

func TestLogin(t *testing.T) {
	s := newTestServer(t, testConfig())

	status, data := call(t, s, http.MethodPost, "/api/auth/login", map[string]any{"role": "agent"}, "")
	require.Equal(t, http.StatusOK, status)
	agent := decode[map[string]any](t, data)
	user := agent["user"].(map[string]any)
	assert.Equal(t, "u2", user["id"])
	assert.Equal(t, "agent", user["role"])
	assert.Equal(t, "IT", user["department"])
	assert.NotEmpty(t, agent["token"])

	status, data = call(t, s, http.MethodPost, "/api/auth/login", map[string]any{}, "")
	require.Equal(t, http.StatusOK, status)
	employee := decode[map[string]any](t, data)["user"].(map[string]any)
	assert.Equal(t, "u4", employee["id"])
	assert.Equal(t, "employee", employee["role"])
	assert.Equal(t, "Sales", employee["department"])
}

func TestTicketLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t, testConfig())

	ticket := createTicket(t, s, map[string]any{
		"title":        "VPN down",
		"description":  "cannot reach intranet",
		"userId":       "u4",
		"departmentId": "d2",
		"categoryId":   "c3",
		"impact":       "Alta",
		"urgency":      "Alta",
	})
	id := ticket["id"].(string)
	assert.Equal(t, "Crítico", ticket["priority"])
	assert.Equal(t, "Asignado", ticket["status"])
	assert.Equal(t, "u2", ticket["assigned_agent_id"])
	assert.Equal(t, "IT Agent 1", ticket["agent_name"])
	assert.Equal(t, "Network", ticket["category_name"])
	assert.Equal(t, "Employee User", ticket["user_name"])

	status, data := call(t, s, http.MethodPatch, "/api/tickets/"+id+"/status",
		map[string]any{"status": "En Proceso", "userId": "u2"}, "")
	require.Equal(t, http.StatusOK, status, string(data))
	assert.Equal(t, "En Proceso", decode[map[string]any](t, data)["status"])

	status, data = call(t, s, http.MethodPost, "/api/tickets/"+id+"/time-logs",
		map[string]any{"userId": "u2", "durationMinutes": 30, "description": "restarted gateway"}, "")
	require.Equal(t, http.StatusCreated, status, string(data))

	status, data = call(t, s, http.MethodGet, "/api/tickets/"+id+"/time-logs", nil, "")
	require.Equal(t, http.StatusOK, status)
	logs := decode[map[string]any](t, data)
	assert.EqualValues(t, 30, logs["totalMinutes"])
	assert.Len(t, logs["logs"], 1)

	status, data = call(t, s, http.MethodGet, "/api/tickets/"+id+"/history", nil, "")
	require.Equal(t, http.StatusOK, status)
	history := decode[[]map[string]any](t, data)
	require.Len(t, history, 3)
	assert.Equal(t, "Auto-assigned to agent", history[0]["action"])
	assert.Equal(t, "Status changed to En Proceso", history[1]["action"])
	assert.Equal(t, "Asignado", history[1]["previous_state"])
	assert.Equal(t, "Logged 30 minutes: restarted gateway", history[2]["action"])

	status, data = call(t, s, http.MethodGet, "/api/tickets?agentId=u2", nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]map[string]any](t, data), 1)

	status, data = call(t, s, http.MethodGet, "/api/metrics", nil, "")
	require.Equal(t, http.StatusOK, status)
	metrics := decode[map[string]any](t, data)
	assert.EqualValues(t, 1, metrics["total"])
	assert.EqualValues(t, 1, metrics["byStatus"].(map[string]any)["En Proceso"])
	assert.EqualValues(t, 1, metrics["byPriority"].(map[string]any)["Crítico"])
}

func TestTicketErrors(t *testing.T) {
	s := newTestServer(t, testConfig())

	status, data := call(t, s, http.MethodPost, "/api/tickets",
		map[string]any{"userId": "u4", "categoryId": "c1"}, "")
	require.Equal(t, http.StatusBadRequest, status)
	body := decode[map[string]any](t, data)
	assert.Equal(t, "title is required", body["error"])
	assert.Equal(t, "VALIDATION_FAILED", body["code"])

	status, data = call(t, s, http.MethodPost, "/api/tickets",
		map[string]any{"title": "x", "userId": "u4", "categoryId": "c9"}, "")
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "NOT_FOUND", decode[map[string]any](t, data)["code"])

	status, _ = call(t, s, http.MethodGet, "/api/tickets/missing", nil, "")
	assert.Equal(t, http.StatusNotFound, status)

	status, data = call(t, s, http.MethodPatch, "/api/tickets/missing/status",
		map[string]any{"status": "Cerrado", "userId": "u2"}, "")
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "ticket not found", decode[map[string]any](t, data)["error"])

	status, _ = call(t, s, http.MethodGet, "/api/nothing-here", nil, "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAvailabilityAndReferenceData(t *testing.T) {
	s := newTestServer(t, testConfig())

	status, data := call(t, s, http.MethodPatch, "/api/users/u2/availability",
		map[string]any{"isAvailable": false}, "")
	require.Equal(t, http.StatusOK, status, string(data))
	body := decode[map[string]any](t, data)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, false, body["isAvailable"])

	ticket := createTicket(t, s, map[string]any{"title": "Printer", "userId": "u4", "categoryId": "c1"})
	assert.Equal(t, "u3", ticket["assigned_agent_id"])

	status, _ = call(t, s, http.MethodPatch, "/api/users/u2/availability", map[string]any{}, "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, data = call(t, s, http.MethodGet, "/api/categories", nil, "")
	require.Equal(t, http.StatusOK, status)
	categories := decode[[]map[string]any](t, data)
	require.Len(t, categories, 3)
	assert.EqualValues(t, 8, categories[0]["sla_hours"])

	status, data = call(t, s, http.MethodGet, "/api/departments", nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]map[string]any](t, data), 3)
}

func TestEnforcedAuth(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.Enforce = true
	s := newTestServer(t, cfg)

	login := func(role string) string {
		_, data := call(t, s, http.MethodPost, "/api/auth/login", map[string]any{"role": role}, "")
		return decode[map[string]any](t, data)["token"].(string)
	}
	agentToken := login("agent")
	employeeToken := login("employee")

	status, _ := call(t, s, http.MethodGet, "/api/tickets", nil, "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = call(t, s, http.MethodGet, "/api/tickets", nil, "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, data := call(t, s, http.MethodPost, "/api/tickets",
		map[string]any{"title": "Mouse", "categoryId": "c1"}, employeeToken)
	require.Equal(t, http.StatusCreated, status, string(data))
	ticket := decode[map[string]any](t, data)
	assert.Equal(t, "u4", ticket["user_id"])
	id := ticket["id"].(string)

	status, _ = call(t, s, http.MethodPatch, "/api/tickets/"+id+"/status",
		map[string]any{"status": "Cerrado"}, employeeToken)
	assert.Equal(t, http.StatusForbidden, status)

	status, data = call(t, s, http.MethodPatch, "/api/tickets/"+id+"/status",
		map[string]any{"status": "En Proceso", "userId": "u1"}, agentToken)
	require.Equal(t, http.StatusOK, status, string(data))

	status, data = call(t, s, http.MethodGet, "/api/tickets/"+id+"/history", nil, agentToken)
	require.Equal(t, http.StatusOK, status)
	history := decode[[]map[string]any](t, data)
	assert.Equal(t, "u2", history[len(history)-1]["user_id"])

	status, _ = call(t, s, http.MethodPatch, "/api/users/u3/availability",
		map[string]any{"isAvailable": false}, agentToken)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = call(t, s, http.MethodGet, "/api/metrics", nil, agentToken)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestRequestCountersRecordSentStatus(t *testing.T) {
	s := newTestServer(t, testConfig())

	status, _ := call(t, s, http.MethodPatch, "/api/tickets/missing/status",
		map[string]any{"status": "Cerrado", "userId": "u2"}, "")
	require.Equal(t, http.StatusBadRequest, status)
	status, _ = call(t, s, http.MethodGet, "/api/tickets/other/history", nil, "")
	require.Equal(t, http.StatusNotFound, status)

	requests, errors := s.Metrics.Snapshot()
	assert.Equal(t, int64(1), requests["/api/tickets/:id/status|PATCH|400"])
	assert.Zero(t, requests["/api/tickets/:id/status|PATCH|200"])
	assert.Equal(t, int64(1), requests["/api/tickets/:id/history|GET|404"])
	assert.Equal(t, int64(1), errors["/api/tickets/:id/status|PATCH|NOT_FOUND"])
	assert.Equal(t, int64(1), errors["/api/tickets/:id/history|GET|NOT_FOUND"])

	status, data := call(t, s, http.MethodGet, "/api/metrics/requests", nil, "")
	require.Equal(t, http.StatusOK, status)
	stats := decode[map[string]map[string]float64](t, data)
	assert.EqualValues(t, 1, stats["requests"]["/api/tickets/:id/status|PATCH|400"])
	assert.EqualValues(t, 1, stats["errors"]["/api/tickets/:id/history|GET|NOT_FOUND"])
}

func TestUserDirectoryAndRoles(t *testing.T) {
	s := newTestServer(t, testConfig())

	status, data := call(t, s, http.MethodGet, "/api/users?role=agent&active=true", nil, "")
	require.Equal(t, http.StatusOK, status, string(data))
	agents := decode[[]map[string]any](t, data)
	require.Len(t, agents, 2)
	assert.Equal(t, "u2", agents[0]["id"])
	assert.Equal(t, "u3", agents[1]["id"])

	status, data = call(t, s, http.MethodGet, "/api/users?departmentId=d2", nil, "")
	require.Equal(t, http.StatusOK, status)
	sales := decode[[]map[string]any](t, data)
	require.Len(t, sales, 1)
	assert.Equal(t, "u4", sales[0]["id"])

	status, data = call(t, s, http.MethodGet, "/api/users?role=wizard", nil, "")
	require.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_FAILED", decode[map[string]any](t, data)["code"])

	status, _ = call(t, s, http.MethodGet, "/api/users?active=maybe", nil, "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, data = call(t, s, http.MethodGet, "/api/roles", nil, "")
	require.Equal(t, http.StatusOK, status)
	roles := decode[[]map[string]any](t, data)
	require.Len(t, roles, 4)
	assert.Equal(t, "admin", roles[0]["id"])
}

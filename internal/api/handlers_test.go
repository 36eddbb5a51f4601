package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doorman-ac/doorman/internal/audit"
	"github.com/doorman-ac/doorman/internal/core"
	"github.com/doorman-ac/doorman/internal/logging"
	"github.com/doorman-ac/doorman/internal/service"
	"github.com/doorman-ac/doorman/internal/store"
	"github.com/doorman-ac/doorman/internal/tasks"
)

var testSigningKey = []byte("test-signing-key")

func testHandler(t *testing.T) http.Handler {
	t.Helper()

	control := &core.AccessControl{
		ResourceType: "course",
		ResourceID:   "algebra-2",
		IsEnabled:    true,
		Strategy:     core.StrategySimple,
		MainOperator: core.LogicOr,
		Groups: []core.RuleGroup{{
			Name:          "enrolled students",
			LogicOperator: core.LogicOr,
			IsEnabled:     true,
			Rules: []core.Rule{{
				Name:          "training cohort",
				LogicOperator: core.LogicAnd,
				AccessLevel:   core.LevelRead,
				IsEnabled:     true,
				Conditions: []core.Condition{{
					FieldPath: "user.groups",
					Operator:  core.OpContains,
					Value:     "training_2025",
					IsEnabled: true,
				}},
			}},
		}},
	}

	taskManager := tasks.NewManager()
	taskManager.Register("control-sync", 0, func(ctx context.Context, logger logging.InternalLogger) error {
		return nil
	})

	srv := NewServer(
		store.NewInMemoryControlStore([]*core.AccessControl{control}),
		taskManager,
		audit.NewInMemoryAuditor(100),
	)
	return srv.Routes(testSigningKey)
}

func adminToken(t *testing.T) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "tester",
		"roles": []string{"admin"},
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString(testSigningKey)
	require.NoError(t, err)
	return signed
}

func evaluateBody(groups ...string) string {
	payload := map[string]any{
		"resourceType": "course",
		"resourceId":   "algebra-2",
		"user": map[string]any{
			"id":     "user-1",
			"role":   "student",
			"groups": groups,
		},
		"now": map[string]any{"date": "2026-03-16", "time": "14:30"},
	}
	raw, _ := json.Marshal(payload)
	return string(raw)
}

func TestHandleHealth(t *testing.T) {
	handler := testHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, HealthCheckRoute, nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestHandleEvaluate(t *testing.T) {
	handler := testHandler(t)

	t.Run("allowed", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, EvaluateRoute,
			strings.NewReader(evaluateBody("training_2025"))))

		require.Equal(t, http.StatusOK, rec.Code)
		var result core.EvaluationResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.True(t, result.Allowed)
		assert.Equal(t, core.LevelRead, result.AccessLevel)
		assert.NotEmpty(t, result.EvaluationTrace)
	})

	t.Run("denied is still 200", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, EvaluateRoute,
			strings.NewReader(evaluateBody("visitors"))))

		require.Equal(t, http.StatusOK, rec.Code)
		var result core.EvaluationResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.False(t, result.Allowed)
		assert.Empty(t, result.AccessLevel)
	})

	t.Run("unknown resource", func(t *testing.T) {
		body := strings.Replace(evaluateBody("training_2025"), "algebra-2", "chemistry-1", 1)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, EvaluateRoute,
			strings.NewReader(body)))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("unknown fields rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, EvaluateRoute,
			strings.NewReader(`{"resourceType":"course","resourceId":"algebra-2","surprise":true}`)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing user id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, EvaluateRoute,
			strings.NewReader(`{"resourceType":"course","resourceId":"algebra-2"}`)))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAdminRoutesRequireToken(t *testing.T) {
	handler := testHandler(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, ListControlsRoute},
		{http.MethodGet, ListAuditsRoute},
		{http.MethodPost, ExplainRoute},
		{http.MethodGet, TaskParent},
	}
	for _, p := range paths {
		t.Run(p.method+" "+p.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(p.method, p.path, nil))
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestAdminRejectsForeignToken(t *testing.T) {
	handler := testHandler(t)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"roles": []string{"admin"},
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("somebody-elses-key"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, ListControlsRoute, nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminListControls(t *testing.T) {
	handler := testHandler(t)

	req := httptest.NewRequest(http.MethodGet, ListControlsRoute, nil)
	req.Header.Set("Authorization", "Bearer "+adminToken(t))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp ListControlsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Total)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "algebra-2", resp.Items[0].ResourceID)
}

func TestAdminGetControl(t *testing.T) {
	handler := testHandler(t)

	t.Run("found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, AdminParent+"controls/course/algebra-2", nil)
		req.Header.Set("Authorization", "Bearer "+adminToken(t))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var control core.AccessControl
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &control))
		assert.Equal(t, "course", control.ResourceType)
	})

	t.Run("not found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, AdminParent+"controls/course/chemistry-1", nil)
		req.Header.Set("Authorization", "Bearer "+adminToken(t))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHandleExplain(t *testing.T) {
	handler := testHandler(t)

	req := httptest.NewRequest(http.MethodPost, ExplainRoute,
		strings.NewReader(evaluateBody("training_2025")))
	req.Header.Set("Authorization", "Bearer "+adminToken(t))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp service.ExplainResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Allowed)
	assert.False(t, resp.Replayed)
	require.NotNil(t, resp.Result)
	assert.NotEmpty(t, resp.Result.GroupResults)
}

func TestTaskEndpoints(t *testing.T) {
	handler := testHandler(t)

	t.Run("list", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, TaskParent, nil)
		req.Header.Set("Authorization", "Bearer "+adminToken(t))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var status []tasks.TaskStatus
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
		require.Len(t, status, 1)
		assert.Equal(t, "control-sync", status[0].Name)
	})

	t.Run("trigger known", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, TaskParent+"control-sync/trigger", nil)
		req.Header.Set("Authorization", "Bearer "+adminToken(t))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp TriggerTaskResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "triggered", resp.Status)
	})

	t.Run("trigger unknown is 404", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, TaskParent+"nope/trigger", nil)
		req.Header.Set("Authorization", "Bearer "+adminToken(t))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("logs unknown is 404", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, TaskParent+"nope/logs", nil)
		req.Header.Set("Authorization", "Bearer "+adminToken(t))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestAdminAuditEndpoint(t *testing.T) {
	handler := testHandler(t)

	// generate one decision first
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, EvaluateRoute,
		strings.NewReader(evaluateBody("training_2025"))))
	require.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodGet, ListAuditsRoute+"?actor_id=user-1", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken(t))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var entries []core.AuditEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "access.evaluate", entries[0].Action)
	assert.True(t, entries[0].Allowed)
	assert.NotEmpty(t, entries[0].ID)
}

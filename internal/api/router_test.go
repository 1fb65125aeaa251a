package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neko-san1432/citizenlink-insights-go/internal/analysis/clustering"
	"github.com/neko-san1432/citizenlink-insights-go/internal/config"
	"github.com/neko-san1432/citizenlink-insights-go/internal/database"
	"github.com/neko-san1432/citizenlink-insights-go/internal/middleware"
	"github.com/neko-san1432/citizenlink-insights-go/internal/models"
	"github.com/neko-san1432/citizenlink-insights-go/internal/repository"
	"github.com/neko-san1432/citizenlink-insights-go/internal/scheduler"
	"github.com/neko-san1432/citizenlink-insights-go/internal/service"
)

const testSecret = "router-test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func fptr(v float64) *float64 { return &v }

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	dir := t.TempDir()

	db, err := database.Open(filepath.Join(dir, "insights.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.NewMigrationManager(db).RunMigrations(context.Background()))

	boundaries := filepath.Join(dir, "boundaries.json")
	require.NoError(t, os.WriteFile(boundaries, []byte(`[
	  {"name": "Aplaya", "geojson": {"type": "Polygon", "coordinates": [[[125.30, 6.70], [125.40, 6.70], [125.40, 6.80], [125.30, 6.80], [125.30, 6.70]]]}}
	]`), 0o644))

	complaints := repository.NewComplaintRepository(db)
	clusters := repository.NewClusterRepository(db)
	runs := repository.NewClusteringRunRepository(db)

	submitted := time.Now().Add(-time.Hour)
	for i, lat := range []float64{6.7500, 6.7501, 6.7502} {
		c := models.Complaint{
			ID:             []string{"c1", "c2", "c3"}[i],
			Type:           "Pothole",
			Priority:       models.PriorityHigh,
			WorkflowStatus: "new",
			Latitude:       fptr(lat),
			Longitude:      fptr(125.35),
			SubmittedAt:    submitted,
		}
		require.NoError(t, complaints.Create(context.Background(), &c))
	}

	cfg := &config.Config{JWTSecret: testSecret, RateLimitRPS: 1000, RateLimitBurst: 1000}
	cfg.Prioritization = clustering.DefaultParams()
	cfg.Scheduler = scheduler.DefaultConfig()
	cfg.Scheduler.Enabled = false

	clusteringService := service.NewClusteringService(complaints, clusters, runs)
	return SetupRouter(cfg, Services{
		Clustering: clusteringService,
		Causality:  service.NewCausalityService(clusters),
		Insights:   service.NewInsightsService(complaints, repository.NewBoundaryRepository(boundaries), cfg.Prioritization),
		Scheduler:  scheduler.NewClusteringScheduler(cfg.Scheduler, clusteringService, clusters, complaints),
	})
}

func bearer(t *testing.T, role string) string {
	t.Helper()
	token, err := middleware.SignToken(testSecret, role, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	require.NoError(t, err)
	return "Bearer " + token
}

func do(t *testing.T, r *gin.Engine, method, path, role, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if role != "" {
		req.Header.Set("Authorization", bearer(t, role))
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func TestHealthAndMetrics(t *testing.T) {
	r := setupRouter(t)

	w, _ := do(t, r, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = do(t, r, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "citizenlink_http_requests_total")
}

func TestRoleGuards(t *testing.T) {
	r := setupRouter(t)

	w, _ := do(t, r, http.MethodGet, "/api/v1/clusters", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = do(t, r, http.MethodGet, "/api/v1/clusters", "citizen", "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = do(t, r, http.MethodPost, "/api/v1/clusters/detect", middleware.RoleLGUAdmin, `{}`)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = do(t, r, http.MethodPost, "/api/v1/clustering/trigger", middleware.RoleComplaintCoordinator, "")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDetectAndListClusters(t *testing.T) {
	r := setupRouter(t)

	w, env := do(t, r, http.MethodPost, "/api/v1/clusters/detect", middleware.RoleComplaintCoordinator,
		`{"radius_km": 0.5, "min_complaints": 2}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result service.DetectResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	require.Len(t, result.Clusters, 1)
	assert.Equal(t, 3, result.ComplaintsScanned)

	w, env = do(t, r, http.MethodGet, "/api/v1/clusters", middleware.RoleLGUAdmin, "")
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Clusters []models.ComplaintCluster `json:"clusters"`
		Total    int                       `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Equal(t, 1, list.Total)

	w, _ = do(t, r, http.MethodGet, "/api/v1/clusters/runs", middleware.RoleAdmin, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), models.RunStatusCompleted)

	t.Run("validation maps to 400", func(t *testing.T) {
		w, env := do(t, r, http.MethodPost, "/api/v1/clusters/detect", middleware.RoleAdmin, `{"radius_km": -1}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Radius must be greater than 0", env.Message)
	})

	t.Run("bad date maps to 400", func(t *testing.T) {
		w, _ := do(t, r, http.MethodPost, "/api/v1/clusters/detect", middleware.RoleAdmin, `{"date_from": "soon"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestComplaintProximity(t *testing.T) {
	r := setupRouter(t)

	w, env := do(t, r, http.MethodGet, "/api/v1/complaints/similar?lat=6.75&lng=125.35&radius_km=0.5", middleware.RoleAdmin, "")
	require.Equal(t, http.StatusOK, w.Code)
	var similar struct {
		Complaints []models.NearbyComplaint `json:"complaints"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &similar))
	require.Len(t, similar.Complaints, 3)
	assert.Equal(t, "c1", similar.Complaints[0].ID)

	w, _ = do(t, r, http.MethodGet, "/api/v1/complaints/similar?lng=125.35", middleware.RoleAdmin, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, r, http.MethodGet, "/api/v1/complaints/similar?lat=91&lng=125.35", middleware.RoleAdmin, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = do(t, r, http.MethodGet, "/api/v1/complaints/c1/nearest?limit=1", middleware.RoleAdmin, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &similar))
	require.Len(t, similar.Complaints, 1)
	assert.Equal(t, "c2", similar.Complaints[0].ID)

	w, _ = do(t, r, http.MethodGet, "/api/v1/complaints/nope/nearest", middleware.RoleAdmin, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCausalityEndpoints(t *testing.T) {
	r := setupRouter(t)

	// Traffic 100m north of the flood, one hour later
	body := `{
	  "cause":  {"category": "Flooding", "timestamp": "2026-01-19T08:00:00Z", "lat": 6.75, "lng": 125.35},
	  "effect": {"category": "Traffic",  "timestamp": "2026-01-19T09:00:00Z", "lat": 6.7509, "lng": 125.35}
	}`
	w, env := do(t, r, http.MethodPost, "/api/v1/causality/verify", middleware.RoleComplaintCoordinator, body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var verdict struct {
		IsLinked bool    `json:"isLinked"`
		Strength float64 `json:"strength"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &verdict))
	assert.True(t, verdict.IsLinked)
	assert.Equal(t, 0.85, verdict.Strength)

	w, _ = do(t, r, http.MethodPost, "/api/v1/causality/verify", middleware.RoleAdmin, `{"cause": {"category": "Fire"}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = do(t, r, http.MethodPost, "/api/v1/causality/graph", middleware.RoleAdmin,
		`{"clusters": [{"category": "Flooding", "lat": 6.75, "lng": 125.35, "timestamp": "2026-01-19T08:00:00Z"},
		               {"category": "Traffic", "lat": 6.7509, "lng": 125.35, "timestamp": "2026-01-19T09:00:00Z"}]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), "Flooding → Traffic")

	w, _ = do(t, r, http.MethodGet, "/api/v1/causality/active", middleware.RoleAdmin, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = do(t, r, http.MethodGet, "/api/v1/causality/rules", middleware.RoleAdmin, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Heavy Rain")
}

func TestInsightsAndScheduler(t *testing.T) {
	r := setupRouter(t)

	w, env := do(t, r, http.MethodGet, "/api/v1/insights/barangays?period=weekly", middleware.RoleLGUAdmin, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var report models.PrioritizationReport
	require.NoError(t, json.Unmarshal(env.Data, &report))
	assert.Equal(t, "weekly", report.Period)
	require.NotEmpty(t, report.Barangays)
	assert.Equal(t, "Aplaya", report.Barangays[0].Barangay)
	assert.Equal(t, 3, report.Barangays[0].ComplaintCount)

	w, env = do(t, r, http.MethodGet, "/api/v1/clustering/status", middleware.RoleAdmin, "")
	require.Equal(t, http.StatusOK, w.Code)
	var status scheduler.Status
	require.NoError(t, json.Unmarshal(env.Data, &status))
	assert.False(t, status.Enabled)

	w, env = do(t, r, http.MethodPost, "/api/v1/clustering/trigger", middleware.RoleAdmin, "")
	require.Equal(t, http.StatusOK, w.Code)
	var result scheduler.RunResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.True(t, result.Success)
}

package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	authService "gitlab.com/maplesense1/phm.server/src/production/PHM.ApiService/implementation/auth"
	"gitlab.com/maplesense1/phm.server/src/production/PHM.ApiService/server"
	config "gitlab.com/maplesense1/phm.server/src/production/PHM.Config"
	database "gitlab.com/maplesense1/phm.server/src/production/PHM.Database"
	"gitlab.com/maplesense1/phm.server/src/production/PHM.Database/databasetest"
	logger "gitlab.com/maplesense1/phm.server/src/production/PHM.Logger"
	phmmodels "gitlab.com/maplesense1/phm.server/src/production/PHM.Models"
	api_models "gitlab.com/maplesense1/phm.server/src/production/PHM.Models/api"
	auth_models "gitlab.com/maplesense1/phm.server/src/production/PHM.Models/auth"
	implementation "gitlab.com/maplesense1/phm.server/src/production/PHM.Repository/Implementation"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "router-test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
	gw     *database.Gateway
	cfg    *config.Config
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gw := databasetest.NewGateway(t)
	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWTSecretKey:        testSecret,
			JWTIssuer:           "phm-test",
			AccessTokenDuration: 24 * time.Hour,
		},
		CORS: config.CORSConfig{
			AllowedOrigins: []string{"http://localhost:3000"},
			AllowedMethods: []string{"GET", "POST", "PUT"},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
		},
	}

	s := &testServer{
		t:      t,
		router: server.NewRouter(server.Dependencies{Config: cfg, Logger: logger.Nop(), Gateway: gw}),
		gw:     gw,
		cfg:    cfg,
	}

	accounts := implementation.NewSQLAccountRepository(gw)
	for _, acct := range []struct{ username, password, name string }{
		{"agro01", "pass01", "Agronomist 1"},
		{"farmer001", "pwd001", "Demo Farmer"},
	} {
		hash, err := authService.HashPassword(acct.password, bcrypt.MinCost)
		require.NoError(t, err)
		_, err = accounts.Create(context.Background(), auth_models.NewAccount(acct.username, hash, acct.name, "Soil Science", "", ""))
		require.NoError(t, err)
	}
	return s
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) login(username, password string) string {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/auth/login", "", api_models.LoginRequest{Username: username, Password: password})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	var resp api_models.AuthResponse
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Token
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) string {
	return decode[api_models.ErrorResponse](t, w).Error
}

func validPlant() map[string]any {
	return map[string]any{
		"plant_name":  "plant900",
		"species":     "Tomato",
		"age_days":    42,
		"location":    "Field A",
		"farmer_name": "John Smith",
		"notes":       "Notes for plant900 - Tomato",
	}
}

func TestLogin_Scenarios(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"username": "agro01", "password": "pass01"})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[api_models.AuthResponse](t, w)
	assert.Equal(t, "agronomist", resp.User.Role)
	assert.Equal(t, "agro01", resp.User.Username)
	assert.NotEmpty(t, resp.Token)

	w = s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"username": "farmer001", "password": "pwd001"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "farmer", decode[api_models.AuthResponse](t, w).User.Role)

	w = s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"username": "agro01", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid credentials", errorOf(t, w))

	w = s.do(http.MethodPost, "/api/auth/login", "", map[string]string{"username": "agro01"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Username and password required", errorOf(t, w))

	w = s.do(http.MethodPost, "/api/auth/login", "", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLogin_TokenValidFor24Hours(t *testing.T) {
	s := newTestServer(t)
	before := time.Now()
	token := s.login("farmer001", "pwd001")

	claims := &api_models.AccessClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)

	assert.Equal(t, "farmer", claims.Role)
	assert.Equal(t, 24*time.Hour, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
	assert.WithinDuration(t, before.Add(24*time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestProtectedRoutes_TokenChecks(t *testing.T) {
	s := newTestServer(t)
	farmer := s.login("farmer001", "pwd001")

	expiredSvc := server.JWTService(s.cfg.Auth).WithClock(func() time.Time { return time.Now().Add(-25 * time.Hour) })
	expired, _, err := expiredSvc.GenerateToken(&auth_models.Account{AgronomistID: 1, Username: "agro01"}, auth_models.RoleAgronomist)
	require.NoError(t, err)

	routes := []struct {
		method, path string
		agronomist   bool
	}{
		{http.MethodGet, "/api/plants", false},
		{http.MethodGet, "/api/plants/1", false},
		{http.MethodPost, "/api/plants", true},
		{http.MethodPut, "/api/plants/1", true},
		{http.MethodGet, "/api/healthlogs/1", false},
		{http.MethodPost, "/api/healthlogs/1", true},
		{http.MethodGet, "/api/recommendations/1", false},
		{http.MethodPost, "/api/recommendations", true},
		{http.MethodGet, "/api/alerts/1", false},
		{http.MethodPost, "/api/alerts", true},
	}

	for _, r := range routes {
		t.Run(r.method+" "+r.path, func(t *testing.T) {
			w := s.do(r.method, r.path, "", nil)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Equal(t, "Access token required", errorOf(t, w))

			w = s.do(r.method, r.path, "garbage.token.value", nil)
			assert.Equal(t, http.StatusForbidden, w.Code)
			assert.Equal(t, "Invalid or expired token", errorOf(t, w))

			w = s.do(r.method, r.path, expired, nil)
			assert.Equal(t, http.StatusForbidden, w.Code)

			if r.agronomist {
				w = s.do(r.method, r.path, farmer, validPlant())
				assert.Equal(t, http.StatusForbidden, w.Code)
				assert.Equal(t, "Agronomist access required", errorOf(t, w))
			}
		})
	}
}

func TestPlants_RoundTripAndUpdate(t *testing.T) {
	s := newTestServer(t)
	agro := s.login("agro01", "pass01")
	farmer := s.login("farmer001", "pwd001")

	w := s.do(http.MethodPost, "/api/plants", agro, validPlant())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[phmmodels.Plant](t, w)
	assert.NotZero(t, created.PlantID)
	assert.Equal(t, "plant900", created.PlantName)
	assert.Equal(t, 42, created.AgeDays)

	w = s.do(http.MethodGet, "/api/plants/"+itoa(created.PlantID), farmer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, created, decode[phmmodels.Plant](t, w))

	update := validPlant()
	update["species"] = "Pepper"
	delete(update, "notes")
	w = s.do(http.MethodPut, "/api/plants/"+itoa(created.PlantID), agro, update)
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode[phmmodels.Plant](t, w)
	assert.Equal(t, "Pepper", updated.Species)
	assert.Equal(t, "", updated.Notes)

	incomplete := validPlant()
	delete(incomplete, "farmer_name")
	w = s.do(http.MethodPost, "/api/plants", agro, incomplete)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Missing required fields", errorOf(t, w))

	w = s.do(http.MethodPut, "/api/plants/"+itoa(created.PlantID), agro, incomplete)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPut, "/api/plants/9999", agro, validPlant())
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Plant not found", errorOf(t, w))

	for _, path := range []string{"/api/plants/9999", "/api/plants/abc"} {
		w = s.do(http.MethodGet, path, farmer, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		assert.Equal(t, "Plant not found", errorOf(t, w))
	}
}

func TestPlants_FilterBySpecies(t *testing.T) {
	s := newTestServer(t)
	agro := s.login("agro01", "pass01")

	for _, species := range []string{"Tomato", "Corn", "Tomato", "tomato", "Tomatillo"} {
		p := validPlant()
		p["species"] = species
		require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/plants", agro, p).Code)
	}

	w := s.do(http.MethodGet, "/api/plants?species=Tomato", agro, nil)
	require.Equal(t, http.StatusOK, w.Code)
	plants := decode[[]phmmodels.Plant](t, w)
	require.Len(t, plants, 2)
	for _, p := range plants {
		assert.Equal(t, "Tomato", p.Species)
	}
	assert.Greater(t, plants[0].PlantID, plants[1].PlantID)

	w = s.do(http.MethodGet, "/api/plants?species=Rice", agro, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestHealthLogs(t *testing.T) {
	s := newTestServer(t)
	agro := s.login("agro01", "pass01")

	logCount := func() int {
		var n int
		require.NoError(t, s.gw.QueryRow(context.Background(), "SELECT COUNT(*) FROM plant_health_logs").Scan(&n))
		return n
	}

	w := s.do(http.MethodPost, "/api/healthlogs/9999", agro, map[string]any{"soil_ph": 6.5})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Plant not found", errorOf(t, w))
	assert.Equal(t, 0, logCount())

	plant := decode[phmmodels.Plant](t, s.do(http.MethodPost, "/api/plants", agro, validPlant()))
	path := "/api/healthlogs/" + itoa(plant.PlantID)

	w = s.do(http.MethodPost, path, agro, map[string]any{"soil_ph": 6.5, "sunlight_lux": 12000})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	todayLog := decode[phmmodels.HealthLog](t, w)
	assert.Equal(t, time.Now().UTC().Format(phmmodels.DateLayout), todayLog.LogDate.String())
	require.NotNil(t, todayLog.SoilPH)
	assert.InDelta(t, 6.5, *todayLog.SoilPH, 1e-9)
	assert.Nil(t, todayLog.Humidity)

	old := time.Now().UTC().AddDate(0, 0, -10).Format(phmmodels.DateLayout)
	w = s.do(http.MethodPost, path, agro, map[string]any{"log_date": old, "humidity": 55.5})
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(http.MethodPost, path, agro, map[string]any{"log_date": "yesterday"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, path, agro, nil)
	require.Equal(t, http.StatusOK, w.Code)
	logs := decode[[]phmmodels.HealthLog](t, w)
	require.Len(t, logs, 2)
	assert.Equal(t, todayLog.LogID, logs[0].LogID)

	w = s.do(http.MethodGet, path+"?days=7", agro, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]phmmodels.HealthLog](t, w), 1)

	for _, bad := range []string{"-1", "abc", "1.5"} {
		w = s.do(http.MethodGet, path+"?days="+bad, agro, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, bad)
	}

	w = s.do(http.MethodGet, "/api/healthlogs/abc", agro, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestRecommendations(t *testing.T) {
	s := newTestServer(t)
	agro := s.login("agro01", "pass01")
	plant := decode[phmmodels.Plant](t, s.do(http.MethodPost, "/api/plants", agro, validPlant()))

	w := s.do(http.MethodPost, "/api/recommendations", agro, map[string]any{"plant_id": plant.PlantID})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Plant ID and advice text required", errorOf(t, w))

	w = s.do(http.MethodPost, "/api/recommendations", agro, map[string]any{"plant_id": 9999, "advice_text": "water"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Plant not found", errorOf(t, w))

	w = s.do(http.MethodPost, "/api/recommendations", agro, map[string]any{"plant_id": itoa(plant.PlantID), "advice_text": "Prune lower leaves"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	rec := decode[phmmodels.Recommendation](t, w)
	assert.Equal(t, "Agronomist 1", rec.AgronomistName)
	assert.Equal(t, "Soil Science", rec.Specialization)
	assert.Equal(t, plant.PlantID, rec.PlantID)

	w = s.do(http.MethodGet, "/api/recommendations/"+itoa(plant.PlantID), agro, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]phmmodels.Recommendation](t, w)
	require.Len(t, list, 1)
	assert.Equal(t, rec.RecID, list[0].RecID)
}

func TestRecommendations_UnknownAuthor(t *testing.T) {
	s := newTestServer(t)
	agro := s.login("agro01", "pass01")
	plant := decode[phmmodels.Plant](t, s.do(http.MethodPost, "/api/plants", agro, validPlant()))

	ghost, _, err := server.JWTService(s.cfg.Auth).GenerateToken(
		&auth_models.Account{AgronomistID: 4242, Username: "agro99", FullName: "Ghost"}, auth_models.RoleAgronomist)
	require.NoError(t, err)

	w := s.do(http.MethodPost, "/api/recommendations", ghost, map[string]any{"plant_id": plant.PlantID, "advice_text": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Agronomist not found", errorOf(t, w))
}

func TestAlerts(t *testing.T) {
	s := newTestServer(t)
	agro := s.login("agro01", "pass01")
	plant := decode[phmmodels.Plant](t, s.do(http.MethodPost, "/api/plants", agro, validPlant()))

	w := s.do(http.MethodPost, "/api/alerts", agro, map[string]any{"message": "dry"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Plant ID and message required", errorOf(t, w))

	w = s.do(http.MethodPost, "/api/alerts", agro, map[string]any{"plant_id": "abc", "message": "dry"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodPost, "/api/alerts", agro, map[string]any{"plant_id": plant.PlantID, "message": "Low soil moisture"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "active", decode[phmmodels.Alert](t, w).Status)

	w = s.do(http.MethodPost, "/api/alerts", agro, map[string]any{"plant_id": plant.PlantID, "message": "ok now", "status": "resolved"})
	require.Equal(t, http.StatusCreated, w.Code)

	path := "/api/alerts/" + itoa(plant.PlantID)
	assert.Len(t, decode[[]phmmodels.Alert](t, s.do(http.MethodGet, path, agro, nil)), 2)

	resolved := decode[[]phmmodels.Alert](t, s.do(http.MethodGet, path+"?status=resolved", agro, nil))
	require.Len(t, resolved, 1)
	assert.Equal(t, "ok now", resolved[0].Message)
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	require.NoError(t, s.gw.Close())
	w = s.do(http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestStoreFailureIsInternal(t *testing.T) {
	s := newTestServer(t)
	agro := s.login("agro01", "pass01")
	require.NoError(t, s.gw.Close())

	w := s.do(http.MethodGet, "/api/plants", agro, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", errorOf(t, w))
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestServer(t *testing.T) (*application, *httptest.Server) {
	t.Helper()
	cfg := defaultConfig()
	cfg.JWTSecret = "test-secret"
	app := &application{
		config:  cfg,
		storage: newMemoryStorage(),
	}
	srv := httptest.NewServer(composeRoutes(app))
	t.Cleanup(srv.Close)
	return app, srv
}

func registerTestUser(t *testing.T, app *application, username string) (*user, string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	u, err := app.storage.createUser(username, hash)
	require.NoError(t, err)
	token, err := app.createToken(u)
	require.NoError(t, err)
	return u, token
}

func doJSON(t *testing.T, method, url, token string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	return resp, data
}

func TestHealthcheck(t *testing.T) {
	_, srv := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/healthcheck", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got map[string]string
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "available", got["status"])
}

func TestRegisterAndLogin(t *testing.T) {
	_, srv := newTestServer(t)

	creds := map[string]string{"username": "alice", "password": "password123"}
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/register", "", creds)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created user
	require.NoError(t, json.Unmarshal(body, &created))
	assert.Equal(t, "alice", created.Username)
	assert.NotZero(t, created.ID)
	assert.NotContains(t, string(body), "password")

	// Duplicate username is rejected at registration.
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/register", "", creds)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, body = doJSON(t, http.MethodPost, srv.URL+"/api/login", "", creds)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var login map[string]string
	require.NoError(t, json.Unmarshal(body, &login))
	require.NotEmpty(t, login["token"])

	resp, body = doJSON(t, http.MethodGet, srv.URL+"/api/user", login["token"], nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var current user
	require.NoError(t, json.Unmarshal(body, &current))
	assert.Equal(t, created.ID, current.ID)
}

func TestRegister_Validation(t *testing.T) {
	_, srv := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/register", "",
		map[string]string{"username": "alice", "password": "short"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "password")
}

func TestLogin_WrongPassword(t *testing.T) {
	app, srv := newTestServer(t)
	registerTestUser(t, app, "alice")

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/login", "",
		map[string]string{"username": "alice", "password": "not-the-password"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestUnauthenticated(t *testing.T) {
	_, srv := newTestServer(t)

	for _, path := range []string{"/api/crops", "/api/inventory", "/api/tasks", "/api/user", "/api/weather"} {
		resp, body := doJSON(t, http.MethodGet, srv.URL+path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
		assert.Empty(t, body, "401 must carry no body")
	}

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/crops", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Empty(t, body)
}

func TestCropLifecycle(t *testing.T) {
	app, srv := newTestServer(t)
	alice, token := registerTestUser(t, app, "alice")

	draft := map[string]any{
		"name":                "Corn",
		"quantity":            50,
		"plantedDate":         "2026-03-10",
		"expectedHarvestDate": "2026-08-01",
		"status":              "Growing",
	}
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/crops", token, draft)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created crop
	require.NoError(t, json.Unmarshal(body, &created))
	assert.NotZero(t, created.ID)
	assert.Equal(t, alice.ID, created.UserID)

	resp, body = doJSON(t, http.MethodGet, srv.URL+"/api/crops", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var crops []crop
	require.NoError(t, json.Unmarshal(body, &crops))
	require.Len(t, crops, 1)
	assert.Equal(t, "Corn", crops[0].Name)
	assert.Equal(t, 50, crops[0].Quantity)
	assert.Equal(t, "Growing", crops[0].Status)
	assert.Equal(t, alice.ID, crops[0].UserID)
	assert.Equal(t, "2026-03-10", crops[0].PlantedDate.Format(calendarDateLayout))
}

func TestCreateCrop_Validation(t *testing.T) {
	app, srv := newTestServer(t)
	_, token := registerTestUser(t, app, "alice")

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/crops", token,
		map[string]any{"quantity": -1, "status": "Growing"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "quantity")
	assert.Contains(t, string(body), "name")
}

func TestInventoryLifecycle(t *testing.T) {
	app, srv := newTestServer(t)
	alice, token := registerTestUser(t, app, "alice")

	draft := map[string]any{
		"name":     "Fertilizer",
		"category": "Supplies",
		"quantity": 5,
		"unit":     "bags",
	}
	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/inventory", token, draft)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/inventory", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var items []inventoryItem
	require.NoError(t, json.Unmarshal(body, &items))
	require.Len(t, items, 1)
	assert.Equal(t, "Fertilizer", items[0].Name)
	assert.Equal(t, "bags", items[0].Unit)
	assert.Equal(t, alice.ID, items[0].UserID)
}

func TestTaskCompletion(t *testing.T) {
	app, srv := newTestServer(t)
	_, token := registerTestUser(t, app, "alice")

	draft := map[string]any{
		"title":       "Water field",
		"description": "North field needs irrigation",
		"dueDate":     "2026-04-02",
		"priority":    "High",
		"completed":   false,
	}
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/tasks", token, draft)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created task
	require.NoError(t, json.Unmarshal(body, &created))
	assert.False(t, created.Completed)

	url := fmt.Sprintf("%s/api/tasks/%d/complete", srv.URL, created.ID)
	resp, body = doJSON(t, http.MethodPatch, url, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var completed task
	require.NoError(t, json.Unmarshal(body, &completed))
	assert.True(t, completed.Completed)

	resp, body = doJSON(t, http.MethodGet, srv.URL+"/api/tasks", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var tasks []task
	require.NoError(t, json.Unmarshal(body, &tasks))
	require.Len(t, tasks, 1)
	assert.True(t, tasks[0].Completed)
}

func TestTaskCompletion_CrossOwner(t *testing.T) {
	app, srv := newTestServer(t)
	alice, aliceToken := registerTestUser(t, app, "alice")
	_, bobToken := registerTestUser(t, app, "bob")

	created, err := app.storage.createTask(alice.ID, testTaskDraft())
	require.NoError(t, err)

	url := fmt.Sprintf("%s/api/tasks/%d/complete", srv.URL, created.ID)
	resp, body := doJSON(t, http.MethodPatch, url, bobToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Empty(t, body)

	resp, body = doJSON(t, http.MethodGet, srv.URL+"/api/tasks", aliceToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var tasks []task
	require.NoError(t, json.Unmarshal(body, &tasks))
	require.Len(t, tasks, 1)
	assert.False(t, tasks[0].Completed)
}

func TestTaskCompletion_Missing(t *testing.T) {
	app, srv := newTestServer(t)
	_, token := registerTestUser(t, app, "alice")

	resp, _ := doJSON(t, http.MethodPatch, srv.URL+"/api/tasks/999/complete", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPatch, srv.URL+"/api/tasks/abc/complete", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWeather(t *testing.T) {
	app, srv := newTestServer(t)
	_, token := registerTestUser(t, app, "alice")

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/api/weather", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got map[string]string
	require.NoError(t, json.Unmarshal(body, &got))
	assert.Equal(t, "Sunny", got["condition"])
	assert.Equal(t, "24°C", got["temperature"])
}

func TestOutOfEnumerationValuesAccepted(t *testing.T) {
	app, srv := newTestServer(t)
	_, token := registerTestUser(t, app, "alice")

	// Status and priority are free text on the wire.
	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/crops", token, map[string]any{
		"name":                "Kale",
		"quantity":            1,
		"plantedDate":         "2026-01-01",
		"expectedHarvestDate": "2026-02-01",
		"status":              "Thriving",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/api/tasks", token, map[string]any{
		"title":    "Fix fence",
		"dueDate":  "2026-01-05",
		"priority": "Whenever",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
}

package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/batangdelosreyes03-bit/sidehustle-telegram-bot/api"
	"github.com/batangdelosreyes03-bit/sidehustle-telegram-bot/internal/config"
	"github.com/batangdelosreyes03-bit/sidehustle-telegram-bot/internal/report"
	"github.com/batangdelosreyes03-bit/sidehustle-telegram-bot/pkg/models"
	"github.com/batangdelosreyes03-bit/sidehustle-telegram-bot/pkg/repository/mock"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "op-passw0rd"

func testServer(t *testing.T, store *mock.Store) *httptest.Server {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	cfg := &config.Config{
		BotToken:          "tok",
		JWTSecret:         "api-secret",
		TokenDuration:     time.Hour,
		AdminPasswordHash: string(hash),
	}

	srv := httptest.NewServer(api.SetupRoutes(cfg, "test", "now", report.NewService(store)))
	t.Cleanup(srv.Close)
	return srv
}

func signin(t *testing.T, srv *httptest.Server, password string) (*http.Response, string) {
	t.Helper()

	body, _ := json.Marshal(map[string]string{"password": password})
	resp, err := http.Post(srv.URL+"/v1/auth/signin", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("signin: %v", err)
	}

	var payload struct {
		Token string `json:"token"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&payload)
	resp.Body.Close()
	return resp, payload.Token
}

func authedGet(t *testing.T, srv *httptest.Server, path, token string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodGet, srv.URL+path, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	return resp
}

func TestHealthAndVersion(t *testing.T) {
	srv := testServer(t, mock.NewStore())

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status = %d", resp.StatusCode)
	}

	resp2, err := http.Get(srv.URL + "/version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	defer resp2.Body.Close()
	var v struct {
		Version string `json:"version"`
	}
	if err := json.NewDecoder(resp2.Body).Decode(&v); err != nil {
		t.Fatalf("decode version: %v", err)
	}
	if v.Version != "test" {
		t.Fatalf("version = %q", v.Version)
	}
}

func TestSignin(t *testing.T) {
	srv := testServer(t, mock.NewStore())

	resp, token := signin(t, srv, testPassword)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("signin status = %d", resp.StatusCode)
	}
	if token == "" {
		t.Fatalf("expected token")
	}

	resp, _ = signin(t, srv, "wrong")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("wrong password status = %d", resp.StatusCode)
	}
}

func TestSigninDisabledWithoutHash(t *testing.T) {
	cfg := &config.Config{BotToken: "tok", JWTSecret: "s", TokenDuration: time.Hour}
	srv := httptest.NewServer(api.SetupRoutes(cfg, "test", "now", report.NewService(mock.NewStore())))
	defer srv.Close()

	body, _ := json.Marshal(map[string]string{"password": "anything"})
	resp, err := http.Post(srv.URL+"/v1/auth/signin", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("signin: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 when no operator hash configured, got %d", resp.StatusCode)
	}
}

func TestProtectedEndpointsRequireToken(t *testing.T) {
	srv := testServer(t, mock.NewStore())

	for _, path := range []string{"/v1/dashboard", "/v1/users", "/v1/jobs", "/v1/metrics/weekly", "/v1/users/1"} {
		resp := authedGet(t, srv, path, "")
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("%s without token: status = %d", path, resp.StatusCode)
		}

		resp = authedGet(t, srv, path, "garbage-token")
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("%s with bad token: status = %d", path, resp.StatusCode)
		}
	}
}

func TestDashboardEndpoint(t *testing.T) {
	store := mock.NewStore()
	store.Users[1] = &models.User{ID: 1, Username: "alice", Role: models.RoleFreelancer, Created: time.Now().UnixMilli()}
	store.Jobs = []*models.Job{{ID: 1, ClientID: 1, Title: "T", Created: time.Now().UnixMilli()}}
	srv := testServer(t, store)

	_, token := signin(t, srv, testPassword)
	resp := authedGet(t, srv, "/v1/dashboard", token)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("dashboard status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "application/json") {
		t.Fatalf("content type = %q", ct)
	}

	var d report.Dashboard
	if err := json.NewDecoder(resp.Body).Decode(&d); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if d.TotalUsers != 1 || d.TotalJobs != 1 {
		t.Fatalf("unexpected dashboard %#v", d)
	}
}

func TestUserEndpoints(t *testing.T) {
	store := mock.NewStore()
	store.Users[5] = &models.User{ID: 5, Username: "carol", Role: models.RoleClient, Created: 1}
	srv := testServer(t, store)
	_, token := signin(t, srv, testPassword)

	resp := authedGet(t, srv, "/v1/users", token)
	var users []models.User
	if err := json.NewDecoder(resp.Body).Decode(&users); err != nil {
		t.Fatalf("decode users: %v", err)
	}
	resp.Body.Close()
	if len(users) != 1 || users[0].ID != 5 {
		t.Fatalf("unexpected users %#v", users)
	}

	resp = authedGet(t, srv, "/v1/users/5", token)
	var detail report.UserDetail
	if err := json.NewDecoder(resp.Body).Decode(&detail); err != nil {
		t.Fatalf("decode detail: %v", err)
	}
	resp.Body.Close()
	if detail.User.ID != 5 {
		t.Fatalf("unexpected detail %#v", detail)
	}

	resp = authedGet(t, srv, "/v1/users/404", token)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing user status = %d", resp.StatusCode)
	}

	resp = authedGet(t, srv, "/v1/users/abc", token)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad id status = %d", resp.StatusCode)
	}
}

func TestWeeklyEndpoint(t *testing.T) {
	store := mock.NewStore()
	date := time.Now().UTC().AddDate(0, 0, -1).Format("2006-01-02")
	store.Metrics[date] = &models.DailyMetric{Date: date, NewUsers: 3, NewJobs: 1, ActiveUsers: 5}
	srv := testServer(t, store)
	_, token := signin(t, srv, testPassword)

	resp := authedGet(t, srv, "/v1/metrics/weekly", token)
	defer resp.Body.Close()

	var w report.Weekly
	if err := json.NewDecoder(resp.Body).Decode(&w); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(w.Days) != 1 || w.TotalNewUsers != 3 {
		t.Fatalf("unexpected weekly %#v", w)
	}
}

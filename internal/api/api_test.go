package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/jedilnik/internal/db"
	"github.com/erazemk/jedilnik/internal/model"
	"github.com/erazemk/jedilnik/internal/store"
)

const testJWTSecret = "test-secret"

type testEnv struct {
	server *httptest.Server
	token  string
	opts   Options
}

// setupTestServer starts the API over an in-memory database with a master
// account "master" / "password" and returns its token.
func setupTestServer(t *testing.T) (*httptest.Server, string) {
	env := newTestEnv(t, Options{})
	return env.server, env.token
}

func newTestEnv(t *testing.T, opts Options) *testEnv {
	t.Helper()
	opts.DB = db.NewTestDB(t)
	opts.JWTSecret = testJWTSecret

	server := httptest.NewServer(NewRouter(opts))
	t.Cleanup(server.Close)

	mustCreateUser(t, opts, "master", model.RoleMaster, nil)
	return &testEnv{server: server, token: login(t, server, "master", "password"), opts: opts}
}

func mustCreateUser(t *testing.T, opts Options, username, role string, restaurantID *int64) {
	t.Helper()
	hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	if _, err := store.CreateUser(context.Background(), opts.DB, username, "", string(hash), role, restaurantID); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
}

func login(t *testing.T, server *httptest.Server, username, password string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	resp, err := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login failed: %d", resp.StatusCode)
	}

	var loginResp struct {
		Token string      `json:"token"`
		Admin *model.User `json:"admin"`
	}
	json.NewDecoder(resp.Body).Decode(&loginResp)
	if loginResp.Token == "" {
		t.Fatal("empty token from login")
	}
	if loginResp.Admin == nil || loginResp.Admin.Username != username {
		t.Fatalf("expected admin %q in login response, got %+v", username, loginResp.Admin)
	}
	return loginResp.Token
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func authRequest(method, url, token string, body any) (*http.Request, error) {
	var bodyReader io.Reader = http.NoBody
	if body != nil {
		data, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

// call performs an authenticated JSON request, checks the status and decodes
// the response into out if it is non-nil.
func call(t *testing.T, method, url, token string, body any, wantStatus int, out any) {
	t.Helper()
	req, err := authRequest(method, url, token, body)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		msg, _ := io.ReadAll(resp.Body)
		t.Fatalf("%s %s: expected %d, got %d: %s", method, url, wantStatus, resp.StatusCode, msg)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decoding %s %s: %v", method, url, err)
		}
	}
}

func (e *testEnv) createRestaurant(t *testing.T, body map[string]any) model.Restaurant {
	t.Helper()
	var r model.Restaurant
	call(t, "POST", e.server.URL+"/api/restaurants", e.token, body, http.StatusCreated, &r)
	return r
}

func TestLoginEndpoint(t *testing.T) {
	server, _ := setupTestServer(t)

	tests := []struct {
		name string
		body map[string]string
		want int
	}{
		{"wrong password", map[string]string{"username": "master", "password": "wrong"}, http.StatusUnauthorized},
		{"unknown user", map[string]string{"username": "ghost", "password": "password"}, http.StatusUnauthorized},
		{"missing password", map[string]string{"username": "master"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(tt.body)
			resp, err := http.Post(server.URL+"/api/auth/login", "application/json", bytes.NewReader(body))
			if err != nil {
				t.Fatal(err)
			}
			resp.Body.Close()
			if resp.StatusCode != tt.want {
				t.Errorf("expected %d, got %d", tt.want, resp.StatusCode)
			}
		})
	}
}

func TestUnauthenticatedAccess(t *testing.T) {
	server, _ := setupTestServer(t)

	for _, path := range []string{"/api/restaurants", "/api/users", "/api/auth/me"} {
		resp, err := http.Get(server.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("GET %s: expected 401, got %d", path, resp.StatusCode)
		}
	}

	req, _ := authRequest("GET", server.URL+"/api/restaurants", "garbage", nil)
	resp, _ := http.DefaultClient.Do(req)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for invalid token, got %d", resp.StatusCode)
	}
}

func TestMeAndLogout(t *testing.T) {
	server, token := setupTestServer(t)

	var me model.User
	call(t, "GET", server.URL+"/api/auth/me", token, nil, http.StatusOK, &me)
	if me.Username != "master" || me.Role != model.RoleMaster {
		t.Errorf("unexpected user %+v", me)
	}

	call(t, "POST", server.URL+"/api/auth/logout", token, nil, http.StatusOK, nil)

	// The token is revoked from now on.
	call(t, "GET", server.URL+"/api/auth/me", token, nil, http.StatusUnauthorized, nil)

	// A fresh login still works.
	fresh := login(t, server, "master", "password")
	call(t, "GET", server.URL+"/api/auth/me", fresh, nil, http.StatusOK, nil)
}

func TestChangePassword(t *testing.T) {
	server, token := setupTestServer(t)

	call(t, "PUT", server.URL+"/api/auth/password", token, map[string]string{
		"current_password": "wrong", "new_password": "longenough",
	}, http.StatusUnauthorized, nil)

	call(t, "PUT", server.URL+"/api/auth/password", token, map[string]string{
		"current_password": "password", "new_password": "short",
	}, http.StatusBadRequest, nil)

	call(t, "PUT", server.URL+"/api/auth/password", token, map[string]string{
		"current_password": "password", "new_password": "longenough",
	}, http.StatusOK, nil)

	login(t, server, "master", "longenough")
}

func TestUsersAPIFlow(t *testing.T) {
	env := newTestEnv(t, Options{})
	url := env.server.URL
	r := env.createRestaurant(t, map[string]any{"name": "Spice Route"})

	// Validation failures.
	call(t, "POST", url+"/api/users", env.token, map[string]any{
		"username": "chef", "password": "password1", "email": "not-an-email",
	}, http.StatusBadRequest, nil)
	call(t, "POST", url+"/api/users", env.token, map[string]any{
		"username": "chef", "password": "password1", "assigned_restaurant": 999,
	}, http.StatusBadRequest, nil)

	var created model.User
	call(t, "POST", url+"/api/users", env.token, map[string]any{
		"username": "chef", "password": "password1", "email": "chef@example.com", "assigned_restaurant": r.ID,
	}, http.StatusCreated, &created)
	if created.Role != model.RoleAdmin {
		t.Errorf("expected default role admin, got %q", created.Role)
	}
	if created.AssignedRestaurant == nil || *created.AssignedRestaurant != r.ID {
		t.Errorf("expected assignment to %d, got %v", r.ID, created.AssignedRestaurant)
	}

	call(t, "POST", url+"/api/users", env.token, map[string]any{
		"username": "chef", "password": "password1",
	}, http.StatusConflict, nil)

	// Unassign and change password.
	var updated model.User
	call(t, "PATCH", url+"/api/users/"+itoa(created.ID), env.token, map[string]any{
		"username": "head-chef", "email": "chef@example.com", "password": "newpassword", "assigned_restaurant": nil,
	}, http.StatusOK, &updated)
	if updated.Username != "head-chef" || updated.AssignedRestaurant != nil {
		t.Errorf("unexpected update result %+v", updated)
	}
	login(t, env.server, "head-chef", "newpassword")

	var users []model.User
	call(t, "GET", url+"/api/users", env.token, nil, http.StatusOK, &users)
	if len(users) != 2 {
		t.Errorf("expected 2 users, got %d", len(users))
	}

	call(t, "DELETE", url+"/api/users/"+itoa(created.ID), env.token, nil, http.StatusOK, nil)
	call(t, "DELETE", url+"/api/users/"+itoa(created.ID), env.token, nil, http.StatusNotFound, nil)
	call(t, "DELETE", url+"/api/users/1", env.token, nil, http.StatusBadRequest, nil)
}

func TestDeletedUserTokenRejected(t *testing.T) {
	env := newTestEnv(t, Options{})
	mustCreateUser(t, env.opts, "temp", model.RoleAdmin, nil)
	tempToken := login(t, env.server, "temp", "password")

	call(t, "GET", env.server.URL+"/api/auth/me", tempToken, nil, http.StatusOK, nil)
	call(t, "DELETE", env.server.URL+"/api/users/2", env.token, nil, http.StatusOK, nil)
	call(t, "GET", env.server.URL+"/api/auth/me", tempToken, nil, http.StatusUnauthorized, nil)
}

func TestRoleBasedAccess(t *testing.T) {
	env := newTestEnv(t, Options{})
	url := env.server.URL

	mine := env.createRestaurant(t, map[string]any{"name": "Mine"})
	other := env.createRestaurant(t, map[string]any{"name": "Other"})
	mustCreateUser(t, env.opts, "admin1", model.RoleAdmin, &mine.ID)
	adminToken := login(t, env.server, "admin1", "password")

	// Admins see only their own restaurant.
	var list []model.Restaurant
	call(t, "GET", url+"/api/restaurants", adminToken, nil, http.StatusOK, &list)
	if len(list) != 1 || list[0].ID != mine.ID {
		t.Errorf("expected only restaurant %d, got %+v", mine.ID, list)
	}
	call(t, "GET", url+"/api/restaurants", env.token, nil, http.StatusOK, &list)
	if len(list) != 2 {
		t.Errorf("expected master to see 2 restaurants, got %d", len(list))
	}

	call(t, "GET", url+"/api/restaurants/"+itoa(mine.ID), adminToken, nil, http.StatusOK, nil)
	call(t, "GET", url+"/api/restaurants/"+itoa(other.ID), adminToken, nil, http.StatusForbidden, nil)
	call(t, "GET", url+"/api/restaurants/"+itoa(other.ID)+"/menu", adminToken, nil, http.StatusForbidden, nil)

	// Master-only endpoints.
	call(t, "GET", url+"/api/users", adminToken, nil, http.StatusForbidden, nil)
	call(t, "POST", url+"/api/restaurants", adminToken, map[string]any{"name": "Mine Too"}, http.StatusForbidden, nil)
	call(t, "DELETE", url+"/api/restaurants/"+itoa(mine.ID), adminToken, nil, http.StatusForbidden, nil)

	// Admins may edit their restaurant but not its external source.
	var updated model.Restaurant
	call(t, "PUT", url+"/api/restaurants/"+itoa(mine.ID), adminToken, map[string]any{
		"name": "Mine Renamed", "mongo_uri": "mongodb://evil/db",
	}, http.StatusOK, &updated)
	if updated.Name != "Mine Renamed" || updated.MongoURI != "" {
		t.Errorf("unexpected update result %+v", updated)
	}

	// Reassignment applies to the existing token.
	call(t, "PATCH", url+"/api/users/2", env.token, map[string]any{
		"username": "admin1", "assigned_restaurant": other.ID,
	}, http.StatusOK, nil)
	call(t, "GET", url+"/api/restaurants/"+itoa(other.ID), adminToken, nil, http.StatusOK, nil)
	call(t, "GET", url+"/api/restaurants/"+itoa(mine.ID), adminToken, nil, http.StatusForbidden, nil)
}

func TestHealthz(t *testing.T) {
	server, _ := setupTestServer(t)

	resp, err := http.Get(server.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sparkbytes.org/internal/auth"
	"sparkbytes.org/internal/event"
)

type apiClient struct {
	baseURL string
	client  *http.Client
	t       *testing.T
}

func newTestAPI(t *testing.T) *apiClient {
	t.Helper()

	tokens, err := auth.NewTokenService("test-secret", "HS256", 30*time.Minute)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	authSvc := auth.NewService(auth.NewInMemoryStore(), tokens)

	api := New(ReadyProbe{}, "test", authSvc, event.NewInMemory()).
		WithRateLimit(1000, 1000)

	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)

	return &apiClient{
		baseURL: srv.URL,
		client:  srv.Client(),
		t:       t,
	}
}

func (c *apiClient) do(method, path string, body any, headers map[string]string) *http.Response {
	c.t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal body: %v", err)
		}
	}
	req, err := http.NewRequest(method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		c.t.Fatalf("do request: %v", err)
	}
	return resp
}

func (c *apiClient) post(path string, body any, headers map[string]string) *http.Response {
	return c.do(http.MethodPost, path, body, headers)
}

func (c *apiClient) get(path string, headers map[string]string) *http.Response {
	return c.do(http.MethodGet, path, nil, headers)
}

func decode[T any](t *testing.T, r *http.Response) T {
	t.Helper()
	defer r.Body.Close()
	var v T
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func signupBody() map[string]string {
	return map[string]string{
		"email":      "user@example.com",
		"password":   "Abcdefg1",
		"first_name": "A",
		"last_name":  "B",
	}
}

func eventBody() map[string]string {
	return map[string]string{
		"name":        "Hack Night",
		"description": "Pizza and projects",
		"location":    "CDS 201",
		"date":        "2026-09-12",
		"time":        "18:00",
	}
}

func (c *apiClient) signupAndLogin() string {
	c.t.Helper()
	resp := c.post("/v1/auth/signup", signupBody(), nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		c.t.Fatalf("signup status: %d", resp.StatusCode)
	}
	resp = c.post("/v1/auth/login", map[string]string{
		"email":    "user@example.com",
		"password": "Abcdefg1",
	}, nil)
	if resp.StatusCode != http.StatusOK {
		c.t.Fatalf("login status: %d", resp.StatusCode)
	}
	pair := decode[auth.TokenPair](c.t, resp)
	if pair.AccessToken == "" || pair.TokenType != "bearer" {
		c.t.Fatalf("unexpected token pair: %+v", pair)
	}
	return pair.AccessToken
}

func TestSignupLoginProfileFlow(t *testing.T) {
	c := newTestAPI(t)
	token := c.signupAndLogin()

	resp := c.get("/v1/profile", map[string]string{"Authorization": "Bearer " + token})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("profile status: %d", resp.StatusCode)
	}
	profile := decode[map[string]any](t, resp)
	if profile["email"] != "user@example.com" || profile["first_name"] != "A" {
		t.Fatalf("unexpected profile: %v", profile)
	}
	if _, leaked := profile["password_hash"]; leaked {
		t.Fatal("password hash leaked in profile response")
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	c := newTestAPI(t)

	resp := c.post("/v1/auth/signup", signupBody(), nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("first signup status: %d", resp.StatusCode)
	}

	resp = c.post("/v1/auth/signup", signupBody(), nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate signup status: %d", resp.StatusCode)
	}
	body := decode[map[string]any](t, resp)
	if body["kind"] != "conflict" {
		t.Fatalf("unexpected failure kind: %v", body["kind"])
	}
}

func TestSignupWeakPassword(t *testing.T) {
	c := newTestAPI(t)

	for _, password := range []string{"abcdefg1", "short1A", "ABCDEFG1", "Abcdefgh"} {
		body := signupBody()
		body["password"] = password
		resp := c.post("/v1/auth/signup", body, nil)
		payload := decode[map[string]any](t, resp)
		if resp.StatusCode != http.StatusUnprocessableEntity {
			t.Fatalf("password %q: expected 422, got %d", password, resp.StatusCode)
		}
		if payload["kind"] != "validation" {
			t.Fatalf("password %q: unexpected kind %v", password, payload["kind"])
		}
	}
}

func TestLoginWrongPassword(t *testing.T) {
	c := newTestAPI(t)

	resp := c.post("/v1/auth/signup", signupBody(), nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("signup status: %d", resp.StatusCode)
	}

	resp = c.post("/v1/auth/login", map[string]string{
		"email":    "user@example.com",
		"password": "WrongPass1",
	}, nil)
	payload := decode[map[string]any](t, resp)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	if payload["kind"] != "authentication" {
		t.Fatalf("unexpected kind: %v", payload["kind"])
	}
}

func TestProfileRejectsBadTokens(t *testing.T) {
	c := newTestAPI(t)
	token := c.signupAndLogin()

	cases := map[string]map[string]string{
		"missing header": nil,
		"wrong scheme":   {"Authorization": "Basic " + token},
		"tampered token": {"Authorization": "Bearer " + token + "x"},
		"garbage token":  {"Authorization": "Bearer not.a.token"},
	}
	for name, headers := range cases {
		resp := c.get("/v1/profile", headers)
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", name, resp.StatusCode)
		}
	}
}

func TestEventCRUDFlow(t *testing.T) {
	c := newTestAPI(t)

	// create
	resp := c.post("/v1/events", eventBody(), nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status: %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/v1/events/1" {
		t.Fatalf("unexpected Location: %s", loc)
	}
	created := decode[event.Event](t, resp)
	if created.ID != 1 || created.Name != "Hack Night" {
		t.Fatalf("unexpected event: %+v", created)
	}

	// duplicate name
	resp = c.post("/v1/events", eventBody(), nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate create status: %d", resp.StatusCode)
	}

	// list
	resp = c.get("/v1/events", nil)
	events := decode[[]event.Event](t, resp)
	if len(events) != 1 {
		t.Fatalf("unexpected list: %+v", events)
	}

	// get
	resp = c.get("/v1/events/1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status: %d", resp.StatusCode)
	}
	resp.Body.Close()

	// update
	update := eventBody()
	update["location"] = "CDS 301"
	resp = c.do(http.MethodPut, "/v1/events/1", update, nil)
	updated := decode[event.Event](t, resp)
	if resp.StatusCode != http.StatusOK || updated.Location != "CDS 301" {
		t.Fatalf("update failed: %d %+v", resp.StatusCode, updated)
	}

	// update nonexistent
	resp = c.do(http.MethodPut, "/v1/events/99", update, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("update nonexistent status: %d", resp.StatusCode)
	}

	// delete
	resp = c.do(http.MethodDelete, "/v1/events/1", nil, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status: %d", resp.StatusCode)
	}

	// delete again
	resp = c.do(http.MethodDelete, "/v1/events/1", nil, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("second delete status: %d", resp.StatusCode)
	}
}

func TestCreateEventMissingFields(t *testing.T) {
	c := newTestAPI(t)

	body := eventBody()
	body["location"] = ""
	resp := c.post("/v1/events", body, nil)
	payload := decode[map[string]any](t, resp)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	if payload["kind"] != "validation" {
		t.Fatalf("unexpected kind: %v", payload["kind"])
	}
}

func TestUsersEndpointRequiresAuth(t *testing.T) {
	c := newTestAPI(t)
	token := c.signupAndLogin()

	resp := c.get("/v1/users", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.StatusCode)
	}

	resp = c.get("/v1/users", map[string]string{"Authorization": "Bearer " + token})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("users status: %d", resp.StatusCode)
	}
	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if strings.Contains(strings.ToLower(string(raw)), "password") {
		t.Fatalf("users response leaks credential material: %s", raw)
	}
	var users []map[string]any
	if err := json.Unmarshal(raw, &users); err != nil {
		t.Fatalf("decode users: %v", err)
	}
	if len(users) != 1 || users[0]["email"] != "user@example.com" {
		t.Fatalf("unexpected users: %v", users)
	}
}

func TestHealthAndInfo(t *testing.T) {
	c := newTestAPI(t)

	for _, path := range []string{"/healthz", "/readyz", "/v1/info"} {
		resp := c.get(path, nil)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s status: %d", path, resp.StatusCode)
		}
	}
}

func TestUnknownFieldRejected(t *testing.T) {
	c := newTestAPI(t)

	body := map[string]any{
		"email":      "user@example.com",
		"password":   "Abcdefg1",
		"first_name": "A",
		"last_name":  "B",
		"admin":      true,
	}
	resp := c.post("/v1/auth/signup", body, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d", resp.StatusCode)
	}
}

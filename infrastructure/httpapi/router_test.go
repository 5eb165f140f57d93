package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/destinyy00/skillswap/auth"
	"github.com/destinyy00/skillswap/domain"
	"github.com/destinyy00/skillswap/infrastructure/storage"
	"github.com/destinyy00/skillswap/observability"
	"github.com/destinyy00/skillswap/relay"
	"github.com/destinyy00/skillswap/services"
	"github.com/destinyy00/skillswap/transport/ws"

	"github.com/gorilla/websocket"
	"github.com/mama165/sdk-go/database"
	"github.com/stretchr/testify/require"
)

const testSecret = "router-test-secret"

type testApp struct {
	server   *httptest.Server
	registry *relay.Registry
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	_, log, badgerDB, blugeWriter, err := database.SetupBenchmark(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() {
		database.CleanupDB(badgerDB, blugeWriter)
	})

	users := storage.NewUserRepository(badgerDB)
	skills := storage.NewSkillRepository(badgerDB, log)
	sessions := storage.NewSessionRepository(badgerDB, log)
	index := storage.NewSkillIndex(blugeWriter, log)

	registry := relay.NewRegistry()
	core := relay.NewRelay(log, registry)
	monitoring := observability.NewMonitoringManager(log, registry)
	core.Instrument(monitoring)

	issuer := auth.NewTokenIssuer(testSecret, time.Hour)
	verifier := auth.NewJWTVerifier(testSecret)

	notifications := services.NewNotificationService(log, core)
	authService := services.NewAuthService(users, issuer)
	sessionService := services.NewSessionService(log, sessions, notifications)
	skillService := services.NewSkillService(log, skills, index)

	router := NewRouter(Deps{
		Log:           log,
		Verifier:      verifier,
		Auth:          NewAuthHandler(log, authService),
		Users:         NewUserHandler(log, users),
		Skills:        NewSkillHandler(log, skillService, 25),
		Sessions:      NewSessionHandler(log, sessionService),
		Notifications: NewNotificationHandler(log, notifications),
		Stats:         NewStatsHandler(monitoring),
		WebSocket:     ws.NewHandler(log, verifier, registry, core, 5*time.Second, 16),
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return &testApp{server: server, registry: registry}
}

func (a *testApp) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, a.server.URL+path, &buf)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

// registerUser registers a fresh account and returns its token and id.
func (a *testApp) registerUser(t *testing.T, email string) (string, string) {
	t.Helper()
	resp := a.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    email,
		"password": "Str0ng!Passw0rd",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	token := decode[map[string]string](t, resp)["token"]
	require.NotEmpty(t, token)

	me := a.do(t, http.MethodGet, "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, me.StatusCode)
	user := decode[domain.User](t, me)
	return token, user.ID
}

func TestRouter_Register_Login_Profile(t *testing.T) {
	req := require.New(t)
	app := newTestApp(t)

	token, userID := app.registerUser(t, "alice@example.com")
	req.NotEmpty(userID)

	// Duplicate registration conflicts
	resp := app.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": "alice@example.com", "password": "Str0ng!Passw0rd",
	})
	req.Equal(http.StatusConflict, resp.StatusCode)

	// Login works with the same credentials
	resp = app.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "Str0ng!Passw0rd",
	})
	req.Equal(http.StatusOK, resp.StatusCode)

	// Profile update round-trips
	resp = app.do(t, http.MethodPut, "/api/users/me", token, map[string]string{
		"name": "Alice", "bio": "I teach sourdough", "location": "Lyon",
	})
	req.Equal(http.StatusOK, resp.StatusCode)
	updated := decode[domain.User](t, resp)
	req.Equal("Alice", updated.Name)

	// Another member sees the public profile without email-independent secrets
	resp = app.do(t, http.MethodGet, "/api/users/"+userID, "", nil)
	req.Equal(http.StatusOK, resp.StatusCode)
	public := decode[domain.User](t, resp)
	req.Equal("Alice", public.Name)
	req.Empty(public.Roles)
}

func TestRouter_Protected_Routes_Reject_Anonymous(t *testing.T) {
	req := require.New(t)
	app := newTestApp(t)

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/users/me"},
		{http.MethodPost, "/api/skills"},
		{http.MethodGet, "/api/sessions"},
		{http.MethodPost, "/api/notifications"},
	} {
		resp := app.do(t, route.method, route.path, "", nil)
		req.Equal(http.StatusUnauthorized, resp.StatusCode, "%s %s", route.method, route.path)
	}

	// Garbage tokens are rejected the same way
	resp := app.do(t, http.MethodGet, "/api/users/me", "not-a-jwt", nil)
	req.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func TestRouter_Skill_Catalog_And_Search(t *testing.T) {
	req := require.New(t)
	app := newTestApp(t)
	token, _ := app.registerUser(t, "alice@example.com")

	resp := app.do(t, http.MethodPost, "/api/skills", token, map[string]string{
		"name": "Sourdough baking", "category": "Cooking",
		"description": "Starter care and oven spring",
	})
	req.Equal(http.StatusCreated, resp.StatusCode)

	resp = app.do(t, http.MethodPost, "/api/skills", token, map[string]string{
		"name": "Bicycle repair", "category": "Mechanics",
	})
	req.Equal(http.StatusCreated, resp.StatusCode)

	// Missing required fields fail validation
	resp = app.do(t, http.MethodPost, "/api/skills", token, map[string]string{"name": ""})
	req.Equal(http.StatusBadRequest, resp.StatusCode)

	resp = app.do(t, http.MethodGet, "/api/skills", "", nil)
	req.Equal(http.StatusOK, resp.StatusCode)
	req.Len(decode[[]domain.Skill](t, resp), 2)

	resp = app.do(t, http.MethodGet, "/api/skills/search?q=sourdough", "", nil)
	req.Equal(http.StatusOK, resp.StatusCode)
	found := decode[[]domain.Skill](t, resp)
	req.Len(found, 1)
	req.Equal("Sourdough baking", found[0].Name)

	resp = app.do(t, http.MethodGet, "/api/skills/search", "", nil)
	req.Equal(http.StatusBadRequest, resp.StatusCode)

	resp = app.do(t, http.MethodGet, "/api/skills/offered", token, nil)
	req.Equal(http.StatusOK, resp.StatusCode)
	req.Len(decode[[]domain.Skill](t, resp), 2)
}

func TestRouter_Session_Lifecycle(t *testing.T) {
	req := require.New(t)
	app := newTestApp(t)
	aliceToken, _ := app.registerUser(t, "alice@example.com")
	bobToken, bobID := app.registerUser(t, "bob@example.com")

	// Alice requests a session with Bob
	resp := app.do(t, http.MethodPost, "/api/sessions/request", aliceToken, map[string]any{
		"title":    "Intro to sourdough",
		"hostId":   bobID,
		"dateTime": time.Now().Add(48 * time.Hour).Format(time.RFC3339),
		"message":  "Saturday afternoon?",
	})
	req.Equal(http.StatusCreated, resp.StatusCode)
	session := decode[domain.Session](t, resp)
	req.Equal(domain.StatusPending, session.Status)

	// Both participants see it in their listings
	for _, token := range []string{aliceToken, bobToken} {
		resp = app.do(t, http.MethodGet, "/api/sessions", token, nil)
		req.Equal(http.StatusOK, resp.StatusCode)
		req.Len(decode[[]domain.Session](t, resp), 1)
	}

	// Bob confirms
	resp = app.do(t, http.MethodPatch,
		fmt.Sprintf("/api/sessions/%s/status", session.ID), bobToken,
		map[string]string{"status": "CONFIRMED"})
	req.Equal(http.StatusOK, resp.StatusCode)
	req.Equal(domain.StatusConfirmed, decode[domain.Session](t, resp).Status)

	// A stranger cannot touch it
	strangerToken, _ := app.registerUser(t, "mallory@example.com")
	resp = app.do(t, http.MethodPatch,
		fmt.Sprintf("/api/sessions/%s/status", session.ID), strangerToken,
		map[string]string{"status": "CANCELLED"})
	req.Equal(http.StatusForbidden, resp.StatusCode)

	// Off-enumeration statuses are rejected
	resp = app.do(t, http.MethodPatch,
		fmt.Sprintf("/api/sessions/%s/status", session.ID), bobToken,
		map[string]string{"status": "ACCEPTED"})
	req.Equal(http.StatusBadRequest, resp.StatusCode)
}

func TestRouter_Notification_Trigger_Reaches_WebSocket(t *testing.T) {
	req := require.New(t)
	app := newTestApp(t)
	aliceToken, _ := app.registerUser(t, "alice@example.com")
	bobToken, bobID := app.registerUser(t, "bob@example.com")

	// Bob opens a websocket through the same router
	wsURL := "ws" + strings.TrimPrefix(app.server.URL, "http") + "/ws?token=" + bobToken
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	req.NoError(err)
	defer func() { _ = conn.Close() }()

	req.Eventually(func() bool { return app.registry.Count() == 1 },
		2*time.Second, 10*time.Millisecond)

	// Alice triggers a notification over REST
	resp := app.do(t, http.MethodPost, "/api/notifications", aliceToken, map[string]any{
		"toUserId": bobID,
		"payload":  map[string]string{"message": "see you saturday"},
	})
	req.Equal(http.StatusAccepted, resp.StatusCode)

	// Bob receives it on the open socket
	req.NoError(conn.SetReadDeadline(time.Now().Add(2 * time.Second)))
	var frame struct {
		Type       string          `json:"type"`
		FromUserID string          `json:"fromUserId"`
		Payload    json.RawMessage `json:"payload"`
	}
	req.NoError(conn.ReadJSON(&frame))
	req.Equal("notification:received", frame.Type)
	req.JSONEq(`{"message":"see you saturday"}`, string(frame.Payload))
}

func TestRouter_Health_And_Stats(t *testing.T) {
	req := require.New(t)
	app := newTestApp(t)

	resp := app.do(t, http.MethodGet, "/health", "", nil)
	req.Equal(http.StatusOK, resp.StatusCode)

	resp = app.do(t, http.MethodGet, "/stats", "", nil)
	req.Equal(http.StatusOK, resp.StatusCode)
	stats := decode[observability.RelayStats](t, resp)
	req.Zero(stats.OpenConnections)
}

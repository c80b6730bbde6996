package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/hotdesk-backend/internal/app"
	"github.com/nekogravitycat/hotdesk-backend/internal/db"
	"github.com/nekogravitycat/hotdesk-backend/internal/desk"
	deskHttp "github.com/nekogravitycat/hotdesk-backend/internal/desk/http"
	locHttp "github.com/nekogravitycat/hotdesk-backend/internal/location/http"
	"github.com/nekogravitycat/hotdesk-backend/internal/pkg/clock"
	userHttp "github.com/nekogravitycat/hotdesk-backend/internal/user/http"
)

type testApp struct {
	c     *app.Container
	clock *clock.FakeClock
}

// setupApp builds the full container against TEST_DB_DSN.
// Tests using it are skipped when no database is configured.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	if err := godotenv.Load("../../.env"); err != nil {
		t.Logf("no .env file loaded: %v", err)
	}
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, db.Migrate(ctx, pool))
	_, err = pool.Exec(ctx, `TRUNCATE public.booking_history, public.bookings, public.desks, public.locations, public.users CASCADE`)
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)

	clk := clock.Fake(time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC))
	c := app.NewContainer(app.Config{
		DBPool:         pool,
		JWTSecret:      "test-secret",
		JWTTTL:         30 * time.Minute,
		BcryptCost:     4, // Lower cost for testing purposes
		TimeZone:       time.UTC,
		SweepInterval:  time.Minute,
		MetricsEnabled: true,
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		Clock:          clk,
	})

	return &testApp{c: c, clock: clk}
}

func (a *testApp) do(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reqBody []byte
	if body != nil {
		reqBody, _ = json.Marshal(body)
	}

	req, _ := http.NewRequest(method, path, bytes.NewBuffer(reqBody))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.c.Router.ServeHTTP(w, req)
	return w
}

func (a *testApp) login(t *testing.T, username, password string) string {
	t.Helper()
	w := a.do("POST", "/v1/auth/login", userHttp.LoginRequest{Username: username, Password: password}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp userHttp.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.AccessToken
}

func (a *testApp) register(t *testing.T, username, password string) string {
	t.Helper()
	w := a.do("POST", "/v1/auth/register", userHttp.RegisterRequest{Username: username, Password: password}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return a.login(t, username, password)
}

func decodeSnapshot(t *testing.T, w *httptest.ResponseRecorder) desk.Snapshot {
	t.Helper()
	var snap desk.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	return snap
}

func TestBookingFlowOverHTTP(t *testing.T) {
	a := setupApp(t)
	ctx := context.Background()

	_, err := a.c.UserService.EnsureAdmin(ctx, "root", "rootpass1")
	require.NoError(t, err)
	adminToken := a.login(t, "root", "rootpass1")
	aliceToken := a.register(t, "alice", "alicepass1")
	bobToken := a.register(t, "bob", "bobpass12")

	t.Run("Setup Infrastructure", func(t *testing.T) {
		w := a.do("POST", "/v1/locations", locHttp.CreateLocationBody{Name: "RoomA"}, aliceToken)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = a.do("POST", "/v1/locations", locHttp.CreateLocationBody{Name: "RoomA"}, adminToken)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		w = a.do("POST", "/v1/locations/RoomA/desks", deskHttp.CreateDeskBody{Name: "D1"}, adminToken)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		w = a.do("POST", "/v1/locations/RoomA/desks", deskHttp.CreateDeskBody{Name: "D2"}, adminToken)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		w = a.do("POST", "/v1/locations/RoomA/desks", deskHttp.CreateDeskBody{Name: "D1"}, adminToken)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Book", func(t *testing.T) {
		w := a.do("POST", "/v1/locations/RoomA/desks/D1/booking", map[string]int{"days": 3}, aliceToken)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		snap := decodeSnapshot(t, w)
		require.NotNil(t, snap.Username)
		assert.Equal(t, "alice", *snap.Username)
		assert.Equal(t, "10-03-2024", *snap.StartTime)
		assert.Equal(t, "12-03-2024", *snap.EndTime)
	})

	t.Run("Booking Conflicts", func(t *testing.T) {
		w := a.do("POST", "/v1/locations/RoomA/desks/D1/booking", map[string]int{"days": 1}, bobToken)
		assert.Equal(t, http.StatusConflict, w.Code)

		w = a.do("POST", "/v1/locations/RoomA/desks/D2/booking", map[string]int{"days": 1}, aliceToken)
		assert.Equal(t, http.StatusConflict, w.Code)

		w = a.do("POST", "/v1/locations/RoomA/desks/D2/booking", map[string]int{"days": 0}, bobToken)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = a.do("POST", "/v1/locations/RoomA/desks/D9/booking", map[string]int{"days": 1}, bobToken)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Disable Occupied Desk", func(t *testing.T) {
		w := a.do("PUT", "/v1/locations/RoomA/desks/D1/enabled", map[string]bool{"enabled": false}, adminToken)
		assert.Equal(t, http.StatusConflict, w.Code)

		w = a.do("PUT", "/v1/locations/RoomA/desks/D2/enabled", map[string]bool{"enabled": false}, bobToken)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = a.do("PUT", "/v1/locations/RoomA/desks/D2/enabled", map[string]bool{"enabled": false}, adminToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.False(t, decodeSnapshot(t, w).IsEnabled)

		w = a.do("POST", "/v1/locations/RoomA/desks/D2/booking", map[string]int{"days": 1}, bobToken)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Unbook", func(t *testing.T) {
		w := a.do("DELETE", "/v1/locations/RoomA/desks/D1/booking", nil, bobToken)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = a.do("GET", "/v1/me/booking", nil, aliceToken)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "D1", decodeSnapshot(t, w).DeskName)

		w = a.do("DELETE", "/v1/locations/RoomA/desks/D1/booking", nil, aliceToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Nil(t, decodeSnapshot(t, w).Username)

		w = a.do("DELETE", "/v1/locations/RoomA/desks/D1/booking", nil, adminToken)
		assert.Equal(t, http.StatusConflict, w.Code)

		w = a.do("GET", "/v1/me/booking", nil, aliceToken)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Expiry Sweep", func(t *testing.T) {
		w := a.do("POST", "/v1/locations/RoomA/desks/D1/booking", map[string]int{"days": 1}, bobToken)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		released, err := a.c.Sweeper.RunSweep(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, released)

		a.clock.Set(time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC))

		w = a.do("POST", "/v1/admin/sweep", nil, adminToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.JSONEq(t, `{"released": 1}`, w.Body.String())

		w = a.do("GET", "/v1/locations/RoomA/desks/D1", nil, bobToken)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Nil(t, decodeSnapshot(t, w).Username)
	})

	t.Run("System Endpoints", func(t *testing.T) {
		w := a.do("GET", "/healthz", nil, "")
		assert.Equal(t, http.StatusOK, w.Code)

		w = a.do("GET", "/metrics", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "hotdesk_bookings_created_total")
	})
}

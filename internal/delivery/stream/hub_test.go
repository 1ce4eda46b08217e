package stream

import (
	"context"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cravlr/internal/domain/entity"
	"cravlr/internal/domain/repository"
	"cravlr/internal/domain/service"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProfileRepo struct {
	profile *entity.Profile
}

func (r *stubProfileRepo) CreateProfile(_ context.Context, _ *entity.Profile) error { return nil }

func (r *stubProfileRepo) FindProfileByUserID(_ context.Context, _ uuid.UUID) (*entity.Profile, error) {
	if r.profile == nil {
		return nil, repository.ErrProfileNotFound
	}

	return r.profile, nil
}

func (r *stubProfileRepo) FindProfilesByUserIDs(_ context.Context, _ []uuid.UUID) ([]*entity.Profile, error) {
	return nil, nil
}

func (r *stubProfileRepo) FindNotifiableProfiles(_ context.Context) ([]*entity.Profile, error) {
	return nil, nil
}

func (r *stubProfileRepo) UpdateProfile(_ context.Context, _ *entity.Profile) error { return nil }

// dialStream stands up the hub behind a test server and opens one connection
// authenticated as userID.
func dialStream(t *testing.T, hub *Hub, userID uuid.UUID) *websocket.Conn {
	t.Helper()

	e := echo.New()
	e.GET("/stream", hub.HandleStream, func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("userID", userID)

			return next(c)
		}
	})
	server := httptest.NewServer(e)
	t.Cleanup(server.Close)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/stream"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })

	// The handler registers the client just after the handshake completes.
	require.Eventually(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()

		return len(hub.clients[userID]) == 1
	}, time.Second, 5*time.Millisecond)

	return conn
}

func TestHandleStream_DeliversPublishedPing(t *testing.T) {
	userID := uuid.New()
	hub := NewHub(&stubProfileRepo{profile: &entity.Profile{UserID: userID}}, slog.New(slog.DiscardHandler))
	conn := dialStream(t, hub, userID)

	ping := &service.Ping{ID: uuid.New(), Type: "nearby_request", Title: "t", Body: "b"}
	hub.PublishPing(userID, ping)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(time.Second)))
	var ev Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, EventShow, ev.Kind)
	assert.Equal(t, ping.ID, ev.Ping.ID)
}

func TestHandleStream_ProfileDoNotDisturbSuppressesPingsOnConnect(t *testing.T) {
	userID := uuid.New()
	hub := NewHub(&stubProfileRepo{profile: &entity.Profile{UserID: userID, DoNotDisturb: true}}, slog.New(slog.DiscardHandler))
	conn := dialStream(t, hub, userID)

	hub.PublishPing(userID, &service.Ping{ID: uuid.New(), Type: "nearby_request"})

	// No show event may arrive; the read times out instead.
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(300*time.Millisecond)))
	var ev Event
	err := conn.ReadJSON(&ev)
	require.Error(t, err)
}

package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialbot-gateway/internal/ws"
	"socialbot-gateway/pkg/models"
)

func writeEnvelope(w http.ResponseWriter, status int, resp models.Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func failing(status int, code string) models.Response {
	return models.Response{Error: &models.ErrorBody{Code: code, Message: "nope"}, Meta: models.Meta{RequestID: "req_1"}}
}

func newTestClient(url string, opts ...Option) *Client {
	return New(url, "tok", append([]Option{WithRetry(DefaultMaxRetries, time.Millisecond)}, opts...)...)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		if atomic.AddInt32(&calls, 1) < 3 {
			writeEnvelope(w, http.StatusServiceUnavailable, failing(503, "UNAVAILABLE"))
			return
		}
		writeEnvelope(w, http.StatusOK, models.Response{Success: true, Data: models.CreditBalance{Balance: 42}})
	}))
	defer srv.Close()

	b, err := newTestClient(srv.URL).CreditBalance(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, b.Balance)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestClient_GivesUpAfterRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeEnvelope(w, http.StatusTooManyRequests, failing(429, "RATE_LIMITED"))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).CreditBalance(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Equal(t, "RATE_LIMITED", apiErr.Code)
	assert.Equal(t, "req_1", apiErr.RequestID)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestClient_PostIsNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeEnvelope(w, http.StatusBadGateway, failing(502, "BAD_GATEWAY"))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).CreateAutomation(context.Background(), models.CreateAutomationRequest{Name: "once"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestClient_ClientErrorsAreNotRetried(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusForbidden, http.StatusNotFound} {
		var calls int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			writeEnvelope(w, status, failing(status, "X"))
		}))

		_, err := newTestClient(srv.URL).GetAutomation(context.Background(), "auto_1")
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, status, apiErr.StatusCode)
		assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
		srv.Close()
	}
}

func TestClient_UnauthorizedCallsHandler(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnauthorized, failing(401, "UNAUTHORIZED"))
	}))
	defer srv.Close()

	var loggedOut bool
	c := newTestClient(srv.URL, WithUnauthorizedHandler(func() { loggedOut = true }))
	_, err := c.Me(context.Background())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.Unauthorized())
	assert.True(t, loggedOut)
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		writeEnvelope(w, http.StatusOK, models.Response{Success: true})
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, WithHTTPClient(&http.Client{Timeout: 20 * time.Millisecond}))
	_, err := c.Pricing(context.Background())
	var timeout *TimeoutError
	assert.ErrorAs(t, err, &timeout)
}

func TestClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newTestClient(url).Pricing(context.Background())
	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.NotNil(t, errors.Unwrap(netErr))
}

func TestClient_ListAutomationsQueryAndPagination(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/automations", r.URL.Path)
		assert.Equal(t, "active", r.URL.Query().Get("status"))
		assert.Equal(t, "price", r.URL.Query().Get("search"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		writeEnvelope(w, http.StatusOK, models.Response{
			Success:    true,
			Data:       []models.Automation{{ID: "auto_1", Name: "Price"}},
			Pagination: models.NewPagination(2, 20, 21),
		})
	}))
	defer srv.Close()

	items, page, err := newTestClient(srv.URL).ListAutomations(context.Background(), models.AutomationListParams{
		Status: models.StatusActive, Search: "price", Page: 2,
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "auto_1", items[0].ID)
	assert.Equal(t, 2, page.TotalPages)
}

func TestClient_SetAutomationStatusSendsPatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]interface{}{"status": "inactive"}, body)
		writeEnvelope(w, http.StatusOK, models.Response{Success: true, Data: models.Automation{ID: "auto_1", Status: models.StatusInactive}})
	}))
	defer srv.Close()

	a, err := newTestClient(srv.URL).SetAutomationStatus(context.Background(), "auto_1", models.StatusInactive)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInactive, a.Status)
}

func TestClient_Subscribe(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := ws.NewHub()
	go hub.Run(ctx)
	r := gin.New()
	r.GET("/ws", hub.ServeWs)
	srv := httptest.NewServer(r)
	defer srv.Close()

	events := make(chan models.RealtimeEvent, 1)
	done := make(chan error, 1)
	go func() {
		done <- newTestClient(srv.URL).Subscribe(ctx, []string{models.ChannelNotifications}, func(ev models.RealtimeEvent) {
			events <- ev
		})
	}()

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)
	hub.NotifyVoiceDNA(models.VoiceDNAProfile{ID: "vdna_1"})
	hub.NotifyNotification(models.Notification{ID: 7, Title: "hi"})

	select {
	case ev := <-events:
		assert.Equal(t, models.ChannelNotifications, ev.Channel)
		assert.Equal(t, "notification.created", ev.Type)
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("subscription did not stop")
	}
}

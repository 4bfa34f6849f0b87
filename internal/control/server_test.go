package control_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/overseer/internal/control"
	"github.com/jmgilman/overseer/internal/control/mocks"
	"github.com/jmgilman/overseer/internal/events"
	"github.com/jmgilman/overseer/internal/metrics"
	"github.com/jmgilman/overseer/internal/model"
	"github.com/jmgilman/overseer/internal/supervisor"
)

func newTestServer(t *testing.T, backend *mocks.BackendMock) (*httptest.Server, *events.Broker, *metrics.Metrics) {
	t.Helper()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	broker := events.NewBroker(events.Options{})
	disp := control.NewDispatcher(backend, broker, control.DispatcherOptions{Metrics: m})
	srv := control.NewServer(disp, control.ServerOptions{
		Metrics: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, broker, m
}

func dial(t *testing.T, ts *httptest.Server) *control.Client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, err := control.Dial(ctx, ts.URL)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() }) //nolint:errcheck // best-effort cleanup
	return c
}

func TestServer_Health(t *testing.T) {
	ts, _, _ := newTestServer(t, &mocks.BackendMock{})

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestServer_CallRoundTrip(t *testing.T) {
	backend := &mocks.BackendMock{
		ListFunc: func() []model.Instance {
			return []model.Instance{{ID: "i-1", Name: "docs", Status: model.StatusIdle}}
		},
		RejectFunc: func(_ context.Context, id string) error {
			return supervisor.ErrNoPendingCommand
		},
	}
	ts, _, _ := newTestServer(t, backend)
	c := dial(t, ts)
	ctx := context.Background()

	var list []model.Instance
	require.NoError(t, c.Call(ctx, control.TypeListInstances, nil, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "docs", list[0].Name)

	err := c.Call(ctx, control.TypeRejectCommand, control.InstanceRef{InstanceID: "i-1"}, nil)
	var remote *control.RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, control.TypeRejectCommand, remote.Type)
	assert.Equal(t, supervisor.ErrNoPendingCommand.Error(), remote.Message)

	err = c.Call(ctx, "bogus", nil, nil)
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, "Unknown command type: bogus", remote.Message)
}

func TestServer_ConcurrentCallsMatchResponses(t *testing.T) {
	release := make(chan struct{})
	backend := &mocks.BackendMock{
		GetFunc: func(id string) (model.Instance, error) {
			if id == "slow" {
				<-release
			}
			return model.Instance{ID: id}, nil
		},
	}
	ts, _, _ := newTestServer(t, backend)
	c := dial(t, ts)
	ctx := context.Background()

	slowDone := make(chan model.Instance, 1)
	go func() {
		var inst model.Instance
		if err := c.Call(ctx, control.TypeGetInstance, control.InstanceRef{InstanceID: "slow"}, &inst); err == nil {
			slowDone <- inst
		}
		close(slowDone)
	}()

	// A fast request is answered while the slow one is still pending.
	var fast model.Instance
	require.NoError(t, c.Call(ctx, control.TypeGetInstance, control.InstanceRef{InstanceID: "fast"}, &fast))
	assert.Equal(t, "fast", fast.ID)

	close(release)
	select {
	case inst := <-slowDone:
		assert.Equal(t, "slow", inst.ID)
	case <-time.After(5 * time.Second):
		t.Fatal("slow call never completed")
	}
}

func TestServer_AgentEventPush(t *testing.T) {
	ts, broker, _ := newTestServer(t, &mocks.BackendMock{})
	c := dial(t, ts)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	broker.Publish(model.NewEvent("i-1", model.EventInstanceCreated, model.SeverityInfo, now, nil))
	require.NoError(t, c.Subscribe(ctx, true))

	next := func() model.AgentEvent {
		t.Helper()
		select {
		case ev := <-c.Events():
			return ev
		case <-time.After(5 * time.Second):
			t.Fatal("no agent event received")
			return model.AgentEvent{}
		}
	}

	assert.Equal(t, model.EventInstanceCreated, next().Type)

	broker.Publish(model.NewEvent("i-1", model.EventApprovalRequired, model.SeverityWarn, now, map[string]any{"command": "rm -rf /"}))
	ev := next()
	assert.Equal(t, model.EventApprovalRequired, ev.Type)
	assert.Equal(t, model.SeverityWarn, ev.Severity)
	assert.Equal(t, "rm -rf /", ev.Data["command"])
	assert.True(t, now.Equal(ev.Timestamp))

	require.NoError(t, c.Unsubscribe(ctx))
	assert.Equal(t, 0, broker.Subscribers())
}

func TestServer_DisconnectUnsubscribes(t *testing.T) {
	ts, broker, _ := newTestServer(t, &mocks.BackendMock{})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, err := control.Dial(ctx, ts.URL)
	require.NoError(t, err)
	require.NoError(t, c.Subscribe(ctx, false))
	assert.Equal(t, 1, broker.Subscribers())

	require.NoError(t, c.Close())
	require.Eventually(t, func() bool { return broker.Subscribers() == 0 }, 5*time.Second, 10*time.Millisecond)

	err = c.Call(ctx, control.TypeGetStatus, nil, nil)
	assert.ErrorIs(t, err, control.ErrClientClosed)
}

func TestServer_MalformedFrame(t *testing.T) {
	ts, _, _ := newTestServer(t, &mocks.BackendMock{})
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	conn.SetReadDeadline(time.Now().Add(5 * time.Second)) //nolint:errcheck // test deadline

	var resp control.Envelope
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, control.FrameResponse, resp.Type)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "invalid request")
}

func TestServer_Metrics(t *testing.T) {
	backend := &mocks.BackendMock{
		StatusFunc: func() supervisor.StatusSummary { return supervisor.StatusSummary{} },
	}
	ts, _, _ := newTestServer(t, backend)
	c := dial(t, ts)
	require.NoError(t, c.Call(context.Background(), control.TypeGetStatus, nil, nil))

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `overseer_control_requests_total{result="ok",type="get_status"} 1`)
}

func TestServer_ServeShutsDownOnCancel(t *testing.T) {
	broker := events.NewBroker(events.Options{})
	srv := control.NewServer(control.NewDispatcher(&mocks.BackendMock{}, broker, control.DispatcherOptions{}), control.ServerOptions{})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	var serveErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		serveErr = srv.Serve(ctx, ln)
	}()

	dialCtx, dialCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer dialCancel()
	c, err := control.Dial(dialCtx, ln.Addr().String())
	require.NoError(t, err)
	require.NoError(t, c.Subscribe(dialCtx, false))

	cancel()
	wg.Wait()
	assert.NoError(t, serveErr)

	select {
	case <-c.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("client connection not closed by shutdown")
	}
	assert.Equal(t, 0, broker.Subscribers())
}

func TestRemoteError(t *testing.T) {
	var err error = &control.RemoteError{Type: control.TypeSendPrompt, Message: "instance i-1 is running"}
	assert.Equal(t, "instance i-1 is running", err.Error())
	assert.False(t, errors.Is(err, control.ErrClientClosed))

	raw, jerr := json.Marshal(control.Response{Type: control.FrameResponse, Success: false, Error: err.Error(), RequestID: "r"})
	require.NoError(t, jerr)
	assert.JSONEq(t, `{"type":"response","success":false,"error":"instance i-1 is running","requestId":"r"}`, string(raw))
}

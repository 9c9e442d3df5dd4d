package agent

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCaptureServer_AcceptsEvent(t *testing.T) {
	resolver := &fakeResolver{id: 9}
	submitter := &fakeSubmitter{}
	d := newTestDispatcher(resolver, submitter, &fakeNotifier{})
	srv := httptest.NewServer(NewCaptureServer(d, zap.NewNop()))
	defer srv.Close()

	body := `{"username":"ivanov","project":"Tower A","timestamp":"2025-03-01T12:30:15.928Z","added":2,"modified":-5,"deleted":1}`
	resp, err := http.Post(srv.URL+"/v1/events", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	d.Wait(2 * time.Second)
	require.Len(t, submitter.submitted, 1)
	m := submitter.submitted[0]
	require.Equal(t, int64(9), m.UserID)
	require.Equal(t, "Tower A", m.Project)
	require.Equal(t, 2, m.Added)
	// Отрицательные счётчики приводятся к нулю на входе
	require.Equal(t, 0, m.Modified)
	require.Equal(t, 1, m.Deleted)
}

func TestCaptureServer_FillsMissingTimestamp(t *testing.T) {
	submitter := &fakeSubmitter{}
	d := newTestDispatcher(&fakeResolver{id: 1}, submitter, &fakeNotifier{})
	srv := httptest.NewServer(NewCaptureServer(d, zap.NewNop()))
	defer srv.Close()

	before := time.Now()
	resp, err := http.Post(srv.URL+"/v1/events", "application/json",
		strings.NewReader(`{"username":"ivanov","project":"p"}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	d.Wait(2 * time.Second)
	require.Len(t, submitter.submitted, 1)
	ts := submitter.submitted[0].Timestamp
	require.False(t, ts.Before(before))
	require.False(t, ts.After(time.Now()))
}

func TestCaptureServer_BadJSON(t *testing.T) {
	d := newTestDispatcher(&fakeResolver{}, &fakeSubmitter{}, &fakeNotifier{})
	srv := httptest.NewServer(NewCaptureServer(d, zap.NewNop()))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/v1/events", "application/json", strings.NewReader("{not json"))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

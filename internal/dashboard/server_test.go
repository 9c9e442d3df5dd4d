package dashboard

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/DmitriiAnastasiadi/AutodeskRevitMonitoring/internal/domain"
)

func testViewServer(t *testing.T, src DataSource) *httptest.Server {
	t.Helper()
	dash := New(src, zap.NewNop())
	srv := NewViewServer(dash, testAuthService(t, time.Hour), zap.NewNop())
	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return ts
}

func obtainToken(t *testing.T, ts *httptest.Server) string {
	t.Helper()
	body, _ := json.Marshal(domain.LoginRequest{Username: "admin", Password: "secret"})
	resp, err := http.Post(ts.URL+"/auth/token", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var tok domain.TokenResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&tok))
	return tok.AccessToken
}

func authedRequest(t *testing.T, method, url, token string, body []byte) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func TestViewServer_RequiresToken(t *testing.T) {
	ts := testViewServer(t, &fakeSource{})

	resp, err := http.Get(ts.URL + "/api/v1/dashboard/view")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// health остаётся публичным
	resp, err = http.Get(ts.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestViewServer_LoginRejectsBadPassword(t *testing.T) {
	ts := testViewServer(t, &fakeSource{})

	body, _ := json.Marshal(domain.LoginRequest{Username: "admin", Password: "wrong"})
	resp, err := http.Post(ts.URL+"/auth/token", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestViewServer_RefreshAndFilterFlow(t *testing.T) {
	src := &fakeSource{
		rows: []Row{
			{ActorHandle: "ivanov", Timestamp: time.Now(), Added: 2},
			{ActorHandle: "petrov", Timestamp: time.Now(), Modified: 1},
		},
		roster: []string{"ivanov", "petrov"},
	}
	ts := testViewServer(t, src)
	token := obtainToken(t, ts)

	// До первого refresh данных нет
	resp := authedRequest(t, http.MethodGet, ts.URL+"/api/v1/dashboard/view", token, nil)
	var view View
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	resp.Body.Close()
	require.Equal(t, StateUnloaded, view.State)

	resp = authedRequest(t, http.MethodPost, ts.URL+"/api/v1/dashboard/refresh", token, nil)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	resp.Body.Close()
	require.Equal(t, StateLoaded, view.State)
	require.Equal(t, "ivanov", view.SelectedActor)
	require.Len(t, view.Rows, 1)
	require.Equal(t, Summary{Added: 2}, view.Summary)

	// Смена фильтра пересчитывает представление без похода в сеть
	body, _ := json.Marshal(map[string]string{"actor": "petrov", "window": Window7d})
	resp = authedRequest(t, http.MethodPost, ts.URL+"/api/v1/dashboard/filter", token, body)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	resp.Body.Close()
	require.Equal(t, "petrov", view.SelectedActor)
	require.Equal(t, Window7d, view.ActiveWindow)
	require.Equal(t, Summary{Modified: 1}, view.Summary)
	require.Equal(t, int32(1), src.calls.Load())
}

package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/drakej/boinc-cluster/internal/fleet"
	"github.com/drakej/boinc-cluster/internal/fleet/mocks"
	"github.com/drakej/boinc-cluster/internal/guirpc"
)

func newTestServer(t *testing.T, route Route) *httptest.Server {
	t.Helper()
	router := mux.NewRouter()
	router.Handle(route.Pattern(), route).Methods(route.Method())
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server
}

func TestTasksHandler(t *testing.T) {
	ctrl := gomock.NewController(t)

	m := mocks.NewMockController(ctrl)
	m.EXPECT().Tasks(gomock.Any()).Return([]fleet.TaskView{
		{
			Hostname:    "host-a:31416",
			ProjectName: "Example@Home",
			Name:        "job_1",
			Status:      "Running",
			Percent:     25,
		},
	}).Times(1)

	server := newTestServer(t, NewTasksRoute(m))

	resp, err := server.Client().Get(server.URL + "/api/tasks")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var tasks []fleet.TaskView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&tasks))
	require.Len(t, tasks, 1)
	assert.Equal(t, "job_1", tasks[0].Name)
	assert.Equal(t, "Running", tasks[0].Status)
}

func TestTasksHandlerEmptyFleetReturnsEmptyList(t *testing.T) {
	ctrl := gomock.NewController(t)

	m := mocks.NewMockController(ctrl)
	m.EXPECT().Tasks(gomock.Any()).Return(nil).Times(1)

	server := newTestServer(t, NewTasksRoute(m))

	resp, err := server.Client().Get(server.URL + "/api/tasks")
	require.NoError(t, err)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(body))
}

func TestTasksLiveHandlerWrapsData(t *testing.T) {
	ctrl := gomock.NewController(t)

	m := mocks.NewMockController(ctrl)
	m.EXPECT().Tasks(gomock.Any()).Return([]fleet.TaskView{{Name: "job_1"}}).Times(1)

	server := newTestServer(t, NewTasksLiveRoute(m))

	resp, err := server.Client().Get(server.URL + "/api/tasks/live")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var envelope map[string][]fleet.TaskView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	require.Len(t, envelope["data"], 1)
	assert.Equal(t, "job_1", envelope["data"][0].Name)
}

func TestStatusHandler(t *testing.T) {
	ctrl := gomock.NewController(t)

	m := mocks.NewMockController(ctrl)
	m.EXPECT().Status(gomock.Any()).Return(map[string]fleet.StatusView{
		"host-a:31416": {
			Hostname:     "host-a:31416",
			TaskModeDesc: "Run based on preferences",
		},
	}).Times(1)

	server := newTestServer(t, NewStatusRoute(m))

	resp, err := server.Client().Get(server.URL + "/api/status")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var views map[string]fleet.StatusView
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&views))
	assert.Equal(t, "Run based on preferences", views["host-a:31416"].TaskModeDesc)
}

func TestSetModesHandler(t *testing.T) {
	ctrl := gomock.NewController(t)

	m := mocks.NewMockController(ctrl)

	handler := NewSetModesRoute(m)
	server := newTestServer(t, handler)
	url := server.URL + handler.Pattern()

	body, err := json.Marshal(&SetModesRequest{
		Component: "gpu",
		Mode:      "never",
		Duration:  3600,
		Hosts:     []string{"host-a:31416", "host-b:31416"},
	})
	require.NoError(t, err)

	m.EXPECT().SetMode(gomock.Any(), "host-a:31416", "gpu", guirpc.RunModeNever, 3600.0).Return(true).Times(1)
	m.EXPECT().SetMode(gomock.Any(), "host-b:31416", "gpu", guirpc.RunModeNever, 3600.0).Return(false).Times(1)

	resp, err := server.Client().Post(url, "application/json", bytes.NewBuffer(body))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var results map[string]bool
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&results))
	assert.True(t, results["host-a:31416"])
	assert.False(t, results["host-b:31416"])

	// An empty host list targets every configured host.
	m.EXPECT().Hostnames().Return([]string{"host-a:31416"}).Times(1)
	m.EXPECT().SetMode(gomock.Any(), "host-a:31416", "cpu", guirpc.RunModeAlways, 0.0).Return(true).Times(1)

	body, err = json.Marshal(&SetModesRequest{Component: "cpu", Mode: "always"})
	require.NoError(t, err)
	resp, err = server.Client().Post(url, "application/json", bytes.NewBuffer(body))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Unrecognized mode words are rejected before any RPC goes out.
	body, err = json.Marshal(&SetModesRequest{Component: "cpu", Mode: "sometimes"})
	require.NoError(t, err)
	resp, err = server.Client().Post(url, "application/json", bytes.NewBuffer(body))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Malformed JSON is a bad request too.
	resp, err = server.Client().Post(url, "application/json", bytes.NewBufferString("invalid"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBenchmarksHandler(t *testing.T) {
	ctrl := gomock.NewController(t)

	m := mocks.NewMockController(ctrl)
	m.EXPECT().RunBenchmarks(gomock.Any(), "host-a:31416").Return(true).Times(1)

	server := newTestServer(t, NewBenchmarksRoute(m))

	url := fmt.Sprintf("%s/api/computers/%s/benchmarks", server.URL, "host-a:31416")
	resp, err := server.Client().Post(url, "application/json", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var results map[string]bool
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&results))
	assert.True(t, results["host-a:31416"])
}

func TestVersionHandler(t *testing.T) {
	server := newTestServer(t, NewVersionRoute())

	resp, err := server.Client().Get(server.URL + "/api/version")
	require.NoError(t, err)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, clusterVersion, string(body))
}

func TestRouterRegistersRoutes(t *testing.T) {
	logger := zerolog.Nop()
	router := NewRouter([]Route{NewVersionRoute()}, &logger)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	resp, err := server.Client().Get(server.URL + "/api/version")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = server.Client().Get(server.URL + "/api/nonesuch")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

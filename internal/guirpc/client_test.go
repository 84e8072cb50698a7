package guirpc_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drakej/boinc-cluster/internal/guirpc"
	"github.com/drakej/boinc-cluster/internal/guirpc/guirpctest"
)

func startServer(t *testing.T, password string) (*guirpctest.Server, guirpc.Options) {
	t.Helper()
	server, err := guirpctest.NewServer(password)
	require.NoError(t, err)
	t.Cleanup(server.Close)

	host, port := server.Addr()
	return server, guirpc.Options{
		Host:           host,
		Port:           port,
		Password:       password,
		ConnectTimeout: 2 * time.Second,
	}
}

func TestConnectAndAuthorize(t *testing.T) {
	_, opts := startServer(t, "secret")

	client := guirpc.NewClient(opts)
	require.NoError(t, client.Connect())
	defer client.Close()

	assert.True(t, client.Connected())
	assert.True(t, client.Authorized)
	assert.Equal(t, guirpc.VersionInfo{Major: 7, Minor: 16, Release: 20}, client.Version)
}

func TestConnectBadPassword(t *testing.T) {
	_, opts := startServer(t, "secret")
	opts.Password = "wrong"

	client := guirpc.NewClient(opts)
	require.NoError(t, client.Connect())
	defer client.Close()

	// Rejected credentials leave the session connected but unauthorized.
	assert.True(t, client.Connected())
	assert.False(t, client.Authorized)
}

func TestConnectRefused(t *testing.T) {
	server, opts := startServer(t, "")
	server.Close()

	client := guirpc.NewClient(opts)
	err := client.Connect()
	require.Error(t, err)
	assert.False(t, client.Connected())
}

func TestSetModeRoundTrip(t *testing.T) {
	server, opts := startServer(t, "secret")
	server.Reply("set_gpu_mode", "<success/>")

	client := guirpc.NewClient(opts)
	require.NoError(t, client.Connect())
	defer client.Close()

	ok, err := client.SetMode("gpu", guirpc.RunModeNever, 0)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, server.Requests(), "set_gpu_mode")
}

func TestSetModeComponentAliases(t *testing.T) {
	server, opts := startServer(t, "secret")
	server.Reply("set_run_mode", "<success/>")
	server.Reply("set_network_mode", "<success/>")

	client := guirpc.NewClient(opts)
	require.NoError(t, client.Connect())
	defer client.Close()

	ok, err := client.SetMode("cpu", guirpc.RunModeAlways, 60)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = client.SetMode("net", guirpc.RunModeAuto, 0)
	require.NoError(t, err)
	assert.True(t, ok)

	requests := server.Requests()
	assert.Contains(t, requests, "set_run_mode")
	assert.Contains(t, requests, "set_network_mode")
}

func TestGetResults(t *testing.T) {
	server, opts := startServer(t, "secret")
	server.Reply("get_results", `<results>
		<result><name>wu_1_0</name><state>2</state></result>
		<result><name>wu_2_0</name><state>4</state></result>
	</results>`)

	client := guirpc.NewClient(opts)
	require.NoError(t, client.Connect())
	defer client.Close()

	results, err := client.GetResults(false)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "wu_1_0", results[0].Name)
	assert.Equal(t, guirpc.ResultStateFilesUploading, results[1].State)
}

func TestGetResultsUnexpectedRoot(t *testing.T) {
	server, opts := startServer(t, "secret")
	server.Reply("get_results", "<error>nope</error>")

	client := guirpc.NewClient(opts)
	require.NoError(t, client.Connect())
	defer client.Close()

	results, err := client.GetResults(true)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestGetCCStatus(t *testing.T) {
	server, opts := startServer(t, "secret")
	server.Reply("get_cc_status", `<cc_status>
		<network_status>0</network_status>
		<task_mode>2</task_mode>
		<gpu_mode>3</gpu_mode>
		<network_mode>1</network_mode>
		<task_suspend_reason>64</task_suspend_reason>
	</cc_status>`)

	client := guirpc.NewClient(opts)
	require.NoError(t, client.Connect())
	defer client.Close()

	status, err := client.GetCCStatus()
	require.NoError(t, err)
	assert.Equal(t, guirpc.NetworkStatusOnline, status.NetworkStatus)
	assert.Equal(t, guirpc.RunModeAuto, status.TaskMode)
	assert.Equal(t, guirpc.RunModeNever, status.GPUMode)
	assert.Equal(t, guirpc.RunModeAlways, status.NetworkMode)
	assert.Equal(t, guirpc.SuspendReasonCPUThrottle, status.TaskSuspendReason)
	// Absent fields keep their unknown sentinel, not zero.
	assert.Equal(t, guirpc.RunModeUnknown, status.TaskModePerm)
}

func TestQuit(t *testing.T) {
	server, opts := startServer(t, "secret")
	server.Reply("quit", "<success/>")

	client := guirpc.NewClient(opts)
	require.NoError(t, client.Connect())
	defer client.Close()

	ok, err := client.Quit()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, client.Connected())
}

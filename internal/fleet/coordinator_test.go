package fleet

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drakej/boinc-cluster/internal/config"
	"github.com/drakej/boinc-cluster/internal/guirpc"
	"github.com/drakej/boinc-cluster/internal/guirpc/guirpctest"
)

const testPassword = "fleet-test"

func newTestCoordinator(t *testing.T, servers ...*guirpctest.Server) *Coordinator {
	t.Helper()

	entries := make([]config.HostEntry, 0, len(servers))
	for _, srv := range servers {
		host, port := srv.Addr()
		entries = append(entries, config.HostEntry{
			Name:     fmt.Sprintf("%s:%d", host, port),
			Password: testPassword,
		})
	}
	cfg := &config.ClusterConfig{
		Hosts:          entries,
		ConnectTimeout: "2s",
	}
	logger := zerolog.Nop()
	return NewCoordinator(cfg, &logger)
}

func startServer(t *testing.T) *guirpctest.Server {
	t.Helper()
	srv, err := guirpctest.NewServer(testPassword)
	require.NoError(t, err)
	t.Cleanup(srv.Close)
	return srv
}

func TestStatusSkipsUnreachableHost(t *testing.T) {
	first := startServer(t)
	down := startServer(t)
	third := startServer(t)

	ccReply := `<cc_status>
		<task_mode>2</task_mode>
		<gpu_mode>1</gpu_mode>
		<network_mode>2</network_mode>
		<network_status>0</network_status>
	</cc_status>`
	first.Reply("get_cc_status", ccReply)
	third.Reply("get_cc_status", ccReply)

	// Dropped before the coordinator ever dials it.
	down.Close()

	coord := newTestCoordinator(t, first, down, third)
	views := coord.Status(context.Background())

	require.Len(t, views, 2)
	names := coord.Hostnames()
	assert.Contains(t, views, names[0])
	assert.NotContains(t, views, names[1])
	assert.Contains(t, views, names[2])
	assert.Equal(t, "Run based on preferences", views[names[0]].TaskModeDesc)
}

func TestTasksResolvesNamesFromState(t *testing.T) {
	srv := startServer(t)
	srv.Reply("get_state", `<client_state>
		<project>
			<master_url>http://example.org/</master_url>
			<project_name>Example@Home</project_name>
		</project>
		<app>
			<name>example_app</name>
			<user_friendly_name>Example App</user_friendly_name>
		</app>
		<workunit>
			<name>wu_1</name>
			<app_name>example_app</app_name>
			<version_num>716</version_num>
		</workunit>
	</client_state>`)
	srv.Reply("get_cc_status", `<cc_status><task_mode>2</task_mode></cc_status>`)
	srv.Reply("get_results", `<results>
		<result>
			<name>job_1</name>
			<wu_name>wu_1</wu_name>
			<project_url>http://example.org/</project_url>
			<state>2</state>
			<report_deadline>1700000000</report_deadline>
			<estimated_cpu_time_remaining>120.5</estimated_cpu_time_remaining>
			<active_task>
				<active_task_state>1</active_task_state>
				<scheduler_state>2</scheduler_state>
				<fraction_done>0.25</fraction_done>
				<elapsed_time>60</elapsed_time>
			</active_task>
		</result>
	</results>`)

	coord := newTestCoordinator(t, srv)
	tasks := coord.Tasks(context.Background())

	require.Len(t, tasks, 1)
	task := tasks[0]
	assert.Equal(t, "job_1", task.Name)
	assert.Equal(t, "Example@Home", task.ProjectName)
	assert.Equal(t, "Example App 7.16", task.Application)
	assert.Equal(t, "Running", task.Status)
	assert.Equal(t, int64(1700000000000), task.Deadline)
	assert.InDelta(t, 25.0, task.Percent, 0.001)
}

func TestTasksWithoutStateFallsBackToUnknown(t *testing.T) {
	srv := startServer(t)
	// get_state stays unrecognized so the snapshot has no entry for
	// this host; lookups must degrade rather than fail.
	srv.Reply("get_cc_status", `<cc_status><task_mode>2</task_mode></cc_status>`)
	srv.Reply("get_results", `<results>
		<result>
			<name>job_2</name>
			<wu_name>wu_gone</wu_name>
			<project_url>http://gone.example/</project_url>
			<state>2</state>
		</result>
	</results>`)

	coord := newTestCoordinator(t, srv)
	tasks := coord.Tasks(context.Background())

	require.Len(t, tasks, 1)
	assert.Equal(t, "Unknown", tasks[0].ProjectName)
	assert.Equal(t, "Unknown", tasks[0].Application)
}

func TestProjectsInConfigurationOrder(t *testing.T) {
	first := startServer(t)
	second := startServer(t)

	first.Reply("get_project_status", `<projects>
		<project>
			<master_url>http://a.example/</master_url>
			<project_name>Alpha</project_name>
		</project>
	</projects>`)
	second.Reply("get_project_status", `<projects>
		<project>
			<master_url>http://b.example/</master_url>
			<project_name>Beta</project_name>
		</project>
	</projects>`)

	coord := newTestCoordinator(t, first, second)
	views := coord.Projects(context.Background())

	require.Len(t, views, 2)
	assert.Equal(t, "Alpha", views[0].ProjectName)
	assert.Equal(t, "Beta", views[1].ProjectName)
}

func TestDiskUsageResolvesProjectNames(t *testing.T) {
	srv := startServer(t)
	srv.Reply("get_disk_usage", `<disk_usage_summary>
		<d_total>1000</d_total>
		<d_free>400</d_free>
		<d_boinc>20</d_boinc>
		<d_allowed>600</d_allowed>
		<project>
			<master_url>http://a.example/</master_url>
			<disk_usage>50</disk_usage>
		</project>
	</disk_usage_summary>`)
	srv.Reply("get_project_status", `<projects>
		<project>
			<master_url>http://a.example/</master_url>
			<project_name>Alpha</project_name>
		</project>
	</projects>`)

	coord := newTestCoordinator(t, srv)
	views := coord.DiskUsage(context.Background())

	require.Len(t, views, 1)
	for _, view := range views {
		require.Len(t, view.Projects, 1)
		assert.Equal(t, "Alpha", view.Projects[0].ProjectName)
		assert.InDelta(t, 50.0, view.Projects[0].Usage, 0.001)
		assert.InDelta(t, 70.0, view.Boinc, 0.001)
		assert.Equal(t, "70.00 bytes", view.BoincDesc)
	}
}

func TestTransfersFormatSizes(t *testing.T) {
	srv := startServer(t)
	srv.Reply("get_file_transfers", `<file_transfers>
		<file_transfer>
			<name>wu_0001</name>
			<project_url>http://a.example/</project_url>
			<project_name>Alpha</project_name>
			<nbytes>2097152</nbytes>
			<bytes_xferred>1048576</bytes_xferred>
			<is_upload/>
		</file_transfer>
	</file_transfers>`)

	coord := newTestCoordinator(t, srv)
	views := coord.Transfers(context.Background())

	require.Len(t, views, 1)
	assert.Equal(t, "2.00 MB", views[0].Size)
	assert.Equal(t, "upload", views[0].Direction)
	assert.InDelta(t, 50.0, views[0].Percent, 0.001)
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512.00 bytes", FormatBytes(512))
	assert.Equal(t, "1.00 KB", FormatBytes(1024))
	assert.Equal(t, "1.50 MB", FormatBytes(1.5*1024*1024))
	assert.Equal(t, "2.00 GB", FormatBytes(2*1024*1024*1024))
	assert.Equal(t, "1.25 TB", FormatBytes(1.25*1024*1024*1024*1024))
}

func TestSetModeRoundTrip(t *testing.T) {
	srv := startServer(t)
	srv.Reply("set_gpu_mode", `<success/>`)

	coord := newTestCoordinator(t, srv)
	host := coord.Hostnames()[0]

	assert.True(t, coord.SetMode(context.Background(), host, "gpu", guirpc.RunModeNever, 0))
	assert.False(t, coord.SetMode(context.Background(), "nonesuch:31416", "gpu", guirpc.RunModeNever, 0))
}

func TestConcurrentReadsShareOneSession(t *testing.T) {
	srv := startServer(t)
	srv.Reply("get_cc_status", `<cc_status><task_mode>2</task_mode></cc_status>`)
	srv.Reply("get_project_status", `<projects>
		<project>
			<master_url>http://a.example/</master_url>
			<project_name>Alpha</project_name>
		</project>
	</projects>`)

	coord := newTestCoordinator(t, srv)
	host := coord.Hostnames()[0]

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			views := coord.Status(context.Background())
			assert.Contains(t, views, host)
		}()
		go func() {
			defer wg.Done()
			views := coord.Projects(context.Background())
			assert.Len(t, views, 1)
		}()
	}
	wg.Wait()

	coord.mu.Lock()
	assert.Len(t, coord.sessions, 1)
	coord.mu.Unlock()
}

func TestSessionDiscardedAfterTransportError(t *testing.T) {
	srv := startServer(t)
	srv.Reply("get_cc_status", `<cc_status><task_mode>2</task_mode></cc_status>`)

	coord := newTestCoordinator(t, srv)
	host := coord.Hostnames()[0]

	views := coord.Status(context.Background())
	require.Contains(t, views, host)

	srv.Close()
	// Give the closed listener a moment to tear sessions down.
	time.Sleep(50 * time.Millisecond)

	views = coord.Status(context.Background())
	assert.NotContains(t, views, host)

	coord.mu.Lock()
	_, alive := coord.sessions[host]
	coord.mu.Unlock()
	assert.False(t, alive, "session should be discarded after transport failure")
}

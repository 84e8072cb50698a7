// Package fleet coordinates GUI RPC sessions across every configured host
// and aggregates per-host replies into fleet-wide views. One unreachable
// host is logged and skipped; it never aborts a poll of the others.
package fleet

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/drakej/boinc-cluster/internal/config"
	"github.com/drakej/boinc-cluster/internal/guirpc"
)

// Controller is the read/command surface the presentation layer consumes.
type Controller interface {
	Hostnames() []string
	Status(ctx context.Context) map[string]StatusView
	Computers(ctx context.Context) map[string]HostView
	Projects(ctx context.Context) []ProjectView
	Tasks(ctx context.Context) []TaskView
	Transfers(ctx context.Context) []TransferView
	DiskUsage(ctx context.Context) map[string]DiskView
	Statistics(ctx context.Context) map[string][]ProjectStatsView
	SetMode(ctx context.Context, host, component string, mode guirpc.RunMode, duration float64) bool
	RunBenchmarks(ctx context.Context, host string) bool
}

// Endpoint is one configured core client. Name is the configured host
// string and the identity key used throughout.
type Endpoint struct {
	Name     string
	Host     string
	Port     int
	Password string
}

// session wraps a client so concurrent callers for the same host share one
// connect attempt instead of racing to create two sessions.
type session struct {
	once   sync.Once
	client *guirpc.Client
	err    error
}

// Coordinator implements Controller over a lazily-connected session per
// host. Sessions are discarded after transport errors and recreated on the
// next access.
type Coordinator struct {
	endpoints      []Endpoint
	passwdFile     string
	connectTimeout time.Duration
	logger         *zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

var _ Controller = (*Coordinator)(nil)

func NewCoordinator(cfg *config.ClusterConfig, logger *zerolog.Logger) *Coordinator {
	endpoints := make([]Endpoint, 0, len(cfg.Hosts))
	for _, entry := range cfg.Hosts {
		host, port := entry.Addr()
		endpoints = append(endpoints, Endpoint{
			Name:     entry.Name,
			Host:     host,
			Port:     port,
			Password: entry.Password,
		})
	}
	return &Coordinator{
		endpoints:      endpoints,
		passwdFile:     cfg.PasswdFile,
		connectTimeout: cfg.ConnectTimeoutDuration(),
		logger:         logger,
		sessions:       make(map[string]*session),
	}
}

// Hostnames returns the configured hosts in configuration order.
func (c *Coordinator) Hostnames() []string {
	names := make([]string, len(c.endpoints))
	for i, ep := range c.endpoints {
		names[i] = ep.Name
	}
	return names
}

// acquire returns the host's session, connecting one if none exists. A
// failed connect is evicted immediately so the next access retries; it is
// never retried within the same call.
func (c *Coordinator) acquire(ep Endpoint) (*guirpc.Client, error) {
	c.mu.Lock()
	s, ok := c.sessions[ep.Name]
	if !ok {
		s = &session{}
		c.sessions[ep.Name] = s
	}
	c.mu.Unlock()

	s.once.Do(func() {
		client := guirpc.NewClient(guirpc.Options{
			Host:           ep.Host,
			Port:           ep.Port,
			Password:       ep.Password,
			PasswdFile:     c.passwdFile,
			ConnectTimeout: c.connectTimeout,
		})
		if err := client.Connect(); err != nil {
			s.err = err
			return
		}
		s.client = client
	})

	if s.err != nil {
		c.evict(ep.Name, s)
		return nil, s.err
	}
	return s.client, nil
}

// evict drops a session from the map unless a fresh one already replaced it.
func (c *Coordinator) evict(name string, s *session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if current, ok := c.sessions[name]; ok && current == s {
		delete(c.sessions, name)
	}
}

// discard tears a session down after a transport error.
func (c *Coordinator) discard(name string) {
	c.mu.Lock()
	s, ok := c.sessions[name]
	if ok {
		delete(c.sessions, name)
	}
	c.mu.Unlock()
	if ok && s.client != nil {
		_ = s.client.Close()
	}
}

// eachHost runs fn once per configured host in parallel. Connect failures
// and per-host operation errors are logged and skip that host only.
func (c *Coordinator) eachHost(ctx context.Context, op string, fn func(ep Endpoint, client *guirpc.Client) error) {
	eg, ctx := errgroup.WithContext(ctx)
	for _, ep := range c.endpoints {
		ep := ep
		eg.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			client, err := c.acquire(ep)
			if err != nil {
				c.logger.Warn().Err(err).Msgf("%s: skipping host %s", op, ep.Name)
				return nil
			}
			if err := fn(ep, client); err != nil {
				c.logger.Warn().Err(err).Msgf("%s failed for host %s", op, ep.Name)
				if !client.Connected() {
					c.discard(ep.Name)
				}
			}
			return nil
		})
	}
	_ = eg.Wait()
}

// Status polls get_cc_status across the fleet.
func (c *Coordinator) Status(ctx context.Context) map[string]StatusView {
	views := make(map[string]StatusView)
	var mu sync.Mutex

	c.eachHost(ctx, "status", func(ep Endpoint, client *guirpc.Client) error {
		cc, err := client.GetCCStatus()
		if err != nil {
			return err
		}
		mu.Lock()
		views[ep.Name] = newStatusView(ep.Name, cc)
		mu.Unlock()
		return nil
	})
	return views
}

// Computers polls host hardware info across the fleet.
func (c *Coordinator) Computers(ctx context.Context) map[string]HostView {
	views := make(map[string]HostView)
	var mu sync.Mutex

	c.eachHost(ctx, "computers", func(ep Endpoint, client *guirpc.Client) error {
		info, err := client.GetHostInfo()
		if err != nil {
			return err
		}
		mu.Lock()
		views[ep.Name] = newHostView(ep.Name, info, client.Version)
		mu.Unlock()
		return nil
	})
	return views
}

// Projects polls project status across the fleet, in configuration order.
func (c *Coordinator) Projects(ctx context.Context) []ProjectView {
	now := time.Now()
	byHost := make(map[string][]ProjectView)
	var mu sync.Mutex

	c.eachHost(ctx, "projects", func(ep Endpoint, client *guirpc.Client) error {
		projects, err := client.GetProjectStatus()
		if err != nil {
			return err
		}
		views := make([]ProjectView, 0, len(projects))
		for _, p := range projects {
			views = append(views, newProjectView(ep.Name, p, now))
		}
		mu.Lock()
		byHost[ep.Name] = views
		mu.Unlock()
		return nil
	})
	return flatten(c.endpoints, byHost)
}

// refreshState polls get_state across the fleet into a fresh snapshot.
func (c *Coordinator) refreshState(ctx context.Context) *Snapshot {
	snapshot := newSnapshot()
	var mu sync.Mutex

	c.eachHost(ctx, "state", func(ep Endpoint, client *guirpc.Client) error {
		state, err := client.GetState()
		if err != nil {
			return err
		}
		mu.Lock()
		snapshot.states[ep.Name] = newHostState(ep.Name, state)
		mu.Unlock()
		return nil
	})

	c.logger.Debug().Str("cycle", snapshot.ID).Msgf("state refresh covered %d/%d hosts",
		len(snapshot.states), len(c.endpoints))
	return snapshot
}

// Tasks polls jobs across the fleet with derived status. A state refresh
// always precedes the jobs poll so friendly-name and project lookups have
// data; a host missing from the snapshot degrades to "Unknown" lookups.
func (c *Coordinator) Tasks(ctx context.Context) []TaskView {
	snapshot := c.refreshState(ctx)

	byHost := make(map[string][]TaskView)
	var mu sync.Mutex

	c.eachHost(ctx, "tasks", func(ep Endpoint, client *guirpc.Client) error {
		cc, err := client.GetCCStatus()
		if err != nil {
			return err
		}
		jobs, err := client.GetResults(false)
		if err != nil {
			return err
		}
		state := snapshot.State(ep.Name)
		views := make([]TaskView, 0, len(jobs))
		for _, job := range jobs {
			views = append(views, newTaskView(ep.Name, job, cc, state))
		}
		mu.Lock()
		byHost[ep.Name] = views
		mu.Unlock()
		return nil
	})
	return flatten(c.endpoints, byHost)
}

// Transfers polls pending file transfers across the fleet.
func (c *Coordinator) Transfers(ctx context.Context) []TransferView {
	byHost := make(map[string][]TransferView)
	var mu sync.Mutex

	c.eachHost(ctx, "transfers", func(ep Endpoint, client *guirpc.Client) error {
		transfers, err := client.GetFileTransfers()
		if err != nil {
			return err
		}
		views := make([]TransferView, 0, len(transfers))
		for _, t := range transfers {
			views = append(views, newTransferView(ep.Name, t))
		}
		mu.Lock()
		byHost[ep.Name] = views
		mu.Unlock()
		return nil
	})
	return flatten(c.endpoints, byHost)
}

// DiskUsage polls disk usage across the fleet, resolving project names via
// each host's project list.
func (c *Coordinator) DiskUsage(ctx context.Context) map[string]DiskView {
	views := make(map[string]DiskView)
	var mu sync.Mutex

	c.eachHost(ctx, "disk", func(ep Endpoint, client *guirpc.Client) error {
		usage, err := client.GetDiskUsage()
		if err != nil {
			return err
		}
		projects, err := client.GetProjectStatus()
		if err != nil {
			return err
		}
		names := projectNames(projects)
		mu.Lock()
		views[ep.Name] = newDiskView(ep.Name, usage, names)
		mu.Unlock()
		return nil
	})
	return views
}

// Statistics polls per-project credit history across the fleet.
func (c *Coordinator) Statistics(ctx context.Context) map[string][]ProjectStatsView {
	views := make(map[string][]ProjectStatsView)
	var mu sync.Mutex

	c.eachHost(ctx, "statistics", func(ep Endpoint, client *guirpc.Client) error {
		stats, err := client.GetStatistics()
		if err != nil {
			return err
		}
		projects, err := client.GetProjectStatus()
		if err != nil {
			return err
		}
		names := projectNames(projects)
		hostViews := make([]ProjectStatsView, 0, len(stats.ProjectStatistics))
		for _, ps := range stats.ProjectStatistics {
			hostViews = append(hostViews, newProjectStatsView(ps, names))
		}
		mu.Lock()
		views[ep.Name] = hostViews
		mu.Unlock()
		return nil
	})
	return views
}

// SetMode issues a mode change to one named host, reporting success as a
// boolean like the rest of the command surface.
func (c *Coordinator) SetMode(ctx context.Context, host, component string, mode guirpc.RunMode, duration float64) bool {
	return c.command(host, "set mode", func(client *guirpc.Client) (bool, error) {
		return client.SetMode(component, mode, duration)
	})
}

// RunBenchmarks asks one named host to rerun CPU benchmarks.
func (c *Coordinator) RunBenchmarks(ctx context.Context, host string) bool {
	return c.command(host, "run benchmarks", func(client *guirpc.Client) (bool, error) {
		return client.RunBenchmarks()
	})
}

func (c *Coordinator) command(host, op string, fn func(client *guirpc.Client) (bool, error)) bool {
	ep, ok := c.endpoint(host)
	if !ok {
		c.logger.Warn().Msgf("%s: unknown host %s", op, host)
		return false
	}
	client, err := c.acquire(ep)
	if err != nil {
		c.logger.Warn().Err(err).Msgf("%s: could not connect to %s", op, host)
		return false
	}
	ok, err = fn(client)
	if err != nil {
		c.logger.Warn().Err(err).Msgf("%s failed for host %s", op, host)
		if !client.Connected() {
			c.discard(ep.Name)
		}
		return false
	}
	return ok
}

func (c *Coordinator) endpoint(host string) (Endpoint, bool) {
	for _, ep := range c.endpoints {
		if ep.Name == host {
			return ep, true
		}
	}
	return Endpoint{}, false
}

// flatten assembles per-host slices into one list in configuration order.
func flatten[V any](endpoints []Endpoint, byHost map[string][]V) []V {
	var out []V
	for _, ep := range endpoints {
		out = append(out, byHost[ep.Name]...)
	}
	return out
}

func projectNames(projects []guirpc.Project) map[string]string {
	names := make(map[string]string, len(projects))
	for _, p := range projects {
		names[p.MasterURL] = p.ProjectName
	}
	return names
}

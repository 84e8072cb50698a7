package guirpc

import (
	"crypto/md5"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// ErrNotConnected is returned by operations invoked before a successful
// Connect, or after a transport error tore the session down.
var ErrNotConnected = errors.New("guirpc: not connected")

// AuthenticationError reports a rejected auth2 exchange. The session stays
// connected; unauthenticated operations may still be attempted.
type AuthenticationError struct {
	Host string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("guirpc: authentication rejected by %s", e.Host)
}

// Options configures a Client for a single host endpoint.
type Options struct {
	Host     string
	Port     int
	Password string

	// PasswdFile is consulted when Password is empty and Host is local.
	PasswdFile     string
	ConnectTimeout time.Duration
}

// Client is one authenticated GUI RPC session. A Client is discarded after
// any transport error; the fleet layer creates a fresh one lazily on next
// access.
type Client struct {
	opts Options
	conn *conn

	// mu guards connected. The flag is written on every round-trip while
	// callers sharing the session may read it from other goroutines; the
	// conn's own mutex only serializes wire traffic.
	mu        sync.Mutex
	connected bool

	Authorized bool
	Version    VersionInfo
}

// Connected records the outcome of the last operation only. It does not
// predict the next call's result and must be read after a call, not before.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *Client) setConnected(v bool) {
	c.mu.Lock()
	c.connected = v
	c.mu.Unlock()
}

func NewClient(opts Options) *Client {
	if opts.Port == 0 {
		opts.Port = 31416
	}
	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = 10 * time.Second
	}
	return &Client{opts: opts}
}

// Connect dials the endpoint, runs the challenge/response handshake and
// exchanges protocol versions. A rejected credential is not a connect
// failure: the session stays up for unauthenticated use and the error is an
// *AuthenticationError.
func (c *Client) Connect() error {
	conn, err := dial(c.opts.Host, c.opts.Port, c.opts.ConnectTimeout)
	if err != nil {
		c.setConnected(false)
		return err
	}
	c.conn = conn
	c.setConnected(true)

	authorized, err := c.authorize()
	if err != nil {
		if _, ok := err.(*AuthenticationError); !ok {
			c.fail()
			return err
		}
	}
	c.Authorized = authorized

	version, err := c.ExchangeVersions()
	if err != nil {
		c.fail()
		return err
	}
	c.Version = version

	return nil
}

// Close tears the session down. Safe to call on a never-connected client.
func (c *Client) Close() error {
	c.setConnected(false)
	if c.conn == nil {
		return nil
	}
	return c.conn.close()
}

// fail marks the session dead after a transport error.
func (c *Client) fail() {
	c.setConnected(false)
	if c.conn != nil {
		_ = c.conn.close()
	}
}

// call runs one round-trip and maintains the advisory Connected flag. A
// malformed payload is scoped to this operation only and does not tear the
// session down.
func (c *Client) call(request string) (*Element, error) {
	if c.conn == nil {
		return nil, ErrNotConnected
	}
	reply, err := c.conn.call(request)
	if err != nil {
		var malformed *MalformedPayloadError
		if errors.As(err, &malformed) {
			return nil, err
		}
		c.fail()
		return nil, err
	}
	c.setConnected(true)
	return reply, nil
}

// authorize runs the auth1/auth2 exchange. The digest is the lowercase hex
// MD5 of nonce+password, as fixed by the protocol.
func (c *Client) authorize() (bool, error) {
	password := c.opts.Password
	if password == "" && isLocalHost(c.opts.Host) {
		password = readPasswdFile(c.opts.PasswdFile)
	}

	nonceReply, err := c.call("<auth1/>")
	if err != nil {
		return false, err
	}
	nonce := strText(nonceReply)

	digest := fmt.Sprintf("%x", md5.Sum([]byte(nonce+password)))
	reply, err := c.call(fmt.Sprintf("<auth2><nonce_hash>%s</nonce_hash></auth2>", digest))
	if err != nil {
		return false, err
	}

	if reply.Tag != "authorized" {
		return false, &AuthenticationError{Host: c.opts.Host}
	}
	return true, nil
}

// ExchangeVersions reports the core client's version.
func (c *Client) ExchangeVersions() (VersionInfo, error) {
	reply, err := c.call("<exchange_versions/>")
	if err != nil {
		return VersionInfo{}, err
	}
	return decodeVersionInfo(reply), nil
}

// GetCCStatus returns the host-wide run/suspend snapshot.
func (c *Client) GetCCStatus() (CCStatus, error) {
	reply, err := c.call("<get_cc_status/>")
	if err != nil {
		return CCStatus{}, err
	}
	return decodeCCStatus(reply), nil
}

// GetHostInfo returns host hardware and usage information.
func (c *Client) GetHostInfo() (HostInfo, error) {
	reply, err := c.call("<get_host_info/>")
	if err != nil {
		return HostInfo{}, err
	}
	return decodeHostInfo(reply), nil
}

// GetState returns the full client state: host info, projects, apps, app
// versions, work units and results.
func (c *Client) GetState() (ClientState, error) {
	reply, err := c.call("<get_state/>")
	if err != nil {
		return ClientState{}, err
	}
	return decodeClientState(reply), nil
}

// GetResults lists jobs. In-progress jobs carry CPU time and fraction done.
func (c *Client) GetResults(activeOnly bool) ([]Result, error) {
	active := 0
	if activeOnly {
		active = 1
	}
	reply, err := c.call(fmt.Sprintf("<get_results><active_only>%d</active_only></get_results>", active))
	if err != nil {
		return nil, err
	}
	if reply.Tag != "results" {
		return nil, nil
	}
	var results []Result
	for _, child := range reply.Children {
		results = append(results, decodeResult(child))
	}
	return results, nil
}

// GetProjectStatus lists attached projects.
func (c *Client) GetProjectStatus() ([]Project, error) {
	reply, err := c.call("<get_project_status/>")
	if err != nil {
		return nil, err
	}
	if reply.Tag != "projects" {
		return nil, nil
	}
	var projects []Project
	for _, child := range reply.Children {
		projects = append(projects, decodeProject(child))
	}
	return projects, nil
}

// GetStatistics returns per-project daily credit history.
func (c *Client) GetStatistics() (Statistics, error) {
	reply, err := c.call("<get_statistics/>")
	if err != nil {
		return Statistics{}, err
	}
	return decodeStatistics(reply), nil
}

// GetDiskUsage returns client disk usage totals and per-project usage.
func (c *Client) GetDiskUsage() (DiskUsage, error) {
	reply, err := c.call("<get_disk_usage/>")
	if err != nil {
		return DiskUsage{}, err
	}
	return decodeDiskUsage(reply), nil
}

// GetFileTransfers lists pending uploads and downloads.
func (c *Client) GetFileTransfers() ([]FileTransfer, error) {
	reply, err := c.call("<get_file_transfers/>")
	if err != nil {
		return nil, err
	}
	if reply.Tag != "file_transfers" {
		return nil, nil
	}
	var transfers []FileTransfer
	for _, child := range reply.Children {
		transfers = append(transfers, decodeFileTransfer(child))
	}
	return transfers, nil
}

// SetMode issues a mode-change command for one component. Valid components
// are "run" (alias "cpu"), "gpu" and "network" (alias "net"). Duration 0
// makes the mode permanent; otherwise the previous permanent mode is
// restored after duration seconds.
func (c *Client) SetMode(component string, mode RunMode, duration float64) (bool, error) {
	switch component {
	case "cpu":
		component = "run"
	case "net":
		component = "network"
	}

	reply, err := c.call(fmt.Sprintf("<set_%s_mode><%s/><duration>%f</duration></set_%s_mode>",
		component, mode.wireTag(), duration, component))
	if err != nil {
		return false, err
	}
	return reply.Tag == "success", nil
}

// SetRunMode sets the CPU run mode. NEVER suspends all computation.
func (c *Client) SetRunMode(mode RunMode, duration float64) (bool, error) {
	return c.SetMode("cpu", mode, duration)
}

// SetGPUMode sets the GPU run mode.
func (c *Client) SetGPUMode(mode RunMode, duration float64) (bool, error) {
	return c.SetMode("gpu", mode, duration)
}

// SetNetworkMode sets the network activity mode.
func (c *Client) SetNetworkMode(mode RunMode, duration float64) (bool, error) {
	return c.SetMode("net", mode, duration)
}

// RunBenchmarks asks the client to rerun CPU benchmarks. Computing suspends
// while they run.
func (c *Client) RunBenchmarks() (bool, error) {
	reply, err := c.call("<run_benchmarks/>")
	if err != nil {
		return false, err
	}
	return reply.Tag == "success", nil
}

// Quit tells the core client process to exit.
func (c *Client) Quit() (bool, error) {
	reply, err := c.call("<quit/>")
	if err != nil {
		return false, err
	}
	if reply.Tag != "success" {
		return false, nil
	}
	c.setConnected(false)
	return true, nil
}

func isLocalHost(host string) bool {
	switch host {
	case "", "localhost", "127.0.0.1", "::1":
		return true
	}
	return false
}

// readPasswdFile reads the local GUI RPC credential file, trimming the
// trailing newline. Unreadable or missing files yield a blank password.
func readPasswdFile(path string) string {
	if path == "" {
		return ""
	}
	buf, err := os.ReadFile(path)
	if err != nil {
		log.Debug().Msgf("GUI RPC password file %s not readable: %v", path, err)
		return ""
	}
	return strings.TrimSuffix(string(buf), "\n")
}

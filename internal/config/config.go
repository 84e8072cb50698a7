package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	viper "github.com/spf13/viper"
)

// DefaultGUIRPCPort is the well-known port the core client listens on.
const DefaultGUIRPCPort = 31416

// DefaultPasswdFile is where the core client writes its GUI RPC password on
// a local install. Read as a fallback when no credential is configured for a
// loopback host.
const DefaultPasswdFile = "/etc/boinc-client/gui_rpc_auth.cfg"

// HostEntry is one configured core client endpoint. Identity is the Name
// string exactly as written in the config file; it is also the key the API
// layer uses to address command operations.
type HostEntry struct {
	Name     string `mapstructure:"name"`
	Password string `mapstructure:"password"`
}

// Addr splits an optional ":port" suffix off the host name, falling back to
// the well-known port.
func (h HostEntry) Addr() (string, int) {
	host, portStr, found := strings.Cut(h.Name, ":")
	if !found {
		return h.Name, DefaultGUIRPCPort
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return host, DefaultGUIRPCPort
	}
	return host, port
}

type ClusterConfig struct {
	Hosts []HostEntry `mapstructure:"hosts"`

	APIPort        int    `mapstructure:"api_port"`
	LogLevel       string `mapstructure:"log_level"`
	PasswdFile     string `mapstructure:"passwd_file"`
	ConnectTimeout string `mapstructure:"connect_timeout"`
}

// ListenPort is the API server port, defaulting when unconfigured.
func (c *ClusterConfig) ListenPort() int {
	if c.APIPort <= 0 {
		return 8080
	}
	return c.APIPort
}

// ConnectTimeoutDuration parses the configured connect timeout, defaulting
// when unset or unparseable. A timeout is treated like any other transport
// failure by the fleet layer.
func (c *ClusterConfig) ConnectTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.ConnectTimeout)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

func loadEnv() error {
	viper.SetEnvPrefix("boinc_cluster")
	if err := viper.BindEnv("config_path", "BOINC_CLUSTER_CONFIG_PATH"); err != nil {
		return err
	}
	viper.SetDefault("config_path", ".")

	viper.SetDefault("api_port", 8080)
	viper.SetDefault("log_level", "info")
	viper.SetDefault("passwd_file", DefaultPasswdFile)
	viper.SetDefault("connect_timeout", "10s")
	return nil
}

func loadConfig() (*ClusterConfig, error) {
	viper.AddConfigPath(viper.GetString("config_path"))
	viper.AddConfigPath("$HOME/.boinc-cluster")

	viper.SetConfigType("yml")
	viper.SetConfigName("boinc-cluster")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var config ClusterConfig
	err := viper.Unmarshal(&config)
	if err != nil {
		return nil, err
	}

	if len(config.Hosts) == 0 {
		return nil, fmt.Errorf("no hosts configured in %s", viper.ConfigFileUsed())
	}

	log.Debug().Msgf("Loaded cluster config with %d hosts", len(config.Hosts))

	return &config, nil
}

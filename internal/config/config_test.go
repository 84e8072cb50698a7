package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHostEntryAddr(t *testing.T) {
	tests := []struct {
		name string
		host string
		port int
	}{
		{"crunch1", "crunch1", DefaultGUIRPCPort},
		{"crunch1:31417", "crunch1", 31417},
		{"192.168.1.20:5000", "192.168.1.20", 5000},
		{"crunch1:notaport", "crunch1", DefaultGUIRPCPort},
	}
	for _, tt := range tests {
		host, port := HostEntry{Name: tt.name}.Addr()
		assert.Equal(t, tt.host, host, tt.name)
		assert.Equal(t, tt.port, port, tt.name)
	}
}

func TestListenPortDefault(t *testing.T) {
	cfg := &ClusterConfig{}
	assert.Equal(t, 8080, cfg.ListenPort())

	cfg.APIPort = 9090
	assert.Equal(t, 9090, cfg.ListenPort())
}

func TestConnectTimeoutDuration(t *testing.T) {
	cfg := &ClusterConfig{}
	assert.Equal(t, 10*time.Second, cfg.ConnectTimeoutDuration())

	cfg.ConnectTimeout = "2s"
	assert.Equal(t, 2*time.Second, cfg.ConnectTimeoutDuration())

	cfg.ConnectTimeout = "garbage"
	assert.Equal(t, 10*time.Second, cfg.ConnectTimeoutDuration())

	cfg.ConnectTimeout = "-5s"
	assert.Equal(t, 10*time.Second, cfg.ConnectTimeoutDuration())
}

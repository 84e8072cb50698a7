package status

import "github.com/drakej/boinc-cluster/internal/guirpc"

// Display descriptions and icon names for run modes and network status, as
// shown on the computers page. Icons are Font Awesome class names the
// presentation layer passes straight through.

func RunModeIcon(m guirpc.RunMode) string {
	switch m {
	case guirpc.RunModeAlways:
		return "text-success fa-bolt"
	case guirpc.RunModeAuto:
		return "text-success fa-user-cog"
	case guirpc.RunModeNever:
		return "text-secondary fa-power-off"
	}
	return "fa-question"
}

func TaskModeDescription(m guirpc.RunMode) string {
	switch m {
	case guirpc.RunModeAlways:
		return "Run always"
	case guirpc.RunModeAuto:
		return "Run based on preferences"
	case guirpc.RunModeNever:
		return "Suspend"
	}
	return "unknown"
}

func GPUModeDescription(m guirpc.RunMode) string {
	switch m {
	case guirpc.RunModeAlways:
		return "Use GPU always"
	case guirpc.RunModeAuto:
		return "Use GPU based on preferences"
	case guirpc.RunModeNever:
		return "Suspend GPU"
	}
	return "unknown"
}

func NetworkModeDescription(m guirpc.RunMode) string {
	switch m {
	case guirpc.RunModeAlways:
		return "Network activity always"
	case guirpc.RunModeAuto:
		return "Network activity based on preferences"
	case guirpc.RunModeNever:
		return "Suspend network activity"
	}
	return "unknown"
}

func NetworkStatusIcon(s guirpc.NetworkStatus) string {
	switch s {
	case guirpc.NetworkStatusOnline:
		return "fa-stream"
	case guirpc.NetworkStatusWantConnection:
		return "fa-plug"
	case guirpc.NetworkStatusWantDisconnect:
		return "fa-unlink"
	}
	return "fa-question"
}

package guirpc

import (
	"fmt"
	"strings"
)

// Every enum in the GUI RPC protocol reserves -1 as an explicit "unknown"
// sentinel, distinct from all wire values (zero is frequently a valid code).
// Decoding maps any out-of-range integer to the sentinel.

// NetworkStatus holds values of the cc_status "network_status" field.
type NetworkStatus int

const (
	NetworkStatusUnknown        NetworkStatus = -1
	NetworkStatusOnline         NetworkStatus = 0
	NetworkStatusWantConnection NetworkStatus = 1
	NetworkStatusWantDisconnect NetworkStatus = 2
	NetworkStatusLookupPending  NetworkStatus = 3
)

func networkStatusFromWire(v int) NetworkStatus {
	switch s := NetworkStatus(v); s {
	case NetworkStatusOnline, NetworkStatusWantConnection, NetworkStatusWantDisconnect, NetworkStatusLookupPending:
		return s
	}
	return NetworkStatusUnknown
}

func (s NetworkStatus) Name() string {
	switch s {
	case NetworkStatusOnline:
		return "online"
	case NetworkStatusWantConnection:
		return "need connection"
	case NetworkStatusWantDisconnect:
		return "don't need connection"
	case NetworkStatusLookupPending:
		return "reference site lookup pending"
	}
	return "unknown"
}

// RunMode is the ALWAYS/AUTO/NEVER/RESTORE setting governing CPU, GPU or
// network activity. RESTORE is only meaningful in set_X_mode requests.
type RunMode int

const (
	RunModeUnknown RunMode = -1
	RunModeAlways  RunMode = 1
	RunModeAuto    RunMode = 2
	RunModeNever   RunMode = 3
	RunModeRestore RunMode = 4
)

func runModeFromWire(v int) RunMode {
	switch m := RunMode(v); m {
	case RunModeAlways, RunModeAuto, RunModeNever, RunModeRestore:
		return m
	}
	return RunModeUnknown
}

func (m RunMode) Name() string {
	switch m {
	case RunModeAlways:
		return "always"
	case RunModeAuto:
		return "according to prefs"
	case RunModeNever:
		return "never"
	case RunModeRestore:
		return "restore"
	}
	return "unknown"
}

// ParseRunMode maps the mode words accepted by the command surface onto
// RunMode values. The second return is false for anything unrecognized.
func ParseRunMode(s string) (RunMode, bool) {
	switch s {
	case "always":
		return RunModeAlways, true
	case "auto":
		return RunModeAuto, true
	case "never":
		return RunModeNever, true
	case "restore":
		return RunModeRestore, true
	}
	return RunModeUnknown, false
}

// wireTag is the request element name for set_run_mode/set_gpu_mode/
// set_network_mode commands.
func (m RunMode) wireTag() string {
	switch m {
	case RunModeAlways:
		return "always"
	case RunModeAuto:
		return "auto"
	case RunModeNever:
		return "never"
	case RunModeRestore:
		return "restore"
	}
	return "auto"
}

// SuspendReason is the bitmask explaining why an activity class is paused.
// A couple of high values (OS and above) are plain codes, not bits; they are
// kept as-is for compatibility with the wire format.
type SuspendReason int

const (
	SuspendReasonNotSuspended         SuspendReason = 0
	SuspendReasonBatteries            SuspendReason = 1
	SuspendReasonUserActive           SuspendReason = 2
	SuspendReasonUserReq              SuspendReason = 4
	SuspendReasonTimeOfDay            SuspendReason = 8
	SuspendReasonBenchmarks           SuspendReason = 16
	SuspendReasonDiskSize             SuspendReason = 32
	SuspendReasonCPUThrottle          SuspendReason = 64
	SuspendReasonNoRecentInput        SuspendReason = 128
	SuspendReasonInitialDelay         SuspendReason = 256
	SuspendReasonExclusiveAppRunning  SuspendReason = 512
	SuspendReasonCPUUsage             SuspendReason = 1024
	SuspendReasonNetworkQuotaExceeded SuspendReason = 2048
	SuspendReasonOS                   SuspendReason = 4096
	SuspendReasonWifiState            SuspendReason = 4097
	SuspendReasonBatteryCharging      SuspendReason = 4098
	SuspendReasonBatteryOverheated    SuspendReason = 4099
)

func (r SuspendReason) Name() string {
	switch r {
	case SuspendReasonNotSuspended:
		return "not suspended"
	case SuspendReasonBatteries:
		return "on batteries"
	case SuspendReasonUserActive:
		return "computer is in use"
	case SuspendReasonUserReq:
		return "user request"
	case SuspendReasonTimeOfDay:
		return "time of day"
	case SuspendReasonBenchmarks:
		return "CPU benchmarks in progress"
	case SuspendReasonDiskSize:
		return "need disk space - check preferences"
	case SuspendReasonCPUThrottle:
		return "CPU throttled"
	case SuspendReasonNoRecentInput:
		return "no recent user activity"
	case SuspendReasonInitialDelay:
		return "initial delay"
	case SuspendReasonExclusiveAppRunning:
		return "an exclusive app is running"
	case SuspendReasonCPUUsage:
		return "CPU is busy"
	case SuspendReasonNetworkQuotaExceeded:
		return "network bandwidth limit exceeded"
	case SuspendReasonOS:
		return "requested by operating system"
	case SuspendReasonWifiState:
		return "not connected to WiFi network"
	case SuspendReasonBatteryCharging:
		return "battery is recharging"
	case SuspendReasonBatteryOverheated:
		return "battery is overheated"
	}
	return "unknown reason"
}

// Suspended reports whether any suspend bit is set.
func (r SuspendReason) Suspended() bool {
	return r != SuspendReasonNotSuspended
}

// Throttled reports whether the CPU throttle bit is set. Throttling pauses
// are not surfaced as suspensions.
func (r SuspendReason) Throttled() bool {
	return r&SuspendReasonCPUThrottle != 0
}

// Description renders the bitmask as comma separated reason names, walking
// set bits low to high. High plain-code values render as a single name.
func (r SuspendReason) Description() string {
	if r <= 0 {
		return r.Name()
	}
	if r >= SuspendReasonOS {
		return r.Name()
	}
	var parts []string
	for bit := SuspendReason(1); bit <= SuspendReasonNetworkQuotaExceeded; bit <<= 1 {
		if r&bit != 0 {
			parts = append(parts, bit.Name())
		}
	}
	if len(parts) == 0 {
		return "unknown reason"
	}
	return strings.Join(parts, ", ")
}

// RPCReason says why a scheduler RPC is pending for a project.
type RPCReason int

const (
	RPCReasonUnknown    RPCReason = -1
	RPCReasonNone       RPCReason = 0
	RPCReasonUserReq    RPCReason = 1
	RPCReasonResultsDue RPCReason = 2
	RPCReasonNeedWork   RPCReason = 3
	RPCReasonTrickleUp  RPCReason = 4
	RPCReasonAcctMgrReq RPCReason = 5
	RPCReasonInit       RPCReason = 6
	RPCReasonProjectReq RPCReason = 7
)

func rpcReasonFromWire(v int) RPCReason {
	if v >= 0 && v <= int(RPCReasonProjectReq) {
		return RPCReason(v)
	}
	return RPCReasonUnknown
}

func (r RPCReason) Name() string {
	switch r {
	case RPCReasonUserReq:
		return "Requested by user"
	case RPCReasonResultsDue:
		return "To report completed tasks"
	case RPCReasonNeedWork:
		return "To fetch work"
	case RPCReasonTrickleUp:
		return "To send trickle-up message"
	case RPCReasonAcctMgrReq:
		return "Requested by account manager"
	case RPCReasonInit:
		return "Project initialization"
	case RPCReasonProjectReq:
		return "Requested by project"
	}
	return "unknown"
}

// CPUSched holds values of an active task's scheduler_state. SCHEDULED means
// executing except when CPU throttling is in use.
type CPUSched int

const (
	CPUSchedUnknown       CPUSched = -1
	CPUSchedUninitialized CPUSched = 0
	CPUSchedPreempted     CPUSched = 1
	CPUSchedScheduled     CPUSched = 2
)

func cpuSchedFromWire(v int) CPUSched {
	switch s := CPUSched(v); s {
	case CPUSchedUninitialized, CPUSchedPreempted, CPUSchedScheduled:
		return s
	}
	return CPUSchedUnknown
}

// ResultState is the primary state of a job ("result"). Values must stay in
// numerical order; the client compares them to decide whether computing is
// done.
type ResultState int

const (
	ResultStateUnknown          ResultState = -1
	ResultStateNew              ResultState = 0
	ResultStateFilesDownloading ResultState = 1
	ResultStateFilesDownloaded  ResultState = 2
	ResultStateComputeError     ResultState = 3
	ResultStateFilesUploading   ResultState = 4
	ResultStateFilesUploaded    ResultState = 5
	ResultStateAborted          ResultState = 6
	ResultStateUploadFailed     ResultState = 7
)

func resultStateFromWire(v int) ResultState {
	if v >= 0 && v <= int(ResultStateUploadFailed) {
		return ResultState(v)
	}
	return ResultStateUnknown
}

// ProcessState holds values of an active task's task_state.
type ProcessState int

const (
	ProcessStateUnknown       ProcessState = -1
	ProcessStateUninitialized ProcessState = 0
	ProcessStateExecuting     ProcessState = 1
	ProcessStateAbortPending  ProcessState = 5
	ProcessStateQuitPending   ProcessState = 8
	ProcessStateSuspended     ProcessState = 9
	ProcessStateCopyPending   ProcessState = 10
)

func processStateFromWire(v int) ProcessState {
	switch s := ProcessState(v); s {
	case ProcessStateUninitialized, ProcessStateExecuting, ProcessStateAbortPending,
		ProcessStateQuitPending, ProcessStateSuspended, ProcessStateCopyPending:
		return s
	}
	return ProcessStateUnknown
}

func (s ProcessState) String() string {
	switch s {
	case ProcessStateUninitialized:
		return "uninitialized"
	case ProcessStateExecuting:
		return "executing"
	case ProcessStateAbortPending:
		return "abort pending"
	case ProcessStateQuitPending:
		return "quit pending"
	case ProcessStateSuspended:
		return "suspended"
	case ProcessStateCopyPending:
		return "copy pending"
	}
	return fmt.Sprintf("unknown (%d)", int(s))
}

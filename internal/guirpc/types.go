package guirpc

import (
	"fmt"

	"golang.org/x/mod/semver"
)

// VersionInfo is the three-component core client version exchanged during
// the handshake.
type VersionInfo struct {
	Major   int
	Minor   int
	Release int
}

func (v VersionInfo) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Release)
}

// Compare orders two versions lexicographically by component. Returns -1, 0
// or +1 like semver.Compare.
func (v VersionInfo) Compare(other VersionInfo) int {
	return semver.Compare("v"+v.String(), "v"+other.String())
}

// AtLeast reports whether v is other or newer.
func (v VersionInfo) AtLeast(other VersionInfo) bool {
	return v.Compare(other) >= 0
}

func decodeVersionInfo(e *Element) VersionInfo {
	var v VersionInfo
	for _, c := range e.Children {
		switch c.Tag {
		case "major":
			v.Major = intText(c)
		case "minor":
			v.Minor = intText(c)
		case "release":
			v.Release = intText(c)
		}
	}
	return v
}

// CCStatus is the host-wide run/suspend snapshot returned by get_cc_status.
type CCStatus struct {
	NetworkStatus    NetworkStatus
	AmsPasswordError bool
	ManagerMustQuit  bool

	TaskSuspendReason SuspendReason
	TaskMode          RunMode
	TaskModePerm      RunMode
	TaskModeDelay     float64

	NetworkSuspendReason SuspendReason
	NetworkMode          RunMode
	NetworkModePerm      RunMode
	NetworkModeDelay     float64

	GPUSuspendReason SuspendReason
	GPUMode          RunMode
	GPUModePerm      RunMode
	GPUModeDelay     float64

	DisallowAttach bool
	SimpleGUIOnly  bool
}

func newCCStatus() CCStatus {
	return CCStatus{
		NetworkStatus:   NetworkStatusUnknown,
		TaskMode:        RunModeUnknown,
		TaskModePerm:    RunModeUnknown,
		NetworkMode:     RunModeUnknown,
		NetworkModePerm: RunModeUnknown,
		GPUMode:         RunModeUnknown,
		GPUModePerm:     RunModeUnknown,
	}
}

func decodeCCStatus(e *Element) CCStatus {
	s := newCCStatus()
	for _, c := range e.Children {
		switch c.Tag {
		case "network_status":
			s.NetworkStatus = networkStatusFromWire(intText(c))
		case "ams_password_error":
			s.AmsPasswordError = boolText(c)
		case "manager_must_quit":
			s.ManagerMustQuit = boolText(c)
		case "task_suspend_reason":
			s.TaskSuspendReason = SuspendReason(intText(c))
		case "task_mode":
			s.TaskMode = runModeFromWire(intText(c))
		case "task_mode_perm":
			s.TaskModePerm = runModeFromWire(intText(c))
		case "task_mode_delay":
			s.TaskModeDelay = floatText(c)
		case "network_suspend_reason":
			s.NetworkSuspendReason = SuspendReason(intText(c))
		case "network_mode":
			s.NetworkMode = runModeFromWire(intText(c))
		case "network_mode_perm":
			s.NetworkModePerm = runModeFromWire(intText(c))
		case "network_mode_delay":
			s.NetworkModeDelay = floatText(c)
		case "gpu_suspend_reason":
			s.GPUSuspendReason = SuspendReason(intText(c))
		case "gpu_mode":
			s.GPUMode = runModeFromWire(intText(c))
		case "gpu_mode_perm":
			s.GPUModePerm = runModeFromWire(intText(c))
		case "gpu_mode_delay":
			s.GPUModeDelay = floatText(c)
		case "disallow_attach":
			s.DisallowAttach = boolText(c)
		case "simple_gui_only":
			s.SimpleGUIOnly = boolText(c)
		}
	}
	return s
}

// Coproc describes one set of identical coprocessors on a host.
type Coproc struct {
	Type         string
	Name         string
	Count        int
	PeakFlops    float64
	Used         float64
	HaveCUDA     bool
	HaveCAL      bool
	HaveOpenCL   bool
	AvailableRAM float64
}

func decodeCoproc(e *Element) Coproc {
	var c Coproc
	for _, child := range e.Children {
		switch child.Tag {
		case "type":
			c.Type = strText(child)
		case "name":
			c.Name = strText(child)
		case "count":
			c.Count = intText(child)
		case "peak_flops":
			c.PeakFlops = floatText(child)
		case "used":
			c.Used = floatText(child)
		case "have_cuda":
			c.HaveCUDA = boolText(child)
		case "have_cal":
			c.HaveCAL = boolText(child)
		case "have_opencl":
			c.HaveOpenCL = boolText(child)
		case "available_ram":
			c.AvailableRAM = floatText(child)
		}
	}
	return c
}

// HostInfo describes host hardware as reported by get_host_info.
type HostInfo struct {
	Timezone   int
	DomainName string
	IPAddr     string
	HostCPID   string

	PNCpus                int
	PVendor               string
	PModel                string
	PFeatures             string
	PFpops                float64
	PIops                 float64
	PMembw                float64
	PCalculated           float64
	PVMExtensionsDisabled bool

	MNBytes float64
	MCache  float64
	MSwap   float64

	DTotal float64
	DFree  float64

	OSName            string
	OSVersion         string
	VirtualboxVersion string
	ProductName       string
	WSLAvailable      bool

	Coprocs        []Coproc
	NUsableCoprocs int
}

func decodeHostInfo(e *Element) HostInfo {
	var h HostInfo
	for _, c := range e.Children {
		switch c.Tag {
		case "timezone":
			h.Timezone = intText(c)
		case "domain_name":
			h.DomainName = strText(c)
		case "ip_addr":
			h.IPAddr = strText(c)
		case "host_cpid":
			h.HostCPID = strText(c)
		case "p_ncpus":
			h.PNCpus = intText(c)
		case "p_vendor":
			h.PVendor = strText(c)
		case "p_model":
			h.PModel = strText(c)
		case "p_features":
			h.PFeatures = strText(c)
		case "p_fpops":
			h.PFpops = floatText(c)
		case "p_iops":
			h.PIops = floatText(c)
		case "p_membw":
			h.PMembw = floatText(c)
		case "p_calculated":
			h.PCalculated = floatText(c)
		case "p_vm_extensions_disabled":
			h.PVMExtensionsDisabled = boolText(c)
		case "m_nbytes":
			h.MNBytes = floatText(c)
		case "m_cache":
			h.MCache = floatText(c)
		case "m_swap":
			h.MSwap = floatText(c)
		case "d_total":
			h.DTotal = floatText(c)
		case "d_free":
			h.DFree = floatText(c)
		case "os_name":
			h.OSName = strText(c)
		case "os_version":
			h.OSVersion = strText(c)
		case "virtualbox_version":
			h.VirtualboxVersion = strText(c)
		case "product_name":
			h.ProductName = strText(c)
		case "wsl_available":
			h.WSLAvailable = boolText(c)
		case "n_usable_coprocs":
			h.NUsableCoprocs = intText(c)
		case "coprocs":
			for _, coproc := range c.Children {
				h.Coprocs = append(h.Coprocs, decodeCoproc(coproc))
			}
		}
	}
	return h
}

// Project is one attached work provider, identified by MasterURL within a
// host. The same master URL may be attached on several hosts; identity is
// host-scoped.
type Project struct {
	MasterURL   string
	ProjectName string
	UserName    string
	TeamName    string

	UserTotalCredit  float64
	UserExpavgCredit float64
	HostTotalCredit  float64
	HostExpavgCredit float64

	RPCSeqno int
	UserID   int
	TeamID   int
	HostID   int

	MinRPCTime  float64
	NextRPCTime float64

	ResourceShare            float64
	DesiredDiskUsage         float64
	DurationCorrectionFactor float64
	SchedPriority            float64

	SchedRPCPending        RPCReason
	SchedulerRPCInProgress bool
	TrickleUpPending       bool

	NJobsSuccess int
	NJobsError   int
	ElapsedTime  float64
	LastRPCTime  float64

	DontRequestMoreWork bool
	SuspendedViaGUI     bool
	Ended               bool
	DetachWhenDone      bool

	ProjectDir      string
	NonCPUIntensive bool
}

func decodeProject(e *Element) Project {
	p := Project{SchedRPCPending: RPCReasonNone}
	for _, c := range e.Children {
		switch c.Tag {
		case "master_url":
			p.MasterURL = strText(c)
		case "project_name":
			p.ProjectName = strText(c)
		case "user_name":
			p.UserName = strText(c)
		case "team_name":
			p.TeamName = strText(c)
		case "user_total_credit":
			p.UserTotalCredit = floatText(c)
		case "user_expavg_credit":
			p.UserExpavgCredit = floatText(c)
		case "host_total_credit":
			p.HostTotalCredit = floatText(c)
		case "host_expavg_credit":
			p.HostExpavgCredit = floatText(c)
		case "rpc_seqno":
			p.RPCSeqno = intText(c)
		case "userid":
			p.UserID = intText(c)
		case "teamid":
			p.TeamID = intText(c)
		case "hostid":
			p.HostID = intText(c)
		case "min_rpc_time":
			p.MinRPCTime = floatText(c)
		case "next_rpc_time":
			p.NextRPCTime = floatText(c)
		case "resource_share":
			p.ResourceShare = floatText(c)
		case "desired_disk_usage":
			p.DesiredDiskUsage = floatText(c)
		case "duration_correction_factor":
			p.DurationCorrectionFactor = floatText(c)
		case "sched_priority":
			p.SchedPriority = floatText(c)
		case "sched_rpc_pending":
			p.SchedRPCPending = rpcReasonFromWire(intText(c))
		case "scheduler_rpc_in_progress":
			p.SchedulerRPCInProgress = boolText(c)
		case "trickle_up_pending":
			p.TrickleUpPending = boolText(c)
		case "njobs_success":
			p.NJobsSuccess = intText(c)
		case "njobs_error":
			p.NJobsError = intText(c)
		case "elapsed_time":
			p.ElapsedTime = floatText(c)
		case "last_rpc_time":
			p.LastRPCTime = floatText(c)
		case "dont_request_more_work":
			p.DontRequestMoreWork = boolText(c)
		case "suspended_via_gui":
			p.SuspendedViaGUI = boolText(c)
		case "ended":
			p.Ended = boolText(c)
		case "detach_when_done":
			p.DetachWhenDone = boolText(c)
		case "project_dir":
			p.ProjectDir = strText(c)
		case "non_cpu_intensive":
			p.NonCPUIntensive = boolText(c)
		}
	}
	return p
}

// App maps an internal application name to its user friendly name.
type App struct {
	Name             string
	UserFriendlyName string
	NonCPUIntensive  bool
}

func decodeApp(e *Element) App {
	var a App
	for _, c := range e.Children {
		switch c.Tag {
		case "name":
			a.Name = strText(c)
		case "user_friendly_name":
			a.UserFriendlyName = strText(c)
		case "non_cpu_intensive":
			a.NonCPUIntensive = boolText(c)
		}
	}
	return a
}

// FileRef references an input or output file of a work unit or app version.
type FileRef struct {
	FileName    string
	OpenName    string
	MainProgram bool
}

func decodeFileRef(e *Element) FileRef {
	var f FileRef
	for _, c := range e.Children {
		switch c.Tag {
		case "file_name":
			f.FileName = strText(c)
		case "open_name":
			f.OpenName = strText(c)
		case "main_program":
			f.MainProgram = boolText(c)
		}
	}
	return f
}

// AppVersion is one platform/plan-class build of an application.
type AppVersion struct {
	AppName    string
	VersionNum int
	Platform   string
	PlanClass  string
	APIVersion string
	AvgNCpus   float64
	Flops      float64
	FileRefs   []FileRef
}

func decodeAppVersion(e *Element) AppVersion {
	var v AppVersion
	for _, c := range e.Children {
		switch c.Tag {
		case "app_name":
			v.AppName = strText(c)
		case "version_num":
			v.VersionNum = intText(c)
		case "platform":
			v.Platform = strText(c)
		case "plan_class":
			v.PlanClass = strText(c)
		case "api_version":
			v.APIVersion = strText(c)
		case "avg_ncpus":
			v.AvgNCpus = floatText(c)
		case "flops":
			v.Flops = floatText(c)
		case "file_ref":
			v.FileRefs = append(v.FileRefs, decodeFileRef(c))
		}
	}
	return v
}

// WorkUnit is a unit of work definition shared by jobs, identified by Name
// within a host.
type WorkUnit struct {
	Name          string
	AppName       string
	VersionNum    int
	CommandLine   string
	RscFpopsEst   float64
	RscFpopsBound float64
	FileRefs      []FileRef
}

func decodeWorkUnit(e *Element) WorkUnit {
	var w WorkUnit
	for _, c := range e.Children {
		switch c.Tag {
		case "name":
			w.Name = strText(c)
		case "app_name":
			w.AppName = strText(c)
		case "version_num":
			w.VersionNum = intText(c)
		case "command_line":
			w.CommandLine = strText(c)
		case "rsc_fpops_est":
			w.RscFpopsEst = floatText(c)
		case "rsc_fpops_bound":
			w.RscFpopsBound = floatText(c)
		case "file_ref":
			w.FileRefs = append(w.FileRefs, decodeFileRef(c))
		}
	}
	return w
}

// Result is one job instance ("result"/"task"), identified by Name within a
// host. It references its work unit and project by key; the referenced
// records may not be loaded yet, so lookups must tolerate a miss.
type Result struct {
	Name           string
	WUName         string
	VersionNum     int
	PlanClass      string
	ProjectURL     string
	ReportDeadline float64
	ReceivedTime   float64

	ReadyToReport bool
	GotServerAck  bool

	FinalCPUTime              float64
	FinalElapsedTime          float64
	State                     ResultState
	EstimatedCPUTimeRemaining float64
	ExitStatus                int

	SuspendedViaGUI        bool
	ProjectSuspendedViaGUI bool
	EdfScheduled           bool
	CoprocMissing          bool
	SchedulerWait          bool
	SchedulerWaitReason    string
	NetworkWait            bool
	Resources              string

	// The following are only present while a process is active; the
	// <active_task> children are flattened into the record.
	ActiveTask             bool
	ActiveTaskState        ProcessState
	AppVersionNum          int
	Slot                   int
	PID                    int
	SchedulerState         CPUSched
	CheckpointCPUTime      float64
	CurrentCPUTime         float64
	FractionDone           float64
	ElapsedTime            float64
	SwapSize               float64
	WorkingSetSizeSmoothed float64
	TooLarge               bool
	NeedsShmem             bool
}

func newResult() Result {
	return Result{
		State:           ResultStateNew,
		ActiveTaskState: ProcessStateUninitialized,
		SchedulerState:  CPUSchedUninitialized,
		Slot:            -1,
	}
}

func decodeResultFields(r *Result, e *Element) {
	for _, c := range e.Children {
		switch c.Tag {
		case "name":
			r.Name = strText(c)
		case "wu_name":
			r.WUName = strText(c)
		case "version_num":
			r.VersionNum = intText(c)
		case "plan_class":
			r.PlanClass = strText(c)
		case "project_url":
			r.ProjectURL = strText(c)
		case "report_deadline":
			r.ReportDeadline = floatText(c)
		case "received_time":
			r.ReceivedTime = floatText(c)
		case "ready_to_report":
			r.ReadyToReport = boolText(c)
		case "got_server_ack":
			r.GotServerAck = boolText(c)
		case "final_cpu_time":
			r.FinalCPUTime = floatText(c)
		case "final_elapsed_time":
			r.FinalElapsedTime = floatText(c)
		case "state":
			r.State = resultStateFromWire(intText(c))
		case "estimated_cpu_time_remaining":
			r.EstimatedCPUTimeRemaining = floatText(c)
		case "exit_status":
			r.ExitStatus = intText(c)
		case "suspended_via_gui":
			r.SuspendedViaGUI = boolText(c)
		case "project_suspended_via_gui":
			r.ProjectSuspendedViaGUI = boolText(c)
		case "edf_scheduled":
			r.EdfScheduled = boolText(c)
		case "coproc_missing":
			r.CoprocMissing = boolText(c)
		case "scheduler_wait":
			r.SchedulerWait = boolText(c)
		case "scheduler_wait_reason":
			r.SchedulerWaitReason = strText(c)
		case "network_wait":
			r.NetworkWait = boolText(c)
		case "resources":
			r.Resources = strText(c)
		case "active_task_state":
			r.ActiveTaskState = processStateFromWire(intText(c))
		case "app_version_num":
			r.AppVersionNum = intText(c)
		case "slot":
			r.Slot = intText(c)
		case "pid":
			r.PID = intText(c)
		case "scheduler_state":
			r.SchedulerState = cpuSchedFromWire(intText(c))
		case "checkpoint_cpu_time":
			r.CheckpointCPUTime = floatText(c)
		case "current_cpu_time":
			r.CurrentCPUTime = floatText(c)
		case "fraction_done":
			r.FractionDone = floatText(c)
		case "elapsed_time":
			r.ElapsedTime = floatText(c)
		case "swap_size":
			r.SwapSize = floatText(c)
		case "working_set_size_smoothed":
			r.WorkingSetSizeSmoothed = floatText(c)
		case "too_large":
			r.TooLarge = boolText(c)
		case "needs_shmem":
			r.NeedsShmem = boolText(c)
		}
	}
}

func decodeResult(e *Element) Result {
	r := newResult()
	decodeResultFields(&r, e)

	if active := e.Find("active_task"); active != nil {
		r.ActiveTask = true
		decodeResultFields(&r, active)
	}

	// Old clients report CPU time but no elapsed time. Treat CPU time as
	// elapsed so downstream rendering keeps working.
	if r.CurrentCPUTime != 0 && r.ElapsedTime == 0 {
		r.ElapsedTime = r.CurrentCPUTime
	}
	if r.FinalCPUTime != 0 && r.FinalElapsedTime == 0 {
		r.FinalElapsedTime = r.FinalCPUTime
	}

	return r
}

// FileTransfer is one pending upload or download. Within the fleet it is
// identified by (hostname, name); Hostname is stamped by the fleet layer,
// not wire data.
type FileTransfer struct {
	Name        string
	ProjectURL  string
	ProjectName string
	Hostname    string

	NBytes         float64
	BytesXferred   float64
	FileOffset     float64
	XferSpeed      float64
	NumRetries     int
	IsUpload       bool
	Sticky         bool
	XferActive     bool
	PersXferActive bool

	FirstRequestTime float64
	ProjectBackoff   float64
}

func decodeFileTransfer(e *Element) FileTransfer {
	var t FileTransfer
	for _, c := range e.Children {
		switch c.Tag {
		case "name":
			t.Name = strText(c)
		case "project_url":
			t.ProjectURL = strText(c)
		case "project_name":
			t.ProjectName = strText(c)
		case "nbytes":
			t.NBytes = floatText(c)
		case "bytes_xferred":
			t.BytesXferred = floatText(c)
		case "file_offset":
			t.FileOffset = floatText(c)
		case "xfer_speed":
			t.XferSpeed = floatText(c)
		case "num_retries":
			t.NumRetries = intText(c)
		case "is_upload":
			t.IsUpload = boolText(c)
		case "sticky":
			t.Sticky = boolText(c)
		case "xfer_active":
			t.XferActive = boolText(c)
		case "pers_xfer_active":
			t.PersXferActive = boolText(c)
		case "first_request_time":
			t.FirstRequestTime = floatText(c)
		case "project_backoff":
			t.ProjectBackoff = floatText(c)
		case "persistent_file_xfer":
			// Nested record on some client versions; lift the fields
			// the views care about.
			for _, pc := range c.Children {
				switch pc.Tag {
				case "num_retries":
					t.NumRetries = intText(pc)
				case "is_upload":
					t.IsUpload = boolText(pc)
				case "first_request_time":
					t.FirstRequestTime = floatText(pc)
				}
			}
		case "file_xfer":
			for _, fc := range c.Children {
				switch fc.Tag {
				case "bytes_xferred":
					t.BytesXferred = floatText(fc)
				case "file_offset":
					t.FileOffset = floatText(fc)
				case "xfer_speed":
					t.XferSpeed = floatText(fc)
				}
			}
		}
	}
	return t
}

// DiskUsageProject is the per-project slice of a disk usage reply.
type DiskUsageProject struct {
	MasterURL string
	DiskUsage float64
}

func decodeDiskUsageProject(e *Element) DiskUsageProject {
	var p DiskUsageProject
	for _, c := range e.Children {
		switch c.Tag {
		case "master_url":
			p.MasterURL = strText(c)
		case "disk_usage":
			p.DiskUsage = floatText(c)
		}
	}
	return p
}

// DiskUsage is the get_disk_usage reply for one host.
type DiskUsage struct {
	DTotal   float64
	DFree    float64
	DBoinc   float64
	DAllowed float64
	Projects []DiskUsageProject
}

func decodeDiskUsage(e *Element) DiskUsage {
	var d DiskUsage
	for _, c := range e.Children {
		switch c.Tag {
		case "d_total":
			d.DTotal = floatText(c)
		case "d_free":
			d.DFree = floatText(c)
		case "d_boinc":
			d.DBoinc = floatText(c)
		case "d_allowed":
			d.DAllowed = floatText(c)
		case "project":
			d.Projects = append(d.Projects, decodeDiskUsageProject(c))
		}
	}
	return d
}

// BoincUsage is total client disk usage: per-project usage plus the client's
// own files.
func (d DiskUsage) BoincUsage() float64 {
	total := d.DBoinc
	for _, p := range d.Projects {
		total += p.DiskUsage
	}
	return total
}

// Available is how much of the allowed budget is still usable.
func (d DiskUsage) Available() float64 {
	return d.DAllowed - d.BoincUsage()
}

// NotAvailable is free space the client is not allowed to use.
func (d DiskUsage) NotAvailable() float64 {
	return d.DFree - d.Available()
}

// Other is space used by everything that is not the client and not free.
func (d DiskUsage) Other() float64 {
	return d.DTotal - d.BoincUsage() - d.DFree
}

// DailyStatistics is one day's credit snapshot for a project.
type DailyStatistics struct {
	DayTimestamp     int
	UserTotalCredit  float64
	UserExpavgCredit float64
	HostTotalCredit  float64
	HostExpavgCredit float64
}

func decodeDailyStatistics(e *Element) DailyStatistics {
	var d DailyStatistics
	for _, c := range e.Children {
		switch c.Tag {
		case "day":
			d.DayTimestamp = intText(c)
		case "user_total_credit":
			d.UserTotalCredit = floatText(c)
		case "user_expavg_credit":
			d.UserExpavgCredit = floatText(c)
		case "host_total_credit":
			d.HostTotalCredit = floatText(c)
		case "host_expavg_credit":
			d.HostExpavgCredit = floatText(c)
		}
	}
	return d
}

// ProjectStatistics is the daily credit series for one project.
type ProjectStatistics struct {
	MasterURL string
	Daily     []DailyStatistics
}

func decodeProjectStatistics(e *Element) ProjectStatistics {
	var p ProjectStatistics
	for _, c := range e.Children {
		switch c.Tag {
		case "master_url":
			p.MasterURL = strText(c)
		case "daily_statistics":
			p.Daily = append(p.Daily, decodeDailyStatistics(c))
		}
	}
	return p
}

// Statistics is the get_statistics reply: a series per attached project.
type Statistics struct {
	ProjectStatistics []ProjectStatistics
}

func decodeStatistics(e *Element) Statistics {
	var s Statistics
	for _, c := range e.Children {
		if c.Tag == "project_statistics" {
			s.ProjectStatistics = append(s.ProjectStatistics, decodeProjectStatistics(c))
		}
	}
	return s
}

// ClientState is the full get_state reply: host info plus every project,
// app, app version, work unit and result the client knows about. The
// container mixes child kinds, so decoding dispatches by tag.
type ClientState struct {
	HostInfo    HostInfo
	HaveCUDA    bool
	HaveATI     bool
	Projects    []Project
	Apps        []App
	AppVersions []AppVersion
	WorkUnits   []WorkUnit
	Results     []Result
}

func decodeClientState(e *Element) ClientState {
	var s ClientState
	for _, c := range e.Children {
		switch c.Tag {
		case "host_info":
			s.HostInfo = decodeHostInfo(c)
		case "have_cuda":
			s.HaveCUDA = boolText(c)
		case "have_ati":
			s.HaveATI = boolText(c)
		case "project":
			s.Projects = append(s.Projects, decodeProject(c))
		case "app":
			s.Apps = append(s.Apps, decodeApp(c))
		case "app_version":
			s.AppVersions = append(s.AppVersions, decodeAppVersion(c))
		case "workunit":
			s.WorkUnits = append(s.WorkUnits, decodeWorkUnit(c))
		case "result":
			s.Results = append(s.Results, decodeResult(c))
		}
	}
	return s
}

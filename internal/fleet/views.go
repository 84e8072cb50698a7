package fleet

import (
	"fmt"
	"strings"
	"time"

	"github.com/drakej/boinc-cluster/internal/guirpc"
	"github.com/drakej/boinc-cluster/internal/status"
)

// View structures are what the presentation layer serializes. Field names
// follow the dashboard's JSON contract.

// StatusView is one host's run/suspend snapshot with display annotations.
type StatusView struct {
	Hostname string `json:"hostname"`

	NetworkStatus     string `json:"networkStatus"`
	NetworkStatusIcon string `json:"networkStatusIcon"`

	TaskMode     guirpc.RunMode `json:"taskMode"`
	TaskModeDesc string         `json:"taskModeDesc"`
	TaskModeIcon string         `json:"taskModeIcon"`

	GPUMode     guirpc.RunMode `json:"gpuMode"`
	GPUModeDesc string         `json:"gpuModeDesc"`
	GPUModeIcon string         `json:"gpuModeIcon"`

	NetworkMode     guirpc.RunMode `json:"networkMode"`
	NetworkModeDesc string         `json:"networkModeDesc"`
	NetworkModeIcon string         `json:"networkModeIcon"`

	TaskSuspendReason    string `json:"taskSuspendReason"`
	GPUSuspendReason     string `json:"gpuSuspendReason"`
	NetworkSuspendReason string `json:"networkSuspendReason"`
}

func newStatusView(hostname string, cc guirpc.CCStatus) StatusView {
	return StatusView{
		Hostname:          hostname,
		NetworkStatus:     cc.NetworkStatus.Name(),
		NetworkStatusIcon: status.NetworkStatusIcon(cc.NetworkStatus),

		TaskMode:     cc.TaskMode,
		TaskModeDesc: status.TaskModeDescription(cc.TaskMode),
		TaskModeIcon: status.RunModeIcon(cc.TaskMode),

		GPUMode:     cc.GPUMode,
		GPUModeDesc: status.GPUModeDescription(cc.GPUMode),
		GPUModeIcon: status.RunModeIcon(cc.GPUMode),

		NetworkMode:     cc.NetworkMode,
		NetworkModeDesc: status.NetworkModeDescription(cc.NetworkMode),
		NetworkModeIcon: status.RunModeIcon(cc.NetworkMode),

		TaskSuspendReason:    cc.TaskSuspendReason.Description(),
		GPUSuspendReason:     cc.GPUSuspendReason.Description(),
		NetworkSuspendReason: cc.NetworkSuspendReason.Description(),
	}
}

// HostView is the computers-page row for one host.
type HostView struct {
	Hostname        string  `json:"hostname"`
	ComputerID      string  `json:"computerID"`
	DomainName      string  `json:"domainName"`
	NCpus           int     `json:"ncpus"`
	Fpops           float64 `json:"fpops"`
	ProcessorModel  string  `json:"processorModel"`
	ProcessorVendor string  `json:"processorVendor"`
	ProductName     string  `json:"productName"`
	OSName          string  `json:"osName"`
	OSVersion       string  `json:"osVersion"`
	GPU             string  `json:"gpu"`
	BoincVersion    string  `json:"boincVersion"`
}

func newHostView(hostname string, info guirpc.HostInfo, version guirpc.VersionInfo) HostView {
	gpu := "--"
	if len(info.Coprocs) > 0 {
		names := make([]string, len(info.Coprocs))
		for i, coproc := range info.Coprocs {
			names[i] = coproc.Name
		}
		gpu = strings.Join(names, ", ")
	}
	return HostView{
		Hostname:        hostname,
		ComputerID:      info.HostCPID,
		DomainName:      info.DomainName,
		NCpus:           info.PNCpus,
		Fpops:           info.PFpops,
		ProcessorModel:  info.PModel,
		ProcessorVendor: info.PVendor,
		ProductName:     info.ProductName,
		OSName:          info.OSName,
		OSVersion:       info.OSVersion,
		GPU:             gpu,
		BoincVersion:    version.String(),
	}
}

// ProjectView is one attached project on one host with its derived status
// phrase.
type ProjectView struct {
	Hostname    string `json:"hostname"`
	MasterURL   string `json:"masterURL"`
	ProjectName string `json:"projectName"`
	UserName    string `json:"userName"`
	TeamName    string `json:"teamName"`

	UserTotalCredit  float64 `json:"userTotalCredit"`
	UserExpavgCredit float64 `json:"userExpavgCredit"`
	HostTotalCredit  float64 `json:"hostTotalCredit"`
	HostExpavgCredit float64 `json:"hostExpavgCredit"`

	Status string `json:"status"`
}

func newProjectView(hostname string, p guirpc.Project, now time.Time) ProjectView {
	return ProjectView{
		Hostname:         hostname,
		MasterURL:        p.MasterURL,
		ProjectName:      p.ProjectName,
		UserName:         p.UserName,
		TeamName:         p.TeamName,
		UserTotalCredit:  p.UserTotalCredit,
		UserExpavgCredit: p.UserExpavgCredit,
		HostTotalCredit:  p.HostTotalCredit,
		HostExpavgCredit: p.HostExpavgCredit,
		Status:           status.ProjectStatus(p, now),
	}
}

// TaskView is one job row with its derived status.
type TaskView struct {
	Hostname    string  `json:"hostname"`
	ProjectName string  `json:"projectName"`
	ProjectURL  string  `json:"projectURL"`
	Percent     float64 `json:"percent"`
	ElapsedTime string  `json:"elapsedTime"`
	Deadline    int64   `json:"deadline"`
	Remaining   string  `json:"remaining"`
	Name        string  `json:"name"`
	Application string  `json:"application"`
	Status      string  `json:"status"`
	State       string  `json:"state"`
}

func newTaskView(hostname string, job guirpc.Result, cc guirpc.CCStatus, state *hostState) TaskView {
	var project *guirpc.Project
	projectName := "Unknown"
	var wu *guirpc.WorkUnit
	var app *guirpc.App

	if state != nil {
		if p, ok := state.Projects[job.ProjectURL]; ok {
			project = &p
			projectName = p.ProjectName
		}
		if w, ok := state.WorkUnits[job.WUName]; ok {
			wu = &w
			if a, ok := state.Apps[w.AppName]; ok {
				app = &a
			}
		}
	}

	label, annotated := status.Derive(job, project, cc)
	progress := status.JobProgress(job)

	application := status.FriendlyAppName(job, wu, app)
	if application == "" {
		application = "Unknown"
	}

	return TaskView{
		Hostname:    hostname,
		ProjectName: projectName,
		ProjectURL:  job.ProjectURL,
		Percent:     progress.Percent,
		ElapsedTime: progress.Elapsed,
		Deadline:    int64(job.ReportDeadline) * 1000,
		Remaining:   progress.Remaining,
		Name:        job.Name,
		Application: application,
		Status:      annotated,
		State:       label,
	}
}

// TransferView is one pending file transfer, keyed by (hostname, name).
type TransferView struct {
	Hostname    string  `json:"hostname"`
	Name        string  `json:"name"`
	ProjectName string  `json:"projectName"`
	ProjectURL  string  `json:"projectURL"`
	NBytes      float64 `json:"nbytes"`
	Size        string  `json:"size"`
	Transferred float64 `json:"transferred"`
	Percent     float64 `json:"percent"`
	Speed       float64 `json:"speed"`
	Direction   string  `json:"direction"`
	NumRetries  int     `json:"numRetries"`
	Backoff     float64 `json:"backoff"`
	Active      bool    `json:"active"`
}

func newTransferView(hostname string, t guirpc.FileTransfer) TransferView {
	direction := "download"
	if t.IsUpload {
		direction = "upload"
	}
	percent := 0.0
	if t.NBytes > 0 {
		percent = t.BytesXferred / t.NBytes * 100
	}
	return TransferView{
		Hostname:    hostname,
		Name:        t.Name,
		ProjectName: t.ProjectName,
		ProjectURL:  t.ProjectURL,
		NBytes:      t.NBytes,
		Size:        FormatBytes(t.NBytes),
		Transferred: t.BytesXferred,
		Percent:     percent,
		Speed:       t.XferSpeed,
		Direction:   direction,
		NumRetries:  t.NumRetries,
		Backoff:     t.ProjectBackoff,
		Active:      t.XferActive || t.PersXferActive,
	}
}

// DiskProjectView is one project's slice of a host's client disk usage.
type DiskProjectView struct {
	MasterURL   string  `json:"masterURL"`
	ProjectName string  `json:"projectName"`
	Usage       float64 `json:"usage"`
}

// DiskView is one host's disk usage with the derived headline numbers.
type DiskView struct {
	Hostname     string            `json:"hostname"`
	Total        float64           `json:"total"`
	Free         float64           `json:"free"`
	Boinc        float64           `json:"boinc"`
	Available    float64           `json:"available"`
	NotAvailable float64           `json:"notAvailable"`
	Other        float64           `json:"other"`
	TotalDesc    string            `json:"totalDesc"`
	FreeDesc     string            `json:"freeDesc"`
	BoincDesc    string            `json:"boincDesc"`
	Projects     []DiskProjectView `json:"projects"`
}

func newDiskView(hostname string, d guirpc.DiskUsage, projectNames map[string]string) DiskView {
	view := DiskView{
		Hostname:     hostname,
		Total:        d.DTotal,
		Free:         d.DFree,
		Boinc:        d.BoincUsage(),
		Available:    d.Available(),
		NotAvailable: d.NotAvailable(),
		Other:        d.Other(),
		TotalDesc:    FormatBytes(d.DTotal),
		FreeDesc:     FormatBytes(d.DFree),
		BoincDesc:    FormatBytes(d.BoincUsage()),
	}
	for _, p := range d.Projects {
		name, ok := projectNames[p.MasterURL]
		if !ok {
			name = "Unknown"
		}
		view.Projects = append(view.Projects, DiskProjectView{
			MasterURL:   p.MasterURL,
			ProjectName: name,
			Usage:       p.DiskUsage,
		})
	}
	return view
}

// ProjectStatsView is the per-project daily credit series for one host.
type ProjectStatsView struct {
	MasterURL   string           `json:"masterURL"`
	ProjectName string           `json:"projectName"`
	Daily       []DailyStatsView `json:"daily"`
}

// DailyStatsView is one day's credit snapshot.
type DailyStatsView struct {
	Day              int64   `json:"day"`
	UserTotalCredit  float64 `json:"userTotalCredit"`
	UserExpavgCredit float64 `json:"userExpavgCredit"`
	HostTotalCredit  float64 `json:"hostTotalCredit"`
	HostExpavgCredit float64 `json:"hostExpavgCredit"`
}

func newProjectStatsView(ps guirpc.ProjectStatistics, projectNames map[string]string) ProjectStatsView {
	name, ok := projectNames[ps.MasterURL]
	if !ok {
		name = "Unknown"
	}
	view := ProjectStatsView{
		MasterURL:   ps.MasterURL,
		ProjectName: name,
	}
	for _, d := range ps.Daily {
		view.Daily = append(view.Daily, DailyStatsView{
			Day:              int64(d.DayTimestamp) * 1000,
			UserTotalCredit:  d.UserTotalCredit,
			UserExpavgCredit: d.UserExpavgCredit,
			HostTotalCredit:  d.HostTotalCredit,
			HostExpavgCredit: d.HostExpavgCredit,
		})
	}
	return view
}

// FormatBytes renders a byte count with a binary-unit suffix, as shown in
// the transfers and disk tables.
func FormatBytes(size float64) string {
	const (
		kilo = 1 << 10
		mega = 1 << 20
		giga = 1 << 30
		tera = 1 << 40
	)
	switch {
	case size >= tera:
		return fmt.Sprintf("%0.2f TB", size/tera)
	case size >= giga:
		return fmt.Sprintf("%0.2f GB", size/giga)
	case size >= mega:
		return fmt.Sprintf("%0.2f MB", size/mega)
	case size >= kilo:
		return fmt.Sprintf("%0.2f KB", size/kilo)
	}
	return fmt.Sprintf("%0.2f bytes", size)
}

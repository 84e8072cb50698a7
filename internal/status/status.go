// Package status derives human-readable job and host status from raw GUI
// RPC state codes. Everything here is a pure function of its inputs.
package status

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/drakej/boinc-cluster/internal/guirpc"
)

// Derive maps a job plus its host's suspend/throttle snapshot to a status
// label. The branch order is load-bearing: the postponed and network-wait
// overrides intentionally win over whatever the runnable branch picked.
// project may be nil when the owning project is not in the current cache.
//
// Returns the plain label and the same label annotated with the job's
// resource description.
func Derive(job guirpc.Result, project *guirpc.Project, cc guirpc.CCStatus) (string, string) {
	label := deriveLabel(job, project, cc)

	if job.CoprocMissing {
		label = "GPU Missing, " + label
	}

	annotated := label
	if job.Resources != "" {
		annotated = fmt.Sprintf("%s (%s)", label, job.Resources)
	}
	return label, annotated
}

func deriveLabel(job guirpc.Result, project *guirpc.Project, cc guirpc.CCStatus) string {
	switch job.State {
	case guirpc.ResultStateNew:
		return "New"

	case guirpc.ResultStateFilesDownloading:
		if job.ReadyToReport {
			return "Download failed"
		}
		return "Downloading" + networkSuspendSuffix(cc)

	case guirpc.ResultStateFilesDownloaded:
		return runnableLabel(job, project, cc)

	case guirpc.ResultStateComputeError:
		return "Computation error"

	case guirpc.ResultStateFilesUploading:
		if job.ReadyToReport {
			return "Upload failed"
		}
		return "Uploading" + networkSuspendSuffix(cc)

	case guirpc.ResultStateAborted:
		return abortedLabel(job.ExitStatus)
	}

	// FILES_UPLOADED, UPLOAD_FAILED and anything out of range.
	if job.GotServerAck {
		return "Acknowledged"
	}
	if job.ReadyToReport {
		return "Ready to report"
	}
	return fmt.Sprintf("Error: invalid state '%d'", int(job.State))
}

func runnableLabel(job guirpc.Result, project *guirpc.Project, cc guirpc.CCStatus) string {
	label := "Ready to start"

	switch {
	case job.ProjectSuspendedViaGUI:
		label = "Project suspended by user"
	case job.SuspendedViaGUI:
		label = "Task suspended by user"
	case cc.TaskSuspendReason.Suspended() &&
		!cc.TaskSuspendReason.Throttled() &&
		job.ActiveTaskState != guirpc.ProcessStateExecuting:
		label = "Suspended - " + cc.TaskSuspendReason.Description()
	case cc.GPUSuspendReason.Suspended():
		label = "GPU suspended - " + cc.GPUSuspendReason.Description()
	case job.ActiveTask:
		switch {
		case job.TooLarge:
			label = "Waiting for memory"
		case job.NeedsShmem:
			label = "Waiting for shared memory"
		case job.SchedulerState == guirpc.CPUSchedScheduled:
			label = "Running"
			if project != nil && project.NonCPUIntensive {
				label += " (non-CPU-intensive)"
			}
		case job.SchedulerState == guirpc.CPUSchedPreempted:
			label = "Waiting to run"
		case job.SchedulerState == guirpc.CPUSchedUninitialized:
			label = "Ready to start"
		}
	}

	// Overrides, applied regardless of the above.
	if job.SchedulerWait {
		if job.SchedulerWaitReason != "" {
			label = "Postponed: " + job.SchedulerWaitReason
		} else {
			label = "Postponed"
		}
	}
	if job.NetworkWait {
		label = "Waiting for network access"
	}
	return label
}

func networkSuspendSuffix(cc guirpc.CCStatus) string {
	if !cc.NetworkSuspendReason.Suspended() {
		return ""
	}
	return fmt.Sprintf(" (suspended - %s)", cc.NetworkSuspendReason.Description())
}

// Exit codes reported by aborted jobs, from the client's error numbers.
const (
	exitDiskLimitExceeded = 196
	exitTimeLimitExceeded = 197
	exitMemLimitExceeded  = 198
	exitMissedDeadline    = 200
	exitAbortedByProject  = 202
	exitAbortedViaGUI     = 203
)

func abortedLabel(exitStatus int) string {
	switch exitStatus {
	case exitAbortedViaGUI:
		return "Aborted by user"
	case exitAbortedByProject:
		return "Aborted by project"
	case exitMissedDeadline:
		return "Aborted: not started by deadline"
	case exitDiskLimitExceeded:
		return "Aborted: task disk limit exceeded"
	case exitTimeLimitExceeded:
		return "Aborted: run time limit exceeded"
	case exitMemLimitExceeded:
		return "Aborted: memory limit exceeded"
	}
	return "Aborted"
}

// FormatDuration renders a duration in seconds as "hh:mm:ss", prefixed with
// the day count when nonzero.
func FormatDuration(seconds float64) string {
	days := int(seconds) / 86400
	rem := int(seconds) - days*86400
	hours := rem / 3600
	rem -= hours * 3600
	minutes := rem / 60
	secs := rem - minutes*60

	if days > 0 {
		return fmt.Sprintf("%dd %02d:%02d:%02d", days, hours, minutes, secs)
	}
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
}

// Progress is the elapsed/remaining breakdown of one job, ready for display.
type Progress struct {
	Percent   float64
	Elapsed   string
	Remaining string
}

// JobProgress applies the completion rule: a remaining time of exactly zero
// means the job is done, so the percent is forced to 100 and the elapsed
// time is the final recorded one.
func JobProgress(job guirpc.Result) Progress {
	if job.EstimatedCPUTimeRemaining == 0 {
		return Progress{
			Percent:   100,
			Elapsed:   FormatDuration(job.FinalElapsedTime),
			Remaining: "--",
		}
	}
	return Progress{
		Percent:   math.Round(job.FractionDone*100*1000) / 1000,
		Elapsed:   FormatDuration(job.ElapsedTime),
		Remaining: FormatDuration(job.EstimatedCPUTimeRemaining),
	}
}

// ProjectStatus joins the human-readable phrases describing a project's
// scheduling state, in the same order the manager shows them.
func ProjectStatus(p guirpc.Project, now time.Time) string {
	var phrases []string

	if p.SuspendedViaGUI {
		phrases = append(phrases, "Suspended by user")
	}
	if p.DontRequestMoreWork {
		phrases = append(phrases, "Won't get new tasks")
	}
	if p.Ended {
		phrases = append(phrases, "Project ended - OK to remove")
	}
	if p.DetachWhenDone {
		phrases = append(phrases, "Will remove when tasks done")
	}
	if p.SchedRPCPending != guirpc.RPCReasonNone {
		phrases = append(phrases, "Scheduler request pending", p.SchedRPCPending.Name())
	}
	if p.SchedulerRPCInProgress {
		phrases = append(phrases, "Scheduler request in progress")
	}
	if p.TrickleUpPending {
		phrases = append(phrases, "Trickle up message pending")
	}
	if deferred := p.MinRPCTime - float64(now.Unix()); deferred > 0 {
		phrases = append(phrases, "Communication deferred "+FormatDuration(deferred))
	}

	return strings.Join(phrases, ", ")
}

// FriendlyAppName resolves a job to "Friendly Name version (plan_class)" via
// its work unit and application records. Either record may be missing from
// the current cache; the fallback is an empty name rather than an error.
func FriendlyAppName(job guirpc.Result, wu *guirpc.WorkUnit, app *guirpc.App) string {
	if wu == nil || app == nil {
		return ""
	}
	name := fmt.Sprintf("%s %s", app.UserFriendlyName, FormatAppVersion(wu.VersionNum))
	if job.PlanClass != "" {
		name += fmt.Sprintf(" (%s)", job.PlanClass)
	}
	return name
}

// FormatAppVersion renders a packed version number (major*100+minor) as
// "major.minor", e.g. 716 as "7.16".
func FormatAppVersion(versionNum int) string {
	return fmt.Sprintf("%d.%02d", versionNum/100, versionNum%100)
}

package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/drakej/boinc-cluster/internal/fleet"
	"github.com/drakej/boinc-cluster/internal/guirpc"
)

const clusterVersion = "v0.2.0"

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// StatusRoute reports each host's run modes and network status.
type StatusRoute struct {
	controller fleet.Controller
}

func NewStatusRoute(controller fleet.Controller) *StatusRoute {
	return &StatusRoute{
		controller: controller,
	}
}

func (h *StatusRoute) Pattern() string {
	return "/api/status"
}

func (h *StatusRoute) Method() string {
	return http.MethodGet
}

func (h *StatusRoute) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.controller.Status(r.Context()))
}

// TasksRoute returns every job across the fleet with derived status.
type TasksRoute struct {
	controller fleet.Controller
}

func NewTasksRoute(controller fleet.Controller) *TasksRoute {
	return &TasksRoute{
		controller: controller,
	}
}

func (h *TasksRoute) Pattern() string {
	return "/api/tasks"
}

func (h *TasksRoute) Method() string {
	return http.MethodGet
}

func (h *TasksRoute) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	tasks := h.controller.Tasks(r.Context())
	if tasks == nil {
		tasks = []fleet.TaskView{}
	}
	writeJSON(w, tasks)
}

// TasksLiveRoute serves the task table's refresh source: the same rows as
// TasksRoute wrapped in a data envelope.
type TasksLiveRoute struct {
	controller fleet.Controller
}

func NewTasksLiveRoute(controller fleet.Controller) *TasksLiveRoute {
	return &TasksLiveRoute{
		controller: controller,
	}
}

func (h *TasksLiveRoute) Pattern() string {
	return "/api/tasks/live"
}

func (h *TasksLiveRoute) Method() string {
	return http.MethodGet
}

func (h *TasksLiveRoute) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	tasks := h.controller.Tasks(r.Context())
	if tasks == nil {
		tasks = []fleet.TaskView{}
	}
	writeJSON(w, map[string][]fleet.TaskView{"data": tasks})
}

// ProjectsRoute returns attached projects across the fleet.
type ProjectsRoute struct {
	controller fleet.Controller
}

func NewProjectsRoute(controller fleet.Controller) *ProjectsRoute {
	return &ProjectsRoute{
		controller: controller,
	}
}

func (h *ProjectsRoute) Pattern() string {
	return "/api/projects"
}

func (h *ProjectsRoute) Method() string {
	return http.MethodGet
}

func (h *ProjectsRoute) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	projects := h.controller.Projects(r.Context())
	if projects == nil {
		projects = []fleet.ProjectView{}
	}
	writeJSON(w, projects)
}

// ComputersRoute returns hardware info for every reachable host.
type ComputersRoute struct {
	controller fleet.Controller
}

func NewComputersRoute(controller fleet.Controller) *ComputersRoute {
	return &ComputersRoute{
		controller: controller,
	}
}

func (h *ComputersRoute) Pattern() string {
	return "/api/computers"
}

func (h *ComputersRoute) Method() string {
	return http.MethodGet
}

func (h *ComputersRoute) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.controller.Computers(r.Context()))
}

// TransfersRoute returns pending file transfers across the fleet.
type TransfersRoute struct {
	controller fleet.Controller
}

func NewTransfersRoute(controller fleet.Controller) *TransfersRoute {
	return &TransfersRoute{
		controller: controller,
	}
}

func (h *TransfersRoute) Pattern() string {
	return "/api/transfers"
}

func (h *TransfersRoute) Method() string {
	return http.MethodGet
}

func (h *TransfersRoute) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	transfers := h.controller.Transfers(r.Context())
	if transfers == nil {
		transfers = []fleet.TransferView{}
	}
	writeJSON(w, transfers)
}

// DiskRoute returns per-host disk usage with derived headline numbers.
type DiskRoute struct {
	controller fleet.Controller
}

func NewDiskRoute(controller fleet.Controller) *DiskRoute {
	return &DiskRoute{
		controller: controller,
	}
}

func (h *DiskRoute) Pattern() string {
	return "/api/disk"
}

func (h *DiskRoute) Method() string {
	return http.MethodGet
}

func (h *DiskRoute) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.controller.DiskUsage(r.Context()))
}

// StatisticsRoute returns per-project credit history for every host.
type StatisticsRoute struct {
	controller fleet.Controller
}

func NewStatisticsRoute(controller fleet.Controller) *StatisticsRoute {
	return &StatisticsRoute{
		controller: controller,
	}
}

func (h *StatisticsRoute) Pattern() string {
	return "/api/statistics"
}

func (h *StatisticsRoute) Method() string {
	return http.MethodGet
}

func (h *StatisticsRoute) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.controller.Statistics(r.Context()))
}

// SetModesRequest asks for a mode change on a set of hosts. An empty host
// list targets the whole fleet.
type SetModesRequest struct {
	Component string   `json:"component"`
	Mode      string   `json:"mode"`
	Duration  float64  `json:"duration"`
	Hosts     []string `json:"hosts"`
}

// SetModesRoute applies a run/GPU/network mode change per host and reports
// per-host success.
type SetModesRoute struct {
	controller fleet.Controller
}

func NewSetModesRoute(controller fleet.Controller) *SetModesRoute {
	return &SetModesRoute{
		controller: controller,
	}
}

func (h *SetModesRoute) Pattern() string {
	return "/api/computers/modes"
}

func (h *SetModesRoute) Method() string {
	return http.MethodPost
}

func (h *SetModesRoute) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req SetModesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	mode, ok := guirpc.ParseRunMode(req.Mode)
	if !ok {
		http.Error(w, "unrecognized mode: "+req.Mode, http.StatusBadRequest)
		return
	}

	hosts := req.Hosts
	if len(hosts) == 0 {
		hosts = h.controller.Hostnames()
	}

	results := make(map[string]bool, len(hosts))
	for _, host := range hosts {
		results[host] = h.controller.SetMode(r.Context(), host, req.Component, mode, req.Duration)
	}
	writeJSON(w, results)
}

// BenchmarksRoute asks one host to rerun CPU benchmarks.
type BenchmarksRoute struct {
	controller fleet.Controller
}

func NewBenchmarksRoute(controller fleet.Controller) *BenchmarksRoute {
	return &BenchmarksRoute{
		controller: controller,
	}
}

func (h *BenchmarksRoute) Pattern() string {
	return "/api/computers/{host}/benchmarks"
}

func (h *BenchmarksRoute) Method() string {
	return http.MethodPost
}

func (h *BenchmarksRoute) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	host := mux.Vars(r)["host"]
	writeJSON(w, map[string]bool{host: h.controller.RunBenchmarks(r.Context(), host)})
}

type VersionRoute struct {
}

func NewVersionRoute() *VersionRoute {
	return &VersionRoute{}
}

func (h *VersionRoute) Pattern() string {
	return "/api/version"
}

func (h *VersionRoute) Method() string {
	return http.MethodGet
}

func (h *VersionRoute) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte(clusterVersion))
}

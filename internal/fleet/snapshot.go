package fleet

import (
	"time"

	"github.com/google/uuid"

	"github.com/drakej/boinc-cluster/internal/guirpc"
)

// hostState is one host's client state re-keyed for lookup: projects by
// master URL, apps and work units by name. All keys are host-scoped.
type hostState struct {
	Hostname  string
	Info      guirpc.HostInfo
	Projects  map[string]guirpc.Project
	Apps      map[string]guirpc.App
	WorkUnits map[string]guirpc.WorkUnit
}

func newHostState(hostname string, cs guirpc.ClientState) *hostState {
	state := &hostState{
		Hostname:  hostname,
		Info:      cs.HostInfo,
		Projects:  make(map[string]guirpc.Project, len(cs.Projects)),
		Apps:      make(map[string]guirpc.App, len(cs.Apps)),
		WorkUnits: make(map[string]guirpc.WorkUnit, len(cs.WorkUnits)),
	}
	for _, p := range cs.Projects {
		state.Projects[p.MasterURL] = p
	}
	for _, a := range cs.Apps {
		state.Apps[a.Name] = a
	}
	for _, w := range cs.WorkUnits {
		state.WorkUnits[w.Name] = w
	}
	return state
}

// Snapshot is the product of one poll cycle. It is built fresh per refresh
// and never mutated afterward, so later lookups cannot observe staleness
// from a newer cycle. The cycle ID correlates log lines.
type Snapshot struct {
	ID      string
	TakenAt time.Time

	states map[string]*hostState
}

func newSnapshot() *Snapshot {
	return &Snapshot{
		ID:      uuid.New().String(),
		TakenAt: time.Now(),
		states:  make(map[string]*hostState),
	}
}

// State returns the client state for one host, or nil when the host was
// unreachable this cycle. Callers must tolerate the miss.
func (s *Snapshot) State(hostname string) *hostState {
	return s.states[hostname]
}

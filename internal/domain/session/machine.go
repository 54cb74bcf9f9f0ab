package session

import (
	"sync"

	apperrors "github.com/gauriiiiiiiiiiii/genmeds-api/pkg/errors"
)

// Phase is a feature's position in its request lifecycle.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseUploading  Phase = "uploading"
	PhaseValidating Phase = "validating"
	PhaseAnalyzing  Phase = "analyzing"
	PhaseFetching   Phase = "fetching"
	PhaseSuccess    Phase = "success"
	PhaseError      Phase = "error"
)

// transitions lists the forward edges of the lifecycle. Terminal phases only
// leave via Begin, which restarts from a fresh generation.
var transitions = map[Phase][]Phase{
	PhaseIdle:       {PhaseUploading, PhaseValidating, PhaseAnalyzing},
	PhaseUploading:  {PhaseAnalyzing, PhaseError},
	PhaseValidating: {PhaseAnalyzing, PhaseError},
	PhaseAnalyzing:  {PhaseFetching, PhaseSuccess, PhaseError},
	PhaseFetching:   {PhaseSuccess, PhaseError},
}

func canTransition(from, to Phase) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// View is a read-only snapshot of a machine.
type View struct {
	Phase      Phase  `json:"phase"`
	Generation uint64 `json:"generation"`
	Error      string `json:"error,omitempty"`
}

// Machine tracks one feature's in-flight request. Every Begin increments the
// generation; mutations carrying an older generation are discarded so a
// superseded request can never overwrite a newer one's outcome.
type Machine struct {
	mu         sync.Mutex
	phase      Phase
	generation uint64
	errMsg     string
}

func NewMachine() *Machine {
	return &Machine{phase: PhaseIdle}
}

// Begin starts a new request from an idle or terminal phase and returns the
// generation the caller must present for all later mutations. Starting while
// a request is in flight is rejected as busy.
func (m *Machine) Begin(start Phase) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.phase {
	case PhaseIdle, PhaseSuccess, PhaseError:
	default:
		return 0, apperrors.Wrap(apperrors.CodeBusy, "a request is already in progress for this feature", nil)
	}
	if !canTransition(PhaseIdle, start) {
		return 0, apperrors.Wrap(apperrors.CodeInvalidInput, "invalid starting phase", nil)
	}

	m.generation++
	m.phase = start
	m.errMsg = ""
	return m.generation, nil
}

// Advance moves the machine forward. It reports false, without mutating,
// when the generation is stale or the edge is not part of the lifecycle.
func (m *Machine) Advance(generation uint64, to Phase) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if generation != m.generation || !canTransition(m.phase, to) {
		return false
	}
	m.phase = to
	return true
}

// Complete marks the request successful. Stale generations are discarded.
func (m *Machine) Complete(generation uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if generation != m.generation || !canTransition(m.phase, PhaseSuccess) {
		return false
	}
	m.phase = PhaseSuccess
	m.errMsg = ""
	return true
}

// Fail marks the request failed with a user-facing message. Stale
// generations are discarded.
func (m *Machine) Fail(generation uint64, message string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if generation != m.generation || !canTransition(m.phase, PhaseError) {
		return false
	}
	m.phase = PhaseError
	m.errMsg = message
	return true
}

// Reset returns the machine to idle without invalidating the generation
// counter, so responses from the abandoned request still read as stale.
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generation++
	m.phase = PhaseIdle
	m.errMsg = ""
}

// Snapshot returns the current view.
func (m *Machine) Snapshot() View {
	m.mu.Lock()
	defer m.mu.Unlock()
	return View{Phase: m.phase, Generation: m.generation, Error: m.errMsg}
}

package session

import (
	"sync"

	"github.com/gauriiiiiiiiiiii/genmeds-api/internal/domain/prescription"
)

// Feature names each independently tracked lifecycle.
type Feature string

const (
	FeaturePrescription Feature = "prescription"
	FeatureAlternatives Feature = "alternatives"
	FeatureSearch       Feature = "search"
	FeatureLocator      Feature = "locator"
	FeatureInteractions Feature = "interactions"
	FeaturePill         Feature = "pill"
	FeatureSymptoms     Feature = "symptoms"
)

// Features lists every tracked feature in a stable order.
var Features = []Feature{
	FeaturePrescription,
	FeatureAlternatives,
	FeatureSearch,
	FeatureLocator,
	FeatureInteractions,
	FeaturePill,
	FeatureSymptoms,
}

type deviceSession struct {
	machines map[Feature]*Machine
	handoff  []prescription.Medicine
}

// Manager holds per-device sessions. Each device gets an independent machine
// per feature, so a busy prescription analysis never blocks a search.
type Manager struct {
	mu      sync.Mutex
	devices map[string]*deviceSession
}

func NewManager() *Manager {
	return &Manager{devices: make(map[string]*deviceSession)}
}

func (m *Manager) session(deviceID string) *deviceSession {
	s, ok := m.devices[deviceID]
	if !ok {
		s = &deviceSession{machines: make(map[Feature]*Machine)}
		m.devices[deviceID] = s
	}
	return s
}

// Machine returns the device's machine for a feature, creating it on first
// use.
func (m *Manager) Machine(deviceID string, feature Feature) *Machine {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.session(deviceID)
	machine, ok := s.machines[feature]
	if !ok {
		machine = NewMachine()
		s.machines[feature] = machine
	}
	return machine
}

// Snapshot reports every feature's view for a device. Features never touched
// read as idle.
func (m *Manager) Snapshot(deviceID string) map[Feature]View {
	out := make(map[Feature]View, len(Features))
	for _, feature := range Features {
		out[feature] = m.Machine(deviceID, feature).Snapshot()
	}
	return out
}

// StoreHandoff parks an analyzed medicine list for the alternatives flow,
// replacing any previous unconsumed handoff.
func (m *Manager) StoreHandoff(deviceID string, medicines []prescription.Medicine) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session(deviceID).handoff = append([]prescription.Medicine(nil), medicines...)
}

// TakeHandoff consumes the parked medicine list. A handoff is delivered at
// most once; a second call reports absence.
func (m *Manager) TakeHandoff(deviceID string) ([]prescription.Medicine, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.devices[deviceID]
	if !ok || s.handoff == nil {
		return nil, false
	}
	medicines := s.handoff
	s.handoff = nil
	return medicines, true
}

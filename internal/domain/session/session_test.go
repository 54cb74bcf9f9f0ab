package session

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gauriiiiiiiiiiii/genmeds-api/internal/domain/prescription"
	apperrors "github.com/gauriiiiiiiiiiii/genmeds-api/pkg/errors"
)

func TestMachineHappyPath(t *testing.T) {
	m := NewMachine()
	require.Equal(t, PhaseIdle, m.Snapshot().Phase)

	gen, err := m.Begin(PhaseUploading)
	require.NoError(t, err)
	require.True(t, m.Advance(gen, PhaseAnalyzing))
	require.True(t, m.Advance(gen, PhaseFetching))
	require.True(t, m.Complete(gen))
	require.Equal(t, PhaseSuccess, m.Snapshot().Phase)
}

func TestMachineRejectsConcurrentBegin(t *testing.T) {
	m := NewMachine()
	_, err := m.Begin(PhaseAnalyzing)
	require.NoError(t, err)

	_, err = m.Begin(PhaseAnalyzing)
	require.True(t, apperrors.IsCode(err, apperrors.CodeBusy))
}

func TestMachineRestartsFromTerminalPhases(t *testing.T) {
	m := NewMachine()

	gen, err := m.Begin(PhaseAnalyzing)
	require.NoError(t, err)
	require.True(t, m.Fail(gen, "model unavailable"))
	require.Equal(t, "model unavailable", m.Snapshot().Error)

	gen2, err := m.Begin(PhaseAnalyzing)
	require.NoError(t, err)
	require.Greater(t, gen2, gen)
	require.Empty(t, m.Snapshot().Error)
	require.True(t, m.Complete(gen2))

	_, err = m.Begin(PhaseValidating)
	require.NoError(t, err)
}

func TestMachineFailsFromEarlyPhases(t *testing.T) {
	// A bad upload or a rejected medicine list fails before analysis ever
	// starts; the machine must reach error and accept the next request.
	for _, start := range []Phase{PhaseUploading, PhaseValidating} {
		m := NewMachine()

		gen, err := m.Begin(start)
		require.NoError(t, err)
		require.True(t, m.Fail(gen, "invalid input"), "Fail from %s should reach the error phase", start)
		require.Equal(t, PhaseError, m.Snapshot().Phase)

		gen2, err := m.Begin(start)
		require.NoError(t, err, "Begin after a %s failure should not report busy", start)
		require.True(t, m.Advance(gen2, PhaseAnalyzing))
		require.True(t, m.Complete(gen2))
	}
}

func TestMachineDiscardsStaleGeneration(t *testing.T) {
	m := NewMachine()

	stale, err := m.Begin(PhaseAnalyzing)
	require.NoError(t, err)
	m.Reset()

	fresh, err := m.Begin(PhaseAnalyzing)
	require.NoError(t, err)

	require.False(t, m.Complete(stale))
	require.False(t, m.Fail(stale, "late failure"))
	require.Equal(t, PhaseAnalyzing, m.Snapshot().Phase)

	require.True(t, m.Complete(fresh))
	require.Equal(t, PhaseSuccess, m.Snapshot().Phase)
}

func TestMachineRejectsInvalidEdges(t *testing.T) {
	m := NewMachine()

	gen, err := m.Begin(PhaseUploading)
	require.NoError(t, err)
	require.False(t, m.Advance(gen, PhaseFetching))
	require.False(t, m.Complete(gen))
	require.Equal(t, PhaseUploading, m.Snapshot().Phase)
}

func TestMachineResetInvalidatesInFlightWork(t *testing.T) {
	m := NewMachine()

	gen, err := m.Begin(PhaseAnalyzing)
	require.NoError(t, err)
	m.Reset()

	require.Equal(t, PhaseIdle, m.Snapshot().Phase)
	require.False(t, m.Advance(gen, PhaseSuccess))
}

func TestManagerIsolatesFeaturesAndDevices(t *testing.T) {
	mgr := NewManager()

	_, err := mgr.Machine("device-1", FeaturePrescription).Begin(PhaseUploading)
	require.NoError(t, err)

	_, err = mgr.Machine("device-1", FeatureSearch).Begin(PhaseAnalyzing)
	require.NoError(t, err)

	_, err = mgr.Machine("device-2", FeaturePrescription).Begin(PhaseUploading)
	require.NoError(t, err)

	snapshot := mgr.Snapshot("device-1")
	require.Equal(t, PhaseUploading, snapshot[FeaturePrescription].Phase)
	require.Equal(t, PhaseAnalyzing, snapshot[FeatureSearch].Phase)
	require.Equal(t, PhaseIdle, snapshot[FeatureSymptoms].Phase)
}

func TestHandoffConsumedExactlyOnce(t *testing.T) {
	mgr := NewManager()
	medicines := []prescription.Medicine{{Name: "Dolo 650", Dosage: "1-0-1"}}

	mgr.StoreHandoff("device-1", medicines)

	got, ok := mgr.TakeHandoff("device-1")
	require.True(t, ok)
	require.Equal(t, medicines, got)

	_, ok = mgr.TakeHandoff("device-1")
	require.False(t, ok)
}

func TestHandoffScopedPerDevice(t *testing.T) {
	mgr := NewManager()
	mgr.StoreHandoff("device-1", []prescription.Medicine{{Name: "Dolo 650"}})

	_, ok := mgr.TakeHandoff("device-2")
	require.False(t, ok)
}

func TestHandoffReplacedByNewerAnalysis(t *testing.T) {
	mgr := NewManager()
	mgr.StoreHandoff("device-1", []prescription.Medicine{{Name: "Old"}})
	mgr.StoreHandoff("device-1", []prescription.Medicine{{Name: "New"}})

	got, ok := mgr.TakeHandoff("device-1")
	require.True(t, ok)
	require.Equal(t, "New", got[0].Name)
}

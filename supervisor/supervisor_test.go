package supervisor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semcore/semcore/actor"
	"github.com/semcore/semcore/config"
	"github.com/semcore/semcore/errs"
)

func newSubstrateWith(t *testing.T, ids ...uint64) *actor.Substrate {
	t.Helper()
	s := actor.NewSubstrate(len(ids), nil, 0)
	for _, id := range ids {
		_, err := s.Register(id, 1)
		require.NoError(t, err)
	}
	return s
}

// Scenario 4 (spec.md §8): OneForAll restart.
func TestOneForAllRestartsEveryManagedActor(t *testing.T) {
	sub := newSubstrateWith(t, 1, 2, 3)
	sv := New(1, config.RestartPermanent, config.OneForAll, 10, 60_000_000_000, nil, 0, nil)
	require.NoError(t, sv.Manage(1))
	require.NoError(t, sv.Manage(2))
	require.NoError(t, sv.Manage(3))

	result, err := sv.ReportFailure(sub, nil, 2, 1, 1000)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint64{1, 2, 3}, result.Restarted)

	for _, id := range []uint64{1, 2, 3} {
		ma, ok := sv.Get(id)
		require.True(t, ok)
		assert.Equal(t, Running, ma.State)
	}

	totalFailures, totalRestarts, successful, failed := sv.Stats()
	assert.Equal(t, uint64(1), totalFailures)
	assert.Equal(t, uint64(3), totalRestarts)
	assert.Equal(t, uint64(1), successful)
	assert.Equal(t, uint64(0), failed)
}

func TestReportFailureUnmanagedActorReturnsNoSupervisor(t *testing.T) {
	sub := newSubstrateWith(t, 1)
	sv := New(1, config.RestartPermanent, config.OneForOne, 10, 1, nil, 0, nil)
	_, err := sv.ReportFailure(sub, nil, 99, 1, 1000)
	assert.ErrorIs(t, err, errs.ErrNoSupervisor)
}

func TestTemporaryNeverRestarts(t *testing.T) {
	sub := newSubstrateWith(t, 1)
	sv := New(1, config.RestartTemporary, config.OneForOne, 10, 1, nil, 0, nil)
	require.NoError(t, sv.Manage(1))

	result, err := sv.ReportFailure(sub, nil, 1, 1, 1000)
	require.NoError(t, err)
	assert.Empty(t, result.Restarted)
}

func TestTransientRestartsOnlyOnNonzeroReason(t *testing.T) {
	sub := newSubstrateWith(t, 1)
	sv := New(1, config.RestartTransient, config.OneForOne, 10, 1, nil, 0, nil)
	require.NoError(t, sv.Manage(1))

	result, err := sv.ReportFailure(sub, nil, 1, 0, 1000)
	require.NoError(t, err)
	assert.Empty(t, result.Restarted, "reason 0 never restarts under Transient")

	result, err = sv.ReportFailure(sub, nil, 1, 2, 1000)
	require.NoError(t, err)
	assert.Equal(t, []uint64{1}, result.Restarted)
}

func TestRestForOneRestartsFailedAndLaterSiblings(t *testing.T) {
	sub := newSubstrateWith(t, 1, 2, 3, 4)
	sv := New(1, config.RestartPermanent, config.RestForOne, 10, 1, nil, 0, nil)
	for _, id := range []uint64{1, 2, 3, 4} {
		require.NoError(t, sv.Manage(id))
	}

	result, err := sv.ReportFailure(sub, nil, 2, 1, 1000)
	require.NoError(t, err)
	assert.Equal(t, []uint64{2, 3, 4}, result.Restarted, "actor 2 and every sibling started after it, in order")
}

// Round-trip law (spec.md §8): repeated restart of the same actor
// within its window increments restart_count until max_restarts,
// after which further restart requests are refused and
// failed_recoveries increments.
func TestRestartRateLimitRefusesAfterMaxWithinWindow(t *testing.T) {
	sub := newSubstrateWith(t, 1)
	const window = uint64(60_000_000_000) // 60s in ns
	sv := New(1, config.RestartPermanent, config.OneForOne, 2, window, nil, 0, nil)
	require.NoError(t, sv.Manage(1))

	now := uint64(1000)
	for i := 0; i < 2; i++ {
		result, err := sv.ReportFailure(sub, nil, 1, 1, now)
		require.NoError(t, err)
		assert.False(t, result.Refused)
		now += 10 // still well within the window
	}

	result, err := sv.ReportFailure(sub, nil, 1, 1, now)
	require.NoError(t, err)
	assert.True(t, result.Refused)

	_, _, _, failed := sv.Stats()
	assert.Equal(t, uint64(1), failed)

	ma, ok := sv.Get(1)
	require.True(t, ok)
	assert.Equal(t, 2, ma.RestartCount)
}

func TestRestartCounterResetsAfterWindowElapses(t *testing.T) {
	sub := newSubstrateWith(t, 1)
	const window = uint64(1000)
	sv := New(1, config.RestartPermanent, config.OneForOne, 1, window, nil, 0, nil)
	require.NoError(t, sv.Manage(1))

	_, err := sv.ReportFailure(sub, nil, 1, 1, 0)
	require.NoError(t, err)

	result, err := sv.ReportFailure(sub, nil, 1, 1, window+1)
	require.NoError(t, err)
	assert.False(t, result.Refused, "the window elapsed, so the counter resets before this restart")
}

func TestManageDuplicateReturnsError(t *testing.T) {
	sv := New(1, config.RestartPermanent, config.OneForOne, 1, 1, nil, 0, nil)
	require.NoError(t, sv.Manage(1))
	assert.ErrorIs(t, sv.Manage(1), errs.ErrDuplicate)
}

func TestRegistryEscalatesToParentOnRestartFailure(t *testing.T) {
	// substrate deliberately does not include actor 2, so its
	// restart fails and the failure escalates to the parent.
	sub := newSubstrateWith(t, 1)
	parent := New(1, config.RestartPermanent, config.OneForOne, 10, 1, nil, 0, nil)
	child := New(2, config.RestartPermanent, config.OneForOne, 10, 1, nil, 0, nil)
	child.ParentID = 1
	require.NoError(t, child.Manage(2))

	reg := NewRegistry()
	require.NoError(t, reg.Add(parent))
	require.NoError(t, reg.Add(child))

	_, err := child.ReportFailure(sub, reg, 2, 1, 1000)
	assert.Error(t, err)

	_, _, _, parentFailed := parent.Stats()
	assert.Equal(t, uint64(1), parentFailed)
}

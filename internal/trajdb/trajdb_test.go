package trajdb

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "traj.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenAppliesMigrations(t *testing.T) {
	db := openTestDB(t)

	// The schema must exist and start empty.
	runs, err := db.Runs()
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traj.db")

	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// Reopening an already-migrated database must not fail.
	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()
}

func TestRecordAndReadPoses(t *testing.T) {
	db := openTestDB(t)

	runID, err := db.StartRun("bench hallway")
	require.NoError(t, err)
	require.NotEmpty(t, runID)

	for frame := 1; frame <= 3; frame++ {
		err := db.RecordPose(PoseRecord{
			RunID:   runID,
			Frame:   frame,
			PosX:    float64(frame) * 0.1,
			IncPosX: 0.1,
			RotZ:    0.01,
			IncRotZ: 0.01,
		})
		require.NoError(t, err)
	}

	poses, err := db.RunPoses(runID)
	require.NoError(t, err)
	require.Len(t, poses, 3)

	for i, p := range poses {
		assert.Equal(t, runID, p.RunID)
		assert.Equal(t, i+1, p.Frame)
		assert.InDelta(t, float64(i+1)*0.1, p.PosX, 1e-12)
		assert.False(t, p.Converged)
		assert.False(t, p.Degenerate)
	}
}

func TestRecordPoseRoundTripsFlags(t *testing.T) {
	db := openTestDB(t)

	runID, err := db.StartRun("")
	require.NoError(t, err)

	require.NoError(t, db.RecordPose(PoseRecord{
		RunID: runID, Frame: 1, Converged: true, Degenerate: true,
	}))

	poses, err := db.RunPoses(runID)
	require.NoError(t, err)
	require.Len(t, poses, 1)
	assert.True(t, poses[0].Converged)
	assert.True(t, poses[0].Degenerate)
}

func TestDuplicateFrameRejected(t *testing.T) {
	db := openTestDB(t)

	runID, err := db.StartRun("")
	require.NoError(t, err)

	require.NoError(t, db.RecordPose(PoseRecord{RunID: runID, Frame: 1}))
	assert.Error(t, db.RecordPose(PoseRecord{RunID: runID, Frame: 1}))
}

func TestRunsListing(t *testing.T) {
	db := openTestDB(t)

	first, err := db.StartRun("first")
	require.NoError(t, err)
	second, err := db.StartRun("second")
	require.NoError(t, err)

	runs, err := db.Runs()
	require.NoError(t, err)
	require.Len(t, runs, 2)

	ids := []string{runs[0].ID, runs[1].ID}
	assert.Contains(t, ids, first)
	assert.Contains(t, ids, second)
	for _, r := range runs {
		assert.False(t, r.StartedAt.IsZero())
	}
}

func TestRunPosesUnknownRun(t *testing.T) {
	db := openTestDB(t)

	poses, err := db.RunPoses("no-such-run")
	require.NoError(t, err)
	assert.Empty(t, poses)
}

package archive

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/ridersim/internal/config"
	"github.com/san-kum/ridersim/internal/sim"
	"github.com/san-kum/ridersim/internal/track"
)

func openTestArchive(t *testing.T) *Archive {
	t.Helper()
	a, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func play(t *testing.T, preset string, frames int) *sim.Result {
	t.Helper()
	reg := track.NewRegistry()
	h, err := config.GetPreset(preset).Open(reg)
	require.NoError(t, err)
	res, err := sim.New(reg, h).Run(context.Background(), sim.Config{Frames: frames, Keep: true})
	require.NoError(t, err)
	return res
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	for i := 0; i < 3; i++ {
		a, err := Open(path)
		require.NoError(t, err, "open %d", i)
		require.NoError(t, a.Close())
	}
}

func TestRecordAndRead(t *testing.T) {
	ctx := context.Background()
	a := openTestArchive(t)
	res := play(t, "flat", 30)

	id, err := a.Record(ctx, "flat", 1, 0, res)
	require.NoError(t, err)
	assert.Len(t, id, 36)

	run, err := a.Run(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "flat", run.Scene)
	assert.Equal(t, 31, run.Frames)
	assert.Equal(t, 1, run.Lines)
	assert.Equal(t, res.CrashFrame, run.CrashFrame)
	assert.Greater(t, run.PeakSpeed, 0.0)

	frames, err := a.Frames(ctx, id)
	require.NoError(t, err)
	require.Len(t, frames, 31)
	assert.Equal(t, 30, frames[30].Frame)
	assert.Equal(t, res.Riders[30].Center(), frames[30].Center)
	assert.Equal(t, res.Riders[30].Speed(), frames[30].Speed)
}

func TestRuns_FilterByScene(t *testing.T) {
	ctx := context.Background()
	a := openTestArchive(t)

	_, err := a.Record(ctx, "flat", 1, 0, play(t, "flat", 5))
	require.NoError(t, err)
	_, err = a.Record(ctx, "drop", 1, 0, play(t, "drop", 5))
	require.NoError(t, err)

	all, err := a.Runs(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	drops, err := a.Runs(ctx, "drop")
	require.NoError(t, err)
	require.Len(t, drops, 1)
	assert.Equal(t, "drop", drops[0].Scene)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	a := openTestArchive(t)

	id, err := a.Record(ctx, "flat", 1, 0, play(t, "flat", 5))
	require.NoError(t, err)
	require.NoError(t, a.Delete(ctx, id))

	_, err = a.Run(ctx, id)
	assert.True(t, errors.Is(err, ErrNotFound))

	frames, err := a.Frames(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, frames, "frames cascade with their run")

	assert.ErrorIs(t, a.Delete(ctx, id), ErrNotFound)
}

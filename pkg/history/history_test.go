package history

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/copper/pkg/board"
	cerrors "github.com/matzehuels/copper/pkg/errors"
	"github.com/matzehuels/copper/pkg/geom"
	"github.com/matzehuels/copper/pkg/netlist"
)

type counter struct {
	n    *int
	fail bool
}

func (c counter) ID() string       { return "counter" }
func (c counter) Describe() string { return "increment" }

func (c counter) Revert() error {
	*c.n--
	return nil
}

func (c counter) Apply() error {
	if c.fail {
		return errors.New("boom")
	}
	*c.n++
	return nil
}

func TestStackUndoRedo(t *testing.T) {
	var n int
	s := NewStack(0)
	assert.False(t, s.CanUndo())
	assert.False(t, s.Dirty())

	require.NoError(t, s.Do(counter{n: &n}))
	require.NoError(t, s.Do(counter{n: &n}))
	assert.Equal(t, 2, n)
	assert.True(t, s.Dirty())

	s.MarkClean()
	_, err := s.Undo()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.True(t, s.Dirty())
	assert.True(t, s.CanRedo())

	_, err = s.Redo()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = s.Undo()
	require.NoError(t, err)
	require.NoError(t, s.Do(counter{n: &n}))
	assert.False(t, s.CanRedo(), "new command clears redo")

	_, err = s.Redo()
	assert.True(t, cerrors.Is(err, cerrors.ErrCodeNotFound))
}

func TestStackFailedApplyRecordsNothing(t *testing.T) {
	var n int
	s := NewStack(0)
	require.Error(t, s.Do(counter{n: &n, fail: true}))
	assert.Equal(t, 0, s.Len())
	assert.False(t, s.Dirty())
}

func TestStackDepth(t *testing.T) {
	var n int
	s := NewStack(3)
	for range 5 {
		require.NoError(t, s.Do(counter{n: &n}))
	}
	assert.Equal(t, 3, s.Len())
	for range 3 {
		_, err := s.Undo()
		require.NoError(t, err)
	}
	assert.Equal(t, 2, n)
	assert.False(t, s.CanUndo())
}

func TestSessionsAreIsolated(t *testing.T) {
	mk := func() *Session {
		b, err := board.New(board.CopperStack(2), board.RectOutline(geom.MM(10), geom.MM(10)))
		require.NoError(t, err)
		nl := netlist.New()
		require.NoError(t, nl.AddNet(netlist.Net{Name: "N"}))
		return NewSession(b, nl)
	}
	a, b := mk(), mk()
	assert.NotEqual(t, a.ID, b.ID)

	require.NoError(t, a.Do(board.AddBatch(a.Board, a.Netlist, []board.Trace{
		{Net: "N", Layer: "F.Cu", Start: geom.PtMM(1, 1), End: geom.PtMM(2, 1), Width: geom.MM(0.2)},
	}, nil)))
	assert.True(t, a.History.CanUndo())
	assert.False(t, b.History.CanUndo())
	assert.Empty(t, b.Board.Traces())

	_, err := a.History.Undo()
	require.NoError(t, err)
	assert.Empty(t, a.Board.Traces())
}

package route

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cerrors "github.com/matzehuels/copper/pkg/errors"
	"github.com/matzehuels/copper/pkg/geom"
)

const script = `
[[routes]]
layer = "F.Cu"
from = { x = "10mm", y = "10mm" }
steps = [
  { op = "width", width = "0.3mm" },
  { op = "to", at = { x = "15mm", y = "10mm" } },
  { op = "via", layer = "B.Cu" },
  { op = "to", at = { x = "20mm", y = "20mm" } },
]

[[routes]]
layer = "F.Cu"
from = { x = "30mm", y = "10mm" }
steps = [{ op = "to", at = { x = "35mm", y = "10mm" } }]
`

func TestReadScript(t *testing.T) {
	s, err := ReadScript(strings.NewReader(script))
	require.NoError(t, err)
	require.Len(t, s.Routes, 2)
	assert.Equal(t, geom.PtMM(10, 10), s.Routes[0].From)
	require.Len(t, s.Routes[0].Steps, 4)
	assert.Equal(t, OpWidth, s.Routes[0].Steps[0].Op)
	assert.Equal(t, geom.MM(0.3), s.Routes[0].Steps[0].Width)
	assert.Equal(t, "B.Cu", s.Routes[0].Steps[2].Layer)

	_, err = ReadScript(strings.NewReader("[[routes]]\nlayr = \"F.Cu\"\n"))
	assert.True(t, cerrors.Is(err, cerrors.ErrCodeInvalidInput), "%v", err)
}

func TestPlay(t *testing.T) {
	s := testSession(t)
	e := newEngine(t, s, nil)
	sc, err := ReadScript(strings.NewReader(script))
	require.NoError(t, err)

	res, err := e.Play(sc.Routes[0])
	require.NoError(t, err)
	assert.Len(t, res.ViaIDs, 1)
	assert.NotEmpty(t, res.TraceIDs)
	for _, id := range res.TraceIDs {
		tr, ok := s.Board.Trace(id)
		require.True(t, ok)
		assert.Equal(t, geom.MM(0.3), tr.Width)
	}
	assert.Equal(t, Committed, e.LastOutcome())

	before := s.Board.Fingerprint()
	_, err = e.Play(sc.Routes[1])
	assert.True(t, cerrors.Is(err, cerrors.ErrCodeDanglingRoute), "%v", err)
	assert.Equal(t, Idle, e.State())
	assert.Equal(t, before, s.Board.Fingerprint())
}

func TestPlayRejectsUnknownStep(t *testing.T) {
	s := testSession(t)
	e := newEngine(t, s, nil)
	before := s.Board.Fingerprint()

	_, err := e.Play(ScriptRoute{
		Layer: "F.Cu",
		From:  geom.PtMM(10, 10),
		Steps: []Step{{Op: "jump"}},
	})
	assert.True(t, cerrors.Is(err, cerrors.ErrCodeInvalidInput), "%v", err)
	assert.Equal(t, Idle, e.State())
	assert.Equal(t, before, s.Board.Fingerprint())
}

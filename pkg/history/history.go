// Package history keeps the undo/redo stack for an editing session.
//
// Each [Session] owns its own [Stack]; there is no process-wide history, so
// documents and tests run in isolation. Every successful mutation is one
// [Command], applied and recorded atomically.
package history

import (
	"sync"

	"github.com/google/uuid"

	"github.com/matzehuels/copper/pkg/board"
	cerrors "github.com/matzehuels/copper/pkg/errors"
	"github.com/matzehuels/copper/pkg/netlist"
)

// DefaultDepth is the number of commands kept for undo.
const DefaultDepth = 100

// Command is a reversible mutation.
type Command interface {
	ID() string
	Describe() string
	Apply() error
	Revert() error
}

// Stack is a bounded undo/redo stack with a dirty flag.
type Stack struct {
	mu    sync.Mutex
	undo  []Command
	redo  []Command
	depth int
	dirty bool
}

// NewStack returns a stack keeping at most depth commands. A non-positive
// depth selects DefaultDepth.
func NewStack(depth int) *Stack {
	if depth <= 0 {
		depth = DefaultDepth
	}
	return &Stack{depth: depth}
}

// Do applies cmd and records it. A failed Apply records nothing.
func (s *Stack) Do(cmd Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := cmd.Apply(); err != nil {
		return err
	}
	s.undo = append(s.undo, cmd)
	if len(s.undo) > s.depth {
		s.undo = s.undo[len(s.undo)-s.depth:]
	}
	s.redo = nil
	s.dirty = true
	return nil
}

// Undo reverts the most recent command and returns it.
func (s *Stack) Undo() (Command, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.undo) == 0 {
		return nil, cerrors.New(cerrors.ErrCodeNotFound, "nothing to undo")
	}
	cmd := s.undo[len(s.undo)-1]
	if err := cmd.Revert(); err != nil {
		return nil, err
	}
	s.undo = s.undo[:len(s.undo)-1]
	s.redo = append(s.redo, cmd)
	s.dirty = true
	return cmd, nil
}

// Redo re-applies the most recently undone command and returns it.
func (s *Stack) Redo() (Command, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.redo) == 0 {
		return nil, cerrors.New(cerrors.ErrCodeNotFound, "nothing to redo")
	}
	cmd := s.redo[len(s.redo)-1]
	if err := cmd.Apply(); err != nil {
		return nil, err
	}
	s.redo = s.redo[:len(s.redo)-1]
	s.undo = append(s.undo, cmd)
	s.dirty = true
	return cmd, nil
}

// CanUndo reports whether Undo has something to revert.
func (s *Stack) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.undo) > 0
}

// CanRedo reports whether Redo has something to apply.
func (s *Stack) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.redo) > 0
}

// Len returns the number of undoable commands.
func (s *Stack) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.undo)
}

// Dirty reports whether anything changed since the last MarkClean.
func (s *Stack) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// MarkClean clears the dirty flag, typically after saving.
func (s *Stack) MarkClean() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirty = false
}

// Session is the editing context passed to every mutating call: one board,
// its netlist and their history.
type Session struct {
	ID      string
	Board   *board.Board
	Netlist *netlist.Netlist
	History *Stack

	mu     sync.Mutex
	router string
}

// NewSession creates a session with a fresh history.
func NewSession(b *board.Board, nl *netlist.Netlist) *Session {
	return &Session{
		ID:      uuid.NewString(),
		Board:   b,
		Netlist: nl,
		History: NewStack(DefaultDepth),
	}
}

// Do applies a command through the session history.
func (s *Session) Do(cmd Command) error { return s.History.Do(cmd) }

// ClaimRouter marks owner as the single active router of the session. It
// returns false if another owner holds the claim.
func (s *Session) ClaimRouter(owner string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.router != "" && s.router != owner {
		return false
	}
	s.router = owner
	return true
}

// ReleaseRouter drops owner's claim. Releasing a claim held by someone else
// does nothing.
func (s *Session) ReleaseRouter(owner string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.router == owner {
		s.router = ""
	}
}

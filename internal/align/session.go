// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package align

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// State of an interactive landmark session
type State int

const (
	AwaitingInput State = iota
	Finalizing
	Done
	Cancelled
)

func (s State) String() string {
	switch s {
	case AwaitingInput:
		return "awaitingInput"
	case Finalizing:
		return "finalizing"
	case Done:
		return "done"
	case Cancelled:
		return "cancelled"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *State) UnmarshalText(b []byte) error {
	for st := AwaitingInput; st <= Cancelled; st++ {
		if st.String() == string(b) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown session state '%s'", string(b))
}

// An interactive landmark session on one stack. Clicks are collected while awaiting input;
// Confirm runs the landmark alignment synchronously, Cancel or Close abandon the session.
// All methods are safe for concurrent use.
type Session struct {
	mu        sync.Mutex
	host      Host
	opts      Options
	landmarks *Landmarks
	state     State
	result    *Result
	err       error
	logWriter io.Writer
}

// Starts a session. The options are repaired for the stack size, and the first slice of the
// range becomes the active slice.
func NewSession(h Host, opts Options, logWriter io.Writer) (*Session, error) {
	n := h.SliceCount()
	if n == 0 {
		return nil, ErrEmptyStack
	}
	opts.Repair(n, logWriter)
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	h.SetActiveSlice(opts.FirstSlice)
	fmt.Fprintf(logWriter, "Mark positions on at least one slice and confirm, or cancel.\n")
	return &Session{
		host:      h,
		opts:      opts,
		landmarks: NewLandmarks(n),
		state:     AwaitingInput,
		logWriter: logWriter,
	}, nil
}

// Records a landmark on the given slice and moves on to the next slice
func (s *Session) Click(slice int, p Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.click(slice, p)
}

// Records a landmark on the active slice
func (s *Session) ClickActive(p Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.click(s.host.ActiveSlice(), p)
}

// Expects s.mu to be held
func (s *Session) click(slice int, p Point) error {
	if s.state != AwaitingInput {
		return ErrSessionClosed
	}
	if err := s.landmarks.Set(slice, p); err != nil {
		return err
	}
	next := slice + 1
	if next > s.host.SliceCount() {
		next = s.host.SliceCount()
	}
	s.host.SetActiveSlice(next)
	return nil
}

// Selects the active slice without recording a landmark
func (s *Session) Select(slice int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != AwaitingInput {
		return ErrSessionClosed
	}
	if slice < 1 || slice > s.host.SliceCount() {
		return fmt.Errorf("slice %d outside stack of %d slices", slice, s.host.SliceCount())
	}
	s.host.SetActiveSlice(slice)
	return nil
}

// Finalizes the session: derives, exports and applies the corrections. Without any landmark,
// returns ErrNoLandmarks and keeps awaiting input.
func (s *Session) Confirm(ctx context.Context) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != AwaitingInput {
		return nil, ErrSessionClosed
	}
	if s.landmarks.Empty() {
		fmt.Fprintf(s.logWriter, "No slice has been clicked yet.\n")
		return nil, ErrNoLandmarks
	}
	s.state = Finalizing
	current := s.host.ActiveSlice()
	s.result, s.err = RunLandmarks(ctx, s.host, s.landmarks, s.opts, current, s.logWriter)
	s.state = Done
	return s.result, s.err
}

// Abandons the session without touching the stack
func (s *Session) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != AwaitingInput {
		return ErrSessionClosed
	}
	s.state = Cancelled
	fmt.Fprintf(s.logWriter, "Session cancelled.\n")
	return nil
}

// Notifies the session that the host image went away
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == AwaitingInput {
		s.state = Cancelled
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Returns the result and error of Confirm, if it ran
func (s *Session) Result() (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result, s.err
}

func (s *Session) Landmarks() []Landmark {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.landmarks.List()
}

func (s *Session) Options() Options {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opts
}

func (s *Session) ActiveSlice() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.host.ActiveSlice()
}

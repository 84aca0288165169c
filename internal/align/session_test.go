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
	"errors"
	"io"
	"testing"
)

// A host which starts a concurrent selection of another slice whenever the active slice is read
type selectingHost struct {
	*memHost
	session *Session
	target  int
	done    chan error
}

func (h *selectingHost) ActiveSlice() int {
	if h.done == nil {
		h.done = make(chan error, 1)
		go func() { h.done <- h.session.Select(h.target) }()
	}
	return h.memHost.ActiveSlice()
}

func newTestSession(t *testing.T, n int, opts Options) (*Session, *memHost) {
	t.Helper()
	h := newFlatHost(20, 20, n, 1)
	s, err := NewSession(h, opts, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	return s, h
}

func TestSessionClickAdvances(t *testing.T) {
	opts := DefaultOptions()
	opts.FirstSlice = 2
	s, h := newTestSession(t, 4, opts)
	if s.ActiveSlice() != 2 || s.State() != AwaitingInput {
		t.Fatalf("active %d state %v; want 2 awaitingInput", s.ActiveSlice(), s.State())
	}
	if err := s.ClickActive(Point{5, 5}); err != nil {
		t.Fatal(err)
	}
	if h.active != 3 {
		t.Errorf("active=%d; want 3", h.active)
	}
	if err := s.Click(4, Point{6, 6}); err != nil {
		t.Fatal(err)
	}
	if h.active != 4 {
		t.Errorf("active after last slice=%d; want 4", h.active)
	}
	if err := s.Click(5, Point{}); err == nil {
		t.Errorf("click outside the stack accepted")
	}
	if lms := s.Landmarks(); len(lms) != 2 || lms[0] != (Landmark{2, 5, 5}) {
		t.Errorf("landmarks=%v", lms)
	}
}

func TestSessionClickActiveIsAtomic(t *testing.T) {
	h := &selectingHost{memHost: newFlatHost(20, 20, 4, 1), target: 4}
	s, err := NewSession(h, DefaultOptions(), io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	h.session = s
	if err := s.ClickActive(Point{7, 8}); err != nil {
		t.Fatal(err)
	}
	if err := <-h.done; err != nil {
		t.Fatal(err)
	}
	// the click lands on the slice active when it was made, the selection applies afterwards
	if lms := s.Landmarks(); len(lms) != 1 || lms[0] != (Landmark{1, 7, 8}) {
		t.Errorf("landmarks=%v; want [{1 7 8}]", lms)
	}
	if h.active != 4 {
		t.Errorf("active=%d; want 4", h.active)
	}
}

func TestSessionConfirmWithoutLandmarks(t *testing.T) {
	s, h := newTestSession(t, 3, DefaultOptions())
	if _, err := s.Confirm(context.Background()); !errors.Is(err, ErrNoLandmarks) {
		t.Errorf("err=%v; want %v", err, ErrNoLandmarks)
	}
	if s.State() != AwaitingInput || len(h.moves) != 0 {
		t.Errorf("state %v moves %v; want awaitingInput and none", s.State(), h.moves)
	}
}

func TestSessionConfirm(t *testing.T) {
	opts := DefaultOptions()
	opts.AdjustTo = AdjustCurrent
	s, h := newTestSession(t, 3, opts)
	s.Click(1, Point{4, 4})
	s.Click(3, Point{6, 2})
	if err := s.Select(2); err != nil {
		t.Fatal(err)
	}
	res, err := s.Confirm(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if s.State() != Done {
		t.Errorf("state=%v; want done", s.State())
	}
	if res.AdjustSlice != 2 {
		t.Errorf("adjust slice=%d; want 2", res.AdjustSlice)
	}
	want := Corrections{{1, -1}, {0, 0}, {-1, 1}}
	for i := range want {
		if res.Corrections[i] != want[i] {
			t.Errorf("correction(%d)=%v; want %v", i+1, res.Corrections[i], want[i])
		}
	}
	if len(h.moves) != 3 {
		t.Errorf("moves=%v; want 3", h.moves)
	}
	if r, _ := s.Result(); r != res {
		t.Errorf("stored result differs")
	}
	if err := s.Click(1, Point{}); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("click after confirm: err=%v; want %v", err, ErrSessionClosed)
	}
}

func TestSessionCancel(t *testing.T) {
	s, h := newTestSession(t, 3, DefaultOptions())
	s.Click(1, Point{4, 4})
	if err := s.Cancel(); err != nil {
		t.Fatal(err)
	}
	if s.State() != Cancelled {
		t.Errorf("state=%v; want cancelled", s.State())
	}
	if _, err := s.Confirm(context.Background()); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("confirm after cancel: err=%v; want %v", err, ErrSessionClosed)
	}
	if err := s.Cancel(); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("second cancel: err=%v; want %v", err, ErrSessionClosed)
	}
	if len(h.moves) != 0 {
		t.Errorf("moves=%v; want none", h.moves)
	}
}

func TestSessionClose(t *testing.T) {
	s, _ := newTestSession(t, 2, DefaultOptions())
	s.Close()
	if s.State() != Cancelled {
		t.Errorf("state=%v; want cancelled", s.State())
	}
	if err := s.Select(1); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("select after close: err=%v; want %v", err, ErrSessionClosed)
	}
}

func TestNewSessionErrors(t *testing.T) {
	if _, err := NewSession(&memHost{}, DefaultOptions(), io.Discard); !errors.Is(err, ErrEmptyStack) {
		t.Errorf("err=%v; want %v", err, ErrEmptyStack)
	}
	opts := DefaultOptions()
	opts.Apply = false
	if _, err := NewSession(newFlatHost(4, 4, 2, 0), opts, io.Discard); !errors.Is(err, ErrNoOutput) {
		t.Errorf("err=%v; want %v", err, ErrNoOutput)
	}
}

func TestStateText(t *testing.T) {
	for s, want := range map[State]string{AwaitingInput: "awaitingInput", Finalizing: "finalizing", Done: "done", Cancelled: "cancelled"} {
		if b, _ := s.MarshalText(); string(b) != want {
			t.Errorf("state %d=%q; want %q", int(s), b, want)
		}
	}
}

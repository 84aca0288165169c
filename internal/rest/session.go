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

package rest

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mlnoga/prealign/internal/align"
	"github.com/mlnoga/prealign/internal/ops"
	"github.com/mlnoga/prealign/internal/preview"
	"github.com/mlnoga/prealign/internal/stack"
)

type sessionOutputs struct {
	Output     string `json:"output"`     // per-slice output pattern with %d
	OutputCube string `json:"outputCube"` // 3D FITS cube output
}

type postSessionArgs struct {
	FilePatterns []string      `json:"filePatterns"`
	Cube         string        `json:"cube"`
	Options      align.Options `json:"options"`
	Fill         float32       `json:"fill"`
	sessionOutputs
}

type clickArgs struct {
	Slice int `json:"slice"` // 0 for the active slice
	X     int `json:"x"`
	Y     int `json:"y"`
}

type selectArgs struct {
	Slice int `json:"slice"`
}

type resultState struct {
	Corrections align.Corrections `json:"corrections"`
	RefSlice    int               `json:"refSlice"`
	AdjustSlice int               `json:"adjustSlice"`
	Summary     align.Summary     `json:"summary"`
	ExportError string            `json:"exportError,omitempty"`
}

type sessionState struct {
	State       align.State      `json:"state"`
	Slices      int              `json:"slices"`
	Width       int              `json:"width"`
	Height      int              `json:"height"`
	ActiveSlice int              `json:"activeSlice"`
	Landmarks   []align.Landmark `json:"landmarks"`
	Options     align.Options    `json:"options"`
	Result      *resultState     `json:"result,omitempty"`
	Error       string           `json:"error,omitempty"`
}

// Returns the state of the current session. Call with s.mu held
func (s *Server) state() sessionState {
	w, h := s.stack.Dimensions()
	st := sessionState{
		State:       s.session.State(),
		Slices:      s.stack.SliceCount(),
		Width:       w,
		Height:      h,
		ActiveSlice: s.session.ActiveSlice(),
		Landmarks:   s.session.Landmarks(),
		Options:     s.session.Options(),
	}
	if res, err := s.session.Result(); res != nil || err != nil {
		if err != nil {
			st.Error = err.Error()
		}
		if res != nil {
			st.Result = &resultState{
				Corrections: res.Corrections,
				RefSlice:    res.RefSlice,
				AdjustSlice: res.AdjustSlice,
				Summary:     res.Summary,
			}
			if res.ExportErr != nil {
				st.Result.ExportError = res.ExportErr.Error()
			}
		}
	}
	return st
}

func abortWithError(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"error": err.Error()})
}

// Returns an HTTP status for a session error
func statusOf(err error) int {
	switch {
	case errors.Is(err, align.ErrSessionClosed):
		return http.StatusConflict
	case errors.Is(err, align.ErrNoLandmarks), errors.Is(err, align.ErrNoOutput):
		return http.StatusUnprocessableEntity
	}
	return http.StatusBadRequest
}

// Loads a stack and starts a landmark session on it, unless one is still awaiting input
func (s *Server) postSession(c *gin.Context) {
	args := postSessionArgs{Options: align.DefaultOptions()}
	if err := c.ShouldBindJSON(&args); err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session != nil && s.session.State() == align.AwaitingInput {
		abortWithError(c, http.StatusConflict, fmt.Errorf("a session is already awaiting input"))
		return
	}

	ctx := s.newContext(s.Log, c)
	var load ops.Operator
	switch {
	case args.Cube != "":
		load = ops.NewOpLoadCube(args.Cube)
	case len(args.FilePatterns) > 0:
		load = ops.NewOpLoadMany(args.FilePatterns)
	default:
		abortWithError(c, http.StatusBadRequest, fmt.Errorf("neither filePatterns nor cube given"))
		return
	}
	promises, err := load.MakePromises(nil, ctx)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}
	fs, err := ops.MaterializeAll(promises, ctx.MaxThreads, false)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}
	st, err := stack.NewStack(fs)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}
	st.Fill = args.Fill
	session, err := align.NewSession(st, args.Options, s.Log)
	if err != nil {
		abortWithError(c, statusOf(err), err)
		return
	}
	if s.session != nil {
		s.session.Close()
	}
	s.stack, s.session, s.outputs = st, session, args.sessionOutputs
	c.JSON(http.StatusOK, s.state())
}

// Runs f on the current session, or fails if there is none. Responds with the session state
func (s *Server) withSession(c *gin.Context, f func() error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		abortWithError(c, http.StatusNotFound, fmt.Errorf("no session"))
		return
	}
	if f != nil {
		if err := f(); err != nil {
			abortWithError(c, statusOf(err), err)
			return
		}
	}
	c.JSON(http.StatusOK, s.state())
}

func (s *Server) getSession(c *gin.Context) { s.withSession(c, nil) }

func (s *Server) postClick(c *gin.Context) {
	var args clickArgs
	if err := c.ShouldBindJSON(&args); err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}
	s.withSession(c, func() error {
		p := align.Point{X: args.X, Y: args.Y}
		if args.Slice == 0 {
			return s.session.ClickActive(p)
		}
		return s.session.Click(args.Slice, p)
	})
}

func (s *Server) postSelect(c *gin.Context) {
	var args selectArgs
	if err := c.ShouldBindJSON(&args); err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}
	s.withSession(c, func() error { return s.session.Select(args.Slice) })
}

// Finalizes the session, then writes the requested outputs of the aligned stack
func (s *Server) postConfirm(c *gin.Context) {
	s.withSession(c, func() error {
		// a failed run leaves the session done, with the error kept in its state
		if _, err := s.session.Confirm(c.Request.Context()); err != nil {
			return err
		}
		return s.saveOutputs(c)
	})
}

func (s *Server) saveOutputs(c *gin.Context) error {
	ctx := s.newContext(s.Log, c)
	seq := ops.NewOpSequence()
	if s.outputs.Output != "" {
		seq.Append(ops.NewOpSave(s.outputs.Output))
	}
	if s.outputs.OutputCube != "" {
		seq.Append(ops.NewOpSaveCube(s.outputs.OutputCube))
	}
	if len(seq.Steps) == 0 {
		return nil
	}
	promises, err := seq.MakePromises(ops.PromisesOf(s.stack.Slices()), ctx)
	if err != nil {
		return err
	}
	_, err = ops.MaterializeAll(promises, ctx.MaxThreads, true)
	return err
}

func (s *Server) postCancel(c *gin.Context) {
	s.withSession(c, func() error { return s.session.Cancel() })
}

// Closes the session and releases the stack
func (s *Server) deleteSession(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session != nil {
		s.session.Close()
	}
	s.session, s.stack, s.outputs = nil, nil, sessionOutputs{}
	c.Status(http.StatusNoContent)
}

// Returns a JPEG rendering of the given slice with all landmarks
func (s *Server) getSlice(c *gin.Context) {
	slice, err := strconv.Atoi(c.Param("slice"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		abortWithError(c, http.StatusNotFound, fmt.Errorf("no session"))
		return
	}
	if slice < 1 || slice > s.stack.SliceCount() {
		abortWithError(c, http.StatusNotFound, fmt.Errorf("slice %d outside stack of %d slices", slice, s.stack.SliceCount()))
		return
	}
	img := preview.Render(s.stack.Slice(slice), preview.Overlay{Landmarks: s.session.Landmarks()})
	var buf bytes.Buffer
	if err := preview.Encode(&buf, img, ".jpg"); err != nil {
		abortWithError(c, http.StatusInternalServerError, err)
		return
	}
	c.Data(http.StatusOK, "image/jpeg", buf.Bytes())
}

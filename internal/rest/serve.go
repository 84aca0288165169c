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
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/mlnoga/prealign/internal/align"
	"github.com/mlnoga/prealign/internal/config"
	"github.com/mlnoga/prealign/internal/ops"
	"github.com/mlnoga/prealign/internal/stack"
	"github.com/mlnoga/prealign/web"
)

// The REST server. Holds at most one interactive landmark session at a time
type Server struct {
	Log           io.Writer // receives the log of interactive sessions
	RestrictPaths bool      // only relative paths inside the working directory tree

	mu      sync.Mutex
	stack   *stack.Stack
	session *align.Session
	outputs sessionOutputs
}

func NewServer(log io.Writer, restrictPaths bool) *Server {
	return &Server{Log: log, RestrictPaths: restrictPaths}
}

// Returns the router with all routes registered
func (s *Server) Router() *gin.Engine {
	r := gin.Default()
	r.GET("/", getIndex)
	api := r.Group("/api")
	{
		v1 := api.Group("/v1")
		{
			v1.GET("/ping", getPing)
			v1.POST("/align", s.postAlign)
			v1.POST("/job", s.postJob)

			session := v1.Group("/session")
			{
				session.POST("", s.postSession)
				session.GET("", s.getSession)
				session.DELETE("", s.deleteSession)
				session.POST("/click", s.postClick)
				session.POST("/select", s.postSelect)
				session.POST("/confirm", s.postConfirm)
				session.POST("/cancel", s.postCancel)
				session.GET("/slices/:slice", s.getSlice)
			}
		}
	}
	return r
}

// Listens and serves on the given address, e.g. ":8080"
func (s *Server) Serve(addr string) error {
	return s.Router().Run(addr)
}

func getIndex(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", web.IndexHTML)
}

func getPing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "pong",
	})
}

func printArgs(logWriter io.Writer, prefix, suffix string, args interface{}) error {
	m, err := json.MarshalIndent(args, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintf(logWriter, "%s%s%s", prefix, string(m), suffix)
	return nil
}

func (s *Server) newContext(logWriter io.Writer, c *gin.Context) *ops.Context {
	ctx := ops.NewContext(logWriter)
	ctx.Ctx = c.Request.Context()
	ctx.RestrictPaths = s.RestrictPaths
	return ctx
}

// Runs an alignment job given as JSON, streaming the log as plain text
func (s *Server) postAlign(c *gin.Context) {
	args := config.DefaultConfig()
	if err := c.ShouldBindJSON(args); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	seq, err := args.Pipeline()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.runStreaming(c, args, seq)
}

// Runs an arbitrary operator sequence given as JSON, streaming the log as plain text
func (s *Server) postJob(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	seq := ops.NewOpSequence()
	if err := json.Unmarshal(raw, seq); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.runStreaming(c, seq, seq)
}

func (s *Server) runStreaming(c *gin.Context, args interface{}, seq *ops.OpSequence) {
	logWriter := c.Writer
	header := logWriter.Header()
	header.Set("Content-Type", "text/plain")
	logWriter.WriteHeader(http.StatusOK)

	if err := printArgs(logWriter, "Arguments:\n", "\n", args); err != nil {
		fmt.Fprintf(logWriter, "Error printing arguments: %s\n", err.Error())
		return
	}

	ctx := s.newContext(logWriter, c)
	promises, err := seq.MakePromises(nil, ctx)
	if err == nil {
		_, err = ops.MaterializeAll(promises, ctx.MaxThreads, true)
	}
	if err != nil {
		fmt.Fprintf(logWriter, "error: %s\n", err.Error())
	} else {
		fmt.Fprintf(logWriter, "Done.\n")
	}
	logWriter.Flush()
}

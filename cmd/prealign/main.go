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

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/pprof"
	"strings"
	"time"

	"github.com/klauspost/cpuid"
	nl "github.com/mlnoga/prealign/internal"
	"github.com/mlnoga/prealign/internal/align"
	"github.com/mlnoga/prealign/internal/config"
	"github.com/mlnoga/prealign/internal/ops"
	"github.com/mlnoga/prealign/internal/ops/drift"
	"github.com/mlnoga/prealign/internal/preview"
	"github.com/mlnoga/prealign/internal/rest"
	"github.com/pbnjay/memory"
)

const version = "0.1.0"

var totalMiBs = memory.TotalMemory() / 1024 / 1024

var cpuprofile = flag.String("cpuprofile", "", "write cpu profile to `file`")
var memprofile = flag.String("memprofile", "", "write memory profile to `file`")

var job = flag.String("config", "", "read alignment job from YAML `file`; other flags override its entries")
var cube = flag.String("cube", "", "read the stack from a single 3D FITS cube `file` instead of one file per slice")
var out = flag.String("out", "", "save the aligned stack as 3D FITS cube to `file`")
var outPattern = flag.String("outPattern", "", "save aligned slices with given filename pattern, e.g. `aligned%04d.fits`")
var log = flag.String("log", "%auto", "save log output to `file`. `%auto` replaces suffix of output file with .log")
var previewFile = flag.String("preview", "", "save PNG or JPEG preview of the reference slice with the roi trajectory to `file`")
var statsFile = flag.String("stats", "", "save per-slice statistics as CSV to `file`")

var rangePx = flag.Int("range", 5, "search range in pixels around the region of interest")
var power = flag.Float64("power", 2, "exponent of the pixel error metric, 2=sum of squared differences")
var mode = flag.String("mode", "selected", "reference mode, selected=compare with reference slice, previous=compare with predecessor")
var first = flag.Int("first", 1, "first slice to correct, 1-based")
var last = flag.Int("last", 0, "last slice to correct, 0=last slice of the stack")
var adjustTo = flag.String("adjustTo", "first", "slice whose correction is zero: first, last or current")
var correctHead = flag.Bool("head", false, "move slices before the range along with the first corrected slice")
var correctTail = flag.Bool("tail", false, "move slices after the range along with the last corrected slice")
var export = flag.String("export", "", "save MultiStackReg transformation file to `file`")
var apply = flag.Bool("apply", true, "translate the slices")
var applyX = flag.Bool("applyX", true, "apply horizontal corrections")
var applyY = flag.Bool("applyY", true, "apply vertical corrections")
var fill = flag.Float64("fill", 0, "value for pixels vacated by translation")

var roi = flag.String("roi", "", "region of interest on the reference slice as x,y,width,height, blank=whole image")
var ref = flag.Int("ref", 1, "reference slice the region of interest was drawn on, 1-based")
var landmarks = flag.String("landmarks", "", "landmarks as slice:x,y entries separated by semicolons, e.g. `1:10,20;5:12,23`")
var current = flag.Int("current", 1, "slice considered selected on confirmation, for -adjustTo current")

var addr = flag.String("addr", ":8080", "listen address for the REST server")
var chroot = flag.String("chroot", "", "change filesystem root to `dir` before serving (requires root)")
var setuid = flag.Int("setuid", -1, "change user id before serving, -1=keep")

func main() {
	logWriter := nl.LogWriter()
	start := time.Now()
	flag.Usage = func() {
		fmt.Fprintf(os.Stdout, `Prealign Copyright (c) 2020 Markus L. Noga
This program comes with ABSOLUTELY NO WARRANTY.
This is free software, and you are welcome to redistribute it under certain conditions.
Refer to https://www.gnu.org/licenses/gpl-3.0.en.html for details.

Usage: %s [-flag value] (align|landmarks|stats|init|serve|legal|version) (img0.fits ... imgn.fits)

Commands:
  align     Align the stack by exhaustive search on a region of interest
  landmarks Align the stack from landmark positions given with -landmarks
  stats     Show statistics of the input slices
  init      Write the job described by the flags as YAML to the -config file
  serve     Serve the REST API and the interactive landmark page
  legal     Show license and attribution information
  version   Show version information

Flags:
`, os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		flag.Usage()
		return
	}

	// Initialize logging to file in addition to stdout, if selected
	if *log == "%auto" {
		*log = withSuffix(*out, ".log")
	}
	if *log != "" && args[0] != "init" {
		if err := nl.LogAlsoToFile(*log); err != nil {
			nl.LogFatalf("Unable to open logfile '%s'\n", *log)
		}
	}

	// Enable CPU profiling if flagged
	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			nl.LogFatalf("Could not create CPU profile: %s\n", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			nl.LogFatalf("Could not start CPU profile: %s\n", err)
		}
		defer pprof.StopCPUProfile()
	}

	var err error
	switch args[0] {
	case "align", "landmarks":
		printBanner(logWriter)
		err = cmdAlign(args[0], args[1:], logWriter)

	case "stats":
		err = cmdStats(args[1:], logWriter)

	case "init":
		err = cmdInit(args[1:])

	case "serve":
		printBanner(logWriter)
		err = cmdServe(logWriter)

	case "legal":
		fmt.Fprint(logWriter, legal)

	case "version":
		fmt.Fprintf(logWriter, "Version %s\n", version)
		printBanner(logWriter)

	case "help", "?":
		flag.Usage()

	default:
		fmt.Fprintf(logWriter, "Unknown command '%s'\n\n", args[0])
		flag.Usage()
		return
	}

	fmt.Fprintf(logWriter, "\nDone after %v\n", time.Since(start))

	// Store memory profile if flagged
	if *memprofile != "" {
		f, err := os.Create(*memprofile)
		if err != nil {
			nl.LogFatalf("Could not create memory profile: %s\n", err)
		}
		defer f.Close()
		runtime.GC() // get up-to-date statistics
		if err := pprof.Lookup("allocs").WriteTo(f, 0); err != nil {
			nl.LogFatalf("Could not write allocation profile: %s\n", err)
		}
	}

	if err != nil {
		fmt.Fprintf(logWriter, "Error: %s\n", err.Error())
		nl.LogSync()
		os.Exit(-1)
	}
	nl.LogSync()
}

func printBanner(logWriter io.Writer) {
	fmt.Fprintf(logWriter, "Running on %s with %d physical cores, %d logical cores, AVX2 %v, %d MiB memory\n",
		strings.TrimSpace(cpuid.CPU.BrandName), cpuid.CPU.PhysicalCores, cpuid.CPU.LogicalCores, cpuid.CPU.AVX2(), totalMiBs)
}

// Returns true if the named flag was given on the command line
func isSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

// Builds the job from the optional config file, overridden by the flags given on the command line
func jobFromFlags(inputs []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if *job != "" {
		var err error
		if cfg, err = config.LoadConfig(*job); err != nil {
			return nil, err
		}
	}
	if len(inputs) > 0 {
		cfg.Inputs = inputs
	}
	if isSet("cube") {
		cfg.Cube = *cube
	}
	if isSet("out") {
		cfg.OutputCube = *out
	}
	if isSet("outPattern") {
		cfg.Output = *outPattern
	}
	if isSet("stats") {
		cfg.StatsFile = *statsFile
	}

	o := &cfg.Options
	if isSet("range") {
		o.Range = *rangePx
	}
	if isSet("power") {
		o.Power = *power
	}
	if isSet("mode") {
		m, err := align.ParseMode(*mode)
		if err != nil {
			return nil, err
		}
		o.Mode = m
	}
	if isSet("first") {
		o.FirstSlice = *first
	}
	if isSet("last") {
		o.LastSlice = *last
	}
	if isSet("adjustTo") {
		a, err := align.ParseAdjustTo(*adjustTo)
		if err != nil {
			return nil, err
		}
		o.AdjustTo = a
	}
	if isSet("head") {
		o.CorrectHead = *correctHead
	}
	if isSet("tail") {
		o.CorrectTail = *correctTail
	}
	if isSet("export") {
		o.ExportFile = *export
	}
	if isSet("apply") {
		o.Apply = *apply
	}
	if isSet("applyX") {
		o.ApplyX = *applyX
	}
	if isSet("applyY") {
		o.ApplyY = *applyY
	}
	if isSet("fill") {
		cfg.Fill = float32(*fill)
	}

	if isSet("roi") {
		r, err := parseRoi(*roi)
		if err != nil {
			return nil, err
		}
		cfg.Roi = r
	}
	if isSet("ref") {
		cfg.RefSlice = *ref
	}
	if isSet("landmarks") {
		lms, err := parseLandmarks(*landmarks)
		if err != nil {
			return nil, err
		}
		cfg.Landmarks = lms
	}
	if isSet("current") {
		cfg.Current = *current
	}
	return cfg, nil
}

// Runs an automated or landmark alignment job
func cmdAlign(command string, inputs []string, logWriter io.Writer) error {
	cfg, err := jobFromFlags(inputs)
	if err != nil {
		return err
	}
	if command == "landmarks" && len(cfg.Landmarks) == 0 {
		return align.ErrNoLandmarks
	}
	if command == "align" {
		cfg.Landmarks = nil
	}
	seq, err := cfg.Pipeline()
	if err != nil {
		return err
	}

	m, err := json.MarshalIndent(seq, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintf(logWriter, "\nRunning with these settings:\n%s\n", string(m))

	c := ops.NewContext(logWriter)
	promises, err := seq.MakePromises(nil, c)
	if err != nil {
		return err
	}
	fs, err := ops.MaterializeAll(promises, c.MaxThreads, false)
	if err != nil {
		return err
	}

	var res *align.Result
	switch op := seq.Steps[1].(type) {
	case *drift.OpAlignRoi:
		res = op.Result
	case *drift.OpAlignLandmarks:
		res = op.Result
	}
	if res == nil {
		return nil
	}
	if res.ExportErr != nil {
		fmt.Fprintf(logWriter, "Warning: %s\n", res.ExportErr.Error())
	}
	if *previewFile != "" && len(fs) > 0 {
		o := preview.Overlay{Landmarks: cfg.Landmarks, Title: fmt.Sprintf("slice %d, %v", res.RefSlice, res.Summary)}
		if cfg.Landmarks == nil {
			r := cfg.Roi
			if r.Width == 0 || r.Height == 0 {
				r = align.Rect{Width: fs[0].Width(), Height: fs[0].Height()}
			}
			o = preview.FromResult(res, r)
		}
		fmt.Fprintf(logWriter, "Writing preview to %s\n", *previewFile)
		if err := preview.SaveFile(*previewFile, fs[res.RefSlice-1], o); err != nil {
			return err
		}
	}
	return nil
}

// Prints statistics for each input slice, optionally saving them as CSV
func cmdStats(inputs []string, logWriter io.Writer) error {
	var load ops.Operator = ops.NewOpLoadMany(inputs)
	if *cube != "" {
		load = ops.NewOpLoadCube(*cube)
	}
	seq := ops.NewOpSequence(load)
	if *statsFile != "" {
		seq.Append(drift.NewOpExportStats(*statsFile))
	}
	c := ops.NewContext(logWriter)
	promises, err := seq.MakePromises(nil, c)
	if err != nil {
		return err
	}
	fs, err := ops.MaterializeAll(promises, c.MaxThreads, false)
	for _, f := range fs {
		fmt.Fprintf(logWriter, "%d: %s %v\n", f.ID, f.DimensionsToString(), f.GetStats())
	}
	return err
}

// Writes the job described by the flags to the config file
func cmdInit(inputs []string) error {
	if *job == "" {
		return fmt.Errorf("init needs a -config file to write")
	}
	target := *job
	*job = "" // start from defaults, not from the file to be written
	cfg, err := jobFromFlags(inputs)
	if err != nil {
		return err
	}
	fmt.Fprintf(nl.LogWriter(), "Writing job to %s\n", target)
	return config.SaveConfig(cfg, target)
}

// Serves the REST API, sandboxed if requested
func cmdServe(logWriter io.Writer) error {
	if err := rest.MakeSandbox(*chroot, *setuid, logWriter); err != nil {
		return err
	}
	fmt.Fprintf(logWriter, "Serving on %s\n", *addr)
	return rest.NewServer(logWriter, true).Serve(*addr)
}

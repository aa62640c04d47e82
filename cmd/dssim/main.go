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
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"strings"
	"time"

	"github.com/pbnjay/memory"

	"github.com/mlnoga/dssim/internal/dssim"
	"github.com/mlnoga/dssim/internal/dssimjob"
	"github.com/mlnoga/dssim/internal/dssimlog"
	"github.com/mlnoga/dssim/internal/imageio"
	"github.com/mlnoga/dssim/internal/rest"
	"github.com/mlnoga/dssim/internal/stats"
)

const version = "0.1.0"

var totalMiBs = memory.TotalMemory() / 1024 / 1024

var cpuprofile = flag.String("cpuprofile", "", "write cpu profile to `file`")
var memprofile = flag.String("memprofile", "", "write memory profile to `file`")

var port = flag.Int64("port", 8080, "port for serving the HTTP API")
var chroot = flag.String("chroot", "", "directory to chroot and chdir to when serving HTTP. must be run as root")
var setuid = flag.Int64("setuid", -1, "user id number to setuid to when serving HTTP. must be run as root")
var job = flag.String("job", "", "JSON job specification overriding the flags below, matching dssimjob.Spec")

var out = flag.String("out", "", "save the dissimilarity map as 16 bit grayscale TIFF to `file`, empty=don't")
var heat = flag.String("heat", "%auto", "save a pseudo-colored heatmap PNG of the dissimilarity map to `file`. `%auto` replaces the suffix of -out with .png")
var log = flag.String("log", "", "also write log output to `file`")

var colorWeight = flag.Float64("colorWeight", 0.95, "weight applied to chroma channels relative to luma")
var numScales = flag.Int64("numScales", 4, "number of pyramid scales, 1..5")
var detailSize = flag.Int64("detailSize", 1, "blur kernel size multiplier; larger desensitizes to fine detail")
var subsampleChroma = flag.Bool("subsampleChroma", true, "subsample chroma channels 2x2 before comparison")
var gamma = flag.Float64("gamma", 1.0/2.2, "gamma applied when linearizing 8 bit input samples, e.g. 1/2.2 for sRGB")

func main() {
	var logWriter io.Writer = os.Stdout
	start := time.Now()
	flag.Usage = func() {
		fmt.Fprintf(logWriter, `dssim Copyright (c) 2020 Markus L. Noga
This program comes with ABSOLUTELY NO WARRANTY.
This is free software, and you are welcome to redistribute it under certain conditions.
Refer to https://www.gnu.org/licenses/gpl-3.0.en.html for details.

Usage: %s [-flag value] (compare|serve|legal|version|help) (original.png modified.png)

Commands:
  compare Compare two images and print their DSSIM value
  serve   Serve the REST API and web UI
  legal   Show license and attribution information
  version Show version information

Flags:
`, os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if *log != "" {
		if err := dssimlog.LogAlsoToFile(*log); err != nil {
			panic(fmt.Sprintf("Unable to open log file %s: %s\n", *log, err.Error()))
		}
	}

	if *heat == "%auto" {
		if *out != "" {
			*heat = strings.TrimSuffix(*out, filepath.Ext(*out)) + ".png"
		} else {
			*heat = ""
		}
	}

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			fmt.Fprintf(logWriter, "Could not create CPU profile: %s\n", err)
			os.Exit(-1)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(logWriter, "Could not start CPU profile: %s\n", err)
			os.Exit(-1)
		}
		defer pprof.StopCPUProfile()
	}

	fmt.Fprintf(logWriter, "dssim %s, %d MiB physical memory detected\n", version, totalMiBs)

	args := flag.Args()
	if len(args) < 1 {
		flag.Usage()
		return
	}

	var err error
	switch args[0] {
	case "compare":
		err = runCompare(logWriter, args[1:])

	case "serve":
		rest.MakeSandbox(*chroot, int(*setuid))
		rest.Serve(int(*port))

	case "legal":
		fmt.Fprint(logWriter, legal)

	case "version":
		fmt.Fprintf(logWriter, "Version %s\n", version)

	case "help", "?":
		flag.Usage()

	default:
		fmt.Fprintf(logWriter, "Unknown command '%s'\n\n", args[0])
		flag.Usage()
		return
	}

	if err != nil {
		fmt.Fprintf(logWriter, "Error: %s\n", err.Error())
		os.Exit(-1)
	}

	now := time.Now()
	elapsed := now.Sub(start).Round(time.Millisecond * 10)
	fmt.Fprintf(logWriter, "\nDone after %s\n", elapsed)

	if *memprofile != "" {
		f, err := os.Create(*memprofile)
		if err != nil {
			fmt.Fprintf(logWriter, "Could not create memory profile: %s\n", err)
			os.Exit(-1)
		}
		defer f.Close()
		runtime.GC()
		if err := pprof.Lookup("allocs").WriteTo(f, 0); err != nil {
			fmt.Fprintf(logWriter, "Could not write allocation profile: %s\n", err)
			os.Exit(-1)
		}
	}
}

// runCompare loads two images named in args, compares them per the job spec
// (from -job if given, else from the individual flags), prints the result
// and optionally writes a TIFF map and/or heatmap PNG.
func runCompare(logWriter io.Writer, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("compare requires exactly 2 image file arguments, got %d", len(args))
	}

	spec := dssimjob.NewSpecDefaults()
	if *job != "" {
		content, err := os.ReadFile(*job)
		if err != nil {
			return fmt.Errorf("opening %s: %w", *job, err)
		}
		if err := json.Unmarshal(content, &spec); err != nil {
			return fmt.Errorf("unmarshaling %s: %w", *job, err)
		}
	} else {
		spec.ColorWeight = float32(*colorWeight)
		spec.NumScales = int(*numScales)
		spec.DetailSize = int(*detailSize)
		spec.SubsampleChroma = *subsampleChroma
		spec.Gamma = *gamma
		spec.WantMap = *out != "" || *heat != ""
	}

	attr := spec.Attr()
	defer attr.Dealloc()

	original, err := loadImage(attr, args[0], spec.Gamma)
	if err != nil {
		return fmt.Errorf("loading %s: %w", args[0], err)
	}
	modified, err := loadImage(attr, args[1], spec.Gamma)
	if err != nil {
		return fmt.Errorf("loading %s: %w", args[1], err)
	}
	defer original.Release()
	defer modified.Release()

	value, ssimMap := dssim.Compare(attr, original, modified, spec.WantMap)
	fmt.Fprintf(logWriter, "DSSIM %s %s = %g\n", args[0], args[1], value)

	if ssimMap == nil {
		return nil
	}
	width, height := original.Width(), original.Height()
	dissimMap := make([]float32, len(ssimMap))
	maxVal := float32(0)
	for i, s := range ssimMap {
		d := 1 - s
		dissimMap[i] = d
		if d > maxVal {
			maxVal = d
		}
	}
	fmt.Fprintf(logWriter, "Map stats: %s\n", stats.NewMap(dissimMap))

	if *out != "" {
		if err := imageio.WriteMapTIFF16ToFile(*out, dissimMap, width, height, maxVal); err != nil {
			return fmt.Errorf("writing %s: %w", *out, err)
		}
	}
	if *heat != "" {
		if err := imageio.WriteHeatmapPNGToFile(*heat, ssimMap, width, height); err != nil {
			return fmt.Errorf("writing %s: %w", *heat, err)
		}
	}
	return nil
}

func loadImage(attr *dssim.Attr, fileName string, gamma float64) (*dssim.Image, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return nil, err
	}
	img, _, err := imageio.Decode(data)
	if err != nil {
		return nil, err
	}
	return imageio.ToDSSIMImage(attr, img, gamma)
}

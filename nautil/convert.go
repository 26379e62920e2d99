/*
Copyright © 2026 the InMAP authors.
This file is part of nasaames.

nasaames is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

nasaames is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with nasaames.  If not, see <http://www.gnu.org/licenses/>.
*/

package nautil

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/nasaames"
	"github.com/spatialmodel/nasaames/arrowvars"
	"github.com/spatialmodel/nasaames/internal/hash"
	"github.com/spatialmodel/nasaames/ncf"
)

// ReadFile reads the variables and global attributes in file, choosing
// the reader from the file extension: '.nc' or '.cdf' for NetCDF and
// '.arrow' or '.ipc' for Apache Arrow IPC files. axisColumn is the
// column holding the independent variable in Arrow files. Files in
// blob storage (see IsBlob) are downloaded before they are read.
func ReadFile(ctx context.Context, file, axisColumn string) (*nasaames.Dataset, error) {
	local, cleanup, err := maybeDownload(ctx, file)
	if err != nil {
		return nil, err
	}
	defer cleanup()
	switch strings.ToLower(filepath.Ext(file)) {
	case ".nc", ".cdf":
		return ncf.ReadFile(local)
	case ".arrow", ".ipc":
		return arrowvars.ReadFile(local, axisColumn)
	default:
		return nil, fmt.Errorf("nasaames: unsupported input file type %q", filepath.Ext(file))
	}
}

// Convert converts each of the given files into a NASA Ames header,
// using the given number of workers at a time (or the number of
// processors if workers < 1).
//
// Input files and outputDir may be local paths or blob storage
// locations. Each header is written as JSON to outputDir, in a file with the base
// name of the input file and the extension '.na.json', and its checksum
// is written next to it with the extension '.na.json.fnv'. requestedFFI
// is the file format index to write, or 0 to choose automatically,
// and globals are added to the global attributes of each file.
//
// Files that cannot be converted are logged and skipped; an error is
// returned after all files have been attempted if any of them failed.
func Convert(ctx context.Context, files []string, outputDir string, requestedFFI int, table *nasaames.Table,
	globals nasaames.Attributes, axisColumn string, workers int, log logrus.FieldLogger) error {
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(files) {
		workers = len(files)
	}
	if table == nil {
		table = nasaames.DefaultTable()
	}
	log.WithFields(logrus.Fields{
		"files":   len(files),
		"workers": workers,
		"table":   hash.Sum(table),
	}).Debug("nasaames: starting conversion")

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed int
	)
	wg.Add(workers)
	for p := 0; p < workers; p++ {
		go func(p int) {
			defer wg.Done()
			for i := p; i < len(files); i += workers {
				flog := log.WithField("file", files[i])
				out, sum, err := convertFile(ctx, files[i], outputDir, requestedFFI, table, globals, axisColumn, flog)
				if err != nil {
					flog.WithError(err).Error("nasaames: could not convert file")
					mu.Lock()
					failed++
					mu.Unlock()
					continue
				}
				if out == "" {
					continue
				}
				flog.WithFields(logrus.Fields{
					"output":   out,
					"checksum": sum,
				}).Info("nasaames: converted file")
			}
		}(p)
	}
	wg.Wait()

	if failed > 0 {
		return fmt.Errorf("nasaames: %d of %d files could not be converted", failed, len(files))
	}
	return nil
}

// convertFile converts a single file, returning the path of the output
// file and its checksum. output is empty if the file did not contain
// anything that could be converted.
func convertFile(ctx context.Context, file, outputDir string, requestedFFI int, table *nasaames.Table,
	globals nasaames.Attributes, axisColumn string, log logrus.FieldLogger) (output, checksum string, err error) {
	d, err := ReadFile(ctx, file, axisColumn)
	if err != nil {
		return "", "", err
	}
	c := &nasaames.Converter{Table: table, Log: log}
	r, err := c.Convert(d.Variables, d.Globals.Merge(globals), requestedFFI)
	if err != nil {
		return "", "", err
	}
	if !r.Found {
		return "", "", nil
	}

	base := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	f, output, err := createOutput(ctx, outputDir, base+".na.json")
	if err != nil {
		return "", "", err
	}
	w := hash.NewWriter(f)
	e := json.NewEncoder(w)
	e.SetIndent("", "  ")
	if err := e.Encode(r.Header); err != nil {
		f.Close()
		return "", "", fmt.Errorf("nasaames: writing %s: %v", output, err)
	}
	if err := f.Close(); err != nil {
		return "", "", fmt.Errorf("nasaames: writing %s: %v", output, err)
	}
	checksum = w.Sum()

	sf, _, err := createOutput(ctx, outputDir, base+".na.json.fnv")
	if err != nil {
		return "", "", err
	}
	if _, err := fmt.Fprintf(sf, "%s  %s.na.json\n", checksum, base); err != nil {
		sf.Close()
		return "", "", fmt.Errorf("nasaames: writing checksum: %v", err)
	}
	if err := sf.Close(); err != nil {
		return "", "", fmt.Errorf("nasaames: writing checksum: %v", err)
	}
	return output, checksum, nil
}

// Classify writes to w a report of how the variables in file would be
// used in a NASA Ames file.
func Classify(ctx context.Context, w io.Writer, file string, table *nasaames.Table, axisColumn string) error {
	d, err := ReadFile(ctx, file, axisColumn)
	if err != nil {
		return err
	}
	c := nasaames.Classify(d.Variables, nasaames.NewInspector(table))
	ids := c.VarIDs()
	var unused []string
	for _, v := range c.Unused {
		unused = append(unused, v.Name)
	}

	fmt.Fprintf(w, "%s:\n", file)
	for i, group := range []string{"main", "auxiliary", "singleton"} {
		fmt.Fprintf(w, "  %s:%s\n", group, nameList(ids[i]))
	}
	fmt.Fprintf(w, "  unused:%s\n", nameList(unused))
	ffis := nasaames.AllowedFFIs(c.NIV, len(c.Auxiliary) > 0, c.SecondAxisUniform, c.NVPM)
	if c.Empty() || len(ffis) == 0 {
		fmt.Fprintln(w, "  FFI: none")
		return nil
	}
	fmt.Fprintf(w, "  FFI: %v\n", ffis)
	return nil
}

func nameList(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return " " + strings.Join(names, ", ")
}

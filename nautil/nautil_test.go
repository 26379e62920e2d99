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
	"bytes"
	"context"
	"encoding/json"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ctessum/cdf"
	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/spatialmodel/nasaames"
	"github.com/spatialmodel/nasaames/internal/hash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeNC creates a NetCDF file at path holding four seconds of ozone
// measurements and a scalar altitude. If coordOnly is true, only the
// time coordinate is written.
func writeNC(t *testing.T, path string, coordOnly bool) {
	t.Helper()
	h := cdf.NewHeader([]string{"time"}, []int{0})
	h.AddAttribute("", "title", "Test flight")
	h.AddVariable("time", []string{"time"}, []float64{0})
	h.AddAttribute("time", "units", "seconds since 2017-05-01 00:00:00")
	if !coordOnly {
		h.AddVariable("o3", []string{"time"}, []float32{0})
		h.AddAttribute("o3", "units", "ppb")
		h.AddVariable("alt", []string{}, []float64{0})
	}
	h.Define()
	for _, err := range h.Check() {
		t.Fatal(err)
	}

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	ff, err := cdf.Create(f, h)
	require.NoError(t, err)
	write := func(name string, vals interface{}) {
		// Writing the last element of a fixed size variable returns
		// io.EOF.
		if _, err := ff.Writer(name, nil, nil).Write(vals); err != io.EOF {
			require.NoError(t, err, name)
		}
	}
	write("time", []float64{0, 1, 2, 3})
	if coordOnly {
		return
	}
	write("o3", []float32{30, 31, 32, 33})
	write("alt", []float64{1500})
}

// setDefaults resets the configuration shared by the tests.
func setDefaults(outputDir string) {
	Cfg.Set("config", "")
	Cfg.Set("LogLevel", "info")
	Cfg.Set("ffi", 0)
	Cfg.Set("OutputDir", outputDir)
	Cfg.Set("TranslationTable", "")
	Cfg.Set("Workers", 2)
	Cfg.Set("GlobalAttributes", "")
	Cfg.Set("AxisColumn", "")
}

type headerJSON struct {
	FFI          int
	SNAME, MNAME string
	DATE         [3]int
	DX           []float64
	VNAME        []string
	V            [][]float64
}

func TestConvert(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	writeNC(t, filepath.Join(dir, "a.nc"), false)
	writeNC(t, filepath.Join(dir, "b.nc"), false)

	setDefaults(out)
	Cfg.Set("GlobalAttributes", `{"source":"Aircraft"}`)
	Root.SetArgs([]string{"convert", filepath.Join(dir, "a.nc"), filepath.Join(dir, "b.nc")})
	require.NoError(t, Root.Execute())

	for _, base := range []string{"a", "b"} {
		b, err := ioutil.ReadFile(filepath.Join(out, base+".na.json"))
		require.NoError(t, err)
		var h headerJSON
		require.NoError(t, json.Unmarshal(b, &h))
		assert.Equal(t, 1001, h.FFI)
		assert.Equal(t, "Aircraft", h.SNAME)
		assert.Equal(t, "Test flight", h.MNAME)
		assert.Equal(t, [3]int{2017, 5, 1}, h.DATE)
		assert.Equal(t, []float64{1}, h.DX)
		assert.Equal(t, []string{"o3 (ppb)"}, h.VNAME)
		assert.Equal(t, [][]float64{{30, 31, 32, 33}}, h.V)

		w := hash.NewWriter(ioutil.Discard)
		_, err = w.Write(b)
		require.NoError(t, err)
		sum, err := ioutil.ReadFile(filepath.Join(out, base+".na.json.fnv"))
		require.NoError(t, err)
		assert.Equal(t, w.Sum()+"  "+base+".na.json\n", string(sum))
	}
}

func TestConvert_blob(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "in"), os.ModePerm))
	writeNC(t, filepath.Join(dir, "in", "a.nc"), false)

	setDefaults("file://" + filepath.ToSlash(filepath.Join(dir, "out")))
	Root.SetArgs([]string{"convert", "file://" + filepath.ToSlash(filepath.Join(dir, "in", "a.nc"))})
	require.NoError(t, Root.Execute())

	b, err := ioutil.ReadFile(filepath.Join(dir, "out", "a.na.json"))
	require.NoError(t, err)
	var h headerJSON
	require.NoError(t, json.Unmarshal(b, &h))
	assert.Equal(t, 1001, h.FFI)
	assert.Equal(t, [][]float64{{30, 31, 32, 33}}, h.V)

	w := hash.NewWriter(ioutil.Discard)
	_, err = w.Write(b)
	require.NoError(t, err)
	sum, err := ioutil.ReadFile(filepath.Join(dir, "out", "a.na.json.fnv"))
	require.NoError(t, err)
	assert.Equal(t, w.Sum()+"  a.na.json\n", string(sum))
}

func TestIsBlob(t *testing.T) {
	for _, tt := range []struct {
		path string
		blob bool
	}{
		{"gs://bucket/a.nc", true},
		{"s3://bucket/dir/a.nc", true},
		{"file:///tmp/a.nc", true},
		{"/tmp/a.nc", false},
		{"a.nc", false},
	} {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.blob, IsBlob(tt.path))
		})
	}
}

func TestSplitBlob(t *testing.T) {
	for _, tt := range []struct {
		path, bucket, key string
	}{
		{"gs://bucket/dir/a.nc", "gs://bucket", "dir/a.nc"},
		{"s3://bucket/a.nc", "s3://bucket", "a.nc"},
		{"file:///tmp/in/a.nc", "file:///tmp/in", "a.nc"},
	} {
		t.Run(tt.path, func(t *testing.T) {
			bucket, key, err := splitBlob(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.bucket, bucket)
			assert.Equal(t, tt.key, key)
		})
	}
}

func TestOpenBucket_invalid(t *testing.T) {
	_, err := OpenBucket(context.Background(), "ftp://bucket")
	assert.EqualError(t, err, `nasaames: invalid storage provider "ftp"`)
}

func TestConvert_failedFile(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.nc")
	bad := filepath.Join(dir, "notes.txt")
	writeNC(t, good, false)

	hook := test.NewLocal(Log)
	defer hook.Reset()

	err := Convert(context.Background(), []string{good, bad}, dir, 0, nasaames.DefaultTable(), nil, "", 0, Log)
	require.EqualError(t, err, "nasaames: 1 of 2 files could not be converted")

	_, err = os.Stat(filepath.Join(dir, "good.na.json"))
	assert.NoError(t, err, "good file should still be converted")

	var failed []string
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.ErrorLevel {
			failed = append(failed, e.Data["file"].(string))
			assert.Contains(t, e.Data[logrus.ErrorKey].(error).Error(), "unsupported input file type")
		}
	}
	assert.Equal(t, []string{bad}, failed)
}

func TestConvert_nothingToWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.nc")
	writeNC(t, path, true)

	hook := test.NewLocal(Log)
	defer hook.Reset()

	require.NoError(t, Convert(context.Background(), []string{path}, dir, 0, nasaames.DefaultTable(), nil, "", 1, Log))
	_, err := os.Stat(filepath.Join(dir, "empty.na.json"))
	assert.True(t, os.IsNotExist(err), "no output should be written")

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Message == "nasaames: no NASA Ames content created" {
			warned = true
			assert.Equal(t, path, e.Data["file"])
		}
	}
	assert.True(t, warned, "missing warning")
}

func TestConvert_wrongFFI(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.nc")
	writeNC(t, path, false)

	err := Convert(context.Background(), []string{path}, dir, 2010, nil, nil, "", 1, logrus.New())
	assert.EqualError(t, err, "nasaames: 1 of 1 files could not be converted")
}

func TestClassify(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.nc")
	writeNC(t, path, false)

	setDefaults(dir)
	buf := new(bytes.Buffer)
	Root.SetOut(buf)
	defer Root.SetOut(nil)
	Root.SetArgs([]string{"classify", path})
	require.NoError(t, Root.Execute())

	want := strings.Join([]string{
		path + ":",
		"  main: o3",
		"  auxiliary:",
		"  singleton: alt",
		"  unused:",
		"  FFI: [1001]",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestVersion(t *testing.T) {
	setDefaults(t.TempDir())
	buf := new(bytes.Buffer)
	Root.SetOut(buf)
	defer Root.SetOut(nil)
	Root.SetArgs([]string{"version"})
	require.NoError(t, Root.Execute())
	assert.Equal(t, "nasaames v"+nasaames.Version+"\n", buf.String())
}

func TestReadFile_unsupported(t *testing.T) {
	_, err := ReadFile(context.Background(), "data.csv", "")
	assert.EqualError(t, err, `nasaames: unsupported input file type ".csv"`)
}

func TestGlobalAttributes(t *testing.T) {
	os.Setenv("NASAAMES_TEST_PI", "Jane Doe")
	defer os.Unsetenv("NASAAMES_TEST_PI")

	for _, tt := range []struct {
		name string
		val  interface{}
	}{
		{"json", `{"source":"Aircraft","creator":"$NASAAMES_TEST_PI"}`},
		{"map", map[string]interface{}{"source": "Aircraft", "creator": "$NASAAMES_TEST_PI"}},
		{"string map", map[string]string{"source": "Aircraft", "creator": "$NASAAMES_TEST_PI"}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			cfg := viper.New()
			cfg.Set("GlobalAttributes", tt.val)
			a, err := globalAttributes(cfg)
			require.NoError(t, err)
			assert.Equal(t, nasaames.Attributes{
				{Name: "creator", Value: "Jane Doe"},
				{Name: "source", Value: "Aircraft"},
			}, a)
		})
	}

	t.Run("invalid", func(t *testing.T) {
		cfg := viper.New()
		cfg.Set("GlobalAttributes", "{")
		_, err := globalAttributes(cfg)
		assert.Error(t, err)
	})
}

func TestLoadTable(t *testing.T) {
	table, err := loadTable("")
	require.NoError(t, err)
	assert.Equal(t, nasaames.DefaultTable(), table)

	path := filepath.Join(t.TempDir(), "table.toml")
	require.NoError(t, ioutil.WriteFile(path, []byte("DefaultMissingValue = -1.0\n"), 0644))
	table, err = loadTable(path)
	require.NoError(t, err)
	assert.Equal(t, -1.0, table.DefaultMissingValue)

	_, err = loadTable(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

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
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"sort"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/nasaames"
	"github.com/spf13/cast"
)

// loadTable reads the translation table at path, or returns the
// default table if path is empty.
func loadTable(path string) (*nasaames.Table, error) {
	if path == "" {
		return nasaames.DefaultTable(), nil
	}
	f, err := os.Open(os.ExpandEnv(path))
	if err != nil {
		return nil, fmt.Errorf("nasaames: opening translation table: %v", err)
	}
	defer f.Close()
	return nasaames.LoadTable(f)
}

// checkOutputDir makes sure that the output directory exists, creating
// it if necessary, and expands any environment variables in its name.
// Cloud storage locations are returned as they are.
func checkOutputDir(dir string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("nasaames: OutputDir needs to be specified")
	}
	dir = os.ExpandEnv(dir)
	local := dir
	if IsBlob(dir) {
		u, err := url.Parse(dir)
		if err != nil {
			return "", fmt.Errorf("nasaames: parsing OutputDir: %v", err)
		}
		if u.Scheme != "file" {
			return dir, nil
		}
		local = fileDir(u)
	}
	if err := os.MkdirAll(local, os.ModePerm); err != nil {
		return "", fmt.Errorf("nasaames: creating output directory: %v", err)
	}
	return dir, nil
}

// globalAttributes returns the GlobalAttributes configuration variable
// as attributes sorted by name. It might be a json object if it was set
// from a command line argument.
func globalAttributes(cfg *viper.Viper) (nasaames.Attributes, error) {
	m, err := getStringMapString("GlobalAttributes", cfg)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	o := make(nasaames.Attributes, len(keys))
	for i, k := range keys {
		o[i] = nasaames.Attribute{Name: k, Value: os.ExpandEnv(m[k])}
	}
	return o, nil
}

// getStringMapString returns a map[string]string from a viper configuration,
// accounting for the fact that it might be a json object if it was set
// from a command line argument.
func getStringMapString(varName string, cfg *viper.Viper) (map[string]string, error) {
	i := cfg.Get(varName)
	switch t := i.(type) {
	case nil:
		return nil, nil
	case map[string]string:
		return t, nil
	case map[string]interface{}:
		return cast.ToStringMapStringE(t)
	case string:
		if t == "" {
			return nil, nil
		}
		o := make(map[string]string)
		if err := json.NewDecoder(bytes.NewBufferString(t)).Decode(&o); err != nil {
			return nil, fmt.Errorf("nasaames: invalid value for %s: %v", varName, err)
		}
		return o, nil
	default:
		return nil, fmt.Errorf("nasaames: invalid type for %s: %#v", varName, i)
	}
}

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

// Package nautil provides a command-line interface for converting
// NetCDF and Apache Arrow files into NASA Ames headers.
package nautil

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/nasaames"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

// Log receives the messages of the commands.
var Log = logrus.New()

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "LogLevel",
			usage: `
              LogLevel specifies the least severe level of messages
              to print: one of debug, info, warning, or error.`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "ffi",
			usage: `
              ffi specifies the NASA Ames file format index to write.
              The default (0) chooses the format that best fits the data.`,
			shorthand:  "f",
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{convertCmd.Flags()},
		},
		{
			name: "OutputDir",
			usage: `
              OutputDir specifies the directory where the converted headers
              are written. Each input file is written to a file with the
              same base name and the extension '.na.json', together with a
              '.fnv' file holding its checksum.`,
			shorthand:  "o",
			defaultVal: ".",
			flagsets:   []*pflag.FlagSet{convertCmd.Flags()},
		},
		{
			name: "TranslationTable",
			usage: `
              TranslationTable specifies the path to a TOML file that
              changes how global attributes are translated into NASA Ames
              header fields. If it is empty, the default table is used.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{convertCmd.Flags(), classifyCmd.Flags()},
		},
		{
			name: "Workers",
			usage: `
              Workers specifies the number of files to convert at the same
              time. The default (0) is the number of processors.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{convertCmd.Flags()},
		},
		{
			name: "GlobalAttributes",
			usage: `
              GlobalAttributes specifies global attributes that are added
              to those of every input file, replacing any with the same
              name. For example: {"source":"Aircraft"}.`,
			defaultVal: map[string]string{},
			flagsets:   []*pflag.FlagSet{convertCmd.Flags()},
		},
		{
			name: "AxisColumn",
			usage: `
              AxisColumn specifies the column of Arrow input files that holds
              the independent variable. If it is empty, the first column
              is used.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{convertCmd.Flags(), classifyCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("NASAAMES")
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case map[string]string:
				b := bytes.NewBuffer(nil)
				e := json.NewEncoder(b)
				e.Encode(option.defaultVal)
				s := string(b.Bytes())
				if option.shorthand == "" {
					set.String(option.name, s, option.usage)
				} else {
					set.StringP(option.name, option.shorthand, s, option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(convertCmd)
	Root.AddCommand(classifyCmd)
}

// setConfig finds and reads in the configuration file, if there is one,
// and sets the logging level.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("nasaames: problem reading configuration file: %v", err)
		}
	}
	level, err := logrus.ParseLevel(Cfg.GetString("LogLevel"))
	if err != nil {
		return fmt.Errorf("nasaames: %v", err)
	}
	Log.SetLevel(level)
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "nasaames",
	Short: "Convert array data to NASA Ames format.",
	Long: `nasaames converts the variables in NetCDF and Apache Arrow files into
the header and data content of NASA Ames files, choosing the file format
index (FFI) that fits the structure of the data.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'NASAAMES_var' where 'var' is the
name of the variable to be set.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of nasaames.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("nasaames v%s\n", nasaames.Version)
	},
	DisableAutoGenTag: true,
}

// convertCmd converts input files to NASA Ames headers.
var convertCmd = &cobra.Command{
	Use:   "convert file...",
	Short: "Convert files to NASA Ames format.",
	Long: `convert converts each of the given NetCDF (.nc) or Apache Arrow
(.arrow) files into a NASA Ames header, written as JSON to OutputDir.
Files that cannot be converted are reported and skipped.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := loadTable(Cfg.GetString("TranslationTable"))
		if err != nil {
			return err
		}
		globals, err := globalAttributes(Cfg)
		if err != nil {
			return err
		}
		outputDir, err := checkOutputDir(Cfg.GetString("OutputDir"))
		if err != nil {
			return err
		}
		return Convert(cmd.Context(), args, outputDir, Cfg.GetInt("ffi"), table, globals,
			Cfg.GetString("AxisColumn"), Cfg.GetInt("Workers"), Log)
	},
	DisableAutoGenTag: true,
}

// classifyCmd reports how the variables in input files would be used.
var classifyCmd = &cobra.Command{
	Use:   "classify file...",
	Short: "Report how the variables in files would be converted.",
	Long: `classify prints, for each of the given files, which variables would be
written as main, auxiliary, or singleton variables, which variables
would not be written, and which file format indices could be used.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := loadTable(Cfg.GetString("TranslationTable"))
		if err != nil {
			return err
		}
		for _, file := range args {
			if err := Classify(cmd.Context(), cmd.OutOrStdout(), file, table, Cfg.GetString("AxisColumn")); err != nil {
				return err
			}
		}
		return nil
	},
	DisableAutoGenTag: true,
}

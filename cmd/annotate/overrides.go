package main

import (
	"fmt"
	"strings"

	annotate "github.com/goliatone/go-annotate"
	"github.com/spf13/pflag"
)

// overrideFlags are the command line options written above every other
// layer.
type overrideFlags struct {
	set         []string
	position    string
	modelDir    []string
	require     []string
	showIndexes bool
	force       bool
	excludeTest bool

	flags *pflag.FlagSet
}

func (o *overrideFlags) register(flags *pflag.FlagSet) {
	o.flags = flags
	flags.StringArrayVar(&o.set, "set", nil, "override an option (key=value), repeatable")
	flags.StringVarP(&o.position, "position", "p", "", "where to place annotations (before or after)")
	flags.StringSliceVar(&o.modelDir, "model-dir", nil, "model directories")
	flags.StringSliceVarP(&o.require, "require", "r", nil, "extensions to load before eager loading")
	flags.BoolVar(&o.showIndexes, "show-indexes", false, "list table indexes")
	flags.BoolVarP(&o.force, "force", "f", false, "annotate even when the schema is unchanged")
	flags.BoolVar(&o.excludeTest, "exclude-tests", false, "skip test files")
}

// raw collects the flags that were set on the command line.
func (o *overrideFlags) raw() (annotate.RawOptions, error) {
	out := annotate.RawOptions{}
	for _, pair := range o.set {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("--set expects key=value, got %q", pair)
		}
		if !annotate.IsOption(key) {
			return nil, fmt.Errorf("--set: unknown option %q", key)
		}
		out[key] = value
	}
	if o.position != "" {
		out[string(annotate.Position)] = o.position
	}
	if len(o.modelDir) > 0 {
		out[string(annotate.ModelDir)] = o.modelDir
	}
	if len(o.require) > 0 {
		out[string(annotate.Require)] = o.require
	}
	o.setBool(out, "show-indexes", annotate.ShowIndexes, o.showIndexes)
	o.setBool(out, "force", annotate.Force, o.force)
	o.setBool(out, "exclude-tests", annotate.ExcludeTests, o.excludeTest)
	return out, nil
}

func (o *overrideFlags) setBool(out annotate.RawOptions, flag string, key annotate.Key, value bool) {
	if o.flags == nil || !o.flags.Changed(flag) {
		return
	}
	out[string(key)] = value
}

// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package tools contains utility types and functions for the ddalias sub-commands.
package tools

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/awslabs/ar-go-dda/analysis/config"
	"github.com/awslabs/ar-go-dda/analysis/dda"
	"github.com/awslabs/ar-go-dda/analysis/pathdda"
	"github.com/awslabs/ar-go-dda/analysis/vfg"
	"github.com/awslabs/ar-go-dda/internal/funcutil"
	"golang.org/x/exp/slices"
)

// UnparsedCommonFlags represents an unparsed CLI sub-command flags.
type UnparsedCommonFlags struct {
	FlagSet     *flag.FlagSet
	ConfigPath  *string
	GraphPath   *string
	Sensitivity *string
	Verbose     *bool
}

// NewUnparsedCommonFlags returns an unparsed flag set with a given name.
// This is useful for creating sub-commands that have the flags -config,
// -graph, -sensitivity and -verbose but need other flags in addition.
func NewUnparsedCommonFlags(name string) UnparsedCommonFlags {
	cmd := flag.NewFlagSet(name, flag.ExitOnError)
	configPath := cmd.String("config", "", "config file path for analysis")
	graphPath := cmd.String("graph", "", "value-flow graph file; overrides the graph of the config file")
	sensitivity := cmd.String("sensitivity", "",
		"one of flow, field, context or path; overrides the sensitivity of the config file")
	verbose := cmd.Bool("verbose", false, "verbose printing on standard output")
	return UnparsedCommonFlags{
		FlagSet:     cmd,
		ConfigPath:  configPath,
		GraphPath:   graphPath,
		Sensitivity: sensitivity,
		Verbose:     verbose,
	}
}

// Parse parses args and returns the parsed common flags
func (u UnparsedCommonFlags) Parse(args []string) (CommonFlags, error) {
	if err := u.FlagSet.Parse(args); err != nil {
		return CommonFlags{}, fmt.Errorf("failed to parse command %s with args %v: %v", u.FlagSet.Name(), args, err)
	}
	return CommonFlags{
		FlagSet:     u.FlagSet,
		ConfigPath:  *u.ConfigPath,
		GraphPath:   *u.GraphPath,
		Sensitivity: *u.Sensitivity,
		Verbose:     *u.Verbose,
	}, nil
}

// CommonFlags represents a parsed CLI sub-command flags.
// E.g., for the command `ddalias query ...`, "query" is the sub-command.
type CommonFlags struct {
	FlagSet     *flag.FlagSet
	ConfigPath  string
	GraphPath   string
	Sensitivity string
	Verbose     bool
}

// NewCommonFlags returns a parsed flag set with a given name.
// Returns an error if args are invalid.
// Prints cmdUsage along with flag docs as the --help message.
func NewCommonFlags(name string, args []string, cmdUsage string) (CommonFlags, error) {
	flags := NewUnparsedCommonFlags(name)
	SetUsage(flags.FlagSet, cmdUsage)
	return flags.Parse(args)
}

// SetUsage sets cmd's usage (for --help flag) to output the string cmdUsage
// followed by each flag's documentation.
func SetUsage(cmd *flag.FlagSet, cmdUsage string) {
	cmd.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s\n", cmdUsage)
		fmt.Fprintf(os.Stderr, "Options:\n")
		cmd.VisitAll(func(f *flag.Flag) {
			fmt.Fprintf(os.Stderr, "  %s: %s (default: %q)\n", f.Name, f.Usage, f.DefValue)
		})
	}
}

// LoadConfig loads the config file from configPath. If configPath is empty, the default config is returned.
func LoadConfig(configPath string) (*config.Config, error) {
	if configPath == "" {
		return config.NewDefault(), nil
	}
	config.SetGlobalConfig(configPath)
	cfg, err := config.LoadGlobal()
	if err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}
	return cfg, nil
}

// Inputs are the config and the value-flow graph of a sub-command
type Inputs struct {
	Config *config.Config
	Graph  *vfg.Graph
	Logger *config.LogGroup
}

// LoadInputs loads the config and the graph designated by the flags. The flags override the config file.
func LoadInputs(flags CommonFlags) (*Inputs, error) {
	cfg, err := LoadConfig(flags.ConfigPath)
	if err != nil {
		return nil, err
	}
	if flags.Sensitivity != "" {
		cfg.Sensitivity = config.Sensitivity(strings.ToLower(flags.Sensitivity))
	}
	if flags.Verbose && !cfg.Verbose() {
		cfg.LogLevel = int(config.DebugLevel)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	graphPath := flags.GraphPath
	if graphPath == "" {
		graphPath = cfg.GraphPath()
	}
	if graphPath == "" {
		return nil, fmt.Errorf("no value-flow graph specified")
	}
	g, err := vfg.LoadFile(graphPath)
	if err != nil {
		return nil, err
	}
	return &Inputs{Config: cfg, Graph: g, Logger: config.NewLogGroup(cfg)}, nil
}

// NewQuerier returns the analysis selected by the sensitivity of the config
func (in *Inputs) NewQuerier() (dda.Querier, error) {
	if in.Config.Sensitivity == config.PathSensitivity {
		a, err := pathdda.New(in.Graph, in.Graph.CallGraph(), pathdda.LiteralAlgebra{}, in.Logger, in.Config)
		if err != nil {
			return nil, err
		}
		return a.Querier(), nil
	}
	e, err := dda.New(in.Graph, in.Graph.CallGraph(), in.Logger, in.Config)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// QueryNodes returns the nodes named by names, or the queries of the config if names is empty, or every valid
// pointer if both are empty. Returns an error if some name is unknown.
func (in *Inputs) QueryNodes(names []string) ([]vfg.NodeID, error) {
	if len(names) == 0 {
		names = in.Config.Queries
	}
	nodes, unknown := dda.QueryNodes(in.Graph, names)
	if len(unknown) > 0 {
		return nil, fmt.Errorf("unknown nodes: %s", strings.Join(unknown, ", "))
	}
	return nodes, nil
}

// NodeNames returns the names of the nodes, sorted
func NodeNames(g *vfg.Graph, nodes []vfg.NodeID) []string {
	names := funcutil.Map(nodes, g.NodeName)
	slices.Sort(names)
	return names
}

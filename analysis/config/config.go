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

package config

import (
	"fmt"
	"os"
	"path"

	"gopkg.in/yaml.v3"
)

var (
	// The global config file
	configFile string
)

// SetGlobalConfig sets the global config filename
func SetGlobalConfig(filename string) {
	configFile = filename
}

// LoadGlobal loads the config file that has been set by SetGlobalConfig
func LoadGlobal() (*Config, error) {
	return Load(configFile)
}

// Config contains the options of the demand-driven alias analysis and the queries to answer.
// If some field is not defined in the config file, it keeps the value set by NewDefault.
// private fields are not populated from a yaml file, but computed after initialization
type Config struct {
	Options `yaml:",inline"`

	sourceFile string

	// GraphFile is the path to the value-flow graph to analyze, relative to the config file.
	GraphFile string `yaml:"graph"`

	// Queries lists the names of the nodes to query. If empty, every valid pointer of the graph is queried.
	Queries []string `yaml:"queries"`
}

// Options holds the tuning parameters of the analysis.
type Options struct {
	// Sensitivity is the precision level of the engine: one of flow, field, context or path.
	Sensitivity Sensitivity `yaml:"sensitivity"`

	// QueryBudget is the maximum number of search steps of one top-level query. The search returns a partial
	// result when the budget is exceeded. If QueryBudget <= 0, the search is unbounded.
	QueryBudget int `yaml:"query-budget"`

	// PathBudget is the maximum number of search steps of one path-sensitive query. When it is exceeded, the
	// query is answered again by the context-sensitive engine.
	PathBudget int `yaml:"path-budget"`

	// EnableCache controls whether completed query results are memoized.
	EnableCache bool `yaml:"enable-cache"`

	// PruneCandidates restricts the stores (loads) matched against a load (store) to the ones in the same
	// undirected connected component of the graph.
	PruneCandidates bool `yaml:"prune-candidates"`

	// VisitedIdentity selects which fields of a search item identify it in the visited sets.
	VisitedIdentity VisitedIdentity `yaml:"visited-identity"`

	// MaxStackDepth bounds the field and context stacks when VisitedIdentity is full-stack. Older frames are
	// dropped when a push exceeds the bound.
	MaxStackDepth int `yaml:"max-stack-depth"`

	// ReportsDir is the directory where the results are written when ReportResults is set. If it is empty, a
	// temporary directory is created next to the config file.
	ReportsDir string `yaml:"reports-dir"`

	// ReportResults writes one line per query in a results-*.out file in ReportsDir
	ReportResults bool `yaml:"report-results"`

	// PrintAliases prints the alias set of each query
	PrintAliases bool `yaml:"print-aliases"`

	// PrintPointsTo prints the points-to set of each query
	PrintPointsTo bool `yaml:"print-pts"`

	// Loglevel controls the verbosity of the tool
	LogLevel int `yaml:"log-level"`

	// Suppress warnings
	SilenceWarn bool `yaml:"silence-warn"`
}

// NewDefault returns a default config.
func NewDefault() *Config {
	return &Config{
		sourceFile: "",
		GraphFile:  "",
		Queries:    nil,
		Options: Options{
			Sensitivity:     FlowSensitivity,
			QueryBudget:     DefaultQueryBudget,
			PathBudget:      DefaultPathBudget,
			EnableCache:     true,
			PruneCandidates: true,
			VisitedIdentity: NodeRootStateIdentity,
			MaxStackDepth:   DefaultMaxStackDepth,
			ReportsDir:      "",
			ReportResults:   false,
			PrintAliases:    false,
			PrintPointsTo:   false,
			LogLevel:        int(InfoLevel),
			SilenceWarn:     false,
		},
	}
}

// Load reads a configuration from a file
func Load(filename string) (*Config, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}
	return Parse(filename, b)
}

// Parse reads a configuration from the bytes of a yaml file. The filename is used to resolve relative paths.
func Parse(filename string, b []byte) (*Config, error) {
	cfg := NewDefault()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("could not unmarshal config file %s: %w", filename, err)
	}

	cfg.sourceFile = filename

	// If logLevel has not been specified (i.e. it is 0) set the default to Info
	if cfg.LogLevel == 0 {
		cfg.LogLevel = int(InfoLevel)
	}

	if cfg.MaxStackDepth <= 0 {
		cfg.MaxStackDepth = DefaultMaxStackDepth
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.ReportResults {
		if err := setReportsDir(cfg, filename); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// Validate returns an error if some option of the config has a value that is not recognized.
func (c Config) Validate() error {
	if !c.Sensitivity.IsValid() {
		return fmt.Errorf("unknown sensitivity %q (expected one of %v)", c.Sensitivity, AllSensitivities)
	}
	if !c.VisitedIdentity.IsValid() {
		return fmt.Errorf("unknown visited-identity %q (expected %q or %q)", c.VisitedIdentity,
			NodeRootStateIdentity, FullStackIdentity)
	}
	return nil
}

func setReportsDir(c *Config, filename string) error {
	if c.ReportsDir == "" {
		tmpdir, err := os.MkdirTemp(path.Dir(filename), "*-report")
		if err != nil {
			return fmt.Errorf("could not create temp dir for reports")
		}
		c.ReportsDir = tmpdir
	} else {
		err := os.Mkdir(c.ReportsDir, 0750)
		if err != nil {
			if !os.IsExist(err) {
				return fmt.Errorf("could not create directory %s", c.ReportsDir)
			}
		}
	}
	return nil
}

// RelPath returns filename path relative to the config source file
func (c Config) RelPath(filename string) string {
	return path.Join(path.Dir(c.sourceFile), filename)
}

// GraphPath returns the path of the value-flow graph file, relative to the config source file
func (c Config) GraphPath() string {
	if c.GraphFile == "" || path.IsAbs(c.GraphFile) {
		return c.GraphFile
	}
	return c.RelPath(c.GraphFile)
}

// Verbose returns true is the configuration verbosity setting is larger than Info (i.e. Debug or Trace)
func (c Config) Verbose() bool {
	return c.LogLevel >= int(DebugLevel)
}

// UsesFullStackIdentity returns true when search items are identified by their stacks in addition to their nodes
func (c Config) UsesFullStackIdentity() bool {
	return c.VisitedIdentity == FullStackIdentity
}

package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Infineon/mtb-manifest-checker/pkg/config"
	"github.com/Infineon/mtb-manifest-checker/pkg/exitcode"
	"github.com/Infineon/mtb-manifest-checker/pkg/logger"
	"github.com/Infineon/mtb-manifest-checker/pkg/manifest"
)

func newSuiteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suite [--plan FILE]",
		Short: "Validate a list of manifests in one session",
		Long: `Validate several manifests in order, sharing the asset cache and the HTTP and
git lookups between them. The first failing manifest stops the suite.

Jobs come from --plan (YAML, or TOML for a .toml file) or from the suite.jobs
config key:

  jobs:
    - type: board
      input: manifests/bsp/*.xml
      output: out/bsp

An input containing glob characters (doublestar syntax) expands to every
matching file; output is then a directory and each match keeps its path
relative to the pattern's base.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runSuite,
	}
	cmd.Flags().String("plan", "", "YAML or TOML file listing the jobs to run")
	return cmd
}

type suitePlan struct {
	Jobs []config.Job `yaml:"jobs" toml:"jobs"`
}

// suiteStep is one concrete manifest to validate.
type suiteStep struct {
	Type   manifest.Type
	Input  string
	Output string
}

func runSuite(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	env, err := newEnvironment(cmd)
	if err != nil {
		return fatal(out, exitcode.ConfigError, err)
	}

	planPath, _ := cmd.Flags().GetString("plan")
	jobs, err := suiteJobs(planPath, env.cfg)
	if err != nil {
		return fatal(out, exitcode.ConfigError, err)
	}
	steps, err := expandJobs(jobs)
	if err != nil {
		return fatal(out, exitcode.ConfigError, err)
	}

	var procErr error
	for i, step := range steps {
		logger.Info(fmt.Sprintf("[%d/%d] %s manifest %s", i+1, len(steps), step.Type, step.Input))
		if procErr = manifest.Process(cmd.Context(), env.session, step.Type, step.Input, step.Output); procErr != nil {
			break
		}
	}

	if err := env.finish(); err != nil && procErr == nil {
		return fatal(out, exitcode.ValidationFailure, err)
	}
	if procErr != nil {
		return fatal(out, exitcode.ValidationFailure, procErr)
	}
	logger.Info(fmt.Sprintf("suite passed: %d manifests", len(steps)))
	return nil
}

func suiteJobs(planPath string, cfg *config.Config) ([]config.Job, error) {
	if planPath == "" {
		jobs, err := cfg.SuiteJobs()
		if errors.Is(err, config.ErrNoJobs) {
			return nil, fmt.Errorf("%w: pass --plan or set suite.jobs", err)
		}
		return jobs, err
	}

	data, err := os.ReadFile(planPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan: %w", err)
	}
	var plan suitePlan
	if strings.EqualFold(filepath.Ext(planPath), ".toml") {
		err = toml.Unmarshal(data, &plan)
	} else {
		err = yaml.Unmarshal(data, &plan)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse plan %s: %w", planPath, err)
	}
	if len(plan.Jobs) == 0 {
		return nil, fmt.Errorf("%w in %s", config.ErrNoJobs, planPath)
	}
	return plan.Jobs, nil
}

// expandJobs validates job types and resolves glob inputs into steps.
func expandJobs(jobs []config.Job) ([]suiteStep, error) {
	var steps []suiteStep
	for i, job := range jobs {
		typ, err := manifest.ParseType(job.Type)
		if err != nil {
			return nil, fmt.Errorf("job %d: %w", i+1, err)
		}
		if job.Input == "" || job.Output == "" {
			return nil, fmt.Errorf("job %d: input and output are required", i+1)
		}

		if !hasGlobMeta(job.Input) {
			steps = append(steps, suiteStep{Type: typ, Input: job.Input, Output: job.Output})
			continue
		}

		pattern := filepath.ToSlash(job.Input)
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("job %d: invalid pattern %q", i+1, job.Input)
		}
		matches, err := doublestar.FilepathGlob(job.Input, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("job %d: %w", i+1, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("job %d: pattern %q matched no files", i+1, job.Input)
		}
		sort.Strings(matches)

		base, _ := doublestar.SplitPattern(pattern)
		base = filepath.FromSlash(base)
		for _, match := range matches {
			rel, err := filepath.Rel(base, match)
			if err != nil {
				rel = filepath.Base(match)
			}
			steps = append(steps, suiteStep{Type: typ, Input: match, Output: filepath.Join(job.Output, rel)})
		}
	}
	return steps, nil
}

func hasGlobMeta(p string) bool {
	return strings.ContainsAny(p, "*?[{")
}

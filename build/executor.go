package build

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/hlysunnaram/sirius-ci/proc"
)

const (
	DefaultJobs       = 4
	DefaultTestTarget = "sirius-tests"
)

type Options struct {
	// SourceRoot is the checked-out product source tree.
	SourceRoot string

	// ScratchDir is the ephemeral build directory, exclusively owned by
	// this run and removed when the executor finishes.
	ScratchDir string

	// InstallDir is where built artifacts are installed.
	InstallDir string

	// DocDir receives the relocated documentation trees.
	DocDir string

	Version string
	Commit  string

	// Jobs bounds build parallelism. Defaults to DefaultJobs.
	Jobs int

	// TestTarget is built, and must succeed, before the default target.
	// Defaults to DefaultTestTarget.
	TestTarget string
}

func (o Options) withDefaults() Options {
	if o.Jobs == 0 {
		o.Jobs = DefaultJobs
	}
	if o.TestTarget == "" {
		o.TestTarget = DefaultTestTarget
	}
	return o
}

// step is one build system invocation, labeled with the sentinel error its
// failure is reported under.
type step struct {
	label    string
	sentinel error
	name     string
	args     []string
}

// steps returns the build sequence in its mandatory order: configure, test
// target, default target, install. Install is only ever reached after both
// builds succeeded.
func steps(sourceRoot, installDir, version, commit string, jobs int, testTarget string) []step {
	jobsArg := strconv.Itoa(jobs)

	return []step{
		{
			label:    "configure",
			sentinel: ErrConfigure,
			name:     "cmake",
			args: []string{
				"-DCMAKE_BUILD_TYPE=Release",
				"-DCMAKE_INSTALL_PREFIX=" + installDir,
				"-DSIRIUS_VERSION=" + version,
				"-DSIRIUS_REVISION_COMMIT=" + commit,
				"-DENABLE_UNIT_TESTS=ON",
				"-DENABLE_DOCUMENTATION=ON",
				sourceRoot,
			},
		},
		{
			label:    "build-tests",
			sentinel: ErrBuild,
			name:     "cmake",
			args:     []string{"--build", ".", "--target", testTarget, "--parallel", jobsArg},
		},
		{
			label:    "build",
			sentinel: ErrBuild,
			name:     "cmake",
			args:     []string{"--build", ".", "--parallel", jobsArg},
		},
		{
			label:    "install",
			sentinel: ErrInstall,
			name:     "cmake",
			args:     []string{"--build", ".", "--target", "install"},
		},
	}
}

func NewExecutor(runner proc.Runner, opts Options) *Executor {
	return &Executor{
		runner: runner,
		opts:   opts.withDefaults(),
	}
}

type Executor struct {
	runner proc.Runner
	opts   Options
}

// Run executes the build sequence natively. Any step failure is fatal and
// aborts the remaining steps; the scratch directory is removed as terminal
// cleanup regardless of the outcome so no transient state leaks out of the
// run.
func (e *Executor) Run(ctx context.Context) error {
	defer e.cleanup()

	if err := os.MkdirAll(e.opts.ScratchDir, 0o755); err != nil {
		return fmt.Errorf("%w: unable to create scratch directory: %w", ErrConfigure, err)
	}

	for _, s := range steps(e.opts.SourceRoot, e.opts.InstallDir, e.opts.Version, e.opts.Commit, e.opts.Jobs, e.opts.TestTarget) {
		log.Info().Str("step", s.label).Msg("running build step")

		if err := e.runner.Run(ctx, e.opts.ScratchDir, s.name, s.args...); err != nil {
			return fmt.Errorf("%w: step %s: %w", s.sentinel, s.label, err)
		}
	}

	if err := e.relocateDocs(); err != nil {
		return fmt.Errorf("%w: %w", ErrDocRelocation, err)
	}

	return nil
}

// relocateDocs moves the generated documentation trees out of the scratch
// directory to their stable locations.
func (e *Executor) relocateDocs() error {
	for _, m := range docMoves(e.opts.ScratchDir, e.opts.DocDir) {
		if err := os.MkdirAll(filepath.Dir(m.dst), 0o755); err != nil {
			return err
		}
		if err := os.RemoveAll(m.dst); err != nil {
			return err
		}
		if err := os.Rename(m.src, m.dst); err != nil {
			return err
		}
	}
	return nil
}

func (e *Executor) cleanup() {
	if err := os.RemoveAll(e.opts.ScratchDir); err != nil {
		log.Warn().Err(err).Str("dir", e.opts.ScratchDir).Msg("unable to remove scratch directory")
	}
}

type docMove struct {
	src string
	dst string
}

// docMoves maps the generated documentation subtrees to their stable
// destinations: the machine-readable tree first, the human-readable tree
// second.
func docMoves(scratchDir, docDir string) []docMove {
	return []docMove{
		{
			src: filepath.Join(scratchDir, "docs", "doxygen", "xml"),
			dst: filepath.Join(docDir, "xml"),
		},
		{
			src: filepath.Join(scratchDir, "docs", "html"),
			dst: filepath.Join(docDir, "html"),
		},
	}
}

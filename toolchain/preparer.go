package toolchain

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/rs/zerolog/log"

	"github.com/hlysunnaram/sirius-ci/proc"
)

const (
	DefaultRemote    = "sirius"
	DefaultTriplet   = "x64-windows"
	DefaultFixBranch = "fix_build"
)

// DefaultPackages are the pinned native dependencies: the numerical
// transform library and the geospatial library. GDAL ships no 32-bit
// build, which is what constrains the triplet to a 64-bit configuration.
var DefaultPackages = []string{"fftw3", "gdal"}

type Options struct {
	// Dir is the dependency manager checkout, mutated in place. It is not
	// shared safely across concurrent runs on the same host.
	Dir string

	// ForkURL is the maintained fork of the dependency manager.
	ForkURL string

	// Remote names the fork remote. Defaults to DefaultRemote.
	Remote string

	// FixBranch is the branch fetched and checked out from the fork.
	// Defaults to DefaultFixBranch.
	FixBranch string

	// Triplet selects the target build variant. Defaults to
	// DefaultTriplet.
	Triplet string

	// OverlayDir holds the repository's triplet override files. The
	// override forces release-only dependency builds, bounding compile
	// time and disk usage under the CI time budget; the default pulls
	// both debug and release variants.
	OverlayDir string

	// Packages installed for the triplet. Defaults to DefaultPackages.
	Packages []string
}

func (o Options) withDefaults() Options {
	if o.Remote == "" {
		o.Remote = DefaultRemote
	}
	if o.FixBranch == "" {
		o.FixBranch = DefaultFixBranch
	}
	if o.Triplet == "" {
		o.Triplet = DefaultTriplet
	}
	if len(o.Packages) == 0 {
		o.Packages = DefaultPackages
	}
	return o
}

func NewPreparer(runner proc.Runner, opts Options) *Preparer {
	return &Preparer{
		runner: runner,
		opts:   opts.withDefaults(),
	}
}

type Preparer struct {
	runner proc.Runner
	opts   Options
}

// Prepare runs the pin sequence. Each step is a hard gate: the first
// failure aborts the remaining steps and surfaces a [StepError] naming the
// step and carrying the originating exit code. Once Prepare returns nil,
// every subsequent install resolves against the pinned fork revision and
// the overridden triplet policy.
func (p *Preparer) Prepare(ctx context.Context) error {
	prepSteps := []struct {
		name string
		fn   func(ctx context.Context) error
	}{
		{"add-remote", p.addRemote},
		{"fetch-fix-branch", p.fetchFixBranch},
		{"checkout-fix-branch", p.checkoutFixBranch},
		{"override-triplet-policy", p.overrideTripletPolicy},
		{"bootstrap", p.bootstrap},
	}

	for _, s := range prepSteps {
		log.Info().Str("step", s.name).Msg("preparing toolchain")

		if err := s.fn(ctx); err != nil {
			return &StepError{Step: s.name, Code: proc.ExitCode(err), Err: err}
		}
	}

	for _, pkg := range p.opts.Packages {
		log.Info().Str("package", pkg).Str("triplet", p.opts.Triplet).Msg("installing dependency")

		if err := p.install(ctx, pkg); err != nil {
			return &StepError{Step: "install-" + pkg, Code: proc.ExitCode(err), Err: err}
		}
	}

	return nil
}

func (p *Preparer) addRemote(ctx context.Context) error {
	return p.runner.Run(ctx, p.opts.Dir, "git", "remote", "add", p.opts.Remote, p.opts.ForkURL)
}

func (p *Preparer) fetchFixBranch(ctx context.Context) error {
	return p.runner.Run(ctx, p.opts.Dir, "git", "fetch", p.opts.Remote, p.opts.FixBranch)
}

// checkoutFixBranch replaces whatever state is present in the toolchain
// directory with the fork's fix branch.
func (p *Preparer) checkoutFixBranch(ctx context.Context) error {
	return p.runner.Run(ctx, p.opts.Dir, "git", "checkout", "--force", "-B", p.opts.FixBranch,
		p.opts.Remote+"/"+p.opts.FixBranch)
}

// overrideTripletPolicy overwrites the target triplet's build-policy file
// with the release-only override shipped in the repository.
func (p *Preparer) overrideTripletPolicy(_ context.Context) error {
	src := filepath.Join(p.opts.OverlayDir, p.opts.Triplet+".cmake")
	dst := filepath.Join(p.opts.Dir, "triplets", p.opts.Triplet+".cmake")

	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("unable to read triplet override: %w", err)
	}

	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return fmt.Errorf("unable to write triplet policy: %w", err)
	}

	return nil
}

// bootstrap builds the dependency manager executable. The bootstrap script
// is documented to terminate its invoking process on completion, so it
// always runs as a fresh child process and only its exit status is
// inspected; control flow in the orchestrator never depends on the script
// falling through.
func (p *Preparer) bootstrap(ctx context.Context) error {
	return p.runner.Run(ctx, p.opts.Dir, filepath.Join(p.opts.Dir, bootstrapScript()), "-disableMetrics")
}

func (p *Preparer) install(ctx context.Context, pkg string) error {
	return p.runner.Run(ctx, p.opts.Dir, filepath.Join(p.opts.Dir, managerExecutable()),
		"install", pkg+":"+p.opts.Triplet)
}

func bootstrapScript() string {
	if runtime.GOOS == "windows" {
		return "bootstrap-vcpkg.bat"
	}
	return "bootstrap-vcpkg.sh"
}

func managerExecutable() string {
	if runtime.GOOS == "windows" {
		return "vcpkg.exe"
	}
	return "vcpkg"
}

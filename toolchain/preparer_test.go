package toolchain

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hlysunnaram/sirius-ci/proc"
)

type fakeRunner struct {
	calls  []string
	failOn string
	err    error
}

func (r *fakeRunner) Run(_ context.Context, _ string, name string, args ...string) error {
	call := name + " " + strings.Join(args, " ")
	r.calls = append(r.calls, call)
	if r.failOn != "" && strings.Contains(call, r.failOn) {
		return r.err
	}
	return nil
}

func (r *fakeRunner) Output(_ context.Context, _ string, name string, args ...string) (string, error) {
	return "", nil
}

func testOptions(t *testing.T) Options {
	t.Helper()

	dir := t.TempDir()
	overlay := t.TempDir()

	if err := os.MkdirAll(filepath.Join(dir, "triplets"), 0o755); err != nil {
		t.Fatal(err)
	}
	override := "set(VCPKG_BUILD_TYPE release)\n"
	if err := os.WriteFile(filepath.Join(overlay, DefaultTriplet+".cmake"), []byte(override), 0o644); err != nil {
		t.Fatal(err)
	}

	return Options{
		Dir:        dir,
		ForkURL:    "https://example.com/vcpkg.git",
		OverlayDir: overlay,
	}
}

func TestPrepareSequence(t *testing.T) {
	opts := testOptions(t)
	runner := &fakeRunner{}

	if err := NewPreparer(runner, opts).Prepare(context.Background()); err != nil {
		t.Fatalf("Prepare() = %v, want nil", err)
	}

	wantOrder := []string{
		"git remote add " + DefaultRemote,
		"git fetch " + DefaultRemote + " " + DefaultFixBranch,
		"git checkout --force",
		"bootstrap-vcpkg",
		"install fftw3:" + DefaultTriplet,
		"install gdal:" + DefaultTriplet,
	}

	if len(runner.calls) != len(wantOrder) {
		t.Fatalf("ran %d commands, want %d: %v", len(runner.calls), len(wantOrder), runner.calls)
	}
	for i, fragment := range wantOrder {
		if !strings.Contains(runner.calls[i], fragment) {
			t.Fatalf("calls[%d] = %q, want it to contain %q", i, runner.calls[i], fragment)
		}
	}
}

func TestPrepareAppliesTripletOverride(t *testing.T) {
	opts := testOptions(t)
	runner := &fakeRunner{}

	if err := NewPreparer(runner, opts).Prepare(context.Background()); err != nil {
		t.Fatalf("Prepare() = %v, want nil", err)
	}

	data, err := os.ReadFile(filepath.Join(opts.Dir, "triplets", DefaultTriplet+".cmake"))
	if err != nil {
		t.Fatalf("triplet policy not written: %v", err)
	}
	if !strings.Contains(string(data), "VCPKG_BUILD_TYPE release") {
		t.Fatalf("triplet policy = %q, want the release-only override", data)
	}
}

func TestPrepareBootstrapDisablesTelemetry(t *testing.T) {
	opts := testOptions(t)
	runner := &fakeRunner{}

	if err := NewPreparer(runner, opts).Prepare(context.Background()); err != nil {
		t.Fatalf("Prepare() = %v, want nil", err)
	}

	for _, call := range runner.calls {
		if strings.Contains(call, "bootstrap-vcpkg") {
			if !strings.Contains(call, "-disableMetrics") {
				t.Fatalf("bootstrap call = %q, missing -disableMetrics", call)
			}
			return
		}
	}
	t.Fatal("bootstrap never ran")
}

func TestPrepareOverrideFailureSkipsInstalls(t *testing.T) {
	opts := testOptions(t)
	// remove the override so the policy copy step fails
	if err := os.Remove(filepath.Join(opts.OverlayDir, DefaultTriplet+".cmake")); err != nil {
		t.Fatal(err)
	}

	runner := &fakeRunner{}
	err := NewPreparer(runner, opts).Prepare(context.Background())
	if err == nil {
		t.Fatal("Prepare() = nil, want error")
	}

	var stepErr *StepError
	if !errors.As(err, &stepErr) {
		t.Fatalf("Prepare() = %v, want *StepError", err)
	}
	if stepErr.Step != "override-triplet-policy" {
		t.Fatalf("Step = %q, want override-triplet-policy", stepErr.Step)
	}

	for _, call := range runner.calls {
		if strings.Contains(call, "install") {
			t.Fatalf("install attempted after override failure: %q", call)
		}
		if strings.Contains(call, "bootstrap") {
			t.Fatalf("bootstrap attempted after override failure: %q", call)
		}
	}
}

func TestPrepareInstallFailureNamesPackage(t *testing.T) {
	opts := testOptions(t)
	runner := &fakeRunner{
		failOn: "install gdal",
		err:    errors.New("exit status 1"),
	}

	err := NewPreparer(runner, opts).Prepare(context.Background())

	var stepErr *StepError
	if !errors.As(err, &stepErr) {
		t.Fatalf("Prepare() = %v, want *StepError", err)
	}
	if stepErr.Step != "install-gdal" {
		t.Fatalf("Step = %q, want install-gdal", stepErr.Step)
	}
	if !errors.Is(err, ErrToolchain) {
		t.Fatal("error does not match ErrToolchain")
	}
	if !strings.Contains(err.Error(), "dependency toolchain") {
		t.Fatalf("Error() = %q, want the dependency-toolchain label", err.Error())
	}
}

func TestStepErrorPreservesExitCode(t *testing.T) {
	err := &StepError{Step: "install-gdal", Code: 3, Err: errors.New("boom")}

	if !strings.Contains(err.Error(), "exit code 3") {
		t.Fatalf("Error() = %q, want the exit code", err.Error())
	}
	if proc.ExitCode(errors.New("plain")) != -1 {
		t.Fatal("ExitCode(plain error) != -1")
	}
}

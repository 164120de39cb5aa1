package build

import (
	"strings"
)

// Environment variables consumed by the isolated build environment. They
// are the only channel through which the composed command is parameterized.
const (
	EnvSourceRoot = "SIRIUS_SOURCE_ROOT"
	EnvScratchDir = "SIRIUS_BUILD_DIR"
	EnvInstallDir = "SIRIUS_INSTALL_DIR"
	EnvVersion    = "SIRIUS_VERSION"
	EnvCommit     = "SIRIUS_REVISION_COMMIT"
)

// Env renders the environment for the isolated build environment.
func Env(sourceRoot, scratchName, installDir, version, commit string) []string {
	return []string{
		EnvSourceRoot + "=" + sourceRoot,
		EnvScratchDir + "=" + scratchName,
		EnvInstallDir + "=" + installDir,
		EnvVersion + "=" + version,
		EnvCommit + "=" + commit,
	}
}

// Script renders the whole build sequence as a single shell command string
// for the isolated build environment. The sequence mirrors [Executor.Run]:
// configure, test-target build, default build, install, documentation
// relocation, then unconditional scratch directory removal. Build steps are
// fail-fast; the relocation outcome is preserved across cleanup so a failed
// relocation still fails the build after the scratch directory is gone.
func Script(jobs int, testTarget string) string {
	if jobs == 0 {
		jobs = DefaultJobs
	}
	if testTarget == "" {
		testTarget = DefaultTestTarget
	}

	lines := []string{
		"set -e",
		`cd "$` + EnvSourceRoot + `"`,
		`mkdir -p "$` + EnvScratchDir + `"`,
		`cd "$` + EnvScratchDir + `"`,
	}

	for _, s := range steps(
		"$"+EnvSourceRoot,
		"$"+EnvInstallDir,
		"$"+EnvVersion,
		"$"+EnvCommit,
		jobs,
		testTarget,
	) {
		lines = append(lines, shellLine(s.name, s.args))
	}

	lines = append(lines,
		"set +e",
		`mkdir -p "$`+EnvSourceRoot+`/docs"`,
		`mv docs/doxygen/xml "$`+EnvSourceRoot+`/docs/xml" && mv docs/html "$`+EnvSourceRoot+`/docs/html"`,
		"status=$?",
		`cd "$`+EnvSourceRoot+`"`,
		`rm -rf "$`+EnvScratchDir+`"`,
		"exit $status",
	)

	return strings.Join(lines, "\n")
}

// shellLine renders a step as a shell command, double-quoting every
// argument so environment references expand inside the build environment.
func shellLine(name string, args []string) string {
	parts := []string{name}
	for _, arg := range args {
		parts = append(parts, `"`+arg+`"`)
	}
	return strings.Join(parts, " ")
}

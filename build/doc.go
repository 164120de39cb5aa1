// Package build drives the product's CMake build system: project
// configuration, a gating test-target build, the default build, install,
// documentation relocation and scratch directory cleanup.
//
// The same step sequence backs two execution paths: [Executor.Run] executes
// it natively through a process runner, and [Script] renders it as a single
// shell command for the isolated container environment.
package build

// Package toolchain pins the native dependency manager used on Windows: it
// checks out a maintained vcpkg fork, overrides the target triplet's build
// policy to release-only builds, bootstraps the manager and installs the
// product's pinned native dependencies.
package toolchain

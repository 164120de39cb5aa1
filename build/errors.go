package build

import "errors"

var (
	ErrConfigure     = errors.New("project configuration failed")
	ErrBuild         = errors.New("build failed")
	ErrInstall       = errors.New("install failed")
	ErrDocRelocation = errors.New("documentation relocation failed")
)

package exec

import (
	"context"

	"github.com/hlysunnaram/sirius-ci/sdk"
)

type (
	Config struct {
		FromEnv bool
		Url     string

		// Image is the builder base image the build runs in.
		Image string

		// Repository is the push target for promoted images.
		Repository string

		// LatestAlias is the stable "latest built" tag.
		LatestAlias string

		// BinDir is prepended to the promoted image's executable search
		// path so the installed product is directly runnable.
		BinDir string

		Username string
		Password string
	}

	Executor interface {
		RunBuild(ctx context.Context, rc *sdk.RunContext, build Build) error
		Promote(ctx context.Context, rc *sdk.RunContext, version string) (*Promotion, error)
		Close() error
	}

	// Build describes one containerized build execution: a single composed
	// shell command run against the bind-mounted source tree.
	Build struct {
		Command   string
		SourceDir string
		Env       []string
	}

	PromotionState string

	// Promotion records how far a build container made it through the
	// promotion state machine. On untrusted runs it never leaves the built
	// state.
	Promotion struct {
		State       PromotionState
		ContainerId string
		ImageId     string
		Tags        []string
	}
)

const (
	BuiltState     PromotionState = "built"
	CommittedState PromotionState = "committed"
	TaggedState    PromotionState = "tagged"
	PushedState    PromotionState = "pushed"
)

// DataDir is where the source tree is mounted inside the build container.
const DataDir = "/data"

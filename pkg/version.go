package pkg

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/hlysunnaram/sirius-ci/proc"
)

// FallbackVersion is substituted when no descriptive tag can be derived
// from the repository history.
const FallbackVersion = "0.0.0"

// ResolveVersion derives the canonical version identifier for the current
// commit from the nearest reachable tag. Resolution never fails the run: an
// untagged repository or a lookup failure degrades to the fallback.
// Downstream stages treat the result as an opaque string.
func ResolveVersion(ctx context.Context, runner proc.Runner, dir string) string {
	out, err := runner.Output(ctx, dir, "git", "describe", "--tags")
	if err != nil {
		log.Debug().Err(err).Msg("no descriptive tag found, using fallback version")
		return FallbackVersion
	}

	version := strings.TrimSpace(out)
	if version == "" {
		return FallbackVersion
	}

	return version
}

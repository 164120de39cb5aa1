package deploy

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/hlysunnaram/sirius-ci/pkg"
	"github.com/hlysunnaram/sirius-ci/proc"
)

type (
	// Action is a downstream collaborator invoked by the gate. Its internal
	// behavior is opaque to the pipeline.
	Action interface {
		Name() string
		Run(ctx context.Context, run *pkg.Run) error
	}

	// Gate invokes its actions exactly once per run, only when the run is
	// trusted and targets the release branch.
	Gate struct {
		releaseBranch string
		actions       []Action
	}
)

func NewGate(releaseBranch string, actions ...Action) *Gate {
	return &Gate{
		releaseBranch: releaseBranch,
		actions:       actions,
	}
}

// Run evaluates the trust predicate first and the branch predicate second;
// either being false is a silent skip, never an error. Action failures on
// gated-through runs are fatal.
func (g *Gate) Run(ctx context.Context, run *pkg.Run) error {
	if !run.Context.Trusted() {
		log.Info().Msg("pull-request run, skipping deploy")
		return nil
	}

	if !run.Context.OnBranch(g.releaseBranch) {
		log.Info().Str("branch", run.Context.Branch).Msg("not the release branch, skipping deploy")
		return nil
	}

	for _, action := range g.actions {
		log.Info().Str("action", action.Name()).Msg("running deploy action")

		if err := action.Run(ctx, run); err != nil {
			return fmt.Errorf("deploy action %s: %w", action.Name(), err)
		}
	}

	return nil
}

// NewScriptAction wraps an external deploy script. The script inherits the
// process environment and exposes no further interface contract.
func NewScriptAction(runner proc.Runner, dir string, script string) Action {
	return &scriptAction{
		runner: runner,
		dir:    dir,
		script: script,
	}
}

type scriptAction struct {
	runner proc.Runner
	dir    string
	script string
}

func (a *scriptAction) Name() string {
	return "script " + a.script
}

func (a *scriptAction) Run(ctx context.Context, _ *pkg.Run) error {
	return a.runner.Run(ctx, a.dir, a.script)
}

package pkg

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/hlysunnaram/sirius-ci/sdk"
)

type (
	// Run carries the state threaded through the pipeline stages. The
	// context is immutable; Version and Image are set by the stages that
	// produce them.
	Run struct {
		Context *sdk.RunContext

		// Version is the resolved canonical version identifier.
		Version string

		// Image is the pushed image reference, set by promotion on trusted
		// runs and left empty otherwise.
		Image string
	}

	// Stage is a single sequential step of the release pipeline.
	Stage interface {
		Name() string
		Run(ctx context.Context, run *Run) error
	}

	// StageFunc adapts a function to the Stage interface.
	StageFunc struct {
		StageName string
		Fn        func(ctx context.Context, run *Run) error
	}
)

func (s StageFunc) Name() string {
	return s.StageName
}

func (s StageFunc) Run(ctx context.Context, run *Run) error {
	return s.Fn(ctx, run)
}

// Pipeline executes its stages in strict sequence, fail-fast: a later stage
// never starts before an earlier stage has fully completed, and the first
// failure aborts all remaining stages.
type Pipeline struct {
	stages   []Stage
	statuses map[string]sdk.StageStatus
}

func NewPipeline(stages ...Stage) *Pipeline {
	statuses := make(map[string]sdk.StageStatus, len(stages))
	for _, stage := range stages {
		statuses[stage.Name()] = sdk.PendingStatus
	}

	return &Pipeline{
		stages:   stages,
		statuses: statuses,
	}
}

func (p *Pipeline) Run(ctx context.Context, run *Run) error {
	for i, stage := range p.stages {
		p.statuses[stage.Name()] = sdk.RunningStatus
		log.Info().Str("stage", stage.Name()).Msg("stage started")

		if err := stage.Run(ctx, run); err != nil {
			p.statuses[stage.Name()] = sdk.FailedStatus
			p.skipRemaining(i + 1)

			log.Error().Err(err).Str("stage", stage.Name()).Msg("stage failed")
			return fmt.Errorf("stage %s: %w", stage.Name(), err)
		}

		p.statuses[stage.Name()] = sdk.SucceededStatus
		log.Info().Str("stage", stage.Name()).Msg("stage completed")
	}

	return nil
}

// Status returns the recorded status for a stage, or pending for unknown
// names.
func (p *Pipeline) Status(name string) sdk.StageStatus {
	status, fnd := p.statuses[name]
	if !fnd {
		return sdk.PendingStatus
	}
	return status
}

func (p *Pipeline) skipRemaining(from int) {
	for _, stage := range p.stages[from:] {
		p.statuses[stage.Name()] = sdk.SkippedStatus
	}
}

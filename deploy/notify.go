package deploy

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/hlysunnaram/sirius-ci/pkg"
)

const DefaultSubject = "sirius.ci.build.succeeded"

// statusEvent is the build-status payload published on a successful,
// gated-through run.
type statusEvent struct {
	RunId     string    `json:"run_id"`
	Version   string    `json:"version"`
	Commit    string    `json:"commit"`
	Branch    string    `json:"branch"`
	Image     string    `json:"image,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewNotifyAction publishes a success notification over the given NATS
// connection.
func NewNotifyAction(nc *nats.Conn, subject string) Action {
	if subject == "" {
		subject = DefaultSubject
	}

	return &notifyAction{
		nc:      nc,
		subject: subject,
	}
}

type notifyAction struct {
	nc      *nats.Conn
	subject string
}

func (a *notifyAction) Name() string {
	return "notify"
}

func (a *notifyAction) Run(_ context.Context, run *pkg.Run) error {
	event := statusEvent{
		RunId:     run.Context.ID,
		Version:   run.Version,
		Commit:    run.Context.Commit,
		Branch:    run.Context.Branch,
		Image:     run.Image,
		Timestamp: time.Now().UTC(),
	}

	b, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("unable to encode status event: %w", err)
	}

	if err := a.nc.Publish(a.subject, b); err != nil {
		return fmt.Errorf("unable to publish status event: %w", err)
	}

	return a.nc.Flush()
}

package sdk

type TriggerKind string

var (
	PullRequestTrigger TriggerKind = "pull-request"
	BranchPushTrigger  TriggerKind = "branch-push"
)

// RunContext carries the trigger signals for a single pipeline run. It is
// built once from the environment when the run starts and never mutated
// afterwards; every gating decision in the pipeline is a pure predicate
// over it.
type RunContext struct {
	// ID uniquely names this run. It scopes the scratch build directory and
	// labels the build container so promotion can find it again.
	ID string

	Trigger TriggerKind
	Branch  string
	Commit  string

	// HasRegistryCredentials reports whether registry credentials were
	// injected into the environment. They are only present in trusted
	// contexts.
	HasRegistryCredentials bool
}

func (r *RunContext) IsPullRequest() bool {
	return r.Trigger == PullRequestTrigger
}

// Trusted reports whether this run may perform credential-bearing actions
// such as registry pushes. Pull-request runs execute untrusted code and are
// never trusted.
func (r *RunContext) Trusted() bool {
	return r.Trigger != PullRequestTrigger
}

func (r *RunContext) OnBranch(branch string) bool {
	return r.Branch == branch
}

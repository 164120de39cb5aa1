package exec

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/registry"

	"github.com/hlysunnaram/sirius-ci/sdk"
)

type fakeRegistry struct {
	ops        []string
	containers []types.Container
	commits    []container.CommitOptions
	listErr    error
}

func (f *fakeRegistry) ContainerList(_ context.Context, _ container.ListOptions) ([]types.Container, error) {
	f.ops = append(f.ops, "list")
	return f.containers, f.listErr
}

func (f *fakeRegistry) ContainerCommit(_ context.Context, containerID string, options container.CommitOptions) (types.IDResponse, error) {
	f.ops = append(f.ops, "commit "+containerID)
	f.commits = append(f.commits, options)
	return types.IDResponse{ID: "sha256:deadbeef"}, nil
}

func (f *fakeRegistry) ImageTag(_ context.Context, source, target string) error {
	f.ops = append(f.ops, fmt.Sprintf("tag %s %s", source, target))
	return nil
}

func (f *fakeRegistry) ImagePush(_ context.Context, img string, _ image.PushOptions) (io.ReadCloser, error) {
	f.ops = append(f.ops, "push "+img)
	return io.NopCloser(strings.NewReader("")), nil
}

func (f *fakeRegistry) RegistryLogin(_ context.Context, auth registry.AuthConfig) (registry.AuthenticateOKBody, error) {
	f.ops = append(f.ops, "login "+auth.Username)
	return registry.AuthenticateOKBody{}, nil
}

func testDocker(reg registryAPI) *docker {
	return &docker{
		cfg: Config{
			Repository:  "sirius/sirius",
			LatestAlias: "sirius/sirius:latest",
			BinDir:      "/opt/sirius/bin",
			Username:    "ci",
			Password:    "secret",
		},
		reg: reg,
	}
}

func TestPromoteSkipsPullRequestRuns(t *testing.T) {
	reg := &fakeRegistry{}
	d := testDocker(reg)
	rc := &sdk.RunContext{ID: "run-1", Trigger: sdk.PullRequestTrigger}

	prom, err := d.Promote(context.Background(), rc, "v2.3.1")
	if err != nil {
		t.Fatalf("Promote() = %v, want nil", err)
	}

	if prom.State != BuiltState {
		t.Fatalf("State = %s, want %s", prom.State, BuiltState)
	}
	if len(reg.ops) != 0 {
		t.Fatalf("pull-request run performed %d registry operations: %v", len(reg.ops), reg.ops)
	}
}

func TestPromoteTrustedRun(t *testing.T) {
	reg := &fakeRegistry{
		containers: []types.Container{{ID: "ctr-1"}},
	}
	d := testDocker(reg)
	rc := &sdk.RunContext{ID: "run-1", Trigger: sdk.BranchPushTrigger, HasRegistryCredentials: true}

	prom, err := d.Promote(context.Background(), rc, "v2.3.1")
	if err != nil {
		t.Fatalf("Promote() = %v, want nil", err)
	}

	if prom.State != PushedState {
		t.Fatalf("State = %s, want %s", prom.State, PushedState)
	}

	wantOps := []string{
		"list",
		"commit ctr-1",
		"tag sha256:deadbeef sirius/sirius:latest",
		"tag sha256:deadbeef sirius/sirius:v2.3.1",
		"login ci",
		"push sirius/sirius:v2.3.1",
	}
	if len(reg.ops) != len(wantOps) {
		t.Fatalf("ops = %v, want %v", reg.ops, wantOps)
	}
	for i := range wantOps {
		if reg.ops[i] != wantOps[i] {
			t.Fatalf("ops[%d] = %q, want %q", i, reg.ops[i], wantOps[i])
		}
	}
}

func TestPromoteBakesPathAugmentation(t *testing.T) {
	reg := &fakeRegistry{
		containers: []types.Container{{ID: "ctr-1"}},
	}
	d := testDocker(reg)
	rc := &sdk.RunContext{ID: "run-1", Trigger: sdk.BranchPushTrigger}

	if _, err := d.Promote(context.Background(), rc, "v2.3.1"); err != nil {
		t.Fatalf("Promote() = %v, want nil", err)
	}

	if len(reg.commits) != 1 {
		t.Fatalf("commits = %d, want 1", len(reg.commits))
	}

	changes := reg.commits[0].Changes
	if len(changes) != 1 || !strings.HasPrefix(changes[0], "ENV PATH=/opt/sirius/bin:") {
		t.Fatalf("commit changes = %v, want a PATH augmentation", changes)
	}
}

func TestPromoteNoBuildContainer(t *testing.T) {
	reg := &fakeRegistry{}
	d := testDocker(reg)
	rc := &sdk.RunContext{ID: "run-1", Trigger: sdk.BranchPushTrigger}

	prom, err := d.Promote(context.Background(), rc, "v2.3.1")
	if err == nil {
		t.Fatal("Promote() = nil, want error when no build container exists")
	}
	if prom.State != BuiltState {
		t.Fatalf("State = %s, want %s", prom.State, BuiltState)
	}
}

package pkg

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

type fakeRunner struct {
	output string
	err    error
	calls  []string
}

func (r *fakeRunner) Run(_ context.Context, _ string, name string, args ...string) error {
	r.calls = append(r.calls, name+" "+strings.Join(args, " "))
	return r.err
}

func (r *fakeRunner) Output(_ context.Context, _ string, name string, args ...string) (string, error) {
	r.calls = append(r.calls, name+" "+strings.Join(args, " "))
	return r.output, r.err
}

func TestResolveVersion(t *testing.T) {
	tests := []struct {
		name   string
		output string
		err    error
		want   string
	}{
		{
			name:   "reachable tag",
			output: "v2.3.1",
			want:   "v2.3.1",
		},
		{
			name:   "descriptive tag with ahead count",
			output: "v2.3.1-4-g1a2b3c4",
			want:   "v2.3.1-4-g1a2b3c4",
		},
		{
			name: "no tag falls back",
			err:  fmt.Errorf("fatal: no names found"),
			want: FallbackVersion,
		},
		{
			name:   "empty output falls back",
			output: "",
			want:   FallbackVersion,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{output: tt.output, err: tt.err}

			got := ResolveVersion(context.Background(), runner, ".")
			if got != tt.want {
				t.Fatalf("ResolveVersion() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveVersionQueriesTagHistory(t *testing.T) {
	runner := &fakeRunner{output: "v1.0.0"}

	ResolveVersion(context.Background(), runner, ".")

	if len(runner.calls) != 1 {
		t.Fatalf("calls = %d, want 1", len(runner.calls))
	}
	if runner.calls[0] != "git describe --tags" {
		t.Fatalf("call = %q, want %q", runner.calls[0], "git describe --tags")
	}
}

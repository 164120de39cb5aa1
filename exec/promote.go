package exec

import (
	"context"
	"fmt"
	"io"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/registry"
	"github.com/rs/zerolog/log"

	"github.com/hlysunnaram/sirius-ci/sdk"
)

// defaultImagePath is the executable search path the builder base image
// ships with; the product's bin dir is prepended to it at commit time.
const defaultImagePath = "/usr/local/sbin:/usr/local/bin:/usr/sbin:/usr/bin:/sbin:/bin"

// registryAPI is the slice of the docker API consumed by promotion.
type registryAPI interface {
	ContainerList(ctx context.Context, options container.ListOptions) ([]types.Container, error)
	ContainerCommit(ctx context.Context, containerID string, options container.CommitOptions) (types.IDResponse, error)
	ImageTag(ctx context.Context, source, target string) error
	ImagePush(ctx context.Context, image string, options image.PushOptions) (io.ReadCloser, error)
	RegistryLogin(ctx context.Context, auth registry.AuthConfig) (registry.AuthenticateOKBody, error)
}

// Promote converts the run's post-build container state into a pushed,
// versioned image, walking the built → committed → tagged → pushed state
// machine. Every transition is gated on the run being trusted: on a
// pull-request run all of them are no-ops, never failures, and the
// promotion is returned still in the built state.
func (d *docker) Promote(ctx context.Context, rc *sdk.RunContext, version string) (*Promotion, error) {
	prom := &Promotion{State: BuiltState}

	if !rc.Trusted() {
		log.Info().Msg("pull-request run, skipping image promotion")
		return prom, nil
	}

	containerId, err := d.latestBuildContainer(ctx, rc.ID)
	if err != nil {
		return prom, err
	}
	prom.ContainerId = containerId

	if rc.Trusted() {
		commit, err := d.reg.ContainerCommit(ctx, containerId, container.CommitOptions{
			Reference: d.cfg.LatestAlias,
			Changes:   []string{"ENV PATH=" + d.cfg.BinDir + ":" + defaultImagePath},
			Pause:     true,
		})
		if err != nil {
			return prom, fmt.Errorf("unable to commit build container: %w", err)
		}

		prom.State = CommittedState
		prom.ImageId = commit.ID
		log.Info().Str("image_id", commit.ID).Msg("build container committed")
	}

	pushTarget := fmt.Sprintf("%s:%s", d.cfg.Repository, version)

	if rc.Trusted() {
		for _, tag := range []string{d.cfg.LatestAlias, pushTarget} {
			if err := d.reg.ImageTag(ctx, prom.ImageId, tag); err != nil {
				return prom, fmt.Errorf("unable to tag image as %s: %w", tag, err)
			}
			prom.Tags = append(prom.Tags, tag)
		}
		prom.State = TaggedState
	}

	if rc.Trusted() {
		if err := d.push(ctx, pushTarget); err != nil {
			return prom, err
		}
		prom.State = PushedState
		log.Info().Str("image", pushTarget).Msg("image pushed")
	}

	return prom, nil
}

// latestBuildContainer finds the most recently created container belonging
// to this run.
func (d *docker) latestBuildContainer(ctx context.Context, runId string) (string, error) {
	f := filters.NewArgs()
	f.Add("label", fmt.Sprintf("%s=%s", runIdLabel, runId))

	containers, err := d.reg.ContainerList(ctx, container.ListOptions{
		All:     true,
		Latest:  true,
		Filters: f,
	})
	if err != nil {
		return "", fmt.Errorf("unable to list build containers: %w", err)
	}

	if len(containers) == 0 {
		return "", fmt.Errorf("no build container found for run %s", runId)
	}

	return containers[0].ID, nil
}

func (d *docker) push(ctx context.Context, target string) error {
	auth := registry.AuthConfig{
		Username: d.cfg.Username,
		Password: d.cfg.Password,
	}

	if _, err := d.reg.RegistryLogin(ctx, auth); err != nil {
		return fmt.Errorf("unable to authenticate against registry: %w", err)
	}

	encoded, err := registry.EncodeAuthConfig(auth)
	if err != nil {
		return fmt.Errorf("unable to encode registry credentials: %w", err)
	}

	out, err := d.reg.ImagePush(ctx, target, image.PushOptions{RegistryAuth: encoded})
	if err != nil {
		return fmt.Errorf("unable to push image %s: %w", target, err)
	}
	defer out.Close()

	// the push only completes once the progress stream is drained
	if _, err := io.Copy(io.Discard, out); err != nil {
		return fmt.Errorf("unable to push image %s: %w", target, err)
	}

	return nil
}

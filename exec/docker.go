package exec

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/rs/zerolog/log"

	"github.com/hlysunnaram/sirius-ci/sdk"
)

const runIdLabel = "siriusci_run_id"

func NewDockerExecutor(cfg Config) (Executor, error) {
	d := &docker{
		cfg: cfg,
		clientOpts: []client.Opt{
			client.WithAPIVersionNegotiation(),
		},
	}

	if cfg.FromEnv {
		d.clientOpts = append(d.clientOpts, client.FromEnv)
	} else {
		if cfg.Url != "" {
			d.clientOpts = append(d.clientOpts, client.WithHost(cfg.Url))
		}
	}

	dc, err := client.NewClientWithOpts(d.clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create docker client: %w", err)
	}
	d.dc = dc
	d.reg = dc

	return d, nil
}

type docker struct {
	cfg Config

	clientOpts []client.Opt
	dc         client.APIClient

	// reg is the slice of the docker API used by promotion, kept separate
	// so promotion can be exercised against a fake.
	reg registryAPI
}

func (d *docker) Close() error {
	return d.dc.Close()
}

// RunBuild pulls the builder image and executes the composed build command
// in a container with the source tree bind-mounted. It blocks until the
// container exits; a non-zero exit status is the sole failure signal.
func (d *docker) RunBuild(ctx context.Context, rc *sdk.RunContext, build Build) error {
	log.Info().Str("image", d.cfg.Image).Msg("pulling builder image")

	out, err := d.dc.ImagePull(ctx, d.cfg.Image, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("unable to pull builder image: %w", err)
	}
	if _, err := io.Copy(io.Discard, out); err != nil {
		out.Close()
		return fmt.Errorf("unable to pull builder image: %w", err)
	}
	out.Close()

	containerName := fmt.Sprintf("sirius-build-%s", rc.ID)

	resp, err := d.dc.ContainerCreate(ctx, &container.Config{
		Image: d.cfg.Image,
		Cmd:   []string{"/bin/bash", "-c", build.Command},
		Env:   build.Env,
		Labels: map[string]string{
			runIdLabel: rc.ID,
		},
	}, &container.HostConfig{
		Binds: []string{build.SourceDir + ":" + DataDir},
	}, nil, nil, containerName)
	if err != nil {
		return fmt.Errorf("unable to create build container: %w", err)
	}

	if err := d.dc.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		return fmt.Errorf("unable to start build container: %w", err)
	}

	go d.streamLogs(ctx, resp.ID)

	statusCh, errCh := d.dc.ContainerWait(ctx, resp.ID, container.WaitConditionNotRunning)
	select {
	case err := <-errCh:
		return fmt.Errorf("unable to wait for build container: %w", err)
	case status := <-statusCh:
		if status.StatusCode != 0 {
			return fmt.Errorf("build failed with exit status %d", status.StatusCode)
		}
	}

	log.Info().Str("container_id", resp.ID).Msg("build completed")
	return nil
}

func (d *docker) streamLogs(ctx context.Context, containerId string) {
	logs, err := d.dc.ContainerLogs(ctx, containerId, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Follow:     true,
	})
	if err != nil {
		log.Warn().Err(err).Msg("unable to stream build output")
		return
	}
	defer logs.Close()

	if _, err := stdcopy.StdCopy(os.Stdout, os.Stderr, logs); err != nil {
		log.Warn().Err(err).Msg("build output stream interrupted")
	}
}

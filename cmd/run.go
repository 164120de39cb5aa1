package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hlysunnaram/sirius-ci/build"
	"github.com/hlysunnaram/sirius-ci/deploy"
	"github.com/hlysunnaram/sirius-ci/exec"
	"github.com/hlysunnaram/sirius-ci/pkg"
	"github.com/hlysunnaram/sirius-ci/proc"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "execute the containerized build-and-release pipeline",
	Long: `Resolves the canonical version, builds the product inside the builder
container, promotes the post-build container state to a tagged image on
trusted runs and invokes the deploy collaborators on the release branch.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := pkg.LoadEnv()
		if err != nil {
			return err
		}

		rc := cfg.RunContext()
		runner := proc.NewRunner()

		sourceRoot, err := filepath.Abs(viper.GetString("source_root"))
		if err != nil {
			return fmt.Errorf("unable to resolve source root: %w", err)
		}

		executor, err := exec.NewDockerExecutor(exec.Config{
			FromEnv:     viper.GetString("docker.host") == "",
			Url:         viper.GetString("docker.host"),
			Image:       viper.GetString("docker.image"),
			Repository:  viper.GetString("docker.repository"),
			LatestAlias: viper.GetString("docker.latest_alias"),
			BinDir:      viper.GetString("docker.bin_dir"),
			Username:    cfg.Registry.Username,
			Password:    cfg.Registry.Password,
		})
		if err != nil {
			return err
		}
		defer executor.Close()

		gate, closeGate, err := newGate(cfg, runner, sourceRoot)
		if err != nil {
			return err
		}
		defer closeGate()

		scratchName := ".build-" + rc.ID
		installDir := viper.GetString("install_dir")
		jobs := viper.GetInt("jobs")
		testTarget := viper.GetString("test_target")

		pipeline := pkg.NewPipeline(
			pkg.StageFunc{
				StageName: "resolve-version",
				Fn: func(ctx context.Context, run *pkg.Run) error {
					run.Version = pkg.ResolveVersion(ctx, runner, sourceRoot)
					log.Info().Str("version", run.Version).Msg("version resolved")
					return nil
				},
			},
			pkg.StageFunc{
				StageName: "build",
				Fn: func(ctx context.Context, run *pkg.Run) error {
					return executor.RunBuild(ctx, run.Context, exec.Build{
						Command:   build.Script(jobs, testTarget),
						SourceDir: sourceRoot,
						Env:       build.Env(exec.DataDir, scratchName, installDir, run.Version, run.Context.Commit),
					})
				},
			},
			pkg.StageFunc{
				StageName: "promote",
				Fn: func(ctx context.Context, run *pkg.Run) error {
					prom, err := executor.Promote(ctx, run.Context, run.Version)
					if err != nil {
						return err
					}
					if prom.State == exec.PushedState {
						run.Image = fmt.Sprintf("%s:%s", viper.GetString("docker.repository"), run.Version)
					}
					return nil
				},
			},
			pkg.StageFunc{
				StageName: "deploy",
				Fn:        gate.Run,
			},
		)

		run := &pkg.Run{Context: rc}

		log.Info().
			Str("run_id", rc.ID).
			Str("branch", rc.Branch).
			Str("commit", rc.Commit).
			Bool("pull_request", rc.IsPullRequest()).
			Msg("pipeline starting")

		return pipeline.Run(cmd.Context(), run)
	},
}

// newGate wires the deploy collaborators that are configured for this
// environment. The returned closer releases the notification connection.
func newGate(cfg pkg.Config, runner proc.Runner, sourceRoot string) (*deploy.Gate, func(), error) {
	var actions []deploy.Action
	closeGate := func() {}

	if script := viper.GetString("deploy.script"); script != "" {
		actions = append(actions, deploy.NewScriptAction(runner, viper.GetString("deploy.dir"), script))
	}

	if cfg.Store.Present() {
		docRoot := filepath.Join(sourceRoot, viper.GetString("doc_dir"), "html")
		docs, err := deploy.NewDocsAction(cfg.Store, docRoot)
		if err != nil {
			return nil, nil, err
		}
		actions = append(actions, docs)
	}

	if cfg.Nats.Url != "" {
		nc, err := cfg.ConnectNats("siriusci")
		if err != nil {
			return nil, nil, fmt.Errorf("unable to connect to notification cluster: %w", err)
		}
		closeGate = nc.Close
		actions = append(actions, deploy.NewNotifyAction(nc, viper.GetString("notify.subject")))
	}

	return deploy.NewGate(viper.GetString("release_branch"), actions...), closeGate, nil
}

func init() {
	rootCmd.AddCommand(runCmd)
}

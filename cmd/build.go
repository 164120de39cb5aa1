package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hlysunnaram/sirius-ci/build"
	"github.com/hlysunnaram/sirius-ci/pkg"
	"github.com/hlysunnaram/sirius-ci/proc"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "build, test and install the product natively",
	Long: `Runs the build executor against the local toolchain: configure, the
gating test-target build, the default build, install and documentation
relocation. Used on the Windows path after 'siriusci toolchain'.`,
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

		version := pkg.ResolveVersion(cmd.Context(), runner, sourceRoot)
		log.Info().Str("version", version).Str("commit", rc.Commit).Msg("starting native build")

		executor := build.NewExecutor(runner, build.Options{
			SourceRoot: sourceRoot,
			ScratchDir: filepath.Join(sourceRoot, ".build-"+rc.ID),
			InstallDir: viper.GetString("install_dir"),
			DocDir:     filepath.Join(sourceRoot, viper.GetString("doc_dir")),
			Version:    version,
			Commit:     rc.Commit,
			Jobs:       viper.GetInt("jobs"),
			TestTarget: viper.GetString("test_target"),
		})

		return executor.Run(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
}

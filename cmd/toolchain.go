package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hlysunnaram/sirius-ci/proc"
	"github.com/hlysunnaram/sirius-ci/toolchain"
)

var toolchainCmd = &cobra.Command{
	Use:   "toolchain",
	Short: "pin and bootstrap the native dependency toolchain",
	Long: `Checks out the maintained vcpkg fork, overrides the target triplet's
build policy with the repository's release-only override, bootstraps the
dependency manager and installs the pinned native dependencies.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		runner := proc.NewRunner()

		preparer := toolchain.NewPreparer(runner, toolchain.Options{
			Dir:        viper.GetString("toolchain.dir"),
			ForkURL:    viper.GetString("toolchain.fork_url"),
			Remote:     viper.GetString("toolchain.remote"),
			FixBranch:  viper.GetString("toolchain.fix_branch"),
			Triplet:    viper.GetString("toolchain.triplet"),
			OverlayDir: viper.GetString("toolchain.overlay_dir"),
		})

		return preparer.Prepare(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(toolchainCmd)
}

/*
Package cmd contains the command line interface for the siriusci
orchestrator.
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "siriusci",
	Short: "build-and-release orchestration for SIRIUS",
	Long: `siriusci drives the SIRIUS build-and-release pipeline: it resolves a
canonical version from version-control history, runs the native build inside
an isolated environment, promotes the resulting container image and gates
publish actions by trigger context.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := zerolog.ParseLevel(viper.GetString("log_level"))
		if err != nil {
			level = zerolog.InfoLevel
		}
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level)
	},
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.siriusci.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level")

	if err := viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level")); err != nil {
		log.Panic().Err(err).Msg("failed to bind flags")
	}

	viper.SetDefault("source_root", ".")
	viper.SetDefault("install_dir", "/opt/sirius")
	viper.SetDefault("doc_dir", "docs")
	viper.SetDefault("jobs", 4)
	viper.SetDefault("test_target", "sirius-tests")
	viper.SetDefault("release_branch", "master")

	viper.SetDefault("docker.image", "sirius/build-env:latest")
	viper.SetDefault("docker.repository", "sirius/sirius")
	viper.SetDefault("docker.latest_alias", "sirius/sirius:latest")
	viper.SetDefault("docker.bin_dir", "/opt/sirius/bin")

	viper.SetDefault("toolchain.dir", `C:\vcpkg`)
	viper.SetDefault("toolchain.fork_url", "https://github.com/hlysunnaram/vcpkg")
	viper.SetDefault("toolchain.overlay_dir", "ci/triplets")

	viper.SetDefault("deploy.dir", ".")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".siriusci" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".siriusci")
	}

	viper.SetEnvPrefix("SIRIUSCI")
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

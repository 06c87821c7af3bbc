package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/anams/page-server/pkg/config"
)

var (
	cfgFile string
	v       *viper.Viper
)

var rootCmd = &cobra.Command{
	Use:   "page-server",
	Short: "Serve a fixed set of static HTML documents",
	Long: `page-server resolves document IDs to HTML assets and serves them
through fixed route aliases, a sidebar selector and a small JSON API.

Relative asset and model directories are resolved against the directory
of the executable, not the working directory.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")

	v = config.InitViper("page-server")
	config.BindFlags(rootCmd, v)

	rootCmd.PersistentFlags().String("models-dir", "", "Directory holding the classifier model files")
	v.BindPFlag("models.dir", rootCmd.PersistentFlags().Lookup("models-dir"))
}

func initConfig() {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	}
}

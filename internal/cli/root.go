// Package cli provides the command-line client for the gitseek API.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	applicationName = "gitseek"
	version         = "1.0.0"
)

var (
	cfgFile      string
	outputFormat string
	profileName  string
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   applicationName,
	Short: "gitseek - GitHub repository discovery from the command line",
	Long: `gitseek is a command-line client for the gitseek API server.

It searches GitHub repositories with language and freshness filters, tracks
the repositories you open, and manages your session with the server.`,
	Version: version,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.gitseek.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "output format (table, json, yaml, csv)")
	rootCmd.PersistentFlags().StringVarP(&profileName, "profile", "p", "", "configuration profile to use")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("profile", rootCmd.PersistentFlags().Lookup("profile"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".gitseek")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
		}
	}
}

// getConfigPath returns the path to the configuration file
func getConfigPath() (string, error) {
	if cfgFile != "" {
		absPath, err := filepath.Abs(cfgFile)
		if err != nil {
			return "", fmt.Errorf("failed to resolve absolute path for config file: %w", err)
		}
		return absPath, nil
	}

	home, err := os.UserHomeDir()
	if err == nil {
		return filepath.Join(home, ".gitseek.yaml"), nil
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine config directory: both UserHomeDir and UserConfigDir failed")
	}

	return filepath.Join(configDir, ".gitseek.yaml"), nil
}

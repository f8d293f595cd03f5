package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"canvasdigest/internal/utils"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "canvasdigest",
	Short: "Periodic deadline digests for Canvas LMS.",
	Long: `canvasdigest pulls your courses, assignments, announcements, to-do items
and calendar events from the Canvas API, classifies upcoming deadlines by
urgency, and emails you a morning digest or an evening reminder.

Intended to run unattended from cron or a CI schedule.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.canvasdigest.yaml)")
	rootCmd.PersistentFlags().StringP("loglevel", "l", "info", "Set log level. Available: debug, info, warn, error, fatal")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".canvasdigest")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; create it with defaults.
			home, _ := homedir.Dir()
			configPath := home + "/.canvasdigest.yaml"
			if err := viper.SafeWriteConfigAs(configPath); err != nil {
				fmt.Printf("Error creating config file: %s", err)
			}
		}
	}

	// Set default empty values for all keys
	viper.SetDefault("canvas.base_url", "https://canvas.instructure.com/api/v1")
	viper.SetDefault("canvas.token", "")
	viper.SetDefault("email.sendgrid_key", "")
	viper.SetDefault("email.from", "")
	viper.SetDefault("email.from_name", "Canvas Digest")
	viper.SetDefault("email.recipients", []string{})
	viper.SetDefault("digest.mode", "")
	viper.SetDefault("digest.timezone", "America/New_York")
	viper.SetDefault("digest.state_db", "canvasdigest.sqlite")
	viper.SetDefault("digest.high_stakes_points", 10)
	viper.SetDefault("digest.truncate_length", 150)

	// Init log library
	levelString, _ := rootCmd.PersistentFlags().GetString("loglevel")
	utils.SetLogLevel(levelString)
}

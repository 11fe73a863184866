package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matt-g-everett/ledseq/stream"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "ledseq",
	Short: "Sequential LED animation player",
	Long: `ledseq plays LED animations one after another and streams the frames
to an ledrx device over MQTT. Animations can be queued over MQTT, HTTP or
on a cron timetable.`,
	SilenceUsage: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Stream animations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := stream.LoadConfig(configPath)
		if err != nil {
			return err
		}
		return newApp(cfg, configPath).run(cmd.Context())
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := stream.LoadConfig(configPath)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d animations, %d in playlist, %d schedules\n",
			configPath, len(cfg.Animations), len(cfg.Playlist.Animations), len(cfg.Schedules))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "YAML config file.")
	rootCmd.AddCommand(runCmd, checkCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

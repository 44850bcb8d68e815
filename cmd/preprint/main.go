package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"preprint/internal/commands"
	"preprint/internal/output"
	"preprint/internal/tui"
)

var jsonFlag bool

var rootCmd = &cobra.Command{
	Use:   "preprint",
	Short: "Manage the Slic3r slicing profiles of a print host",
	Long:  "A CLI and terminal UI to list, import, remove and select the Slic3r slicing profiles of a print host",
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonFlag, "json", false, "Output in JSON format")

	rootCmd.AddCommand(commands.ProfileCmd)
	rootCmd.AddCommand(commands.TestPathCmd)
	rootCmd.AddCommand(commands.ServeCmd)
	rootCmd.AddCommand(commands.WatchCmd)
	rootCmd.AddCommand(commands.MCPCmd)
	rootCmd.AddCommand(commands.ConfigCmd)
	rootCmd.AddCommand(commands.VersionCmd)

	rootCmd.Run = func(cmd *cobra.Command, args []string) {
		output.JSONMode = jsonFlag

		if jsonFlag || !term.IsTerminal(int(os.Stdin.Fd())) {
			commands.RunProfileList("id", 1, true)
			return
		}

		if err := tui.Run(commands.Version); err != nil {
			os.Exit(1)
		}
	}
}

func main() {
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		output.JSONMode = jsonFlag
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

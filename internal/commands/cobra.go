package commands

import (
	"github.com/spf13/cobra"
)

// ProfileCmd represents the profile parent command
var ProfileCmd = &cobra.Command{
	Use:     "profile",
	Aliases: []string{"pf"},
	Short:   "Manage slicing profiles",
	Long:    "List, import, remove or promote the slicing profiles stored on the host",
}

// ProfileListCmd represents the profile list command
var ProfileListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List slicing profiles",
	Long:    "List the slicing profiles of the host, five per page",
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		sortBy, _ := cmd.Flags().GetString("sort")
		page, _ := cmd.Flags().GetInt("page")
		all, _ := cmd.Flags().GetBool("all")
		RunProfileList(sortBy, page, all)
	},
}

// ProfileImportCmd represents the profile import command
var ProfileImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a slicing profile",
	Long:  "Upload a Slic3r profile file. Name, display name and description default to values derived from the file name",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		opts := importOptions{}
		if cmd.Flags().Changed("name") {
			v, _ := cmd.Flags().GetString("name")
			opts.name = &v
		}
		if cmd.Flags().Changed("display-name") {
			v, _ := cmd.Flags().GetString("display-name")
			opts.displayName = &v
		}
		if cmd.Flags().Changed("description") {
			v, _ := cmd.Flags().GetString("description")
			opts.description = &v
		}
		noOverwrite, _ := cmd.Flags().GetBool("no-overwrite")
		opts.allowOverwrite = !noOverwrite
		RunProfileImport(args[0], opts)
	},
}

// ProfileRemoveCmd represents the profile remove command
var ProfileRemoveCmd = &cobra.Command{
	Use:               "remove <key>",
	Aliases:           []string{"rm"},
	Short:             "Remove a slicing profile",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeProfileKeys,
	Run: func(cmd *cobra.Command, args []string) {
		yes, _ := cmd.Flags().GetBool("yes")
		RunProfileRemove(args[0], yes)
	},
}

// ProfileDefaultCmd represents the profile default command
var ProfileDefaultCmd = &cobra.Command{
	Use:               "default <key>",
	Short:             "Make a slicing profile the default",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeProfileKeys,
	Run: func(cmd *cobra.Command, args []string) {
		RunProfileDefault(args[0])
	},
}

// TestPathCmd represents the test-path command
var TestPathCmd = &cobra.Command{
	Use:   "test-path [path]",
	Short: "Check the Slic3r executable on the host",
	Long:  "Check that a path on the host exists, is a file and is executable. Without an argument the configured slic3rEngine is tested",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := ""
		if len(args) > 0 {
			path = args[0]
		}
		RunTestPath(path)
	},
}

// ServeCmd represents the serve command
var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the standalone profile service",
	Long:  "Serve the slicing profile API from a local profile folder",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		addr, _ := cmd.Flags().GetString("addr")
		dir, _ := cmd.Flags().GetString("dir")
		RunServe(addr, dir)
	},
}

// MCPCmd represents the mcp command
var MCPCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the MCP server over stdio",
	Long:  "Expose the slicing profile actions as MCP tools on stdin/stdout",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		RunMCP()
	},
}

// WatchCmd represents the watch command
var WatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow slicing profile changes on the host",
	Long:  "Print profile changes as they happen and forward them to desktop notifications, a webhook or a hook script",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		opts := watchOptions{}
		opts.desktop, _ = cmd.Flags().GetBool("desktop")
		opts.webhookURL, _ = cmd.Flags().GetString("webhook")
		opts.webhookFormat, _ = cmd.Flags().GetString("webhook-format")
		opts.webhookTemplate, _ = cmd.Flags().GetString("webhook-template")
		opts.hook, _ = cmd.Flags().GetString("hook")
		RunWatch(opts)
	},
}

// ConfigCmd represents the config parent command
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  "Read and change values in the preprint config file",
}

// ConfigGetCmd represents the config get command
var ConfigGetCmd = &cobra.Command{
	Use:               "get [key]",
	Short:             "Show configuration values",
	Args:              cobra.MaximumNArgs(1),
	ValidArgsFunction: completeConfigKeys,
	Run: func(cmd *cobra.Command, args []string) {
		RunConfigGet(args)
	},
}

// ConfigSetCmd represents the config set command
var ConfigSetCmd = &cobra.Command{
	Use:               "set <key> <value>",
	Short:             "Set a configuration value",
	Args:              cobra.ExactArgs(2),
	ValidArgsFunction: completeConfigKeys,
	Run: func(cmd *cobra.Command, args []string) {
		RunConfigSet(args[0], args[1])
	},
}

// VersionCmd represents the version command
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show preprint version",
	Run: func(cmd *cobra.Command, args []string) {
		RunVersion()
	},
}

func init() {
	ProfileListCmd.Flags().String("sort", "id", "Sort order: id or name")
	ProfileListCmd.Flags().Int("page", 1, "Page to show")
	ProfileListCmd.Flags().Bool("all", false, "Show all profiles instead of one page")

	ProfileImportCmd.Flags().String("name", "", "Profile identifier (default: sanitized file name)")
	ProfileImportCmd.Flags().String("display-name", "", "Display name (default: file name without extension)")
	ProfileImportCmd.Flags().String("description", "", "Description (default: import date)")
	ProfileImportCmd.Flags().Bool("no-overwrite", false, "Fail if a profile with the same identifier exists")

	ProfileRemoveCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")

	ServeCmd.Flags().String("addr", "", "Listen address (default: bind from config)")
	ServeCmd.Flags().String("dir", "", "Profile folder (default: profileDir from config)")

	WatchCmd.Flags().Bool("desktop", false, "Show a desktop notification for each change")
	WatchCmd.Flags().String("webhook", "", "Post each change to this webhook URL")
	WatchCmd.Flags().String("webhook-format", "slack", "Webhook body format: slack, discord or custom")
	WatchCmd.Flags().String("webhook-template", "", "JSON body template for the custom format")
	WatchCmd.Flags().String("hook", "", "Run this script for each change, with a JSON payload on stdin")

	ProfileCmd.AddCommand(ProfileListCmd, ProfileImportCmd, ProfileRemoveCmd, ProfileDefaultCmd)
	ConfigCmd.AddCommand(ConfigGetCmd, ConfigSetCmd)
}

func completeConfigKeys(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return configKeys(), cobra.ShellCompDirectiveNoFileComp
}

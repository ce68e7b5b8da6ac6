package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/muurk/routerctl/internal/config"
	"github.com/muurk/routerctl/internal/ui"
)

var profileNickname string

func init() {
	profileAddCmd.Flags().StringVar(&profileNickname, "nickname", "", "Display name for the profile")

	profileCmd.AddCommand(profileAddCmd)
	profileCmd.AddCommand(profileListCmd)
	profileCmd.AddCommand(profileRemoveCmd)
	profileCmd.AddCommand(profileDefaultCmd)
	rootCmd.AddCommand(profileCmd)
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage saved router profiles",
	Long: `Manage named router profiles in the configuration file.

A profile stores the host, port, username and session ID of a router.
Passwords are never stored. The first profile added becomes the default
and is used whenever --host and --profile are not given.`,
}

var profileAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add or replace a router profile",
	Example: `  routerctl profile add home --host 192.168.1.1
  routerctl profile add office --host routerlogin.net --port 80 --user admin`,
	Args: cobra.ExactArgs(1),
	RunE: runProfileAdd,
}

func runProfileAdd(cmd *cobra.Command, args []string) error {
	registry, err := config.LoadRegistry()
	if err != nil {
		return err
	}

	p := &config.Profile{
		Host:      routerHost,
		Port:      routerPort,
		Username:  routerUser,
		SessionID: sessionID,
		Nickname:  profileNickname,
	}
	if p.Host == "" {
		return fmt.Errorf("--host is required")
	}

	if err := registry.SetProfile(args[0], p); err != nil {
		return err
	}
	if err := registry.Save(); err != nil {
		return err
	}

	ui.NewPrinter(cmd.OutOrStdout()).PrintSuccess("Profile saved",
		ui.Detail{Key: "Name", Value: args[0]},
		ui.Detail{Key: "Host", Value: p.Host},
	)
	return nil
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved router profiles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := config.LoadRegistry()
		if err != nil {
			return err
		}

		if outputFormat == formatJSON {
			return writeJSON(cmd.OutOrStdout(), registry.Profiles)
		}

		out := ui.NewPrinter(cmd.OutOrStdout())
		names := registry.ProfileNames()
		if len(names) == 0 {
			out.Println("No profiles saved. Add one with 'routerctl profile add <name> --host <host>'.")
			return nil
		}

		defaultName, _ := registry.DefaultProfile()
		for _, name := range names {
			p := registry.Profiles[name]

			marker := " "
			if name == defaultName {
				marker = "*"
			}
			port := "default"
			if p.Port != 0 {
				port = strconv.Itoa(p.Port)
			}

			line := fmt.Sprintf("%s %-12s %s (port %s)", marker, name, p.Host, port)
			if p.Nickname != "" {
				line += "  " + p.Nickname
			}
			if p.LastModel != "" {
				line += ui.MutedStyle.Render("  " + p.LastModel)
			}
			if !p.LastSeen.IsZero() {
				line += ui.MutedStyle.Render("  last seen " + p.LastSeen.Format("2006-01-02 15:04"))
			}
			out.Println(line)
		}
		return nil
	},
}

var profileRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a router profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := config.LoadRegistry()
		if err != nil {
			return err
		}
		if err := registry.RemoveProfile(args[0]); err != nil {
			return err
		}
		if err := registry.Save(); err != nil {
			return err
		}
		ui.NewPrinter(cmd.OutOrStdout()).Println("Removed profile " + args[0])
		return nil
	},
}

var profileDefaultCmd = &cobra.Command{
	Use:   "default <name>",
	Short: "Set the default router profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := config.LoadRegistry()
		if err != nil {
			return err
		}
		if err := registry.SetDefault(args[0]); err != nil {
			return err
		}
		if err := registry.Save(); err != nil {
			return err
		}
		ui.NewPrinter(cmd.OutOrStdout()).Println("Default profile is now " + args[0])
		return nil
	},
}

package cli

import (
	"github.com/spf13/cobra"
)

func newBoardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "board",
		Short: "Show the board layout",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Board

			if err := client.Get("/api/v1/board", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newAvatarsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "avatars",
		Short: "List the avatars players can pick",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result AvatarList

			if err := client.Get("/api/v1/avatars", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newRosterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "roster",
		Short: "Show every player's position",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Roster

			if err := client.Get("/api/v1/roster", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

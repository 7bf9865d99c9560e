package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newPositionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "position",
		Short: "Show your position",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Position

			if err := client.Get("/api/v1/positions/me", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.AddCommand(newPositionSetCmd())

	return cmd
}

func newPositionSetCmd() *cobra.Command {
	var avatarID, spaceID int

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Overwrite your avatar and space",
		Long: `Overwrite your stored avatar and space.

Use this to retry a move whose position write failed: the move result
reports position_saved=false along with the space you reached.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := map[string]int{
				"avatar_id": avatarID,
				"space_id":  spaceID,
			}
			var result Position

			if err := client.Put("/api/v1/positions/me", req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&avatarID, "avatar", 0, "Avatar id (required)")
	cmd.Flags().IntVar(&spaceID, "space", 0, "Space id (required)")
	_ = cmd.MarkFlagRequired("avatar")
	_ = cmd.MarkFlagRequired("space")

	return cmd
}

func newAvatarCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "avatar <id>",
		Short: "Select your avatar",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid avatar id: %s", args[0])
			}

			var result Position

			if err := client.Post("/api/v1/positions/me/avatar", map[string]int{"avatar_id": id}, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newMoveCmd() *cobra.Command {
	var roll int

	cmd := &cobra.Command{
		Use:   "move",
		Short: "Roll the die and move",
		Long: `Roll the die and move forward.

Without --roll the server rolls for you. Moves past the last space stop on it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var body any
			if cmd.Flags().Changed("roll") {
				if roll < 1 || roll > 6 {
					return fmt.Errorf("roll must be between 1 and 6")
				}
				body = map[string]int{"roll": roll}
			}
			var result MoveResult

			if err := client.Post("/api/v1/moves", body, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().IntVar(&roll, "roll", 0, "Die value 1-6 (default: server rolls)")

	return cmd
}

func newClaimCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "claim <space>",
		Short: "Claim the prize on the space you stand on",
		Long: `Claim the prize on the space you stand on.

Use this to retry a move whose award failed. Claiming twice is harmless.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			space, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid space: %s", args[0])
			}

			var result ClaimResult

			if err := client.Post("/api/v1/prizes/claim", map[string]int{"space_id": space}, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

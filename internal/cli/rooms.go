package cli

import (
	"github.com/spf13/cobra"
)

// RoomResult is one room in the rooms listing
type RoomResult struct {
	Name     string `json:"name"`
	GameType string `json:"game_type"`
	Players  int    `json:"players"`
}

func newRoomsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rooms",
		Short: "List rooms and their player counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []RoomResult

			if err := client.Get("/api/rooms", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

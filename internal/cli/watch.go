package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

// watchFrame is the outbound join request sent after connecting
type watchFrame struct {
	ID    int64  `json:"id"`
	Event string `json:"event"`
	Data  any    `json:"data"`
}

func newWatchCmd() *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "watch <room>",
		Short: "Join a room over the socket gateway and print its events",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			room := args[0]

			if err := client.Login(username); err != nil {
				return err
			}
			cookie := client.SessionCookie()
			if cookie == nil {
				return fmt.Errorf("no session cookie after login")
			}

			socketURL, err := client.SocketURL()
			if err != nil {
				return err
			}

			header := http.Header{}
			header.Set("Cookie", cookie.String())

			conn, resp, err := websocket.DefaultDialer.Dial(socketURL, header)
			if err != nil {
				if resp != nil {
					return fmt.Errorf("socket dial failed: HTTP %d", resp.StatusCode)
				}
				return fmt.Errorf("socket dial failed: %w", err)
			}
			defer func() { _ = conn.Close() }()

			join := watchFrame{
				ID:    1,
				Event: "room:load",
				Data:  map[string]string{"room": room},
			}
			if err := conn.WriteJSON(join); err != nil {
				return fmt.Errorf("failed to send join: %w", err)
			}

			fmt.Printf("Watching room %q as %q. Ctrl-C to stop.\n", room, username)

			interrupt := make(chan os.Signal, 1)
			signal.Notify(interrupt, os.Interrupt)

			frames := make(chan []byte)
			errs := make(chan error, 1)
			go func() {
				for {
					_, msg, err := conn.ReadMessage()
					if err != nil {
						errs <- err
						return
					}
					frames <- msg
				}
			}()

			for {
				select {
				case msg := <-frames:
					printFrame(msg)
				case err := <-errs:
					return fmt.Errorf("connection closed: %w", err)
				case <-interrupt:
					_ = conn.WriteMessage(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
					return nil
				}
			}
		},
	}

	cmd.Flags().StringVarP(&username, "user", "u", "", "Username to join as (required)")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func printFrame(msg []byte) {
	var pretty map[string]any
	if err := json.Unmarshal(msg, &pretty); err != nil {
		fmt.Println(string(msg))
		return
	}
	data, _ := json.MarshalIndent(pretty, "", "  ")
	fmt.Println(string(data))
}

package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/spf13/cobra"
)

func newEventsCmd() *cobra.Command {
	var jsonOutput, useWebsocket bool

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Follow the roster in real time",
		Long: `Connect to the roster stream and print every update.

Events include:
  - connected: The stream is open
  - roster: Full roster snapshot, sent on connect and after every change

With --ws the websocket stream is used instead of server-sent events.

Press Ctrl+C to disconnect.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if useWebsocket {
				return streamWebsocket(ctx, jsonOutput)
			}
			return streamEvents(ctx, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output events as JSON lines")
	cmd.Flags().BoolVar(&useWebsocket, "ws", false, "Use the websocket stream")

	return cmd
}

// SSEEvent represents a parsed SSE event
type SSEEvent struct {
	Time  time.Time `json:"time"`
	Event string    `json:"event"`
	Data  string    `json:"data"`
}

func streamEvents(ctx context.Context, jsonOutput bool) error {
	url := strings.TrimSuffix(cfg.ServerURL, "/") + "/api/v1/roster/events"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	if cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+cfg.Token)
	}

	httpClient := &http.Client{
		Timeout: 0, // No timeout for SSE
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if !jsonOutput {
		fmt.Println("Connected to roster stream")
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var currentEvent string
	var dataLines []string

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, "event: "):
			currentEvent = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			dataLines = append(dataLines, strings.TrimPrefix(line, "data: "))
		case line == "":
			if currentEvent != "" {
				printEvent(currentEvent, strings.Join(dataLines, "\n"), jsonOutput)
			}
			currentEvent = ""
			dataLines = nil
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("stream error: %w", err)
	}

	if !jsonOutput {
		fmt.Println("Disconnected")
	}
	return nil
}

// wsMessage mirrors the websocket envelope
type wsMessage struct {
	Type   string `json:"type"`
	Roster Roster `json:"roster"`
}

func streamWebsocket(ctx context.Context, jsonOutput bool) error {
	url := "ws" + strings.TrimPrefix(strings.TrimSuffix(cfg.ServerURL, "/"), "http") + "/api/v1/roster/ws"

	opts := &websocket.DialOptions{HTTPHeader: http.Header{}}
	if cfg.Token != "" {
		opts.HTTPHeader.Set("Authorization", "Bearer "+cfg.Token)
	}

	c, _, err := websocket.Dial(ctx, url, opts)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = c.CloseNow() }()
	c.SetReadLimit(1 << 20)

	if !jsonOutput {
		fmt.Println("Connected to roster websocket")
	}

	for {
		var msg wsMessage
		if err := wsjson.Read(ctx, c, &msg); err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				_ = c.Close(websocket.StatusNormalClosure, "")
				if !jsonOutput {
					fmt.Println("\nDisconnected")
				}
				return nil
			}
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				if !jsonOutput {
					fmt.Println("Disconnected")
				}
				return nil
			}
			return fmt.Errorf("stream error: %w", err)
		}

		data, _ := json.Marshal(msg.Roster)
		printEvent(msg.Type, string(data), jsonOutput)
	}
}

func printEvent(event, data string, jsonOutput bool) {
	now := time.Now()

	if jsonOutput {
		evt := SSEEvent{
			Time:  now,
			Event: event,
			Data:  data,
		}
		jsonData, _ := json.Marshal(evt)
		fmt.Println(string(jsonData))
		return
	}

	timestamp := now.Format("2006-01-02 15:04:05")
	if event == "roster" {
		var r Roster
		if err := json.Unmarshal([]byte(data), &r); err == nil {
			fmt.Printf("[%s] roster:\n", timestamp)
			NewOutput("text").printRoster(r)
			return
		}
	}

	displayData := data
	if len(displayData) > 100 {
		displayData = displayData[:100] + "..."
	}
	displayData = strings.ReplaceAll(displayData, "\n", " ")
	fmt.Printf("[%s] %s: %s\n", timestamp, event, displayData)
}

package e2e_test

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/quickquack/internal/api"
	"github.com/mcoot/quickquack/internal/factory"
	"github.com/mcoot/quickquack/internal/testutil"
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath string
	serverURL  string
	tokenFile  string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	// Find project root (where go.mod is)
	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(projectRoot, "bin", "qqgame-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/qqgame")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
		tokenFile:  filepath.Join(t.TempDir(), "token"),
	}
}

// withTokenFile returns a runner for a second player sharing the binary
func (r *cliRunner) withTokenFile(path string) *cliRunner {
	return &cliRunner{
		binaryPath: r.binaryPath,
		serverURL:  r.serverURL,
		tokenFile:  path,
	}
}

func (r *cliRunner) args(args ...string) []string {
	return append([]string{
		"--server", r.serverURL,
		"--token-file", r.tokenFile,
		"--output", "json",
	}, args...)
}

func (r *cliRunner) run(args ...string) (string, error) {
	cmd := exec.Command(r.binaryPath, r.args(args...)...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// testServer manages a real HTTP server for e2e tests
type testServer struct {
	addr     string
	app      *factory.TestApp
	shutdown func()
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	app := factory.NewTestApp()
	ctx, cancel := context.WithCancel(context.Background())
	app.Start(ctx)

	router := api.NewRouter(api.RouterConfig{
		Logger:         testutil.NopLogger(),
		AuthService:    app.AuthService,
		GameController: app.GameController,
		RosterRelay:    app.RosterRelay,
		Broadcaster:    app.Broadcaster,
		Storage:        app.Storage,
	})

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	serverURL := "http://" + addr
	waitForServer(t, serverURL+"/api/v1/health")

	return &testServer{
		addr: serverURL,
		app:  app,
		shutdown: func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			// Stopping the hub ends open event streams
			cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				_ = server.Close()
			}
			_ = app.Close()
		},
	}
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

// Response types for JSON parsing
type authResponse struct {
	Player struct {
		ID          string `json:"id"`
		DisplayName string `json:"display_name"`
	} `json:"player"`
	SessionToken string `json:"session_token"`
}

type avatarResponse struct {
	ID    int    `json:"id"`
	Glyph string `json:"glyph"`
	Name  string `json:"name"`
}

type positionResponse struct {
	PlayerID string         `json:"player_id"`
	Avatar   avatarResponse `json:"avatar"`
	SpaceID  int            `json:"space_id"`
}

type rosterResponse struct {
	Players []struct {
		PlayerID    string         `json:"player_id"`
		DisplayName string         `json:"display_name"`
		Avatar      avatarResponse `json:"avatar"`
		SpaceID     int            `json:"space_id"`
	} `json:"players"`
}

type moveResponse struct {
	From          int    `json:"from"`
	Roll          int    `json:"roll"`
	To            int    `json:"to"`
	Award         string `json:"award"`
	ReachedFinal  bool   `json:"reached_final"`
	PositionSaved bool   `json:"position_saved"`
}

type claimResponse struct {
	SpaceID int    `json:"space_id"`
	Award   string `json:"award"`
}

type prizesResponse struct {
	Prizes []struct {
		SpaceID          int    `json:"space_id"`
		PrizeDescription string `json:"prize_description"`
	} `json:"prizes"`
}

type eventLine struct {
	Event string `json:"event"`
	Data  string `json:"data"`
}

func decode[T any](t *testing.T, output string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(output), &v), "output: %s", output)
	return v
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("health")
	require.NoError(t, err, "output: %s", output)

	resp := decode[struct {
		Status  string `json:"status"`
		Storage string `json:"storage"`
	}](t, output)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "ok", resp.Storage)
}

func TestCLI_PlayerCommands(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("player", "register", "--email", "alice@example.com", "--pass", "secret123", "--name", "Alice")
	require.NoError(t, err, "output: %s", output)
	registered := decode[authResponse](t, output)
	assert.Equal(t, "Alice", registered.Player.DisplayName)
	assert.NotEmpty(t, registered.SessionToken)

	// Token should be saved in the token file
	output, err = cli.run("player", "me")
	require.NoError(t, err, "output: %s", output)
	me := decode[struct {
		ID string `json:"id"`
	}](t, output)
	assert.Equal(t, registered.Player.ID, me.ID)

	output, err = cli.run("player", "logout")
	require.NoError(t, err, "output: %s", output)

	output, err = cli.run("player", "me")
	assert.Error(t, err)
	assert.Contains(t, output, "UNAUTHORIZED")

	output, err = cli.run("player", "login", "--email", "ALICE@example.com", "--pass", "secret123")
	require.NoError(t, err, "output: %s", output)
	assert.Equal(t, registered.Player.ID, decode[authResponse](t, output).Player.ID)

	output, err = cli.run("player", "register", "--email", "alice@example.com", "--pass", "x", "--name", "Again")
	assert.Error(t, err)
	assert.Contains(t, output, "EMAIL_EXISTS")
}

func TestCLI_GameFlow(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("player", "register", "--email", "bob@example.com", "--pass", "secret123", "--name", "Bob")
	require.NoError(t, err, "output: %s", output)

	output, err = cli.run("avatars")
	require.NoError(t, err, "output: %s", output)
	avatars := decode[struct {
		Avatars []avatarResponse `json:"avatars"`
	}](t, output)
	assert.Len(t, avatars.Avatars, 15)

	output, err = cli.run("avatar", "3")
	require.NoError(t, err, "output: %s", output)
	pos := decode[positionResponse](t, output)
	assert.Equal(t, 3, pos.Avatar.ID)
	assert.Equal(t, 1, pos.SpaceID)

	// 1 -> 5 -> 10 lands on a prize
	output, err = cli.run("move", "--roll", "4")
	require.NoError(t, err, "output: %s", output)
	move := decode[moveResponse](t, output)
	assert.Equal(t, 5, move.To)
	assert.True(t, move.PositionSaved)

	output, err = cli.run("move", "--roll", "5")
	require.NoError(t, err, "output: %s", output)
	move = decode[moveResponse](t, output)
	assert.Equal(t, 10, move.To)
	assert.Equal(t, "awarded", move.Award)

	// Claiming again is harmless
	output, err = cli.run("claim", "10")
	require.NoError(t, err, "output: %s", output)
	assert.Equal(t, "already_awarded", decode[claimResponse](t, output).Award)

	output, err = cli.run("player", "prizes")
	require.NoError(t, err, "output: %s", output)
	prizes := decode[prizesResponse](t, output)
	require.Len(t, prizes.Prizes, 1)
	assert.Equal(t, 10, prizes.Prizes[0].SpaceID)

	output, err = cli.run("position", "set", "--avatar", "3", "--space", "97")
	require.NoError(t, err, "output: %s", output)
	assert.Equal(t, 97, decode[positionResponse](t, output).SpaceID)

	output, err = cli.run("move", "--roll", "6")
	require.NoError(t, err, "output: %s", output)
	move = decode[moveResponse](t, output)
	assert.Equal(t, 100, move.To)
	assert.True(t, move.ReachedFinal)

	output, err = cli.run("roster")
	require.NoError(t, err, "output: %s", output)
	roster := decode[rosterResponse](t, output)
	require.Len(t, roster.Players, 1)
	assert.Equal(t, "Bob", roster.Players[0].DisplayName)
	assert.Equal(t, 100, roster.Players[0].SpaceID)

	output, err = cli.run("move", "--roll", "7")
	assert.Error(t, err)
	assert.Contains(t, output, "roll must be between 1 and 6")

	output, err = cli.run("move", "--roll", "0")
	assert.Error(t, err)
	assert.Contains(t, output, "roll must be between 1 and 6")
}

func TestCLI_EventsFollowRoster(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	watcher := newCLIRunner(t, ts.addr)
	mover := watcher.withTokenFile(filepath.Join(t.TempDir(), "token2"))

	output, err := mover.run("player", "register", "--email", "carol@example.com", "--pass", "secret123", "--name", "Carol")
	require.NoError(t, err, "output: %s", output)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, transport := range [][]string{{"events", "--json"}, {"events", "--json", "--ws"}} {
		t.Run(strings.Join(transport, " "), func(t *testing.T) {
			cmd := exec.CommandContext(ctx, watcher.binaryPath, watcher.args(transport...)...)
			stdout, err := cmd.StdoutPipe()
			require.NoError(t, err)
			require.NoError(t, cmd.Start())
			defer func() {
				_ = cmd.Process.Kill()
				_ = cmd.Wait()
			}()

			lines := make(chan eventLine, 16)
			go func() {
				defer close(lines)
				scanner := bufio.NewScanner(stdout)
				scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
				for scanner.Scan() {
					var ev eventLine
					if json.Unmarshal(scanner.Bytes(), &ev) == nil {
						lines <- ev
					}
				}
			}()

			// Wait for the opening roster snapshot before moving
			waitForEvent(t, lines, func(ev eventLine) bool { return ev.Event == "roster" })

			output, err := mover.run("move", "--roll", "2")
			require.NoError(t, err, "output: %s", output)
			want := decode[moveResponse](t, output).To

			waitForEvent(t, lines, func(ev eventLine) bool {
				if ev.Event != "roster" {
					return false
				}
				var r rosterResponse
				if json.Unmarshal([]byte(ev.Data), &r) != nil {
					return false
				}
				return len(r.Players) == 1 && r.Players[0].DisplayName == "Carol" && r.Players[0].SpaceID == want
			})
		})
	}
}

func waitForEvent(t *testing.T, lines <-chan eventLine, match func(eventLine) bool) {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-lines:
			require.True(t, ok, "event stream ended")
			if match(ev) {
				return
			}
		case <-timeout:
			t.Fatal("timed out waiting for event")
		}
	}
}

package e2e_test

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwalters/cardroom/internal/factory"
	"github.com/dwalters/cardroom/internal/seed"
	"github.com/dwalters/cardroom/internal/testutil"
	"github.com/dwalters/cardroom/internal/web"
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath string
	serverURL  string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	projectRoot := findProjectRoot(t)

	binaryPath := filepath.Join(projectRoot, "bin", "cardroom-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/cardroom")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
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

// startTestServer runs the fully wired application on a real listener
func startTestServer(t *testing.T) string {
	t.Helper()

	app := factory.NewTestApp()
	require.NoError(t, app.Seeder.Run(context.Background(), seed.DefaultConfig()))

	router := web.NewRouter(web.RouterConfig{
		Logger:   testutil.NopLogger(),
		Sessions: app.Sessions,
		Auth:     app.Auth,
		Registry: app.Registry,
		Storage:  app.Storage,
		Gateway:  app.Gateway,
	})

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	server := &http.Server{Handler: router}
	go func() {
		_ = server.Serve(listener)
	}()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	})

	serverURL := "http://" + listener.Addr().String()
	waitForServer(t, serverURL+"/healthz")
	return serverURL
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

func TestCLIHealth(t *testing.T) {
	serverURL := startTestServer(t)
	cli := newCLIRunner(t, serverURL)

	output, err := cli.run("health")
	require.NoError(t, err, "health failed: %s", output)

	var result struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &result))
	assert.Equal(t, "ok", result.Status)
}

func TestCLIRooms(t *testing.T) {
	serverURL := startTestServer(t)
	cli := newCLIRunner(t, serverURL)

	output, err := cli.run("rooms")
	require.NoError(t, err, "rooms failed: %s", output)

	var rooms []struct {
		Name     string `json:"name"`
		GameType string `json:"game_type"`
		Players  int    `json:"players"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &rooms))
	require.Len(t, rooms, 4)

	names := make([]string, 0, len(rooms))
	for _, room := range rooms {
		names = append(names, room.Name)
		assert.Equal(t, "golf", room.GameType)
		assert.Equal(t, 0, room.Players)
	}
	assert.Equal(t, []string{"babbage", "cerf", "dijkstra", "lovelace"}, names)
}

func TestCLIHealthUnreachableServer(t *testing.T) {
	cli := newCLIRunner(t, "http://127.0.0.1:1")

	output, err := cli.run("health")
	require.Error(t, err, "expected failure, got: %s", output)
}

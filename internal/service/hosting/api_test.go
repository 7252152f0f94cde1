package hosting

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/hostbr/deploybot/internal/workspace"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestKeyConfigured(t *testing.T) {
	for _, key := range []string{"", "   ", "short", "sua_api_key_square_cloud", "SQUARECLOUD_API_KEY"} {
		if KeyConfigured(key) {
			t.Fatalf("%q should not count as configured", key)
		}
	}
	if !KeyConfigured("real-api-key-1234567890") {
		t.Fatal("real key should count as configured")
	}
}

func TestNewSelectsImplementation(t *testing.T) {
	if _, ok := New("", discard()).(*SimulatedAPI); !ok {
		t.Fatal("missing key should select the simulator")
	}
	if _, ok := New("real-api-key-1234567890", discard()).(*SquareCloud); !ok {
		t.Fatal("configured key should select the real client")
	}
}

func TestSimulatedAPILifecycle(t *testing.T) {
	sim := NewSimulatedAPI(discard())
	ctx := context.Background()

	ws, err := workspace.New(t.TempDir())
	if err != nil {
		t.Fatalf("workspace: %v", err)
	}
	artifactPath, err := ws.Write("app.zip", []byte("zip"))
	if err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	manifestPath, err := ws.Write("squarecloud.app", []byte("DISPLAY_NAME=My Bot\nDESCRIPTION=demo\nMEMORY=512"))
	if err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	app, err := sim.CreateApp(ctx, artifactPath, manifestPath)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if app.Name != "My Bot" {
		t.Fatalf("name = %q, want manifest display name", app.Name)
	}
	if app.ID == "" || app.URL == "" {
		t.Fatalf("incomplete app: %+v", app)
	}

	apps, err := sim.ListApps(ctx)
	if err != nil || len(apps) != 1 {
		t.Fatalf("list = %v, %v", apps, err)
	}
	status, err := sim.AppStatus(ctx, app.ID)
	if err != nil || !status.Running {
		t.Fatalf("status = %+v, %v", status, err)
	}
	logs, err := sim.AppLogs(ctx, app.ID)
	if err != nil || len(logs.Lines) == 0 {
		t.Fatalf("logs = %+v, %v", logs, err)
	}
	if err := sim.RestartApp(ctx, app.ID); err != nil {
		t.Fatalf("restart: %v", err)
	}

	if err := sim.DeleteApp(ctx, app.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	apps, _ = sim.ListApps(ctx)
	if len(apps) != 0 {
		t.Fatalf("apps after delete = %v", apps)
	}
}

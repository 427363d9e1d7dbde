package internal

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/valter-silva-au/skillpulse/internal/cli"
	"github.com/valter-silva-au/skillpulse/internal/integration"
	"github.com/valter-silva-au/skillpulse/internal/observability"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, ".pulseconfig"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newTestApp(t *testing.T, dir string) *App {
	t.Helper()
	app, err := NewApp(dir)
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}
	t.Cleanup(func() { _ = app.Close() })
	return app
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	origDir, _ := os.Getwd()
	t.Cleanup(func() { _ = os.Chdir(origDir) })
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
}

func TestResolveBasePath_PulseHomeSet(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("PULSE_HOME", tmpDir)

	if got := ResolveBasePath(); got != tmpDir {
		t.Errorf("ResolveBasePath() = %q, want %q", got, tmpDir)
	}
}

func TestResolveBasePath_FindsConfigInParent(t *testing.T) {
	for _, name := range []string{".pulseconfig", ".pulseconfig.yaml"} {
		t.Run(name, func(t *testing.T) {
			tmpDir, err := filepath.EvalSymlinks(t.TempDir())
			if err != nil {
				t.Fatal(err)
			}
			subDir := filepath.Join(tmpDir, "sub", "nested")
			if err := os.MkdirAll(subDir, 0o755); err != nil {
				t.Fatal(err)
			}
			if err := os.WriteFile(filepath.Join(tmpDir, name), []byte("locale: en\n"), 0o644); err != nil {
				t.Fatal(err)
			}
			t.Setenv("PULSE_HOME", "")
			chdir(t, subDir)

			if got := ResolveBasePath(); got != tmpDir {
				t.Errorf("ResolveBasePath() = %q, want %q", got, tmpDir)
			}
		})
	}
}

func TestResolveBasePath_FallbackToCwd(t *testing.T) {
	tmpDir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Setenv("PULSE_HOME", "")
	chdir(t, tmpDir)

	if got := ResolveBasePath(); got != tmpDir {
		t.Errorf("ResolveBasePath() = %q, want %q", got, tmpDir)
	}
}

func TestNewApp_Defaults(t *testing.T) {
	tmpDir := t.TempDir()
	app := newTestApp(t, tmpDir)

	if app.BasePath != tmpDir {
		t.Errorf("app.BasePath = %q, want %q", app.BasePath, tmpDir)
	}
	if _, ok := app.Auth.(*integration.LocalAuthenticator); !ok {
		t.Errorf("expected local authenticator, got %T", app.Auth)
	}
	if app.DB == nil || app.TaskStore == nil || app.IDGen == nil {
		t.Error("expected task services to be wired")
	}
	if app.EventLog == nil || app.MetricsCalc == nil || app.AlertEngine == nil {
		t.Error("expected observability to be enabled by default")
	}
	if cli.DB != app.DB || cli.Auth != app.Auth || cli.PageLimit != 50 {
		t.Error("expected CLI package vars to be set")
	}
	if cli.ImportLocation == nil {
		t.Error("expected import location to be set")
	}
}

func TestNewApp_EndToEnd(t *testing.T) {
	tmpDir := t.TempDir()
	app := newTestApp(t, tmpDir)
	ctx := context.Background()

	if err := app.Auth.SignUp(ctx, "ana@example.com", "secret1"); err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if err := app.Auth.Login(ctx, "ana@example.com", "secret1"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := app.DB.AddTask(ctx, "Write report", "2026-01-06T10:00:00-03:00", "2026-01-06T11:00:00-03:00"); err != nil {
		t.Fatalf("AddTask: %v", err)
	}

	tasks, err := app.DB.LoadTasks(ctx, "")
	if err != nil {
		t.Fatalf("LoadTasks: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != "20260106001" || tasks[0].UserID != "ana@example.com" {
		t.Fatalf("unexpected tasks %+v", tasks)
	}

	if _, err := os.Stat(filepath.Join(tmpDir, EventLogFileName)); err != nil {
		t.Errorf("expected event log file: %v", err)
	}
	events, err := app.EventLog.Read(observability.EventFilter{Type: "task.created"})
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 {
		t.Errorf("expected 1 task.created event, got %d", len(events))
	}
}

func TestNewApp_InvalidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, "tasks:\n  page_limit: 0\n")

	_, err := NewApp(tmpDir)
	if err == nil {
		t.Fatal("expected error for invalid config")
	}
	if !strings.Contains(err.Error(), "page_limit") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNewApp_ObservabilityDisabled(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, "observability:\n  enabled: false\n")
	app := newTestApp(t, tmpDir)

	if app.EventLog != nil || app.MetricsCalc != nil || app.AlertEngine != nil {
		t.Error("expected observability to be disabled")
	}
	if cli.MetricsCalc != nil || cli.Logger != nil {
		t.Error("expected CLI observability vars to be nil")
	}
	if _, err := os.Stat(filepath.Join(tmpDir, EventLogFileName)); !os.IsNotExist(err) {
		t.Errorf("expected no event log file, got %v", err)
	}
}

func TestNewApp_OAuth2Provider(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, "auth:\n  provider: oauth2\n  oauth2:\n    client_id: pulse\n    token_url: http://127.0.0.1:1/token\n")
	app := newTestApp(t, tmpDir)

	if _, ok := app.Auth.(*integration.OAuthAuthenticator); !ok {
		t.Errorf("expected OAuth authenticator, got %T", app.Auth)
	}
}

func TestNewApp_RandomIDs(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, "tasks:\n  id_scheme: random\n")
	app := newTestApp(t, tmpDir)
	ctx := context.Background()

	if err := app.DB.AddTask(ctx, "Anonymous", "2026-01-06T10:00:00-03:00", "2026-01-06T11:00:00-03:00"); err != nil {
		t.Fatalf("AddTask: %v", err)
	}
	tasks, err := app.DB.LoadTasks(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 1 || len(tasks[0].ID) != 36 || tasks[0].UserID != "unknown" {
		t.Errorf("expected one UUID task for the unknown user, got %+v", tasks)
	}
}

// --- Adapter tests ---

func TestEventLogAdapter_Levels(t *testing.T) {
	log, err := observability.NewJSONLEventLog(filepath.Join(t.TempDir(), "events.jsonl"))
	if err != nil {
		t.Fatal(err)
	}
	defer log.Close()
	adapter := &eventLogAdapter{log: log}

	if err := adapter.LogEvent("task.created", map[string]any{"id": "20260106001"}); err != nil {
		t.Fatal(err)
	}
	if err := adapter.LogEvent("task.failed", map[string]any{"op": "add", "error": "boom"}); err != nil {
		t.Fatal(err)
	}

	events, err := log.Read(observability.EventFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Level != observability.LevelInfo || events[1].Level != observability.LevelError {
		t.Errorf("expected INFO then ERROR, got %s then %s", events[0].Level, events[1].Level)
	}
	if events[1].Message != "task.failed" {
		t.Errorf("expected message task.failed, got %q", events[1].Message)
	}
}

package state

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"fxcss/config"
	"fxcss/css"
)

func testEnv(t *testing.T) *LocalEnv {
	t.Helper()
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	return &LocalEnv{
		Cfg:   cfg,
		Log:   zaptest.NewLogger(t),
		start: time.Now(),
	}
}

func TestContextWithEnv(t *testing.T) {
	env := EnvFromContext(ContextWithEnv(context.Background()))
	if env.start.IsZero() {
		t.Error("Environment start time not set")
	}
}

func TestEnvFromContext_Missing(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic when env not in context")
		}
	}()
	EnvFromContext(context.Background())
}

func TestLocalEnv_Uptime(t *testing.T) {
	env := &LocalEnv{start: time.Now()}
	time.Sleep(10 * time.Millisecond)
	if uptime := env.Uptime(); uptime < 10*time.Millisecond || uptime > time.Second {
		t.Errorf("Uptime() = %v", uptime)
	}
}

func TestLocalEnv_RedirectStdLog(t *testing.T) {
	env := &LocalEnv{
		Log: zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1))),
	}
	for i := range 3 {
		env.RedirectStdLog()
		if env.restoreStdLog == nil {
			t.Errorf("Iteration %d: restoreStdLog not set", i)
		}
		env.RestoreStdLog()
	}

	// no logger - no redirection and no panic
	env = &LocalEnv{}
	env.RedirectStdLog()
	if env.restoreStdLog != nil {
		t.Error("Expected restoreStdLog to remain nil")
	}
	env.RestoreStdLog()
}

func TestLocalEnv_NoConfig(t *testing.T) {
	env := &LocalEnv{}
	if _, err := env.NewLoader(); err == nil {
		t.Error("NewLoader() without configuration should fail")
	}
	if _, err := env.NewParser(nil); err == nil {
		t.Error("NewParser() without configuration should fail")
	}
}

func TestLocalEnv_NewParser(t *testing.T) {
	env := testEnv(t)
	env.Cfg.Parser.Origin = "user-agent"

	p, err := env.NewParser(nil)
	if err != nil {
		t.Fatalf("NewParser() error = %v", err)
	}
	sheet := p.Parse(context.Background(), ".a { -fx-opacity: 0.5; }")
	if sheet.Origin != css.OriginUserAgent {
		t.Errorf("Origin = %s, want user-agent", sheet.Origin)
	}

	env.Cfg.Parser.Origin = "browser"
	if _, err := env.NewParser(nil); err == nil {
		t.Error("NewParser() should reject unknown origin")
	}
}

func TestLocalEnv_SourcesInReport(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "base.css"), []byte(".base { -fx-opacity: 1; }"), 0644); err != nil {
		t.Fatal(err)
	}
	main := filepath.Join(dir, "Main Theme.css")
	if err := os.WriteFile(main, []byte("@import \"base.css\";\n.a { -fx-opacity: 0.5; }"), 0644); err != nil {
		t.Fatal(err)
	}

	env := testEnv(t)
	rc := config.ReporterConfig{Destination: filepath.Join(dir, "report.zip")}
	rpt, err := rc.Prepare()
	if err != nil {
		t.Fatal(err)
	}
	env.Rpt = rpt

	ldr, err := env.NewLoader()
	if err != nil {
		t.Fatalf("NewLoader() error = %v", err)
	}
	p, err := env.NewParser(ldr)
	if err != nil {
		t.Fatalf("NewParser() error = %v", err)
	}
	sheet, err := p.ParseURL(context.Background(), main)
	if err != nil {
		t.Fatalf("ParseURL() error = %v", err)
	}
	if len(sheet.Rules) != 2 {
		t.Errorf("got %d rules, want 2", len(sheet.Rules))
	}
	env.StoreText("errors.txt", "")
	if err := env.Rpt.Close(); err != nil {
		t.Fatal(err)
	}

	zr, err := zip.OpenReader(rpt.Name())
	if err != nil {
		t.Fatal(err)
	}
	defer zr.Close()
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	got := strings.Join(names, ",")
	for _, want := range []string{"source-001-main-theme.css", "source-002-base.css", "errors.txt"} {
		if !strings.Contains(got, want) {
			t.Errorf("report has no %s: %s", want, got)
		}
	}
}

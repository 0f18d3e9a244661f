package config

import (
	"os"
	"path/filepath"
	"testing"
)

// isolate points HOME and the working directory at fresh temp dirs so no
// real config file is picked up.
func isolate(t *testing.T) (home, cwd string) {
	t.Helper()
	home = t.TempDir()
	cwd = t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(cwd)
	return home, cwd
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadEmbeddedDefault(t *testing.T) {
	home, _ := isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.TickRate != 30 || cfg.QueueSize != 256 || cfg.LogLevel != "info" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if want := filepath.Join(home, ".stretch", "settings"); cfg.SaveDir != want {
		t.Errorf("SaveDir = %q, want %q", cfg.SaveDir, want)
	}
	if want := filepath.Join(home, ".stretch", "stretch.db"); cfg.DBPath != want {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, want)
	}
}

func TestLoadSearchOrder(t *testing.T) {
	home, cwd := isolate(t)

	writeFile(t, filepath.Join(cwd, "configs", "config.yaml"), "tick_rate: 20\n")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.TickRate != 20 {
		t.Errorf("local config: TickRate = %d, want 20", cfg.TickRate)
	}

	writeFile(t, filepath.Join(home, ".stretch", "config.yaml"), "tick_rate: 40\n")
	cfg, err = Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.TickRate != 40 {
		t.Errorf("user config should win over local: TickRate = %d", cfg.TickRate)
	}
	if cfg.QueueSize != 256 {
		t.Errorf("unset fields keep defaults: QueueSize = %d", cfg.QueueSize)
	}

	custom := filepath.Join(t.TempDir(), "custom.yaml")
	writeFile(t, custom, "tick_rate: 50\n")
	cfg, err = Load(custom)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.TickRate != 50 {
		t.Errorf("custom config should win: TickRate = %d", cfg.TickRate)
	}
}

func TestLoadSkipsMalformedUserConfig(t *testing.T) {
	home, cwd := isolate(t)

	writeFile(t, filepath.Join(home, ".stretch", "config.yaml"), "tick_rate: [oops\n")
	writeFile(t, filepath.Join(cwd, "configs", "config.yaml"), "tick_rate: 12\n")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.TickRate != 12 {
		t.Errorf("TickRate = %d, want 12 from local config", cfg.TickRate)
	}
}

func TestLoadCustomPathErrors(t *testing.T) {
	isolate(t)

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing custom config should fail")
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	writeFile(t, bad, "tick_rate: [oops\n")
	if _, err := Load(bad); err == nil {
		t.Error("malformed custom config should fail")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	isolate(t)

	dir := t.TempDir()
	t.Setenv("STRETCH_DATA_DIR", dir)
	t.Setenv("STRETCH_TICK_RATE", "90")
	t.Setenv("STRETCH_LOG_LEVEL", "debug")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.DataDir != dir || cfg.TickRate != 90 || cfg.LogLevel != "debug" {
		t.Errorf("env overrides not applied: %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		in        App
		wantTick  int
		wantQueue int
		wantErr   bool
	}{
		{"in range", App{TickRate: 60, QueueSize: 64, LogLevel: "info"}, 60, 64, false},
		{"clamps low", App{TickRate: 0, QueueSize: 1, LogLevel: "warn"}, MinTickRate, MinQueueSize, false},
		{"clamps high", App{TickRate: 1000, QueueSize: 64, LogLevel: "error"}, MaxTickRate, 64, false},
		{"bad level", App{TickRate: 60, QueueSize: 64, LogLevel: "loud"}, 60, 64, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.in
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if cfg.TickRate != tt.wantTick || cfg.QueueSize != tt.wantQueue {
				t.Errorf("got tick %d queue %d, want %d %d", cfg.TickRate, cfg.QueueSize, tt.wantTick, tt.wantQueue)
			}
			if cfg.SaveDir == "" || cfg.ReplayDir == "" || cfg.DBPath == "" {
				t.Errorf("derived paths not filled: %+v", cfg)
			}
		})
	}
}

func TestValidateExpandsHome(t *testing.T) {
	home, _ := isolate(t)

	cfg := App{LogLevel: "info"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}
	want := filepath.Join(home, ".stretch")
	if cfg.DataDir != want || cfg.SaveDir != filepath.Join(want, "settings") ||
		cfg.DBPath != filepath.Join(want, "stretch.db") {
		t.Errorf("default paths not expanded: %+v", cfg)
	}

	// A flag applied after Load goes through Validate again.
	cfg.SaveDir = "~/custom"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}
	if want := filepath.Join(home, "custom"); cfg.SaveDir != want {
		t.Errorf("SaveDir = %q, want %q", cfg.SaveDir, want)
	}
}

package config

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConvertRequiresDirAndOutput(t *testing.T) {
	tests := [][]string{
		{},
		{"--dir", "/tmp/downtimes"},
		{"--output", "out.json"},
	}
	for _, args := range tests {
		if _, err := LoadConvert(args, io.Discard); !errors.Is(err, ErrUsage) {
			t.Errorf("LoadConvert(%v) err = %v, want ErrUsage", args, err)
		}
	}
}

func TestLoadConvertFlags(t *testing.T) {
	cfg, err := LoadConvert([]string{
		"-d", "/etc/thruk/downtimes",
		"-o", "out.json",
		"-s", "one.tsk",
		"-S",
		"-v",
	}, io.Discard)
	if err != nil {
		t.Fatalf("LoadConvert failed: %v", err)
	}
	if cfg.Dir != "/etc/thruk/downtimes" || cfg.Output != "out.json" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Single != "one.tsk" || !cfg.Simulation {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
}

func TestLoadConvertLongFlags(t *testing.T) {
	cfg, err := LoadConvert([]string{"--dir", "/tmp/d", "--output", "o.json"}, io.Discard)
	if err != nil {
		t.Fatalf("LoadConvert failed: %v", err)
	}
	if cfg.Dir != "/tmp/d" || cfg.Output != "o.json" || cfg.Simulation {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadConvertHelp(t *testing.T) {
	if _, err := LoadConvert([]string{"-h"}, io.Discard); !errors.Is(err, ErrUsage) {
		t.Errorf("err = %v, want ErrUsage", err)
	}
}

func TestLoadConvertConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{"dir": "/srv/downtimes", "output": "all.json", "log": {"level": "warn"}}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConvert([]string{"-c", path}, io.Discard)
	if err != nil {
		t.Fatalf("LoadConvert failed: %v", err)
	}
	if cfg.Dir != "/srv/downtimes" || cfg.Output != "all.json" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
}

func TestLoadConvertFlagsOverrideConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"dir": "/srv/downtimes", "output": "all.json"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConvert([]string{"-c", path, "-o", "override.json"}, io.Discard)
	if err != nil {
		t.Fatalf("LoadConvert failed: %v", err)
	}
	if cfg.Output != "override.json" || cfg.Dir != "/srv/downtimes" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadPumpDefaults(t *testing.T) {
	cfg, err := LoadPump(nil, io.Discard)
	if err != nil {
		t.Fatalf("LoadPump failed: %v", err)
	}
	if cfg.InputFile != "downtimes.json" {
		t.Errorf("InputFile = %q", cfg.InputFile)
	}
	if cfg.URL != "https://127.0.0.1/thruk/cgi-bin/cmd.cgi" {
		t.Errorf("URL = %q", cfg.URL)
	}
	if cfg.Author != "Nagios" || cfg.Timeout != 10 || cfg.Sleep != 1 || cfg.Retries != 10 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadPumpPasswordFromEnv(t *testing.T) {
	t.Setenv("THRUK_PASSWORD", "hunter2")

	cfg, err := LoadPump([]string{"-u", "thrukadmin"}, io.Discard)
	if err != nil {
		t.Fatalf("LoadPump failed: %v", err)
	}
	if cfg.Password != "hunter2" {
		t.Errorf("Password = %q, want env value", cfg.Password)
	}
}

func TestLoadPumpCommandLinePasswordWins(t *testing.T) {
	t.Setenv("THRUK_PASSWORD", "fromenv")

	cfg, err := LoadPump([]string{"-u", "thrukadmin", "-p", "fromflag"}, io.Discard)
	if err != nil {
		t.Fatalf("LoadPump failed: %v", err)
	}
	if cfg.Password != "fromflag" {
		t.Errorf("Password = %q, want flag value", cfg.Password)
	}
}

func TestLoadPumpPasswordWithoutUser(t *testing.T) {
	t.Setenv("THRUK_PASSWORD", "")

	if _, err := LoadPump([]string{"-p", "secret"}, io.Discard); !errors.Is(err, ErrUsage) {
		t.Errorf("err = %v, want ErrUsage", err)
	}
}

package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/etnz/dge"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dge.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	want := &Config{
		DataFile: DefaultDataFile,
		Log:      LogConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
		Server:   ServerConfig{Addr: DefaultAddr},
		Assist:   AssistConfig{Model: DefaultAssistModel},
	}
	if !reflect.DeepEqual(cfg, want) {
		t.Errorf("Load() = %+v, want %+v", cfg, want)
	}
	if !reflect.DeepEqual(cfg.PortOptions(), dge.PortOptions) {
		t.Errorf("PortOptions() = %v, want the built-in ports", cfg.PortOptions())
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
data_file: /var/lib/dge/records.json
log:
  level: debug
  format: json
server:
  addr: ":9090"
categories:
  - name: Electronics
    percent: 45
  - name: Scrap
    percent: 12.5
  - name: Salvage
    percent: 17.25%
ports: [Rotterdam, Antwerp]
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.DataFile != "/var/lib/dge/records.json" || cfg.Log.Level != "debug" || cfg.Log.Format != "json" || cfg.Server.Addr != ":9090" {
		t.Errorf("Load() = %+v", cfg)
	}
	table, err := cfg.CategoryTable()
	if err != nil {
		t.Fatalf("CategoryTable() unexpected error: %v", err)
	}
	if p, err := table.Default("Scrap"); err != nil || !p.Equal(dge.P(12.5)) {
		t.Errorf("Default(Scrap) = %v, %v, want 12.5", p, err)
	}
	if p, err := table.Default("Salvage"); err != nil || !p.Equal(dge.P(17.25)) {
		t.Errorf("Default(Salvage) = %v, %v, want 17.25", p, err)
	}
	if table.Has("Jewelry") {
		t.Error("configured categories must replace the built-in table")
	}
	if want := []string{"Rotterdam", "Antwerp"}; !reflect.DeepEqual(cfg.PortOptions(), want) {
		t.Errorf("PortOptions() = %v, want %v", cfg.PortOptions(), want)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, "data_file: from-file.json\n")
	t.Setenv("DGE_DATA_FILE", "from-env.json")
	t.Setenv("DGE_ADDR", ":7070")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.DataFile != "from-env.json" || cfg.Server.Addr != ":7070" {
		t.Errorf("Load() = %+v, want environment values", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"missing file", filepath.Join(t.TempDir(), "missing.yaml")},
		{"invalid yaml", writeConfig(t, "data_file: [unterminated\n")},
		{"invalid category", writeConfig(t, "categories:\n  - name: Scrap\n    percent: 150\n")},
		{"non numeric percent", writeConfig(t, "categories:\n  - name: Scrap\n    percent: plenty\n")},
		{"duplicate category", writeConfig(t, "categories:\n  - {name: A, percent: 10}\n  - {name: A, percent: 20}\n")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(tt.path); err == nil {
				t.Error("Load() expected an error")
			}
		})
	}
}

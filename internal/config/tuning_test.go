package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadPartialConfigKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "tuning.json", `{"max_iterations": 50}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got := cfg.GetMaxIterations(); got != 50 {
		t.Errorf("GetMaxIterations = %d, want 50", got)
	}
	if got := cfg.GetScanPeriod(); got != 0.1 {
		t.Errorf("GetScanPeriod default = %v, want 0.1", got)
	}
	if got := cfg.GetIORatio(); got != 2 {
		t.Errorf("GetIORatio default = %d, want 2", got)
	}
	if cfg.GetRawCorrespondenceQueries() {
		t.Error("GetRawCorrespondenceQueries default = true, want false")
	}
}

func TestLoadRejectsNonJSONExtension(t *testing.T) {
	path := writeConfig(t, "tuning.yaml", `{}`)
	if _, err := Load(path); err == nil {
		t.Error("Load accepted a non-json extension")
	}
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	path := writeConfig(t, "tuning.json", `{"scan_period": `)
	if _, err := Load(path); err == nil {
		t.Error("Load accepted malformed JSON")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("Load accepted a missing file")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"zero scan period", `{"scan_period": 0}`},
		{"negative scan period", `{"scan_period": -0.1}`},
		{"zero iterations", `{"max_iterations": 0}`},
		{"negative rotation abort", `{"delta_r_abort": -1}`},
		{"negative translation abort", `{"delta_t_abort": -1}`},
		{"zero io ratio", `{"io_ratio": 0}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, "tuning.json", tt.body)
			if _, err := Load(path); err == nil {
				t.Errorf("Load accepted %s", tt.name)
			}
		})
	}
}

func TestParamsMapping(t *testing.T) {
	path := writeConfig(t, "tuning.json", `{
		"scan_period": 0.05,
		"max_iterations": 10,
		"delta_r_abort": 0.2,
		"delta_t_abort": 0.3,
		"io_ratio": 4,
		"raw_correspondence_queries": true
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	p := cfg.Params()
	if p.ScanPeriod != 0.05 || p.MaxIterations != 10 ||
		p.DeltaRAbort != 0.2 || p.DeltaTAbort != 0.3 ||
		p.IORatio != 4 || !p.RawQueries {
		t.Errorf("Params mapping wrong: %+v", p)
	}
}

// The checked-in defaults file must itself load cleanly and agree with the
// accessor defaults.
func TestDefaultsFile(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", DefaultConfigPath))
	if err != nil {
		t.Fatalf("Load defaults: %v", err)
	}

	p := cfg.Params()
	want := (&TuningConfig{}).Params()
	if p != want {
		t.Errorf("defaults file params %+v differ from built-in defaults %+v", p, want)
	}
}

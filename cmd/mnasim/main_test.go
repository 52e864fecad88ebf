package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestRunListExport(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "data")
	record := filepath.Join(dir, "outfile.csv")
	image := filepath.Join(dir, "ia.svg")

	out, err := execute(t, "run", "--preset", "quick", "--data", data, "--record", record, "--image", image, "--no-plot")
	if err != nil {
		t.Fatalf("run failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "run id: dc_motor_") {
		t.Errorf("missing run id in output:\n%s", out)
	}

	rec, err := os.ReadFile(record)
	if err != nil {
		t.Fatalf("record not written: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(rec)), "\n")
	if len(lines) != 11 {
		t.Fatalf("expected header plus 10 lines, got %d:\n%s", len(lines), rec)
	}
	if lines[0] != "torque, Wr" || lines[1] != "0,0" || lines[2] != "0.001,7.32544e-05" {
		t.Errorf("unexpected record head %q", lines[:3])
	}
	if _, err := os.Stat(image); err != nil {
		t.Errorf("image not written: %v", err)
	}

	out, err = execute(t, "list", "--data", data)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out, "dc_motor") || !strings.Contains(out, "cached") {
		t.Errorf("unexpected list output:\n%s", out)
	}

	out, err = execute(t, "export-json", "--data", data)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	var exported struct {
		Steps  int         `json:"steps"`
		States [][]float64 `json:"states"`
	}
	if err := json.Unmarshal([]byte(out), &exported); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, out)
	}
	if exported.Steps != 10 || len(exported.States) != 10 {
		t.Errorf("expected 10 steps, got %d and %d states", exported.Steps, len(exported.States))
	}
}

func TestRunRejectsBadFlags(t *testing.T) {
	dir := t.TempDir()
	tests := [][]string{
		{"run", "--h", "0", "--data", dir, "--record", ""},
		{"run", "--solver", "qr", "--data", dir, "--record", ""},
		{"run", "--h", "NaN", "--data", dir, "--record", ""},
		{"run", "--tmax", "Inf", "--data", dir, "--record", ""},
		{"run", "--preset", "nope", "--data", dir, "--record", ""},
		{"run", "--param", "nope=1", "--data", dir, "--record", ""},
		{"run", "--param", "ra=abc", "--data", dir, "--record", ""},
	}
	for _, args := range tests {
		if _, err := execute(t, args...); err == nil {
			t.Errorf("expected error for %v", args)
		}
	}
}

func TestInspect(t *testing.T) {
	out, err := execute(t, "inspect", "--param", "va=12")
	if err != nil {
		t.Fatalf("inspect failed: %v", err)
	}
	for _, want := range []string{"dc_motor", "G⁻¹", "det", "cond", "[ 2 -2 0 0 -1 0 1 ]"} {
		if !strings.Contains(out, want) {
			t.Errorf("inspect output missing %q:\n%s", want, out)
		}
	}
}

func TestPresetsAndConfigInit(t *testing.T) {
	out, err := execute(t, "presets")
	if err != nil {
		t.Fatalf("presets failed: %v", err)
	}
	if !strings.Contains(out, "heavy_load") {
		t.Errorf("missing preset in output:\n%s", out)
	}

	path := filepath.Join(t.TempDir(), "mnasim.yaml")
	if _, err := execute(t, "config", "init", path); err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if _, err := execute(t, "config", "init", path); err == nil {
		t.Error("expected refusal to overwrite")
	}
	if _, err := execute(t, "config", "init", path, "--force", "--preset", "quick"); err != nil {
		t.Fatalf("forced config init failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "tmax: 0.01") {
		t.Errorf("expected quick preset in file:\n%s", data)
	}
}

func TestAnalyzeAndPhase(t *testing.T) {
	data := filepath.Join(t.TempDir(), "data")
	if out, err := execute(t, "run", "--preset", "quick", "--tmax", "0.05", "--data", data, "--record", "", "--no-plot", "--no-trace"); err != nil {
		t.Fatalf("run failed: %v\n%s", err, out)
	}

	out, err := execute(t, "analyze", "--data", data)
	if err != nil {
		t.Fatalf("analyze failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "(wr)") || !strings.Contains(out, "time constant") {
		t.Errorf("unexpected analyze output:\n%s", out)
	}

	out, err = execute(t, "analyze", "--data", data, "--var", "4")
	if err != nil {
		t.Fatalf("analyze by index failed: %v", err)
	}
	if !strings.Contains(out, "(ia)") {
		t.Errorf("expected ia analysis:\n%s", out)
	}

	if _, err := execute(t, "analyze", "--data", data, "--var", "nope"); err == nil {
		t.Error("expected error for unknown variable")
	}

	out, err = execute(t, "phase", "--data", data)
	if err != nil {
		t.Fatalf("phase failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "x: wr  y: ia") || !strings.Contains(out, "•") {
		t.Errorf("unexpected phase output:\n%s", out)
	}
}

func TestCompareSweepTune(t *testing.T) {
	out, err := execute(t, "compare", "--preset", "quick")
	if err != nil {
		t.Fatalf("compare failed: %v", err)
	}
	for _, kind := range []string{"inverse", "cached", "lu"} {
		if !strings.Contains(out, kind) {
			t.Errorf("compare output missing %s:\n%s", kind, out)
		}
	}

	out, err = execute(t, "sweep", "--preset", "quick", "--sweep", "va", "--min", "5", "--max", "15", "--steps", "3")
	if err != nil {
		t.Fatalf("sweep failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "sweep 3/3: va=15") {
		t.Errorf("unexpected sweep output:\n%s", out)
	}

	out, err = execute(t, "sweep", "--preset", "quick", "--sweep", "ra", "--min", "0.5", "--max", "1", "--steps", "2", "--workers", "2")
	if err != nil {
		t.Fatalf("parallel sweep failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "RA") || strings.Contains(out, "sweep 1/2") {
		t.Errorf("unexpected parallel sweep output:\n%s", out)
	}

	out, err = execute(t, "tune", "--preset", "quick", "--grid", "va=5:20:4")
	if err != nil {
		t.Fatalf("tune failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "evaluated 4 points") || !strings.Contains(out, "va = 5") {
		t.Errorf("unexpected tune output:\n%s", out)
	}

	if _, err := execute(t, "tune", "--preset", "quick", "--grid", "va=5:20"); err == nil {
		t.Error("expected error for malformed grid")
	}
}

func TestBatch(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "data")
	path := filepath.Join(dir, "scenario.yaml")
	scenario := `name: supply steps
steps:
  - name: low
    params: {va: 5}
  - name: high
    params: {va: 20}
`
	if err := os.WriteFile(path, []byte(scenario), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "batch", path, "--preset", "quick", "--data", data)
	if err != nil {
		t.Fatalf("batch failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "scenario: supply steps") || !strings.Contains(out, "running step 2/2: high") {
		t.Errorf("unexpected batch output:\n%s", out)
	}

	out, err = execute(t, "list", "--data", data)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if strings.Count(out, "dc_motor_") != 2 {
		t.Errorf("expected two stored runs:\n%s", out)
	}
}

func TestStoreFollowsConfigDataDir(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "runs")
	cfgPath := filepath.Join(dir, "mnasim.yaml")
	yaml := "tmax: 0.005\noutput:\n  record: \"\"\n  terminal: false\n  trace: false\n  data_dir: " + data + "\n"
	if err := os.WriteFile(cfgPath, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	if out, err := execute(t, "run", "--config", cfgPath); err != nil {
		t.Fatalf("run failed: %v\n%s", err, out)
	}

	out, err := execute(t, "list", "--config", cfgPath)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out, "dc_motor_") {
		t.Errorf("run saved under data_dir not listed:\n%s", out)
	}

	out, err = execute(t, "list", "--config", cfgPath, "--data", filepath.Join(dir, "empty"))
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if !strings.Contains(out, "no runs found") {
		t.Errorf("--data should win over the config file:\n%s", out)
	}

	if out, err := execute(t, "analyze", "--config", cfgPath); err != nil {
		t.Fatalf("analyze failed: %v\n%s", err, out)
	}
}

package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	content := fmt.Sprintf(`[paths]
data_dir = %q
staging_dir = %q
voiceover_dir = %q
render_dir = %q
background_dir = %q
log_dir = %q
api_bind = "127.0.0.1:0"
`,
		filepath.Join(root, "data"),
		filepath.Join(root, "staging"),
		filepath.Join(root, "voiceover"),
		filepath.Join(root, "render"),
		filepath.Join(root, "backgrounds"),
		filepath.Join(root, "logs"),
	)
	path := filepath.Join(root, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCommand(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", configPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestSubmitAndQueueStatus(t *testing.T) {
	cfgPath := writeTestConfig(t)

	out, err := runCommand(t, cfgPath, "submit", "the deep ocean")
	if err != nil {
		t.Fatalf("submit: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Submitted job ") {
		t.Fatalf("submit output: %s", out)
	}

	out, err = runCommand(t, cfgPath, "queue", "status")
	if err != nil {
		t.Fatalf("queue status: %v\n%s", err, out)
	}
	if !strings.Contains(out, "pending") || !strings.Contains(out, "1") {
		t.Fatalf("queue status output: %s", out)
	}
}

func TestSubmitChainMentionsExplicitPublish(t *testing.T) {
	cfgPath := writeTestConfig(t)

	out, err := runCommand(t, cfgPath, "submit", "volcanoes", "--chain")
	if err != nil {
		t.Fatalf("submit: %v\n%s", err, out)
	}
	if !strings.Contains(out, "publish needs an explicit trigger") {
		t.Fatalf("submit output: %s", out)
	}
}

func TestShowDisplaysJob(t *testing.T) {
	cfgPath := writeTestConfig(t)

	out, err := runCommand(t, cfgPath, "submit", "history of tea")
	if err != nil {
		t.Fatal(err)
	}
	fields := strings.Fields(out)
	var jobID string
	for i, field := range fields {
		if field == "job" && i+1 < len(fields) {
			jobID = fields[i+1]
		}
	}
	if jobID == "" {
		t.Fatalf("could not extract job id from %q", out)
	}

	out, err = runCommand(t, cfgPath, "show", jobID)
	if err != nil {
		t.Fatalf("show: %v\n%s", err, out)
	}
	if !strings.Contains(out, "history of tea") || !strings.Contains(out, "pending") {
		t.Fatalf("show output: %s", out)
	}

	_, err = runCommand(t, cfgPath, "show", "does-not-exist")
	if err == nil {
		t.Fatal("expected error for unknown job")
	}
}

func TestTriggerRoutesJob(t *testing.T) {
	cfgPath := writeTestConfig(t)

	out, err := runCommand(t, cfgPath, "submit", "tea")
	if err != nil {
		t.Fatal(err)
	}
	fields := strings.Fields(out)
	var jobID string
	for i, field := range fields {
		if field == "job" && i+1 < len(fields) {
			jobID = fields[i+1]
		}
	}

	out, err = runCommand(t, cfgPath, "trigger", jobID, "--stage", "voiceover")
	if err != nil {
		t.Fatalf("trigger: %v\n%s", err, out)
	}
	if !strings.Contains(out, "routed to the voiceover stage") {
		t.Fatalf("trigger output: %s", out)
	}

	_, err = runCommand(t, cfgPath, "trigger", jobID, "--stage", "mastering")
	if err == nil {
		t.Fatal("expected error for unknown stage")
	}
}

func TestWorkersWithEmptyFleet(t *testing.T) {
	cfgPath := writeTestConfig(t)

	out, err := runCommand(t, cfgPath, "workers")
	if err != nil {
		t.Fatalf("workers: %v\n%s", err, out)
	}
	if !strings.Contains(out, "No workers have reported yet.") {
		t.Fatalf("workers output: %s", out)
	}
}

func TestQueueClearFailed(t *testing.T) {
	cfgPath := writeTestConfig(t)

	if _, err := runCommand(t, cfgPath, "submit", "tea"); err != nil {
		t.Fatal(err)
	}
	out, err := runCommand(t, cfgPath, "queue", "clear-failed")
	if err != nil {
		t.Fatalf("clear-failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Deleted 0 failed job(s).") {
		t.Fatalf("clear-failed output: %s", out)
	}

	out, err = runCommand(t, cfgPath, "queue", "clear")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Deleted 1 job(s).") {
		t.Fatalf("clear output: %s", out)
	}
}

func TestConfigInitWritesSample(t *testing.T) {
	cfgPath := writeTestConfig(t)
	target := filepath.Join(t.TempDir(), "fresh.toml")

	out, err := runCommand(t, cfgPath, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v\n%s", err, out)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("reading sample: %v", err)
	}
	if !strings.Contains(string(data), "[paths]") {
		t.Fatalf("sample content: %s", data)
	}

	if _, err := runCommand(t, cfgPath, "config", "init", "--path", target); err == nil {
		t.Fatal("expected error without --overwrite")
	}
}

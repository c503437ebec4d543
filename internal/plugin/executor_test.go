package plugin

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func scriptPlugin(t *testing.T, body string) *Plugin {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "plugin.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}
	return &Plugin{
		Manifest:   Manifest{Name: "test", Executable: "plugin.sh", Actions: []string{ActionSpeak}},
		Path:       dir,
		Executable: path,
	}
}

func TestExecutor_Execute(t *testing.T) {
	// "UklGRg==" is base64 for "RIFF".
	plugin := scriptPlugin(t, `printf '{"success":true,"audio":"UklGRg==","format":"wav"}'`+"\n")

	executor := NewExecutor(5 * time.Second)
	response, err := executor.Execute(context.Background(), plugin, &Request{Action: ActionSpeak, Text: "നന്ദി", Language: "ml"})
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}

	if !response.Success {
		t.Error("expected success=true")
	}
	if string(response.Audio) != "RIFF" {
		t.Errorf("expected audio RIFF, got %q", response.Audio)
	}
	if response.Format != "wav" {
		t.Errorf("expected format wav, got %q", response.Format)
	}
}

func TestExecutor_Execute_ReadsStdin(t *testing.T) {
	// Echo the request text back in the error field.
	plugin := scriptPlugin(t, `read input
text=$(echo "$input" | sed 's/.*"text":"\([^"]*\)".*/\1/')
printf '{"success":false,"error":"%s"}' "$text"
`)

	executor := NewExecutor(5 * time.Second)
	response, err := executor.Execute(context.Background(), plugin, &Request{Action: ActionSpeak, Text: "hello"})
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}
	if response.Success || response.Error != "hello" {
		t.Errorf("expected echoed text, got %+v", response)
	}
}

func TestExecutor_Timeout(t *testing.T) {
	plugin := scriptPlugin(t, "sleep 10\n")

	executor := NewExecutor(100 * time.Millisecond)
	_, err := executor.Execute(context.Background(), plugin, &Request{Action: ActionSpeak})
	if err == nil {
		t.Fatal("expected timeout error, got nil")
	}
	if !strings.Contains(err.Error(), "timeout") {
		t.Errorf("expected timeout-related error, got: %v", err)
	}
}

func TestExecutor_Cancelled(t *testing.T) {
	plugin := scriptPlugin(t, "sleep 10\n")
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := NewExecutor(5*time.Second).Execute(ctx, plugin, &Request{Action: ActionSpeak})
	if err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestExecutor_Execute_InvalidJSON(t *testing.T) {
	plugin := scriptPlugin(t, "echo 'not json'\n")

	_, err := NewExecutor(5*time.Second).Execute(context.Background(), plugin, &Request{Action: ActionSpeak})
	if err == nil {
		t.Fatal("expected error for invalid JSON response")
	}
	if !strings.Contains(err.Error(), "parse plugin response") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestExecutor_Execute_NonZeroExit(t *testing.T) {
	plugin := scriptPlugin(t, "echo 'boom' >&2\nexit 1\n")

	_, err := NewExecutor(5*time.Second).Execute(context.Background(), plugin, &Request{Action: ActionSpeak})
	if err == nil {
		t.Fatal("expected error for non-zero exit")
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("expected stderr in error, got: %v", err)
	}
}

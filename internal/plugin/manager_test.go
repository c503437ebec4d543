package plugin

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, dir string, m Manifest) string {
	t.Helper()
	pluginDir := filepath.Join(dir, m.Name)
	if err := os.MkdirAll(pluginDir, 0755); err != nil {
		t.Fatalf("failed to create plugin dir: %v", err)
	}
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("failed to marshal manifest: %v", err)
	}
	if err := os.WriteFile(filepath.Join(pluginDir, "plugin.json"), data, 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}
	return pluginDir
}

func TestManager_Discover(t *testing.T) {
	tmpDir := t.TempDir()
	pluginDir := writeManifest(t, tmpDir, Manifest{
		Name:        "espeak",
		Version:     "1.0.0",
		Description: "espeak-ng speech",
		Executable:  "espeak-plugin",
		Actions:     []string{ActionSpeak},
		Languages:   []string{"ml", "en"},
	})

	manager := NewManager(tmpDir)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	plugins := manager.List()
	if len(plugins) != 1 {
		t.Fatalf("expected 1 plugin, got %d", len(plugins))
	}

	plugin := plugins[0]
	if plugin.Manifest.Name != "espeak" {
		t.Errorf("expected plugin name 'espeak', got %q", plugin.Manifest.Name)
	}
	if len(plugin.Manifest.Languages) != 2 {
		t.Errorf("expected 2 languages, got %d", len(plugin.Manifest.Languages))
	}
	if plugin.Path != pluginDir {
		t.Errorf("expected path %q, got %q", pluginDir, plugin.Path)
	}
	if plugin.Executable != filepath.Join(pluginDir, "espeak-plugin") {
		t.Errorf("unexpected executable %q", plugin.Executable)
	}
}

func TestManager_List_Sorted(t *testing.T) {
	tmpDir := t.TempDir()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		writeManifest(t, tmpDir, Manifest{Name: name, Executable: name})
	}

	manager := NewManager(tmpDir)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	plugins := manager.List()
	if len(plugins) != 3 {
		t.Fatalf("expected 3 plugins, got %d", len(plugins))
	}
	for i, want := range []string{"alpha", "mid", "zeta"} {
		if plugins[i].Manifest.Name != want {
			t.Errorf("plugins[%d] = %q, want %q", i, plugins[i].Manifest.Name, want)
		}
	}
}

func TestManager_Discover_SkipsBadEntries(t *testing.T) {
	tmpDir := t.TempDir()

	bad := filepath.Join(tmpDir, "bad-plugin")
	os.MkdirAll(bad, 0755)
	os.WriteFile(filepath.Join(bad, "plugin.json"), []byte("not valid json"), 0644)
	os.MkdirAll(filepath.Join(tmpDir, "no-manifest"), 0755)
	os.WriteFile(filepath.Join(tmpDir, "stray-file"), []byte("x"), 0644)

	manager := NewManager(tmpDir)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed unexpectedly: %v", err)
	}
	if n := len(manager.List()); n != 0 {
		t.Fatalf("expected 0 plugins, got %d", n)
	}
}

func TestManager_Discover_NonExistentDir(t *testing.T) {
	manager := NewManager("/path/that/does/not/exist")

	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed on non-existent dir: %v", err)
	}
	if n := len(manager.List()); n != 0 {
		t.Fatalf("expected 0 plugins, got %d", n)
	}
}

func TestManager_Get_NotFound(t *testing.T) {
	manager := NewManager(t.TempDir())

	if _, err := manager.Get("nonexistent-plugin"); err != ErrPluginNotFound {
		t.Errorf("expected ErrPluginNotFound, got %v", err)
	}
}

func TestManager_Resolve(t *testing.T) {
	tmpDir := t.TempDir()
	writeManifest(t, tmpDir, Manifest{Name: "espeak", Executable: "run"})
	manager := NewManager(tmpDir)
	if err := manager.Discover(); err != nil {
		t.Fatalf("Discover() failed: %v", err)
	}

	t.Run("by name", func(t *testing.T) {
		p, err := manager.Resolve("espeak")
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if p.Manifest.Name != "espeak" {
			t.Errorf("got %q", p.Manifest.Name)
		}
	})

	t.Run("by path", func(t *testing.T) {
		exe := filepath.Join(tmpDir, "say.sh")
		os.WriteFile(exe, []byte("#!/bin/sh\n"), 0755)

		p, err := manager.Resolve(exe)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if p.Executable != exe || p.Path != tmpDir {
			t.Errorf("unexpected plugin %+v", p)
		}
	})

	t.Run("missing path", func(t *testing.T) {
		_, err := manager.Resolve(filepath.Join(tmpDir, "nope"))
		if !errors.Is(err, ErrPluginNotFound) {
			t.Errorf("expected ErrPluginNotFound, got %v", err)
		}
	})
}

func TestManifest_Supports(t *testing.T) {
	if !(Manifest{}).Supports(ActionSpeak) {
		t.Error("manifest without actions should accept speak")
	}
	if (Manifest{Actions: []string{"other"}}).Supports(ActionSpeak) {
		t.Error("manifest listing other actions should not accept speak")
	}
}

package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestNewFileStore(t *testing.T) {
	t.Run("creates store with custom path", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.json")

		store, err := NewFileStore(configPath)
		if err != nil {
			t.Fatalf("NewFileStore failed: %v", err)
		}
		if store.Path() != configPath {
			t.Errorf("Expected path %s, got %s", configPath, store.Path())
		}
		if store.IsModified() {
			t.Error("New store should not be modified")
		}
		if store.Format() != FormatJSON {
			t.Errorf("Expected json format, got %s", store.Format())
		}
	})

	t.Run("default path", func(t *testing.T) {
		path, err := DefaultPath()
		if err != nil {
			t.Fatalf("DefaultPath failed: %v", err)
		}
		homeDir, _ := os.UserHomeDir()
		expected := filepath.Join(homeDir, ".pagechat", "config.json")
		if path != expected {
			t.Errorf("Expected default path %s, got %s", expected, path)
		}
	})

	t.Run("loads existing config file", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.json")
		config := map[string]interface{}{
			"version": "1.0",
			"sections": map[string]map[string]interface{}{
				"llm": {"model": "gpt-4o"},
			},
		}
		raw, _ := json.Marshal(config)
		if err := os.WriteFile(configPath, raw, 0600); err != nil {
			t.Fatalf("Failed to write config: %v", err)
		}

		store, err := NewFileStore(configPath)
		if err != nil {
			t.Fatalf("NewFileStore failed: %v", err)
		}
		data, _ := store.GetSection("llm")
		if data["model"] != "gpt-4o" {
			t.Errorf("Expected model gpt-4o, got %v", data["model"])
		}
	})

	t.Run("fails on corrupt file", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.json")
		if err := os.WriteFile(configPath, []byte("{not json"), 0600); err != nil {
			t.Fatalf("Failed to write config: %v", err)
		}
		if _, err := NewFileStore(configPath); err == nil {
			t.Error("Expected error for corrupt config")
		}
	})
}

func TestFormatForPath(t *testing.T) {
	tests := map[string]Format{
		"config.json":        FormatJSON,
		"config.yaml":        FormatYAML,
		"CONFIG.YML":         FormatYAML,
		"config":             FormatJSON,
		"/etc/pagechat.toml": FormatJSON,
	}
	for path, want := range tests {
		if got := FormatForPath(path); got != want {
			t.Errorf("FormatForPath(%q) = %s, want %s", path, got, want)
		}
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	for _, name := range []string{"config.json", "config.yaml"} {
		t.Run(name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "nested", name)

			store, err := NewFileStore(configPath)
			if err != nil {
				t.Fatalf("NewFileStore failed: %v", err)
			}

			if err := store.SetSection("session", map[string]interface{}{"max_turns": 12, "temperature": 0.5}); err != nil {
				t.Fatalf("SetSection failed: %v", err)
			}
			if !store.IsModified() {
				t.Error("Store should be modified after SetSection")
			}
			if err := store.Save(); err != nil {
				t.Fatalf("Save failed: %v", err)
			}
			if store.IsModified() {
				t.Error("Store should not be modified after Save")
			}
			if _, err := os.Stat(configPath + ".tmp"); !os.IsNotExist(err) {
				t.Error("Temp file should not remain after Save")
			}

			reloaded, err := NewFileStore(configPath)
			if err != nil {
				t.Fatalf("Reload failed: %v", err)
			}
			data, _ := reloaded.GetSection("session")
			if n, ok := intValue(data["max_turns"]); !ok || n != 12 {
				t.Errorf("Expected max_turns 12, got %v", data["max_turns"])
			}
			if f, ok := floatValue(data["temperature"]); !ok || f != 0.5 {
				t.Errorf("Expected temperature 0.5, got %v", data["temperature"])
			}
		})
	}
}

func TestFileStoreCopies(t *testing.T) {
	store, err := NewFileStore(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	input := map[string]interface{}{"model": "a"}
	_ = store.SetSection("llm", input)
	input["model"] = "b"

	data, _ := store.GetSection("llm")
	if data["model"] != "a" {
		t.Errorf("SetSection should copy its input, got %v", data["model"])
	}
	data["model"] = "c"

	again, _ := store.GetSection("llm")
	if again["model"] != "a" {
		t.Errorf("GetSection should return a copy, got %v", again["model"])
	}

	missing, _ := store.GetSection("nope")
	if len(missing) != 0 {
		t.Errorf("Expected empty map for missing section, got %v", missing)
	}

	if err := store.SetAll(map[string]map[string]interface{}{"browser": {"driver": "rod"}}); err != nil {
		t.Fatalf("SetAll failed: %v", err)
	}
	all, _ := store.GetAll()
	if len(all) != 1 || all["browser"]["driver"] != "rod" {
		t.Errorf("Unexpected GetAll result: %v", all)
	}
}

package cli

import (
	"path/filepath"
	"testing"
)

func TestCacheDirStructure(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	expected := filepath.Join(home, ".cache", appName)
	if dir != expected {
		t.Errorf("cacheDir() = %q, want %q", dir, expected)
	}
}

func TestCacheDirXDG(t *testing.T) {
	customCache := "/tmp/custom-cache"
	t.Setenv("XDG_CACHE_HOME", customCache)

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	expected := filepath.Join(customCache, appName)
	if dir != expected {
		t.Errorf("cacheDir() with XDG_CACHE_HOME = %q, want %q", dir, expected)
	}
}

func TestOutputBase(t *testing.T) {
	tests := []struct {
		output, input string
		want          string
	}{
		{"", "part.json", "part"},
		{"", "scans/part.faces.json", "scans/part"},
		{"", "part.layout.json", "part"},
		{"out/case.dxf", "part.json", "out/case"},
		{"out/case", "part.json", "out/case"},
		{"case.v2", "part.json", "case.v2"},
	}
	for _, tt := range tests {
		if got := outputBase(tt.output, tt.input); got != tt.want {
			t.Errorf("outputBase(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
		}
	}
}

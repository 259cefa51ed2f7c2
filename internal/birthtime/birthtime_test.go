package birthtime

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

func TestNativeCreationTime(t *testing.T) {
	switch runtime.GOOS {
	case "aix", "js", "plan9", "wasip1":
		t.Skip("no native creation time on", runtime.GOOS)
	}
	path := filepath.Join(t.TempDir(), "a.jpg")
	before := time.Now().Add(-time.Minute)
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := Native().CreationTime(path)
	if err != nil {
		t.Fatalf("CreationTime failed: %v", err)
	}
	if got.Before(before) || got.After(time.Now().Add(time.Minute)) {
		t.Errorf("Expected creation time close to now, got %v", got)
	}
}

func TestNativeCreationTimeMissingFile(t *testing.T) {
	if _, err := Native().CreationTime(filepath.Join(t.TempDir(), "missing.jpg")); err == nil {
		t.Error("Expected error for missing file, got nil")
	}
}

func TestNativeSetCreationTime(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.jpg")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	want := time.Date(2021, 7, 11, 6, 58, 21, 0, time.Local)

	err := Native().SetCreationTime(path, want)
	if runtime.GOOS != "windows" {
		if !errors.Is(err, ErrUnsupported) {
			t.Errorf("Expected ErrUnsupported on %s, got %v", runtime.GOOS, err)
		}
		return
	}
	if err != nil {
		t.Fatalf("SetCreationTime failed: %v", err)
	}
	got, err := Native().CreationTime(path)
	if err != nil {
		t.Fatalf("CreationTime failed: %v", err)
	}
	if !got.Equal(want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestFixed(t *testing.T) {
	want := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	f := &Fixed{Time: want}
	got, err := f.CreationTime("x")
	if err != nil || !got.Equal(want) {
		t.Errorf("Expected %v, got %v (err %v)", want, got, err)
	}
	if err := f.SetCreationTime("x", want); err != nil {
		t.Fatalf("SetCreationTime failed: %v", err)
	}
	if !f.Applied["x"].Equal(want) {
		t.Errorf("Expected applied time %v, got %v", want, f.Applied["x"])
	}

	f = &Fixed{Err: ErrUnsupported, SetErr: ErrUnsupported}
	if _, err := f.CreationTime("x"); !errors.Is(err, ErrUnsupported) {
		t.Errorf("Expected ErrUnsupported, got %v", err)
	}
}

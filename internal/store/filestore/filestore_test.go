package filestore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Makepad-fr/shop/internal/store/filestore"
)

func TestStore_LoadMissing_IsAbsent(t *testing.T) {
	s, err := filestore.New(t.TempDir(), "items")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	data, ok, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if ok || data != nil {
		t.Fatalf("expected absent, got ok=%v data=%q", ok, data)
	}
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := filestore.New(dir, "items")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	in := []byte(`[{"id":0,"title":"Milk","completed":false}]`)
	if err := s.Save(ctx, in); err != nil {
		t.Fatalf("save: %v", err)
	}
	if s.Path() != filepath.Join(dir, "items.json") {
		t.Fatalf("unexpected path %q", s.Path())
	}

	out, ok, err := s.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if string(out) != string(in) {
		t.Fatalf("got %q want %q", out, in)
	}
}

func TestStore_SaveOverwritesAndLeavesNoTemp(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, _ := filestore.New(dir, "items")
	if err := s.Save(ctx, []byte(`["first"]`)); err != nil {
		t.Fatalf("save 1: %v", err)
	}
	if err := s.Save(ctx, []byte(`["second"]`)); err != nil {
		t.Fatalf("save 2: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "items.json" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("expected only items.json, got %v", names)
	}
	out, _, _ := s.Load(ctx)
	if string(out) != `["second"]` {
		t.Fatalf("got %q", out)
	}
}

func TestStore_SaveCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	s, _ := filestore.New(dir, "items")
	if err := s.Save(context.Background(), []byte(`[]`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "items.json")); err != nil {
		t.Fatalf("stat: %v", err)
	}
}

func TestNew_EmptyKey(t *testing.T) {
	if _, err := filestore.New(t.TempDir(), ""); err == nil {
		t.Fatal("expected error for empty key")
	}
}

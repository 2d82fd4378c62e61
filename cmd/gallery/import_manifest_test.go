package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseImportManifest(t *testing.T) {
	manifest, err := parseImportManifest([]byte(`
albums:
  - name: "  Road trip "
    description: Summer
    files: [a.jpg, "day1/*.png"]
  - name: Pets
    files:
      - cat.jpg
`))
	if err != nil {
		t.Fatalf("parse manifest: %v", err)
	}
	if len(manifest.Albums) != 2 {
		t.Fatalf("expected 2 albums, got %d", len(manifest.Albums))
	}
	if manifest.Albums[0].Name != "Road trip" || manifest.Albums[0].Description != "Summer" {
		t.Fatalf("unexpected first album: %#v", manifest.Albums[0])
	}
	if len(manifest.Albums[1].Files) != 1 {
		t.Fatalf("expected one file, got %v", manifest.Albums[1].Files)
	}
}

func TestParseImportManifestRejects(t *testing.T) {
	tests := map[string]string{
		"empty":         "",
		"no albums":     "albums: []\n",
		"missing name":  "albums:\n  - files: [a.jpg]\n",
		"missing files": "albums:\n  - name: A\n",
		"unknown field": "albums:\n  - name: A\n    files: [a.jpg]\n    cover: a.jpg\n",
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := parseImportManifest([]byte(input)); err == nil {
				t.Fatalf("expected error for %q", input)
			}
		})
	}
}

func TestResolveFilesExpandsGlobsRelativeToManifest(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.png", "a.png", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub.png"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	album := importAlbum{Name: "A", Files: []string{"*.png", "a.png", "missing.jpg", " "}}
	files, err := album.resolveFiles(dir)
	if err != nil {
		t.Fatalf("resolve files: %v", err)
	}

	want := []string{
		filepath.Join(dir, "a.png"),
		filepath.Join(dir, "b.png"),
		filepath.Join(dir, "missing.jpg"),
	}
	if strings.Join(files, "|") != strings.Join(want, "|") {
		t.Fatalf("expected %v, got %v", want, files)
	}
}

func TestDetectFileMIME(t *testing.T) {
	dir := t.TempDir()
	png := filepath.Join(dir, "image.PNG")
	if err := os.WriteFile(png, []byte("whatever"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got, err := detectFileMIME(png); err != nil || got != "image/png" {
		t.Fatalf("expected image/png by extension, got %q (%v)", got, err)
	}

	noExt := filepath.Join(dir, "blob")
	gif := []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00;")
	if err := os.WriteFile(noExt, gif, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if got, err := detectFileMIME(noExt); err != nil || got != "image/gif" {
		t.Fatalf("expected sniffed image/gif, got %q (%v)", got, err)
	}
}

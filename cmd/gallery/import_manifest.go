package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// importManifest lists albums to create and the files to upload into each.
//
//	albums:
//	  - name: Road trip
//	    description: Summer 2024
//	    files: [day1/*.jpg, clip.mp4]
type importManifest struct {
	Albums []importAlbum `yaml:"albums"`
}

type importAlbum struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Files       []string `yaml:"files"`
}

func loadImportManifest(path string) (*importManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	manifest, err := parseImportManifest(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return manifest, nil
}

func parseImportManifest(data []byte) (*importManifest, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var manifest importManifest
	if err := dec.Decode(&manifest); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("manifest is empty")
		}
		return nil, err
	}
	if len(manifest.Albums) == 0 {
		return nil, errors.New("manifest lists no albums")
	}
	for i := range manifest.Albums {
		album := &manifest.Albums[i]
		album.Name = strings.TrimSpace(album.Name)
		if album.Name == "" {
			return nil, fmt.Errorf("album %d: name is required", i+1)
		}
		if len(album.Files) == 0 {
			return nil, fmt.Errorf("album %q: files is required", album.Name)
		}
	}
	return &manifest, nil
}

// resolveFiles expands the album's file patterns relative to baseDir.
// Literal paths are kept even when missing so the upload reports them.
func (a importAlbum) resolveFiles(baseDir string) ([]string, error) {
	var out []string
	seen := make(map[string]struct{})
	add := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		out = append(out, path)
	}

	for _, pattern := range a.Files {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		if !filepath.IsAbs(pattern) {
			pattern = filepath.Join(baseDir, pattern)
		}
		if !strings.ContainsAny(pattern, "*?[") {
			add(pattern)
			continue
		}
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("album %q: %w", a.Name, err)
		}
		sort.Strings(matches)
		for _, match := range matches {
			if info, err := os.Stat(match); err == nil && !info.IsDir() {
				add(match)
			}
		}
	}
	return out, nil
}

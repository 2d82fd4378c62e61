package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// isolate points HOME and the working directory at fresh temp dirs and
// clears every env override.
func isolate(t *testing.T) (homeDir, workspace string) {
	t.Helper()
	homeDir = t.TempDir()
	workspace = t.TempDir()

	oldWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Chdir(oldWD)
	})
	if err := os.Chdir(workspace); err != nil {
		t.Fatalf("chdir workspace: %v", err)
	}

	t.Setenv("HOME", homeDir)
	for _, key := range []string{
		configDirEnvKey, trustProjectConfigEnvKey, libraryEnvKey, apiURLEnvKey,
		logLevelEnvKey, maxUploadBytesEnvKey, allowedMediaTypesEnvKey, ffmpegEnvKey,
	} {
		t.Setenv(key, "")
	}
	return homeDir, workspace
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.APIURL != DefaultAPIURL {
		t.Fatalf("expected default API URL, got %q", cfg.APIURL)
	}
	if cfg.LibraryPath != "" {
		t.Fatalf("expected empty library path, got %q", cfg.LibraryPath)
	}
	if cfg.LogLevel != DefaultLogLevel {
		t.Fatalf("expected default log level %q, got %q", DefaultLogLevel, cfg.LogLevel)
	}
	if cfg.Media.MaxUploadBytes != 50*1024*1024 {
		t.Fatalf("expected 50 MiB upload ceiling, got %d", cfg.Media.MaxUploadBytes)
	}
	if cfg.Media.ThumbnailMaxEdge != 400 || cfg.Media.ThumbnailQuality != 80 {
		t.Fatalf("unexpected thumbnail defaults %#v", cfg.Media)
	}
	if cfg.FrameOffset() != time.Second {
		t.Fatalf("expected 1s frame offset, got %s", cfg.FrameOffset())
	}
	if cfg.Admin.Username != DefaultAdminUser {
		t.Fatalf("expected default admin user, got %q", cfg.Admin.Username)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	writeFile(t, path, `library_path = "/srv/photos"
api_url = "http://localhost:9999"
log_level = "warn"

[media]
max_upload_bytes = 1024
allowed_media_types = ["image/png"]
video_frame_offset = "250ms"

[admin]
username = "root"
`)

	cfg := Default()
	if err := loadFile(path, &cfg); err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LibraryPath != "/srv/photos" || cfg.APIURL != "http://localhost:9999" || cfg.LogLevel != "warn" {
		t.Fatalf("unexpected top-level values %#v", cfg)
	}
	if cfg.Media.MaxUploadBytes != 1024 || len(cfg.Media.AllowedMediaTypes) != 1 {
		t.Fatalf("unexpected media values %#v", cfg.Media)
	}
	if cfg.FrameOffset() != 250*time.Millisecond {
		t.Fatalf("expected 250ms offset, got %s", cfg.FrameOffset())
	}
	if cfg.Admin.Username != "root" {
		t.Fatalf("expected admin user root, got %q", cfg.Admin.Username)
	}
	if cfg.DBPath() != filepath.Join("/srv/photos", DatabaseFileName) || cfg.BlobRoot() != filepath.Join("/srv/photos", BlobsDirectoryName) {
		t.Fatalf("unexpected derived paths %q %q", cfg.DBPath(), cfg.BlobRoot())
	}
}

func TestLoadFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFile("/nonexistent/path/"+FileName, &cfg); err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg.APIURL != DefaultAPIURL {
		t.Fatal("defaults should be preserved")
	}
}

func TestLoadFileInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	writeFile(t, path, "library_path = [unterminated\n")
	cfg := Default()
	if err := loadFile(path, &cfg); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestFrameOffsetFallsBackOnInvalidValue(t *testing.T) {
	cfg := Default()
	cfg.Media.VideoFrameOffset = "soon"
	if cfg.FrameOffset() != time.Second {
		t.Fatalf("expected default offset, got %s", cfg.FrameOffset())
	}
	cfg.Media.VideoFrameOffset = "-2s"
	if cfg.FrameOffset() != time.Second {
		t.Fatalf("expected default offset for negative value, got %s", cfg.FrameOffset())
	}
}

func TestIsAllowedKey(t *testing.T) {
	for _, key := range AllowedKeys() {
		if !IsAllowedKey(key) {
			t.Fatalf("expected %q to be allowed", key)
		}
		cfg := Default()
		if _, err := cfg.Get(key); err != nil {
			t.Fatalf("get %q: %v", key, err)
		}
	}
	if IsAllowedKey("invalid") {
		t.Fatal("expected 'invalid' to not be allowed")
	}
}

func TestGetKey(t *testing.T) {
	cfg := Config{
		LibraryPath: "/tmp/lib",
		APIURL:      "http://test:1234",
		LogLevel:    "warn",
		Media: MediaConfig{
			MaxUploadBytes:    123,
			AllowedMediaTypes: []string{"image/png", "video/mp4"},
			ThumbnailQuality:  70,
			VideoFrameOffset:  "2s",
			FFmpegPath:        "/usr/bin/ffmpeg",
			GCBatchSize:       789,
		},
		Admin: AdminConfig{Username: "me", PasswordHash: "$2a$10$hash"},
	}

	tests := map[string]string{
		"library_path":              "/tmp/lib",
		"api_url":                   "http://test:1234",
		"log_level":                 "warn",
		"media.max_upload_bytes":    "123",
		"media.allowed_media_types": "image/png,video/mp4",
		"media.thumbnail_quality":   "70",
		"media.video_frame_offset":  "2s",
		"media.ffmpeg_path":         "/usr/bin/ffmpeg",
		"media.gc_batch_size":       "789",
		"admin.username":            "me",
		"admin.password_hash":       "$2a$10$hash",
	}
	for key, want := range tests {
		val, err := cfg.Get(key)
		if err != nil || val != want {
			t.Fatalf("%s: expected %q, got %q (err: %v)", key, want, val, err)
		}
	}

	if _, err := cfg.Get("nope"); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestSetKeyCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "new.toml")
	if err := SetKey(path, "library_path", "/data/gallery"); err != nil {
		t.Fatalf("set: %v", err)
	}

	cfg := Default()
	if err := loadFile(path, &cfg); err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LibraryPath != "/data/gallery" {
		t.Fatalf("expected library path, got %q", cfg.LibraryPath)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm()&0o077 != 0 {
		t.Fatalf("expected private config file, got %v", info.Mode().Perm())
	}
}

func TestSetKeyUpdatesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "existing.toml")
	writeFile(t, path, "library_path = \"/old\"\napi_url = \"http://keep\"\n")

	if err := SetKey(path, "library_path", "/new"); err != nil {
		t.Fatalf("set: %v", err)
	}

	cfg := Default()
	if err := loadFile(path, &cfg); err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LibraryPath != "/new" {
		t.Fatalf("expected '/new', got %q", cfg.LibraryPath)
	}
	if cfg.APIURL != "http://keep" {
		t.Fatalf("expected preserved api_url 'http://keep', got %q", cfg.APIURL)
	}
}

func TestSetNestedMediaKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "media.toml")
	for key, value := range map[string]string{
		"media.gc_batch_size":       "321",
		"media.allowed_media_types": "image/png, video/webm",
		"media.video_frame_offset":  "500ms",
		"admin.password_hash":       "$2a$10$abc",
	} {
		if err := SetKey(path, key, value); err != nil {
			t.Fatalf("set %s: %v", key, err)
		}
	}

	cfg := Default()
	if err := loadFile(path, &cfg); err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Media.GCBatchSize != 321 {
		t.Fatalf("expected gc_batch_size 321, got %d", cfg.Media.GCBatchSize)
	}
	if len(cfg.Media.AllowedMediaTypes) != 2 || cfg.Media.AllowedMediaTypes[1] != "video/webm" {
		t.Fatalf("unexpected allowed types %v", cfg.Media.AllowedMediaTypes)
	}
	if cfg.FrameOffset() != 500*time.Millisecond {
		t.Fatalf("expected 500ms, got %s", cfg.FrameOffset())
	}
	if cfg.Admin.PasswordHash != "$2a$10$abc" {
		t.Fatalf("expected password hash, got %q", cfg.Admin.PasswordHash)
	}
}

func TestSetKeyRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invalid.toml")
	for key, value := range map[string]string{
		"invalid_key":              "value",
		"media.max_upload_bytes":   "-1",
		"media.gc_batch_size":      "lots",
		"media.thumbnail_quality":  "101",
		"media.video_frame_offset": "later",
		"log_level":                "chatty",
	} {
		if err := SetKey(path, key, value); err == nil {
			t.Fatalf("expected error for %s=%s", key, value)
		}
	}
}

func TestConfigDirOverridePaths(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(configDirEnvKey, dir)

	globalPath, err := GlobalPath()
	if err != nil {
		t.Fatalf("global path: %v", err)
	}
	if globalPath != filepath.Join(dir, FileName) {
		t.Fatalf("unexpected global path: %s", globalPath)
	}

	projectPath, err := ProjectPath()
	if err != nil {
		t.Fatalf("project path: %v", err)
	}
	if projectPath != filepath.Join(dir, FileName) {
		t.Fatalf("unexpected project path: %s", projectPath)
	}
}

func TestLoadDefaultsLibraryToWorkspace(t *testing.T) {
	_, workspace := isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LibraryPath != filepath.Join(workspace, DefaultLibraryDir) {
		t.Fatalf("expected workspace library path, got %q", cfg.LibraryPath)
	}
}

func TestLoadConfigDirOverride(t *testing.T) {
	_, workspace := isolate(t)
	configDir := t.TempDir()
	writeFile(t, filepath.Join(configDir, FileName), "api_url = \"http://127.0.0.1:9001\"\n")
	writeFile(t, filepath.Join(workspace, FileName), "api_url = \"http://ignored\"\n")
	t.Setenv(configDirEnvKey, configDir)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIURL != "http://127.0.0.1:9001" {
		t.Fatalf("expected config-dir api_url override, got %q", cfg.APIURL)
	}
}

func TestEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv(apiURLEnvKey, "http://example.com:8080")
	t.Setenv(libraryEnvKey, "/tmp/override")
	t.Setenv(logLevelEnvKey, "debug")
	t.Setenv(maxUploadBytesEnvKey, "2048")
	t.Setenv(allowedMediaTypesEnvKey, "IMAGE/PNG, image/png, video/mp4")
	t.Setenv(ffmpegEnvKey, "/opt/ffmpeg")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.APIURL != "http://example.com:8080" || cfg.LibraryPath != "/tmp/override" || cfg.LogLevel != "debug" {
		t.Fatalf("unexpected overrides %#v", cfg)
	}
	if cfg.Media.MaxUploadBytes != 2048 || cfg.Media.FFmpegPath != "/opt/ffmpeg" {
		t.Fatalf("unexpected media overrides %#v", cfg.Media)
	}
	if len(cfg.Media.AllowedMediaTypes) != 2 || cfg.Media.AllowedMediaTypes[0] != "image/png" {
		t.Fatalf("expected normalized allow-list, got %v", cfg.Media.AllowedMediaTypes)
	}
}

func TestLoadIgnoresInvalidUploadOverride(t *testing.T) {
	isolate(t)
	t.Setenv(maxUploadBytesEnvKey, "huge")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Media.MaxUploadBytes != DefaultMaxUploadBytes {
		t.Fatalf("expected default ceiling, got %d", cfg.Media.MaxUploadBytes)
	}
}

func TestLoadFallsBackToDefaultLogLevelWhenConfiguredEmpty(t *testing.T) {
	homeDir, _ := isolate(t)
	writeFile(t, filepath.Join(homeDir, FileName), "log_level = \"\"\n")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LogLevel != DefaultLogLevel {
		t.Fatalf("expected default log level %q, got %q", DefaultLogLevel, cfg.LogLevel)
	}
}

func TestLoadProjectConfigTrust(t *testing.T) {
	tests := []struct {
		name    string
		trust   string
		wantURL string
		trusted bool
	}{
		{name: "ignored by default", trust: "", wantURL: "http://global", trusted: false},
		{name: "applied when trusted", trust: "true", wantURL: "http://project", trusted: true},
		{name: "ignored on invalid value", trust: "definitely-not-bool", wantURL: "http://global", trusted: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			homeDir, workspace := isolate(t)
			writeFile(t, filepath.Join(homeDir, FileName), "api_url = \"http://global\"\n")
			writeFile(t, filepath.Join(workspace, FileName), "api_url = \"http://project\"\n")
			t.Setenv(trustProjectConfigEnvKey, tc.trust)

			cfg, err := Load()
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if cfg.APIURL != tc.wantURL {
				t.Fatalf("expected %q, got %q", tc.wantURL, cfg.APIURL)
			}
			if got := cfg.TrustedProjectConfigPath != ""; got != tc.trusted {
				t.Fatalf("expected trusted=%v, got path %q", tc.trusted, cfg.TrustedProjectConfigPath)
			}
		})
	}
}

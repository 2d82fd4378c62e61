package config

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultAPIURL      = "http://127.0.0.1:7480"
	DefaultLibraryDir  = ".gallery"
	DefaultLogLevel    = "info"
	DefaultAdminUser   = "admin"
	FileName           = ".gallery.toml"
	DatabaseFileName   = "gallery.db"
	BlobsDirectoryName = "blobs"

	DefaultMaxUploadBytes     int64 = 50 * 1024 * 1024
	DefaultMultipartMaxMemory int64 = 8 * 1024 * 1024
	DefaultThumbnailMaxEdge         = 400
	DefaultThumbnailQuality         = 80
	DefaultVideoFrameOffset         = "1s"
	DefaultGCBatchSize              = 500

	configDirEnvKey          = "GALLERY_CONFIG_DIR"
	trustProjectConfigEnvKey = "GALLERY_TRUST_PROJECT_CONFIG"

	libraryEnvKey           = "GALLERY_LIBRARY"
	apiURLEnvKey            = "GALLERY_API_URL"
	logLevelEnvKey          = "GALLERY_LOG_LEVEL"
	maxUploadBytesEnvKey    = "GALLERY_MAX_UPLOAD_BYTES"
	allowedMediaTypesEnvKey = "GALLERY_ALLOWED_MEDIA_TYPES"
	ffmpegEnvKey            = "GALLERY_FFMPEG"
)

// MediaConfig controls ingestion and preview derivation.
type MediaConfig struct {
	MaxUploadBytes     int64    `toml:"max_upload_bytes"`
	MultipartMaxMemory int64    `toml:"multipart_max_memory"`
	AllowedMediaTypes  []string `toml:"allowed_media_types"`
	ThumbnailMaxEdge   int      `toml:"thumbnail_max_edge"`
	ThumbnailQuality   int      `toml:"thumbnail_quality"`
	VideoFrameOffset   string   `toml:"video_frame_offset"`
	FFmpegPath         string   `toml:"ffmpeg_path"`
	GCBatchSize        int      `toml:"gc_batch_size"`
}

// AdminConfig holds the credentials checked before mutating API calls.
type AdminConfig struct {
	Username     string `toml:"username"`
	PasswordHash string `toml:"password_hash"`
}

// Config defines runtime configuration for gallery.
type Config struct {
	LibraryPath              string      `toml:"library_path"`
	APIURL                   string      `toml:"api_url"`
	LogLevel                 string      `toml:"log_level"`
	Media                    MediaConfig `toml:"media"`
	Admin                    AdminConfig `toml:"admin"`
	TrustedProjectConfigPath string      `toml:"-"`
}

// Default returns default configuration values.
func Default() Config {
	return Config{
		APIURL:   DefaultAPIURL,
		LogLevel: DefaultLogLevel,
		Media: MediaConfig{
			MaxUploadBytes:     DefaultMaxUploadBytes,
			MultipartMaxMemory: DefaultMultipartMaxMemory,
			ThumbnailMaxEdge:   DefaultThumbnailMaxEdge,
			ThumbnailQuality:   DefaultThumbnailQuality,
			VideoFrameOffset:   DefaultVideoFrameOffset,
			GCBatchSize:        DefaultGCBatchSize,
		},
		Admin: AdminConfig{Username: DefaultAdminUser},
	}
}

// DBPath is the metadata database inside the library directory.
func (c *Config) DBPath() string {
	return filepath.Join(c.LibraryPath, DatabaseFileName)
}

// BlobRoot is the content-addressed payload tree inside the library directory.
func (c *Config) BlobRoot() string {
	return filepath.Join(c.LibraryPath, BlobsDirectoryName)
}

// FrameOffset parses media.video_frame_offset, falling back to the default
// for values that are not a non-negative duration.
func (c *Config) FrameOffset() time.Duration {
	if d, err := time.ParseDuration(strings.TrimSpace(c.Media.VideoFrameOffset)); err == nil && d >= 0 {
		return d
	}
	d, _ := time.ParseDuration(DefaultVideoFrameOffset)
	return d
}

func loadFile(path string, cfg *Config) error {
	_, err := loadFileIfExists(path, cfg)
	return err
}

func loadFileIfExists(path string, cfg *Config) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if info.IsDir() {
		return false, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return false, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return true, nil
}

func overrideConfigPath() (string, bool) {
	dir := strings.TrimSpace(os.Getenv(configDirEnvKey))
	if dir == "" {
		return "", false
	}
	return filepath.Join(dir, FileName), true
}

func trustProjectConfig() bool {
	value, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(trustProjectConfigEnvKey)))
	return err == nil && value
}

var allowedKeys = []string{
	"library_path",
	"api_url",
	"log_level",
	"media.max_upload_bytes",
	"media.multipart_max_memory",
	"media.allowed_media_types",
	"media.thumbnail_max_edge",
	"media.thumbnail_quality",
	"media.video_frame_offset",
	"media.ffmpeg_path",
	"media.gc_batch_size",
	"admin.username",
	"admin.password_hash",
}

// AllowedKeys returns the set of valid config keys.
func AllowedKeys() []string {
	return allowedKeys
}

// IsAllowedKey checks if a key is a valid config key.
func IsAllowedKey(key string) bool {
	for _, k := range allowedKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Get returns the value of a config key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "library_path":
		return c.LibraryPath, nil
	case "api_url":
		return c.APIURL, nil
	case "log_level":
		return c.LogLevel, nil
	case "media.max_upload_bytes":
		return strconv.FormatInt(c.Media.MaxUploadBytes, 10), nil
	case "media.multipart_max_memory":
		return strconv.FormatInt(c.Media.MultipartMaxMemory, 10), nil
	case "media.allowed_media_types":
		return strings.Join(c.Media.AllowedMediaTypes, ","), nil
	case "media.thumbnail_max_edge":
		return strconv.Itoa(c.Media.ThumbnailMaxEdge), nil
	case "media.thumbnail_quality":
		return strconv.Itoa(c.Media.ThumbnailQuality), nil
	case "media.video_frame_offset":
		return c.Media.VideoFrameOffset, nil
	case "media.ffmpeg_path":
		return c.Media.FFmpegPath, nil
	case "media.gc_batch_size":
		return strconv.Itoa(c.Media.GCBatchSize), nil
	case "admin.username":
		return c.Admin.Username, nil
	case "admin.password_hash":
		return c.Admin.PasswordHash, nil
	default:
		return "", fmt.Errorf("unknown key: %s", key)
	}
}

// GlobalPath returns the path to the global config file.
func GlobalPath() (string, error) {
	if path, ok := overrideConfigPath(); ok {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, FileName), nil
}

// ProjectPath returns the path to the project config file.
func ProjectPath() (string, error) {
	if path, ok := overrideConfigPath(); ok {
		return path, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, FileName), nil
}

// SetKey reads the TOML file at path, sets key=value, and writes it back.
func SetKey(path, key, value string) error {
	if !IsAllowedKey(key) {
		return fmt.Errorf("unknown key: %s", key)
	}

	data := make(map[string]any)
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &data); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	}

	parsedValue, err := parseSetValue(key, value)
	if err != nil {
		return err
	}
	if err := setNestedKey(data, strings.Split(key, "."), parsedValue); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	// The file may carry the admin password hash.
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(data)
}

// Load reads config from trusted files and applies env overrides.
func Load() (*Config, error) {
	cfg := Default()

	if overridePath, ok := overrideConfigPath(); ok {
		if err := loadFile(overridePath, &cfg); err != nil {
			return nil, err
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			if err := loadFile(filepath.Join(home, FileName), &cfg); err != nil {
				return nil, err
			}
		}

		if trustProjectConfig() {
			if cwd, err := os.Getwd(); err == nil {
				projectPath := filepath.Join(cwd, FileName)
				loaded, err := loadFileIfExists(projectPath, &cfg)
				if err != nil {
					return nil, err
				}
				if loaded {
					cfg.TrustedProjectConfigPath = projectPath
				}
			}
		}
	}

	if cfg.LibraryPath == "" {
		if cwd, err := os.Getwd(); err == nil {
			cfg.LibraryPath = filepath.Join(cwd, DefaultLibraryDir)
		}
	}

	if v := strings.TrimSpace(os.Getenv(libraryEnvKey)); v != "" {
		cfg.LibraryPath = v
	}
	if v := strings.TrimSpace(os.Getenv(apiURLEnvKey)); v != "" {
		cfg.APIURL = v
	}
	if v := strings.TrimSpace(os.Getenv(logLevelEnvKey)); v != "" {
		cfg.LogLevel = v
	}
	if v := strings.TrimSpace(os.Getenv(maxUploadBytesEnvKey)); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil && parsed > 0 {
			cfg.Media.MaxUploadBytes = parsed
		}
	}
	if v := strings.TrimSpace(os.Getenv(allowedMediaTypesEnvKey)); v != "" {
		cfg.Media.AllowedMediaTypes = splitCSV(v)
	}
	if v := strings.TrimSpace(os.Getenv(ffmpegEnvKey)); v != "" {
		cfg.Media.FFmpegPath = v
	}

	cfg.normalizeDefaults()

	return &cfg, nil
}

func parseSetValue(key, value string) (any, error) {
	value = strings.TrimSpace(value)
	switch key {
	case "media.max_upload_bytes", "media.multipart_max_memory":
		parsed, err := strconv.ParseInt(value, 10, 64)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("%s must be a positive integer", key)
		}
		return parsed, nil
	case "media.gc_batch_size", "media.thumbnail_max_edge":
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("%s must be a positive integer", key)
		}
		return parsed, nil
	case "media.thumbnail_quality":
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed < 1 || parsed > 100 {
			return nil, fmt.Errorf("%s must be between 1 and 100", key)
		}
		return parsed, nil
	case "media.video_frame_offset":
		d, err := time.ParseDuration(value)
		if err != nil || d < 0 {
			return nil, fmt.Errorf("%s must be a non-negative duration such as 1s", key)
		}
		return value, nil
	case "log_level":
		switch strings.ToLower(value) {
		case "debug", "info", "warn", "warning", "error":
			return strings.ToLower(value), nil
		}
		return nil, fmt.Errorf("%s must be one of debug, info, warn, error", key)
	case "media.allowed_media_types":
		return splitCSV(value), nil
	default:
		return value, nil
	}
}

func setNestedKey(data map[string]any, parts []string, value any) error {
	if len(parts) == 0 {
		return fmt.Errorf("invalid config key")
	}
	if len(parts) == 1 {
		data[parts[0]] = value
		return nil
	}
	childRaw, ok := data[parts[0]]
	if !ok {
		child := map[string]any{}
		data[parts[0]] = child
		return setNestedKey(child, parts[1:], value)
	}
	child, ok := childRaw.(map[string]any)
	if !ok {
		return fmt.Errorf("cannot set nested key %q", strings.Join(parts, "."))
	}
	return setNestedKey(child, parts[1:], value)
}

func splitCSV(value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

func (c *Config) normalizeDefaults() {
	if strings.TrimSpace(c.LogLevel) == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.Media.MaxUploadBytes <= 0 {
		c.Media.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if c.Media.MultipartMaxMemory <= 0 {
		c.Media.MultipartMaxMemory = DefaultMultipartMaxMemory
	}
	if c.Media.ThumbnailMaxEdge <= 0 {
		c.Media.ThumbnailMaxEdge = DefaultThumbnailMaxEdge
	}
	if c.Media.ThumbnailQuality <= 0 || c.Media.ThumbnailQuality > 100 {
		c.Media.ThumbnailQuality = DefaultThumbnailQuality
	}
	if strings.TrimSpace(c.Media.VideoFrameOffset) == "" {
		c.Media.VideoFrameOffset = DefaultVideoFrameOffset
	}
	if c.Media.GCBatchSize <= 0 {
		c.Media.GCBatchSize = DefaultGCBatchSize
	}
	if strings.TrimSpace(c.Admin.Username) == "" {
		c.Admin.Username = DefaultAdminUser
	}
	c.Media.AllowedMediaTypes = normalizeConfiguredMediaTypes(c.Media.AllowedMediaTypes)
}

func normalizeConfiguredMediaTypes(rawValues []string) []string {
	if len(rawValues) == 0 {
		return nil
	}
	out := make([]string, 0, len(rawValues))
	seen := map[string]struct{}{}
	for _, raw := range rawValues {
		parsed, _, err := mime.ParseMediaType(strings.TrimSpace(raw))
		if err != nil {
			continue
		}
		normalized := strings.ToLower(parsed)
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	sort.Strings(out)
	if len(out) == 0 {
		return nil
	}
	return out
}

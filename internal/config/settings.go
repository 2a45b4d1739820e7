package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultMaxFileSizeMB = 50
	DefaultLogLevel      = "INFO"
	DefaultLogFilePath   = "logs/mcp-pdftools.log"
	DefaultTempDir       = "temp_files"
	DefaultServerName    = "pdf-processor-mcp"
	DefaultServerVersion = "1.0.0"
)

// Settings is the process-wide configuration. It is loaded once at startup and
// passed by value into every component that needs it.
type Settings struct {
	MaxFileSizeMB int    `yaml:"max_file_size_mb"`
	LogLevel      string `yaml:"log_level"`
	LogFilePath   string `yaml:"log_file_path"`
	TempDir       string `yaml:"temp_dir"`
	ServerName    string `yaml:"server_name"`
	ServerVersion string `yaml:"server_version"`
}

// LoadOptions controls where Load looks for configuration besides the process environment.
type LoadOptions struct {
	// ConfigFile is an optional YAML file. A missing file is an error when set explicitly.
	ConfigFile string
	// EnvFile is a dotenv file, ".env" when empty. A missing dotenv file is ignored.
	EnvFile string
	// Environ overrides os.Environ, mostly for tests.
	Environ []string
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{
		MaxFileSizeMB: DefaultMaxFileSizeMB,
		LogLevel:      DefaultLogLevel,
		LogFilePath:   DefaultLogFilePath,
		TempDir:       DefaultTempDir,
		ServerName:    DefaultServerName,
		ServerVersion: DefaultServerVersion,
	}
}

// Load builds Settings from defaults, then the YAML file, then the dotenv file, then the
// process environment. Later sources win.
func Load(opts LoadOptions) (Settings, error) {
	s := Defaults()

	if opts.ConfigFile != "" {
		data, err := os.ReadFile(opts.ConfigFile)
		if err != nil {
			return Settings{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &s); err != nil {
			return Settings{}, fmt.Errorf("failed to parse config file %s: %w", opts.ConfigFile, err)
		}
	}

	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	dotenv, err := godotenv.Read(envFile)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Settings{}, fmt.Errorf("failed to read env file %s: %w", envFile, err)
	}
	if err := s.apply(normaliseKeys(dotenv)); err != nil {
		return Settings{}, err
	}

	environ := opts.Environ
	if environ == nil {
		environ = os.Environ()
	}
	if err := s.apply(environToMap(environ)); err != nil {
		return Settings{}, err
	}

	s.LogLevel = strings.ToUpper(strings.TrimSpace(s.LogLevel))
	if s.MaxFileSizeMB <= 0 {
		return Settings{}, fmt.Errorf("max_file_size_mb must be positive, got %d", s.MaxFileSizeMB)
	}

	return s, nil
}

// apply overlays recognised keys from values onto s. Keys must already be upper-case.
func (s *Settings) apply(values map[string]string) error {
	if v, ok := values["MAX_FILE_SIZE_MB"]; ok && v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("invalid MAX_FILE_SIZE_MB %q: %w", v, err)
		}
		s.MaxFileSizeMB = n
	}
	if v, ok := values["LOG_LEVEL"]; ok && v != "" {
		s.LogLevel = v
	}
	if v, ok := values["LOG_FILE_PATH"]; ok && v != "" {
		s.LogFilePath = v
	}
	if v, ok := values["TEMP_DIR"]; ok && v != "" {
		s.TempDir = v
	}
	if v, ok := values["SERVER_NAME"]; ok && v != "" {
		s.ServerName = v
	}
	if v, ok := values["SERVER_VERSION"]; ok && v != "" {
		s.ServerVersion = v
	}
	return nil
}

// TempPath returns the absolute temp directory path.
func (s Settings) TempPath() string {
	return absPath(s.TempDir)
}

// LogPath returns the absolute log file path.
func (s Settings) LogPath() string {
	return absPath(s.LogFilePath)
}

// MaxFileSizeBytes returns the size ceiling in bytes.
func (s Settings) MaxFileSizeBytes() int64 {
	return int64(s.MaxFileSizeMB) * 1024 * 1024
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

func normaliseKeys(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[strings.ToUpper(k)] = v
	}
	return out
}

func environToMap(environ []string) map[string]string {
	out := make(map[string]string, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		out[strings.ToUpper(k)] = v
	}
	return out
}

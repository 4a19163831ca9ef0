package config

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/leapstack-labs/dialectshift/pkg/core"
	"github.com/spf13/pflag"
)

// loggerKey is used to store logger in context.
type loggerKey struct{}

// EnvPrefix prefixes the environment variables read as configuration.
// Nested keys use a double underscore: DIALECTSHIFT_MIGRATE__BATCH_SIZE.
const EnvPrefix = "DIALECTSHIFT_"

// maxUpwardSearchLevels limits how far up the directory tree to search for config files.
const maxUpwardSearchLevels = 10

// flagKeys maps flag names to config keys where the two differ.
var flagKeys = map[string]string{
	"disable":    "rewrite.disabled",
	"sqlite":     "migrate.sqlite",
	"postgres":   "migrate.postgres",
	"batch-size": "migrate.batch_size",
	"tables":     "migrate.tables",
}

// Package-level config file tracking
var (
	configFileUsed string
	currentConfig  *Config // Stores the loaded config for access by commands
)

// findConfigFile searches upward from startDir for a config file.
// Returns empty string if not found within maxUpwardSearchLevels.
func findConfigFile(startDir string) string {
	dir := startDir
	for i := 0; i < maxUpwardSearchLevels; i++ {
		candidate := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		dir = parent
	}
	return ""
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not absolute.
// Returns the path unchanged if it's empty or already absolute.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

// ResetConfig clears the loaded configuration. Used for testing.
func ResetConfig() {
	configFileUsed = ""
	currentConfig = nil
}

// defaults returns Default() as a koanf map.
func defaults() map[string]any {
	d := Default()
	imports := make([]any, len(d.Rewrite.Imports))
	for i, imp := range d.Rewrite.Imports {
		imports[i] = map[string]any{"from": imp.From, "to": imp.To}
	}
	return map[string]any{
		"routes_dir": d.RoutesDir,
		"files":      d.Files,
		"workers":    0,
		"dry_run":    false,
		"verbose":    false,
		"output":     d.OutputFormat,
		"rewrite": map[string]any{
			"imports":        imports,
			"receivers":      d.Rewrite.Receivers,
			"query_method":   d.Rewrite.QueryMethod,
			"connect_method": d.Rewrite.ConnectMethod,
			"release_method": d.Rewrite.ReleaseMethod,
			"helpers": map[string]any{
				"get": d.Rewrite.Helpers.Get,
				"run": d.Rewrite.Helpers.Run,
				"all": d.Rewrite.Helpers.All,
			},
			"marker": d.Rewrite.Marker,
		},
		"migrate": map[string]any{
			"batch_size": d.Migrate.BatchSize,
		},
	}
}

// LoadConfig loads configuration from defaults, the config file,
// environment variables and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults.
// An explicit cfgFile must exist; otherwise dialectshift.yaml is searched
// for from the working directory upward.
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Load defaults
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Find and load config file
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	configFileUsed = cfgFile
	if configFileUsed == "" {
		configFileUsed = findConfigFile(cwd)
	}
	projectRoot := cwd
	if configFileUsed != "" {
		if err := k.Load(file.Provider(configFileUsed), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFileUsed, err)
		}
		if abs, err := filepath.Abs(configFileUsed); err == nil {
			projectRoot = filepath.Dir(abs)
		}
	}

	// 3. Load environment variables
	// Transform: DIALECTSHIFT_MIGRATE__BATCH_SIZE -> migrate.batch_size
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Load flags (highest priority - overrides env vars and config file)
	var flagRoutesDir string
	if flags != nil {
		if f := flags.Lookup("routes-dir"); f != nil && f.Changed {
			flagRoutesDir, _ = filepath.Abs(f.Value.String())
		}
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			// Only load flags that were explicitly set
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				// Transform kebab-case to snake_case for config keys
				key = strings.ReplaceAll(f.Name, "-", "_")
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToSliceHookFunc(","),
				severityHook,
			),
			Result:           &cfg,
			WeaklyTypedInput: true,
		},
	}); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// 6. Resolve relative paths against the project root. A routes dir
	// given as a flag is relative to the working directory instead.
	cfg.ProjectRoot = projectRoot
	if flagRoutesDir != "" {
		cfg.RoutesDir = flagRoutesDir
	} else {
		cfg.RoutesDir = resolvePathRelativeTo(cfg.RoutesDir, projectRoot)
	}

	// Expand environment variables in connection settings
	cfg.Migrate.Postgres = expandEnvVars(cfg.Migrate.Postgres)
	cfg.Migrate.SQLite = expandEnvVars(cfg.Migrate.SQLite)
	if cfg.Migrate.SQLite != "" {
		cfg.Migrate.SQLite = resolvePathRelativeTo(cfg.Migrate.SQLite, projectRoot)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Store config for access by commands
	currentConfig = &cfg

	return &cfg, nil
}

// severityHook decodes severity names such as "warning".
func severityHook(from, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(core.Severity(0)) || from.Kind() != reflect.String {
		return data, nil
	}
	s, _ := data.(string)
	sev, ok := core.ParseSeverity(s)
	if !ok {
		return nil, fmt.Errorf("unknown severity %q (want error, warning, info or hint)", s)
	}
	return sev, nil
}

// GetConfigFileUsed returns the path to the config file being used, if any.
func GetConfigFileUsed() string {
	return configFileUsed
}

// GetCurrentConfig returns the currently loaded configuration.
// This is available after LoadConfig is called.
func GetCurrentConfig() *Config {
	return currentConfig
}

// NewLogger returns a text logger writing to w. Debug records are only
// written when verbose is set.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// WithLogger returns a copy of ctx carrying logger.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	// Return discard logger as safe fallback
	return slog.New(slog.DiscardHandler)
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR}
		varName := match[2 : len(match)-1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		return match // Return original if not found
	})
}

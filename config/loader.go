package config

import (
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/kbukum/iockit/logger"
)

// FileSystem abstracts the file operations the loader needs (useful for testing).
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// OSFileSystem implements FileSystem on the real file system.
type OSFileSystem struct{}

func (OSFileSystem) Exists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

func (OSFileSystem) LoadEnv(p string) error {
	return godotenv.Load(p)
}

// ResolvedFiles contains the resolved config and env file paths.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// Resolver finds the config.yml and .env files for a service.
type Resolver struct {
	FileSystem FileSystem
}

// ResolveFiles returns the explicit paths from opts when set, otherwise the
// first match in the search directories.
func (r *Resolver) ResolveFiles(serviceName string, opts LoaderConfig) ResolvedFiles {
	resolved := ResolvedFiles{
		ConfigFile: opts.ConfigFile,
		EnvFile:    opts.EnvFile,
	}
	dirs := searchDirs(serviceName)
	if resolved.ConfigFile == "" {
		resolved.ConfigFile = r.first(dirs, "config.yml")
	}
	if resolved.EnvFile == "" {
		resolved.EnvFile = r.first(dirs, ".env."+serviceName, ".env")
	}
	return resolved
}

// first returns the first existing file, trying every name in every dir
// before moving to the next name.
func (r *Resolver) first(dirs []string, names ...string) string {
	for _, name := range names {
		for _, dir := range dirs {
			p := path.Join(dir, name)
			if r.FileSystem.Exists(p) {
				return p
			}
		}
	}
	return ""
}

// searchDirs lists the directories searched for a service's files, most
// specific first. A hyphenated service name is also tried by its last segment
// (order-api -> api).
func searchDirs(serviceName string) []string {
	names := []string{serviceName}
	if idx := strings.LastIndex(serviceName, "-"); idx != -1 && idx < len(serviceName)-1 {
		names = append(names, serviceName[idx+1:])
	}

	var dirs []string
	for _, up := range []string{".", "..", "../.."} {
		for _, n := range names {
			dirs = append(dirs, path.Join(up, "cmd", n))
		}
	}
	for _, up := range []string{".", ".."} {
		for _, n := range names {
			dirs = append(dirs, path.Join(up, "config", n))
		}
		dirs = append(dirs, path.Join(up, "config"))
	}
	return append(dirs, ".", "..")
}

// LoaderConfig holds dependencies and optional file overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string         // Direct config file path (optional)
	EnvFile    string         // Direct env file path (optional)
	Defaults   map[string]any // Extra viper defaults, keyed by dotted path
}

// LoaderOption is a functional option for Load.
type LoaderOption func(*LoaderConfig)

// WithFileSystem sets a custom filesystem for the loader.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path.
func WithConfigFile(p string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = p }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(p string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = p }
}

// WithDefaults adds viper defaults applied below every file and env value.
func WithDefaults(defaults map[string]any) LoaderOption {
	return func(lc *LoaderConfig) {
		if lc.Defaults == nil {
			lc.Defaults = make(map[string]any, len(defaults))
		}
		for k, v := range defaults {
			lc.Defaults[k] = v
		}
	}
}

// Load loads configuration for a service into cfg. Precedence, lowest first:
// container defaults, WithDefaults values, config.yml, environment (including
// variables from the .env file).
func Load(serviceName string, cfg any, opts ...LoaderOption) error {
	var lc LoaderConfig
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.FileSystem == nil {
		lc.FileSystem = OSFileSystem{}
	}

	resolver := &Resolver{FileSystem: lc.FileSystem}
	files := resolver.ResolveFiles(serviceName, lc)

	v := viper.New()
	for key, value := range containerDefaults() {
		v.SetDefault(key, value)
	}
	for key, value := range lc.Defaults {
		v.SetDefault(key, value)
	}

	if files.ConfigFile != "" && lc.FileSystem.Exists(files.ConfigFile) {
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			logger.Warn("failed to read config file", logger.Fields("file", files.ConfigFile, logger.FieldError, err.Error()))
		}
	}

	if files.EnvFile != "" && lc.FileSystem.Exists(files.EnvFile) {
		if err := lc.FileSystem.LoadEnv(files.EnvFile); err != nil {
			logger.Warn("failed to load .env file", logger.Fields("file", files.EnvFile, logger.FieldError, err.Error()))
		}
	}
	bindEnv(v, os.Environ())

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config for service %s: %w", serviceName, err)
	}
	logger.Debug("config loaded", logger.Fields("service", serviceName, "file", files.ConfigFile, "env_file", files.EnvFile))
	return nil
}

// containerDefaults are the container policy values that differ from Go's
// zero values.
func containerDefaults() map[string]any {
	d := DefaultContainerConfig()
	return map[string]any{
		"container.allow_circular_references":   d.AllowCircularReferences,
		"container.allow_definition_overriding": d.AllowDefinitionOverriding,
		"container.shutdown_timeout":            d.ShutdownTimeout,
	}
}

// bindEnv sets every KEY=value pair under each nested key it could address.
func bindEnv(v *viper.Viper, environ []string) {
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}
		for _, variant := range envKeyVariants(key) {
			v.Set(variant, value)
		}
	}
}

// envKeyVariants maps an environment variable to the dotted keys it may mean.
// Each underscore is a nesting boundary for a prefix, and the remainder keeps
// its underscores:
//
//	CONTAINER_SHUTDOWN_TIMEOUT -> container_shutdown_timeout,
//	    container.shutdown_timeout, container.shutdown.timeout
func envKeyVariants(envKey string) []string {
	lower := strings.ToLower(envKey)
	parts := strings.Split(lower, "_")
	if len(parts) == 1 {
		return []string{lower}
	}

	seen := map[string]bool{lower: true}
	variants := []string{lower}
	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			variants = append(variants, s)
		}
	}
	for i := 1; i < len(parts); i++ {
		add(strings.Join(parts[:i], ".") + "." + strings.Join(parts[i:], "_"))
	}
	add(strings.Join(parts, "."))
	return variants
}

package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/toyz/delegen/internal/emitter"
	"github.com/toyz/delegen/internal/errors"
	"github.com/toyz/delegen/internal/models"
	"github.com/toyz/delegen/internal/utils"
)

// Log formats accepted by log_format
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// ConfigFileName is the project configuration file looked up in the working directory
const ConfigFileName = ".delegen"

// EnvPrefix prefixes every environment variable delegen reads
const EnvPrefix = "DELEGEN"

// Config holds the configuration of one generation run
type Config struct {
	// Patterns are the package patterns passed to go/packages
	Patterns []string `mapstructure:"patterns" yaml:"patterns"`

	// Exclude adds member names to the default exclusion list
	Exclude []string `mapstructure:"exclude" yaml:"exclude"`

	// Unexported forwards same-package unexported methods for every declaration
	Unexported bool `mapstructure:"unexported" yaml:"unexported"`

	// MaxRounds bounds how often deferred declarations are retried
	MaxRounds int `mapstructure:"max_rounds" yaml:"max_rounds"`

	// FileSuffix is appended to the snake_case type name to name outputs
	FileSuffix string `mapstructure:"file_suffix" yaml:"file_suffix"`

	// FileNaming is "snake" (repository_delegate.go) or "verbatim" (Repository<suffix>)
	FileNaming string `mapstructure:"file_naming" yaml:"file_naming"`

	// Report is the path of the YAML run report; empty disables it
	Report string `mapstructure:"report" yaml:"report"`

	// LogFormat selects colored text or JSON diagnostics
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`

	Verbose bool `mapstructure:"verbose" yaml:"verbose"`
	Quiet   bool `mapstructure:"quiet" yaml:"quiet"`

	// Dump prints the discovered declaration models of every round
	Dump bool `mapstructure:"dump" yaml:"dump"`

	// Dir is the directory patterns are resolved from
	Dir string `mapstructure:"dir" yaml:"dir"`

	BuildTags []string `mapstructure:"build_tags" yaml:"build_tags"`
}

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("patterns", []string{"./..."})
	v.SetDefault("exclude", []string{})
	v.SetDefault("unexported", false)
	v.SetDefault("max_rounds", 10)
	v.SetDefault("file_suffix", models.DefaultFileSuffix)
	v.SetDefault("file_naming", string(emitter.NamingSnake))
	v.SetDefault("report", "")
	v.SetDefault("log_format", LogFormatText)
	v.SetDefault("verbose", false)
	v.SetDefault("quiet", false)
	v.SetDefault("dump", false)
	v.SetDefault("dir", ".")
	v.SetDefault("build_tags", []string{})
}

// flagKeys maps command line flags to configuration keys
var flagKeys = map[string]string{
	"exclude":     "exclude",
	"unexported":  "unexported",
	"max-rounds":  "max_rounds",
	"file-suffix": "file_suffix",
	"file-naming": "file_naming",
	"report":      "report",
	"log-format":  "log_format",
	"verbose":     "verbose",
	"quiet":       "quiet",
	"dump":        "dump",
	"dir":         "dir",
	"tags":        "build_tags",
}

// NewViper creates a viper instance reading, from lowest to highest
// precedence, defaults, the config file and DELEGEN_* environment variables.
// An empty configFile looks for .delegen.yaml in dir.
func NewViper(configFile, dir string) (*viper.Viper, error) {
	v := viper.New()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(ConfigFileName)
		v.SetConfigType("yaml")
		if dir == "" {
			dir = "."
		}
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, errors.WrapConfigurationError(describeConfig(configFile), "read", err)
		}
	}

	return v, nil
}

// BindFlags binds the flags of a command to their configuration keys.
// Flags only take precedence when they were set explicitly.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return errors.WrapConfigurationError("flags", "bind", err)
		}
	}
	return nil
}

// LoadConfig decodes and validates the configuration held by v
func LoadConfig(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.WrapConfigurationError(describeConfig(v.ConfigFileUsed()), "decode", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks option values that cannot be expressed as defaults
func (c *Config) Validate() error {
	var problems []string
	if c.MaxRounds < 1 {
		problems = append(problems, fmt.Sprintf("max_rounds must be at least 1, got %d", c.MaxRounds))
	}
	if !strings.HasSuffix(c.FileSuffix, ".go") {
		problems = append(problems, fmt.Sprintf("file_suffix %q must end in .go", c.FileSuffix))
	}
	switch emitter.Naming(c.FileNaming) {
	case "", emitter.NamingSnake, emitter.NamingVerbatim:
	default:
		problems = append(problems, fmt.Sprintf("file_naming must be %q or %q, got %q", emitter.NamingSnake, emitter.NamingVerbatim, c.FileNaming))
	}
	switch c.LogFormat {
	case LogFormatText, LogFormatJSON:
	default:
		problems = append(problems, fmt.Sprintf("log_format must be %q or %q, got %q", LogFormatText, LogFormatJSON, c.LogFormat))
	}
	if c.Verbose && c.Quiet {
		problems = append(problems, "verbose and quiet cannot both be set")
	}
	if len(problems) == 0 {
		return nil
	}
	return errors.Newf(errors.ConfigurationErrorCode, "invalid configuration: %s", strings.Join(problems, "; ")).
		WithContext("problems", problems)
}

// DiagnosticLevel maps verbose and quiet onto a diagnostic level
func (c *Config) DiagnosticLevel() utils.DiagnosticLevel {
	switch {
	case c.Quiet:
		return utils.DiagnosticError
	case c.Verbose:
		return utils.DiagnosticDebug
	default:
		return utils.DiagnosticInfo
	}
}

// NewLogger builds the logger selected by log_format. Text diagnostics
// write to out and errOut; JSON logs are written to errOut.
func (c *Config) NewLogger(out, errOut io.Writer) utils.Logger {
	if c.LogFormat == LogFormatJSON {
		return utils.NewJSONLogger(errOut, c.DiagnosticLevel())
	}
	diagnostics := utils.NewDiagnosticSystem(c.DiagnosticLevel())
	if out != io.Writer(os.Stdout) || errOut != io.Writer(os.Stderr) {
		diagnostics.SetOutput(out, errOut)
	}
	return diagnostics
}

func describeConfig(path string) string {
	if path == "" {
		return ConfigFileName + ".yaml"
	}
	return path
}

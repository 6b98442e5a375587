package server

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/lox/ginrummy/internal/auth"
	"github.com/lox/ginrummy/internal/fileutil"
	"github.com/lox/ginrummy/internal/game"
	"github.com/zclconf/go-cty/cty"
)

// ServerConfig represents the complete server configuration. Every block
// is optional, so a file holding only rules is enough for play.
type ServerConfig struct {
	Server *ServerSettings `hcl:"server,block"`
	Rules  *RulesConfig   `hcl:"rules,block"`
	Tokens []TokenConfig  `hcl:"token,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address     string `hcl:"address,optional"`
	Port        int    `hcl:"port,optional"`
	LogLevel    string `hcl:"log_level,optional"`
	LogFile     string `hcl:"log_file,optional"`
	IdleTimeout string `hcl:"idle_timeout,optional"`
	AuthURL     string `hcl:"auth_url,optional"`
	AuthSecret  string `hcl:"auth_secret,optional"`
}

// TokenConfig is a static API token. The label names its holder:
//
//	token "alice" {
//	  secret = "..."
//	}
type TokenConfig struct {
	Name   string `hcl:"name,label"`
	Secret string `hcl:"secret"`
}

// RulesConfig overrides scoring constants. Unset attributes keep the
// defaults, so knock_limit = 0 is distinguishable from absent.
type RulesConfig struct {
	KnockLimit    *int `hcl:"knock_limit,optional"`
	GinBonus      *int `hcl:"gin_bonus,optional"`
	BigGinBonus   *int `hcl:"big_gin_bonus,optional"`
	UndercutBonus *int `hcl:"undercut_bonus,optional"`
	MatchTarget   *int `hcl:"match_target,optional"`
	RoundWinBonus *int `hcl:"round_win_bonus,optional"`
}

const (
	defaultAddress     = "localhost"
	defaultPort        = 8080
	defaultLogLevel    = "info"
	defaultIdleTimeout = "30m"
)

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Server: &ServerSettings{
			Address:     defaultAddress,
			Port:        defaultPort,
			LogLevel:    defaultLogLevel,
			IdleTimeout: defaultIdleTimeout,
		},
	}
}

// LoadServerConfig loads server configuration from an HCL file. A missing
// file yields the defaults.
func LoadServerConfig(filename string) (*ServerConfig, error) {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return DefaultServerConfig(), nil
	}

	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return ParseServerConfig(src, filename)
}

// ParseServerConfig decodes HCL source, applying defaults for missing values.
func ParseServerConfig(src []byte, filename string) (*ServerConfig, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config ServerConfig
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	if config.Server == nil {
		config.Server = &ServerSettings{}
	}
	if config.Server.Address == "" {
		config.Server.Address = defaultAddress
	}
	if config.Server.Port == 0 {
		config.Server.Port = defaultPort
	}
	if config.Server.LogLevel == "" {
		config.Server.LogLevel = defaultLogLevel
	}
	if config.Server.IdleTimeout == "" {
		config.Server.IdleTimeout = defaultIdleTimeout
	}
	if len(config.Tokens) == 0 {
		config.Tokens = nil
	}
	return &config, nil
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if _, err := log.ParseLevel(c.Server.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", c.Server.LogLevel, err)
	}
	if d, err := time.ParseDuration(c.Server.IdleTimeout); err != nil {
		return fmt.Errorf("invalid idle timeout %q: %w", c.Server.IdleTimeout, err)
	} else if d <= 0 {
		return fmt.Errorf("idle timeout must be positive: %s", d)
	}
	if err := c.GameRules().Validate(); err != nil {
		return fmt.Errorf("rules: %w", err)
	}
	if c.Server.AuthURL != "" && len(c.Tokens) > 0 {
		return errors.New("set either auth_url or token blocks, not both")
	}
	names := make(map[string]bool, len(c.Tokens))
	secrets := make(map[string]string, len(c.Tokens))
	for _, t := range c.Tokens {
		if t.Secret == "" {
			return fmt.Errorf("token %q has an empty secret", t.Name)
		}
		if names[t.Name] {
			return fmt.Errorf("duplicate token %q", t.Name)
		}
		if other, ok := secrets[t.Secret]; ok {
			return fmt.Errorf("tokens %q and %q share a secret", other, t.Name)
		}
		names[t.Name] = true
		secrets[t.Secret] = t.Name
	}
	return nil
}

// Validator returns the API authenticator for the configuration: the
// external service when auth_url is set, the static tokens when any are
// configured, otherwise no authentication.
func (c *ServerConfig) Validator() auth.Validator {
	switch {
	case c.Server.AuthURL != "":
		return auth.NewHTTPValidator(c.Server.AuthURL, c.Server.AuthSecret)
	case len(c.Tokens) > 0:
		secrets := make(map[string]string, len(c.Tokens))
		for _, t := range c.Tokens {
			secrets[t.Name] = t.Secret
		}
		return auth.NewStaticValidator(secrets)
	default:
		return auth.NewNoopValidator()
	}
}

// GetServerAddress returns the full server address
func (c *ServerConfig) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// IdleTimeout returns how long an untouched match is kept. Invalid values
// fall back to the default; Validate reports them.
func (c *ServerConfig) IdleTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.IdleTimeout)
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(defaultIdleTimeout)
	}
	return d
}

// GameRules merges the rules block over game.DefaultRules.
func (c *ServerConfig) GameRules() game.Rules {
	rules := game.DefaultRules()
	if c.Rules == nil {
		return rules
	}
	set := func(dst *int, v *int) {
		if v != nil {
			*dst = *v
		}
	}
	set(&rules.KnockLimit, c.Rules.KnockLimit)
	set(&rules.GinBonus, c.Rules.GinBonus)
	set(&rules.BigGinBonus, c.Rules.BigGinBonus)
	set(&rules.UndercutBonus, c.Rules.UndercutBonus)
	set(&rules.MatchTarget, c.Rules.MatchTarget)
	set(&rules.RoundWinBonus, c.Rules.RoundWinBonus)
	return rules
}

// Encode renders the configuration as HCL with every rule spelled out.
func (c *ServerConfig) Encode() []byte {
	f := hclwrite.NewEmptyFile()
	root := f.Body()

	server := root.AppendNewBlock("server", nil).Body()
	server.SetAttributeValue("address", cty.StringVal(c.Server.Address))
	server.SetAttributeValue("port", cty.NumberIntVal(int64(c.Server.Port)))
	server.SetAttributeValue("log_level", cty.StringVal(c.Server.LogLevel))
	if c.Server.LogFile != "" {
		server.SetAttributeValue("log_file", cty.StringVal(c.Server.LogFile))
	}
	server.SetAttributeValue("idle_timeout", cty.StringVal(c.Server.IdleTimeout))
	if c.Server.AuthURL != "" {
		server.SetAttributeValue("auth_url", cty.StringVal(c.Server.AuthURL))
	}
	if c.Server.AuthSecret != "" {
		server.SetAttributeValue("auth_secret", cty.StringVal(c.Server.AuthSecret))
	}
	root.AppendNewline()

	r := c.GameRules()
	rules := root.AppendNewBlock("rules", nil).Body()
	rules.SetAttributeValue("knock_limit", cty.NumberIntVal(int64(r.KnockLimit)))
	rules.SetAttributeValue("gin_bonus", cty.NumberIntVal(int64(r.GinBonus)))
	rules.SetAttributeValue("big_gin_bonus", cty.NumberIntVal(int64(r.BigGinBonus)))
	rules.SetAttributeValue("undercut_bonus", cty.NumberIntVal(int64(r.UndercutBonus)))
	rules.SetAttributeValue("match_target", cty.NumberIntVal(int64(r.MatchTarget)))
	rules.SetAttributeValue("round_win_bonus", cty.NumberIntVal(int64(r.RoundWinBonus)))

	for _, t := range c.Tokens {
		root.AppendNewline()
		token := root.AppendNewBlock("token", []string{t.Name}).Body()
		token.SetAttributeValue("secret", cty.StringVal(t.Secret))
	}

	return f.Bytes()
}

// ErrConfigExists is returned by WriteDefaultConfig when the file exists
// and overwrite is false.
var ErrConfigExists = errors.New("server: config file already exists")

// WriteDefaultConfig writes the default configuration to path atomically.
func WriteDefaultConfig(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrConfigExists, path)
		}
	}
	return fileutil.WriteFileAtomic(path, DefaultServerConfig().Encode(), 0o644)
}

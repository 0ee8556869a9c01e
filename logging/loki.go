package logging

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/upb/gateway-policy-hooks/gateway"
	"go.uber.org/zap"
)

// LokiPluginName is the registry name of the Loki log sink
const LokiPluginName = "loki"

// LokiConfig describes a Grafana Loki push destination
type LokiConfig struct {
	URL      string            `validate:"required,url"`
	Username string            // Grafana Cloud account identifier
	Job      string            `validate:"required"`
	Password string            // Sourced from the process environment
	Version  int               `validate:"min=1,max=2"`
	Fields   map[string]string `validate:"omitempty,dive,keys,required,endkeys,required"`
}

var validate = validator.New()

// Validate checks that the destination is usable
func (c LokiConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid loki config: %w", err)
	}
	return nil
}

// LokiPlugin declares a Loki destination to the host runtime.
// Shipping log lines is the host's responsibility.
type LokiPlugin struct {
	config LokiConfig
}

var _ gateway.LoggingPlugin = (*LokiPlugin)(nil)

// NewLokiPlugin creates a new LokiPlugin
func NewLokiPlugin(cfg LokiConfig) (*LokiPlugin, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	fields := make(map[string]string, len(cfg.Fields))
	for k, v := range cfg.Fields {
		fields[k] = v
	}
	cfg.Fields = fields
	return &LokiPlugin{config: cfg}, nil
}

// Name returns the plugin name
func (p *LokiPlugin) Name() string {
	return LokiPluginName
}

// Config returns a copy of the destination configuration
func (p *LokiPlugin) Config() LokiConfig {
	cfg := p.config
	cfg.Fields = make(map[string]string, len(p.config.Fields))
	for k, v := range p.config.Fields {
		cfg.Fields[k] = v
	}
	return cfg
}

// Fields returns the static tags attached to every shipped log line, sorted by key
func (p *LokiPlugin) Fields() []zap.Field {
	keys := make([]string, 0, len(p.config.Fields))
	for k := range p.config.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]zap.Field, 0, len(keys)+1)
	fields = append(fields, zap.String("job", p.config.Job))
	for _, k := range keys {
		fields = append(fields, zap.String(k, p.config.Fields[k]))
	}
	return fields
}

// String describes the destination without its credential
func (p *LokiPlugin) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "loki(url=%s user=%s job=%s v%d", p.config.URL, p.config.Username, p.config.Job, p.config.Version)
	if p.config.Password != "" {
		b.WriteString(" password=***")
	}
	b.WriteString(")")
	return b.String()
}

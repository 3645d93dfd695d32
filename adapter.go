package chatmux

import (
	"log/slog"
	"strings"
)

// DefaultModelID is used when construction does not name a default model.
const DefaultModelID = "anthropic/claude-opus-4-5"

// Adapter is the provider-agnostic chat-completion client. Construction
// resolves the effective provider or gateway descriptor and publishes the
// credential environment the transport expects; after that the adapter is
// immutable and safe for concurrent calls.
type Adapter struct {
	transport    Completer
	specs        []ProviderSpec
	apiKey       string
	apiBase      string
	defaultModel string
	extraHeaders map[string]string
	gateway      *ProviderSpec
	env          Environ
	logger       *slog.Logger
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithTransport sets the completion transport. Defaults to a GollmTransport.
func WithTransport(t Completer) Option {
	return func(a *Adapter) { a.transport = t }
}

// WithAPIKey sets the credential passed to the transport and published to
// the provider's environment variable.
func WithAPIKey(key string) Option {
	return func(a *Adapter) { a.apiKey = key }
}

// WithAPIBase overrides the provider's base URL.
func WithAPIBase(base string) Option {
	return func(a *Adapter) { a.apiBase = base }
}

// WithDefaultModel sets the model used when a call does not name one.
func WithDefaultModel(model string) Option {
	return func(a *Adapter) { a.defaultModel = model }
}

// WithExtraHeaders attaches headers to every transport call (e.g. the
// APP-Code header some aggregators require).
func WithExtraHeaders(headers map[string]string) Option {
	return func(a *Adapter) { a.extraHeaders = headers }
}

// WithSpecs replaces the built-in registry table.
func WithSpecs(specs []ProviderSpec) Option {
	return func(a *Adapter) { a.specs = specs }
}

// WithEnviron replaces the environment store credentials are published to.
func WithEnviron(env Environ) Option {
	return func(a *Adapter) { a.env = env }
}

// WithLogger sets the debug logger. The adapter is silent by default.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Adapter) { a.logger = logger }
}

// New creates an Adapter. providerName is the configured provider identity
// (the config key the credentials came from); it is the primary gateway
// signal, with the API key and base URL as auto-detection fallback.
//
// Construction publishes credential environment variables for the detected
// provider. Re-constructing with the same configuration is idempotent;
// gateway mode intentionally overwrites a previously set credential because
// the explicit gateway signal is more authoritative than ambient state.
func New(providerName string, opts ...Option) *Adapter {
	a := &Adapter{
		specs:        Specs,
		defaultModel: DefaultModelID,
		env:          osEnviron{},
		logger:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.transport == nil {
		a.transport = NewGollmTransport()
	}

	a.gateway = findGateway(a.specs, providerName, a.apiKey, a.apiBase)
	if a.gateway != nil {
		a.logger.Debug("gateway detected", "gateway", a.gateway.Name)
	}

	if a.apiKey != "" {
		a.setupEnv()
	}
	return a
}

// DefaultModel returns the model used when a call does not name one.
func (a *Adapter) DefaultModel() string {
	return a.defaultModel
}

// setupEnv publishes credential environment variables for the effective
// descriptor. Gateway mode overwrites the credential unconditionally;
// standard mode only fills a gap. Extra variables are always set-if-absent.
func (a *Adapter) setupEnv() {
	spec := a.gateway
	if spec == nil {
		spec = findByModel(a.specs, a.defaultModel)
	}
	if spec == nil {
		return
	}

	if a.gateway != nil {
		a.setenv(spec.EnvKey, a.apiKey)
	} else {
		a.setenvIfAbsent(spec.EnvKey, a.apiKey)
	}

	effectiveBase := a.apiBase
	if effectiveBase == "" {
		effectiveBase = spec.DefaultAPIBase
	}
	for _, extra := range spec.EnvExtras {
		resolved := strings.ReplaceAll(extra.Value, "{api_key}", a.apiKey)
		resolved = strings.ReplaceAll(resolved, "{api_base}", effectiveBase)
		a.setenvIfAbsent(extra.Name, resolved)
	}
}

func (a *Adapter) setenv(key, value string) {
	if err := a.env.Setenv(key, value); err != nil {
		a.logger.Warn("setenv failed", "key", key, "error", err)
	}
}

func (a *Adapter) setenvIfAbsent(key, value string) {
	if _, ok := a.env.LookupEnv(key); !ok {
		a.setenv(key, value)
	}
}

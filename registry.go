package chatmux

import "strings"

// ProviderSpec is one registry record describing a provider or gateway's
// naming and credential conventions. All provider-specific behavior in the
// adapter is driven by these fields; there are no per-provider branches.
type ProviderSpec struct {
	// Name identifies the record and, for gateways, matches the configured
	// provider name.
	Name string `yaml:"name"`

	// Gateway marks a self-hosted or aggregating endpoint detected by
	// explicit configuration rather than by model-name heuristics.
	Gateway bool `yaml:"gateway,omitempty"`

	// Keywords are model-name substrings that select this record in
	// standard mode (FindByModel). Matched against the lower-cased model.
	Keywords []string `yaml:"keywords,omitempty"`

	// BaseURLHints are base-URL substrings used to auto-detect a gateway
	// when no provider name is configured.
	BaseURLHints []string `yaml:"base_url_hints,omitempty"`

	// EnvKey is the credential environment variable the transport reads.
	EnvKey string `yaml:"env_key"`

	// DefaultAPIBase fills {api_base} in EnvExtras when the caller did not
	// override the base URL.
	DefaultAPIBase string `yaml:"default_api_base,omitempty"`

	// Prefix is the routing prefix the transport expects on model names
	// (e.g. "openrouter" turns "foo" into "openrouter/foo").
	Prefix string `yaml:"prefix,omitempty"`

	// SkipPrefixes suppress prefixing when the model already starts with
	// one of them. Standard mode only.
	SkipPrefixes []string `yaml:"skip_prefixes,omitempty"`

	// StripModelPrefix discards any existing slash-delimited prefix before
	// the gateway prefix is applied. Gateway mode only.
	StripModelPrefix bool `yaml:"strip_model_prefix,omitempty"`

	// ForceStream marks endpoints whose wire protocol always returns
	// incremental chunks; the adapter streams and reassembles.
	ForceStream bool `yaml:"force_stream,omitempty"`

	// Overrides are scanned in order; the first rule whose pattern is a
	// substring of the lower-cased model name is merged into the request.
	Overrides []OverrideRule `yaml:"overrides,omitempty"`

	// EnvExtras are extra environment variables published at construction.
	// Values may reference {api_key} and {api_base}.
	EnvExtras []EnvExtra `yaml:"env_extras,omitempty"`
}

// OverrideRule maps a model-name substring to request parameter overrides.
type OverrideRule struct {
	Pattern string                 `yaml:"pattern"`
	Params  map[string]interface{} `yaml:"params"`
}

// EnvExtra is one (name, templated value) environment pair.
type EnvExtra struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

func temp(v float64) map[string]interface{} {
	return map[string]interface{}{"temperature": v}
}

// Specs is the built-in registry. Order matters: FindByModel returns the
// first record with a matching keyword, so more specific records go first.
var Specs = []ProviderSpec{
	{
		Name:           "openrouter",
		Keywords:       []string{"openrouter"},
		EnvKey:         "OPENROUTER_API_KEY",
		DefaultAPIBase: "https://openrouter.ai/api/v1",
		Prefix:         "openrouter",
		SkipPrefixes:   []string{"openrouter/"},
		EnvExtras:      []EnvExtra{{Name: "OPENROUTER_API_BASE", Value: "{api_base}"}},
	},
	{
		Name:         "anthropic",
		Keywords:     []string{"claude"},
		EnvKey:       "ANTHROPIC_API_KEY",
		Prefix:       "anthropic",
		SkipPrefixes: []string{"anthropic/", "openrouter/"},
	},
	{
		Name:     "openai",
		Keywords: []string{"gpt", "o1-", "o3-", "o4-"},
		EnvKey:   "OPENAI_API_KEY",
		// gpt-5 models reject non-default sampling parameters.
		Overrides: []OverrideRule{{Pattern: "gpt-5", Params: temp(1.0)}},
	},
	{
		Name:         "gemini",
		Keywords:     []string{"gemini"},
		EnvKey:       "GEMINI_API_KEY",
		Prefix:       "gemini",
		SkipPrefixes: []string{"gemini/", "vertex_ai/", "openrouter/"},
	},
	{
		Name:         "deepseek",
		Keywords:     []string{"deepseek"},
		EnvKey:       "DEEPSEEK_API_KEY",
		Prefix:       "deepseek",
		SkipPrefixes: []string{"deepseek/", "openrouter/"},
	},
	{
		Name:         "moonshot",
		Keywords:     []string{"kimi", "moonshot"},
		EnvKey:       "MOONSHOT_API_KEY",
		Prefix:       "moonshot",
		SkipPrefixes: []string{"moonshot/", "openrouter/"},
		// kimi-k2.5 requires temperature 1.0; earlier k2 releases cap at 0.6.
		Overrides: []OverrideRule{
			{Pattern: "kimi-k2.5", Params: temp(1.0)},
			{Pattern: "kimi-k2", Params: temp(0.6)},
		},
	},
	{
		Name:         "minimax",
		Keywords:     []string{"minimax"},
		EnvKey:       "MINIMAX_API_KEY",
		Prefix:       "minimax",
		SkipPrefixes: []string{"minimax/", "openrouter/"},
	},
	{
		Name:         "zhipu",
		Keywords:     []string{"glm", "zhipu"},
		EnvKey:       "ZHIPUAI_API_KEY",
		Prefix:       "zhipu",
		SkipPrefixes: []string{"zhipu/", "openrouter/"},
	},

	// Gateways. Never matched by model name; selected by configured provider
	// name or by base-URL hints.
	{
		Name:           "aihubmix",
		Gateway:        true,
		BaseURLHints:   []string{"aihubmix"},
		EnvKey:         "OPENAI_API_KEY",
		DefaultAPIBase: "https://aihubmix.com/v1",
		Prefix:         "openai",
		EnvExtras:      []EnvExtra{{Name: "OPENAI_API_BASE", Value: "{api_base}"}},
	},
	{
		Name:             "vllm",
		Gateway:          true,
		EnvKey:           "HOSTED_VLLM_API_KEY",
		Prefix:           "hosted_vllm",
		StripModelPrefix: true,
		EnvExtras:        []EnvExtra{{Name: "HOSTED_VLLM_API_BASE", Value: "{api_base}"}},
	},
	{
		Name:             "ollama",
		Gateway:          true,
		BaseURLHints:     []string{":11434"},
		EnvKey:           "OLLAMA_API_KEY",
		DefaultAPIBase:   "http://localhost:11434",
		Prefix:           "ollama",
		StripModelPrefix: true,
		EnvExtras:        []EnvExtra{{Name: "OLLAMA_API_BASE", Value: "{api_base}"}},
	},
	{
		Name:             "openwebui",
		Gateway:          true,
		BaseURLHints:     []string{"open-webui", "openwebui"},
		EnvKey:           "OPENAI_API_KEY",
		Prefix:           "openai",
		StripModelPrefix: true,
		// Open WebUI proxies answer with SSE regardless of the stream flag.
		ForceStream: true,
		EnvExtras:   []EnvExtra{{Name: "OPENAI_API_BASE", Value: "{api_base}"}},
	},
	{
		Name:      "litellm",
		Gateway:   true,
		EnvKey:    "LITELLM_PROXY_API_KEY",
		Prefix:    "litellm_proxy",
		EnvExtras: []EnvExtra{{Name: "LITELLM_PROXY_API_BASE", Value: "{api_base}"}},
	},
}

// FindByModel returns the first non-gateway spec with a keyword contained in
// the lower-cased model name, or nil when no record matches.
func FindByModel(model string) *ProviderSpec {
	return findByModel(Specs, model)
}

func findByModel(specs []ProviderSpec, model string) *ProviderSpec {
	lower := strings.ToLower(model)
	for i := range specs {
		if specs[i].Gateway {
			continue
		}
		for _, kw := range specs[i].Keywords {
			if strings.Contains(lower, kw) {
				return &specs[i]
			}
		}
	}
	return nil
}

// FindGateway returns the gateway spec for an explicitly configured provider
// name, falling back to base-URL auto-detection. Returns nil when neither
// signal identifies a gateway. The apiKey parameter is accepted for parity
// with the registry boundary; no current gateway is detectable by key shape.
func FindGateway(providerName, apiKey, apiBase string) *ProviderSpec {
	return findGateway(Specs, providerName, apiKey, apiBase)
}

func findGateway(specs []ProviderSpec, providerName, apiKey, apiBase string) *ProviderSpec {
	_ = apiKey
	if providerName != "" {
		for i := range specs {
			if specs[i].Gateway && specs[i].Name == providerName {
				return &specs[i]
			}
		}
		return nil
	}
	if apiBase == "" {
		return nil
	}
	lower := strings.ToLower(apiBase)
	for i := range specs {
		if !specs[i].Gateway {
			continue
		}
		for _, hint := range specs[i].BaseURLHints {
			if strings.Contains(lower, hint) {
				return &specs[i]
			}
		}
	}
	return nil
}

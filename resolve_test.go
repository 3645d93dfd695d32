package chatmux

import "testing"

func TestResolveModelStandardPrefix(t *testing.T) {
	adapter, _, _ := newTestAdapter(t, "")

	got := adapter.resolveModel("claude-opus-4-5")
	if got != "anthropic/claude-opus-4-5" {
		t.Errorf("expected anthropic prefix, got %q", got)
	}

	// Re-applying is idempotent: the skip-prefix check prevents
	// double-prefixing.
	if again := adapter.resolveModel(got); again != got {
		t.Errorf("resolveModel not idempotent: %q -> %q", got, again)
	}
}

func TestResolveModelSkipPrefixes(t *testing.T) {
	adapter, _, _ := newTestAdapter(t, "")

	// An openrouter-routed claude model must not gain a second prefix.
	got := adapter.resolveModel("openrouter/anthropic/claude-opus-4-5")
	if got != "openrouter/anthropic/claude-opus-4-5" {
		t.Errorf("expected model unchanged, got %q", got)
	}
}

func TestResolveModelRegistryMiss(t *testing.T) {
	adapter, _, _ := newTestAdapter(t, "")

	got := adapter.resolveModel("mystery-model-9000")
	if got != "mystery-model-9000" {
		t.Errorf("expected unknown model unchanged, got %q", got)
	}
}

func TestResolveModelNoPrefixSpec(t *testing.T) {
	adapter, _, _ := newTestAdapter(t, "")

	// The openai record defines no prefix; models pass through bare.
	got := adapter.resolveModel("gpt-5.2")
	if got != "gpt-5.2" {
		t.Errorf("expected model unchanged, got %q", got)
	}
}

func TestResolveModelGatewayStrip(t *testing.T) {
	adapter, _, _ := newTestAdapter(t, "vllm")

	stripped := adapter.resolveModel("anything/foo")
	bare := adapter.resolveModel("foo")
	if stripped != bare {
		t.Errorf("strip-enabled gateway: %q != %q", stripped, bare)
	}
	if stripped != "hosted_vllm/foo" {
		t.Errorf("expected gateway prefix, got %q", stripped)
	}

	if again := adapter.resolveModel(stripped); again != stripped {
		t.Errorf("gateway resolve not idempotent: %q -> %q", stripped, again)
	}
}

func TestResolveModelGatewayIgnoresSkipPrefixes(t *testing.T) {
	specs := []ProviderSpec{
		{
			Name:     "anthropic",
			Keywords: []string{"claude"},
			EnvKey:   "ANTHROPIC_API_KEY",
			Prefix:   "anthropic",
			// Would suppress prefixing in standard mode.
			SkipPrefixes: []string{"claude-"},
		},
		{
			Name:    "proxy",
			Gateway: true,
			EnvKey:  "PROXY_API_KEY",
			Prefix:  "proxy",
		},
	}
	adapter, _, _ := newTestAdapter(t, "proxy", WithSpecs(specs))

	got := adapter.resolveModel("claude-opus-4-5")
	if got != "proxy/claude-opus-4-5" {
		t.Errorf("gateway mode must ignore per-model skip prefixes, got %q", got)
	}
}

func TestApplyOverridesFirstMatchWins(t *testing.T) {
	specs := []ProviderSpec{{
		Name:     "moonshot",
		Keywords: []string{"kimi"},
		EnvKey:   "MOONSHOT_API_KEY",
		Overrides: []OverrideRule{
			{Pattern: "kimi-k3", Params: temp(0.3)},
			{Pattern: "kimi-k2.5", Params: temp(1.0)},
			{Pattern: "kimi", Params: temp(0.6)},
		},
	}}
	adapter, _, _ := newTestAdapter(t, "", WithSpecs(specs))

	// Matches rules 2 and 3; only rule 2 applies.
	req := ChatRequest{Temperature: defaultTemperature}
	adapter.applyOverrides("moonshot/Kimi-K2.5", &req)
	if req.Temperature != 1.0 {
		t.Errorf("expected first matching rule (1.0), got %v", req.Temperature)
	}
}

func TestApplyOverridesNoMatch(t *testing.T) {
	adapter, _, _ := newTestAdapter(t, "")

	req := ChatRequest{Temperature: defaultTemperature}
	adapter.applyOverrides("anthropic/claude-opus-4-5", &req)
	if req.Temperature != defaultTemperature {
		t.Errorf("expected temperature unchanged, got %v", req.Temperature)
	}
	if len(req.Params) != 0 {
		t.Errorf("expected no extra params, got %v", req.Params)
	}
}

func TestApplyOverridesUnknownKeyGoesToParams(t *testing.T) {
	specs := []ProviderSpec{{
		Name:     "openai",
		Keywords: []string{"gpt"},
		EnvKey:   "OPENAI_API_KEY",
		Overrides: []OverrideRule{{
			Pattern: "gpt-5",
			Params: map[string]interface{}{
				"temperature":      1.0,
				"max_tokens":       1024,
				"reasoning_effort": "high",
			},
		}},
	}}
	adapter, _, _ := newTestAdapter(t, "", WithSpecs(specs))

	req := ChatRequest{Temperature: defaultTemperature, MaxTokens: defaultMaxTokens}
	adapter.applyOverrides("gpt-5.2", &req)
	if req.Temperature != 1.0 {
		t.Errorf("expected temperature override, got %v", req.Temperature)
	}
	if req.MaxTokens != 1024 {
		t.Errorf("expected max_tokens override, got %v", req.MaxTokens)
	}
	if req.Params["reasoning_effort"] != "high" {
		t.Errorf("expected reasoning_effort in params, got %v", req.Params)
	}
}

func TestApplyOverridesUsesGatewaySpec(t *testing.T) {
	specs := []ProviderSpec{
		{
			Name:      "openai",
			Keywords:  []string{"gpt"},
			EnvKey:    "OPENAI_API_KEY",
			Overrides: []OverrideRule{{Pattern: "gpt", Params: temp(0.2)}},
		},
		{
			Name:      "proxy",
			Gateway:   true,
			EnvKey:    "PROXY_API_KEY",
			Overrides: []OverrideRule{{Pattern: "gpt", Params: temp(0.9)}},
		},
	}
	adapter, _, _ := newTestAdapter(t, "proxy", WithSpecs(specs))

	req := ChatRequest{Temperature: defaultTemperature}
	adapter.applyOverrides("gpt-5.2", &req)
	if req.Temperature != 0.9 {
		t.Errorf("gateway overrides must take precedence, got %v", req.Temperature)
	}
}

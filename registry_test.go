package chatmux

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindByModel(t *testing.T) {
	tests := []struct {
		model string
		want  string // spec name, "" for miss
	}{
		{"claude-opus-4-5", "anthropic"},
		{"anthropic/claude-sonnet-4-5", "anthropic"},
		{"gpt-5.2-mini", "openai"},
		{"gemini-3-pro-preview", "gemini"},
		{"deepseek-chat", "deepseek"},
		{"kimi-k2.5", "moonshot"},
		{"GLM-4.7", "zhipu"},
		{"openrouter/meta-llama/llama-4", "openrouter"},
		{"mystery-model", ""},
	}
	for _, tt := range tests {
		spec := FindByModel(tt.model)
		if tt.want == "" {
			assert.Nil(t, spec, "model %s", tt.model)
			continue
		}
		require.NotNil(t, spec, "model %s", tt.model)
		assert.Equal(t, tt.want, spec.Name, "model %s", tt.model)
	}
}

func TestFindByModelSkipsGateways(t *testing.T) {
	specs := []ProviderSpec{{
		Name:     "proxy",
		Gateway:  true,
		Keywords: []string{"claude"},
		EnvKey:   "PROXY_API_KEY",
	}}
	assert.Nil(t, findByModel(specs, "claude-opus-4-5"))
}

func TestFindGatewayByName(t *testing.T) {
	spec := FindGateway("vllm", "", "")
	require.NotNil(t, spec)
	assert.Equal(t, "vllm", spec.Name)
	assert.True(t, spec.Gateway)
}

func TestFindGatewayNamePrecedence(t *testing.T) {
	// Explicit provider name wins; no base-URL fallback when it misses.
	assert.Nil(t, FindGateway("ollama-but-wrong", "", "http://localhost:11434"))
}

func TestFindGatewayAutoDetectByBaseURL(t *testing.T) {
	spec := FindGateway("", "", "http://localhost:11434")
	require.NotNil(t, spec)
	assert.Equal(t, "ollama", spec.Name)

	spec = FindGateway("", "", "https://aihubmix.com/v1")
	require.NotNil(t, spec)
	assert.Equal(t, "aihubmix", spec.Name)
}

func TestFindGatewayNoSignal(t *testing.T) {
	assert.Nil(t, FindGateway("", "", ""))
	assert.Nil(t, FindGateway("", "sk-whatever", "https://api.example.com/v1"))
}

func TestFindGatewayStandardProviderNameIsNotGateway(t *testing.T) {
	assert.Nil(t, FindGateway("anthropic", "", ""))
}

const testSpecYAML = `
providers:
  - name: corp-proxy
    gateway: true
    env_key: CORP_PROXY_API_KEY
    default_api_base: ${CORP_PROXY_BASE:https://llm.corp.internal/v1}
    prefix: openai
    strip_model_prefix: true
    force_stream: true
    env_extras:
      - name: OPENAI_API_BASE
        value: "{api_base}"
  - name: qwen
    keywords: [qwen]
    env_key: DASHSCOPE_API_KEY
    prefix: dashscope
    skip_prefixes: [dashscope/]
    overrides:
      - pattern: qwen3
        params:
          temperature: 0.6
`

func TestParseSpecs(t *testing.T) {
	specs, err := ParseSpecs([]byte(testSpecYAML), fakeEnv{})
	require.NoError(t, err)
	require.Len(t, specs, 2)

	proxy := specs[0]
	assert.True(t, proxy.Gateway)
	assert.True(t, proxy.StripModelPrefix)
	assert.True(t, proxy.ForceStream)
	// Unset env var falls back to the inline default.
	assert.Equal(t, "https://llm.corp.internal/v1", proxy.DefaultAPIBase)
	require.Len(t, proxy.EnvExtras, 1)
	assert.Equal(t, "{api_base}", proxy.EnvExtras[0].Value)

	qwen := specs[1]
	assert.Equal(t, []string{"qwen"}, qwen.Keywords)
	require.Len(t, qwen.Overrides, 1)
	assert.Equal(t, "qwen3", qwen.Overrides[0].Pattern)
	assert.Equal(t, 0.6, qwen.Overrides[0].Params["temperature"])
}

func TestParseSpecsEnvExpansion(t *testing.T) {
	env := fakeEnv{"CORP_PROXY_BASE": "http://10.0.0.5/v1"}
	specs, err := ParseSpecs([]byte(testSpecYAML), env)
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.5/v1", specs[0].DefaultAPIBase)
}

func TestParseSpecsMissingName(t *testing.T) {
	_, err := ParseSpecs([]byte("providers:\n  - env_key: X_API_KEY\n"), fakeEnv{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing name")
}

func TestParseSpecsInvalidYAML(t *testing.T) {
	_, err := ParseSpecs([]byte("providers: [unclosed"), fakeEnv{})
	require.Error(t, err)
}

func TestLoadSpecs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testSpecYAML), 0o600))

	specs, err := LoadSpecs(path)
	require.NoError(t, err)
	assert.Len(t, specs, 2)
}

func TestLoadSpecsMissingFile(t *testing.T) {
	_, err := LoadSpecs(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadedSpecsDriveAdapter(t *testing.T) {
	specs, err := ParseSpecs([]byte(testSpecYAML), fakeEnv{})
	require.NoError(t, err)

	adapter, _, env := newTestAdapter(t, "corp-proxy",
		WithSpecs(specs),
		WithAPIKey("corp-token"),
	)
	assert.Equal(t, "corp-token", env["CORP_PROXY_API_KEY"])
	assert.Equal(t, "https://llm.corp.internal/v1", env["OPENAI_API_BASE"])
	assert.Equal(t, "openai/qwen3-32b", adapter.resolveModel("dashscope/qwen3-32b"))
}

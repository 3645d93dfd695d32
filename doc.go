// Package chatmux is a provider-agnostic chat-completion adapter. It
// normalizes requests and responses across LLM vendor APIs (OpenAI,
// Anthropic, Gemini, OpenRouter, and self-hosted gateways) reached through a
// single multiplexing transport, with per-provider quirks driven by a
// declarative registry instead of branching logic.
//
// # Architecture
//
// The adapter is a thin pipeline around a black-box transport:
//
//   - Registry: ordered ProviderSpec records with pure lookups
//     (FindByModel, FindGateway); loadable from YAML via LoadSpecs
//   - Construction: gateway detection and credential environment publication
//   - Per call: model-name resolution and parameter overrides, then dispatch
//     to the transport, then response normalization (non-streaming parse or
//     streaming reassembly)
//
// # Quick Start
//
//	adapter := chatmux.New("",
//	    chatmux.WithAPIKey(os.Getenv("ANTHROPIC_API_KEY")),
//	    chatmux.WithDefaultModel("anthropic/claude-opus-4-5"),
//	)
//
//	result := adapter.Chat(ctx, []chatmux.Message{
//	    chatmux.UserMessage("Explain quantum computing in one paragraph"),
//	}, chatmux.ChatOptions{})
//	fmt.Println(result.Text())
//
// Chat never returns an error. Transport failures come back as a Result with
// FinishReason "error" and a descriptive content message, so orchestration
// code handles every outcome through one shape.
//
// # Gateways
//
// A gateway (OpenRouter-compatible aggregator, vLLM, Ollama, Open WebUI,
// LiteLLM proxy) is selected by the provider name passed to New, or detected
// from the base URL:
//
//	adapter := chatmux.New("vllm",
//	    chatmux.WithAPIKey("token"),
//	    chatmux.WithAPIBase("http://localhost:8000/v1"),
//	    chatmux.WithDefaultModel("qwen3-32b"),
//	)
//
// Gateway mode re-prefixes model names for the gateway's routing scheme and
// overwrites the credential environment variable unconditionally; standard
// mode only fills unset variables.
//
// # Tool Calling
//
// Tools are declared in the OpenAI function format and returned as parsed
// ToolCallRequest values, whether the provider answered in one response or
// as a reassembled chunk stream:
//
//	result := adapter.Chat(ctx, msgs, chatmux.ChatOptions{
//	    Tools: []chatmux.ToolDefinition{{
//	        Name:        "get_weather",
//	        Description: "Get the current weather for a location",
//	        Parameters: map[string]interface{}{
//	            "type": "object",
//	            "properties": map[string]interface{}{
//	                "city": map[string]interface{}{"type": "string"},
//	            },
//	        },
//	    }},
//	})
//	for _, call := range result.ToolCalls {
//	    fmt.Println(call.Name, call.Arguments)
//	}
package chatmux

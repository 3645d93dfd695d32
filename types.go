// Package chatmux provides a provider-agnostic chat-completion adapter that
// normalizes requests and responses across LLM vendor APIs behind a single
// multiplexing transport.
package chatmux

import "strings"

// Role identifies who produced a message in a conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one turn of conversation sent to the transport. The adapter
// treats messages as opaque; they pass through to the provider unchanged.
type Message struct {
	Role       Role   `json:"role"`
	Content    string `json:"content"`
	Name       string `json:"name,omitempty"`
	ToolCallID string `json:"tool_call_id,omitempty"`
}

// SystemMessage creates a system Message.
func SystemMessage(text string) Message {
	return Message{Role: RoleSystem, Content: text}
}

// UserMessage creates a user Message.
func UserMessage(text string) Message {
	return Message{Role: RoleUser, Content: text}
}

// AssistantMessage creates an assistant Message.
func AssistantMessage(text string) Message {
	return Message{Role: RoleAssistant, Content: text}
}

// ToolResultMessage creates a tool result Message for a prior tool call.
func ToolResultMessage(toolCallID, content string) Message {
	return Message{Role: RoleTool, Content: content, ToolCallID: toolCallID}
}

// ToolDefinition describes a tool the model may call, in the OpenAI function
// format used by every provider the transport multiplexes.
type ToolDefinition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"` // JSON Schema
}

// ToolCallRequest is a model-initiated tool invocation extracted from a
// normalized response. Arguments are decoded JSON; when the provider emits
// argument text that is not valid JSON, the text is preserved under a "raw"
// key instead of being dropped.
type ToolCallRequest struct {
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
}

// UsageCounts tracks token consumption as reported by the provider.
type UsageCounts struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Result is the normalized output shape returned to every caller regardless
// of source provider or streaming mode. Content is nil when the model
// produced no text (or nothing but a thinking block). Usage is nil when the
// provider did not report counters.
type Result struct {
	Content      *string           `json:"content,omitempty"`
	ToolCalls    []ToolCallRequest `json:"tool_calls,omitempty"`
	FinishReason string            `json:"finish_reason"`
	Usage        *UsageCounts      `json:"usage,omitempty"`
	Reasoning    string            `json:"reasoning,omitempty"`
}

// Text returns the content string, or "" when content is nil.
func (r Result) Text() string {
	if r.Content == nil {
		return ""
	}
	return *r.Content
}

// IsError reports whether the result encodes a captured transport failure.
func (r Result) IsError() bool {
	return r.FinishReason == "error"
}

// ChatOptions carries the per-call knobs of Chat. The zero value is usable:
// the adapter's default model, 4096 max tokens, and temperature 0.7 apply.
type ChatOptions struct {
	Model       string
	Tools       []ToolDefinition
	MaxTokens   int
	Temperature *float64
}

// ChatRequest is the normalized set of transport call arguments built fresh
// for every call. Params holds provider-specific overrides that have no
// first-class field.
type ChatRequest struct {
	Model        string
	Messages     []Message
	Tools        []ToolDefinition
	ToolChoice   string
	MaxTokens    int
	Temperature  float64
	Stream       bool
	APIKey       string
	APIBase      string
	ExtraHeaders map[string]string
	Params       map[string]interface{}
}

// setParam applies one override parameter, preferring typed fields over the
// Params bag for the keys the adapter understands.
func (r *ChatRequest) setParam(key string, value interface{}) {
	switch key {
	case "temperature":
		if f, ok := toFloat(value); ok {
			r.Temperature = f
			return
		}
	case "max_tokens":
		if n, ok := toInt(value); ok {
			r.MaxTokens = n
			return
		}
	}
	if r.Params == nil {
		r.Params = make(map[string]interface{})
	}
	r.Params[key] = value
}

// toFloat accepts the numeric encodings produced by Go literals and YAML.
func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}

func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case float64:
		return int(n), true
	}
	return 0, false
}

// splitModel splits "provider/model" into its prefix and bare model name.
// Models without a prefix return provider "".
func splitModel(model string) (provider, name string) {
	if i := strings.IndexByte(model, '/'); i >= 0 {
		return model[:i], model[i+1:]
	}
	return "", model
}

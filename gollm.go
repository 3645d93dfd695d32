package chatmux

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/teilomillet/gollm"
)

// GollmTransport is the bundled Completer implementation. It multiplexes
// providers through gollm, building a gollm.LLM per call and translating
// between the normalized request shape and gollm's API.
type GollmTransport struct {
	extraOpts []gollm.ConfigOption
}

// NewGollmTransport creates a GollmTransport. Extra gollm options are applied
// to every instance it builds.
func NewGollmTransport(opts ...gollm.ConfigOption) *GollmTransport {
	return &GollmTransport{extraOpts: opts}
}

// providerFor maps a routing-prefixed model name to the gollm provider
// identifier. Unprefixed models default to openai-compatible handling.
func providerFor(model string) (provider, bare string) {
	provider, bare = splitModel(model)
	if provider == "" {
		provider = "openai"
	}
	return provider, bare
}

// newLLM builds a gollm.LLM configured for a single call. Instances are never
// shared between calls, so one request's parameters cannot reach another's.
func (t *GollmTransport) newLLM(provider, bare string, req ChatRequest) (gollm.LLM, error) {
	opts := []gollm.ConfigOption{
		gollm.SetProvider(provider),
		gollm.SetModel(bare),
		gollm.SetMaxTokens(req.MaxTokens),
		gollm.SetTemperature(req.Temperature),
		gollm.SetMaxRetries(0), // retry policy belongs to the caller's stack
		gollm.SetLogLevel(gollm.LogLevelWarn),
	}
	if req.APIKey != "" {
		opts = append(opts, gollm.SetAPIKey(req.APIKey))
	}
	opts = append(opts, t.extraOpts...)

	llm, err := gollm.NewLLM(opts...)
	if err != nil {
		return nil, fmt.Errorf("create %s transport: %w", provider, err)
	}
	for key, value := range req.Params {
		llm.SetOption(key, value)
	}
	return llm, nil
}

// Complete implements Completer.
func (t *GollmTransport) Complete(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	provider, bare := providerFor(req.Model)
	llm, err := t.newLLM(provider, bare, req)
	if err != nil {
		return nil, err
	}

	prompt := buildPrompt(req)
	text, err := llm.Generate(ctx, prompt)
	if err != nil {
		return nil, classifyError(provider, err)
	}

	toolCalls := extractToolCalls(text)
	finishReason := "stop"
	if len(toolCalls) > 0 {
		finishReason = "tool_calls"
		text = trimToolCallJSON(text)
	}

	return &ChatResponse{
		ID:    "resp_" + uuid.New().String()[:8],
		Model: req.Model,
		Choices: []Choice{{
			Message: ChoiceMessage{
				Content:   text,
				ToolCalls: toolCalls,
			},
			FinishReason: finishReason,
		}},
	}, nil
}

// CompleteStream implements Completer. Providers without native streaming
// are emulated by completing the request and replaying the response as chunks.
func (t *GollmTransport) CompleteStream(ctx context.Context, req ChatRequest) (ChunkStream, error) {
	provider, bare := providerFor(req.Model)
	llm, err := t.newLLM(provider, bare, req)
	if err != nil {
		return nil, err
	}

	if !llm.SupportsStreaming() {
		resp, err := t.Complete(ctx, req)
		if err != nil {
			return nil, err
		}
		return &sliceChunkStream{chunks: emulatedChunks(resp)}, nil
	}

	stream, err := llm.Stream(ctx, buildPrompt(req))
	if err != nil {
		return nil, classifyError(provider, err)
	}
	return &gollmChunkStream{
		provider: provider,
		recv: func(ctx context.Context) (string, error) {
			for {
				token, err := stream.Next(ctx)
				if err != nil {
					return "", err
				}
				if token == nil {
					continue
				}
				return token.Text, nil
			}
		},
		close: stream.Close,
	}, nil
}

// emulatedChunks reshapes a completed response into the chunk sequence a
// streaming provider would have produced: content and reasoning first, tool
// calls as indexed deltas, then the finish chunk carrying usage.
func emulatedChunks(resp *ChatResponse) []*ChatChunk {
	choice := resp.Choices[0]
	chunks := []*ChatChunk{
		{Choices: []ChunkChoice{{Delta: Delta{
			Content:          choice.Message.Content,
			ReasoningContent: choice.Message.ReasoningContent,
		}}}},
	}
	if len(choice.Message.ToolCalls) > 0 {
		deltas := make([]ToolCallDelta, 0, len(choice.Message.ToolCalls))
		for i, tc := range choice.Message.ToolCalls {
			deltas = append(deltas, ToolCallDelta{
				Index:    i,
				ID:       tc.ID,
				Function: tc.Function,
			})
		}
		chunks = append(chunks, &ChatChunk{Choices: []ChunkChoice{{Delta: Delta{ToolCalls: deltas}}}})
	}
	chunks = append(chunks, &ChatChunk{
		Choices: []ChunkChoice{{FinishReason: choice.FinishReason}},
		Usage:   resp.Usage,
	})
	return chunks
}

// buildPrompt flattens the message sequence into gollm's prompt shape:
// system messages become the system prompt, the rest are joined as
// conversation context.
func buildPrompt(req ChatRequest) *gollm.Prompt {
	var system strings.Builder
	var parts []string

	for _, msg := range req.Messages {
		switch msg.Role {
		case RoleSystem:
			system.WriteString(msg.Content)
			system.WriteString("\n")
		case RoleUser:
			parts = append(parts, msg.Content)
		case RoleAssistant:
			if msg.Content != "" {
				parts = append(parts, "[Assistant]: "+msg.Content)
			}
		case RoleTool:
			parts = append(parts, "[Tool Result]: "+msg.Content)
		}
	}

	text := strings.Join(parts, "\n")
	if text == "" {
		text = "Hello"
	}

	var opts []gollm.PromptOption
	if s := strings.TrimSpace(system.String()); s != "" {
		opts = append(opts, gollm.WithSystemPrompt(s, gollm.CacheTypeEphemeral))
	}
	if req.MaxTokens > 0 {
		opts = append(opts, gollm.WithMaxLength(req.MaxTokens))
	}
	if len(req.Tools) > 0 {
		tools := make([]gollm.Tool, 0, len(req.Tools))
		for _, td := range req.Tools {
			tools = append(tools, gollm.Tool{
				Type: "function",
				Function: gollm.Function{
					Name:        td.Name,
					Description: td.Description,
					Parameters:  td.Parameters,
				},
			})
		}
		opts = append(opts, gollm.WithTools(tools))
		if req.ToolChoice != "" {
			opts = append(opts, gollm.WithToolChoice(req.ToolChoice))
		}
	}

	return gollm.NewPrompt(text, opts...)
}

// extractToolCalls pulls tool calls out of generated text. gollm surfaces
// them as JSON embedded in the response rather than as structured fields.
func extractToolCalls(text string) []WireToolCall {
	start := strings.Index(text, `[{"name"`)
	if start == -1 {
		return nil
	}

	var rawCalls []struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}
	if err := json.Unmarshal([]byte(text[start:]), &rawCalls); err != nil {
		return nil
	}

	calls := make([]WireToolCall, 0, len(rawCalls))
	for _, rc := range rawCalls {
		calls = append(calls, WireToolCall{
			ID: "call_" + uuid.New().String()[:8],
			Function: WireFunction{
				Name:      rc.Name,
				Arguments: string(rc.Arguments),
			},
		})
	}
	return calls
}

// trimToolCallJSON removes the embedded tool-call JSON from response text.
func trimToolCallJSON(text string) string {
	if idx := strings.Index(text, `[{"name"`); idx != -1 {
		return strings.TrimSpace(text[:idx])
	}
	return text
}

// gollmChunkStream bridges a gollm token stream to the ChunkStream contract,
// emitting a finish chunk before io.EOF.
type gollmChunkStream struct {
	provider string
	recv     func(ctx context.Context) (string, error)
	close    func() error
	finished bool
	closed   bool
}

func (s *gollmChunkStream) Next(ctx context.Context) (*ChatChunk, error) {
	if s.closed {
		return nil, io.EOF
	}
	text, err := s.recv(ctx)
	if err == io.EOF {
		if s.finished {
			return nil, io.EOF
		}
		s.finished = true
		return &ChatChunk{Choices: []ChunkChoice{{FinishReason: "stop"}}}, nil
	}
	if err != nil {
		return nil, classifyError(s.provider, err)
	}
	return &ChatChunk{Choices: []ChunkChoice{{Delta: Delta{Content: text}}}}, nil
}

func (s *gollmChunkStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.close()
}

// sliceChunkStream serves a fixed chunk sequence; used for the non-streaming
// emulation path and in tests.
type sliceChunkStream struct {
	chunks []*ChatChunk
	pos    int
}

func (s *sliceChunkStream) Next(ctx context.Context) (*ChatChunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.pos >= len(s.chunks) {
		return nil, io.EOF
	}
	chunk := s.chunks[s.pos]
	s.pos++
	return chunk, nil
}

func (s *sliceChunkStream) Close() error { return nil }

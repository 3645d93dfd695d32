package chatmux

import "context"

// Completer is the multiplexing transport boundary. The adapter treats it as
// a black box: it accepts a normalized ChatRequest and returns either a single
// response object or an ordered sequence of incremental chunks. Network
// behavior, timeouts, and retries all live behind this interface.
type Completer interface {
	// Complete sends a blocking request and returns the full response.
	Complete(ctx context.Context, req ChatRequest) (*ChatResponse, error)

	// CompleteStream sends a request and returns the incremental chunk stream.
	CompleteStream(ctx context.Context, req ChatRequest) (ChunkStream, error)
}

// ChunkStream is a single-pass, finite sequence of incremental chunks.
// Next returns io.EOF once the stream is exhausted. Close releases the
// underlying connection and is safe to call more than once.
type ChunkStream interface {
	Next(ctx context.Context) (*ChatChunk, error)
	Close() error
}

// ChatResponse is the transport's non-streaming response shape, mirroring the
// OpenAI-compatible wire format every multiplexed provider reduces to.
type ChatResponse struct {
	ID      string       `json:"id,omitempty"`
	Model   string       `json:"model,omitempty"`
	Choices []Choice     `json:"choices"`
	Usage   *UsageCounts `json:"usage,omitempty"`
}

// Choice is one completion alternative. The adapter only consumes the first.
type Choice struct {
	Message      ChoiceMessage `json:"message"`
	FinishReason string        `json:"finish_reason,omitempty"`
}

// ChoiceMessage is the assistant message inside a non-streaming choice.
type ChoiceMessage struct {
	Content          string         `json:"content,omitempty"`
	ToolCalls        []WireToolCall `json:"tool_calls,omitempty"`
	ReasoningContent string         `json:"reasoning_content,omitempty"`
}

// WireToolCall is a tool call as reported by the transport, with its argument
// payload still in textual JSON form.
type WireToolCall struct {
	ID       string       `json:"id"`
	Function WireFunction `json:"function"`
}

// WireFunction carries the function name and raw argument text.
type WireFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ChatChunk is one incremental piece of a streamed response. Usage, when
// present, typically arrives on the final chunk.
type ChatChunk struct {
	Choices []ChunkChoice `json:"choices"`
	Usage   *UsageCounts  `json:"usage,omitempty"`
}

// ChunkChoice carries the delta for one completion alternative.
type ChunkChoice struct {
	Delta        Delta  `json:"delta"`
	FinishReason string `json:"finish_reason,omitempty"`
}

// Delta is the incremental counterpart of ChoiceMessage.
type Delta struct {
	Content          string          `json:"content,omitempty"`
	ToolCalls        []ToolCallDelta `json:"tool_calls,omitempty"`
	ReasoningContent string          `json:"reasoning_content,omitempty"`
}

// ToolCallDelta is a fragment of a streamed tool call, keyed by Index so
// fragments of the same call can be merged across chunks.
type ToolCallDelta struct {
	Index    int          `json:"index"`
	ID       string       `json:"id,omitempty"`
	Function WireFunction `json:"function"`
}

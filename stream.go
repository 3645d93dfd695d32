package chatmux

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
)

// pendingToolCall accumulates the fragments of one streamed tool call,
// keyed by the chunk-reported index. The id and name take the latest
// non-empty value; argument text only ever grows.
type pendingToolCall struct {
	id   string
	name string
	args strings.Builder
}

// collectStream consumes an ordered chunk sequence and reassembles it into a
// Result equivalent to the non-streaming parse of the same logical response.
// The stream is closed before returning. A transport or cancellation error
// discards all accumulated state; no partial result is produced.
func (a *Adapter) collectStream(ctx context.Context, stream ChunkStream) (Result, error) {
	defer stream.Close()

	var content strings.Builder
	var reasoning strings.Builder
	pending := make(map[int]*pendingToolCall)
	finishReason := ""
	var usage *UsageCounts

	for {
		chunk, err := stream.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Result{}, err
		}

		// Usage typically arrives once, on the final chunk; the last
		// reporting chunk wins.
		if chunk.Usage != nil {
			usage = chunk.Usage
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		choice := chunk.Choices[0]

		if choice.Delta.Content != "" {
			content.WriteString(choice.Delta.Content)
		}
		if choice.Delta.ReasoningContent != "" {
			reasoning.WriteString(choice.Delta.ReasoningContent)
		}

		for _, tc := range choice.Delta.ToolCalls {
			entry, ok := pending[tc.Index]
			if !ok {
				entry = &pendingToolCall{}
				pending[tc.Index] = entry
			}
			if tc.ID != "" {
				entry.id = tc.ID
			}
			if tc.Function.Name != "" {
				entry.name = tc.Function.Name
			}
			entry.args.WriteString(tc.Function.Arguments)
		}

		if choice.FinishReason != "" {
			finishReason = choice.FinishReason
		}
	}

	var toolCalls []ToolCallRequest
	indexes := make([]int, 0, len(pending))
	for idx := range pending {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)
	for _, idx := range indexes {
		entry := pending[idx]
		args := map[string]interface{}{}
		if text := entry.args.String(); text != "" {
			args = parseArguments(text)
		}
		toolCalls = append(toolCalls, ToolCallRequest{
			ID:        entry.id,
			Name:      entry.name,
			Arguments: args,
		})
	}

	if finishReason == "" {
		finishReason = "stop"
	}

	return Result{
		Content:      stripThinking(content.String()),
		ToolCalls:    toolCalls,
		FinishReason: finishReason,
		Usage:        usage,
		Reasoning:    reasoning.String(),
	}, nil
}

package chatmux

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

const (
	defaultMaxTokens   = 4096
	defaultTemperature = 0.7
)

var thinkingBlock = regexp.MustCompile(`(?s)<think>.*?</think>`)

// Chat sends a chat completion request and returns the normalized result.
// It never returns an error: transport failures are captured and encoded as
// a Result with FinishReason "error" and a descriptive content message, so
// callers handle every outcome through the same shape.
func (a *Adapter) Chat(ctx context.Context, messages []Message, opts ChatOptions) Result {
	model := opts.Model
	if model == "" {
		model = a.defaultModel
	}
	model = a.resolveModel(model)

	req := ChatRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   defaultMaxTokens,
		Temperature: defaultTemperature,
	}
	if opts.MaxTokens > 0 {
		req.MaxTokens = opts.MaxTokens
	}
	if opts.Temperature != nil {
		req.Temperature = *opts.Temperature
	}

	// Registry overrides win over caller-supplied parameters.
	a.applyOverrides(model, &req)

	// Pass the key directly; env vars alone are less reliable across
	// transports.
	if a.apiKey != "" {
		req.APIKey = a.apiKey
	}
	if a.apiBase != "" {
		req.APIBase = a.apiBase
	}
	if len(a.extraHeaders) > 0 {
		req.ExtraHeaders = a.extraHeaders
	}
	if len(opts.Tools) > 0 {
		req.Tools = opts.Tools
		req.ToolChoice = "auto"
	}

	if spec := a.effectiveSpec(model); spec != nil && spec.ForceStream {
		// The endpoint always answers with incremental chunks; stream and
		// reassemble into a single result.
		req.Stream = true
		a.logger.Debug("forced streaming", "model", model, "provider", spec.Name)
		stream, err := a.transport.CompleteStream(ctx, req)
		if err != nil {
			return errorResult(err)
		}
		result, err := a.collectStream(ctx, stream)
		if err != nil {
			return errorResult(err)
		}
		return result
	}

	resp, err := a.transport.Complete(ctx, req)
	if err != nil {
		return errorResult(err)
	}
	return parseResponse(resp)
}

// errorResult encodes a captured failure as a terminal Result.
func errorResult(err error) Result {
	msg := fmt.Sprintf("Error calling LLM: %v", err)
	return Result{Content: &msg, FinishReason: "error"}
}

// parseResponse normalizes a non-streaming transport response.
func parseResponse(resp *ChatResponse) Result {
	if resp == nil || len(resp.Choices) == 0 {
		return errorResult(fmt.Errorf("empty response from transport"))
	}
	choice := resp.Choices[0]

	var toolCalls []ToolCallRequest
	for _, tc := range choice.Message.ToolCalls {
		toolCalls = append(toolCalls, ToolCallRequest{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: parseArguments(tc.Function.Arguments),
		})
	}

	finishReason := choice.FinishReason
	if finishReason == "" {
		finishReason = "stop"
	}

	return Result{
		Content:      stripThinking(choice.Message.Content),
		ToolCalls:    toolCalls,
		FinishReason: finishReason,
		Usage:        resp.Usage,
		Reasoning:    choice.Message.ReasoningContent,
	}
}

// parseArguments decodes a textual tool-call argument payload. Payloads that
// are not valid JSON objects are preserved under a "raw" key rather than
// discarded.
func parseArguments(text string) map[string]interface{} {
	var args map[string]interface{}
	if err := json.Unmarshal([]byte(text), &args); err != nil || args == nil {
		return map[string]interface{}{"raw": text}
	}
	return args
}

// stripThinking removes <think>...</think> blocks from model output and
// trims the remainder. A result that is empty after stripping is nil, not
// the empty string.
func stripThinking(text string) *string {
	if text == "" {
		return nil
	}
	stripped := strings.TrimSpace(thinkingBlock.ReplaceAllString(text, ""))
	if stripped == "" {
		return nil
	}
	return &stripped
}

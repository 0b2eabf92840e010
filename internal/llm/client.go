package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/luoxiaowei/chatflow/internal/policy"
	"github.com/luoxiaowei/chatflow/internal/tools"
)

// maxToolRounds caps the number of tool-use iterations per request.
const maxToolRounds = 6

// Client streams chat completions from an OpenAI-compatible endpoint and
// dispatches model-requested tool calls against the local registry.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	registry   *tools.Registry
	policy     *policy.Engine
	logger     zerolog.Logger
}

// NewClient creates a completion client. registry and engine may be nil to
// disable tool use entirely.
func NewClient(baseURL, apiKey, model string, timeout time.Duration, registry *tools.Registry, engine *policy.Engine, logger zerolog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		registry:   registry,
		policy:     engine,
		logger:     logger.With().Str("component", "llm").Logger(),
	}
}

// StreamChat streams the assistant's reply for the given messages. When
// the model requests tool calls, they are executed and the conversation is
// re-submitted, up to maxToolRounds times; only content deltas reach the
// callback. A single attempt per upstream request, no retries.
func (c *Client) StreamChat(ctx context.Context, messages []ChatMessage, callback StreamCallback) error {
	msgs := make([]ChatMessage, len(messages))
	copy(msgs, messages)

	for round := 0; round < maxToolRounds; round++ {
		calls, err := c.streamOnce(ctx, msgs, callback)
		if err != nil {
			return err
		}
		if len(calls) == 0 {
			return nil
		}

		msgs = append(msgs, ChatMessage{Role: "assistant", ToolCalls: calls})

		// Some models repeat the same tool_call id in one response.
		seen := make(map[string]bool)
		for _, call := range calls {
			if call.ID != "" && seen[call.ID] {
				continue
			}
			seen[call.ID] = true
			result := c.executeTool(ctx, call)
			msgs = append(msgs, ChatMessage{
				Role:       "tool",
				ToolCallID: call.ID,
				Content:    result,
			})
		}
	}
	return fmt.Errorf("tool call rounds exceeded %d", maxToolRounds)
}

// streamOnce performs one streaming completion request. Content deltas go
// to the callback; accumulated tool calls are returned when the model
// finishes the turn with a tool request.
func (c *Client) streamOnce(ctx context.Context, msgs []ChatMessage, callback StreamCallback) ([]ToolCall, error) {
	req := ChatCompletionRequest{
		Model:    c.model,
		Messages: msgs,
		Stream:   true,
	}
	if c.registry != nil {
		req.Tools = toolSpecs(c.registry)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		var errResp ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != nil {
			return nil, fmt.Errorf("completion API error [%d]: %s (type: %s)", resp.StatusCode, errResp.Error.Message, errResp.Error.Type)
		}
		return nil, fmt.Errorf("completion API error [%d]: %s", resp.StatusCode, string(respBody))
	}

	reader := bufio.NewReader(resp.Body)
	pending := make(map[int]*ToolCall)

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("failed to read stream: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" || !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := strings.TrimPrefix(line, "data: ")
		if data == "[DONE]" {
			break
		}

		var chunk StreamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			// Skip malformed chunks
			continue
		}
		if len(chunk.Choices) == 0 || chunk.Choices[0].Delta == nil {
			continue
		}
		delta := chunk.Choices[0].Delta

		if delta.Content != "" {
			if err := callback(delta.Content); err != nil {
				return nil, err
			}
		}
		for _, tc := range delta.ToolCalls {
			cur := pending[tc.Index]
			if cur == nil {
				cur = &ToolCall{Index: tc.Index, Type: "function"}
				pending[tc.Index] = cur
			}
			if tc.ID != "" {
				cur.ID = tc.ID
			}
			if tc.Function.Name != "" {
				cur.Function.Name = tc.Function.Name
			}
			cur.Function.Arguments += tc.Function.Arguments
		}
	}

	if len(pending) == 0 {
		return nil, nil
	}
	indexes := make([]int, 0, len(pending))
	for i := range pending {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)
	calls := make([]ToolCall, 0, len(pending))
	for _, i := range indexes {
		calls = append(calls, *pending[i])
	}
	return calls, nil
}

// executeTool runs one model-requested tool call. Failures become error
// strings returned to the model, never errors up the stack.
func (c *Client) executeTool(ctx context.Context, call ToolCall) string {
	name := call.Function.Name
	args := json.RawMessage(call.Function.Arguments)
	if len(args) == 0 {
		args = json.RawMessage(`{}`)
	}

	if c.policy != nil {
		decision, err := c.policy.Evaluate(ctx, name, args)
		if err != nil {
			c.logger.Error().Err(err).Str("tool", name).Msg("tool policy evaluation failed")
			return "Error: tool policy evaluation failed"
		}
		if decision != policy.DecisionAllow {
			c.logger.Warn().Str("tool", name).Str("decision", decision).Msg("tool call blocked by policy")
			return fmt.Sprintf("Error: tool %q is not permitted", name)
		}
	}
	if c.registry == nil {
		return fmt.Sprintf("Error: unknown tool %q", name)
	}

	c.logger.Debug().Str("tool", name).RawJSON("args", args).Msg("executing tool")
	result, err := c.registry.Execute(ctx, name, args)
	if err != nil {
		return "Error: " + err.Error()
	}
	return string(result)
}

// toolSpecs converts registry definitions to the wire format.
func toolSpecs(registry *tools.Registry) []Tool {
	defs := registry.Definitions()
	specs := make([]Tool, 0, len(defs))
	for _, def := range defs {
		specs = append(specs, Tool{
			Type: "function",
			Function: ToolFunction{
				Name:        def.Name,
				Description: def.Description,
				Parameters:  def.Parameters,
			},
		})
	}
	return specs
}

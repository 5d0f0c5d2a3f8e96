package services

import (
	"encoding/json"
	"testing"
)

func TestClaudeRequest_Marshal(t *testing.T) {
	request := ClaudeRequest{
		AnthropicVersion: "bedrock-2023-05-31",
		MaxTokens:        1024,
		System:           "You are a financial analyst.",
		Messages: []ClaudeMessage{
			{Role: "user", Content: "Summarize AAPL sentiment"},
		},
	}

	body, err := json.Marshal(request)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("expected valid JSON, got: %v", err)
	}
	if decoded["anthropic_version"] != "bedrock-2023-05-31" {
		t.Errorf("expected anthropic_version field, got %v", decoded["anthropic_version"])
	}
	if decoded["max_tokens"] != float64(1024) {
		t.Errorf("expected max_tokens 1024, got %v", decoded["max_tokens"])
	}
}

func TestClaudeRequest_OmitsEmptySystem(t *testing.T) {
	request := ClaudeRequest{
		AnthropicVersion: "bedrock-2023-05-31",
		MaxTokens:        512,
		Messages:         []ClaudeMessage{{Role: "user", Content: "hi"}},
	}

	body, err := json.Marshal(request)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	var decoded map[string]any
	json.Unmarshal(body, &decoded)
	if _, present := decoded["system"]; present {
		t.Error("expected empty system prompt to be omitted")
	}
}

func TestClaudeResponse_Unmarshal(t *testing.T) {
	payload := `{
		"id": "msg_01",
		"type": "message",
		"role": "assistant",
		"content": [{"type": "text", "text": "Sentiment is positive."}],
		"stop_reason": "end_turn"
	}`

	var response ClaudeResponse
	if err := json.Unmarshal([]byte(payload), &response); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(response.Content) != 1 {
		t.Fatalf("expected 1 content block, got %d", len(response.Content))
	}
	if response.Content[0].Text != "Sentiment is positive." {
		t.Errorf("unexpected text: %s", response.Content[0].Text)
	}
	if response.StopReason != "end_turn" {
		t.Errorf("expected end_turn, got %s", response.StopReason)
	}
}

package storetest

import (
	"encoding/json"
	"testing"
)

// ChatJSON builds a chat payload with one message per entry of messages,
// each message attaching the given file ids.
func ChatJSON(t *testing.T, messages ...[]string) string {
	t.Helper()

	type fileRef struct {
		ID string `json:"id"`
	}
	type fileEntry struct {
		Type string  `json:"type"`
		File fileRef `json:"file"`
	}
	type message struct {
		Role    string      `json:"role"`
		Content string      `json:"content"`
		Files   []fileEntry `json:"files,omitempty"`
	}

	payload := struct {
		Title    string    `json:"title"`
		Messages []message `json:"messages"`
	}{Title: "test chat", Messages: []message{}}

	for _, ids := range messages {
		m := message{Role: "user", Content: "see attachment"}
		for _, id := range ids {
			m.Files = append(m.Files, fileEntry{Type: "file", File: fileRef{ID: id}})
		}
		payload.Messages = append(payload.Messages, m)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal chat payload: %v", err)
	}
	return string(data)
}

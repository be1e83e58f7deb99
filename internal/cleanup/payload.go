package cleanup

import (
	"encoding/json"
	"errors"
	"fmt"
)

// errNullPayload is returned for chats whose payload column is NULL.
var errNullPayload = errors.New("chat payload is NULL")

// ExtractFileIDs returns the distinct file ids attached to the messages of a
// chat payload, in order of first appearance. Only invalid JSON is an error:
// elements that do not have the expected shape (messages[].files[].file.id)
// are skipped.
func ExtractFileIDs(payload []byte) ([]string, error) {
	if payload == nil {
		return nil, errNullPayload
	}

	var doc any
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("invalid chat JSON: %w", err)
	}

	root, ok := doc.(map[string]any)
	if !ok {
		return nil, nil
	}
	messages, _ := root["messages"].([]any)

	var ids []string
	seen := make(map[string]bool)
	for _, m := range messages {
		message, ok := m.(map[string]any)
		if !ok {
			continue
		}
		files, _ := message["files"].([]any)
		for _, f := range files {
			entry, ok := f.(map[string]any)
			if !ok {
				continue
			}
			file, ok := entry["file"].(map[string]any)
			if !ok {
				continue
			}
			id, _ := file["id"].(string)
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
		}
	}

	return ids, nil
}

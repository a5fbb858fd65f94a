/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package result

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

// ExtractJSON strips an optional surrounding markdown code fence from reply
// text. It prefers a ```json block on its own line, then a fence wrapping
// the whole reply, then returns the trimmed input unchanged.
func ExtractJSON(reply string) string {
	lines := strings.Split(strings.ReplaceAll(reply, "\r\n", "\n"), "\n")

	var block []string
	inBlock := false
	for _, line := range lines {
		if !inBlock && strings.TrimSpace(line) == "```json" {
			inBlock = true
			continue
		}
		if inBlock {
			if strings.TrimSpace(line) == "```" {
				break
			}
			block = append(block, line)
		}
	}
	if inBlock {
		return strings.TrimSpace(strings.Join(block, "\n"))
	}

	trimmed := strings.TrimSpace(reply)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	return strings.TrimSpace(trimmed)
}

// Decode extracts the JSON payload from reply text and unmarshals it into
// T. When strict unmarshaling fails it makes one repair attempt with
// jsonrepair before giving up — models truncate strings and drop commas
// often enough that the second chance pays for itself.
func Decode[T any](reply string) (T, error) {
	var out T

	payload := ExtractJSON(reply)
	strictErr := json.Unmarshal([]byte(payload), &out)
	if strictErr == nil {
		return out, nil
	}

	repaired, repairErr := jsonrepair.JSONRepair(payload)
	if repairErr != nil {
		return out, fmt.Errorf("unmarshaling reply (repair also failed: %v): %w", repairErr, strictErr)
	}
	if err := json.Unmarshal([]byte(repaired), &out); err != nil {
		return out, fmt.Errorf("unmarshaling repaired reply (strict error: %v): %w", strictErr, err)
	}
	return out, nil
}

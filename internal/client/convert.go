package client

import (
	"google.golang.org/genai"

	"shellmind/internal/chat"
)

// toContents converts history plus the new prompt into request contents.
func toContents(history []chat.Turn, prompt string) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, turn := range history {
		contents = append(contents, genai.NewContentFromText(turn.Text, roleOf(turn.Role)))
	}
	return append(contents, genai.NewContentFromText(prompt, genai.RoleUser))
}

func roleOf(r chat.Role) genai.Role {
	if r == chat.RoleModel {
		return genai.RoleModel
	}
	return genai.RoleUser
}

// firstText returns the first non-empty text part of the first candidate.
func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil {
		return ""
	}
	for _, part := range cand.Content.Parts {
		if part != nil && part.Text != "" {
			return part.Text
		}
	}
	return ""
}

package chat

import (
	"fmt"
	"strings"
)

// DefaultSystemPrompt is the assistant persona used when no preference
// context exists for the session.
const DefaultSystemPrompt = `You are a helpful and friendly supplement recommendation assistant.
Your goal is to help customers find the right supplements based on their health goals and symptoms.
When appropriate, suggest relevant supplements from our catalog.
Be concise, friendly, and focus on being helpful.`

// BuildSystemPrompt derives the instruction context from a stored preference
// payload. Recognized keys: health_goals, symptoms, preferences.dietary; each
// present key contributes one context line appended to the base prompt.
func BuildSystemPrompt(prefs map[string]interface{}) string {
	if len(prefs) == 0 {
		return DefaultSystemPrompt
	}

	var lines []string
	if goals := stringValues(prefs["health_goals"]); len(goals) > 0 {
		lines = append(lines, fmt.Sprintf("Health goals: %s", strings.Join(goals, ", ")))
	}
	if symptoms := stringValues(prefs["symptoms"]); len(symptoms) > 0 {
		lines = append(lines, fmt.Sprintf("Current symptoms: %s", strings.Join(symptoms, ", ")))
	}
	if p, ok := prefs["preferences"].(map[string]interface{}); ok {
		if dietary := stringValues(p["dietary"]); len(dietary) > 0 {
			lines = append(lines, fmt.Sprintf("Dietary preferences: %s", strings.Join(dietary, ", ")))
		}
	}
	if len(lines) == 0 {
		return DefaultSystemPrompt
	}
	return DefaultSystemPrompt + "\n\nAdditional context:\n" + strings.Join(lines, "\n")
}

func stringValues(v interface{}) []string {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

package scripting

import (
	"fmt"
	"strings"
)

// MetadataSystemPrompt guides the title/description/tags generation call.
const MetadataSystemPrompt = "You are an expert at creating YouTube titles, descriptions, and tags that maximize engagement and SEO. Respond with a single JSON object and nothing else."

// ScriptSystemPrompt guides the script generation call.
const ScriptSystemPrompt = "You are an expert YouTube script writer who creates engaging, conversational video scripts. Respond with a single JSON object and nothing else."

func buildMetadataPrompt(topic string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create YouTube metadata for a video about: %s\n\n", topic)
	b.WriteString("Requirements:\n")
	b.WriteString("- A compelling, click-worthy title (under 60 characters)\n")
	b.WriteString("- A detailed description (3-4 paragraphs)\n")
	b.WriteString("- 10-15 relevant tags/keywords\n\n")
	b.WriteString("Return JSON with exactly these keys:\n")
	b.WriteString(`{"title": "...", "description": "...", "tags": ["...", "..."]}`)
	return b.String()
}

func buildScriptPrompt(topic, title string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a compelling YouTube video script about: %s\n", topic)
	if title != "" {
		fmt.Fprintf(&b, "The video is titled: %s\n", title)
	}
	b.WriteString("\nRequirements:\n")
	b.WriteString("- Engaging hook in the first 10 seconds\n")
	b.WriteString("- Clear structure with main points\n")
	b.WriteString("- Conversational, natural tone\n")
	b.WriteString("- Include a call-to-action at the end\n")
	b.WriteString("- Plain spoken text only, no markdown, no scene directions\n")
	b.WriteString("- Write as if speaking directly to the camera\n")
	b.WriteString("- Use short sentences for better pacing\n\n")
	b.WriteString("Return JSON with exactly this key:\n")
	b.WriteString(`{"script": "..."}`)
	return b.String()
}

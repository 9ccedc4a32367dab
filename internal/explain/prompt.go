package explain

import (
	"fmt"
	"strings"
)

const maxExamples = 5

// buildSystemPrompt sets the assistant's role for command explanations.
func buildSystemPrompt() string {
	return strings.TrimSpace(`
You are PAW, a Prompt Assisted Workflow assistant for Kali Linux. The user asked for a security task and a command has already been prepared for it. Explain in concise markdown what the command does, what each flag means, and any risk or prerequisite (root, authorisation, noisy traffic). Do not invent a different command. If placeholders such as <target> remain, say which values the user still has to supply.`)
}

// buildUserPrompt embeds the request, the chosen tool and the expanded command.
func buildUserPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Request:\n%s\n\n", strings.TrimSpace(req.Prompt))
	fmt.Fprintf(&b, "Tool: %s (%s)\n", req.Entry.Name, req.Entry.Category)
	if d := strings.TrimSpace(req.Entry.Description); d != "" {
		fmt.Fprintf(&b, "Description: %s\n", d)
	}
	fmt.Fprintf(&b, "Usage: %s\n", req.Entry.Usage)

	if len(req.Entry.Examples) > 0 {
		b.WriteString("Examples:\n")
		for i, ex := range req.Entry.Examples {
			if i == maxExamples {
				break
			}
			fmt.Fprintf(&b, "  - %s (%s)\n", ex.Command, ex.Description)
		}
	}

	fmt.Fprintf(&b, "\nCommand:\n%s\n", req.Expansion.Command)
	if len(req.Expansion.Missing) > 0 {
		fmt.Fprintf(&b, "\nUnfilled placeholders: %s\n", strings.Join(req.Expansion.Missing, ", "))
	}
	return truncateForPrompt(b.String(), maxPromptBytes)
}

const maxPromptBytes = 6000

func truncateForPrompt(text string, limit int) string {
	if limit <= 0 || len(text) <= limit {
		return text
	}
	return text[:limit] + "... [truncated]"
}

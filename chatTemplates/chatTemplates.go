// Package chatTemplates defines the fixed textual framing used to serialize
// a conversation into one flat prompt, one template set per operating mode.
package chatTemplates

import (
	"strings"
	"text/template"
)

var FuncMap = template.FuncMap{
	"trim": func(s string) string {
		return strings.TrimSpace(s)
	},
	"lower": strings.ToLower,
}

// Chrome is the per-mode framing: a preamble emitted once at the start of the
// prompt, a role header template, a message footer, and the marker that asks
// the model to continue as the assistant.
type Chrome struct {
	Preamble         string
	Footer           string
	GenerationPrompt string
	header           *template.Template
}

const standardHeader = `<|im_start|>{{.Role | trim | lower}}
`

// Standard is the text-first chat framing.
func Standard() *Chrome {
	return &Chrome{
		Footer:           "<|im_end|>\n",
		GenerationPrompt: "<|im_start|>assistant\n",
		header:           template.Must(template.New("standardHeader").Funcs(FuncMap).Parse(standardHeader)),
	}
}

const voiceHeader = `[{{.Role | trim | lower}}]: `

// Voice is the speech-first framing: it prepends a spoken-response
// instruction and uses bracketed turn markers.
func Voice() *Chrome {
	return &Chrome{
		Preamble:         "<|im_start|>system\nThis is a voice conversation. Respond with speech.<|im_end|>\n",
		Footer:           " <eot>\n",
		GenerationPrompt: "[assistant]: ",
		header:           template.Must(template.New("voiceHeader").Funcs(FuncMap).Parse(voiceHeader)),
	}
}

type headerData struct {
	Role string
}

// RenderHeader renders the role header for one message.
func (c *Chrome) RenderHeader(role string) (string, error) {
	var sb strings.Builder
	if err := c.header.Execute(&sb, headerData{Role: role}); err != nil {
		return "", err
	}
	return sb.String(), nil
}

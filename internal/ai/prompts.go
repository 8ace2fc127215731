package ai

import (
	_ "embed"
	"text/template"
)

//go:embed prompts/classify_posting.md
var classifyPromptRaw string

// ClassifyTemplate is the fixed prompt template for posting classification.
// Parsed once at package init; reused on every Enrich call.
var ClassifyTemplate = template.Must(template.New("classify_posting").Parse(classifyPromptRaw))

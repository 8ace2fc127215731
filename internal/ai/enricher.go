package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	"github.com/adityawarmanfw/lokerhub/internal/model"
)

// Enricher maps a posting's free-text description to structured
// enrichment fields via a TextClassifier. Enrich is total: every failure
// mode (no classifier configured, invocation error, malformed response)
// falls back to model.DefaultEnrichment and is logged, never propagated.
type Enricher struct {
	classifier TextClassifier // nil when enrichment is disabled
	tmpl       *template.Template
	logger     *slog.Logger
}

// NewEnricher creates an enricher. A nil classifier disables enrichment:
// every call returns the default Enrichment without any network I/O.
func NewEnricher(classifier TextClassifier, logger *slog.Logger) *Enricher {
	return &Enricher{
		classifier: classifier,
		tmpl:       ClassifyTemplate,
		logger:     logger,
	}
}

// Enrich extracts skills, experience level, and the remote flag from a
// job description. It never returns an error to the caller.
func (e *Enricher) Enrich(ctx context.Context, description string) model.Enrichment {
	if e.classifier == nil || strings.TrimSpace(description) == "" {
		return model.DefaultEnrichment()
	}

	var promptBuf bytes.Buffer
	if err := e.tmpl.Execute(&promptBuf, struct{ Description string }{
		Description: description,
	}); err != nil {
		e.logger.Warn("enrichment prompt render failed, using defaults", "error", err)
		return model.DefaultEnrichment()
	}

	raw, err := e.classifier.Classify(ctx, promptBuf.String())
	if err != nil {
		e.logger.Warn("classification call failed, using defaults", "error", err)
		return model.DefaultEnrichment()
	}

	enrichment, err := parseEnrichment(raw)
	if err != nil {
		e.logger.Warn("classification response unparseable, using defaults", "error", err)
		return model.DefaultEnrichment()
	}

	return enrichment
}

// rawEnrichment is the loosely-typed JSON shape returned by the
// classifier. Skills and IsRemote stay untyped so a response with the
// wrong types degrades per-field instead of failing the whole parse.
type rawEnrichment struct {
	Skills          any    `json:"skills"`
	ExperienceLevel string `json:"experience_level"`
	IsRemote        any    `json:"is_remote"`
}

// parseEnrichment deserializes the classifier's text output, tolerating
// markdown code fences, and validates each field's shape.
func parseEnrichment(raw string) (model.Enrichment, error) {
	stripped := stripCodeFence(raw)

	var re rawEnrichment
	if err := json.Unmarshal([]byte(stripped), &re); err != nil {
		return model.Enrichment{}, fmt.Errorf("unmarshal enrichment JSON: %w", err)
	}

	enrichment := model.DefaultEnrichment()

	// skills must be an array of strings, else the empty sequence.
	if items, ok := re.Skills.([]any); ok {
		skills := make([]string, 0, len(items))
		for _, item := range items {
			s, ok := item.(string)
			if !ok {
				skills = nil
				break
			}
			skills = append(skills, s)
		}
		if skills != nil {
			enrichment.Skills = skills
		}
	}

	if re.ExperienceLevel != "" {
		enrichment.ExperienceLevel = re.ExperienceLevel
	}

	if b, ok := re.IsRemote.(bool); ok {
		enrichment.IsRemote = b
	}

	return enrichment, nil
}

// stripCodeFence removes surrounding markdown code-fence markers
// ("```json" / "```") that chat models wrap JSON output in.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

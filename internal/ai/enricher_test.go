package ai

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/adityawarmanfw/lokerhub/internal/model"
)

// mockClassifier is a stub TextClassifier for testing.
type mockClassifier struct {
	response string
	err      error
	calls    int
}

func (m *mockClassifier) Classify(_ context.Context, _ string) (string, error) {
	m.calls++
	return m.response, m.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func wantDefault(t *testing.T, got model.Enrichment) {
	t.Helper()
	if len(got.Skills) != 0 {
		t.Errorf("Skills = %v, want empty", got.Skills)
	}
	if got.ExperienceLevel != model.ExperienceUnknown {
		t.Errorf("ExperienceLevel = %q, want unknown", got.ExperienceLevel)
	}
	if got.IsRemote {
		t.Error("IsRemote = true, want false")
	}
}

func TestEnrich_NoClassifierReturnsDefault(t *testing.T) {
	e := NewEnricher(nil, discardLogger())

	got := e.Enrich(context.Background(), "any description at all")
	wantDefault(t, got)
}

func TestEnrich_EmptyDescriptionSkipsCall(t *testing.T) {
	mc := &mockClassifier{response: `{}`}
	e := NewEnricher(mc, discardLogger())

	got := e.Enrich(context.Background(), "   ")
	wantDefault(t, got)
	if mc.calls != 0 {
		t.Errorf("classifier called %d times, want 0", mc.calls)
	}
}

func TestEnrich_ValidResponse(t *testing.T) {
	mc := &mockClassifier{response: `{
		"skills": ["Python", "FastAPI", "PostgreSQL"],
		"experience_level": "senior",
		"is_remote": true
	}`}
	e := NewEnricher(mc, discardLogger())

	got := e.Enrich(context.Background(), "We want a senior Python engineer, remote friendly")
	if len(got.Skills) != 3 || got.Skills[0] != "Python" {
		t.Errorf("Skills = %v", got.Skills)
	}
	if got.ExperienceLevel != model.ExperienceSenior {
		t.Errorf("ExperienceLevel = %q, want senior", got.ExperienceLevel)
	}
	if !got.IsRemote {
		t.Error("IsRemote = false, want true")
	}
}

func TestEnrich_StripsCodeFences(t *testing.T) {
	mc := &mockClassifier{response: "```json\n{\"skills\": [\"Go\"], \"experience_level\": \"mid\", \"is_remote\": false}\n```"}
	e := NewEnricher(mc, discardLogger())

	got := e.Enrich(context.Background(), "Go developer wanted")
	if len(got.Skills) != 1 || got.Skills[0] != "Go" {
		t.Errorf("Skills = %v, want [Go]", got.Skills)
	}
	if got.ExperienceLevel != model.ExperienceMid {
		t.Errorf("ExperienceLevel = %q, want mid", got.ExperienceLevel)
	}
}

func TestEnrich_ClassifierErrorReturnsDefault(t *testing.T) {
	// Never propagates: an always-failing classifier yields the exact
	// default for every input.
	mc := &mockClassifier{err: errors.New("quota exceeded")}
	e := NewEnricher(mc, discardLogger())

	for _, desc := range []string{"a", "senior Go engineer", "remote data analyst"} {
		wantDefault(t, e.Enrich(context.Background(), desc))
	}
}

func TestEnrich_MalformedResponseReturnsDefault(t *testing.T) {
	mc := &mockClassifier{response: "Sorry, I cannot analyze this posting."}
	e := NewEnricher(mc, discardLogger())

	wantDefault(t, e.Enrich(context.Background(), "some description"))
}

func TestParseEnrichment_FieldShapeValidation(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantSkill int
		wantLevel string
		wantRem   bool
	}{
		{
			name:      "skills not an array",
			raw:       `{"skills": "Go, Python", "experience_level": "mid", "is_remote": true}`,
			wantSkill: 0,
			wantLevel: "mid",
			wantRem:   true,
		},
		{
			name:      "skills with non-string element",
			raw:       `{"skills": ["Go", 42], "experience_level": "junior", "is_remote": false}`,
			wantSkill: 0,
			wantLevel: "junior",
		},
		{
			name:      "missing experience level",
			raw:       `{"skills": ["SQL"], "is_remote": true}`,
			wantSkill: 1,
			wantLevel: "unknown",
			wantRem:   true,
		},
		{
			name:      "is_remote wrong type",
			raw:       `{"skills": [], "experience_level": "senior", "is_remote": "yes"}`,
			wantSkill: 0,
			wantLevel: "senior",
			wantRem:   false,
		},
		{
			name:      "unrecognized level passed through as returned",
			raw:       `{"skills": [], "experience_level": "principal", "is_remote": false}`,
			wantSkill: 0,
			wantLevel: "principal",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseEnrichment(tt.raw)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got.Skills) != tt.wantSkill {
				t.Errorf("Skills = %v, want %d entries", got.Skills, tt.wantSkill)
			}
			if got.ExperienceLevel != tt.wantLevel {
				t.Errorf("ExperienceLevel = %q, want %q", got.ExperienceLevel, tt.wantLevel)
			}
			if got.IsRemote != tt.wantRem {
				t.Errorf("IsRemote = %v, want %v", got.IsRemote, tt.wantRem)
			}
		})
	}
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"{\"a\":1}", "{\"a\":1}"},
		{"```json\n{\"a\":1}\n```", "{\"a\":1}"},
		{"```\n{\"a\":1}\n```", "{\"a\":1}"},
		{"  ```json\n{\"a\":1}\n```  ", "{\"a\":1}"},
	}
	for _, tt := range tests {
		if got := stripCodeFence(tt.in); got != tt.want {
			t.Errorf("stripCodeFence(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

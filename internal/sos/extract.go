package sos

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/stressease/crisisline/internal/model"
	"github.com/stressease/crisisline/pkg/anthropic"
)

// ExtractStage turns raw search evidence into a candidate ContactSet.
type ExtractStage interface {
	Extract(ctx context.Context, country string, year int, snippets []model.Snippet) (*model.ContactSet, error)
}

// maxEvidenceSnippets caps how many snippets go into the prompt.
const maxEvidenceSnippets = 15

// extractTemperature keeps decoding deterministic-leaning; this stage values
// consistency over creativity.
const extractTemperature = 0.1

const extractSystemText = "You are an emergency contact information specialist. Return only valid JSON matching the requested schema, with no markdown and no commentary."

const extractPrompt = `Task: Extract EXACTLY 5 emergency and crisis contacts for %s from the search results below.

Requirements:
1. Exactly one contact must be the national emergency number (e.g., 112, 911, 999), with category "national_emergency".
2. The other 4 contacts must be mental health crisis hotlines (suicide prevention, crisis support), with category "crisis_hotline".
3. Prefer official sources (.gov, .org domains). Set source_url to the URL of the search result the contact came from.
4. Only include information corroborated as current for %d.
5. Extract EXACTLY 5 contacts - no more, no less.

Output ONLY valid JSON in this EXACT format:
{
  "contacts": [
    {
      "name": "National Emergency Number",
      "phone_number": "112",
      "category": "national_emergency",
      "source_url": "https://example.gov/",
      "description": "National emergency response system"
    }
  ]
}

Search results:
%s

Extract EXACTLY 5 contacts in valid JSON:`

// Extractor implements ExtractStage with a low-temperature Anthropic call.
// The model is an untrusted transform: its output must still pass Validate.
type Extractor struct {
	ai        anthropic.Client
	model     string
	maxTokens int64
	timeout   time.Duration
}

// NewExtractor creates an Extractor.
func NewExtractor(ai anthropic.Client, modelID string, maxTokens int64, timeout time.Duration) *Extractor {
	if maxTokens <= 0 {
		maxTokens = 2048
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Extractor{
		ai:        ai,
		model:     modelID,
		maxTokens: maxTokens,
		timeout:   timeout,
	}
}

// candidateContact mirrors the JSON shape the model is asked to produce.
type candidateContact struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
	Category    string `json:"category"`
	SourceURL   string `json:"source_url"`
	Description string `json:"description"`
}

type candidateSet struct {
	Contacts []candidateContact `json:"contacts"`
}

// Extract builds the evidence prompt and parses the model response into a
// candidate ContactSet tagged OriginFresh. Unparsable output is
// ErrExtractionFailed; structural rule violations (count, categories, fields,
// provenance) are left to Validate so its diagnostics stay precise.
func (e *Extractor) Extract(ctx context.Context, country string, year int, snippets []model.Snippet) (*model.ContactSet, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	prompt := fmt.Sprintf(extractPrompt, country, year, buildEvidence(snippets))
	temp := extractTemperature

	resp, err := e.ai.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       e.model,
		MaxTokens:   e.maxTokens,
		System:      extractSystemText,
		Temperature: &temp,
		Messages: []anthropic.Message{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		zap.L().Warn("extract: model call failed",
			zap.String("country", country),
			zap.Error(err),
		)
		return nil, eris.Wrapf(ErrExtractionFailed, "extract: model call for %q", country)
	}

	var cand candidateSet
	cleaned := cleanJSON(resp.Text())
	if err := json.Unmarshal([]byte(cleaned), &cand); err != nil {
		zap.L().Warn("extract: unparsable model output",
			zap.String("country", country),
			zap.String("output_prefix", truncate(cleaned, 200)),
			zap.Error(err),
		)
		return nil, eris.Wrapf(ErrExtractionFailed, "extract: parse output for %q", country)
	}
	if cand.Contacts == nil {
		return nil, eris.Wrapf(ErrExtractionFailed, "extract: missing contacts array for %q", country)
	}

	set := &model.ContactSet{
		Country: country,
		Origin:  model.OriginFresh,
	}
	for _, c := range cand.Contacts {
		set.Contacts = append(set.Contacts, model.ContactRecord{
			Name:        strings.TrimSpace(c.Name),
			PhoneNumber: strings.TrimSpace(c.PhoneNumber),
			Description: strings.TrimSpace(c.Description),
			Category:    model.Category(c.Category),
			SourceURL:   strings.TrimSpace(c.SourceURL),
			Country:     country,
		})
	}
	return set, nil
}

// buildEvidence formats snippets for the prompt, capped at maxEvidenceSnippets.
func buildEvidence(snippets []model.Snippet) string {
	var b strings.Builder
	for i, s := range snippets {
		if i >= maxEvidenceSnippets {
			break
		}
		fmt.Fprintf(&b, "%d. %s\n   %s\n   %s\n\n", i+1, s.Title, s.Text, s.SourceURL)
	}
	return b.String()
}

// cleanJSON strips markdown code fences and any prose around the outermost
// JSON object.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package openai

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/poiesic/docpipe/providers"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// ElementExtractor implements providers.ElementExtractor using
// OpenAI-compatible vision chat APIs.
type ElementExtractor struct {
	client        llms.Model
	minConfidence float64
	logger        *slog.Logger
}

// element is an internal type used for JSON unmarshaling.
// It matches the structure expected from the LLM.
type element struct {
	Type       string  `json:"type"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// pageAnalysis is the wrapper structure for the LLM's JSON response.
type pageAnalysis struct {
	Elements []element `json:"elements"`
}

// newElementExtractor is an internal constructor that returns the concrete type.
func newElementExtractor(config *providers.Config) (*ElementExtractor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.ADEHost),
		openai.WithToken("none"),
		openai.WithModel(config.ADEModel),
	)
	if err != nil {
		return nil, err
	}

	return &ElementExtractor{
		client:        client,
		minConfidence: config.MinConfidence,
		logger:        slog.Default().With("component", "openai-ade"),
	}, nil
}

// NewElementExtractor creates a new ADE service using the provided configuration.
//
// Returns providers.ElementExtractor interface to enforce abstraction.
func NewElementExtractor(config *providers.Config) (providers.ElementExtractor, error) {
	return newElementExtractor(config)
}

// ExtractElements analyzes a page image using a vision LLM and returns
// the structural elements found on it. Elements below the configured
// confidence threshold are filtered out.
func (e *ElementExtractor) ExtractElements(ctx context.Context, image providers.PageImage) ([]providers.Element, error) {
	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(buildSystemPrompt()),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.BinaryPart("image/"+image.Format, image.Data),
				llms.TextPart("Identify the structural elements on this page."),
			},
		},
	}

	// Try up to 3 times in case of malformed JSON
	var result pageAnalysis
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		response, err := e.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			e.logger.Error("failed to generate content", "page", image.Page, "attempt", attempt+1, "err", err)
			return nil, err
		}

		if len(response.Choices) < 1 {
			e.logger.Debug("no choices returned from model", "page", image.Page)
			return []providers.Element{}, nil
		}

		choice := response.Choices[0]

		// Strip markdown code fences if present
		responseText := strings.TrimSpace(choice.Content)
		responseText = strings.TrimPrefix(responseText, "```json")
		responseText = strings.TrimPrefix(responseText, "```")
		responseText = strings.TrimSuffix(responseText, "```")
		responseText = strings.TrimSpace(responseText)

		// Try to repair common JSON issues
		responseText = repairJSON(responseText)

		if err := json.Unmarshal([]byte(responseText), &result); err != nil {
			lastErr = err
			e.logger.Warn("error parsing ade response",
				"page", image.Page,
				"attempt", attempt+1,
				"response", responseText,
				"err", err)
			continue
		}

		lastErr = nil
		break
	}

	if lastErr != nil {
		e.logger.Error("failed to parse ade response after retries", "page", image.Page, "err", lastErr)
		return nil, lastErr
	}

	// Filter by confidence and convert to providers.Element
	extracted := make([]providers.Element, 0, len(result.Elements))
	for _, el := range result.Elements {
		if el.Confidence >= e.minConfidence {
			extracted = append(extracted, providers.Element{
				Type:       strings.ReplaceAll(el.Type, " ", "_"),
				Page:       image.Page,
				Text:       el.Text,
				Confidence: el.Confidence,
			})
		}
	}

	e.logger.Debug("extracted elements",
		"page", image.Page,
		"total", len(result.Elements),
		"filtered", len(extracted))

	return extracted, nil
}

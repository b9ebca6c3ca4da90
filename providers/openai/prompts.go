package openai

import (
	"fmt"
	"strings"

	"github.com/poiesic/docpipe/providers"
)

const elementResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "elements": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "type": {
            "type": "string"
          },
          "text": {
            "type": "string"
          },
          "confidence": {
            "type": "number",
            "minimum": 0,
            "maximum": 1
          }
        },
        "required": ["type", "text", "confidence"],
        "additionalProperties": false
      }
    }
  },
  "required": ["elements"],
  "additionalProperties": false
}`

const elementPromptTemplate = `Analyze the given document page image and identify every structural element on it. Return the result as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- Type field must match exactly one of the listed values: %s.
- Text is the element's textual content, transcribed in reading order. For figures, describe the figure briefly instead.
- Confidence is a number from 0.0 (guess) to 1.0 (certain). Rate how sure you are of both the classification and the transcription.
- List elements in reading order, top to bottom, left column before right column.
- Transcribe tables row by row, cells separated by " | ".
- If the page holds no recognizable structure, return "elements": [].
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.

Example:
Input: a page with a heading and one paragraph
Output:
{
  "elements": [
    {"type":"section_header","text":"2. Methods","confidence":0.95},
    {"type":"paragraph","text":"We collected samples from three sites...","confidence":0.9}
  ]
}`

// buildSystemPrompt creates the system prompt with element types embedded.
func buildSystemPrompt() string {
	return fmt.Sprintf(elementPromptTemplate,
		elementResponseSchema,
		strings.Join(providers.ElementTypes, ", "))
}

package extract

import "encoding/json"

// ExtractionSchema is the JSON schema for structured question analysis.
var ExtractionSchema = map[string]any{
	"name":   "question_analysis",
	"strict": true,
	"schema": map[string]any{
		"type": "object",
		"properties": map[string]any{
			"total_questions": map[string]any{
				"type":        "integer",
				"minimum":     0,
				"description": "Number of questions analyzed",
			},
			"questions_answers": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"question": map[string]any{
							"type":        "string",
							"description": "The question exactly as provided",
						},
						"answer": map[string]any{
							"type": "string",
						},
						"category": map[string]any{
							"type":        "string",
							"description": "Short topic label, e.g. architecture, security, cost, data",
						},
						"technical_level": map[string]any{
							"type": "string",
							"enum": []string{LevelBasic, LevelIntermediate, LevelAdvanced},
						},
						"aws_services_mentioned": map[string]any{
							"type":  "array",
							"items": map[string]any{"type": "string"},
						},
					},
					"required":             []string{"question", "answer", "category", "technical_level", "aws_services_mentioned"},
					"additionalProperties": false,
				},
			},
			"summary": map[string]any{
				"type": "string",
			},
			"key_topics": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required":             []string{"total_questions", "questions_answers", "summary", "key_topics"},
		"additionalProperties": false,
	},
}

var extractionSchemaJSON = mustJSON(ExtractionSchema)

func mustJSON(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

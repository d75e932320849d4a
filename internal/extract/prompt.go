package extract

import (
	"bytes"
	_ "embed"
	"encoding/json"

	"github.com/jackzampolin/qaflow/internal/prompts"
	"github.com/jackzampolin/qaflow/internal/tabular"
)

// Prompt keys registered with the resolver.
const (
	AnalysisPromptKey = "extract.analysis"
	FallbackPromptKey = "extract.fallback"
)

//go:embed analysis.tmpl
var analysisPrompt string

//go:embed fallback.tmpl
var fallbackPrompt string

// RegisterPrompts registers the extraction prompts with the resolver.
func RegisterPrompts(r *prompts.Resolver) {
	r.Register(prompts.EmbeddedPrompt{
		Key:         AnalysisPromptKey,
		Text:        analysisPrompt,
		Description: "Structured question analysis with session context",
	})
	r.Register(prompts.EmbeddedPrompt{
		Key:         FallbackPromptKey,
		Text:        fallbackPrompt,
		Description: "Plain text answers used when structured analysis fails",
	})
}

// PromptData is the template data for both extraction prompts.
type PromptData struct {
	QuestionCount int
	QuestionsJSON string
}

func newPromptData(questions tabular.QuestionSet) (PromptData, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode([]string(questions)); err != nil {
		return PromptData{}, err
	}
	return PromptData{
		QuestionCount: len(questions),
		QuestionsJSON: string(bytes.TrimRight(buf.Bytes(), "\n")),
	}, nil
}

type renderedPrompt struct {
	key  string
	hash string
	text string
}

func (e *Extractor) render(key string, data PromptData) (renderedPrompt, error) {
	p, err := e.prompts.Resolve(key)
	if err != nil {
		return renderedPrompt{}, err
	}
	text, err := prompts.Render(key, p.Text, data)
	if err != nil {
		return renderedPrompt{}, err
	}
	return renderedPrompt{key: key, hash: p.Hash, text: text}, nil
}

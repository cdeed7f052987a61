package pipeline

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/prompts"
)

// DefaultAnswerTemplate instructs the model to act as a customer support
// assistant answering only from the knowledge graph response.
const DefaultAnswerTemplate = "Task: You are a customer support chatbot for {{.platform}}. You must " +
	"answer customer questions related to how their content is being " +
	"shared. Follow the provided instructions, given the provided " +
	"knowledge graph schema and knowledge graph response.\n" +
	" Instructions: Use only the provided knowledge graph response. " +
	"Do not include any explanations or apologies in your response. " +
	"Do not respond to any questions that might ask anything unrelated " +
	"to {{.platform}} content sharing. " +
	"Do not include any text except the answer to the user's question. " +
	"Give your response using professional, friendly language appropriate " +
	"for customer service.\n" +
	" Knowledge Graph Schema:\n" +
	" {{.schema}} \n" +
	" Knowledge Graph Response: {{.db_response}}\n" +
	" User Question: {{.question}}"

// AnswerStage phrases the final answer from a QueryResult.
type AnswerStage struct {
	NewModel ModelFactory
	Platform string
	template prompts.PromptTemplate
}

// NewAnswerStage returns an AnswerStage rendering tmpl, or
// DefaultAnswerTemplate when tmpl is empty.
func NewAnswerStage(newModel ModelFactory, tmpl, platform string) *AnswerStage {
	if tmpl == "" {
		tmpl = DefaultAnswerTemplate
	}
	return &AnswerStage{
		NewModel: newModel,
		Platform: platform,
		template: prompts.NewPromptTemplate(tmpl, []string{"platform", "schema", "db_response", "question"}),
	}
}

// Prompt renders the answer prompt.
func (s *AnswerStage) Prompt(question string, qr QueryResult) (string, error) {
	out, err := s.template.Format(map[string]any{
		"platform":    s.Platform,
		"schema":      qr.Schema,
		"db_response": qr.DBResponse,
		"question":    question,
	})
	if err != nil {
		return "", fmt.Errorf("render answer prompt: %w", err)
	}
	return out, nil
}

// FindAnswer sends the rendered prompt to a fresh model client and returns
// the completion as is.
func (s *AnswerStage) FindAnswer(ctx context.Context, question string, qr QueryResult) (string, error) {
	prompt, err := s.Prompt(question, qr)
	if err != nil {
		return "", err
	}

	model, err := s.NewModel()
	if err != nil {
		return "", fmt.Errorf("create model: %w", err)
	}

	answer, err := model.Complete(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("find answer: %w", err)
	}
	return answer, nil
}

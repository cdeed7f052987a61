// Package pipeline runs the two stages behind a question: the query stage
// fetches a raw response from the graph, the answer stage phrases it.
package pipeline

import (
	"context"
	"fmt"
	"io"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Pipeline runs the query stage, then the answer stage.
type Pipeline struct {
	Query  *QueryStage
	Answer *AnswerStage
	Tracer trace.Tracer
}

// Ask answers question, writing the raw database response, a blank line and
// the answer to w.
func (p *Pipeline) Ask(ctx context.Context, question string, w io.Writer) (answer string, err error) {
	tracer := p.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("pipeline")
	}

	ctx, span := tracer.Start(ctx, "pipeline.Ask", trace.WithAttributes(attribute.Int("question.length", len(question))))
	defer func() { endSpan(span, err) }()

	qctx, qspan := tracer.Start(ctx, "pipeline.QueryDatabase")
	qr, err := p.Query.QueryDatabase(qctx, question)
	endSpan(qspan, err)
	if err != nil {
		return "", err
	}
	if _, err := fmt.Fprint(w, qr.DBResponse, "\n\n"); err != nil {
		return "", err
	}

	actx, aspan := tracer.Start(ctx, "pipeline.FindAnswer")
	answer, err = p.Answer.FindAnswer(actx, question, qr)
	endSpan(aspan, err)
	if err != nil {
		return "", err
	}
	if _, err := fmt.Fprintln(w, answer); err != nil {
		return "", err
	}
	return answer, nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

package obs

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const maxTracedSQLLen = 300

type pgxSpanKey struct{}

// PGXTracer wires query spans into the pgx pool. Configuration loads are the
// only queries this service issues, so each refresh shows up as one span
// batch under the request or ticker trace.
type PGXTracer struct{}

// TraceQueryStart opens a span for the statement about to execute.
func (PGXTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	ctx, span := otel.Tracer("db.pgx").Start(ctx, "pgx.query")

	stmt := strings.TrimSpace(data.SQL)
	attrs := []attribute.KeyValue{
		attribute.String("db.system", "postgresql"),
	}
	if stmt != "" {
		if len(stmt) > maxTracedSQLLen {
			attrs = append(attrs, attribute.String("db.statement", stmt[:maxTracedSQLLen]+"..."))
		} else {
			attrs = append(attrs, attribute.String("db.statement", stmt))
		}
		attrs = append(attrs, attribute.String("db.operation", strings.Fields(stmt)[0]))
	}
	span.SetAttributes(attrs...)
	return context.WithValue(ctx, pgxSpanKey{}, span)
}

// TraceQueryEnd closes the span, recording the error if the statement failed.
func (PGXTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	span, ok := ctx.Value(pgxSpanKey{}).(trace.Span)
	if !ok {
		return
	}
	if data.Err != nil {
		span.RecordError(data.Err)
	}
	span.End()
}

package middleware

import (
	"net/http"

	apperrors "throttlelab/pkg/errors"
	"throttlelab/pkg/logger"
	"throttlelab/pkg/tracing"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Gin context keys a handler sets to label the request span and access log.
const (
	ExperimentIDKey = "throttlelab.experiment_id" // int64
	OutcomeKey      = "throttlelab.outcome"       // string, a domain.Outcome
)

// TraceIDHeader returns the trace id of the request span when it is sampled.
const TraceIDHeader = "X-Trace-ID"

// TracingMiddleware opens one span per request, named after the gin route.
// Spans are marked failed on 5xx; for 4xx the AppError code is recorded
// without failing the span.
func TracingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		ctx, span := tracing.TraceHTTPRequest(c.Request.Context(), c.Request.Method, route,
			attribute.String("http.request_id", logger.RequestID(c.Request.Context())),
		)
		defer span.End()

		if sc := span.SpanContext(); sc.IsSampled() {
			c.Header(TraceIDHeader, sc.TraceID().String())
		}
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(attribute.Int("http.status_code", status))
		span.SetAttributes(experimentAttributes(c)...)

		if last := c.Errors.Last(); last != nil {
			if appErr := apperrors.GetAppError(last.Err); appErr != nil {
				span.SetAttributes(attribute.String("error.code", string(appErr.Code)))
			}
			if status >= http.StatusInternalServerError {
				span.RecordError(last.Err)
			}
		}
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
	}
}

func experimentAttributes(c *gin.Context) []attribute.KeyValue {
	var attrs []attribute.KeyValue
	if id, ok := experimentID(c); ok {
		attrs = append(attrs, tracing.ExperimentIDKey.Int64(id))
	}
	if outcome := c.GetString(OutcomeKey); outcome != "" {
		attrs = append(attrs, tracing.OutcomeKey.String(outcome))
	}
	return attrs
}

func experimentID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(ExperimentIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// Package lambdahandler adapts the submitter to an API-Gateway-shaped
// function invocation.
package lambdahandler

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-lambda-go/events"

	"vodsubmit/internal/httpkit"
	"vodsubmit/internal/pkg/errors"
	"vodsubmit/internal/pkg/logger"
	"vodsubmit/internal/submit"
)

type Handler struct {
	submitter *submit.Service
	metrics   *submit.Metrics
	log       *logger.Logger
}

func New(submitter *submit.Service, metrics *submit.Metrics, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.NewDefault()
	}
	return &Handler{submitter: submitter, metrics: metrics, log: log}
}

// Handle processes one invocation. The returned error is always nil: a
// failure is delivered to the caller as a 500 response with a structured
// body rather than re-raised into the function runtime.
func (h *Handler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if reqID := event.RequestContext.RequestID; reqID != "" {
		ctx = logger.ContextWithRequestID(ctx, reqID)
	}
	log := h.log.FromContext(ctx)

	req, err := submit.ParseRequest([]byte(event.Body))
	if err != nil {
		if h.metrics != nil {
			h.metrics.ValidationFailures.Inc()
		}
		log.Warn("request rejected", "error", err.Error())

		msg := submit.MissingFieldsMessage
		var e *errors.Error
		if errors.As(err, &e) {
			msg = e.Message
		}
		return respond(400, msg), nil
	}

	out, err := h.submitter.Submit(ctx, req)
	if err != nil {
		var env httpkit.ErrorEnvelope
		env.Error.Code = string(errors.GetCode(err))
		env.Error.Message = "job submission failed"
		env.Error.Details = errors.GetFields(err)
		return respond(errors.GetHTTPStatus(err), env), nil
	}

	return respond(200, out), nil
}

func respond(status int, body any) events.APIGatewayProxyResponse {
	b, _ := json.Marshal(body)
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type":                "application/json",
			"Access-Control-Allow-Origin": "*",
		},
		Body: string(b),
	}
}

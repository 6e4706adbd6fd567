package handlers

import (
	"io"
	"net/http"

	"vodsubmit/internal/httpkit"
	"vodsubmit/internal/pkg/errors"
	"vodsubmit/internal/submit"
)

// PostJob accepts a transcoding request and submits it to the
// transcoding service. Validation failures answer 400 with the fixed
// message body; service failures answer 500 with an error envelope.
func (h *Handler) PostJob(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := h.log.FromContext(ctx)

	body, err := io.ReadAll(r.Body)
	r.Body.Close()
	if err != nil {
		httpkit.WriteErr(w, 400, string(errors.CodeBadRequest), "unable to read request body", nil)
		return
	}

	req, err := submit.ParseRequest(body)
	if err != nil {
		if h.metrics != nil {
			h.metrics.ValidationFailures.Inc()
		}
		log.Warn("request rejected", "error", err.Error())

		var e *errors.Error
		if errors.As(err, &e) {
			httpkit.WriteJSON(w, 400, e.Message)
		} else {
			httpkit.WriteJSON(w, 400, submit.MissingFieldsMessage)
		}
		return
	}

	out, err := h.submitter.Submit(ctx, req)
	if err != nil {
		status := errors.GetHTTPStatus(err)
		httpkit.WriteErr(w, status, string(errors.GetCode(err)), "job submission failed", errors.GetFields(err))
		return
	}

	httpkit.WriteJSON(w, 200, out)
}

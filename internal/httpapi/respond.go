package httpapi

import (
	"encoding/json"

	"github.com/orgball2608/insta-archive/pkg/errors"
	"github.com/valyala/fasthttp"
)

const contentTypeJSON = "application/json"

var errMalformedBody = errors.Mark("JSON parse error.", errors.ErrBadRequest)

func writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		ctx.Error(`{"detail":"A server error occurred."}`, fasthttp.StatusInternalServerError)
		ctx.SetContentType(contentTypeJSON)
		return
	}
	writeRaw(ctx, status, body)
}

func writeRaw(ctx *fasthttp.RequestCtx, status int, body []byte) {
	ctx.SetStatusCode(status)
	ctx.SetContentType(contentTypeJSON)
	ctx.SetBody(body)
}

func writeDetail(ctx *fasthttp.RequestCtx, status int, detail string) {
	writeJSON(ctx, status, map[string]string{"detail": detail})
}

// writeFieldErrors renders validation errors keyed by field name.
func writeFieldErrors(ctx *fasthttp.RequestCtx, fields map[string][]string) {
	writeJSON(ctx, fasthttp.StatusBadRequest, fields)
}

// writeError maps err onto a status through the shared error kinds.
func (s *Server) writeError(ctx *fasthttp.RequestCtx, err error) {
	switch {
	case errors.IsNotFound(err):
		writeDetail(ctx, fasthttp.StatusNotFound, "Not found.")
	case errors.Is(err, errors.ErrInvalidInput), errors.IsBadRequest(err):
		writeDetail(ctx, fasthttp.StatusBadRequest, errors.GetMessage(err))
	case errors.IsConflict(err):
		writeDetail(ctx, fasthttp.StatusConflict, errors.GetMessage(err))
	case errors.IsForbidden(err):
		writeDetail(ctx, fasthttp.StatusForbidden, errors.GetMessage(err))
	case errors.IsServiceUnavailable(err):
		writeDetail(ctx, fasthttp.StatusServiceUnavailable, errors.GetMessage(err))
	default:
		s.logger.Error("Request failed",
			"method", string(ctx.Method()),
			"path", string(ctx.Path()),
			"error", err,
		)
		writeDetail(ctx, fasthttp.StatusInternalServerError, "A server error occurred.")
	}
}

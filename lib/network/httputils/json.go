package httputils

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/nvellon/hal"

	"github.com/veristry/veristry/lib/errors"
)

type HALResource interface {
	Resource() *hal.Resource
}

// NewErrorProblem renders an error as an RFC7807 problem; coded errors
// keep their code as the problem type, everything else stays opaque.
func NewErrorProblem(err error, status int) errors.Problem {
	p := errors.NewDetailedStatusProblem(status, err.Error())
	if e, ok := err.(*errors.Error); ok {
		p.Type = fmt.Sprintf("https://veristry.io/problems/%d", e.Code)
		p.Title = e.Message
	}
	return p
}

// WriteJSON writes the value v to the http response as json encoding
func WriteJSON(w http.ResponseWriter, code int, v interface{}) error {
	if h, ok := v.(HALResource); ok {
		w.Header().Set("Content-Type", "application/hal+json")
		v = h.Resource()
	} else if e, ok := v.(error); ok {
		w.Header().Set("Content-Type", "application/problem+json")
		v = NewErrorProblem(e, code)
	} else {
		w.Header().Set("Content-Type", "application/json")
	}

	bs, err := json.Marshal(v)
	if err != nil {
		return err
	}

	w.WriteHeader(code)

	if _, err := w.Write(bs); err != nil {
		return err
	}

	return nil
}

// WriteJSONError writes the error to the http response, mapping the
// error code to its http status.
func WriteJSONError(w http.ResponseWriter, err error) {
	WriteJSON(w, StatusCode(err), err)
}

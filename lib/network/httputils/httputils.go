package httputils

import (
	"net/http"

	"github.com/veristry/veristry/lib/errors"
)

// IsEventStream checks request header accept is text/event-stream
func IsEventStream(r *http.Request) bool {
	if r.Header.Get("Accept") == "text/event-stream" {
		return true
	}
	return false
}

var (
	ErrorsToStatus = map[uint]int{
		errors.StorageRecordDoesNotExist.Code:  http.StatusNotFound,
		errors.StorageRecordAlreadyExists.Code: http.StatusConflict,
		errors.StorageCoreError.Code:           http.StatusInternalServerError,

		errors.BadRequestParameter.Code:     http.StatusBadRequest,
		errors.InvalidDecision.Code:         http.StatusBadRequest,
		errors.InvalidThresholdRule.Code:    http.StatusBadRequest,
		errors.PageQueryLimitMaxExceed.Code: http.StatusBadRequest,

		errors.NotAuthorized.Code: http.StatusForbidden,
		errors.NotAssigned.Code:   http.StatusForbidden,

		errors.VerificationDoesNotExist.Code: http.StatusNotFound,
		errors.ValidatorDoesNotExist.Code:    http.StatusNotFound,
		errors.ProjectDoesNotExist.Code:      http.StatusNotFound,
		errors.ValidatorAlreadyExists.Code:   http.StatusConflict,

		errors.WrongState.Code:             http.StatusConflict,
		errors.DeadlinePassed.Code:         http.StatusConflict,
		errors.NotExtendable.Code:          http.StatusConflict,
		errors.AlreadyAssigned.Code:        http.StatusConflict,
		errors.AlreadyTerminal.Code:        http.StatusConflict,
		errors.InsufficientCandidates.Code: http.StatusConflict,

		errors.MalformedSignature.Code:   http.StatusBadRequest,
		errors.AddressMismatch.Code:      http.StatusUnauthorized,
		errors.StaleTimestamp.Code:       http.StatusUnauthorized,
		errors.CryptographicFailure.Code: http.StatusUnauthorized,
	}
)

func StatusCode(err error) int {
	if e, ok := err.(*errors.Error); ok {
		if status, found := ErrorsToStatus[e.Code]; found {
			return status
		}
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

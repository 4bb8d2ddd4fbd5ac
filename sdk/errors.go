package sdk

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var (
	ErrInvalidSlug          = errors.New("invalid blueprint slug")
	ErrBlueprintNotCompiled = errors.New("blueprint has not been compiled yet")
	ErrEmptyEmail           = errors.New("email is empty")
	ErrMalformedEmail       = errors.New("email is malformed")
	ErrNoDKIMSignature      = errors.New("email has no DKIM-Signature header")
	ErrProofFailed          = errors.New("proof generation failed")
	ErrIncompleteProof      = errors.New("proof is missing proof or public data")
)

// APIError is returned when the registry answers with a non-2xx status.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("registry returned %d %s", e.StatusCode,
			http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("registry returned %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

func newAPIError(statusCode int, body []byte) *APIError {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	msg := strings.TrimSpace(string(body))
	if json.Unmarshal(body, &payload) == nil {
		switch {
		case payload.Error != "":
			msg = payload.Error
		case payload.Message != "":
			msg = payload.Message
		}
	}
	return &APIError{StatusCode: statusCode, Message: msg}
}

// ProofFailedError carries the reason the remote prover reported.
type ProofFailedError struct {
	ProofID uuid.UUID
	Reason  string
}

func (e *ProofFailedError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("proof %s: %v", e.ProofID, ErrProofFailed)
	}
	return fmt.Sprintf("proof %s: %v: %s", e.ProofID, ErrProofFailed, e.Reason)
}

func (e *ProofFailedError) Unwrap() error {
	return ErrProofFailed
}

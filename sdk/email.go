package sdk

import (
	"bytes"
	"net/mail"

	"github.com/pkg/errors"
)

// ValidateEmail checks that eml looks like a raw RFC 5322 message, a header
// block and a body separated by a blank line, carrying a DKIM signature, which
// every zk-email circuit verifies.
func ValidateEmail(eml []byte) error {
	if len(bytes.TrimSpace(eml)) == 0 {
		return ErrEmptyEmail
	}
	if !bytes.Contains(eml, []byte("\r\n\r\n")) && !bytes.Contains(eml, []byte("\n\n")) {
		return errors.Wrap(ErrMalformedEmail, "no blank line between header and body")
	}
	msg, err := mail.ReadMessage(bytes.NewReader(eml))
	if err != nil {
		return errors.Wrap(ErrMalformedEmail, err.Error())
	}
	if msg.Header.Get("DKIM-Signature") == "" {
		return ErrNoDKIMSignature
	}
	return nil
}

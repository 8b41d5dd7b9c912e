/*
Package resp provides helper functions for reading backend HTTP responses.

It decodes JSON payloads and turns error bodies into *errs.CustomError. The backend reports
failures as {"detail": ...}, where detail is either a message string or a list of
validation items each carrying a "msg".
*/
package resp

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"zimage/internal/pkg/errs"
)

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 << 10

// errorBody is the backend's error envelope.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

type validationItem struct {
	Msg string `json:"msg"`
}

// Detail extracts the human-readable message from an error body, or "" when none is present.
func Detail(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil || len(eb.Detail) == 0 {
		return ""
	}

	var msg string
	if err := json.Unmarshal(eb.Detail, &msg); err == nil {
		return strings.TrimSpace(msg)
	}

	var items []validationItem
	if err := json.Unmarshal(eb.Detail, &items); err == nil {
		for _, item := range items {
			if item.Msg != "" {
				return item.Msg
			}
		}
	}

	var item validationItem
	if err := json.Unmarshal(eb.Detail, &item); err == nil {
		return item.Msg
	}

	return ""
}

// ErrorFrom reads a non-2xx response and classifies it. It does not close the body.
func ErrorFrom(res *http.Response) *errs.CustomError {
	body, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
	return errs.FromResponse(res.StatusCode, Detail(body))
}

// DecodeJSON decodes r into dst. An empty body leaves dst untouched.
func DecodeJSON(r io.Reader, dst any) error {
	if dst == nil {
		_, _ = io.Copy(io.Discard, r)
		return nil
	}

	if err := json.NewDecoder(r).Decode(dst); err != nil {
		if err == io.EOF {
			return nil
		}
		return errs.Wrap(errs.ErrInvalidJSONFormat, err)
	}

	return nil
}

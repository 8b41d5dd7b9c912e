/*
Package req provides helper functions for building outbound HTTP requests.

It encapsulates URL joining, query encoding and JSON body encoding so that every API call
is assembled the same way.
*/
package req

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"zimage/internal/pkg/errs"
)

// Query is an ordered builder over url.Values that skips zero values.
type Query struct {
	values url.Values
}

// NewQuery returns an empty Query.
func NewQuery() *Query {
	return &Query{values: url.Values{}}
}

// Int sets key when v is non-zero.
func (q *Query) Int(key string, v int) *Query {
	if v != 0 {
		q.values.Set(key, strconv.Itoa(v))
	}
	return q
}

// Str sets key when v is non-empty.
func (q *Query) Str(key, v string) *Query {
	if v != "" {
		q.values.Set(key, v)
	}
	return q
}

// Values returns the accumulated parameters.
func (q *Query) Values() url.Values {
	if q == nil {
		return nil
	}
	return q.values
}

// BuildURL joins base and path and appends the encoded query.
func BuildURL(base, path string, query url.Values) string {
	u := strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// NewJSONRequest builds a request whose body, when not nil, is the JSON encoding of body.
func NewJSONRequest(ctx context.Context, method, rawURL string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, errs.Wrap(errs.ErrInvalidParams, err, "request body cannot be encoded")
		}
		reader = bytes.NewReader(buf)
	}

	r, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, errs.Wrap(errs.ErrInvalidParams, err, "malformed request")
	}

	r.Header.Set("Accept", "application/json")
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}

	return r, nil
}

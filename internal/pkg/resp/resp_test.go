package resp

import (
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zimage/internal/pkg/errs"
)

func TestDetail(t *testing.T) {
	cases := map[string]string{
		`{"detail":"quota exhausted"}`:                           "quota exhausted",
		`{"detail":[{"loc":["body","width"],"msg":"too big"}]}`: "too big",
		`{"detail":{"msg":"nested"}}`:                           "nested",
		`{"detail":null}`:                                       "",
		`{"message":"other envelope"}`:                          "",
		`<html>bad gateway</html>`:                              "",
	}
	for body, want := range cases {
		assert.Equal(t, want, Detail([]byte(body)), body)
	}
}

func TestErrorFrom(t *testing.T) {
	res := &http.Response{
		StatusCode: http.StatusBadRequest,
		Body:       io.NopCloser(strings.NewReader(`{"detail":"only published works accept comments"}`)),
	}

	err := ErrorFrom(res)
	assert.Equal(t, errs.ErrServerRejected, err.Code)
	assert.Equal(t, "only published works accept comments", err.Message)
	assert.Equal(t, http.StatusBadRequest, err.Status)
}

func TestDecodeJSON(t *testing.T) {
	var out struct {
		Liked bool `json:"liked"`
	}
	require.NoError(t, DecodeJSON(strings.NewReader(`{"liked":true}`), &out))
	assert.True(t, out.Liked)

	require.NoError(t, DecodeJSON(strings.NewReader(""), &out))
	require.NoError(t, DecodeJSON(strings.NewReader(`{"x":1}`), nil))

	err := DecodeJSON(strings.NewReader(`{`), &out)
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.ErrInvalidJSONFormat))
}

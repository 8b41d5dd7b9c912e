package confirm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zimage/internal/pkg/errs"
)

func TestParseAnswer(t *testing.T) {
	for _, yes := range []string{"y", "Y", " yes ", "YES"} {
		assert.True(t, ParseAnswer(yes), yes)
	}
	for _, no := range []string{"", "n", "no", "yep", "sure"} {
		assert.False(t, ParseAnswer(no), no)
	}
}

func TestRequire(t *testing.T) {
	ctx := context.Background()

	require.NoError(t, Require(ctx, Always(true), "Delete?"))

	err := Require(ctx, Always(false), "Delete?")
	require.Error(t, err)
	assert.True(t, errs.Is(err, errs.ErrActionCancelled))

	boom := errors.New("tty gone")
	err = Require(ctx, Func(func(context.Context, string) (bool, error) { return false, boom }), "Delete?")
	assert.ErrorIs(t, err, boom)
}

func TestFuncReceivesQuestion(t *testing.T) {
	var asked string
	c := Func(func(_ context.Context, q string) (bool, error) {
		asked = q
		return true, nil
	})

	require.NoError(t, Require(context.Background(), c, "Ban alice?"))
	assert.Equal(t, "Ban alice?", asked)
}

func TestTerminalHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Terminal{}.Confirm(ctx, "Delete?")
	assert.ErrorIs(t, err, context.Canceled)
}

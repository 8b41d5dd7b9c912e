/*
Package confirm asks the user before destructive actions run.

A declined prompt turns into an ErrActionCancelled error so callers can return it without
issuing the request.
*/
package confirm

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/peterh/liner"

	"zimage/internal/pkg/errs"
)

// Confirmer answers yes/no questions.
type Confirmer interface {
	Confirm(ctx context.Context, question string) (bool, error)
}

// Func adapts a function to Confirmer.
type Func func(ctx context.Context, question string) (bool, error)

// Confirm calls f.
func (f Func) Confirm(ctx context.Context, question string) (bool, error) {
	return f(ctx, question)
}

// Always answers every question with answer, for --yes and tests.
func Always(answer bool) Confirmer {
	return Func(func(context.Context, string) (bool, error) { return answer, nil })
}

// Require asks question and returns nil only on a yes.
func Require(ctx context.Context, c Confirmer, question string) error {
	ok, err := c.Confirm(ctx, question)
	if err != nil {
		return err
	}
	if !ok {
		return errs.NewError(errs.ErrActionCancelled)
	}
	return nil
}

// ParseAnswer reads y/yes as true and everything else, including an empty line, as false.
func ParseAnswer(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes":
		return true
	}
	return false
}

// Terminal prompts on the controlling terminal with line editing.
type Terminal struct{}

// Confirm shows "question [y/N] " and reads one line. Ctrl+C and EOF count as no.
func (Terminal) Confirm(ctx context.Context, question string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	answer, err := line.Prompt(question + " [y/N] ")
	if err != nil {
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, err
	}
	return ParseAnswer(answer), nil
}

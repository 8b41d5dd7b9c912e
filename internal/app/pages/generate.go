package pages

import (
	"context"
	"strings"
	"unicode/utf8"

	"zimage/internal/app/api"
	"zimage/internal/app/user"
	"zimage/internal/pkg/errs"
	"zimage/internal/pkg/logx"
)

const (
	MaxPromptChars         = 2000
	MaxNegativePromptChars = 1000

	MinImageSize = 256
	MaxImageSize = 1024

	MinSteps = 4
	MaxSteps = 30

	DefaultWidth  = 1024
	DefaultHeight = 576
	DefaultSteps  = 9

	// RandomSeed asks the backend to choose the seed.
	RandomSeed int64 = -1
)

// Preset is a named aspect ratio.
type Preset struct {
	Label  string
	Width  int
	Height int
}

// Presets are the size shortcuts offered by the form.
var Presets = []Preset{
	{Label: "1:1", Width: 1024, Height: 1024},
	{Label: "16:9", Width: 1024, Height: 576},
	{Label: "9:16", Width: 576, Height: 1024},
	{Label: "4:3", Width: 1024, Height: 768},
}

// GenerateForm holds the inputs of a generation request.
type GenerateForm struct {
	Prompt         string
	NegativePrompt string
	Width          int
	Height         int
	Steps          int
	Seed           int64
}

// NewGenerateForm returns the form with its defaults: 16:9, 9 steps and a random seed.
func NewGenerateForm() GenerateForm {
	return GenerateForm{
		Width:  DefaultWidth,
		Height: DefaultHeight,
		Steps:  DefaultSteps,
		Seed:   RandomSeed,
	}
}

// ApplyPreset sets width and height from the preset with the given label.
func (f *GenerateForm) ApplyPreset(label string) error {
	for _, p := range Presets {
		if p.Label == label {
			f.Width, f.Height = p.Width, p.Height
			return nil
		}
	}
	return errs.NewError(errs.ErrInvalidParams, "unknown preset "+label)
}

// Validate applies the backend's limits locally.
func (f *GenerateForm) Validate() error {
	prompt := strings.TrimSpace(f.Prompt)
	if prompt == "" {
		return errs.NewError(errs.ErrPromptRequired)
	}
	if utf8.RuneCountInString(prompt) > MaxPromptChars {
		return errs.NewError(errs.ErrPromptTooLong, "Prompt", MaxPromptChars)
	}
	if utf8.RuneCountInString(f.NegativePrompt) > MaxNegativePromptChars {
		return errs.NewError(errs.ErrPromptTooLong, "Negative prompt", MaxNegativePromptChars)
	}
	if f.Width < MinImageSize || f.Width > MaxImageSize || f.Height < MinImageSize || f.Height > MaxImageSize {
		return errs.NewError(errs.ErrInvalidImageSize, MinImageSize, MaxImageSize)
	}
	if f.Steps < MinSteps || f.Steps > MaxSteps {
		return errs.NewError(errs.ErrInvalidSteps, MinSteps, MaxSteps)
	}
	return nil
}

// Request builds the submission body. A negative seed is left out so the backend picks one.
func (f *GenerateForm) Request() api.CreateJobRequest {
	in := api.CreateJobRequest{
		Prompt:         strings.TrimSpace(f.Prompt),
		NegativePrompt: strings.TrimSpace(f.NegativePrompt),
		Width:          f.Width,
		Height:         f.Height,
		Steps:          f.Steps,
	}
	if f.Seed >= 0 {
		seed := f.Seed
		in.Seed = &seed
	}
	return in
}

// JobCreator submits jobs.
type JobCreator interface {
	Create(ctx context.Context, in api.CreateJobRequest) (*api.Job, error)
}

// Profile is the signed-in account whose quota a submission uses.
type Profile interface {
	RequireUser(ctx context.Context) (*user.User, error)
	UpdateUser(ctx context.Context, u *user.User) error
}

// Generator submits generation forms on behalf of the signed-in user.
type Generator struct {
	jobs    JobCreator
	profile Profile
}

// NewGenerator wires a Generator.
func NewGenerator(jobs JobCreator, profile Profile) *Generator {
	return &Generator{jobs: jobs, profile: profile}
}

// Submit checks sign-in, remaining quota and the form, then creates the job. On success
// the local quota is decremented without refetching the profile.
func (g *Generator) Submit(ctx context.Context, form GenerateForm) (*api.Job, error) {
	u, err := g.profile.RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	if u.RemainingQuota <= 0 {
		return nil, errs.NewError(errs.ErrQuotaExhausted)
	}
	if err := form.Validate(); err != nil {
		return nil, err
	}

	job, err := g.jobs.Create(ctx, form.Request())
	if err != nil {
		return nil, err
	}

	u.RemainingQuota--
	if err := g.profile.UpdateUser(ctx, u); err != nil {
		logx.Warn("Failed to store the updated quota", "error", err.Error())
	}
	return job, nil
}

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"zimage/internal/app/api"
	"zimage/internal/app/pages"
)

func (a *app) generateCmd() *cobra.Command {
	var (
		preset string
		wait   bool
		form   = pages.NewGenerateForm()
	)

	cmd := &cobra.Command{
		Use:   "generate <prompt>",
		Short: "Submit an image generation job",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			d := a.deps

			form.Prompt = strings.Join(args, " ")
			if preset != "" && !cmd.Flags().Changed("width") && !cmd.Flags().Changed("height") {
				if err := form.ApplyPreset(preset); err != nil {
					return err
				}
			}

			job, err := pages.NewGenerator(d.API.Jobs, d.Session).Submit(ctx, form)
			if err != nil {
				return err
			}
			logJobProgress(a, job)

			if wait {
				tracker := pages.NewJobTracker(d.API.Jobs, d.Config.Poll.Job)
				job, err = tracker.Track(ctx, job, func(j *api.Job) { logJobProgress(a, j) })
				if err != nil {
					return err
				}
			}
			return a.printer.Print(job, func() Rows { return jobDetail(d.API, job) })
		},
	}

	f := cmd.Flags()
	f.StringVar(&preset, "preset", "", "aspect ratio preset: 1:1, 16:9, 9:16 or 4:3")
	f.IntVar(&form.Width, "width", form.Width, "image width (256-1024)")
	f.IntVar(&form.Height, "height", form.Height, "image height (256-1024)")
	f.IntVar(&form.Steps, "steps", form.Steps, "sampling steps (4-30)")
	f.Int64Var(&form.Seed, "seed", form.Seed, "seed, -1 for random")
	f.StringVar(&form.NegativePrompt, "negative", "", "negative prompt")
	f.BoolVar(&wait, "wait", false, "follow the job until it finishes")
	return cmd
}

// logJobProgress reports queue position and status changes on stderr while waiting.
func logJobProgress(a *app, j *api.Job) {
	line := fmt.Sprintf("job %s: %s", j.ID, j.Status)
	if j.QueuePosition != nil && j.Status == api.JobQueued {
		line += fmt.Sprintf(" (position %d)", *j.QueuePosition)
	}
	if j.QueueOverload {
		line += " - the queue is busy, expect a delay"
	}
	_, _ = fmt.Fprintln(a.opts.Err, line)
}

func jobDetail(c *api.Client, j *api.Job) Rows {
	image := "-"
	if j.HasImage() {
		image = c.URL(*j.ImageURL)
	}
	elapsed := "-"
	if j.ElapsedSeconds != nil {
		elapsed = fmt.Sprintf("%.1fs", *j.ElapsedSeconds)
	}
	return KeyValues(
		"ID", j.ID,
		"Status", string(j.Status),
		"Prompt", j.Prompt,
		"Size", fmt.Sprintf("%dx%d", j.Width, j.Height),
		"Created", j.CreatedAt,
		"Elapsed", elapsed,
		"Image", image,
		"Error", optional(j.ErrorMessage),
		"Public", yesNo(j.IsPublic),
	)
}

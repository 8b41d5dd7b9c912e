package cli

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/spf13/cobra"

	"zimage/internal/app/api"
	"zimage/internal/app/db"
	"zimage/internal/app/pages"
)

func (a *app) jobsCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "jobs", Short: "Manage your generation jobs"}
	cmd.AddCommand(
		a.jobsListCmd(),
		a.jobsGetCmd(),
		a.jobsWatchCmd(),
		a.jobsPublishCmd(),
		a.jobsActionCmd("unpublish", "Remove a job from the gallery", (*pages.Works).Unpublish, "Removed %s from the gallery."),
		a.jobsActionCmd("cancel", "Cancel a queued or running job", (*pages.Works).Cancel, "Cancelled %s."),
		a.jobsActionCmd("delete", "Delete a job", (*pages.Works).Delete, "Deleted %s."),
		a.jobsExportCmd(),
	)
	return cmd
}

func (a *app) works() *pages.Works {
	return pages.NewWorks(a.deps.API.Jobs, a.deps.Confirm)
}

func jobRows(jobs []api.Job, p pages.Pager) Rows {
	r := Rows{
		Headers: []string{"ID", "Status", "Size", "Created", "Public", "Prompt"},
		Footer:  fmt.Sprintf("Page %d of %d", p.Page, p.Last()),
	}
	for _, j := range jobs {
		r.Rows = append(r.Rows, []string{
			j.ID,
			string(j.Status),
			fmt.Sprintf("%dx%d", j.Width, j.Height),
			j.CreatedAt,
			yesNo(j.IsPublic),
			truncate(j.Prompt, 48),
		})
	}
	return r
}

func (a *app) jobsListCmd() *cobra.Command {
	var (
		page   int
		search string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your jobs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := a.works()
			w.SetSearch(search)
			w.SetPage(page)
			jobs, err := w.Load(cmd.Context())
			if err != nil {
				return err
			}
			return a.printer.Print(jobs, func() Rows { return jobRows(jobs, w.Pager()) })
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().StringVar(&search, "search", "", "only show jobs whose prompt contains this text")
	return cmd
}

func (a *app) jobsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <job-id>",
		Short: "Show one job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			job, err := a.deps.API.Jobs.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.printer.Print(job, func() Rows { return jobDetail(a.deps.API, job) })
		},
	}
}

func (a *app) jobsWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Refresh the first page of jobs until none is queued or running",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := a.works()
			jobs, err := w.Load(cmd.Context())
			if err != nil {
				return err
			}
			if err := a.printer.Print(jobs, func() Rows { return jobRows(jobs, w.Pager()) }); err != nil {
				return err
			}
			if !w.HasPending() {
				return nil
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			var printErr error
			w.Watch(ctx, a.deps.Config.Poll.Works, func(jobs []api.Job) {
				if printErr = a.printer.Print(jobs, func() Rows { return jobRows(jobs, w.Pager()) }); printErr != nil || !w.HasPending() {
					cancel()
				}
			})
			return printErr
		},
	}
}

func (a *app) jobsPublishCmd() *cobra.Command {
	var publicName bool
	cmd := &cobra.Command{
		Use:   "publish <job-id>",
		Short: "Share a finished job in the public gallery",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.works().Publish(cmd.Context(), args[0], !publicName); err != nil {
				return err
			}
			if publicName {
				return a.printer.Message("Published %s under your name.", args[0])
			}
			return a.printer.Message("Published %s anonymously.", args[0])
		},
	}
	cmd.Flags().BoolVar(&publicName, "public-name", false, "show your name next to the work")
	return cmd
}

func (a *app) jobsActionCmd(use, short string, action func(*pages.Works, context.Context, string) error, done string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <job-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := action(a.works(), cmd.Context(), args[0]); err != nil {
				return err
			}
			return a.printer.Message(done, args[0])
		},
	}
}

func (a *app) jobsExportCmd() *cobra.Command {
	var (
		dir       string
		useS3     bool
		overwrite bool
		presign   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "export <job-id>...",
		Short: "Save generated images to a directory or the configured S3 bucket",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			exporter, bucket, err := a.deps.Exporter(ctx, dir, useS3)
			if err != nil {
				return err
			}
			exporter.Overwrite = overwrite

			type exported struct {
				db.ExportRecord
				URL string `json:"url,omitempty"`
			}
			var results []exported
			for _, id := range args {
				rec, err := exporter.Export(ctx, id)
				if err != nil {
					return fmt.Errorf("export %s: %w", id, err)
				}
				out := exported{ExportRecord: rec}
				if bucket != nil && presign > 0 {
					if out.URL, err = bucket.PresignDownload(ctx, path.Base(rec.Location), presign); err != nil {
						return err
					}
				}
				results = append(results, out)
			}

			return a.printer.Print(results, func() Rows {
				r := Rows{Headers: []string{"Job", "Sink", "Location", "Bytes", "Download"}}
				for _, e := range results {
					url := e.URL
					if url == "" {
						url = "-"
					}
					r.Rows = append(r.Rows, []string{e.JobID, e.Sink, e.Location, fmt.Sprint(e.Bytes), url})
				}
				return r
			})
		},
	}
	cmd.Flags().StringVar(&dir, "dir", ".", "directory for local exports")
	cmd.Flags().BoolVar(&useS3, "s3", false, "upload to the configured S3 bucket instead")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "upload again even if an identical export exists")
	cmd.Flags().DurationVar(&presign, "presign", time.Hour, "lifetime of the download link for S3 exports, 0 to skip")
	cmd.MarkFlagsMutuallyExclusive("dir", "s3")
	return cmd
}

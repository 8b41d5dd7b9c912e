package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"zimage/internal/app/api"
	"zimage/internal/app/pages"
	"zimage/internal/pkg/logx"
)

func (a *app) adminCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "admin", Short: "Moderation tools (admin accounts only)"}
	cmd.AddCommand(
		a.adminStatsCmd(),
		a.adminUsersCmd(),
		a.adminUserActionCmd("ban", "Ban a user", (*pages.Admin).Ban, "Banned user %d."),
		a.adminUserActionCmd("unban", "Lift a ban", (*pages.Admin).Unban, "Unbanned user %d."),
		a.adminUserJobsCmd(),
		a.adminJobsCmd(),
		a.adminWorkersCmd(),
		a.adminJobActionCmd("retry", "Requeue a failed or cancelled job", (*pages.Admin).Retry, "Requeued %s."),
		a.adminJobActionCmd("cancel", "Cancel any job", (*pages.Admin).Cancel, "Cancelled %s."),
		a.adminJobActionCmd("unpublish", "Remove any job from the gallery", (*pages.Admin).Unpublish, "Removed %s from the gallery."),
	)
	return cmd
}

func (a *app) admin() *pages.Admin {
	return pages.NewAdmin(a.deps.API.Admin, a.deps.Confirm)
}

func (a *app) adminStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the dashboard counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.deps.API.Admin.Stats(cmd.Context())
			if err != nil {
				return err
			}
			return a.printer.Print(s, func() Rows {
				return KeyValues(
					"Users", itoa(s.TotalUsers),
					"Jobs", itoa(s.TotalJobs),
					"Completed", itoa(s.TotalCompleted),
					"Failed", itoa(s.TotalFailed),
					"Today", itoa(s.TodayJobs),
					"Workers online", fmt.Sprintf("%d of %d", s.OnlineWorkers, s.TotalWorkers),
				)
			})
		},
	}
}

func (a *app) adminUsersCmd() *cobra.Command {
	var (
		filter pages.UserFilter
		sortBy string
		order  string
	)
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List accounts with search, sorting and paging",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter.SortBy = pages.UserSortKey(sortBy)
			if sortBy != "" && !filter.SortBy.Valid() {
				return fmt.Errorf("unknown sort key %q: use trust_level, is_active, today_used, total_generations or created_at", sortBy)
			}
			filter.Desc = order == "desc"

			adm := a.admin()
			ov, err := adm.LoadOverview(cmd.Context())
			if err != nil {
				return err
			}
			if uerr := ov.Errors["users"]; uerr != nil {
				return uerr
			}

			table := adm.Users(filter)
			return a.printer.Print(table.Users, func() Rows {
				r := Rows{
					Headers: []string{"ID", "Username", "Name", "Trust", "Active", "Today", "Total", "Created"},
					Footer:  fmt.Sprintf("Page %d of %d · %d matching", table.Page, table.TotalPages, table.Matched),
				}
				for _, u := range table.Users {
					r.Rows = append(r.Rows, []string{
						strconv.FormatInt(u.ID, 10),
						u.Username,
						u.DisplayName(),
						itoa(u.TrustLevel),
						yesNo(u.IsActive),
						fmt.Sprintf("%d/%d", u.TodayUsedCount, u.DailyQuota),
						itoa(u.TotalGenerations),
						u.CreatedAt,
					})
				}
				return r
			})
		},
	}
	cmd.Flags().StringVar(&filter.Search, "search", "", "match username or nickname")
	cmd.Flags().StringVar(&sortBy, "sort", "", "trust_level|is_active|today_used|total_generations|created_at")
	cmd.Flags().StringVar(&order, "order", "desc", "asc|desc")
	cmd.Flags().IntVar(&filter.Page, "page", 1, "page number")
	return cmd
}

func (a *app) adminUserActionCmd(use, short string, action func(*pages.Admin, context.Context, int64) error, done string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <user-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := action(a.admin(), cmd.Context(), id); err != nil {
				return err
			}
			return a.printer.Message(done, id)
		},
	}
}

func (a *app) adminJobActionCmd(use, short string, action func(*pages.Admin, context.Context, string) error, done string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <job-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := action(a.admin(), cmd.Context(), args[0]); err != nil {
				return err
			}
			return a.printer.Message(done, args[0])
		},
	}
}

func (a *app) adminUserJobsCmd() *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "user-jobs <user-id>",
		Short: "List one account's jobs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			res, err := a.admin().UserJobs(cmd.Context(), id, page)
			if err != nil {
				return err
			}
			p := pages.Pager{Page: res.Page, TotalPages: res.TotalPages}
			return a.printer.Print(res, func() Rows {
				r := jobRows(res.Jobs, p)
				r.Footer = fmt.Sprintf("%s · %s", res.User.Username, r.Footer)
				return r
			})
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	return cmd
}

func (a *app) adminJobsCmd() *cobra.Command {
	var (
		q    api.JobQuery
		page int
	)
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Search every account's jobs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			adm := a.admin()
			if err := adm.SetJobQuery(q); err != nil {
				return err
			}
			adm.SeekJobs(page)

			res, err := adm.LoadJobs(cmd.Context())
			if err != nil {
				return err
			}
			return a.printer.Print(res, func() Rows {
				p := adm.JobsPager()
				r := Rows{
					Headers: []string{"ID", "User", "Status", "Worker", "Created", "Public", "Prompt"},
					Footer:  fmt.Sprintf("Page %d of %d · %d jobs", p.Page, p.Last(), res.Total),
				}
				for _, j := range res.Jobs {
					r.Rows = append(r.Rows, []string{
						j.ID,
						j.User.Username,
						string(j.Status),
						optional(j.WorkerID),
						j.CreatedAt,
						yesNo(j.IsPublic),
						truncate(j.Prompt, 40),
					})
				}
				return r
			})
		},
	}
	f := cmd.Flags()
	f.StringVar((*string)(&q.Status), "status", "", "queued|running|done|failed|cancelled")
	f.StringVar(&q.Search, "search", "", "match prompt or username")
	f.StringVar(&q.SortBy, "sort-by", "created_at", "created_at|finished_at")
	f.StringVar(&q.SortOrder, "order", "desc", "asc|desc")
	f.IntVar(&page, "page", 1, "page number")
	return cmd
}

func (a *app) adminWorkersCmd() *cobra.Command {
	var watch bool
	cmd := &cobra.Command{
		Use:   "workers",
		Short: "List every worker including offline ones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			adm := a.admin()
			ov, err := adm.LoadOverview(cmd.Context())
			if err != nil {
				return err
			}
			if werr := ov.Errors["workers"]; werr != nil {
				return werr
			}
			if err := a.printer.Print(ov.Workers, func() Rows { return workerRows(ov.Workers) }); err != nil {
				return err
			}
			if !watch {
				return nil
			}

			adm.Watch(cmd.Context(), a.deps.Config.Poll.Admin, func(ov pages.Overview) {
				if werr := ov.Errors["workers"]; werr != nil {
					logx.Warn("Failed to refresh workers", "error", werr.Error())
					return
				}
				_ = a.printer.Print(ov.Workers, func() Rows { return workerRows(ov.Workers) })
			})
			return nil
		},
	}
	cmd.Flags().BoolVar(&watch, "watch", false, "keep refreshing until interrupted")
	return cmd
}

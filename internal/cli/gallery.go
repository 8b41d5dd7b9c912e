package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"zimage/internal/app/api"
	"zimage/internal/app/pages"
	"zimage/internal/pkg/errs"
)

func (a *app) galleryCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "gallery", Short: "Browse the public gallery"}

	var (
		page   int
		sort   string
		search string
	)
	list := &cobra.Command{
		Use:   "list",
		Short: "List published works",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			g := pages.NewGallery(a.deps.API.Gallery)
			if err := g.SetSort(api.GallerySort(sort)); err != nil {
				return err
			}
			g.SetSearch(search)
			g.SetPage(page)

			items, err := g.Load(cmd.Context())
			if err != nil {
				return err
			}
			return a.printer.Print(items, func() Rows {
				p := g.Pager()
				r := Rows{
					Headers: []string{"ID", "Author", "Likes", "Comments", "Size", "Prompt"},
					Footer:  fmt.Sprintf("Page %d of %d · %d works", p.Page, p.Last(), g.Total()),
				}
				for _, it := range items {
					r.Rows = append(r.Rows, []string{
						it.ID,
						it.Author.DisplayName(),
						itoa(it.LikeCount),
						itoa(it.CommentCount),
						fmt.Sprintf("%dx%d", it.Width, it.Height),
						truncate(it.Prompt, 48),
					})
				}
				return r
			})
		},
	}
	list.Flags().IntVar(&page, "page", 1, "page number")
	list.Flags().StringVar(&sort, "sort", string(api.SortByLikes), "order: time|likes|comments")
	list.Flags().StringVar(&search, "search", "", "only show works whose prompt contains this text")

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Show gallery totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.deps.API.Gallery.Stats(cmd.Context())
			if err != nil {
				return err
			}
			return a.printer.Print(s, func() Rows {
				return KeyValues(
					"Images", itoa(s.TotalImages),
					"Creators", itoa(s.TotalUsers),
					"Today", itoa(s.TodayImages),
				)
			})
		},
	}

	cmd.AddCommand(list, stats)
	return cmd
}

func (a *app) socialCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "social", Short: "Like and comment on published works"}

	like := &cobra.Command{
		Use:   "like <job-id>",
		Short: "Toggle your like on a work",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.deps.API.Social.ToggleLike(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.printLike(s)
		},
	}

	status := &cobra.Command{
		Use:   "like-status <job-id>",
		Short: "Show whether you like a work",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.deps.API.Social.LikeStatus(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.printLike(s)
		},
	}

	var page, limit int
	comments := &cobra.Command{
		Use:   "comments <job-id>",
		Short: "List comments on a work",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := a.deps.API.Social.Comments(cmd.Context(), args[0], page, limit)
			if err != nil {
				return err
			}
			return a.printer.Print(list, func() Rows {
				r := Rows{
					Headers: []string{"ID", "Author", "Created", "Comment"},
					Footer:  fmt.Sprintf("%d comments", list.Total),
				}
				for _, c := range list.Comments {
					r.Rows = append(r.Rows, []string{strconv.FormatInt(c.ID, 10), c.User.DisplayName(), c.CreatedAt, c.Content})
				}
				return r
			})
		},
	}
	comments.Flags().IntVar(&page, "page", 1, "page number")
	comments.Flags().IntVar(&limit, "limit", 20, "comments per page")

	comment := &cobra.Command{
		Use:   "comment <job-id> <text>",
		Short: "Comment on a work",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.deps.API.Social.CreateComment(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return a.printer.Print(c, func() Rows {
				return KeyValues("ID", strconv.FormatInt(c.ID, 10), "Comment", c.Content)
			})
		},
	}

	uncomment := &cobra.Command{
		Use:   "uncomment <comment-id>",
		Short: "Delete one of your comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.deps.API.Social.DeleteComment(cmd.Context(), id); err != nil {
				return err
			}
			return a.printer.Message("Deleted comment %d.", id)
		},
	}

	cmd.AddCommand(like, status, comments, comment, uncomment)
	return cmd
}

func (a *app) printLike(s *api.LikeStatus) error {
	return a.printer.Print(s, func() Rows {
		return KeyValues("Liked", yesNo(s.Liked), "Likes", itoa(s.LikeCount))
	})
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, errs.NewError(errs.ErrInvalidParams, fmt.Sprintf("%q is not a valid id", s))
	}
	return id, nil
}

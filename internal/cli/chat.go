package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"zimage/internal/app/chat"
	"zimage/internal/pkg/confirm"
	"zimage/internal/pkg/logx"
	"zimage/internal/ui/chatroom"
)

const chatHistoryLimit = 50

func (a *app) chatCmd() *cobra.Command {
	var anonymous bool

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Open the chatroom",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			d := a.deps

			// The TUI owns the terminal, so logs move to a file until it exits.
			logFile, err := os.OpenFile(d.Config.LogPath(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
			if err != nil {
				return fmt.Errorf("failed to open chat log: %w", err)
			}
			defer logFile.Close()
			logx.InitGlobalLogger(d.Config.IsDevelopment() || a.debug, logFile)
			defer logx.InitGlobalLogger(d.Config.IsDevelopment() || a.debug, a.opts.Err)

			admin := false
			if u := d.Session.User(); u != nil {
				admin = u.IsAdmin
			}

			history := d.API.Chat.History
			if admin {
				history = d.API.Chat.AdminHistory
			}

			sess := d.ChatSession()
			if msgs, err := history(ctx, chatHistoryLimit); err != nil {
				logx.Warn("Failed to load chat history", "error", err.Error())
			} else {
				sess.LoadHistory(msgs)
			}

			opts := chatroom.Options{AutoConfirm: a.yes}
			if admin {
				opts.Moderator = d.API.Chat
			}

			sess.Connect(anonymous)
			defer sess.Disconnect()
			return chatroom.Run(sess, opts)
		},
	}
	cmd.Flags().BoolVar(&anonymous, "anonymous", false, "join under a random guest name")

	cmd.AddCommand(a.chatHistoryCmd(), a.chatDeleteCmd(), a.chatOnlineCmd())
	return cmd
}

func messageRows(msgs []chat.Message) Rows {
	r := Rows{Headers: []string{"ID", "Time", "From", "Message"}}
	for _, m := range msgs {
		from := m.DisplayName
		if m.IsAdmin {
			from += " [admin]"
		}
		if m.Type == chat.TypeSystem {
			from = "*"
		}
		r.Rows = append(r.Rows, []string{fmt.Sprint(m.ID), m.Timestamp, from, m.Content})
	}
	return r
}

func (a *app) chatHistoryCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print recent chat messages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			msgs, err := a.deps.API.Chat.History(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return a.printer.Print(msgs, func() Rows { return messageRows(msgs) })
		},
	}
	cmd.Flags().IntVar(&limit, "limit", chatHistoryLimit, "number of messages")
	return cmd
}

func (a *app) chatDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <message-id>",
		Short: "Delete a chat message (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := confirm.Require(cmd.Context(), a.deps.Confirm, fmt.Sprintf("Delete chat message %d?", id)); err != nil {
				return err
			}
			if err := a.deps.API.Chat.DeleteMessage(cmd.Context(), id); err != nil {
				return err
			}
			return a.printer.Message("Deleted message %d.", id)
		},
	}
}

func (a *app) chatOnlineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "online",
		Short: "Show who is in the chatroom",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info, err := a.deps.API.Chat.Online(cmd.Context())
			if err != nil {
				return err
			}
			return a.printer.Print(info, func() Rows {
				r := Rows{
					Headers: []string{"Name", "Username"},
					Footer:  fmt.Sprintf("%d online", info.OnlineCount),
				}
				for _, u := range info.Users {
					username := u.Username
					if username == "" {
						username = "-"
					}
					r.Rows = append(r.Rows, []string{u.DisplayName, username})
				}
				return r
			})
		},
	}
}

package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"zimage/internal/app/user"
	"zimage/internal/pkg/auth/jwt"
	"zimage/internal/pkg/errs"
	"zimage/internal/pkg/logx"
)

func (a *app) loginCmd() *cobra.Command {
	var username, password, token string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with a username (development/admin) or an OAuth callback token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			d := a.deps

			var (
				accessToken string
				u           *user.User
			)
			switch {
			case token != "":
				accessToken = strings.TrimSpace(token)
				if _, err := jwt.ParseUnverified(accessToken); err != nil {
					return errs.Wrap(errs.ErrInvalidParams, err, "token is not a valid JWT")
				}
				// The profile lookup needs the token in place.
				if err := d.Session.SetAuth(ctx, accessToken, nil); err != nil {
					return err
				}
				me, err := d.API.Auth.Me(ctx)
				if err != nil {
					return err
				}
				u = me

			case username != "":
				res, err := d.API.Auth.DevLogin(ctx, username, password)
				if err != nil {
					return err
				}
				accessToken, u = res.AccessToken, res.User

			default:
				return errs.NewError(errs.ErrInvalidParams, "pass --username or --token; run `zimage login-url` for browser sign-in")
			}

			if err := d.Session.SetAuth(ctx, accessToken, u); err != nil {
				return err
			}
			logx.Info("Signed in", "user_id", u.ID, "username", u.Username)
			return a.printer.Message("Signed in as %s.", u.DisplayName())
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "development or admin username")
	cmd.Flags().StringVar(&password, "password", "", "password (admin accounts only)")
	cmd.Flags().StringVar(&token, "token", "", "access token from the OAuth callback")
	return cmd
}

func (a *app) loginURLCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login-url",
		Short: "Print the browser sign-in URL",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return a.printer.Message("%s", a.deps.API.Auth.LoginURL())
		},
	}
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.deps.Session.Logout(cmd.Context()); err != nil {
				return err
			}
			logx.Info("Signed out")
			return a.printer.Message("Signed out.")
		},
	}
}

func (a *app) whoamiCmd() *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account and its quota",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			d := a.deps

			u, err := d.Session.RequireUser(ctx)
			if err != nil {
				return err
			}
			if refresh {
				if u, err = d.API.Auth.Me(ctx); err != nil {
					return err
				}
				if err := d.Session.UpdateUser(ctx, u); err != nil {
					return err
				}
			}

			expires := "-"
			if claims, err := jwt.ParseUnverified(d.Session.Token()); err == nil {
				if t, ok := claims.ExpiresAtTime(); ok {
					expires = t.Local().Format(time.DateTime)
				}
			}

			return a.printer.Print(u, func() Rows {
				return KeyValues(
					"Username", u.Username,
					"Name", u.DisplayName(),
					"Admin", yesNo(u.IsAdmin),
					"Trust level", itoa(u.TrustLevel),
					"Quota", fmt.Sprintf("%d of %d left today", u.RemainingQuota, u.DailyQuota),
					"Total generations", itoa(u.TotalGenerations),
					"Session expires", expires,
				)
			})
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "reload the profile from the backend")
	return cmd
}

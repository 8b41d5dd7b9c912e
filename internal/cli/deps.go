package cli

import (
	"context"
	"fmt"
	"io"

	"zimage/internal/app/api"
	"zimage/internal/app/chat"
	"zimage/internal/app/db"
	"zimage/internal/app/session"
	"zimage/internal/app/storage"
	"zimage/internal/configs"
	"zimage/internal/pkg/confirm"
	"zimage/internal/pkg/logx"
)

// AppDeps holds everything the commands share. It is built once per invocation.
type AppDeps struct {
	Config  *configs.AppConfig
	DB      *db.Store
	Session *session.Store
	API     *api.Client
	Confirm confirm.Confirmer
	Dialer  chat.Dialer
}

// loginHint tells the user how to sign in again after the backend rejected the token.
func loginHint(w io.Writer) api.Navigator {
	return api.NavigatorFunc(func() {
		_, _ = fmt.Fprintln(w, "Your session has ended. Run `zimage login` to sign in again.")
	})
}

// NewAppDeps opens the local store, restores the session and builds the API client.
func NewAppDeps(ctx context.Context, cfg *configs.AppConfig, c confirm.Confirmer, nav api.Navigator) (*AppDeps, error) {
	store, err := db.Open(cfg.DatabasePath())
	if err != nil {
		return nil, err
	}

	sess := session.NewStore(store)
	if err := sess.Hydrate(ctx); err != nil {
		logx.Warn("Failed to restore the saved session", "error", err.Error())
	}

	client := api.New(cfg.APIBase, sess,
		api.WithTransport(cfg.HTTPTimeout, cfg.RequestRate, cfg.RequestBurst),
		api.WithNavigator(nav),
	)

	return &AppDeps{
		Config:  cfg,
		DB:      store,
		Session: sess,
		API:     client,
		Confirm: c,
		Dialer:  chat.WebSocketDialer{},
	}, nil
}

// Exporter builds an image exporter writing to dir, or to the configured bucket when useS3 is set.
// The S3 sink is returned as well so callers can presign downloads; it is nil for local exports.
func (d *AppDeps) Exporter(ctx context.Context, dir string, useS3 bool) (*storage.Exporter, *storage.S3Sink, error) {
	if !useS3 {
		return storage.NewExporter(d.API.Jobs, storage.LocalSink{Dir: dir}, d.DB), nil, nil
	}
	if !d.Config.S3Enabled() {
		return nil, nil, fmt.Errorf("S3 export needs S3_BUCKET_NAME, S3_ENDPOINT, S3_ACCESS_KEY_ID and S3_SECRET_ACCESS_KEY")
	}

	sink, err := storage.NewS3Sink(ctx, storage.ServiceConfig{
		S3BucketName:      d.Config.S3BucketName,
		S3Endpoint:        d.Config.S3Endpoint,
		S3AccessKeyID:     d.Config.S3AccessKeyID,
		S3SecretAccessKey: d.Config.S3SecretAccessKey,
	})
	if err != nil {
		return nil, nil, err
	}
	return storage.NewExporter(d.API.Jobs, sink, d.DB), sink, nil
}

// ChatSession builds a chat session authenticated with the stored token.
func (d *AppDeps) ChatSession() *chat.Session {
	return chat.NewSession(d.Dialer, d.Session, chat.Config{
		WSBase:         d.Config.WSBase,
		ReconnectDelay: d.Config.ReconnectDelay,
		SettleDelay:    d.Config.SettleDelay,
	})
}

// Close releases the local store.
func (d *AppDeps) Close() error {
	return d.DB.Close()
}

package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mithrel/inkwell/internal/server"
	"github.com/mithrel/inkwell/internal/tlsconf"
)

func newServeCmd() *cobra.Command {
	var http01 bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the browser UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sess, err := app.NewSession(nil)
			if err != nil {
				return err
			}
			tlsConf, challenge, err := tlsconf.Build(ctx, tlsconf.Options{
				Mode:         app.Cfg.GetString("tls.mode"),
				CertFile:     app.Cfg.GetString("tls.cert_file"),
				KeyFile:      app.Cfg.GetString("tls.key_file"),
				Domain:       app.Cfg.GetString("tls.domain"),
				Email:        app.Cfg.GetString("tls.email"),
				EnableHTTP01: http01,
			})
			if err != nil {
				return err
			}
			srv := server.New(app.Cfg, sess, app.Store.Posts, app.Log)
			return srv.Serve(ctx, server.ListenOptions{
				Addr:      app.Cfg.GetString("http_addr"),
				TLS:       tlsConf,
				HTTP3:     app.Cfg.GetBool("tls.http3"),
				Challenge: challenge,
			})
		},
	}
	cmd.Flags().String("listen", "", "listen address (overrides http_addr)")
	cmd.Flags().BoolVar(&http01, "http01", false, "answer ACME HTTP-01 challenges on :80 (tls.mode acme)")
	return cmd
}

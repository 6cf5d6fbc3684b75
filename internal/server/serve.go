package server

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"time"

	"github.com/quic-go/quic-go/http3"
	"golang.org/x/sync/errgroup"

	"github.com/mithrel/inkwell/internal/tlsconf"
)

const shutdownTimeout = 5 * time.Second

// ListenOptions controls how Serve exposes the router.
type ListenOptions struct {
	Addr string
	// TLS enables HTTPS on Addr when non-nil.
	TLS *tls.Config
	// HTTP3 additionally serves HTTP/3 over UDP on Addr. Requires TLS.
	HTTP3 bool
	// Challenge, when set, is served on ChallengeAddr for ACME HTTP-01.
	Challenge     http.Handler
	ChallengeAddr string
}

// Serve runs the listeners described by opts until ctx is cancelled or
// one of them fails.
func (s *Server) Serve(ctx context.Context, opts ListenOptions) error {
	if opts.HTTP3 && opts.TLS == nil {
		return tlsconf.ErrMissingTLS
	}
	handler := s.Router()

	var h3 *http3.Server
	if opts.HTTP3 {
		h3 = &http3.Server{
			Addr:      opts.Addr,
			Handler:   handler,
			TLSConfig: http3.ConfigureTLSConfig(opts.TLS.Clone()),
		}
		next := handler
		handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ProtoMajor < 3 {
				_ = h3.SetQUICHeaders(w.Header())
			}
			next.ServeHTTP(w, r)
		})
	}

	srv := &http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		TLSConfig:         opts.TLS,
		ReadHeaderTimeout: 10 * time.Second,
	}
	servers := []*http.Server{srv}
	if opts.Challenge != nil {
		addr := opts.ChallengeAddr
		if addr == "" {
			addr = ":80"
		}
		servers = append(servers, &http.Server{Addr: addr, Handler: opts.Challenge, ReadHeaderTimeout: 10 * time.Second})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if opts.TLS != nil {
			err = srv.ListenAndServeTLS("", "")
		} else {
			err = srv.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	for _, extra := range servers[1:] {
		g.Go(func() error {
			if err := extra.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}
	if h3 != nil {
		g.Go(func() error {
			err := h3.ListenAndServe()
			if errors.Is(err, http.ErrServerClosed) || gctx.Err() != nil {
				return nil
			}
			return err
		})
	}

	s.log.WithField("addr", opts.Addr).
		WithField("tls", opts.TLS != nil).
		WithField("http3", opts.HTTP3).
		Info("serving web UI")

	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		var errs []error
		for _, hs := range servers {
			errs = append(errs, hs.Shutdown(sctx))
		}
		if h3 != nil {
			errs = append(errs, h3.Close())
		}
		return errors.Join(errs...)
	})
	return g.Wait()
}

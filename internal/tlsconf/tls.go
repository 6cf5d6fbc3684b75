// Package tlsconf builds the TLS configuration for the web UI from the
// tls.* configuration keys.
package tlsconf

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/caddyserver/certmagic"
)

const (
	ModeNone = ""
	ModeFile = "file"
	ModeACME = "acme"
)

// ErrMissingTLS is returned when an HTTPS-only listener is started without
// a TLS configuration.
var ErrMissingTLS = errors.New("missing TLS configuration")

// Options mirrors the tls.* keys.
type Options struct {
	Mode     string
	CertFile string
	KeyFile  string
	Domain   string
	Email    string
	// StorageDir defaults to $XDG_CACHE_HOME/inkwell/certmagic.
	StorageDir string
	// CA defaults to Let's Encrypt production.
	CA string
	// EnableHTTP01 makes Build return a handler for HTTP-01 challenges
	// that the caller serves on :80.
	EnableHTTP01 bool
}

// Build returns nil, nil, nil for ModeNone. For ModeACME the returned
// handler, when non-nil, must be served on port 80.
func Build(ctx context.Context, opts Options) (*tls.Config, http.Handler, error) {
	switch opts.Mode {
	case ModeNone:
		return nil, nil, nil
	case ModeFile:
		c, err := BuildFileTLS(opts.CertFile, opts.KeyFile)
		return c, nil, err
	case ModeACME:
		return BuildCertMagicTLS(ctx, opts)
	default:
		return nil, nil, fmt.Errorf("unknown tls mode %q", opts.Mode)
	}
}

// BuildCertMagicTLS provisions or loads certificates via CertMagic.
func BuildCertMagicTLS(ctx context.Context, opts Options) (*tls.Config, http.Handler, error) {
	if opts.Domain == "" {
		return nil, nil, errors.New("domain is required")
	}

	cm := certmagic.NewDefault()
	if opts.StorageDir == "" {
		opts.StorageDir = defaultStorageDir()
	}
	if err := os.MkdirAll(opts.StorageDir, 0o700); err != nil {
		return nil, nil, fmt.Errorf("cert storage: %w", err)
	}
	cm.Storage = &certmagic.FileStorage{Path: opts.StorageDir}

	issuer := certmagic.NewACMEIssuer(cm, certmagic.ACMEIssuer{
		CA:                   ifEmpty(opts.CA, certmagic.LetsEncryptProductionCA),
		Email:                opts.Email,
		Agreed:               true,
		DisableHTTPChallenge: !opts.EnableHTTP01,
	})
	cm.Issuers = []certmagic.Issuer{issuer}

	if err := cm.ManageSync(ctx, []string{opts.Domain}); err != nil {
		return nil, nil, fmt.Errorf("manage certificate for %s: %w", opts.Domain, err)
	}

	conf := cm.TLSConfig()
	conf.NextProtos = append([]string{"h2", "http/1.1"}, conf.NextProtos...)
	conf.MinVersion = tls.VersionTLS12
	if opts.EnableHTTP01 {
		return conf, issuer.HTTPChallengeHandler(http.NotFoundHandler()), nil
	}
	return conf, nil, nil
}

func defaultStorageDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "inkwell", "certmagic")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cache", "inkwell", "certmagic")
}

func ifEmpty(s, d string) string {
	if s == "" {
		return d
	}
	return s
}

// BuildFileTLS loads a certificate from PEM files and rejects chains that
// are expired or not yet valid.
func BuildFileTLS(certFile, keyFile string) (*tls.Config, error) {
	if certFile == "" || keyFile == "" {
		return nil, errors.New("both certFile and keyFile are required")
	}

	c, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("load keypair: %w", err)
	}

	now := time.Now()
	for i, b := range c.Certificate {
		cert, err := x509.ParseCertificate(b)
		if err != nil {
			return nil, fmt.Errorf("invalid certificate at index %d: %w", i, err)
		}
		if now.Before(cert.NotBefore) {
			return nil, fmt.Errorf("certificate not yet valid (starts %s)", cert.NotBefore)
		}
		if now.After(cert.NotAfter) {
			return nil, fmt.Errorf("certificate expired on %s", cert.NotAfter)
		}
	}

	return &tls.Config{
		Certificates: []tls.Certificate{c},
		NextProtos:   []string{"h2", "http/1.1"},
		MinVersion:   tls.VersionTLS12,
	}, nil
}

package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"text/template"
	"time"

	"github.com/spf13/viper"
)

var (
	validProviders    = map[string]bool{"gemini": true, "ollama": true, "file": true}
	validKeyProviders = map[string]bool{"config": true, "keyring": true}
	validLogLevels    = map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true}
	validTLSModes     = map[string]bool{"": true, "file": true, "acme": true}
)

// CheckConfigValidity reports every problem with the loaded configuration
// at once, joined into a single error.
func CheckConfigValidity(v *viper.Viper) error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if strings.TrimSpace(v.GetString("data_dir")) == "" {
		add("data_dir is required")
	}
	if addr := v.GetString("http_addr"); addr != "" {
		if _, _, err := net.SplitHostPort(addr); err != nil {
			add("http_addr %q is not host:port", addr)
		}
	}
	if lvl := strings.ToLower(v.GetString("log.level")); lvl != "" && !validLogLevels[lvl] {
		add("log.level %q is not one of debug, info, warn, error", lvl)
	}
	if f := strings.ToLower(v.GetString("log.format")); f != "" && f != "text" && f != "json" {
		add("log.format %q must be text or json", f)
	}

	provider := strings.ToLower(strings.TrimSpace(v.GetString("generator.provider")))
	if !validProviders[provider] {
		add("generator.provider %q must be gemini, ollama or file", provider)
	}
	if provider != "file" && strings.TrimSpace(v.GetString("generator.model")) == "" {
		add("generator.model is required for provider %s", provider)
	}
	if provider == "file" && strings.TrimSpace(v.GetString("generator.file")) == "" {
		add("generator.file is required for provider file")
	}
	if kp := v.GetString("generator.key_provider"); !validKeyProviders[kp] {
		add("generator.key_provider %q must be config or keyring", kp)
	}
	if _, err := parseDuration(v, "generator.timeout"); err != nil {
		add("generator.timeout: %v", err)
	}
	if tpl := v.GetString("generator.prompt_template"); tpl != "" {
		if _, err := template.New("prompt").Parse(tpl); err != nil {
			add("generator.prompt_template does not parse: %v", err)
		}
	}

	if v.GetInt("history.page_size") <= 0 {
		add("history.page_size must be greater than 0")
	}
	if v.GetInt("render.word_wrap") < 0 {
		add("render.word_wrap must not be negative")
	}
	if d, err := parseDuration(v, "clipboard.copied_delay"); err != nil {
		add("clipboard.copied_delay: %v", err)
	} else if d <= 0 {
		add("clipboard.copied_delay must be greater than 0")
	}

	mode := v.GetString("tls.mode")
	if !validTLSModes[mode] {
		add("tls.mode %q must be empty, file or acme", mode)
	}
	switch mode {
	case "file":
		if v.GetString("tls.cert_file") == "" || v.GetString("tls.key_file") == "" {
			add("tls.mode file requires tls.cert_file and tls.key_file")
		}
	case "acme":
		if v.GetString("tls.domain") == "" {
			add("tls.mode acme requires tls.domain")
		}
	}
	if v.GetBool("tls.http3") && mode == "" {
		add("tls.http3 requires tls.mode file or acme")
	}

	return errors.Join(errs...)
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return 0, nil
	}
	return time.ParseDuration(raw)
}

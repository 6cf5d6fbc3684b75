package config

import (
	"os"
	"path/filepath"
)

type ConfigOption struct {
	Key     string
	Default any
	Comment string
}

// DefaultPromptTemplate wraps the user's topic before it is sent to the backend.
const DefaultPromptTemplate = `Write a complete blog post about: {{.Topic}}

Format it with this markdown subset only: "## " and "### " headings,
"* " bullet lists, **bold**, *italic* or _italic_, ` + "`inline code`" + `,
[links](https://example.com) and fenced code blocks with three backticks.`

// GetConfigOptions returns the default configuration options and their meanings.
// This is the single source of truth for default values and generator output.
func GetConfigOptions() []ConfigOption {
	return []ConfigOption{
		// Core paths and conventions
		{Key: "data_dir", Default: defaultDataDir(), Comment: "Directory for local state; history DB is data_dir/inkwell.db"},
		{Key: "http_addr", Default: "127.0.0.1:8080", Comment: "HTTP listen address for the web UI"},

		{Key: "log.level", Default: "info", Comment: "Log level: debug, info, warn, error"},
		{Key: "log.format", Default: "text", Comment: "Log format: text or json"},

		{Key: "generator.provider", Default: "gemini", Comment: "Generation backend: gemini, ollama or file"},
		{Key: "generator.model", Default: "gemini-1.5-flash", Comment: "Model name passed to the backend"},
		{Key: "generator.base_url", Default: "", Comment: "Override the backend base URL (empty uses the provider default)"},
		{Key: "generator.api_key", Default: "", Comment: "API key when key_provider = \"config\" (or set INKWELL_GENERATOR_API_KEY)"},
		{Key: "generator.key_provider", Default: "config", Comment: "Where the API key lives: config or keyring"},
		{Key: "generator.timeout", Default: "0s", Comment: "HTTP timeout for one generation; 0s waits indefinitely"},
		{Key: "generator.file", Default: "", Comment: "Markdown file returned by the file provider"},
		{Key: "generator.prompt_template", Default: DefaultPromptTemplate, Comment: "Go template for the prompt; {{.Topic}} is the user's text"},

		{Key: "history.enabled", Default: true, Comment: "Persist generated posts in the history DB"},
		{Key: "history.page_size", Default: 50, Comment: "Default number of posts listed by history commands"},

		{Key: "render.sanitize", Default: true, Comment: "Run rendered HTML through a strict allow-list policy"},
		{Key: "render.style", Default: "dracula", Comment: "Glamour style for raw markdown output"},
		{Key: "render.word_wrap", Default: 80, Comment: "Terminal word wrap width"},

		{Key: "clipboard.copied_delay", Default: "2s", Comment: "How long the \"copied\" indicator stays visible"},
		{Key: "clipboard.osc52", Default: true, Comment: "Fall back to OSC 52 terminal escape when no system clipboard is available"},

		{Key: "tls.mode", Default: "", Comment: "HTTPS mode: empty (plain HTTP), file or acme"},
		{Key: "tls.cert_file", Default: "", Comment: "PEM certificate when tls.mode = \"file\""},
		{Key: "tls.key_file", Default: "", Comment: "PEM key when tls.mode = \"file\""},
		{Key: "tls.domain", Default: "", Comment: "Domain managed by ACME when tls.mode = \"acme\""},
		{Key: "tls.email", Default: "", Comment: "ACME account email"},
		{Key: "tls.http3", Default: false, Comment: "Also serve HTTP/3 over QUIC on the same address"},
	}
}

// DefaultDBPath builds the default sqlite DB path from data_dir rules.
func DefaultDBPath() string {
	dir := defaultDataDir()
	return filepath.Join(dir, "inkwell.db")
}

// defaultDataDir resolves default data dir: $XDG_DATA_HOME/inkwell or ~/.local/share/inkwell
func defaultDataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "inkwell")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "inkwell")
}

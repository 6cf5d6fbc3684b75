package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mithrel/inkwell/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "config",
		Short:       "Manage configuration",
		Annotations: noApp,
	}
	cmd.AddCommand(newConfigGenerateCmd())
	cmd.AddCommand(newConfigCheckCmd())
	cmd.AddCommand(newConfigGeneratorCmd())
	return cmd
}

// configPathFlag returns --config or the default config.toml location.
func configPathFlag(cmd *cobra.Command) string {
	if p, _ := cmd.Flags().GetString("config"); p != "" {
		return p
	}
	return config.DefaultConfigPath()
}

func newConfigCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			v := viper.New()
			if p, _ := cmd.Flags().GetString("config"); p != "" {
				v.SetConfigFile(p)
			}
			if err := config.Load(cmd.Context(), v); err != nil {
				return err
			}
			src := v.ConfigFileUsed()
			if src == "" {
				src = "(defaults and environment only)"
			}
			if err := config.CheckConfigValidity(v); err != nil {
				return fmt.Errorf("config %s is invalid:\n%w", src, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Config OK: %s\n", src)
			return nil
		},
	}
}

func newConfigGeneratorCmd() *cobra.Command {
	var provider, model, baseURL, keyProvider string
	cmd := &cobra.Command{
		Use:   "generator",
		Short: "Set generator options in the config file",
		Long: `Writes the given [generator] keys into the config file, keeping
every other line as is. The file is created from defaults when missing.

Example:
  inkwell config generator --provider ollama --model llama3.1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			values := map[string]any{}
			if provider != "" {
				values["provider"] = strings.ToLower(provider)
			}
			if model != "" {
				values["model"] = model
			}
			if cmd.Flags().Changed("base-url") {
				values["base_url"] = baseURL
			}
			if keyProvider != "" {
				values["key_provider"] = keyProvider
			}
			if len(values) == 0 {
				return errors.New("nothing to set; pass --provider, --model, --base-url or --key-provider")
			}
			path := configPathFlag(cmd)
			if err := upsertConfigFile(path, "generator", values); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&provider, "provider", "", "gemini|ollama|file")
	cmd.Flags().StringVar(&model, "model", "", "model name")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "backend base URL (empty for the provider default)")
	cmd.Flags().StringVar(&keyProvider, "key-provider", "", "config|keyring")
	return cmd
}

// upsertConfigFile sets values inside [section] of the TOML file at path.
func upsertConfigFile(path, section string, values map[string]any) error {
	existing := config.RenderDefaultTOML()
	if data, err := os.ReadFile(path); err == nil {
		existing = string(data)
	} else if !os.IsNotExist(err) {
		return err
	}
	updated, err := config.UpsertSectionValues(existing, section, values)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(updated), 0o600)
}

func newConfigGenerateCmd() *cobra.Command {
	var out string
	var overwrite bool
	var update bool
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a default config.toml",
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				out = configPathFlag(cmd)
			}
			if overwrite && update {
				return fmt.Errorf("choose either --overwrite or --update")
			}
			return writeConfigFile(cmd, out, overwrite, update)
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "output path for config.toml")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "overwrite existing config (creates a backup)")
	cmd.Flags().BoolVar(&update, "update", false, "merge defaults into existing config (creates a backup)")
	return cmd
}

func writeConfigFile(cmd *cobra.Command, out string, overwrite, update bool) error {
	if err := os.MkdirAll(filepath.Dir(out), 0o700); err != nil {
		return err
	}

	exists := fileExists(out)
	if exists && !overwrite && !update {
		return fmt.Errorf("config already exists at %s; use --overwrite to replace (this will delete your current config) or --update to merge defaults", out)
	}

	content := ""
	if update && exists {
		data, err := os.ReadFile(out)
		if err != nil {
			return err
		}
		updated, changed := config.UpdateTOML(string(data))
		if !changed {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Config already up to date: %s\n", out)
			return nil
		}
		content = updated
	} else {
		content = config.RenderDefaultTOML()
	}

	var backupPath string
	if exists && (overwrite || update) {
		var err error
		backupPath, err = backupConfig(out)
		if err != nil {
			return err
		}
	}

	if err := os.WriteFile(out, []byte(content), 0o600); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", out)
	if backupPath != "" {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Backup: %s\n", backupPath)
	}
	return nil
}

func backupConfig(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	backup := path + ".bak"
	if fileExists(backup) {
		backup = fmt.Sprintf("%s.bak-%s", path, time.Now().Format("20060102-150405"))
	}
	if err := os.WriteFile(backup, data, 0o600); err != nil {
		return "", err
	}
	return backup, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

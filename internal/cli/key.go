package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mithrel/inkwell/internal/config"
	"github.com/mithrel/inkwell/internal/keys"
	"github.com/mithrel/inkwell/internal/wire"
)

func newKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage the generator API key",
	}
	cmd.AddCommand(newKeySetCmd())
	cmd.AddCommand(newKeyDeleteCmd())
	cmd.AddCommand(newKeyStatusCmd())
	return cmd
}

func providerArg(app *wire.App, args []string) string {
	if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
		return strings.ToLower(strings.TrimSpace(args[0]))
	}
	return app.Cfg.GetString("generator.provider")
}

func newKeySetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set [provider]",
		Short: "Store an API key (read from stdin without echo)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			provider := providerArg(app, args)
			key, err := readSecret(cmd, fmt.Sprintf("API key for %s: ", provider))
			if err != nil {
				return err
			}
			if key == "" {
				return errors.New("empty key")
			}
			if _, ok := app.Keys.(*keys.ConfigStore); ok {
				path, err := writeConfigKey(app, key)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Stored key in %s (generator.api_key)\n", path)
				return nil
			}
			if err := app.Keys.Put(provider, key); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stored key for %s in the system keyring\n", provider)
			return nil
		},
	}
	return cmd
}

func newKeyDeleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete [provider]",
		Short: "Remove a stored API key",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			provider := providerArg(app, args)
			if err := confirmDelete(cmd, fmt.Sprintf("Delete the %s API key?", provider), "Generation will fail until a new key is set.", yes); err != nil {
				return err
			}
			if _, ok := app.Keys.(*keys.ConfigStore); ok {
				path, err := writeConfigKey(app, "")
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared generator.api_key in %s\n", path)
				return nil
			}
			if err := app.Keys.Delete(provider); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted key for %s\n", provider)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func newKeyStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [provider]",
		Short: "Show which key would be used",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			provider := providerArg(app, args)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "provider: %s\n", provider)
			fmt.Fprintf(out, "key_provider: %s\n", app.Cfg.GetString("generator.key_provider"))
			key, err := app.Keys.Get(provider)
			switch {
			case errors.Is(err, keys.ErrKeyNotFound):
				fmt.Fprintln(out, "key: (missing)")
			case err != nil:
				return err
			default:
				fmt.Fprintf(out, "key: %s\n", keys.Mask(key))
			}
			if app.Cfg.GetString("generator.key_provider") == "keyring" {
				fmt.Fprintf(out, "keyring_available: %t\n", keys.KeyringAvailable())
			}
			return nil
		},
	}
}

// readSecret reads one line, without echo when stdin is a terminal.
func readSecret(cmd *cobra.Command, prompt string) (string, error) {
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), prompt)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// writeConfigKey sets generator.api_key in the active config file,
// creating it from defaults when missing.
func writeConfigKey(app *wire.App, key string) (string, error) {
	path := app.Cfg.ConfigFileUsed()
	if path == "" {
		path = config.DefaultConfigPath()
	}
	return path, upsertConfigFile(path, "generator", map[string]any{"api_key": key})
}

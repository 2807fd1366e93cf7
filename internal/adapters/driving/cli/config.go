package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/cloudstore/pagesmith/internal/core/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show and change configuration",
	Long: `Reads and writes the keys of config.toml. Values are checked against the
key's type before they are written; new values take effect on the next
command.`,
	Annotations: map[string]string{settingsOnly: "true"},
}

var configListCmd = &cobra.Command{
	Use:         "list",
	Short:       "List every key with its effective value",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{settingsOnly: "true"},
	RunE:        runConfigList,
}

var configGetCmd = &cobra.Command{
	Use:         "get <key>",
	Short:       "Print the effective value of a key",
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{settingsOnly: "true"},
	RunE:        runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Write a key to config.toml",
	Long: `Writes a key to config.toml. Lists are comma separated and durations use
Go syntax, for example:

  pagesmith config set pagination.txt_lines_per_page 40
  pagesmith config set ocr.languages eng,deu
  pagesmith config set conversion.timeout 90s`,
	Args:        cobra.ExactArgs(2),
	Annotations: map[string]string{settingsOnly: "true"},
	RunE:        runConfigSet,
}

var configPathCmd = &cobra.Command{
	Use:         "path",
	Short:       "Print the configuration file location",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{settingsOnly: "true"},
	RunE:        runConfigPath,
}

func init() {
	configCmd.AddCommand(configListCmd, configGetCmd, configSetCmd, configPathCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigList(cmd *cobra.Command, _ []string) error {
	if err := requireSettings(); err != nil {
		return err
	}
	for _, s := range settingsService.List() {
		cmd.Printf("%-36s %-10s %s\n", s.Key, dimColor(s.Type.String()), formatSettingValue(s))
	}
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	if err := requireSettings(); err != nil {
		return err
	}
	s, err := settingsService.Get(args[0])
	if err != nil {
		return err
	}
	cmd.Println(s.Value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if err := requireSettings(); err != nil {
		return err
	}
	if err := settingsService.Set(args[0], args[1]); err != nil {
		return err
	}
	s, err := settingsService.Get(args[0])
	if err != nil {
		return err
	}
	cmd.Printf("%s %s = %s\n", okColor("set"), s.Key, s.Value)
	return nil
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	if err := requireSettings(); err != nil {
		return err
	}
	cmd.Println(settingsService.Path())
	return nil
}

func formatSettingValue(s domain.Setting) string {
	value := s.Value
	if value == "" {
		value = dimColor("(unset)")
	}
	if !s.Explicit {
		value += " " + dimColor("(default)")
	}
	if len(s.Choices) > 0 {
		value += " " + dimColor("["+strings.Join(s.Choices, "|")+"]")
	}
	return value
}

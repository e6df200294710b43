package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Infineon/mtb-manifest-checker/pkg/ascii"
	"github.com/Infineon/mtb-manifest-checker/pkg/assetcache"
	"github.com/Infineon/mtb-manifest-checker/pkg/exitcode"
)

func newCacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect the persisted asset cache",
	}

	show := &cobra.Command{
		Use:           "show",
		Short:         "Print every asset id and its repository",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runCacheShow,
	}
	show.Flags().String("format", "text", "Output format (text|table|yaml|json)")

	path := &cobra.Command{
		Use:           "path",
		Short:         "Print the asset cache location",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return fatal(cmd.OutOrStdout(), exitcode.ConfigError, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), cfg.AssetCache)
			return nil
		},
	}

	cmd.AddCommand(show, path)
	return cmd
}

func runCacheShow(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	format, _ := cmd.Flags().GetString("format")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return fatal(out, exitcode.ConfigError, err)
	}
	cache := assetcache.New()
	if err := cache.Load(cfg.AssetCache); err != nil {
		return fatal(out, exitcode.ConfigError, err)
	}
	entries := cache.Entries()

	switch format {
	case "text":
		for _, e := range entries {
			fmt.Fprintf(out, "%s %s\n", e.ID, e.URI)
		}
	case "table":
		rows := [][]string{{"ID", "URI"}}
		for _, e := range entries {
			rows = append(rows, []string{e.ID, e.URI})
		}
		fmt.Fprint(out, ascii.Columns(rows, 2))
	case "yaml":
		data, err := yaml.Marshal(entries)
		if err != nil {
			return fatal(out, exitcode.ConfigError, err)
		}
		_, _ = out.Write(data)
	case "json":
		if entries == nil {
			entries = []assetcache.Entry{}
		}
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fatal(out, exitcode.ConfigError, err)
		}
		fmt.Fprintln(out, string(data))
	default:
		return fatal(out, exitcode.ConfigError, fmt.Errorf("unknown format %q (expected text, table, yaml or json)", format))
	}
	return nil
}

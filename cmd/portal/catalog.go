package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Kamel-system-sa/portal-poc-sub003/internal/allocation"
	"github.com/Kamel-system-sa/portal-poc-sub003/internal/catalog"
	"github.com/Kamel-system-sa/portal-poc-sub003/internal/server"
)

var (
	catalogFormat      string
	catalogDestination string
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "输出当前住宿目录",
	Args:  cobra.NoArgs,
	RunE:  runCatalog,
}

func init() {
	catalogCmd.Flags().StringVarP(&catalogFormat, "format", "f", "yaml", "输出格式: yaml/json")
	catalogCmd.Flags().StringVar(&catalogDestination, "destination", "", "只输出该目的地的住宿")
}

func runCatalog(cmd *cobra.Command, args []string) error {
	cat, err := server.LoadCatalog(cfg)
	if err != nil {
		return err
	}
	if catalogDestination != "" {
		cat = catalog.FromRecords(allocation.MatchDestination(catalogDestination, cat))
	}

	switch catalogFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(cat.Records())
	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		defer enc.Close()
		enc.SetIndent(2)
		return enc.Encode(cat.Split())
	default:
		return fmt.Errorf("unknown format: %s", catalogFormat)
	}
}

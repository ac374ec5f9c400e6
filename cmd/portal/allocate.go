package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/Kamel-system-sa/portal-poc-sub003/internal/importer"
	"github.com/Kamel-system-sa/portal-poc-sub003/internal/model"
	"github.com/Kamel-system-sa/portal-poc-sub003/internal/parser"
	"github.com/Kamel-system-sa/portal-poc-sub003/internal/server"
)

var (
	allocDestination     string
	allocDisableFallback bool
)

var allocateCmd = &cobra.Command{
	Use:   "allocate <file.xlsx>",
	Short: "离线解析 Excel 并输出分配结果 (JSON，不写库)",
	Args:  cobra.ExactArgs(1),
	RunE:  runAllocate,
}

func init() {
	allocateCmd.Flags().StringVar(&allocDestination, "destination", "", "行内无目的地时使用的默认目的地")
	allocateCmd.Flags().BoolVar(&allocDisableFallback, "no-fallback", false, "关闭按目的地平均分配")
}

type allocateOutput struct {
	Groups []*model.PilgrimGroup `json:"groups"`
	Report *parser.ImportReport  `json:"report"`
}

func runAllocate(cmd *cobra.Command, args []string) error {
	cat, err := server.LoadCatalog(cfg)
	if err != nil {
		return err
	}

	opts := importer.ImportOptions{
		FilePath:           args[0],
		DefaultDestination: cfg.Import.DefaultDestination,
		DisableFallback:    cfg.Import.DisableFallback || allocDisableFallback,
	}
	if allocDestination != "" {
		opts.DefaultDestination = allocDestination
	}

	groups, report, err := importer.PreviewFile(args[0], cat, opts)
	if err != nil {
		return err
	}
	if groups == nil {
		groups = []*model.PilgrimGroup{}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(allocateOutput{Groups: groups, Report: report})
}

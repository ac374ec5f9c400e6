package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Kamel-system-sa/portal-poc-sub003/internal/config"
	"github.com/Kamel-system-sa/portal-poc-sub003/internal/importer"
	"github.com/Kamel-system-sa/portal-poc-sub003/internal/parser"
	"github.com/Kamel-system-sa/portal-poc-sub003/internal/server"
	"github.com/Kamel-system-sa/portal-poc-sub003/internal/store"
)

var importClear bool

var importCmd = &cobra.Command{
	Use:   "import <file.xlsx>",
	Short: "将 Excel 团组导入数据库",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	importCmd.Flags().BoolVar(&importClear, "clear", false, "导入前清空现有团组")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	dir, err := config.EnsureDataDir(cfg)
	if err != nil {
		return fmt.Errorf("创建数据目录失败: %w", err)
	}

	st, err := store.New(filepath.Join(dir, server.DBFileName))
	if err != nil {
		return err
	}
	defer st.Close()

	if err := server.Bootstrap(st, cfg); err != nil {
		return err
	}

	ch := importer.NewCoordinator(st).Import(importer.ImportOptions{
		FilePath:           args[0],
		ClearExisting:      importClear || cfg.Import.ClearExisting,
		DefaultDestination: cfg.Import.DefaultDestination,
		DisableFallback:    cfg.Import.DisableFallback,
	})

	var importErr error
	for evt := range ch {
		switch evt.Type {
		case "error":
			importErr = errors.New(evt.Message)
		case "warning":
			zap.L().Warn(evt.Message)
		case "done":
			if report, ok := evt.Data.(*parser.ImportReport); ok {
				fmt.Fprintf(cmd.OutOrStdout(), "导入完成: %d 个 Sheet，%d 个团组 (%s)\n",
					report.ImportedSheets, report.ImportedRows, report.Duration)
			}
		default:
			zap.L().Debug(evt.Message)
		}
	}
	return importErr
}

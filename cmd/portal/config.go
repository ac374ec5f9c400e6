package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Kamel-system-sa/portal-poc-sub003/internal/config"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "配置文件管理",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "按当前生效配置生成 config.toml",
	Long: `将默认值、环境变量与命令行参数合并后的配置写入 --config 指定的路径
（默认: 可执行文件目录下 config.toml）。文件已存在时需要 --force。`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "覆盖已存在的配置文件")
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path, err := config.WriteNewConfig(cfg, configPath, configForce)
	if errors.Is(err, config.ErrConfigExists) {
		return fmt.Errorf("%s 已存在，使用 --force 覆盖", path)
	}
	if err != nil {
		return err
	}

	zap.L().Info("配置文件已生成", zap.String("path", path))
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}

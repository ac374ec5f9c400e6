package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Kamel-system-sa/portal-poc-sub003/internal/config"
)

var (
	configPath string
	dataDir    string
	verbose    bool

	cfg    *config.AppConfig
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "portal",
	Short: "朝觐团组住宿解析与分配",
	Long: `portal 导入团组 Excel，将自由文本住宿名解析为目录条目，
无明确住宿时按目的地平均分配，并提供团组确认与导出 API。`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, info, err := config.LoadConfigWithInfo(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "加载配置失败，使用默认配置: %v\n", err)
			loaded = config.DefaultConfig()
			info = config.LoadConfigInfo{}
		}
		if dataDir != "" {
			loaded.Data.DataDir = dataDir
		}
		cfg = loaded
		portSpecified = info.PortSpecified

		logger, err = newLogger(cfg.Log.Level, verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		zap.ReplaceGlobals(logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "配置文件路径 (默认: 可执行文件目录下 config.toml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "dataDir", "", "数据目录 (覆盖配置文件)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "输出 debug 日志")

	rootCmd.AddCommand(serveCmd, allocateCmd, catalogCmd)
}

func newLogger(level string, verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.Encoding = "console"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.OutputPaths = []string{"stderr"}

	lvl := zapcore.InfoLevel
	if level != "" {
		if err := lvl.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
	}
	if verbose {
		lvl = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

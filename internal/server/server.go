package server

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	v1 "github.com/Kamel-system-sa/portal-poc-sub003/internal/api/v1"
	"github.com/Kamel-system-sa/portal-poc-sub003/internal/catalog"
	"github.com/Kamel-system-sa/portal-poc-sub003/internal/config"
	"github.com/Kamel-system-sa/portal-poc-sub003/internal/importer"
	"github.com/Kamel-system-sa/portal-poc-sub003/internal/store"
)

// DBFileName 数据库文件名（位于数据目录下）
const DBFileName = "portal.db"

// Server HTTP服务器
type Server struct {
	router      *gin.Engine
	store       *store.Store
	coordinator *importer.Coordinator
	v1          *v1.Handler
	catalogFile string
}

// NewServer 创建服务器
func NewServer(cfg *config.AppConfig) (*Server, error) {
	if !cfg.Server.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化 SQLite Store
	dataDir, err := config.EnsureDataDir(cfg)
	if err != nil {
		dataDir = config.ResolveDataDir(cfg)
	}
	dbPath := filepath.Join(dataDir, DBFileName)

	sqliteStore, err := store.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := Bootstrap(sqliteStore, cfg); err != nil {
		sqliteStore.Close()
		return nil, err
	}

	v1Handler := v1.NewHandler(sqliteStore, importer.ImportOptions{
		ClearExisting:      cfg.Import.ClearExisting,
		DefaultDestination: cfg.Import.DefaultDestination,
		DisableFallback:    cfg.Import.DisableFallback,
	})

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	s := &Server{
		router:      router,
		store:       sqliteStore,
		coordinator: importer.NewCoordinator(sqliteStore),
		v1:          v1Handler,
		catalogFile: cfg.Data.CatalogFile,
	}

	s.setupRoutes()

	return s, nil
}

// Bootstrap 首次启动时写入住宿目录与朝觐季
//
// 目录表非空时不覆盖，避免冲掉已维护的数据。
func Bootstrap(st *store.Store, cfg *config.AppConfig) error {
	n, err := st.CountAccommodations()
	if err != nil {
		return err
	}
	if n == 0 {
		cat, err := LoadCatalog(cfg)
		if err != nil {
			return err
		}
		if err := st.ReplaceAccommodations(cat.Records()); err != nil {
			return err
		}
		zap.L().Info("住宿目录已初始化", zap.Int("records", cat.Len()))
	}

	if _, err := st.GetSeason(); err != nil && cfg.Data.Season > 0 {
		if err := st.SetSeason(cfg.Data.Season); err != nil {
			return err
		}
	}
	return nil
}

// LoadCatalog 按配置加载住宿目录：catalog_file 优先，否则使用内置目录
func LoadCatalog(cfg *config.AppConfig) (*catalog.Catalog, error) {
	if cfg.Data.CatalogFile != "" {
		return catalog.LoadFile(cfg.Data.CatalogFile)
	}
	return catalog.LoadSeed()
}

// ReloadCatalog 替换住宿目录并回填待确认团组的住宿 ID
func (s *Server) ReloadCatalog(cat *catalog.Catalog) (int, error) {
	if err := s.store.ReplaceAccommodations(cat.Records()); err != nil {
		return 0, err
	}
	repaired, err := s.coordinator.BackfillDraftAssignments()
	if err != nil {
		return 0, err
	}
	zap.L().Info("住宿目录已重新加载", zap.Int("records", cat.Len()), zap.Int("repaired", repaired))
	return repaired, nil
}

// WatchCatalog 监听 catalog_file，变化时调用 ReloadCatalog；未配置外部目录时直接返回
func (s *Server) WatchCatalog(ctx context.Context) error {
	if s.catalogFile == "" {
		return nil
	}
	w, err := catalog.NewWatcher(s.catalogFile, func(cat *catalog.Catalog) {
		if _, err := s.ReloadCatalog(cat); err != nil {
			zap.L().Error("重新加载住宿目录失败", zap.Error(err))
		}
	})
	if err != nil {
		return err
	}
	go w.Run(ctx)
	return nil
}

// setupRoutes 设置路由
func (s *Server) setupRoutes() {
	// CORS
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	api := s.router.Group("/api")
	{
		s.v1.RegisterRoutes(api)
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		zap.L().Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// Handler 返回 HTTP 处理器（用于 http.Server 与测试）
func (s *Server) Handler() *gin.Engine {
	return s.router
}

// Run 启动服务器
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// Close 关闭数据库
func (s *Server) Close() error {
	return s.store.Close()
}

// GetStore 获取存储（用于测试）
func (s *Server) GetStore() *store.Store {
	return s.store
}

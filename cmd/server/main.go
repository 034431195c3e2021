package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"AuctionSync/internal/api"
	"AuctionSync/internal/config"
	"AuctionSync/internal/database"
	"AuctionSync/internal/interfaces"
	"AuctionSync/internal/repository"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	// 1. 加载配置文件
	cfg, err := config.LoadConfig(os.Getenv("CONFIG_DIR"))
	if err != nil {
		log.Fatalf("加载配置文件失败: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("配置校验失败: %v", err)
	}

	// 2. 初始化日志
	logrusLogger := logrus.New()
	logrusLogger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if lvl, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		logrusLogger.SetLevel(lvl)
	}
	logrusLogger.WithField("apiKey", cfg.MaskedAPIKey()).Info("配置文件加载成功")

	// 3. 运行历史数据库（可选）
	var runs interfaces.RunRepository
	if cfg.Database.DSN != "" {
		db, err := database.Open(&cfg.Database, logrusLogger)
		if err != nil {
			logrusLogger.Fatalf("初始化数据库失败: %v", err)
		}
		runs = repository.NewRunRepository(db)
	} else {
		logrusLogger.Info("未配置 database.dsn，运行历史接口不可用")
	}

	// 4. 配置Gin运行模式（从配置读取：debug/release）
	gin.SetMode(cfg.Server.Mode)
	r := gin.Default()

	// 浏览器端跨域读取快照
	corsCfg := cors.DefaultConfig()
	if len(cfg.Server.CORSOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.Server.CORSOrigins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	r.Use(cors.New(corsCfg))

	// 注册ppof 方便调试和监测性能问题
	pprof.Register(r)
	logrusLogger.Infof("Gin运行模式: %s", cfg.Server.Mode)

	// 5. 注册路由
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	// 浏览器端直接读取的快照与元数据
	r.Static("/data", cfg.Output.Dir)

	syncHandler := api.NewSyncHandler(cfg, runs, logrusLogger)
	r.POST("/api/sync", syncHandler.TriggerSync)
	r.GET("/api/status", syncHandler.Status)

	runHandler := api.NewRunHandler(runs, logrusLogger)
	r.GET("/api/runs", runHandler.ListRuns)

	// 6. 启动服务（从配置读取端口）
	port := cfg.Server.Port
	logrusLogger.Infof("服务启动成功，端口：%d", port)
	if err := r.Run(fmt.Sprintf(":%d", port)); err != nil {
		logrusLogger.Fatalf("启动服务失败: %v", err)
	}
}

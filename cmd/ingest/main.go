package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"AuctionSync/internal/catalog"
	"AuctionSync/internal/config"
	"AuctionSync/internal/database"
	"AuctionSync/internal/interfaces"
	"AuctionSync/internal/repository"
	"AuctionSync/internal/service"

	"github.com/sirupsen/logrus"
)

// categoryFlags 可重复的 -category 参数
type categoryFlags []string

func (c *categoryFlags) String() string { return strings.Join(*c, ",") }

func (c *categoryFlags) Set(v string) error {
	*c = append(*c, v)
	return nil
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout))
}

// run 执行一次采集并返回进程退出码：0 正常结束，1 致命错误或配置错误，2 参数错误
func run(args []string, stdout io.Writer) (code int) {
	fs := flag.NewFlagSet("ingest", flag.ContinueOnError)
	fs.SetOutput(stdout)
	configDir := fs.String("config", "./config", "配置目录（包含 config.yaml）")
	var only categoryFlags
	fs.Var(&only, "category", "只采集指定分类，可重复")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	// 1. 初始化日志
	logger := logrus.New()
	logger.SetOutput(stdout)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logger.SetLevel(logrus.InfoLevel)

	defer func() {
		if p := recover(); p != nil {
			logger.WithField("panic", p).Error("未处理的异常，退出")
			code = 1
		}
	}()

	// 2. 加载并校验配置（缺少凭证时在任何网络调用之前退出）
	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		logger.WithError(err).Error("加载配置文件失败")
		return 1
	}
	if lvl, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		logger.SetLevel(lvl)
	} else {
		logger.WithField("level", cfg.Log.Level).Warn("日志级别无效，使用 info")
	}
	if err := cfg.Validate(); err != nil {
		if errors.Is(err, config.ErrMissingAPIKey) {
			logger.Error("未设置 NEXON_API_KEY，请在环境变量或 .env 中配置")
		} else {
			logger.WithError(err).Error("配置校验失败")
		}
		return 1
	}
	logger.WithFields(logrus.Fields{
		"apiKey":    cfg.MaskedAPIKey(),
		"baseURL":   cfg.API.BaseURL,
		"outputDir": cfg.Output.Dir,
		"minDelay":  cfg.Ingest.MinDelay,
	}).Info("配置文件加载成功")

	// 3. 选择分类
	ids := []string(only)
	if len(ids) == 0 {
		ids = cfg.Ingest.Categories
	}
	categories := catalog.All()
	if len(ids) > 0 {
		if categories, err = catalog.Select(ids); err != nil {
			logger.WithError(err).Error("分类参数无效")
			return 1
		}
	}

	// 4. 运行历史（可选）
	var runs interfaces.RunRepository
	if cfg.Database.DSN != "" {
		db, err := database.Open(&cfg.Database, logger)
		if err != nil {
			logger.WithError(err).Warn("数据库不可用，本次不记录运行历史")
		} else {
			runs = repository.NewRunRepository(db)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. 执行采集
	orchestrator, err := service.NewOrchestratorFromConfig(ctx, cfg, runs, logger)
	if err != nil {
		logger.WithError(err).Error("初始化采集流程失败")
		return 1
	}
	if _, err := orchestrator.Run(ctx, categories); err != nil {
		return 1
	}
	return 0
}

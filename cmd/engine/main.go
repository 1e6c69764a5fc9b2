package main

import (
	"flag"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/zeromicro/go-zero/core/conf"
	"github.com/zeromicro/go-zero/core/logx"
	zerosvc "github.com/zeromicro/go-zero/core/service"

	"memo-engine-sol/internal/config"
	"memo-engine-sol/internal/service"
	"memo-engine-sol/internal/svc"
	"memo-engine-sol/pkg/logger"
)

var configFile = flag.String("f", "etc/engine.yaml", "the config file")

func main() {
	defer func() {
		if r := recover(); r != nil {
			logx.Errorf("panic: %+v\nstack: %s", r, debug.Stack())
		}
	}()

	flag.Parse()

	var c config.Config
	conf.MustLoad(*configFile, &c)

	if err := logger.InitLogger(c.LogConf.ToLogOption()); err != nil {
		logx.Errorf("日志初始化失败: %v", err)
		os.Exit(1)
	}
	defer logger.Sync()

	serviceContext, err := svc.NewServiceContext(c)
	if err != nil {
		logger.Errorf("服务上下文初始化失败: %v", err)
		os.Exit(1)
	}
	defer serviceContext.Close()

	// 引擎本身按请求工作，常驻的只有燃烧事件推送
	if !c.FeedConf.Enabled {
		logger.Infof("burn_feed 未启用, 没有常驻服务, 进程退出")
		return
	}
	if serviceContext.Producer == nil {
		logger.Errorf("burn_feed 已启用但未配置 Kafka broker")
		os.Exit(1)
	}

	feed, err := service.NewBurnFeedService(service.BurnFeedOption{
		Engine:     serviceContext.Engine,
		Producer:   serviceContext.Producer,
		Topic:      c.KafkaProducerConf.Topics.Burn,
		Partitions: int32(c.KafkaProducerConf.Partitions.Burn),
		Address:    serviceContext.Programs.Burn.ToBase58(),
		Interval:   time.Duration(c.FeedConf.IntervalS) * time.Second,
		BatchLimit: c.FeedConf.BatchLimit,
	})
	if err != nil {
		logger.Errorf("燃烧事件推送服务初始化失败: %v", err)
		os.Exit(1)
	}

	sg := zerosvc.NewServiceGroup()
	sg.Add(feed)

	logger.Infof("memo engine 启动: network=%s", serviceContext.Engine.CurrentNetwork())

	go sg.Start()

	// 等待退出信号
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	logger.Infof("Shutting down services...")
	sg.Stop()
}

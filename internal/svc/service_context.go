package svc

import (
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"

	"memo-engine-sol/internal/cache"
	"memo-engine-sol/internal/config"
	"memo-engine-sol/internal/engine"
	"memo-engine-sol/internal/mq"
	"memo-engine-sol/internal/rpc"
	"memo-engine-sol/pkg/logger"
)

// ServiceContext 聚合引擎运行所需的全部资源，进程内只装配一份
type ServiceContext struct {
	Config   config.Config
	Client   *rpc.Client
	Engine   *engine.Engine
	Programs engine.Programs
	Profiles *cache.ProfileStore
	Producer *kafka.Producer // 未配置 broker 时为 nil
}

// NewServiceContext 按配置装配 RPC 客户端、程序地址、缓存与引擎
func NewServiceContext(c config.Config) (*ServiceContext, error) {
	networks, err := config.LoadNetworks(c.NetworkConf.RegistryFile)
	if err != nil {
		return nil, err
	}
	network, err := config.ResolveNetwork(networks, c.NetworkConf.Name)
	if err != nil {
		return nil, err
	}

	// 配置里的端点列表优先于注册表
	endpointConfs := network.Endpoints
	if len(c.NetworkConf.Endpoints) > 0 {
		endpointConfs = c.NetworkConf.Endpoints
	}
	endpoints := make([]rpc.Endpoint, 0, len(endpointConfs))
	for _, ep := range endpointConfs {
		endpoints = append(endpoints, rpc.Endpoint{URL: ep.Url, Weight: ep.Weight})
	}

	client, err := rpc.NewClient(network.Name, endpoints, c.NetworkConf.CustomEndpoint,
		time.Duration(c.NetworkConf.TimeoutMs)*time.Millisecond)
	if err != nil {
		return nil, err
	}

	programs, err := engine.ResolvePrograms(network.Programs)
	if err != nil {
		return nil, err
	}

	var producer *kafka.Producer
	if c.KafkaProducerConf.Brokers != "" {
		producer, err = mq.NewKafkaProducer(c.KafkaProducerConf)
		if err != nil {
			logger.Errorf("Kafka producer 初始化失败: %v", err)
			return nil, err
		}
	} else {
		logger.Infof("未配置 Kafka broker, 燃烧事件推送不可用")
	}

	profiles := cache.NewProfileStore(cache.ProfileStoreOption{
		Network:  network.Name,
		Addr:     c.RedisConf.Addr,
		Password: c.RedisConf.Password,
		DB:       c.RedisConf.DB,
		TTL:      time.Duration(c.RedisConf.TTLSeconds) * time.Second,
	})

	eng, err := engine.New(engine.Options{
		Client:   client,
		Programs: programs,
		Settings: engine.StaticSettings{
			Endpoint:           c.NetworkConf.CustomEndpoint,
			BufferPercent:      c.EngineConf.CuBufferPercent,
			PriceMicroLamports: c.EngineConf.CuPriceMicroLamports,
		},
		Profiles:         profiles,
		BulkConcurrency:  c.EngineConf.BulkConcurrency,
		HistoryPageLimit: c.EngineConf.HistoryPageLimit,
	})
	if err != nil {
		return nil, err
	}

	logger.Infof("服务上下文初始化完成: network=%s endpoints=%d", network.Name, len(client.Endpoints()))
	return &ServiceContext{
		Config:   c,
		Client:   client,
		Engine:   eng,
		Programs: programs,
		Profiles: profiles,
		Producer: producer,
	}, nil
}

// Close 释放服务上下文中的资源
func (ctx *ServiceContext) Close() {
	if ctx.Producer != nil {
		ctx.Producer.Close()
	}
	if ctx.Profiles != nil {
		if err := ctx.Profiles.Close(); err != nil {
			logger.Warnf("profile cache close: %v", err)
		}
	}
}

package config

import (
	"memo-engine-sol/pkg/logger"
)

type LogConfig struct {
	Format   string `yaml:"format"`   // 日志格式，支持 "console" 或 "json"
	LogDir   string `yaml:"log_dir"`  // 日志目录（可为相对路径或绝对路径）
	Level    string `yaml:"level"`    // 日志级别：debug / info / warn / error
	Compress bool   `yaml:"compress"` // 是否压缩旧日志文件
}

func (c *LogConfig) ToLogOption() logger.LogOption {
	return logger.LogOption{
		Format:   c.Format,
		LogDir:   c.LogDir,
		Level:    c.Level,
		Compress: c.Compress,
	}
}

// EndpointConfig 表示单个 RPC 端点及其选路权重
type EndpointConfig struct {
	Url    string `yaml:"url"`    // 端点地址，例如 https://rpc.testnet.x1.xyz
	Weight int    `yaml:"weight"` // 加权随机的权重，<=0 视为 1
}

// NetworkConfig 表示网络与 RPC 选路配置
type NetworkConfig struct {
	Name           string           `yaml:"name"`            // 网络名：testnet / prod-staging / mainnet
	CustomEndpoint string           `yaml:"custom_endpoint"` // 自定义端点，非空时优先于内置列表
	TimeoutMs      int              `yaml:"timeout_ms"`      // 单次 RPC 请求超时（毫秒）
	Endpoints      []EndpointConfig `yaml:"endpoints"`       // 覆盖内置端点列表（可选）
	RegistryFile   string           `yaml:"registry_file"`   // 网络注册表覆盖文件路径（可选）
}

// EngineConfig 表示交易构建引擎配置
type EngineConfig struct {
	CuPriceMicroLamports uint64 `yaml:"cu_price_micro_lamports"` // 计算单元单价（microLamports），0 表示不附加价格指令
	CuBufferPercent      uint   `yaml:"cu_buffer_percent"`       // 模拟用量放大百分比，0 表示用各业务域默认系数
	HistoryPageLimit     int    `yaml:"history_page_limit"`      // memo 历史单页条数上限
	BulkConcurrency      int    `yaml:"bulk_concurrency"`        // 批量读账户时的最大并发
}

// RedisConfig 表示 profile 缓存的 Redis 层配置
type RedisConfig struct {
	Addr       string `yaml:"addr"`        // Redis 地址，留空则纯内存缓存
	Password   string `yaml:"password"`    // 密码，可为空
	DB         int    `yaml:"db"`          // 库编号
	TTLSeconds int    `yaml:"ttl_seconds"` // 缓存过期时间（秒）
}

// KafkaProducerConfig 表示 Kafka 生产者相关配置
type KafkaProducerConfig struct {
	Brokers   string `yaml:"brokers"`    // Kafka broker 地址，多个用英文逗号分隔
	BatchSize int    `yaml:"batch_size"` // 批处理大小（单位字节）
	LingerMs  int    `yaml:"linger_ms"`  // 批处理最大延迟（毫秒）

	Topics struct {
		Burn string `yaml:"burn"` // 燃烧事件的 Kafka topic
	} `yaml:"topics"`

	Partitions struct {
		Burn int `yaml:"burn"` // burn topic 的分区数
	} `yaml:"partitions"`
}

// FeedConfig 表示燃烧事件推送服务配置
type FeedConfig struct {
	Enabled    bool `yaml:"enabled"`     // 是否启动推送服务
	IntervalS  int  `yaml:"interval_s"`  // 轮询间隔（秒）
	BatchLimit int  `yaml:"batch_limit"` // 单轮最多拉取的签名数
}

// Config 是主配置结构体，用于驱动 memo 引擎服务
type Config struct {
	LogConf           LogConfig           `yaml:"logger"`         // 日志配置
	NetworkConf       NetworkConfig       `yaml:"network"`        // 网络与选路配置
	EngineConf        EngineConfig        `yaml:"engine"`         // 引擎配置
	RedisConf         RedisConfig         `yaml:"redis"`          // profile 缓存配置
	KafkaProducerConf KafkaProducerConfig `yaml:"kafka_producer"` // Kafka 生产者配置
	FeedConf          FeedConfig          `yaml:"burn_feed"`      // 燃烧事件推送配置
}

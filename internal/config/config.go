package config

import (
	"time"

	pkgconfig "github.com/arijitchhatui/swiftsend-service/pkg/config"
	pkglog "github.com/arijitchhatui/swiftsend-service/pkg/log"
)

type Config struct {
	Server        ServerConfig
	Mongo         MongoConfig
	Redis         RedisConfig
	Elasticsearch ElasticsearchConfig
	Auth          AuthConfig
	Cache         CacheConfig
	Presence      PresenceConfig
	Reconciler    ReconcilerConfig
	Log           pkglog.Config
}

type ServerConfig struct {
	Host string
	Port int
}

type MongoConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

type ElasticsearchConfig struct {
	Addresses    []string
	ProfileIndex string `mapstructure:"profile_index"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string
}

type CacheConfig struct {
	Prefix string        `mapstructure:"prefix"`
	TTL    time.Duration `mapstructure:"ttl"`
}

type PresenceConfig struct {
	TTL           time.Duration `mapstructure:"ttl"`
	PingInterval  time.Duration `mapstructure:"ping_interval"`
	PongWait      time.Duration `mapstructure:"pong_wait"`
	WriteWait     time.Duration `mapstructure:"write_wait"`
	PubSubChannel string        `mapstructure:"pub_sub_channel"`
}

type ReconcilerConfig struct {
	Enabled  bool
	Interval time.Duration
}

func Load() (*Config, error) {
	v, err := pkgconfig.Load("./config", "config")
	if err != nil {
		return nil, err
	}

	// Set defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "swiftsend")
	v.SetDefault("mongo.timeout", "10s")
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("elasticsearch.addresses", []string{"http://localhost:9200"})
	v.SetDefault("elasticsearch.profile_index", "profiles")
	v.SetDefault("auth.jwt_secret", "dev-secret")
	v.SetDefault("auth.issuer", "swiftsend")
	v.SetDefault("cache.prefix", "profile")
	v.SetDefault("cache.ttl", "30s")
	v.SetDefault("presence.ttl", "90s")
	v.SetDefault("presence.ping_interval", "30s")
	v.SetDefault("presence.pong_wait", "60s")
	v.SetDefault("presence.write_wait", "10s")
	v.SetDefault("presence.pub_sub_channel", "presence:events")
	v.SetDefault("reconciler.enabled", true)
	v.SetDefault("reconciler.interval", "60s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("log.service_name", "swiftsend")

	// Bind environment variables
	v.BindEnv("server.port", "PORT")
	v.BindEnv("mongo.uri", "MONGO_URI")
	v.BindEnv("mongo.database", "MONGO_DATABASE")
	v.BindEnv("redis.address", "REDIS_ADDRESS")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("elasticsearch.addresses", "ELASTICSEARCH_ADDRESSES")
	v.BindEnv("elasticsearch.profile_index", "ELASTICSEARCH_PROFILE_INDEX")
	v.BindEnv("auth.jwt_secret", "JWT_SECRET")
	v.BindEnv("auth.issuer", "JWT_ISSUER")
	v.BindEnv("reconciler.enabled", "RECONCILER_ENABLED")
	v.BindEnv("reconciler.interval", "RECONCILER_INTERVAL")
	v.BindEnv("log.level", "LOG_LEVEL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

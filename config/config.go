// server/config/config.go
package config

import (
	"errors"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// --- Sub-structs, mirroring the layout of config.yaml ---

type ServerConfig struct {
	Port        string `mapstructure:"port"`
	ServiceName string `mapstructure:"serviceName"`
}

type RedisConfig struct {
	URL      string        `mapstructure:"url"`
	Host     string        `mapstructure:"host"`
	Port     string        `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type RabbitMQConfig struct {
	Host    string        `mapstructure:"host"`
	Port    int           `mapstructure:"port"`
	User    string        `mapstructure:"user"`
	Pass    string        `mapstructure:"pass"`
	VHost   string        `mapstructure:"vhost"`
	Queue   string        `mapstructure:"queue"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// CacheConfig holds the expiration of the two kinds of entries the logistics API writes.
type CacheConfig struct {
	EquipmentsTTL time.Duration `mapstructure:"equipmentsTTL"`
	DispatchTTL   time.Duration `mapstructure:"dispatchTTL"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type SensorsConfig struct {
	Port           string        `mapstructure:"port"`
	EventsURL      string        `mapstructure:"eventsURL"`
	CacheTTL       time.Duration `mapstructure:"cacheTTL"`
	ForwardTimeout time.Duration `mapstructure:"forwardTimeout"`
}

// --- Main Config struct ---

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Redis    RedisConfig    `mapstructure:"redis"`
	RabbitMQ RabbitMQConfig `mapstructure:"rabbitmq"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Log      LogConfig      `mapstructure:"log"`
	Sensors  SensorsConfig  `mapstructure:"sensors"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.serviceName", "logistics-api")

	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.timeout", 5*time.Second)

	v.SetDefault("rabbitmq.host", "localhost")
	v.SetDefault("rabbitmq.port", 5672)
	v.SetDefault("rabbitmq.user", "admin")
	v.SetDefault("rabbitmq.pass", "admin123")
	v.SetDefault("rabbitmq.vhost", "/")
	v.SetDefault("rabbitmq.queue", "logistics_queue")
	v.SetDefault("rabbitmq.timeout", 5*time.Second)

	v.SetDefault("cache.equipmentsTTL", 600*time.Second)
	v.SetDefault("cache.dispatchTTL", 3600*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("sensors.port", "3000")
	v.SetDefault("sensors.eventsURL", "http://localhost:5000")
	v.SetDefault("sensors.cacheTTL", 30*time.Second)
	v.SetDefault("sensors.forwardTimeout", 5*time.Second)
}

func bindEnv(v *viper.Viper) {
	// Names follow the variables the docker-compose setup already exports.
	v.BindEnv("server.port", "SERVER_PORT")
	v.BindEnv("server.serviceName", "SERVICE_NAME")
	v.BindEnv("redis.url", "REDIS_URL")
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("redis.db", "REDIS_DB")
	v.BindEnv("rabbitmq.host", "RABBITMQ_HOST")
	v.BindEnv("rabbitmq.port", "RABBITMQ_PORT")
	v.BindEnv("rabbitmq.user", "RABBITMQ_USER")
	v.BindEnv("rabbitmq.pass", "RABBITMQ_PASS")
	v.BindEnv("rabbitmq.vhost", "RABBITMQ_VHOST")
	v.BindEnv("rabbitmq.queue", "RABBITMQ_QUEUE")
	v.BindEnv("log.level", "LOG_LEVEL")
	v.BindEnv("log.format", "LOG_FORMAT")
	v.BindEnv("sensors.port", "SENSORS_PORT")
	v.BindEnv("sensors.eventsURL", "EVENTS_API_URL", "PYTHON_API_URL")
}

// LoadConfig reads config.yaml from path and overrides it with environment variables.
// A .env file in the same directory, if present, is loaded into the environment first.
func LoadConfig(path string) (config Config, err error) {
	if err = godotenv.Load(filepath.Join(path, ".env")); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return
		}
		err = nil
	}

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	setDefaults(v)
	bindEnv(v)

	// Without a config.yaml viper falls back to defaults and the environment.
	err = v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return
		}
		err = nil
	}

	err = v.Unmarshal(&config)
	return
}

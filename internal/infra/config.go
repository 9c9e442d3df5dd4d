package infra

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config — корневая структура конфигурации всех трёх сервисов мониторинга.
// Каждый бинарник читает только свои секции, но файл конфигурации общий.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Agent     AgentConfig     `mapstructure:"agent"`
	Dashboard DashboardConfig `mapstructure:"dashboard"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Logger    LoggerConfig    `mapstructure:"logger"`
}

// ServerConfig описывает настройки HTTP-сервера коллектора.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	OpsPort      int           `mapstructure:"ops_port"` // promhttp, отдельно от доменного /metrics/
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`

	// Настройки буфера пакетной записи метрик
	IngestBufferSize    int           `mapstructure:"ingest_buffer_size"`
	IngestBatchSize     int           `mapstructure:"ingest_batch_size"`
	IngestFlushInterval time.Duration `mapstructure:"ingest_flush_interval"`

	// Ограничение входящего потока метрик (запросов в секунду и burst)
	IngestRateLimit float64 `mapstructure:"ingest_rate_limit"`
	IngestRateBurst int     `mapstructure:"ingest_rate_burst"`
}

// DatabaseConfig описывает подключение к PostgreSQL.
type DatabaseConfig struct {
	URL      string `mapstructure:"url"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
}

// RedisConfig описывает подключение к Redis (сигналы обновления данных).
// Пустой Addr означает, что Redis не используется — сервисы работают без него.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// AgentConfig — настройки продюсер-сайдкара, принимающего события от плагина.
type AgentConfig struct {
	ListenAddr  string        `mapstructure:"listen_addr"`
	OpsPort     int           `mapstructure:"ops_port"`
	BackendURL  string        `mapstructure:"backend_url"` // адрес коллектора
	SendTimeout time.Duration `mapstructure:"send_timeout"`
}

// DashboardConfig — настройки консьюмер-сервиса агрегации.
type DashboardConfig struct {
	ListenAddr   string        `mapstructure:"listen_addr"`
	BackendURL   string        `mapstructure:"backend_url"`
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`

	// Учётные записи просмотра: логин -> bcrypt-хэш пароля.
	// Открытые пароли в конфиге не допускаются.
	Viewers map[string]string `mapstructure:"viewers"`
}

// AuthConfig содержит пути к RSA ключам и настройки JWT дашборда.
type AuthConfig struct {
	PublicKeyPath  string        `mapstructure:"public_key_path"`
	PrivateKeyPath string        `mapstructure:"private_key_path"`
	TokenTTL       time.Duration `mapstructure:"token_ttl"`
	PublicKey      []byte
	PrivateKey     []byte
}

// LoggerConfig настраивает поведение zap логгера.
type LoggerConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
}

// LoadConfig инициализирует конфигурацию, объединяя значения из файла и ENV.
func LoadConfig() (*Config, error) {
	v := viper.New()

	// 1. Настройка поиска файла
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")

	// 2. Переменные окружения перекрывают файл: SERVER_PORT=9000 -> server.port
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 3. Дефолтные значения
	setDefaults(v)

	// 4. Чтение файла
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Если файла нет — работаем на ENV и дефолтах
	}

	// 5. Маппинг в структуру
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	// 6. Ключи подписи JWT: либо PEM напрямую в ENV (Docker/K8s), либо файл по пути
	cfg.Auth.PublicKey = loadKeyResource(cfg.Auth.PublicKeyPath, "AUTH_PUBLIC_KEY_DATA")
	cfg.Auth.PrivateKey = loadKeyResource(cfg.Auth.PrivateKeyPath, "AUTH_PRIVATE_KEY_DATA")

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Пустые дефолты не просто заглушки: AutomaticEnv доносит значение до
	// Unmarshal только для ключей, известных viper. Без регистрации ключа
	// DATABASE_URL и прочие ENV-переменные молча теряются при отсутствии файла.
	v.SetDefault("server.host", "")
	v.SetDefault("database.url", "")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("agent.backend_url", "")
	v.SetDefault("dashboard.backend_url", "")
	v.SetDefault("auth.public_key_path", "")
	v.SetDefault("auth.private_key_path", "")

	v.SetDefault("server.port", 8000)
	v.SetDefault("server.ops_port", 9090)
	v.SetDefault("server.read_timeout", 5*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.ingest_buffer_size", 10000)
	v.SetDefault("server.ingest_batch_size", 100)
	v.SetDefault("server.ingest_flush_interval", 500*time.Millisecond)
	v.SetDefault("server.ingest_rate_limit", 100)
	v.SetDefault("server.ingest_rate_burst", 20)
	v.SetDefault("database.max_conns", 15)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("agent.listen_addr", "127.0.0.1:7077")
	v.SetDefault("agent.ops_port", 9091)
	v.SetDefault("agent.send_timeout", 5*time.Second)
	v.SetDefault("dashboard.listen_addr", ":8080")
	v.SetDefault("dashboard.fetch_timeout", 10*time.Second)
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
}

// loadKeyResource — универсальный хелпер: ключ из ENV имеет приоритет над файлом
func loadKeyResource(path string, envDataKey string) []byte {
	if data := os.Getenv(envDataKey); data != "" {
		return []byte(data)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			return data
		}
	}
	return nil
}

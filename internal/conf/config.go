package conf

import (
	"errors"
	"fmt"
	"time"

	"github.com/lk2023060901/filevault/internal/pkg/database"
	"github.com/lk2023060901/filevault/internal/pkg/logger"
	"github.com/spf13/viper"
)

// Config is the root configuration, constructed once at process start and
// passed explicitly to every component that needs it.
type Config struct {
	Server   ServerConfig    `mapstructure:"server"`
	Database database.Config `mapstructure:"database"`
	MinIO    MinIOConfig     `mapstructure:"minio"`
	Upload   UploadConfig    `mapstructure:"upload"`
	Log      logger.Config   `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type MinIOConfig struct {
	Endpoint      string        `mapstructure:"endpoint"`
	AccessKey     string        `mapstructure:"access_key"`
	SecretKey     string        `mapstructure:"secret_key"`
	UseSSL        bool          `mapstructure:"use_ssl"`
	Bucket        string        `mapstructure:"bucket"`
	PresignExpiry time.Duration `mapstructure:"presign_expiry"`
}

// UploadConfig bounds the two upload paths. The ceilings are total batch
// sizes enforced by the client before transfer; the multipart memory limit
// caps what the proxy endpoint parses into memory per request.
type UploadConfig struct {
	MaxProxySizeMB     int64 `mapstructure:"max_proxy_size_mb"`
	MaxPresignedSizeMB int64 `mapstructure:"max_presigned_size_mb"`
	MultipartMemoryMB  int64 `mapstructure:"multipart_memory_mb"`
}

// LoadConfig reads the configuration file, applies environment overrides and
// validates the result. A missing required value is a startup-time failure.
func LoadConfig(path string) (*Config, error) {
	viper.SetConfigFile(path)
	viper.SetEnvPrefix("FILEVAULT")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.setDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

func (c *Config) setDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.MinIO.PresignExpiry == 0 {
		c.MinIO.PresignExpiry = time.Hour
	}
	if c.Upload.MaxProxySizeMB == 0 {
		c.Upload.MaxProxySizeMB = 4
	}
	if c.Upload.MaxPresignedSizeMB == 0 {
		c.Upload.MaxPresignedSizeMB = 100
	}
	if c.Upload.MultipartMemoryMB == 0 {
		c.Upload.MultipartMemoryMB = 32
	}
	if c.Log.Level == "" {
		c.Log = *logger.DefaultConfig()
	}
}

// Validate fails fast on any missing required value instead of failing
// lazily on first use.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return errors.New("server port must be between 1 and 65535")
	}

	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if c.MinIO.Endpoint == "" {
		return errors.New("minio endpoint is required")
	}
	if c.MinIO.AccessKey == "" {
		return errors.New("minio access key is required")
	}
	if c.MinIO.SecretKey == "" {
		return errors.New("minio secret key is required")
	}
	if c.MinIO.Bucket == "" {
		return errors.New("minio bucket is required")
	}
	if c.MinIO.PresignExpiry <= 0 {
		return errors.New("minio presign expiry must be greater than 0")
	}

	if c.Upload.MaxProxySizeMB <= 0 {
		return errors.New("upload max proxy size must be greater than 0")
	}
	if c.Upload.MaxPresignedSizeMB <= 0 {
		return errors.New("upload max presigned size must be greater than 0")
	}
	if c.Upload.MultipartMemoryMB <= 0 {
		return errors.New("upload multipart memory must be greater than 0")
	}

	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}

	return nil
}

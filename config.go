package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config defines the structure of the configuration file.
type Config struct {
	GitCommit               string        `yaml:"git_commit" envconfig:"BRS_GIT_COMMIT"`
	GitTag                  string        `yaml:"git_tag" envconfig:"BRS_GIT_TAG"`
	BuildTime               string        `yaml:"build_time" envconfig:"BRS_BUILD_TIME"`
	IsProduction            bool          `yaml:"is_production" envconfig:"BRS_IS_PRODUCTION"`
	LogLevel                zapcore.Level `yaml:"-" envconfig:"BRS_LOG_LEVEL"`
	LogFolder               string        `yaml:"log_folder" envconfig:"BRS_LOG_FOLDER"`
	LogMaxSize              int           `yaml:"log_max_size" envconfig:"BRS_LOG_MAX_SIZE"`
	OpsEndpointsEnable      bool          `yaml:"ops_endpoints_enable" envconfig:"BRS_OPS_ENDPOINTS_ENABLE"`
	ProfilerEndpointsEnable bool          `yaml:"profiler_endpoints_enable" envconfig:"BRS_PROFILER_ENDPOINTS_ENABLE"`
	Server                  ServerConfig  `yaml:"server"`
	Redis                   RedisConfig   `yaml:"redis"`
	BoltDB                  BoltDBConfig  `yaml:"boltdb"`
}

type ServerConfig struct {
	Host                    string        `yaml:"host" envconfig:"BRS_SERVER_HOST"`
	Port                    string        `yaml:"port" envconfig:"BRS_SERVER_PORT"`
	ReadTimeout             time.Duration `yaml:"-" envconfig:"BRS_SERVER_READ_TIMEOUT"`
	WriteTimeout            time.Duration `yaml:"-" envconfig:"BRS_SERVER_WRITE_TIMEOUT"`
	RequestTimeout          time.Duration `yaml:"-" envconfig:"BRS_SERVER_REQUEST_TIMEOUT"` // Time to wait for a request to finish
	LongRequestWriteTimeout time.Duration `yaml:"-" envconfig:"BRS_SERVER_LONG_REQUEST_WRITE_TIMEOUT"`
	ShutdownTimeout         time.Duration `yaml:"-" envconfig:"BRS_SERVER_SHUTDOWN_TIMEOUT"`
}

type RedisConfig struct {
	Host          string        `yaml:"host" envconfig:"BRS_REDIS_HOST"`
	Port          string        `yaml:"port" envconfig:"BRS_REDIS_PORT"`
	DialTimeout   time.Duration `yaml:"-" envconfig:"BRS_REDIS_DIAL_TIMEOUT"`
	ReadTimeout   time.Duration `yaml:"-" envconfig:"BRS_REDIS_READ_TIMEOUT"`
	WriteTimeout  time.Duration `yaml:"-" envconfig:"BRS_REDIS_WRITE_TIMEOUT"`
	PoolSize      int           `yaml:"pool_size" envconfig:"BRS_REDIS_POOL_SIZE"`
	PoolTimeout   time.Duration `yaml:"-" envconfig:"BRS_REDIS_POOL_TIMEOUT"`
	Username      string        `yaml:"username" envconfig:"BRS_REDIS_USERNAME"`
	Password      string        `yaml:"password" envconfig:"BRS_REDIS_PASSWORD"`
	DatabaseIndex int           `yaml:"db_index" envconfig:"BRS_REDIS_DATABASE_INDEX"`
}

type BoltDBConfig struct {
	FilePath   string        `yaml:"filepath" envconfig:"BRS_BOLTDB_FILE_PATH"`
	Timeout    time.Duration `yaml:"-" envconfig:"BRS_BOLTDB_TIMEOUT"`
	BucketName string        `yaml:"bucket_name" envconfig:"BRS_BOLTDB_BUCKET_NAME"`
}

// LoadConfigFile provides an instance of config structure for the all application.
func LoadConfigFile(configFile string) (*Config, error) {
	file, err := os.Open(configFile)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	cfg := &Config{}
	yd := yaml.NewDecoder(file)
	err = yd.Decode(cfg)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfigEnvs reads the environments variables and provides an instance of the App config.
func LoadConfigEnvs(prefix string, config *Config) error {
	return envconfig.Process(prefix, config)
}

// InitConfig sets defaults values for non provided parameters
// and configures build tags values to be used if provided.
func InitConfig(config *Config, gitCommit, gitTag, buildTime string) error {
	if len(gitCommit) != 0 {
		config.GitCommit = gitCommit
	}

	if len(gitTag) != 0 {
		config.GitTag = gitTag
	}

	if len(buildTime) != 0 {
		config.BuildTime = buildTime
	}

	if len(config.Server.Host) == 0 || len(config.Server.Port) == 0 {
		return errors.New("make sure to set valid server address and port in configuration file")
	}

	if len(config.Redis.Host) == 0 || len(config.Redis.Port) == 0 {
		return errors.New("make sure to set valid redis address and port in configuration file")
	}

	if config.LogMaxSize <= 0 {
		config.LogMaxSize = 10
	}

	setDurationDefault(&config.Server.ReadTimeout, 5*time.Second)
	setDurationDefault(&config.Server.WriteTimeout, 10*time.Second)
	setDurationDefault(&config.Server.RequestTimeout, 30*time.Second)
	setDurationDefault(&config.Server.LongRequestWriteTimeout, 60*time.Second)
	setDurationDefault(&config.Server.ShutdownTimeout, 10*time.Second)
	setDurationDefault(&config.Redis.DialTimeout, 5*time.Second)
	setDurationDefault(&config.Redis.ReadTimeout, 3*time.Second)
	setDurationDefault(&config.Redis.WriteTimeout, 3*time.Second)
	setDurationDefault(&config.Redis.PoolTimeout, 4*time.Second)
	setDurationDefault(&config.BoltDB.Timeout, 5*time.Second)

	if len(config.BoltDB.FilePath) == 0 {
		config.BoltDB.FilePath = "books.mirror.db"
	}

	if len(config.BoltDB.BucketName) == 0 {
		config.BoltDB.BucketName = "books"
	}

	return nil
}

func setDurationDefault(d *time.Duration, fallback time.Duration) {
	if *d == 0 {
		*d = fallback
	}
}

// LoadAndInitConfigs loads in order the configs from various predefined sources
// then build the App configuration data. The optional config.env file feeds the
// process environment before the BRS-prefixed variables override file values.
func LoadAndInitConfigs(gitCommit, gitTag, buildTime string) (*Config, error) {
	config, err := LoadConfigFile("./config.yml")
	if err != nil {
		return config, fmt.Errorf("failed to load configurations from file: %s", err)
	}

	if _, serr := os.Stat("./config.env"); serr == nil {
		if err = godotenv.Load("./config.env"); err != nil {
			return config, fmt.Errorf("failed to set environment configurations: %s", err)
		}
	}

	err = LoadConfigEnvs("BRS", config)
	if err != nil {
		return config, fmt.Errorf("failed to load configurations from environment: %s", err)
	}

	err = InitConfig(config, gitCommit, gitTag, buildTime)
	if err != nil {
		return config, fmt.Errorf("failed to initialize configurations: %s", err)
	}
	return config, nil
}

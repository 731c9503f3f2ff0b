package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// 数据后端
const (
	BackendMongo  = "mongo"
	BackendMemory = "memory"
)

// Config 应用配置
type Config struct {
	Port        int          `yaml:"port"`
	Mode        string       `yaml:"mode"` // gin 模式: debug / release / test
	LogLevel    string       `yaml:"log_level"`
	MongoURI    string       `yaml:"mongo_uri"`
	MongoDB     string       `yaml:"mongo_db"`
	DataBackend string       `yaml:"data_backend"`
	SeedFile    string       `yaml:"seed_file"` // memory 后端的初始数据（JSON）
	CORSOrigins []string     `yaml:"cors_origins"`
	Report      ReportConfig `yaml:"report"`
}

// ReportConfig 报表默认参数
type ReportConfig struct {
	TopNOther    int           `yaml:"top_n_other"`
	WindowWeeks  int           `yaml:"window_weeks"`
	QueryTimeout time.Duration `yaml:"query_timeout"`
}

// Debug 是否为调试模式
func (c *Config) Debug() bool {
	return c.Mode == "debug"
}

// LoadConfig 加载配置：YAML 文件（可选）→ 默认值 → 环境变量
func LoadConfig() (*Config, error) {
	return LoadFromFile(getEnv("CONFIG_PATH", "config.yaml"))
}

// LoadFromFile 从指定 YAML 文件加载配置，文件不存在时只使用默认值和环境变量
func LoadFromFile(path string) (*Config, error) {
	// 尝试加载 .env 文件（如果存在）
	_ = godotenv.Load()

	var cfg Config
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("解析配置文件失败: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	applyDefaults(&cfg)
	applyEnv(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.Mode == "" {
		cfg.Mode = "debug"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.MongoURI == "" {
		cfg.MongoURI = "mongodb://127.0.0.1:27017"
	}
	if cfg.MongoDB == "" {
		cfg.MongoDB = "crm"
	}
	if cfg.DataBackend == "" {
		cfg.DataBackend = BackendMongo
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"http://localhost:3001", "http://localhost:5173"}
	}
	if cfg.Report.TopNOther == 0 {
		cfg.Report.TopNOther = 5
	}
	if cfg.Report.WindowWeeks == 0 {
		cfg.Report.WindowWeeks = 8
	}
	if cfg.Report.QueryTimeout == 0 {
		cfg.Report.QueryTimeout = 10 * time.Second
	}
}

func applyEnv(cfg *Config) {
	if v := getEnvInt("PORT", 0); v != 0 {
		cfg.Port = v
	}
	if v := os.Getenv("GIN_MODE"); v != "" {
		cfg.Mode = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("MONGO_URI"); v != "" {
		cfg.MongoURI = v
	}
	if v := os.Getenv("MONGO_DB"); v != "" {
		cfg.MongoDB = v
	}
	if v := os.Getenv("DATA_BACKEND"); v != "" {
		cfg.DataBackend = v
	}
	if v := os.Getenv("MEMORY_SEED_FILE"); v != "" {
		cfg.SeedFile = v
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.CORSOrigins = origins
	}
	if v := getEnvInt("REPORT_TOP_N_OTHER", 0); v != 0 {
		cfg.Report.TopNOther = v
	}
	if v := getEnvInt("REPORT_WINDOW_WEEKS", 0); v != 0 {
		cfg.Report.WindowWeeks = v
	}
	if v := os.Getenv("REPORT_QUERY_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Report.QueryTimeout = d
		}
	}
}

// Validate 校验配置，汇总所有问题后一并返回
func (c *Config) Validate() error {
	var problems []string

	if c.Port < 1 || c.Port > 65535 {
		problems = append(problems, fmt.Sprintf("端口 %d 无效，必须在 1-65535 之间", c.Port))
	}
	switch c.Mode {
	case "debug", "release", "test":
	default:
		problems = append(problems, fmt.Sprintf("无效的运行模式 %q", c.Mode))
	}
	switch c.DataBackend {
	case BackendMongo:
		if c.MongoURI == "" || c.MongoDB == "" {
			problems = append(problems, "使用 mongo 后端时必须配置 MONGO_URI 和 MONGO_DB")
		}
	case BackendMemory:
	default:
		problems = append(problems, fmt.Sprintf("无效的数据后端 %q，可选值: mongo, memory", c.DataBackend))
	}
	if c.Report.TopNOther < 1 {
		problems = append(problems, fmt.Sprintf("top_n_other 必须大于0，当前为 %d", c.Report.TopNOther))
	}
	if c.Report.WindowWeeks < 1 || c.Report.WindowWeeks > 104 {
		problems = append(problems, fmt.Sprintf("window_weeks 必须在 1-104 之间，当前为 %d", c.Report.WindowWeeks))
	}
	if c.Report.QueryTimeout < time.Second {
		problems = append(problems, fmt.Sprintf("query_timeout 不能小于1秒，当前为 %v", c.Report.QueryTimeout))
	}

	if len(problems) > 0 {
		return fmt.Errorf("配置校验失败:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

// getEnv 获取环境变量，如果不存在则返回默认值
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return defaultValue
}

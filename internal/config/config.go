package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"CVESummary/internal/model"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const EnvPrefix = "CVESUMMARY"

// Config 运行配置，优先级：命令行参数 > 环境变量 > 配置文件 > 默认值
type Config struct {
	Feed            model.FeedSource
	ServerAddr      string
	LogLevel        string
	OutputFormat    string
	Theme           string
	PrefetchWorkers int
}

// flagKeys 命令行参数名到配置键的映射
var flagKeys = map[string]string{
	"base-url": "base_url",
	"timeout":  "timeout",
	"retries":  "retries",
	"no-cache": "cache.disabled",
	"cache":    "cache.path",
	"addr":     "server.addr",
	"format":   "output.format",
	"theme":    "output.theme",
	"workers":  "prefetch.workers",
	"verbose":  "verbose",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("base_url", model.DefaultFeedBaseURL)
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("retries", 3)
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.disabled", false)
	v.SetDefault("cache.path", "database/cve_cache.db")
	v.SetDefault("cache.stale_time", time.Hour)
	v.SetDefault("cache.gc_time", 24*time.Hour)
	v.SetDefault("server.addr", ":3000")
	v.SetDefault("log.level", "info")
	v.SetDefault("output.format", "text")
	v.SetDefault("output.theme", "light")
	v.SetDefault("prefetch.workers", 4)
	v.SetDefault("verbose", false)
}

// Load 读取 .env、配置文件和环境变量。cfgFile 为空时在当前目录查找 config.yaml，
// 找不到不算错误。flags 可以为 nil
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	// .env 不存在时忽略
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName("config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("绑定参数 %s 失败: %w", name, err)
				}
			}
		}
	}

	cfg := &Config{
		Feed: model.FeedSource{
			BaseURL:   v.GetString("base_url"),
			Timeout:   v.GetDuration("timeout"),
			Retries:   v.GetInt("retries"),
			CachePath: v.GetString("cache.path"),
			UseCache:  v.GetBool("cache.enabled") && !v.GetBool("cache.disabled"),
			StaleTime: v.GetDuration("cache.stale_time"),
			GCTime:    v.GetDuration("cache.gc_time"),
		},
		ServerAddr:      v.GetString("server.addr"),
		LogLevel:        v.GetString("log.level"),
		OutputFormat:    strings.ToLower(v.GetString("output.format")),
		Theme:           strings.ToLower(v.GetString("output.theme")),
		PrefetchWorkers: v.GetInt("prefetch.workers"),
	}
	if v.GetBool("verbose") {
		cfg.LogLevel = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 检查配置取值
func (c *Config) Validate() error {
	if c.Feed.BaseURL == "" {
		return errors.New("base_url 不能为空")
	}
	if c.Feed.Timeout <= 0 {
		return fmt.Errorf("timeout 必须大于0: %v", c.Feed.Timeout)
	}
	if c.Feed.Retries < 0 {
		return fmt.Errorf("retries 不能为负数: %d", c.Feed.Retries)
	}
	if c.Feed.UseCache && c.Feed.CachePath == "" {
		return errors.New("启用缓存时 cache.path 不能为空")
	}
	switch c.OutputFormat {
	case "text", "json", "csv":
	default:
		return fmt.Errorf("不支持的输出格式: %s", c.OutputFormat)
	}
	switch c.Theme {
	case "light", "dark":
	default:
		return fmt.Errorf("不支持的主题: %s", c.Theme)
	}
	if c.PrefetchWorkers <= 0 {
		return fmt.Errorf("prefetch.workers 必须大于0: %d", c.PrefetchWorkers)
	}
	return nil
}

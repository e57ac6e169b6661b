package main

import (
	"fmt"
	"os"

	"CVESummary/internal/config"
	"CVESummary/internal/cvedb"
	"CVESummary/internal/metrics"
	"CVESummary/internal/utils"

	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  = utils.NewLogger("main")
)

var rootCmd = &cobra.Command{
	Use:   "cvesummary",
	Short: "CVE 记录摘要工具",
	Long: `CVESummary - 从 cvelistV5 数据源获取 CVE 记录并生成摘要。

支持终端输出 (text, json, csv)、HTTP API 以及从标准输入持续跟踪编号。`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}
		cfg = loaded
		utils.SetLevel(cfg.LogLevel)
		logger.Debug("配置加载完成: base=%s cache=%v", cfg.Feed.BaseURL, cfg.Feed.UseCache)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "配置文件 (默认 ./config.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "显示详细信息")
	rootCmd.PersistentFlags().String("base-url", "", "cvelistV5 镜像地址")
	rootCmd.PersistentFlags().Duration("timeout", 0, "请求超时时间")

	rootCmd.AddCommand(lookupCmd, urlCmd, watchCmd, serveCmd, cacheCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

// newService 按配置组装查询服务。不使用缓存时返回的 db 为 nil，cleanup 负责关闭缓存
func newService(useCache bool, m *metrics.Metrics) (service *cvedb.CVEService, db *cvedb.CVEDatabase, cleanup func(), err error) {
	client := cvedb.NewCVEAPIClientWithBase(cfg.Feed.BaseURL, cfg.Feed.Timeout)
	opts := cvedb.ServiceOptions{
		Retries:   cfg.Feed.Retries,
		StaleTime: cfg.Feed.StaleTime,
		Metrics:   m,
	}

	if !useCache {
		return cvedb.NewCVEService(client, nil, opts), nil, func() {}, nil
	}

	db, err = cvedb.NewCVEDatabase(cfg.Feed.CachePath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("初始化缓存失败: %w", err)
	}
	cleanup = func() {
		if err := db.Close(); err != nil {
			logger.Warn("关闭缓存失败: %v", err)
		}
	}
	return cvedb.NewCVEService(client, db, opts), db, cleanup, nil
}

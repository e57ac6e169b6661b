package main

import (
	"context"
	"fmt"
	"os"

	"CVESummary/internal/cvedb"
	"CVESummary/internal/summary"
	"CVESummary/pkg/cli"

	"github.com/spf13/cobra"
)

var lookupParser = cli.NewParser()

var lookupCmd = &cobra.Command{
	Use:   "lookup <CVE-ID>... | -",
	Short: "查询一个或多个CVE编号并输出摘要",
	Example: `  cvesummary lookup CVE-2024-1234
  cvesummary lookup CVE-2024-1234 CVE-2025-36000 --format json --output result.json
  cat ids.txt | cvesummary lookup - --format csv`,
	RunE: runLookup,
}

var urlCmd = &cobra.Command{
	Use:   "url <CVE-ID>",
	Short: "输出CVE记录在数据源中的地址",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := cvedb.NewCVEAPIClientWithBase(cfg.Feed.BaseURL, cfg.Feed.Timeout)
		url, err := client.RecordURL(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), url)
		return nil
	},
}

func init() {
	lookupParser.BindFlags(lookupCmd.Flags())
	lookupCmd.Flags().Int("workers", 0, "并发查询数")
}

func runLookup(cmd *cobra.Command, args []string) error {
	// 参数未显式指定时使用配置文件和环境变量中的值
	opts := &lookupParser.Options
	opts.OutputFormat = cfg.OutputFormat
	opts.Theme = cfg.Theme
	opts.NoCache = !cfg.Feed.UseCache
	opts.Verbose = cfg.LogLevel == "debug"

	if err := lookupParser.Parse(args, cmd.InOrStdin()); err != nil {
		return err
	}
	theme, _ := cli.ParseTheme(opts.Theme)

	service, _, cleanup, err := newService(!opts.NoCache, nil)
	if err != nil {
		return err
	}
	defer cleanup()

	states := resolveAll(cmd.Context(), service, opts.CVEIDs, cfg.PrefetchWorkers)

	formatter := cli.NewOutputFormatter(opts.OutputFormat, theme)
	if opts.OutputFormat == "text" && opts.OutputFile == "" {
		fmt.Fprint(os.Stdout, cli.Banner("", "", theme))
	}
	if err := formatter.PrintResult(states, opts.OutputFile); err != nil {
		return fmt.Errorf("输出结果失败: %w", err)
	}
	if opts.OutputFile != "" {
		logger.Info("结果已写入 %s", opts.OutputFile)
	}
	return nil
}

// resolveAll 并发查询，按输入顺序返回渲染状态
func resolveAll(ctx context.Context, service *cvedb.CVEService, ids []string, workers int) []summary.State {
	if ctx == nil {
		ctx = context.Background()
	}

	outcomes := make(map[string]summary.Outcome, len(ids))
	for res := range service.Prefetch(ctx, ids, workers) {
		outcomes[res.CVEID] = summary.Outcome{Record: res.Record, Err: res.Err}
		if res.Err != nil {
			logger.Debug("查询 %s 失败: %v", res.CVEID, res.Err)
		}
	}

	states := make([]summary.State, 0, len(ids))
	for _, id := range ids {
		outcome, ok := outcomes[id]
		if !ok {
			// 上下文取消后未被处理的编号
			outcome = summary.Outcome{Err: fmt.Errorf("查询 %s 未完成: %w", id, context.Canceled)}
		}
		states = append(states, summary.Derive(id, outcome))
	}
	return states
}

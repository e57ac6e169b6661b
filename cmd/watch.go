package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync/atomic"

	"CVESummary/internal/metrics"
	"CVESummary/internal/summary"
	"CVESummary/pkg/cli"

	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "从标准输入逐行读取编号，每行替换上一个查询",
	Long: `从标准输入逐行读取CVE编号。新的编号会取消尚未完成的上一个查询，
过期的结果不会被输出。输入空行显示空状态，输入 :theme 切换配色。`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		service, _, cleanup, err := newService(cfg.Feed.UseCache, metrics.NewMetrics())
		if err != nil {
			return err
		}
		defer cleanup()

		theme, err := cli.ParseTheme(cfg.Theme)
		if err != nil {
			return err
		}
		return runWatch(cmd.InOrStdin(), cmd.OutOrStdout(), service.Lookup, cfg.OutputFormat, theme)
	},
}

// runWatch 读取 in 直到 EOF，等待最后一个查询结束后返回
func runWatch(in io.Reader, out io.Writer, lookup summary.LookupFunc, format string, theme cli.Theme) error {
	var formatter atomic.Pointer[cli.OutputFormatter]
	formatter.Store(cli.NewOutputFormatter(format, theme))

	var writeErr error
	controller := summary.NewController(lookup, func(state summary.State) {
		if err := formatter.Load().Write(out, state); err != nil && writeErr == nil {
			writeErr = err
		}
	}, nil)

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == ":theme" {
			theme = theme.Toggle()
			formatter.Store(cli.NewOutputFormatter(format, theme))
			logger.Debug("切换配色: %s", theme)
			continue
		}
		controller.SetIdentifier(line)
	}

	controller.Wait()
	controller.Close()

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("读取输入失败: %w", err)
	}
	return writeErr
}

package main

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"CVESummary/internal/cvedb"
	"CVESummary/pkg/cli"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "本地缓存维护",
}

var cacheSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "写入两条参考记录",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCache(func(db *cvedb.CVEDatabase) error {
			return db.InitTestData()
		})
	},
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "删除超过 gc_time 的缓存记录",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCache(func(db *cvedb.CVEDatabase) error {
			n, err := db.Prune(cfg.Feed.GCTime)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "已清理 %d 条缓存记录\n", n)
			return nil
		})
	},
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "显示缓存记录数和最近的拉取历史",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("history")
		return withCache(func(db *cvedb.CVEDatabase) error {
			count, err := db.Count()
			if err != nil {
				return err
			}
			history, err := db.GetFetchHistory(limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "缓存文件: %s\n", db.Path())
			fmt.Fprintf(out, "记录数: %d\n", count)
			if len(history) == 0 {
				return nil
			}

			outcomes := make(map[string]int)
			for _, h := range history {
				outcomes[h.Outcome]++
			}
			keys := make([]string, 0, len(outcomes))
			for k := range outcomes {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(out, "  %s: %d\n", k, outcomes[k])
			}

			fmt.Fprintf(out, "\n最近 %d 次拉取:\n", len(history))
			w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "时间\t编号\t结果")
			for _, h := range history {
				fmt.Fprintf(w, "%s\t%s\t%s\n", h.FetchedAt.Format("2006-01-02 15:04:05"), h.CVEID, h.Outcome)
			}
			return w.Flush()
		})
	},
}

var cacheWarmCmd = &cobra.Command{
	Use:   "warm <CVE-ID>... | -",
	Short: "并发预取记录到本地缓存",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids := args
		if len(args) == 1 && args[0] == "-" {
			var err error
			if ids, err = cli.ReadIdentifiers(cmd.InOrStdin()); err != nil {
				return err
			}
		}

		service, _, cleanup, err := newService(true, nil)
		if err != nil {
			return err
		}
		defer cleanup()

		ok, failures := service.PrefetchAll(cmd.Context(), ids, cfg.PrefetchWorkers)
		fmt.Fprintf(cmd.OutOrStdout(), "预取完成: %d 成功, %d 失败\n", ok, len(failures))
		for id, err := range failures {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s: %v\n", id, err)
		}
		return nil
	},
}

func init() {
	cacheStatsCmd.Flags().Int("history", 10, "显示的历史条数")
	cacheWarmCmd.Flags().Int("workers", 0, "并发数")
	cacheCmd.AddCommand(cacheSeedCmd, cachePruneCmd, cacheStatsCmd, cacheWarmCmd)
}

func withCache(fn func(db *cvedb.CVEDatabase) error) error {
	db, err := cvedb.NewCVEDatabase(cfg.Feed.CachePath)
	if err != nil {
		return fmt.Errorf("打开缓存失败: %w", err)
	}
	defer db.Close()
	return fn(db)
}

package cvedb

import (
	"context"
	"sync"

	"CVESummary/internal/model"
)

// PrefetchResult 预取单个编号的结果
type PrefetchResult struct {
	CVEID  string
	Record *model.CVERecord
	Err    error
}

// Prefetch 使用固定数量的worker并发预取记录，写入缓存；结果按完成顺序返回，全部完成后关闭channel
func (s *CVEService) Prefetch(ctx context.Context, cveIDs []string, workers int) <-chan PrefetchResult {
	if workers <= 0 {
		workers = 1
	}
	if workers > len(cveIDs) && len(cveIDs) > 0 {
		workers = len(cveIDs)
	}

	results := make(chan PrefetchResult, len(cveIDs))
	idChan := make(chan string, len(cveIDs))

	s.logger.Info("开始预取 %d 个CVE记录，worker数: %d", len(cveIDs), workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for cveID := range idChan {
				record, err := s.Lookup(ctx, cveID)
				results <- PrefetchResult{CVEID: cveID, Record: record, Err: err}
			}
		}()
	}

	// 发送编号到channel
	go func() {
		defer func() {
			close(idChan)
			wg.Wait()
			close(results)
		}()
		for _, cveID := range cveIDs {
			select {
			case idChan <- cveID:
			case <-ctx.Done():
				return
			}
		}
	}()

	return results
}

// PrefetchAll 预取并汇总，返回成功数量和失败的编号
func (s *CVEService) PrefetchAll(ctx context.Context, cveIDs []string, workers int) (int, map[string]error) {
	successCount := 0
	failures := make(map[string]error)

	for res := range s.Prefetch(ctx, cveIDs, workers) {
		if res.Err != nil {
			failures[res.CVEID] = res.Err
			s.logger.Warn("预取 %s 失败: %v", res.CVEID, res.Err)
			continue
		}
		successCount++
	}

	s.logger.Info("预取完成: %d 成功, %d 失败", successCount, len(failures))
	return successCount, failures
}

package cvedb

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"CVESummary/internal/metrics"
	"CVESummary/internal/model"
	"CVESummary/internal/utils"

	"github.com/cenkalti/backoff"
	"golang.org/x/sync/singleflight"
)

// Fetcher 拉取单条记录
type Fetcher interface {
	FetchCVE(ctx context.Context, cveID string) (*model.CVERecord, error)
}

// RecordCache 记录缓存，CVEDatabase 实现了该接口
type RecordCache interface {
	GetRecord(cveID string, maxAge time.Duration) (*model.CVERecord, bool, error)
	SaveRecord(cveID string, record *model.CVERecord) error
	RecordFetch(cveID, outcome string) error
}

type ServiceOptions struct {
	Retries       int           // 网络错误的最大重试次数
	RetryInterval time.Duration // 首次重试间隔
	StaleTime     time.Duration // 缓存新鲜期
	Metrics       *metrics.Metrics
}

// CVEService 带缓存、并发去重和重试策略的查询服务
type CVEService struct {
	fetcher Fetcher
	cache   RecordCache
	opts    ServiceOptions
	group   singleflight.Group
	logger  *utils.Logger
}

// NewCVEService cache 可以为 nil，表示不使用本地缓存
func NewCVEService(fetcher Fetcher, cache RecordCache, opts ServiceOptions) *CVEService {
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	if opts.RetryInterval <= 0 {
		opts.RetryInterval = 500 * time.Millisecond
	}
	return &CVEService{
		fetcher: fetcher,
		cache:   cache,
		opts:    opts,
		logger:  utils.NewLogger("cve-service"),
	}
}

// Lookup 查询一条记录。格式错误立即返回；同一编号的并发请求只会发起一次上游请求
func (s *CVEService) Lookup(ctx context.Context, cveID string) (*model.CVERecord, error) {
	if _, err := ParseCVEID(cveID); err != nil {
		return nil, err
	}

	if s.cache != nil {
		record, fresh, err := s.cache.GetRecord(cveID, s.opts.StaleTime)
		switch {
		case err != nil:
			s.logger.Warn("读取缓存失败 %s: %v", cveID, err)
		case record != nil && fresh:
			s.logger.Debug("缓存命中: %s", cveID)
			s.opts.Metrics.ObserveCacheHit()
			return record, nil
		case record != nil:
			s.logger.Debug("缓存已过期: %s", cveID)
		}
	}

	for {
		ch := s.group.DoChan(cveID, func() (interface{}, error) {
			return s.fetch(ctx, cveID)
		})

		select {
		case <-ctx.Done():
			return nil, contextError(cveID, ctx.Err())
		case res := <-ch:
			if res.Err != nil {
				// 共享的请求被其发起者取消，而本调用仍然有效时重新发起
				if res.Shared && IsCanceled(res.Err) && ctx.Err() == nil {
					continue
				}
				return nil, res.Err
			}
			return res.Val.(*model.CVERecord), nil
		}
	}
}

func (s *CVEService) fetch(ctx context.Context, cveID string) (*model.CVERecord, error) {
	var record *model.CVERecord

	operation := func() error {
		start := time.Now()
		rec, err := s.fetcher.FetchCVE(ctx, cveID)
		s.opts.Metrics.ObserveFetch(string(Kind(err)), time.Since(start))
		if err != nil {
			if retryable(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		record = rec
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = s.opts.RetryInterval
	bo.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(s.opts.Retries)), ctx)

	err := backoff.RetryNotify(operation, policy, func(err error, next time.Duration) {
		s.logger.Warn("拉取 %s 失败，%v 后重试: %v", cveID, next, err)
	})
	if err != nil && !IsCanceled(err) && ctx.Err() == context.Canceled {
		err = contextError(cveID, ctx.Err())
	}

	if err != nil {
		if !IsCanceled(err) {
			s.logger.Error("获取CVE记录失败 %s: %v", cveID, err)
			s.recordHistory(cveID, string(Kind(err)))
		}
		return nil, err
	}

	s.recordHistory(cveID, "ok")
	if s.cache != nil {
		if err := s.cache.SaveRecord(cveID, record); err != nil {
			s.logger.Warn("写入缓存失败 %s: %v", cveID, err)
		}
	}
	return record, nil
}

func (s *CVEService) recordHistory(cveID, outcome string) {
	if s.cache == nil {
		return
	}
	s.cache.RecordFetch(cveID, outcome)
}

// retryable 只有传输失败、5xx 和 429 才值得重试
func retryable(err error) bool {
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		return false
	}
	if netErr.StatusCode == 0 {
		return true
	}
	return netErr.StatusCode >= 500 || netErr.StatusCode == http.StatusTooManyRequests
}

func contextError(cveID string, err error) error {
	if err == context.Canceled {
		return fmt.Errorf("请求已取消 %s: %w", cveID, err)
	}
	return &NetworkError{CVEID: cveID, Err: err}
}

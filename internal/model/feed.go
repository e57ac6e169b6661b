package model

import "time"

const (
	// DefaultFeedBaseURL cvelistV5 的原始文件镜像
	DefaultFeedBaseURL = "https://raw.githubusercontent.com/CVEProject/cvelistV5/refs/heads/main"
	UserAgent          = "CVESummary/1.0"
)

// FeedSource 数据源与本地缓存配置
type FeedSource struct {
	BaseURL   string
	Timeout   time.Duration
	Retries   int
	CachePath string
	UseCache  bool
	StaleTime time.Duration // 超过该时间的缓存需要重新拉取
	GCTime    time.Duration // 超过该时间的缓存会被清理
}

// LookupOptions 查询与输出选项
type LookupOptions struct {
	CVEIDs       []string
	OutputFile   string
	OutputFormat string // text, json, csv
	Theme        string // light, dark
	NoCache      bool
	Verbose      bool
}

// FetchOutcome 记录到 fetch_history 的结果
type FetchOutcome struct {
	CVEID     string    `json:"cve_id"`
	Outcome   string    `json:"outcome"`
	FetchedAt time.Time `json:"fetched_at"`
}

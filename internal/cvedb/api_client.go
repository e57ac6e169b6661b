package cvedb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"CVESummary/internal/model"
	"CVESummary/internal/utils"
)

const defaultBaseURL = model.DefaultFeedBaseURL

// CVEAPIClient 从 cvelistV5 拉取单条CVE记录的客户端，自身不做重试
type CVEAPIClient struct {
	baseURL    string
	logger     *utils.Logger
	httpClient *http.Client
}

// NewCVEAPIClient 创建新的CVE API客户端
func NewCVEAPIClient() *CVEAPIClient {
	return NewCVEAPIClientWithBase(defaultBaseURL, 30*time.Second)
}

// NewCVEAPIClientWithBase 使用自定义数据源和超时创建客户端
func NewCVEAPIClientWithBase(baseURL string, timeout time.Duration) *CVEAPIClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &CVEAPIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  utils.NewLogger("cve-api-client"),
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				IdleConnTimeout:     30 * time.Second,
				DisableCompression:  false,
				MaxIdleConnsPerHost: 10,
			},
		},
	}
}

// BaseURL 返回当前数据源
func (client *CVEAPIClient) BaseURL() string {
	return client.baseURL
}

// RecordURL 构造记录地址: <base>/cves/<YYYY>/<NNxxx>/<id>.json
func (client *CVEAPIClient) RecordURL(cveID string) (string, error) {
	return buildRecordURL(client.baseURL, cveID)
}

// FetchCVE 获取并解析单条CVE记录
func (client *CVEAPIClient) FetchCVE(ctx context.Context, cveID string) (*model.CVERecord, error) {
	url, err := client.RecordURL(cveID)
	if err != nil {
		return nil, err
	}

	client.logger.Debug("请求URL: %s", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}

	// 设置请求头
	req.Header.Set("User-Agent", model.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := client.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr == context.Canceled {
			return nil, fmt.Errorf("请求已取消 %s: %w", cveID, ctxErr)
		}
		return nil, &NetworkError{CVEID: cveID, Err: err}
	}
	defer resp.Body.Close()

	// 检查响应状态
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &NetworkError{
			CVEID:      cveID,
			StatusCode: resp.StatusCode,
			Status:     statusText(resp),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr == context.Canceled {
			return nil, fmt.Errorf("请求已取消 %s: %w", cveID, ctxErr)
		}
		return nil, &NetworkError{CVEID: cveID, Err: fmt.Errorf("读取响应失败: %w", err)}
	}

	record, err := DecodeRecord(cveID, body)
	if err != nil {
		client.logger.Error("解析JSON失败 %s: %v", cveID, err)
		return nil, err
	}

	client.logger.Debug("获取到CVE记录 %s (%d 字节)", cveID, len(body))
	return record, nil
}

// DecodeRecord 解析记录并校验编号与请求一致
func DecodeRecord(cveID string, body []byte) (*model.CVERecord, error) {
	var record model.CVERecord
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, &ParseError{CVEID: cveID, Err: err}
	}

	if record.CVEMetadata != nil && record.CVEMetadata.CVEID != "" &&
		!strings.EqualFold(record.CVEMetadata.CVEID, cveID) {
		return nil, &ParseError{
			CVEID: cveID,
			Err:   fmt.Errorf("%w: 得到 %s", ErrIdentifierMismatch, record.CVEMetadata.CVEID),
		}
	}

	return &record, nil
}

// statusText 去掉状态码，只保留 "Not Found" 之类的文本
func statusText(resp *http.Response) string {
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	code := fmt.Sprintf("%d", resp.StatusCode)
	if s := strings.TrimSpace(strings.TrimPrefix(resp.Status, code)); s != "" {
		return s
	}
	return resp.Status
}

package cvedb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

const cnaOnlyJSON = `{
	"dataType": "CVE_RECORD",
	"dataVersion": "5.1",
	"cveMetadata": {
		"cveId": "CVE-2025-36000",
		"assignerOrgName": "Test Organization",
		"assignerShortName": "TEST",
		"dateReserved": "2025-01-01T00:00:00Z",
		"datePublished": "2025-01-02T00:00:00Z",
		"dateUpdated": "2025-01-03T00:00:00Z"
	},
	"containers": {
		"cna": {
			"title": "Test Vulnerability",
			"description": "This is a test CVE description",
			"affected": [{"product": "TestProduct", "vendor": "TestVendor", "versions": []}],
			"references": [{"url": "https://example.com", "name": "Example Reference"}]
		}
	}
}`

func TestNewCVEAPIClient(t *testing.T) {
	client := NewCVEAPIClient()
	if client == nil {
		t.Fatal("NewCVEAPIClient() 返回 nil")
	}
	if client.baseURL != defaultBaseURL {
		t.Errorf("期望baseURL为 %s, 实际得到 %s", defaultBaseURL, client.baseURL)
	}
	if client.logger == nil {
		t.Error("logger 不应为 nil")
	}
	if client.httpClient == nil || client.httpClient.Timeout != 30*time.Second {
		t.Error("httpClient 应使用30秒超时")
	}
}

func TestRecordURL(t *testing.T) {
	client := NewCVEAPIClientWithBase("http://mirror.local/", time.Second)

	url, err := client.RecordURL("CVE-2025-36000")
	if err != nil {
		t.Fatalf("RecordURL 失败: %v", err)
	}
	if url != "http://mirror.local/cves/2025/36xxx/CVE-2025-36000.json" {
		t.Errorf("URL不匹配: %s", url)
	}
}

func TestFetchCVEWithMockServer(t *testing.T) {
	testServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("期望GET请求, 实际得到 %s", r.Method)
		}
		if r.URL.Path != "/cves/2025/36xxx/CVE-2025-36000.json" {
			t.Errorf("请求路径不匹配: %s", r.URL.Path)
		}
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("缺少 Accept 头")
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(cnaOnlyJSON))
	}))
	defer testServer.Close()

	client := NewCVEAPIClientWithBase(testServer.URL, 5*time.Second)
	record, err := client.FetchCVE(context.Background(), "CVE-2025-36000")
	if err != nil {
		t.Fatalf("FetchCVE 失败: %v", err)
	}

	if record.CVEMetadata == nil || record.CVEMetadata.CVEID != "CVE-2025-36000" {
		t.Fatalf("元数据不正确: %+v", record.CVEMetadata)
	}
	if record.Containers.CNA.Title != "Test Vulnerability" {
		t.Errorf("期望标题为 Test Vulnerability, 实际得到 %s", record.Containers.CNA.Title)
	}
	if len(record.Containers.CNA.Affected) != 1 || record.Containers.CNA.Affected[0].Vendor != "TestVendor" {
		t.Errorf("受影响产品不正确: %+v", record.Containers.CNA.Affected)
	}
	if len(record.Containers.CNA.References) != 1 {
		t.Errorf("期望1个参考链接, 实际得到 %d", len(record.Containers.CNA.References))
	}
}

func TestFetchCVEWithAPIError(t *testing.T) {
	testServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "404: Not Found", http.StatusNotFound)
	}))
	defer testServer.Close()

	client := NewCVEAPIClientWithBase(testServer.URL, 5*time.Second)
	_, err := client.FetchCVE(context.Background(), "CVE-2024-1234")
	if err == nil {
		t.Fatal("期望返回错误")
	}

	expectedErr := "Failed to fetch CVE data: Not Found"
	if err.Error() != expectedErr {
		t.Errorf("错误消息不匹配。期望: %s, 实际: %s", expectedErr, err.Error())
	}

	var netErr *NetworkError
	if !errors.As(err, &netErr) || netErr.StatusCode != http.StatusNotFound {
		t.Errorf("期望 NetworkError(404), 实际得到 %T %v", err, err)
	}
	if Kind(err) != KindNetwork {
		t.Errorf("期望错误类型 network, 实际得到 %s", Kind(err))
	}
}

func TestFetchCVEMalformedJSON(t *testing.T) {
	testServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"cveMetadata": {`))
	}))
	defer testServer.Close()

	client := NewCVEAPIClientWithBase(testServer.URL, 5*time.Second)
	_, err := client.FetchCVE(context.Background(), "CVE-2024-1234")

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("期望 ParseError, 实际得到 %T %v", err, err)
	}
	if Kind(err) != KindParse {
		t.Errorf("期望错误类型 parse, 实际得到 %s", Kind(err))
	}
}

func TestFetchCVEIdentifierMismatch(t *testing.T) {
	testServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(cnaOnlyJSON))
	}))
	defer testServer.Close()

	client := NewCVEAPIClientWithBase(testServer.URL, 5*time.Second)
	_, err := client.FetchCVE(context.Background(), "CVE-2025-36001")
	if !errors.Is(err, ErrIdentifierMismatch) {
		t.Fatalf("期望 ErrIdentifierMismatch, 实际得到 %v", err)
	}
}

func TestFetchCVEInvalidFormatSkipsNetwork(t *testing.T) {
	var called atomic.Bool
	testServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called.Store(true)
	}))
	defer testServer.Close()

	client := NewCVEAPIClientWithBase(testServer.URL, 5*time.Second)
	_, err := client.FetchCVE(context.Background(), "INVALID-CVE")
	if !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("期望格式错误, 实际得到 %v", err)
	}
	if called.Load() {
		t.Error("格式错误时不应发起网络请求")
	}
}

func TestFetchCVECanceled(t *testing.T) {
	release := make(chan struct{})
	testServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer testServer.Close()
	defer close(release)

	client := NewCVEAPIClientWithBase(testServer.URL, 5*time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := client.FetchCVE(ctx, "CVE-2024-1234")
	if !IsCanceled(err) {
		t.Fatalf("期望取消错误, 实际得到 %v", err)
	}

	var netErr *NetworkError
	if errors.As(err, &netErr) {
		t.Error("取消不应被报告为网络错误")
	}
	if Kind(err) != KindCanceled {
		t.Errorf("期望错误类型 canceled, 实际得到 %s", Kind(err))
	}
}

func TestFetchCVETransportFailure(t *testing.T) {
	testServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := testServer.URL
	testServer.Close()

	client := NewCVEAPIClientWithBase(baseURL, time.Second)
	_, err := client.FetchCVE(context.Background(), "CVE-2024-1234")

	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("期望 NetworkError, 实际得到 %T %v", err, err)
	}
	if !strings.HasPrefix(err.Error(), "Failed to fetch CVE data:") {
		t.Errorf("错误消息前缀不正确: %s", err.Error())
	}
}

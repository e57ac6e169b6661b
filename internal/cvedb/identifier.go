package cvedb

import (
	"fmt"
	"regexp"
	"strings"
)

var cveIDPattern = regexp.MustCompile(`^CVE-(\d{4})-(\d+)$`)

// shardSuffix cvelistV5 按编号前两位分目录，例如 36xxx
const shardSuffix = "xxx"

// ParsedCVEID 解析后的CVE编号，每次请求重新计算
type ParsedCVEID struct {
	ID     string
	Year   string
	Number string
	Prefix string
}

// ParseCVEID 解析 CVE-YYYY-N 格式的编号，整串匹配
func ParseCVEID(cveID string) (ParsedCVEID, error) {
	match := cveIDPattern.FindStringSubmatch(cveID)
	if match == nil {
		return ParsedCVEID{}, &FormatError{Input: cveID}
	}

	year := match[1]
	number := match[2]
	prefix := number
	if len(prefix) > 2 {
		prefix = prefix[:2]
	}

	return ParsedCVEID{
		ID:     cveID,
		Year:   year,
		Number: number,
		Prefix: prefix + shardSuffix,
	}, nil
}

// ConstructCVEURL 使用默认数据源构造记录地址
func ConstructCVEURL(cveID string) (string, error) {
	return buildRecordURL(defaultBaseURL, cveID)
}

func buildRecordURL(baseURL, cveID string) (string, error) {
	parsed, err := ParseCVEID(cveID)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/cves/%s/%s/%s.json",
		strings.TrimRight(baseURL, "/"), parsed.Year, parsed.Prefix, parsed.ID), nil
}

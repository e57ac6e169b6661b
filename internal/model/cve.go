package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// CVERecord CVE JSON 5 记录（cvelistV5 仓库中的单个文件）
type CVERecord struct {
	DataType    string       `json:"dataType,omitempty"`
	DataVersion string       `json:"dataVersion,omitempty"`
	CVEMetadata *CVEMetadata `json:"cveMetadata,omitempty"`
	Containers  *Containers  `json:"containers,omitempty"`
}

// CVEMetadata 记录元数据
type CVEMetadata struct {
	CVEID             string `json:"cveId"`
	AssignerOrgID     string `json:"assignerOrgId,omitempty"`
	AssignerOrgName   string `json:"assignerOrgName,omitempty"`
	AssignerShortName string `json:"assignerShortName,omitempty"`
	State             string `json:"state,omitempty"`
	DateReserved      string `json:"dateReserved,omitempty"`
	DatePublished     string `json:"datePublished,omitempty"`
	DateUpdated       string `json:"dateUpdated,omitempty"`
}

type Containers struct {
	CNA *CNAContainer `json:"cna,omitempty"`
	ADP ADPContainers `json:"adp,omitempty"`
}

// CNAContainer 主报告机构容器
type CNAContainer struct {
	Title            string            `json:"title,omitempty"`
	Descriptions     []Description     `json:"descriptions,omitempty"`
	Description      string            `json:"description,omitempty"` // 旧格式的单一描述
	Affected         []Affected        `json:"affected,omitempty"`
	References       []Reference       `json:"references,omitempty"`
	Credits          []Credit          `json:"credits,omitempty"`
	ProblemTypes     []ProblemType     `json:"problemTypes,omitempty"`
	Solutions        []Solution        `json:"solutions,omitempty"`
	Metrics          []Metric          `json:"metrics,omitempty"`
	ProviderMetadata *ProviderMetadata `json:"providerMetadata,omitempty"`
	Source           *Source           `json:"source,omitempty"`
}

// ADPContainer 附加数据提供方容器
type ADPContainer struct {
	Title            string            `json:"title,omitempty"`
	Metrics          []Metric          `json:"metrics,omitempty"`
	ProviderMetadata *ProviderMetadata `json:"providerMetadata,omitempty"`
}

// ADPContainers 上游既可能给出单个对象也可能给出数组，解码时统一成切片
type ADPContainers []ADPContainer

func (a *ADPContainers) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*a = nil
		return nil
	}

	if trimmed[0] == '{' {
		var single ADPContainer
		if err := json.Unmarshal(trimmed, &single); err != nil {
			return fmt.Errorf("解析adp容器失败: %w", err)
		}
		*a = ADPContainers{single}
		return nil
	}

	var list []ADPContainer
	if err := json.Unmarshal(trimmed, &list); err != nil {
		return fmt.Errorf("解析adp容器失败: %w", err)
	}
	*a = list
	return nil
}

type ProviderMetadata struct {
	OrgID       string `json:"orgId"`
	ShortName   string `json:"shortName,omitempty"`
	DateUpdated string `json:"dateUpdated,omitempty"`
}

type Source struct {
	Discovery string `json:"discovery,omitempty"`
}

type Description struct {
	Lang            string            `json:"lang,omitempty"`
	Value           string            `json:"value"`
	SupportingMedia []SupportingMedia `json:"supportingMedia,omitempty"`
}

type SupportingMedia struct {
	Type   string `json:"type"`
	Value  string `json:"value"`
	Base64 bool   `json:"base64,omitempty"`
}

// Affected 受影响的产品
type Affected struct {
	Vendor        string    `json:"vendor,omitempty"`
	Product       string    `json:"product"`
	Versions      []Version `json:"versions,omitempty"`
	CPEs          []string  `json:"cpes,omitempty"`
	DefaultStatus string    `json:"defaultStatus,omitempty"`
}

type Version struct {
	Version         string `json:"version"`
	Status          string `json:"status"`
	LessThan        string `json:"lessThan,omitempty"`
	LessThanOrEqual string `json:"lessThanOrEqual,omitempty"`
	VersionType     string `json:"versionType,omitempty"`
}

type Reference struct {
	URL  string   `json:"url"`
	Name string   `json:"name,omitempty"`
	Tags []string `json:"tags,omitempty"`
}

type Credit struct {
	Lang  string `json:"lang"`
	Value string `json:"value"`
	Type  string `json:"type,omitempty"`
}

type ProblemType struct {
	Descriptions []ProblemTypeDescription `json:"descriptions,omitempty"`
}

type ProblemTypeDescription struct {
	Lang        string `json:"lang,omitempty"`
	Description string `json:"description,omitempty"`
	Value       string `json:"value,omitempty"`
	CWEID       string `json:"cweId,omitempty"`
	Type        string `json:"type,omitempty"`
}

// Text 返回问题类型的描述文本，cvelistV5 使用 description，旧数据使用 value
func (p ProblemTypeDescription) Text() string {
	if p.Description != "" {
		return p.Description
	}
	return p.Value
}

type Solution struct {
	Lang            string            `json:"lang,omitempty"`
	Value           string            `json:"value"`
	SupportingMedia []SupportingMedia `json:"supportingMedia,omitempty"`
}

type Metric struct {
	Format    string     `json:"format,omitempty"`
	CVSSV31   *CVSSV31   `json:"cvssV3_1,omitempty"`
	Scenarios []Scenario `json:"scenarios,omitempty"`
}

type Scenario struct {
	Lang  string `json:"lang,omitempty"`
	Value string `json:"value,omitempty"`
}

// CVSSV31 CVSS v3.1 向量
type CVSSV31 struct {
	Version               string  `json:"version,omitempty"`
	VectorString          string  `json:"vectorString,omitempty"`
	BaseScore             float64 `json:"baseScore"`
	BaseSeverity          string  `json:"baseSeverity"`
	AttackVector          string  `json:"attackVector,omitempty"`
	AttackComplexity      string  `json:"attackComplexity,omitempty"`
	PrivilegesRequired    string  `json:"privilegesRequired,omitempty"`
	UserInteraction       string  `json:"userInteraction,omitempty"`
	Scope                 string  `json:"scope,omitempty"`
	ConfidentialityImpact string  `json:"confidentialityImpact,omitempty"`
	IntegrityImpact       string  `json:"integrityImpact,omitempty"`
	AvailabilityImpact    string  `json:"availabilityImpact,omitempty"`
}

// FirstCVSSV31 返回第一个带有 CVSS v3.1 向量的指标
func FirstCVSSV31(metrics []Metric) *CVSSV31 {
	for _, m := range metrics {
		if m.CVSSV31 != nil {
			return m.CVSSV31
		}
	}
	return nil
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseCVETime 解析记录中的时间戳，上游并不总是带时区
func ParseCVETime(value string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("无法解析时间: %q", value)
}

package summary

import (
	"strings"

	"CVESummary/internal/model"
)

// Color 严重程度对应的颜色名
type Color string

const (
	ColorRed     Color = "red"
	ColorOrange  Color = "orange"
	ColorGold    Color = "gold"
	ColorGreen   Color = "green"
	ColorBlue    Color = "blue"
	ColorDefault Color = "default"
)

// SeverityColor 五档颜色，未知或缺失的严重程度使用默认色
func SeverityColor(severity string) Color {
	switch strings.ToUpper(severity) {
	case "CRITICAL":
		return ColorRed
	case "HIGH":
		return ColorOrange
	case "MEDIUM":
		return ColorGold
	case "LOW":
		return ColorGreen
	case "INFO", "NONE":
		return ColorBlue
	default:
		return ColorDefault
	}
}

// View 渲染摘要所需的全部字段，空的可选部分保持为 nil
type View struct {
	ID                string               `json:"id"`
	Title             string               `json:"title,omitempty"`
	Description       string               `json:"description,omitempty"`
	Score             *float64             `json:"score,omitempty"`
	Severity          string               `json:"severity,omitempty"`
	SeverityColor     Color                `json:"severity_color"`
	Metric            *model.CVSSV31       `json:"metric,omitempty"`
	MetricSource      string               `json:"metric_source,omitempty"` // cna 或 adp
	Published         string               `json:"published,omitempty"`
	Updated           string               `json:"updated,omitempty"`
	Reserved          string               `json:"reserved,omitempty"`
	AssignerOrgName   string               `json:"assigner_org_name,omitempty"`
	AssignerShortName string               `json:"assigner_short_name,omitempty"`
	Affected          []model.Affected     `json:"affected,omitempty"`
	References        []model.Reference    `json:"references,omitempty"`
	ProblemTypes      []ProblemTypeSummary `json:"problem_types,omitempty"`
	Solutions         []model.Solution     `json:"solutions,omitempty"`
}

// ProblemTypeSummary 扁平化后的问题类型
type ProblemTypeSummary struct {
	CWEID       string `json:"cwe_id,omitempty"`
	Description string `json:"description"`
}

// NewView 从记录构造摘要。记录必须带有元数据；容器缺失时只有头部信息
func NewView(record *model.CVERecord) View {
	meta := record.CVEMetadata
	view := View{
		ID:                meta.CVEID,
		Published:         meta.DatePublished,
		Updated:           meta.DateUpdated,
		Reserved:          meta.DateReserved,
		AssignerOrgName:   meta.AssignerOrgName,
		AssignerShortName: meta.AssignerShortName,
		SeverityColor:     ColorDefault,
	}

	if record.Containers == nil {
		return view
	}

	if metric, source := preferredMetric(record.Containers); metric != nil {
		score := metric.BaseScore
		view.Metric = metric
		view.MetricSource = source
		view.Score = &score
		view.Severity = metric.BaseSeverity
		view.SeverityColor = SeverityColor(metric.BaseSeverity)
	}

	cna := record.Containers.CNA
	if cna == nil {
		return view
	}

	view.Title = cna.Title
	view.Description = preferredDescription(cna)
	if len(cna.Affected) > 0 {
		view.Affected = cna.Affected
	}
	if len(cna.References) > 0 {
		view.References = cna.References
	}
	if len(cna.Solutions) > 0 {
		view.Solutions = cna.Solutions
	}
	for _, pt := range cna.ProblemTypes {
		for _, d := range pt.Descriptions {
			view.ProblemTypes = append(view.ProblemTypes, ProblemTypeSummary{
				CWEID:       d.CWEID,
				Description: d.Text(),
			})
		}
	}

	return view
}

func preferredDescription(cna *model.CNAContainer) string {
	if len(cna.Descriptions) > 0 {
		return cna.Descriptions[0].Value
	}
	return cna.Description
}

// preferredMetric CNA 优先，其次第一个 ADP 容器；两者都有时不做协调
func preferredMetric(c *model.Containers) (*model.CVSSV31, string) {
	if c.CNA != nil {
		if m := model.FirstCVSSV31(c.CNA.Metrics); m != nil {
			return m, "cna"
		}
	}
	if len(c.ADP) > 0 {
		if m := model.FirstCVSSV31(c.ADP[0].Metrics); m != nil {
			return m, "adp"
		}
	}
	return nil, ""
}

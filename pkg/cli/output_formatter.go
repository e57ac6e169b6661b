package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"CVESummary/internal/model"
	"CVESummary/internal/summary"
	"CVESummary/internal/utils"

	"github.com/charmbracelet/lipgloss"
)

const (
	EmptyMessage  = "请提供 CVE 编号"
	NoDataMessage = "没有可用的 CVE 数据"
)

// StateResult 导出用的扁平结构，json 输出使用
type StateResult struct {
	CVEID   string        `json:"cve_id,omitempty"`
	State   summary.Kind  `json:"state"`
	Message string        `json:"message,omitempty"`
	Reason  string        `json:"reason,omitempty"`
	Summary *summary.View `json:"summary,omitempty"`
}

// NewStateResult 把渲染状态转换为导出结构
func NewStateResult(state summary.State) StateResult {
	res := StateResult{State: state.Kind()}
	switch st := state.(type) {
	case summary.EmptyInput:
		res.Message = EmptyMessage
	case summary.Loading:
		res.CVEID = st.CVEID
	case summary.Failed:
		res.CVEID = st.CVEID
		res.Message = st.Message
		res.Reason = string(st.Reason)
	case summary.NoData:
		res.CVEID = st.CVEID
		res.Message = NoDataMessage
	case summary.Populated:
		view := st.View
		res.CVEID = view.ID
		res.Summary = &view
	}
	return res
}

type OutputFormatter struct {
	format string
	theme  Theme
}

func NewOutputFormatter(format string, theme Theme) *OutputFormatter {
	return &OutputFormatter{format: strings.ToLower(format), theme: theme}
}

// PrintResult 输出到文件，outputFile 为空时输出到标准输出
func (of *OutputFormatter) PrintResult(states []summary.State, outputFile string) error {
	output, err := of.Format(states)
	if err != nil {
		return err
	}

	if outputFile != "" {
		return os.WriteFile(outputFile, []byte(output), 0644)
	}

	fmt.Print(output)
	return nil
}

// Write 把单个状态写到 w，watch 模式逐条输出时使用
func (of *OutputFormatter) Write(w io.Writer, state summary.State) error {
	var output string
	switch of.format {
	case "json":
		data, err := json.Marshal(NewStateResult(state))
		if err != nil {
			return fmt.Errorf("序列化结果失败: %w", err)
		}
		output = string(data) + "\n"
	case "csv":
		output = of.formatCSV([]summary.State{state}, false)
	default:
		output = of.formatText(state)
	}
	_, err := io.WriteString(w, output)
	return err
}

func (of *OutputFormatter) Format(states []summary.State) (string, error) {
	switch of.format {
	case "json":
		return of.formatJSON(states)
	case "csv":
		return of.formatCSV(states, true), nil
	default:
		var builder strings.Builder
		for _, state := range states {
			builder.WriteString(of.formatText(state))
		}
		return builder.String(), nil
	}
}

func (of *OutputFormatter) formatText(state summary.State) string {
	p := of.theme.palette()
	muted := lipgloss.NewStyle().Foreground(p.muted)
	errStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f5222d"))

	switch st := state.(type) {
	case summary.EmptyInput:
		return muted.Render("📭 "+EmptyMessage) + "\n"
	case summary.Loading:
		return muted.Render(fmt.Sprintf("⏳ 正在加载 %s ...", st.CVEID)) + "\n"
	case summary.Failed:
		return errStyle.Render(fmt.Sprintf("❌ 加载 %s 失败", st.CVEID)) + "\n   " + st.Message + "\n"
	case summary.NoData:
		return muted.Render(fmt.Sprintf("📭 %s: %s", st.CVEID, NoDataMessage)) + "\n"
	case summary.Populated:
		return of.formatView(st.View)
	}
	return ""
}

// formatView 按固定顺序输出各部分，空的部分整体省略
func (of *OutputFormatter) formatView(v summary.View) string {
	var builder strings.Builder
	p := of.theme.palette()
	idStyle := lipgloss.NewStyle().Bold(true).Foreground(p.text)
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(p.accent)
	headingStyle := lipgloss.NewStyle().Bold(true).Foreground(p.text)
	muted := lipgloss.NewStyle().Foreground(p.muted)
	rule := lipgloss.NewStyle().Foreground(p.border).Render(strings.Repeat("═", 60))
	thin := lipgloss.NewStyle().Foreground(p.border).Render(strings.Repeat("─", 40))

	// 标题行
	builder.WriteString("\n" + idStyle.Render(v.ID))
	if v.Severity != "" {
		builder.WriteString("  " + of.theme.severityStyle(v.SeverityColor).Render("["+v.Severity+"]"))
	}
	builder.WriteString("\n" + rule + "\n")

	if v.Title != "" {
		builder.WriteString(titleStyle.Render(v.Title) + "\n\n")
	}

	if v.Description != "" {
		builder.WriteString(headingStyle.Render("📝 描述") + "\n")
		builder.WriteString(v.Description + "\n\n")
	}

	// 评分与日期
	var facts []string
	if v.Score != nil {
		facts = append(facts, fmt.Sprintf("CVSS: %.1f", *v.Score))
	}
	if v.Published != "" {
		facts = append(facts, "发布: "+formatDate(v.Published))
	}
	if v.Updated != "" {
		facts = append(facts, "更新: "+formatDate(v.Updated))
	}
	if len(facts) > 0 {
		builder.WriteString(strings.Join(facts, " | ") + "\n\n")
	}

	if v.Metric != nil {
		builder.WriteString(headingStyle.Render("📊 CVSS v3.1 指标") + "\n")
		builder.WriteString(thin + "\n")
		w := tabwriter.NewWriter(&builder, 0, 0, 3, ' ', 0)
		if v.Metric.VectorString != "" {
			fmt.Fprintf(w, "向量\t%s\n", v.Metric.VectorString)
		}
		fmt.Fprintf(w, "攻击向量\t%s\n", orDash(v.Metric.AttackVector))
		fmt.Fprintf(w, "攻击复杂度\t%s\n", orDash(v.Metric.AttackComplexity))
		fmt.Fprintf(w, "所需权限\t%s\n", orDash(v.Metric.PrivilegesRequired))
		fmt.Fprintf(w, "用户交互\t%s\n", orDash(v.Metric.UserInteraction))
		fmt.Fprintf(w, "影响范围\t%s\n", orDash(v.Metric.Scope))
		w.Flush()
		builder.WriteString("\n")
	}

	if len(v.Affected) > 0 {
		builder.WriteString(headingStyle.Render(fmt.Sprintf("📦 受影响的产品 (%d)", len(v.Affected))) + "\n")
		builder.WriteString(thin + "\n")
		for _, a := range v.Affected {
			name := a.Product
			if a.Vendor != "" {
				name = a.Vendor + " " + a.Product
			}
			builder.WriteString(fmt.Sprintf("🔸 %s\n", name))
			if len(a.Versions) > 0 {
				builder.WriteString("   版本: " + formatVersions(a.Versions) + "\n")
			}
		}
		builder.WriteString("\n")
	}

	if len(v.References) > 0 {
		builder.WriteString(headingStyle.Render(fmt.Sprintf("🔗 参考链接 (%d)", len(v.References))) + "\n")
		builder.WriteString(thin + "\n")
		for _, ref := range v.References {
			label := ref.Name
			if label == "" {
				label = ref.URL
			}
			builder.WriteString("• " + label)
			if ref.Name != "" {
				builder.WriteString(" " + muted.Render("<"+ref.URL+">"))
			}
			builder.WriteString("\n")
		}
		builder.WriteString("\n")
	}

	if len(v.ProblemTypes) > 0 {
		builder.WriteString(headingStyle.Render("⚠️  问题类型") + "\n")
		builder.WriteString(thin + "\n")
		for _, pt := range v.ProblemTypes {
			if pt.CWEID != "" {
				builder.WriteString(fmt.Sprintf("• %s: %s\n", pt.CWEID, pt.Description))
			} else {
				builder.WriteString("• " + pt.Description + "\n")
			}
		}
		builder.WriteString("\n")
	}

	if len(v.Solutions) > 0 {
		builder.WriteString(headingStyle.Render("🛠  解决方案") + "\n")
		builder.WriteString(thin + "\n")
		for _, s := range v.Solutions {
			if s.Lang != "" {
				builder.WriteString(muted.Render("["+s.Lang+"] "))
			}
			builder.WriteString(s.Value + "\n")
		}
		builder.WriteString("\n")
	}

	if v.AssignerOrgName != "" || v.AssignerShortName != "" {
		assigner := v.AssignerOrgName
		if v.AssignerShortName != "" {
			if assigner != "" {
				assigner += " (" + v.AssignerShortName + ")"
			} else {
				assigner = v.AssignerShortName
			}
		}
		builder.WriteString(muted.Render("分配机构: "+assigner) + "\n")
	}

	builder.WriteString(rule + "\n")
	return builder.String()
}

func (of *OutputFormatter) formatJSON(states []summary.State) (string, error) {
	results := make([]StateResult, 0, len(states))
	for _, state := range states {
		results = append(results, NewStateResult(state))
	}

	jsonBytes, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return "", fmt.Errorf("序列化结果失败: %w", err)
	}
	return string(jsonBytes) + "\n", nil
}

func (of *OutputFormatter) formatCSV(states []summary.State, header bool) string {
	var builder strings.Builder
	writer := csv.NewWriter(&builder)

	if header {
		writer.Write([]string{"cve_id", "state", "severity", "score", "title", "published", "affected", "references", "message"})
	}

	for _, state := range states {
		res := NewStateResult(state)
		row := []string{res.CVEID, string(res.State), "", "", "", "", "0", "0", res.Message}
		if v := res.Summary; v != nil {
			row[2] = v.Severity
			if v.Score != nil {
				row[3] = strconv.FormatFloat(*v.Score, 'f', 1, 64)
			}
			row[4] = v.Title
			row[5] = formatDate(v.Published)
			row[6] = strconv.Itoa(len(v.Affected))
			row[7] = strconv.Itoa(len(v.References))
		}
		writer.Write(row)
	}

	writer.Flush()
	return builder.String()
}

// formatDate 只保留日期部分，无法解析时原样返回
func formatDate(value string) string {
	if value == "" {
		return ""
	}
	t, err := model.ParseCVETime(value)
	if err != nil {
		return value
	}
	return t.Format("2006-01-02")
}

func formatVersions(versions []model.Version) string {
	parts := make([]string, 0, len(versions))
	for _, ver := range utils.SortedVersions(versions) {
		label := ver.Version
		if label == "" {
			label = "N/A"
		}
		switch {
		case ver.LessThan != "":
			label += " < " + ver.LessThan
		case ver.LessThanOrEqual != "":
			label += " <= " + ver.LessThanOrEqual
		}
		if ver.Status != "" {
			label += " (" + ver.Status + ")"
		}
		parts = append(parts, label)
	}
	return strings.Join(parts, ", ")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"CVESummary/internal/model"

	"github.com/spf13/pflag"
)

// Parser 收集 lookup 命令的参数
type Parser struct {
	Options model.LookupOptions
}

func NewParser() *Parser {
	return &Parser{}
}

// BindFlags 在 cobra 命令的 FlagSet 上注册参数
func (p *Parser) BindFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&p.Options.OutputFile, "output", "o", "", "输出文件")
	fs.StringVarP(&p.Options.OutputFormat, "format", "f", "text", "输出格式 (text, json, csv)")
	fs.StringVar(&p.Options.Theme, "theme", "light", "配色方案 (light, dark)")
	fs.BoolVar(&p.Options.NoCache, "no-cache", false, "不使用本地缓存")
}

// Parse 校验参数。args 为 "-" 时从 stdin 逐行读取编号
func (p *Parser) Parse(args []string, stdin io.Reader) error {
	ids := args
	if len(args) == 1 && args[0] == "-" {
		var err error
		ids, err = ReadIdentifiers(stdin)
		if err != nil {
			return err
		}
	}

	p.Options.CVEIDs = p.Options.CVEIDs[:0]
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			p.Options.CVEIDs = append(p.Options.CVEIDs, id)
		}
	}
	if len(p.Options.CVEIDs) == 0 {
		return fmt.Errorf("必须指定至少一个CVE编号")
	}

	p.Options.OutputFormat = strings.ToLower(p.Options.OutputFormat)
	switch p.Options.OutputFormat {
	case "text", "json", "csv":
	default:
		return fmt.Errorf("不支持的输出格式: %s", p.Options.OutputFormat)
	}

	if _, err := ParseTheme(p.Options.Theme); err != nil {
		return err
	}
	return nil
}

// ReadIdentifiers 逐行读取编号，忽略空行和 # 开头的注释
func ReadIdentifiers(r io.Reader) ([]string, error) {
	var ids []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ids = append(ids, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("读取编号失败: %w", err)
	}
	return ids, nil
}

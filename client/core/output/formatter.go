// Package output provides output formatting functionality for client commands.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"os"
	"sort"
	"strings"

	"github.com/pterm/pterm"
)

// Format 输出格式
type Format string

const (
	// FormatJSON JSON格式
	FormatJSON Format = "json"
	// FormatPretty 美化JSON格式
	FormatPretty Format = "pretty"
	// FormatTable 表格格式（默认）
	FormatTable Format = "table"
	// FormatText 纯文本格式
	FormatText Format = "text"
)

// ParseFormat 解析输出格式
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatJSON, FormatPretty, FormatTable, FormatText:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q (json|pretty|table|text)", s)
}

// Formatter 输出格式化器
//
// 命令结果写 writer（stdout），提示和错误写 logWriter（stderr），
// 保证 json 输出可以直接被管道消费。
type Formatter struct {
	format    Format
	writer    io.Writer // 数据输出
	logWriter io.Writer // 提示信息输出
	silent    bool
}

// NewFormatter 创建格式化器
func NewFormatter(format Format, writer io.Writer) *Formatter {
	if writer == nil {
		writer = os.Stdout
	}

	return &Formatter{
		format:    format,
		writer:    writer,
		logWriter: os.Stderr,
	}
}

// IsStructured 是否为机器可读格式
func (f *Formatter) IsStructured() bool {
	return f.format == FormatJSON || f.format == FormatPretty
}

// SetLogWriter 设置提示信息输出目标（默认 stderr）
func (f *Formatter) SetLogWriter(writer io.Writer) {
	if writer == nil {
		writer = os.Stderr
	}
	f.logWriter = writer
}

// LogWriter 返回提示信息输出目标
func (f *Formatter) LogWriter() io.Writer {
	return f.logWriter
}

// SetSilent 设置静默模式
func (f *Formatter) SetSilent(silent bool) {
	f.silent = silent
}

// Print 打印单个对象
//
// table/text 格式下 map 按键名排序输出，其他类型输出其字符串形式。
func (f *Formatter) Print(data interface{}) error {
	if f.silent {
		return nil
	}

	switch f.format {
	case FormatJSON:
		return f.printJSON(data, false)
	case FormatPretty:
		return f.printJSON(data, true)
	case FormatTable:
		if m, ok := data.(map[string]interface{}); ok {
			rows := [][]string{{"Key", "Value"}}
			for _, k := range sortedKeys(m) {
				rows = append(rows, []string{k, formatValue(m[k])})
			}
			return f.renderTable(rows)
		}
		return f.printText(data)
	default:
		return f.printText(data)
	}
}

// PrintRows 按给定列顺序打印记录列表
func (f *Formatter) PrintRows(columns []string, rows []map[string]interface{}) error {
	if f.silent {
		return nil
	}
	if rows == nil {
		rows = []map[string]interface{}{}
	}

	switch f.format {
	case FormatJSON:
		return f.printJSON(rows, false)
	case FormatPretty:
		return f.printJSON(rows, true)
	}

	data := make([][]string, 0, len(rows)+1)
	data = append(data, columns)
	for _, row := range rows {
		values := make([]string, len(columns))
		for i, col := range columns {
			values[i] = formatValue(row[col])
		}
		data = append(data, values)
	}

	if f.format == FormatTable {
		if len(rows) == 0 {
			return nil
		}
		return f.renderTable(data)
	}

	for _, values := range data[1:] {
		if _, err := fmt.Fprintln(f.writer, strings.Join(values, "  ")); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}
	return nil
}

// printJSON 打印JSON格式
func (f *Formatter) printJSON(data interface{}, pretty bool) error {
	var out []byte
	var err error

	if pretty {
		out, err = json.MarshalIndent(data, "", "  ")
	} else {
		out, err = json.Marshal(data)
	}
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if _, err := fmt.Fprintln(f.writer, string(out)); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// renderTable 使用 pterm 渲染表格，首行为表头
func (f *Formatter) renderTable(data [][]string) error {
	s, err := pterm.DefaultTable.WithHasHeader().WithHeaderRowSeparator("-").WithData(data).Srender()
	if err != nil {
		return fmt.Errorf("render table: %w", err)
	}
	if _, err := fmt.Fprintln(f.writer, s); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// printText 打印纯文本格式
func (f *Formatter) printText(data interface{}) error {
	var text string
	switch v := data.(type) {
	case map[string]interface{}:
		lines := make([]string, 0, len(v))
		for _, k := range sortedKeys(v) {
			lines = append(lines, fmt.Sprintf("%s: %s", k, formatValue(v[k])))
		}
		text = strings.Join(lines, "\n")
	default:
		text = formatValue(v)
	}

	if _, err := fmt.Fprintln(f.writer, text); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// PrintSuccess 打印成功消息
func (f *Formatter) PrintSuccess(message string) {
	if f.silent {
		return
	}
	_, _ = fmt.Fprintf(f.logWriter, "✅ %s\n", message)
}

// PrintError 打印错误消息，静默模式下也输出
func (f *Formatter) PrintError(err error) {
	_, _ = fmt.Fprintf(f.logWriter, "Error: %v\n", err)
}

// PrintWarning 打印警告消息
func (f *Formatter) PrintWarning(message string) {
	if f.silent {
		return
	}
	_, _ = fmt.Fprintf(f.logWriter, "⚠️  %s\n", message)
}

// PrintInfo 打印信息消息
func (f *Formatter) PrintInfo(message string) {
	if f.silent {
		return
	}
	_, _ = fmt.Fprintf(f.logWriter, "ℹ️  %s\n", message)
}

// ===== 辅助函数 =====

// formatValue 格式化值
func formatValue(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case int, int64, uint, uint64:
		return fmt.Sprintf("%d", v)
	case *big.Int:
		if v == nil {
			return "-"
		}
		return v.String()
	case fmt.Stringer:
		return v.String()
	case bool:
		if v {
			return "true"
		}
		return "false"
	case nil:
		return "-"
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	}
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

package parser

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

var (
	spaceRe = regexp.MustCompile(`\s+`)
	digitRe = regexp.MustCompile(`\d+`)
)

// NormalizeColumnName 规范化列名：去除首尾空白，压缩连续空白
func NormalizeColumnName(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "\r", " ")
	name = strings.ReplaceAll(name, "\n", " ")
	name = strings.ReplaceAll(name, "\t", " ")
	return spaceRe.ReplaceAllString(name, " ")
}

// ContainsAny 检查字符串是否包含任意一个关键词
func ContainsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// ContainsYear 文本中是否以独立数字形式出现指定年份（"2024" 匹配，"12024" 不匹配）
func ContainsYear(text string, year int) bool {
	token := strconv.Itoa(year)
	for _, digits := range digitRe.FindAllString(text, -1) {
		if digits == token {
			return true
		}
	}
	return false
}

// ExtractYears 从列名列表中提取出现过的年份（升序去重）
func ExtractYears(columns []string) []int {
	seen := make(map[int]struct{})
	var years []int
	for _, col := range columns {
		for _, digits := range digitRe.FindAllString(col, -1) {
			if len(digits) != 4 || (digits[:2] != "19" && digits[:2] != "20") {
				continue
			}
			y, _ := strconv.Atoi(digits)
			if _, ok := seen[y]; ok {
				continue
			}
			seen[y] = struct{}{}
			years = append(years, y)
		}
	}
	sort.Ints(years)
	return years
}

// parseAmount 解析金额/数量单元格，空值按 0 处理
func parseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return 0, nil
	}
	s = strings.ReplaceAll(s, ",", "") // 移除千分位
	s = strings.ReplaceAll(s, "₹", "")
	s = strings.ReplaceAll(s, "Rs.", "")
	s = strings.TrimSpace(s)

	// 会计格式的负数：(1,234)
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	if negative {
		f = -f
	}
	return f, nil
}

// dateLayouts 按优先级尝试的日期格式；两位年份沿用 Excel 默认的 mm-dd-yy
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"02-01-2006",
	"02/01/2006",
	"2-Jan-2006",
	"02-Jan-2006",
	"2 Jan 2006",
	"02-Jan-06",
	"Jan 2, 2006",
	"01-02-06",
	"1/2/06",
	time.RFC3339,
}

// parseDate 解析日期单元格（Excel 序列号或常见文本格式）
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		if serial < 1 || serial > 2958465 {
			return time.Time{}, fmt.Errorf("date serial out of range: %v", serial)
		}
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, err
		}
		return truncateDay(t), nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return truncateDay(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// isBlankRow 整行为空
func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

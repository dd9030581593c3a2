/*
 * @module service/utils/data_converter
 * @description 数据转换工具，负责CSV单元格的类型转换、字符集转换与日期解析
 * @architecture 工具函数模式，无状态转换方法集合
 * @stateFlow 输入 -> 转换逻辑 -> 输出
 * @rules 数值解析失败返回错误由调用方决定是否容忍；日期解析按候选格式顺序尝试
 * @dependencies golang.org/x/text/encoding/simplifiedchinese, golang.org/x/text/transform
 * @refs service/ingestion/csv_loader.go, service/feature/cost_features.go
 */

package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

// 日期解析候选格式，按出现频率排序
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02-01-2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// ParseFloat 解析CSV单元格为浮点数
// 空白单元格视为缺失，返回错误
func ParseFloat(cell string) (float64, error) {
	trimmed := strings.TrimSpace(cell)
	if trimmed == "" {
		return 0, fmt.Errorf("空单元格无法解析为数值")
	}
	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("数值解析失败 %q: %w", cell, err)
	}
	return value, nil
}

// ParseDate 解析CSV单元格为日期
func ParseDate(cell string) (time.Time, error) {
	trimmed := strings.TrimSpace(cell)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("空单元格无法解析为日期")
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("日期解析失败 %q: 不匹配任何已知格式", cell)
}

// EnsureUTF8 确保字节序列为合法UTF-8
// 上游导出工具偶尔产出GBK编码的CSV，此处检测并转换
func EnsureUTF8(data []byte) ([]byte, error) {
	if utf8.Valid(data) {
		return data, nil
	}

	decoder := simplifiedchinese.GBK.NewDecoder()
	result, _, err := transform.Bytes(decoder, data)
	if err != nil {
		return nil, fmt.Errorf("GBK转UTF-8失败: %w", err)
	}
	return result, nil
}

// NormalizeHeader 规范化CSV表头单元格
// 去除BOM与首尾空白，保留原始大小写（列名是外部契约）
func NormalizeHeader(cell string) string {
	return strings.TrimSpace(strings.TrimPrefix(cell, "\uFEFF"))
}

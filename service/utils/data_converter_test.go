/*
 * @module service/utils/data_converter_test
 * @description 数据转换工具单元测试
 * @architecture 测试层
 * @dependencies testing, testify
 * @refs data_converter.go
 */

package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/simplifiedchinese"
)

func TestParseFloat(t *testing.T) {
	v, err := ParseFloat("12.5")
	require.NoError(t, err)
	assert.Equal(t, 12.5, v)

	v, err = ParseFloat(" 100 ")
	require.NoError(t, err)
	assert.Equal(t, 100.0, v)

	_, err = ParseFloat("")
	assert.Error(t, err)

	_, err = ParseFloat("abc")
	assert.Error(t, err)
}

func TestParseDate(t *testing.T) {
	for _, input := range []string{"2024-03-04", "2024/03/04", "04-03-2024", "2024-03-04 10:30:00"} {
		d, err := ParseDate(input)
		require.NoError(t, err, input)
		assert.Equal(t, 2024, d.Year())
		assert.Equal(t, 3, int(d.Month()))
		assert.Equal(t, 4, d.Day())
	}

	_, err := ParseDate("not-a-date")
	assert.Error(t, err)

	_, err = ParseDate("")
	assert.Error(t, err)
}

func TestEnsureUTF8(t *testing.T) {
	// 已是 UTF-8 的内容原样返回
	utf8Data := []byte("Order_ID,Origin\nORD-001,孟买\n")
	out, err := EnsureUTF8(utf8Data)
	require.NoError(t, err)
	assert.Equal(t, utf8Data, out)

	// GBK 编码内容转换为 UTF-8
	gbkData, err := simplifiedchinese.GBK.NewEncoder().Bytes([]byte("订单数据"))
	require.NoError(t, err)
	out, err = EnsureUTF8(gbkData)
	require.NoError(t, err)
	assert.Equal(t, "订单数据", string(out))
}

func TestNormalizeHeader(t *testing.T) {
	assert.Equal(t, "Order_ID", NormalizeHeader("Order_ID"))
	assert.Equal(t, "Order_ID", NormalizeHeader(" Order_ID "))
	// 去除 UTF-8 BOM
	assert.Equal(t, "Order_ID", NormalizeHeader("\uFEFFOrder_ID"))
}

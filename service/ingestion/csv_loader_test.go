/*
 * @module service/ingestion/csv_loader_test
 * @description CSV数据装载器单元测试
 * @architecture 测试层 - 临时目录 + 内存数据库
 * @stateFlow 写临时CSV -> 装载 -> 入库结果验证
 * @rules 验证订单源缺失的致命错误、坏行跳过计数与成本列的动态保存
 * @dependencies testing, testify, logistics-intel-service/testutil
 * @refs csv_loader.go
 */

package ingestion

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logistics-intel-service/service/meta"
	"logistics-intel-service/service/models"
	"logistics-intel-service/testutil"
)

func writeCSV(t *testing.T, dir, name, content string) {
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestCSVLoader_LoadOrders(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()
	dir := t.TempDir()

	writeCSV(t, dir, "orders.csv",
		"Order_ID,Origin,Destination,Priority,Product_Category,Customer_Segment,Order_Value_INR,Order_Date\n"+
			"ORD-001,Mumbai,Delhi,Express,Electronics,B2B,12500,2024-03-04\n"+
			"ORD-002,Pune,Chennai,Standard,Apparel,B2C,3200,2024-03-09\n")

	loader := NewCSVLoader(tdb.DB, dir)
	result := loader.LoadDataset(context.Background(), meta.DatasetOrders)

	assert.True(t, result.IsPresent)
	assert.Equal(t, int64(2), result.RowCount)
	assert.Equal(t, int64(0), result.SkippedRows)

	var orders []models.Order
	require.NoError(t, tdb.DB.Order("order_id").Find(&orders).Error)
	require.Len(t, orders, 2)
	assert.Equal(t, "ORD-001", orders[0].OrderID)
	assert.Equal(t, 12500.0, orders[0].OrderValueINR)
	assert.Equal(t, 2024, orders[0].OrderDate.Year())

	// 状态表记录装载结果
	var status models.DatasetStatus
	require.NoError(t, tdb.DB.Where("name = ?", meta.DatasetOrders).First(&status).Error)
	assert.True(t, status.IsPresent)
	assert.Equal(t, int64(2), status.RowCount)
}

func TestCSVLoader_SkipBadRows(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()
	dir := t.TempDir()

	// 第二行金额非数值、第三行日期非法：跳过并计数，不中断装载
	writeCSV(t, dir, "orders.csv",
		"Order_ID,Origin,Destination,Priority,Product_Category,Customer_Segment,Order_Value_INR,Order_Date\n"+
			"ORD-001,Mumbai,Delhi,Express,Electronics,B2B,12500,2024-03-04\n"+
			"ORD-002,Pune,Chennai,Standard,Apparel,B2C,abc,2024-03-09\n"+
			"ORD-003,Delhi,Kolkata,Standard,FMCG,B2B,7800,not-a-date\n")

	loader := NewCSVLoader(tdb.DB, dir)
	result := loader.LoadDataset(context.Background(), meta.DatasetOrders)

	assert.True(t, result.IsPresent)
	assert.Equal(t, int64(1), result.RowCount)
	assert.Equal(t, int64(2), result.SkippedRows)
}

func TestCSVLoader_MissingRequiredColumn(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()
	dir := t.TempDir()

	writeCSV(t, dir, "orders.csv", "Order_ID,Origin\nORD-001,Mumbai\n")

	loader := NewCSVLoader(tdb.DB, dir)
	result := loader.LoadDataset(context.Background(), meta.DatasetOrders)

	assert.False(t, result.IsPresent)
	assert.Contains(t, result.Error, "缺少必需列")
}

func TestCSVLoader_LoadAll_MissingOrdersFatal(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()
	dir := t.TempDir()

	// 仅提供路线数据：订单源缺失是致命错误
	writeCSV(t, dir, "routes_distance.csv",
		"Order_ID,Distance_KM,Traffic_Delay_Minutes,Weather_Impact\nORD-001,1400,45,Rain\n")

	loader := NewCSVLoader(tdb.DB, dir)
	_, err := loader.LoadAll(context.Background())
	assert.Error(t, err)
}

func TestCSVLoader_LoadAll_OptionalSourcesMissing(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()
	dir := t.TempDir()

	writeCSV(t, dir, "orders.csv",
		"Order_ID,Origin,Destination,Priority,Product_Category,Customer_Segment,Order_Value_INR,Order_Date\n"+
			"ORD-001,Mumbai,Delhi,Express,Electronics,B2B,12500,2024-03-04\n")

	loader := NewCSVLoader(tdb.DB, dir)
	results, err := loader.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 7)

	// 订单存在，其余来源缺失仅标记不报错
	byName := map[string]bool{}
	for _, r := range results {
		byName[r.Dataset] = r.IsPresent
	}
	assert.True(t, byName[meta.DatasetOrders])
	assert.False(t, byName[meta.DatasetDelivery])
	assert.False(t, byName[meta.DatasetCosts])
}

func TestCSVLoader_CostComponentsDynamic(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()
	dir := t.TempDir()

	writeCSV(t, dir, "cost_breakdown.csv",
		"Order_ID,Fuel_Cost,Handling_Fee,Toll_Charges,Route_Name\n"+
			"ORD-001,100.5,20,35,Mumbai-Delhi\n")

	loader := NewCSVLoader(tdb.DB, dir)
	result := loader.LoadDataset(context.Background(), meta.DatasetCosts)
	require.True(t, result.IsPresent)

	var record models.CostRecord
	require.NoError(t, tdb.DB.First(&record, "order_id = ?", "ORD-001").Error)

	// 除 Order_ID 外全部列动态保存，数值可解析的存为数值
	assert.Len(t, record.Components, 4)
	assert.EqualValues(t, 100.5, record.Components["Fuel_Cost"])
	assert.Equal(t, "Mumbai-Delhi", record.Components["Route_Name"])
}

func TestCSVLoader_Reload(t *testing.T) {
	tdb := testutil.NewTestDB()
	defer tdb.Close()
	dir := t.TempDir()

	header := "Order_ID,Origin,Destination,Priority,Product_Category,Customer_Segment,Order_Value_INR,Order_Date\n"
	writeCSV(t, dir, "orders.csv", header+"ORD-001,Mumbai,Delhi,Express,Electronics,B2B,12500,2024-03-04\n")

	loader := NewCSVLoader(tdb.DB, dir)
	loader.LoadDataset(context.Background(), meta.DatasetOrders)

	// 重载为清表重载，不产生重复记录
	writeCSV(t, dir, "orders.csv", header+"ORD-002,Pune,Chennai,Standard,Apparel,B2C,3200,2024-03-09\n")
	result := loader.LoadDataset(context.Background(), meta.DatasetOrders)
	assert.Equal(t, int64(1), result.RowCount)

	var count int64
	tdb.DB.Model(&models.Order{}).Count(&count)
	assert.Equal(t, int64(1), count)

	var order models.Order
	require.NoError(t, tdb.DB.First(&order).Error)
	assert.Equal(t, "ORD-002", order.OrderID)
}

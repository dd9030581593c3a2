/*
 * @module service/meta/datasets
 * @description 七个物流数据集的元数据定义：名称、来源文件、列契约
 * @architecture 常量层 - 元数据定义
 * @stateFlow 常量定义 -> 装载校验 -> 业务逻辑使用
 * @rules 列名即外部契约，装载器与特征构建器统一引用此处定义
 * @dependencies 无外部依赖
 * @refs service/ingestion/, api/controllers/meta_controller.go
 */

package meta

// 数据集名称常量
const (
	DatasetOrders    = "orders"
	DatasetDelivery  = "delivery"
	DatasetRoutes    = "routes"
	DatasetFleet     = "fleet"
	DatasetWarehouse = "warehouse"
	DatasetFeedback  = "feedback"
	DatasetCosts     = "costs"
)

// 数据集来源文件映射
var DatasetSourceFiles = map[string]string{
	DatasetOrders:    "orders.csv",
	DatasetDelivery:  "delivery_performance.csv",
	DatasetRoutes:    "routes_distance.csv",
	DatasetFleet:     "vehicle_fleet.csv",
	DatasetWarehouse: "warehouse_inventory.csv",
	DatasetFeedback:  "customer_feedback.csv",
	DatasetCosts:     "cost_breakdown.csv",
}

// 数据集列契约：每个数据集要求的固定列
// 成本数据集除 Order_ID 外的列是开放的，由令牌匹配动态发现
var DatasetColumns = map[string][]string{
	DatasetOrders:    {"Order_ID", "Origin", "Destination", "Priority", "Product_Category", "Customer_Segment", "Order_Value_INR", "Order_Date"},
	DatasetDelivery:  {"Order_ID", "Promised_Delivery_Days", "Actual_Delivery_Days", "Carrier"},
	DatasetRoutes:    {"Order_ID", "Distance_KM", "Traffic_Delay_Minutes", "Weather_Impact"},
	DatasetFleet:     {"Vehicle_Type", "Age_Years", "Fuel_Efficiency_KM_per_L", "Capacity_KG", "CO2_Emissions_Kg_per_KM"},
	DatasetWarehouse: {"Warehouse", "Product_Category", "Stock_Level", "Reorder_Point"},
	DatasetFeedback:  {"Order_ID", "Rating", "Would_Recommend"},
	DatasetCosts:     {"Order_ID"},
}

// 数据集显示名称映射
var DatasetDisplayNames = map[string]string{
	DatasetOrders:    "订单数据",
	DatasetDelivery:  "配送表现数据",
	DatasetRoutes:    "路线距离数据",
	DatasetFleet:     "车队数据",
	DatasetWarehouse: "仓储库存数据",
	DatasetFeedback:  "客户反馈数据",
	DatasetCosts:     "成本明细数据",
}

// IsValidDataset 验证数据集名称是否有效
func IsValidDataset(name string) bool {
	_, exists := DatasetSourceFiles[name]
	return exists
}

// GetAllDatasets 获取所有数据集名称（固定顺序）
func GetAllDatasets() []string {
	return []string{
		DatasetOrders,
		DatasetDelivery,
		DatasetRoutes,
		DatasetFleet,
		DatasetWarehouse,
		DatasetFeedback,
		DatasetCosts,
	}
}

// GetDatasetInfo 获取数据集的完整元数据
func GetDatasetInfo(name string) map[string]interface{} {
	return map[string]interface{}{
		"name":         name,
		"display_name": DatasetDisplayNames[name],
		"source_file":  DatasetSourceFiles[name],
		"columns":      DatasetColumns[name],
	}
}

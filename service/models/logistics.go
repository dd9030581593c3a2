/*
 * @module service/models/logistics
 * @description 物流原始数据集模型，对应七个外部数据源（订单、配送、路线、车队、仓储、反馈、成本）
 * @architecture 数据模型层
 * @dependencies gorm.io/gorm, time
 * @refs service/ingestion/, service/feature/
 */

package models

import (
	"time"
)

// Order 订单记录，根实体，所有特征表以 Order_ID 为锚点
type Order struct {
	OrderID         string    `gorm:"column:order_id;type:varchar(50);primaryKey" json:"Order_ID"`
	Origin          string    `gorm:"column:origin;type:varchar(100);index" json:"Origin"`
	Destination     string    `gorm:"column:destination;type:varchar(100)" json:"Destination"`
	Priority        string    `gorm:"column:priority;type:varchar(30)" json:"Priority"`
	ProductCategory string    `gorm:"column:product_category;type:varchar(100)" json:"Product_Category"`
	CustomerSegment string    `gorm:"column:customer_segment;type:varchar(50);index" json:"Customer_Segment"`
	OrderValueINR   float64   `gorm:"column:order_value_inr" json:"Order_Value_INR"`
	OrderDate       time.Time `gorm:"column:order_date" json:"Order_Date"`
	CreatedAt       time.Time `json:"created_at"`
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}

// DeliveryPerformance 配送表现记录，每订单一条
type DeliveryPerformance struct {
	OrderID              string    `gorm:"column:order_id;type:varchar(50);primaryKey" json:"Order_ID"`
	PromisedDeliveryDays float64   `gorm:"column:promised_delivery_days" json:"Promised_Delivery_Days"`
	ActualDeliveryDays   float64   `gorm:"column:actual_delivery_days" json:"Actual_Delivery_Days"`
	Carrier              string    `gorm:"column:carrier;type:varchar(100);index" json:"Carrier"`
	CreatedAt            time.Time `json:"created_at"`
}

// TableName 指定表名
func (DeliveryPerformance) TableName() string {
	return "delivery_performance"
}

// RouteRecord 路线记录，包含距离与路况信息
type RouteRecord struct {
	OrderID             string    `gorm:"column:order_id;type:varchar(50);primaryKey" json:"Order_ID"`
	DistanceKM          float64   `gorm:"column:distance_km" json:"Distance_KM"`
	TrafficDelayMinutes float64   `gorm:"column:traffic_delay_minutes" json:"Traffic_Delay_Minutes"`
	WeatherImpact       string    `gorm:"column:weather_impact;type:varchar(50)" json:"Weather_Impact"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// TableName 指定表名
func (RouteRecord) TableName() string {
	return "route_records"
}

// FleetVehicle 车队车辆记录，按 Vehicle_Type 聚合出适配性评分
type FleetVehicle struct {
	VehicleID            string    `gorm:"column:vehicle_id;type:varchar(50);primaryKey" json:"Vehicle_ID"`
	VehicleType          string    `gorm:"column:vehicle_type;type:varchar(50);index" json:"Vehicle_Type"`
	AgeYears             float64   `gorm:"column:age_years" json:"Age_Years"`
	FuelEfficiencyKMPerL float64   `gorm:"column:fuel_efficiency_km_per_l" json:"Fuel_Efficiency_KM_per_L"`
	CapacityKG           float64   `gorm:"column:capacity_kg" json:"Capacity_KG"`
	CO2EmissionsKgPerKM  float64   `gorm:"column:co2_emissions_kg_per_km" json:"CO2_Emissions_Kg_per_KM"`
	CreatedAt            time.Time `json:"created_at"`
}

// TableName 指定表名
func (FleetVehicle) TableName() string {
	return "fleet_vehicles"
}

// WarehouseInventory 仓储库存记录，仪表盘展示用，不参与特征融合
type WarehouseInventory struct {
	ID              string    `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	Warehouse       string    `gorm:"column:warehouse;type:varchar(100);index" json:"Warehouse"`
	ProductCategory string    `gorm:"column:product_category;type:varchar(100)" json:"Product_Category"`
	StockLevel      float64   `gorm:"column:stock_level" json:"Stock_Level"`
	ReorderPoint    float64   `gorm:"column:reorder_point" json:"Reorder_Point"`
	CreatedAt       time.Time `json:"created_at"`
}

// TableName 指定表名
func (WarehouseInventory) TableName() string {
	return "warehouse_inventory"
}

// CustomerFeedback 客户反馈记录，仅部分订单存在
type CustomerFeedback struct {
	OrderID        string    `gorm:"column:order_id;type:varchar(50);primaryKey" json:"Order_ID"`
	Rating         float64   `gorm:"column:rating" json:"Rating"`
	WouldRecommend string    `gorm:"column:would_recommend;type:varchar(10)" json:"Would_Recommend"`
	IssueCategory  string    `gorm:"column:issue_category;type:varchar(100)" json:"Issue_Category,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// TableName 指定表名
func (CustomerFeedback) TableName() string {
	return "customer_feedback"
}

// CostRecord 成本明细记录
// 成本列是开放的：除 Order_ID 外的所有列以动态键值方式保存，
// 由成本特征构建器按命名模式（Cost/Fee/Insurance/Overhead）发现参与汇总的列
type CostRecord struct {
	OrderID    string    `gorm:"column:order_id;type:varchar(50);primaryKey" json:"Order_ID"`
	Components JSONB     `gorm:"column:components;type:jsonb" json:"components"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName 指定表名
func (CostRecord) TableName() string {
	return "cost_records"
}

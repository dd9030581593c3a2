/*
 * @module service/assembler/master_assembler
 * @description 主数据集装配器，将各特征表左连接到订单集并执行缺失值插补
 * @architecture 分层架构 - 数据融合层
 * @stateFlow 特征构建（并行）-> 左连接 -> 全批插补 -> 主记录输出
 * @rules 订单源中的每个 Order_ID 产出有且仅有一条主记录，来源缺失以空值表示而非丢弃订单；
 *        插补统计必须在全部连接完成后基于整批计算：route_risk_score 取批中位数，
 *        vehicle_suitability_score 取批均值（两者的不对称是既有策略，保持原样）；
 *        空批次跳过插补而非报错；相同输入重复装配产出完全一致
 * @dependencies logistics-intel-service/service/feature, logistics-intel-service/service/models
 * @refs service/pipeline/pipeline_service.go
 */

package assembler

import (
	"fmt"
	"sort"
	"sync"

	"logistics-intel-service/service/feature"
	"logistics-intel-service/service/models"
)

// SourceBundle 装配输入：七源中参与融合的六个数据集（仓储数据不参与特征融合）
// 缺失的来源以空切片表示，装配继续进行
type SourceBundle struct {
	Orders     []models.Order
	Deliveries []models.DeliveryPerformance
	Routes     []models.RouteRecord
	Fleet      []models.FleetVehicle
	Feedback   []models.CustomerFeedback
	Costs      []models.CostRecord
}

// MasterAssembler 主数据集装配器
type MasterAssembler struct {
	deliveryBuilder *feature.DeliveryFeatureBuilder
	routeBuilder    *feature.RouteFeatureBuilder
	vehicleBuilder  *feature.VehicleFeatureBuilder
	customerBuilder *feature.CustomerFeatureBuilder
	costBuilder     *feature.CostFeatureBuilder
}

// NewMasterAssembler 创建主数据集装配器
// 路线与车辆构建器携带策略配置（天气映射、承运商映射），由调用方注入
func NewMasterAssembler(routeBuilder *feature.RouteFeatureBuilder, vehicleBuilder *feature.VehicleFeatureBuilder) *MasterAssembler {
	return &MasterAssembler{
		deliveryBuilder: feature.NewDeliveryFeatureBuilder(),
		routeBuilder:    routeBuilder,
		vehicleBuilder:  vehicleBuilder,
		customerBuilder: feature.NewCustomerFeatureBuilder(),
		costBuilder:     feature.NewCostFeatureBuilder(),
	}
}

// Assemble 执行特征构建与融合，产出每订单一条的主记录集
func (a *MasterAssembler) Assemble(bundle *SourceBundle) ([]models.MasterRecord, error) {
	if bundle == nil || len(bundle.Orders) == 0 {
		return nil, fmt.Errorf("订单数据源缺失，无法装配主数据集")
	}

	// 各特征构建器相互独立且无副作用，并行执行；连接与插补必须等待全部完成
	var (
		deliveryFeatures map[string]*feature.DeliveryFeatures
		routeFeatures    map[string]*feature.RouteFeatures
		vehicleFeatures  map[string]*feature.VehicleFeatures
		customerFeatures map[string]*feature.CustomerFeatures
		costFeatures     map[string]*feature.CostFeatures
	)

	var wg sync.WaitGroup
	wg.Add(5)
	go func() {
		defer wg.Done()
		deliveryFeatures = a.deliveryBuilder.Build(bundle.Deliveries)
	}()
	go func() {
		defer wg.Done()
		routeFeatures = a.routeBuilder.Build(bundle.Routes)
	}()
	go func() {
		defer wg.Done()
		vehicleFeatures = a.vehicleBuilder.Build(bundle.Fleet, bundle.Deliveries)
	}()
	go func() {
		defer wg.Done()
		customerFeatures = a.customerBuilder.Build(bundle.Feedback, bundle.Orders)
	}()
	go func() {
		defer wg.Done()
		costFeatures = a.costBuilder.Build(bundle.Costs)
	}()
	wg.Wait()

	// 左连接：以订单集为锚，保持输入顺序以保证装配结果可重现
	records := make([]models.MasterRecord, 0, len(bundle.Orders))
	for _, order := range bundle.Orders {
		record := models.MasterRecord{
			OrderID:         order.OrderID,
			Origin:          order.Origin,
			Destination:     order.Destination,
			Priority:        order.Priority,
			ProductCategory: order.ProductCategory,
			CustomerSegment: order.CustomerSegment,
			OrderValueINR:   order.OrderValueINR,
			OrderDate:       order.OrderDate,
			// 周一为 0，与训练侧的星期编码保持一致
			OrderDOW:   (int(order.OrderDate.Weekday()) + 6) % 7,
			OrderMonth: int(order.OrderDate.Month()),
		}

		if df, exists := deliveryFeatures[order.OrderID]; exists {
			promised, actual, delay := df.PromisedDeliveryDays, df.ActualDeliveryDays, df.DelayDays
			delayed := df.IsDelayed
			record.PromisedDeliveryDays = &promised
			record.ActualDeliveryDays = &actual
			record.Carrier = df.Carrier
			record.DelayDays = &delay
			record.IsDelayed = &delayed
		}

		if rf, exists := routeFeatures[order.OrderID]; exists {
			distance, traffic, risk := rf.DistanceKM, rf.TrafficDelayMinutes, rf.RouteRiskScore
			record.DistanceKM = &distance
			record.TrafficDelayMinutes = &traffic
			record.WeatherImpact = rf.WeatherImpact
			record.RouteRiskScore = &risk
		}

		if vf, exists := vehicleFeatures[order.OrderID]; exists {
			record.VehicleType = vf.VehicleType
			if vf.Profile != nil {
				age, eff, capacity, emissions, score := vf.Profile.MeanAgeYears, vf.Profile.MeanFuelEfficiency,
					vf.Profile.MeanCapacityKG, vf.Profile.MeanEmissions, vf.Profile.SuitabilityScore
				record.VehicleAgeYears = &age
				record.VehicleFuelEfficiency = &eff
				record.VehicleCapacityKG = &capacity
				record.VehicleEmissions = &emissions
				record.VehicleSuitabilityScore = &score
			}
		}

		if cf, exists := customerFeatures[order.OrderID]; exists {
			record.SegmentAvgRating = cf.SegmentAvgRating
			record.SegmentRecommendPct = cf.SegmentRecommendPct
			record.DissatisfactionRisk = cf.DissatisfactionRisk
		}

		if costf, exists := costFeatures[order.OrderID]; exists {
			total := costf.TotalCost
			record.TotalCost = &total
			components := make(models.JSONB, len(costf.Components))
			for column, amount := range costf.Components {
				components[column] = amount
			}
			record.CostComponents = components
		}

		records = append(records, record)
	}

	a.imputeScores(records)

	return records, nil
}

// imputeScores 对连接后仍缺失的综合评分执行插补
// 统计量基于整批已连接记录计算；批内无观测值时跳过插补
func (a *MasterAssembler) imputeScores(records []models.MasterRecord) {
	var routeScores, vehicleScores []float64
	for i := range records {
		if records[i].RouteRiskScore != nil {
			routeScores = append(routeScores, *records[i].RouteRiskScore)
		}
		if records[i].VehicleSuitabilityScore != nil {
			vehicleScores = append(vehicleScores, *records[i].VehicleSuitabilityScore)
		}
	}

	if len(routeScores) > 0 {
		median := medianOf(routeScores)
		for i := range records {
			if records[i].RouteRiskScore == nil {
				value := median
				records[i].RouteRiskScore = &value
			}
		}
	}

	if len(vehicleScores) > 0 {
		mean := meanOf(vehicleScores)
		for i := range records {
			if records[i].VehicleSuitabilityScore == nil {
				value := mean
				records[i].VehicleSuitabilityScore = &value
			}
		}
	}
}

// medianOf 计算中位数，偶数个取中间两数均值
func medianOf(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// meanOf 计算均值
func meanOf(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

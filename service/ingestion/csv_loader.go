/*
 * @module service/ingestion/csv_loader
 * @description CSV数据装载器，从数据目录读取七个物流数据集并写入数据库
 * @architecture 数据接入层 - 文件解析 + 批量入库
 * @stateFlow 读文件 -> 字符集检测 -> 表头索引 -> 逐行解析 -> 清表重载 -> 状态标记
 * @rules 订单数据集缺失为致命错误；其余数据集缺失仅记录状态并继续；
 *        单行解析失败跳过该行并计数，不中断整个数据集的装载
 * @dependencies encoding/csv, gorm.io/gorm, github.com/google/uuid
 * @refs service/meta/datasets.go, service/models/logistics.go, service/pipeline/pipeline_service.go
 */

package ingestion

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"logistics-intel-service/service/meta"
	"logistics-intel-service/service/models"
	"logistics-intel-service/service/utils"
)

// CSVLoader CSV数据装载器
type CSVLoader struct {
	db      *gorm.DB
	dataDir string
}

// DatasetLoadResult 单个数据集的装载结果
type DatasetLoadResult struct {
	Dataset     string `json:"dataset"`
	SourceFile  string `json:"source_file"`
	RowCount    int64  `json:"row_count"`
	SkippedRows int64  `json:"skipped_rows"`
	IsPresent   bool   `json:"is_present"`
	Error       string `json:"error,omitempty"`
}

// NewCSVLoader 创建CSV数据装载器
// dataDir 为空时从 DATA_DIR 环境变量读取，默认 ./data
func NewCSVLoader(db *gorm.DB, dataDir string) *CSVLoader {
	if dataDir == "" {
		dataDir = os.Getenv("DATA_DIR")
	}
	if dataDir == "" {
		dataDir = "./data"
	}
	return &CSVLoader{db: db, dataDir: dataDir}
}

// LoadAll 装载全部七个数据集
// 订单数据集缺失返回错误，其余数据集缺失仅在结果中标记
func (l *CSVLoader) LoadAll(ctx context.Context) ([]*DatasetLoadResult, error) {
	results := make([]*DatasetLoadResult, 0, len(meta.GetAllDatasets()))

	for _, dataset := range meta.GetAllDatasets() {
		result := l.LoadDataset(ctx, dataset)
		results = append(results, result)

		if dataset == meta.DatasetOrders && !result.IsPresent {
			return results, fmt.Errorf("订单数据源缺失，无法继续装载: %s", result.Error)
		}
	}

	return results, nil
}

// LoadDataset 装载指定数据集
func (l *CSVLoader) LoadDataset(ctx context.Context, dataset string) *DatasetLoadResult {
	sourceFile := meta.DatasetSourceFiles[dataset]
	result := &DatasetLoadResult{
		Dataset:    dataset,
		SourceFile: sourceFile,
	}

	rows, header, err := l.readCSV(filepath.Join(l.dataDir, sourceFile))
	if err != nil {
		result.Error = err.Error()
		slog.Warn("数据集装载失败", "dataset", dataset, "file", sourceFile, "error", err)
		l.saveStatus(result)
		return result
	}

	loaded, skipped, err := l.persistRows(ctx, dataset, header, rows)
	if err != nil {
		result.Error = err.Error()
		l.saveStatus(result)
		return result
	}

	result.RowCount = loaded
	result.SkippedRows = skipped
	result.IsPresent = true
	l.saveStatus(result)

	slog.Info("数据集装载完成",
		"dataset", dataset,
		"rows", loaded,
		"skipped", skipped)
	return result
}

// readCSV 读取并解析CSV文件，返回表头索引与数据行
func (l *CSVLoader) readCSV(path string) ([][]string, map[string]int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("读取文件失败: %w", err)
	}

	utf8Data, err := utils.EnsureUTF8(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("字符集转换失败: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(utf8Data))
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("CSV解析失败: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("CSV文件为空")
	}

	header := make(map[string]int, len(records[0]))
	for i, cell := range records[0] {
		header[utils.NormalizeHeader(cell)] = i
	}

	return records[1:], header, nil
}

// persistRows 按数据集类型解析数据行并清表重载
func (l *CSVLoader) persistRows(ctx context.Context, dataset string, header map[string]int, rows [][]string) (int64, int64, error) {
	for _, col := range meta.DatasetColumns[dataset] {
		if _, ok := header[col]; !ok {
			return 0, 0, fmt.Errorf("数据集 %s 缺少必需列: %s", dataset, col)
		}
	}

	var entities []interface{}
	var skipped int64

	for _, row := range rows {
		entity, err := l.parseRow(dataset, header, row)
		if err != nil {
			skipped++
			slog.Debug("跳过无法解析的数据行", "dataset", dataset, "error", err)
			continue
		}
		entities = append(entities, entity)
	}

	if err := l.replaceAll(ctx, dataset, entities); err != nil {
		return 0, skipped, err
	}

	return int64(len(entities)), skipped, nil
}

// parseRow 解析单行数据为对应的模型实体
func (l *CSVLoader) parseRow(dataset string, header map[string]int, row []string) (interface{}, error) {
	cell := func(col string) string {
		idx, ok := header[col]
		if !ok || idx >= len(row) {
			return ""
		}
		return row[idx]
	}

	switch dataset {
	case meta.DatasetOrders:
		orderValue, err := utils.ParseFloat(cell("Order_Value_INR"))
		if err != nil {
			return nil, err
		}
		orderDate, err := utils.ParseDate(cell("Order_Date"))
		if err != nil {
			return nil, err
		}
		orderID := cell("Order_ID")
		if orderID == "" {
			return nil, fmt.Errorf("订单ID为空")
		}
		return &models.Order{
			OrderID:         orderID,
			Origin:          cell("Origin"),
			Destination:     cell("Destination"),
			Priority:        cell("Priority"),
			ProductCategory: cell("Product_Category"),
			CustomerSegment: cell("Customer_Segment"),
			OrderValueINR:   orderValue,
			OrderDate:       orderDate,
		}, nil

	case meta.DatasetDelivery:
		promised, err := utils.ParseFloat(cell("Promised_Delivery_Days"))
		if err != nil {
			return nil, err
		}
		actual, err := utils.ParseFloat(cell("Actual_Delivery_Days"))
		if err != nil {
			return nil, err
		}
		return &models.DeliveryPerformance{
			OrderID:              cell("Order_ID"),
			PromisedDeliveryDays: promised,
			ActualDeliveryDays:   actual,
			Carrier:              cell("Carrier"),
		}, nil

	case meta.DatasetRoutes:
		distance, err := utils.ParseFloat(cell("Distance_KM"))
		if err != nil {
			return nil, err
		}
		traffic, err := utils.ParseFloat(cell("Traffic_Delay_Minutes"))
		if err != nil {
			return nil, err
		}
		return &models.RouteRecord{
			OrderID:             cell("Order_ID"),
			DistanceKM:          distance,
			TrafficDelayMinutes: traffic,
			WeatherImpact:       cell("Weather_Impact"),
		}, nil

	case meta.DatasetFleet:
		age, err := utils.ParseFloat(cell("Age_Years"))
		if err != nil {
			return nil, err
		}
		efficiency, err := utils.ParseFloat(cell("Fuel_Efficiency_KM_per_L"))
		if err != nil {
			return nil, err
		}
		capacity, err := utils.ParseFloat(cell("Capacity_KG"))
		if err != nil {
			return nil, err
		}
		emissions, err := utils.ParseFloat(cell("CO2_Emissions_Kg_per_KM"))
		if err != nil {
			return nil, err
		}
		vehicleID := cell("Vehicle_ID")
		if vehicleID == "" {
			vehicleID = uuid.New().String()
		}
		return &models.FleetVehicle{
			VehicleID:            vehicleID,
			VehicleType:          cell("Vehicle_Type"),
			AgeYears:             age,
			FuelEfficiencyKMPerL: efficiency,
			CapacityKG:           capacity,
			CO2EmissionsKgPerKM:  emissions,
		}, nil

	case meta.DatasetWarehouse:
		stock, err := utils.ParseFloat(cell("Stock_Level"))
		if err != nil {
			return nil, err
		}
		reorder, err := utils.ParseFloat(cell("Reorder_Point"))
		if err != nil {
			return nil, err
		}
		return &models.WarehouseInventory{
			ID:              uuid.New().String(),
			Warehouse:       cell("Warehouse"),
			ProductCategory: cell("Product_Category"),
			StockLevel:      stock,
			ReorderPoint:    reorder,
		}, nil

	case meta.DatasetFeedback:
		rating, err := utils.ParseFloat(cell("Rating"))
		if err != nil {
			return nil, err
		}
		return &models.CustomerFeedback{
			OrderID:        cell("Order_ID"),
			Rating:         rating,
			WouldRecommend: cell("Would_Recommend"),
			IssueCategory:  cell("Issue_Category"),
		}, nil

	case meta.DatasetCosts:
		orderID := cell("Order_ID")
		if orderID == "" {
			return nil, fmt.Errorf("订单ID为空")
		}
		// 除 Order_ID 外的列全部以动态键值保存，由成本特征构建器按令牌发现
		components := make(models.JSONB)
		for col, idx := range header {
			if col == "Order_ID" || idx >= len(row) {
				continue
			}
			if value, err := utils.ParseFloat(row[idx]); err == nil {
				components[col] = value
			} else {
				components[col] = row[idx]
			}
		}
		return &models.CostRecord{
			OrderID:    orderID,
			Components: components,
		}, nil

	default:
		return nil, fmt.Errorf("未知数据集: %s", dataset)
	}
}

// replaceAll 在事务中清空目标表并批量写入新数据
func (l *CSVLoader) replaceAll(ctx context.Context, dataset string, entities []interface{}) error {
	model := datasetModel(dataset)
	if model == nil {
		return fmt.Errorf("未知数据集: %s", dataset)
	}

	return l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
			return fmt.Errorf("清空数据集表失败: %w", err)
		}
		for _, entity := range entities {
			if err := tx.Create(entity).Error; err != nil {
				return fmt.Errorf("写入数据集记录失败: %w", err)
			}
		}
		return nil
	})
}

// datasetModel 返回数据集对应的模型零值
func datasetModel(dataset string) interface{} {
	switch dataset {
	case meta.DatasetOrders:
		return &models.Order{}
	case meta.DatasetDelivery:
		return &models.DeliveryPerformance{}
	case meta.DatasetRoutes:
		return &models.RouteRecord{}
	case meta.DatasetFleet:
		return &models.FleetVehicle{}
	case meta.DatasetWarehouse:
		return &models.WarehouseInventory{}
	case meta.DatasetFeedback:
		return &models.CustomerFeedback{}
	case meta.DatasetCosts:
		return &models.CostRecord{}
	default:
		return nil
	}
}

// saveStatus 持久化数据集装载状态（按名称覆盖）
func (l *CSVLoader) saveStatus(result *DatasetLoadResult) {
	status := &models.DatasetStatus{
		Name:       result.Dataset,
		SourceFile: result.SourceFile,
		RowCount:   result.RowCount,
		IsPresent:  result.IsPresent,
		LoadError:  result.Error,
		LoadedAt:   time.Now(),
	}

	var existing models.DatasetStatus
	err := l.db.Where("name = ?", result.Dataset).First(&existing).Error
	if err == nil {
		status.ID = existing.ID
		if err := l.db.Model(&models.DatasetStatus{}).Where("id = ?", existing.ID).Updates(map[string]interface{}{
			"source_file": status.SourceFile,
			"row_count":   status.RowCount,
			"is_present":  status.IsPresent,
			"load_error":  status.LoadError,
			"loaded_at":   status.LoadedAt,
		}).Error; err != nil {
			slog.Warn("更新数据集状态失败", "dataset", result.Dataset, "error", err)
		}
		return
	}

	if err := l.db.Create(status).Error; err != nil {
		slog.Warn("保存数据集状态失败", "dataset", result.Dataset, "error", err)
	}
}

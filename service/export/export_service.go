/*
 * @module service/export/export_service
 * @description 数据导出服务：主数据集CSV导出与导出API密钥管理
 * @architecture 业务服务层
 * @stateFlow 密钥验证 -> 查询主表 -> CSV序列化 -> 流式写出
 * @rules 导出列集合固定且有序（订单属性+派生特征+建议），与主表JSON契约一致；
 *        API密钥仅保存bcrypt哈希，明文只在创建时返回一次
 * @dependencies gorm.io/gorm, golang.org/x/crypto/bcrypt
 * @refs service/models/master.go, api/controllers/recommendation_controller.go
 */

package export

import (
	"crypto/rand"
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"logistics-intel-service/service/models"
)

// ExportColumns 导出CSV的固定列顺序
var ExportColumns = []string{
	"Order_ID", "Origin", "Destination", "Priority", "Product_Category",
	"Customer_Segment", "Order_Value_INR", "Order_Date", "order_dow", "order_month",
	"Promised_Delivery_Days", "Actual_Delivery_Days", "Carrier", "delay_days", "is_delayed",
	"Distance_KM", "Traffic_Delay_Minutes", "Weather_Impact", "route_risk_score",
	"vehicle_type", "vehicle_suitability_score",
	"segment_avg_rating", "segment_recommend_pct", "customer_dissatisfaction_risk",
	"total_cost",
	"delay_probability", "customer_risk_probability",
	"Action", "Reason", "Cost_Impact", "Service_Impact",
}

// ExportService 数据导出服务
type ExportService struct {
	db *gorm.DB
}

// NewExportService 创建数据导出服务
func NewExportService(db *gorm.DB) *ExportService {
	return &ExportService{db: db}
}

// === CSV导出 ===

// ExportMasterCSV 导出指定运行的主数据集为CSV
// runID 为空时导出最近一次成功运行的结果
func (s *ExportService) ExportMasterCSV(w io.Writer, runID string) (int64, error) {
	if runID == "" {
		var run models.PipelineRun
		err := s.db.Where("status = ?", models.RunStatusSuccess).
			Order("start_time DESC").First(&run).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, errors.New("没有可导出的流水线运行结果")
			}
			return 0, fmt.Errorf("查询最近运行失败: %w", err)
		}
		runID = run.ID
	}

	var records []models.MasterRecord
	if err := s.db.Where("run_id = ?", runID).Order("order_id").Find(&records).Error; err != nil {
		return 0, fmt.Errorf("查询主数据集失败: %w", err)
	}
	if len(records) == 0 {
		return 0, fmt.Errorf("运行 %s 没有主数据集记录", runID)
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(ExportColumns); err != nil {
		return 0, fmt.Errorf("写入CSV表头失败: %w", err)
	}

	for i := range records {
		if err := writer.Write(recordToRow(&records[i])); err != nil {
			return 0, fmt.Errorf("写入CSV数据行失败: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return 0, fmt.Errorf("CSV输出失败: %w", err)
	}

	return int64(len(records)), nil
}

// recordToRow 将主记录序列化为与 ExportColumns 对齐的一行
func recordToRow(r *models.MasterRecord) []string {
	return []string{
		r.OrderID, r.Origin, r.Destination, r.Priority, r.ProductCategory,
		r.CustomerSegment, formatFloat(r.OrderValueINR), r.OrderDate.Format("2006-01-02"),
		strconv.Itoa(r.OrderDOW), strconv.Itoa(r.OrderMonth),
		formatFloatPtr(r.PromisedDeliveryDays), formatFloatPtr(r.ActualDeliveryDays),
		r.Carrier, formatFloatPtr(r.DelayDays), formatBoolPtr(r.IsDelayed),
		formatFloatPtr(r.DistanceKM), formatFloatPtr(r.TrafficDelayMinutes),
		r.WeatherImpact, formatFloatPtr(r.RouteRiskScore),
		r.VehicleType, formatFloatPtr(r.VehicleSuitabilityScore),
		formatFloatPtr(r.SegmentAvgRating), formatFloatPtr(r.SegmentRecommendPct),
		formatBoolPtr(r.DissatisfactionRisk),
		formatFloatPtr(r.TotalCost),
		formatFloatPtr(r.DelayProbability), formatFloatPtr(r.CustomerRiskProbability),
		r.Action, r.Reason, r.CostImpact, r.ServiceImpact,
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// formatFloatPtr nil 表示来源缺失，导出为空单元格
func formatFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func formatBoolPtr(v *bool) string {
	if v == nil {
		return ""
	}
	return strconv.FormatBool(*v)
}

// === 导出API密钥管理 ===

// CreateApiKey 创建导出API密钥
// 返回完整Key值（仅此一次），数据库只存储其bcrypt哈希
func (s *ExportService) CreateApiKey(name string) (*models.ExportApiKey, string, error) {
	if name == "" {
		return nil, "", errors.New("密钥名称不能为空")
	}

	fullKey, err := generateRandomKey(32)
	if err != nil {
		return nil, "", fmt.Errorf("生成密钥失败: %w", err)
	}
	keyPrefix := fullKey[:8]

	hashedKey, err := bcrypt.GenerateFromPassword([]byte(fullKey), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("密钥哈希失败: %w", err)
	}

	apiKey := &models.ExportApiKey{
		Name:      name,
		KeyHash:   string(hashedKey),
		KeyPrefix: keyPrefix,
		IsEnabled: true,
	}

	if err := s.db.Create(apiKey).Error; err != nil {
		return nil, "", fmt.Errorf("保存密钥失败: %w", err)
	}

	return apiKey, fullKey, nil
}

// ListApiKeys 获取所有密钥信息（不含密钥本身）
func (s *ExportService) ListApiKeys() ([]models.ExportApiKey, error) {
	var keys []models.ExportApiKey
	if err := s.db.Order("created_at DESC").Find(&keys).Error; err != nil {
		return nil, err
	}
	return keys, nil
}

// RevokeApiKey 吊销（删除）密钥
func (s *ExportService) RevokeApiKey(id string) error {
	return s.db.Delete(&models.ExportApiKey{}, "id = ?", id).Error
}

// VerifyApiKey 验证导出API密钥
func (s *ExportService) VerifyApiKey(keyValue string) (*models.ExportApiKey, error) {
	if len(keyValue) < 8 {
		return nil, errors.New("无效的API Key格式")
	}

	keyPrefix := keyValue[:8]

	var keys []models.ExportApiKey
	if err := s.db.Where("key_prefix = ? AND is_enabled = ?", keyPrefix, true).Find(&keys).Error; err != nil {
		return nil, err
	}

	// 前缀可能碰撞，逐个比对完整哈希
	for i := range keys {
		if err := bcrypt.CompareHashAndPassword([]byte(keys[i].KeyHash), []byte(keyValue)); err == nil {
			now := time.Now()
			s.db.Model(&keys[i]).Update("last_used_at", now)
			return &keys[i], nil
		}
	}

	return nil, errors.New("无效的API Key")
}

// generateRandomKey 生成指定字节数的随机密钥（hex编码）
func generateRandomKey(bytes int) (string, error) {
	buf := make([]byte, bytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

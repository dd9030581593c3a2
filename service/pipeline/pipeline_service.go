/*
 * @module service/pipeline/pipeline_service
 * @description 流水线编排服务：装载数据集 -> 特征融合 -> 模型打分 -> 决策标注 -> 持久化与通知
 * @architecture 分层架构 - 编排层
 * @stateFlow 创建运行记录 -> 装载六源 -> 并行特征构建与装配 -> 编码器拟合与持久化 ->
 *            批量打分 -> 规则级联求值 -> 主记录落库 -> 事件通知
 * @rules 仅订单源缺失导致运行失败；其余来源缺失降级为空值继续；
 *        打分失败上抛并终止本次运行（主记录仍落库，便于排查）；
 *        决策求值失败按记录隔离，不影响整批
 * @dependencies gorm.io/gorm, logistics-intel-service/service/assembler, service/decision, service/scoring
 * @refs service/pipeline/scheduler.go, service/event/
 */

package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"logistics-intel-service/service/assembler"
	"logistics-intel-service/service/decision"
	"logistics-intel-service/service/event"
	"logistics-intel-service/service/feature"
	"logistics-intel-service/service/models"
	"logistics-intel-service/service/scoring"
)

// 决策求值的并发度
const decisionWorkers = 8

// PipelineService 流水线编排服务
type PipelineService struct {
	db        *gorm.DB
	compiler  *decision.ScriptRuleCompiler
	publisher *event.KafkaPublisher
	notifier  *event.EventService
}

// NewPipelineService 创建流水线编排服务
// publisher 与 notifier 可为 nil（通知为尽力而为，不影响流水线结果）
func NewPipelineService(db *gorm.DB, publisher *event.KafkaPublisher, notifier *event.EventService) *PipelineService {
	return &PipelineService{
		db:        db,
		compiler:  decision.NewScriptRuleCompiler(),
		publisher: publisher,
		notifier:  notifier,
	}
}

// RunPipeline 执行一次完整流水线运行
func (s *PipelineService) RunPipeline(ctx context.Context, triggeredBy string) (*models.PipelineRun, error) {
	run := &models.PipelineRun{
		Status:      models.RunStatusRunning,
		TriggeredBy: triggeredBy,
		StartTime:   time.Now(),
	}
	if err := s.db.Create(run).Error; err != nil {
		return nil, fmt.Errorf("创建运行记录失败: %w", err)
	}

	records, err := s.execute(ctx, run)
	if err != nil {
		s.finishRun(run, models.RunStatusFailed, err.Error())
		runsTotal.WithLabelValues(models.RunStatusFailed).Inc()
		s.notify(ctx, models.EventTypePipelineFailed, map[string]interface{}{
			"run_id": run.ID,
			"error":  err.Error(),
		})
		return run, err
	}

	// 统计建议分布
	actionCounts := make(models.JSONB)
	for i := range records {
		if records[i].Action == "" {
			continue
		}
		key := records[i].Action
		count, _ := actionCounts[key].(int)
		actionCounts[key] = count + 1
		recommendationsTotal.WithLabelValues(key).Inc()
	}
	run.ActionCounts = actionCounts
	run.TotalOrders = int64(len(records))

	s.finishRun(run, models.RunStatusSuccess, "")
	runsTotal.WithLabelValues(models.RunStatusSuccess).Inc()
	runDuration.Observe(float64(run.Duration) / 1000)

	s.notify(ctx, models.EventTypePipelineCompleted, map[string]interface{}{
		"run_id":        run.ID,
		"total_orders":  run.TotalOrders,
		"action_counts": actionCounts,
	})

	return run, nil
}

// execute 流水线主体，返回已落库的主记录
func (s *PipelineService) execute(ctx context.Context, run *models.PipelineRun) ([]models.MasterRecord, error) {
	bundle, missing, err := s.loadBundle()
	if err != nil {
		return nil, err
	}
	run.MissingSources = missing

	// 策略配置注入特征构建器
	weather, carriers, defaultType, policy, err := s.loadPolicies()
	if err != nil {
		return nil, err
	}

	masterAssembler := assembler.NewMasterAssembler(
		feature.NewRouteFeatureBuilder(weather),
		feature.NewVehicleFeatureBuilder(carriers, defaultType),
	)

	records, err := masterAssembler.Assemble(bundle)
	if err != nil {
		return nil, fmt.Errorf("主数据集装配失败: %w", err)
	}

	// 拟合类别编码器并持久化为本次运行的版本化工件
	encoder := scoring.FitEncoder(records)
	artifact := encoder.ToArtifact(run.ID)
	artifact.IsActive = true
	if err := s.db.Create(artifact).Error; err != nil {
		return nil, fmt.Errorf("持久化编码器工件失败: %w", err)
	}

	// 批量打分：每个目标一次同步调用，失败直接上抛
	extractor := scoring.NewFeatureExtractor(encoder)
	delayProbs, err := scoring.PredictDelay(ctx, extractor.DelayFeatures(records))
	if err != nil {
		s.persistRecords(run.ID, records)
		return nil, fmt.Errorf("延迟概率打分失败: %w", err)
	}
	riskProbs, err := scoring.PredictCustomerRisk(ctx, extractor.CustomerRiskFeatures(records))
	if err != nil {
		s.persistRecords(run.ID, records)
		return nil, fmt.Errorf("客户风险打分失败: %w", err)
	}
	for i := range records {
		records[i].DelayProbability = &delayProbs[i]
		records[i].CustomerRiskProbability = &riskProbs[i]
	}
	run.ScoredOrders = int64(len(records))

	// 决策求值：内置级联 + 启用的自定义脚本规则
	engine := decision.NewDecisionEngine(policy)
	scriptRules, errs := s.loadScriptRules()
	for _, e := range errs {
		slog.Warn("脚本规则编译失败", "error", e)
	}
	engine.SetScriptRules(scriptRules)

	errorCount := engine.EvaluateBatch(records, decisionWorkers)
	run.DecisionErrors = errorCount
	if errorCount > 0 {
		decisionErrorsTotal.Add(float64(errorCount))
	}

	if err := s.persistRecords(run.ID, records); err != nil {
		return nil, err
	}

	return records, nil
}

// loadBundle 从存储装载参与融合的数据集，缺失来源标记后继续
func (s *PipelineService) loadBundle() (*assembler.SourceBundle, models.JSONBStringArray, error) {
	bundle := &assembler.SourceBundle{}
	var missing models.JSONBStringArray

	// 订单按主键排序装载，保证装配结果可重现
	if err := s.db.Order("order_id").Find(&bundle.Orders).Error; err != nil {
		return nil, nil, fmt.Errorf("装载订单数据失败: %w", err)
	}
	if len(bundle.Orders) == 0 {
		return nil, nil, fmt.Errorf("订单数据源为空，订单是根实体，无法继续")
	}

	if err := s.db.Order("order_id").Find(&bundle.Deliveries).Error; err != nil {
		slog.Warn("装载配送数据失败，按缺失来源处理", "error", err)
	}
	if len(bundle.Deliveries) == 0 {
		missing = append(missing, "delivery")
	}

	if err := s.db.Order("order_id").Find(&bundle.Routes).Error; err != nil {
		slog.Warn("装载路线数据失败，按缺失来源处理", "error", err)
	}
	if len(bundle.Routes) == 0 {
		missing = append(missing, "routes")
	}

	if err := s.db.Order("vehicle_id").Find(&bundle.Fleet).Error; err != nil {
		slog.Warn("装载车队数据失败，按缺失来源处理", "error", err)
	}
	if len(bundle.Fleet) == 0 {
		missing = append(missing, "fleet")
	}

	if err := s.db.Order("order_id").Find(&bundle.Feedback).Error; err != nil {
		slog.Warn("装载反馈数据失败，按缺失来源处理", "error", err)
	}
	if len(bundle.Feedback) == 0 {
		missing = append(missing, "feedback")
	}

	if err := s.db.Order("order_id").Find(&bundle.Costs).Error; err != nil {
		slog.Warn("装载成本数据失败，按缺失来源处理", "error", err)
	}
	if len(bundle.Costs) == 0 {
		missing = append(missing, "costs")
	}

	return bundle, missing, nil
}

// loadPolicies 装载策略配置：天气映射、承运商映射、决策阈值
// 策略表为空时各构建器回退到内置默认值
func (s *PipelineService) loadPolicies() (map[string]float64, map[string]string, string, *models.DecisionPolicy, error) {
	var severities []models.WeatherSeverity
	if err := s.db.Find(&severities).Error; err != nil {
		return nil, nil, "", nil, fmt.Errorf("装载天气风险映射失败: %w", err)
	}
	weather := make(map[string]float64, len(severities))
	for _, ws := range severities {
		weather[ws.Weather] = ws.Severity
	}

	var mappings []models.CarrierMapping
	if err := s.db.Find(&mappings).Error; err != nil {
		return nil, nil, "", nil, fmt.Errorf("装载承运商映射失败: %w", err)
	}
	carriers := make(map[string]string, len(mappings))
	defaultType := ""
	for _, cm := range mappings {
		carriers[cm.Carrier] = cm.VehicleType
		if cm.IsDefault {
			defaultType = cm.VehicleType
		}
	}

	var policy models.DecisionPolicy
	err := s.db.Where("is_active = ?", true).First(&policy).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			return nil, nil, "", nil, fmt.Errorf("装载决策阈值策略失败: %w", err)
		}
		// 无激活策略时交由决策引擎使用默认阈值
		return weather, carriers, defaultType, nil, nil
	}

	return weather, carriers, defaultType, &policy, nil
}

// loadScriptRules 装载并编译启用的自定义脚本规则，按优先级排序
func (s *PipelineService) loadScriptRules() ([]*decision.CompiledScriptRule, []error) {
	var rules []models.ScriptRule
	if err := s.db.Where("is_enabled = ?", true).Order("priority, name").Find(&rules).Error; err != nil {
		return nil, []error{fmt.Errorf("装载脚本规则失败: %w", err)}
	}
	return s.compiler.CompileAll(rules)
}

// persistRecords 批量落库主记录
func (s *PipelineService) persistRecords(runID string, records []models.MasterRecord) error {
	for i := range records {
		records[i].ID = uuid.New().String()
		records[i].RunID = runID
	}
	if err := s.db.CreateInBatches(records, 500).Error; err != nil {
		return fmt.Errorf("主记录落库失败: %w", err)
	}
	return nil
}

// finishRun 收尾运行记录
func (s *PipelineService) finishRun(run *models.PipelineRun, status, errorMessage string) {
	now := time.Now()
	run.Status = status
	run.EndTime = &now
	run.Duration = now.Sub(run.StartTime).Milliseconds()
	run.ErrorMessage = errorMessage
	if err := s.db.Save(run).Error; err != nil {
		slog.Error("更新运行记录失败", "run_id", run.ID, "error", err)
	}
}

// notify 运行结果通知：Kafka 事件与 SSE 广播均为尽力而为
func (s *PipelineService) notify(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, eventType, data); err != nil {
			slog.Warn("Kafka事件发布失败", "event_type", eventType, "error", err)
		}
	}
	if s.notifier != nil {
		if err := s.notifier.Broadcast(eventType, data); err != nil {
			slog.Warn("SSE事件广播失败", "event_type", eventType, "error", err)
		}
	}
}

// LatestRun 查询最近一次运行记录
func (s *PipelineService) LatestRun() (*models.PipelineRun, error) {
	var run models.PipelineRun
	if err := s.db.Order("start_time DESC").First(&run).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

// GetRun 按 ID 查询运行记录
func (s *PipelineService) GetRun(id string) (*models.PipelineRun, error) {
	var run models.PipelineRun
	if err := s.db.First(&run, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

// ListRuns 分页查询运行记录
func (s *PipelineService) ListRuns(page, size int) ([]models.PipelineRun, int64, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 10
	}

	var total int64
	if err := s.db.Model(&models.PipelineRun{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var runs []models.PipelineRun
	err := s.db.Order("start_time DESC").Offset((page - 1) * size).Limit(size).Find(&runs).Error
	return runs, total, err
}

/*
 * @module api/controllers/policy_controller
 * @description 策略管理控制器，提供决策阈值、承运商映射、天气风险映射与脚本规则的管理API
 * @architecture MVC架构 - 控制器层
 * @stateFlow HTTP请求 -> 策略表读写 -> 响应返回
 * @rules 策略调整只改阈值与映射数据，不改变规则级联的结构与求值顺序；
 *        脚本规则保存前必须通过编译校验
 * @dependencies logistics-intel-service/service, github.com/go-chi/chi/v5, github.com/go-chi/render
 * @refs service/models/policy.go, service/decision/script_rule.go
 */

package controllers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"gorm.io/gorm"

	"logistics-intel-service/service"
	"logistics-intel-service/service/decision"
	"logistics-intel-service/service/models"
)

// PolicyController 策略管理控制器
type PolicyController struct {
	db       *gorm.DB
	compiler *decision.ScriptRuleCompiler
}

// NewPolicyController 创建策略管理控制器实例
func NewPolicyController() *PolicyController {
	return &PolicyController{
		db:       service.DB,
		compiler: decision.NewScriptRuleCompiler(),
	}
}

// === 决策阈值策略 ===

// GetActivePolicy 获取当前激活的阈值策略
// @Summary 获取当前激活的阈值策略
// @Description 获取规则级联使用的阈值策略，无激活策略时返回内置默认值
// @Tags 策略管理
// @Produce json
// @Success 200 {object} APIResponse
// @Router /policies/decision [get]
func (c *PolicyController) GetActivePolicy(w http.ResponseWriter, r *http.Request) {
	var policy models.DecisionPolicy
	err := c.db.Where("is_active = ?", true).First(&policy).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			render.Render(w, r, SuccessResponse("无激活策略，返回内置默认阈值", decision.DefaultPolicy()))
			return
		}
		render.Render(w, r, ErrorResponse(http.StatusInternalServerError, "查询阈值策略失败", err))
		return
	}
	render.Render(w, r, SuccessResponse("获取阈值策略成功", policy))
}

// UpdatePolicyRequest 更新阈值策略请求
type UpdatePolicyRequest struct {
	DelayProbEscalate     *float64 `json:"delay_prob_escalate"`
	RouteRiskThreshold    *float64 `json:"route_risk_threshold"`
	VehicleScoreThreshold *float64 `json:"vehicle_score_threshold"`
	DelayProbReassign     *float64 `json:"delay_prob_reassign"`
}

// UpdateActivePolicy 更新当前激活的阈值策略
// @Summary 更新阈值策略
// @Description 更新激活策略的阈值参数，只传需要调整的字段
// @Tags 策略管理
// @Accept json
// @Produce json
// @Param request body UpdatePolicyRequest true "阈值更新请求"
// @Success 200 {object} APIResponse
// @Router /policies/decision [put]
func (c *PolicyController) UpdateActivePolicy(w http.ResponseWriter, r *http.Request) {
	var req UpdatePolicyRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Render(w, r, ErrorResponse(http.StatusBadRequest, "请求参数解析失败", err))
		return
	}

	updates := map[string]interface{}{}
	if req.DelayProbEscalate != nil {
		updates["delay_prob_escalate"] = *req.DelayProbEscalate
	}
	if req.RouteRiskThreshold != nil {
		updates["route_risk_threshold"] = *req.RouteRiskThreshold
	}
	if req.VehicleScoreThreshold != nil {
		updates["vehicle_score_threshold"] = *req.VehicleScoreThreshold
	}
	if req.DelayProbReassign != nil {
		updates["delay_prob_reassign"] = *req.DelayProbReassign
	}
	if len(updates) == 0 {
		render.Render(w, r, ErrorResponse(http.StatusBadRequest, "没有需要更新的字段", nil))
		return
	}

	result := c.db.Model(&models.DecisionPolicy{}).Where("is_active = ?", true).Updates(updates)
	if result.Error != nil {
		render.Render(w, r, ErrorResponse(http.StatusInternalServerError, "更新阈值策略失败", result.Error))
		return
	}
	if result.RowsAffected == 0 {
		render.Render(w, r, ErrorResponse(http.StatusNotFound, "没有激活的阈值策略", nil))
		return
	}

	render.Render(w, r, SuccessResponse("阈值策略更新成功", nil))
}

// === 承运商映射 ===

// ListCarrierMappings 获取承运商-车型映射
// @Summary 获取承运商映射
// @Description 获取全部承运商到车队车型的映射及默认回退车型
// @Tags 策略管理
// @Produce json
// @Success 200 {object} APIResponse
// @Router /policies/carrier-mappings [get]
func (c *PolicyController) ListCarrierMappings(w http.ResponseWriter, r *http.Request) {
	var mappings []models.CarrierMapping
	if err := c.db.Order("carrier").Find(&mappings).Error; err != nil {
		render.Render(w, r, ErrorResponse(http.StatusInternalServerError, "查询承运商映射失败", err))
		return
	}
	render.Render(w, r, SuccessResponse("获取承运商映射成功", mappings))
}

// UpsertCarrierMappingRequest 承运商映射写入请求
type UpsertCarrierMappingRequest struct {
	Carrier     string `json:"carrier"`
	VehicleType string `json:"vehicle_type"`
	IsDefault   bool   `json:"is_default"`
}

// UpsertCarrierMapping 新增或更新承运商映射
// @Summary 新增或更新承运商映射
// @Description 按承运商名写入映射，已存在时覆盖车型
// @Tags 策略管理
// @Accept json
// @Produce json
// @Param request body UpsertCarrierMappingRequest true "映射写入请求"
// @Success 200 {object} APIResponse
// @Router /policies/carrier-mappings [post]
func (c *PolicyController) UpsertCarrierMapping(w http.ResponseWriter, r *http.Request) {
	var req UpsertCarrierMappingRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Render(w, r, ErrorResponse(http.StatusBadRequest, "请求参数解析失败", err))
		return
	}
	if req.Carrier == "" || req.VehicleType == "" {
		render.Render(w, r, ErrorResponse(http.StatusBadRequest, "承运商与车型不能为空", nil))
		return
	}

	var mapping models.CarrierMapping
	err := c.db.Where("carrier = ?", req.Carrier).First(&mapping).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			render.Render(w, r, ErrorResponse(http.StatusInternalServerError, "查询承运商映射失败", err))
			return
		}
		mapping = models.CarrierMapping{
			Carrier:     req.Carrier,
			VehicleType: req.VehicleType,
			IsDefault:   req.IsDefault,
		}
		if err := c.db.Create(&mapping).Error; err != nil {
			render.Render(w, r, ErrorResponse(http.StatusInternalServerError, "创建承运商映射失败", err))
			return
		}
		render.Render(w, r, SuccessResponse("承运商映射创建成功", mapping))
		return
	}

	updates := map[string]interface{}{
		"vehicle_type": req.VehicleType,
		"is_default":   req.IsDefault,
	}
	if err := c.db.Model(&mapping).Updates(updates).Error; err != nil {
		render.Render(w, r, ErrorResponse(http.StatusInternalServerError, "更新承运商映射失败", err))
		return
	}
	render.Render(w, r, SuccessResponse("承运商映射更新成功", mapping))
}

// DeleteCarrierMapping 删除承运商映射
// @Summary 删除承运商映射
// @Tags 策略管理
// @Produce json
// @Param id path string true "映射ID"
// @Success 200 {object} APIResponse
// @Router /policies/carrier-mappings/{id} [delete]
func (c *PolicyController) DeleteCarrierMapping(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := c.db.Delete(&models.CarrierMapping{}, "id = ?", id).Error; err != nil {
		render.Render(w, r, ErrorResponse(http.StatusInternalServerError, "删除承运商映射失败", err))
		return
	}
	render.Render(w, r, SuccessResponse("承运商映射删除成功", nil))
}

// === 天气风险映射 ===

// ListWeatherSeverities 获取天气风险映射
// @Summary 获取天气风险映射
// @Tags 策略管理
// @Produce json
// @Success 200 {object} APIResponse
// @Router /policies/weather-severities [get]
func (c *PolicyController) ListWeatherSeverities(w http.ResponseWriter, r *http.Request) {
	var severities []models.WeatherSeverity
	if err := c.db.Order("severity").Find(&severities).Error; err != nil {
		render.Render(w, r, ErrorResponse(http.StatusInternalServerError, "查询天气风险映射失败", err))
		return
	}
	render.Render(w, r, SuccessResponse("获取天气风险映射成功", severities))
}

// UpsertWeatherSeverityRequest 天气风险映射写入请求
type UpsertWeatherSeverityRequest struct {
	Weather  string  `json:"weather"`
	Severity float64 `json:"severity"`
}

// UpsertWeatherSeverity 新增或更新天气风险映射
// @Summary 新增或更新天气风险映射
// @Description 风险权重必须在 [0,1] 区间内
// @Tags 策略管理
// @Accept json
// @Produce json
// @Param request body UpsertWeatherSeverityRequest true "映射写入请求"
// @Success 200 {object} APIResponse
// @Router /policies/weather-severities [post]
func (c *PolicyController) UpsertWeatherSeverity(w http.ResponseWriter, r *http.Request) {
	var req UpsertWeatherSeverityRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Render(w, r, ErrorResponse(http.StatusBadRequest, "请求参数解析失败", err))
		return
	}
	if req.Weather == "" {
		render.Render(w, r, ErrorResponse(http.StatusBadRequest, "天气类别不能为空", nil))
		return
	}
	if req.Severity < 0 || req.Severity > 1 {
		render.Render(w, r, ErrorResponse(http.StatusBadRequest, "风险权重必须在 [0,1] 区间内", nil))
		return
	}

	var severity models.WeatherSeverity
	err := c.db.Where("weather = ?", req.Weather).First(&severity).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			render.Render(w, r, ErrorResponse(http.StatusInternalServerError, "查询天气风险映射失败", err))
			return
		}
		severity = models.WeatherSeverity{Weather: req.Weather, Severity: req.Severity}
		if err := c.db.Create(&severity).Error; err != nil {
			render.Render(w, r, ErrorResponse(http.StatusInternalServerError, "创建天气风险映射失败", err))
			return
		}
		render.Render(w, r, SuccessResponse("天气风险映射创建成功", severity))
		return
	}

	if err := c.db.Model(&severity).Update("severity", req.Severity).Error; err != nil {
		render.Render(w, r, ErrorResponse(http.StatusInternalServerError, "更新天气风险映射失败", err))
		return
	}
	render.Render(w, r, SuccessResponse("天气风险映射更新成功", severity))
}

// === 脚本规则 ===

// ListScriptRules 获取脚本规则列表
// @Summary 获取脚本规则列表
// @Tags 策略管理
// @Produce json
// @Success 200 {object} APIResponse
// @Router /policies/script-rules [get]
func (c *PolicyController) ListScriptRules(w http.ResponseWriter, r *http.Request) {
	var rules []models.ScriptRule
	if err := c.db.Order("priority, name").Find(&rules).Error; err != nil {
		render.Render(w, r, ErrorResponse(http.StatusInternalServerError, "查询脚本规则失败", err))
		return
	}
	render.Render(w, r, SuccessResponse("获取脚本规则成功", rules))
}

// CreateScriptRuleRequest 创建脚本规则请求
type CreateScriptRuleRequest struct {
	Name          string `json:"name"`
	Script        string `json:"script"`
	Priority      int    `json:"priority"`
	Action        string `json:"action"`
	Reason        string `json:"reason"`
	CostImpact    string `json:"cost_impact"`
	ServiceImpact string `json:"service_impact"`
	IsEnabled     bool   `json:"is_enabled"`
}

// CreateScriptRule 创建脚本规则
// @Summary 创建脚本规则
// @Description 保存前对脚本做编译校验，脚本必须定义 Match(record map[string]interface{}) (bool, error)
// @Tags 策略管理
// @Accept json
// @Produce json
// @Param request body CreateScriptRuleRequest true "脚本规则"
// @Success 200 {object} APIResponse
// @Failure 400 {object} APIResponse "脚本编译失败"
// @Router /policies/script-rules [post]
func (c *PolicyController) CreateScriptRule(w http.ResponseWriter, r *http.Request) {
	var req CreateScriptRuleRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Render(w, r, ErrorResponse(http.StatusBadRequest, "请求参数解析失败", err))
		return
	}
	if req.Name == "" || req.Script == "" || req.Action == "" {
		render.Render(w, r, ErrorResponse(http.StatusBadRequest, "名称、脚本与动作不能为空", nil))
		return
	}

	if err := c.compiler.Validate(req.Script); err != nil {
		render.Render(w, r, ErrorResponse(http.StatusBadRequest, "脚本编译失败", err))
		return
	}

	rule := &models.ScriptRule{
		Name:          req.Name,
		Script:        req.Script,
		Priority:      req.Priority,
		Action:        req.Action,
		Reason:        req.Reason,
		CostImpact:    req.CostImpact,
		ServiceImpact: req.ServiceImpact,
		IsEnabled:     req.IsEnabled,
	}
	if err := c.db.Create(rule).Error; err != nil {
		render.Render(w, r, ErrorResponse(http.StatusInternalServerError, "保存脚本规则失败", err))
		return
	}

	render.Render(w, r, SuccessResponse("脚本规则创建成功", rule))
}

// UpdateScriptRule 更新脚本规则
// @Summary 更新脚本规则
// @Description 更新规则内容，修改脚本时重新做编译校验
// @Tags 策略管理
// @Accept json
// @Produce json
// @Param id path string true "规则ID"
// @Param request body CreateScriptRuleRequest true "脚本规则"
// @Success 200 {object} APIResponse
// @Router /policies/script-rules/{id} [put]
func (c *PolicyController) UpdateScriptRule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var rule models.ScriptRule
	if err := c.db.First(&rule, "id = ?", id).Error; err != nil {
		render.Render(w, r, ErrorResponse(http.StatusNotFound, "脚本规则不存在", nil))
		return
	}

	var req CreateScriptRuleRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		render.Render(w, r, ErrorResponse(http.StatusBadRequest, "请求参数解析失败", err))
		return
	}

	if req.Script != "" && req.Script != rule.Script {
		if err := c.compiler.Validate(req.Script); err != nil {
			render.Render(w, r, ErrorResponse(http.StatusBadRequest, "脚本编译失败", err))
			return
		}
		rule.Script = req.Script
	}
	if req.Name != "" {
		rule.Name = req.Name
	}
	if req.Action != "" {
		rule.Action = req.Action
	}
	rule.Priority = req.Priority
	rule.Reason = req.Reason
	rule.CostImpact = req.CostImpact
	rule.ServiceImpact = req.ServiceImpact
	rule.IsEnabled = req.IsEnabled

	if err := c.db.Save(&rule).Error; err != nil {
		render.Render(w, r, ErrorResponse(http.StatusInternalServerError, "更新脚本规则失败", err))
		return
	}

	render.Render(w, r, SuccessResponse("脚本规则更新成功", rule))
}

// DeleteScriptRule 删除脚本规则
// @Summary 删除脚本规则
// @Tags 策略管理
// @Produce json
// @Param id path string true "规则ID"
// @Success 200 {object} APIResponse
// @Router /policies/script-rules/{id} [delete]
func (c *PolicyController) DeleteScriptRule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := c.db.Delete(&models.ScriptRule{}, "id = ?", id).Error; err != nil {
		render.Render(w, r, ErrorResponse(http.StatusInternalServerError, "删除脚本规则失败", err))
		return
	}
	render.Render(w, r, SuccessResponse("脚本规则删除成功", nil))
}

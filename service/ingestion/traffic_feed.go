/*
 * @module service/ingestion/traffic_feed
 * @description 实时路况订阅器，通过MQTT接收路况更新并刷新路线记录
 * @architecture 数据接入层 - 消息订阅
 * @stateFlow MQTT连接 -> 主题订阅 -> 消息解析 -> 路线记录更新
 * @rules MQTT_BROKER 未配置时订阅器禁用；消息中未知的订单ID直接忽略；
 *        路况更新只改 Traffic_Delay_Minutes 与 Weather_Impact 两列
 * @dependencies github.com/eclipse/paho.mqtt.golang, gorm.io/gorm
 * @refs service/models/logistics.go, service/init.go
 */

package ingestion

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"gorm.io/gorm"

	"logistics-intel-service/service/models"
)

// TrafficUpdate 路况更新消息
type TrafficUpdate struct {
	OrderID             string   `json:"Order_ID"`
	TrafficDelayMinutes *float64 `json:"Traffic_Delay_Minutes,omitempty"`
	WeatherImpact       string   `json:"Weather_Impact,omitempty"`
}

// TrafficFeed 实时路况订阅器
type TrafficFeed struct {
	db          *gorm.DB
	client      mqtt.Client
	topic       string
	received    int64
	applied     int64
	isConnected bool
}

// NewTrafficFeedFromEnv 按环境变量创建路况订阅器
// MQTT_BROKER 未配置时返回 nil，表示禁用实时路况
func NewTrafficFeedFromEnv(db *gorm.DB) *TrafficFeed {
	broker := os.Getenv("MQTT_BROKER")
	if broker == "" {
		slog.Info("MQTT_BROKER 未配置，实时路况订阅已禁用")
		return nil
	}

	topic := os.Getenv("MQTT_TRAFFIC_TOPIC")
	if topic == "" {
		topic = "logistics/traffic/updates"
	}

	feed := &TrafficFeed{
		db:    db,
		topic: topic,
	}

	hostname, _ := os.Hostname()
	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(fmt.Sprintf("logistics-intel-%s-%d", hostname, os.Getpid()))
	opts.SetCleanSession(true)
	opts.SetKeepAlive(30 * time.Second)
	opts.SetAutoReconnect(true)
	opts.SetOnConnectHandler(feed.onConnected)
	opts.SetConnectionLostHandler(feed.onConnectionLost)

	if username := os.Getenv("MQTT_USERNAME"); username != "" {
		opts.SetUsername(username)
		opts.SetPassword(os.Getenv("MQTT_PASSWORD"))
	}

	feed.client = mqtt.NewClient(opts)
	return feed
}

// Start 连接broker并订阅路况主题
func (f *TrafficFeed) Start() error {
	if token := f.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("MQTT连接失败: %w", token.Error())
	}
	return nil
}

// onConnected 连接建立后订阅主题（自动重连后同样触发）
func (f *TrafficFeed) onConnected(client mqtt.Client) {
	f.isConnected = true
	if token := client.Subscribe(f.topic, 1, f.handleMessage); token.Wait() && token.Error() != nil {
		slog.Error("订阅路况主题失败", "topic", f.topic, "error", token.Error())
		return
	}
	slog.Info("实时路况订阅已建立", "topic", f.topic)
}

// onConnectionLost 连接断开回调
func (f *TrafficFeed) onConnectionLost(client mqtt.Client, err error) {
	f.isConnected = false
	slog.Warn("MQTT连接已断开，等待自动重连", "error", err)
}

// handleMessage 处理一条路况更新消息
func (f *TrafficFeed) handleMessage(client mqtt.Client, msg mqtt.Message) {
	atomic.AddInt64(&f.received, 1)

	var update TrafficUpdate
	if err := json.Unmarshal(msg.Payload(), &update); err != nil {
		slog.Warn("路况消息解析失败", "topic", msg.Topic(), "error", err)
		return
	}

	if update.OrderID == "" {
		slog.Warn("路况消息缺少订单ID", "topic", msg.Topic())
		return
	}

	updates := map[string]interface{}{}
	if update.TrafficDelayMinutes != nil {
		updates["traffic_delay_minutes"] = *update.TrafficDelayMinutes
	}
	if update.WeatherImpact != "" {
		updates["weather_impact"] = update.WeatherImpact
	}
	if len(updates) == 0 {
		return
	}

	result := f.db.Model(&models.RouteRecord{}).
		Where("order_id = ?", update.OrderID).
		Updates(updates)
	if result.Error != nil {
		slog.Warn("应用路况更新失败", "order_id", update.OrderID, "error", result.Error)
		return
	}
	if result.RowsAffected > 0 {
		atomic.AddInt64(&f.applied, 1)
	}
}

// Statistics 订阅器统计信息
func (f *TrafficFeed) Statistics() map[string]interface{} {
	return map[string]interface{}{
		"connected": f.isConnected,
		"topic":     f.topic,
		"received":  atomic.LoadInt64(&f.received),
		"applied":   atomic.LoadInt64(&f.applied),
	}
}

// Stop 断开MQTT连接
func (f *TrafficFeed) Stop() {
	if f.client != nil && f.client.IsConnected() {
		f.client.Disconnect(250)
	}
}

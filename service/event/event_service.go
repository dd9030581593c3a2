/*
 * @module service/event/event_service
 * @description 事件管理服务，提供SSE事件推送和数据库变更监听功能
 * @architecture 事件驱动架构 - 业务服务层
 * @stateFlow 事件监听 -> 事件处理 -> 事件分发 -> 客户端推送
 * @rules 推送为尽力而为：客户端队列满时跳过该连接，不阻塞事件源
 * @dependencies logistics-intel-service/service/models, gorm.io/gorm, github.com/lib/pq
 * @refs service/pipeline/pipeline_service.go, api/controllers/event_controller.go
 */

package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"logistics-intel-service/service/models"
)

// NotifyChannel PostgreSQL 通知通道名
const NotifyChannel = "logistics_intel_events"

// getEnvWithDefault 获取环境变量，如果不存在则返回默认值
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// EventService 事件管理服务
type EventService struct {
	db                *gorm.DB
	connections       map[string]map[string]*SSEClient // userName -> connectionID -> client
	mu                sync.RWMutex
	dbEventProcessors map[string]models.DBEventProcessor
	dbListener        *pq.Listener
	ctx               context.Context
	cancel            context.CancelFunc
}

// SSEClient SSE客户端连接
type SSEClient struct {
	ID       string
	UserName string
	Channel  chan *models.SSEEvent
	Done     chan bool
	ClientIP string
}

// NewEventService 创建事件服务实例
func NewEventService(db *gorm.DB) *EventService {
	ctx, cancel := context.WithCancel(context.Background())

	service := &EventService{
		db:                db,
		connections:       make(map[string]map[string]*SSEClient),
		dbEventProcessors: make(map[string]models.DBEventProcessor),
		ctx:               ctx,
		cancel:            cancel,
	}

	// 启动数据库监听器
	go service.startDBListener()

	return service
}

// === SSE连接管理 ===

// AddSSEConnection 添加SSE连接
func (s *EventService) AddSSEConnection(userName, connectionID, clientIP string) *SSEClient {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.connections[userName] == nil {
		s.connections[userName] = make(map[string]*SSEClient)
	}

	client := &SSEClient{
		ID:       connectionID,
		UserName: userName,
		Channel:  make(chan *models.SSEEvent, 100), // 缓冲100个事件
		Done:     make(chan bool),
		ClientIP: clientIP,
	}

	s.connections[userName][connectionID] = client

	log.Printf("SSE连接已建立: 用户=%s, 连接ID=%s, IP=%s", userName, connectionID, clientIP)
	return client
}

// RemoveSSEConnection 移除SSE连接
func (s *EventService) RemoveSSEConnection(userName, connectionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if userConnections, exists := s.connections[userName]; exists {
		if client, exists := userConnections[connectionID]; exists {
			close(client.Done)
			delete(userConnections, connectionID)

			if len(userConnections) == 0 {
				delete(s.connections, userName)
			}

			log.Printf("SSE连接已断开: 用户=%s, 连接ID=%s", userName, connectionID)
		}
	}
}

// SendEventToUser 向指定用户发送事件
func (s *EventService) SendEventToUser(userName string, event *models.SSEEvent) error {
	s.mu.RLock()
	userConnections, exists := s.connections[userName]
	s.mu.RUnlock()

	if !exists {
		return fmt.Errorf("用户 %s 没有活跃的SSE连接", userName)
	}

	// 保存事件到数据库
	if err := s.db.Create(event).Error; err != nil {
		return fmt.Errorf("保存SSE事件失败: %w", err)
	}

	for _, client := range userConnections {
		select {
		case client.Channel <- event:
		default:
			log.Printf("用户 %s 的连接 %s 事件队列已满，跳过发送", userName, client.ID)
		}
	}

	return nil
}

// Broadcast 按事件类型与数据构造事件并广播给所有用户
func (s *EventService) Broadcast(eventType string, data map[string]interface{}) error {
	return s.BroadcastEvent(&models.SSEEvent{
		EventType: eventType,
		UserName:  "broadcast",
		Data:      data,
	})
}

// BroadcastEvent 广播事件给所有用户
func (s *EventService) BroadcastEvent(event *models.SSEEvent) error {
	// 保存事件到数据库
	if err := s.db.Create(event).Error; err != nil {
		return fmt.Errorf("保存广播事件失败: %w", err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for userName, userConnections := range s.connections {
		for _, client := range userConnections {
			eventCopy := *event
			eventCopy.UserName = userName

			select {
			case client.Channel <- &eventCopy:
			default:
				log.Printf("用户 %s 的连接 %s 事件队列已满，跳过广播", userName, client.ID)
			}
		}
	}

	return nil
}

// === 数据库监听管理 ===

// RegisterDBEventProcessor 注册数据库变更事件处理器
func (s *EventService) RegisterDBEventProcessor(processor models.DBEventProcessor) error {
	s.mu.Lock()
	s.dbEventProcessors[processor.TableName()] = processor
	s.mu.Unlock()

	log.Printf("数据库事件处理器已注册: %s", processor.TableName())
	return nil
}

// startDBListener 启动数据库监听器
func (s *EventService) startDBListener() {
	connStr := os.Getenv("DATABASE_URL")
	if connStr == "" {
		host := getEnvWithDefault("DB_HOST", "localhost")
		port := getEnvWithDefault("DB_PORT", "5432")
		user := getEnvWithDefault("DB_USER", "postgres")
		password := getEnvWithDefault("DB_PASSWORD", "postgres")
		dbname := getEnvWithDefault("DB_NAME", "postgres")
		sslmode := getEnvWithDefault("DB_SSLMODE", "disable")

		connStr = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			host, port, user, password, dbname, sslmode)
	}

	s.dbListener = pq.NewListener(connStr, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			log.Printf("PostgreSQL监听器事件: %v, 错误: %v", ev, err)
		}
	})

	if err := s.dbListener.Listen(NotifyChannel); err != nil {
		log.Printf("监听数据库通知失败: %v", err)
		return
	}

	log.Println("数据库监听器已启动")

	for {
		select {
		case notification := <-s.dbListener.Notify:
			if notification != nil {
				s.handleDBNotification(notification)
			}
		case <-s.ctx.Done():
			log.Println("数据库监听器已停止")
			return
		}
	}
}

// handleDBNotification 处理数据库通知
func (s *EventService) handleDBNotification(notification *pq.Notification) {
	var changeData map[string]interface{}
	if err := json.Unmarshal([]byte(notification.Extra), &changeData); err != nil {
		log.Printf("解析数据库通知失败: %v", err)
		return
	}

	tableName, _ := changeData["table"].(string)
	eventType, _ := changeData["type"].(string)

	s.mu.RLock()
	processor, ok := s.dbEventProcessors[tableName]
	s.mu.RUnlock()
	if !ok {
		// 无处理器的表变更直接作为建议变更事件广播
		if err := s.Broadcast(models.EventTypeRecommendationChange, changeData); err != nil {
			log.Printf("广播数据库变更事件失败: 表=%s, 类型=%s, 错误=%v", tableName, eventType, err)
		}
		return
	}

	if err := processor.ProcessDBChangeEvent(changeData); err != nil {
		log.Printf("处理数据库变更事件失败: 表=%s, 错误=%v", tableName, err)
	}
}

// Stop 停止事件服务
func (s *EventService) Stop() {
	s.cancel()
	if s.dbListener != nil {
		s.dbListener.Close()
	}
}

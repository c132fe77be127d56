package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/vdsasi/NoteSharingApp/pkg/metrics"

	"go.uber.org/zap"
)

// Manager tracks every open connection per user and fans note lifecycle
// events out to them.
type Manager struct {
	clients        map[string]*Client
	userIndex      map[string]map[string]bool
	clientsMutex   sync.RWMutex
	Register       chan *Client
	Unregister     chan *Client
	maxConnPerUser int
	writeWait      time.Duration
	pongWait       time.Duration
	pingPeriod     time.Duration
	logger         *zap.Logger
}

func NewManager(maxConnPerUser int, writeWait, pongWait, pingPeriod time.Duration, logger *zap.Logger) *Manager {
	return &Manager{
		clients:        make(map[string]*Client),
		userIndex:      make(map[string]map[string]bool),
		Register:       make(chan *Client),
		Unregister:     make(chan *Client),
		maxConnPerUser: maxConnPerUser,
		writeWait:      writeWait,
		pongWait:       pongWait,
		pingPeriod:     pingPeriod,
		logger:         logger,
	}
}

func (m *Manager) Run() {
	for {
		select {
		case client := <-m.Register:
			m.registerClient(client)

		case client := <-m.Unregister:
			m.unregisterClient(client)
		}
	}
}

func (m *Manager) registerClient(client *Client) {
	m.clientsMutex.Lock()
	defer m.clientsMutex.Unlock()

	if m.userIndex[client.UserID] == nil {
		m.userIndex[client.UserID] = make(map[string]bool)
	}

	if len(m.userIndex[client.UserID]) >= m.maxConnPerUser {
		m.logger.Warn("max connections reached", zap.String("user", client.UserID))
		close(client.Send)
		return
	}

	m.clients[client.ID] = client
	m.userIndex[client.UserID][client.ID] = true
	metrics.WebsocketConnections.Inc()

	m.logger.Info("client registered", zap.String("client", client.ID), zap.String("user", client.UserID))
}

func (m *Manager) unregisterClient(client *Client) {
	m.clientsMutex.Lock()
	defer m.clientsMutex.Unlock()

	if _, ok := m.clients[client.ID]; ok {
		delete(m.clients, client.ID)
		delete(m.userIndex[client.UserID], client.ID)

		if len(m.userIndex[client.UserID]) == 0 {
			delete(m.userIndex, client.UserID)
		}

		close(client.Send)
		metrics.WebsocketConnections.Dec()
		m.logger.Info("client unregistered", zap.String("client", client.ID))
	}
}

// BroadcastToUsers delivers a message to every connection of the given
// users, skipping excludeClientID (the connection that caused the event).
func (m *Manager) BroadcastToUsers(userIDs []string, message *Message, excludeClientID string) error {
	messageBytes, err := json.Marshal(message)
	if err != nil {
		return err
	}

	m.clientsMutex.RLock()
	defer m.clientsMutex.RUnlock()

	for _, userID := range userIDs {
		clientIDs, exists := m.userIndex[userID]
		if !exists {
			continue
		}

		for clientID := range clientIDs {
			if clientID == excludeClientID {
				continue
			}
			client := m.clients[clientID]
			select {
			case client.Send <- messageBytes:
			default:
				m.logger.Warn("send buffer full, dropping client", zap.String("client", clientID))
				go func(c *Client) { m.Unregister <- c }(client)
			}
		}
	}

	return nil
}

func (m *Manager) GetUserConnections(userID string) int {
	m.clientsMutex.RLock()
	defer m.clientsMutex.RUnlock()

	if clients, exists := m.userIndex[userID]; exists {
		return len(clients)
	}
	return 0
}

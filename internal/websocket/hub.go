package websocket

import (
	"encoding/json"
	"strconv"
	"sync"

	"fundchain/internal/models"
)

// TransferNotice is pushed to a recipient's sockets when the ledger commits
// a transfer in their favour.
type TransferNotice struct {
	Type       string `json:"type"`
	TransferID string `json:"transfer_id"`
	Recipient  string `json:"recipient"`
	Amount     string `json:"amount"`
	Reason     string `json:"reason"`
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
}

type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
	}
}

func (h *Hub) Register(accountID string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[accountID] == nil {
		h.clients[accountID] = make(map[*Client]struct{})
	}
	h.clients[accountID][client] = struct{}{}
}

func (h *Hub) Unregister(accountID string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[accountID] == nil {
		return
	}
	delete(h.clients[accountID], client)
	if len(h.clients[accountID]) == 0 {
		delete(h.clients, accountID)
	}
}

func (h *Hub) Connected(accountID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[accountID])
}

// NotifyTransfer fans the transfer out to every socket of its recipient.
// Slow clients drop the message.
func (h *Hub) NotifyTransfer(t models.Transfer) {
	payload, _ := json.Marshal(TransferNotice{
		Type:       "transfer",
		TransferID: t.ID,
		Recipient:  t.Recipient,
		Amount:     strconv.FormatUint(t.Amount, 10),
		Reason:     t.Reason,
		EntityType: t.EntityType,
		EntityID:   t.EntityID,
	})
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[t.Recipient] {
		select {
		case client.send <- payload:
		default:
		}
	}
}

package ordersync

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"makai_ordering/internal/models"
	"makai_ordering/internal/realtime"

	"github.com/gorilla/websocket"
)

// PushLink est le contrat du canal push vu par le moniteur de connexion
// (mockable en test)
type PushLink interface {
	Initialize() error
	IsConnected() bool
	RegisterHandler(eventType string, fn func(models.Order)) int
	UnregisterHandler(eventType string, handle int)
}

// PushManager garantit un seul canal physique par restaurant, quel que soit
// le nombre de stores montés. Construit une fois au démarrage et injecté —
// pas d'état global de module.
type PushManager struct {
	wsBaseURL string

	mu       sync.Mutex
	channels map[string]*PushChannel
}

func NewPushManager(wsBaseURL string) *PushManager {
	return &PushManager{
		wsBaseURL: wsBaseURL,
		channels:  make(map[string]*PushChannel),
	}
}

// Channel retourne le canal du restaurant, créé au premier appel
func (m *PushManager) Channel(restaurantID string) *PushChannel {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ch, exists := m.channels[restaurantID]; exists {
		return ch
	}

	ch := &PushChannel{
		url:      m.wsBaseURL + "/ws/orders?restaurant_id=" + restaurantID,
		handlers: make(map[string]map[int]func(models.Order)),
	}
	m.channels[restaurantID] = ch
	return ch
}

// PushChannel enveloppe la connexion websocket d'un restaurant : registre
// type d'événement → callbacks, état de liveness, contexte de pagination
type PushChannel struct {
	url string

	mu         sync.Mutex
	conn       *websocket.Conn
	connected  bool
	nextHandle int
	handlers   map[string]map[int]func(models.Order)
}

// Initialize établit la connexion si nécessaire (idempotent tant que le
// socket vit)
func (p *PushChannel) Initialize() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.connected {
		return nil
	}

	dialer := websocket.Dialer{HandshakeTimeout: 5 * time.Second}
	conn, _, err := dialer.Dial(p.url, nil)
	if err != nil {
		return fmt.Errorf("connexion push impossible: %v", err)
	}

	p.conn = conn
	p.connected = true
	go p.readLoop(conn)

	log.Printf("🔌 Canal push connecté: %s", p.url)
	return nil
}

// IsConnected retourne la liveness courante du canal
func (p *PushChannel) IsConnected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connected
}

// RegisterHandler enregistre un callback pour un type d'événement et
// retourne un handle de désinscription
func (p *PushChannel) RegisterHandler(eventType string, fn func(models.Order)) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.nextHandle++
	if p.handlers[eventType] == nil {
		p.handlers[eventType] = make(map[int]func(models.Order))
	}
	p.handlers[eventType][p.nextHandle] = fn
	return p.nextHandle
}

func (p *PushChannel) UnregisterHandler(eventType string, handle int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.handlers[eventType], handle)
}

// UpdatePaginationParams déclare la fenêtre d'affichage courante au serveur,
// qui peut scoper/throttler ses événements en conséquence
func (p *PushChannel) UpdatePaginationParams(page, perPage int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn == nil {
		return fmt.Errorf("canal push non connecté")
	}
	return p.conn.WriteJSON(realtime.PaginationMessage{
		Type:    realtime.MessageSetPagination,
		Page:    page,
		PerPage: perPage,
	})
}

// Close ferme le canal ; une réinitialisation ultérieure re-dialera
func (p *PushChannel) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.conn != nil {
		p.conn.Close()
		p.conn = nil
	}
	p.connected = false
}

// readLoop consomme le socket jusqu'à l'erreur de lecture, qui bascule le
// canal en déconnecté. Les événements sont dispatchés dans l'ordre de
// livraison, sans tampon de ré-ordonnancement.
func (p *PushChannel) readLoop(conn *websocket.Conn) {
	defer func() {
		p.mu.Lock()
		if p.conn == conn {
			p.conn = nil
			p.connected = false
		}
		p.mu.Unlock()
		conn.Close()
		log.Printf("🔌 Canal push déconnecté: %s", p.url)
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		// Messages de service (greeting "connected"...) : ignorés
		var head struct {
			Type string `json:"type"`
		}
		if json.Unmarshal(data, &head) != nil {
			continue
		}
		if head.Type != realtime.EventOrderCreated && head.Type != realtime.EventOrderUpdated {
			continue
		}

		// Frontière de validation : un payload malformé est rejeté, jamais dispatché
		evt, err := realtime.DecodeEvent(data)
		if err != nil {
			log.Printf("⚠️ Événement push rejeté: %v", err)
			continue
		}

		p.dispatch(evt)
	}
}

func (p *PushChannel) dispatch(evt realtime.Event) {
	p.mu.Lock()
	callbacks := make([]func(models.Order), 0, len(p.handlers[evt.Type]))
	for _, fn := range p.handlers[evt.Type] {
		callbacks = append(callbacks, fn)
	}
	p.mu.Unlock()

	// Les callbacks tournent hors verrou : ils peuvent ré-entrer dans le canal
	for _, fn := range callbacks {
		fn(evt.Order)
	}
}

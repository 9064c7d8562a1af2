package realtime

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Autoriser toutes les origines (à ajuster en production)
		return true
	},
}

// Hub distribue les événements de commandes aux clients websocket.
// Un seul canal physique par restaurant côté client ; côté serveur, chaque
// connexion relaie le canal Redis pub/sub "orders:<restaurant_id>" — le
// pub/sub fait le fan-out entre instances.
type Hub struct {
	redis *redis.Client

	mu      sync.Mutex
	clients map[string]map[*wsClient]bool // restaurant_id → clients
}

type wsClient struct {
	conn *websocket.Conn

	mu             sync.Mutex
	page           int
	perPage        int
	lastUpdateSent time.Time
}

func NewHub(rdb *redis.Client) *Hub {
	return &Hub{
		redis:   rdb,
		clients: make(map[string]map[*wsClient]bool),
	}
}

func channelName(restaurantID string) string {
	return "orders:" + restaurantID
}

// Publish valide et publie un événement de commande sur le canal du restaurant
func (h *Hub) Publish(ctx context.Context, restaurantID string, evt Event) error {
	if err := evt.Validate(); err != nil {
		return err
	}
	data, err := evt.Encode()
	if err != nil {
		return err
	}
	return h.redis.Publish(ctx, channelName(restaurantID), data).Err()
}

// ClientCount retourne le nombre de clients connectés pour un restaurant
func (h *Hub) ClientCount(restaurantID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[restaurantID])
}

func (h *Hub) register(restaurantID string, cl *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[restaurantID] == nil {
		h.clients[restaurantID] = make(map[*wsClient]bool)
	}
	h.clients[restaurantID][cl] = true
}

func (h *Hub) unregister(restaurantID string, cl *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients[restaurantID], cl)
}

// ServeOrders gère la synchronisation temps réel des commandes d'un restaurant
func (h *Hub) ServeOrders(c *gin.Context) {
	restaurantID := c.Query("restaurant_id")
	if restaurantID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "restaurant_id requis"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("❌ Erreur upgrade WebSocket: %v", err)
		return
	}
	defer conn.Close()

	client := &wsClient{conn: conn, page: 1, perPage: 10}
	h.register(restaurantID, client)
	defer h.unregister(restaurantID, client)

	ctx := context.Background()

	// S'abonner au canal Redis du restaurant
	pubsub := h.redis.Subscribe(ctx, channelName(restaurantID))
	defer pubsub.Close()
	ch := pubsub.Channel()

	// Message de connexion
	conn.WriteJSON(map[string]interface{}{
		"type":    "connected",
		"message": "Synchronisation des commandes activée",
	})

	// Lecture des messages clients (contexte de pagination, fermeture)
	done := make(chan struct{})
	go client.readLoop(done)

	// Boucle d'écoute
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			evt, err := DecodeEvent([]byte(msg.Payload))
			if err != nil {
				log.Printf("⚠️ Événement rejeté sur %s: %v", channelName(restaurantID), err)
				continue
			}
			if !client.wantsEvent(evt) {
				continue
			}
			if err := conn.WriteJSON(evt); err != nil {
				log.Printf("❌ Erreur envoi WebSocket: %v", err)
				return
			}
		case <-done:
			return
		case <-time.After(30 * time.Second):
			// Ping pour garder la connexion active
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readLoop consomme les messages entrants du client jusqu'à la déconnexion
func (cl *wsClient) readLoop(done chan struct{}) {
	defer close(done)
	for {
		var msg PaginationMessage
		if err := cl.conn.ReadJSON(&msg); err != nil {
			return
		}
		if msg.Type == MessageSetPagination && msg.Page > 0 && msg.PerPage > 0 {
			cl.mu.Lock()
			cl.page = msg.Page
			cl.perPage = msg.PerPage
			cl.mu.Unlock()
			log.Printf("📄 Fenêtre client mise à jour: page %d, %d par page", msg.Page, msg.PerPage)
		}
	}
}

// wantsEvent applique le contexte de pagination déclaré par le client.
// Les nouvelles commandes passent toujours ; les mises à jour sont throttlées
// (1/s) pour les clients affichant une page au-delà de la première, qui
// re-fetchent de toute façon en silence côté store.
func (cl *wsClient) wantsEvent(evt Event) bool {
	if evt.Type != EventOrderUpdated {
		return true
	}

	cl.mu.Lock()
	defer cl.mu.Unlock()

	if cl.page <= 1 {
		return true
	}
	if time.Since(cl.lastUpdateSent) < time.Second {
		return false
	}
	cl.lastUpdateSent = time.Now()
	return true
}

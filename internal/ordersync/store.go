package ordersync

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"makai_ordering/internal/models"
)

// CartClearer vide le panier local après l'insertion optimiste d'une commande
type CartClearer interface {
	Clear() error
}

// Store détient la liste de commandes faisant autorité côté client, avec sa
// pagination. Une seule commande par id à tout instant ; les réponses
// périmées sont écartées par un compteur de séquence monotone.
type Store struct {
	api      API
	actor    models.Actor
	cart     CartClearer
	onChange func()

	mu         sync.Mutex
	orders     []models.Order
	metadata   models.OrdersMetadata
	loading    bool
	loadingSeq uint64
	lastError  string
	seq        uint64
	lastParams FetchParams
}

type StoreConfig struct {
	API   API
	Actor models.Actor

	// Cart optionnel : vidé de façon synchrone par AddOrder
	Cart CartClearer

	// OnChange est notifié après chaque mutation d'état (jamais sous verrou)
	OnChange func()
}

func NewStore(cfg StoreConfig) *Store {
	return &Store{
		api:      cfg.API,
		actor:    cfg.Actor,
		cart:     cfg.Cart,
		onChange: cfg.OnChange,
		metadata: models.OrdersMetadata{Page: 1, PerPage: 10, TotalPages: 1},
	}
}

func (s *Store) notify() {
	if s.onChange != nil {
		s.onChange()
	}
}

// indexOf retourne la position d'une commande, verrou tenu par l'appelant
func (s *Store) indexOf(id string) int {
	for i := range s.orders {
		if s.orders[i].ID == id {
			return i
		}
	}
	return -1
}

// dedupeByID garde la première occurrence de chaque id, ordre préservé
func dedupeByID(orders []models.Order) []models.Order {
	seen := make(map[string]bool, len(orders))
	out := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if seen[o.ID] {
			continue
		}
		seen[o.ID] = true
		out = append(out, o)
	}
	return out
}

// Fetch charge une page de commandes, loader visible (sauf changement de
// page, taggé PaginationOnly pour éviter le flash)
func (s *Store) Fetch(ctx context.Context, params FetchParams) {
	s.fetch(ctx, params, false)
}

// FetchQuietly recharge en arrière-plan sans jamais toucher au loader.
// Utilisé par le polling de secours et les rafraîchissements sur événement.
func (s *Store) FetchQuietly(ctx context.Context, params FetchParams) {
	s.fetch(ctx, params, true)
}

func (s *Store) fetch(ctx context.Context, params FetchParams, quiet bool) {
	s.mu.Lock()
	s.seq++
	stamp := s.seq
	if !quiet && !params.PaginationOnly {
		s.loading = true
		s.loadingSeq = stamp
	}
	s.lastParams = params
	s.mu.Unlock()
	s.notify()

	page, err := s.api.ListOrders(ctx, params)

	s.mu.Lock()
	// Une requête plus récente a été émise entre-temps : cette réponse est
	// périmée et ses données sont jetées. Le loader lui appartient encore si
	// aucune requête visible plus récente ne l'a repris : on l'éteint ici,
	// sinon il resterait bloqué
	if stamp != s.seq {
		if !quiet && s.loadingSeq == stamp && s.loading {
			s.loading = false
			s.mu.Unlock()
			s.notify()
			return
		}
		s.mu.Unlock()
		return
	}

	if err != nil {
		s.lastError = err.Error()
		if !quiet {
			s.loading = false
		}
		s.mu.Unlock()
		s.notify()
		return
	}

	s.orders = dedupeByID(page.Orders)
	s.metadata = models.OrdersMetadata{
		TotalCount: page.TotalCount,
		Page:       page.Page,
		PerPage:    page.PerPage,
		TotalPages: page.TotalPages,
	}
	if s.metadata.Page < 1 {
		s.metadata.Page = 1
	}
	s.lastError = ""
	if !quiet {
		s.loading = false
	}
	s.mu.Unlock()
	s.notify()
}

// AddOrderInput rassemble tout ce que le checkout fournit à la création
type AddOrderInput struct {
	RestaurantID        string
	Items               []models.CartItem
	Total               float64
	SpecialInstructions string
	ContactName         string
	ContactPhone        string
	ContactEmail        string
	TransactionID       string
	PaymentMethod       string
	VIPCode             string
	StaffModal          bool
	PaymentDetails      map[string]interface{}
}

// AddOrder insère immédiatement un placeholder optimiste (l'UI peut naviguer
// vers la confirmation sans attendre le réseau), vide le panier, puis envoie
// la vraie requête et remplace atomiquement le placeholder par la commande
// serveur. En cas d'échec le placeholder reste, marqué failed — l'appelant
// peut toujours lire .ID et .Status sur le résultat.
func (s *Store) AddOrder(ctx context.Context, input AddOrderInput) (models.Order, error) {
	now := time.Now()
	tempID := fmt.Sprintf("temp-%d", now.UnixMilli())

	// Séparer nourriture et merchandising pour le backend
	var foodItems, merchItems []models.OrderItem
	var allItems []models.OrderItem
	for _, ci := range input.Items {
		item := ci.ToOrderItem()
		if item.Type == models.ItemTypeMerchandise {
			merchItems = append(merchItems, item)
		} else {
			if item.Type == "" {
				item.Type = models.ItemTypeFood
			}
			foodItems = append(foodItems, item)
		}
		allItems = append(allItems, item)
	}

	optimistic := models.Order{
		ID:                  tempID,
		RestaurantID:        input.RestaurantID,
		Status:              models.StatusPending,
		Items:               allItems,
		Total:               input.Total,
		SpecialInstructions: input.SpecialInstructions,
		ContactName:         input.ContactName,
		ContactPhone:        input.ContactPhone,
		ContactEmail:        input.ContactEmail,
		TransactionID:       input.TransactionID,
		PaymentMethod:       input.PaymentMethod,
		CreatedAt:           now,
		UpdatedAt:           now,
		Pending:             true,
	}

	s.mu.Lock()
	s.orders = append([]models.Order{optimistic}, s.orders...)
	s.metadata.TotalCount++
	s.metadata.Recompute()
	s.mu.Unlock()
	s.notify()

	// Le panier est vidé de façon synchrone, avant la réponse réseau
	if s.cart != nil {
		if err := s.cart.Clear(); err != nil {
			log.Printf("⚠️ Panier non vidé: %v", err)
		}
	}

	payload := OrderPayload{
		RestaurantID:        input.RestaurantID,
		Items:               foodItems,
		MerchandiseItems:    merchItems,
		Total:               input.Total,
		SpecialInstructions: input.SpecialInstructions,
		ContactName:         input.ContactName,
		ContactPhone:        input.ContactPhone,
		ContactEmail:        input.ContactEmail,
		TransactionID:       input.TransactionID,
		PaymentMethod:       input.PaymentMethod,
		VIPCode:             input.VIPCode,
		StaffModal:          input.StaffModal,
		PaymentDetails:      input.PaymentDetails,
	}

	created, err := s.api.CreateOrder(ctx, payload)

	s.mu.Lock()
	defer func() {
		s.mu.Unlock()
		s.notify()
	}()

	if err != nil {
		if idx := s.indexOf(tempID); idx >= 0 {
			s.orders[idx].Status = models.StatusFailed
			s.orders[idx].Pending = false
			optimistic = s.orders[idx]
		} else {
			optimistic.Status = models.StatusFailed
			optimistic.Pending = false
		}
		s.lastError = err.Error()
		return optimistic, err
	}

	created.Pending = false

	// Remplacement atomique : si la commande serveur est déjà arrivée par le
	// canal push, on retire ce doublon, puis on swappe le placeholder
	replaced := false
	absorbed := false
	out := make([]models.Order, 0, len(s.orders))
	for _, o := range s.orders {
		switch o.ID {
		case tempID:
			out = append(out, created)
			replaced = true
		case created.ID:
			// doublon livré par push, absorbé par le swap
			absorbed = true
		default:
			out = append(out, o)
		}
	}
	if !replaced {
		out = append([]models.Order{created}, out...)
	}
	s.orders = out
	// L'insertion optimiste avait déjà compté cette commande ; le doublon
	// poussé l'a comptée une seconde fois en arrivant
	if absorbed {
		s.metadata.TotalCount--
		s.metadata.Recompute()
	}
	s.lastError = ""

	return created, nil
}

// UpdateOrderStatus change le statut d'une commande et fusionne la réponse
func (s *Store) UpdateOrderStatus(ctx context.Context, id, status string, estimatedPickup *time.Time) {
	updated, err := s.api.UpdateOrderStatus(ctx, id, status, estimatedPickup)

	s.mu.Lock()
	if err != nil {
		s.lastError = err.Error()
	} else {
		if idx := s.indexOf(id); idx >= 0 {
			updated.Pending = false
			s.orders[idx] = updated
		}
		s.lastError = ""
	}
	s.mu.Unlock()
	s.notify()
}

// UpdateOrderStatusQuietly applique le nouveau statut de façon optimiste
// avant la réponse réseau, puis réconcilie. En cas d'échec, le statut
// précédent est restauré.
func (s *Store) UpdateOrderStatusQuietly(ctx context.Context, id, status string, estimatedPickup *time.Time) {
	s.mu.Lock()
	prev := ""
	if idx := s.indexOf(id); idx >= 0 {
		prev = s.orders[idx].Status
		s.orders[idx].Status = status
		s.orders[idx].Pending = true
	}
	s.mu.Unlock()
	s.notify()

	updated, err := s.api.UpdateOrderStatus(ctx, id, status, estimatedPickup)

	s.mu.Lock()
	if err != nil {
		if idx := s.indexOf(id); idx >= 0 && prev != "" {
			s.orders[idx].Status = prev
			s.orders[idx].Pending = false
		}
		s.lastError = err.Error()
	} else {
		if idx := s.indexOf(id); idx >= 0 {
			updated.Pending = false
			s.orders[idx] = updated
		}
		s.lastError = ""
	}
	s.mu.Unlock()
	s.notify()
}

// HandleNewOrder est invoqué par le canal push pour chaque commande créée.
// En page 1 la commande est insérée en tête ; sur toute autre page on relance
// un fetch silencieux de la page courante pour préserver la pagination.
func (s *Store) HandleNewOrder(order models.Order) {
	if !IsVisible(order, s.actor) {
		return
	}

	s.mu.Lock()
	if s.metadata.Page <= 1 {
		if idx := s.indexOf(order.ID); idx >= 0 {
			// Déjà présente (notre propre création optimiste confirmée)
			order.Pending = false
			s.orders[idx] = order
		} else {
			s.orders = append([]models.Order{order}, s.orders...)
			s.metadata.TotalCount++
			s.metadata.Recompute()
		}
		s.mu.Unlock()
		s.notify()
		return
	}

	params := s.lastParams
	s.mu.Unlock()

	params.Source = "push-refresh"
	go s.FetchQuietly(context.Background(), params)
}

// HandleOrderUpdate fusionne une mise à jour poussée, uniquement si la
// commande est sur la page affichée ; sinon l'événement est ignoré.
func (s *Store) HandleOrderUpdate(order models.Order) {
	if !IsVisible(order, s.actor) {
		return
	}

	s.mu.Lock()
	idx := s.indexOf(order.ID)
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	order.Pending = false
	s.orders[idx] = order
	s.mu.Unlock()
	s.notify()
}

// Orders retourne une copie de la page affichée
func (s *Store) Orders() []models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Order, len(s.orders))
	copy(out, s.orders)
	return out
}

func (s *Store) Metadata() models.OrdersMetadata {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.metadata
}

func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *Store) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

// CurrentParams retourne les derniers paramètres de fetch émis
func (s *Store) CurrentParams() FetchParams {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastParams
}

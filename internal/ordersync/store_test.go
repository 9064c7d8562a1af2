package ordersync

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"makai_ordering/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	mu        sync.Mutex
	listFn    func(FetchParams) (OrdersPage, error)
	createFn  func(OrderPayload) (models.Order, error)
	updateFn  func(id, status string) (models.Order, error)
	listCalls []FetchParams
}

func (f *fakeAPI) ListOrders(ctx context.Context, params FetchParams) (OrdersPage, error) {
	f.mu.Lock()
	f.listCalls = append(f.listCalls, params)
	fn := f.listFn
	f.mu.Unlock()
	if fn == nil {
		return OrdersPage{Page: 1, PerPage: 10, TotalPages: 1}, nil
	}
	return fn(params)
}

func (f *fakeAPI) CreateOrder(ctx context.Context, payload OrderPayload) (models.Order, error) {
	f.mu.Lock()
	fn := f.createFn
	f.mu.Unlock()
	return fn(payload)
}

func (f *fakeAPI) UpdateOrderStatus(ctx context.Context, id, status string, estimatedPickup *time.Time) (models.Order, error) {
	f.mu.Lock()
	fn := f.updateFn
	f.mu.Unlock()
	return fn(id, status)
}

func (f *fakeAPI) calls() []FetchParams {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]FetchParams, len(f.listCalls))
	copy(out, f.listCalls)
	return out
}

type fakeCart struct {
	mu      sync.Mutex
	cleared bool
}

func (f *fakeCart) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared = true
	return nil
}

func (f *fakeCart) wasCleared() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cleared
}

func orderWith(id, status string) models.Order {
	return models.Order{ID: id, RestaurantID: "r1", Status: status, ContactName: "Client " + id}
}

func pageOf(orders ...models.Order) OrdersPage {
	return OrdersPage{
		Orders:     orders,
		TotalCount: len(orders),
		Page:       1,
		PerPage:    10,
		TotalPages: 1,
	}
}

func adminStore(api API, cart CartClearer) *Store {
	return NewStore(StoreConfig{
		API:   api,
		Actor: models.Actor{ID: "a1", Role: models.RoleAdmin},
		Cart:  cart,
	})
}

func TestFetchDeduplicatesOrders(t *testing.T) {
	api := &fakeAPI{
		listFn: func(FetchParams) (OrdersPage, error) {
			return pageOf(orderWith("o1", "pending"), orderWith("o2", "ready"), orderWith("o1", "confirmed")), nil
		},
	}
	store := adminStore(api, nil)

	store.Fetch(context.Background(), FetchParams{RestaurantID: "r1"})

	orders := store.Orders()
	require.Len(t, orders, 2)
	assert.Equal(t, "o1", orders[0].ID)
	assert.Equal(t, "pending", orders[0].Status) // première occurrence conservée
	assert.Equal(t, "o2", orders[1].ID)
	assert.False(t, store.Loading())
	assert.Empty(t, store.LastError())
}

func TestFetchLoadingFlag(t *testing.T) {
	api := &fakeAPI{}

	var states []bool
	var store *Store
	store = NewStore(StoreConfig{
		API:   api,
		Actor: models.Actor{Role: models.RoleAdmin},
		OnChange: func() {
			states = append(states, store.Loading())
		},
	})

	store.Fetch(context.Background(), FetchParams{})
	require.Equal(t, []bool{true, false}, states, "un fetch visible montre puis cache le loader")

	states = nil
	store.FetchQuietly(context.Background(), FetchParams{})
	require.Equal(t, []bool{false, false}, states, "un fetch silencieux ne touche jamais au loader")

	states = nil
	store.Fetch(context.Background(), FetchParams{Page: 2, PaginationOnly: true})
	require.Equal(t, []bool{false, false}, states, "un changement de page n'affiche pas le loader")
}

func TestStaleFetchResponseDiscarded(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	api := &fakeAPI{}
	api.listFn = func(p FetchParams) (OrdersPage, error) {
		if p.Search == "lente" {
			close(started)
			<-release
			return pageOf(orderWith("vieille", "pending")), nil
		}
		return pageOf(orderWith("fraiche", "pending")), nil
	}
	store := adminStore(api, nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		store.Fetch(context.Background(), FetchParams{Search: "lente"})
	}()
	<-started

	// Une requête plus récente part et revient pendant que la première traîne
	store.Fetch(context.Background(), FetchParams{Search: "autre"})
	close(release)
	wg.Wait()

	orders := store.Orders()
	require.Len(t, orders, 1)
	assert.Equal(t, "fraiche", orders[0].ID, "la réponse périmée ne doit pas écraser la récente")
	assert.False(t, store.Loading())
}

func TestStaleVisibleFetchClearsLoading(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	api := &fakeAPI{}
	api.listFn = func(p FetchParams) (OrdersPage, error) {
		if p.Search == "lente" {
			close(started)
			<-release
			return pageOf(orderWith("vieille", "pending")), nil
		}
		return pageOf(orderWith("fraiche", "pending")), nil
	}
	store := adminStore(api, nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		store.Fetch(context.Background(), FetchParams{Search: "lente"})
	}()
	<-started
	require.True(t, store.Loading())

	// Un rafraîchissement silencieux supplante le fetch visible : lui seul
	// touche au loader, c'est donc à la réponse écartée de l'éteindre
	store.FetchQuietly(context.Background(), FetchParams{Search: "autre"})
	close(release)
	wg.Wait()

	assert.False(t, store.Loading(), "le loader ne doit pas rester bloqué après une réponse écartée")
	orders := store.Orders()
	require.Len(t, orders, 1)
	assert.Equal(t, "fraiche", orders[0].ID)
}

func TestAddOrderOptimisticPlaceholderThenSwap(t *testing.T) {
	placed := make(chan struct{})
	release := make(chan struct{})

	api := &fakeAPI{
		createFn: func(OrderPayload) (models.Order, error) {
			close(placed)
			<-release
			return orderWith("srv-1", "pending"), nil
		},
	}
	cart := &fakeCart{}
	store := adminStore(api, cart)

	var wg sync.WaitGroup
	var result models.Order
	var addErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		result, addErr = store.AddOrder(context.Background(), AddOrderInput{
			RestaurantID: "r1",
			Items:        []models.CartItem{{ID: "5", Name: "Poke bowl", Price: 12.5, Quantity: 1}},
			Total:        12.5,
			ContactName:  "Léa",
		})
	}()
	<-placed

	// Pendant que la requête est en vol : placeholder en tête, panier vidé
	orders := store.Orders()
	require.Len(t, orders, 1)
	assert.True(t, strings.HasPrefix(orders[0].ID, "temp-"))
	assert.True(t, orders[0].Pending)
	assert.Equal(t, "pending", orders[0].Status)
	assert.True(t, cart.wasCleared(), "le panier est vidé avant la réponse réseau")
	assert.Equal(t, 1, store.Metadata().TotalCount)

	close(release)
	wg.Wait()

	require.NoError(t, addErr)
	assert.Equal(t, "srv-1", result.ID)

	orders = store.Orders()
	require.Len(t, orders, 1)
	assert.Equal(t, "srv-1", orders[0].ID)
	assert.False(t, orders[0].Pending)
}

func TestAddOrderFailureKeepsFailedPlaceholder(t *testing.T) {
	api := &fakeAPI{
		createFn: func(OrderPayload) (models.Order, error) {
			return models.Order{}, assert.AnError
		},
	}
	store := adminStore(api, nil)

	result, err := store.AddOrder(context.Background(), AddOrderInput{
		RestaurantID: "r1",
		Total:        8,
		ContactName:  "Noa",
	})
	require.Error(t, err)

	// L'appelant peut toujours lire l'id et le statut du résultat
	assert.True(t, strings.HasPrefix(result.ID, "temp-"))
	assert.Equal(t, models.StatusFailed, result.Status)

	orders := store.Orders()
	require.Len(t, orders, 1)
	assert.Equal(t, models.StatusFailed, orders[0].Status)
	assert.False(t, orders[0].Pending)
	assert.NotEmpty(t, store.LastError())
}

func TestAddOrderAbsorbsPushDuplicate(t *testing.T) {
	placed := make(chan struct{})
	release := make(chan struct{})

	api := &fakeAPI{
		createFn: func(OrderPayload) (models.Order, error) {
			close(placed)
			<-release
			return orderWith("srv-9", "pending"), nil
		},
	}
	store := adminStore(api, nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		store.AddOrder(context.Background(), AddOrderInput{RestaurantID: "r1", Total: 5})
	}()
	<-placed

	// Le serveur pousse la commande créée avant que la réponse HTTP n'arrive
	store.HandleNewOrder(orderWith("srv-9", "pending"))
	close(release)
	wg.Wait()

	orders := store.Orders()
	require.Len(t, orders, 1, "jamais deux entrées pour la même commande")
	assert.Equal(t, "srv-9", orders[0].ID)
	meta := store.Metadata()
	assert.Equal(t, 1, meta.TotalCount, "le doublon absorbé ne doit pas être compté deux fois")
	assert.Equal(t, 1, meta.TotalPages)
}

func TestHandleNewOrderPageOneUnshift(t *testing.T) {
	api := &fakeAPI{
		listFn: func(FetchParams) (OrdersPage, error) {
			return pageOf(orderWith("o1", "pending")), nil
		},
	}
	store := adminStore(api, nil)
	store.Fetch(context.Background(), FetchParams{RestaurantID: "r1"})

	store.HandleNewOrder(orderWith("o2", "pending"))

	orders := store.Orders()
	require.Len(t, orders, 2)
	assert.Equal(t, "o2", orders[0].ID, "la nouvelle commande passe en tête")
	assert.Equal(t, 2, store.Metadata().TotalCount)
}

func TestHandleNewOrderDeeperPageRefetchesQuietly(t *testing.T) {
	api := &fakeAPI{
		listFn: func(p FetchParams) (OrdersPage, error) {
			return OrdersPage{
				Orders:     []models.Order{orderWith("o11", "pending")},
				TotalCount: 11,
				Page:       2,
				PerPage:    10,
				TotalPages: 2,
			}, nil
		},
	}
	store := adminStore(api, nil)
	store.Fetch(context.Background(), FetchParams{RestaurantID: "r1", Page: 2})

	store.HandleNewOrder(orderWith("o12", "pending"))

	// Pas d'insertion directe hors page 1 : un refetch silencieux est déclenché
	require.Eventually(t, func() bool {
		calls := api.calls()
		last := calls[len(calls)-1]
		return last.Source == "push-refresh" && last.Page == 2
	}, time.Second, 5*time.Millisecond)

	for _, o := range store.Orders() {
		assert.NotEqual(t, "o12", o.ID, "pas d'unshift en page profonde")
	}
}

func TestHandleNewOrderStaffScenario(t *testing.T) {
	mine := "staff-42"
	other := "staff-99"
	store := NewStore(StoreConfig{
		API:   &fakeAPI{},
		Actor: models.Actor{Role: models.RoleStaff, StaffID: mine},
	})

	// Commande créée par cet employé : visible, insérée en tête
	a := orderWith("a", "pending")
	a.StaffCreated = true
	a.IsStaffOrder = true
	a.CreatedByStaffID = &mine
	store.HandleNewOrder(a)

	require.Len(t, store.Orders(), 1)
	assert.Equal(t, 1, store.Metadata().TotalCount)

	// Commande d'un collègue : filtrée, état inchangé
	b := orderWith("b", "pending")
	b.StaffCreated = true
	b.IsStaffOrder = true
	b.CreatedByStaffID = &other
	store.HandleNewOrder(b)

	require.Len(t, store.Orders(), 1)
	assert.Equal(t, "a", store.Orders()[0].ID)
	assert.Equal(t, 1, store.Metadata().TotalCount)
}

func TestHandleNewOrderInvisibleIgnored(t *testing.T) {
	staffID := "s-42"
	store := NewStore(StoreConfig{
		API:   &fakeAPI{},
		Actor: models.Actor{Role: models.RoleStaff, StaffID: "s-99"},
	})

	other := orderWith("o1", "pending")
	other.StaffCreated = true
	other.CreatedByStaffID = &staffID
	store.HandleNewOrder(other)

	assert.Empty(t, store.Orders())
	assert.Equal(t, 0, store.Metadata().TotalCount)
}

func TestHandleOrderUpdateMergesOnlyWhenPresent(t *testing.T) {
	api := &fakeAPI{
		listFn: func(FetchParams) (OrdersPage, error) {
			return pageOf(orderWith("o1", "pending")), nil
		},
	}
	store := adminStore(api, nil)
	store.Fetch(context.Background(), FetchParams{RestaurantID: "r1"})

	store.HandleOrderUpdate(orderWith("o1", "ready"))
	orders := store.Orders()
	require.Len(t, orders, 1)
	assert.Equal(t, "ready", orders[0].Status)

	// Une mise à jour pour une commande hors page n'insère rien
	store.HandleOrderUpdate(orderWith("inconnue", "ready"))
	assert.Len(t, store.Orders(), 1)
}

func TestUpdateOrderStatusQuietlyRevertsOnFailure(t *testing.T) {
	api := &fakeAPI{
		listFn: func(FetchParams) (OrdersPage, error) {
			return pageOf(orderWith("o1", "pending")), nil
		},
		updateFn: func(id, status string) (models.Order, error) {
			return models.Order{}, assert.AnError
		},
	}
	store := adminStore(api, nil)
	store.Fetch(context.Background(), FetchParams{RestaurantID: "r1"})

	store.UpdateOrderStatusQuietly(context.Background(), "o1", "preparing", nil)

	orders := store.Orders()
	require.Len(t, orders, 1)
	assert.Equal(t, "pending", orders[0].Status, "le statut précédent est restauré")
	assert.False(t, orders[0].Pending)
	assert.NotEmpty(t, store.LastError())
}

func TestUpdateOrderStatusQuietlyAppliesOptimistically(t *testing.T) {
	applied := make(chan struct{})
	release := make(chan struct{})

	api := &fakeAPI{
		listFn: func(FetchParams) (OrdersPage, error) {
			return pageOf(orderWith("o1", "pending")), nil
		},
		updateFn: func(id, status string) (models.Order, error) {
			close(applied)
			<-release
			o := orderWith("o1", status)
			return o, nil
		},
	}
	store := adminStore(api, nil)
	store.Fetch(context.Background(), FetchParams{RestaurantID: "r1"})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		store.UpdateOrderStatusQuietly(context.Background(), "o1", "ready", nil)
	}()
	<-applied

	orders := store.Orders()
	require.Len(t, orders, 1)
	assert.Equal(t, "ready", orders[0].Status, "le statut change avant la réponse réseau")
	assert.True(t, orders[0].Pending)

	close(release)
	wg.Wait()

	orders = store.Orders()
	assert.Equal(t, "ready", orders[0].Status)
	assert.False(t, orders[0].Pending)
}

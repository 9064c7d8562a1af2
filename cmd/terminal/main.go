package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"makai_ordering/internal/config"
	"makai_ordering/internal/models"
	"makai_ordering/internal/ordersync"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	config.Load()

	apiURL := envOr("MAKAI_API_URL", "http://localhost:8080")
	wsURL := envOr("MAKAI_WS_URL", "ws://localhost:8080")
	restaurantID := os.Getenv("MAKAI_RESTAURANT_ID")
	if restaurantID == "" {
		log.Fatal("❌ MAKAI_RESTAURANT_ID manquant")
	}
	token := os.Getenv("MAKAI_STAFF_TOKEN")

	actor := models.Actor{
		ID:           os.Getenv("MAKAI_ACTOR_ID"),
		Role:         envOr("MAKAI_ROLE", models.RoleStaff),
		StaffID:      os.Getenv("MAKAI_STAFF_ID"),
		RestaurantID: restaurantID,
	}

	cart, err := ordersync.NewCart(&ordersync.FileCartStorage{
		Path: envOr("MAKAI_CART_FILE", ".makai_cart.json"),
	})
	if err != nil {
		log.Fatalf("❌ Panier local: %v", err)
	}

	client := ordersync.NewClient(apiURL, token)

	// Le callback lit le store, déclaré avant sa construction
	var store *ordersync.Store
	store = ordersync.NewStore(ordersync.StoreConfig{
		API:   client,
		Actor: actor,
		Cart:  cart,
		OnChange: func() {
			printOrders(store)
		},
	})

	push := ordersync.NewPushManager(wsURL).Channel(restaurantID)

	monitor := ordersync.NewMonitor(ordersync.MonitorConfig{
		Push: push,
		Refresh: func(source string) {
			params := store.CurrentParams()
			params.Source = source
			store.FetchQuietly(context.Background(), params)
		},
		HandleNew:    store.HandleNewOrder,
		HandleUpdate: store.HandleOrderUpdate,
	})
	monitor.Start()
	defer monitor.Stop()

	fetchPage(store, push, ordersync.FetchParams{
		RestaurantID: restaurantID,
		Page:         1,
		PerPage:      10,
	})

	log.Printf("🚀 Terminal Makai connecté au restaurant %s", restaurantID)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("👋 Arrêt du terminal")
}

// fetchPage charge une page puis déclare la pagination au canal push : le hub
// s'en sert pour espacer les order_updated envoyés aux pages profondes
func fetchPage(store *ordersync.Store, push *ordersync.PushChannel, params ordersync.FetchParams) {
	store.Fetch(context.Background(), params)
	if err := push.UpdatePaginationParams(params.Page, params.PerPage); err != nil {
		log.Printf("⚠️ Pagination non déclarée au canal push: %v", err)
	}
}

func printOrders(store *ordersync.Store) {
	if store == nil {
		return
	}
	meta := store.Metadata()
	log.Printf("📋 %d commandes (page %d/%d)", meta.TotalCount, meta.Page, meta.TotalPages)
	for _, o := range store.Orders() {
		marker := " "
		if o.Pending {
			marker = "⏳"
		}
		log.Printf("  %s %s — %s — %.2f€ (%s)", marker, o.ID, o.ContactName, o.Total, o.Status)
	}
}

package order

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"makai_ordering/internal/database"
	"makai_ordering/internal/models"
	"makai_ordering/internal/services"

	"github.com/gin-gonic/gin"
)

// ListOrders retourne une page de commandes avec filtres et tri.
// GET /api/orders?page&per_page&status&sort_by&sort_direction&date_from&date_to&search&restaurant_id&source
func ListOrders(c *gin.Context) {
	restaurantID := c.Query("restaurant_id")
	if restaurantID == "" {
		restaurantID = c.GetString("restaurant_id")
	}
	if restaurantID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "restaurant_id requis"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "10"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 10
	}

	status := c.Query("status")
	search := c.Query("search")
	dateFrom := c.Query("date_from")
	dateTo := c.Query("date_to")
	sortBy := c.DefaultQuery("sort_by", "created_at")
	sortDirection := c.DefaultQuery("sort_direction", "desc")

	// Identifiant de la source du fetch (polling, push-refresh...), pour observabilité
	if source := c.Query("source"); source != "" {
		log.Printf("📡 Fetch commandes %s (source: %s, page %d)", restaurantID, source, page)
	}

	// Recherche plein texte : servie par Elasticsearch
	if search != "" {
		orders, total, err := services.SearchOrders(services.OrderSearchParams{
			RestaurantID:  restaurantID,
			Query:         search,
			Status:        status,
			DateFrom:      dateFrom,
			DateTo:        dateTo,
			SortBy:        sortBy,
			SortDirection: sortDirection,
			Page:          page,
			PerPage:       perPage,
		})
		if err != nil {
			log.Printf("❌ Erreur recherche Elastic: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur recherche commandes"})
			return
		}
		respondOrdersPage(c, orders, total, page, perPage)
		return
	}

	// La partition du restaurant livre les commandes triées created_at DESC
	query, err := database.QueryListOrders(restaurantID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}
	iter := query.Iter()

	var orders []models.Order
	for {
		o, ok := scanOrder(iter)
		if !ok {
			break
		}
		orders = append(orders, o)
	}
	if err := iter.Close(); err != nil {
		log.Printf("❌ Erreur lecture commandes: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur récupération commandes"})
		return
	}

	// Filtres statut / dates
	if status != "" || dateFrom != "" || dateTo != "" {
		var from, to time.Time
		if dateFrom != "" {
			from, _ = time.Parse("2006-01-02", dateFrom)
		}
		if dateTo != "" {
			to, _ = time.Parse("2006-01-02", dateTo)
			to = to.Add(24 * time.Hour)
		}

		var filtered []models.Order
		for _, o := range orders {
			if status != "" && o.Status != status {
				continue
			}
			if !from.IsZero() && o.CreatedAt.Before(from) {
				continue
			}
			if !to.IsZero() && !o.CreatedAt.Before(to) {
				continue
			}
			filtered = append(filtered, o)
		}
		orders = filtered
	}

	if sortBy != "created_at" || sortDirection != "desc" {
		sortOrders(orders, sortBy, sortDirection)
	}

	pageOrders, total := paginate(orders, page, perPage)
	respondOrdersPage(c, pageOrders, total, page, perPage)
}

func respondOrdersPage(c *gin.Context, orders []models.Order, total, page, perPage int) {
	if orders == nil {
		orders = []models.Order{}
	}
	meta := models.OrdersMetadata{TotalCount: total, Page: page, PerPage: perPage}
	meta.Recompute()

	c.JSON(http.StatusOK, gin.H{
		"orders":      orders,
		"total_count": meta.TotalCount,
		"page":        meta.Page,
		"per_page":    meta.PerPage,
		"total_pages": meta.TotalPages,
	})
}

// GetOrderByID retourne une commande par son identifiant
func GetOrderByID(c *gin.Context) {
	orderID := c.Param("id")

	query, err := database.QueryOrderByID(orderID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}

	iter := query.Iter()
	o, ok := scanOrder(iter)
	iter.Close()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
		return
	}

	c.JSON(http.StatusOK, o)
}

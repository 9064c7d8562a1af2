package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"makai_ordering/internal/database"
	"makai_ordering/internal/models"

	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const ordersIndex = "orders"

//
// --- INDEXATION DANS ELASTICSEARCH ---
//

// IndexOrder indexe une commande dans Elasticsearch (création et mise à jour)
func IndexOrder(order models.Order) {
	if database.ElasticClient == nil {
		log.Println("⚠️ Elastic non initialisé, impossible d'indexer la commande", order.ID)
		return
	}

	data, _ := json.Marshal(order)
	req := esapi.IndexRequest{
		Index:      ordersIndex,
		DocumentID: order.ID,
		Body:       bytes.NewReader(data),
		Refresh:    "true", // rend la commande immédiatement cherchable
	}

	res, err := req.Do(context.Background(), database.ElasticClient)
	if err != nil {
		log.Println("❌ Erreur envoi Elastic:", err)
		return
	}
	defer res.Body.Close()

	if res.IsError() {
		log.Printf("⚠️ Elastic a renvoyé une erreur pour %s: %s", order.ID, res.String())
	} else {
		log.Printf("✅ Commande indexée dans Elasticsearch: %s", order.ID)
	}
}

// OrderSearchParams paramètres de recherche de commandes
type OrderSearchParams struct {
	RestaurantID  string
	Query         string
	Status        string
	DateFrom      string
	DateTo        string
	SortBy        string
	SortDirection string
	Page          int
	PerPage       int
}

// SearchOrders recherche des commandes (texte libre + filtres + tri + pagination)
func SearchOrders(params OrderSearchParams) ([]models.Order, int, error) {
	if database.ElasticClient == nil {
		return nil, 0, errors.New("client Elasticsearch non initialisé")
	}

	must := []map[string]interface{}{
		{"term": map[string]interface{}{"restaurant_id": params.RestaurantID}},
	}

	if params.Query != "" {
		must = append(must, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  params.Query,
				"fields": []string{"contact_name", "contact_email", "contact_phone", "special_instructions", "items.name"},
			},
		})
	}

	if params.Status != "" {
		must = append(must, map[string]interface{}{
			"term": map[string]interface{}{"status": params.Status},
		})
	}

	if params.DateFrom != "" || params.DateTo != "" {
		dateRange := map[string]interface{}{}
		if params.DateFrom != "" {
			dateRange["gte"] = params.DateFrom
		}
		if params.DateTo != "" {
			dateRange["lte"] = params.DateTo
		}
		must = append(must, map[string]interface{}{
			"range": map[string]interface{}{"created_at": dateRange},
		})
	}

	sortField := "created_at"
	if params.SortBy != "" {
		sortField = params.SortBy
	}
	sortOrder := "desc"
	if params.SortDirection == "asc" {
		sortOrder = "asc"
	}

	from := (params.Page - 1) * params.PerPage

	q := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{"must": must},
		},
		"sort": []map[string]interface{}{
			{sortField: map[string]interface{}{"order": sortOrder}},
		},
		"from": from,
		"size": params.PerPage,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(q); err != nil {
		return nil, 0, err
	}

	res, err := database.ElasticClient.Search(
		database.ElasticClient.Search.WithContext(context.Background()),
		database.ElasticClient.Search.WithIndex(ordersIndex),
		database.ElasticClient.Search.WithBody(&buf),
		database.ElasticClient.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return nil, 0, err
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, 0, fmt.Errorf("erreur Elasticsearch: %s", res.String())
	}

	var result struct {
		Hits struct {
			Total struct {
				Value int `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.Order `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}

	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return nil, 0, err
	}

	orders := make([]models.Order, 0, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		orders = append(orders, hit.Source)
	}

	return orders, result.Hits.Total.Value, nil
}

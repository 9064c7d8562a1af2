// Package ordersync maintient la vue client des commandes d'un restaurant :
// store en mémoire avec mises à jour optimistes, canal push websocket, et
// polling de secours quand le canal est indisponible.
package ordersync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"makai_ordering/internal/models"
)

// DefaultRequestTimeout borne chaque appel réseau : un serveur muet ne doit
// jamais laisser le store en loading indéfiniment
const DefaultRequestTimeout = 10 * time.Second

// FetchParams décrit une requête de page de commandes
type FetchParams struct {
	Page          int
	PerPage       int
	Status        string
	SortBy        string
	SortDirection string
	DateFrom      string
	DateTo        string
	Search        string
	RestaurantID  string

	// Source identifie l'origine du fetch (polling, push-refresh...), pour observabilité
	Source string

	// PaginationOnly évite le flash du loader pendant un changement de page
	PaginationOnly bool
}

func (p FetchParams) values() url.Values {
	v := url.Values{}
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.PerPage > 0 {
		v.Set("per_page", strconv.Itoa(p.PerPage))
	}
	if p.Status != "" {
		v.Set("status", p.Status)
	}
	if p.SortBy != "" {
		v.Set("sort_by", p.SortBy)
	}
	if p.SortDirection != "" {
		v.Set("sort_direction", p.SortDirection)
	}
	if p.DateFrom != "" {
		v.Set("date_from", p.DateFrom)
	}
	if p.DateTo != "" {
		v.Set("date_to", p.DateTo)
	}
	if p.Search != "" {
		v.Set("search", p.Search)
	}
	if p.RestaurantID != "" {
		v.Set("restaurant_id", p.RestaurantID)
	}
	if p.Source != "" {
		v.Set("source", p.Source)
	}
	return v
}

// OrdersPage est la réponse paginée de GET /api/orders
type OrdersPage struct {
	Orders     []models.Order `json:"orders"`
	TotalCount int            `json:"total_count"`
	Page       int            `json:"page"`
	PerPage    int            `json:"per_page"`
	TotalPages int            `json:"total_pages"`
}

// OrderPayload est le corps de POST /api/orders
type OrderPayload struct {
	RestaurantID        string                 `json:"restaurant_id"`
	Items               []models.OrderItem     `json:"items"`
	MerchandiseItems    []models.OrderItem     `json:"merchandise_items,omitempty"`
	Total               float64                `json:"total"`
	SpecialInstructions string                 `json:"special_instructions,omitempty"`
	ContactName         string                 `json:"contact_name,omitempty"`
	ContactPhone        string                 `json:"contact_phone,omitempty"`
	ContactEmail        string                 `json:"contact_email,omitempty"`
	TransactionID       string                 `json:"transaction_id,omitempty"`
	PaymentMethod       string                 `json:"payment_method,omitempty"`
	VIPCode             string                 `json:"vip_code,omitempty"`
	StaffModal          bool                   `json:"staff_modal,omitempty"`
	PaymentDetails      map[string]interface{} `json:"payment_details,omitempty"`
}

type createOrderRequest struct {
	Order OrderPayload `json:"order"`
}

type updateOrderRequest struct {
	Order struct {
		Status              string     `json:"status"`
		EstimatedPickupTime *time.Time `json:"estimated_pickup_time,omitempty"`
	} `json:"order"`
}

// API est le contrat réseau consommé par le Store (mockable en test)
type API interface {
	ListOrders(ctx context.Context, params FetchParams) (OrdersPage, error)
	CreateOrder(ctx context.Context, payload OrderPayload) (models.Order, error)
	UpdateOrderStatus(ctx context.Context, id, status string, estimatedPickup *time.Time) (models.Order, error)
}

// Client parle à l'API REST des commandes
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	timeout time.Duration
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{},
		timeout: DefaultRequestTimeout,
	}
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s", method, path, apiErr.Error)
		}
		return fmt.Errorf("%s %s: statut %d", method, path, resp.StatusCode)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *Client) ListOrders(ctx context.Context, params FetchParams) (OrdersPage, error) {
	var page OrdersPage
	err := c.do(ctx, http.MethodGet, "/api/orders?"+params.values().Encode(), nil, &page)
	return page, err
}

func (c *Client) CreateOrder(ctx context.Context, payload OrderPayload) (models.Order, error) {
	var order models.Order
	err := c.do(ctx, http.MethodPost, "/api/orders", createOrderRequest{Order: payload}, &order)
	return order, err
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id, status string, estimatedPickup *time.Time) (models.Order, error) {
	var req updateOrderRequest
	req.Order.Status = status
	req.Order.EstimatedPickupTime = estimatedPickup

	var order models.Order
	err := c.do(ctx, http.MethodPatch, "/api/orders/"+id, req, &order)
	return order, err
}

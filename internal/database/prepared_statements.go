package database

import (
	"time"

	"github.com/gocql/gocql"
)

// Requêtes CQL du keyspace commandes, partagées par les handlers et le cache.
// gocql prépare chaque statement à sa première exécution puis réutilise la
// version préparée ; centraliser le texte garantit qu'un même statement n'est
// préparé qu'une fois et que les chemins de lecture restent alignés sur le
// schéma. Chaque appel construit sa propre *gocql.Query : une Query bindée
// n'est pas partageable entre goroutines.

const orderColumns = `restaurant_id, order_id, status, items, total, special_instructions,
	contact_name, contact_phone, contact_email, transaction_id, payment_method,
	created_by_staff_id, is_staff_order, staff_created, estimated_pickup_time, created_at, updated_at`

const (
	// Partition par restaurant, tri created_at DESC via clustering order
	cqlListOrders  = `SELECT ` + orderColumns + ` FROM orders WHERE restaurant_id = ?`
	cqlOrderByID   = `SELECT ` + orderColumns + ` FROM orders_by_id WHERE order_id = ?`
	cqlInsertOrder = `INSERT INTO orders (` + orderColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	cqlInsertIndex = `INSERT INTO orders_by_id (` + orderColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	// La table principale est clusterisée par created_at : clé complète requise
	cqlUpdateStatus      = `UPDATE orders SET status = ?, estimated_pickup_time = ?, updated_at = ? WHERE restaurant_id = ? AND created_at = ? AND order_id = ?`
	cqlUpdateStatusIndex = `UPDATE orders_by_id SET status = ?, estimated_pickup_time = ?, updated_at = ? WHERE order_id = ?`

	cqlVIPCodes = `SELECT code_hash FROM vip_codes WHERE restaurant_id = ?`
)

// QueryListOrders retourne la requête bindée listant la partition d'un restaurant
func QueryListOrders(restaurantID string) (*gocql.Query, error) {
	session, err := GetOrdersSession()
	if err != nil {
		return nil, err
	}
	return session.Query(cqlListOrders, restaurantID), nil
}

// QueryOrderByID retourne la requête bindée sur l'index orders_by_id
func QueryOrderByID(orderID string) (*gocql.Query, error) {
	session, err := GetOrdersSession()
	if err != nil {
		return nil, err
	}
	return session.Query(cqlOrderByID, orderID), nil
}

// QueryInsertOrder et QueryInsertOrderIndex attendent les 17 valeurs dans
// l'ordre de orderColumns
func QueryInsertOrder(values ...interface{}) (*gocql.Query, error) {
	session, err := GetOrdersSession()
	if err != nil {
		return nil, err
	}
	return session.Query(cqlInsertOrder, values...), nil
}

func QueryInsertOrderIndex(values ...interface{}) (*gocql.Query, error) {
	session, err := GetOrdersSession()
	if err != nil {
		return nil, err
	}
	return session.Query(cqlInsertIndex, values...), nil
}

func QueryUpdateOrderStatus(status string, pickup, updatedAt time.Time, restaurantID string, createdAt time.Time, orderID string) (*gocql.Query, error) {
	session, err := GetOrdersSession()
	if err != nil {
		return nil, err
	}
	return session.Query(cqlUpdateStatus, status, pickup, updatedAt, restaurantID, createdAt, orderID), nil
}

func QueryUpdateOrderStatusIndex(status string, pickup, updatedAt time.Time, orderID string) (*gocql.Query, error) {
	session, err := GetOrdersSession()
	if err != nil {
		return nil, err
	}
	return session.Query(cqlUpdateStatusIndex, status, pickup, updatedAt, orderID), nil
}

// QueryVIPCodes retourne la requête bindée listant les hash VIP d'un restaurant
func QueryVIPCodes(restaurantID string) (*gocql.Query, error) {
	session, err := GetOrdersSession()
	if err != nil {
		return nil, err
	}
	return session.Query(cqlVIPCodes, restaurantID), nil
}

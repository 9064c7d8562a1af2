package ordersync

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"makai_ordering/internal/models"
)

// CartStorage persiste le panier entre deux sessions du terminal
type CartStorage interface {
	Load() ([]byte, error)
	Save(data []byte) error
}

// FileCartStorage stocke le panier en JSON sur disque
type FileCartStorage struct {
	Path string
}

func (f *FileCartStorage) Load() ([]byte, error) {
	data, err := os.ReadFile(f.Path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	return data, err
}

func (f *FileCartStorage) Save(data []byte) error {
	return os.WriteFile(f.Path, data, 0o644)
}

// Cart est le panier local du terminal. Deux lignes ne fusionnent que si
// produit ET personnalisations coïncident (clé composite).
type Cart struct {
	mu      sync.Mutex
	storage CartStorage
	items   []models.CartItem
}

// NewCart charge le panier depuis le stockage fourni (nil = mémoire seule)
func NewCart(storage CartStorage) (*Cart, error) {
	c := &Cart{storage: storage}
	if storage == nil {
		return c, nil
	}

	data, err := storage.Load()
	if err != nil {
		return nil, fmt.Errorf("lecture du panier impossible: %v", err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &c.items); err != nil {
			return nil, fmt.Errorf("panier corrompu: %v", err)
		}
	}
	return c, nil
}

// Add fusionne l'article avec une ligne existante de même clé composite,
// sinon l'ajoute en fin de panier
func (c *Cart) Add(item models.CartItem) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = models.MergeCartItem(c.items, item)
	return c.persist()
}

// Remove supprime la ligne désignée par sa clé composite
func (c *Cart) Remove(compositeKey string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.items[:0]
	for _, it := range c.items {
		if it.CompositeKey() != compositeKey {
			kept = append(kept, it)
		}
	}
	c.items = kept
	return c.persist()
}

// Clear vide le panier (appelé par le store dès l'acceptation optimiste
// d'une commande)
func (c *Cart) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = nil
	return c.persist()
}

// Items retourne une copie des lignes du panier
func (c *Cart) Items() []models.CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]models.CartItem, len(c.items))
	copy(out, c.items)
	return out
}

// Total retourne le montant du panier
func (c *Cart) Total() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	var total float64
	for _, it := range c.items {
		total += it.Price * float64(it.Quantity)
	}
	return total
}

func (c *Cart) persist() error {
	if c.storage == nil {
		return nil
	}
	data, err := json.Marshal(c.items)
	if err != nil {
		return err
	}
	return c.storage.Save(data)
}

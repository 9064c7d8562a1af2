package ordersync

import (
	"path/filepath"
	"testing"

	"makai_ordering/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartMergesOnCompositeKey(t *testing.T) {
	cart, err := NewCart(nil)
	require.NoError(t, err)

	large := models.CartItem{
		ID:             "5",
		Name:           "Poke bowl",
		Price:          12.5,
		Quantity:       1,
		Customizations: models.Customizations{"Size": {"Large"}},
	}
	require.NoError(t, cart.Add(large))

	large.Quantity = 2
	require.NoError(t, cart.Add(large))

	items := cart.Items()
	require.Len(t, items, 1, "même produit, mêmes customisations: une seule ligne")
	assert.Equal(t, 3, items[0].Quantity)

	// Une customisation différente crée une ligne distincte
	small := large
	small.Quantity = 1
	small.Customizations = models.Customizations{"Size": {"Small"}}
	require.NoError(t, cart.Add(small))

	items = cart.Items()
	require.Len(t, items, 2)
	assert.InDelta(t, 12.5*4, cart.Total(), 0.001)
}

func TestCartRemoveByCompositeKey(t *testing.T) {
	cart, err := NewCart(nil)
	require.NoError(t, err)

	a := models.CartItem{ID: "1", Price: 5, Quantity: 1}
	b := models.CartItem{ID: "1", Price: 5, Quantity: 1, Customizations: models.Customizations{"Sauce": {"Spicy"}}}
	require.NoError(t, cart.Add(a))
	require.NoError(t, cart.Add(b))

	require.NoError(t, cart.Remove(b.CompositeKey()))

	items := cart.Items()
	require.Len(t, items, 1)
	assert.Empty(t, items[0].Customizations)
}

func TestCartPersistsToDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "panier.json")
	storage := &FileCartStorage{Path: path}

	cart, err := NewCart(storage)
	require.NoError(t, err)
	require.NoError(t, cart.Add(models.CartItem{ID: "7", Name: "Mahi tacos", Price: 9, Quantity: 2}))

	// Une nouvelle session retrouve le panier
	reloaded, err := NewCart(storage)
	require.NoError(t, err)
	items := reloaded.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)

	require.NoError(t, reloaded.Clear())

	empty, err := NewCart(storage)
	require.NoError(t, err)
	assert.Empty(t, empty.Items())
}

func TestCartCorruptStorageRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "panier.json")
	storage := &FileCartStorage{Path: path}
	require.NoError(t, storage.Save([]byte("pas du json")))

	_, err := NewCart(storage)
	assert.Error(t, err)
}

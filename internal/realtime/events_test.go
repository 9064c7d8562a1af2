package realtime

import (
	"testing"
	"time"

	"makai_ordering/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEventValid(t *testing.T) {
	data, err := Event{
		Type:  EventOrderCreated,
		Order: models.Order{ID: "o1", RestaurantID: "r1", Status: "pending"},
	}.Encode()
	require.NoError(t, err)

	evt, err := DecodeEvent(data)
	require.NoError(t, err)
	assert.Equal(t, EventOrderCreated, evt.Type)
	assert.Equal(t, "o1", evt.Order.ID)
}

func TestDecodeEventRejectsBadPayloads(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"json illisible", `{pas du json`},
		{"type inconnu", `{"type":"mystere","order":{"id":"o1"}}`},
		{"type absent", `{"order":{"id":"o1"}}`},
		{"commande sans id", `{"type":"order_created","order":{}}`},
		{"statut inconnu", `{"type":"order_updated","order":{"id":"o1","status":"exotique"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeEvent([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestDecodeEventStatusOptional(t *testing.T) {
	// Un événement sans statut reste valide (fusion partielle côté client)
	evt, err := DecodeEvent([]byte(`{"type":"order_updated","order":{"id":"o1"}}`))
	require.NoError(t, err)
	assert.Empty(t, evt.Order.Status)
}

func TestWantsEventThrottlesDeepPages(t *testing.T) {
	update := Event{Type: EventOrderUpdated, Order: models.Order{ID: "o1", Status: "ready"}}
	created := Event{Type: EventOrderCreated, Order: models.Order{ID: "o2", Status: "pending"}}

	// Page 1 (défaut) : tout passe
	cl := &wsClient{}
	assert.True(t, cl.wantsEvent(update))
	assert.True(t, cl.wantsEvent(update))

	// Page profonde : une mise à jour par seconde au plus
	deep := &wsClient{page: 3, perPage: 10}
	assert.True(t, deep.wantsEvent(update))
	assert.False(t, deep.wantsEvent(update))

	deep.mu.Lock()
	deep.lastUpdateSent = time.Now().Add(-2 * time.Second)
	deep.mu.Unlock()
	assert.True(t, deep.wantsEvent(update))

	// Les créations ne sont jamais throttlées
	assert.True(t, deep.wantsEvent(created))
	assert.True(t, deep.wantsEvent(created))
}

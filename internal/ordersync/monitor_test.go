package ordersync

import (
	"sync"
	"testing"
	"time"

	"makai_ordering/internal/models"
	"makai_ordering/internal/realtime"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePush struct {
	mu         sync.Mutex
	connected  bool
	initErr    error
	nextHandle int
	handlers   map[string]map[int]func(models.Order)
}

func newFakePush() *fakePush {
	return &fakePush{handlers: make(map[string]map[int]func(models.Order))}
}

func (f *fakePush) Initialize() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.initErr != nil {
		return f.initErr
	}
	f.connected = true
	return nil
}

func (f *fakePush) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

func (f *fakePush) RegisterHandler(eventType string, fn func(models.Order)) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextHandle++
	if f.handlers[eventType] == nil {
		f.handlers[eventType] = make(map[int]func(models.Order))
	}
	f.handlers[eventType][f.nextHandle] = fn
	return f.nextHandle
}

func (f *fakePush) UnregisterHandler(eventType string, handle int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.handlers[eventType], handle)
}

func (f *fakePush) setConnected(connected bool) {
	f.mu.Lock()
	f.connected = connected
	f.mu.Unlock()
}

func (f *fakePush) setInitErr(err error) {
	f.mu.Lock()
	f.initErr = err
	f.mu.Unlock()
}

func (f *fakePush) handlerCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, m := range f.handlers {
		n += len(m)
	}
	return n
}

func (f *fakePush) emit(eventType string, order models.Order) {
	f.mu.Lock()
	var fns []func(models.Order)
	for _, fn := range f.handlers[eventType] {
		fns = append(fns, fn)
	}
	f.mu.Unlock()
	for _, fn := range fns {
		fn(order)
	}
}

func TestMonitorPollsWhilePushDown(t *testing.T) {
	push := newFakePush()
	push.setInitErr(assert.AnError)

	var mu sync.Mutex
	var sources []string
	m := NewMonitor(MonitorConfig{
		Push: push,
		Refresh: func(source string) {
			mu.Lock()
			sources = append(sources, source)
			mu.Unlock()
		},
		PollInterval:     10 * time.Millisecond,
		LivenessInterval: 5 * time.Millisecond,
	})
	m.Start()
	defer m.Stop()

	assert.True(t, m.Polling(), "push injoignable: le polling démarre immédiatement")

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(sources) > 0 && sources[0] == SourcePolling
	}, time.Second, 5*time.Millisecond)
}

func TestMonitorStopsPollingOnReconnect(t *testing.T) {
	push := newFakePush()
	push.setInitErr(assert.AnError)

	m := NewMonitor(MonitorConfig{
		Push:             push,
		Refresh:          func(string) {},
		PollInterval:     50 * time.Millisecond,
		LivenessInterval: 5 * time.Millisecond,
	})
	m.Start()
	defer m.Stop()

	require.True(t, m.Polling())

	// Le push revient : le polling doit s'arrêter au battement suivant
	push.setInitErr(nil)
	push.setConnected(true)

	require.Eventually(t, func() bool {
		return !m.Polling()
	}, time.Second, 2*time.Millisecond)
}

func TestMonitorSkipsPollingWhenPushHealthy(t *testing.T) {
	push := newFakePush()

	m := NewMonitor(MonitorConfig{
		Push:             push,
		Refresh:          func(string) {},
		LivenessInterval: 5 * time.Millisecond,
	})
	m.Start()
	defer m.Stop()

	assert.True(t, push.IsConnected())
	assert.False(t, m.Polling())
}

func TestMonitorRoutesPushEvents(t *testing.T) {
	push := newFakePush()

	var mu sync.Mutex
	var created, updated []string
	m := NewMonitor(MonitorConfig{
		Push:    push,
		Refresh: func(string) {},
		HandleNew: func(o models.Order) {
			mu.Lock()
			created = append(created, o.ID)
			mu.Unlock()
		},
		HandleUpdate: func(o models.Order) {
			mu.Lock()
			updated = append(updated, o.ID)
			mu.Unlock()
		},
		LivenessInterval: time.Hour,
	})
	m.Start()
	defer m.Stop()

	push.emit(realtime.EventOrderCreated, models.Order{ID: "o1"})
	push.emit(realtime.EventOrderUpdated, models.Order{ID: "o2"})

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"o1"}, created)
	assert.Equal(t, []string{"o2"}, updated)
}

func TestMonitorStopTearsDown(t *testing.T) {
	push := newFakePush()
	push.setInitErr(assert.AnError)

	m := NewMonitor(MonitorConfig{
		Push:             push,
		Refresh:          func(string) {},
		PollInterval:     10 * time.Millisecond,
		LivenessInterval: 5 * time.Millisecond,
	})
	m.Start()
	require.Equal(t, 2, push.handlerCount())

	m.Stop()
	m.Stop() // idempotent

	assert.False(t, m.Polling())
	assert.Equal(t, 0, push.handlerCount(), "les handlers sont désenregistrés à l'arrêt")
}

package ordersync

import (
	"sync"
	"time"
)

// DefaultPollInterval est la cadence du polling de secours
const DefaultPollInterval = 30 * time.Second

// Poller exécute un callback à intervalle fixe tant qu'il tourne.
// Start et Stop sont idempotents : le moniteur peut les appeler à chaque
// battement de liveness sans compter les tickers.
type Poller struct {
	interval time.Duration
	fn       func()

	mu     sync.Mutex
	stopCh chan struct{}
}

func NewPoller(interval time.Duration, fn func()) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{interval: interval, fn: fn}
}

func (p *Poller) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopCh != nil {
		return
	}
	ch := make(chan struct{})
	p.stopCh = ch
	go p.loop(ch)
}

func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopCh != nil {
		close(p.stopCh)
		p.stopCh = nil
	}
}

func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stopCh != nil
}

func (p *Poller) loop(stop chan struct{}) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			p.fn()
		}
	}
}

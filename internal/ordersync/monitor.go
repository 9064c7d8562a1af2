package ordersync

import (
	"log"
	"sync"
	"time"

	"makai_ordering/internal/models"
	"makai_ordering/internal/realtime"
)

// DefaultLivenessInterval est la cadence de vérification de l'état du canal push
const DefaultLivenessInterval = 5 * time.Second

// SourcePolling marque les refetch déclenchés par le polling de secours
const SourcePolling = "polling"

// MonitorConfig injecte les collaborateurs du moniteur. Push est une
// interface : les tests fournissent un faux canal dont ils contrôlent la
// liveness.
type MonitorConfig struct {
	Push         PushLink
	Refresh      func(source string)
	HandleNew    func(models.Order)
	HandleUpdate func(models.Order)

	PollInterval     time.Duration // défaut 30s
	LivenessInterval time.Duration // défaut 5s
}

// Monitor supervise le canal push et bascule le polling de secours.
// Invariant : push connecté et polling actif sont mutuellement exclusifs,
// à un battement de liveness près.
type Monitor struct {
	cfg    MonitorConfig
	poller *Poller

	stopOnce sync.Once
	stop     chan struct{}
	wg       sync.WaitGroup

	newHandle    int
	updateHandle int
}

func NewMonitor(cfg MonitorConfig) *Monitor {
	if cfg.LivenessInterval <= 0 {
		cfg.LivenessInterval = DefaultLivenessInterval
	}

	m := &Monitor{
		cfg:  cfg,
		stop: make(chan struct{}),
	}
	m.poller = NewPoller(cfg.PollInterval, m.pollTick)
	return m
}

// Start enregistre les handlers d'événements, tente la connexion push et
// arme le polling si elle échoue
func (m *Monitor) Start() {
	m.newHandle = m.cfg.Push.RegisterHandler(realtime.EventOrderCreated, m.cfg.HandleNew)
	m.updateHandle = m.cfg.Push.RegisterHandler(realtime.EventOrderUpdated, m.cfg.HandleUpdate)

	if err := m.cfg.Push.Initialize(); err != nil {
		log.Printf("⚠️ Push indisponible, bascule en polling: %v", err)
	}
	m.reconcile()

	m.wg.Add(1)
	go m.livenessLoop()
}

// Stop désenregistre les handlers et coupe tous les tickers. Idempotent.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() {
		close(m.stop)
		m.wg.Wait()
		m.poller.Stop()
		m.cfg.Push.UnregisterHandler(realtime.EventOrderCreated, m.newHandle)
		m.cfg.Push.UnregisterHandler(realtime.EventOrderUpdated, m.updateHandle)
	})
}

// Polling retourne true si le polling de secours est actif (observabilité)
func (m *Monitor) Polling() bool {
	return m.poller.Running()
}

func (m *Monitor) livenessLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.cfg.LivenessInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.reconcile()
		}
	}
}

// reconcile aligne le polling sur la liveness du push : connecté → polling
// coupé, déconnecté → polling armé
func (m *Monitor) reconcile() {
	if m.cfg.Push.IsConnected() {
		if m.poller.Running() {
			log.Printf("✅ Push rétabli, arrêt du polling de secours")
			m.poller.Stop()
		}
		return
	}
	if !m.poller.Running() {
		log.Printf("⚠️ Push déconnecté, polling de secours actif")
		m.poller.Start()
	}
}

// pollTick rafraîchit silencieusement la page courante et retente la
// connexion push en arrière-plan
func (m *Monitor) pollTick() {
	if m.cfg.Refresh != nil {
		m.cfg.Refresh(SourcePolling)
	}
	if err := m.cfg.Push.Initialize(); err == nil && m.cfg.Push.IsConnected() {
		m.reconcile()
	}
}

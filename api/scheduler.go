/*
scheduler.go - Background payment alert scheduler

PURPOSE:
  Periodically reclassifies every open party and logs the ones in
  nao_quitado or alerta_quitacao so overdue contracts surface without
  anyone opening the dashboard. Nothing is persisted; the classification
  is recomputed from live records on every sweep.

CONFIGURATION:
  - CheckInterval: How often to sweep (default: 1 hour)
  - Enabled: Whether the scheduler runs at all

USAGE:
  scheduler := NewAlertScheduler(store, pacing, logger)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - tracking.go: The same classification served over HTTP
  - receivables: Classify
*/
package api

import (
	"context"
	"sync"
	"time"

	"github.com/festeja/receivables-engine/logging"
	"github.com/festeja/receivables-engine/receivables"
	"github.com/festeja/receivables-engine/store/sqlite"
)

// AlertScheduler sweeps payment classifications on an interval.
type AlertScheduler struct {
	Store         *sqlite.Store
	Pacing        receivables.PacingPolicy
	CheckInterval time.Duration
	Enabled       bool

	log    *logging.Logger
	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewAlertScheduler creates a scheduler with a 1-hour sweep interval.
func NewAlertScheduler(store *sqlite.Store, pacing receivables.PacingPolicy, log *logging.Logger) *AlertScheduler {
	return &AlertScheduler{
		Store:         store,
		Pacing:        pacing,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		log:           log,
		stop:          make(chan struct{}),
	}
}

// Start begins the background sweep.
func (as *AlertScheduler) Start() {
	as.mu.Lock()
	defer as.mu.Unlock()

	if !as.Enabled {
		as.log.Info("alert scheduler disabled, not starting")
		return
	}

	as.ticker = time.NewTicker(as.CheckInterval)
	as.wg.Add(1)
	go as.run()

	as.log.Info("alert scheduler started", "interval", as.CheckInterval)
}

// Stop halts the scheduler and waits for an in-flight sweep to finish.
func (as *AlertScheduler) Stop() {
	as.mu.Lock()
	defer as.mu.Unlock()

	if as.ticker == nil {
		return
	}
	as.ticker.Stop()
	close(as.stop)
	as.wg.Wait()
	as.ticker = nil

	as.log.Info("alert scheduler stopped")
}

func (as *AlertScheduler) run() {
	defer as.wg.Done()

	// Sweep once on startup so alerts don't wait a full interval.
	as.Sweep(context.Background())

	for {
		select {
		case <-as.ticker.C:
			as.Sweep(context.Background())
		case <-as.stop:
			return
		}
	}
}

// Sweep classifies every open party and logs the alarming ones. Exported
// so the server can trigger a sweep on demand.
func (as *AlertScheduler) Sweep(ctx context.Context) {
	parties, err := as.Store.ListParties(ctx)
	if err != nil {
		as.log.Error("alert sweep failed to list parties", "error", err)
		return
	}
	paymentsByParty, err := as.Store.PaymentsByParty(ctx)
	if err != nil {
		as.log.Error("alert sweep failed to load payments", "error", err)
		return
	}

	now := time.Now()
	alerts := 0
	for _, p := range parties {
		if p.Status == receivables.PartyCanceled {
			continue
		}
		health := as.Pacing.Classify(p, paymentsByParty[p.ID], now)
		switch health.Status {
		case receivables.StatusNaoQuitado:
			alerts++
			as.log.Warn("party past payoff deadline with open balance",
				"party_id", p.ID,
				"code", p.Code,
				"balance_cents", health.BalanceCents,
				"event_date", p.EventDate.Format("2006-01-02"))
		case receivables.StatusAlertaQuitacao:
			alerts++
			as.log.Warn("party inside payoff window with open balance",
				"party_id", p.ID,
				"code", p.Code,
				"balance_cents", health.BalanceCents,
				"days_to_event", health.DaysToEvent)
		}
	}

	as.log.Info("alert sweep complete", "parties", len(parties), "alerts", alerts)
}

package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"

	"github.com/dyike/QuantumGPT/consts"
	"github.com/dyike/QuantumGPT/internal/dataflows"
	"github.com/dyike/QuantumGPT/models"
)

type Publisher interface {
	Publish(ev models.Event)
}

type Refresher interface {
	Refresh(ctx context.Context) *models.MarketOverview
}

type AlertSource interface {
	Active(ctx context.Context) (map[string][]models.Alert, error)
}

// Scheduler runs the periodic overview refresh and alert evaluation.
type Scheduler struct {
	Cron   *cron.Cron
	Board  Refresher
	Alerts AlertSource
	Lookup dataflows.Lookup
	Pub    Publisher
	Ctx    context.Context

	mu    sync.Mutex
	fired map[string]bool
	now   func() time.Time
}

func NewScheduler(ctx context.Context, board Refresher, alerts AlertSource, lookup dataflows.Lookup, pub Publisher) *Scheduler {
	return &Scheduler{
		Cron:   cron.New(),
		Board:  board,
		Alerts: alerts,
		Lookup: lookup,
		Pub:    pub,
		Ctx:    ctx,
		fired:  make(map[string]bool),
		now:    time.Now,
	}
}

// RegisterAll registers the overview and alert jobs. An empty spec skips
// the job.
func (s *Scheduler) RegisterAll(overviewSpec, alertSpec string) error {
	if overviewSpec != "" {
		if _, err := s.Cron.AddFunc(overviewSpec, s.overviewTask); err != nil {
			return fmt.Errorf("register overview task: %w", err)
		}
	}
	if alertSpec != "" {
		if _, err := s.Cron.AddFunc(alertSpec, s.alertTask); err != nil {
			return fmt.Errorf("register alert task: %w", err)
		}
	}
	return nil
}

func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[Scheduler] started")
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Println("[Scheduler] stopped")
}

func (s *Scheduler) overviewTask() {
	ov := s.RefreshOverview(s.Ctx)
	if ov == nil {
		return
	}
	log.Printf("[Scheduler] overview pushed (%d symbols)", len(ov.Snapshots))
}

func (s *Scheduler) alertTask() {
	triggers, err := s.EvaluateAlerts(s.Ctx)
	if err != nil {
		log.Printf("[Scheduler] evaluate alerts: %v", err)
		return
	}
	if len(triggers) > 0 {
		log.Printf("[Scheduler] %d alerts triggered", len(triggers))
	}
}

// RefreshOverview refreshes the overview and publishes it to every client.
func (s *Scheduler) RefreshOverview(ctx context.Context) *models.MarketOverview {
	if s.Board == nil {
		return nil
	}
	ov := s.Board.Refresh(ctx)
	if s.Pub != nil {
		s.Pub.Publish(models.Event{Type: consts.Event_Overview, Data: ov, Time: s.now().UTC()})
	}
	return ov
}

// EvaluateAlerts checks every active alert against the current price.
// An alert fires once when its condition becomes true and again only
// after the condition has been false in between. Alerts stay active.
func (s *Scheduler) EvaluateAlerts(ctx context.Context) ([]models.AlertTrigger, error) {
	active, err := s.Alerts.Active(ctx)
	if err != nil {
		return nil, err
	}

	prices := make(map[string]*float64)
	price := func(symbol string) *float64 {
		if p, ok := prices[symbol]; ok {
			return p
		}
		snap, err := s.Lookup.Fetch(ctx, symbol)
		if err != nil {
			log.Printf("[Scheduler] price for %s: %v", symbol, err)
		}
		var p *float64
		if snap != nil {
			p = snap.Price
		}
		prices[symbol] = p
		return p
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool)
	var out []models.AlertTrigger
	for clientID, alerts := range active {
		for _, al := range alerts {
			key := clientID + "/" + al.ID
			seen[key] = true
			p := price(al.Symbol)
			if p == nil {
				continue
			}
			if !al.Hit(*p) {
				s.fired[key] = false
				continue
			}
			if s.fired[key] {
				continue
			}
			s.fired[key] = true

			tr := models.AlertTrigger{
				AlertID:      al.ID,
				Symbol:       al.Symbol,
				Condition:    al.Condition,
				TargetPrice:  al.TargetPrice,
				CurrentPrice: *p,
				Message:      TriggerMessage(al, *p),
				ClientID:     clientID,
				TriggeredAt:  s.now().UTC(),
			}
			out = append(out, tr)
			log.Printf("[Scheduler] alert %s for %s: %s", al.ID, clientID, tr.Message)
			if s.Pub != nil {
				s.Pub.Publish(models.Event{Type: consts.Event_AlertTriggered, ClientID: clientID, Data: tr, Time: tr.TriggeredAt})
			}
		}
	}
	for key := range s.fired {
		if !seen[key] {
			delete(s.fired, key)
		}
	}
	return out, nil
}

// TriggerMessage renders the user-facing text of a fired alert.
func TriggerMessage(al models.Alert, current float64) string {
	return fmt.Sprintf("%s is now %s your target of $%s (Current: $%s)",
		al.Symbol, al.Condition,
		decimal.NewFromFloat(al.TargetPrice).StringFixed(2),
		decimal.NewFromFloat(current).StringFixed(2))
}

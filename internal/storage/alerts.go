package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/dyike/QuantumGPT/consts"
	"github.com/dyike/QuantumGPT/models"
)

type Alerts struct {
	mu    sync.Mutex
	kv    KV
	newID func() string
}

func NewAlerts(kv KV) *Alerts {
	return &Alerts{kv: kv, newID: uuid.NewString}
}

func (a *Alerts) List(ctx context.Context, clientID string) ([]models.Alert, error) {
	var list []models.Alert
	err := getJSON(ctx, a.kv, namespace(clientID), consts.Key_PriceAlerts, &list)
	if errors.Is(err, ErrNotFound) {
		return []models.Alert{}, nil
	}
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []models.Alert{}
	}
	return list, nil
}

// Create stores a new alert. Alerts start active unless in says otherwise.
func (a *Alerts) Create(ctx context.Context, clientID string, in models.AlertInput) (*models.Alert, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	list, err := a.List(ctx, clientID)
	if err != nil {
		return nil, err
	}
	alert := models.Alert{
		ID:          a.newID(),
		Symbol:      in.Symbol,
		Condition:   in.Condition,
		TargetPrice: in.TargetPrice,
		IsActive:    true,
	}
	if in.IsActive != nil {
		alert.IsActive = *in.IsActive
	}
	list = append(list, alert)
	if err := a.save(ctx, clientID, list); err != nil {
		return nil, err
	}
	return &alert, nil
}

func (a *Alerts) Update(ctx context.Context, clientID, id string, in models.AlertInput) (*models.Alert, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return a.modify(ctx, clientID, id, func(al *models.Alert) {
		al.Symbol = in.Symbol
		al.Condition = in.Condition
		al.TargetPrice = in.TargetPrice
		if in.IsActive != nil {
			al.IsActive = *in.IsActive
		}
	})
}

func (a *Alerts) SetActive(ctx context.Context, clientID, id string, active bool) (*models.Alert, error) {
	return a.modify(ctx, clientID, id, func(al *models.Alert) {
		al.IsActive = active
	})
}

// Toggle flips the active flag.
func (a *Alerts) Toggle(ctx context.Context, clientID, id string) (*models.Alert, error) {
	return a.modify(ctx, clientID, id, func(al *models.Alert) {
		al.IsActive = !al.IsActive
	})
}

func (a *Alerts) Remove(ctx context.Context, clientID, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	list, err := a.List(ctx, clientID)
	if err != nil {
		return err
	}
	out := make([]models.Alert, 0, len(list))
	for _, al := range list {
		if al.ID != id {
			out = append(out, al)
		}
	}
	if len(out) == len(list) {
		return fmt.Errorf("alert %s: %w", id, ErrNotFound)
	}
	return a.save(ctx, clientID, out)
}

// Active returns every active alert grouped by client.
func (a *Alerts) Active(ctx context.Context) (map[string][]models.Alert, error) {
	clients, err := a.kv.Namespaces(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]models.Alert)
	for _, c := range clients {
		list, err := a.List(ctx, c)
		if err != nil {
			return nil, err
		}
		for _, al := range list {
			if al.IsActive {
				out[c] = append(out[c], al)
			}
		}
	}
	return out, nil
}

func (a *Alerts) modify(ctx context.Context, clientID, id string, fn func(*models.Alert)) (*models.Alert, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	list, err := a.List(ctx, clientID)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].ID == id {
			fn(&list[i])
			if err := a.save(ctx, clientID, list); err != nil {
				return nil, err
			}
			updated := list[i]
			return &updated, nil
		}
	}
	return nil, fmt.Errorf("alert %s: %w", id, ErrNotFound)
}

func (a *Alerts) save(ctx context.Context, clientID string, list []models.Alert) error {
	return setJSON(ctx, a.kv, namespace(clientID), consts.Key_PriceAlerts, list)
}

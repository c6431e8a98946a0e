package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/dyike/QuantumGPT/models"
)

func newTestAlerts() *Alerts {
	a := NewAlerts(NewMemoryKV())
	n := 0
	a.newID = func() string {
		n++
		return fmt.Sprintf("alert-%d", n)
	}
	return a
}

func TestAlertsLifecycle(t *testing.T) {
	ctx := context.Background()
	a := newTestAlerts()

	if list, err := a.List(ctx, "c1"); err != nil || len(list) != 0 {
		t.Fatalf("initial list = %v, %v", list, err)
	}

	al, err := a.Create(ctx, "c1", models.AlertInput{Symbol: "btc", Condition: "Above", TargetPrice: 70000})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if al.ID != "alert-1" || al.Symbol != "BTC" || al.Condition != models.ConditionAbove || !al.IsActive {
		t.Fatalf("created %+v", al)
	}

	off := false
	if _, err := a.Create(ctx, "c1", models.AlertInput{Symbol: "ETH", Condition: "below", TargetPrice: 3000, IsActive: &off}); err != nil {
		t.Fatalf("Create second: %v", err)
	}

	al, err = a.Toggle(ctx, "c1", "alert-1")
	if err != nil || al.IsActive {
		t.Fatalf("Toggle = %+v, %v", al, err)
	}
	al, err = a.SetActive(ctx, "c1", "alert-2", true)
	if err != nil || !al.IsActive {
		t.Fatalf("SetActive = %+v, %v", al, err)
	}

	al, err = a.Update(ctx, "c1", "alert-2", models.AlertInput{Symbol: "eth", Condition: "above", TargetPrice: 4000})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if al.Condition != models.ConditionAbove || al.TargetPrice != 4000 || !al.IsActive {
		t.Fatalf("updated %+v", al)
	}

	active, err := a.Active(ctx)
	if err != nil {
		t.Fatalf("Active: %v", err)
	}
	if len(active["c1"]) != 1 || active["c1"][0].ID != "alert-2" {
		t.Fatalf("active = %+v", active)
	}

	if err := a.Remove(ctx, "c1", "alert-1"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := a.Remove(ctx, "c1", "alert-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second Remove: %v", err)
	}
	if _, err := a.Toggle(ctx, "c1", "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Toggle missing: %v", err)
	}
}

func TestAlertsValidateAndIsolateClients(t *testing.T) {
	ctx := context.Background()
	a := newTestAlerts()

	_, err := a.Create(ctx, "c1", models.AlertInput{Symbol: "", Condition: "sideways", TargetPrice: -1})
	var verr *models.ValidationError
	if !errors.As(err, &verr) || len(verr.Issues) != 3 {
		t.Fatalf("expected three issues, got %v", err)
	}

	if _, err := a.Create(ctx, "c1", models.AlertInput{Symbol: "SOL", Condition: "above", TargetPrice: 200}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if list, _ := a.List(ctx, "c2"); len(list) != 0 {
		t.Fatalf("client c2 sees c1 alerts: %v", list)
	}
}

func TestAlertHitIsStrict(t *testing.T) {
	above := models.Alert{Condition: models.ConditionAbove, TargetPrice: 100}
	below := models.Alert{Condition: models.ConditionBelow, TargetPrice: 100}
	if above.Hit(100) || below.Hit(100) {
		t.Fatalf("equal price must not trigger")
	}
	if !above.Hit(100.01) || !below.Hit(99.99) {
		t.Fatalf("crossing price must trigger")
	}
}

package netsync

import (
	"testing"
	"time"
)

func TestOptimisticIDsNegativeAndDecreasing(t *testing.T) {
	o := NewOptimisticTracker(300*time.Millisecond, nil)
	a := o.Spawn(0, 0, 100, 0, 0)
	b := o.Spawn(0, 0, 100, 0, 0)
	if a.ID != -1 || b.ID != -2 {
		t.Fatalf("expected ids -1, -2, got %d, %d", a.ID, b.ID)
	}
	if !a.Optimistic || !b.Optimistic {
		t.Fatalf("spawned shots must carry the optimistic tag")
	}
}

func TestOptimisticExpiresAfterWindowNotBefore(t *testing.T) {
	now := time.UnixMilli(0)
	o := NewOptimisticTracker(300*time.Millisecond, func() time.Time { return now })

	o.Spawn(0, 0, 100, 0, 0)

	now = now.Add(299 * time.Millisecond)
	if dropped := o.Expire(); dropped != nil {
		t.Fatalf("shot expired early: %v", dropped)
	}
	if o.Outstanding() != 1 {
		t.Fatalf("shot should still be live at 299ms")
	}

	now = now.Add(1 * time.Millisecond)
	dropped := o.Expire()
	if len(dropped) != 1 || dropped[0] != -1 {
		t.Fatalf("expected id -1 dropped at 300ms, got %v", dropped)
	}
	if o.Outstanding() != 0 {
		t.Fatalf("expired shot still tracked")
	}
}

func TestOptimisticReconcileRetiresOldestFirst(t *testing.T) {
	now := time.UnixMilli(0)
	o := NewOptimisticTracker(300*time.Millisecond, func() time.Time { return now })

	o.Spawn(0, 0, 100, 0, 0) // -1
	now = now.Add(10 * time.Millisecond)
	o.Spawn(0, 0, 100, 0, 0) // -2

	retired := o.Reconcile(1)
	if len(retired) != 1 || retired[0] != -1 {
		t.Fatalf("expected oldest shot (-1) retired, got %v", retired)
	}
	if o.Outstanding() != 1 {
		t.Fatalf("expected one shot left")
	}

	// Reconciling more than outstanding is bounded.
	retired = o.Reconcile(5)
	if len(retired) != 1 || retired[0] != -2 {
		t.Fatalf("expected -2 retired, got %v", retired)
	}
	if got := o.Reconcile(1); got != nil {
		t.Fatalf("nothing left to reconcile, got %v", got)
	}
}

func TestOptimisticActiveDeadReckons(t *testing.T) {
	now := time.UnixMilli(0)
	o := NewOptimisticTracker(time.Second, func() time.Time { return now })

	o.Spawn(10, 20, 100, -50, 0)
	now = now.Add(200 * time.Millisecond)

	active := o.Active()
	if len(active) != 1 {
		t.Fatalf("expected one live shot, got %d", len(active))
	}
	if active[0].X != 10+100*0.2 || active[0].Y != 20+-50*0.2 {
		t.Fatalf("expected (30, 10), got (%f, %f)", active[0].X, active[0].Y)
	}
}

package connectivity

import (
	"context"
	"sync"
	"testing"
	"time"
)

type fakeProber struct {
	mu     sync.Mutex
	online bool
}

func (p *fakeProber) set(online bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.online = online
}

func (p *fakeProber) Probe(ctx context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.online
}

func recvState(t *testing.T, ch <-chan bool) bool {
	t.Helper()
	select {
	case state := <-ch:
		return state
	case <-time.After(2 * time.Second):
		t.Fatal("no connectivity signal received")
		return false
	}
}

func TestFirstProbeIsAlwaysDelivered(t *testing.T) {
	prober := &fakeProber{online: false}
	m := NewMonitor(prober, 5*time.Millisecond)
	ch := m.Subscribe()

	m.Start(context.Background())
	defer m.Stop()

	if state := recvState(t, ch); state {
		t.Error("expected initial offline signal")
	}
}

func TestEmitsOnlyOnTransition(t *testing.T) {
	prober := &fakeProber{online: true}
	m := NewMonitor(prober, 5*time.Millisecond)
	ch := m.Subscribe()

	m.Start(context.Background())
	defer m.Stop()

	if state := recvState(t, ch); !state {
		t.Fatal("expected initial online signal")
	}

	// steady state produces no further signals
	select {
	case state := <-ch:
		t.Errorf("unexpected signal %v without a transition", state)
	case <-time.After(50 * time.Millisecond):
	}

	prober.set(false)
	if state := recvState(t, ch); state {
		t.Error("expected offline signal after transition")
	}

	prober.set(true)
	if state := recvState(t, ch); !state {
		t.Error("expected online signal after recovery")
	}
}

func TestSlowSubscriberSeesLatestState(t *testing.T) {
	prober := &fakeProber{online: true}
	m := NewMonitor(prober, 5*time.Millisecond)
	ch := m.Subscribe()

	m.Start(context.Background())
	defer m.Stop()

	// let several transitions pile up without reading
	for i := 0; i < 3; i++ {
		prober.set(false)
		time.Sleep(15 * time.Millisecond)
		prober.set(true)
		time.Sleep(15 * time.Millisecond)
	}

	deadline := time.After(2 * time.Second)
	var last bool
	for {
		select {
		case state := <-ch:
			last = state
		case <-deadline:
			t.Fatal("never drained the subscription")
		case <-time.After(100 * time.Millisecond):
			if !last {
				t.Error("expected the final observed state to be online")
			}
			return
		}
	}
}

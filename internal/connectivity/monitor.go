package connectivity

import (
	"context"
	"sync"
	"time"

	"github.com/redis/rueidis"
)

// Prober answers whether the remote side is currently reachable.
type Prober interface {
	Probe(ctx context.Context) bool
}

// RedisProber pings the same redis instance the remote task store uses, so
// "online" means the store of record is reachable.
type RedisProber struct {
	client rueidis.Client
}

func NewRedisProber(client rueidis.Client) *RedisProber {
	return &RedisProber{client: client}
}

func (p *RedisProber) Probe(ctx context.Context) bool {
	cmd := p.client.B().Ping().Build()
	return p.client.Do(ctx, cmd).Error() == nil
}

// Monitor polls a Prober and pushes a signal to subscribers on every
// online/offline transition. State is unknown until the first probe
// completes, so the first result is always delivered.
type Monitor struct {
	prober   Prober
	interval time.Duration

	mu      sync.Mutex
	known   bool
	online  bool
	subs    []chan bool
	stop    chan struct{}
	stopped sync.WaitGroup
}

func NewMonitor(prober Prober, interval time.Duration) *Monitor {
	return &Monitor{
		prober:   prober,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

// Subscribe returns a channel that receives the connectivity state on every
// transition. The channel is buffered so a slow consumer cannot stall the
// probe loop; a missed intermediate state is superseded by the next one.
func (m *Monitor) Subscribe() <-chan bool {
	ch := make(chan bool, 1)

	m.mu.Lock()
	m.subs = append(m.subs, ch)
	m.mu.Unlock()

	return ch
}

func (m *Monitor) Start(ctx context.Context) {
	m.stopped.Add(1)
	go func() {
		defer m.stopped.Done()

		m.probeOnce(ctx)

		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				m.probeOnce(ctx)
			case <-m.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (m *Monitor) probeOnce(ctx context.Context) {
	online := m.prober.Probe(ctx)

	m.mu.Lock()
	changed := !m.known || m.online != online
	m.known = true
	m.online = online
	subs := m.subs
	m.mu.Unlock()

	if !changed {
		return
	}

	for _, ch := range subs {
		select {
		case ch <- online:
		default:
			// drop stale signal, subscriber will see the next transition
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- online:
			default:
			}
		}
	}
}

func (m *Monitor) Stop() {
	close(m.stop)
	m.stopped.Wait()
}

package sse

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kasuganosora/rpgcore/server/cache"
	"github.com/kasuganosora/rpgcore/server/plugin/hook"
)

// CombatChannel carries world events as JSON.
const CombatChannel = "combat"

const (
	publishQueue   = 512
	publishTimeout = 2 * time.Second
)

// Publisher forwards hook events to the combat channel. Hooks fire inside
// the world tick, so publishing happens on a separate goroutine and a full
// queue drops the event.
type Publisher struct {
	pubsub   cache.PubSub
	queue    chan []byte
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	logger   *zap.Logger
}

func NewPublisher(ps cache.PubSub, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Publisher{
		pubsub: ps,
		queue:  make(chan []byte, publishQueue),
		stopCh: make(chan struct{}),
		logger: logger,
	}
	p.wg.Add(1)
	go p.loop()
	return p
}

// Attach subscribes the publisher to every world event. It runs after
// other handlers so it sees their final payload.
func (p *Publisher) Attach(hc *hook.HookCenter) {
	for _, ev := range hook.Events() {
		hc.Register(ev, 1000, "sse", func(_ context.Context, event string, data any) (any, error) {
			payload, err := json.Marshal(data)
			if err != nil {
				p.logger.Warn("sse: event not serializable", zap.String("event", event), zap.Error(err))
				return data, nil
			}
			select {
			case p.queue <- payload:
			default:
				p.logger.Warn("sse: publish queue full, dropping event", zap.String("event", event))
			}
			return data, nil
		})
	}
}

// Stop publishes what is queued and waits for the worker.
func (p *Publisher) Stop() {
	p.stopOnce.Do(func() { close(p.stopCh) })
	p.wg.Wait()
}

func (p *Publisher) loop() {
	defer p.wg.Done()
	for {
		select {
		case payload := <-p.queue:
			p.publish(payload)
		case <-p.stopCh:
			for {
				select {
				case payload := <-p.queue:
					p.publish(payload)
				default:
					return
				}
			}
		}
	}
}

func (p *Publisher) publish(payload []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := p.pubsub.Publish(ctx, CombatChannel, string(payload)); err != nil {
		p.logger.Warn("sse: publish failed", zap.Error(err))
	}
}

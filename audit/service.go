package audit

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/kasuganosora/rpgcore/server/game/world"
	"github.com/kasuganosora/rpgcore/server/model"
	"github.com/kasuganosora/rpgcore/server/plugin/hook"
)

// Audited actions.
const (
	ActionDeath   = "death"
	ActionLevelUp = "level_up"
	ActionSave    = "save"
	ActionLoad    = "load"
	ActionDelete  = "delete"
)

const (
	queueSize     = 1024
	batchSize     = 100
	flushInterval = 2 * time.Second
)

// Entry is one event to be recorded.
type Entry struct {
	TraceID string
	Action  string
	ActorID string
	Slot    string
	SimTime float64
	Detail  any
	Error   string
	IP      string
}

// Service writes entries to the audit_logs table from a background worker,
// in batches.
type Service struct {
	db       *gorm.DB
	queue    chan *model.AuditLog
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	logger   *zap.Logger
}

// New starts the worker.
func New(db *gorm.DB, logger *zap.Logger) *Service {
	svc := &Service{
		db:     db,
		queue:  make(chan *model.AuditLog, queueSize),
		stopCh: make(chan struct{}),
		logger: logger,
	}
	svc.wg.Add(1)
	go svc.worker()
	return svc
}

// Log queues e. When the queue is full the entry is dropped with a warning.
func (svc *Service) Log(e Entry) {
	detail, err := json.Marshal(e.Detail)
	if err != nil {
		detail = []byte("null")
	}
	record := &model.AuditLog{
		TraceID: e.TraceID,
		Action:  e.Action,
		ActorID: e.ActorID,
		Slot:    e.Slot,
		SimTime: e.SimTime,
		Detail:  datatypes.JSON(detail),
		Error:   e.Error,
		IP:      e.IP,
	}
	select {
	case svc.queue <- record:
	default:
		svc.logger.Warn("audit queue full, dropping entry", zap.String("action", e.Action))
	}
}

// Attach records deaths and level-ups raised by the world.
func (svc *Service) Attach(hc *hook.HookCenter) {
	record := func(action string) hook.HookFn {
		return func(_ context.Context, _ string, data any) (any, error) {
			if ev, ok := data.(world.Event); ok {
				svc.Log(Entry{Action: action, ActorID: ev.ActorID.String(), SimTime: ev.Time, Detail: ev})
			}
			return data, nil
		}
	}
	hc.Register(hook.AfterActorDeath, 100, "audit", record(ActionDeath))
	hc.Register(hook.OnLevelUp, 100, "audit", record(ActionLevelUp))
}

// Stop drains the queue, writes what is left and waits for the worker.
func (svc *Service) Stop(_ context.Context) {
	svc.stopOnce.Do(func() { close(svc.stopCh) })
	svc.wg.Wait()
}

func (svc *Service) worker() {
	defer svc.wg.Done()
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	batch := make([]*model.AuditLog, 0, batchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := svc.db.Create(&batch).Error; err != nil {
			svc.logger.Error("audit batch write failed", zap.Int("entries", len(batch)), zap.Error(err))
		}
		batch = batch[:0]
	}

	for {
		select {
		case rec := <-svc.queue:
			batch = append(batch, rec)
			if len(batch) >= batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-svc.stopCh:
			for {
				select {
				case rec := <-svc.queue:
					batch = append(batch, rec)
					if len(batch) >= batchSize {
						flush()
					}
				default:
					flush()
					return
				}
			}
		}
	}
}

package poller

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/anicoll/sunweg-integration/internal/pkg/contxt"
	"github.com/anicoll/sunweg-integration/internal/pkg/model"
)

var ErrCron = errors.New("cron error")

type sunwegClient interface {
	Authenticate(ctx context.Context) (bool, error)
	ListPlants(ctx context.Context) ([]*model.Plant, error)
	CompleteInverter(ctx context.Context, inv *model.Inverter) error
	MonthStatsProductionByID(ctx context.Context, year, month, plantID int, inverterID *int) ([]model.ProductionStats, error)
}

type statsStore interface {
	WriteProductionStats(ctx context.Context, plantID int, inverterID *int, stats []model.ProductionStats) error
}

type publisher interface {
	PublishData(ctx context.Context, deviceStatusMap map[model.Device][]model.DeviceStatus) error
	RegisterDevice(device *model.Device) error
}

// Snapshot is the result of one poll. It is never modified once published.
type Snapshot struct {
	RunID      uuid.UUID                       `json:"run_id"`
	Time       time.Time                       `json:"time"`
	Plants     []*model.Plant                  `json:"plants"`
	MonthStats map[int][]model.ProductionStats `json:"month_stats"`
}

// Plant looks up a plant by id.
func (s *Snapshot) Plant(id int) (*model.Plant, bool) {
	return lo.Find(s.Plants, func(p *model.Plant) bool {
		return p.ID == id
	})
}

// poller is the only user of the SunWEG client, which is not safe for
// concurrent use. Everything else reads snapshots.
type poller struct {
	client        sunwegClient
	store         statsStore
	publisher     publisher
	logger        *zap.Logger
	now           func() time.Time
	authenticated bool

	mu     sync.RWMutex
	latest *Snapshot
}

// New builds a poller. store and publisher may be nil.
func New(client sunwegClient, store statsStore, publisher publisher) *poller {
	return &poller{
		client:    client,
		store:     store,
		publisher: publisher,
		logger:    zap.L(),
		now:       time.Now,
	}
}

// Latest returns the most recent snapshot, nil before the first poll.
func (p *poller) Latest() *Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.latest
}

// Poll fetches every plant, completes its inverters, stores the current
// month production and publishes the measurements. A failure on one plant is
// logged and does not stop the others.
func (p *poller) Poll(ctx context.Context) error {
	runID := uuid.New()
	logger := p.logger.With(zap.String("run_id", runID.String()))

	if !p.authenticated {
		ok, err := p.client.Authenticate(ctx)
		if err != nil {
			return err
		}
		if !ok {
			logger.Warn("authentication skipped or rejected, relying on configured token")
		}
		p.authenticated = true
	}

	plants, err := p.client.ListPlants(ctx)
	if err != nil {
		return err
	}

	now := p.now()
	snapshot := &Snapshot{
		RunID:      runID,
		Time:       now,
		Plants:     plants,
		MonthStats: make(map[int][]model.ProductionStats, len(plants)),
	}

	for _, plant := range plants {
		plantLogger := logger.With(zap.Int("plant_id", plant.ID))
		incomplete := lo.Filter(plant.Inverters, func(inv *model.Inverter, _ int) bool {
			return !inv.IsComplete()
		})
		for _, inv := range incomplete {
			if err := p.client.CompleteInverter(ctx, inv); err != nil {
				plantLogger.Error("failed to complete inverter", zap.Int("inverter_id", inv.ID), zap.Error(err))
			}
		}

		stats, err := p.client.MonthStatsProductionByID(ctx, now.Year(), int(now.Month()), plant.ID, nil)
		if err != nil {
			plantLogger.Error("failed to fetch month stats", zap.Error(err))
			continue
		}
		snapshot.MonthStats[plant.ID] = stats
		if p.store != nil {
			if err := p.store.WriteProductionStats(ctx, plant.ID, nil, stats); err != nil {
				plantLogger.Error("failed to store month stats", zap.Error(err))
			}
		}
	}

	p.publish(snapshot)

	p.mu.Lock()
	p.latest = snapshot
	p.mu.Unlock()
	logger.Info("poll complete", zap.Int("plants", len(plants)))
	return nil
}

func (p *poller) publish(snapshot *Snapshot) {
	if p.publisher == nil {
		return
	}
	statuses := DeviceStatuses(snapshot.Plants)
	for device := range statuses {
		if err := p.publisher.RegisterDevice(&device); err != nil {
			p.logger.Error("failed to register device", zap.String("device", device.ID), zap.Error(err))
		}
	}
	if err := p.publisher.PublishData(contxt.NewContext(10*time.Second), statuses); err != nil {
		p.logger.Error("failed to publish data", zap.Error(err))
	}
}

// Run polls once and then on every tick of schedule until ctx is done.
// Scheduled polls that fail are reported on errChan.
func (p *poller) Run(ctx context.Context, schedule string, errChan chan<- error) error {
	if err := p.Poll(ctx); err != nil {
		return err
	}

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(schedule, func() {
		if err := p.Poll(ctx); err != nil {
			p.logger.Error("scheduled poll failed", zap.Error(err))
			errChan <- errors.Join(ErrCron, err)
		}
	}); err != nil {
		return err
	}

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return ctx.Err()
}

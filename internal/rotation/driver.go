package rotation

import (
	"context"
	"time"

	"github.com/zeromicro/go-zero/core/logx"
)

// DriverConfig mirrors spec §6's rotation.check_interval_ms.
type DriverConfig struct {
	CheckInterval time.Duration
}

func (c *DriverConfig) setDefaults() {
	if c.CheckInterval == 0 {
		c.CheckInterval = 60 * time.Second
	}
}

// Driver polls the in-flight rotation set and auto-advances any rotation
// whose time condition has elapsed (spec §4.7: DUAL_ACTIVE -> OLD_DEPRECATED
// once the transition window ends). INITIATED -> DUAL_ACTIVE and
// OLD_DEPRECATED -> NEW_ACTIVE are operator-triggered, not time-driven, so
// the driver only ever moves a rotation across the one edge that has a
// clock attached to it. Grounded on the teacher's rest.MustNewServer
// background-goroutine-with-stop-channel idiom, reused from
// internal/secretstore.VaultStore.reauthLoop and internal/cache.RedisCache.pingLoop.
type Driver struct {
	sm   *StateMachine
	cfg  DriverConfig
	stop chan struct{}
}

func NewDriver(sm *StateMachine, cfg DriverConfig) *Driver {
	cfg.setDefaults()
	return &Driver{sm: sm, cfg: cfg, stop: make(chan struct{})}
}

func (d *Driver) Start() {
	go d.loop()
}

func (d *Driver) Stop() {
	close(d.stop)
}

func (d *Driver) loop() {
	ticker := time.NewTicker(d.cfg.CheckInterval)
	defer ticker.Stop()
	for {
		select {
		case <-d.stop:
			return
		case <-ticker.C:
			d.tick()
		}
	}
}

func (d *Driver) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), d.cfg.CheckInterval)
	defer cancel()

	for _, r := range d.sm.snapshotActive() {
		if r.CurrentState != StateDualActive {
			continue
		}
		tr, err := d.sm.getTransitionRecord(ctx, r.ClientID)
		if err != nil {
			logx.Errorf("rotation driver: read transition record for %s: %v", r.ClientID, err)
			continue
		}
		if !tr.Expired(time.Now()) {
			continue
		}
		if _, err := d.sm.AdvanceToOldDeprecated(ctx, r.RotationID); err != nil {
			logx.Errorf("rotation driver: auto-advance %s to OLD_DEPRECATED: %v", r.RotationID, err)
		} else {
			logx.Infof("rotation driver: advanced %s (%s) to OLD_DEPRECATED", r.RotationID, r.ClientID)
		}
	}
}

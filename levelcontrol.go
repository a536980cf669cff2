package appgridlog

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// LevelController keeps a LevelSwitch in step with the level configured on
// the AppGrid service, so the remote setting becomes the source of truth.
type LevelController struct {
	levelSwitch *LevelSwitch
	opts        Options
	interval    time.Duration
	onError     func(error)

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	lastLevel atomic.Int32
}

// LevelControllerOptions configures a LevelController.
type LevelControllerOptions struct {
	// CheckInterval is how often the remote level is fetched.
	// Default: 30 seconds
	CheckInterval time.Duration

	// OnError receives fetch failures. A failed check leaves the switch
	// unchanged until the next tick.
	// Default: no-op
	OnError func(error)

	// InitialCheck fetches once immediately on start.
	InitialCheck bool
}

// NewLevelController starts polling the remote level with opts and applies
// changes to levelSwitch. Call Close to stop it.
func NewLevelController(levelSwitch *LevelSwitch, opts Options, options LevelControllerOptions) *LevelController {
	if options.CheckInterval <= 0 {
		options.CheckInterval = 30 * time.Second
	}
	if options.OnError == nil {
		options.OnError = func(error) {}
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &LevelController{
		levelSwitch: levelSwitch,
		opts:        opts,
		interval:    options.CheckInterval,
		onError:     options.OnError,
		cancel:      cancel,
	}
	c.lastLevel.Store(int32(levelSwitch.Level()))

	c.wg.Add(1)
	go c.loop(ctx, options.InitialCheck)

	return c
}

func (c *LevelController) loop(ctx context.Context, initialCheck bool) {
	defer c.wg.Done()

	if initialCheck {
		c.check(ctx)
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.check(ctx)
		}
	}
}

func (c *LevelController) check(ctx context.Context) {
	if err := c.ForceCheck(ctx); err != nil && ctx.Err() == nil {
		c.onError(err)
	}
}

// ForceCheck fetches the remote level now and applies it.
func (c *LevelController) ForceCheck(ctx context.Context) error {
	level, err := FetchRemoteSeverity(ctx, c.opts)
	if err != nil {
		return err
	}
	c.lastLevel.Store(int32(level))
	c.levelSwitch.SetLevel(level)
	return nil
}

// LastRemoteLevel returns the level most recently fetched, or the switch's
// starting level if no fetch has succeeded.
func (c *LevelController) LastRemoteLevel() Severity {
	return Severity(c.lastLevel.Load())
}

// Close stops polling and waits for an in-flight check to finish.
func (c *LevelController) Close() {
	c.cancel()
	c.wg.Wait()
}

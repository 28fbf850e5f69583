package trainer

import (
	"context"
	"io"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lowaak/interval-timer/internal/go_func_utils"
	"github.com/lowaak/interval-timer/internal/timer"
)

// Beeper makes one audible beep. tcell.Screen satisfies it.
type Beeper interface {
	Beep() error
}

// BellWriter beeps by writing the BEL character, for use without a screen
type BellWriter struct {
	W io.Writer
}

func (b BellWriter) Beep() error {
	_, err := io.WriteString(b.W, "\a")
	return err
}

const cueQueueSize = 8

// CuePlayer turns timer cues into beeps on its own goroutine so the timer
// never waits on the terminal. A tick is one beep and a transition two.
// Failures and panics in the Beeper are logged and dropped.
type CuePlayer struct {
	beeper  Beeper
	logger  *log.Logger
	enabled atomic.Bool
	gap     time.Duration
	cues    chan timer.Cue
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewCuePlayer(beeper Beeper, enabled bool, logger *log.Logger) *CuePlayer {
	if beeper == nil {
		panic("CuePlayer: beeper cannot be nil")
	}
	if logger == nil {
		panic("CuePlayer: logger cannot be nil")
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &CuePlayer{
		beeper: beeper,
		logger: logger,
		gap:    cueRepeatGap,
		cues:   make(chan timer.Cue, cueQueueSize),
		ctx:    ctx,
		cancel: cancel,
	}
	p.enabled.Store(enabled)

	p.wg.Add(1)
	go_func_utils.SafeGo(logger, "CuePlayer", p.run)
	return p
}

// Play queues cue. It never blocks; cues are dropped while the queue is full.
func (p *CuePlayer) Play(cue timer.Cue) {
	if !p.enabled.Load() {
		return
	}
	select {
	case p.cues <- cue:
	default:
	}
}

func (p *CuePlayer) SetEnabled(enabled bool) {
	p.enabled.Store(enabled)
}

func (p *CuePlayer) Enabled() bool {
	return p.enabled.Load()
}

// Shutdown stops the player goroutine and waits for it
func (p *CuePlayer) Shutdown() {
	p.cancel()
	p.wg.Wait()
}

func (p *CuePlayer) run() {
	defer p.wg.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case cue := <-p.cues:
			err := go_func_utils.SafeCall(p.logger, "CuePlayer", func() error { return p.beep(cue) })
			if err != nil {
				p.logger.Printf("CuePlayer: %s cue failed: %v", cue, err)
			}
		}
	}
}

func (p *CuePlayer) beep(cue timer.Cue) error {
	count := 1
	if cue == timer.CueTransition {
		count = 2
	}
	for i := range count {
		if i > 0 {
			select {
			case <-time.After(p.gap):
			case <-p.ctx.Done():
				return nil
			}
		}
		if err := p.beeper.Beep(); err != nil {
			return err
		}
	}
	return nil
}

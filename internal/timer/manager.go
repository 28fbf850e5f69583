package timer

import (
	"log"
	"sync"
	"time"

	"github.com/lowaak/interval-timer/internal/events"
	"github.com/lowaak/interval-timer/internal/go_func_utils"
	"github.com/lowaak/interval-timer/internal/workout"
)

// DefaultTickInterval is the wall-clock length of one engine second
const DefaultTickInterval = time.Second

// Plan is the structure together with the block compiled from it
type Plan struct {
	Structure workout.WorkoutStructure
	Block     workout.CompiledBlock
}

// StateSink receives everything the presentation layer renders. Methods are
// called from the timer goroutine and must not block or call back into the
// TimerManager.
type StateSink interface {
	SetTimerState(state Snapshot)
	SetWorkoutPlan(plan Plan)
}

// timerCommand represents commands sent to the timer goroutine
type timerCommand int

const (
	cmdStart timerCommand = iota
	cmdPause
	cmdReset
	cmdToggle
	cmdSetStructure
	cmdSetExerciseNames
	cmdEditBlock
)

func (c timerCommand) String() string {
	switch c {
	case cmdStart:
		return "start"
	case cmdPause:
		return "pause"
	case cmdReset:
		return "reset"
	case cmdToggle:
		return "toggle"
	case cmdSetStructure:
		return "set structure"
	case cmdSetExerciseNames:
		return "set exercise names"
	case cmdEditBlock:
		return "edit block"
	default:
		return "unknown"
	}
}

// BlockEdit derives a new block from the current one. ok false leaves the
// block untouched.
type BlockEdit func(current workout.CompiledBlock) (edited workout.CompiledBlock, ok bool)

type commandRequest struct {
	cmd       timerCommand
	structure workout.WorkoutStructure
	names     []string
	edit      BlockEdit
	reply     chan commandResult
}

// TimerManager owns the Engine and the ticker that drives it. Control calls
// are handed to a single goroutine, so ticks and commands never interleave
// and the ticker runs exactly while the engine is running.
type TimerManager struct {
	sink         StateSink
	logger       *log.Logger
	tickInterval time.Duration

	// protected by mu
	mu     sync.RWMutex
	engine *Engine

	cueEvent *events.CallbackEvent[Cue]

	// Goroutine management
	cmdChan      chan commandRequest
	doneChan     chan struct{}
	wg           sync.WaitGroup
	shutdownOnce sync.Once
}

// NewTimerManager creates a TimerManager for structure and starts its goroutine.
// A tickInterval of zero or less selects DefaultTickInterval.
func NewTimerManager(sink StateSink, structure workout.WorkoutStructure, tickInterval time.Duration, logger *log.Logger) *TimerManager {
	if sink == nil {
		panic("TimerManager: sink cannot be nil")
	}
	if logger == nil {
		panic("TimerManager: logger cannot be nil")
	}
	if tickInterval <= 0 {
		tickInterval = DefaultTickInterval
	}

	structure.ExerciseNames = workout.ResizeExerciseNames(structure.ExerciseNames, max(1, structure.NumExercises))

	tm := &TimerManager{
		sink:         sink,
		logger:       logger,
		tickInterval: tickInterval,
		engine:       NewEngine(structure),
		cueEvent:     events.NewCallbackEvent[Cue](false),
		cmdChan:      make(chan commandRequest, 1),
		doneChan:     make(chan struct{}),
	}
	tm.cueEvent.OnListenerPanic(func(r any) {
		tm.logger.Printf("TimerManager: cue listener panicked: %v", r)
	})

	tm.publishPlan(tm.Plan())
	sink.SetTimerState(tm.Snapshot())

	tm.wg.Add(1)
	go_func_utils.SafeGo(logger, "TimerManager", tm.runTimerLoop)

	return tm
}

// ListenToCues registers fn for audio cues. fn runs on the timer goroutine;
// a panic inside it is logged and ignored.
func (tm *TimerManager) ListenToCues(fn func(Cue)) func() {
	return tm.cueEvent.Listen(fn)
}

// Start begins or resumes the countdown
func (tm *TimerManager) Start() Snapshot {
	return tm.send(commandRequest{cmd: cmdStart}).state
}

// Pause freezes the countdown
func (tm *TimerManager) Pause() Snapshot {
	return tm.send(commandRequest{cmd: cmdPause}).state
}

// Reset stops and rewinds to the first phase
func (tm *TimerManager) Reset() Snapshot {
	return tm.send(commandRequest{cmd: cmdReset}).state
}

// Toggle starts a paused timer or pauses a running one
func (tm *TimerManager) Toggle() Snapshot {
	return tm.send(commandRequest{cmd: cmdToggle}).state
}

// SetStructure applies a new structure. The exercise-name list is resized to
// match the exercise count. Only changes to the block shape reset the timer.
func (tm *TimerManager) SetStructure(structure workout.WorkoutStructure) Snapshot {
	state, _ := tm.ApplyStructure(structure)
	return state
}

// ApplyStructure is SetStructure that also reports whether the block was
// rebuilt and the timer reset
func (tm *TimerManager) ApplyStructure(structure workout.WorkoutStructure) (state Snapshot, rebuilt bool) {
	structure = structure.Clone()
	structure.ExerciseNames = workout.ResizeExerciseNames(structure.ExerciseNames, max(1, structure.NumExercises))
	result := tm.send(commandRequest{cmd: cmdSetStructure, structure: structure})
	return result.state, result.applied
}

// SetExerciseNames renames exercises without resetting the timer
func (tm *TimerManager) SetExerciseNames(names []string) Snapshot {
	return tm.send(commandRequest{cmd: cmdSetExerciseNames, names: append([]string(nil), names...)}).state
}

// SetBlock installs a hand-edited phase list and resets the timer
func (tm *TimerManager) SetBlock(block workout.CompiledBlock) Snapshot {
	block = block.Clone()
	return tm.send(commandRequest{cmd: cmdEditBlock, edit: func(workout.CompiledBlock) (workout.CompiledBlock, bool) {
		return block, true
	}}).state
}

// EditBlock runs edit against the current block on the timer goroutine, so
// no other command can change the block between the read and the write. When
// edit succeeds the result is installed and the timer reset. The returned
// block is the one in effect afterwards.
func (tm *TimerManager) EditBlock(edit BlockEdit) (workout.CompiledBlock, bool) {
	result := tm.send(commandRequest{cmd: cmdEditBlock, edit: edit})
	if !result.planChanged {
		return tm.Plan().Block, false
	}
	return result.plan.Block, result.applied
}

// Snapshot returns the current state
func (tm *TimerManager) Snapshot() Snapshot {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return tm.engine.Snapshot()
}

// Structure returns the structure currently in effect
func (tm *TimerManager) Structure() workout.WorkoutStructure {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return tm.engine.Structure()
}

// Plan returns the structure and compiled block currently in effect
func (tm *TimerManager) Plan() Plan {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	return Plan{Structure: tm.engine.Structure(), Block: tm.engine.Block()}
}

// Shutdown stops the timer goroutine. Safe to call multiple times.
func (tm *TimerManager) Shutdown() {
	tm.shutdownOnce.Do(func() {
		tm.logger.Printf("TimerManager: Shutting down")
		close(tm.doneChan)
		tm.wg.Wait()
		tm.logger.Printf("TimerManager: Shutdown complete")
	})
}

// send hands req to the timer goroutine and waits for the result.
// After Shutdown it returns the last state without doing anything.
func (tm *TimerManager) send(req commandRequest) commandResult {
	req.reply = make(chan commandResult, 1)
	select {
	case tm.cmdChan <- req:
	case <-tm.doneChan:
		return commandResult{state: tm.Snapshot()}
	}
	select {
	case result := <-req.reply:
		return result
	case <-tm.doneChan:
		return commandResult{state: tm.Snapshot()}
	}
}

// commandResult is what applyCommand hands back to the loop and the caller
type commandResult struct {
	state       Snapshot
	planChanged bool
	plan        Plan
	applied     bool // structure: block rebuilt; edit: edit accepted
}

// applyCommand mutates the engine under lock
func (tm *TimerManager) applyCommand(req commandRequest) commandResult {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	var result commandResult
	e := tm.engine
	switch req.cmd {
	case cmdStart:
		if !e.Start() {
			tm.logger.Printf("TimerManager: Nothing to run, block is empty")
		}
	case cmdPause:
		e.Pause()
	case cmdReset:
		e.Reset()
	case cmdToggle:
		if e.State().Running {
			e.Pause()
		} else if !e.Start() {
			tm.logger.Printf("TimerManager: Nothing to run, block is empty")
		}
	case cmdSetStructure:
		if e.SetStructure(req.structure) {
			tm.logger.Printf("TimerManager: Structure changed, block rebuilt with %d phases", len(e.block.Phases))
			result.applied = true
		}
		result.planChanged = true
	case cmdSetExerciseNames:
		e.SetExerciseNames(req.names)
		result.planChanged = true
	case cmdEditBlock:
		edited, ok := req.edit(e.Block())
		if !ok {
			break
		}
		e.SetBlock(edited)
		tm.logger.Printf("TimerManager: Block edited, now %d phases", len(e.block.Phases))
		result.applied = true
		result.planChanged = true
	}

	result.state = e.Snapshot()
	if result.planChanged {
		result.plan = Plan{Structure: e.Structure(), Block: e.Block()}
	}
	return result
}

// tickResult holds the result of processing a timer tick
type tickResult struct {
	state   Snapshot
	cues    []Cue
	skip    bool // engine wasn't running
	stopped bool // cap reached
}

// handleTick advances the engine by one second under lock
func (tm *TimerManager) handleTick() tickResult {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	res := tm.engine.Tick()
	if res.Skipped {
		return tickResult{skip: true}
	}
	return tickResult{
		state:   tm.engine.Snapshot(),
		cues:    res.Cues,
		stopped: res.Stopped,
	}
}

func (tm *TimerManager) publishPlan(plan Plan) {
	tm.sink.SetWorkoutPlan(plan)
}

// runTimerLoop is the goroutine that owns the ticker
func (tm *TimerManager) runTimerLoop() {
	defer tm.wg.Done()

	ticker := time.NewTicker(tm.tickInterval)
	ticker.Stop() // started when the engine starts running
	tickerActive := false

	syncTicker := func(running bool) {
		switch {
		case running && !tickerActive:
			ticker.Reset(tm.tickInterval)
			tickerActive = true
		case !running && tickerActive:
			ticker.Stop()
			tickerActive = false
		}
	}

	for {
		select {
		case <-tm.doneChan:
			ticker.Stop()
			tm.logger.Printf("TimerManager: Goroutine exiting")
			return

		case req := <-tm.cmdChan:
			result := tm.applyCommand(req)
			wasActive := tickerActive
			syncTicker(result.state.Running)

			if result.planChanged {
				tm.publishPlan(result.plan)
			}
			tm.sink.SetTimerState(result.state)
			req.reply <- result

			switch {
			case tickerActive && !wasActive:
				tm.logger.Printf("TimerManager: Timer started (%s)", result.state.ContextualLabel)
			case !tickerActive && wasActive:
				tm.logger.Printf("TimerManager: Timer stopped on %s", req.cmd)
			}

		case <-ticker.C:
			result := tm.handleTick()
			if result.skip {
				syncTicker(false)
				continue
			}

			if result.stopped {
				syncTicker(false)
				tm.logger.Printf("TimerManager: Time cap reached after %s", result.state.ElapsedText)
			}

			tm.sink.SetTimerState(result.state)
			for _, cue := range result.cues {
				tm.cueEvent.Notify(cue)
			}
		}
	}
}

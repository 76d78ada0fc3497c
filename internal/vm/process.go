package vm

import (
	"agal/internal/errors"
	"agal/internal/value"
)

// ProcessManager drives the four-queue round robin of §4.7: interrupt
// threads are drained fully first each round, then one Resume each for
// the sub-thread queue, then a poll of the waiting queue (threads parked
// on a still-pending Await), then a single tick of the main module
// thread (itself skipped for a round if it is the one currently parked).
// Grounded on sentra/internal/vm/vm.go's single-threaded run-to-completion
// loop, generalized into this module's explicit multi-fiber scheduler.
type ProcessManager struct {
	main       *Thread
	subThreads []*Thread
	waiting    []*Thread
	interrupts []*Thread
}

// NewProcessManager wraps main (already constructed via NewMainThread) as
// the thread the manager ticks last each round.
func NewProcessManager(main *Thread) *ProcessManager {
	pm := &ProcessManager{main: main}
	main.proc = pm
	return pm
}

// spawnSubThread registers th (built by OpPromised) to be resumed once
// per round until it finishes.
func (pm *ProcessManager) spawnSubThread(th *Thread) {
	th.proc = pm
	pm.subThreads = append(pm.subThreads, th)
}

// spawnInterrupt registers th to run to completion before anything else
// in the current and subsequent rounds (§4.7's highest-priority queue).
func (pm *ProcessManager) spawnInterrupt(th *Thread) {
	th.proc = pm
	pm.interrupts = append(pm.interrupts, th)
}

// settle resolves or rejects th's donePromise (if any) once it finishes,
// so anything awaiting it observes the outcome.
func (pm *ProcessManager) settle(th *Thread, sig threadSignal) {
	if th.donePromise == nil {
		return
	}
	switch sig {
	case signalDone:
		th.donePromise.Resolve(th.result)
	case signalErr:
		th.donePromise.Reject(value.String(th.err.Error()))
	}
}

// parked reports whether th's last Resume yielded on a still-pending
// Await, meaning it must not be resumed again until that promise settles.
func parked(th *Thread) bool {
	return th.awaitingPromise != nil && th.awaitingPromise.IsPending()
}

// Run drives every queue to completion (§4.7): the main thread finishing
// Ok with both the sub-thread and waiting queues empty ends the run
// successfully; an error on the main thread aborts immediately. A main
// thread parked on Await is simply skipped for a round rather than
// ticked, same as any other parked thread.
func (pm *ProcessManager) Run() (value.Value, *errors.RuntimeError) {
	for {
		pm.drainInterrupts()

		pm.subThreads = pm.tick(pm.subThreads)
		pm.waiting = pm.tick(pm.waiting)

		// Threads parked on a pending Await move to the waiting queue;
		// waiting threads whose promise has settled move back.
		var running, blocked []*Thread
		for _, queue := range [][]*Thread{pm.subThreads, pm.waiting} {
			for _, th := range queue {
				if parked(th) {
					blocked = append(blocked, th)
				} else {
					running = append(running, th)
				}
			}
		}
		pm.subThreads, pm.waiting = running, blocked

		if parked(pm.main) {
			continue
		}
		sig := pm.main.Resume()
		switch sig {
		case signalErr:
			return nil, pm.main.err
		case signalDone:
			if len(pm.subThreads) == 0 && len(pm.waiting) == 0 {
				return pm.main.result, nil
			}
		}
		// signalContinue and signalYield both just loop to the next round;
		// a yielded main re-checks its own awaitingPromise via parked().
	}
}

func (pm *ProcessManager) drainInterrupts() {
	for len(pm.interrupts) > 0 {
		th := pm.interrupts[0]
		pm.interrupts = pm.interrupts[1:]
		for {
			if parked(th) {
				// An interrupt thread that itself awaits is demoted to the
				// ordinary waiting queue rather than blocking the drain.
				pm.waiting = append(pm.waiting, th)
				break
			}
			sig := th.Resume()
			if sig != signalContinue {
				if sig != signalYield {
					pm.settle(th, sig)
				} else {
					pm.waiting = append(pm.waiting, th)
				}
				break
			}
		}
	}
}

// tick gives every non-parked thread in queue one Resume; finished
// threads are removed and settled, still-running or newly-parked ones
// are kept for the next round.
func (pm *ProcessManager) tick(queue []*Thread) []*Thread {
	var next []*Thread
	for _, th := range queue {
		if parked(th) {
			next = append(next, th)
			continue
		}
		sig := th.Resume()
		switch sig {
		case signalContinue, signalYield:
			next = append(next, th)
		default:
			pm.settle(th, sig)
		}
	}
	return next
}

package building

import (
	"time"

	"github.com/andrescamacho/idlecolony-go/internal/domain/events"
	"github.com/andrescamacho/idlecolony-go/internal/domain/ledger"
	"github.com/andrescamacho/idlecolony-go/internal/domain/shared"
	"github.com/andrescamacho/idlecolony-go/pkg/utils"
)

// TrainingEntry is one batch of workers in training
type TrainingEntry struct {
	ProgramID    string
	InputWorker  string
	OutputWorker string
	OutputCount  int
	StartedAt    time.Time
	Duration     time.Duration
}

// CompletesAt returns when the entry finishes
func (e TrainingEntry) CompletesAt() time.Time {
	return e.StartedAt.Add(e.Duration)
}

// Remaining returns the time left at now, never negative
func (e TrainingEntry) Remaining(now time.Time) time.Duration {
	left := e.CompletesAt().Sub(now)
	if left < 0 {
		return 0
	}
	return left
}

// TrainingEntryState is the persisted form of a training entry
type TrainingEntryState struct {
	ProgramID    string    `json:"program_id"`
	OutputWorker string    `json:"output_worker"`
	StartedAt    time.Time `json:"started_at"`
	Duration     float64   `json:"duration"`
}

// TrainingState is the queue of a training building. Queue length never
// exceeds the slot count.
type TrainingState struct {
	spec  TrainingSpec
	slots int
	queue []TrainingEntry
}

func newTrainingState(spec TrainingSpec) *TrainingState {
	return &TrainingState{spec: spec, slots: spec.Slots}
}

func (t *TrainingState) Kind() Kind { return KindTraining }

// Slots returns the current slot capacity
func (t *TrainingState) Slots() int { return t.slots }

// Queue returns a copy of the queue in start order
func (t *TrainingState) Queue() []TrainingEntry {
	return append([]TrainingEntry(nil), t.queue...)
}

// HasFreeSlot reports whether another entry fits
func (t *TrainingState) HasFreeSlot() bool {
	return len(t.queue) < t.slots
}

// Programs returns the programs this building offers
func (t *TrainingState) Programs() []TrainingProgram {
	return append([]TrainingProgram(nil), t.spec.Programs...)
}

// ApplyEffects adds the trainingSlots effect to the base slot count
func (t *TrainingState) ApplyEffects(inst *Instance) {
	t.slots = t.spec.Slots + utils.FloorInt(inst.Effect(EffectTrainingSlots))
}

func (t *TrainingState) enqueue(entry TrainingEntry) {
	t.queue = append(t.queue, entry)
}

// Tick completes every due entry and credits its output workers
func (t *TrainingState) Tick(ctx *TickContext) {
	if len(t.queue) == 0 {
		return
	}
	remaining := t.queue[:0]
	for _, entry := range t.queue {
		if ctx.Now.Before(entry.CompletesAt()) {
			remaining = append(remaining, entry)
			continue
		}
		ctx.Ledger.Credit(map[string]float64{entry.OutputWorker: float64(entry.OutputCount)},
			ledger.TransactionTypeTrainingOutput, ctx.Instance.ID())
		ctx.Publisher.Publish(events.TrainingCompleted, events.TrainingPayload{
			BuildingID:   ctx.Instance.ID(),
			ProgramID:    entry.ProgramID,
			OutputWorker: entry.OutputWorker,
			Count:        entry.OutputCount,
		})
	}
	t.queue = remaining
}

func (t *TrainingState) Snapshot() SubStateSnapshot {
	entries := make([]TrainingEntryState, len(t.queue))
	for i, e := range t.queue {
		entries[i] = TrainingEntryState{
			ProgramID:    e.ProgramID,
			OutputWorker: e.OutputWorker,
			StartedAt:    e.StartedAt,
			Duration:     e.Duration.Seconds(),
		}
	}
	return SubStateSnapshot{Training: entries}
}

// Restore loads the queue. Entries for unknown programs are dropped and the
// queue is truncated to the slot count.
func (t *TrainingState) Restore(snap SubStateSnapshot, inst *Instance) {
	t.ApplyEffects(inst)
	t.queue = nil
	for _, saved := range snap.Training {
		if !t.HasFreeSlot() {
			break
		}
		program, ok := t.spec.Program(saved.ProgramID)
		if !ok {
			continue
		}
		duration := saved.Duration
		if duration <= 0 {
			duration = program.Duration
		}
		t.queue = append(t.queue, TrainingEntry{
			ProgramID:    program.ID,
			InputWorker:  program.InputWorker,
			OutputWorker: program.OutputWorker,
			OutputCount:  program.OutputCount,
			StartedAt:    saved.StartedAt,
			Duration:     seconds(duration),
		})
	}
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// StartTraining validates, in order: building exists, building complete,
// program exists, free slot, idle input workers, cost. On success the cost
// and the input workers are charged together and the entry is queued.
func (m *Manager) StartTraining(buildingID, programID string) (TrainingEntry, error) {
	inst, err := m.Instance(buildingID)
	if err != nil {
		return TrainingEntry{}, shared.NewRejectionError(shared.RejectInvalidID, "%s", err.Error())
	}
	if !inst.complete {
		return TrainingEntry{}, shared.NewRejectionError(shared.RejectIncomplete, "building %s is still under construction", buildingID)
	}
	queue, ok := inst.Training()
	if !ok {
		return TrainingEntry{}, shared.NewRejectionError(shared.RejectInvalidID, "building %s does not train workers", buildingID)
	}
	program, ok := queue.spec.Program(programID)
	if !ok {
		return TrainingEntry{}, shared.NewRejectionError(shared.RejectInvalidID, "unknown training program %q", programID)
	}
	if !queue.HasFreeSlot() {
		return TrainingEntry{}, shared.NewRejectionError(shared.RejectQueueFull, "all %d training slots of %s are in use", queue.slots, buildingID)
	}
	if free := m.idleWorkers(program.InputWorker); free < program.InputCount {
		return TrainingEntry{}, shared.NewRejectionError(shared.RejectInsufficientWorkers,
			"need %d idle %s workers, have %d", program.InputCount, program.InputWorker, free)
	}
	if !m.ledger.CanAfford(program.Cost) {
		return TrainingEntry{}, shared.NewRejectionError(shared.RejectInsufficientFunds, "cannot afford %s", programID)
	}

	charge := shared.ResourceMap(program.Cost).Clone()
	if charge == nil {
		charge = shared.ResourceMap{}
	}
	charge[program.InputWorker] += float64(program.InputCount)
	if !m.ledger.Charge(charge, ledger.TransactionTypeTrainingCost, inst.id) {
		return TrainingEntry{}, shared.NewRejectionError(shared.RejectInsufficientFunds, "cannot afford %s", programID)
	}

	entry := TrainingEntry{
		ProgramID:    program.ID,
		InputWorker:  program.InputWorker,
		OutputWorker: program.OutputWorker,
		OutputCount:  program.OutputCount,
		StartedAt:    m.clock.Now(),
		Duration:     seconds(program.Duration),
	}
	queue.enqueue(entry)

	m.publisher.Publish(events.TrainingStarted, events.TrainingPayload{
		BuildingID:   inst.id,
		ProgramID:    program.ID,
		OutputWorker: program.OutputWorker,
		Count:        program.OutputCount,
	})
	return entry, nil
}

// idleWorkers is the ledger population minus assigned workers
func (m *Manager) idleWorkers(workerType string) int {
	if m.workers != nil {
		return m.workers.Free(workerType)
	}
	return utils.FloorInt(m.ledger.Get(workerType))
}

package ecs

// System updates a world each frame.
type System interface {
	Update(w *World)
}

// SystemFunc adapts a plain function to System.
type SystemFunc func(w *World)

func (f SystemFunc) Update(w *World) {
	if f != nil {
		f(w)
	}
}

// RunCondition gates a system; it is evaluated right before the system runs.
type RunCondition func(w *World) bool

// Not inverts a run condition.
func Not(cond RunCondition) RunCondition {
	return func(w *World) bool {
		return cond == nil || !cond(w)
	}
}

// Stage groups systems. State changes queued during PreUpdate are applied
// before Update runs.
type Stage int

const (
	PreUpdate Stage = iota
	Update
	PostUpdate
	stageCount
)

func (s Stage) String() string {
	switch s {
	case PreUpdate:
		return "PreUpdate"
	case Update:
		return "Update"
	case PostUpdate:
		return "PostUpdate"
	default:
		return "Stage(?)"
	}
}

type scheduledSystem struct {
	system System
	conds  []RunCondition
}

func (s scheduledSystem) shouldRun(w *World) bool {
	for _, cond := range s.conds {
		if cond != nil && !cond(w) {
			return false
		}
	}
	return true
}

type Scheduler struct {
	stages      [stageCount][]scheduledSystem
	transitions []func()
}

func NewScheduler(systems ...System) *Scheduler {
	s := &Scheduler{}
	for _, system := range systems {
		s.Add(system)
	}
	return s
}

// Add appends system to the Update stage.
func (s *Scheduler) Add(system System) {
	s.AddTo(Update, system)
}

func (s *Scheduler) AddTo(stage Stage, system System, conds ...RunCondition) {
	if system == nil || stage < 0 || stage >= stageCount {
		return
	}
	s.stages[stage] = append(s.stages[stage], scheduledSystem{
		system: system,
		conds:  append([]RunCondition(nil), conds...),
	})
}

func (s *Scheduler) OnStateTransition(fn func()) {
	if fn == nil {
		return
	}
	s.transitions = append(s.transitions, fn)
}

func (s *Scheduler) Update(w *World) {
	s.runStage(PreUpdate, w)
	for _, fn := range s.transitions {
		fn()
	}
	s.runStage(Update, w)
	s.runStage(PostUpdate, w)
}

func (s *Scheduler) runStage(stage Stage, w *World) {
	for _, sys := range s.stages[stage] {
		if sys.shouldRun(w) {
			sys.system.Update(w)
		}
	}
}

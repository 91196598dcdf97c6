package ecs

import (
	"errors"
	"testing"
	"time"

	"github.com/milk9111/masktransition/ecs/component"
)

func TestWorldEntityLifecycle(t *testing.T) {
	cases := []struct {
		name         string
		create       int
		destroyIndex int // -1 = none
	}{
		{"single", 1, 0},
		{"three_create_destroy_middle", 3, 1},
		{"none_destroy", 2, -1},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := NewWorld()
			ents := make([]Entity, 0, c.create)
			for i := 0; i < c.create; i++ {
				ents = append(ents, w.CreateEntity())
			}
			if len(w.Entities()) != c.create {
				t.Fatalf("expected %d entities, got %d", c.create, len(w.Entities()))
			}
			if c.destroyIndex >= 0 {
				if !w.DestroyEntity(ents[c.destroyIndex]) {
					t.Fatalf("DestroyEntity should return true for alive entity")
				}
				if w.IsAlive(ents[c.destroyIndex]) {
					t.Fatalf("entity should not be alive after destruction")
				}
				if w.DestroyEntity(ents[c.destroyIndex]) {
					t.Fatalf("DestroyEntity should return false twice")
				}
			}
		})
	}
}

func TestWorldReusesIDsWithNewGeneration(t *testing.T) {
	w := NewWorld()
	e := w.CreateEntity()
	w.DestroyEntity(e)
	reused := w.CreateEntity()

	if reused.id() != e.id() {
		t.Fatalf("expected id %d to be reused, got %d", e.id(), reused.id())
	}
	if reused.generation() == e.generation() {
		t.Fatalf("expected a new generation for %v", reused)
	}
	if w.IsAlive(e) {
		t.Fatalf("stale handle %v should not be alive", e)
	}
}

func TestWorldComponents(t *testing.T) {
	w := NewWorld()
	ints := component.NewComponent[int]()
	strs := component.NewComponent[string]()

	e1 := w.CreateEntity()
	e2 := w.CreateEntity()

	tests := []struct {
		name     string
		setup    func() error
		check    func(t *testing.T)
		teardown func() bool
	}{
		{
			name:  "add_int_to_e1",
			setup: func() error { return Add(w, e1, ints, 10) },
			check: func(t *testing.T) {
				v, ok := Get(w, e1, ints)
				if !ok || v != 10 {
					t.Fatalf("expected 10, got %v ok=%v", v, ok)
				}
			},
			teardown: func() bool { return Remove(w, e1, ints) },
		},
		{
			name: "add_str_to_e1_and_e2",
			setup: func() error {
				if err := Add(w, e1, strs, "a"); err != nil {
					return err
				}
				return Add(w, e2, strs, "b")
			},
			check: func(t *testing.T) {
				if !Has(w, e1, strs) || !Has(w, e2, strs) {
					t.Fatalf("expected both entities to have string component")
				}
			},
			teardown: func() bool { return Remove(w, e1, strs) },
		},
		{
			name:  "overwrite",
			setup: func() error { return Add(w, e2, ints, 2) },
			check: func(t *testing.T) {
				if err := Add(w, e2, ints, 3); err != nil {
					t.Fatal(err)
				}
				if v, _ := Get(w, e2, ints); v != 3 {
					t.Fatalf("expected overwrite to 3, got %d", v)
				}
			},
			teardown: func() bool { return Remove(w, e2, ints) },
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.setup(); err != nil {
				t.Fatalf("setup failed: %v", err)
			}
			tc.check(t)
			if !tc.teardown() {
				t.Fatalf("teardown failed for %s", tc.name)
			}
		})
	}
}

func TestWorldAddComponentErrors(t *testing.T) {
	w := NewWorld()
	e := w.CreateEntity()
	w.DestroyEntity(e)

	live := w.CreateEntity()

	cases := []struct {
		name string
		err  error
		want error
	}{
		{"dead_entity", w.AddComponent(e, component.NewComponentKind[int](), 1), component.ErrEntityNotAlive},
		{"nil_value", w.AddComponent(live, component.NewComponentKind[int](), nil), component.ErrNilComponent},
		{"zero_kind", w.AddComponent(live, component.ComponentKind[int]{}, 1), component.ErrInvalidComponentKind},
	}
	for _, c := range cases {
		if !errors.Is(c.err, c.want) {
			t.Fatalf("%s: expected %v, got %v", c.name, c.want, c.err)
		}
	}
}

func TestQuery(t *testing.T) {
	w := NewWorld()
	a := component.NewComponent[int]()
	b := component.NewComponent[int]()

	e1 := w.CreateEntity()
	e2 := w.CreateEntity()
	e3 := w.CreateEntity()
	_ = Add(w, e1, a, 1)
	_ = Add(w, e2, a, 2)
	_ = Add(w, e2, b, 3)
	_ = Add(w, e3, b, 4)

	res := w.Query(a.Kind(), b.Kind())
	if len(res) != 1 || res[0] != e2 {
		t.Fatalf("expected only e2, got %v", res)
	}

	w.DestroyEntity(e2)
	if res := w.Query(a.Kind(), b.Kind()); len(res) != 0 {
		t.Fatalf("expected empty result after destroy, got %v", res)
	}
	if res := w.Query(component.NewComponentKind[int]()); res != nil {
		t.Fatalf("expected nil for missing store, got %v", res)
	}

	if _, ok := w.Single(a.Kind()); !ok {
		t.Fatalf("expected a single entity with a")
	}
	_ = Add(w, e3, a, 5)
	if _, ok := w.Single(a.Kind()); ok {
		t.Fatalf("Single should fail with two matches")
	}
	if _, ok := w.First(a.Kind()); !ok {
		t.Fatalf("First should succeed with two matches")
	}
}

func TestForEach(t *testing.T) {
	w := NewWorld()
	h := component.NewComponent[int]()

	e1 := w.CreateEntity()
	e2 := w.CreateEntity()
	e3 := w.CreateEntity()
	_ = Add(w, e1, h, 1)
	_ = Add(w, e3, h, 3)

	seen := map[Entity]int{}
	ForEach(w, h, func(e Entity, v int) { seen[e] = v })

	if seen[e1] != 1 || seen[e3] != 3 {
		t.Fatalf("unexpected values %v", seen)
	}
	if _, ok := seen[e2]; ok {
		t.Fatalf("did not expect e2 in ForEach result")
	}
}

func TestDespawnRecursive(t *testing.T) {
	w := NewWorld()
	root := w.CreateEntity()
	child := w.CreateEntity()
	grandchild := w.CreateEntity()
	other := w.CreateEntity()

	if err := SetParent(w, child, root); err != nil {
		t.Fatal(err)
	}
	if err := SetParent(w, grandchild, child); err != nil {
		t.Fatal(err)
	}

	if n := DespawnRecursive(w, root); n != 3 {
		t.Fatalf("expected 3 despawned, got %d", n)
	}
	for _, e := range []Entity{root, child, grandchild} {
		if w.IsAlive(e) {
			t.Fatalf("%v should be gone", e)
		}
	}
	if !w.IsAlive(other) {
		t.Fatalf("unrelated entity was despawned")
	}
	if n := DespawnRecursive(w, root); n != 0 {
		t.Fatalf("expected 0 for dead root, got %d", n)
	}
	if err := SetParent(w, other, root); !errors.Is(err, component.ErrEntityNotAlive) {
		t.Fatalf("expected ErrEntityNotAlive, got %v", err)
	}
}

func TestSchedulerStagesAndStates(t *testing.T) {
	w := NewWorld()
	s := NewState("menu")
	AddState(w, s)

	var trace []string
	record := func(name string) SystemFunc {
		return func(*World) { trace = append(trace, name+":"+s.Get()) }
	}

	w.AddSystemTo(PostUpdate, record("post"))
	w.AddSystem(record("update"))
	w.AddSystemTo(PreUpdate, SystemFunc(func(*World) {
		trace = append(trace, "pre:"+s.Get())
		s.Set("game")
	}), InState(s, "menu"))
	w.AddSystemTo(Update, record("entered"), StateChanged(s))
	w.AddSystemTo(Update, record("not-menu"), Not(InState(s, "menu")))

	w.Update()
	want := []string{"pre:menu", "update:game", "entered:game", "not-menu:game", "post:game"}
	if len(trace) != len(want) {
		t.Fatalf("expected %v, got %v", want, trace)
	}
	for i := range want {
		if trace[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, trace)
		}
	}

	trace = nil
	w.Update()
	want = []string{"update:game", "not-menu:game", "post:game"}
	if len(trace) != len(want) {
		t.Fatalf("expected %v, got %v", want, trace)
	}
}

func TestStateLastSetWins(t *testing.T) {
	s := NewState(1)
	s.Set(2)
	s.Set(3)
	if v, ok := s.Queued(); !ok || v != 3 {
		t.Fatalf("expected 3 queued, got %v %v", v, ok)
	}
	if !s.Apply() || s.Get() != 3 || !s.JustChanged() {
		t.Fatalf("expected apply to change to 3")
	}
	s.Set(3)
	if s.Apply() || s.JustChanged() {
		t.Fatalf("setting the same value should not report a change")
	}
}

func TestEventsLiveTwoFrames(t *testing.T) {
	w := NewWorld()
	q := NewEvents[int]()
	AddEvents(w, q)

	q.Send(1)
	w.Update()
	q.Send(2)
	if q.Len() != 2 {
		t.Fatalf("expected 2 pending events, got %d", q.Len())
	}
	w.Update()
	got := q.Drain()
	if len(got) != 1 || got[0] != 2 {
		t.Fatalf("expected only the newer event to survive, got %v", got)
	}
	if q.Len() != 0 {
		t.Fatalf("expected drained queue")
	}
}

func TestTime(t *testing.T) {
	w := NewWorld()
	w.Time().SetWrapPeriod(time.Second)

	w.Step(700 * time.Millisecond)
	w.Step(500 * time.Millisecond)

	if w.Time().Delta() != 500*time.Millisecond {
		t.Fatalf("unexpected delta %v", w.Time().Delta())
	}
	if w.Time().Elapsed() != 1200*time.Millisecond {
		t.Fatalf("unexpected elapsed %v", w.Time().Elapsed())
	}
	if got := w.Time().ElapsedSecondsWrapped(); got < 0.199 || got > 0.201 {
		t.Fatalf("expected wrapped 0.2, got %v", got)
	}
	if w.Time().WrapPeriod() != time.Second {
		t.Fatalf("unexpected wrap period %v", w.Time().WrapPeriod())
	}

	w.Time().SetWrapPeriod(0)
	if w.Time().WrapPeriod() != time.Second {
		t.Fatalf("zero period should be ignored, got %v", w.Time().WrapPeriod())
	}
	if NewWorld().Time().WrapPeriod() != time.Hour {
		t.Fatalf("unexpected default wrap period %v", NewWorld().Time().WrapPeriod())
	}
}

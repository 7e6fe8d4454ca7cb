package ecs

import "testing"

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
				ents = append(ents, CreateEntity(w))
			}
			for i, e := range ents {
				if !IsAlive(w, e) {
					t.Fatalf("entity %d not alive after create", i)
				}
			}
			if c.destroyIndex >= 0 {
				if !DestroyEntity(w, ents[c.destroyIndex]) {
					t.Fatalf("DestroyEntity should return true for alive entity")
				}
				if IsAlive(w, ents[c.destroyIndex]) {
					t.Fatalf("entity should not be alive after destruction")
				}
				if DestroyEntity(w, ents[c.destroyIndex]) {
					t.Fatalf("second destroy should report false")
				}
				for i, e := range ents {
					if i != c.destroyIndex && !IsAlive(w, e) {
						t.Fatalf("destroying %d killed entity %d", c.destroyIndex, i)
					}
				}
			}
		})
	}
}

func TestStaleHandleAfterReuse(t *testing.T) {
	w := NewWorld()
	hp := NewStore[int](w)

	old := CreateEntity(w)
	if err := Add(w, hp, old, 5); err != nil {
		t.Fatalf("add: %v", err)
	}
	DestroyEntity(w, old)
	if hp.Has(old) || hp.Len() != 0 {
		t.Fatalf("destroy should clear the component store")
	}

	fresh := CreateEntity(w)
	if fresh.id() != old.id() {
		t.Fatalf("expected slot reuse, got %v after %v", fresh, old)
	}
	if fresh == old {
		t.Fatalf("reused slot kept its generation")
	}
	if err := Add(w, hp, fresh, 9); err != nil {
		t.Fatalf("add: %v", err)
	}
	if hp.Get(old) != nil {
		t.Fatalf("stale handle resolved to the new value")
	}
	if hp.Remove(old) {
		t.Fatalf("stale handle removed the new value")
	}
	if v := hp.Get(fresh); v == nil || *v != 9 {
		t.Fatalf("fresh value = %v", v)
	}
	if err := Add(w, hp, old, 1); err != ErrEntityNotAlive {
		t.Fatalf("add on dead entity: %v", err)
	}
}

func TestSparseSetSwapRemove(t *testing.T) {
	w := NewWorld()
	names := NewStore[string](w)
	var ents []Entity
	for _, n := range []string{"a", "b", "c", "d"} {
		e := CreateEntity(w)
		ents = append(ents, e)
		names.Set(e, n)
	}

	tests := []struct {
		name   string
		remove int
		want   map[int]string
	}{
		{"middle", 1, map[int]string{0: "a", 2: "c", 3: "d"}},
		{"last", 3, map[int]string{0: "a", 2: "c"}},
		{"first", 0, map[int]string{2: "c"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if !names.Remove(ents[tc.remove]) {
				t.Fatalf("remove %d failed", tc.remove)
			}
			if names.Len() != len(tc.want) {
				t.Fatalf("len = %d, want %d", names.Len(), len(tc.want))
			}
			for i, e := range ents {
				v := names.Get(e)
				want, ok := tc.want[i]
				if !ok {
					if v != nil {
						t.Fatalf("entity %d still has %q", i, *v)
					}
					continue
				}
				if v == nil || *v != want {
					t.Fatalf("entity %d = %v, want %q", i, v, want)
				}
			}
		})
	}
}

func TestForEachMutates(t *testing.T) {
	w := NewWorld()
	pos := NewStore[int](w)
	e1, e2 := CreateEntity(w), CreateEntity(w)
	pos.Set(e1, 1)
	pos.Set(e2, 2)

	ForEach(pos, func(_ Entity, p *int) { *p *= 10 })
	if *pos.Get(e1) != 10 || *pos.Get(e2) != 20 {
		t.Fatalf("ForEach mutation lost: e1=%d e2=%d", *pos.Get(e1), *pos.Get(e2))
	}
}

func TestEventsAndScheduler(t *testing.T) {
	w := NewWorld()
	e := CreateEntity(w)
	DestroyEntity(w, e)
	got := w.Events().Drain()
	if len(got) != 2 || got[0].Kind != EventSpawned || got[1].Kind != EventDestroyed {
		t.Fatalf("events = %+v", got)
	}
	if w.Events().Len() != 0 {
		t.Fatalf("drain should empty the queue")
	}

	var order []string
	s := NewScheduler(recordSystem{"a", &order}, nil, recordSystem{"b", &order})
	s.Add(nil)
	s.Add(recordSystem{"c", &order})
	s.Update(w, 0.1)
	if len(order) != 3 || order[0] != "a" || order[2] != "c" {
		t.Fatalf("order = %v", order)
	}
}

type recordSystem struct {
	name  string
	order *[]string
}

func (r recordSystem) Update(*World, float64) {
	*r.order = append(*r.order, r.name)
}

package gekko

import (
	"testing"
)

func TestQuery_Map(t *testing.T) {
	type Comp1 struct{ a int }
	type Comp2 struct{ b float32 }
	type Comp3 struct{}

	ecs := MakeEcs()
	ecs.addEntity(Comp1{a: 1})                                 // comp1 only                       -- shouldn't match
	id2 := ecs.addEntity(Comp1{a: 2}, Comp2{b: 1.37})          // comp1 & comp2                    -- should match
	id3 := ecs.addEntity(Comp1{a: 3}, Comp2{b: 4.20}, Comp3{}) // comp1 & comp2 + something extra  -- should match
	ecs.addEntity(Comp1{a: 4}, Comp3{})                        // comp1 + something extra          -- shouldn't match
	ecs.addEntity(Comp2{b: 3.14})                              // comp2 only                       -- shouldn't match

	query := Query2[Comp1, Comp2]{ecs: &ecs}

	expectedEntityIds := []EntityId{id2, id3}
	expectedComponentsA := []Comp1{{a: 2}, {a: 3}}
	expectedComponentsB := []Comp2{{b: 1.37}, {b: 4.20}}
	numResults := 0

	query.Map(func(entityId EntityId, comp1 *Comp1, comp2 *Comp2) bool {
		if entityId != expectedEntityIds[numResults] {
			t.Errorf("Unexpected EntityId for row %v, expected %v got %v", numResults, expectedEntityIds[numResults], entityId)
		}
		if *comp1 != expectedComponentsA[numResults] {
			t.Errorf("Unexpected A for row %v, expected %v got %v", numResults, expectedComponentsA[numResults], *comp1)
		}
		if *comp2 != expectedComponentsB[numResults] {
			t.Errorf("Unexpected A for row %v, expected %v got %v", numResults, expectedComponentsB[numResults], *comp2)
		}

		numResults += 1
		return true
	})

	if 2 != numResults {
		t.Errorf("Unexpected number of results, got %v", numResults)
	}
}

func TestQuery_MapOptional(t *testing.T) {
	type Sensor struct{ n int }
	type Pose struct{ x float32 }

	ecs := MakeEcs()
	withPose := ecs.addEntity(Sensor{n: 1}, Pose{x: 3})
	withoutPose := ecs.addEntity(Sensor{n: 2})
	ecs.addEntity(Pose{x: 9})

	got := map[EntityId]*Pose{}
	Query2[Sensor, Pose]{ecs: &ecs}.Map(func(eid EntityId, s *Sensor, p *Pose) bool {
		got[eid] = p
		return true
	}, Pose{})

	if len(got) != 2 {
		t.Fatalf("expected 2 sensors, got %d", len(got))
	}
	if got[withPose] == nil || got[withPose].x != 3 {
		t.Errorf("expected pose for %v", withPose)
	}
	if got[withoutPose] != nil {
		t.Errorf("expected nil pose for %v", withoutPose)
	}
}

func TestQuery_MapStopsEarlyAndWritesThrough(t *testing.T) {
	type Counter struct{ n int }

	ecs := MakeEcs()
	for i := 0; i < 5; i++ {
		ecs.addEntity(Counter{n: i})
	}

	visited := 0
	Query1[Counter]{ecs: &ecs}.Map(func(eid EntityId, c *Counter) bool {
		visited++
		c.n += 100
		return visited < 2
	})
	if visited != 2 {
		t.Errorf("expected to stop after 2, visited %d", visited)
	}

	var values []int
	Query1[Counter]{ecs: &ecs}.Map(func(eid EntityId, c *Counter) bool {
		values = append(values, c.n)
		return true
	})
	expected := []int{100, 101, 2, 3, 4}
	for i := range expected {
		if values[i] != expected[i] {
			t.Errorf("expected %v, got %v", expected, values)
			break
		}
	}
}

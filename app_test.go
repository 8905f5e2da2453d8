package gekko

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockResource1 struct {
	name string
}
type MockResource2 struct {
	name string
}

func NewMockResource1(name string) *MockResource1 {
	return &MockResource1{name: name}
}
func NewMockResource2(name string) *MockResource2 {
	return &MockResource2{name: name}
}

func TestApp_changeState(t *testing.T) {
	app := NewAppBuilder().UseStates(1, 2).Build()

	app.changeState(2)
	if app.nextState != State(2) {
		t.Errorf("The nextState should be set correctly.")
	}
	if !app.stateTransitioning {
		t.Errorf("The stateTransitioning flag should be true.")
	}

	app.executeChangeState(2)
	if app.state != State(2) {
		t.Errorf("The app state should change correctly.")
	}
}

func TestApp_addResources(t *testing.T) {
	app := &App{
		resources: make(map[reflect.Type]any),
	}

	resource1 := NewMockResource1("Resource1")
	app.addResources(resource1)
	assert.Contains(t, app.resources, reflect.TypeOf(resource1).Elem(), "Resource1 should be in resources map.")

	require.PanicsWithValue(t, fmt.Sprintf("%s is already in resources", reflect.TypeOf(resource1)), func() {
		app.addResources(resource1)
	})

	resource2 := NewMockResource2("Resource2")
	app.addResources(resource2)
	assert.Contains(t, app.resources, reflect.TypeOf(resource2).Elem(), "Resource2 should be in resources map.")

	got, ok := Resource[MockResource2](app)
	require.True(t, ok)
	assert.Same(t, resource2, got)

	assert.Panics(t, func() { app.addResources(MockResource1{}) }, "non-pointer resources are rejected")
}

type stateLog struct {
	calls []string
}

func TestApp_StatefulLifecycle(t *testing.T) {
	const (
		stateA State = iota
		stateB
		stateC
	)
	log := &stateLog{}
	record := func(s string) func(*stateLog) {
		return func(l *stateLog) { l.calls = append(l.calls, s) }
	}

	app := NewAppBuilder().UseStates(stateA, stateC).Build()
	app.addResources(log)
	app.UseSystem(System(record("enter A")).InState(OnEnter(stateA)))
	app.UseSystem(System(func(l *stateLog, cmd *Commands) {
		l.calls = append(l.calls, "execute A")
		cmd.ChangeState(stateB)
	}).InState(OnExecute(stateA)))
	app.UseSystem(System(record("exit A")).InState(OnExit(stateA)))
	app.UseSystem(System(record("enter B")).InState(OnEnter(stateB)))
	app.UseSystem(System(func(l *stateLog, cmd *Commands) {
		l.calls = append(l.calls, "execute B")
		cmd.Quit()
	}).InState(OnExecute(stateB)))
	app.UseSystem(System(record("enter C")).InState(OnEnter(stateC)))
	app.UseSystem(System(record("exit C")).InState(OnExit(stateC)))
	app.UseSystem(System(record("always")).InStage(Finale).RunAlways())

	app.Run()

	assert.True(t, app.Finished())
	assert.Equal(t, stateC, app.State())
	assert.Equal(t, []string{
		"enter A",
		"execute A", "always",
		"exit A", "enter B",
		"execute B", "always",
		"enter C", "exit C",
	}, log.calls)
	assert.True(t, app.Step(), "finished apps stay finished")
}

func TestApp_StatelessQuit(t *testing.T) {
	type counter struct{ n int }
	c := &counter{}

	app := NewAppBuilder().Build()
	app.addResources(c)
	app.UseSystem(System(func(c *counter, cmd *Commands) {
		c.n++
		if c.n == 3 {
			cmd.Quit()
		}
	}))

	app.Run()
	assert.Equal(t, 3, c.n)
}

func TestApp_StagesRunInOrderAndFlush(t *testing.T) {
	type Marker struct{ stage string }
	seen := &stateLog{}

	app := NewAppBuilder().Build()
	app.addResources(seen)
	app.UseSystem(System(func(cmd *Commands) {
		cmd.AddEntity(Marker{stage: "pre"})
	}).InStage(PreUpdate))
	app.UseSystem(System(func(cmd *Commands, l *stateLog) {
		MakeQuery1[Marker](cmd).Map(func(eid EntityId, m *Marker) bool {
			l.calls = append(l.calls, m.stage)
			return true
		})
	}).InStage(Update))

	app.Step()
	assert.Equal(t, []string{"pre"}, seen.calls, "entities added in PreUpdate are visible in Update")
}

func TestApp_UseStage(t *testing.T) {
	physics := Stage{Name: "Physics"}
	app := NewAppBuilder().Build()
	app.UseStage(physics, AfterStage(Update))

	idx := -1
	for i, s := range app.stages {
		if s.Name == physics.Name {
			idx = i
		}
	}
	require.NotEqual(t, -1, idx)
	assert.Equal(t, "Update", app.stages[idx-1].Name)

	assert.Panics(t, func() { app.UseStage(physics, BeforeStage(Render)) })
	assert.Panics(t, func() { app.UseStage(Stage{Name: "X"}, BeforeStage(Stage{Name: "Missing"})) })
}

func TestApp_UnresolvedSystemDependencyPanics(t *testing.T) {
	app := NewAppBuilder().Build()
	app.UseSystem(System(func(r *MockResource1) {}))
	assert.Panics(t, func() { app.Step() })
}

func TestApp_StatefulSystemInStatelessAppPanics(t *testing.T) {
	app := NewAppBuilder().Build()
	assert.Panics(t, func() {
		app.UseSystem(System(func() {}).InState(OnEnter(1)))
	})
}

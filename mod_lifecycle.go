package gekko

// LifetimeComponent removes its entity once TimeLeft seconds have elapsed.
type LifetimeComponent struct {
	TimeLeft float32
}

type LifecycleModule struct{}

func (mod LifecycleModule) Install(app *App, cmd *Commands) {
	log := app.Logger()
	app.UseSystem(
		System(func(time *Time, cmd *Commands) {
			lifetimeSystem(time, cmd, log)
		}).
			InStage(PostUpdate).
			RunAlways(),
	)
}

func lifetimeSystem(time *Time, cmd *Commands, log Logger) {
	dt := time.Seconds()
	if dt <= 0 {
		return
	}
	MakeQuery1[LifetimeComponent](cmd).Map(func(eid EntityId, lt *LifetimeComponent) bool {
		lt.TimeLeft -= dt
		if lt.TimeLeft <= 0 {
			log.Debugf("lifetime of entity %v expired", eid)
			cmd.RemoveEntity(eid)
		}
		return true
	})
}

package sim

// ScooterGroup is a configuration template shared by a set of scooters:
// display metadata plus behavior overrides. Scooters reference their group by
// id only; resolved overrides are copied onto each scooter at world
// construction, so the group is never traversed during event dispatch.
type ScooterGroup struct {
	ID       string
	Name     string
	Color    string
	Count    int
	Movement MovementKind
	Activity ActivityKind
	Schedule ActivitySchedule
}

package mockenv

// GameObjectiveTemplate is the record an implementation's template-producing
// method returns. Label may contain placeholder tokens; Data maps each token
// to a data source: a zero-argument callable returning a collection, a
// pre-built collection, a Range value, or a bare literal. Templates are
// treated as immutable once returned.
type GameObjectiveTemplate struct {
	Label           string
	Data            map[string]interface{}
	IsTimeConsuming bool
	IsDifficult     bool
	Weight          int
}

// Game is the base type implementations may embed. ArchipelagoOptions holds
// whatever configuration object the implementation was instantiated with.
type Game struct {
	ArchipelagoOptions interface{}
}

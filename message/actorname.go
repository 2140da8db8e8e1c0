// Package message defines the typed envelope exchanged between actors:
// the closed ActorName enumeration, message priority, and the tagged
// Command/Query/Event/Response payload variants.
package message

// ActorName is the closed enumeration of the twenty participating actors.
// It drives routing, supervision, and health tables. Valid reports whether
// a name is one of the twenty; Message.UnmarshalJSON does not check names
// against this set.
type ActorName string

const (
	Zeus      ActorName = "zeus"
	Erinyes   ActorName = "erinyes"
	Poseidon  ActorName = "poseidon"
	Athena    ActorName = "athena"
	Apollo    ActorName = "apollo"
	Artemis   ActorName = "artemis"
	Hermes    ActorName = "hermes"
	Hades     ActorName = "hades"
	Hera      ActorName = "hera"
	Ares      ActorName = "ares"
	Hefesto   ActorName = "hefesto"
	Chronos   ActorName = "chronos"
	Moirai    ActorName = "moirai"
	Chaos     ActorName = "chaos"
	Aurora    ActorName = "aurora"
	Aphrodite ActorName = "aphrodite"
	Iris      ActorName = "iris"
	Demeter   ActorName = "demeter"
	Dionysus  ActorName = "dionysus"
	Hestia    ActorName = "hestia"
)

// AllActorNames returns the reference deployment's twenty actors in
// declaration order (the order Genesis starts them in).
func AllActorNames() []ActorName {
	return []ActorName{
		Zeus, Hades, Poseidon, Athena, Hermes, Hestia, Erinyes,
		Aphrodite, Apollo, Artemis, Hera, Ares, Hefesto, Chronos,
		Moirai, Chaos, Aurora, Iris, Demeter, Dionysus,
	}
}

// Valid reports whether n is one of the twenty known actors.
func (n ActorName) Valid() bool {
	for _, known := range AllActorNames() {
		if n == known {
			return true
		}
	}
	return false
}

func (n ActorName) String() string { return string(n) }

package gridbase

// Presence is the bit flag tracked per field on an instance store. It drives
// the serialization rule for readonly fields: a readonly field enters the
// payload only when it carries PresenceAssigned.
type Presence uint8

const (
	PresenceSeen     Presence = 1 << iota // Value entered the store via hydration.
	PresenceAssigned                      // Value was explicitly provided by the caller.
	PresenceWasNull                       // Wire value was null (list fields normalize it).
)

// PresenceMap maps wire field names to Presence flags.
type PresenceMap map[string]Presence

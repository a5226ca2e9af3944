package domain

// Key identifies the entity a stats event is scoped to (an IP, an API
// key, a maintenance identity — whatever the calling filter's IdentFunc
// produced).
type Key string

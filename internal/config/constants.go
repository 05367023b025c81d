package config

// IsTestMode indicates if the checker is running under tests.
// Printing normalizes generated meta names when set, so expected output is stable.
var IsTestMode = false

// Generated names
const (
	// GeneratedPostfix marks binders and metas invented by the elaborator (x').
	GeneratedPostfix = "'"
	// AnonymousPrefix names binders the user never wrote.
	AnonymousPrefix = "_"
)

// Defaults for Config fields
const (
	DefaultUnfoldLimit = 512
	ConfluenceAlways   = "always"
	ConfluenceOverlap  = "overlap"
	ColorAuto          = "auto"
	ColorAlways        = "always"
	ColorNever         = "never"
)

// Primitive names understood by the primitive factory
const (
	PrimIntervalName = "I"
	PrimLeftName     = "left"
	PrimRightName    = "right"
	PrimMinName      = "intervalMin"
	PrimMaxName      = "intervalMax"
	PrimInvName      = "intervalInv"
)

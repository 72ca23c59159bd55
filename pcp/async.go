package pcp

// NoAsyncLimit is the async priority limit of an application without software tasks.
const NoAsyncLimit Level = 255

// AsyncMaxLogicalPriority is the highest priority of any software task of the running
// application. Generated code sets it during package initialization; drivers read it to keep
// their own wake-up work below the dispatchers.
var AsyncMaxLogicalPriority = NoAsyncLimit

// AsyncAllowed reports whether async work may run at level.
func AsyncAllowed(level Level) bool {
	return level <= AsyncMaxLogicalPriority
}

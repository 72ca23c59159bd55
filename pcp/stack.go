package pcp

// CheckStack reports ErrStackOverflow when the stack pointer has already reached the end of
// static data. Layouts that place the stack below static data are not checked.
func CheckStack(probe StackProbe) error {
	start := probe.StackStart()
	end := probe.DataEnd()
	if start > end {
		if probe.SP() <= end {
			return ErrStackOverflow
		}
	}
	return nil
}

// GuardStack aborts when CheckStack fails. Nothing can be trusted after an overflow so there is no
// recovery path.
func GuardStack(probe StackProbe) {
	if err := CheckStack(probe); err != nil {
		panic(err)
	}
}

// GuardExecutorStack is GuardStack for targets that run the check after the dispatchers are
// allocated.
func GuardExecutorStack(probe StackProbe) {
	if err := CheckStack(probe); err != nil {
		panic(ErrExecutorStackOverflow)
	}
}

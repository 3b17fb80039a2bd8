package catalog

// outcome is what an operation does after checking whether its target
// exists.
type outcome int

const (
	proceed outcome = iota
	noop
	fail
)

func (o outcome) String() string {
	switch o {
	case proceed:
		return "proceed"
	case noop:
		return "noop"
	case fail:
		return "fail"
	default:
		return "invalid"
	}
}

// resolve applies the ignore-flag policy shared by every mutation. conflict
// is true when the existence state blocks the operation: the target already
// exists for a create, or is missing for an alter, drop or rename. An ignore
// flag turns a conflict into a no-op; it never affects validation that runs
// after existence is settled.
func resolve(conflict, ignore bool) outcome {
	switch {
	case !conflict:
		return proceed
	case ignore:
		return noop
	default:
		return fail
	}
}

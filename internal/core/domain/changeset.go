package domain

// ChangeOp is the kind of package change requested from a solver backend.
type ChangeOp string

const (
	// OpInstall adds a package that is not currently installed.
	OpInstall ChangeOp = "install"

	// OpRemove removes an installed package.
	OpRemove ChangeOp = "remove"

	// OpUpdate replaces an installed package with a new record.
	OpUpdate ChangeOp = "update"
)

// Change is one requested package change.
type Change struct {
	// Op is the requested operation.
	Op ChangeOp

	// Record is the target record for installs and updates. For removals
	// only Record.Name is consulted.
	Record Record
}

// ChangeSet is the requested change-set handed to a solver backend
// together with the current record set.
type ChangeSet struct {
	// Changes are applied in order.
	Changes []Change
}

// Empty reports whether the change set requests no work.
func (c ChangeSet) Empty() bool {
	return len(c.Changes) == 0
}

package building

import "fmt"

// ErrInstanceNotFound indicates a building instance could not be found
type ErrInstanceNotFound struct {
	InstanceID string
}

func (e *ErrInstanceNotFound) Error() string {
	return fmt.Sprintf("building not found: %s", e.InstanceID)
}

// ErrUnknownType indicates a building type is not in the catalog
type ErrUnknownType struct {
	TypeID string
}

func (e *ErrUnknownType) Error() string {
	return fmt.Sprintf("unknown building type: %s", e.TypeID)
}

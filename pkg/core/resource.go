package core

// ResourceKind is the broad class of an external resource
type ResourceKind string

const (
	ResourceVehicle   ResourceKind = "vehicle"
	ResourcePersonnel ResourceKind = "personnel"
	ResourceEquipment ResourceKind = "equipment"
)

// Resource is an externally owned entity a Drawing may reference. The engine
// only reads resources.
type Resource struct {
	ID       string       `json:"id" yaml:"id"`
	Kind     ResourceKind `json:"kind" yaml:"kind"`
	Category string       `json:"category" yaml:"category"`
	Name     string       `json:"name" yaml:"name"`
	Status   string       `json:"status" yaml:"status"`
}

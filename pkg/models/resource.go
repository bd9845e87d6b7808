package models

import (
	"fmt"
	"strings"
)

// ResourceKind is the class of hardware a resource belongs to. It is fixed at registration.
type ResourceKind int

const (
	ResourceKindUndefined ResourceKind = iota // must be first
	ResourceKindCPU
	ResourceKindGPU
)

var resourceKindNames = map[ResourceKind]string{
	ResourceKindUndefined: "Undefined",
	ResourceKindCPU:       "CPU",
	ResourceKindGPU:       "GPU",
}

func (k ResourceKind) String() string {
	if name, ok := resourceKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ResourceKind(%d)", int(k))
}

func (k ResourceKind) IsUndefined() bool {
	return k == ResourceKindUndefined
}

// ParseResourceKind returns the kind matching name, case-insensitively.
func ParseResourceKind(name string) (ResourceKind, error) {
	for kind, kindName := range resourceKindNames {
		if kind != ResourceKindUndefined && strings.EqualFold(kindName, name) {
			return kind, nil
		}
	}
	return ResourceKindUndefined, fmt.Errorf("unknown resource kind %q", name)
}

func (k ResourceKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *ResourceKind) UnmarshalText(text []byte) error {
	kind, err := ParseResourceKind(string(text))
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

// Resource is a registered hardware resource.
type Resource struct {
	// ID is the externally supplied identifier of the resource.
	ID string `json:"ID"`
	// SerialNumber gives the registration order. Assigned once, never reused.
	SerialNumber uint64 `json:"SerialNumber"`
	// Name is a display name, e.g. "Intel Xeon 8 Core".
	Name string `json:"Name"`
	// Kind is resolved at registration and never changes.
	Kind ResourceKind `json:"Kind"`
	// Available is false while the resource is held by a running job.
	Available bool `json:"Available"`
}

// Handle returns the allocation handle for this resource.
func (r Resource) Handle() ResourceHandle {
	return ResourceHandle{ID: r.ID, Kind: r.Kind}
}

// ResourceHandle is handed to a job for every resource it holds.
type ResourceHandle struct {
	ID   string       `json:"ID"`
	Kind ResourceKind `json:"Kind"`
}

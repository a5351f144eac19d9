package sim

import (
	"sort"

	"github.com/google/uuid"
)

// Prop mirrors a live prop instance exposed to clients.
type Prop struct {
	ID        InstanceRef `json:"id"`
	Prototype PrototypeID `json:"prototype"`
	Pose      Pose        `json:"pose"`
	Kinematic bool        `json:"kinematic"`
}

// propTable is the world-backed Instantiator. Instances exist only in
// memory; refs are opaque UUIDs handed back to holders.
type propTable struct {
	instances map[InstanceRef]*Prop
}

func newPropTable() *propTable {
	return &propTable{instances: make(map[InstanceRef]*Prop)}
}

func (t *propTable) Instantiate(proto Prototype, pose Pose) InstanceRef {
	ref := InstanceRef(uuid.NewString())
	t.instances[ref] = &Prop{ID: ref, Prototype: proto.ID, Pose: pose}
	return ref
}

func (t *propTable) Destroy(ref InstanceRef) {
	delete(t.instances, ref)
}

func (t *propTable) SetKinematic(ref InstanceRef, kinematic bool) {
	if prop, ok := t.instances[ref]; ok {
		prop.Kinematic = kinematic
	}
}

func (t *propTable) SetPose(ref InstanceRef, pose Pose) {
	if prop, ok := t.instances[ref]; ok {
		prop.Pose = pose
	}
}

// snapshot copies the live instances in a stable order for broadcasting.
func (t *propTable) snapshot() []Prop {
	props := make([]Prop, 0, len(t.instances))
	for _, prop := range t.instances {
		props = append(props, *prop)
	}
	sort.Slice(props, func(i, j int) bool { return props[i].ID < props[j].ID })
	return props
}

var _ Instantiator = (*propTable)(nil)

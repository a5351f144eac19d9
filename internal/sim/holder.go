package sim

// InstanceRef identifies a live prop instance owned by the instantiation
// service.
type InstanceRef string

// Instantiator is the spawn/destroy boundary the holder drives. The
// operations are synchronous and assumed to succeed; the holder never
// inspects the instance beyond its ref.
type Instantiator interface {
	Instantiate(proto Prototype, pose Pose) InstanceRef
	Destroy(ref InstanceRef)
	SetKinematic(ref InstanceRef, kinematic bool)
	SetPose(ref InstanceRef, pose Pose)
}

// TransitionKind identifies the holder state change that a command caused.
type TransitionKind string

const (
	TransitionSpawned TransitionKind = "spawned"
	TransitionDropped TransitionKind = "dropped"
	TransitionCycled  TransitionKind = "cycled"
)

// HolderTransition describes the outcome of a holder command for logging
// and broadcast.
type HolderTransition struct {
	Kind      TransitionKind
	Index     int
	Prototype PrototypeID
	Instance  InstanceRef
	Dropped   InstanceRef
}

// Holder owns at most one live prop instance. It is either empty or holding
// the instance spawned from the currently selected catalog entry; the
// selection persists across drop/spawn cycles. The zero value is an empty
// holder selecting the first entry.
//
// Holder is not safe for concurrent use; the world mutates it only from the
// tick goroutine.
type Holder struct {
	selection int
	held      bool
	instance  InstanceRef
}

// Holding reports whether a prop is currently held.
func (h *Holder) Holding() bool {
	return h != nil && h.held
}

// Selection returns the catalog index the next spawn will use.
func (h *Holder) Selection() int {
	if h == nil {
		return 0
	}
	return h.selection
}

// Instance returns the held instance ref, if any.
func (h *Holder) Instance() (InstanceRef, bool) {
	if h == nil || !h.held {
		return "", false
	}
	return h.instance, true
}

// Grab toggles the held slot. When empty it spawns the selected prototype at
// the anchor pose as a kinematic instance; when holding it destroys the
// instance. Returns false only when there is nothing to spawn because the
// catalog is empty.
func (h *Holder) Grab(cat *Catalog, svc Instantiator, anchor Pose) (HolderTransition, bool) {
	if h.held {
		dropped := h.instance
		svc.Destroy(dropped)
		h.held = false
		h.instance = ""
		return HolderTransition{Kind: TransitionDropped, Index: h.selection, Dropped: dropped}, true
	}
	proto, ok := cat.At(h.selection)
	if !ok {
		return HolderTransition{}, false
	}
	ref := svc.Instantiate(proto, anchor)
	svc.SetKinematic(ref, true)
	h.held = true
	h.instance = ref
	return HolderTransition{Kind: TransitionSpawned, Index: h.selection, Prototype: proto.ID, Instance: ref}, true
}

// CycleNext swaps the held instance for the next catalog entry.
func (h *Holder) CycleNext(cat *Catalog, svc Instantiator, anchor Pose) (HolderTransition, bool) {
	return h.cycle(cat, svc, anchor, +1)
}

// CyclePrevious swaps the held instance for the previous catalog entry.
func (h *Holder) CyclePrevious(cat *Catalog, svc Instantiator, anchor Pose) (HolderTransition, bool) {
	return h.cycle(cat, svc, anchor, -1)
}

// cycle advances the selection and replaces the held instance in one step.
// Cycling while empty deliberately leaves the selection untouched, so the
// next spawn reuses whatever entry was last held; with a single-entry
// catalog there is nothing to swap to, so no destroy/spawn churn occurs.
func (h *Holder) cycle(cat *Catalog, svc Instantiator, anchor Pose, step int) (HolderTransition, bool) {
	if !h.held || cat.Len() < 2 {
		return HolderTransition{}, false
	}
	if step > 0 {
		h.selection = cat.Next(h.selection)
	} else {
		h.selection = cat.Previous(h.selection)
	}
	dropped := h.instance
	svc.Destroy(dropped)
	proto, _ := cat.At(h.selection)
	ref := svc.Instantiate(proto, anchor)
	svc.SetKinematic(ref, true)
	h.instance = ref
	return HolderTransition{Kind: TransitionCycled, Index: h.selection, Prototype: proto.ID, Instance: ref, Dropped: dropped}, true
}

// SyncAnchor forces the held instance onto the anchor pose. Called once per
// tick; a hard lock, not a simulated follow.
func (h *Holder) SyncAnchor(svc Instantiator, anchor Pose) {
	if h == nil || !h.held {
		return
	}
	svc.SetPose(h.instance, anchor)
}

// Release destroys any held instance without touching the selection. Used
// on teardown so a departing player never leaves an orphaned prop behind.
func (h *Holder) Release(svc Instantiator) (InstanceRef, bool) {
	if h == nil || !h.held {
		return "", false
	}
	dropped := h.instance
	svc.Destroy(dropped)
	h.held = false
	h.instance = ""
	return dropped, true
}

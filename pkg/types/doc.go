// Package types implements the operator schema language: typed nodes (String,
// Boolean, Number, Enum, List, SampleID, Object), the Property record binding a
// type to validation metadata, presentation views, and triggers. Trees are built
// incrementally through Object.DefineProperty and its typed helpers, then
// serialized with Descriptor into the plain nested structure consumed by the
// remote form renderer. The descriptor shape is a wire contract: the "name"
// discriminators and field keys must not change.
//
// Nodes carry no internal locking. Build a tree on one goroutine, then
// serialize it from as many goroutines as needed; mutation (AddProperty,
// AddChoice, MarkDynamic) racing with serialization must be synchronized by the
// caller.
package types

package gridbase

// Package gridbase provides:
//
// - A typed field-descriptor contract (validation, wire <-> native conversion)
//   for models backed by a tabular cloud-database API
// - An ordered field registry (Model) with per-instance stores and presence
//   metadata for readonly-omission on serialization
// - A stable error model via Issues (path, code, message) with a three-way
//   classification: type, value, and attribute errors
//
// Design policy:
// - Keep only public contracts in the root package; field implementations
//   live under fields/, pure wire conversions under codec/, the model
//   builder under dsl/, and the HTTP client under client/.
// - Core packages perform no I/O and never block; only client/ touches the
//   network.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	contact := dsl.Model("Contact").
//		Field("first_name", fields.Text("First Name")).
//		Field("email", fields.Email("Email")).
//		MustBuild()
//
//	inst, err := contact.New(map[string]any{"first_name": "John"})
//	rec, err := inst.ToRecord()

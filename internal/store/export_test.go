package store

// RejectInput exposes the pre-remote failure path for tests.
var RejectInput = (*SessionStore).rejectInput

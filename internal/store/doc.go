// Package store holds the client-side state containers: the session
// (who is signed in) and the task collection with its query state.
//
// Every mutation of a store replaces the affected state slice in one step
// under the store's lock, so State never observes a partial update. Remote
// calls run outside the lock; operations on the same store are not
// serialized against each other, and the last replacement wins.
package store

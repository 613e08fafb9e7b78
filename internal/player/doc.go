// Package player implements the playback control surface: local state, user
// intent handling, and reconciliation against the remote device's truth.
//
// # Two Writers, One State
//
// [Controller] holds the locally-observed [State] and applies user gestures
// as optimistic updates before issuing the remote call. [Reconciler]
// independently polls the remote snapshot and merges it in. The remote is
// authoritative, but a poll that started before a user action must not
// overwrite the field that action just set, so the controller records a
// touch time per [Field] and merges skip recently-touched fields.
//
// # Device Activation
//
// The controller drives one target device. When a poll reports a different
// device, the reconciler transfers playback back, preserving the remote's
// play flag. Before any user-initiated mutating call, EnsureActive transfers
// and polls with bounded retries until the target reports active, giving up
// silently once the budget runs out.
//
// # Error Contract
//
// Remote calls report failure as strings on the playback state (the
// services.Result and services.Status contract), never as Go errors.
// Disabled controls and a missing device gate every handler into a no-op
// before any remote call is attempted.
package player

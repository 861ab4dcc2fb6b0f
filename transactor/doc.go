// Package transactor guards a value with single-writer sessions.
//
// A transactor actor owns the committed value. Sending it [Begin] spawns a
// session actor holding a private working copy and replies with the
// session's ref. The caller then sends [Extract] and [Modify] to the session
// and finishes with [Commit] or [Rollback]. Only one session is live at a
// time: Begin requests that arrive during a session are deferred, in order,
// until the session ends.
//
// A session ends in one of four ways:
//
//   - Commit: the working copy becomes the committed value.
//   - Rollback: the working copy is discarded.
//   - A transform returns an error or panics: treated as a rollback.
//   - The session timeout fires: the transactor stops the session and rolls back.
//
// Modify is idempotent per ID, so callers may retry a Modify whose
// acknowledgement was lost without applying it twice.
//
// [Client] wraps the message protocol for code outside the actor system:
//
//	system := tractor.Start(transactor.New(transactor.DefaultConfig(0)))
//	client := transactor.NewClient[int](system.Root())
//
//	s, err := client.Begin(ctx)
//	err = s.Modify(ctx, 1, func(v int) (int, error) { return v + 5, nil })
//	err = s.Commit(ctx)
package transactor

// Package agenda wires the contact directory together: the HTTP API, the
// synchronized directory view over the store's live subscriptions, the two
// contact filter modes, admin authentication and request metrics.
//
// An [App] owns a [agenda/pkg/store.Store], a [SyncStore] and an
// [Authenticator]. [App.Run] starts synchronization and serves the API
// until its context is cancelled.
package agenda

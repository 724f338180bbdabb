// Package permission evaluates module permissions on the client side.
//
// Permissions are "<module>.<action>" strings. The permission service may send them
// dotted, underscore or colon separated; Normalize turns every accepted format into
// the canonical dotted form according to a FormatConfig.
//
// # Resolution
//
// A Set is built from the server payload (FromPayload) and merged with the
// role-derived Fallback. Merge is additive: the client-side set is a display aid,
// authoritative denial happens on each backend call.
//
// Resolver.HasPermission grants when:
//   - the identity is a super admin
//   - "module.action" or "module.*" is present
//   - hierarchy is enabled and an ancestor module grants the action
//   - the module is an admin-level submodule and its parent holds "admin" or "*"
package permission

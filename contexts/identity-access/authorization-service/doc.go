// Package authorization implements the role and permission service backing
// the tally workflow stations.
//
// Layering:
// - domain: core entities, invariants, errors
// - application: commands/queries/workers using explicit ports
// - ports: stable boundaries for persistence/cache/events
// - adapters: concrete HTTP, memory, postgres, and event publisher implementations
// - transport: module-private DTOs for HTTP contracts
//
// Boundary notes:
// - Keep this module self-contained under the identity-access context.
// - Do not import other context adapters into domain/application.
// - Role names mirror the workflow role registry consumed by the
//   form-workflow service's role gates.
package authorization

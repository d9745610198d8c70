// Package formworkflow implements the result-form digitization workflow:
// barcode intake, dual blind data entry, corrections arbitration, quality
// control with quarantine checks, and the audit/clearance/recall review
// tracks that gate a form's path to the archive.
//
// Layering:
// - domain: form state machine, matching/arbitration, quarantine checks, role gates
// - application: commands/queries/workers using explicit ports
// - ports: stable boundaries for persistence, events, clock, and id generation
// - adapters: concrete HTTP, memory, and postgres implementations
// - transport: module-private DTOs for HTTP contracts
//
// Boundary notes:
// - Keep this module self-contained under the tally-operations context.
// - Do not import other context adapters into domain/application.
// - Role gates consume the role names registered by the identity-access
//   authorization service.
package formworkflow

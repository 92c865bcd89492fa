// Package fincal keeps a personal finance calendar: savings funds,
// scheduled obligations, income and expense transactions, and the
// allocations that earmark money for a fund or an obligation.
//
// The core functionalities include:
//   - Document: the whole ledger is a single JSON document, loaded, repaired
//     by Normalize, and written back as a whole by a Store over a Storage
//     (file, S3 or SQLite).
//   - Derivations: a Calculator derives the available balance, the coverage
//     of obligations, and daily and monthly aggregates from the raw records.
//     Nothing derived is stored, except obligation statuses.
//   - Operations: a Ledger validates and applies every change, keeping fund
//     balances non negative and obligation statuses consistent with their
//     allocations.
//   - Calendar: Events projects the records of a month into calendar events
//     tagged with the id of their record.
//
// This package serves as the foundational logic for the `fin` command-line
// tool.
package fincal

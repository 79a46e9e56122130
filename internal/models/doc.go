// Package models defines the core domain models for splitchain.
//
// # Models
//
//   - Group: a set of member addresses sharing expenses
//   - Expense: an immutable cost record created by the remote ledger
//   - PairwiseObligation: one per-expense amount owed by a split member to the payer
//   - NetDebt: the consolidated, directional balance between two members
//   - BalanceSummary: everything one member owes and is owed inside a group
//   - TxResult: outcome of a state-changing ledger call
//
// All money values use Amount, an integer count of base currency units.
// The ledger serializes amounts as decimal strings; Amount carries that
// convention through JSON while staying integer-arithmetic internally.
// No floating point is used anywhere money flows.
//
// # Design Principles
//
//  1. Members are identified by their ledger address (string); the gateway
//     never invents identities.
//  2. Ephemeral types (obligations, net debts, summaries) are recomputed
//     from scratch on every refresh. The ledger is the source of truth;
//     nothing here mutates a stored balance.
//  3. Wire-shape tolerance lives in decoding methods, not in consumers:
//     once a value exists it has exactly one canonical form.
package models

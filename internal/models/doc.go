// Package models defines the core domain models for splitchat.
//
// # Current Models
//
//   - User: a registered account; also the identity behind every ledger row
//   - Group: a chat group whose members split expenses
//   - Member: the roster view of a user (id, name, email) consumed by the
//     participant resolver
//   - Transaction: one group event, either a plain chat message or the parent
//     of an expense's Detail rows
//   - Detail: one pairwise debt record (borrower owes lender amount for label)
//   - Claim / ResolvedClaim: a structured expense description extracted from
//     free text, before and after name resolution
//
// # Design Principles
//
//  1. **Opaque ids downstream**: free-text names are resolved to member ids
//     exactly once, at the resolver boundary; everything below the resolver
//     operates on ids only.
//  2. **Immutable ledger**: a Transaction is created once, its Details are
//     attached at most once, and neither is ever edited or deleted.
//  3. **Decimal money**: all amounts are shopspring decimals; float64 never
//     touches a ledger row.
//  4. **Avoid circular references**: models reference each other by id
//     strings, not pointers.
package models

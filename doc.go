// Package dge provides the types and functions of a damaged goods exchange:
// the intake of goods rejected at a port or damaged in transit, their resale
// valuation and the supply chain finance (SCF) requested against them.
//
// The core functionalities include:
//   - Valuation: a category table maps each goods category to the share of the
//     original price that can be recovered. The valued price is the basis of
//     every other computation.
//   - SCF Calculator: short term finance capped at 60% of the valued price,
//     with simple interest on an actual/365 basis and a risk tier derived from
//     the interest rate.
//   - Ancillary services: inspection, warehousing, insurance and the other
//     logistics services attached to a record, at most one per kind.
//   - Record Store: the record collection persisted as a human readable JSON
//     file, replaced atomically on every change and loaded leniently.
//   - Queries and metrics: filtering records and summarizing the finance
//     opportunities they represent.
//
// Amounts are decimals in US dollars, kept with full precision and only
// rounded to cents when displayed.
//
// This package serves as the foundational logic for the `dge` command-line
// tool and its HTTP API.
package dge

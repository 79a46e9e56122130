// Package ledger is the client for the remote value-transfer ledger, the
// authoritative accounting backend. The ledger exposes a query/execute
// RPC surface: queries are read-only JSON messages answered with JSON,
// executes are state-changing messages that carry a sender and optional
// attached funds and answer with a transaction result.
//
// The ledger is reached through an RPC facade speaking plain HTTP:
//
//	POST {base}/query                      body = query message
//	POST {base}/execute                    body = {sender, msg, funds}
//	GET  {base}/bank/balances/{address}    bank balance for funds checks
//
// Response-shape tolerance lives entirely in this package: debts arrive
// either as {debts: [{from,to,amount}]} or as a bare array of
// {debtor,creditor,amount}, and balance summaries in one of three
// wrappings. Everything is normalized into the canonical types of
// internal/models at this boundary so no other package branches on shape.
package ledger

// Package payments provides the ledger engine behind the `ptx` command-line
// tool. It replays a stream of client transactions and reports the resulting
// balance of every client account.
//
// The core functionalities include:
//   - Monetary values: exact decimal amounts, bounded like a 96-bit decimal,
//     with balances rounded half to even to four fractional digits.
//   - Client accounts: available and held funds, and a terminal locked state
//     reached through a chargeback.
//   - Engine: the per-transaction validation and dispatch of deposits,
//     withdrawals, disputes, resolves and chargebacks. A rejected transaction
//     never stops a run, it is logged and counted.
//   - Codecs: decoding transactions from CSV or JSON lines, and encoding the
//     final balances as CSV or JSON lines.
//   - Publishing: sending the final balances to a Kafka topic.
//
// A run is strictly sequential: create an Engine, Submit every transaction in
// input order, then drain the Report once.
package payments

// Package metrics provides application-level metrics collection behind a
// small Recorder interface so the services stay unaware of the backend.
package metrics

import "time"

// Recorder records counters and latencies for transfer operations.
type Recorder interface {
	IncCounter(name string, labels map[string]string)
	ObserveLatency(name string, duration time.Duration, labels map[string]string)
}

// Counter names recorded by the services.
const (
	CounterTransferSubmitted = "transfer_submitted"
	CounterTransferConfirmed = "transfer_confirmed"
	CounterTransferFailed    = "transfer_failed"
	CounterTransferRejected  = "transfer_rejected"
	CounterQuoteFailed       = "quote_failed"
	CounterLedgerWriteFailed = "ledger_write_failed"
)

// Operation names observed for latency.
const (
	OpRPCCall     = "rpc_call"
	OpRelaySubmit = "relay_submit"
	OpQuoteFee    = "quote_fee"
	OpConfirm     = "confirm"
)

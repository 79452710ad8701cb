// Package core contains the webhook delivery contracts: the generic Sender
// capability, the Deliverer transport primitive, the error envelope and the
// Service that adds rate limiting and observability to a Deliverer.
//
// Destination packages (discord) and adapters (transport, ratelimit, gojob)
// depend on core; core never depends on them.
package core

// Package queue defines message payloads exchanged over the message
// broker and the publisher/consumer pair moving them.
package queue

// verificationQueueName is the durable queue carrying verification
// mail requests from the API to the mail consumer.
const verificationQueueName = "user.verification"

// VerificationRequestedEvent is published when a new account needs its
// email address confirmed.  The consumer turns it into an outbound
// message carrying the redemption link.
type VerificationRequestedEvent struct {
	Email       string `json:"email"`
	Token       string `json:"token"`
	RequestedAt string `json:"requested_at"`
}

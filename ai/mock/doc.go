// Package mock provides test doubles for ai interfaces. The default
// behavior is deterministic: the same text always embeds to the same vector,
// so tests can assert on upload idempotence without a live model.
package mock

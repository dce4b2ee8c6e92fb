// Package google owns the OAuth credential lifecycle: building the
// authorization URL, exchanging authorization codes, and keeping the
// per-user in-process credential in sync with the persistent store.
//
// The manager gates on presence of credentials, not freshness. An
// expired token with a refresh token must still be attempted, because
// the oauth2 token source renews it transparently during the API call.
package google

// Package identity integrates the external identity service with the
// session core. The service owns credentials and token issuance; this
// package only converts its outcomes into session events and keeps the
// session fresh ahead of its expiry.
package identity

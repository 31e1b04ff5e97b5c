// Package cryptox holds the server's cryptographic primitives: Argon2id
// password credentials and AES-256-GCM sealing of byte payloads.
//
// Keys are always passed in by the caller; nothing in this package reads
// configuration or generates long-lived key material on its own.
package cryptox

// Package domain defines the Zenith entity model shared by the client sync
// engine and the gateway.
//
// Every record is owned by exactly one user. Constructors normalize and
// validate untrusted input before a record enters a collection or the store;
// validation failures carry machine-readable codes from the platform errors
// package. Wire field names (JSON tags) are the canonical snake_case names
// used by the gateway tables.
package domain

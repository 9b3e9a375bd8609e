package rosclient

import "errors"

var (
	// Session management.
	ErrUnknownProfile = errors.New("unknown credential profile")

	// Mutation application.
	ErrEntryNotFound     = errors.New("no device entry matches mutation key")
	ErrAmbiguousEntry    = errors.New("mutation key matches multiple device entries")
	ErrUnknownMutationOp = errors.New("unknown mutation operation")

	// State reading.
	ErrBadWireValue = errors.New("unreadable value in device reply")

	// Identity probing.
	ErrSNMPGetFailed = errors.New("snmp get failed")
	ErrSNMPStatus    = errors.New("snmp error status")
	ErrNoSNMPData    = errors.New("device returned no identity data")
)

// SPDX-FileCopyrightText: 2023 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package dtls

import (
	"github.com/pion/logging"
)

const (
	// defaultReplayProtectionWindow is 0: replay protection is off by
	// default. WithReplayProtectionWindow opts a caller into guarding
	// inbound sequence numbers.
	defaultReplayProtectionWindow = 0
	// maxAppDataPacketQueueSize bounds the per-session pre-connect
	// outbound queue.
	maxAppDataPacketQueueSize = 100
)

// Family names the address family an Endpoint's socket is bound to: a
// single datagram socket of family IPv4 or IPv6, chosen at construction.
type Family int

// Recognized address families.
const (
	FamilyIPv4 Family = iota
	FamilyIPv6
)

type endpointOptions struct {
	loggerFactory          logging.LoggerFactory
	family                 Family
	replayProtectionWindow uint
}

func defaultEndpointOptions() *endpointOptions {
	return &endpointOptions{
		loggerFactory:          logging.NewDefaultLoggerFactory(),
		family:                 FamilyIPv4,
		replayProtectionWindow: defaultReplayProtectionWindow,
	}
}

// Option configures an Endpoint at construction time.
type Option func(*endpointOptions)

// WithLoggerFactory overrides the default pion/logging factory.
func WithLoggerFactory(f logging.LoggerFactory) Option {
	return func(o *endpointOptions) { o.loggerFactory = f }
}

// WithFamily selects which address family literal hostnames/resolver
// results are matched against.
func WithFamily(family Family) Option {
	return func(o *endpointOptions) { o.family = family }
}

// WithReplayProtectionWindow sets the replay detector's sliding window
// size. A window of 0 disables replay detection outright, which is this
// client's default; passing a positive value opts into
// pion/transport/v3/replaydetector guarding inbound record sequence
// numbers per session.
func WithReplayProtectionWindow(n uint) Option {
	return func(o *endpointOptions) { o.replayProtectionWindow = n }
}

// SPDX-License-Identifier: GPL-3.0-or-later

// Package nresolve is an asynchronous, backend-pluggable name resolution
// engine.
//
// # Core Abstraction
//
// A [Context] owns an ordered chain of [Backend] implementations (DNS,
// /etc/hosts, literal addresses, ...) parsed from a chain string such as
// [DefaultChainString]. Creating a [Request] with [NewForwardRequest],
// [NewReverseRequest], or [NewDNSRequest] and handing it to
// [Context.Query] or [Context.StartQuery] walks that chain one backend at
// a time. Once a backend has produced paths, the remaining backends are
// still consulted until a partial-success timeout fires or the chain ends;
// if every backend fails, the [Response] reports failure.
//
// Each backend runs behind the [Handle] interface: a bidirectional
// boundary through which it reads the request, emits paths/names/answers,
// registers descriptors and timeouts it needs serviced, and finally
// declares [Handle.Finished] or [Handle.Failed]. This is the Go shape of
// the original C library's netresolve_backend_* function family.
//
// # Event Loop Integration
//
// Backends never block waiting on I/O; they register descriptors and
// timeouts through their [Handle] instead. By default, a [Context]
// lazily constructs a built-in epoll-based adapter (Linux only) to drive
// blocking-style [Context.Query] calls. A host with its own event loop can
// instead call [Context.SetEventLoopCallbacks] and drive queries started
// via [Context.StartQuery] by calling [Context.DispatchFD] and
// [Context.DispatchTimeout] whenever its own loop observes readiness.
//
// # Backends
//
// The chain-string mechanical backends ("unix", "any", "loopback",
// "numerichost", "hosts", "hostname") register themselves via
// [RegisterBackend] from init functions in this package. The "dns"
// backend (chain-string alias "ubdns") lives in the dnsbackend
// subpackage, which must be imported for its side effect even though none
// of its exported identifiers are referenced directly:
//
//	import _ "github.com/bassosimone/nresolve/dnsbackend"
//
// # Observability
//
// Structured logging follows the same [SLogger] convention as the
// package this one was built from: disabled by default, enabled by
// installing a [*slog.Logger] via [Context.SetLogger]. Backend I/O
// failures are additionally classified into short labels (e.g.
// "ETIMEDOUT") via [ErrClassifier], independent of the resolver-level
// [ErrorKind] carried on a failed [Response].
//
// Use [NewSpanID] (already wired into every [Query] automatically) to
// correlate log lines emitted while that query is active, across however
// many backends it visits.
//
// # Configuration
//
// [NewContext] applies a one-shot set of environment variable overrides
// (NETRESOLVE_VERBOSE, NETRESOLVE_FORCE_FAMILY,
// NETRESOLVE_FLAG_DEFAULT_LOOPBACK, NETRESOLVE_CLAMP_TTL,
// NETRESOLVE_TIMEOUT, NETRESOLVE_PARTIAL_TIMEOUT), mirroring the original
// library's getenv-at-open-time behavior; see env.go.
package nresolve

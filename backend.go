// SPDX-License-Identifier: GPL-3.0-or-later

package nresolve

import (
	"fmt"
	"strings"
	"sync"
)

// SetupFunc is a backend's entry point for one request [Kind]. It is
// called synchronously by the engine with the query [Handle] and the
// backend's settings (the colon-separated tail of its chain-string entry,
// name excluded). A SetupFunc must eventually, synchronously or from a
// later [DispatchFunc], call [Handle.Finished] or [Handle.Failed].
type SetupFunc func(h Handle, settings []string)

// DispatchFunc is called when a descriptor or timeout the backend
// registered becomes ready. fd is the ready descriptor (or the timeout's
// token, for timeout events) and events carries the readiness bitmask.
type DispatchFunc func(h Handle, fd int, events Events)

// CleanupFunc is called exactly once per query-backend activation, after
// Finished/Failed or on forced termination. It must deregister all
// outstanding descriptors/timeouts and release resources held in the
// private state block; the engine discards the block itself.
type CleanupFunc func(h Handle)

// Backend is the capability set a resolution source implements. Any of
// SetupForward/SetupReverse/SetupDNS may be nil, meaning the backend does
// not service that request kind; the engine skips it for that kind without
// activating it, so a mandatory backend skipped this way does not abort the
// chain. Dispatch and Cleanup are mandatory.
type Backend struct {
	SetupForward SetupFunc
	SetupReverse SetupFunc
	SetupDNS     SetupFunc
	Dispatch     DispatchFunc
	Cleanup      CleanupFunc
}

// setupFor returns the SetupFunc for kind, or nil if the backend doesn't
// service it.
func (b *Backend) setupFor(kind Kind) SetupFunc {
	switch kind {
	case KindForward:
		return b.SetupForward
	case KindReverse:
		return b.SetupReverse
	case KindDNS:
		return b.SetupDNS
	default:
		return nil
	}
}

// BackendDescriptor is one entry of a parsed backend chain: a name, the
// mandatory flag (a leading '+' in the chain string), its settings, and
// the registered [Backend] implementation.
type BackendDescriptor struct {
	// Name is the backend's registry name, '+' prefix stripped.
	Name string

	// Mandatory means this backend's failure aborts the chain instead of
	// falling through to the next entry.
	Mandatory bool

	// Settings are the colon-separated tokens after the name.
	Settings []string

	// Backend is the registered implementation for Name.
	Backend *Backend
}

var (
	registryMu sync.RWMutex
	registry   = map[string]*Backend{}
)

// RegisterBackend installs name into the global backend registry used by
// [ParseChainString] and [DefaultContext]. Backends normally register
// themselves from an init function, mirroring how the original C library's
// backend .so files export start/dispatch/cleanup symbols.
func RegisterBackend(name string, b *Backend) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = b
}

// LookupBackend returns the registered [Backend] for name, or nil.
func LookupBackend(name string) *Backend {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return registry[name]
}

// DefaultChainString is the backend chain used when a [Context] is created
// without an explicit one.
const DefaultChainString = "unix,any,loopback,numerichost,hosts,hostname,ubdns"

// backendAliases maps chain-string names to registry names, for names that
// were carried over verbatim from deployed configuration (the original
// library's default chain spells the DNS backend "ubdns").
var backendAliases = map[string]string{
	"ubdns": "dns",
}

// ParseChainString parses a comma-separated backend chain string (each
// entry colon-separated, optionally '+'-prefixed to mark it mandatory)
// into an ordered list of [BackendDescriptor]. An empty string yields an
// empty, valid chain (a context with no backends that fails every query).
func ParseChainString(s string) ([]*BackendDescriptor, error) {
	if s == "" {
		return nil, nil
	}
	var out []*BackendDescriptor
	for _, entry := range strings.Split(s, ",") {
		if entry == "" {
			continue
		}
		tokens := strings.Split(entry, ":")
		name := tokens[0]
		mandatory := false
		if strings.HasPrefix(name, "+") {
			mandatory = true
			name = name[1:]
		}
		if name == "" {
			return nil, fmt.Errorf("nresolve: empty backend name in chain entry %q", entry)
		}
		lookupName := name
		if alias, ok := backendAliases[name]; ok {
			lookupName = alias
		}
		b := LookupBackend(lookupName)
		if b == nil {
			return nil, fmt.Errorf("nresolve: unknown backend %q", name)
		}
		out = append(out, &BackendDescriptor{
			Name:      name,
			Mandatory: mandatory,
			Settings:  tokens[1:],
			Backend:   b,
		})
	}
	return out, nil
}

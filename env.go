// SPDX-License-Identifier: GPL-3.0-or-later

package nresolve

import (
	"log/slog"
	"os"
	"strconv"
	"sync"
	"time"
)

// envConfig holds the one-shot environment-derived defaults applied by
// [NewContext], grounded on the original library's netresolve_open (which
// reads its getenv_bool/getenv_int/getenv_family helpers exactly once per
// process via a static context).
type envConfig struct {
	verbose         bool
	hasForceFamily  bool
	forceFamily     Family
	defaultLoopback bool
	clampTTL        int
	timeout         time.Duration
	partialTimeout  time.Duration
}

// logger returns the [SLogger] this configuration implies: a real
// slog-backed logger at debug level when NETRESOLVE_VERBOSE is set, the
// package's silent default otherwise.
func (e *envConfig) logger() SLogger {
	if !e.verbose {
		return DefaultSLogger()
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func getenvBool(name string, def bool) bool {
	v, ok := os.LookupEnv(name)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getenvInt(name string, def int) int {
	v, ok := os.LookupEnv(name)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getenvFamily(name string) (Family, bool) {
	v, ok := os.LookupEnv(name)
	if !ok {
		return FamilyUnspec, false
	}
	switch v {
	case "4", "inet", "ipv4":
		return FamilyInet, true
	case "6", "inet6", "ipv6":
		return FamilyInet6, true
	default:
		return FamilyUnspec, false
	}
}

var (
	envOnce   sync.Once
	envCached *envConfig
)

// loadEnv parses the package's environment variables exactly once per
// process and caches the result, matching the original library's
// getenv-at-open-time behavior.
func loadEnv() *envConfig {
	envOnce.Do(func() {
		e := &envConfig{
			clampTTL:       -1,
			timeout:        15 * time.Second,
			partialTimeout: 5 * time.Second,
		}
		e.verbose = getenvBool("NETRESOLVE_VERBOSE", false)
		e.forceFamily, e.hasForceFamily = getenvFamily("NETRESOLVE_FORCE_FAMILY")
		e.defaultLoopback = getenvBool("NETRESOLVE_FLAG_DEFAULT_LOOPBACK", false)
		if ms := getenvInt("NETRESOLVE_CLAMP_TTL", -1); ms >= 0 {
			e.clampTTL = ms
		}
		if ms := getenvInt("NETRESOLVE_TIMEOUT", 15000); ms > 0 {
			e.timeout = time.Duration(ms) * time.Millisecond
		} else if ms == 0 {
			e.timeout = 0
		}
		if ms := getenvInt("NETRESOLVE_PARTIAL_TIMEOUT", 5000); ms > 0 {
			e.partialTimeout = time.Duration(ms) * time.Millisecond
		} else if ms == 0 {
			e.partialTimeout = 0
		}
		if e.clampTTL < 0 {
			e.clampTTL = 0
		}
		envCached = e
	})
	return envCached
}

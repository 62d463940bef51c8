// SPDX-License-Identifier: GPL-3.0-or-later

package nresolve_test

import (
	"fmt"

	"github.com/bassosimone/nresolve"
	"github.com/bassosimone/runtimex"
)

// This example shows a forward lookup running entirely through the
// mechanical backends, with no network access: "localhost" resolves via
// the "loopback" backend once "any" and "numerichost" fall through.
func Example_forwardLookup() {
	ctx := runtimex.PanicOnError1(nresolve.NewContext("any,numerichost,loopback"))
	defer ctx.Close()

	resp := runtimex.PanicOnError1(ctx.Query(nresolve.NewForwardRequest("localhost", "")))
	fmt.Println(resp.Status)
	fmt.Println(resp.Canonical)
	for _, p := range resp.Paths {
		fmt.Println(nresolve.FormatPath(p))
	}

	// Output:
	// success
	// localhost
	// inet 127.0.0.1 any any 0 0 0 0
	// inet6 ::1 any any 0 0 0 0
}

// This example shows a literal IP address resolving through the
// "numerichost" backend; the later "any" entry is still consulted and
// fails, so the one numerichost path is the whole result.
func Example_numericHost() {
	ctx := runtimex.PanicOnError1(nresolve.NewContext("numerichost,any"))
	defer ctx.Close()

	resp := runtimex.PanicOnError1(ctx.Query(nresolve.NewForwardRequest("93.184.216.34", "")))
	fmt.Println(resp.Status)
	for _, p := range resp.Paths {
		fmt.Println(nresolve.FormatPath(p))
	}

	// Output:
	// success
	// inet 93.184.216.34 any any 0 0 0 0
}

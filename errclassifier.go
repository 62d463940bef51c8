// SPDX-License-Identifier: GPL-3.0-or-later

package nresolve

import "github.com/bassosimone/errclass"

// ErrClassifier classifies errors into categorical strings for analysis.
//
// Implementations map errors to short, descriptive labels (e.g., "ETIMEDOUT",
// "ECONNRESET") that facilitate systematic analysis of backend I/O failures
// independent of the resolver-level [ErrorKind] surfaced on a failed [Response].
type ErrClassifier interface {
	Classify(err error) string
}

// ErrClassifierFunc adapts a function to the [ErrClassifier] interface.
//
// This allows using simple functions as classifiers:
//
//	ctx.SetErrClassifier(ErrClassifierFunc(errclass.New))
type ErrClassifierFunc func(error) string

var _ ErrClassifier = ErrClassifierFunc(nil)

// Classify implements [ErrClassifier].
func (f ErrClassifierFunc) Classify(err error) string {
	return f(err)
}

// DefaultErrClassifier classifies errors using [errclass.New], mapping I/O
// errors raised by backends (most notably the DNS backend's UDP exchanges)
// to short labels such as "ETIMEDOUT" or "ECONNREFUSED" for structured logs.
var DefaultErrClassifier = ErrClassifierFunc(errclass.New)

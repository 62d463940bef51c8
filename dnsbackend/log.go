// SPDX-License-Identifier: GPL-3.0-or-later

package dnsbackend

import (
	"log/slog"
	"time"

	"github.com/bassosimone/nresolve"
)

// exchangeLog consolidates the structured-logging fields for one UDP
// query/response pair, adapted from the teacher's DNSExchangeLogContext to
// the non-blocking, fire-and-forget shape a backend's dispatch loop needs:
// one log line per query sent, one per matched response (and one per
// response that fails to parse), rather than a single synchronous
// Exchange call.
type exchangeLog struct {
	logger     nresolve.SLogger
	errCls     nresolve.ErrClassifier
	localAddr  string
	remoteAddr string
	timeNow    func() time.Time
}

func (l *exchangeLog) logQuery(name string, qtype uint16, id uint16) {
	l.logger.Info("dnsQuery",
		slog.String("localAddr", l.localAddr),
		slog.String("remoteAddr", l.remoteAddr),
		slog.String("name", name),
		slog.Uint64("qtype", uint64(qtype)),
		slog.Uint64("id", uint64(id)),
		slog.Time("t", l.timeNow()),
	)
}

func (l *exchangeLog) logResponse(id uint16, rcode int, err error) {
	l.logger.Info("dnsResponse",
		slog.String("localAddr", l.localAddr),
		slog.String("remoteAddr", l.remoteAddr),
		slog.Uint64("id", uint64(id)),
		slog.Int("rcode", rcode),
		slog.Any("err", err),
		slog.String("errClass", l.errCls.Classify(err)),
		slog.Time("t", l.timeNow()),
	)
}

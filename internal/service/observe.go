package service

import (
	"strings"

	"Lee_Meetup/internal/metrics"
	"Lee_Meetup/internal/pkg"
)

func observe(ledger, op string, err error) {
	result := "ok"
	if err != nil {
		result = strings.ReplaceAll(pkg.KindOf(err).String(), " ", "_")
	}
	metrics.LedgerOperations.WithLabelValues(ledger, op, result).Inc()
}

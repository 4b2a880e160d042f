package command

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var ledgerRecords = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ledger_transactions_total",
		Help: "Ledger records written, by transaction type and result.",
	},
	[]string{"type", "result"},
)

var accountsOpened = promauto.NewCounter(prometheus.CounterOpts{
	Name: "accounts_opened_total",
	Help: "Accounts successfully created.",
})

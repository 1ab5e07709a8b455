package sheets

import (
	"context"

	"fincharts/internal/core"
)

// Ports for outbound adapters.
type (
	// LedgerReader supplies the initial values of a ledger year.
	LedgerReader interface {
		ReadLedger(ctx context.Context, year int) (core.LedgerData, error)
	}

	// LedgerWriter commits a whole ledger year and returns a reference to the
	// stored commit.
	LedgerWriter interface {
		WriteLedger(ctx context.Context, data core.LedgerData) (ref string, err error)
	}

	LedgerReadWriter interface {
		LedgerReader
		LedgerWriter
	}
)

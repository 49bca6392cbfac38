// internal/app/config.go
package app

import (
	"time"

	"complaint_notification_engine/internal/domain/viewer"
)

// Config carries the engine's tunable parameters. The per-role ledger caps
// differ on purpose: owners keep a longer feed than handlers and
// administrators, whose streams churn faster.
type Config struct {
	OwnerLedgerCap   int
	HandlerLedgerCap int
	AdminLedgerCap   int
	SeenCap          int
	UndoWindow       time.Duration
	// AdminSuppressSelfAuthored applies self-authorship filtering to
	// administrator status/feedback events. Off by default: administrators
	// observe globally and see handler-class changes regardless of author.
	AdminSuppressSelfAuthored bool
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		OwnerLedgerCap:   200,
		HandlerLedgerCap: 100,
		AdminLedgerCap:   100,
		SeenCap:          500,
		UndoWindow:       10 * time.Second,
	}
}

func (c Config) ledgerCap(kind viewer.RoleKind) int {
	switch kind {
	case viewer.RoleOwner:
		return c.OwnerLedgerCap
	case viewer.RoleHandler:
		return c.HandlerLedgerCap
	default:
		return c.AdminLedgerCap
	}
}

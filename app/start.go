package app

import (
	"context"

	"github.com/tabletop-ledger/partie/app/server"
)

// Start serves HTTP until ctx is cancelled.
func (a *App) Start(ctx context.Context) error {
	return server.New(a.serverOptions(), a.Router(), a.Logger).Run(ctx)
}

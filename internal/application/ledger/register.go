package ledger

import (
	"github.com/andrescamacho/idlecolony-go/internal/application/common"
	"github.com/andrescamacho/idlecolony-go/internal/application/ledger/commands"
	"github.com/andrescamacho/idlecolony-go/internal/application/ledger/queries"
	domainLedger "github.com/andrescamacho/idlecolony-go/internal/domain/ledger"
)

// RegisterHandlers registers the transaction journal commands and queries
func RegisterHandlers(m common.Mediator, source commands.TransactionSource, repo domainLedger.TransactionRepository) error {
	if err := common.RegisterHandler[*commands.FlushTransactionsCommand](m, commands.NewFlushTransactionsHandler(source, repo)); err != nil {
		return err
	}
	if err := common.RegisterHandler[*commands.ClearTransactionsCommand](m, commands.NewClearTransactionsHandler(repo)); err != nil {
		return err
	}
	if err := common.RegisterHandler[*queries.GetTransactionsQuery](m, queries.NewGetTransactionsHandler(repo)); err != nil {
		return err
	}
	return common.RegisterHandler[*queries.GetResourceFlowQuery](m, queries.NewGetResourceFlowHandler(repo))
}

package commands

import (
	"github.com/andrescamacho/idlecolony-go/internal/application/common"
	"github.com/andrescamacho/idlecolony-go/internal/application/game"
)

// RegisterHandlers registers every colony command on the mediator. saves
// may be nil, in which case the save commands are not registered.
func RegisterHandlers(m common.Mediator, engine *game.Engine, saves game.SaveRepository) error {
	registrations := []error{
		common.RegisterHandler[*AssignWorkersCommand](m, NewAssignWorkersHandler(engine)),
		common.RegisterHandler[*UnassignWorkersCommand](m, NewUnassignWorkersHandler(engine)),
		common.RegisterHandler[*ReassignWorkersCommand](m, NewReassignWorkersHandler(engine)),
		common.RegisterHandler[*PurchaseUpgradeCommand](m, NewPurchaseUpgradeHandler(engine)),
		common.RegisterHandler[*ActivateBoostCommand](m, NewActivateBoostHandler(engine)),
		common.RegisterHandler[*StartConstructionCommand](m, NewStartConstructionHandler(engine)),
		common.RegisterHandler[*PurchaseBuildingUpgradeCommand](m, NewPurchaseBuildingUpgradeHandler(engine)),
		common.RegisterHandler[*StartTrainingCommand](m, NewStartTrainingHandler(engine)),
		common.RegisterHandler[*ManualHarvestCommand](m, NewManualHarvestHandler(engine)),
		common.RegisterHandler[*ResetGameCommand](m, NewResetGameHandler(engine)),
	}
	if saves != nil {
		registrations = append(registrations,
			common.RegisterHandler[*SaveGameCommand](m, NewSaveGameHandler(engine, saves)),
			common.RegisterHandler[*LoadGameCommand](m, NewLoadGameHandler(engine, saves)),
			common.RegisterHandler[*DeleteSaveCommand](m, NewDeleteSaveHandler(saves)),
		)
	}
	for _, err := range registrations {
		if err != nil {
			return err
		}
	}
	return nil
}

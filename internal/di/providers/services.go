package providers

import (
	"github.com/samber/do/v2"

	"github.com/StrangePerch/laravel-trello-server/internal/auth"
	"github.com/StrangePerch/laravel-trello-server/internal/logger"
	"github.com/StrangePerch/laravel-trello-server/internal/service"
	"github.com/StrangePerch/laravel-trello-server/internal/validation"
)

// ProvideValidator provides the request validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideGate provides the board access gate shared by the business services.
func ProvideGate(i do.Injector) (*service.Gate, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	return service.NewGate(storeHandle.Store), nil
}

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, tokenService, validator, log.Logger), nil
}

// ProvideBoardService provides the board service.
func ProvideBoardService(i do.Injector) (*service.BoardService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	gate := do.MustInvoke[*service.Gate](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewBoardService(storeHandle.Store, gate, validator, log.Logger), nil
}

// ProvideColumnService provides the column service.
func ProvideColumnService(i do.Injector) (*service.ColumnService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	gate := do.MustInvoke[*service.Gate](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewColumnService(storeHandle.Store, gate, validator, log.Logger), nil
}

// ProvideCardService provides the card service.
func ProvideCardService(i do.Injector) (*service.CardService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	gate := do.MustInvoke[*service.Gate](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCardService(storeHandle.Store, gate, validator, log.Logger), nil
}

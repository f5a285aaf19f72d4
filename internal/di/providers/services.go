package providers

import (
	"github.com/samber/do/v2"

	"github.com/Vyacheslaf/giftcert-server/internal/logger"
	"github.com/Vyacheslaf/giftcert-server/internal/service"
)

// ProvideCertificateService provides the gift certificate service.
func ProvideCertificateService(i do.Injector) (*service.CertificateService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCertificateService(storeHandle.Store, log.Logger), nil
}

// ProvideTagService provides the tag service.
func ProvideTagService(i do.Injector) (*service.TagService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewTagService(storeHandle.Store, log.Logger), nil
}

// ProvideUserService provides the user service.
func ProvideUserService(i do.Injector) (*service.UserService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewUserService(storeHandle.Store, log.Logger), nil
}

// ProvideOrderService provides the order service.
func ProvideOrderService(i do.Injector) (*service.OrderService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewOrderService(storeHandle.Store, log.Logger), nil
}

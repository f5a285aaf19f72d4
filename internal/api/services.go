package api

import (
	"github.com/Vyacheslaf/giftcert-server/internal/service"
)

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Certificate *service.CertificateService
	Tag         *service.TagService
	User        *service.UserService
	Order       *service.OrderService
}

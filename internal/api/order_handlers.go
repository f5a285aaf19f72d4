package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/Vyacheslaf/giftcert-server/internal/domain"
	"github.com/Vyacheslaf/giftcert-server/internal/service"
)

func (s *Server) registerOrderRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listUserOrders",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{id}/orders",
		Summary:     "List user orders",
		Description: "Returns a page of the user's orders",
		Tags:        []string{"Orders"},
	}, s.handleListUserOrders)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createUserOrder",
		Method:        http.MethodPost,
		Path:          "/api/v1/users/{id}/orders",
		Summary:       "Create order",
		Description:   "Places an order for a certificate; cost snapshots the certificate's current price",
		Tags:          []string{"Orders"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateUserOrder)

	huma.Register(s.api, huma.Operation{
		OperationID: "getUserOrder",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{id}/orders/{orderID}",
		Summary:     "Get user order",
		Description: "Returns one of the user's orders",
		Tags:        []string{"Orders"},
	}, s.handleGetUserOrder)
}

// === DTOs ===

// OrderResponse contains order data in API responses.
type OrderResponse struct {
	ID            int64     `json:"id" doc:"Order ID"`
	UserID        int64     `json:"user_id" doc:"Ordering user"`
	CertificateID int64     `json:"gift_certificate_id" doc:"Ordered certificate"`
	Cost          int64     `json:"cost" doc:"Price snapshot at purchase time"`
	PurchaseDate  time.Time `json:"purchase_date" doc:"Purchase time"`
}

func toOrderResponse(o *domain.Order) OrderResponse {
	return OrderResponse{
		ID:            o.ID,
		UserID:        o.UserID,
		CertificateID: o.CertificateID,
		Cost:          o.Cost,
		PurchaseDate:  o.PurchaseDate,
	}
}

// ListUserOrdersInput contains parameters for listing a user's orders.
type ListUserOrdersInput struct {
	ID   int64 `path:"id" doc:"User ID"`
	Page int   `query:"page" minimum:"0" doc:"Zero-based page number"`
	Size int   `query:"size" minimum:"0" maximum:"100" doc:"Page size"`
}

// ListUserOrdersResponse contains a page of orders.
type ListUserOrdersResponse struct {
	Orders []OrderResponse `json:"orders" doc:"Orders on this page"`
}

// ListUserOrdersOutput wraps the order list for Huma.
type ListUserOrdersOutput struct {
	Body ListUserOrdersResponse
}

// CreateOrderRequest is the request body for placing an order.
type CreateOrderRequest struct {
	CertificateID int64 `json:"gift_certificate_id" doc:"Certificate to order"`
}

// CreateUserOrderInput wraps the create order request for Huma.
type CreateUserOrderInput struct {
	ID   int64 `path:"id" doc:"User ID"`
	Body CreateOrderRequest
}

// OrderOutput wraps the order response for Huma.
type OrderOutput struct {
	Body OrderResponse
}

// GetUserOrderInput contains parameters for getting one of a user's orders.
type GetUserOrderInput struct {
	ID      int64 `path:"id" doc:"User ID"`
	OrderID int64 `path:"orderID" doc:"Order ID"`
}

// === Handlers ===

func (s *Server) handleListUserOrders(ctx context.Context, input *ListUserOrdersInput) (*ListUserOrdersOutput, error) {
	orders, err := s.services.Order.ListForUser(ctx, input.ID, input.Page, input.Size)
	if err != nil {
		return nil, err
	}

	resp := make([]OrderResponse, len(orders))
	for i, o := range orders {
		resp[i] = toOrderResponse(o)
	}
	return &ListUserOrdersOutput{Body: ListUserOrdersResponse{Orders: resp}}, nil
}

func (s *Server) handleCreateUserOrder(ctx context.Context, input *CreateUserOrderInput) (*OrderOutput, error) {
	o, err := s.services.Order.Create(ctx, input.ID, service.CreateOrderRequest{
		CertificateID: input.Body.CertificateID,
	})
	if err != nil {
		return nil, err
	}
	return &OrderOutput{Body: toOrderResponse(o)}, nil
}

func (s *Server) handleGetUserOrder(ctx context.Context, input *GetUserOrderInput) (*OrderOutput, error) {
	o, err := s.services.Order.GetForUser(ctx, input.ID, input.OrderID)
	if err != nil {
		return nil, err
	}
	return &OrderOutput{Body: toOrderResponse(o)}, nil
}

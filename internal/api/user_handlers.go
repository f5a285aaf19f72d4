package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/Vyacheslaf/giftcert-server/internal/domain"
)

func (s *Server) registerUserRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listUsers",
		Method:      http.MethodGet,
		Path:        "/api/v1/users",
		Summary:     "List users",
		Description: "Returns a page of users",
		Tags:        []string{"Users"},
	}, s.handleListUsers)

	huma.Register(s.api, huma.Operation{
		OperationID: "getUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{id}",
		Summary:     "Get user",
		Description: "Returns a user by ID",
		Tags:        []string{"Users"},
	}, s.handleGetUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "getUserMostUsedTag",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{id}/tags/most-used",
		Summary:     "Get user's most used tag",
		Description: "Returns the tag with the highest total order cost among the user's orders",
		Tags:        []string{"Users"},
	}, s.handleGetUserMostUsedTag)
}

// === DTOs ===

// UserResponse contains user data in API responses.
type UserResponse struct {
	ID       int64  `json:"id" doc:"User ID"`
	Username string `json:"username" doc:"Username"`
	Email    string `json:"email" doc:"Email address"`
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{ID: u.ID, Username: u.Username, Email: u.Email}
}

// ListUsersInput contains parameters for listing users.
type ListUsersInput struct {
	Page int `query:"page" minimum:"0" doc:"Zero-based page number"`
	Size int `query:"size" minimum:"0" maximum:"100" doc:"Page size"`
}

// ListUsersResponse contains a list of users.
type ListUsersResponse struct {
	Users []UserResponse `json:"users" doc:"List of users"`
}

// ListUsersOutput wraps the list users response for Huma.
type ListUsersOutput struct {
	Body ListUsersResponse
}

// UserIDInput contains a user id path parameter.
type UserIDInput struct {
	ID int64 `path:"id" doc:"User ID"`
}

// UserOutput wraps the user response for Huma.
type UserOutput struct {
	Body UserResponse
}

// === Handlers ===

func (s *Server) handleListUsers(ctx context.Context, input *ListUsersInput) (*ListUsersOutput, error) {
	users, err := s.services.User.List(ctx, input.Page, input.Size)
	if err != nil {
		return nil, err
	}

	resp := make([]UserResponse, len(users))
	for i, u := range users {
		resp[i] = toUserResponse(u)
	}
	return &ListUsersOutput{Body: ListUsersResponse{Users: resp}}, nil
}

func (s *Server) handleGetUser(ctx context.Context, input *UserIDInput) (*UserOutput, error) {
	u, err := s.services.User.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: toUserResponse(u)}, nil
}

func (s *Server) handleGetUserMostUsedTag(ctx context.Context, input *UserIDInput) (*TagOutput, error) {
	t, err := s.services.Tag.MostUsedForUser(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &TagOutput{Body: TagResponse{ID: t.ID, Name: t.Name}}, nil
}

package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/Vyacheslaf/giftcert-server/internal/service"
)

func (s *Server) registerTagRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listTags",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags",
		Summary:     "List tags",
		Description: "Returns a page of tags",
		Tags:        []string{"Tags"},
	}, s.handleListTags)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createTag",
		Method:        http.MethodPost,
		Path:          "/api/v1/tags",
		Summary:       "Create tag",
		Description:   "Creates a new tag; names are globally unique",
		Tags:          []string{"Tags"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "getTag",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags/{id}",
		Summary:     "Get tag",
		Description: "Returns a tag by ID",
		Tags:        []string{"Tags"},
	}, s.handleGetTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateTag",
		Method:      http.MethodPatch,
		Path:        "/api/v1/tags/{id}",
		Summary:     "Update tag",
		Description: "Always fails: tags are immutable once created",
		Tags:        []string{"Tags"},
	}, s.handleUpdateTag)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteTag",
		Method:      http.MethodDelete,
		Path:        "/api/v1/tags/{id}",
		Summary:     "Delete tag",
		Description: "Deletes a tag and detaches it from all certificates",
		Tags:        []string{"Tags"},
	}, s.handleDeleteTag)
}

// === DTOs ===

// TagResponse contains tag data in API responses.
type TagResponse struct {
	ID   int64  `json:"id" doc:"Tag ID"`
	Name string `json:"name" doc:"Tag name"`
}

// ListTagsInput contains parameters for listing tags.
type ListTagsInput struct {
	Page int `query:"page" minimum:"0" doc:"Zero-based page number"`
	Size int `query:"size" minimum:"0" maximum:"100" doc:"Page size"`
}

// ListTagsResponse contains a list of tags.
type ListTagsResponse struct {
	Tags []TagResponse `json:"tags" doc:"List of tags"`
}

// ListTagsOutput wraps the list tags response for Huma.
type ListTagsOutput struct {
	Body ListTagsResponse
}

// CreateTagRequest is the request body for creating a tag.
type CreateTagRequest struct {
	Name string `json:"name" doc:"Tag name"`
}

// CreateTagInput wraps the create tag request for Huma.
type CreateTagInput struct {
	Body CreateTagRequest
}

// TagOutput wraps the tag response for Huma.
type TagOutput struct {
	Body TagResponse
}

// TagIDInput contains a tag id path parameter.
type TagIDInput struct {
	ID int64 `path:"id" doc:"Tag ID"`
}

// UpdateTagInput wraps the (always rejected) tag update request for Huma.
type UpdateTagInput struct {
	ID   int64 `path:"id" doc:"Tag ID"`
	Body CreateTagRequest
}

// === Handlers ===

func (s *Server) handleListTags(ctx context.Context, input *ListTagsInput) (*ListTagsOutput, error) {
	tags, err := s.services.Tag.List(ctx, input.Page, input.Size)
	if err != nil {
		return nil, err
	}

	resp := make([]TagResponse, len(tags))
	for i, t := range tags {
		resp[i] = TagResponse{ID: t.ID, Name: t.Name}
	}
	return &ListTagsOutput{Body: ListTagsResponse{Tags: resp}}, nil
}

func (s *Server) handleCreateTag(ctx context.Context, input *CreateTagInput) (*TagOutput, error) {
	t, err := s.services.Tag.Create(ctx, service.CreateTagRequest{Name: input.Body.Name})
	if err != nil {
		return nil, err
	}
	return &TagOutput{Body: TagResponse{ID: t.ID, Name: t.Name}}, nil
}

func (s *Server) handleGetTag(ctx context.Context, input *TagIDInput) (*TagOutput, error) {
	t, err := s.services.Tag.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &TagOutput{Body: TagResponse{ID: t.ID, Name: t.Name}}, nil
}

func (s *Server) handleUpdateTag(ctx context.Context, input *UpdateTagInput) (*TagOutput, error) {
	return nil, s.services.Tag.Update(ctx, input.ID)
}

func (s *Server) handleDeleteTag(ctx context.Context, input *TagIDInput) (*struct{}, error) {
	if err := s.services.Tag.Delete(ctx, input.ID); err != nil {
		return nil, err
	}
	return &struct{}{}, nil
}

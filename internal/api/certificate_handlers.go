package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/Vyacheslaf/giftcert-server/internal/domain"
	"github.com/Vyacheslaf/giftcert-server/internal/service"
)

func (s *Server) registerCertificateRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listCertificates",
		Method:      http.MethodGet,
		Path:        "/api/v1/certificates",
		Summary:     "List certificates",
		Description: "Returns certificates filtered by tags and search term, sorted and paginated",
		Tags:        []string{"Certificates"},
	}, s.handleListCertificates)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createCertificate",
		Method:        http.MethodPost,
		Path:          "/api/v1/certificates",
		Summary:       "Create certificate",
		Description:   "Creates a gift certificate with its tags",
		Tags:          []string{"Certificates"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateCertificate)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCertificate",
		Method:      http.MethodGet,
		Path:        "/api/v1/certificates/{id}",
		Summary:     "Get certificate",
		Description: "Returns a certificate by ID with its tags",
		Tags:        []string{"Certificates"},
	}, s.handleGetCertificate)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateCertificate",
		Method:      http.MethodPatch,
		Path:        "/api/v1/certificates/{id}",
		Summary:     "Update certificate",
		Description: "Partially updates a certificate; omitted fields stay unchanged, a submitted tag list replaces all tags",
		Tags:        []string{"Certificates"},
	}, s.handleUpdateCertificate)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateCertificateDuration",
		Method:      http.MethodPatch,
		Path:        "/api/v1/certificates/{id}/duration",
		Summary:     "Update certificate duration",
		Description: "Changes only the certificate's validity duration",
		Tags:        []string{"Certificates"},
	}, s.handleUpdateCertificateDuration)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteCertificate",
		Method:      http.MethodDelete,
		Path:        "/api/v1/certificates/{id}",
		Summary:     "Delete certificate",
		Description: "Deletes a certificate; its tags survive",
		Tags:        []string{"Certificates"},
	}, s.handleDeleteCertificate)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCertificateTags",
		Method:      http.MethodGet,
		Path:        "/api/v1/certificates/{id}/tags",
		Summary:     "Get certificate tags",
		Description: "Returns the tags attached to a certificate",
		Tags:        []string{"Certificates"},
	}, s.handleGetCertificateTags)
}

// === DTOs ===

// CertificateResponse contains certificate data in API responses.
type CertificateResponse struct {
	ID             int64         `json:"id" doc:"Certificate ID"`
	Name           string        `json:"name" doc:"Certificate name"`
	Description    string        `json:"description" doc:"Certificate description"`
	Price          int64         `json:"price" doc:"Price in minor currency units"`
	Duration       int64         `json:"duration" doc:"Validity period in days"`
	CreateDate     *time.Time    `json:"create_date,omitempty" doc:"Creation time"`
	LastUpdateDate *time.Time    `json:"last_update_date,omitempty" doc:"Last update time"`
	Tags           []TagResponse `json:"tags" doc:"Attached tags"`
}

func toCertificateResponse(c *domain.Certificate) CertificateResponse {
	tags := make([]TagResponse, len(c.Tags))
	for i, t := range c.Tags {
		tags[i] = TagResponse{ID: t.ID, Name: t.Name}
	}
	return CertificateResponse{
		ID:             c.ID,
		Name:           c.Name,
		Description:    c.Description,
		Price:          c.Price,
		Duration:       c.Duration,
		CreateDate:     c.CreateDate,
		LastUpdateDate: c.LastUpdateDate,
		Tags:           tags,
	}
}

// ListCertificatesInput contains the dynamic query parameters.
type ListCertificatesInput struct {
	Tags   []string `query:"tag,explode" doc:"Tag names, repeatable; certificates must carry all of them"`
	Search string   `query:"search" doc:"Substring matched against name and description"`
	Sort   []string `query:"sort,explode" doc:"Sort tokens of the form field.asc or field.desc, repeatable"`
	Page   int      `query:"page" minimum:"0" doc:"Zero-based page number"`
	Size   int      `query:"size" minimum:"0" maximum:"100" doc:"Page size"`
}

// ListCertificatesOutput wraps the certificate list for Huma.
type ListCertificatesOutput struct {
	Body ListCertificatesResponse
}

// ListCertificatesResponse contains a page of certificates.
type ListCertificatesResponse struct {
	Certificates []CertificateResponse `json:"certificates" doc:"Certificates on this page"`
}

// CreateCertificateInput wraps the create request for Huma.
type CreateCertificateInput struct {
	Body CreateCertificateRequest
}

// CreateCertificateRequest is the request body for creating a certificate.
type CreateCertificateRequest struct {
	Name        string   `json:"name" doc:"Certificate name"`
	Description string   `json:"description" doc:"Certificate description"`
	Price       int64    `json:"price" doc:"Price in minor currency units"`
	Duration    int64    `json:"duration" doc:"Validity period in days"`
	Tags        []string `json:"tags,omitempty" doc:"Tag names; existing tags are reused by name"`
}

// CertificateOutput wraps a single certificate response for Huma.
type CertificateOutput struct {
	Body CertificateResponse
}

// GetCertificateInput contains parameters for getting a certificate.
type GetCertificateInput struct {
	ID int64 `path:"id" doc:"Certificate ID"`
}

// UpdateCertificateInput wraps the partial update request for Huma.
type UpdateCertificateInput struct {
	ID   int64 `path:"id" doc:"Certificate ID"`
	Body UpdateCertificateRequest
}

// UpdateCertificateRequest is the request body for a partial update.
// Omitted fields stay unchanged; a submitted tag list replaces all tags.
type UpdateCertificateRequest struct {
	Name        *string  `json:"name,omitempty" doc:"Certificate name"`
	Description *string  `json:"description,omitempty" doc:"Certificate description"`
	Price       *int64   `json:"price,omitempty" doc:"Price in minor currency units"`
	Duration    *int64   `json:"duration,omitempty" doc:"Validity period in days"`
	Tags        []string `json:"tags,omitempty" doc:"Replacement tag names"`
}

// UpdateCertificateDurationInput wraps the duration update for Huma.
type UpdateCertificateDurationInput struct {
	ID   int64 `path:"id" doc:"Certificate ID"`
	Body UpdateCertificateDurationRequest
}

// UpdateCertificateDurationRequest is the request body for the narrow
// duration update.
type UpdateCertificateDurationRequest struct {
	Duration int64 `json:"duration" doc:"New validity period in days"`
}

// DeleteCertificateInput contains parameters for deleting a certificate.
type DeleteCertificateInput struct {
	ID int64 `path:"id" doc:"Certificate ID"`
}

// === Handlers ===

func (s *Server) handleListCertificates(ctx context.Context, input *ListCertificatesInput) (*ListCertificatesOutput, error) {
	certs, err := s.services.Certificate.Find(ctx, service.FindCertificatesRequest{
		Tags:   input.Tags,
		Search: input.Search,
		Sort:   input.Sort,
		Page:   input.Page,
		Size:   input.Size,
	})
	if err != nil {
		return nil, err
	}

	resp := make([]CertificateResponse, len(certs))
	for i, c := range certs {
		resp[i] = toCertificateResponse(c)
	}
	return &ListCertificatesOutput{Body: ListCertificatesResponse{Certificates: resp}}, nil
}

func (s *Server) handleCreateCertificate(ctx context.Context, input *CreateCertificateInput) (*CertificateOutput, error) {
	c, err := s.services.Certificate.Create(ctx, service.CreateCertificateRequest{
		Name:        input.Body.Name,
		Description: input.Body.Description,
		Price:       input.Body.Price,
		Duration:    input.Body.Duration,
		Tags:        input.Body.Tags,
	})
	if err != nil {
		return nil, err
	}
	return &CertificateOutput{Body: toCertificateResponse(c)}, nil
}

func (s *Server) handleGetCertificate(ctx context.Context, input *GetCertificateInput) (*CertificateOutput, error) {
	c, err := s.services.Certificate.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &CertificateOutput{Body: toCertificateResponse(c)}, nil
}

func (s *Server) handleUpdateCertificate(ctx context.Context, input *UpdateCertificateInput) (*CertificateOutput, error) {
	c, err := s.services.Certificate.Update(ctx, input.ID, service.UpdateCertificateRequest{
		Name:        input.Body.Name,
		Description: input.Body.Description,
		Price:       input.Body.Price,
		Duration:    input.Body.Duration,
		Tags:        input.Body.Tags,
	})
	if err != nil {
		return nil, err
	}
	return &CertificateOutput{Body: toCertificateResponse(c)}, nil
}

func (s *Server) handleUpdateCertificateDuration(ctx context.Context, input *UpdateCertificateDurationInput) (*CertificateOutput, error) {
	c, err := s.services.Certificate.UpdateDuration(ctx, input.ID, service.UpdateDurationRequest{
		Duration: input.Body.Duration,
	})
	if err != nil {
		return nil, err
	}
	return &CertificateOutput{Body: toCertificateResponse(c)}, nil
}

func (s *Server) handleDeleteCertificate(ctx context.Context, input *DeleteCertificateInput) (*struct{}, error) {
	if err := s.services.Certificate.Delete(ctx, input.ID); err != nil {
		return nil, err
	}
	return &struct{}{}, nil
}

func (s *Server) handleGetCertificateTags(ctx context.Context, input *GetCertificateInput) (*ListTagsOutput, error) {
	tags, err := s.services.Tag.CertificateTags(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	resp := make([]TagResponse, len(tags))
	for i, t := range tags {
		resp[i] = TagResponse{ID: t.ID, Name: t.Name}
	}
	return &ListTagsOutput{Body: ListTagsResponse{Tags: resp}}, nil
}

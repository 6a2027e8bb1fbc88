package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/jmylchreest/tabcanvas/internal/models"
	"github.com/jmylchreest/tabcanvas/internal/service"
)

// uploadBodyOverhead is allowed on top of the configured upload size so that
// oversize uploads reach the service and get a 413 with a useful message.
const uploadBodyOverhead = 64 * 1024

// LocalImageHandler manages uploaded images.
type LocalImageHandler struct {
	images        *service.LocalImageService
	maxUploadSize int64
}

// NewLocalImageHandler creates a new local image handler.
func NewLocalImageHandler(images *service.LocalImageService, maxUploadSize int64) *LocalImageHandler {
	return &LocalImageHandler{images: images, maxUploadSize: maxUploadSize}
}

// UploadLocalImageInput is a raw image upload.
type UploadLocalImageInput struct {
	Profile     string `path:"profile" doc:"Profile name"`
	Name        string `query:"name" doc:"Original file name"`
	ContentType string `header:"Content-Type"`
	RawBody     []byte `contentType:"application/octet-stream"`
}

// LocalImageOutput carries one stored image.
type LocalImageOutput struct {
	Body *models.LocalImageRecord
}

// ListLocalImagesOutput carries a profile's images.
type ListLocalImagesOutput struct {
	Body struct {
		Images []*models.LocalImageRecord `json:"images"`
	}
}

// LocalImageIDInput identifies one image.
type LocalImageIDInput struct {
	Profile string `path:"profile" doc:"Profile name"`
	ID      string `path:"id" doc:"Image ULID"`
}

// Register registers the local image routes with the API.
func (h *LocalImageHandler) Register(api huma.API) {
	maxBody := h.maxUploadSize + uploadBodyOverhead
	if h.maxUploadSize <= 0 {
		maxBody = 0
	}

	huma.Register(api, huma.Operation{
		OperationID:  "uploadLocalImage",
		Method:       "POST",
		Path:         "/api/v1/profiles/{profile}/local-images",
		Summary:      "Upload local image",
		Description:  "Stores an image for the profile. Large images are downscaled and re-encoded",
		Tags:         []string{"Local Images"},
		MaxBodyBytes: maxBody,
	}, h.Upload)

	huma.Register(api, huma.Operation{
		OperationID: "listLocalImages",
		Method:      "GET",
		Path:        "/api/v1/profiles/{profile}/local-images",
		Summary:     "List local images",
		Tags:        []string{"Local Images"},
	}, h.List)

	huma.Register(api, huma.Operation{
		OperationID:   "deleteLocalImage",
		Method:        "DELETE",
		Path:          "/api/v1/profiles/{profile}/local-images/{id}",
		Summary:       "Delete local image",
		Tags:          []string{"Local Images"},
		DefaultStatus: 204,
	}, h.Delete)

	huma.Register(api, huma.Operation{
		OperationID: "selectLocalImage",
		Method:      "PUT",
		Path:        "/api/v1/profiles/{profile}/local-images/{id}/select",
		Summary:     "Select local image",
		Description: "Makes the image the profile's background",
		Tags:        []string{"Local Images"},
	}, h.Select)
}

// Upload stores an image.
func (h *LocalImageHandler) Upload(ctx context.Context, input *UploadLocalImageInput) (*LocalImageOutput, error) {
	record, err := h.images.Upload(ctx, input.Profile, input.Name, input.ContentType, input.RawBody)
	if err != nil {
		return nil, apiError(ctx, err, "failed to upload image")
	}
	return &LocalImageOutput{Body: record}, nil
}

// List returns a profile's images.
func (h *LocalImageHandler) List(ctx context.Context, input *ProfileInput) (*ListLocalImagesOutput, error) {
	images, err := h.images.List(ctx, input.Profile)
	if err != nil {
		return nil, apiError(ctx, err, "failed to list images")
	}
	out := &ListLocalImagesOutput{}
	out.Body.Images = images
	if out.Body.Images == nil {
		out.Body.Images = []*models.LocalImageRecord{}
	}
	return out, nil
}

// Delete removes an image.
func (h *LocalImageHandler) Delete(ctx context.Context, input *LocalImageIDInput) (*struct{}, error) {
	if err := h.images.Delete(ctx, input.Profile, input.ID); err != nil {
		return nil, apiError(ctx, err, "failed to delete image")
	}
	return nil, nil
}

// Select makes an image the active background.
func (h *LocalImageHandler) Select(ctx context.Context, input *LocalImageIDInput) (*SettingsOutput, error) {
	settings, err := h.images.Select(ctx, input.Profile, input.ID)
	if err != nil {
		return nil, apiError(ctx, err, "failed to select image")
	}
	return &SettingsOutput{Body: settings}, nil
}

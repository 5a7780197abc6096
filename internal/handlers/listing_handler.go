package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"findhome/internal/media"
	"findhome/internal/metrics"
	"findhome/internal/models"
	"findhome/internal/services"
)

// Multipart fields that carry listing images
var imageFields = []string{"images[]", "images"}

// ListingHandler serves listing creation, detail, status and reports
type ListingHandler struct {
	listingService *services.ListingService
	metrics        *metrics.Metrics
}

// NewListingHandler creates a new ListingHandler
func NewListingHandler(listingService *services.ListingService, m *metrics.Metrics) *ListingHandler {
	return &ListingHandler{listingService: listingService, metrics: m}
}

// CreateForm describes the listing form to owners
// GET /create-listing/
func (h *ListingHandler) CreateForm(c *gin.Context) {
	if err := h.listingService.CanCreate(c.Request.Context(), currentUserID(c)); err != nil {
		respondError(c, err, homePath)
		return
	}

	houseTypes := make([]choice, 0, len(models.HouseTypes))
	for _, t := range models.HouseTypes {
		houseTypes = append(houseTypes, choice{Value: string(t), Label: t.Label()})
	}
	c.JSON(http.StatusOK, gin.H{
		"fields":      []string{"title", "description", "house_type", "address", "area", "rent", "contact_phone", "contact_email", "images"},
		"house_types": houseTypes,
	})
}

// Create stores a new listing with its images
// POST /create-listing/
func (h *ListingHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()
	ownerID := currentUserID(c)

	if err := h.listingService.CanCreate(ctx, ownerID); err != nil {
		respondError(c, err, homePath)
		return
	}

	var input services.ListingInput
	if !bindForm(c, &input) {
		return
	}

	uploads, closeAll, err := openUploads(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid image upload"})
		return
	}
	defer closeAll()

	listing, err := h.listingService.Create(ctx, ownerID, input, uploads)
	if err != nil {
		if errors.Is(err, media.ErrDisabled) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Image uploads are not enabled"})
			return
		}
		respondError(c, err, homePath)
		return
	}

	h.metrics.Record(metrics.EventListingCreated)
	c.Header("Location", dashboardPath)
	c.JSON(http.StatusSeeOther, gin.H{
		"success":  true,
		"message":  "Listing created successfully!",
		"redirect": dashboardPath,
		"listing":  listing,
	})
}

// openUploads opens every image part of a multipart request. Requests that
// are not multipart carry no images.
func openUploads(c *gin.Context) ([]media.Upload, func(), error) {
	noop := func() {}

	form, err := c.MultipartForm()
	if errors.Is(err, http.ErrNotMultipart) {
		return nil, noop, nil
	}
	if err != nil {
		return nil, noop, err
	}

	var (
		uploads []media.Upload
		files   []multipart.File
	)
	closeAll := func() {
		for _, f := range files {
			if err := f.Close(); err != nil {
				log.Warn().Err(err).Msg("Failed to close upload")
			}
		}
	}

	for _, field := range imageFields {
		for _, header := range form.File[field] {
			f, err := header.Open()
			if err != nil {
				closeAll()
				return nil, noop, fmt.Errorf("open %s: %w", header.Filename, err)
			}
			files = append(files, f)
			uploads = append(uploads, media.Upload{
				Filename:    header.Filename,
				ContentType: header.Header.Get("Content-Type"),
				Size:        header.Size,
				Body:        f,
			})
		}
	}
	return uploads, closeAll, nil
}

// Detail returns a listing with its images and comments
// GET /listing/:id/
func (h *ListingHandler) Detail(c *gin.Context) {
	listingID, ok := pathID(c, "id")
	if !ok {
		return
	}

	detail, err := h.listingService.Detail(c.Request.Context(), listingID, currentUserID(c))
	if err != nil {
		respondError(c, err, "")
		return
	}
	c.JSON(http.StatusOK, detail)
}

// UpdateStatus marks an owned listing available or booked
// POST /listing/:id/update-status/
func (h *ListingHandler) UpdateStatus(c *gin.Context) {
	listingID, ok := pathID(c, "id")
	if !ok {
		return
	}

	applied, status, err := h.listingService.UpdateStatus(c.Request.Context(), currentUserID(c), listingID, c.PostForm("status"))
	if err != nil {
		respondError(c, err, dashboardPath)
		return
	}

	message := ""
	if applied {
		message = fmt.Sprintf("Listing status updated to %s.", status)
	}
	redirect(c, dashboardPath, message)
}

// Report files a false advertisement report
// POST /listing/:id/report/
func (h *ListingHandler) Report(c *gin.Context) {
	listingID, ok := pathID(c, "id")
	if !ok {
		return
	}

	filed, err := h.listingService.Report(c.Request.Context(), currentUserID(c), listingID, c.PostForm("reason"))
	if err != nil {
		respondError(c, err, "")
		return
	}
	if !filed {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": services.MsgReportInvalid})
		return
	}

	h.metrics.Record(metrics.EventReportFiled)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": services.MsgReportSubmitted})
}

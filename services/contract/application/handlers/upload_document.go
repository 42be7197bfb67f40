package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/contractflow/pkg/httpx"
	"github.com/ghuser/contractflow/pkg/logger"
	pkgvalidator "github.com/ghuser/contractflow/pkg/validator"
	appsvcs "github.com/ghuser/contractflow/services/contract/application/services"
	"github.com/ghuser/contractflow/services/contract/domain"
	"github.com/ghuser/contractflow/services/contract/domain/models"
)

// multipartMemory is how much of a multipart form is buffered in memory
// before spilling to temporary files.
const multipartMemory = 8 << 20

// UploadForm holds the non-file fields of POST /upload-document.
type UploadForm struct {
	ContractID string `validate:"required,uuid"`
	Kind       string `validate:"max=64"`
}

// DocumentMetadata describes a stored upload.
type DocumentMetadata struct {
	Kind         string        `json:"tipo"`
	MimeType     string        `json:"mimeType" example:"application/pdf"`
	Size         int64         `json:"dimensione"`
	Path         string        `json:"path"`
	UploadedBy   models.Actor  `json:"caricatoDa"`
	UploadedAt   time.Time     `json:"dataCaricamento"`
	Status       models.Status `json:"statoOfferta" example:"Integrazione"`
	StatusChange bool          `json:"cambioStato"`
} // @name DocumentMetadata

// UploadDocumentResponse is returned on a successful upload.
type UploadDocumentResponse struct {
	Success    bool             `json:"success"`
	DocumentID uuid.UUID        `json:"documentId"`
	FileName   string           `json:"fileName" example:"documento.pdf"`
	URL        string           `json:"url"`
	Metadata   DocumentMetadata `json:"metadata"`
} // @name UploadDocumentResponse

// UploadDocumentHandler handles POST /upload-document.
type UploadDocumentHandler struct{ base }

func NewUploadDocumentHandler(svc *appsvcs.Services, log logger.Logger, production bool) *UploadDocumentHandler {
	return &UploadDocumentHandler{newBase(svc, log, production)}
}

// Execute stores a document and attaches it to a contract.
//
//	@Summary		Upload document
//	@Description	Accepts PDF, JPEG and PNG files up to the configured limit. A contract in Documenti KO moves to Integrazione; if that transition fails the upload still succeeds.
//	@Tags			documents
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file		formData	file	true	"Document"
//	@Param			contractId	formData	string	true	"Contract id"
//	@Param			tipo		formData	string	false	"Document kind"
//	@Success		201			{object}	UploadDocumentResponse
//	@Failure		400			{object}	httpx.ErrorBody
//	@Failure		404			{object}	httpx.ErrorBody
//	@Failure		503			{object}	httpx.ErrorBody
//	@Router			/upload-document [post]
func (h *UploadDocumentHandler) Execute(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			h.fail(w, r, fmt.Errorf("%w: request exceeds %d bytes", domain.ErrDocumentTooLarge, tooBig.Limit))
			return
		}
		h.fail(w, r, fmt.Errorf("%w: %w", domain.ErrInvalidDocument, err))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	form := UploadForm{
		ContractID: strings.TrimSpace(r.FormValue("contractId")),
		Kind:       strings.TrimSpace(r.FormValue("tipo")),
	}
	if !pkgvalidator.WriteIfInvalid(w, &form) {
		return
	}
	contractID, err := parseID(form.ContractID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.fail(w, r, fmt.Errorf("%w: file is required", domain.ErrInvalidDocument))
		return
	}
	defer file.Close()

	res, err := h.svc.Contract.UploadDocument(r.Context(), appsvcs.UploadInput{
		ContractID: contractID,
		FileName:   header.Filename,
		Kind:       form.Kind,
		Size:       header.Size,
		Body:       file,
	}, actor)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	doc := res.Document
	httpx.JSON(w, http.StatusCreated, UploadDocumentResponse{
		Success:    true,
		DocumentID: doc.ID,
		FileName:   doc.FileName,
		URL:        doc.URL,
		Metadata: DocumentMetadata{
			Kind:         doc.Kind,
			MimeType:     doc.MimeType,
			Size:         doc.Size,
			Path:         doc.Path,
			UploadedBy:   doc.UploadedBy,
			UploadedAt:   doc.UploadedAt,
			Status:       res.Contract.Status,
			StatusChange: res.StatusChange,
		},
	})
}

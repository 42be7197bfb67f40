package handlers

import (
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ghuser/contractflow/pkg/logger"
	appsvcs "github.com/ghuser/contractflow/services/contract/application/services"
	"github.com/ghuser/contractflow/services/contract/domain"
)

// GetDocumentHandler handles GET /contracts/{id}/documents/{documentID}.
type GetDocumentHandler struct{ base }

func NewGetDocumentHandler(svc *appsvcs.Services, log logger.Logger, production bool) *GetDocumentHandler {
	return &GetDocumentHandler{newBase(svc, log, production)}
}

// Execute streams a stored document.
//
//	@Summary	Download document
//	@Tags		documents
//	@Produce	application/pdf,image/jpeg,image/png
//	@Param		id			path	string	true	"Contract id"
//	@Param		documentID	path	string	true	"Document id"
//	@Success	200
//	@Failure	404	{object}	httpx.ErrorBody
//	@Failure	503	{object}	httpx.ErrorBody
//	@Router		/contracts/{id}/documents/{documentID} [get]
func (h *GetDocumentHandler) Execute(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.actor(w, r); !ok {
		return
	}
	contractID, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	docID, err := uuid.Parse(chi.URLParam(r, "documentID"))
	if err != nil {
		h.fail(w, r, domain.ErrDocumentNotFound)
		return
	}

	doc, body, err := h.svc.Contract.OpenDocument(r.Context(), contractID, docID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", doc.MimeType)
	w.Header().Set("Content-Length", strconv.FormatInt(doc.Size, 10))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": doc.FileName}))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		h.log.WarnContext(r.Context(), "document stream interrupted", "document_id", doc.ID, "error", err)
	}
}

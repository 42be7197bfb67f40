package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ghuser/contractflow/pkg/httpx"
	"github.com/ghuser/contractflow/pkg/logger"
	appsvcs "github.com/ghuser/contractflow/services/contract/application/services"
)

// StoredFile is one object in the file store.
type StoredFile struct {
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"modTime"`
} // @name StoredFile

// ListFilesResponse is returned by GET /contracts/{id}/files.
type ListFilesResponse struct {
	Success bool         `json:"success"`
	Files   []StoredFile `json:"files"`
	Count   int          `json:"count"`
} // @name ListFilesResponse

// ListFilesHandler handles GET /contracts/{id}/files.
type ListFilesHandler struct{ base }

func NewListFilesHandler(svc *appsvcs.Services, log logger.Logger, production bool) *ListFilesHandler {
	return &ListFilesHandler{newBase(svc, log, production)}
}

// Execute lists what the file store holds for a contract.
//
//	@Summary	List stored files
//	@Tags		documents
//	@Produce	json
//	@Param		id	path		string	true	"Contract id"
//	@Success	200	{object}	ListFilesResponse
//	@Failure	404	{object}	httpx.ErrorBody
//	@Failure	503	{object}	httpx.ErrorBody
//	@Router		/contracts/{id}/files [get]
func (h *ListFilesHandler) Execute(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.actor(w, r); !ok {
		return
	}
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	objs, err := h.svc.Contract.Files(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	files := make([]StoredFile, len(objs))
	for i, o := range objs {
		files[i] = StoredFile{Path: o.Path, Size: o.Size, ModTime: o.ModTime}
	}
	httpx.JSON(w, http.StatusOK, ListFilesResponse{Success: true, Files: files, Count: len(files)})
}

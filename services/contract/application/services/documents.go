package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/ghuser/contractflow/pkg/blobstore"
	"github.com/ghuser/contractflow/services/contract/domain"
	"github.com/ghuser/contractflow/services/contract/domain/events"
	"github.com/ghuser/contractflow/services/contract/domain/models"
	domainsvcs "github.com/ghuser/contractflow/services/contract/domain/services"
)

var allowedDocumentTypes = []string{"application/pdf", "image/jpeg", "image/png"}

// UploadInput is one document upload.
type UploadInput struct {
	ContractID uuid.UUID
	FileName   string
	Kind       string
	// Size is the size declared by the client, if known.
	Size int64
	Body io.Reader
}

// UploadResult reports the stored document and whether the upload moved the
// contract to Integrazione.
type UploadResult struct {
	Document     models.Document
	Contract     *models.Contract
	StatusChange bool
}

// UploadDocument stores a PDF, JPEG or PNG for a contract and attaches it.
// When the contract waits in Documenti KO the upload also moves it to
// Integrazione; a failure there is logged and does not fail the upload.
func (s *ContractService) UploadDocument(ctx context.Context, in UploadInput, uploader models.Actor) (*UploadResult, error) {
	if s.files == nil {
		return nil, fmt.Errorf("%w: no file store configured", domain.ErrUpstreamUnavailable)
	}
	if in.Size > s.maxUpload {
		return nil, fmt.Errorf("%w: %d bytes exceeds %d", domain.ErrDocumentTooLarge, in.Size, s.maxUpload)
	}

	data, err := io.ReadAll(io.LimitReader(in.Body, s.maxUpload+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read upload: %w", domain.ErrInvalidDocument, err)
	}
	if int64(len(data)) > s.maxUpload {
		return nil, fmt.Errorf("%w: exceeds %d bytes", domain.ErrDocumentTooLarge, s.maxUpload)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", domain.ErrInvalidDocument)
	}
	mt := mimetype.Detect(data)
	if !mimetype.EqualsAny(mt.String(), allowedDocumentTypes...) {
		return nil, fmt.Errorf("%w: type %s is not allowed", domain.ErrInvalidDocument, mt.String())
	}

	if _, err := s.repo.GetByID(ctx, in.ContractID); err != nil {
		return nil, fmt.Errorf("get contract: %w", err)
	}

	docID := uuid.New()
	objectPath := path.Join(in.ContractID.String(), docID.String()+mt.Extension())
	if _, err := s.files.Put(ctx, objectPath, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("%w: store document: %w", domain.ErrUpstreamUnavailable, err)
	}

	doc := models.Document{
		ID:         docID,
		FileName:   documentName(in.FileName, mt.Extension()),
		Kind:       strings.TrimSpace(in.Kind),
		Path:       objectPath,
		URL:        s.files.URL(objectPath),
		MimeType:   mt.String(),
		Size:       int64(len(data)),
		UploadedBy: uploader,
	}
	c, err := s.mutate(ctx, in.ContractID, func(c *models.Contract, now time.Time) ([]events.Event, error) {
		doc.UploadedAt = now
		c.Documents = append(c.Documents, doc)
		c.UpdatedAt = now
		return []events.Event{events.NewDocumentUploaded(c, doc)}, nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.DocumentUploaded(ctx, doc.MimeType)
	s.log.InfoContext(ctx, "document uploaded",
		"contract_id", c.ID, "document_id", doc.ID, "mime_type", doc.MimeType, "size", doc.Size)

	res := &UploadResult{Document: doc, Contract: c}
	if c.Status == models.StatusDocumentsKO {
		updated, err := s.integrate(ctx, c.ID, uploader)
		if err != nil {
			s.log.WarnContext(ctx, "automatic integration transition failed",
				"contract_id", c.ID, "document_id", doc.ID, "error", err)
		} else {
			res.Contract = updated
			res.StatusChange = true
		}
	}
	return res, nil
}

// integrate moves a contract from Documenti KO to Integrazione on behalf of
// the uploader.
func (s *ContractService) integrate(ctx context.Context, id uuid.UUID, uploader models.Actor) (*models.Contract, error) {
	const note = "Documentazione integrata"
	var tr domainsvcs.Transition
	c, err := s.mutate(ctx, id, func(c *models.Contract, now time.Time) ([]events.Event, error) {
		if c.Status != models.StatusDocumentsKO {
			return nil, errNoChange
		}
		var err error
		if tr, err = s.engine.ApplyAutomated(c, models.StatusIntegration, uploader, note, now); err != nil {
			return nil, err
		}
		return s.transitionEvents(c, tr, uploader, now), nil
	})
	if err != nil {
		return nil, err
	}
	if tr.To == "" {
		return nil, fmt.Errorf("%w: status is now %s", domain.ErrInvalidTransition, c.Status)
	}
	s.recordTransition(ctx, c, tr)
	return c, nil
}

// Document returns the metadata of one attached document.
func (s *ContractService) Document(ctx context.Context, contractID, documentID uuid.UUID) (models.Document, error) {
	c, err := s.Get(ctx, contractID)
	if err != nil {
		return models.Document{}, err
	}
	for _, d := range c.Documents {
		if d.ID == documentID {
			return d, nil
		}
	}
	return models.Document{}, fmt.Errorf("%w: %s", domain.ErrDocumentNotFound, documentID)
}

// OpenDocument streams the content of an attached document. The caller
// closes the reader.
func (s *ContractService) OpenDocument(ctx context.Context, contractID, documentID uuid.UUID) (models.Document, io.ReadCloser, error) {
	doc, err := s.Document(ctx, contractID, documentID)
	if err != nil {
		return models.Document{}, nil, err
	}
	if s.files == nil {
		return models.Document{}, nil, fmt.Errorf("%w: no file store configured", domain.ErrUpstreamUnavailable)
	}
	rc, err := s.files.Get(ctx, doc.Path)
	if errors.Is(err, blobstore.ErrNotFound) {
		return models.Document{}, nil, fmt.Errorf("%w: %s", domain.ErrDocumentNotFound, doc.Path)
	}
	if err != nil {
		return models.Document{}, nil, fmt.Errorf("%w: open document: %w", domain.ErrUpstreamUnavailable, err)
	}
	return doc, rc, nil
}

// Files lists what the file store holds for a contract, including files not
// attached to the record.
func (s *ContractService) Files(ctx context.Context, contractID uuid.UUID) ([]blobstore.Object, error) {
	if _, err := s.Get(ctx, contractID); err != nil {
		return nil, err
	}
	if s.files == nil {
		return nil, fmt.Errorf("%w: no file store configured", domain.ErrUpstreamUnavailable)
	}
	objs, err := s.files.List(ctx, contractID.String())
	if err != nil {
		return nil, fmt.Errorf("%w: list files: %w", domain.ErrUpstreamUnavailable, err)
	}
	return objs, nil
}

// documentName keeps the client's base name, or derives one from the type.
func documentName(name, ext string) string {
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if name == "" || name == "." || name == "/" {
		return "documento" + ext
	}
	return name
}

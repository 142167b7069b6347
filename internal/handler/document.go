package handler

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/nyayamitra/nyaya-mitra/internal/analysis"
	"github.com/nyayamitra/nyaya-mitra/internal/apperror"
	"github.com/nyayamitra/nyaya-mitra/internal/config"
	"github.com/nyayamitra/nyaya-mitra/internal/middleware"
	"github.com/nyayamitra/nyaya-mitra/internal/model"
	"github.com/nyayamitra/nyaya-mitra/internal/repository"
)

// maxUploadBytes caps a single document upload at 10 MiB.
const maxUploadBytes = 10 << 20

// allowedMimeTypes is the upload allow-list. Keys are the declared
// Content-Type of the uploaded part.
var allowedMimeTypes = map[string]bool{
	"application/pdf":    true,
	"image/jpeg":         true,
	"image/png":          true,
	"image/jpg":          true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
}

// DocumentHandler serves upload, analysis retrieval and lifecycle of
// analyzed documents.
type DocumentHandler struct {
	Cfg      config.Config
	Docs     *repository.DocumentRepo
	Cases    *repository.CaseRepo
	Analyzer *analysis.Analyzer
}

func NewDocumentHandler(cfg config.Config, d *repository.DocumentRepo, cs *repository.CaseRepo, a *analysis.Analyzer) *DocumentHandler {
	return &DocumentHandler{Cfg: cfg, Docs: d, Cases: cs, Analyzer: a}
}

type documentResp struct {
	ID               uint64    `json:"id"`
	OriginalFilename string    `json:"originalFilename"`
	FileType         string    `json:"fileType"`
	FileSize         int64     `json:"fileSize"`
	Status           string    `json:"status"`
	CaseID           *uint64   `json:"caseId,omitempty"`
	CaseNumber       *string   `json:"caseNumber,omitempty"`
	CaseTitle        *string   `json:"caseTitle,omitempty"`
	ErrorMessage     *string   `json:"errorMessage,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

func newDocumentResp(d model.Document) documentResp {
	return documentResp{
		ID:               d.ID,
		OriginalFilename: d.OriginalFilename,
		FileType:         d.FileType,
		FileSize:         d.FileSize,
		Status:           d.Status,
		CaseID:           d.CaseID,
		CaseNumber:       d.CaseNumber,
		CaseTitle:        d.CaseTitle,
		ErrorMessage:     d.ErrorMessage,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}

// Upload accepts a multipart document, stores it on disk and queues the
// analysis. The response returns immediately with status processing.
func (h *DocumentHandler) Upload(c echo.Context) error {
	au := middleware.CurrentUser(c)

	fh, err := c.FormFile("document")
	if err != nil {
		return validationError(map[string]string{"document": "Document file is required"})
	}
	if fh.Size > maxUploadBytes {
		return apperror.New(http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "File too large. Maximum size is 10MB.")
	}
	mime := fh.Header.Get("Content-Type")
	if !allowedMimeTypes[mime] {
		return apperror.New(http.StatusBadRequest, "INVALID_FILE_TYPE",
			"Invalid file type. Only PDF, images and Word documents are allowed.")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	var caseID *uint64
	if raw := c.FormValue("caseId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			return badRequest("Invalid caseId")
		}
		owned, err := h.Cases.OwnedBy(ctx, id, au.ID)
		if err != nil {
			return err
		}
		if !owned {
			return apperror.New(http.StatusNotFound, "CASE_NOT_FOUND", "Case not found")
		}
		caseID = &id
	}

	path, err := h.saveFile(fh)
	if err != nil {
		return err
	}

	docID, err := h.Docs.Create(ctx, au.ID, caseID, fh.Filename, path, mime, fh.Size)
	if err != nil {
		_ = os.Remove(path)
		return err
	}

	h.Analyzer.Enqueue(analysis.Job{DocumentID: docID, UserID: au.ID, Filename: fh.Filename})

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Document uploaded successfully. Analysis in progress.",
		"document": echo.Map{
			"id":               docID,
			"originalFilename": fh.Filename,
			"fileType":         mime,
			"fileSize":         fh.Size,
			"status":           model.DocumentProcessing,
			"estimatedTime":    "2-5 seconds",
		},
	})
}

// List returns the caller's documents with optional status and caseId
// filters.
func (h *DocumentHandler) List(c echo.Context) error {
	au := middleware.CurrentUser(c)
	p := parsePagination(c)

	var caseID uint64
	if raw := c.QueryParam("caseId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return badRequest("Invalid caseId")
		}
		caseID = id
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	docs, total, err := h.Docs.ListByUser(ctx, au.ID, c.QueryParam("status"), caseID, p.Limit, p.Offset)
	if err != nil {
		return err
	}

	out := make([]documentResp, 0, len(docs))
	for _, d := range docs {
		out = append(out, newDocumentResp(d))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"documents":  out,
		"pagination": newPageMeta(p, total),
	})
}

// GetAnalysis returns one document together with its parsed analysis
// payload once completed.
func (h *DocumentHandler) GetAnalysis(c echo.Context) error {
	au := middleware.CurrentUser(c)
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	d, err := h.Docs.GetForUser(ctx, id, au.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.New(http.StatusNotFound, "DOCUMENT_NOT_FOUND", "Document not found")
		}
		return err
	}

	resp := echo.Map{"document": newDocumentResp(d)}
	if d.Status == model.DocumentCompleted {
		resp["analysis"] = echo.Map{
			"summary":         deref(d.Summary),
			"keyPoints":       parseJSONField(d.KeyPoints),
			"entities":        parseJSONField(d.ExtractedEntities),
			"legalReferences": parseJSONField(d.LegalReferences),
			"confidenceScore": d.ConfidenceScore,
			"processingTime":  d.ProcessingTime,
		}
	}
	return c.JSON(http.StatusOK, resp)
}

// ReAnalyze resets a document to processing and queues it again.
func (h *DocumentHandler) ReAnalyze(c echo.Context) error {
	au := middleware.CurrentUser(c)
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	d, err := h.Docs.GetForUser(ctx, id, au.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.New(http.StatusNotFound, "DOCUMENT_NOT_FOUND", "Document not found")
		}
		return err
	}
	if err := h.Docs.MarkProcessing(ctx, d.ID); err != nil {
		return err
	}
	h.Analyzer.Enqueue(analysis.Job{DocumentID: d.ID, UserID: au.ID, Filename: d.OriginalFilename})

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Document re-analysis started",
		"document": echo.Map{
			"id":     d.ID,
			"status": model.DocumentProcessing,
		},
	})
}

// Delete removes the document row and its stored file. A missing file on
// disk is not an error; the row is authoritative.
func (h *DocumentHandler) Delete(c echo.Context) error {
	au := middleware.CurrentUser(c)
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	d, err := h.Docs.GetForUser(ctx, id, au.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.New(http.StatusNotFound, "DOCUMENT_NOT_FOUND", "Document not found")
		}
		return err
	}
	if err := h.Docs.Delete(ctx, d.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.New(http.StatusNotFound, "DOCUMENT_NOT_FOUND", "Document not found")
		}
		return err
	}
	if err := os.Remove(d.FilePath); err != nil && !os.IsNotExist(err) {
		c.Logger().Warnf("stored file removal failed for document %d: %v", d.ID, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Document deleted successfully"})
}

// saveFile copies the uploaded part under the upload directory with a
// collision-proof name.
func (h *DocumentHandler) saveFile(fh *multipart.FileHeader) (string, error) {
	if err := os.MkdirAll(h.Cfg.UploadDir, 0o755); err != nil {
		return "", err
	}
	name := uuid.NewString() + filepath.Ext(fh.Filename)
	path := filepath.Join(h.Cfg.UploadDir, name)

	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return path, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// parseJSONField decodes a stored JSON column for the response, falling
// back to the raw text if it does not parse.
func parseJSONField(s *string) any {
	if s == nil {
		return nil
	}
	var v any
	if err := json.Unmarshal([]byte(*s), &v); err != nil {
		return *s
	}
	return v
}

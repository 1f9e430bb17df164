package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/healthsync/internal/middleware"
	"github.com/iliyamo/healthsync/internal/service"
)

type RecordHandler struct {
	Records        *service.RecordService
	UploadMaxBytes int64
	log            *zap.Logger
}

func NewRecordHandler(s *service.RecordService, maxBytes int64, log *zap.Logger) *RecordHandler {
	return &RecordHandler{Records: s, UploadMaxBytes: maxBytes, log: log}
}

// Create analyzes a record posted as JSON text.
func (h *RecordHandler) Create(c echo.Context) error {
	var req service.RecordInput
	if ok, err := bindOwned(c, &req, &req.UserID); !ok {
		return err
	}
	res, err := h.Records.Upload(c.Request().Context(), req)
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, res)
}

// Upload accepts a multipart form with `user_id` and `file` fields.
func (h *RecordHandler) Upload(c echo.Context) error {
	uid := middleware.UserID(c)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	// The body limit covers the multipart framing as well as the file.
	c.Request().Body = http.MaxBytesReader(c.Response(), c.Request().Body, h.UploadMaxBytes+64<<10)

	if err := c.Request().ParseMultipartForm(h.UploadMaxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			return c.JSON(http.StatusRequestEntityTooLarge, echo.Map{"error": "file too large"})
		}
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "multipart form required"})
	}
	userID := c.FormValue("user_id")
	if userID == "" {
		userID = uid
	}
	if userID != uid {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "file required"})
	}
	if fh.Size > h.UploadMaxBytes {
		return c.JSON(http.StatusRequestEntityTooLarge, echo.Map{"error": "file too large"})
	}
	f, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unreadable file"})
	}
	defer f.Close()
	body, err := io.ReadAll(io.LimitReader(f, h.UploadMaxBytes))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unreadable file"})
	}

	contentType, content, ok := textContent(fh.Header.Get(echo.HeaderContentType), body)
	if !ok {
		return c.JSON(http.StatusUnsupportedMediaType, echo.Map{"error": "only text files can be analyzed"})
	}
	res, err := h.Records.Upload(c.Request().Context(), service.RecordInput{
		UserID:      userID,
		Filename:    fh.Filename,
		Content:     content,
		ContentType: contentType,
	})
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, res)
}

func (h *RecordHandler) List(c echo.Context) error {
	ctx, cancel := dbContext(c)
	defer cancel()

	list, err := h.Records.List(ctx, c.Param("user"))
	if err != nil {
		return fail(c, h.log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"records": list, "count": len(list)})
}

// textContent accepts text/* and application/json parts, and untyped parts
// whose bytes sniff as plain text.  Invalid UTF-8 sequences are replaced so
// the content fits a utf8mb4 column and the prompt.
func textContent(declared string, body []byte) (string, string, bool) {
	ct := strings.ToLower(declared)
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	ct = strings.TrimSpace(ct)
	switch {
	case strings.HasPrefix(ct, "text/"), ct == echo.MIMEApplicationJSON:
	case ct == "", ct == echo.MIMEOctetStream:
		if !strings.HasPrefix(http.DetectContentType(body), "text/plain") {
			return "", "", false
		}
		ct = echo.MIMETextPlain
	default:
		return "", "", false
	}
	return ct, strings.ToValidUTF8(string(body), "\uFFFD"), true
}

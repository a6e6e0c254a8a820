package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf16"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"partmap/internal/mapping"
	"partmap/internal/pipeline"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// APIError is the JSON body of every failed request.
type APIError struct {
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Warnings []string `json:"warnings,omitempty"`
}

type resolvedIdentifier struct {
	Raw        string   `json:"raw"`
	Normalized string   `json:"normalized"`
	Final      string   `json:"final"`
	Changed    bool     `json:"changed"`
	Tiers      []string `json:"tiers"`
}

func respondWithError(c *gin.Context, status int, code, message string, warnings []string) {
	c.AbortWithStatusJSON(status, APIError{Code: code, Message: message, Warnings: warnings})
}

// Replace resolves and aggregates the uploaded record files against the
// uploaded mapping and answers with the result workbook.
// POST /api/v1/replace (multipart: mapping, files)
func (s *Server) Replace(c *gin.Context) {
	form, err := s.multipartForm(c)
	if err != nil {
		respondWithError(c, http.StatusBadRequest, "invalid_form", err.Error(), nil)
		return
	}

	mappingFile, err := singleFile(form, "mapping")
	if err != nil {
		respondWithError(c, http.StatusBadRequest, "missing_mapping", err.Error(), nil)
		return
	}
	var headers []*multipart.FileHeader
	headers = append(headers, form.File["files"]...)
	headers = append(headers, form.File["files[]"]...)
	if len(headers) == 0 {
		respondWithError(c, http.StatusBadRequest, "missing_files", "no record files uploaded", nil)
		return
	}
	files := make([]pipeline.InputFile, 0, len(headers))
	for _, fh := range headers {
		f, err := readUpload(fh)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, "invalid_upload", err.Error(), nil)
			return
		}
		files = append(files, f)
	}

	batch, err := s.batch.Run(mappingFile, files)
	if err != nil {
		status, code := mappingErrorStatus(err)
		respondWithError(c, status, code, err.Error(), nil)
		return
	}

	warnings := warningStrings(batch.Warnings)
	c.Header("X-Run-Id", batch.RunID)
	if len(batch.Files) == 0 {
		respondWithError(c, http.StatusUnprocessableEntity, "no_output", pipeline.ErrNoOutput.Error(), warnings)
		return
	}

	var buf bytes.Buffer
	if err := pipeline.WriteBatchXLSX(batch, pipeline.ExportOptionsFromConfig(s.cfg), &buf); err != nil {
		zap.L().Error("render workbook failed", zap.String("run_id", batch.RunID), zap.Error(err))
		respondWithError(c, http.StatusInternalServerError, "render_failed", err.Error(), warnings)
		return
	}

	if len(warnings) > 0 {
		c.Header("X-Partmap-Warnings", asciiJSON(warnings))
	}
	name := pipeline.ResultFileName(s.cfg.ResultPrefix, s.now())
	c.Header("Content-Disposition", contentDisposition(name))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// Resolve previews the resolution of ad-hoc identifiers.
// POST /api/v1/resolve (multipart: mapping, ids)
func (s *Server) Resolve(c *gin.Context) {
	form, err := s.multipartForm(c)
	if err != nil {
		respondWithError(c, http.StatusBadRequest, "invalid_form", err.Error(), nil)
		return
	}

	mappingFile, err := singleFile(form, "mapping")
	if err != nil {
		respondWithError(c, http.StatusBadRequest, "missing_mapping", err.Error(), nil)
		return
	}

	var ids []string
	for _, v := range form.Value["ids"] {
		for _, line := range strings.Split(v, "\n") {
			if strings.TrimSpace(line) != "" {
				ids = append(ids, line)
			}
		}
	}
	if len(ids) == 0 {
		respondWithError(c, http.StatusBadRequest, "missing_ids", "no identifiers given", nil)
		return
	}

	resolver, err := pipeline.LoadResolver(mappingFile)
	if err != nil {
		status, code := mappingErrorStatus(err)
		respondWithError(c, status, code, err.Error(), nil)
		return
	}

	out := make([]resolvedIdentifier, 0, len(ids))
	for _, id := range ids {
		res := resolver.Resolve(id)
		tiers := res.Tiers
		if tiers == nil {
			tiers = []string{}
		}
		out = append(out, resolvedIdentifier{
			Raw:        res.Raw,
			Normalized: res.Normalized,
			Final:      res.Final,
			Changed:    res.Changed,
			Tiers:      tiers,
		})
	}
	c.JSON(http.StatusOK, gin.H{"results": out})
}

func (s *Server) multipartForm(c *gin.Context) (*multipart.Form, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, int64(s.cfg.MaxUploadMB)<<20)
	return c.MultipartForm()
}

func mappingErrorStatus(err error) (int, string) {
	var schemaErr *mapping.SchemaError
	if errors.As(err, &schemaErr) {
		return http.StatusUnprocessableEntity, "schema_error"
	}
	return http.StatusBadRequest, "invalid_mapping"
}

func singleFile(form *multipart.Form, field string) (pipeline.InputFile, error) {
	headers := form.File[field]
	if len(headers) == 0 {
		return pipeline.InputFile{}, fmt.Errorf("form field %q is required", field)
	}
	return readUpload(headers[0])
}

func readUpload(fh *multipart.FileHeader) (pipeline.InputFile, error) {
	f, err := fh.Open()
	if err != nil {
		return pipeline.InputFile{}, err
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return pipeline.InputFile{}, fmt.Errorf("read %q: %w", fh.Filename, err)
	}
	return pipeline.InputFile{Name: fh.Filename, Content: content}, nil
}

func warningStrings(warnings []pipeline.Warning) []string {
	out := make([]string, 0, len(warnings))
	for _, w := range warnings {
		out = append(out, w.String())
	}
	return out
}

func contentDisposition(name string) string {
	return fmt.Sprintf(`attachment; filename="result.xlsx"; filename*=UTF-8''%s`, url.PathEscape(name))
}

// asciiJSON encodes v with every non-ASCII rune escaped, so it fits in a
// header value.
func asciiJSON(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	var b strings.Builder
	for _, r := range string(raw) {
		switch {
		case r < 0x80:
			b.WriteRune(r)
		case r > 0xFFFF:
			r1, r2 := utf16.EncodeRune(r)
			fmt.Fprintf(&b, `\u%04x\u%04x`, r1, r2)
		default:
			fmt.Fprintf(&b, `\u%04x`, r)
		}
	}
	return b.String()
}

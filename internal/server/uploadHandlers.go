package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"inventorytracker/internal/misc"
	"inventorytracker/internal/reconcile"
	"inventorytracker/internal/spreadsheet"
)

// upload dispatches on Content-Type: a multipart form with a "file" field,
// or a JSON body carrying the workbook base64-encoded. Both adapters feed
// the same reconcile engine.
func (s Server) upload() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ct := r.Header.Get("Content-Type")
		switch {
		case strings.HasPrefix(ct, "multipart/form-data"):
			s.uploadMultipart(w, r)
		case strings.HasPrefix(ct, "application/json"):
			s.uploadJSON(w, r)
		default:
			s.Logger.Debugf("upload: Unsupported Content-Type: %s, TraceID: %s",
				misc.StringLimit(ct, 64), getTraceContext(r.Context()).traceID)
			s.writeJsonResponse(w, errorResponse{Error: "Unsupported Content-Type"}, http.StatusBadRequest)
		}
	}
}

func (s Server) uploadMultipart(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		s.Logger.Debugf("uploadMultipart: No file in request, err: %v", err)
		s.writeJsonResponse(w, errorResponse{Error: "No file provided"}, http.StatusBadRequest)
		return
	}
	defer func() {
		if err := file.Close(); err != nil {
			s.Logger.Errorf("uploadMultipart: Error closing uploaded file, err: %v", err)
		}
	}()

	if header.Filename == "" {
		s.writeJsonResponse(w, errorResponse{Error: "No file selected"}, http.StatusBadRequest)
		return
	}
	if !s.extensionAllowed(header.Filename) {
		s.Logger.Debugf("uploadMultipart: Disallowed extension on file: %s", misc.StringLimit(header.Filename, 64))
		s.writeJsonResponse(w, errorResponse{Error: "Invalid file format. Please upload .xlsx or .xls files"}, http.StatusBadRequest)
		return
	}

	path, err := s.stageUpload(file, header.Filename)
	if err != nil {
		s.Logger.Errorf("uploadMultipart: Error staging upload: %s, err: %v", misc.StringLimit(header.Filename, 64), err)
		s.writeJsonResponse(w, errorResponse{Error: "Error saving uploaded file"}, http.StatusInternalServerError)
		return
	}
	defer func() {
		if err := os.Remove(path); err != nil {
			s.Logger.Errorf("uploadMultipart: Error removing staged upload: %s, err: %v", path, err)
		}
	}()

	staged, err := os.Open(path)
	if err != nil {
		s.Logger.Errorf("uploadMultipart: Error opening staged upload: %s, err: %v", path, err)
		s.writeJsonResponse(w, errorResponse{Error: "Error saving uploaded file"}, http.StatusInternalServerError)
		return
	}
	defer func() {
		if err := staged.Close(); err != nil {
			s.Logger.Errorf("uploadMultipart: Error closing staged upload: %s, err: %v", path, err)
		}
	}()

	sheet, err := spreadsheet.Parse(staged)
	if err != nil {
		s.Logger.Debugf("uploadMultipart: Error parsing file: %s, err: %v", misc.StringLimit(header.Filename, 64), err)
		s.writeJsonResponse(w, errorResponse{Error: fmt.Sprintf("Error reading Excel file: %v", err)}, http.StatusBadRequest)
		return
	}

	s.processSheet(w, r, sheet)
}

func (s Server) uploadJSON(w http.ResponseWriter, r *http.Request) {
	type request struct {
		File string `json:"file"`
	}
	req := request{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.Logger.Debugf("uploadJSON: Error decoding JSON, err: %v", err)
		s.writeJsonResponse(w, errorResponse{Error: "Invalid JSON body"}, http.StatusBadRequest)
		return
	}
	if req.File == "" {
		s.writeJsonResponse(w, errorResponse{Error: "No file provided"}, http.StatusBadRequest)
		return
	}

	content, err := base64.StdEncoding.DecodeString(req.File)
	if err != nil {
		s.Logger.Debugf("uploadJSON: Error decoding base64 file, err: %v", err)
		s.writeJsonResponse(w, errorResponse{Error: fmt.Sprintf("Error reading Excel file: %v", err)}, http.StatusBadRequest)
		return
	}

	sheet, err := spreadsheet.Parse(bytes.NewReader(content))
	if err != nil {
		s.Logger.Debugf("uploadJSON: Error parsing file, err: %v", err)
		s.writeJsonResponse(w, errorResponse{Error: fmt.Sprintf("Error reading Excel file: %v", err)}, http.StatusBadRequest)
		return
	}

	s.processSheet(w, r, sheet)
}

func (s Server) processSheet(w http.ResponseWriter, r *http.Request, sheet *spreadsheet.Sheet) {
	type response struct {
		Success  bool                  `json:"success"`
		Message  string                `json:"message"`
		Updates  []reconcile.RowResult `json:"updates"`
		NewItems []reconcile.RowResult `json:"newItems"`
		Errors   []string              `json:"errors"`
	}

	engine := reconcile.Engine{Store: s.DB}
	res, err := engine.Reconcile(r.Context(), sheet)
	if err != nil {
		var missing reconcile.MissingColumnsError
		if errors.As(err, &missing) {
			s.Logger.Debugf("processSheet: Upload missing required columns: %v", missing.Columns)
			s.writeJsonResponse(w, errorResponse{
				Error: "Missing required columns: " + strings.Join(missing.Columns, ", "),
			}, http.StatusBadRequest)
			return
		}
		s.Logger.Errorf("processSheet: Error reconciling upload, err: %v", err)
		s.writeJsonResponse(w, errorResponse{Error: "Server error"}, http.StatusInternalServerError)
		return
	}

	s.Logger.Infof("processSheet: Processed %d row(s): %d update(s), %d new item(s), %d error(s)",
		len(sheet.Rows()), len(res.Updates), len(res.NewItems), len(res.Errors))
	s.writeJsonResponse(w, response{
		Success:  true,
		Message:  fmt.Sprintf("Processed %d items successfully", res.Processed()),
		Updates:  res.Updates,
		NewItems: res.NewItems,
		Errors:   res.Errors,
	}, http.StatusOK)
}

func (s Server) extensionAllowed(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range s.AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// stageUpload copies the uploaded payload to a temp file under UploadDir.
// The caller removes the file on every exit path.
func (s Server) stageUpload(file multipart.File, filename string) (string, error) {
	if err := os.MkdirAll(s.UploadDir, 0755); err != nil {
		return "", errors.Wrapf(err, "error creating upload dir: %s", s.UploadDir)
	}
	dst, err := os.CreateTemp(s.UploadDir, "upload-*"+filepath.Ext(filename))
	if err != nil {
		return "", errors.Wrap(err, "error creating staging file")
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		_ = os.Remove(dst.Name())
		return "", errors.Wrapf(err, "error writing staging file: %s", dst.Name())
	}
	return dst.Name(), nil
}

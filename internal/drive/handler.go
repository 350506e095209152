package drive

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/SerenicuS/ai-hackathon-msme-ai/internal/ingest"
	"github.com/gorilla/mux"
)

type Handler struct {
	service       *Service
	importer      *ingest.Importer
	defaultFolder string
}

func NewHandler(service *Service, importer *ingest.Importer, defaultFolder string) *Handler {
	return &Handler{
		service:       service,
		importer:      importer,
		defaultFolder: defaultFolder,
	}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/drive/files", h.ListFiles).Methods(http.MethodGet)
	router.HandleFunc("/api/drive/ingest", h.IngestFile).Methods(http.MethodPost)
	router.HandleFunc("/api/drive/sync", h.SyncFolder).Methods(http.MethodPost)
}

// resolveFolder picks the folder from ?path=, ?folderId= or the configured default.
func (h *Handler) resolveFolder(r *http.Request) (string, error) {
	query := r.URL.Query()
	if folderPath := query.Get("path"); folderPath != "" {
		return h.service.FindFolderByPath(r.Context(), folderPath)
	}
	if folderID := query.Get("folderId"); folderID != "" {
		return folderID, nil
	}
	return h.defaultFolder, nil
}

func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	folderID, err := h.resolveFolder(r)
	if err != nil {
		writeError(w, folderStatus(err), err)
		return
	}

	files, err := h.service.ListFiles(r.Context(), folderID)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "success", "data": files})
}

// IngestFile imports a single Drive file, POST /api/drive/ingest?fileId=...
func (h *Handler) IngestFile(w http.ResponseWriter, r *http.Request) {
	fileID := r.URL.Query().Get("fileId")
	if fileID == "" {
		writeError(w, http.StatusBadRequest, errors.New("fileId parameter is required"))
		return
	}

	f, err := h.service.GetFile(r.Context(), fileID)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	name, ok := csvName(f)
	if !ok || ingest.KindFromName(name) == ingest.KindUnknown {
		writeError(w, http.StatusBadRequest, fmt.Errorf("cannot classify %s: expected deliveries* or production* exports", f.Name))
		return
	}

	rc, err := h.service.OpenCSV(r.Context(), f)
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	defer rc.Close()

	res, err := h.importer.ImportReader(r.Context(), name, rc)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, fmt.Errorf("ingestion failed: %w", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "success", "data": res})
}

// SyncFolder imports every export in a folder.
func (h *Handler) SyncFolder(w http.ResponseWriter, r *http.Request) {
	folderID, err := h.resolveFolder(r)
	if err != nil {
		writeError(w, folderStatus(err), err)
		return
	}

	report, err := h.importer.Import(r.Context(), NewFolderSource(h.service, folderID))
	if report == nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}

	status, code := "success", http.StatusOK
	if err != nil {
		status, code = "partial", http.StatusMultiStatus
	}
	writeJSON(w, code, map[string]interface{}{"status": status, "data": report, "failed": report.Failed()})
}

func folderStatus(err error) int {
	if errors.Is(err, ErrFolderNotFound) {
		return http.StatusNotFound
	}
	return http.StatusBadGateway
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"status": "error", "detail": err.Error()})
}

package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/amaumene/syncarr/internal/domain"
	"github.com/amaumene/syncarr/internal/service"
	log "github.com/sirupsen/logrus"
)

const contentTypeJSON = "application/json"

type HTTPHandler struct {
	repos        service.Repositories
	snapshotSvc  *service.SnapshotService
	reconcileSvc *service.ReconcileService
}

func NewHTTPHandler(repos service.Repositories, snapshotSvc *service.SnapshotService, reconcileSvc *service.ReconcileService) *HTTPHandler {
	return &HTTPHandler{
		repos:        repos,
		snapshotSvc:  snapshotSvc,
		reconcileSvc: reconcileSvc,
	}
}

func (h *HTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/export", h.handleExport)
	mux.HandleFunc("/import", h.handleImport)
	mux.HandleFunc("/status", h.handleStatus)
	mux.HandleFunc("/health", h.handleHealth)
}

func (h *HTTPHandler) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Invalid method", http.StatusMethodNotAllowed)
		return
	}

	payload, err := h.snapshotSvc.Build(r.Context())
	if err != nil {
		log.WithField("error", err).Error("failed to build snapshot")
		http.Error(w, "Export failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentTypeJSON)
	w.Header().Set("Content-Disposition", `attachment; filename="syncarr-snapshot.json"`)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.WithField("error", err).Error("failed to write snapshot response")
	}
}

func (h *HTTPHandler) handleImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Invalid method", http.StatusMethodNotAllowed)
		return
	}

	var payload domain.Payload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid snapshot document", http.StatusBadRequest)
		return
	}

	if err := h.reconcileSvc.Apply(r.Context(), &payload); err != nil {
		h.writeImportError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentTypeJSON)
	fmt.Fprintln(w, `{"status":"imported"}`)
}

func (h *HTTPHandler) writeImportError(w http.ResponseWriter, err error) {
	log.WithField("error", err).Error("failed to apply snapshot")

	if errors.Is(err, domain.ErrUnsupportedSchema) || errors.Is(err, domain.ErrMalformedPayload) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	http.Error(w, "Import failed", http.StatusInternalServerError)
}

type statusResponse struct {
	DeviceID         string `json:"deviceId"`
	LastExportedAt   int64  `json:"lastExportedAt,omitempty"`
	LastImportedAt   int64  `json:"lastImportedAt,omitempty"`
	ImportCheckpoint string `json:"importCheckpoint,omitempty"`
	Media            int    `json:"media"`
	Favorites        int    `json:"favorites"`
	Progress         int    `json:"progress"`
	Lists            int    `json:"lists"`
	ListItems        int    `json:"listItems"`
}

func (h *HTTPHandler) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Invalid method", http.StatusMethodNotAllowed)
		return
	}

	status, err := h.buildStatus(r)
	if err != nil {
		log.WithField("error", err).Error("failed to build status")
		http.Error(w, "Status failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentTypeJSON)
	if err := json.NewEncoder(w).Encode(status); err != nil {
		log.WithField("error", err).Error("failed to write status response")
	}
}

func (h *HTTPHandler) buildStatus(r *http.Request) (*statusResponse, error) {
	ctx := r.Context()

	info, err := h.repos.Meta.Info(ctx)
	if err != nil {
		return nil, err
	}
	medias, err := h.repos.Media.All(ctx)
	if err != nil {
		return nil, err
	}
	favorites, err := h.repos.Media.FindFavorites(ctx)
	if err != nil {
		return nil, err
	}
	progress, err := h.repos.Progress.All(ctx)
	if err != nil {
		return nil, err
	}
	lists, err := h.repos.Lists.All(ctx)
	if err != nil {
		return nil, err
	}
	items, err := h.repos.ListItems.All(ctx)
	if err != nil {
		return nil, err
	}

	return &statusResponse{
		DeviceID:         info.DeviceID,
		LastExportedAt:   info.LastExportedAt,
		LastImportedAt:   info.LastImportedAt,
		ImportCheckpoint: info.ImportCheckpoint,
		Media:            len(medias),
		Favorites:        len(favorites),
		Progress:         len(progress),
		Lists:            len(lists),
		ListItems:        len(items),
	}, nil
}

func (h *HTTPHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

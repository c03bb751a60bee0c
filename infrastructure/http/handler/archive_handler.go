package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/fixora/archive/application/port/inbound"
	"github.com/fixora/archive/domain"
	apperr "github.com/fixora/archive/domain/error"
	"github.com/fixora/archive/infrastructure/http/response"
)

type ArchiveHandler struct {
	historyUseCase inbound.HistoryUseCase
}

func NewArchiveHandler(historyUseCase inbound.HistoryUseCase) *ArchiveHandler {
	return &ArchiveHandler{
		historyUseCase: historyUseCase,
	}
}

type HistoryResponse struct {
	Kind    string         `json:"kind"`
	Label   string         `json:"label"`
	Storage string         `json:"storage"`
	Entries []domain.Entry `json:"entries"`
}

// RegisterRoutes registers archive routes
func (h *ArchiveHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/v1/archives/{kind}/{label}", h.History).Methods(http.MethodGet)
}

// History returns every archived entry of one entity
func (h *ArchiveHandler) History(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	kind, label := vars["kind"], vars["label"]

	entries, err := h.historyUseCase.History(r.Context(), kind, label)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "History retrieved successfully", HistoryResponse{
		Kind:    kind,
		Label:   label,
		Storage: domain.NewIdentity(kind, label).StorageName(),
		Entries: entries,
	})
}

func writeError(w http.ResponseWriter, err error) {
	status := apperr.GetHTTPStatusCode(err)
	switch status {
	case http.StatusNotFound:
		response.NotFound(w, "Archive not found")
	case http.StatusBadRequest:
		response.BadRequest(w, err.Error())
	case http.StatusGone:
		response.Error(w, http.StatusGone, "Archive has been destroyed")
	case http.StatusInternalServerError:
		response.InternalServerError(w, "Failed to read archive")
	default:
		response.Error(w, status, "Failed to read archive")
	}
}

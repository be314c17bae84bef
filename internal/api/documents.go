package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/careloop/patient-intake/internal/document"
)

// getDocumentHandler serves a stored identification document back by its
// reference.
func getDocumentHandler(store document.Store, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_document_id", "id must be a valid UUID")
			return
		}

		doc, err := store.Get(r.Context(), id)
		if err != nil {
			handleDomainError(w, r, log, err)
			return
		}

		w.Header().Set("Content-Type", doc.ContentType)
		w.Header().Set("Content-Length", strconv.FormatInt(doc.Size, 10))
		w.Header().Set("Content-Disposition", `attachment; filename="`+doc.FileName+`"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(doc.Data)
	}
}

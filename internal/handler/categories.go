package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rocjay1/bo-ledger/internal/models"
)

// HandleCategories handles GET and POST requests for categories.
func (d *Dependencies) HandleCategories(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		categories, err := d.Database.ListCategories(r.Context())
		if err != nil {
			writeFailure(w, "get categories", err)
			return
		}
		WriteJSON(w, http.StatusOK, categories)

	case http.MethodPost:
		var category models.Category
		if !decodeBody(w, r, &category) {
			return
		}
		category.Name = strings.TrimSpace(category.Name)
		if category.Name == "" {
			writeFailure(w, "save category", models.Invalid("name", "is required"))
			return
		}
		category.Kind = models.ParseKind(string(category.Kind))
		if category.ID == "" {
			category.ID = uuid.New().String()
		}

		if err := d.Database.SaveCategory(r.Context(), category); err != nil {
			writeFailure(w, "save category", err)
			return
		}
		slog.Info("saved category", "id", category.ID, "name", category.Name, "type", category.Kind)
		WriteJSON(w, http.StatusOK, category)

	default:
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

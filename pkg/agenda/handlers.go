package agenda

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"agenda/pkg/models"
)

// Department handlers

func (a *App) handleListDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := a.store.ListDepartments(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if departments == nil {
		departments = []models.Department{}
	}
	respondJSON(w, http.StatusOK, departments)
}

func (a *App) handleCreateDepartment(w http.ResponseWriter, r *http.Request) {
	var form models.DepartmentForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := models.ValidateDepartmentForm(form); err != nil {
		respondValidationError(w, err)
		return
	}

	department := models.NewDepartment(form)
	if err := a.store.CreateDepartment(r.Context(), department); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, department)
}

func (a *App) handleUpdateDepartment(w http.ResponseWriter, r *http.Request) {
	id, err := models.ParseDepartmentID(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid department ID")
		return
	}

	var patch models.DepartmentPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := models.ValidateDepartmentPatch(patch); err != nil {
		respondValidationError(w, err)
		return
	}

	department, err := a.store.UpdateDepartment(r.Context(), id, patch)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if department == nil {
		respondError(w, http.StatusNotFound, "Department not found")
		return
	}
	respondJSON(w, http.StatusOK, department)
}

// handleDeleteDepartment enforces the referential guard: a department with
// contacts still assigned cannot be deleted. The store delete itself is
// unconditional.
func (a *App) handleDeleteDepartment(w http.ResponseWriter, r *http.Request) {
	id, err := models.ParseDepartmentID(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid department ID")
		return
	}

	ctx := r.Context()
	contacts, err := a.store.ListContacts(ctx)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !models.CanDeleteDepartment(id, contacts) {
		respondError(w, http.StatusConflict, "Department still has contacts assigned")
		return
	}

	if err := a.store.DeleteDepartment(ctx, id); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// Contact handlers

// handleListContacts serves both filter modes. mode=lookup applies the
// reception prefix search; anything else applies the browsing filter with
// optional departmentId narrowing.
func (a *App) handleListContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := a.store.ListContacts(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	query := r.URL.Query()
	q := query.Get("q")

	if query.Get("mode") == "lookup" {
		respondJSON(w, http.StatusOK, SearchContacts(contacts, q))
		return
	}

	var departmentID *models.DepartmentID
	if raw := query.Get("departmentId"); raw != "" {
		id, err := models.ParseDepartmentID(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid department ID")
			return
		}
		departmentID = &id
	}
	respondJSON(w, http.StatusOK, FilterContacts(contacts, departmentID, q))
}

func (a *App) handleCreateContact(w http.ResponseWriter, r *http.Request) {
	var form models.ContactForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := models.ValidateContactForm(form); err != nil {
		respondValidationError(w, err)
		return
	}

	contact := models.NewContact(form)
	if err := a.store.CreateContact(r.Context(), contact); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, contact)
}

func (a *App) handleUpdateContact(w http.ResponseWriter, r *http.Request) {
	id, err := models.ParseContactID(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid contact ID")
		return
	}

	var patch models.ContactPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := models.ValidateContactPatch(patch); err != nil {
		respondValidationError(w, err)
		return
	}

	contact, err := a.store.UpdateContact(r.Context(), id, patch)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if contact == nil {
		respondError(w, http.StatusNotFound, "Contact not found")
		return
	}
	respondJSON(w, http.StatusOK, contact)
}

func (a *App) handleDeleteContact(w http.ResponseWriter, r *http.Request) {
	id, err := models.ParseContactID(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid contact ID")
		return
	}

	if err := a.store.DeleteContact(r.Context(), id); err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

// Directory handlers expose the synchronized view

func (a *App) handleDirectory(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, a.sync.Snapshot())
}

// handleRefresh re-fetches both collections. The response always carries
// the resulting snapshot; a failed refresh shows up in its error field
// rather than as a transport failure, since stale data plus a message is
// more useful to the directory UI than an empty error page.
func (a *App) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := a.sync.Refresh(r.Context()); err != nil {
		a.log.Error().Err(err).Msg("directory refresh failed")
	}
	respondJSON(w, http.StatusOK, a.sync.Snapshot())
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status": "healthy",
		"time":   models.NowMillis(),
	})
}

// Response helpers

func respondJSON(w http.ResponseWriter, status int, payload any) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_, _ = w.Write(response)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func respondValidationError(w http.ResponseWriter, err error) {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		respondJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":  verr.Error(),
			"fields": verr.Fields,
		})
		return
	}
	respondError(w, http.StatusUnprocessableEntity, err.Error())
}

package http

import (
	"net/http"

	"github.com/viralforge/project-tracker/internal/application"
)

func (h *Handler) createProject(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFromContext(r.Context())
	var req application.ProjectRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeValidationError(r.Context(), w, "create_project", err)
		return
	}

	res, err := h.service.CreateProject(r.Context(), identity.UserID, req)
	if err != nil {
		writeMappedError(r.Context(), w, "create_project", err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// listProjects accepts either the Portuguese or the English query names.
func (h *Handler) listProjects(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFromContext(r.Context())
	query := application.ProjectQuery{
		Status:       queryValue(r, "status"),
		NameContains: queryValue(r, "nome", "name"),
	}

	res, err := h.service.ListProjects(r.Context(), identity.UserID, query)
	if err != nil {
		writeMappedError(r.Context(), w, "list_projects", err)
		return
	}
	writeList(w, res)
}

func (h *Handler) getProject(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFromContext(r.Context())
	projectID, err := pathID(r)
	if err != nil {
		writeValidationError(r.Context(), w, "get_project", err)
		return
	}

	res, err := h.service.GetProject(r.Context(), identity.UserID, projectID)
	if err != nil {
		writeMappedError(r.Context(), w, "get_project", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) updateProject(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFromContext(r.Context())
	projectID, err := pathID(r)
	if err != nil {
		writeValidationError(r.Context(), w, "update_project", err)
		return
	}
	var req application.ProjectRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeValidationError(r.Context(), w, "update_project", err)
		return
	}

	res, err := h.service.UpdateProject(r.Context(), identity.UserID, projectID, req)
	if err != nil {
		writeMappedError(r.Context(), w, "update_project", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) deleteProject(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFromContext(r.Context())
	projectID, err := pathID(r)
	if err != nil {
		writeValidationError(r.Context(), w, "delete_project", err)
		return
	}

	if err := h.service.DeleteProject(r.Context(), identity.UserID, projectID); err != nil {
		writeMappedError(r.Context(), w, "delete_project", err)
		return
	}
	writeNoContent(w)
}

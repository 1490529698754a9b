package http

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/viralforge/project-tracker/internal/application"
)

func (h *Handler) createTask(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFromContext(r.Context())
	var req application.TaskRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeValidationError(r.Context(), w, "create_task", err)
		return
	}

	res, err := h.service.CreateTask(r.Context(), identity.UserID, req)
	if err != nil {
		writeMappedError(r.Context(), w, "create_task", err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// listTasks scopes to one project when projetoId/projectId is given,
// otherwise to every project the caller owns.
func (h *Handler) listTasks(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFromContext(r.Context())
	query := application.TaskQuery{
		Status:              queryValue(r, "status"),
		DescriptionContains: queryValue(r, "descricao", "description"),
	}

	rawProjectID := queryValue(r, "projetoId", "projectId")
	if rawProjectID == "" {
		res, err := h.service.ListOwnerTasks(r.Context(), identity.UserID, query)
		if err != nil {
			writeMappedError(r.Context(), w, "list_tasks", err)
			return
		}
		writeList(w, res)
		return
	}

	projectID, err := uuid.Parse(rawProjectID)
	if err != nil {
		writeValidationError(r.Context(), w, "list_tasks", fmt.Errorf("invalid project id: %s", rawProjectID))
		return
	}
	res, err := h.service.ListTasks(r.Context(), identity.UserID, projectID, query)
	if err != nil {
		writeMappedError(r.Context(), w, "list_tasks", err)
		return
	}
	writeList(w, res)
}

func (h *Handler) getTask(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFromContext(r.Context())
	taskID, err := pathID(r)
	if err != nil {
		writeValidationError(r.Context(), w, "get_task", err)
		return
	}

	res, err := h.service.GetTask(r.Context(), identity.UserID, taskID)
	if err != nil {
		writeMappedError(r.Context(), w, "get_task", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) updateTask(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFromContext(r.Context())
	taskID, err := pathID(r)
	if err != nil {
		writeValidationError(r.Context(), w, "update_task", err)
		return
	}
	var req application.TaskRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeValidationError(r.Context(), w, "update_task", err)
		return
	}

	res, err := h.service.UpdateTask(r.Context(), identity.UserID, taskID, req)
	if err != nil {
		writeMappedError(r.Context(), w, "update_task", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) deleteTask(w http.ResponseWriter, r *http.Request) {
	identity, _ := identityFromContext(r.Context())
	taskID, err := pathID(r)
	if err != nil {
		writeValidationError(r.Context(), w, "delete_task", err)
		return
	}

	if err := h.service.DeleteTask(r.Context(), identity.UserID, taskID); err != nil {
		writeMappedError(r.Context(), w, "delete_task", err)
		return
	}
	writeNoContent(w)
}

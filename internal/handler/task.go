package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskcentral/internal/model"
	"github.com/BuzzLyutic/taskcentral/internal/repo"
	"github.com/BuzzLyutic/taskcentral/internal/schema"
	"github.com/BuzzLyutic/taskcentral/internal/service"
	"github.com/BuzzLyutic/taskcentral/pkg/respond"
)

// base64-вложение до 100 МБ плюс остальные поля
const maxJSONBody = 140 << 20

const (
	msgInvalidID     = "Identificador inválido."
	msgEmptyBody     = "El cuerpo de la solicitud está vacío."
	msgInvalidBody   = "Solicitud inválida"
	msgDuplicate     = "No se pueden crear dos tareas con el mismo nombre."
	msgTodoNotFound  = "Todo no encontrado."
	msgUserNotFound  = "Usuario no encontrado."
	msgShareNotFound = "Todo compartido no encontrado."
	msgTodoDeleted   = "Todo eliminado exitosamente."
)

type TaskService interface {
	Create(ctx context.Context, t model.Task, idempKey string) (model.Task, error)
	Get(ctx context.Context, id int64) (model.Task, error)
	List(ctx context.Context, ownerID int64) ([]model.Task, error)
	ToggleCompleted(ctx context.Context, id int64, value bool) (model.Task, error)
	Delete(ctx context.Context, id int64) error
	Share(ctx context.Context, s model.SharedTask) (model.SharedTask, error)
	GetSharedTask(ctx context.Context, id int64) (model.SharedTask, error)
	GetUser(ctx context.Context, id int64) (model.User, error)
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
}

type TaskHandler struct {
	service   TaskService
	validator *schema.Validator
	logger    *zap.Logger
}

func NewTaskHandler(srv TaskService, validator *schema.Validator, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		service:   srv,
		validator: validator,
		logger:    logger,
	}
}

// List GET /todos/{id}: id здесь это владелец, а не задача
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := h.pathID(w, r)
	if !ok {
		return
	}

	tasks, err := h.service.List(r.Context(), ownerID)
	if err != nil {
		h.handleErrors(w, r, err, "", "Error al obtener todos.")
		return
	}
	respond.JSON(w, r, http.StatusOK, tasks)
}

// Get GET /todo/{id}
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	task, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.handleErrors(w, r, err, msgTodoNotFound, "Error al obtener todo.")
		return
	}
	respond.JSON(w, r, http.StatusOK, task)
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.Task
	if !h.decode(w, r, schema.CreateTask, &req) {
		return
	}

	idempKey := r.Header.Get("Idempotency-Key")
	task, err := h.service.Create(r.Context(), req, idempKey)
	if err != nil {
		h.handleErrors(w, r, err, "", "Error al crear un nuevo todo.")
		return
	}

	w.Header().Set("Location", fmt.Sprintf("/todo/%d", task.ID))
	respond.JSON(w, r, http.StatusCreated, task)
}

// Toggle PUT /todos/{id}: неизвестный id отдает 500, как и остальные ошибки хранилища
func (h *TaskHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req model.ToggleRequest
	if !h.decode(w, r, schema.ToggleTask, &req) {
		return
	}

	task, err := h.service.ToggleCompleted(r.Context(), id, req.Value)
	if err != nil {
		h.handleErrors(w, r, err, "", "Error al completar un todo.")
		return
	}
	respond.JSON(w, r, http.StatusOK, task)
}

// Delete DELETE /todos/{id}: удаление несуществующей задачи это ошибка хранилища (500)
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.handleErrors(w, r, err, "", "Error al eliminar un todo.")
		return
	}
	respond.Message(w, r, http.StatusOK, msgTodoDeleted)
}

func (h *TaskHandler) Share(w http.ResponseWriter, r *http.Request) {
	var req model.SharedTask
	if !h.decode(w, r, schema.ShareTask, &req) {
		return
	}

	shared, err := h.service.Share(r.Context(), req)
	if err != nil {
		h.handleErrors(w, r, err, "", "Error al compartir un todo.")
		return
	}
	respond.JSON(w, r, http.StatusCreated, shared)
}

func (h *TaskHandler) GetShared(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	shared, err := h.service.GetSharedTask(r.Context(), id)
	if err != nil {
		h.handleErrors(w, r, err, msgShareNotFound, "Error al obtener todo compartido.")
		return
	}
	respond.JSON(w, r, http.StatusOK, shared)
}

func (h *TaskHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	user, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		h.handleErrors(w, r, err, msgUserNotFound, "Error al obtener información del usuario.")
		return
	}
	respond.JSON(w, r, http.StatusOK, user)
}

// FindUser GET /users?email=
func (h *TaskHandler) FindUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetUserByEmail(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		h.handleErrors(w, r, err, msgUserNotFound, "Error al obtener información del usuario.")
		return
	}
	respond.JSON(w, r, http.StatusOK, user)
}

func (h *TaskHandler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respond.Error(w, r, http.StatusBadRequest, msgInvalidID)
		return 0, false
	}
	return id, true
}

func (h *TaskHandler) decode(w http.ResponseWriter, r *http.Request, name string, dst any) bool {
	if r.ContentLength == 0 {
		respond.Error(w, r, http.StatusBadRequest, msgEmptyBody)
		return false
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(w, r, http.StatusRequestEntityTooLarge, msgTooLarge)
			return false
		}
		h.logger.Error("failed to read body", zap.Error(err))
		respond.Error(w, r, http.StatusBadRequest, msgInvalidBody+".")
		return false
	}
	if len(body) == 0 {
		respond.Error(w, r, http.StatusBadRequest, msgEmptyBody)
		return false
	}

	if err := h.validator.Decode(name, body, dst); err != nil {
		h.handleErrors(w, r, err, "", "Error al procesar la solicitud.")
		return false
	}
	return true
}

// handleErrors notFound == "" значит отсутствие сущности считается обычной ошибкой (500).
// Ссылка на несуществующую задачу или пользователя (repo.ErrorReference) тоже ошибка хранилища.
func (h *TaskHandler) handleErrors(w http.ResponseWriter, r *http.Request, err error, notFound, failure string) {
	switch {
	case notFound != "" && errors.Is(err, repo.ErrorNotFound):
		respond.Error(w, r, http.StatusNotFound, notFound)
	case errors.Is(err, repo.ErrorConflict):
		respond.Error(w, r, http.StatusConflict, msgDuplicate)
	case errors.Is(err, service.ErrValidation), errors.Is(err, schema.ErrInvalid):
		respond.Error(w, r, http.StatusBadRequest, fmt.Sprintf("%s: %v", msgInvalidBody, err))
	default:
		h.logger.Error("internal error",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		respond.Error(w, r, http.StatusInternalServerError, failure)
	}
}

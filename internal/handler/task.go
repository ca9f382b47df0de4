package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-tracker/internal/model"
	"github.com/BuzzLyutic/task-tracker/internal/repo"
	"github.com/BuzzLyutic/task-tracker/internal/service"
	"github.com/BuzzLyutic/task-tracker/internal/view"
	"github.com/BuzzLyutic/task-tracker/pkg/respond"
)

const (
	msgNotFound  = "Task not found"
	msgInternal  = "internal error"
	msgListError = "Could not load tasks"
)

// pageData is rendered either as JSON or through the page template.
type pageData struct {
	Title   string      `json:"-"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
	Task    *model.Task `json:"task,omitempty"`
}

type listData struct {
	Title  string       `json:"-"`
	Tasks  []model.Task `json:"tasks"`
	Filter string       `json:"filter,omitempty"`
	Error  string       `json:"error,omitempty"`

	Message string `json:"-"`
}

type TaskHandler struct {
	service *service.TaskService
	logger  *zap.Logger
}

func NewTaskHandler(srv *service.TaskService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		service: srv,
		logger:  logger,
	}
}

func (h *TaskHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, view.Index, pageData{Title: "Task Tracker"})
}

func (h *TaskHandler) AddForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, view.Add, pageData{Title: "Add task"})
}

func (h *TaskHandler) Add(w http.ResponseWriter, r *http.Request) {
	const title = "Add task"

	task, err := h.service.Create(r.Context(), r.PostFormValue("title"), r.PostFormValue("description"))
	if err != nil {
		h.handleErrors(w, r, view.Add, title, err)
		return
	}

	h.logger.Info("task created", zap.String("task_id", task.ID))
	w.Header().Set("Location", fmt.Sprintf("/tasks/%s", task.ID))
	h.render(w, r, http.StatusCreated, view.Add, pageData{
		Title:   title,
		Message: fmt.Sprintf("Task added with ID %s", task.ID),
		Task:    &task,
	})
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	data := listData{Title: "Tasks"}
	filter := r.URL.Query().Get("filter")
	if f := service.ParseFilter(filter); f.Status != nil {
		data.Filter = string(*f.Status)
	}

	code := http.StatusOK
	tasks, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list tasks", zap.Error(err))
		code = http.StatusInternalServerError
		tasks = []model.Task{}
		data.Error = msgListError
	}
	data.Tasks = tasks

	if respond.WantsHTML(r) {
		respond.HTML(w, r, code, view.Templates, view.Tasks, data)
		return
	}
	respond.JSON(w, r, code, data)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	data := listData{Title: "Task"}
	code := http.StatusOK

	task, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		code, data.Error = h.errorStatus(err)
	} else {
		data.Tasks = []model.Task{task}
	}

	switch {
	case respond.WantsHTML(r):
		respond.HTML(w, r, code, view.Templates, view.Tasks, data)
	case err != nil:
		respond.Error(w, r, code, data.Error)
	default:
		respond.JSON(w, r, code, task)
	}
}

func (h *TaskHandler) UpdateForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, view.Update, pageData{Title: "Update task"})
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	const title = "Update task"

	task, err := h.service.Update(r.Context(),
		r.PostFormValue("task_id"),
		checked(r.PostFormValue("mark_completed")),
		r.PostFormValue("description"),
	)
	if err != nil {
		h.handleErrors(w, r, view.Update, title, err)
		return
	}

	h.render(w, r, http.StatusOK, view.Update, pageData{
		Title:   title,
		Message: fmt.Sprintf("Task %s updated.", task.ID),
		Task:    &task,
	})
}

func (h *TaskHandler) DeleteForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, view.Delete, pageData{Title: "Delete task"})
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	const title = "Delete task"

	removed, err := h.service.Delete(r.Context(), r.PostFormValue("task_id"))
	if err != nil {
		h.handleErrors(w, r, view.Delete, title, err)
		return
	}

	h.logger.Info("task deleted", zap.String("task_id", removed.ID))
	h.render(w, r, http.StatusOK, view.Delete, pageData{
		Title:   title,
		Message: fmt.Sprintf("Task %s deleted.", removed.ID),
		Task:    &removed,
	})
}

func (h *TaskHandler) render(w http.ResponseWriter, r *http.Request, code int, page string, data pageData) {
	if respond.WantsHTML(r) {
		respond.HTML(w, r, code, view.Templates, page, data)
		return
	}
	respond.JSON(w, r, code, data)
}

func (h *TaskHandler) handleErrors(w http.ResponseWriter, r *http.Request, page, title string, err error) {
	code, message := h.errorStatus(err)
	if respond.WantsHTML(r) {
		respond.HTML(w, r, code, view.Templates, page, pageData{Title: title, Error: message})
		return
	}
	respond.Error(w, r, code, message)
}

func (h *TaskHandler) errorStatus(err error) (int, string) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Message
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest, "validation error"
	case errors.Is(err, repo.ErrorNotFound):
		return http.StatusNotFound, msgNotFound
	case errors.Is(err, repo.ErrorConflict):
		return http.StatusConflict, "conflict"
	default:
		h.logger.Error("internal error", zap.Error(err))
		return http.StatusInternalServerError, msgInternal
	}
}

// checked reads an HTML checkbox value.
func checked(v string) bool {
	v = strings.TrimSpace(v)
	if v == "on" {
		return true
	}
	b, _ := strconv.ParseBool(v)
	return b
}

package handler

import (
	"errors"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskcentral/internal/attachment"
	"github.com/BuzzLyutic/taskcentral/pkg/respond"
)

const (
	msgNoFile       = "No se ha subido ningún archivo."
	msgTooLarge     = "El archivo supera el tamaño máximo permitido."
	msgUploaded     = "Archivo subido exitosamente"
	msgFileNotFound = "Archivo no encontrado."
)

// Часть формы, которая держится в памяти, остальное multipart сбрасывает во временные файлы
const multipartMemory = 32 << 20

// Запас на границы и заголовки частей: лимит считается по файлу, а не по телу
const multipartOverhead = 1 << 20

type FileHandler struct {
	store    *attachment.Store
	maxBytes int64
	logger   *zap.Logger
}

func NewFileHandler(store *attachment.Store, maxBytes int64, logger *zap.Logger) *FileHandler {
	return &FileHandler{
		store:    store,
		maxBytes: maxBytes,
		logger:   logger,
	}
}

type uploadResponse struct {
	Message  string `json:"message"`
	Filename string `json:"filename"`
}

// Upload POST /upload, файл в поле "file"
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartOverhead)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(w, r, http.StatusRequestEntityTooLarge, msgTooLarge)
			return
		}
		respond.Error(w, r, http.StatusBadRequest, msgNoFile)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		respond.Error(w, r, http.StatusBadRequest, msgNoFile)
		return
	}
	defer file.Close()

	if header.Size > h.maxBytes {
		respond.Error(w, r, http.StatusRequestEntityTooLarge, msgTooLarge)
		return
	}

	name, err := h.store.Save(header.Filename, file)
	if err != nil {
		if errors.Is(err, attachment.ErrInvalidName) {
			respond.Error(w, r, http.StatusBadRequest, msgNoFile)
			return
		}
		h.logger.Error("failed to store upload", zap.String("filename", header.Filename), zap.Error(err))
		respond.Error(w, r, http.StatusInternalServerError, "Error al subir el archivo.")
		return
	}

	h.logger.Info("attachment uploaded", zap.String("filename", name), zap.Int64("size", header.Size))
	respond.JSON(w, r, http.StatusOK, uploadResponse{Message: msgUploaded, Filename: name})
}

// Download GET /download/{filename}
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")

	f, err := h.store.Open(name)
	if err != nil {
		if errors.Is(err, attachment.ErrNotFound) {
			respond.Error(w, r, http.StatusNotFound, msgFileNotFound)
			return
		}
		h.logger.Error("failed to open attachment", zap.String("filename", name), zap.Error(err))
		respond.Error(w, r, http.StatusInternalServerError, "Error al descargar el archivo.")
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		h.logger.Error("failed to stat attachment", zap.String("filename", name), zap.Error(err))
		respond.Error(w, r, http.StatusInternalServerError, "Error al descargar el archivo.")
		return
	}

	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": info.Name()}))
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/akolanti/FormFlow/internal/adapter"
	"github.com/akolanti/FormFlow/internal/adapter/utils"
	"github.com/akolanti/FormFlow/internal/config"
	"github.com/akolanti/FormFlow/internal/sourcetext"
	"github.com/akolanti/FormFlow/internal/workspace"
)

func GetHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// PostUploadHandler godoc
// @Summary      Upload a document for extraction
// @Description  Sends an image or PDF to the extraction backend and starts polling for its result.
// @Tags         Uploads
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Image or PDF, up to 10 MB"
// @Success      202  {object}  api.UploadResponse  "Upload accepted, poll status_url"
// @Failure      400  {object}  api.ErrorResponse   "Missing, empty, oversized or unsupported file"
// @Failure      502  {object}  api.ErrorResponse   "Backend rejected the upload"
// @Router       /uploads [post]
func (h *Handler) PostUploadHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadSize+config.MultipartMemLimit)
	if err := r.ParseMultipartForm(config.MultipartMemLimit); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "File too large or bad request")
		return
	}
	file, header, err := r.FormFile(config.UploadFormField)
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "Could not retrieve file")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, config.MaxUploadSize+1))
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "Could not read file")
		return
	}

	job, err := h.service.Upload(r.Context(), header.Filename, content)
	if err != nil {
		writeServiceError(r.Context(), w, err, config.UploadFailedNotice)
		return
	}
	writeJsonResponse(w, http.StatusAccepted, adapter.ToUploadResponse(job))
}

// GetJobHandler godoc
// @Summary      Get job progress
// @Description  Returns the polling state of an upload: status, synthetic progress and any terminal error.
// @Tags         Jobs
// @Produce      json
// @Param        id   path      string  true  "Form ID"
// @Success      200  {object}  api.JobResponse
// @Failure      404  {object}  api.ErrorResponse  "Job not found"
// @Router       /jobs/{id} [get]
func (h *Handler) GetJobHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	job, err := h.service.Job(r.Context(), utils.GetChiURLParam(r, "id"))
	if err != nil {
		writeServiceError(r.Context(), w, err, "")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToAPIResponse(job))
}

// DeleteJobHandler godoc
// @Summary      Dismiss a job
// @Description  Stops polling and forgets the job. The extraction stays on the backend.
// @Tags         Jobs
// @Param        id   path      string  true  "Form ID"
// @Success      204
// @Failure      404  {object}  api.ErrorResponse  "Job not found"
// @Router       /jobs/{id} [delete]
func (h *Handler) DeleteJobHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	if err := h.service.Dismiss(r.Context(), utils.GetChiURLParam(r, "id")); err != nil {
		writeServiceError(r.Context(), w, err, "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetHistoryHandler godoc
// @Summary      List processed documents
// @Description  Serves the periodically refreshed history. q filters by file name; count is always the total.
// @Tags         History
// @Produce      json
// @Param        q    query     string  false  "File name filter"
// @Success      200  {object}  api.HistoryResponse
// @Router       /history [get]
func (h *Handler) GetHistoryHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	snap := h.service.History(r.Context(), r.URL.Query().Get("q"))
	writeJsonResponse(w, http.StatusOK, adapter.ToHistoryResponse(snap))
}

// GetResultHandler godoc
// @Summary      Get an extraction result
// @Description  Normalizes the backend's structured JSON into the requested view.
// @Tags         Results
// @Produce      json
// @Param        id    path      string  true   "Form ID"
// @Param        view  query     string  false  "table (default), form, json or raw"
// @Success      200  {object}  api.ResultViewResponse
// @Failure      400  {object}  api.ErrorResponse  "Unknown view"
// @Failure      404  {object}  api.ErrorResponse  "Processing not finished"
// @Failure      502  {object}  api.ErrorResponse  "Backend failure"
// @Router       /forms/{id}/results [get]
func (h *Handler) GetResultHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	kind, err := workspace.ParseView(r.URL.Query().Get("view"))
	if err != nil {
		writeServiceError(r.Context(), w, err, "")
		return
	}
	view, err := h.service.View(r.Context(), utils.GetChiURLParam(r, "id"), kind)
	if err != nil {
		writeServiceError(r.Context(), w, err, backendMessage)
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToResultViewResponse(view))
}

// GetExportHandler godoc
// @Summary      Download an extraction
// @Description  Renders the extraction as extraction_<id>.json, .csv or .xlsx.
// @Tags         Results
// @Produce      octet-stream
// @Param        id      path  string  true  "Form ID"
// @Param        format  path  string  true  "json, csv or xlsx"
// @Success      200  {file}    file
// @Failure      400  {object}  api.ErrorResponse  "Unknown format"
// @Failure      404  {object}  api.ErrorResponse  "Processing not finished"
// @Router       /forms/{id}/export/{format} [get]
func (h *Handler) GetExportHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	file, err := h.service.Export(r.Context(), utils.GetChiURLParam(r, "id"), utils.GetChiURLParam(r, "format"))
	if err != nil {
		writeServiceError(r.Context(), w, err, backendMessage)
		return
	}
	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+file.Name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(file.Data); err != nil {
		logRH.Warn("export write failed", "file", file.Name, "error", err)
	}
}

// GetImageHandler godoc
// @Summary      Get the source image
// @Description  Proxies the uploaded document from the backend.
// @Tags         Results
// @Produce      image/png
// @Param        id   path  string  true  "Form ID"
// @Success      200  {file}    file
// @Failure      404  {object}  api.ErrorResponse
// @Router       /forms/{id}/image [get]
func (h *Handler) GetImageHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	data, contentType, err := h.service.Image(r.Context(), utils.GetChiURLParam(r, "id"))
	if err != nil {
		writeServiceError(r.Context(), w, err, backendMessage)
		return
	}
	if contentType == "" {
		contentType = sourcetext.Detect("", data).ContentType
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logRH.Warn("image write failed", "error", err)
	}
}

// DeleteFormHandler godoc
// @Summary      Delete an extraction
// @Description  Deletes the extraction on the backend and drops every local copy.
// @Tags         Results
// @Param        id   path  string  true  "Form ID"
// @Success      204
// @Failure      502  {object}  api.ErrorResponse
// @Router       /forms/{id} [delete]
func (h *Handler) DeleteFormHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	if err := h.service.Delete(r.Context(), utils.GetChiURLParam(r, "id")); err != nil {
		writeServiceError(r.Context(), w, err, "Delete failed. Please try again.")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

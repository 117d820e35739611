package upload

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/filelink/service/internal/middleware"
	"github.com/filelink/service/internal/response"
	"github.com/filelink/service/internal/storage"
)

// multipartMemoryLimit caps how much of the form is buffered in memory;
// larger bodies spill to temp files managed by net/http.
const multipartMemoryLimit = 10 << 20

// Handler holds the upload HTTP endpoints.
type Handler struct {
	svc      *Service
	maxBytes int64
}

// NewHandler creates an upload Handler. maxBytes bounds a whole request body.
func NewHandler(svc *Service, maxBytes int64) *Handler {
	return &Handler{svc: svc, maxBytes: maxBytes}
}

// identityFrom pulls the optional authenticated identity from the context.
func identityFrom(r *http.Request) storage.Identity {
	id := storage.Identity{}
	if v, ok := r.Context().Value(middleware.UserIDKey).(string); ok {
		id.UserID = v
	}
	if v, ok := r.Context().Value(middleware.UsernameKey).(string); ok {
		id.Username = v
	}
	return id
}

type linkData struct {
	Slug           string `json:"slug"`
	URL            string `json:"url"`
	DirectDownload string `json:"directDownload"`
	SizeBytes      int64  `json:"sizeBytes"`
	ExpiresAt      string `json:"expiresAt,omitempty"`
}

// Process godoc
//
//	@Summary		Upload a file
//	@Description	Accepts a multipart upload and returns a shareable link. Works anonymously; with a Bearer token the file lands in the user's namespace and counts against their quota. Optional form fields: bucket (sharedfiles|websitefiles), password, expiry_days.
//	@Tags			upload
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file		formData	file	true	"File to upload"
//	@Param			bucket		formData	string	false	"Target bucket, default sharedfiles"
//	@Param			password	formData	string	false	"Password protection for the link"
//	@Param			expiry_days	formData	int		false	"Days until the link expires; 0 means permanent"
//	@Success		201	{object}	response.Envelope{data=linkData}
//	@Failure		400	{object}	response.Envelope
//	@Failure		403	{object}	response.Envelope
//	@Failure		413	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/upload [post]
func (h *Handler) Process(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartMemoryLimit)
	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		response.BadRequest(w, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, "no file provided")
		return
	}
	defer file.Close()

	bucket := storage.BucketShared
	if b := r.FormValue("bucket"); b != "" {
		parsed, err := storage.ParseBucket(b)
		if err != nil {
			response.BadRequest(w, "bucket must be sharedfiles or websitefiles")
			return
		}
		bucket = parsed
	}

	expiryDays := 0
	if v := r.FormValue("expiry_days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			response.BadRequest(w, "expiry_days must be a non-negative integer")
			return
		}
		expiryDays = n
	}

	result, err := h.svc.Upload(r.Context(), Params{
		Bucket:     bucket,
		Identity:   identityFrom(r),
		Filename:   header.Filename,
		MimeType:   header.Header.Get("Content-Type"),
		Body:       file,
		Password:   r.FormValue("password"),
		ExpiryDays: expiryDays,
	})
	if err != nil {
		writeUploadError(w, err)
		return
	}

	response.Created(w, toLinkData(result))
}

type bulkItem struct {
	Filename string    `json:"filename"`
	Link     *linkData `json:"link,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// Bulk godoc
//
//	@Summary		Upload multiple files
//	@Description	Accepts several files under the files[] field and returns a link per file. Files that fail are reported individually; the rest still succeed.
//	@Tags			upload
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			files[]	formData	file	true	"Files to upload"
//	@Success		200	{object}	response.Envelope{data=[]bulkItem}
//	@Failure		400	{object}	response.Envelope
//	@Failure		413	{object}	response.Envelope
//	@Router			/upload/bulk [post]
func (h *Handler) Bulk(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartMemoryLimit)
	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		response.BadRequest(w, "invalid multipart form")
		return
	}
	if r.MultipartForm == nil || len(r.MultipartForm.File["files[]"]) == 0 {
		response.BadRequest(w, "no files provided")
		return
	}

	identity := identityFrom(r)
	items := make([]bulkItem, 0, len(r.MultipartForm.File["files[]"]))
	for _, header := range r.MultipartForm.File["files[]"] {
		item := bulkItem{Filename: header.Filename}
		f, err := header.Open()
		if err != nil {
			item.Error = "unreadable file part"
			items = append(items, item)
			continue
		}
		result, err := h.svc.Upload(r.Context(), Params{
			Bucket:   storage.BucketShared,
			Identity: identity,
			Filename: header.Filename,
			MimeType: header.Header.Get("Content-Type"),
			Body:     f,
		})
		_ = f.Close()
		if err != nil {
			item.Error = uploadErrorMessage(err)
		} else {
			d := toLinkData(result)
			item.Link = &d
		}
		items = append(items, item)
	}

	response.OK(w, items)
}

func toLinkData(result *Result) linkData {
	d := linkData{
		Slug:           result.Link.Slug,
		URL:            result.URL,
		DirectDownload: result.DirectDownload,
		SizeBytes:      result.Link.SizeBytes,
	}
	if result.Link.ExpiresAt != nil {
		d.ExpiresAt = result.Link.ExpiresAt.Format("2006-01-02T15:04:05Z07:00")
	}
	return d
}

func writeUploadError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrTooLarge):
		response.TooLarge(w, "file exceeds the maximum allowed size")
	case errors.Is(err, ErrQuotaExceeded):
		response.Forbidden(w, "storage quota exceeded")
	default:
		response.Error(w, http.StatusInternalServerError, "upload failed, try again")
	}
}

func uploadErrorMessage(err error) string {
	switch {
	case errors.Is(err, storage.ErrTooLarge):
		return "file exceeds the maximum allowed size"
	case errors.Is(err, ErrQuotaExceeded):
		return "storage quota exceeded"
	default:
		return "upload failed"
	}
}

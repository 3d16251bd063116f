package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"college/internal/board"
)

// BoardHandler serves notices, events and job postings. posted_by defaults
// to the caller's login id.
type BoardHandler struct {
	repo *board.Repository
}

// NewBoardHandler creates the handler.
func NewBoardHandler(repo *board.Repository) *BoardHandler {
	return &BoardHandler{repo: repo}
}

type noticeRequest struct {
	Title     *string `json:"title"`
	Content   *string `json:"content"`
	PostedBy  *string `json:"posted_by"`
	CreatedAt *string `json:"created_at"`
}

type eventRequest struct {
	Title    *string `json:"title"`
	Content  *string `json:"content"`
	LastDate *string `json:"last_date"`
	PostedBy *string `json:"posted_by"`
}

type jobRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Company     *string `json:"company"`
	ApplyLink   *string `json:"apply_link"`
	PostedBy    *string `json:"posted_by"`
}

// ListNotices returns every notice.
func (h *BoardHandler) ListNotices(c *gin.Context) {
	notices, err := h.repo.ListNotices(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, notices)
}

// AddNotice posts a notice.
func (h *BoardHandler) AddNotice(c *gin.Context) {
	var req noticeRequest
	if !bindBody(c, &req) {
		return
	}
	if nonEmpty(req.Title) == nil || nonEmpty(req.Content) == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}
	createdAt, err := timestampPtr("created_at", req.CreatedAt)
	if err != nil {
		respondError(c, err)
		return
	}

	n := board.Notice{Title: *req.Title, Content: *req.Content, PostedBy: postedBy(c, req.PostedBy)}
	if createdAt != nil {
		n.CreatedAt = *createdAt
	}
	id, err := h.repo.AddNotice(c.Request.Context(), n)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Notice added", "notice_id": id})
}

// UpdateNotice applies a partial update.
func (h *BoardHandler) UpdateNotice(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req noticeRequest
	if !bindBody(c, &req) {
		return
	}
	createdAt, err := timestampPtr("created_at", req.CreatedAt)
	if err != nil {
		respondError(c, err)
		return
	}
	n, err := h.repo.UpdateNotice(c.Request.Context(), id, board.NoticePatch{
		Title: req.Title, Content: req.Content, PostedBy: nonEmpty(req.PostedBy), CreatedAt: createdAt,
	})
	updated(c, "Notice", n, err)
}

// DeleteNotice removes a notice.
func (h *BoardHandler) DeleteNotice(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	n, err := h.repo.DeleteNotice(c.Request.Context(), id)
	deleted(c, "Notice", n, err)
}

// ListEvents returns every event.
func (h *BoardHandler) ListEvents(c *gin.Context) {
	events, err := h.repo.ListEvents(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

// AddEvent posts an event.
func (h *BoardHandler) AddEvent(c *gin.Context) {
	var req eventRequest
	if !bindBody(c, &req) {
		return
	}
	if nonEmpty(req.Title) == nil || nonEmpty(req.Content) == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing fields"})
		return
	}
	lastDate, err := timestampPtr("last_date", req.LastDate)
	if err != nil {
		respondError(c, err)
		return
	}

	e := board.Event{Title: *req.Title, Content: *req.Content, PostedBy: postedBy(c, req.PostedBy)}
	if lastDate != nil {
		e.LastDate = *lastDate
	}
	id, err := h.repo.AddEvent(c.Request.Context(), e)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Event added", "event_id": id})
}

// UpdateEvent applies a partial update.
func (h *BoardHandler) UpdateEvent(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req eventRequest
	if !bindBody(c, &req) {
		return
	}
	lastDate, err := timestampPtr("last_date", req.LastDate)
	if err != nil {
		respondError(c, err)
		return
	}
	n, err := h.repo.UpdateEvent(c.Request.Context(), id, board.EventPatch{
		Title: req.Title, Content: req.Content, LastDate: lastDate, PostedBy: nonEmpty(req.PostedBy),
	})
	updated(c, "Event", n, err)
}

// DeleteEvent removes an event.
func (h *BoardHandler) DeleteEvent(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	n, err := h.repo.DeleteEvent(c.Request.Context(), id)
	deleted(c, "Event", n, err)
}

// ListJobs returns every job posting.
func (h *BoardHandler) ListJobs(c *gin.Context) {
	jobs, err := h.repo.ListJobs(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, jobs)
}

// AddJob posts a job.
func (h *BoardHandler) AddJob(c *gin.Context) {
	var req jobRequest
	if !bindBody(c, &req) {
		return
	}
	if nonEmpty(req.Title) == nil || nonEmpty(req.Description) == nil || nonEmpty(req.Company) == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing fields"})
		return
	}

	j := board.Job{Title: *req.Title, Description: *req.Description, Company: *req.Company, PostedBy: postedBy(c, req.PostedBy)}
	if req.ApplyLink != nil {
		j.ApplyLink = *req.ApplyLink
	}
	id, err := h.repo.AddJob(c.Request.Context(), j)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Job added", "job_id": id})
}

// UpdateJob applies a partial update.
func (h *BoardHandler) UpdateJob(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req jobRequest
	if !bindBody(c, &req) {
		return
	}
	n, err := h.repo.UpdateJob(c.Request.Context(), id, board.JobPatch{
		Title: req.Title, Description: req.Description, Company: req.Company,
		ApplyLink: req.ApplyLink, PostedBy: nonEmpty(req.PostedBy),
	})
	updated(c, "Job", n, err)
}

// DeleteJob removes a job posting.
func (h *BoardHandler) DeleteJob(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	n, err := h.repo.DeleteJob(c.Request.Context(), id)
	deleted(c, "Job", n, err)
}

func postedBy(c *gin.Context, supplied *string) string {
	if s := nonEmpty(supplied); s != nil {
		return *s
	}
	return callerID(c)
}

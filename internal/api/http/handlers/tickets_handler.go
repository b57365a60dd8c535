package handlers

import (
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/TahjibNil75/trackIT/internal/api/dto"
	"github.com/TahjibNil75/trackIT/internal/domain"
	"github.com/TahjibNil75/trackIT/internal/service"
	"github.com/TahjibNil75/trackIT/internal/storage"
	apperrors "github.com/TahjibNil75/trackIT/pkg/util/errorutil"
)

const uploadField = "files"

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /tickets. Accepts JSON or multipart form data with files.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req dto.CreateTicketRequest
	var files []storage.File
	if isMultipart(c) {
		req = dto.CreateTicketRequest{
			Subject:     c.FormValue("subject"),
			Description: c.FormValue("description"),
			Priority:    domain.TicketPriority(c.FormValue("priority")),
			IssueType:   domain.IssueType(c.FormValue("types_of_issue")),
			AssignedTo:  optionalString(c.FormValue("assigned_to")),
		}
		var closeFiles func()
		files, closeFiles, err = formFiles(c)
		if err != nil {
			return err
		}
		defer closeFiles()
	} else if err := parseBody(c, &req); err != nil {
		return err
	}

	detail, err := h.service.CreateTicket(c.UserContext(), user, service.TicketCreateInput{
		Subject:     req.Subject,
		Description: req.Description,
		Priority:    req.Priority,
		IssueType:   req.IssueType,
		AssignedTo:  req.AssignedTo,
	}, files)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketDetail(detail)})
}

// ListMine GET /tickets/mine.
func (h *TicketsHandler) ListMine(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	tickets, err := h.service.ListMyTickets(c.UserContext(), user)
	if err != nil {
		return err
	}
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketResponse(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// History GET /tickets/history.
func (h *TicketsHandler) History(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	query := service.HistoryQuery{
		Page:      parseInt(c.Query("page"), 1),
		ChangedBy: optionalString(c.Query("changed_by")),
		TicketID:  optionalString(c.Query("ticket_id")),
	}
	if status := c.Query("status"); status != "" {
		s := domain.TicketStatus(status)
		query.Status = &s
	}
	if priority := c.Query("priority"); priority != "" {
		p := domain.TicketPriority(priority)
		query.Priority = &p
	}

	page, err := h.service.ListHistory(c.UserContext(), user, query)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.HistoryPageResponse{
		Items:      historyResponses(page.Items),
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	}})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	detail, err := h.service.GetTicket(c.UserContext(), user, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(detail)})
}

// UpdateTicket PATCH /tickets/:id. Multipart requests may add files.
func (h *TicketsHandler) UpdateTicket(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var update domain.TicketUpdate
	var files []storage.File
	if isMultipart(c) {
		update = formUpdate(c)
		var closeFiles func()
		files, closeFiles, err = formFiles(c)
		if err != nil {
			return err
		}
		defer closeFiles()
	} else {
		var req dto.UpdateTicketRequest
		if err := parseBody(c, &req); err != nil {
			return err
		}
		update = req.ToUpdate()
	}

	detail, err := h.service.UpdateTicket(c.UserContext(), user, c.Params("id"), update, files)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(detail)})
}

// UpdateStatus PATCH /tickets/:id/status.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.StatusUpdateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	detail, err := h.service.UpdateStatus(c.UserContext(), user, c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(detail)})
}

// UpdatePriority PATCH /tickets/:id/priority.
func (h *TicketsHandler) UpdatePriority(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.PriorityUpdateRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	detail, err := h.service.UpdatePriority(c.UserContext(), user, c.Params("id"), req.Priority)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(detail)})
}

// AssignTicket PUT /tickets/:id/assign.
func (h *TicketsHandler) AssignTicket(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	var req dto.AssignTicketRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.AssignedTo) == "" {
		return apperrors.NewValidationError("assigned_to required", map[string]any{"assigned_to": "required"})
	}
	ticket, err := h.service.AssignTicket(c.UserContext(), user, c.Params("id"), req.AssignedTo)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketResponse(ticket)})
}

// DeleteTicket DELETE /tickets/:id.
func (h *TicketsHandler) DeleteTicket(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteTicket(c.UserContext(), user, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// DeleteAttachment DELETE /tickets/attachments/:id.
func (h *TicketsHandler) DeleteAttachment(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteAttachment(c.UserContext(), user, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm)
}

// formFiles opens every uploaded part under the files key. The returned func closes them.
func formFiles(c *fiber.Ctx) ([]storage.File, func(), error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, func() {}, apperrors.NewBadRequest("INVALID_PAYLOAD", "invalid multipart form")
	}

	headers := form.File[uploadField]
	files := make([]storage.File, 0, len(headers))
	opened := make([]multipart.File, 0, len(headers))
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}
	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			closeAll()
			return nil, func() {}, apperrors.NewBadRequest("INVALID_PAYLOAD", "unable to read uploaded file")
		}
		opened = append(opened, f)
		files = append(files, storage.File{
			Name:        header.Filename,
			ContentType: header.Header.Get(fiber.HeaderContentType),
			Size:        header.Size,
			Body:        f,
		})
	}
	return files, closeAll, nil
}

func formUpdate(c *fiber.Ctx) domain.TicketUpdate {
	var update domain.TicketUpdate
	if val := c.FormValue("subject"); val != "" {
		update.Subject = &val
	}
	if val := c.FormValue("description"); val != "" {
		update.Description = &val
	}
	if val := c.FormValue("types_of_issue"); val != "" {
		issueType := domain.IssueType(val)
		update.IssueType = &issueType
	}
	if val := c.FormValue("priority"); val != "" {
		priority := domain.TicketPriority(val)
		update.Priority = &priority
	}
	if val := c.FormValue("status"); val != "" {
		status := domain.TicketStatus(val)
		update.Status = &status
	}
	update.AssignedTo = optionalString(c.FormValue("assigned_to"))
	return update
}

func ticketDetail(detail *service.TicketDetail) dto.TicketDetailResponse {
	return dto.TicketDetailResponse{
		TicketResponse: ticketResponse(&detail.Ticket),
		Comments:       commentResponses(detail.Comments),
		Attachments:    attachmentResponses(detail.Attachments),
	}
}

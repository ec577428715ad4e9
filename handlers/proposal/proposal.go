package proposal

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/andikahmadi/sikp-backend/handlers"
	"github.com/andikahmadi/sikp-backend/services"
	"github.com/andikahmadi/sikp-backend/utils/middleware"
	"github.com/andikahmadi/sikp-backend/utils/response"
)

// ProposalHandler exposes the proposal workflow over HTTP
type ProposalHandler struct {
	proposals *services.ProposalService
	documents *services.DocumentService
	activity  *services.ActivityService
}

// NewProposalHandler creates a new proposal handler
func NewProposalHandler(proposals *services.ProposalService, documents *services.DocumentService, activity *services.ActivityService) *ProposalHandler {
	return &ProposalHandler{proposals: proposals, documents: documents, activity: activity}
}

// Submit creates or resubmits the team's proposal
func (h *ProposalHandler) Submit(c *fiber.Ctx) error {
	sess, ok := middleware.GetSession(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req services.SubmitProposalInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	proposal, err := h.proposals.Submit(c.Context(), sess, req)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Created(c, proposal)
}

// List returns all proposals for the review dashboard
func (h *ProposalHandler) List(c *fiber.Ctx) error {
	proposals, err := h.proposals.ListAll(c.Context())
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Success(c, proposals)
}

// Get returns the proposal detail aggregate
func (h *ProposalHandler) Get(c *fiber.Ctx) error {
	proposalID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid proposal ID")
	}

	detail, err := h.proposals.GetDetail(c.Context(), proposalID)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Success(c, detail)
}

// GetByTeam returns a team's current proposal
func (h *ProposalHandler) GetByTeam(c *fiber.Ctx) error {
	teamID, err := uuid.Parse(c.Params("teamId"))
	if err != nil {
		return response.BadRequest(c, "Invalid team ID")
	}

	proposal, err := h.proposals.GetByTeam(c.Context(), teamID)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Success(c, proposal)
}

// Approve moves a submitted proposal to approved and activates the team's
// registrations
func (h *ProposalHandler) Approve(c *fiber.Ctx) error {
	sess, ok := middleware.GetSession(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	proposalID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid proposal ID")
	}

	proposal, err := h.proposals.Approve(c.Context(), sess, proposalID)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.SuccessWithMessage(c, "Proposal approved", proposal)
}

// RejectRequest carries the mandatory rejection reason
type RejectRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// Reject moves a submitted proposal back to the team with a reason
func (h *ProposalHandler) Reject(c *fiber.Ctx) error {
	sess, ok := middleware.GetSession(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	proposalID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid proposal ID")
	}

	var req RejectRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	proposal, err := h.proposals.Reject(c.Context(), sess, proposalID, req.Reason)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.SuccessWithMessage(c, "Proposal rejected", proposal)
}

// MarkReviewed flags a submitted proposal as under review
func (h *ProposalHandler) MarkReviewed(c *fiber.Ctx) error {
	sess, ok := middleware.GetSession(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	proposalID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid proposal ID")
	}

	proposal, err := h.proposals.MarkReviewed(c.Context(), sess, proposalID)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.SuccessWithMessage(c, "Proposal marked as reviewed", proposal)
}

// UploadDocument attaches a PDF to the proposal
func (h *ProposalHandler) UploadDocument(c *fiber.Ctx) error {
	sess, ok := middleware.GetSession(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	proposalID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid proposal ID")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "Document file is required")
	}

	document, err := h.documents.UploadProposalDocument(c.Context(), sess, proposalID, file)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Created(c, document)
}

// ListDocuments returns a proposal's documents
func (h *ProposalHandler) ListDocuments(c *fiber.Ctx) error {
	proposalID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid proposal ID")
	}

	documents, err := h.documents.ListProposalDocuments(c.Context(), proposalID)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Success(c, documents)
}

// Feedback returns the proposal's activity feed
func (h *ProposalHandler) Feedback(c *fiber.Ctx) error {
	proposalID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "Invalid proposal ID")
	}

	entries, err := h.activity.ListForProposal(c.Context(), proposalID)
	if err != nil {
		return handlers.ServiceError(c, err)
	}
	return response.Success(c, entries)
}

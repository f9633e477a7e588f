package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ErlanBelekov/healthcover-api/internal/domain"
	"github.com/ErlanBelekov/healthcover-api/internal/usecase"
	"github.com/gin-gonic/gin"
)

type policyUsecaser interface {
	AddPolicy(ctx context.Context, input usecase.AddPolicyInput) (*domain.Policy, error)
	ListPolicies(ctx context.Context, userID int64) ([]*domain.Policy, error)
}

type PolicyHandler struct {
	policyUsecase policyUsecaser
	logger        *slog.Logger
}

func NewPolicyHandler(policyUsecase policyUsecaser, logger *slog.Logger) *PolicyHandler {
	return &PolicyHandler{
		policyUsecase: policyUsecase,
		logger:        logger.With("component", "policy_handler"),
	}
}

type addPolicyRequest struct {
	UserID        int64  `json:"userId"        binding:"required"`
	Provider      string `json:"provider"      binding:"required"`
	PolicyNumber  string `json:"policyNumber"  binding:"required"`
	CoverageStart string `json:"coverageStart" binding:"required"`
	CoverageEnd   string `json:"coverageEnd"   binding:"required"`
}

type policyResponse struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"userId"`
	Provider      string    `json:"provider"`
	PolicyNumber  string    `json:"policyNumber"`
	CoverageStart string    `json:"coverageStart"`
	CoverageEnd   string    `json:"coverageEnd"`
	CreatedAt     time.Time `json:"createdAt"`
}

type addPolicyResponse struct {
	Message string         `json:"message"`
	Policy  policyResponse `json:"policy"`
}

func toPolicyResponse(p *domain.Policy) policyResponse {
	return policyResponse{
		ID:            p.ID,
		UserID:        p.UserID,
		Provider:      p.Provider,
		PolicyNumber:  p.PolicyNumber,
		CoverageStart: p.CoverageStart.Format(time.DateOnly),
		CoverageEnd:   p.CoverageEnd.Format(time.DateOnly),
		CreatedAt:     p.CreatedAt,
	}
}

// parseDate accepts a calendar date or a full RFC 3339 timestamp.
func parseDate(field, value string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, value); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%s must be a date in YYYY-MM-DD format", field)
}

// POST /insurance
func (h *PolicyHandler) Create(c *gin.Context) {
	var req addPolicyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	start, err := parseDate("coverageStart", req.CoverageStart)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	end, err := parseDate("coverageEnd", req.CoverageEnd)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	policy, err := h.policyUsecase.AddPolicy(c.Request.Context(), usecase.AddPolicyInput{
		UserID:        req.UserID,
		Provider:      req.Provider,
		PolicyNumber:  req.PolicyNumber,
		CoverageStart: start,
		CoverageEnd:   end,
	})
	if err != nil {
		respondError(c, h.logger, "add policy", err)
		return
	}

	c.JSON(http.StatusOK, addPolicyResponse{
		Message: "Insurance added successfully",
		Policy:  toPolicyResponse(policy),
	})
}

// GET /insurance/:userId
func (h *PolicyHandler) ListByUser(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId must be an integer"})
		return
	}

	policies, err := h.policyUsecase.ListPolicies(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, "list policies", err)
		return
	}

	items := make([]policyResponse, 0, len(policies))
	for _, p := range policies {
		items = append(items, toPolicyResponse(p))
	}
	c.JSON(http.StatusOK, items)
}

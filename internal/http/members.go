package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shelfward/shelfward/internal/auth"
	"github.com/shelfward/shelfward/internal/database/members"
)

// MembersController exposes member management.
type MembersController struct {
	members *members.Repository
}

// NewMembersController creates a new members controller.
func NewMembersController(repo *members.Repository) *MembersController {
	return &MembersController{members: repo}
}

type createMemberRequest struct {
	FirstName     string `json:"first_name" binding:"required"`
	MiddleName    string `json:"middle_name"`
	LastName      string `json:"last_name" binding:"required"`
	ContactNumber string `json:"contact_number"`
}

// CreateMember enrolls a new borrower.
func (mc *MembersController) CreateMember(c *gin.Context) {
	var req createMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	member, err := mc.members.CreateMember(auth.LibrarianID(c), members.NewMember{
		FirstName:     req.FirstName,
		MiddleName:    req.MiddleName,
		LastName:      req.LastName,
		ContactNumber: req.ContactNumber,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, member)
}

// GetMember returns a single active member.
func (mc *MembersController) GetMember(c *gin.Context) {
	memberID, ok := idParam(c, "id")
	if !ok {
		return
	}
	member, err := mc.members.GetMember(auth.LibrarianID(c), memberID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, member)
}

type updateMemberRequest struct {
	FirstName     *string `json:"first_name"`
	MiddleName    *string `json:"middle_name"`
	LastName      *string `json:"last_name"`
	ContactNumber *string `json:"contact_number"`
}

// UpdateMember applies a partial edit to a member.
func (mc *MembersController) UpdateMember(c *gin.Context) {
	memberID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req updateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	member, err := mc.members.UpdateMember(auth.LibrarianID(c), memberID, members.MemberUpdate{
		FirstName:     req.FirstName,
		MiddleName:    req.MiddleName,
		LastName:      req.LastName,
		ContactNumber: req.ContactNumber,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, member)
}

// ListMembers returns active members ordered by name.
func (mc *MembersController) ListMembers(c *gin.Context) {
	list, err := mc.members.ListActive(auth.LibrarianID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": list, "count": len(list)})
}

// DeleteMember archives a member.
func (mc *MembersController) DeleteMember(c *gin.Context) {
	memberID, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := mc.members.SoftDeleteMember(auth.LibrarianID(c), memberID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "member deleted"})
}

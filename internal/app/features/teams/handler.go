// internal/app/features/teams/handler.go

// Package teams implements team management for business accounts: create,
// rename, delete, and member administration. A user belongs to at most one
// team, mirrored onto the user record so request-time checks stay cheap.
package teams

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/tessergate/chatforge/internal/app/features/shared"
	"github.com/tessergate/chatforge/internal/app/policy/teampolicy"
	teamstore "github.com/tessergate/chatforge/internal/app/store/teams"
	userstore "github.com/tessergate/chatforge/internal/app/store/users"
	"github.com/tessergate/chatforge/internal/app/system/apperr"
	"github.com/tessergate/chatforge/internal/app/system/auth"
	"github.com/tessergate/chatforge/internal/app/system/authz"
	"github.com/tessergate/chatforge/internal/app/system/httpjson"
	"github.com/tessergate/chatforge/internal/app/system/plans"
	"github.com/tessergate/chatforge/internal/app/system/timeouts"
	"github.com/tessergate/chatforge/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler holds dependencies for the teams feature.
type Handler struct {
	Teams *teamstore.Store
	Users *userstore.Store
	Log   *zap.Logger
}

// NewHandler constructs a teams Handler.
func NewHandler(teams *teamstore.Store, users *userstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Teams: teams, Users: users, Log: logger}
}

type createTeamRequest struct {
	Name string `json:"name"`
}

// HandleCreate handles POST /teams. Business accounts only; the creator
// becomes the sole owner member and is mirrored onto the team.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Fail(w, apperr.Authentication("authentication required"))
		return
	}
	if !authz.IsBusiness(r) {
		httpjson.Fail(w, apperr.Authorization("only business accounts can create teams"))
		return
	}
	if u.TeamID != nil {
		httpjson.Fail(w, apperr.Conflict("user already belongs to a team"))
		return
	}

	var req createTeamRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		httpjson.Fail(w, err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		httpjson.Fail(w, apperr.Validation("name is required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	team, err := h.Teams.Create(ctx, req.Name, u.ID)
	if err != nil {
		if errors.Is(err, teamstore.ErrDuplicateTeamName) {
			httpjson.Fail(w, apperr.Conflict(err.Error()))
			return
		}
		h.Log.Error("teams: create failed", zap.Error(err))
		httpjson.Fail(w, apperr.Internal("could not create team", err))
		return
	}
	if err := h.Users.SetTeam(ctx, u.ID, team.ID); err != nil {
		h.Log.Error("teams: mirror owner membership failed",
			zap.String("team_id", team.ID.Hex()), zap.Error(err))
	}
	httpjson.Created(w, team)
}

// ServeList handles GET /teams: the team the caller belongs to, if any.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Fail(w, apperr.Authentication("authentication required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	out := []models.Team{}
	if u.TeamID != nil {
		team, err := h.Teams.GetByID(ctx, *u.TeamID)
		if err == nil {
			out = append(out, team)
		} else if !errors.Is(err, mongo.ErrNoDocuments) {
			h.Log.Error("teams: list lookup failed", zap.Error(err))
			httpjson.Fail(w, apperr.Internal("could not list teams", err))
			return
		}
	}
	httpjson.OK(w, out)
}

// ServeView handles GET /teams/{teamID}. Members only.
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Fail(w, apperr.Authentication("authentication required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	team, err := h.loadTeam(ctx, w, r)
	if err != nil {
		return
	}
	if team.MemberRole(u.ID) == "" {
		httpjson.Fail(w, apperr.Authorization("not a member of this team"))
		return
	}
	httpjson.OK(w, team)
}

// HandleRename handles PUT /teams/{teamID}. Owner only.
func (h *Handler) HandleRename(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Fail(w, apperr.Authentication("authentication required"))
		return
	}

	var req createTeamRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		httpjson.Fail(w, err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		httpjson.Fail(w, apperr.Validation("name is required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	team, err := h.loadTeam(ctx, w, r)
	if err != nil {
		return
	}
	if !teampolicy.CanAdminister(team, u.ID) {
		httpjson.Fail(w, apperr.Authorization("only the team owner can rename the team"))
		return
	}
	if err := h.Teams.Rename(ctx, team.ID, req.Name); err != nil {
		if errors.Is(err, teamstore.ErrDuplicateTeamName) {
			httpjson.Fail(w, apperr.Conflict(err.Error()))
			return
		}
		h.Log.Error("teams: rename failed", zap.Error(err))
		httpjson.Fail(w, apperr.Internal("could not rename team", err))
		return
	}
	team.Name = req.Name
	httpjson.OK(w, team)
}

// HandleDelete handles DELETE /teams/{teamID}. Owner only; all member
// records lose their team reference.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Fail(w, apperr.Authentication("authentication required"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	team, err := h.loadTeam(ctx, w, r)
	if err != nil {
		return
	}
	if !teampolicy.CanAdminister(team, u.ID) {
		httpjson.Fail(w, apperr.Authorization("only the team owner can delete the team"))
		return
	}
	if _, err := h.Users.ClearTeamForAll(ctx, team.ID); err != nil {
		h.Log.Error("teams: clear memberships failed", zap.Error(err))
		httpjson.Fail(w, apperr.Internal("could not delete team", err))
		return
	}
	if _, err := h.Teams.Delete(ctx, team.ID); err != nil {
		h.Log.Error("teams: delete failed", zap.Error(err))
		httpjson.Fail(w, apperr.Internal("could not delete team", err))
		return
	}
	httpjson.OK(w, map[string]string{"message": "team deleted"})
}

type addMemberRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// HandleAddMember handles POST /teams/{teamID}/members. Owner or admin.
func (h *Handler) HandleAddMember(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Fail(w, apperr.Authentication("authentication required"))
		return
	}

	var req addMemberRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		httpjson.Fail(w, err)
		return
	}
	if req.Role == "" {
		req.Role = models.RoleMember
	}
	if !teampolicy.AssignableRole(req.Role) {
		httpjson.Fail(w, apperr.Validation("role must be admin or member"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	team, err := h.loadTeam(ctx, w, r)
	if err != nil {
		return
	}
	if !teampolicy.CanManageMembers(team, u.ID) {
		httpjson.Fail(w, apperr.Authorization("only team owners and admins can add members"))
		return
	}

	target, err := h.Users.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		httpjson.Fail(w, apperr.NotFound("no user with this email"))
		return
	}
	if target.TeamID != nil {
		httpjson.Fail(w, apperr.Conflict("user already belongs to a team"))
		return
	}

	// The member limit comes from the team owner's plan, not the caller's.
	owner, err := h.Users.GetByID(ctx, team.OwnerID)
	if err != nil {
		httpjson.Fail(w, apperr.Internal("could not resolve team owner", err))
		return
	}
	if limit := plans.Limits(owner.Plan).MaxTeamMembers; len(team.Members) >= limit {
		httpjson.Fail(w, apperr.Authorization("team member limit reached for the current plan"))
		return
	}

	if err := h.Teams.AddMember(ctx, team.ID, target.ID, req.Role); err != nil {
		if errors.Is(err, teamstore.ErrAlreadyMember) {
			httpjson.Fail(w, apperr.Conflict(err.Error()))
			return
		}
		h.Log.Error("teams: add member failed", zap.Error(err))
		httpjson.Fail(w, apperr.Internal("could not add member", err))
		return
	}
	if err := h.Users.SetTeam(ctx, target.ID, team.ID); err != nil {
		h.Log.Error("teams: mirror membership failed",
			zap.String("user_id", target.ID.Hex()), zap.Error(err))
	}
	httpjson.Created(w, map[string]string{
		"user_id": target.ID.Hex(),
		"role":    req.Role,
	})
}

// HandleRemoveMember handles DELETE /teams/{teamID}/members/{userID}.
//
// The team is loaded before any caller check so a missing team is always a
// 404, and removing the owner entry is rejected before the caller's own
// standing is evaluated.
func (h *Handler) HandleRemoveMember(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Fail(w, apperr.Authentication("authentication required"))
		return
	}
	targetID, err := shared.URLObjectID(r, "userID")
	if err != nil {
		httpjson.Fail(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	team, err := h.loadTeam(ctx, w, r)
	if err != nil {
		return
	}
	if teampolicy.IsOwnerEntry(team, targetID) {
		httpjson.Fail(w, apperr.Validation("the team owner cannot be removed"))
		return
	}
	if !teampolicy.CanManageMembers(team, u.ID) {
		httpjson.Fail(w, apperr.Authorization("only team owners and admins can remove members"))
		return
	}
	if err := h.Teams.RemoveMember(ctx, team.ID, targetID); err != nil {
		if errors.Is(err, teamstore.ErrMemberNotFound) {
			httpjson.Fail(w, apperr.NotFound(err.Error()))
			return
		}
		h.Log.Error("teams: remove member failed", zap.Error(err))
		httpjson.Fail(w, apperr.Internal("could not remove member", err))
		return
	}
	if err := h.Users.ClearTeam(ctx, targetID, team.ID); err != nil {
		h.Log.Error("teams: clear membership failed",
			zap.String("user_id", targetID.Hex()), zap.Error(err))
	}
	httpjson.OK(w, map[string]string{"message": "member removed"})
}

type setRoleRequest struct {
	Role string `json:"role"`
}

// HandleSetMemberRole handles PUT /teams/{teamID}/members/{userID}/role.
// Owner only; the owner entry itself can never be re-roled.
func (h *Handler) HandleSetMemberRole(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		httpjson.Fail(w, apperr.Authentication("authentication required"))
		return
	}
	targetID, err := shared.URLObjectID(r, "userID")
	if err != nil {
		httpjson.Fail(w, err)
		return
	}

	var req setRoleRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		httpjson.Fail(w, err)
		return
	}
	if !teampolicy.AssignableRole(req.Role) {
		httpjson.Fail(w, apperr.Validation("role must be admin or member"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	team, err := h.loadTeam(ctx, w, r)
	if err != nil {
		return
	}
	if teampolicy.IsOwnerEntry(team, targetID) {
		httpjson.Fail(w, apperr.Validation("the team owner's role cannot be changed"))
		return
	}
	if !teampolicy.CanAdminister(team, u.ID) {
		httpjson.Fail(w, apperr.Authorization("only the team owner can change member roles"))
		return
	}
	if err := h.Teams.SetMemberRole(ctx, team.ID, targetID, req.Role); err != nil {
		if errors.Is(err, teamstore.ErrMemberNotFound) {
			httpjson.Fail(w, apperr.NotFound(err.Error()))
			return
		}
		h.Log.Error("teams: set role failed", zap.Error(err))
		httpjson.Fail(w, apperr.Internal("could not change member role", err))
		return
	}
	httpjson.OK(w, map[string]string{
		"user_id": targetID.Hex(),
		"role":    req.Role,
	})
}

// loadTeam resolves the {teamID} URL parameter. On failure it writes the
// response itself and returns a non-nil error as the signal to stop.
func (h *Handler) loadTeam(ctx context.Context, w http.ResponseWriter, r *http.Request) (models.Team, error) {
	id, err := shared.URLObjectID(r, "teamID")
	if err != nil {
		httpjson.Fail(w, err)
		return models.Team{}, err
	}
	team, err := h.Teams.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Fail(w, apperr.NotFound("team not found"))
			return models.Team{}, err
		}
		h.Log.Error("teams: lookup failed", zap.Error(err))
		httpjson.Fail(w, apperr.Internal("could not load team", err))
		return models.Team{}, err
	}
	return team, nil
}

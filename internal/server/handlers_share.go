package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/jonathan/recipe-share/internal/server/middleware"
	"github.com/jonathan/recipe-share/internal/share"
)

// legalNotice accompanies every preview response.
const legalNotice = "These recipes were rewritten into original wording before sharing. " +
	"This link is private, single-use, and expires 15 minutes after creation."

// ShareRequest is the body of POST /recipes/share.
type ShareRequest struct {
	RecipeIDs []string `json:"recipe_ids" validate:"required,min=1,dive,required"`
}

// PreviewResponse is the body of GET /recipes/shared/{token}. It carries
// metadata only; recipe content is never exposed before redemption.
type PreviewResponse struct {
	RecipeCount int       `json:"recipe_count"`
	ExpiresAt   time.Time `json:"expires_at"`
	LegalNotice string    `json:"legal_notice"`
}

// handleCreateShare creates SafeRecipes for the caller's recipes and issues
// a single-use share token.
func (s *Server) handleCreateShare(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Sign in required")
		return
	}

	if !s.limiter.Allow(userID) {
		s.errorResponse(w, http.StatusTooManyRequests, "Too many share requests; try again shortly")
		return
	}

	var req ShareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "recipe_ids is required")
		return
	}

	result, err := s.pipeline.CreateShare(r.Context(), userID, req.RecipeIDs)
	if err != nil {
		log.Printf("create share failed for user %s: %v", userID, err)
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, result)
}

// handlePreviewShare returns minimal metadata for a share link. Previewing
// never consumes the token and requires no authentication.
func (s *Server) handlePreviewShare(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")

	info, err := s.shareTokens.Preview(r.Context(), token)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, PreviewResponse{
		RecipeCount: info.RecipeCount,
		ExpiresAt:   info.ExpiresAt,
		LegalNotice: legalNotice,
	})
}

// handleRedeemShare atomically consumes a share token and copies the shared
// recipes into the caller's library.
func (s *Server) handleRedeemShare(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Sign in required")
		return
	}

	token := r.PathValue("token")

	result, err := s.pipeline.Redeem(r.Context(), token, userID)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, result)
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// errorResponse writes a JSON error body with the given status.
func (s *Server) errorResponse(w http.ResponseWriter, status int, detail string) {
	s.jsonResponse(w, status, map[string]string{"detail": detail})
}

// jsonResponse writes v as a JSON body with the given status.
func (s *Server) jsonResponse(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

// pipelineRunner is the subset of the share pipeline the handlers use.
// An interface so handler tests can stub it.
type pipelineRunner interface {
	CreateShare(ctx context.Context, ownerID string, recipeIDs []string) (*share.CreateShareResult, error)
	Redeem(ctx context.Context, token, requesterID string) (*share.RedeemResult, error)
}

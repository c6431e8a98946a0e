package server

import (
	"log"
	"net/http"

	"github.com/dyike/QuantumGPT/models"
)

// Authentication is simulated: fixed credentials, no sessions.
const (
	demoEmail    = "user@example.com"
	demoPassword = "password123"
	demoUserID   = "user_123"
	takenEmail   = "exists@example.com"
)

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decode(r, &req); err != nil {
		writeErr(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		writeErr(w, err)
		return
	}
	log.Printf("[Auth] simulated login for %s", req.Email)
	if req.Email != demoEmail || req.Password != demoPassword {
		writeError(w, http.StatusUnauthorized, "Invalid email or password (simulated)")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Login successful (simulated)",
		"user":    models.User{ID: demoUserID, Name: "Test User", Email: req.Email},
	})
}

func (s *Server) signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := decode(r, &req); err != nil {
		writeErr(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		writeErr(w, err)
		return
	}
	log.Printf("[Auth] simulated signup for %s", req.Email)
	if req.Email == takenEmail {
		writeError(w, http.StatusConflict, "User already exists (simulated)")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Signup successful (simulated)",
		"userId":  demoUserID,
		"name":    req.Name,
		"email":   req.Email,
	})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	log.Printf("[Auth] simulated logout")
	writeJSON(w, http.StatusOK, map[string]any{"message": "Logout successful (simulated)"})
}

func (s *Server) getProfile(w http.ResponseWriter, r *http.Request) {
	log.Printf("[Auth] simulated profile fetch for %s", demoUserID)
	writeJSON(w, http.StatusOK, models.User{ID: demoUserID, Name: "Quantum User (Simulated)", Email: demoEmail})
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	var req models.ProfileUpdate
	if err := decode(r, &req); err != nil {
		writeErr(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		writeErr(w, err)
		return
	}
	log.Printf("[Auth] simulated profile update for %s", demoUserID)
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Profile updated successfully (simulated)",
		"data":    req,
	})
}

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"campium/db"
	"campium/globals"
	"campium/middleware"
	"campium/models"
	"campium/rdx"
	"campium/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 12 * time.Hour

type registerRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	Department string `json:"department,omitempty"`
	Year       int    `json:"year,omitempty"`
}

// POST /api/auth/register
// Self-service signup covers participants and organizers; admins are seeded
// out of band.
func Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Name, email and password are required")
		return
	}
	role := req.Role
	if role == "" {
		role = models.RoleParticipant
	}
	if role != models.RoleParticipant && role != models.RoleOrganizer {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid role")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Failed to hash password for %s: %v", req.Email, err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	user := models.User{
		UserID:           utils.GenerateID("u"),
		Name:             req.Name,
		Email:            req.Email,
		Password:         string(hashedPassword),
		Role:             role,
		Department:       req.Department,
		Year:             req.Year,
		RegisteredEvents: []string{},
		ClubMemberships:  []string{},
		CreatedAt:        time.Now(),
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if _, err := db.UserCollection.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			utils.RespondWithError(w, http.StatusConflict, "An account with this email already exists")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to register user")
		return
	}

	if err := rdx.RdxSet(fmt.Sprintf("users:%s", user.UserID), user.Name); err != nil {
		log.Printf("Failed to cache username: %v", err)
	}

	utils.SendResponse(w, http.StatusCreated, map[string]string{"userid": user.UserID}, "Registration successful", nil)
}

// POST /api/auth/login
func Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if input.Email == "" || input.Password == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var storedUser models.User
	err := db.UserCollection.FindOne(ctx, bson.M{"email": input.Email}).Decode(&storedUser)
	if err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(storedUser.Password), []byte(input.Password)); err != nil {
		utils.RespondWithError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	claims := &middleware.Claims{
		Name:   storedUser.Name,
		UserID: storedUser.UserID,
		Role:   storedUser.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(globals.JwtSecret)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	if _, err := db.UserCollection.UpdateOne(ctx,
		bson.M{"userid": storedUser.UserID},
		bson.M{"$set": bson.M{"lastlogin": time.Now()}},
	); err != nil {
		log.Printf("Failed to record last login for %s: %v", storedUser.UserID, err)
	}

	if err := rdx.RdxHset("tokki", storedUser.UserID, tokenString); err != nil {
		log.Printf("Redis token storage failed: %v", err)
	}

	utils.SendResponse(w, http.StatusOK, map[string]string{
		"token":  tokenString,
		"userid": storedUser.UserID,
		"role":   storedUser.Role,
	}, "Login successful", nil)
}

// POST /api/auth/logout
func Logout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := middleware.ActorID(r)

	if _, err := rdx.RdxHdel("tokki", userID); err != nil {
		log.Printf("Failed to drop cached token for %s: %v", userID, err)
	}

	utils.SendResponse(w, http.StatusOK, nil, "Logged out", nil)
}

// GET /api/users/me
func Me(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := middleware.ActorID(r)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var user models.User
	err := db.UserCollection.FindOne(ctx, bson.M{"userid": userID}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			utils.RespondWithError(w, http.StatusNotFound, "User not found")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch user")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"user": user})
}

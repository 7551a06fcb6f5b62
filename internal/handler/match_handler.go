package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"quizmatch/backend/internal/game"
	"quizmatch/backend/internal/models"
	"quizmatch/backend/internal/store"
)

// Coordinator is the matchmaking coordinator the handlers drive.
// It is assigned once during startup.
var Coordinator *game.Coordinator

// region --- DTOs ---

// FindMatchInput defines the structure for a matchmaking request.
type FindMatchInput struct {
	ConnectionID string `json:"connection_id" binding:"required" example:"8f2e2b4e-3c7a-4f20-9d5a-0b1f6f2d9c11"`
	DisplayName  string `json:"display_name" binding:"required" example:"quizzer42"`
}

// AnswerInput defines the structure for an answer submission.
type AnswerInput struct {
	ConnectionID string `json:"connection_id" binding:"required"`
	Correct      bool   `json:"correct"`
}

// FinishInput defines the structure for a quiz-finished report.
type FinishInput struct {
	ConnectionID string `json:"connection_id" binding:"required"`
}

// LobbyResponse defines the structure for a lobby's public state.
type LobbyResponse struct {
	LobbyID string               `json:"lobby_id"`
	Phase   models.Phase         `json:"phase"`
	Members []models.Participant `json:"members"`
}

// ErrorResponse represents a generic error response.
type ErrorResponse struct {
	Error string `json:"error" example:"An error message"`
}

func newLobbyResponse(lobby *models.Lobby) LobbyResponse {
	return LobbyResponse{
		LobbyID: lobby.ID,
		Phase:   lobby.Phase,
		Members: lobby.Members,
	}
}

// endregion

// FindMatch godoc
// @Summary      Find or create a lobby
// @Description  Seats the connection in the first open lobby, creating one if none accepts. Repeating the call for a seated connection returns its current lobby.
// @Tags         match
// @Accept       json
// @Produce      json
// @Param        input body FindMatchInput true "Matchmaking Info"
// @Success      200  {object}  LobbyResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      503  {object}  ErrorResponse "Store unavailable"
// @Router       /match [post]
func FindMatch(c *gin.Context) {
	var input FindMatchInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	lobby, err := Coordinator.FindOrCreate(input.ConnectionID, input.DisplayName)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Matchmaking is temporarily unavailable"})
		return
	}

	c.JSON(http.StatusOK, newLobbyResponse(lobby))
}

// SubmitAnswer godoc
// @Summary      Submit an answer
// @Description  Credits ten points to the submitting participant when the answer was correct and broadcasts the updated roster.
// @Tags         match
// @Accept       json
// @Produce      json
// @Param        id    path string      true "Lobby ID"
// @Param        input body AnswerInput true "Answer Info"
// @Success      200  {object}  map[string]string "{"message": "Answer recorded"}"
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "Lobby gone or connection not seated"
// @Failure      503  {object}  ErrorResponse
// @Router       /lobbies/{id}/answer [post]
func SubmitAnswer(c *gin.Context) {
	var input AnswerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := Coordinator.HandleAnswer(c.Param("id"), input.ConnectionID, input.Correct)
	if err != nil {
		respondEventError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Answer recorded"})
}

// QuizFinished godoc
// @Summary      Report all rounds completed
// @Description  Marks the participant as finished. When every current member has finished, the final ranking is broadcast.
// @Tags         match
// @Accept       json
// @Produce      json
// @Param        id    path string      true "Lobby ID"
// @Param        input body FinishInput true "Finish Info"
// @Success      200  {object}  map[string]string "{"message": "Finish recorded"}"
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      503  {object}  ErrorResponse
// @Router       /lobbies/{id}/finish [post]
func QuizFinished(c *gin.Context) {
	var input FinishInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := Coordinator.HandleFinish(c.Param("id"), input.ConnectionID)
	if err != nil {
		respondEventError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Finish recorded"})
}

// GetLobbyByID godoc
// @Summary      Get a lobby by ID
// @Description  Gets the current phase and roster for a single lobby.
// @Tags         lobbies
// @Produce      json
// @Param        id path string true "Lobby ID"
// @Success      200 {object} LobbyResponse
// @Failure      404 {object} ErrorResponse "Lobby not found"
// @Router       /lobbies/{id} [get]
func GetLobbyByID(c *gin.Context) {
	lobby, err := Coordinator.GetLobby(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Lobby not found"})
		return
	}

	c.JSON(http.StatusOK, newLobbyResponse(lobby))
}

// respondEventError maps coordinator errors for a single participant
// event. A vanished lobby is benign; only the originator hears about it.
func respondEventError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Lobby not found"})
	case errors.Is(err, game.ErrNotSeated):
		c.JSON(http.StatusNotFound, gin.H{"error": "Connection is not seated in this lobby"})
	default:
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Temporarily unavailable, try again"})
	}
}

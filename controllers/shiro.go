package controllers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"cinderellaapi/models"
	"cinderellaapi/services"

	"github.com/labstack/echo/v4"
)

const chatTimeout = 30 * time.Second

type ShiroChatIn struct {
	Memory         string                    `json:"memory"`
	CurrentRoom    string                    `json:"currentRoom"`
	Cart           []models.CartItem         `json:"cart"`
	PlayerAction   string                    `json:"playerAction" validate:"required"`
	SessionHistory []models.ConversationTurn `json:"sessionHistory"`
}

type ShiroController struct {
	AI services.AIStylistProvider
}

func (controller *ShiroController) ShiroRoutes(g *echo.Group) {
	g.POST("/chat", controller.Chat)
}

// Chat runs one stylist turn. The model is asked for structured JSON; when
// it answers in prose anyway the reply degrades to a plain dialogue line
// instead of failing the request.
func (controller *ShiroController) Chat(c echo.Context) error {
	var req ShiroChatIn
	if err := c.Bind(&req); err != nil {
		fmt.Println(err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	contextMessage := services.BuildShiroContext(models.GameContext{
		CurrentRoom: req.CurrentRoom,
		Cart:        req.Cart,
		Memory:      req.Memory,
	}, req.PlayerAction)

	result := services.TryModelsInOrder(c.Request().Context(), "Shiro", services.ChatModelChain, chatTimeout, func(attemptCtx context.Context, model services.LLMModelName) (string, error) {
		return controller.AI.ShiroChat(attemptCtx, model, req.SessionHistory, contextMessage)
	})
	if !result.OK {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get a reply from the stylist"})
	}
	text := result.Payload

	var reply models.ShiroReply
	if err := services.UnmarshalFirstJSONObject(text, &reply); err != nil {
		fmt.Println("[Shiro] Falling back to plain dialogue:", err)
		reply = models.ShiroReply{
			Dialogue: text,
			Action:   nil,
			Options:  []models.ReplyOption{},
			Mood:     "friendly",
		}
	}
	if reply.Options == nil {
		reply.Options = []models.ReplyOption{}
	}
	if reply.Mood == "" {
		reply.Mood = "friendly"
	}
	return c.JSON(http.StatusOK, reply)
}

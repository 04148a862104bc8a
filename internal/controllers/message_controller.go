package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"amani-server/internal/logics"
	"amani-server/internal/models"

	"github.com/labstack/echo/v4"
)

// MessageController handles thread and message HTTP requests, including the
// SSE stream for realtime delivery.
type MessageController struct {
	BaseController
	messageService     *logics.MessageService
	translationService *logics.TranslationService
}

// NewMessageController creates a new MessageController instance.
func NewMessageController(
	messageService *logics.MessageService,
	translationService *logics.TranslationService,
	identityService *logics.IdentityService,
) *MessageController {
	return &MessageController{
		BaseController:     NewBaseController(identityService),
		messageService:     messageService,
		translationService: translationService,
	}
}

// GetOrCreateThread returns the thread for a donor/family pair, creating it on
// first contact.
// POST /threads
func (mc *MessageController) GetOrCreateThread(c echo.Context) error {
	principal, err := mc.PrincipalFromContext(c)
	if err != nil {
		return mc.RespondError(c, err)
	}

	var input struct {
		DonorID  string `json:"donor_id"`
		FamilyID string `json:"family_id"`
	}
	if err := c.Bind(&input); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if principal.Role == models.RoleDonor && input.DonorID == "" {
		input.DonorID = principal.ProfileID
	}
	if input.DonorID == "" || input.FamilyID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "donor_id and family_id are required"})
	}

	thread, err := mc.messageService.GetOrCreateThread(c.Request().Context(), *principal, input.DonorID, input.FamilyID)
	if err != nil {
		return mc.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, thread)
}

// ListThreads returns the caller's conversations.
// GET /threads
func (mc *MessageController) ListThreads(c echo.Context) error {
	principal, err := mc.PrincipalFromContext(c)
	if err != nil {
		return mc.RespondError(c, err)
	}

	threads, err := mc.messageService.ListThreads(c.Request().Context(), *principal)
	if err != nil {
		return mc.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, threads)
}

// ListMessages returns the full ordered history of a thread.
// GET /threads/:id/messages
func (mc *MessageController) ListMessages(c echo.Context) error {
	threadID := c.Param("id")
	if threadID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "thread id is required"})
	}

	principal, err := mc.PrincipalFromContext(c)
	if err != nil {
		return mc.RespondError(c, err)
	}

	messages, err := mc.messageService.ListMessages(c.Request().Context(), *principal, threadID)
	if err != nil {
		return mc.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, messages)
}

// SendMessage appends a message to a thread.
// POST /threads/:id/messages
func (mc *MessageController) SendMessage(c echo.Context) error {
	threadID := c.Param("id")
	if threadID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "thread id is required"})
	}

	principal, err := mc.PrincipalFromContext(c)
	if err != nil {
		return mc.RespondError(c, err)
	}

	var input struct {
		Body             string `json:"body"`
		OriginalLanguage string `json:"original_language"`
	}
	if err := c.Bind(&input); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	msg, err := mc.messageService.SendMessage(c.Request().Context(), *principal, threadID, input.Body, input.OriginalLanguage)
	if err != nil {
		return mc.RespondError(c, err)
	}
	return c.JSON(http.StatusCreated, msg)
}

// MarkRead stamps every unread message in the thread not sent by the caller.
// POST /threads/:id/read
func (mc *MessageController) MarkRead(c echo.Context) error {
	threadID := c.Param("id")
	if threadID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "thread id is required"})
	}

	principal, err := mc.PrincipalFromContext(c)
	if err != nil {
		return mc.RespondError(c, err)
	}

	updated, err := mc.messageService.MarkRead(c.Request().Context(), *principal, threadID)
	if err != nil {
		return mc.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]int64{"marked_read": updated})
}

// UnreadCount reports how many messages the caller has not read in a thread.
// GET /threads/:id/unread-count
func (mc *MessageController) UnreadCount(c echo.Context) error {
	threadID := c.Param("id")
	if threadID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "thread id is required"})
	}

	principal, err := mc.PrincipalFromContext(c)
	if err != nil {
		return mc.RespondError(c, err)
	}

	count, err := mc.messageService.UnreadCount(c.Request().Context(), *principal, threadID)
	if err != nil {
		return mc.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]int64{"unread_count": count})
}

// SubscribeThread streams new thread messages to the client as SSE events
// until the client disconnects.
// GET /threads/:id/subscribe
func (mc *MessageController) SubscribeThread(c echo.Context) error {
	threadID := c.Param("id")
	if threadID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "thread id is required"})
	}

	principal, err := mc.PrincipalFromContext(c)
	if err != nil {
		return mc.RespondError(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")

	flusher, ok := c.Response().Writer.(http.Flusher)
	if !ok {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "streaming not supported"})
	}

	streamChan := make(chan *models.Message, 16)
	sub, err := mc.messageService.SubscribeThread(c.Request().Context(), *principal, threadID, func(msg *models.Message) {
		select {
		case streamChan <- msg:
		default:
			// Slow consumer; the client catches up from the history.
		}
	})
	if err != nil {
		return mc.RespondError(c, err)
	}
	defer sub.Cancel()

	c.Response().WriteHeader(http.StatusOK)
	flusher.Flush()

	notify := c.Request().Context().Done()
	for {
		select {
		case <-notify:
			return nil
		case <-sub.Done():
			return nil
		case msg := <-streamChan:
			payload, err := json.Marshal(msg)
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(c.Response().Writer, "event: message\ndata: %s\n\n", payload); err != nil {
				return nil
			}
			flusher.Flush()
		}
	}
}

// TranslateMessage returns a message body in the requested language.
// POST /messages/:id/translate
func (mc *MessageController) TranslateMessage(c echo.Context) error {
	messageID := c.Param("id")
	if messageID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "message id is required"})
	}

	principal, err := mc.PrincipalFromContext(c)
	if err != nil {
		return mc.RespondError(c, err)
	}

	var input struct {
		TargetLang string `json:"target_lang"`
	}
	if err := c.Bind(&input); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if input.TargetLang == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "target_lang is required"})
	}

	// The thread guard covers the message: translating requires reading it.
	if _, err := mc.messageService.GetMessage(c.Request().Context(), *principal, messageID); err != nil {
		return mc.RespondError(c, err)
	}
	translated, err := mc.translationService.Translate(c.Request().Context(), messageID, input.TargetLang)
	if err != nil {
		return mc.RespondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"translated": translated})
}

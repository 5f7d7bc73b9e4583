package notifications

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"redepharma/pharmacy-portal/pharmacy-portal-backend/internal/accreditation"
	"redepharma/pharmacy-portal/pharmacy-portal-backend/internal/auth"
)

// Service turns accreditation events into client notifications. It satisfies
// accreditation.Notifier.
type Service struct {
	manager manager
	logger  *zap.Logger
}

type manager interface {
	Broadcast(message WebSocketMessage)
}

func NewService(m manager, logger *zap.Logger) *Service {
	return &Service{manager: m, logger: logger}
}

// NotifyStatusChanged pushes a status-change event to connected clients.
// Delivery is fire-and-forget; a transition never fails on notification.
func (s *Service) NotifyStatusChanged(event accreditation.StatusChangedEvent) {
	s.manager.Broadcast(WebSocketMessage{
		Type:      TypeStatusChanged,
		Timestamp: time.Now(),
		Payload:   event,
	})
	s.logger.Debug("status change notification queued",
		zap.String("pharmacy_id", event.PharmacyID.String()),
		zap.String("to", string(event.ToStatus)))
}

// Handler exposes the WebSocket endpoint.
type Handler struct {
	upgrade func(w http.ResponseWriter, r *http.Request, userID string) error
}

type connector interface {
	HandleConnection(w http.ResponseWriter, r *http.Request, userID string) error
}

func NewHandler(c connector) *Handler {
	return &Handler{upgrade: c.HandleConnection}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/notifications/stream", h.Stream)
}

func (h *Handler) Stream(c *gin.Context) {
	userID := auth.CurrentUserID(c)
	if err := h.upgrade(c.Writer, c.Request, userID.String()); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
}

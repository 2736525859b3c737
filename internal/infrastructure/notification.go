package infrastructure

import (
	"fmt"
	"os/exec"

	"go.uber.org/zap"

	"github.com/yourusername/media-grab-go/internal/domain"
)

// NotificationService surfaces pipeline outcomes on the desktop. Useful
// when the worker runs in the background and nobody watches the logs.
type NotificationService struct {
	config *domain.NotificationConfig
	logger *zap.Logger
}

// NewNotificationService creates a new notification service
func NewNotificationService(config *domain.NotificationConfig, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		config: config,
		logger: logger,
	}
}

// Send sends a notification
func (n *NotificationService) Send(title, message string) error {
	if !n.config.Enabled {
		n.logger.Debug("Notifications disabled, skipping",
			zap.String("title", title),
			zap.String("message", message))
		return nil
	}

	switch n.config.Method {
	case "osascript":
		return n.sendOSAScript(title, message)
	case "notify-send":
		return n.sendNotifySend(title, message)
	case "log":
		n.logger.Info(title, zap.String("message", message))
		return nil
	default:
		n.logger.Warn("Unknown notification method", zap.String("method", n.config.Method))
		return nil
	}
}

// sendOSAScript sends notification using macOS osascript
func (n *NotificationService) sendOSAScript(title, message string) error {
	script := fmt.Sprintf(`display notification "%s" with title "%s"`, message, title)
	cmd := exec.Command("osascript", "-e", script)

	if err := cmd.Run(); err != nil {
		n.logger.Error("Failed to send notification",
			zap.String("method", "osascript"),
			zap.Error(err))
		return err
	}
	return nil
}

// sendNotifySend sends notification using Linux notify-send
func (n *NotificationService) sendNotifySend(title, message string) error {
	cmd := exec.Command("notify-send", title, message)

	if err := cmd.Run(); err != nil {
		n.logger.Error("Failed to send notification",
			zap.String("method", "notify-send"),
			zap.Error(err))
		return err
	}
	return nil
}

// NotifyDelivered sends notification when a request completes
func (n *NotificationService) NotifyDelivered(req *domain.FetchRequest) {
	title := "Media Delivered"
	label := req.Title
	if label == "" {
		label = truncateString(req.URL, 30)
	}
	message := fmt.Sprintf("%s (%s, %s)", truncateString(label, 40), req.Platform, req.Mode)
	n.Send(title, message)
}

// NotifyRejected sends notification when a file is rejected by policy
func (n *NotificationService) NotifyRejected(req *domain.FetchRequest) {
	title := "Media Rejected"
	message := fmt.Sprintf("%s: %s", truncateString(req.URL, 30), req.ErrorMessage)
	n.Send(title, message)
}

// NotifyFailed sends notification when a request fails
func (n *NotificationService) NotifyFailed(req *domain.FetchRequest) {
	title := "Fetch Failed"
	message := fmt.Sprintf("%s: %s", truncateString(req.URL, 30), req.ErrorMessage)
	n.Send(title, message)
}

// truncateString truncates a string to the specified length
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

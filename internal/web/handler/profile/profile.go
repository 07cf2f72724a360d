// Package profile lets users edit their profile and notification settings.
package profile

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/rentfusion/rentfusion/internal/auth"
	usercontroller "github.com/rentfusion/rentfusion/internal/db/controller/user"
	"github.com/rentfusion/rentfusion/internal/validation"
	"github.com/rentfusion/rentfusion/internal/web/handler"
)

// Route paths below /api.
const (
	Path              = "/profile"
	NotificationsPath = Path + "/notifications"
)

// Service is the profile handler service.
type Service struct {
	db *gorm.DB
}

// ProfileUpdate holds the editable profile fields. Nil fields are kept.
type ProfileUpdate struct {
	FullName          *string `json:"fullName" validate:"omitempty,min=2,max=255"`
	Phone             *string `json:"phone" validate:"omitempty,dutchphone"`
	PreferredLanguage *string `json:"preferredLanguage" validate:"omitempty,oneof=en nl"`
	AvatarURL         *string `json:"avatarUrl" validate:"omitempty,url,max=1024"`
}

// NotificationUpdate holds the notification settings. Nil fields are kept.
type NotificationUpdate struct {
	EmailNotifications *bool   `json:"emailNotifications"`
	PushNotifications  *bool   `json:"pushNotifications"`
	SMSNotifications   *bool   `json:"smsNotifications"`
	InAppNotifications *bool   `json:"inAppNotifications"`
	MarketingEmails    *bool   `json:"marketingEmails"`
	TelegramChatID     *string `json:"telegramChatId" validate:"omitempty,max=64"`
}

// Init registers the profile routes.
func (s *Service) Init(router fiber.Router, deps *handler.Deps) error {
	if router == nil || deps.Check() != nil || deps.Auth == nil {
		return handler.ErrNilDeps
	}

	s.db = deps.DB

	g := router.Group(Path, auth.RequireUser(deps.Auth))
	g.Patch(handler.RootPath, s.Update)
	g.Patch("/notifications", s.UpdateNotifications)

	return nil
}

// Update changes the profile of the caller.
func (s *Service) Update(c *fiber.Ctx) error {
	var req ProfileUpdate
	if err := handler.Bind(c, &req); err != nil {
		return err
	}

	fields := map[string]any{}
	setString(fields, "full_name", req.FullName)
	setString(fields, "preferred_language", req.PreferredLanguage)
	setString(fields, "avatar_url", req.AvatarURL)

	if req.Phone != nil {
		fields["phone"] = validation.NormalizePhone(*req.Phone)
	}

	return s.apply(c, fields)
}

// UpdateNotifications changes the notification settings of the caller.
func (s *Service) UpdateNotifications(c *fiber.Ctx) error {
	var req NotificationUpdate
	if err := handler.Bind(c, &req); err != nil {
		return err
	}

	fields := map[string]any{}
	setBool(fields, "email_notifications", req.EmailNotifications)
	setBool(fields, "push_notifications", req.PushNotifications)
	setBool(fields, "sms_notifications", req.SMSNotifications)
	setBool(fields, "in_app_notifications", req.InAppNotifications)
	setBool(fields, "marketing_emails", req.MarketingEmails)
	setString(fields, "telegram_chat_id", req.TelegramChatID)

	return s.apply(c, fields)
}

func (s *Service) apply(c *fiber.Ctx, fields map[string]any) error {
	id := auth.CurrentUser(c).ID

	if len(fields) > 0 {
		if err := usercontroller.Update(s.db, id, fields); err != nil {
			return err
		}
	}

	u, err := usercontroller.Get(s.db, id)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"profile": u})
}

func setString(m map[string]any, col string, v *string) {
	if v != nil {
		m[col] = *v
	}
}

func setBool(m map[string]any, col string, v *bool) {
	if v != nil {
		m[col] = *v
	}
}

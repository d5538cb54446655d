// Package notice handles business announcements & per-user notifications.
package notice

import (
	"context"
	"net/mail"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/rota/core"
	"github.com/trezcool/rota/core/user"
)

var (
	// errors
	ErrAnnouncementNotFound = errors.New("announcement not found")
	ErrNotificationNotFound = errors.New("notification not found")
)

type (
	Announcement struct {
		ID         string    `json:"id"`
		BusinessID string    `json:"business_id"`
		AuthorID   string    `json:"author_id"`
		Title      string    `json:"title"`
		Body       string    `json:"body"`
		CreatedAt  time.Time `json:"created_at"` // UTC
	}

	NewAnnouncement struct {
		Title string `json:"title" validate:"required,notblank,max=200"`
		Body  string `json:"body" validate:"required,notblank"`
	}

	Notification struct {
		ID        string    `json:"id"`
		UserID    string    `json:"user_id"`
		Message   string    `json:"message"`
		IsRead    bool      `json:"is_read"`
		CreatedAt time.Time `json:"created_at"` // UTC
	}

	NotificationFilter struct {
		UserID     string `query:"-"`
		UnreadOnly bool   `query:"unread"`
	}

	Repository interface {
		CreateAnnouncement(ctx context.Context, ann Announcement, exec ...core.DBExecutor) (Announcement, error)
		// QueryAnnouncements lists the announcements of a business, newest first.
		QueryAnnouncements(ctx context.Context, businessID string) ([]Announcement, error)
		CreateNotifications(ctx context.Context, notifs []Notification, exec ...core.DBExecutor) error
		// QueryNotifications lists the notifications of a user, newest first.
		QueryNotifications(ctx context.Context, filter NotificationFilter) ([]Notification, error)
		GetNotification(ctx context.Context, id string) (Notification, error)
		UpdateNotification(ctx context.Context, notif Notification) (Notification, error)
	}

	Service interface {
		PostAnnouncement(ctx context.Context, author user.User, na NewAnnouncement) (Announcement, error)
		QueryAnnouncements(ctx context.Context, businessID string) ([]Announcement, error)
		// Notify stores a notification for each recipient & emails those having an email address.
		Notify(ctx context.Context, message string, recipients ...user.User) error
		QueryNotifications(ctx context.Context, filter NotificationFilter) ([]Notification, error)
		MarkRead(ctx context.Context, owner user.User, id string) (Notification, error)
	}

	service struct {
		repo    Repository
		userSvc user.Service
		mailSvc core.EmailService
		tx      core.Transactor
		async   bool
	}
)

func (na *NewAnnouncement) Validate(validate *validator.Validate) error {
	na.Title = core.CleanString(na.Title)
	na.Body = core.CleanString(na.Body)
	return validate.Struct(na)
}

func NewService(repo Repository, userSvc user.Service, mailSvc core.EmailService, tx core.Transactor) Service {
	return &service{repo: repo, userSvc: userSvc, mailSvc: mailSvc, tx: tx, async: true}
}

// NewServiceMock returns a Service which sends its emails synchronously.
func NewServiceMock(repo Repository, userSvc user.Service, mailSvc core.EmailService, tx core.Transactor) Service {
	return &service{repo: repo, userSvc: userSvc, mailSvc: mailSvc, tx: tx}
}

// PostAnnouncement is reserved to admins; every other active user of the business gets notified.
func (svc *service) PostAnnouncement(ctx context.Context, author user.User, na NewAnnouncement) (Announcement, error) {
	if !author.IsAdmin() {
		return Announcement{}, core.ErrPermissionDenied
	}

	active := true
	members, err := svc.userSvc.Query(ctx, user.QueryFilter{BusinessID: author.BusinessID, IsActive: &active})
	if err != nil {
		return Announcement{}, errors.Wrap(err, "querying members")
	}
	recipients := make([]user.User, 0, len(members))
	for _, usr := range members {
		if usr.ID != author.ID {
			recipients = append(recipients, usr)
		}
	}

	ann := Announcement{
		ID:         uuid.New().String(),
		BusinessID: author.BusinessID,
		AuthorID:   author.ID,
		Title:      na.Title,
		Body:       na.Body,
		CreatedAt:  time.Now().UTC(),
	}
	err = svc.tx.InTx(ctx, func(exec core.DBExecutor) error {
		var err error
		if ann, err = svc.repo.CreateAnnouncement(ctx, ann, exec); err != nil {
			return errors.Wrap(err, "creating announcement")
		}
		return svc.createNotifications(ctx, "New announcement: "+ann.Title, recipients, exec)
	})
	if err != nil {
		return Announcement{}, err
	}

	svc.sendMails("New announcement: "+ann.Title, recipients)
	return ann, nil
}

func (svc *service) QueryAnnouncements(ctx context.Context, businessID string) ([]Announcement, error) {
	return svc.repo.QueryAnnouncements(ctx, businessID)
}

func (svc *service) Notify(ctx context.Context, message string, recipients ...user.User) error {
	if len(recipients) == 0 {
		return nil
	}
	if err := svc.createNotifications(ctx, message, recipients); err != nil {
		return err
	}
	svc.sendMails(message, recipients)
	return nil
}

func (svc *service) createNotifications(ctx context.Context, message string, recipients []user.User, exec ...core.DBExecutor) error {
	if len(recipients) == 0 {
		return nil
	}
	now := time.Now().UTC()
	notifs := make([]Notification, 0, len(recipients))
	for _, usr := range recipients {
		notifs = append(notifs, Notification{
			ID:        uuid.New().String(),
			UserID:    usr.ID,
			Message:   message,
			CreatedAt: now,
		})
	}
	return errors.Wrap(svc.repo.CreateNotifications(ctx, notifs, exec...), "creating notifications")
}

func (svc *service) sendMails(message string, recipients []user.User) {
	messages := make([]*core.EmailMessage, 0, len(recipients))
	for _, usr := range recipients {
		if usr.Email == "" {
			continue
		}
		messages = append(messages, &core.EmailMessage{
			To:           []mail.Address{{Name: usr.DisplayName(), Address: usr.Email}},
			Subject:      "Notification",
			TemplateName: "notification",
			TemplateData: map[string]string{
				"Name":    usr.DisplayName(),
				"Message": message,
			},
		})
	}
	if len(messages) == 0 {
		return
	}
	if svc.async {
		go svc.mailSvc.SendMessages(messages...)
		return
	}
	svc.mailSvc.SendMessages(messages...)
}

func (svc *service) QueryNotifications(ctx context.Context, filter NotificationFilter) ([]Notification, error) {
	return svc.repo.QueryNotifications(ctx, filter)
}

// MarkRead is reserved to the notification's owner.
func (svc *service) MarkRead(ctx context.Context, owner user.User, id string) (Notification, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Notification{}, ErrNotificationNotFound
	}
	notif, err := svc.repo.GetNotification(ctx, id)
	if err != nil {
		return Notification{}, err
	}
	if notif.UserID != owner.ID {
		return Notification{}, core.ErrPermissionDenied
	}
	if notif.IsRead {
		return notif, nil
	}
	notif.IsRead = true
	return svc.repo.UpdateNotification(ctx, notif)
}

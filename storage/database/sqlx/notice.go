package sqlxrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/rota/core"
	"github.com/trezcool/rota/core/notice"
)

type announcementRow struct {
	ID         string      `db:"id"`
	BusinessID string      `db:"business_id"`
	AuthorID   null.String `db:"author_id"`
	Title      string      `db:"title"`
	Body       string      `db:"body"`
	CreatedAt  time.Time   `db:"created_at"`
}

type notificationRow struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Message   string    `db:"message"`
	IsRead    bool      `db:"is_read"`
	CreatedAt time.Time `db:"created_at"`
}

func (row notificationRow) notification() notice.Notification {
	return notice.Notification{
		ID:        row.ID,
		UserID:    row.UserID,
		Message:   row.Message,
		IsRead:    row.IsRead,
		CreatedAt: row.CreatedAt.UTC(),
	}
}

type noticeRepository struct {
	repo
}

var _ notice.Repository = (*noticeRepository)(nil) // interface compliance check

func NewNoticeRepository(exec core.DBExecutor) notice.Repository {
	return &noticeRepository{repo{exec: exec}}
}

func (r *noticeRepository) CreateAnnouncement(ctx context.Context, ann notice.Announcement, exec ...core.DBExecutor) (notice.Announcement, error) {
	q := `INSERT INTO announcement (id, business_id, author_id, title, body, created_at)
		VALUES (:id, :business_id, :author_id, :title, :body, :created_at)`
	row := announcementRow{
		ID:         ann.ID,
		BusinessID: ann.BusinessID,
		AuthorID:   null.NewString(ann.AuthorID, ann.AuthorID != ""),
		Title:      ann.Title,
		Body:       ann.Body,
		CreatedAt:  ann.CreatedAt.UTC(),
	}
	if _, err := r.getExec(exec).NamedExecContext(ctx, q, row); err != nil {
		return notice.Announcement{}, errors.Wrap(err, "inserting announcement")
	}
	return ann, nil
}

func (r *noticeRepository) QueryAnnouncements(ctx context.Context, businessID string) ([]notice.Announcement, error) {
	var rows []announcementRow
	q := `SELECT id, business_id, author_id, title, body, created_at FROM announcement
		WHERE business_id = $1 ORDER BY created_at DESC, id`
	if err := r.exec.SelectContext(ctx, &rows, q, businessID); err != nil {
		return nil, errors.Wrap(err, "querying announcements")
	}
	anns := make([]notice.Announcement, 0, len(rows))
	for _, row := range rows {
		anns = append(anns, notice.Announcement{
			ID:         row.ID,
			BusinessID: row.BusinessID,
			AuthorID:   row.AuthorID.String,
			Title:      row.Title,
			Body:       row.Body,
			CreatedAt:  row.CreatedAt.UTC(),
		})
	}
	return anns, nil
}

func (r *noticeRepository) CreateNotifications(ctx context.Context, notifs []notice.Notification, exec ...core.DBExecutor) error {
	if len(notifs) == 0 {
		return nil
	}
	q := `INSERT INTO notification (id, user_id, message, is_read, created_at)
		VALUES (:id, :user_id, :message, :is_read, :created_at)`
	exe := r.getExec(exec)
	for _, n := range notifs {
		row := notificationRow{ID: n.ID, UserID: n.UserID, Message: n.Message, IsRead: n.IsRead, CreatedAt: n.CreatedAt.UTC()}
		if _, err := exe.NamedExecContext(ctx, q, row); err != nil {
			return errors.Wrap(err, "inserting notification")
		}
	}
	return nil
}

func (r *noticeRepository) QueryNotifications(ctx context.Context, filter notice.NotificationFilter) ([]notice.Notification, error) {
	q := `SELECT id, user_id, message, is_read, created_at FROM notification WHERE user_id = $1`
	if filter.UnreadOnly {
		q += ` AND NOT is_read`
	}
	q += ` ORDER BY created_at DESC, id`

	var rows []notificationRow
	if err := r.exec.SelectContext(ctx, &rows, q, filter.UserID); err != nil {
		return nil, errors.Wrap(err, "querying notifications")
	}
	notifs := make([]notice.Notification, 0, len(rows))
	for _, row := range rows {
		notifs = append(notifs, row.notification())
	}
	return notifs, nil
}

func (r *noticeRepository) GetNotification(ctx context.Context, id string) (notice.Notification, error) {
	var row notificationRow
	q := `SELECT id, user_id, message, is_read, created_at FROM notification WHERE id = $1`
	if err := r.exec.GetContext(ctx, &row, q, id); err != nil {
		return notice.Notification{}, trapNoRowsErr(err, notice.ErrNotificationNotFound, "finding notification")
	}
	return row.notification(), nil
}

func (r *noticeRepository) UpdateNotification(ctx context.Context, notif notice.Notification) (notice.Notification, error) {
	res, err := r.exec.ExecContext(ctx, `UPDATE notification SET is_read = $1 WHERE id = $2`, notif.IsRead, notif.ID)
	if err != nil {
		return notice.Notification{}, errors.Wrap(err, "updating notification")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return notice.Notification{}, notice.ErrNotificationNotFound
	}
	return notif, nil
}

package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/rota/core"
	"github.com/trezcool/rota/core/notice"
)

type noticeRepository struct {
	db *DB
}

var _ notice.Repository = (*noticeRepository)(nil) // interface compliance check

func NewNoticeRepository(db *DB) notice.Repository {
	return &noticeRepository{db: db}
}

func (repo *noticeRepository) CreateAnnouncement(ctx context.Context, ann notice.Announcement, exec ...core.DBExecutor) (notice.Announcement, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	record(exec, repo.db.announcement, ann.ID)
	repo.db.announcement[ann.ID] = ann
	return ann, nil
}

func (repo *noticeRepository) QueryAnnouncements(ctx context.Context, businessID string) ([]notice.Announcement, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	anns := make([]notice.Announcement, 0)
	for _, ann := range repo.db.announcement {
		if ann.BusinessID == businessID {
			anns = append(anns, ann)
		}
	}
	sort.Slice(anns, func(i, j int) bool { return anns[i].CreatedAt.After(anns[j].CreatedAt) })
	return anns, nil
}

func (repo *noticeRepository) CreateNotifications(ctx context.Context, notifs []notice.Notification, exec ...core.DBExecutor) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, n := range notifs {
		record(exec, repo.db.notification, n.ID)
		repo.db.notification[n.ID] = n
	}
	return nil
}

func (repo *noticeRepository) QueryNotifications(ctx context.Context, filter notice.NotificationFilter) ([]notice.Notification, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	notifs := make([]notice.Notification, 0)
	for _, n := range repo.db.notification {
		if n.UserID == filter.UserID && !(filter.UnreadOnly && n.IsRead) {
			notifs = append(notifs, n)
		}
	}
	sort.Slice(notifs, func(i, j int) bool {
		if notifs[i].CreatedAt.Equal(notifs[j].CreatedAt) {
			return notifs[i].ID < notifs[j].ID
		}
		return notifs[i].CreatedAt.After(notifs[j].CreatedAt)
	})
	return notifs, nil
}

func (repo *noticeRepository) GetNotification(ctx context.Context, id string) (notice.Notification, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if n, ok := repo.db.notification[id]; ok {
		return n, nil
	}
	return notice.Notification{}, notice.ErrNotificationNotFound
}

func (repo *noticeRepository) UpdateNotification(ctx context.Context, notif notice.Notification) (notice.Notification, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.notification[notif.ID]; !ok {
		return notice.Notification{}, notice.ErrNotificationNotFound
	}
	repo.db.notification[notif.ID] = notif
	return notif, nil
}

package tests

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/rota/core/notice"
)

func Test_noticeApi_announcements(t *testing.T) {
	f := setup(t)
	m := f.createMembers(t)
	ownerToken := getToken(t, f.conf, m.owner)

	f.run(t, []httpTest{
		{
			name:     "employee posting",
			method:   http.MethodPost,
			path:     "/v1/announcements",
			body:     []byte(`{"title":"Party","body":"Friday night"}`),
			token:    getToken(t, f.conf, m.bob),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name:     "blank body",
			method:   http.MethodPost,
			path:     "/v1/announcements",
			body:     []byte(`{"title":"Party","body":"   "}`),
			token:    ownerToken,
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"body":"this field is required"}`),
		},
	})

	rec := f.serve(http.MethodPost, "/v1/announcements", ownerToken, []byte(`{"title":" Closed Monday ","body":"Inventory day."}`))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var ann notice.Announcement
	decode(t, rec, &ann)
	assert.Equal(t, "Closed Monday", ann.Title)
	assert.Equal(t, m.owner.ID, ann.AuthorID)

	f.run(t, []httpTest{
		{
			name:     "members",
			method:   http.MethodGet,
			path:     "/v1/announcements",
			token:    getToken(t, f.conf, m.ann),
			wantCode: http.StatusOK,
			wantData: marchallList(t, ann),
		},
		{
			name:     "other business",
			method:   http.MethodGet,
			path:     "/v1/announcements",
			token:    getToken(t, f.conf, m.outsider),
			wantCode: http.StatusOK,
			wantData: marchallList(t),
		},
	})

	// the author is not notified
	assert.Empty(t, f.notifications(t, ownerToken))
	assert.Empty(t, f.notifications(t, getToken(t, f.conf, m.outsider)))
	var mailed []string
	for _, msg := range f.mailSvc.SentMessages() {
		mailed = append(mailed, msg.To[0].Address)
	}
	assert.ElementsMatch(t, []string{m.manager.Email, m.bob.Email, m.ann.Email}, mailed)
}

func Test_noticeApi_notifications(t *testing.T) {
	f := setup(t)
	m := f.createMembers(t)
	bobToken := getToken(t, f.conf, m.bob)

	rec := f.serve(http.MethodPost, "/v1/announcements", getToken(t, f.conf, m.owner), []byte(`{"title":"Closed Monday","body":"Inventory day."}`))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	notifs := f.notifications(t, bobToken)
	require.Len(t, notifs, 1)
	notif := notifs[0]
	assert.Equal(t, "New announcement: Closed Monday", notif.Message)
	assert.False(t, notif.IsRead)
	assert.Len(t, f.notifications(t, bobToken, "unread=true"), 1)

	f.run(t, []httpTest{
		{
			name:     "someone else's",
			method:   http.MethodPost,
			path:     "/v1/notifications/" + notif.ID + "/read",
			token:    getToken(t, f.conf, m.ann),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name:     "unknown",
			method:   http.MethodPost,
			path:     "/v1/notifications/lol/read",
			token:    bobToken,
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "not found"}),
		},
	})

	rec = f.serve(http.MethodPost, "/v1/notifications/"+notif.ID+"/read", bobToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &notif)
	assert.True(t, notif.IsRead)

	assert.Empty(t, f.notifications(t, bobToken, "unread=true"))
	assert.Len(t, f.notifications(t, bobToken), 1)
}

package notification

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"skincare/internal/domain"
	"skincare/internal/pkg/jwt"
)

type recorder struct {
	events []Event
	err    error
}

func (r *recorder) Notify(_ context.Context, e Event) error {
	r.events = append(r.events, e)
	return r.err
}

func TestMulti_DeliversToAllAndJoinsErrors(t *testing.T) {
	boom := errors.New("boom")
	a := &recorder{}
	b := &recorder{err: boom}
	c := &recorder{}

	err := Multi{a, nil, b, c}.Notify(context.Background(), Event{Type: EventBookingCreated, BookingID: 7})

	require.ErrorIs(t, err, boom)
	assert.Len(t, a.events, 1)
	assert.Len(t, b.events, 1)
	assert.Len(t, c.events, 1)
}

type fakeSender struct {
	sent []*gomail.Message
}

func (f *fakeSender) DialAndSend(m ...*gomail.Message) error {
	f.sent = append(f.sent, m...)
	return nil
}

func TestMailer_SendsEventSummary(t *testing.T) {
	fs := &fakeSender{}
	m := NewMailer(MailerConfig{From: "desk@clinic.test", To: "front@clinic.test"}, time.UTC)
	m.dialer = fs

	specID := int64(3)
	err := m.Notify(context.Background(), Event{
		Type:         EventBookingCancelled,
		BookingID:    12,
		CustomerID:   5,
		SpecialistID: &specID,
		Status:       string(domain.BookingCancelled),
		StartTime:    time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		Reason:       "sick",
	})
	require.NoError(t, err)
	require.Len(t, fs.sent, 1)

	assert.Equal(t, []string{"front@clinic.test"}, fs.sent[0].GetHeader("To"))
	assert.Equal(t, []string{"Booking #12 cancelled"}, fs.sent[0].GetHeader("Subject"))

	var buf strings.Builder
	_, err = fs.sent[0].WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Reason: sick")
	assert.Contains(t, buf.String(), "Specialist: 3")
}

func TestHub_RoutesEventsToParticipantsAndStaff(t *testing.T) {
	gin.SetMode(gin.TestMode)
	jwtService := jwt.New("secret", time.Hour)
	hub := NewHub()
	defer hub.Close()

	router := gin.New()
	router.GET("/ws/bookings", NewWSHandler(hub, jwtService, nil).HandleWebSocket)
	srv := httptest.NewServer(router)
	defer srv.Close()

	dial := func(actor domain.Actor) *websocket.Conn {
		token, err := jwtService.GenerateToken(actor)
		require.NoError(t, err)
		url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/bookings?token=" + token
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		require.NoError(t, err)
		t.Cleanup(func() { _ = conn.Close() })
		return conn
	}

	customer := domain.Actor{ID: 5, Role: domain.RoleCustomer}
	other := domain.Actor{ID: 6, Role: domain.RoleCustomer}
	staff := domain.Actor{ID: 1, Role: domain.RoleStaff}

	customerConn := dial(customer)
	otherConn := dial(other)
	staffConn := dial(staff)

	require.Eventually(t, func() bool { return hub.OnlineCount() == 3 }, time.Second, 10*time.Millisecond)

	require.NoError(t, hub.Notify(context.Background(), Event{
		Type:       EventBookingCreated,
		BookingID:  42,
		CustomerID: 5,
		Status:     string(domain.BookingPending),
	}))

	for _, conn := range []*websocket.Conn{customerConn, staffConn} {
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var got Event
		require.NoError(t, conn.ReadJSON(&got))
		assert.Equal(t, int64(42), got.BookingID)
		assert.Equal(t, EventBookingCreated, got.Type)
	}

	_ = otherConn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	var got Event
	assert.Error(t, otherConn.ReadJSON(&got))
}

func TestHub_DropsConnectionWhenWriteDeadlinePasses(t *testing.T) {
	gin.SetMode(gin.TestMode)
	jwtService := jwt.New("secret", time.Hour)
	hub := NewHub()
	defer hub.Close()

	router := gin.New()
	router.GET("/ws/bookings", NewWSHandler(hub, jwtService, nil).HandleWebSocket)
	srv := httptest.NewServer(router)
	defer srv.Close()

	staff := domain.Actor{ID: 1, Role: domain.RoleStaff}
	token, err := jwtService.GenerateToken(staff)
	require.NoError(t, err)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/bookings?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.OnlineCount() == 1 }, time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	started := time.Now()
	require.NoError(t, hub.Notify(ctx, Event{Type: EventBookingCreated, BookingID: 7, CustomerID: 5}))
	assert.Less(t, time.Since(started), time.Second)
	assert.Equal(t, 0, hub.OnlineCount())
}

func TestWSHandler_RejectsMissingToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/ws/bookings", NewWSHandler(NewHub(), jwt.New("secret", time.Hour), nil).HandleWebSocket)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws/bookings", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

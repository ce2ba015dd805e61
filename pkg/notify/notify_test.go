package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/charcoalshop/pkg/config"
	"github.com/example/charcoalshop/pkg/models"
)

type chanMailer struct {
	sent chan Email
	err  error
}

func (m *chanMailer) Send(_ context.Context, email Email) error {
	m.sent <- email
	return m.err
}

func testOrder() (*models.Order, *models.User) {
	order := &models.Order{
		OrderNumber: "MC260300001",
		Total:       5810,
		OrderStatus: models.OrderStatusPending,
		Items:       []models.OrderItem{{Name: "Coconut Shell Charcoal", Quantity: 45, Price: 100}},
	}
	user := &models.User{ID: "user-1", Name: "Ravi <Kumar>", Email: "ravi@example.com"}
	return order, user
}

func TestDispatcherQueuesEmails(t *testing.T) {
	mailer := &chanMailer{sent: make(chan Email, 2)}
	d, err := NewDispatcher(mailer, time.Second, "Manvith Charcoal", zap.NewNop())
	require.NoError(t, err)
	defer d.Stop()

	order, user := testOrder()
	require.NoError(t, d.SendOrderConfirmation(context.Background(), order, user))
	require.NoError(t, d.SendOrderCancellation(context.Background(), order, user))

	for _, subject := range []string{"Order Confirmation - #MC260300001", "Order Cancelled - #MC260300001"} {
		select {
		case email := <-mailer.sent:
			assert.Equal(t, subject, email.Subject)
			assert.Equal(t, "ravi@example.com", email.ToEmail)
		case <-time.After(2 * time.Second):
			t.Fatalf("no email delivered for %q", subject)
		}
	}
}

func TestDeliverReportsMailerError(t *testing.T) {
	mailer := &chanMailer{sent: make(chan Email, 1), err: errors.New("smtp down")}
	d, err := NewDispatcher(mailer, time.Second, "Manvith Charcoal", zap.NewNop())
	require.NoError(t, err)
	defer d.Stop()

	err = d.Deliver("test", Email{ToEmail: "a@example.com", Subject: "hi"}, 2*time.Second)
	assert.EqualError(t, err, "smtp down")
}

func TestDeliverCheckEmail(t *testing.T) {
	mailer := &chanMailer{sent: make(chan Email, 1)}
	d, err := NewDispatcher(mailer, time.Second, "Manvith Charcoal", zap.NewNop())
	require.NoError(t, err)
	defer d.Stop()

	email, err := CheckEmail("ops@example.com", "Manvith <Charcoal>")
	require.NoError(t, err)
	assert.Contains(t, email.HTML, "Manvith &lt;Charcoal&gt;")

	require.NoError(t, d.Deliver("notification_check", email, 2*time.Second))
	sent := <-mailer.sent
	assert.Equal(t, "ops@example.com", sent.ToEmail)
	assert.Equal(t, "Manvith <Charcoal> notification check", sent.Subject)
}

func TestConfirmationEmailEscapesInput(t *testing.T) {
	order, user := testOrder()

	email, err := confirmationEmail(order, user, "Manvith Charcoal")
	require.NoError(t, err)
	assert.Contains(t, email.HTML, "Ravi &lt;Kumar&gt;")
	assert.Contains(t, email.HTML, "Coconut Shell Charcoal x 45 - ₹100")
	assert.Contains(t, email.HTML, "₹5810")
	assert.Contains(t, email.HTML, "Manvith Charcoal Team")
}

func TestBrevoMailer(t *testing.T) {
	var got brevoRequest
	var apiKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey = r.Header.Get("api-key")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"messageId":"<1@brevo>"}`))
	}))
	defer srv.Close()

	mailer := NewBrevoMailer(&config.NotifierConfig{
		APIURL:      srv.URL,
		APIKey:      "key-123",
		SenderEmail: "info@manvithcharcoal.com",
		SenderName:  "Manvith Charcoal",
	}, srv.Client())

	err := mailer.Send(context.Background(), Email{ToEmail: "ravi@example.com", ToName: "Ravi", Subject: "Hello", HTML: "<p>hi</p>"})
	require.NoError(t, err)
	assert.Equal(t, "key-123", apiKey)
	assert.Equal(t, "info@manvithcharcoal.com", got.Sender.Email)
	assert.Equal(t, []brevoContact{{Email: "ravi@example.com", Name: "Ravi"}}, got.To)
	assert.Equal(t, "<p>hi</p>", got.HTMLContent)
}

func TestBrevoMailerErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"code":"unauthorized"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	mailer := NewBrevoMailer(&config.NotifierConfig{APIURL: srv.URL}, srv.Client())
	err := mailer.Send(context.Background(), Email{ToEmail: "ravi@example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestNewMailer(t *testing.T) {
	m, err := NewMailer(&config.NotifierConfig{Driver: "log"}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &LogMailer{}, m)

	m, err = NewMailer(&config.NotifierConfig{Driver: "brevo", APIKey: "k"}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &BrevoMailer{}, m)

	_, err = NewMailer(&config.NotifierConfig{Driver: "pigeon"}, zap.NewNop())
	assert.Error(t, err)
}

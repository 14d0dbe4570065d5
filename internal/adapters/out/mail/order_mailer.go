// internal/adapters/out/mail/order_mailer.go
package mail

import (
	"context"
	"errors"
	"fmt"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"

	usecase "emporia/internal/application/usecase"
	orderdom "emporia/internal/domain/order"
)

// OrderMailer implements usecase.OrderNotifier: it resolves the buyer's
// email through Firebase Auth (the user id is the Firebase UID) and sends an
// order confirmation via the configured EmailClient.
type OrderMailer struct {
	client      EmailClient
	auth        *fbauth.Client
	fromAddress string
}

var _ usecase.OrderNotifier = (*OrderMailer)(nil)

func NewOrderMailer(client EmailClient, auth *fbauth.Client, fromAddress string) *OrderMailer {
	return &OrderMailer{
		client:      client,
		auth:        auth,
		fromAddress: strings.TrimSpace(fromAddress),
	}
}

func (m *OrderMailer) NotifyOrderCompleted(ctx context.Context, userID string, ord orderdom.Order) error {
	if m == nil || m.client == nil {
		return errors.New("order_mailer: email client is nil")
	}
	if m.auth == nil {
		return errors.New("order_mailer: firebase auth client is nil")
	}

	uid := strings.TrimSpace(userID)
	if uid == "" {
		return errors.New("order_mailer: userID is empty")
	}

	user, err := m.auth.GetUser(ctx, uid)
	if err != nil {
		return fmt.Errorf("order_mailer: resolve email for uid=%s: %w", uid, err)
	}
	to := strings.TrimSpace(user.Email)
	if to == "" {
		return fmt.Errorf("order_mailer: uid=%s has no email", uid)
	}

	subject := fmt.Sprintf("Your order %s is confirmed", ord.ID)
	body := buildOrderBody(ord)

	return m.client.Send(ctx, m.fromAddress, to, subject, body)
}

func buildOrderBody(ord orderdom.Order) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Thank you for your purchase!\n\n")
	fmt.Fprintf(&b, "Order: %s\n", ord.ID)
	fmt.Fprintf(&b, "Completed: %s\n\n", ord.CompletedAt.Format("2006-01-02 15:04 MST"))

	for _, l := range ord.Lines {
		fmt.Fprintf(&b, "  %s  x%d  @ %s  = %s\n", l.ItemName, l.Quantity, l.UnitPrice.StringFixed(2), l.Subtotal.StringFixed(2))
	}

	fmt.Fprintf(&b, "\nTotal: %s\n", ord.Total.StringFixed(2))
	return b.String()
}

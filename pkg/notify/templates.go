package notify

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/example/charcoalshop/pkg/models"
)

var confirmationTmpl = template.Must(template.New("confirmation").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #ea580c;">Order Confirmed!</h2>
  <p>Hi {{.User.Name}},</p>
  <p>Thank you for your order. We have received your request and are processing it.</p>
  <div style="background-color: #f3f4f6; padding: 15px; border-radius: 8px; margin: 20px 0;">
    <h3>Order Details</h3>
    <p><strong>Order #:</strong> {{.Order.OrderNumber}}</p>
    <p><strong>Total:</strong> ₹{{.Order.Total}}</p>
    <p><strong>Status:</strong> {{.Order.OrderStatus}}</p>
    <h4>Items:</h4>
    <ul>{{range .Order.Items}}<li>{{.Name}} x {{.Quantity}} - ₹{{.Price}}</li>{{end}}</ul>
  </div>
  <p>We will notify you once your order is shipped.</p>
  <p>Best Regards,<br/>{{.Company}} Team</p>
</div>`))

var cancellationTmpl = template.Must(template.New("cancellation").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #dc2626;">Order Cancelled</h2>
  <p>Hi {{.User.Name}},</p>
  <p>Your order #{{.Order.OrderNumber}} has been successfully cancelled as per your request.</p>
  <div style="background-color: #f3f4f6; padding: 15px; border-radius: 8px; margin: 20px 0;">
    <h3>Cancelled Order Details</h3>
    <p><strong>Order #:</strong> {{.Order.OrderNumber}}</p>
    <p><strong>Total Refund Amount (if paid):</strong> ₹{{.Order.Total}}</p>
  </div>
  <p>If you have already paid, the refund will be processed within 5-7 business days.</p>
  <p>Best Regards,<br/>{{.Company}} Team</p>
</div>`))

var checkTmpl = template.Must(template.New("check").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <p>This address receives order notifications from {{.Company}}.</p>
</div>`))

type emailData struct {
	Order   *models.Order
	User    *models.User
	Company string
}

func render(tmpl *template.Template, data emailData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s email: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

func confirmationEmail(order *models.Order, user *models.User, company string) (Email, error) {
	html, err := render(confirmationTmpl, emailData{Order: order, User: user, Company: company})
	if err != nil {
		return Email{}, err
	}
	return Email{
		ToEmail: user.Email,
		ToName:  user.Name,
		Subject: fmt.Sprintf("Order Confirmation - #%s", order.OrderNumber),
		HTML:    html,
	}, nil
}

func cancellationEmail(order *models.Order, user *models.User, company string) (Email, error) {
	html, err := render(cancellationTmpl, emailData{Order: order, User: user, Company: company})
	if err != nil {
		return Email{}, err
	}
	return Email{
		ToEmail: user.Email,
		ToName:  user.Name,
		Subject: fmt.Sprintf("Order Cancelled - #%s", order.OrderNumber),
		HTML:    html,
	}, nil
}

// CheckEmail is a plain message for confirming the mail provider accepts sends.
func CheckEmail(to, company string) (Email, error) {
	html, err := render(checkTmpl, emailData{Company: company})
	if err != nil {
		return Email{}, err
	}
	return Email{
		ToEmail: to,
		Subject: fmt.Sprintf("%s notification check", company),
		HTML:    html,
	}, nil
}

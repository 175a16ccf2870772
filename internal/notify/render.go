package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/shopspring/decimal"

	"github.com/imrishuroy/storefront-checkout/internal/orders"
	"github.com/imrishuroy/storefront-checkout/internal/shipping"
)

// Email is a rendered message ready for a Mailer.
type Email struct {
	To      string
	Subject string
	HTML    string
}

var deliveryLabels = map[shipping.DeliveryMethod]string{
	shipping.MethodPickup:        "🏪 Retiro en Tienda",
	shipping.MethodExpressLima:   "⚡ Envío Express - Lima",
	shipping.MethodRegularLima:   "🚚 Envío Regular - Lima",
	shipping.MethodProvince:      "📦 Envío a Provincia",
	shipping.MethodInternational: "✈️ Envío Internacional",
}

var monthsES = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

var confirmationTmpl = template.Must(template.New("confirmation").Funcs(template.FuncMap{
	"money": func(v float64) string { return "S/. " + decimal.NewFromFloat(v).StringFixed(2) },
}).Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="font-family: Arial, sans-serif; background-color: #1a1a1a; color: #e0e0e0;">
<div style="max-width: 600px; margin: 0 auto; background-color: #2a2a2a;">
  <div style="background: #667eea; color: white; padding: 40px 30px; text-align: center;">
    <h1>✅ ¡Pedido Confirmado!</h1>
    <p>Gracias por tu compra, {{.Address.FirstName}} {{.Address.LastName}}</p>
  </div>
  <div style="padding: 30px;">
    <h2>Resumen del Pedido</h2>
    <p><strong>Número de Pedido:</strong> #{{.ShortID}}</p>
    <p><strong>Fecha:</strong> {{.Date}}</p>
    <p><strong>Método de Entrega:</strong> {{.DeliveryLabel}}</p>
    {{- if .Address.DeliveryTime}}
    <p><strong>Tiempo estimado:</strong> {{.Address.DeliveryTime}}</p>
    {{- end}}
    {{- if gt .Address.ShippingCost 0.0}}
    <p><strong>Costo de envío:</strong> {{money .Address.ShippingCost}}</p>
    {{- end}}
    <h2>Productos</h2>
    {{- range .Items}}
    <div style="padding: 20px; background: #333; margin-bottom: 15px;">
      <div><strong>{{.ProductName}}</strong></div>
      {{- if .Size}}<div>Talla: {{.Size}}</div>{{end}}
      {{- if .Color}}<div>Color: {{.Color}}</div>{{end}}
      <div>Cantidad: {{.Quantity}}</div>
      <div style="text-align: right;">{{money .Subtotal}}<br><small>{{money .Price}} c/u</small></div>
    </div>
    {{- end}}
    <div style="background: #764ba2; color: white; padding: 25px; text-align: center;">
      <p>Total del Pedido</p>
      <h2>{{money .Total}}</h2>
    </div>
    <h2>📍 Dirección de Entrega</h2>
    <div style="background: #333; padding: 20px;">
      <div><strong>{{.Address.FirstName}} {{.Address.LastName}}</strong></div>
      <div>{{.Address.Address}}{{if .Address.Apartment}}, {{.Address.Apartment}}{{end}}</div>
      <div>{{.Address.District}}, {{.Address.Province}}{{if .Address.PostalCode}} - {{.Address.PostalCode}}{{end}}</div>
      <div>📱 {{.Address.Phone}}</div>
      <div>🆔 {{.Address.DocumentType}}: {{.Address.DocumentID}}</div>
    </div>
  </div>
  <div style="background: #1a1a1a; padding: 30px; text-align: center; color: #999;">
    {{- if .ContactEmail}}
    <p>¿Tienes preguntas? Contáctanos a <a href="mailto:{{.ContactEmail}}">{{.ContactEmail}}</a></p>
    {{- end}}
    <p style="font-size: 12px;">Este es un email automático, por favor no respondas a este mensaje.</p>
    <p style="font-size: 12px;">© {{.Year}} {{.StoreName}}. Todos los derechos reservados.</p>
  </div>
</div>
</body>
</html>
`))

type emailView struct {
	ShortID       string
	Date          string
	DeliveryLabel string
	Address       orders.ShippingAddress
	Items         []orders.OrderItem
	Total         float64
	ContactEmail  string
	StoreName     string
	Year          int
}

// Render builds the confirmation e-mail for c. contactEmail may be empty.
func Render(c Confirmation, storeName, contactEmail string) (Email, error) {
	if c.Order.OrderID == "" {
		return Email{}, fmt.Errorf("render confirmation: missing order id")
	}
	if c.Order.UserEmail == "" {
		return Email{}, fmt.Errorf("render confirmation: order %s has no recipient", c.Order.OrderID)
	}

	shortID := c.Order.OrderID
	if len(shortID) > 8 {
		shortID = shortID[:8]
	}
	label, ok := deliveryLabels[shipping.DeliveryMethod(c.Order.DeliveryMethod)]
	if !ok {
		label = "📦 Método no especificado"
	}
	created := c.Order.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	view := emailView{
		ShortID:       shortID,
		Date:          formatDateES(created),
		DeliveryLabel: label,
		Address:       c.Order.ShippingAddress,
		Items:         c.Items,
		Total:         c.Order.Total,
		ContactEmail:  contactEmail,
		StoreName:     storeName,
		Year:          time.Now().Year(),
	}

	var buf bytes.Buffer
	if err := confirmationTmpl.Execute(&buf, view); err != nil {
		return Email{}, fmt.Errorf("render confirmation: %w", err)
	}
	return Email{
		To:      c.Order.UserEmail,
		Subject: fmt.Sprintf("✅ Confirmación de Pedido #%s - %s", shortID, storeName),
		HTML:    buf.String(),
	}, nil
}

// formatDateES renders e.g. "1 de mayo de 2024".
func formatDateES(t time.Time) string {
	return fmt.Sprintf("%d de %s de %d", t.Day(), monthsES[t.Month()-1], t.Year())
}

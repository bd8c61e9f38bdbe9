package orders

import (
	"fmt"
	"strings"
	"time"

	"github.com/wearkati/katicontrol/internal/shared"
)

// SyncSource is the only storefront currently pushing orders.
const SyncSource = "wearkati"

const syncChannel = "wearkati.com"
const syncPaymentMethod = "naboopay"

// SyncPayload is the storefront webhook body. One payload holds a whole
// checkout; each item becomes one order line here.
type SyncPayload struct {
	OrderID       string       `json:"orderId" validate:"required"`
	CreatedAt     string       `json:"createdAt"`
	Status        string       `json:"status"`
	TransactionID string       `json:"transactionId"`
	Customer      SyncCustomer `json:"customer"`
	Items         []SyncItem   `json:"items" validate:"required,min=1"`
	Summary       SyncSummary  `json:"summary"`
}

// SyncCustomer carries checkout contact data.
type SyncCustomer struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	Country    string `json:"country"`
	PostalCode string `json:"postalCode"`
}

// SyncItem is one checkout line.
type SyncItem struct {
	ProductName  string           `json:"productName"`
	Price        float64          `json:"price"`
	Quantity     float64          `json:"quantity"`
	SizeType     string           `json:"sizeType"`
	StandardSize string           `json:"standardSize"`
	Height       string           `json:"height"`
	Color        string           `json:"color"`
	Measurements SyncMeasurements `json:"measurements"`
}

// SyncMeasurements holds made-to-measure figures in centimetres.
type SyncMeasurements struct {
	Height       string `json:"height"`
	Bust         string `json:"bust"`
	Waist        string `json:"waist"`
	Hips         string `json:"hips"`
	Shoulders    string `json:"shoulders"`
	SleeveLength string `json:"sleeveLength"`
	DressLength  string `json:"dressLength"`
	Notes        string `json:"notes"`
}

// SyncSummary carries checkout totals.
type SyncSummary struct {
	Subtotal     float64 `json:"subtotal"`
	Discount     float64 `json:"discount"`
	AutoDiscount float64 `json:"autoDiscount"`
	Shipping     float64 `json:"shipping"`
	PromoCode    string  `json:"promoCode"`
}

// SyncLine is one order line ready to persist.
type SyncLine struct {
	ExternalID                 string
	ExternalGroupID            string
	Source                     string
	OrderDate                  time.Time
	ProductName                *string
	Channel                    string
	CustomerType               string
	CustomerName               *string
	CustomerContact            *string
	SellingPrice               float64
	Discount                   float64
	PromoCode                  *string
	Size                       *string
	Height                     *string
	Color                      *string
	MeasurementsStatus         string
	PaymentMethod              string
	PaymentStatus              string
	AmountPaid                 float64
	DeliveryFeeChargedToClient float64
	ProductionStatus           string
	Notes                      *string
}

// MapPaymentStatus folds the storefront's status vocabulary into the three
// local payment states.
func MapPaymentStatus(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "new", "paid", "success", "completed", "approved":
		return "paid"
	case "pending", "processing":
		return "pending"
	default:
		return "unpaid"
	}
}

// BuildSyncLines turns a checkout payload into per-item order lines.
// Discounts are apportioned by each line's share of the subtotal; shipping is
// split evenly. Paid checkouts record the per-line amount (floored at zero),
// anything else records nothing collected yet.
func BuildSyncLines(payload SyncPayload, now time.Time) []SyncLine {
	paymentStatus := MapPaymentStatus(payload.Status)
	orderDate, err := shared.ParseDate(firstN(payload.CreatedAt, len(shared.DateLayout)), now)
	if err != nil {
		orderDate = shared.Day(now)
	}
	totalDiscount := payload.Summary.Discount + payload.Summary.AutoDiscount
	shippingShare := payload.Summary.Shipping / float64(len(payload.Items))

	name := strings.TrimSpace(payload.Customer.FirstName + " " + payload.Customer.LastName)
	if name == "" {
		name = payload.Customer.Name
	}
	contactParts := []string{}
	for _, part := range []string{
		payload.Customer.Email, payload.Customer.Phone, payload.Customer.Address,
		payload.Customer.City, payload.Customer.Country, payload.Customer.PostalCode,
	} {
		if part != "" {
			contactParts = append(contactParts, part)
		}
	}
	contact := strings.Join(contactParts, " | ")

	lines := make([]SyncLine, 0, len(payload.Items))
	for i, item := range payload.Items {
		lineTotal := item.Price * item.Quantity
		var discountShare float64
		if payload.Summary.Subtotal > 0 {
			discountShare = lineTotal / payload.Summary.Subtotal * totalDiscount
		}
		amountPaid := 0.0
		if paymentStatus == "paid" {
			amountPaid = lineTotal - discountShare + shippingShare
			if amountPaid < 0 {
				amountPaid = 0
			}
		}

		line := SyncLine{
			ExternalID:                 fmt.Sprintf("%s:%d", payload.OrderID, i+1),
			ExternalGroupID:            payload.OrderID,
			Source:                     SyncSource,
			OrderDate:                  orderDate,
			Channel:                    syncChannel,
			CustomerType:               "online",
			SellingPrice:               lineTotal,
			Discount:                   discountShare,
			PaymentMethod:              syncPaymentMethod,
			PaymentStatus:              paymentStatus,
			AmountPaid:                 amountPaid,
			DeliveryFeeChargedToClient: shippingShare,
			ProductionStatus:           "new",
		}
		line.ProductName = optional(item.ProductName)
		line.CustomerName = optional(name)
		line.CustomerContact = optional(contact)
		line.PromoCode = optional(payload.Summary.PromoCode)
		line.Color = optional(item.Color)
		if item.SizeType == "sur-mesure" {
			line.Size = optional("Sur Mesure")
			line.MeasurementsStatus = "complete"
		} else {
			line.Size = optional(item.StandardSize)
			line.MeasurementsStatus = "standard"
		}
		height := item.Height
		if height == "" {
			height = item.Measurements.Height
		}
		line.Height = optional(height)
		line.Notes = optional(buildSyncNotes(payload, item, i))
		lines = append(lines, line)
	}
	return lines
}

func buildSyncNotes(payload SyncPayload, item SyncItem, index int) string {
	parts := []string{fmt.Sprintf("WearKati Order %s (item %d/%d)", payload.OrderID, index+1, len(payload.Items))}
	if payload.TransactionID != "" {
		parts = append(parts, "Transaction "+payload.TransactionID)
	}
	m := item.Measurements
	bits := []string{}
	add := func(label, value string) {
		if value != "" {
			bits = append(bits, label+" "+value+"cm")
		}
	}
	add("Taille", m.Height)
	add("Buste", m.Bust)
	add("Taille", m.Waist)
	add("Hanches", m.Hips)
	add("Epaules", m.Shoulders)
	add("Manche", m.SleeveLength)
	add("Longueur", m.DressLength)
	if m.Notes != "" {
		bits = append(bits, "Notes: "+m.Notes)
	}
	if len(bits) > 0 {
		parts = append(parts, "Mesures: "+strings.Join(bits, " / "))
	}
	return strings.Join(parts, " | ")
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func firstN(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

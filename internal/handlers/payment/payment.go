package payment

import (
	"context"
	"encoding/json"
	"log"
	"math"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/paymentintent"
	"github.com/stripe/stripe-go/v83/webhook"

	"velora_back_end/internal/handlers/order"
	"velora_back_end/internal/models"
	"velora_back_end/internal/utils"
)

// amountInCents convertit un total en euros vers des centimes Stripe.
// L'arrondi évite le centime manquant des flottants (89.70 -> 8969 en tronquant).
func amountInCents(total float64) int64 {
	return int64(math.Round(total * 100))
}

// CreatePaymentIntent : POST /api/orders/:id/payment-intent
// Crée un PaymentIntent Stripe pour une commande existante du client.
// Le montant vient de la commande (snapshot), jamais du client.
func CreatePaymentIntent(c *gin.Context) {
	userID := c.GetString("user_id")
	email := c.GetString("email")
	isAdmin := c.GetString("role") == models.RoleAdmin

	orderID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, "Invalid order id")
		return
	}

	store := order.NewStore()
	o, err := store.GetOrderScoped(c.Request.Context(), orderID, userID, isAdmin)
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, "Order not found")
		return
	}

	if o.PaymentStatus == models.PaymentStatusPaid {
		utils.RespondError(c, http.StatusConflict, "Order is already paid")
		return
	}
	if o.Status == models.OrderStatusCancelled {
		utils.RespondError(c, http.StatusConflict, "Order is cancelled")
		return
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountInCents(o.TotalAmount)),
		Currency: stripe.String("eur"),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Metadata: map[string]string{
			"order_id": o.ID.String(),
			"user_id":  o.UserID,
			"email":    email,
		},
	}

	intent, err := paymentintent.New(params)
	if err != nil {
		log.Println("❌ Erreur Stripe:", err)
		utils.RespondError(c, http.StatusInternalServerError, "Payment provider error")
		return
	}

	// L'intent est rattaché à la commande pour l'idempotence du webhook
	if err := store.SetOrderPaymentIntent(c.Request.Context(), orderID, intent.ID); err != nil {
		log.Printf("⚠️ Erreur enregistrement payment_intent_id: %v", err)
	}

	log.Printf("💳 PaymentIntent créé : %s (%.2f€) pour commande %s", intent.ID, o.TotalAmount, o.OrderNumber)

	utils.RespondSuccess(c, http.StatusOK, gin.H{
		"clientSecret": intent.ClientSecret,
		"paymentId":    intent.ID,
	})
}

// StripeWebhook : POST /api/payments/webhook — pas d'authentification JWT,
// la signature Stripe fait foi. Sans STRIPE_WEBHOOK_SECRET (mode test) le
// payload est accepté tel quel.
func StripeWebhook(c *gin.Context) {
	const MaxBodyBytes = int64(65536)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes)

	payload, err := c.GetRawData()
	if err != nil {
		log.Println("❌ Lecture payload échouée:", err)
		utils.RespondError(c, http.StatusBadRequest, "Invalid payload")
		return
	}

	secret := os.Getenv("STRIPE_WEBHOOK_SECRET")
	var event stripe.Event

	if secret == "" {
		log.Println("⚠️ Pas de STRIPE_WEBHOOK_SECRET — mode test")
		if err := json.Unmarshal(payload, &event); err != nil {
			utils.RespondError(c, http.StatusBadRequest, "Invalid JSON")
			return
		}
	} else {
		event, err = webhook.ConstructEvent(payload, c.GetHeader("Stripe-Signature"), secret)
		if err != nil {
			log.Println("❌ Signature Stripe invalide:", err)
			utils.RespondError(c, http.StatusBadRequest, "Invalid signature")
			return
		}
	}

	log.Printf("📥 Événement Stripe reçu : %s", event.Type)
	handleStripeEvent(c.Request.Context(), event)

	c.Status(http.StatusOK)
}

func handleStripeEvent(ctx context.Context, event stripe.Event) {
	switch event.Type {
	case "payment_intent.succeeded":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			log.Println("❌ Erreur décodage PaymentIntent:", err)
			return
		}
		markOrderPaid(ctx, &pi)

	case "payment_intent.payment_failed":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err == nil {
			log.Printf("⚠️ Paiement échoué : %s (commande %s)", pi.ID, pi.Metadata["order_id"])
		}

	default:
		log.Printf("ℹ️ Événement ignoré : %s", event.Type)
	}
}

// markOrderPaid passe la commande en payée. Rejouer le même événement est
// sans effet : le payment_status est déjà "paid" au second passage.
func markOrderPaid(ctx context.Context, pi *stripe.PaymentIntent) {
	orderIDStr := pi.Metadata["order_id"]
	email := pi.Metadata["email"]
	if orderIDStr == "" {
		log.Println("⚠️ Métadonnées incomplètes, order_id manquant")
		return
	}

	orderID, err := gocql.ParseUUID(orderIDStr)
	if err != nil {
		log.Printf("❌ order_id invalide dans les métadonnées: %s", orderIDStr)
		return
	}

	store := order.NewStore()
	o, err := store.GetOrderScoped(ctx, orderID, "", true)
	if err != nil {
		log.Printf("❌ Commande introuvable pour PaymentIntent %s: %v", pi.ID, err)
		return
	}

	if o.PaymentStatus == models.PaymentStatusPaid {
		log.Printf("🔁 Commande %s déjà payée, événement ignoré", o.OrderNumber)
		return
	}

	newStatus := o.Status
	if o.Status == models.OrderStatusPending {
		newStatus = models.OrderStatusProcessing
	}

	if err := store.SetOrderStatus(ctx, orderID, newStatus, models.PaymentStatusPaid); err != nil {
		log.Printf("❌ Erreur passage en payé pour commande %s: %v", o.OrderNumber, err)
		return
	}
	if err := store.SetOrderPaymentIntent(ctx, orderID, pi.ID); err != nil {
		log.Printf("⚠️ Erreur enregistrement payment_intent_id: %v", err)
	}

	log.Printf("✅ Paiement confirmé : %s (%.2f€) — commande %s",
		pi.ID, float64(pi.Amount)/100, o.OrderNumber)

	if email != "" {
		go func(o models.Order, email string) {
			html := utils.GenerateOrderConfirmationHTML(o)
			if err := utils.SendConfirmationEmail(email, "Confirmation de commande "+o.OrderNumber, html); err != nil {
				log.Printf("⚠️ Erreur envoi e-mail confirmation: %v", err)
			} else {
				log.Printf("📤 E-mail de confirmation envoyé à %s", email)
			}
		}(*o, email)
	}
}

// Command seed-db prepares a database for local development: reference data
// (delivery methods, payment methods, discounts) plus a demo user with a
// stocked cart and a working API key.
package main

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/Sameer-space/samCorp-Commerce/internal/domain/cart"
	"github.com/Sameer-space/samCorp-Commerce/internal/domain/discount"
	"github.com/Sameer-space/samCorp-Commerce/internal/repository"
)

func main() {
	var (
		databaseURL  string
		apiKey       string
		apiKeyPepper string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&apiKey, "api-key", "", "API key to seed (or SAMCORP_SEED_API_KEY env)")
	flag.StringVar(&apiKeyPepper, "api-key-pepper", "", "HMAC pepper for API key hashing (or SAMCORP_API_KEY_PEPPER env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if apiKey == "" {
		apiKey = os.Getenv("SAMCORP_SEED_API_KEY")
	}
	if apiKey == "" {
		slog.Error("API key is required: set --api-key or SAMCORP_SEED_API_KEY")
		os.Exit(1)
	}
	if apiKeyPepper == "" {
		apiKeyPepper = os.Getenv("SAMCORP_API_KEY_PEPPER")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, apiKey, apiKeyPepper); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, apiKey, pepper string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedDeliveryMethods(ctx, pool); err != nil {
		return errors.Wrap(err, "seed delivery methods")
	}
	if err := seedPaymentMethods(ctx, pool); err != nil {
		return errors.Wrap(err, "seed payment methods")
	}
	if err := seedDiscounts(ctx, pool); err != nil {
		return errors.Wrap(err, "seed discounts")
	}
	if err := seedDemoUser(ctx, pool, apiKey, pepper); err != nil {
		return errors.Wrap(err, "seed demo user")
	}

	return nil
}

func seedDeliveryMethods(ctx context.Context, pool *pgxpool.Pool) error {
	methods := []struct {
		id, name, description, carrier, eta string
		price                               string
	}{
		{"dm-standard", "Standard", "3-5 business days", "UPS", "3-5 days", "10.00"},
		{"dm-express", "Express", "Next business day", "FedEx", "1 day", "100.00"},
		{"dm-pickup", "Store Pickup", "Collect from the nearest store", "", "same day", "0.00"},
	}

	for _, m := range methods {
		_, err := pool.Exec(ctx, `
			INSERT INTO delivery_methods (id, name, description, carrier, estimated_delivery_time, price)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO NOTHING`,
			m.id, m.name, m.description, m.carrier, m.eta, decimal.RequireFromString(m.price))
		if err != nil {
			return errors.Wrapf(err, "insert delivery method %s", m.id)
		}
	}

	slog.Info("seeded delivery methods", slog.Int("count", len(methods)))
	return nil
}

func seedPaymentMethods(ctx context.Context, pool *pgxpool.Pool) error {
	methods := []struct {
		id, name, code, description, handler string
	}{
		{"pm-card", "Credit Card", "card", "Visa, Mastercard, Amex", "stripe"},
		{"pm-paypal", "PayPal", "paypal", "PayPal checkout", "paypal"},
		{"pm-cod", "Cash on Delivery", "cod", "Pay the courier on arrival", "manual"},
	}

	for _, m := range methods {
		_, err := pool.Exec(ctx, `
			INSERT INTO payment_methods (id, name, code, description, payment_handler, active)
			VALUES ($1, $2, $3, $4, $5, TRUE)
			ON CONFLICT (id) DO NOTHING`,
			m.id, m.name, m.code, m.description, m.handler)
		if err != nil {
			return errors.Wrapf(err, "insert payment method %s", m.id)
		}
	}

	slog.Info("seeded payment methods", slog.Int("count", len(methods)))
	return nil
}

func seedDiscounts(ctx context.Context, pool *pgxpool.Pool) error {
	store := repository.NewDiscountStore(pool)
	now := time.Now()

	discounts := []discount.Discount{
		{
			Code:        "SAVE10",
			Description: "10% off your order",
			Type:        discount.TypePercentage,
			Value:       decimal.NewFromInt(10),
			StartDate:   now.AddDate(0, -1, 0),
			EndDate:     now.AddDate(1, 0, 0),
			Usability:   1000,
		},
		{
			Code:        "WELCOME5",
			Description: "$5 off for new customers",
			Type:        discount.TypeFixed,
			Value:       decimal.NewFromInt(5),
			StartDate:   now.AddDate(0, -1, 0),
			EndDate:     now.AddDate(1, 0, 0),
			Usability:   500,
		},
	}

	for i := range discounts {
		if err := store.Create(ctx, &discounts[i]); err != nil {
			return errors.Wrapf(err, "insert discount %s", discounts[i].Code)
		}
	}

	slog.Info("seeded discounts", slog.Int("count", len(discounts)))
	return nil
}

func seedDemoUser(ctx context.Context, pool *pgxpool.Pool, apiKey, pepper string) error {
	const userID = "demo-user"

	_, err := pool.Exec(ctx, `
		INSERT INTO users (id, email, name)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING`,
		userID, "demo@example.com", "Demo User")
	if err != nil {
		return errors.Wrap(err, "insert user")
	}

	mac := hmac.New(sha256.New, []byte(pepper))
	mac.Write([]byte(apiKey))
	keyHash := hex.EncodeToString(mac.Sum(nil))

	_, err = pool.Exec(ctx, `
		INSERT INTO api_keys (id, key_hash, user_id, active)
		VALUES ($1, $2, $3, TRUE)
		ON CONFLICT (key_hash) DO NOTHING`,
		uuid.New().String(), keyHash, userID)
	if err != nil {
		return errors.Wrap(err, "insert api key")
	}

	items := []cart.Item{
		{
			ProductID: "prod-keyboard",
			VariantID: "blue-switches",
			Quantity:  1,
			UnitPrice: decimal.RequireFromString("89.99"),
			LineTotal: decimal.RequireFromString("89.99"),
		},
		{
			ProductID: "prod-mouse",
			Quantity:  2,
			UnitPrice: decimal.RequireFromString("24.50"),
			LineTotal: decimal.RequireFromString("49.00"),
		},
	}
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return errors.Wrap(err, "marshal cart items")
	}

	_, err = pool.Exec(ctx, `
		INSERT INTO carts (user_id, items)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET items = EXCLUDED.items, updated_at = now()`,
		userID, itemsJSON)
	if err != nil {
		return errors.Wrap(err, "insert cart")
	}

	slog.Info("seeded demo user", slog.String("user_id", userID))
	return nil
}

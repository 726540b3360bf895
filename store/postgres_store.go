package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/sethvargo/go-retry"

	"github.com/ravell-app/tg-bridge/types"
)

// PostgresStore owns the users and payments tables. Row updates are
// single-statement upserts; the unique payments charge id carries the
// payment-redelivery dedup.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		dsn = buildPostgresDSNFromEnv()
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	s := &PostgresStore{pool: pool}
	if err := s.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func buildPostgresDSNFromEnv() string {
	host := strings.TrimSpace(os.Getenv("POSTGRES_HOST"))
	if host == "" {
		host = "localhost"
	}
	port := strings.TrimSpace(os.Getenv("POSTGRES_PORT"))
	if port == "" {
		port = "5432"
	}
	db := strings.TrimSpace(os.Getenv("POSTGRES_DB"))
	if db == "" {
		db = "ravell_bridge"
	}
	user := strings.TrimSpace(os.Getenv("POSTGRES_USER"))
	if user == "" {
		user = "ravell_bridge"
	}
	pass := os.Getenv("POSTGRES_PASSWORD")
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", urlEscape(user), urlEscape(pass), host, port, db)
}

func urlEscape(s string) string {
	r := strings.NewReplacer(
		"%", "%25",
		":", "%3A",
		"/", "%2F",
		"@", "%40",
		"?", "%3F",
		"#", "%23",
		"[", "%5B",
		"]", "%5D",
	)
	return r.Replace(s)
}

func (s *PostgresStore) runMigrations(ctx context.Context) error {
	db := stdlib.OpenDB(*s.pool.Config().ConnConfig)
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, "migrations")
}

// exec runs a single idempotent statement, retrying once so a transient
// connection-acquisition failure does not surface to the user.
func (s *PostgresStore) exec(sql string, args ...any) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return retry.Do(ctx, retry.WithMaxRetries(1, retry.NewConstant(100*time.Millisecond)), func(ctx context.Context) error {
		if _, err := s.pool.Exec(ctx, sql, args...); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}

func (s *PostgresStore) GetUser(userID int64) (*types.User, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var u types.User
	err := s.pool.QueryRow(ctx, `
SELECT id, tg_chat_id, premium_until, created_at, updated_at
FROM users
WHERE id = $1
`, userID).Scan(&u.ID, &u.TGChatID, &u.PremiumUntil, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *PostgresStore) BindChat(userID, chatID int64) error {
	return s.exec(`
INSERT INTO users (id, tg_chat_id)
VALUES ($1, $2)
ON CONFLICT (id) DO UPDATE SET
  tg_chat_id = EXCLUDED.tg_chat_id,
  updated_at = NOW();
`, userID, chatID)
}

func (s *PostgresStore) SetPremiumUntil(userID int64, until time.Time) error {
	return s.exec(`
INSERT INTO users (id, premium_until)
VALUES ($1, $2)
ON CONFLICT (id) DO UPDATE SET
  premium_until = EXCLUDED.premium_until,
  updated_at = NOW();
`, userID, until.UTC())
}

// RecordPayment inserts a charge exactly once. A redelivered payment hits the
// unique charge id and reports inserted=false; the caller must then skip the
// entitlement mutation.
func (s *PostgresStore) RecordPayment(p types.Payment) (inserted bool, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	tag, err := s.pool.Exec(ctx, `
INSERT INTO payments (user_id, currency, total_amount, invoice_payload, telegram_payment_charge_id, provider_payment_charge_id)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (telegram_payment_charge_id) DO NOTHING
`, p.UserID, strings.TrimSpace(p.Currency), p.TotalAmount, strings.TrimSpace(p.InvoicePayload), strings.TrimSpace(p.TelegramPaymentCharge), strings.TrimSpace(p.ProviderPaymentCharge))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

package pgstorage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	// Postgres driver.
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/minerdrop/minerdrop/internal/domain/accounts"
	"github.com/minerdrop/minerdrop/internal/domain/holdings"
	"github.com/minerdrop/minerdrop/internal/domain/referrals"
	"github.com/minerdrop/minerdrop/internal/domain/withdrawals"
	"github.com/minerdrop/minerdrop/internal/storage"
	"github.com/minerdrop/minerdrop/internal/storage/dbmodels"
)

var _ storage.Storage = (*Storage)(nil)

const initialCountdown = 30 * 24 * time.Hour

type Storage struct {
	db *sql.DB
}

type Config struct {
	maxOpenConns    int
	maxIdleConns    int
	connMaxIdleTime time.Duration
	connMaxLifetime time.Duration
}

type Option func(s *Config)

func WithMaxOpenConns(conns int) Option {
	return func(c *Config) {
		c.maxOpenConns = conns
	}
}

func WithMaxIdleConns(conns int) Option {
	return func(c *Config) {
		c.maxIdleConns = conns
	}
}

func WithConnMaxIdleTime(idleTime time.Duration) Option {
	return func(c *Config) {
		c.connMaxIdleTime = idleTime
	}
}

func WithConnMaxLifetime(lifetime time.Duration) Option {
	return func(c *Config) {
		c.connMaxLifetime = lifetime
	}
}

func NewStorage(connStr string, opts ...Option) (*Storage, error) {
	cfg := &Config{
		maxOpenConns:    10,
		maxIdleConns:    5,
		connMaxIdleTime: 180 * time.Second,
		connMaxLifetime: 3600 * time.Second,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}

	db.SetMaxOpenConns(cfg.maxOpenConns)
	db.SetMaxIdleConns(cfg.maxIdleConns)
	db.SetConnMaxIdleTime(cfg.connMaxIdleTime)
	db.SetConnMaxLifetime(cfg.connMaxLifetime)

	return &Storage{
		db: db,
	}, nil
}

func (s *Storage) Bootstrap(ctx context.Context) error {
	provider, err := goose.NewProvider(
		goose.DialectPostgres,
		s.db,
		os.DirFS("internal/storage/pgstorage/migrations"),
	)
	if err != nil {
		return fmt.Errorf("goose.NewProvider: %w", err)
	}

	_, err = provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("provider.Up: %w", err)
	}

	return nil
}

func (s *Storage) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("db.Close: %w", err)
	}

	return nil
}

// isRetryableError checks if error is retryable.
func isRetryableError(err error) bool {
	// Connection refused error
	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgerrcode.IsConnectionException(pgErr.Code) {
		return true
	}

	return false
}

// WithRetry retries operations in case of retryable errors.
func WithRetry(operation func() error) error {
	retryCount := 3

	var retryWaitTime time.Duration

	retryWaitInterval := 2

	var err error

	for i := 0; i < retryCount; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if isRetryableError(err) {
			retryWaitTime = time.Duration((i*retryWaitInterval + 1)) * time.Second // 1s, 3s, 5s, etc.

			time.Sleep(retryWaitTime)
		} else {
			return fmt.Errorf("%w", err)
		}
	}

	return fmt.Errorf("retry attempts exceeded: %w", err)
}

func (s *Storage) Ping(ctx context.Context) error {
	err := WithRetry(func() error {
		if err := s.db.PingContext(ctx); err != nil {
			return fmt.Errorf("db.PingContext: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	return nil
}

func (s *Storage) GetBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	dbBalance := new(dbmodels.Balance)

	err := WithRetry(func() error {
		query := `SELECT user_id, amount FROM balances WHERE user_id = $1`

		row := s.db.QueryRowContext(ctx, query, userID)

		if err := row.Scan(&dbBalance.UserID, &dbBalance.Amount); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				// Unknown users have a zero balance.
				dbBalance.Amount = decimal.Zero

				return nil
			}

			return fmt.Errorf("db.QueryRowContext: %w", err)
		}

		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}

	return dbBalance.Amount, nil
}

func (s *Storage) CreditBalance(ctx context.Context, userID string, amount decimal.Decimal) error {
	err := WithRetry(func() error {
		query := `INSERT INTO balances (user_id, amount) VALUES ($1, $2)
			ON CONFLICT (user_id) DO UPDATE SET amount = balances.amount + EXCLUDED.amount`

		if _, err := s.db.ExecContext(ctx, query, userID, amount); err != nil {
			return fmt.Errorf("db.ExecContext: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	return nil
}

func (s *Storage) DebitBalance(ctx context.Context, userID string, amount decimal.Decimal) error {
	err := WithRetry(func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("db.BeginTx: %w", err)
		}
		defer tx.Rollback() //nolint:errcheck

		dbBalance := new(dbmodels.Balance)

		row := tx.QueryRowContext(ctx, `SELECT user_id, amount FROM balances WHERE user_id = $1`, userID)
		if err := row.Scan(&dbBalance.UserID, &dbBalance.Amount); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return storage.ErrBalanceNotEnough
			}

			return fmt.Errorf("db.QueryRowContext: %w", err)
		}

		if dbBalance.Amount.LessThan(amount) {
			return storage.ErrBalanceNotEnough
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE balances SET amount = $1 WHERE user_id = $2`,
			dbBalance.Amount.Sub(amount), userID,
		); err != nil {
			return fmt.Errorf("tx.ExecContext: %w", err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("tx.Commit: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	return nil
}

func (s *Storage) CountBalances(ctx context.Context) (int, error) {
	var count int

	err := WithRetry(func() error {
		row := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM balances`)
		if err := row.Scan(&count); err != nil {
			return fmt.Errorf("db.QueryRowContext: %w", err)
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (s *Storage) TotalBalance(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal

	err := WithRetry(func() error {
		row := s.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(amount), 0) FROM balances`)
		if err := row.Scan(&total); err != nil {
			return fmt.Errorf("db.QueryRowContext: %w", err)
		}

		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}

	return total, nil
}

func (s *Storage) GetBonusMark(ctx context.Context, userID string) (*storage.BonusMark, error) {
	dbMark := new(dbmodels.BonusMark)

	err := WithRetry(func() error {
		query := `SELECT user_id, last_claim_at, welcome_claimed FROM bonus_marks WHERE user_id = $1`

		row := s.db.QueryRowContext(ctx, query, userID)

		if err := row.Scan(&dbMark.UserID, &dbMark.LastClaimAt, &dbMark.WelcomeClaimed); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}

			return fmt.Errorf("db.QueryRowContext: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	mark := &storage.BonusMark{WelcomeClaimed: dbMark.WelcomeClaimed}
	if dbMark.LastClaimAt.Valid {
		mark.LastClaimAt = dbMark.LastClaimAt.Time
	}

	return mark, nil
}

func (s *Storage) SaveBonusMark(ctx context.Context, userID string, mark *storage.BonusMark) error {
	lastClaimAt := sql.NullTime{}
	if !mark.LastClaimAt.IsZero() {
		lastClaimAt = sql.NullTime{Time: mark.LastClaimAt, Valid: true}
	}

	err := WithRetry(func() error {
		query := `INSERT INTO bonus_marks (user_id, last_claim_at, welcome_claimed) VALUES ($1, $2, $3)
			ON CONFLICT (user_id) DO UPDATE SET last_claim_at = EXCLUDED.last_claim_at,
			welcome_claimed = EXCLUDED.welcome_claimed`

		if _, err := s.db.ExecContext(ctx, query, userID, lastClaimAt, mark.WelcomeClaimed); err != nil {
			return fmt.Errorf("db.ExecContext: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	return nil
}

func (s *Storage) GetReferralRecord(ctx context.Context, referrerID string) (*referrals.Record, error) {
	dbReferral := new(dbmodels.Referral)

	err := WithRetry(func() error {
		query := `SELECT referrer_id, display_name, referred_ids FROM referrals WHERE referrer_id = $1`

		row := s.db.QueryRowContext(ctx, query, referrerID)

		if err := row.Scan(&dbReferral.ReferrerID, &dbReferral.DisplayName, pq.Array(&dbReferral.ReferredIDs)); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return storage.ErrReferralNotFound
			}

			return fmt.Errorf("db.QueryRowContext: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	rec, err := referrals.RestoreRecord(dbReferral.ReferrerID, dbReferral.DisplayName, dbReferral.ReferredIDs)
	if err != nil {
		return nil, fmt.Errorf("referrals.RestoreRecord: %w", err)
	}

	return rec, nil
}

func (s *Storage) SaveReferralRecord(ctx context.Context, rec *referrals.Record) error {
	err := WithRetry(func() error {
		query := `INSERT INTO referrals (referrer_id, display_name, referred_ids) VALUES ($1, $2, $3)
			ON CONFLICT (referrer_id) DO UPDATE SET display_name = EXCLUDED.display_name,
			referred_ids = EXCLUDED.referred_ids`

		if _, err := s.db.ExecContext(ctx, query,
			rec.ReferrerID(), rec.DisplayName(), pq.Array(rec.ReferredIDs()),
		); err != nil {
			return fmt.Errorf("db.ExecContext: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	return nil
}

func (s *Storage) IsReferred(ctx context.Context, userID string) (bool, error) {
	var referred bool

	err := WithRetry(func() error {
		query := `SELECT EXISTS (SELECT 1 FROM referrals WHERE $1 = ANY(referred_ids))`

		row := s.db.QueryRowContext(ctx, query, userID)
		if err := row.Scan(&referred); err != nil {
			return fmt.Errorf("db.QueryRowContext: %w", err)
		}

		return nil
	})
	if err != nil {
		return false, err
	}

	return referred, nil
}

func (s *Storage) GetAccount(ctx context.Context, userID string) (*accounts.Account, error) {
	dbAccount := new(dbmodels.Account)

	err := WithRetry(func() error {
		query := `SELECT user_id, display_name, wallet FROM accounts WHERE user_id = $1`

		row := s.db.QueryRowContext(ctx, query, userID)

		if err := row.Scan(&dbAccount.UserID, &dbAccount.DisplayName, &dbAccount.Wallet); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return storage.ErrAccountNotFound
			}

			return fmt.Errorf("db.QueryRowContext: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	acc, err := accounts.RestoreAccount(dbAccount.UserID, dbAccount.DisplayName, dbAccount.Wallet.String)
	if err != nil {
		return nil, fmt.Errorf("accounts.RestoreAccount: %w", err)
	}

	return acc, nil
}

func (s *Storage) SaveAccount(ctx context.Context, acc *accounts.Account) error {
	wallet := sql.NullString{}
	if acc.HasWallet() {
		wallet = sql.NullString{String: acc.Wallet(), Valid: true}
	}

	err := WithRetry(func() error {
		query := `INSERT INTO accounts (user_id, display_name, wallet) VALUES ($1, $2, $3)
			ON CONFLICT (user_id) DO UPDATE SET display_name = EXCLUDED.display_name,
			wallet = EXCLUDED.wallet`

		if _, err := s.db.ExecContext(ctx, query, acc.ID(), acc.DisplayName(), wallet); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgerrcode.IsIntegrityConstraintViolation(pgErr.Code) {
				return storage.ErrWalletInUse
			}

			return fmt.Errorf("db.ExecContext: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	return nil
}

func (s *Storage) GetHoldings(ctx context.Context, userID string) ([]*holdings.Holding, error) {
	dbHoldings := make([]*dbmodels.Holding, 0)

	err := WithRetry(func() error {
		query := `SELECT user_id, name, acquired_at, expires_at, yield_per_second FROM holdings` +
			` WHERE user_id = $1 ORDER BY id`

		rows, err := s.db.QueryContext(ctx, query, userID)
		if err != nil {
			return fmt.Errorf("db.QueryContext: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			dbHolding := new(dbmodels.Holding)

			if err := rows.Scan(
				&dbHolding.UserID, &dbHolding.Name, &dbHolding.AcquiredAt,
				&dbHolding.ExpiresAt, &dbHolding.YieldPerSecond,
			); err != nil {
				return fmt.Errorf("rows.Scan: %w", err)
			}

			dbHoldings = append(dbHoldings, dbHolding)
		}

		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	hs := make([]*holdings.Holding, 0, len(dbHoldings))

	for _, dbHolding := range dbHoldings {
		h, err := holdings.RestoreHolding(
			dbHolding.Name, dbHolding.AcquiredAt, dbHolding.ExpiresAt, dbHolding.YieldPerSecond,
		)
		if err != nil {
			return nil, fmt.Errorf("holdings.RestoreHolding: %w", err)
		}

		hs = append(hs, h)
	}

	return hs, nil
}

func (s *Storage) SaveHoldings(ctx context.Context, userID string, hs []*holdings.Holding) error {
	err := WithRetry(func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("db.BeginTx: %w", err)
		}
		defer tx.Rollback() //nolint:errcheck

		if _, err := tx.ExecContext(ctx, `DELETE FROM holdings WHERE user_id = $1`, userID); err != nil {
			return fmt.Errorf("tx.ExecContext: %w", err)
		}

		for _, h := range hs {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO holdings (user_id, name, acquired_at, expires_at, yield_per_second)
					VALUES ($1, $2, $3, $4, $5)`,
				userID, h.InstrumentName(), h.AcquiredAt(), h.ExpiresAt(), h.YieldPerSecond(),
			); err != nil {
				return fmt.Errorf("tx.ExecContext: %w", err)
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("tx.Commit: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	return nil
}

func (s *Storage) CreateWithdrawal(ctx context.Context, w *withdrawals.Withdrawal) error {
	err := WithRetry(func() error {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO withdrawals (id, user_id, address, amount, processed_at) VALUES ($1, $2, $3, $4, $5)`,
			w.ID(), w.UserID(), w.Address(), w.Amount(), w.ProcessedAt(),
		); err != nil {
			return fmt.Errorf("db.ExecContext: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	return nil
}

func (s *Storage) GetWithdrawals(ctx context.Context) ([]*withdrawals.Withdrawal, error) {
	dbWithdrawals := make([]*dbmodels.Withdrawal, 0)

	err := WithRetry(func() error {
		query := `SELECT id, user_id, address, amount, processed_at FROM withdrawals ORDER BY processed_at DESC`

		rows, err := s.db.QueryContext(ctx, query)
		if err != nil {
			return fmt.Errorf("db.QueryContext: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			dbWithdrawal := new(dbmodels.Withdrawal)

			if err := rows.Scan(
				&dbWithdrawal.ID, &dbWithdrawal.UserID, &dbWithdrawal.Address,
				&dbWithdrawal.Amount, &dbWithdrawal.ProcessedAt,
			); err != nil {
				return fmt.Errorf("rows.Scan: %w", err)
			}

			dbWithdrawals = append(dbWithdrawals, dbWithdrawal)
		}

		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	ws := make([]*withdrawals.Withdrawal, 0, len(dbWithdrawals))

	for _, dbWithdrawal := range dbWithdrawals {
		w, err := withdrawals.RestoreWithdrawal(
			dbWithdrawal.ID, dbWithdrawal.UserID, dbWithdrawal.Address,
			dbWithdrawal.Amount, dbWithdrawal.ProcessedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("withdrawals.RestoreWithdrawal: %w", err)
		}

		ws = append(ws, w)
	}

	return ws, nil
}

func (s *Storage) IsSubscriber(ctx context.Context, userID string) (bool, error) {
	var subscribed bool

	err := WithRetry(func() error {
		query := `SELECT EXISTS (SELECT 1 FROM subscribers WHERE user_id = $1)`

		row := s.db.QueryRowContext(ctx, query, userID)
		if err := row.Scan(&subscribed); err != nil {
			return fmt.Errorf("db.QueryRowContext: %w", err)
		}

		return nil
	})
	if err != nil {
		return false, err
	}

	return subscribed, nil
}

func (s *Storage) AddSubscriber(ctx context.Context, userID string) error {
	err := WithRetry(func() error {
		query := `INSERT INTO subscribers (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`

		if _, err := s.db.ExecContext(ctx, query, userID); err != nil {
			return fmt.Errorf("db.ExecContext: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	return nil
}

func (s *Storage) ListSubscribers(ctx context.Context) ([]string, error) {
	ids := make([]string, 0)

	err := WithRetry(func() error {
		rows, err := s.db.QueryContext(ctx, `SELECT user_id FROM subscribers ORDER BY user_id`)
		if err != nil {
			return fmt.Errorf("db.QueryContext: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var id string

			if err := rows.Scan(&id); err != nil {
				return fmt.Errorf("rows.Scan: %w", err)
			}

			ids = append(ids, id)
		}

		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	return ids, nil
}

func (s *Storage) GetFeed(ctx context.Context) (*storage.Feed, error) {
	feed := new(storage.Feed)

	err := WithRetry(func() error {
		query := `SELECT countdown_end_at, messages FROM feed WHERE id = 1`

		row := s.db.QueryRowContext(ctx, query)

		if err := row.Scan(&feed.CountdownEndAt, pq.Array(&feed.Messages)); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				feed.CountdownEndAt = time.Now().Add(initialCountdown)

				if _, err := s.db.ExecContext(ctx,
					`INSERT INTO feed (id, countdown_end_at, messages) VALUES (1, $1, $2)`,
					feed.CountdownEndAt, pq.Array(feed.Messages),
				); err != nil {
					return fmt.Errorf("db.ExecContext: %w", err)
				}

				return nil
			}

			return fmt.Errorf("db.QueryRowContext: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return feed, nil
}

func (s *Storage) SaveFeed(ctx context.Context, feed *storage.Feed) error {
	err := WithRetry(func() error {
		query := `INSERT INTO feed (id, countdown_end_at, messages) VALUES (1, $1, $2)
			ON CONFLICT (id) DO UPDATE SET countdown_end_at = EXCLUDED.countdown_end_at,
			messages = EXCLUDED.messages`

		if _, err := s.db.ExecContext(ctx, query, feed.CountdownEndAt, pq.Array(feed.Messages)); err != nil {
			return fmt.Errorf("db.ExecContext: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	return nil
}

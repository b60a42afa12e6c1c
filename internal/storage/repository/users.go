package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/magabrotheeeer/briefe-einfach/internal/models"
)

// RegisterUser сохраняет нового пользователя в базу данных.
// Уникальность email гарантируется индексом: при гонке двух регистраций
// ровно одна завершается успехом, вторая получает ErrAlreadyExists.
func (s *Storage) RegisterUser(ctx context.Context, user models.User) error {
	const op = "storage.RegisterUser"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO users (uid, email, password_hash, is_subscribed)
			  VALUES ($1, $2, $3, $4);`
	if _, err := s.DB.ExecContext(ctx, query,
		user.UID, user.Email, user.PasswordHash, user.IsSubscribed); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return fmt.Errorf("%s: %w", op, ErrAlreadyExists)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// GetUserByEmail возвращает пользователя по его email (в нижнем регистре).
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	return s.getUser(ctx, op, `SELECT uid, email, password_hash, is_subscribed,
			      payment_customer_id, created_at
			  FROM users
			  WHERE email = $1`, email)
}

// GetUserByUID возвращает пользователя по его UID.
func (s *Storage) GetUserByUID(ctx context.Context, userUID string) (*models.User, error) {
	const op = "storage.GetUserByUID"
	return s.getUser(ctx, op, `SELECT uid, email, password_hash, is_subscribed,
			      payment_customer_id, created_at
			  FROM users
			  WHERE uid = $1`, userUID)
}

// GetUserByCustomerID возвращает пользователя по идентификатору клиента
// у платёжного провайдера.
func (s *Storage) GetUserByCustomerID(ctx context.Context, customerID string) (*models.User, error) {
	const op = "storage.GetUserByCustomerID"
	return s.getUser(ctx, op, `SELECT uid, email, password_hash, is_subscribed,
			      payment_customer_id, created_at
			  FROM users
			  WHERE payment_customer_id = $1`, customerID)
}

func (s *Storage) getUser(ctx context.Context, op, query string, arg any) (*models.User, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	u := &models.User{}
	row := s.DB.QueryRowContext(ctx, query, arg)

	var customerID sql.NullString
	if err := row.Scan(&u.UID, &u.Email, &u.PasswordHash,
		&u.IsSubscribed, &customerID, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if customerID.Valid {
		u.PaymentCustomerID = customerID.String
	}
	return u, nil
}

// SetPaymentCustomerID сохраняет идентификатор клиента платёжного провайдера.
func (s *Storage) SetPaymentCustomerID(ctx context.Context, userUID, customerID string) error {
	const op = "storage.SetPaymentCustomerID"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
		      SET payment_customer_id = $1
		      WHERE uid = $2`
	res, err := s.DB.ExecContext(ctx, query, customerID, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// ActivateSubscription включает платную подписку пользователя и,
// если передан customerID, сохраняет его.
func (s *Storage) ActivateSubscription(ctx context.Context, userUID, customerID string) error {
	const op = "storage.ActivateSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
		      SET is_subscribed = TRUE,
			      payment_customer_id = COALESCE(NULLIF($1, ''), payment_customer_id)
		      WHERE uid = $2`
	res, err := s.DB.ExecContext(ctx, query, customerID, userUID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// DeactivateSubscriptionByCustomerID выключает подписку пользователя,
// привязанного к указанному клиенту платёжного провайдера.
func (s *Storage) DeactivateSubscriptionByCustomerID(ctx context.Context, customerID string) error {
	const op = "storage.DeactivateSubscriptionByCustomerID"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
		      SET is_subscribed = FALSE
		      WHERE payment_customer_id = $1`
	res, err := s.DB.ExecContext(ctx, query, customerID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/ukconnect/rail-booking/internal/model"
)

// CustomerRepo reads the customer_info table.  Customers are provisioned
// externally; the booking engine only resolves them by email or id.
type CustomerRepo struct {
	db *sql.DB
}

// NewCustomerRepo returns a CustomerRepo bound to the given database.
func NewCustomerRepo(db *sql.DB) *CustomerRepo { return &CustomerRepo{db: db} }

// GetByEmail fetches a customer by normalized email.  Returns
// ErrCustomerNotFound when no row matches.
func (r *CustomerRepo) GetByEmail(ctx context.Context, email string) (*model.Customer, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.get(ctx, `email = ?`, email)
}

// GetByID fetches a customer by internal id.
func (r *CustomerRepo) GetByID(ctx context.Context, id int64) (*model.Customer, error) {
	return r.get(ctx, `id = ?`, id)
}

func (r *CustomerRepo) get(ctx context.Context, cond string, arg any) (*model.Customer, error) {
	var c model.Customer
	var created string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, customer_id, name, address, email, phone, created_at FROM customer_info WHERE `+cond+` LIMIT 1`,
		arg).Scan(&c.ID, &c.CustomerID, &c.Name, &c.Address, &c.Email, &c.Phone, &created)
	if err == sql.ErrNoRows {
		return nil, ErrCustomerNotFound
	}
	if err != nil {
		return nil, err
	}
	if t, perr := time.Parse("2006-01-02 15:04:05", created); perr == nil {
		c.CreatedAt = t
	}
	return &c, nil
}

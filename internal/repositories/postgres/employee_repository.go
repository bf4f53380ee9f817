package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/JericoFX/advance-manager/internal/entities"
	"github.com/JericoFX/advance-manager/internal/repositories"
	"github.com/lib/pq"
)

// PostgreSQL SQLSTATE codes
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// PostgresEmployeeRepository implements EmployeeRepository using PostgreSQL
type PostgresEmployeeRepository struct {
	db *sql.DB
}

// NewPostgresEmployeeRepository creates a new PostgreSQL employee repository
func NewPostgresEmployeeRepository(db *sql.DB) repositories.EmployeeRepository {
	return &PostgresEmployeeRepository{db: db}
}

const employeeSelect = `
	SELECT e.id, e.business_id, e.citizenid, e.name, e.grade, e.wage,
	       b.name, b.job_name, e.created_at, e.updated_at
	FROM business_employees e
	JOIN businesses b ON b.id = e.business_id
`

// Create inserts an employee row
func (r *PostgresEmployeeRepository) Create(ctx context.Context, employee *entities.Employee) (int64, error) {
	if err := employee.Validate(); err != nil {
		return 0, err
	}

	query := `
		INSERT INTO business_employees (business_id, citizenid, name, grade, wage)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	var id int64
	err := r.db.QueryRowContext(ctx, query,
		employee.BusinessID, employee.CitizenID, employee.Name, employee.Grade, employee.Wage,
	).Scan(&id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			switch string(pqErr.Code) {
			case uniqueViolation:
				return 0, fmt.Errorf("%w: %s", entities.ErrAlreadyHired, employee)
			case foreignKeyViolation:
				return 0, fmt.Errorf("%w: business %d", repositories.ErrNotFound, employee.BusinessID)
			}
		}
		return 0, fmt.Errorf("failed to create employee: %w", err)
	}
	return id, nil
}

// Get retrieves one employee
func (r *PostgresEmployeeRepository) Get(ctx context.Context, businessID int64, citizenID string) (*entities.Employee, error) {
	query := employeeSelect + ` WHERE e.business_id = $1 AND e.citizenid = $2`

	employee, err := scanEmployee(r.db.QueryRowContext(ctx, query, businessID, citizenID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: employee %d:%s", repositories.ErrNotFound, businessID, citizenID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	return employee, nil
}

// ListByBusiness retrieves the employees of one business
func (r *PostgresEmployeeRepository) ListByBusiness(ctx context.Context, businessID int64) ([]entities.Employee, error) {
	query := employeeSelect + ` WHERE e.business_id = $1 ORDER BY e.grade DESC, e.name ASC`
	return r.queryEmployees(ctx, query, businessID)
}

// ListAll retrieves every employee
func (r *PostgresEmployeeRepository) ListAll(ctx context.Context) ([]entities.Employee, error) {
	query := employeeSelect + ` ORDER BY e.business_id ASC, e.grade DESC, e.name ASC`
	return r.queryEmployees(ctx, query)
}

// UpdateGrade sets grade and wage together
func (r *PostgresEmployeeRepository) UpdateGrade(ctx context.Context, businessID int64, citizenID string, grade int, wage int64) error {
	query := `
		UPDATE business_employees
		SET grade = $1, wage = $2, updated_at = NOW()
		WHERE business_id = $3 AND citizenid = $4
	`
	return r.execOne(ctx, "update employee grade", query, grade, wage, businessID, citizenID)
}

// UpdateWage sets the wage
func (r *PostgresEmployeeRepository) UpdateWage(ctx context.Context, businessID int64, citizenID string, wage int64) error {
	query := `
		UPDATE business_employees
		SET wage = $1, updated_at = NOW()
		WHERE business_id = $2 AND citizenid = $3
	`
	return r.execOne(ctx, "update employee wage", query, wage, businessID, citizenID)
}

// Delete removes an employee row
func (r *PostgresEmployeeRepository) Delete(ctx context.Context, businessID int64, citizenID string) error {
	query := `DELETE FROM business_employees WHERE business_id = $1 AND citizenid = $2`
	return r.execOne(ctx, "delete employee", query, businessID, citizenID)
}

// execOne runs a statement whose last two args are (businessID, citizenID)
// and maps zero affected rows to ErrNotFound.
func (r *PostgresEmployeeRepository) execOne(ctx context.Context, op string, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	affected, err := rowsAffected(result)
	if err != nil {
		return err
	}
	if !affected {
		return fmt.Errorf("%w: employee %v:%v", repositories.ErrNotFound, args[len(args)-2], args[len(args)-1])
	}
	return nil
}

func (r *PostgresEmployeeRepository) queryEmployees(ctx context.Context, query string, args ...any) ([]entities.Employee, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	employees := []entities.Employee{}
	for rows.Next() {
		employee, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, *employee)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate employees: %w", err)
	}
	return employees, nil
}

func scanEmployee(row rowScanner) (*entities.Employee, error) {
	var e entities.Employee
	err := row.Scan(&e.ID, &e.BusinessID, &e.CitizenID, &e.Name, &e.Grade, &e.Wage,
		&e.BusinessName, &e.JobName, &e.HiredAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

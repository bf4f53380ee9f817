package coordinator

// Action names used for rate limiting and metrics
const (
	ActionDeposit        = "deposit"
	ActionWithdraw       = "withdraw"
	ActionSetFunds       = "setFunds"
	ActionGetFunds       = "getFunds"
	ActionHire           = "hireEmployee"
	ActionFire           = "fireEmployee"
	ActionUpdateGrade    = "updateGrade"
	ActionUpdateWage     = "updateWage"
	ActionGetEmployees   = "getEmployees"
	ActionCreateBusiness = "createBusiness"
	ActionGetBusiness    = "getBusiness"
	ActionListBusinesses = "listBusinesses"
	ActionGradeMetadata  = "getGradeMetadata"
	ActionWageLimits     = "getWageLimits"
	ActionCheckPerm      = "canPerform"
	ActionSetPermissions = "setPermissions"
)

// FundsRequest moves money between the actor's wallet and a treasury
type FundsRequest struct {
	SessionID  string  `json:"sessionId" validate:"required"`
	BusinessID int64   `json:"businessId" validate:"gt=0"`
	Amount     float64 `json:"amount" validate:"gt=0"`
}

// SetFundsRequest sets a treasury balance
type SetFundsRequest struct {
	SessionID  string `json:"sessionId" validate:"required"`
	BusinessID int64  `json:"businessId" validate:"gt=0"`
	Amount     int64  `json:"amount" validate:"gte=0"`
}

// BusinessRequest addresses one business
type BusinessRequest struct {
	SessionID  string `json:"sessionId" validate:"required"`
	BusinessID int64  `json:"businessId" validate:"gt=0"`
}

// EmployeeRequest addresses one employee of a business
type EmployeeRequest struct {
	SessionID  string `json:"sessionId" validate:"required"`
	BusinessID int64  `json:"businessId" validate:"gt=0"`
	CitizenID  string `json:"citizenId" validate:"required,citizenid"`
}

// HireRequest hires a person
type HireRequest struct {
	SessionID  string `json:"sessionId" validate:"required"`
	BusinessID int64  `json:"businessId" validate:"gt=0"`
	CitizenID  string `json:"citizenId" validate:"required,citizenid"`
	Name       string `json:"name" validate:"max=64"`
	Grade      int    `json:"grade" validate:"gte=0"`
	Wage       int64  `json:"wage"`
}

// UpdateGradeRequest changes an employee's grade
type UpdateGradeRequest struct {
	SessionID  string `json:"sessionId" validate:"required"`
	BusinessID int64  `json:"businessId" validate:"gt=0"`
	CitizenID  string `json:"citizenId" validate:"required,citizenid"`
	Grade      int    `json:"grade" validate:"gte=0"`
}

// UpdateWageRequest changes an employee's wage
type UpdateWageRequest struct {
	SessionID  string `json:"sessionId" validate:"required"`
	BusinessID int64  `json:"businessId" validate:"gt=0"`
	CitizenID  string `json:"citizenId" validate:"required,citizenid"`
	Wage       int64  `json:"wage"`
}

// CanPerformRequest asks whether the actor holds permissions on a business
type CanPerformRequest struct {
	SessionID   string   `json:"sessionId" validate:"required"`
	BusinessID  int64    `json:"businessId" validate:"gt=0"`
	Permissions []string `json:"permissions" validate:"dive,required,max=32"`
}

// SetPermissionsRequest replaces a business's permission overrides. Keys are
// grade levels ("2", "*") mapping to permissions, or permission names mapping
// to grade levels; true stands for the wildcard.
type SetPermissionsRequest struct {
	SessionID  string         `json:"sessionId" validate:"required"`
	BusinessID int64          `json:"businessId" validate:"gt=0"`
	Overrides  map[string]any `json:"overrides" validate:"max=64"`
}

// CreateBusinessRequest creates a business owned by the actor
type CreateBusinessRequest struct {
	SessionID string `json:"sessionId" validate:"required"`
	Name      string `json:"name" validate:"required,max=64"`
	JobName   string `json:"jobName" validate:"required,max=50"`
}

// SessionRequest identifies only the actor
type SessionRequest struct {
	SessionID string `json:"sessionId" validate:"required"`
}

// ConnectRequest registers a connected actor
type ConnectRequest struct {
	SessionID string `json:"sessionId" validate:"required"`
	CitizenID string `json:"citizenId" validate:"required,citizenid"`
	Name      string `json:"name" validate:"max=64"`
	Job       string `json:"job" validate:"max=50"`
	Grade     int    `json:"grade" validate:"gte=0"`
	Cash      int64  `json:"cash" validate:"gte=0"`
	Admin     bool   `json:"admin"`
}

// FundsData is returned by fund operations
type FundsData struct {
	BusinessID int64 `json:"businessId"`
	Funds      int64 `json:"funds"`
	Cash       int64 `json:"cash,omitempty"`
}

// PermissionsData is returned by SetPermissionOverrides: the stored
// overrides folded into grade key -> permissions
type PermissionsData struct {
	BusinessID int64               `json:"businessId"`
	Grants     map[string][]string `json:"grants"`
}

// WageLimits is returned by GetWageLimits
type WageLimits struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

// BusinessData is the public view of a business
type BusinessData struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Owner   string `json:"owner"`
	JobName string `json:"jobName"`
	Funds   int64  `json:"funds,omitempty"`
}

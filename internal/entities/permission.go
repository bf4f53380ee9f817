package entities

// Permission names checked by the boundary operations
const (
	PermissionBoss      = "boss"      // Special: must hold a boss grade
	PermissionFinance   = "finance"   // Deposit, withdraw, view funds
	PermissionHiring    = "hiring"    // Hire and fire
	PermissionManage    = "manage"    // Change grades and wages
	PermissionEmployees = "employees" // View the employee list

	// Wildcard matches any grade or any permission during lookup
	Wildcard = "*"
)

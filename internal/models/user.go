package models

import "time"

type AccountStatus string

const (
	AccountStatusActive    AccountStatus = "active"
	AccountStatusInactive  AccountStatus = "inactive"
	AccountStatusSuspended AccountStatus = "suspended"
)

type SubscriptionPlan string

const (
	PlanFree       SubscriptionPlan = "free"
	PlanBasic      SubscriptionPlan = "basic"
	PlanPremium    SubscriptionPlan = "premium"
	PlanEnterprise SubscriptionPlan = "enterprise"
)

// User is a support account. The agent core only ever reads it;
// lifecycle is owned by the auth/registration surface.
type User struct {
	UserID           int64            `db:"user_id"`
	Name             string           `db:"name"`
	Email            string           `db:"email"`
	PasswordHash     string           `db:"password_hash"`
	AccountStatus    AccountStatus    `db:"account_status"`
	SubscriptionPlan SubscriptionPlan `db:"subscription_plan"`
	CreatedAt        time.Time        `db:"created_at"`
	UpdatedAt        time.Time        `db:"updated_at"`
}

package types

import "fmt"

// TimeUnit is the unit of a trial or recurrence period.
type TimeUnit string

const (
	TimeUnitNone  TimeUnit = "0"
	TimeUnitDay   TimeUnit = "D"
	TimeUnitWeek  TimeUnit = "W"
	TimeUnitMonth TimeUnit = "M"
	TimeUnitYear  TimeUnit = "Y"
)

var timeUnitPlurals = map[TimeUnit]string{
	TimeUnitNone:  "no trial",
	TimeUnitDay:   "days",
	TimeUnitWeek:  "weeks",
	TimeUnitMonth: "months",
	TimeUnitYear:  "years",
}

// IsNone reports whether the unit disables the period. An empty unit is treated as none.
func (u TimeUnit) IsNone() bool {
	return u == "" || u == TimeUnitNone
}

func (u TimeUnit) Validate() error {
	if u == "" {
		return nil
	}
	if _, ok := timeUnitPlurals[u]; !ok {
		return fmt.Errorf("invalid time unit: %q", string(u))
	}
	return nil
}

// Plural returns the human readable plural form, e.g. "months".
func (u TimeUnit) Plural() string {
	if u == "" {
		return timeUnitPlurals[TimeUnitNone]
	}
	return timeUnitPlurals[u]
}

// Period is a count of calendar units, e.g. 3 months.
type Period struct {
	Count int      `json:"count"`
	Unit  TimeUnit `json:"unit"`
}

func (p Period) IsZero() bool {
	return p.Count <= 0 || p.Unit.IsNone()
}

func (p Period) String() string {
	if p.IsZero() {
		return "none"
	}
	return fmt.Sprintf("%d %s", p.Count, p.Unit.Plural())
}

// TransactionEvent labels an audit record.
type TransactionEvent string

const (
	TransactionEventExpired            TransactionEvent = "subscription expired"
	TransactionEventRemovedExpired     TransactionEvent = "remove subscription (expired)"
	TransactionEventNewSubscription    TransactionEvent = "new subscription"
	TransactionEventNewBinding         TransactionEvent = "new usersubscription"
	TransactionEventPayment            TransactionEvent = "subscription payment"
	TransactionEventIncorrectPayment   TransactionEvent = "incorrect payment"
	TransactionEventCancel             TransactionEvent = "cancel subscription"
	TransactionEventEndOfTerm          TransactionEvent = "subscription eot"
	TransactionEventResubscribe        TransactionEvent = "resubscribe"
	TransactionEventChangePlan         TransactionEvent = "change subscription"
	TransactionEventAdminEdit          TransactionEvent = "admin edit"
	TransactionEventSubscriptionModify TransactionEvent = "subscr_modify"
	TransactionEventSubscriptionFailed TransactionEvent = "subscr_failed"
)

// ReconcileAction is the outcome of a single Fix call, used for logs and metrics.
type ReconcileAction string

const (
	ReconcileActionNone        ReconcileAction = "none"
	ReconcileActionSubscribe   ReconcileAction = "subscribe"
	ReconcileActionUnsubscribe ReconcileAction = "unsubscribe"
	ReconcileActionDelete      ReconcileAction = "delete"
)

// ProfileStatus is the payment processor's recurring profile status.
type ProfileStatus string

const (
	ProfileStatusActive    ProfileStatus = "active"
	ProfileStatusSuspended ProfileStatus = "suspended"
	ProfileStatusCancelled ProfileStatus = "cancelled"
	ProfileStatusDeleted   ProfileStatus = "deleted"
)

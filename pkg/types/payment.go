package types

type PaymentProvider string

const (
	PaymentProviderPaypal PaymentProvider = "paypal"
	PaymentProviderInner  PaymentProvider = "inner"
)

// IPNTxnType is the txn_type field of a PayPal instant payment notification.
type IPNTxnType string

const (
	IPNTxnTypeSubscrSignup  IPNTxnType = "subscr_signup"
	IPNTxnTypeSubscrPayment IPNTxnType = "subscr_payment"
	IPNTxnTypeSubscrCancel  IPNTxnType = "subscr_cancel"
	IPNTxnTypeSubscrEot     IPNTxnType = "subscr_eot"
	IPNTxnTypeSubscrModify  IPNTxnType = "subscr_modify"
	IPNTxnTypeSubscrFailed  IPNTxnType = "subscr_failed"

	IPNTxnTypeProfileSuspended IPNTxnType = "recurring_payment_suspended"
	IPNTxnTypeProfileCancel    IPNTxnType = "recurring_payment_profile_cancel"
)

const IPNPaymentStatusCompleted = "Completed"

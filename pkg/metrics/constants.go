package metrics

// Namespace prefixes every metric name.
const Namespace = "idle_progression"

// Engine metric names
const (
	MetricNameClicks          = "clicks_total"
	MetricNameClickGain       = "click_gain_total"
	MetricNameComboMultiplier = "combo_multiplier"
	MetricNamePurchases       = "upgrades_purchased_total"
	MetricNameMoneySpent      = "money_spent_total"
	MetricNameUnlocks         = "unlocks_total"
	MetricNameNotifications   = "notifications_total"
)

// Session metric names
const (
	MetricNameSessionsActive = "sessions_active"
	MetricNameSaves          = "saves_total"
	MetricNamePublishes      = "unlock_publishes_total"
)

// Help text
const (
	HelpTextClicks          = "Total number of clicks handled"
	HelpTextClickGain       = "Money earned from clicks"
	HelpTextComboMultiplier = "Combo multiplier applied to clicks"
	HelpTextPurchases       = "Total number of upgrades purchased"
	HelpTextMoneySpent      = "Money spent on upgrades"
	HelpTextUnlocks         = "Total number of fired unlocks"
	HelpTextNotifications   = "Notifications offered to the queue"
	HelpTextSessionsActive  = "Sessions currently held in memory"
	HelpTextSaves           = "Snapshot save attempts"
	HelpTextPublishes       = "Unlock publish attempts after retries"
)

// Label names
const (
	LabelUpgrade  = "upgrade"
	LabelKind     = "kind"
	LabelPriority = "priority"
	LabelResult   = "result"
)

// Label values for LabelResult
const (
	ResultAccepted = "accepted"
	ResultDropped  = "dropped"
	ResultSuccess  = "success"
	ResultFailure  = "failure"
)

// ComboBuckets covers multipliers from 1.0 up to the default cap of 2.0.
var ComboBuckets = []float64{1, 1.1, 1.2, 1.3, 1.5, 1.75, 2}

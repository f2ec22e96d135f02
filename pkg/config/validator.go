package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/go-playground/validator/v10"

	"github.com/AccelByte/extend-idle-progression/pkg/domain"
	progerrors "github.com/AccelByte/extend-idle-progression/pkg/errors"
)

// Validator validates catalog files.
// Field-level rules live in struct tags; cross-entry rules are checked here.
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a new Validator instance.
func NewValidator() *Validator {
	return &Validator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// Validate performs comprehensive validation of the catalog.
// It checks for:
// - Struct tag constraints on every entry and on the tuning block
// - Unique upgrade names, story titles, achievement titles and rank names
// - Trigger metrics allowed for their family
// - A rank ladder starting at 0 with non-decreasing thresholds
//
// Returns an error describing the first validation failure encountered.
func (v *Validator) Validate(catalog *Catalog) error {
	if catalog == nil {
		return progerrors.ErrConfigInvalid("catalog is nil")
	}

	if err := v.validate.Struct(catalog); err != nil {
		return translate(err)
	}

	if err := uniqueNames("upgrade", len(catalog.Upgrades), func(i int) string { return catalog.Upgrades[i].Name }); err != nil {
		return err
	}
	if err := uniqueNames("story event", len(catalog.StoryEvents), func(i int) string { return catalog.StoryEvents[i].Title }); err != nil {
		return err
	}
	if err := uniqueNames("achievement", len(catalog.Achievements), func(i int) string { return catalog.Achievements[i].Title }); err != nil {
		return err
	}
	if err := uniqueNames("rank", len(catalog.Ranks), func(i int) string { return catalog.Ranks[i].Name }); err != nil {
		return err
	}

	for _, event := range catalog.StoryEvents {
		if !slices.Contains(domain.StoryMetrics, event.Condition.Metric) {
			return progerrors.ErrValidationFailed(
				fmt.Sprintf("story event '%s'", event.Title),
				fmt.Sprintf("metric '%s' not allowed (must be money, clicks or upgrades)", event.Condition.Metric),
			)
		}
	}

	for _, achievement := range catalog.Achievements {
		if !slices.Contains(domain.AchievementMetrics, achievement.Condition.Metric) {
			return progerrors.ErrValidationFailed(
				fmt.Sprintf("achievement '%s'", achievement.Title),
				fmt.Sprintf("metric '%s' not allowed (must be clicks, upgrades or money_earned)", achievement.Condition.Metric),
			)
		}
	}

	return v.validateLadder(catalog.Ranks)
}

// validateLadder enforces a ladder that starts at zero and never decreases.
func (v *Validator) validateLadder(ranks []domain.Rank) error {
	if ranks[0].Threshold != 0 {
		return progerrors.ErrValidationFailed(
			fmt.Sprintf("rank '%s'", ranks[0].Name),
			"first rank threshold must be 0",
		)
	}
	for i := 1; i < len(ranks); i++ {
		if ranks[i].Threshold < ranks[i-1].Threshold {
			return progerrors.ErrValidationFailed(
				fmt.Sprintf("rank '%s'", ranks[i].Name),
				fmt.Sprintf("threshold %v is below previous rank '%s' (%v)", ranks[i].Threshold, ranks[i-1].Name, ranks[i-1].Threshold),
			)
		}
	}
	return nil
}

func uniqueNames(kind string, n int, name func(int) string) error {
	seen := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		if seen[name(i)] {
			return progerrors.ErrConfigInvalid(fmt.Sprintf("duplicate %s: %s", kind, name(i)))
		}
		seen[name(i)] = true
	}
	return nil
}

// translate turns the first validator.FieldError into a ProgressionError.
func translate(err error) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		reason := fmt.Sprintf("failed '%s' rule", fe.Tag())
		if fe.Param() != "" {
			reason = fmt.Sprintf("failed '%s=%s' rule", fe.Tag(), fe.Param())
		}
		return progerrors.ErrValidationFailed(fe.Namespace(), reason)
	}
	return progerrors.ErrConfigInvalid(err.Error())
}

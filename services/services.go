// Package services holds the timesheet core: the assignment graph, the
// timesheet state machine and entry aggregation, the approval workflow and
// the role-scoped read side. Services receive an injected *gorm.DB; there
// is no package-level store handle.
package services

import (
	"errors"

	"gorm.io/gorm"

	"timesheet/apperr"
	"timesheet/models"
)

// Pagination defaults shared by every list operation.
const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// PageParams is 1-based pagination input. Zero values fall back to the
// defaults; limits are capped at MaxLimit.
type PageParams struct {
	Page  int
	Limit int
}

func (p PageParams) normalize() (page, limit, offset int) {
	page = p.Page
	if page < 1 {
		page = DefaultPage
	}
	limit = p.Limit
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit, (page - 1) * limit
}

// ListMeta accompanies every paginated result. Total is counted under the
// same filter, inside the same transaction as the page read.
type ListMeta struct {
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

// settingsFor loads the organisation's policy, falling back to the
// documented defaults when no settings row exists.
func settingsFor(tx *gorm.DB, orgID uint) (models.OrgSettings, error) {
	var settings models.OrgSettings
	err := tx.Where("organisation_id = ?", orgID).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.DefaultSettings(orgID), nil
	}
	if err != nil {
		return settings, err
	}
	return settings, nil
}

// uintSet builds a lookup set from a slice of ids.
func uintSet(ids []uint) map[uint]struct{} {
	set := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

// translateDuplicate maps a unique-index violation to the given conflict
// error; anything else passes through untouched.
func translateDuplicate(err error, conflict *apperr.Error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return conflict
	}
	return err
}
